package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Suldaanka/dashboard/internal/access"
	"github.com/Suldaanka/dashboard/internal/apperr"
	"github.com/Suldaanka/dashboard/internal/dashboard"
	"github.com/Suldaanka/dashboard/internal/httpx"
	"github.com/Suldaanka/dashboard/internal/payment"
	"github.com/Suldaanka/dashboard/internal/reservation"
)

// listPaymentsHandler godoc
// @Summary  List payments, newest first
// @Tags     payments
// @Produce  json
// @Param    X-User-ID    header string true "caller id"
// @Param    X-User-Role  header string true "caller role"
// @Param    limit  query int false "page size (max 100)"
// @Param    offset query int false "offset"
// @Success  200 {array} payment.Payment
// @Router   /payments [get]
func listPaymentsHandler(repo payment.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, offset := httpx.Paging(c)
		ps, err := repo.List(c.Request.Context(), limit, offset)
		if err != nil {
			httpx.WriteError(c, apperr.Persistence(err, "list payments"))
			return
		}
		c.JSON(http.StatusOK, ps)
	}
}

// createPaymentHandler godoc
// @Summary  Record a payment
// @Tags     payments
// @Accept   json
// @Produce  json
// @Param    X-User-ID    header string true "caller id"
// @Param    X-User-Role  header string true "caller role"
// @Param    body body payment.CreateRequest true "payment"
// @Success  201 {object} payment.Payment
// @Failure  400 {object} httpx.HTTPError
// @Router   /payments [post]
func createPaymentHandler(repo payment.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req payment.CreateRequest
		if err := httpx.DecodeStrict(c, &req); err != nil {
			httpx.WriteError(c, err)
			return
		}
		if !req.Amount.IsPositive() {
			httpx.WriteError(c, apperr.Validation("amount must be positive"))
			return
		}
		status := strings.ToUpper(strings.TrimSpace(req.Status))
		if status == "" {
			status = payment.StatusPending
		}
		if !payment.ValidStatus(status) {
			httpx.WriteError(c, apperr.Validation("invalid payment status %q", req.Status))
			return
		}
		p := &payment.Payment{
			ID:     uuid.NewString(),
			UserID: actorID(c),
			Amount: req.Amount.Round(2),
			Status: status,
		}
		if err := repo.Create(c.Request.Context(), p); err != nil {
			httpx.WriteError(c, apperr.Persistence(err, "create payment"))
			return
		}
		c.JSON(http.StatusCreated, p)
	}
}

// setPaymentStatusHandler godoc
// @Summary  Set a payment's status
// @Tags     payments
// @Accept   json
// @Produce  json
// @Param    X-User-ID    header string true "caller id"
// @Param    X-User-Role  header string true "caller role"
// @Param    id   path string true "payment id"
// @Param    body body payment.StatusRequest true "status"
// @Success  200 {object} payment.Payment
// @Failure  400 {object} httpx.HTTPError
// @Failure  404 {object} httpx.HTTPError
// @Router   /payments/{id}/status [patch]
func setPaymentStatusHandler(repo payment.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req payment.StatusRequest
		if err := httpx.DecodeStrict(c, &req); err != nil {
			httpx.WriteError(c, err)
			return
		}
		status := strings.ToUpper(strings.TrimSpace(req.Status))
		if !payment.ValidStatus(status) {
			httpx.WriteError(c, apperr.Validation("invalid payment status %q", req.Status))
			return
		}
		p, err := repo.SetStatus(c.Request.Context(), c.Param("id"), status)
		if errors.Is(err, payment.ErrNotFound) {
			httpx.WriteError(c, apperr.NotFound("payment not found"))
			return
		}
		if err != nil {
			httpx.WriteError(c, apperr.Persistence(err, "update payment"))
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// listReservationsHandler godoc
// @Summary      List bookings
// @Description  Stays whose check-out date has passed are completed first.
// @Tags         reservations
// @Produce      json
// @Param        X-User-ID    header string true "caller id"
// @Param        X-User-Role  header string true "caller role"
// @Success      200 {array} reservation.Booking
// @Router       /reservations [get]
func listReservationsHandler(svc *reservation.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		bs, err := svc.List(c.Request.Context())
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, bs)
	}
}

// createReservationHandler godoc
// @Summary  Book a room
// @Tags     reservations
// @Accept   json
// @Produce  json
// @Param    X-User-ID    header string true "caller id"
// @Param    X-User-Role  header string true "caller role"
// @Param    body body reservation.CreateRequest true "booking"
// @Success  201 {object} reservation.Booking
// @Failure  400 {object} httpx.HTTPError
// @Failure  404 {object} httpx.HTTPError "no free room of that type"
// @Router   /reservations [post]
func createReservationHandler(svc *reservation.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req reservation.CreateRequest
		if err := httpx.DecodeStrict(c, &req); err != nil {
			httpx.WriteError(c, err)
			return
		}
		b, err := svc.Create(c.Request.Context(), actorID(c), req)
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.JSON(http.StatusCreated, b)
	}
}

// updateReservationHandler godoc
// @Summary  Change a booking's status
// @Tags     reservations
// @Accept   json
// @Produce  json
// @Param    X-User-ID    header string true "caller id"
// @Param    X-User-Role  header string true "caller role"
// @Param    id   path string true "booking id"
// @Param    body body reservation.StatusRequest true "status"
// @Success  200 {object} reservation.Booking
// @Failure  400 {object} httpx.HTTPError
// @Failure  404 {object} httpx.HTTPError
// @Router   /reservations/{id}/status [patch]
func updateReservationHandler(svc *reservation.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req reservation.StatusRequest
		if err := httpx.DecodeStrict(c, &req); err != nil {
			httpx.WriteError(c, err)
			return
		}
		b, err := svc.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, b)
	}
}

// deleteReservationHandler godoc
// @Summary  Delete a booking
// @Tags     reservations
// @Param    X-User-ID    header string true "caller id"
// @Param    X-User-Role  header string true "caller role"
// @Param    id path string true "booking id"
// @Success  204
// @Failure  404 {object} httpx.HTTPError
// @Router   /reservations/{id} [delete]
func deleteReservationHandler(svc *reservation.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// dashboardHandler godoc
// @Summary  Back-office counters and revenue
// @Tags     dashboard
// @Produce  json
// @Param    X-User-ID    header string true "caller id"
// @Param    X-User-Role  header string true "caller role"
// @Success  200 {object} dashboard.Stats
// @Failure  500 {object} httpx.HTTPError
// @Router   /dashboard [get]
func dashboardHandler(svc *dashboard.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, err := svc.Stats(c.Request.Context())
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, st)
	}
}

// PermissionCheck is the answer to a page permission query.
// swagger:model PermissionCheck
type PermissionCheck struct {
	Path    string `json:"path"`
	Allowed bool   `json:"allowed"`
}

// navHandler godoc
// @Summary  Sidebar entries the caller may open
// @Tags     permissions
// @Produce  json
// @Param    X-User-ID    header string true "caller id"
// @Param    X-User-Role  header string true "caller role"
// @Success  200 {array} access.NavItem
// @Router   /permissions/nav [get]
func navHandler(nav []access.NavItem) gin.HandlerFunc {
	return func(c *gin.Context) {
		a, _ := httpx.ActorFrom(c)
		c.JSON(http.StatusOK, access.FilterNav(nav, a.Role))
	}
}

// checkPageHandler godoc
// @Summary  Whether the caller may open a UI path
// @Tags     permissions
// @Produce  json
// @Param    X-User-ID    header string true "caller id"
// @Param    X-User-Role  header string true "caller role"
// @Param    path query string true "UI path, e.g. /orders"
// @Success  200 {object} PermissionCheck
// @Failure  400 {object} httpx.HTTPError
// @Router   /permissions/check [get]
func checkPageHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := strings.TrimSpace(c.Query("path"))
		if path == "" {
			httpx.WriteError(c, apperr.Validation("path is required"))
			return
		}
		a, _ := httpx.ActorFrom(c)
		c.JSON(http.StatusOK, PermissionCheck{Path: path, Allowed: access.CanOpen(a.Role, path)})
	}
}
