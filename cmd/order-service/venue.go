package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Suldaanka/dashboard/internal/apperr"
	"github.com/Suldaanka/dashboard/internal/httpx"
	"github.com/Suldaanka/dashboard/internal/venue"
)

// venueErr maps repository sentinels to categorized errors.
func venueErr(err error, what string) error {
	switch {
	case errors.Is(err, venue.ErrNotFound):
		return apperr.NotFound("%s not found", what)
	case errors.Is(err, venue.ErrDuplicate):
		return apperr.Conflict("%s number already in use", what)
	case errors.Is(err, venue.ErrInUse):
		return apperr.Conflict("%s is referenced by orders or bookings", what)
	}
	return apperr.Persistence(err, "%s store", what)
}

// listTablesHandler godoc
// @Summary  List tables
// @Tags     tables
// @Produce  json
// @Param    X-User-ID    header string true "caller id"
// @Param    X-User-Role  header string true "caller role"
// @Success  200 {array} venue.Table
// @Router   /tables [get]
func listTablesHandler(repo venue.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ts, err := repo.ListTables(c.Request.Context())
		if err != nil {
			httpx.WriteError(c, venueErr(err, "table"))
			return
		}
		c.JSON(http.StatusOK, ts)
	}
}

// createTableHandler godoc
// @Summary  Create a table
// @Tags     tables
// @Accept   json
// @Produce  json
// @Param    X-User-ID    header string true "caller id"
// @Param    X-User-Role  header string true "caller role"
// @Param    body body venue.TableRequest true "table"
// @Success  201 {object} venue.Table
// @Failure  400 {object} httpx.HTTPError
// @Failure  409 {object} httpx.HTTPError
// @Router   /tables [post]
func createTableHandler(repo venue.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req venue.TableRequest
		if err := httpx.DecodeStrict(c, &req); err != nil {
			httpx.WriteError(c, err)
			return
		}
		if req.Number <= 0 || req.Capacity <= 0 {
			httpx.WriteError(c, apperr.Validation("number and capacity must be positive"))
			return
		}
		status := venue.NormalizeStatus(req.Status)
		if status == "" {
			status = venue.StatusAvailable
		}
		if !venue.ValidTableStatus(status) {
			httpx.WriteError(c, apperr.Validation("invalid table status %q", req.Status))
			return
		}
		t := &venue.Table{ID: uuid.NewString(), Number: req.Number, Capacity: req.Capacity, Status: status}
		if err := repo.CreateTable(c.Request.Context(), t); err != nil {
			httpx.WriteError(c, venueErr(err, "table"))
			return
		}
		c.JSON(http.StatusCreated, t)
	}
}

// setTableStatusHandler godoc
// @Summary  Set a table's status
// @Tags     tables
// @Accept   json
// @Produce  json
// @Param    X-User-ID    header string true "caller id"
// @Param    X-User-Role  header string true "caller role"
// @Param    id   path string true "table id"
// @Param    body body venue.StatusRequest true "status"
// @Success  200 {object} venue.Table
// @Failure  400 {object} httpx.HTTPError
// @Failure  404 {object} httpx.HTTPError
// @Router   /tables/{id}/status [patch]
func setTableStatusHandler(repo venue.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req venue.StatusRequest
		if err := httpx.DecodeStrict(c, &req); err != nil {
			httpx.WriteError(c, err)
			return
		}
		status := venue.NormalizeStatus(req.Status)
		if !venue.ValidTableStatus(status) {
			httpx.WriteError(c, apperr.Validation("invalid table status %q", req.Status))
			return
		}
		t, err := repo.SetTableStatus(c.Request.Context(), c.Param("id"), status)
		if err != nil {
			httpx.WriteError(c, venueErr(err, "table"))
			return
		}
		c.JSON(http.StatusOK, t)
	}
}

// deleteTableHandler godoc
// @Summary  Delete a table
// @Tags     tables
// @Param    X-User-ID    header string true "caller id"
// @Param    X-User-Role  header string true "caller role"
// @Param    id path string true "table id"
// @Success  204
// @Failure  404 {object} httpx.HTTPError
// @Failure  409 {object} httpx.HTTPError
// @Router   /tables/{id} [delete]
func deleteTableHandler(repo venue.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := repo.DeleteTable(c.Request.Context(), c.Param("id")); err != nil {
			httpx.WriteError(c, venueErr(err, "table"))
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func validRoomPrice(s string) bool {
	d, err := decimal.NewFromString(s)
	return err == nil && !d.IsNegative()
}

// listRoomsHandler godoc
// @Summary  List rooms
// @Tags     rooms
// @Produce  json
// @Param    X-User-ID    header string true "caller id"
// @Param    X-User-Role  header string true "caller role"
// @Param    status query string false "status filter"
// @Success  200 {array} venue.Room
// @Router   /rooms [get]
func listRoomsHandler(repo venue.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := venue.NormalizeStatus(c.Query("status"))
		if status != "" && !venue.ValidRoomStatus(status) {
			httpx.WriteError(c, apperr.Validation("invalid room status %q", status))
			return
		}
		rs, err := repo.ListRooms(c.Request.Context(), status)
		if err != nil {
			httpx.WriteError(c, venueErr(err, "room"))
			return
		}
		c.JSON(http.StatusOK, rs)
	}
}

// getRoomHandler godoc
// @Summary  Get a room
// @Tags     rooms
// @Produce  json
// @Param    X-User-ID    header string true "caller id"
// @Param    X-User-Role  header string true "caller role"
// @Param    id path string true "room id"
// @Success  200 {object} venue.Room
// @Failure  404 {object} httpx.HTTPError
// @Router   /rooms/{id} [get]
func getRoomHandler(repo venue.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		r, err := repo.GetRoom(c.Request.Context(), c.Param("id"))
		if err != nil {
			httpx.WriteError(c, venueErr(err, "room"))
			return
		}
		c.JSON(http.StatusOK, r)
	}
}

// createRoomHandler godoc
// @Summary  Create a room
// @Tags     rooms
// @Accept   json
// @Produce  json
// @Param    X-User-ID    header string true "caller id"
// @Param    X-User-Role  header string true "caller role"
// @Param    body body venue.RoomRequest true "room"
// @Success  201 {object} venue.Room
// @Failure  400 {object} httpx.HTTPError
// @Failure  409 {object} httpx.HTTPError
// @Router   /rooms [post]
func createRoomHandler(repo venue.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req venue.RoomRequest
		if err := httpx.DecodeStrict(c, &req); err != nil {
			httpx.WriteError(c, err)
			return
		}
		r := &venue.Room{
			ID:     uuid.NewString(),
			Number: strings.TrimSpace(req.Number),
			Type:   strings.ToUpper(strings.TrimSpace(req.Type)),
			Price:  strings.TrimSpace(req.Price),
			Status: venue.NormalizeStatus(req.Status),
		}
		if r.Number == "" || r.Type == "" {
			httpx.WriteError(c, apperr.Validation("number and type are required"))
			return
		}
		if !validRoomPrice(r.Price) {
			httpx.WriteError(c, apperr.Validation("price must be a non-negative decimal"))
			return
		}
		if r.Status == "" {
			r.Status = venue.StatusAvailable
		}
		if !venue.ValidRoomStatus(r.Status) {
			httpx.WriteError(c, apperr.Validation("invalid room status %q", req.Status))
			return
		}
		if err := repo.CreateRoom(c.Request.Context(), r); err != nil {
			httpx.WriteError(c, venueErr(err, "room"))
			return
		}
		c.JSON(http.StatusCreated, r)
	}
}

// updateRoomHandler godoc
// @Summary  Update a room; empty fields keep their value
// @Tags     rooms
// @Accept   json
// @Produce  json
// @Param    X-User-ID    header string true "caller id"
// @Param    X-User-Role  header string true "caller role"
// @Param    id   path string true "room id"
// @Param    body body venue.RoomRequest true "fields to change"
// @Success  200 {object} venue.Room
// @Failure  400 {object} httpx.HTTPError
// @Failure  404 {object} httpx.HTTPError
// @Router   /rooms/{id} [put]
func updateRoomHandler(repo venue.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req venue.RoomRequest
		if err := httpx.DecodeStrict(c, &req); err != nil {
			httpx.WriteError(c, err)
			return
		}
		r := &venue.Room{
			ID:     c.Param("id"),
			Number: strings.TrimSpace(req.Number),
			Type:   strings.ToUpper(strings.TrimSpace(req.Type)),
			Price:  strings.TrimSpace(req.Price),
			Status: venue.NormalizeStatus(req.Status),
		}
		if r.Price != "" && !validRoomPrice(r.Price) {
			httpx.WriteError(c, apperr.Validation("price must be a non-negative decimal"))
			return
		}
		if r.Status != "" && !venue.ValidRoomStatus(r.Status) {
			httpx.WriteError(c, apperr.Validation("invalid room status %q", req.Status))
			return
		}
		out, err := repo.UpdateRoom(c.Request.Context(), r)
		if err != nil {
			httpx.WriteError(c, venueErr(err, "room"))
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// setRoomStatusHandler godoc
// @Summary  Set a room's status
// @Tags     rooms
// @Accept   json
// @Produce  json
// @Param    X-User-ID    header string true "caller id"
// @Param    X-User-Role  header string true "caller role"
// @Param    id   path string true "room id"
// @Param    body body venue.StatusRequest true "status"
// @Success  200 {object} venue.Room
// @Failure  400 {object} httpx.HTTPError
// @Failure  404 {object} httpx.HTTPError
// @Router   /rooms/{id}/status [patch]
func setRoomStatusHandler(repo venue.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req venue.StatusRequest
		if err := httpx.DecodeStrict(c, &req); err != nil {
			httpx.WriteError(c, err)
			return
		}
		status := venue.NormalizeStatus(req.Status)
		if !venue.ValidRoomStatus(status) {
			httpx.WriteError(c, apperr.Validation("invalid room status %q", req.Status))
			return
		}
		out, err := repo.UpdateRoom(c.Request.Context(), &venue.Room{ID: c.Param("id"), Status: status})
		if err != nil {
			httpx.WriteError(c, venueErr(err, "room"))
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// deleteRoomHandler godoc
// @Summary  Delete a room
// @Tags     rooms
// @Param    X-User-ID    header string true "caller id"
// @Param    X-User-Role  header string true "caller role"
// @Param    id path string true "room id"
// @Success  204
// @Failure  404 {object} httpx.HTTPError
// @Failure  409 {object} httpx.HTTPError
// @Router   /rooms/{id} [delete]
func deleteRoomHandler(repo venue.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := repo.DeleteRoom(c.Request.Context(), c.Param("id")); err != nil {
			httpx.WriteError(c, venueErr(err, "room"))
			return
		}
		c.Status(http.StatusNoContent)
	}
}
