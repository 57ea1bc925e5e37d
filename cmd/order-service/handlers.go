package main

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Suldaanka/dashboard/internal/apperr"
	"github.com/Suldaanka/dashboard/internal/httpx"
	"github.com/Suldaanka/dashboard/internal/order"
	"github.com/Suldaanka/dashboard/internal/receipt"
)

func actorID(c *gin.Context) string {
	a, _ := httpx.ActorFrom(c)
	return a.UserID
}

// submitOrderHandler godoc
// @Summary      Submit a cart
// @Description  Merges the cart into the destination's open order, or opens a new one.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        X-User-ID    header string true "caller id"
// @Param        X-User-Role  header string true "caller role"
// @Param        body body order.SubmitOrderRequest true "cart"
// @Success      201 {object} order.Order "new order"
// @Success      200 {object} order.Order "merged into the open order"
// @Failure      400 {object} httpx.HTTPError
// @Failure      404 {object} httpx.HTTPError
// @Failure      409 {object} httpx.HTTPError
// @Failure      503 {object} httpx.HTTPError
// @Router       /orders [post]
func submitOrderHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.SubmitOrderRequest
		if err := httpx.DecodeStrict(c, &req); err != nil {
			httpx.WriteError(c, err)
			return
		}
		o, created, err := svc.Submit(c.Request.Context(), actorID(c), req)
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		c.JSON(status, o)
	}
}

// listOrdersHandler godoc
// @Summary  List orders, newest first
// @Tags     orders
// @Produce  json
// @Param    X-User-ID    header string true "caller id"
// @Param    X-User-Role  header string true "caller role"
// @Param    status  query string false "status filter"
// @Param    limit   query int    false "page size (max 100)"
// @Param    offset  query int    false "offset"
// @Success  200 {object} order.ListResponse
// @Failure  400 {object} httpx.HTTPError
// @Router   /orders [get]
func listOrdersHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, offset := httpx.Paging(c)
		status := strings.ToUpper(strings.TrimSpace(c.Query("status")))
		items, err := svc.List(c.Request.Context(), order.ListQuery{
			Status: order.Status(status),
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, order.ListResponse{Status: status, Limit: limit, Offset: offset, Items: items})
	}
}

// getOrderHandler godoc
// @Summary  Get an order with its items
// @Tags     orders
// @Produce  json
// @Param    X-User-ID    header string true "caller id"
// @Param    X-User-Role  header string true "caller role"
// @Param    id path string true "order id"
// @Success  200 {object} order.Order
// @Failure  404 {object} httpx.HTTPError
// @Router   /orders/{id} [get]
func getOrderHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// updateOrderStatusHandler godoc
// @Summary  Change an order's status
// @Tags     orders
// @Accept   json
// @Produce  json
// @Param    X-User-ID    header string true "caller id"
// @Param    X-User-Role  header string true "caller role"
// @Param    id   path string true "order id"
// @Param    body body order.UpdateStatusRequest true "new status"
// @Success  200 {object} order.Order
// @Failure  400 {object} httpx.HTTPError
// @Failure  404 {object} httpx.HTTPError
// @Failure  409 {object} httpx.HTTPError
// @Router   /orders/{id}/status [patch]
func updateOrderStatusHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.UpdateStatusRequest
		if err := httpx.DecodeStrict(c, &req); err != nil {
			httpx.WriteError(c, err)
			return
		}
		o, err := svc.UpdateStatus(c.Request.Context(), c.Param("id"), actorID(c), req.Status)
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// linkPaymentHandler godoc
// @Summary  Attach a payment to an order
// @Tags     orders
// @Accept   json
// @Produce  json
// @Param    X-User-ID    header string true "caller id"
// @Param    X-User-Role  header string true "caller role"
// @Param    id   path string true "order id"
// @Param    body body order.LinkPaymentRequest true "payment"
// @Success  200 {object} order.Order
// @Failure  404 {object} httpx.HTTPError
// @Failure  409 {object} httpx.HTTPError
// @Router   /orders/{id}/payment [put]
func linkPaymentHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.LinkPaymentRequest
		if err := httpx.DecodeStrict(c, &req); err != nil {
			httpx.WriteError(c, err)
			return
		}
		o, err := svc.LinkPayment(c.Request.Context(), c.Param("id"), actorID(c), req.PaymentID)
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// deleteOrderHandler godoc
// @Summary  Delete an order
// @Tags     orders
// @Param    X-User-ID    header string true "caller id"
// @Param    X-User-Role  header string true "caller role"
// @Param    id path string true "order id"
// @Success  204
// @Failure  404 {object} httpx.HTTPError
// @Router   /orders/{id} [delete]
func deleteOrderHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("id"), actorID(c)); err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// receiptHandler godoc
// @Summary      Printable receipt
// @Description  JSON snapshot by default; format=text returns the 40-column slip.
// @Tags         orders
// @Produce      json
// @Produce      plain
// @Param        X-User-ID    header string true "caller id"
// @Param        X-User-Role  header string true "caller role"
// @Param        id     path  string true  "order id"
// @Param        format query string false "json or text"
// @Success      200 {object} receipt.Snapshot
// @Failure      404 {object} httpx.HTTPError
// @Failure      409 {object} httpx.HTTPError
// @Router       /orders/{id}/receipt [get]
func receiptHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap, err := svc.Receipt(c.Request.Context(), c.Param("id"))
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		if c.Query("format") == "text" {
			c.String(http.StatusOK, snap.Text())
			return
		}
		c.JSON(http.StatusOK, snap)
	}
}

// receiptQRHandler godoc
// @Summary  Receipt QR code
// @Tags     orders
// @Produce  png
// @Param    X-User-ID    header string true "caller id"
// @Param    X-User-Role  header string true "caller role"
// @Param    id   path  string true  "order id"
// @Param    size query int    false "edge in pixels (64-1024, default 256)"
// @Success  200 {file} binary
// @Failure  404 {object} httpx.HTTPError
// @Router   /orders/{id}/receipt/qr.png [get]
func receiptQRHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		size, _ := strconv.Atoi(c.DefaultQuery("size", "256"))
		if size < 64 || size > 1024 {
			httpx.WriteError(c, apperr.Validation("size must be between 64 and 1024"))
			return
		}
		snap, err := svc.Receipt(c.Request.Context(), c.Param("id"))
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		png, err := receipt.QRCode(snap, size)
		if err != nil {
			httpx.WriteError(c, apperr.From(err, "render qr code"))
			return
		}
		c.Data(http.StatusOK, "image/png", png)
	}
}
