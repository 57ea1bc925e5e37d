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
	"github.com/Suldaanka/dashboard/internal/menu"
)

func validPrice(s string) bool {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	return err == nil && !d.IsNegative()
}

func cleanImages(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, u := range in {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	return out
}

// listMenuHandler godoc
// @Summary  List menu items
// @Tags     menu
// @Produce  json
// @Param    q         query  string false "name contains"
// @Param    category  query  string false "exact category"
// @Param    limit     query  int    false "page size (max 100)"
// @Param    offset    query  int    false "offset"
// @Success  200 {object} menu.ListResponse
// @Failure  500 {object} httpx.HTTPError
// @Router   /menu [get]
func listMenuHandler(repo menu.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, offset := httpx.Paging(c)
		q := menu.Query{
			Q:        strings.TrimSpace(c.Query("q")),
			Category: strings.TrimSpace(c.Query("category")),
			Limit:    limit,
			Offset:   offset,
		}
		items, err := repo.List(c.Request.Context(), q)
		if err != nil {
			httpx.WriteError(c, apperr.Persistence(err, "list menu"))
			return
		}
		c.JSON(http.StatusOK, menu.ListResponse{Q: q.Q, Category: q.Category, Limit: limit, Offset: offset, Items: items})
	}
}

// getMenuHandler godoc
// @Summary  Get a menu item
// @Tags     menu
// @Produce  json
// @Param    id   path  string true "menu item id"
// @Success  200 {object} menu.Item
// @Failure  404 {object} httpx.HTTPError
// @Router   /menu/{id} [get]
func getMenuHandler(repo menu.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		it, err := repo.GetByID(c.Request.Context(), c.Param("id"))
		if errors.Is(err, menu.ErrNotFound) {
			httpx.WriteError(c, apperr.NotFound("menu item not found"))
			return
		}
		if err != nil {
			httpx.WriteError(c, apperr.Persistence(err, "get menu item"))
			return
		}
		c.JSON(http.StatusOK, it)
	}
}

// createMenuHandler godoc
// @Summary  Create a menu item
// @Tags     menu
// @Accept   json
// @Produce  json
// @Param    X-User-ID    header string true "caller id"
// @Param    X-User-Role  header string true "caller role"
// @Param    body body menu.CreateItemRequest true "menu item"
// @Success  201 {object} menu.Item
// @Failure  400 {object} httpx.HTTPError
// @Failure  403 {object} httpx.HTTPError
// @Router   /menu [post]
func createMenuHandler(repo menu.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req menu.CreateItemRequest
		if err := httpx.DecodeStrict(c, &req); err != nil {
			httpx.WriteError(c, err)
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		req.Category = strings.TrimSpace(req.Category)
		if req.Name == "" || req.Category == "" {
			httpx.WriteError(c, apperr.Validation("name and category are required"))
			return
		}
		if !validPrice(req.Price) {
			httpx.WriteError(c, apperr.Validation("price must be a non-negative decimal"))
			return
		}
		if req.Status == "" {
			req.Status = menu.StatusAvailable
		}
		if !menu.ValidStatus(req.Status) {
			httpx.WriteError(c, apperr.Validation("invalid status %q", req.Status))
			return
		}

		it := &menu.Item{
			ID:       uuid.NewString(),
			Name:     req.Name,
			Category: req.Category,
			Price:    strings.TrimSpace(req.Price),
			Status:   req.Status,
			Images:   cleanImages(req.Images),
		}
		if err := repo.Create(c.Request.Context(), it); err != nil {
			httpx.WriteError(c, apperr.Persistence(err, "create menu item"))
			return
		}
		c.JSON(http.StatusCreated, it)
	}
}

// updateMenuHandler godoc
// @Summary  Partially update a menu item
// @Tags     menu
// @Accept   json
// @Produce  json
// @Param    X-User-ID    header string true "caller id"
// @Param    X-User-Role  header string true "caller role"
// @Param    id   path string true "menu item id"
// @Param    body body menu.UpdateItemRequest true "fields to change"
// @Success  200 {object} menu.Item
// @Failure  400 {object} httpx.HTTPError
// @Failure  404 {object} httpx.HTTPError
// @Router   /menu/{id} [put]
func updateMenuHandler(repo menu.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req menu.UpdateItemRequest
		if err := httpx.DecodeStrict(c, &req); err != nil {
			httpx.WriteError(c, err)
			return
		}
		if req.Price != "" && !validPrice(req.Price) {
			httpx.WriteError(c, apperr.Validation("price must be a non-negative decimal"))
			return
		}
		if req.Status != "" && !menu.ValidStatus(req.Status) {
			httpx.WriteError(c, apperr.Validation("invalid status %q", req.Status))
			return
		}

		id := c.Param("id")
		err := repo.Update(c.Request.Context(), &menu.Item{
			ID:       id,
			Name:     strings.TrimSpace(req.Name),
			Category: strings.TrimSpace(req.Category),
			Price:    strings.TrimSpace(req.Price),
			Status:   req.Status,
			Images:   cleanImages(req.Images),
		})
		if errors.Is(err, menu.ErrNotFound) {
			httpx.WriteError(c, apperr.NotFound("menu item not found"))
			return
		}
		if err != nil {
			httpx.WriteError(c, apperr.Persistence(err, "update menu item"))
			return
		}
		it, err := repo.GetByID(c.Request.Context(), id)
		if err != nil {
			httpx.WriteError(c, apperr.Persistence(err, "reload menu item"))
			return
		}
		c.JSON(http.StatusOK, it)
	}
}

// deleteMenuHandler godoc
// @Summary  Delete a menu item
// @Tags     menu
// @Param    X-User-ID    header string true "caller id"
// @Param    X-User-Role  header string true "caller role"
// @Param    id   path string true "menu item id"
// @Success  204
// @Failure  404 {object} httpx.HTTPError
// @Failure  409 {object} httpx.HTTPError
// @Router   /menu/{id} [delete]
func deleteMenuHandler(repo menu.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := repo.Delete(c.Request.Context(), c.Param("id"))
		if errors.Is(err, menu.ErrInUse) {
			httpx.WriteError(c, apperr.Conflict("menu item is used by existing orders; mark it UNAVAILABLE instead"))
			return
		}
		if err != nil {
			httpx.WriteError(c, apperr.Persistence(err, "delete menu item"))
			return
		}
		if !ok {
			httpx.WriteError(c, apperr.NotFound("menu item not found"))
			return
		}
		c.Status(http.StatusNoContent)
	}
}
