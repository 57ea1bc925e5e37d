package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Suldaanka/dashboard/internal/apperr"
	"github.com/Suldaanka/dashboard/internal/expense"
	"github.com/Suldaanka/dashboard/internal/httpx"
)

func expenseErr(err error, what string) error {
	switch {
	case errors.Is(err, expense.ErrNotFound):
		return apperr.NotFound("%s not found", what)
	case errors.Is(err, expense.ErrDuplicate):
		return apperr.Conflict("category name already in use")
	case errors.Is(err, expense.ErrUnknownCategory):
		return apperr.Validation("unknown expense category")
	}
	return apperr.Persistence(err, "%s store", what)
}

// listExpensesHandler godoc
// @Summary  List expenses, newest first, with their category name
// @Tags     expenses
// @Produce  json
// @Param    X-User-ID    header string true "caller id"
// @Param    X-User-Role  header string true "caller role"
// @Success  200 {array} expense.Expense
// @Router   /expenses [get]
func listExpensesHandler(repo expense.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		es, err := repo.List(c.Request.Context())
		if err != nil {
			httpx.WriteError(c, expenseErr(err, "expense"))
			return
		}
		c.JSON(http.StatusOK, es)
	}
}

// expenseSummaryHandler godoc
// @Summary  Income, outcome and net balance over all expenses
// @Tags     expenses
// @Produce  json
// @Param    X-User-ID    header string true "caller id"
// @Param    X-User-Role  header string true "caller role"
// @Success  200 {object} expense.Summary
// @Router   /expenses/summary [get]
func expenseSummaryHandler(repo expense.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		es, err := repo.List(c.Request.Context())
		if err != nil {
			httpx.WriteError(c, expenseErr(err, "expense"))
			return
		}
		c.JSON(http.StatusOK, expense.Summarize(es))
	}
}

// createExpenseHandler godoc
// @Summary  Record an expense paid by the caller
// @Tags     expenses
// @Accept   json
// @Produce  json
// @Param    X-User-ID    header string true "caller id"
// @Param    X-User-Role  header string true "caller role"
// @Param    body body expense.Request true "expense"
// @Success  201 {object} expense.Expense
// @Failure  400 {object} httpx.HTTPError
// @Router   /expenses [post]
func createExpenseHandler(repo expense.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req expense.Request
		if err := httpx.DecodeStrict(c, &req); err != nil {
			httpx.WriteError(c, err)
			return
		}
		e := &expense.Expense{
			ID:          uuid.NewString(),
			Description: strings.TrimSpace(req.Description),
			CategoryID:  strings.TrimSpace(req.CategoryID),
			Type:        expense.NormalizeType(req.Type),
		}
		if e.Description == "" || e.CategoryID == "" {
			httpx.WriteError(c, apperr.Validation("description and category_id are required"))
			return
		}
		amount, ok := expense.ParseAmount(req.Amount)
		if !ok {
			httpx.WriteError(c, apperr.Validation("amount must be a positive decimal"))
			return
		}
		if !expense.ValidType(e.Type) {
			httpx.WriteError(c, apperr.Validation("type must be income or outcome"))
			return
		}
		e.Amount = amount.StringFixed(2)
		if req.Date != nil {
			e.Date = *req.Date
		}
		a, _ := httpx.ActorFrom(c)
		e.PaidBy = a.UserID
		if err := repo.Create(c.Request.Context(), e); err != nil {
			httpx.WriteError(c, expenseErr(err, "expense"))
			return
		}
		c.JSON(http.StatusCreated, e)
	}
}

// updateExpenseHandler godoc
// @Summary  Update an expense; empty category and type keep their value
// @Tags     expenses
// @Accept   json
// @Produce  json
// @Param    X-User-ID    header string true "caller id"
// @Param    X-User-Role  header string true "caller role"
// @Param    id   path string true "expense id"
// @Param    body body expense.Request true "fields to change"
// @Success  200 {object} expense.Expense
// @Failure  400 {object} httpx.HTTPError
// @Failure  404 {object} httpx.HTTPError
// @Router   /expenses/{id} [put]
func updateExpenseHandler(repo expense.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req expense.Request
		if err := httpx.DecodeStrict(c, &req); err != nil {
			httpx.WriteError(c, err)
			return
		}
		e := &expense.Expense{
			ID:          c.Param("id"),
			Description: strings.TrimSpace(req.Description),
			CategoryID:  strings.TrimSpace(req.CategoryID),
			Type:        expense.NormalizeType(req.Type),
		}
		if e.Description == "" {
			httpx.WriteError(c, apperr.Validation("description is required"))
			return
		}
		amount, ok := expense.ParseAmount(req.Amount)
		if !ok {
			httpx.WriteError(c, apperr.Validation("amount must be a positive decimal"))
			return
		}
		if e.Type != "" && !expense.ValidType(e.Type) {
			httpx.WriteError(c, apperr.Validation("type must be income or outcome"))
			return
		}
		e.Amount = amount.StringFixed(2)
		if req.Date != nil {
			e.Date = *req.Date
		}
		out, err := repo.Update(c.Request.Context(), e)
		if err != nil {
			httpx.WriteError(c, expenseErr(err, "expense"))
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// deleteExpenseHandler godoc
// @Summary  Delete an expense
// @Tags     expenses
// @Param    X-User-ID    header string true "caller id"
// @Param    X-User-Role  header string true "caller role"
// @Param    id path string true "expense id"
// @Success  204
// @Failure  404 {object} httpx.HTTPError
// @Router   /expenses/{id} [delete]
func deleteExpenseHandler(repo expense.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := repo.Delete(c.Request.Context(), c.Param("id")); err != nil {
			httpx.WriteError(c, expenseErr(err, "expense"))
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// listExpenseCategoriesHandler godoc
// @Summary  List expense categories
// @Tags     expenses
// @Produce  json
// @Param    X-User-ID    header string true "caller id"
// @Param    X-User-Role  header string true "caller role"
// @Success  200 {array} expense.Category
// @Router   /expenses/categories [get]
func listExpenseCategoriesHandler(repo expense.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		cs, err := repo.ListCategories(c.Request.Context())
		if err != nil {
			httpx.WriteError(c, expenseErr(err, "expense category"))
			return
		}
		c.JSON(http.StatusOK, cs)
	}
}

// createExpenseCategoryHandler godoc
// @Summary  Create an expense category
// @Tags     expenses
// @Accept   json
// @Produce  json
// @Param    X-User-ID    header string true "caller id"
// @Param    X-User-Role  header string true "caller role"
// @Param    body body expense.CategoryRequest true "category"
// @Success  201 {object} expense.Category
// @Failure  400 {object} httpx.HTTPError
// @Failure  409 {object} httpx.HTTPError
// @Router   /expenses/categories [post]
func createExpenseCategoryHandler(repo expense.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req expense.CategoryRequest
		if err := httpx.DecodeStrict(c, &req); err != nil {
			httpx.WriteError(c, err)
			return
		}
		cat := &expense.Category{ID: uuid.NewString(), Name: strings.TrimSpace(req.Name)}
		if cat.Name == "" {
			httpx.WriteError(c, apperr.Validation("name is required"))
			return
		}
		if err := repo.CreateCategory(c.Request.Context(), cat); err != nil {
			httpx.WriteError(c, expenseErr(err, "expense category"))
			return
		}
		c.JSON(http.StatusCreated, cat)
	}
}
