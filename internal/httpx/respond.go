package httpx

import (
	"log/slog"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Suldaanka/dashboard/internal/apperr"
)

// HTTPError is the JSON body of every failed request.
// swagger:model
type HTTPError struct {
	// example: quantity must be positive
	Error string `json:"error"`
	// example: validation
	Reason string `json:"reason"`
}

// WriteError renders err with its mapped status. Persistence failures keep
// their cause out of the response body and in the log.
func WriteError(c *gin.Context, err error) {
	ae := apperr.From(err, "internal error")
	if ae.Err != nil {
		rid, _ := c.Get("rid")
		slog.Error("request failed", "rid", rid, "reason", ae.Reason, "error", ae.Err)
	}
	c.JSON(ae.HTTPStatus(), HTTPError{Error: ae.Message, Reason: ae.Reason})
}

// AbortError writes err and stops the handler chain.
func AbortError(c *gin.Context, err error) {
	WriteError(c, err)
	c.Abort()
}

// Paging reads limit/offset query parameters, clamping limit to 1..100
// (default 20) and offset to >= 0.
func Paging(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
