package httpx

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/Suldaanka/dashboard/internal/apperr"
)

// DecodeStrict reads the JSON body into dst. Unknown fields and trailing data
// are rejected as validation errors.
func DecodeStrict(c *gin.Context, dst any) error {
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("request body is empty")
		}
		return apperr.Validation("invalid json: %v", err)
	}
	if dec.More() {
		return apperr.Validation("invalid json: trailing data")
	}
	return nil
}
