package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Suldaanka/dashboard/internal/access"
	"github.com/Suldaanka/dashboard/internal/apperr"
)

func init() {
	gin.SetMode(gin.TestMode)
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func guarded(op access.Operation) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), Logger(), Identity())
	gate := NewGate(access.DefaultPolicy())
	r.GET("/x", gate.Require(op), func(c *gin.Context) {
		a, _ := ActorFrom(c)
		c.String(http.StatusOK, a.UserID+":"+string(a.Role))
	})
	return r
}

func do(r http.Handler, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGate_Unauthenticated(t *testing.T) {
	w := do(guarded(access.OpOrderSubmit), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var body HTTPError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, apperr.ReasonUnauthenticated, body.Reason)
}

func TestGate_Forbidden(t *testing.T) {
	w := do(guarded(access.OpOrderDelete), map[string]string{
		HeaderUserID: "u1", HeaderUserRole: "waiter",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGate_Allowed(t *testing.T) {
	w := do(guarded(access.OpOrderSubmit), map[string]string{
		HeaderUserID: "u1", HeaderUserRole: "waiter",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1:WAITER", w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRequestID_Propagates(t *testing.T) {
	w := do(guarded(access.OpOrderSubmit), map[string]string{
		HeaderUserID: "u1", HeaderUserRole: "admin", "X-Request-ID": "rid-42",
	})
	assert.Equal(t, "rid-42", w.Header().Get("X-Request-ID"))
}

func TestWriteError_HidesCause(t *testing.T) {
	r := gin.New()
	r.GET("/x", func(c *gin.Context) {
		WriteError(c, errors.New("pq: password authentication failed"))
	})
	w := do(r, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "password")
	assert.Contains(t, w.Body.String(), apperr.ReasonPersistence)
}

func TestPaging(t *testing.T) {
	tests := []struct {
		query         string
		limit, offset int
	}{
		{"", 20, 0},
		{"?limit=5&offset=10", 5, 10},
		{"?limit=500", 20, 0},
		{"?limit=-1&offset=-3", 20, 0},
		{"?limit=abc", 20, 0},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/x"+tt.query, nil)
		l, o := Paging(c)
		assert.Equal(t, tt.limit, l, tt.query)
		assert.Equal(t, tt.offset, o, tt.query)
	}
}

func TestDecodeStrict(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}
	tests := map[string]struct {
		body string
		ok   bool
	}{
		"valid":         {`{"name":"x"}`, true},
		"unknown field": {`{"name":"x","extra":1}`, false},
		"empty":         {``, false},
		"trailing":      {`{"name":"x"} {"name":"y"}`, false},
		"wrong type":    {`{"name":3}`, false},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))

			var p payload
			err := DecodeStrict(c, &p)
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, "x", p.Name)
				return
			}
			assert.True(t, apperr.Is(err, apperr.ReasonValidation), "got %v", err)
		})
	}
}
