package order

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Suldaanka/dashboard/internal/apperr"
)

func newMenuServer(t *testing.T, items map[string]MenuItemDTO) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/menu/", func(w http.ResponseWriter, r *http.Request) {
		id := path.Base(r.URL.Path)
		if id == "boom" {
			http.Error(w, `{"error":"db down"}`, http.StatusInternalServerError)
			return
		}
		it, ok := items[id]
		if !ok {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(it)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestMenuClient_Lookup(t *testing.T) {
	srv := newMenuServer(t, map[string]MenuItemDTO{
		"m1": {ID: "m1", Name: "Pizza", Price: "5.00", Status: MenuAvailable},
	})
	c := NewMenuClient(srv.URL, 2*time.Second)
	ctx := context.Background()

	it, err := c.Lookup(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "Pizza", it.Name)
	assert.Equal(t, "5.00", it.Price)

	_, err = c.Lookup(ctx, "nope")
	assert.ErrorIs(t, err, ErrUnknownMenuItem)

	_, err = c.Lookup(ctx, "boom")
	assert.True(t, apperr.Is(err, apperr.ReasonUnavailable), "got %v", err)
}

func TestMenuClient_Unreachable(t *testing.T) {
	srv := newMenuServer(t, nil)
	url := srv.URL
	srv.Close()

	_, err := NewMenuClient(url, time.Second).Lookup(context.Background(), "m1")
	assert.True(t, apperr.Is(err, apperr.ReasonUnavailable), "got %v", err)
}
