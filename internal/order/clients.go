package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/Suldaanka/dashboard/internal/apperr"
)

// ErrUnknownMenuItem is returned by a Catalog for ids it does not know.
var ErrUnknownMenuItem = errors.New("unknown menu item")

const MenuAvailable = "AVAILABLE"

type MenuItemDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Price    string `json:"price"`
	Status   string `json:"status"`
}

// Catalog resolves menu item ids to their current catalog entry.
type Catalog interface {
	Lookup(ctx context.Context, id string) (*MenuItemDTO, error)
}

// MenuClient reads the catalog from menu-service over HTTP.
type MenuClient struct {
	HTTP    *http.Client
	BaseURL string
}

func NewMenuClient(baseURL string, timeout time.Duration) *MenuClient {
	return &MenuClient{
		HTTP:    &http.Client{Timeout: timeout},
		BaseURL: baseURL,
	}
}

func (m *MenuClient) Lookup(ctx context.Context, id string) (*MenuItemDTO, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/menu/%s", m.BaseURL, url.PathEscape(id)), nil)
	if err != nil {
		return nil, err
	}
	res, err := m.HTTP.Do(req)
	if err != nil {
		return nil, apperr.Unavailable(err, "menu catalog unreachable")
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrUnknownMenuItem
	default:
		return nil, apperr.Unavailable(fmt.Errorf("menu lookup %s: %s", id, res.Status), "menu catalog error")
	}

	var item MenuItemDTO
	if err := json.NewDecoder(res.Body).Decode(&item); err != nil {
		return nil, apperr.Unavailable(err, "menu catalog returned an invalid body")
	}
	return &item, nil
}
