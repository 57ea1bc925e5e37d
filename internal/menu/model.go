package menu

import "time"

const (
	StatusAvailable   = "AVAILABLE"
	StatusUnavailable = "UNAVAILABLE"
)

type Item struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	// Price is kept as text to carry NUMERIC without rounding.
	Price     string    `json:"price"`
	Status    string    `json:"status"`
	Images    []string  `json:"images"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListResponse represents the paginated response of menu items.
// swagger:model MenuListResponse
type ListResponse struct {
	// search query applied
	Q        string `json:"q,omitempty"`
	Category string `json:"category,omitempty"`
	Limit    int    `json:"limit"`
	Offset   int    `json:"offset"`
	Items    []Item `json:"items"`
}

// CreateItemRequest payload of creation.
// swagger:model CreateMenuItemRequest
type CreateItemRequest struct {
	Name     string   `json:"name"     example:"Margherita"`
	Category string   `json:"category" example:"Pizza"`
	Price    string   `json:"price"    example:"8.50"`
	Status   string   `json:"status"   example:"AVAILABLE"`
	Images   []string `json:"images"`
}

// UpdateItemRequest payload of partial update. Omitted fields keep their value.
// swagger:model UpdateMenuItemRequest
type UpdateItemRequest struct {
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Price    string   `json:"price"`
	Status   string   `json:"status"`
	Images   []string `json:"images"`
}

// ValidStatus reports whether s is a menu item status.
func ValidStatus(s string) bool {
	return s == StatusAvailable || s == StatusUnavailable
}
