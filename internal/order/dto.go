package order

import "github.com/shopspring/decimal"

// SubmitOrderItem payload of one cart line.
// swagger:model SubmitOrderItem
type SubmitOrderItem struct {
	MenuItemID string `json:"menu_item_id" example:"4e7d4e5c-5cb9-4a3f-9f21-7e1a4f9f2b2a"`
	Quantity   int    `json:"quantity"     example:"2"`
	// Amount added to the line. Omit it to charge the catalog unit price times quantity.
	Price *decimal.Decimal `json:"price,omitempty" swaggertype:"string" example:"10.00"`
}

// SubmitOrderRequest payload of a cart submission. Exactly one of table_id and room_id.
// swagger:model SubmitOrderRequest
type SubmitOrderRequest struct {
	TableID string            `json:"table_id,omitempty" example:"b2f5ff47-2b1e-4f22-8a96-5f3c1f2f2e7b"`
	RoomID  string            `json:"room_id,omitempty"`
	Items   []SubmitOrderItem `json:"items"`
	// Client-side total; informational only, the stored total is recomputed.
	Total decimal.Decimal `json:"total,omitempty" swaggertype:"string" example:"10.00"`
}

// UpdateStatusRequest payload of a status change.
// swagger:model UpdateStatusRequest
type UpdateStatusRequest struct {
	Status string `json:"status" example:"IS_PAYED"`
}

// LinkPaymentRequest payload attaching a payment record to an order.
// swagger:model LinkPaymentRequest
type LinkPaymentRequest struct {
	PaymentID string `json:"payment_id" example:"0b8f5d0e-79a4-4c2c-9d3e-7f1ab2c3d4e5"`
}

// ListResponse represents a page of orders.
// swagger:model OrderListResponse
type ListResponse struct {
	Status string  `json:"status,omitempty"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
	Items  []Order `json:"items"`
}
