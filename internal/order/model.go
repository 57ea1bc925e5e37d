package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusServed     Status = "SERVED"
	StatusCancelled  Status = "CANCELLED"
	StatusPaid       Status = "IS_PAYED"
)

// OpenStatuses are the statuses of an order that still accepts items.
var OpenStatuses = []Status{StatusPending, StatusInProgress, StatusServed}

type Order struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	TableID   *string         `json:"table_id,omitempty"`
	RoomID    *string         `json:"room_id,omitempty"`
	PaymentID *string         `json:"payment_id,omitempty"`
	Status    Status          `json:"status"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Items     []Item          `json:"items,omitempty"`
	// Label is the human name of the destination, e.g. "Table 4". Filled by reads.
	Label string `json:"destination,omitempty"`
}

// Destination returns where the order was placed.
func (o *Order) Destination() Destination {
	if o.TableID != nil {
		return Destination{Kind: DestTable, ID: *o.TableID}
	}
	if o.RoomID != nil {
		return Destination{Kind: DestRoom, ID: *o.RoomID}
	}
	return Destination{}
}

// Item is one line of an order. Price is the line's accumulated monetary
// contribution, not a unit price.
type Item struct {
	ID         string          `json:"id"`
	OrderID    string          `json:"order_id"`
	MenuItemID string          `json:"menu_item_id"`
	Name       string          `json:"name,omitempty"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
}

type DestKind string

const (
	DestTable DestKind = "table"
	DestRoom  DestKind = "room"
)

type Destination struct {
	Kind DestKind
	ID   string
}

func (d Destination) String() string { return string(d.Kind) + ":" + d.ID }

// Destination statuses written by the order service.
const (
	DestAvailable   = "AVAILABLE"
	DestOccupied    = "OCCUPIED"
	DestMaintenance = "MAINTENANCE"
)

// ListQuery filters the order list.
type ListQuery struct {
	Status Status
	Limit  int
	Offset int
}
