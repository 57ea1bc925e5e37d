// Package venue is the registry of tables and rooms that orders and bookings
// are placed on.
package venue

import (
	"strings"
	"time"
)

const (
	StatusAvailable   = "AVAILABLE"
	StatusOccupied    = "OCCUPIED"
	StatusReserved    = "RESERVED"
	StatusMaintenance = "MAINTENANCE"
)

var (
	tableStatuses = []string{StatusAvailable, StatusOccupied, StatusReserved}
	roomStatuses  = []string{StatusAvailable, StatusOccupied, StatusMaintenance}
)

type Table struct {
	ID        string    `json:"id"`
	Number    int       `json:"number"`
	Capacity  int       `json:"capacity"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Room struct {
	ID     string `json:"id"`
	Number string `json:"number"`
	Type   string `json:"type"`
	// Price per night, NUMERIC as text.
	Price     string    `json:"price"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableRequest payload to create a table.
// swagger:model TableRequest
type TableRequest struct {
	Number   int    `json:"number"   example:"4"`
	Capacity int    `json:"capacity" example:"6"`
	Status   string `json:"status"   example:"AVAILABLE"`
}

// RoomRequest payload to create or update a room. On update, empty fields keep their value.
// swagger:model RoomRequest
type RoomRequest struct {
	Number string `json:"number" example:"101"`
	Type   string `json:"type"   example:"DOUBLE"`
	Price  string `json:"price"  example:"80.00"`
	Status string `json:"status" example:"AVAILABLE"`
}

// StatusRequest payload of an explicit status change.
// swagger:model StatusRequest
type StatusRequest struct {
	Status string `json:"status" example:"OCCUPIED"`
}

// NormalizeStatus upper-cases s, the form every status is stored in.
func NormalizeStatus(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }

func ValidTableStatus(s string) bool { return contains(tableStatuses, s) }

func ValidRoomStatus(s string) bool { return contains(roomStatuses, s) }

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
