// Package reservation books hotel rooms and completes stays whose check-out
// date has passed.
package reservation

import "time"

const (
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
)

// DateLayout is the wire format of check-in and check-out dates.
const DateLayout = "2006-01-02"

func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Closed reports whether a booking in status s no longer holds its room.
func Closed(s string) bool { return s == StatusCompleted || s == StatusCancelled }

type Booking struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	RoomID    string    `json:"room_id"`
	RoomNo    string    `json:"room_number,omitempty"`
	FullName  string    `json:"full_name"`
	Phone     string    `json:"phone,omitempty"`
	Guests    int       `json:"guests"`
	CheckIn   time.Time `json:"check_in"`
	CheckOut  time.Time `json:"check_out"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateRequest payload of a booking. A free room of RoomType is picked.
// swagger:model CreateReservationRequest
type CreateRequest struct {
	RoomType string `json:"room_type" example:"DOUBLE"`
	FullName string `json:"full_name" example:"Amina Warsame"`
	Phone    string `json:"phone"     example:"+252 61 000 0000"`
	Guests   int    `json:"guests"    example:"2"`
	CheckIn  string `json:"check_in"  example:"2024-05-01"`
	CheckOut string `json:"check_out" example:"2024-05-04"`
}

// StatusRequest payload of a booking status change.
// swagger:model ReservationStatusRequest
type StatusRequest struct {
	Status string `json:"status" example:"CONFIRMED"`
}
