package reservation

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Suldaanka/dashboard/internal/apperr"
)

type Service struct {
	repo  Repository
	now   func() time.Time
	newID func() string
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now, newID: uuid.NewString}
}

// WithClock replaces the clock used to decide which stays have ended.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Create(ctx context.Context, userID string, req CreateRequest) (*Booking, error) {
	roomType := strings.ToUpper(strings.TrimSpace(req.RoomType))
	name := strings.TrimSpace(req.FullName)
	if roomType == "" || name == "" {
		return nil, apperr.Validation("room_type and full_name are required")
	}
	in, err := time.Parse(DateLayout, req.CheckIn)
	if err != nil {
		return nil, apperr.Validation("check_in must be YYYY-MM-DD")
	}
	out, err := time.Parse(DateLayout, req.CheckOut)
	if err != nil {
		return nil, apperr.Validation("check_out must be YYYY-MM-DD")
	}
	if !out.After(in) {
		return nil, apperr.Validation("check_out must be after check_in")
	}
	guests := req.Guests
	if guests == 0 {
		guests = 1
	}
	if guests < 0 {
		return nil, apperr.Validation("guests must be positive")
	}

	b := &Booking{
		ID:       s.newID(),
		UserID:   userID,
		FullName: name,
		Phone:    strings.TrimSpace(req.Phone),
		Guests:   guests,
		CheckIn:  in,
		CheckOut: out,
		Status:   StatusPending,
	}
	err = s.repo.Book(ctx, b, roomType)
	if errors.Is(err, ErrNoRoom) {
		return nil, apperr.NotFound("no available %s room for %s to %s", roomType, req.CheckIn, req.CheckOut)
	}
	if err != nil {
		return nil, apperr.From(err, "create booking")
	}
	return b, nil
}

// List completes finished stays first so the listing reflects them.
func (s *Service) List(ctx context.Context) ([]Booking, error) {
	n, err := s.repo.Sweep(ctx, today(s.now()))
	if err != nil {
		return nil, apperr.From(err, "complete finished bookings")
	}
	if n > 0 {
		slog.Info("bookings completed", "count", n)
	}
	out, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperr.From(err, "list bookings")
	}
	return out, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id, status string) (*Booking, error) {
	status = strings.ToUpper(strings.TrimSpace(status))
	if !ValidStatus(status) {
		return nil, apperr.Validation("invalid booking status %q", status)
	}
	b, err := s.repo.SetStatus(ctx, id, status)
	if errors.Is(err, ErrNotFound) {
		return nil, apperr.NotFound("booking %s not found", id)
	}
	if err != nil {
		return nil, apperr.From(err, "update booking")
	}
	return b, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("booking %s not found", id)
	}
	if err != nil {
		return apperr.From(err, "delete booking")
	}
	return nil
}

func today(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
