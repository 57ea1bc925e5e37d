package order

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Suldaanka/dashboard/internal/apperr"
	"github.com/Suldaanka/dashboard/internal/events"
	"github.com/Suldaanka/dashboard/internal/receipt"
)

// Service aggregates carts into orders and drives their status.
type Service struct {
	repo    Repository
	catalog Catalog
	events  events.Publisher
	newID   func() string
	now     func() time.Time

	releaseOnCancel bool
}

type Option func(*Service)

// WithReleaseOnCancel makes cancelling a table order free the table.
func WithReleaseOnCancel(v bool) Option { return func(s *Service) { s.releaseOnCancel = v } }

func WithIDGenerator(f func() string) Option { return func(s *Service) { s.newID = f } }

func WithClock(f func() time.Time) Option { return func(s *Service) { s.now = f } }

func NewService(repo Repository, catalog Catalog, pub events.Publisher, opts ...Option) *Service {
	if pub == nil {
		pub = events.Nop{}
	}
	s := &Service{
		repo:    repo,
		catalog: catalog,
		events:  pub,
		newID:   uuid.NewString,
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Submit merges a cart into the open order of its destination, creating the
// order when there is none. created reports which of the two happened.
func (s *Service) Submit(ctx context.Context, userID string, req SubmitOrderRequest) (o *Order, created bool, err error) {
	dest, err := destinationOf(req)
	if err != nil {
		return nil, false, err
	}
	lines, err := s.resolveLines(ctx, req.Items)
	if err != nil {
		return nil, false, err
	}

	err = s.repo.WithinTx(ctx, func(tx Tx) error {
		var err error
		o, created, err = s.resolve(ctx, tx, dest, userID)
		if err != nil {
			return err
		}
		existing, err := tx.Items(ctx, o.ID)
		if err != nil {
			return err
		}
		inserts, updates := Merge(o.ID, existing, lines, s.newID)
		for _, it := range inserts {
			if err := tx.InsertItem(ctx, it); err != nil {
				return err
			}
		}
		for _, it := range updates {
			if err := tx.UpdateItem(ctx, it); err != nil {
				return err
			}
		}

		items, err := tx.Items(ctx, o.ID)
		if err != nil {
			return err
		}
		o.Items = items
		o.Total = Total(items)
		return tx.SetTotal(ctx, o.ID, o.Total)
	})
	if err != nil {
		return nil, false, apperr.From(err, "submit order")
	}

	typ := events.OrderUpdated
	if created {
		typ = events.OrderCreated
	}
	s.publish(ctx, o, typ, "", userID)
	if !req.Total.IsZero() && !req.Total.Equal(o.Total) {
		slog.Info("client total differs from stored total",
			"order_id", o.ID, "client_total", req.Total.String(), "total", o.Total.String())
	}
	return o, created, nil
}

// resolve returns the single open order of dest, creating it if needed.
// The destination row stays locked until the transaction ends, which is what
// serializes concurrent carts for the same table or room.
func (s *Service) resolve(ctx context.Context, tx Tx, dest Destination, userID string) (*Order, bool, error) {
	status, err := tx.LockDestination(ctx, dest)
	if errors.Is(err, ErrDestinationNotFound) {
		return nil, false, apperr.NotFound("%s %s not found", dest.Kind, dest.ID)
	}
	if err != nil {
		return nil, false, err
	}
	if status == DestMaintenance {
		return nil, false, apperr.Conflict("%s %s is under maintenance", dest.Kind, dest.ID)
	}

	open, err := tx.OpenOrders(ctx, dest)
	if err != nil {
		return nil, false, err
	}
	switch len(open) {
	case 0:
	case 1:
		return &open[0], false, nil
	default:
		ids := make([]string, len(open))
		for i, o := range open {
			ids[i] = o.ID
		}
		slog.Error("multiple open orders", "destination", dest.String(), "orders", ids)
		return nil, false, apperr.Consistency(apperr.ReasonMultipleOpenOrders,
			"%s %s has %d open orders", dest.Kind, dest.ID, len(open))
	}

	o := &Order{
		ID:     s.newID(),
		UserID: userID,
		Status: StatusPending,
		Total:  decimal.Zero,
	}
	id := dest.ID
	if dest.Kind == DestTable {
		o.TableID = &id
	} else {
		o.RoomID = &id
	}
	if err := tx.InsertOrder(ctx, o); err != nil {
		return nil, false, err
	}
	if err := tx.SetDestinationStatus(ctx, dest, DestOccupied); err != nil {
		return nil, false, err
	}
	return o, true, nil
}

func destinationOf(req SubmitOrderRequest) (Destination, error) {
	table, room := strings.TrimSpace(req.TableID), strings.TrimSpace(req.RoomID)
	switch {
	case table != "" && room != "":
		return Destination{}, apperr.Validation("order must target a table or a room, not both")
	case table != "":
		return Destination{Kind: DestTable, ID: table}, nil
	case room != "":
		return Destination{Kind: DestRoom, ID: room}, nil
	default:
		return Destination{}, apperr.Validation("table_id or room_id is required")
	}
}

// resolveLines validates the requested items against the catalog. An omitted
// price is charged as catalog unit price times quantity.
func (s *Service) resolveLines(ctx context.Context, reqItems []SubmitOrderItem) ([]Line, error) {
	if len(reqItems) == 0 {
		return nil, apperr.Validation("items must not be empty")
	}
	lines := make([]Line, 0, len(reqItems))
	known := make(map[string]*MenuItemDTO)
	for i, it := range reqItems {
		id := strings.TrimSpace(it.MenuItemID)
		if id == "" {
			return nil, apperr.Validation("items[%d]: menu_item_id is required", i)
		}
		if it.Quantity <= 0 {
			return nil, apperr.Validation("items[%d]: quantity must be positive", i)
		}
		if it.Price != nil && it.Price.IsNegative() {
			return nil, apperr.Validation("items[%d]: price must not be negative", i)
		}

		m, ok := known[id]
		if !ok {
			var err error
			m, err = s.catalog.Lookup(ctx, id)
			if errors.Is(err, ErrUnknownMenuItem) {
				return nil, apperr.Validation("items[%d]: unknown menu item %s", i, id)
			}
			if err != nil {
				return nil, apperr.From(err, "menu lookup")
			}
			known[id] = m
		}
		if m.Status != "" && m.Status != MenuAvailable {
			return nil, apperr.Validation("items[%d]: menu item %s is %s", i, m.Name, m.Status)
		}

		var price decimal.Decimal
		if it.Price != nil {
			price = *it.Price
		} else {
			unit, err := decimal.NewFromString(m.Price)
			if err != nil {
				return nil, apperr.Unavailable(err, "menu item %s has an invalid price", id)
			}
			price = unit.Mul(decimal.NewFromInt(int64(it.Quantity)))
		}
		lines = append(lines, Line{MenuItemID: id, Quantity: it.Quantity, Price: price})
	}
	return lines, nil
}

// UpdateStatus moves an order to status and applies its side effects in the
// same transaction. An invalid status is rejected before anything is read.
func (s *Service) UpdateStatus(ctx context.Context, id, userID, status string) (*Order, error) {
	to := Status(status)
	if !to.Valid() {
		return nil, apperr.Validation("invalid status value %q", status)
	}

	var (
		o    *Order
		from Status
		noop bool
	)
	err := s.repo.WithinTx(ctx, func(tx Tx) error {
		var err error
		if o, err = lockOrder(ctx, tx, id); err != nil {
			return err
		}
		from = o.Status
		if noop, err = CheckTransition(from, to); err != nil || noop {
			return err
		}
		if err := tx.SetStatus(ctx, id, to); err != nil {
			return err
		}
		o.Status = to

		switch {
		case to == StatusPaid:
			var tableID *string
			if o.Destination().Kind == DestTable {
				tableID = o.TableID
			}
			err := tx.SettlePaid(ctx, tableID, o.PaymentID)
			if errors.Is(err, ErrPaymentNotFound) {
				return apperr.NotFound("payment %s not found", *o.PaymentID)
			}
			if errors.Is(err, ErrDestinationNotFound) {
				return apperr.NotFound("table %s not found", *o.TableID)
			}
			return err
		case to == StatusCancelled && s.releaseOnCancel:
			return releaseTable(ctx, tx, o)
		}
		return nil
	})
	if err != nil {
		return nil, apperr.From(err, "update order status")
	}
	if !noop {
		s.publish(ctx, o, events.OrderStatusChanged, from, userID)
	}
	return o, nil
}

// LinkPayment attaches an existing payment record to an open order.
func (s *Service) LinkPayment(ctx context.Context, id, userID, paymentID string) (*Order, error) {
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return nil, apperr.Validation("payment_id is required")
	}
	var o *Order
	err := s.repo.WithinTx(ctx, func(tx Tx) error {
		var err error
		if o, err = lockOrder(ctx, tx, id); err != nil {
			return err
		}
		if o.Status.Terminal() {
			return apperr.Conflict("order is already %s", o.Status)
		}
		ok, err := tx.PaymentExists(ctx, paymentID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound("payment %s not found", paymentID)
		}
		if err := tx.SetPayment(ctx, id, paymentID); err != nil {
			return err
		}
		o.PaymentID = &paymentID
		return nil
	})
	if err != nil {
		return nil, apperr.From(err, "link payment")
	}
	s.publish(ctx, o, events.OrderUpdated, "", userID)
	return o, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, apperr.NotFound("order %s not found", id)
	}
	if err != nil {
		return nil, apperr.From(err, "get order")
	}
	return o, nil
}

func (s *Service) List(ctx context.Context, q ListQuery) ([]Order, error) {
	if q.Status != "" && !q.Status.Valid() {
		return nil, apperr.Validation("invalid status filter %q", q.Status)
	}
	out, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, apperr.From(err, "list orders")
	}
	return out, nil
}

// Delete removes an order and its items. Deleting an open table order frees
// the table; a room stays with its booking.
func (s *Service) Delete(ctx context.Context, id, userID string) error {
	var o *Order
	err := s.repo.WithinTx(ctx, func(tx Tx) error {
		var err error
		if o, err = lockOrder(ctx, tx, id); err != nil {
			return err
		}
		if o.Status.Open() {
			if err := releaseTable(ctx, tx, o); err != nil {
				return err
			}
		}
		return tx.DeleteOrder(ctx, id)
	})
	if err != nil {
		return apperr.From(err, "delete order")
	}
	s.publish(ctx, o, events.OrderDeleted, "", userID)
	return nil
}

// Receipt returns the printable snapshot of an order. Cancelled orders have
// no receipt.
func (s *Service) Receipt(ctx context.Context, id string) (receipt.Snapshot, error) {
	o, err := s.Get(ctx, id)
	if err != nil {
		return receipt.Snapshot{}, err
	}
	if o.Status == StatusCancelled {
		return receipt.Snapshot{}, apperr.Conflict("order %s is cancelled", id)
	}
	items := make([]receipt.Item, len(o.Items))
	for i, it := range o.Items {
		items[i] = receipt.Item{Name: it.Name, Quantity: it.Quantity, Price: it.Price}
	}
	snap, err := receipt.Build(o.ID, o.Label, string(o.Status), o.CreatedAt, items)
	if err != nil {
		return receipt.Snapshot{}, apperr.Consistency(apperr.ReasonConflict, "order %s: %v", id, err)
	}
	return snap, nil
}

// lockOrder takes the order's destination lock before the order lock, the
// same order Submit takes them in.
func lockOrder(ctx context.Context, tx Tx, id string) (*Order, error) {
	dest, err := tx.OrderDestination(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, apperr.NotFound("order %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	if _, err := tx.LockDestination(ctx, dest); err != nil && !errors.Is(err, ErrDestinationNotFound) {
		return nil, err
	}
	o, err := tx.LockOrder(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, apperr.NotFound("order %s not found", id)
	}
	return o, err
}

// releaseTable frees o's table. Rooms are released by their booking.
func releaseTable(ctx context.Context, tx Tx, o *Order) error {
	if o.TableID == nil {
		return nil
	}
	return tx.SetDestinationStatus(ctx, o.Destination(), DestAvailable)
}

// publish runs after commit; a failed publish cannot undo the change, so it
// is only logged.
func (s *Service) publish(ctx context.Context, o *Order, typ string, old Status, userID string) {
	e := events.Event{
		Type:        typ,
		OrderID:     o.ID,
		Destination: o.Destination().String(),
		Status:      string(o.Status),
		OldStatus:   string(old),
		Total:       o.Total.StringFixed(2),
		ChangedBy:   userID,
		At:          s.now().UTC(),
	}
	if err := s.events.Publish(ctx, e); err != nil {
		slog.Warn("publish order event failed", "order_id", o.ID, "type", typ, "error", err)
	}
}
