package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/Suldaanka/dashboard/internal/database"
)

var (
	ErrNotFound            = errors.New("order not found")
	ErrDestinationNotFound = errors.New("destination not found")
	ErrPaymentNotFound     = errors.New("payment not found")
)

// Repository is the order store. Multi-row mutations go through WithinTx.
type Repository interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
	GetByID(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context, q ListQuery) ([]Order, error)
}

// Tx is the set of statements the order service issues inside one
// transaction. Lock* methods take row locks held until commit.
type Tx interface {
	LockDestination(ctx context.Context, d Destination) (status string, err error)
	SetDestinationStatus(ctx context.Context, d Destination, status string) error
	OpenOrders(ctx context.Context, d Destination) ([]Order, error)
	// OrderDestination reads an order's destination without locking.
	OrderDestination(ctx context.Context, id string) (Destination, error)
	InsertOrder(ctx context.Context, o *Order) error
	LockOrder(ctx context.Context, id string) (*Order, error)
	Items(ctx context.Context, orderID string) ([]Item, error)
	InsertItem(ctx context.Context, it Item) error
	UpdateItem(ctx context.Context, it Item) error
	SetTotal(ctx context.Context, orderID string, total decimal.Decimal) error
	SetStatus(ctx context.Context, orderID string, s Status) error
	SetPayment(ctx context.Context, orderID, paymentID string) error
	PaymentExists(ctx context.Context, paymentID string) (bool, error)
	DeleteOrder(ctx context.Context, id string) error
	// SettlePaid frees the table and completes the payment; nil ids are skipped.
	SettlePaid(ctx context.Context, tableID, paymentID *string) error
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	return database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(&pgTx{tx: tx})
	})
}

const orderColumns = `id, user_id, table_id, room_id, payment_id, status, total::text, created_at, updated_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var (
		o     Order
		total string
	)
	if err := row.Scan(&o.ID, &o.UserID, &o.TableID, &o.RoomID, &o.PaymentID,
		&o.Status, &total, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	d, err := decimal.NewFromString(total)
	if err != nil {
		return nil, fmt.Errorf("order %s total %q: %w", o.ID, total, err)
	}
	o.Total = d
	return &o, nil
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	o, err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	err = r.db.QueryRow(ctx, `
		SELECT COALESCE('Table ' || t.number::text, 'Room ' || r.number, '')
		FROM orders o
		LEFT JOIN tables t ON t.id = o.table_id
		LEFT JOIN rooms r ON r.id = o.room_id
		WHERE o.id = $1
	`, id).Scan(&o.Label)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT oi.id, oi.order_id, oi.menu_item_id, COALESCE(m.name, ''), oi.quantity, oi.price::text
		FROM order_items oi
		LEFT JOIN menu_items m ON m.id = oi.menu_item_id
		WHERE oi.order_id = $1
		ORDER BY m.name, oi.id
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			it    Item
			price string
		)
		if err := rows.Scan(&it.ID, &it.OrderID, &it.MenuItemID, &it.Name, &it.Quantity, &price); err != nil {
			return nil, err
		}
		if it.Price, err = decimal.NewFromString(price); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, it)
	}
	return o, rows.Err()
}

func (r *PGRepo) List(ctx context.Context, q ListQuery) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, string(q.Status), q.Limit, q.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

type pgTx struct{ tx pgx.Tx }

// destTable returns the registry table for d; Kind is validated by the service.
func destTable(d Destination) string {
	if d.Kind == DestRoom {
		return "rooms"
	}
	return "tables"
}

func destColumn(d Destination) string {
	if d.Kind == DestRoom {
		return "room_id"
	}
	return "table_id"
}

func (t *pgTx) LockDestination(ctx context.Context, d Destination) (string, error) {
	var status string
	err := t.tx.QueryRow(ctx, `SELECT status FROM `+destTable(d)+` WHERE id=$1 FOR UPDATE`, d.ID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrDestinationNotFound
	}
	return status, err
}

func (t *pgTx) SetDestinationStatus(ctx context.Context, d Destination, status string) error {
	tag, err := t.tx.Exec(ctx, `UPDATE `+destTable(d)+` SET status=$2, updated_at=NOW() WHERE id=$1`, d.ID, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDestinationNotFound
	}
	return nil
}

func (t *pgTx) OpenOrders(ctx context.Context, d Destination) ([]Order, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE `+destColumn(d)+` = $1 AND status = ANY($2)
		FOR UPDATE
	`, d.ID, []string{string(StatusPending), string(StatusInProgress), string(StatusServed)})
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (t *pgTx) OrderDestination(ctx context.Context, id string) (Destination, error) {
	var tableID, roomID *string
	err := t.tx.QueryRow(ctx, `SELECT table_id, room_id FROM orders WHERE id=$1`, id).Scan(&tableID, &roomID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Destination{}, ErrNotFound
	}
	if err != nil {
		return Destination{}, err
	}
	o := Order{TableID: tableID, RoomID: roomID}
	return o.Destination(), nil
}

func (t *pgTx) InsertOrder(ctx context.Context, o *Order) error {
	return t.tx.QueryRow(ctx, `
		INSERT INTO orders (id, user_id, table_id, room_id, status, total, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,NOW(),NOW())
		RETURNING created_at, updated_at
	`, o.ID, o.UserID, o.TableID, o.RoomID, string(o.Status), o.Total).Scan(&o.CreatedAt, &o.UpdatedAt)
}

func (t *pgTx) LockOrder(ctx context.Context, id string) (*Order, error) {
	o, err := scanOrder(t.tx.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return o, err
}

func (t *pgTx) Items(ctx context.Context, orderID string) ([]Item, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT id, order_id, menu_item_id, quantity, price::text
		FROM order_items WHERE order_id=$1
		ORDER BY id
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Item
	for rows.Next() {
		var (
			it    Item
			price string
		)
		if err := rows.Scan(&it.ID, &it.OrderID, &it.MenuItemID, &it.Quantity, &price); err != nil {
			return nil, err
		}
		if it.Price, err = decimal.NewFromString(price); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (t *pgTx) InsertItem(ctx context.Context, it Item) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO order_items (id, order_id, menu_item_id, quantity, price)
		VALUES ($1,$2,$3,$4,$5)
	`, it.ID, it.OrderID, it.MenuItemID, it.Quantity, it.Price)
	return err
}

func (t *pgTx) UpdateItem(ctx context.Context, it Item) error {
	_, err := t.tx.Exec(ctx, `UPDATE order_items SET quantity=$2, price=$3 WHERE id=$1`,
		it.ID, it.Quantity, it.Price)
	return err
}

func (t *pgTx) SetTotal(ctx context.Context, orderID string, total decimal.Decimal) error {
	_, err := t.tx.Exec(ctx, `UPDATE orders SET total=$2, updated_at=NOW() WHERE id=$1`, orderID, total)
	return err
}

func (t *pgTx) SetStatus(ctx context.Context, orderID string, s Status) error {
	tag, err := t.tx.Exec(ctx, `UPDATE orders SET status=$2, updated_at=NOW() WHERE id=$1`, orderID, string(s))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *pgTx) SetPayment(ctx context.Context, orderID, paymentID string) error {
	_, err := t.tx.Exec(ctx, `UPDATE orders SET payment_id=$2, updated_at=NOW() WHERE id=$1`, orderID, paymentID)
	return err
}

func (t *pgTx) PaymentExists(ctx context.Context, paymentID string) (bool, error) {
	var ok bool
	err := t.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM payments WHERE id=$1)`, paymentID).Scan(&ok)
	return ok, err
}

func (t *pgTx) DeleteOrder(ctx context.Context, id string) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM orders WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SettlePaid sends both updates in one batch round trip and checks that each
// touched a row.
func (t *pgTx) SettlePaid(ctx context.Context, tableID, paymentID *string) error {
	b := &pgx.Batch{}
	var missing []error
	if tableID != nil {
		b.Queue(`UPDATE tables SET status=$2, updated_at=NOW() WHERE id=$1`, *tableID, DestAvailable)
		missing = append(missing, ErrDestinationNotFound)
	}
	if paymentID != nil {
		b.Queue(`UPDATE payments SET status='COMPLETED', updated_at=NOW() WHERE id=$1`, *paymentID)
		missing = append(missing, ErrPaymentNotFound)
	}
	if b.Len() == 0 {
		return nil
	}

	br := t.tx.SendBatch(ctx, b)
	for _, notFound := range missing {
		tag, err := br.Exec()
		if err != nil {
			_ = br.Close()
			return err
		}
		if tag.RowsAffected() == 0 {
			_ = br.Close()
			return notFound
		}
	}
	return br.Close()
}
