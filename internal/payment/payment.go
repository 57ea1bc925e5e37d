// Package payment is the payment ledger orders link to.
package payment

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const (
	StatusPending   = "PENDING"
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
)

var ErrNotFound = errors.New("payment not found")

func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusCompleted || s == StatusFailed
}

type Payment struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Amount    decimal.Decimal `json:"amount"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// CreateRequest payload of a new payment. Status defaults to PENDING.
// swagger:model CreatePaymentRequest
type CreateRequest struct {
	Amount decimal.Decimal `json:"amount" swaggertype:"string" example:"25.50"`
	Status string          `json:"status,omitempty" example:"PENDING"`
}

// StatusRequest payload of a payment status change.
// swagger:model PaymentStatusRequest
type StatusRequest struct {
	Status string `json:"status" example:"COMPLETED"`
}

type Repository interface {
	Create(ctx context.Context, p *Payment) error
	List(ctx context.Context, limit, offset int) ([]Payment, error)
	SetStatus(ctx context.Context, id, status string) (*Payment, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

const columns = `id, user_id, amount::text, status, created_at, updated_at`

func scan(row pgx.Row) (*Payment, error) {
	var (
		p      Payment
		amount string
	)
	if err := row.Scan(&p.ID, &p.UserID, &amount, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, err
	}
	p.Amount = d
	return &p, nil
}

func (r *PGRepo) Create(ctx context.Context, p *Payment) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.db.QueryRow(ctx, `
		INSERT INTO payments (id, user_id, amount, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,NOW(),NOW())
		RETURNING created_at, updated_at
	`, p.ID, p.UserID, p.Amount, p.Status).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *PGRepo) List(ctx context.Context, limit, offset int) ([]Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT `+columns+` FROM payments
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Payment{}
	for rows.Next() {
		p, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *PGRepo) SetStatus(ctx context.Context, id, status string) (*Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return scan(r.db.QueryRow(ctx, `
		UPDATE payments SET status=$2, updated_at=NOW() WHERE id=$1
		RETURNING `+columns, id, status))
}
