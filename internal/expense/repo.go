package expense

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrDuplicate       = errors.New("category name already in use")
	ErrUnknownCategory = errors.New("category does not exist")
)

type Repository interface {
	CreateCategory(ctx context.Context, c *Category) error
	ListCategories(ctx context.Context) ([]Category, error)

	Create(ctx context.Context, e *Expense) error
	// List returns expenses newest first with their category name resolved.
	List(ctx context.Context) ([]Expense, error)
	Update(ctx context.Context, e *Expense) (*Expense, error)
	Delete(ctx context.Context, id string) error
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func mapErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return ErrDuplicate
		case "23503":
			return ErrUnknownCategory
		}
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (r *PGRepo) CreateCategory(ctx context.Context, c *Category) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		INSERT INTO expense_categories (id, name, created_at)
		VALUES ($1,$2,NOW())
		RETURNING created_at
	`, c.ID, c.Name).Scan(&c.CreatedAt)
	return mapErr(err)
}

func (r *PGRepo) ListCategories(ctx context.Context) ([]Category, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `SELECT id, name, created_at FROM expense_categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Category, error) {
		var c Category
		err := row.Scan(&c.ID, &c.Name, &c.CreatedAt)
		return c, err
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []Category{}
	}
	return out, nil
}

// selectJoined reads rows of the CTE or table e joined to their category.
const selectJoined = `
	SELECT e.id, e.description, e.category_id, COALESCE(c.name, '` + UnknownCategory + `'),
	       e.amount::text, e.type, e.paid_by, e.date, e.created_at, e.updated_at
	FROM e LEFT JOIN expense_categories c ON c.id = e.category_id`

func scanExpense(row pgx.Row) (*Expense, error) {
	var e Expense
	err := row.Scan(&e.ID, &e.Description, &e.CategoryID, &e.CategoryName,
		&e.Amount, &e.Type, &e.PaidBy, &e.Date, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &e, nil
}

func (r *PGRepo) Create(ctx context.Context, e *Expense) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	out, err := scanExpense(r.db.QueryRow(ctx, `
		WITH e AS (
			INSERT INTO expenses (id, description, category_id, amount, type, paid_by, date, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,COALESCE($7, NOW()),NOW(),NOW())
			RETURNING *
		)`+selectJoined,
		e.ID, e.Description, e.CategoryID, e.Amount, e.Type, e.PaidBy, nullTime(e.Date)))
	if err != nil {
		return err
	}
	*e = *out
	return nil
}

func (r *PGRepo) List(ctx context.Context) ([]Expense, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `WITH e AS (SELECT * FROM expenses)`+selectJoined+`
		ORDER BY e.date DESC, e.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// Update always sets description and amount; empty category and type and a
// zero date keep the stored value.
func (r *PGRepo) Update(ctx context.Context, e *Expense) (*Expense, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return scanExpense(r.db.QueryRow(ctx, `
		WITH e AS (
			UPDATE expenses SET
				description = $2,
				amount      = $3,
				category_id = COALESCE(NULLIF($4, ''), category_id),
				type        = COALESCE(NULLIF($5, ''), type),
				date        = COALESCE($6, date),
				updated_at  = NOW()
			WHERE id = $1
			RETURNING *
		)`+selectJoined,
		e.ID, e.Description, e.Amount, e.CategoryID, e.Type, nullTime(e.Date)))
}

func (r *PGRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM expenses WHERE id=$1`, id)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
