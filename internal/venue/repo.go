package venue

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("number already in use")
	ErrInUse     = errors.New("referenced by orders or bookings")
)

type Repository interface {
	CreateTable(ctx context.Context, t *Table) error
	ListTables(ctx context.Context) ([]Table, error)
	SetTableStatus(ctx context.Context, id, status string) (*Table, error)
	DeleteTable(ctx context.Context, id string) error

	CreateRoom(ctx context.Context, r *Room) error
	ListRooms(ctx context.Context, status string) ([]Room, error)
	GetRoom(ctx context.Context, id string) (*Room, error)
	UpdateRoom(ctx context.Context, r *Room) (*Room, error)
	DeleteRoom(ctx context.Context, id string) error
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

// mapErr turns constraint violations into the package's sentinel errors.
func mapErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return ErrDuplicate
		case "23503":
			return ErrInUse
		}
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

const tableColumns = `id, number, capacity, status, created_at, updated_at`

func scanTable(row pgx.Row) (*Table, error) {
	var t Table
	if err := row.Scan(&t.ID, &t.Number, &t.Capacity, &t.Status, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	return &t, nil
}

func (r *PGRepo) CreateTable(ctx context.Context, t *Table) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		INSERT INTO tables (id, number, capacity, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,NOW(),NOW())
		RETURNING created_at, updated_at
	`, t.ID, t.Number, t.Capacity, t.Status).Scan(&t.CreatedAt, &t.UpdatedAt)
	return mapErr(err)
}

func (r *PGRepo) ListTables(ctx context.Context) ([]Table, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `SELECT `+tableColumns+` FROM tables ORDER BY number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Table{}
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (r *PGRepo) SetTableStatus(ctx context.Context, id, status string) (*Table, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return scanTable(r.db.QueryRow(ctx, `
		UPDATE tables SET status=$2, updated_at=NOW() WHERE id=$1
		RETURNING `+tableColumns, id, status))
}

func (r *PGRepo) DeleteTable(ctx context.Context, id string) error {
	return r.delete(ctx, `DELETE FROM tables WHERE id=$1`, id)
}

func (r *PGRepo) delete(ctx context.Context, sql, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, sql, id)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const roomColumns = `id, number, type, price::text, status, created_at, updated_at`

func scanRoom(row pgx.Row) (*Room, error) {
	var rm Room
	if err := row.Scan(&rm.ID, &rm.Number, &rm.Type, &rm.Price, &rm.Status, &rm.CreatedAt, &rm.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	return &rm, nil
}

func (r *PGRepo) CreateRoom(ctx context.Context, rm *Room) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		INSERT INTO rooms (id, number, type, price, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,NOW(),NOW())
		RETURNING created_at, updated_at
	`, rm.ID, rm.Number, rm.Type, rm.Price, rm.Status).Scan(&rm.CreatedAt, &rm.UpdatedAt)
	return mapErr(err)
}

func (r *PGRepo) ListRooms(ctx context.Context, status string) ([]Room, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT `+roomColumns+` FROM rooms
		WHERE ($1 = '' OR status = $1)
		ORDER BY number
	`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Room{}
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rm)
	}
	return out, rows.Err()
}

func (r *PGRepo) GetRoom(ctx context.Context, id string) (*Room, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return scanRoom(r.db.QueryRow(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id=$1`, id))
}

// UpdateRoom overwrites the non-empty fields of rm and returns the stored row.
func (r *PGRepo) UpdateRoom(ctx context.Context, rm *Room) (*Room, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return scanRoom(r.db.QueryRow(ctx, `
		UPDATE rooms
		SET number = COALESCE(NULLIF($2,''), number),
		    type = COALESCE(NULLIF($3,''), type),
		    price = COALESCE(NULLIF($4,'')::numeric, price),
		    status = COALESCE(NULLIF($5,''), status),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING `+roomColumns, rm.ID, rm.Number, rm.Type, rm.Price, rm.Status))
}

func (r *PGRepo) DeleteRoom(ctx context.Context, id string) error {
	return r.delete(ctx, `DELETE FROM rooms WHERE id=$1`, id)
}
