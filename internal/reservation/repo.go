package reservation

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Suldaanka/dashboard/internal/database"
)

var (
	ErrNotFound = errors.New("booking not found")
	ErrNoRoom   = errors.New("no available room")
)

type Repository interface {
	// Book picks a free room of roomType for the booking's dates, inserts b
	// and marks the room OCCUPIED.
	Book(ctx context.Context, b *Booking, roomType string) error
	// Sweep completes open bookings checking out on or before day and frees
	// their rooms. It returns the number of bookings completed.
	Sweep(ctx context.Context, day time.Time) (int, error)
	List(ctx context.Context) ([]Booking, error)
	SetStatus(ctx context.Context, id, status string) (*Booking, error)
	Delete(ctx context.Context, id string) error
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

const columns = `b.id, b.user_id, b.room_id, COALESCE(r.number, ''), b.full_name, b.phone, b.guests,
	b.check_in, b.check_out, b.status, b.created_at, b.updated_at`

func scan(row pgx.Row) (*Booking, error) {
	var b Booking
	err := row.Scan(&b.ID, &b.UserID, &b.RoomID, &b.RoomNo, &b.FullName, &b.Phone, &b.Guests,
		&b.CheckIn, &b.CheckOut, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *PGRepo) Book(ctx context.Context, b *Booking, roomType string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			SELECT r.id, r.number FROM rooms r
			WHERE r.type = $1 AND r.status = 'AVAILABLE'
			  AND NOT EXISTS (
			    SELECT 1 FROM bookings o
			    WHERE o.room_id = r.id
			      AND o.status NOT IN ('COMPLETED', 'CANCELLED')
			      AND o.check_in < $3 AND o.check_out > $2)
			ORDER BY r.number
			LIMIT 1
			FOR UPDATE OF r SKIP LOCKED
		`, roomType, b.CheckIn, b.CheckOut).Scan(&b.RoomID, &b.RoomNo)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNoRoom
		}
		if err != nil {
			return err
		}

		if err := tx.QueryRow(ctx, `
			INSERT INTO bookings (id, user_id, room_id, full_name, phone, guests, check_in, check_out, status, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NOW(),NOW())
			RETURNING created_at, updated_at
		`, b.ID, b.UserID, b.RoomID, b.FullName, b.Phone, b.Guests, b.CheckIn, b.CheckOut, b.Status,
		).Scan(&b.CreatedAt, &b.UpdatedAt); err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `UPDATE rooms SET status='OCCUPIED', updated_at=NOW() WHERE id=$1`, b.RoomID)
		return err
	})
}

func (r *PGRepo) Sweep(ctx context.Context, day time.Time) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var n int
	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			UPDATE bookings SET status='COMPLETED', updated_at=NOW()
			WHERE check_out <= $1 AND status NOT IN ('COMPLETED', 'CANCELLED')
			RETURNING room_id
		`, day)
		if err != nil {
			return err
		}
		rooms, err := pgx.CollectRows(rows, pgx.RowTo[string])
		if err != nil {
			return err
		}
		n = len(rooms)
		if n == 0 {
			return nil
		}
		_, err = tx.Exec(ctx, `UPDATE rooms SET status='AVAILABLE', updated_at=NOW() WHERE id = ANY($1)`, rooms)
		return err
	})
	return n, err
}

func (r *PGRepo) List(ctx context.Context) ([]Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT `+columns+`
		FROM bookings b LEFT JOIN rooms r ON r.id = b.room_id
		ORDER BY b.created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Booking{}
	for rows.Next() {
		b, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// SetStatus changes a booking's status. Moving it to a closed status frees
// the room in the same transaction.
func (r *PGRepo) SetStatus(ctx context.Context, id, status string) (*Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var out *Booking
	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		var roomID, prev string
		err := tx.QueryRow(ctx, `SELECT room_id, status FROM bookings WHERE id=$1 FOR UPDATE`, id).Scan(&roomID, &prev)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `UPDATE bookings SET status=$2, updated_at=NOW() WHERE id=$1`, id, status); err != nil {
			return err
		}
		if Closed(status) && !Closed(prev) {
			if _, err := tx.Exec(ctx, `UPDATE rooms SET status='AVAILABLE', updated_at=NOW() WHERE id=$1`, roomID); err != nil {
				return err
			}
		}
		out, err = scan(tx.QueryRow(ctx, `
			SELECT `+columns+` FROM bookings b LEFT JOIN rooms r ON r.id = b.room_id WHERE b.id=$1`, id))
		return err
	})
	return out, err
}

// Delete removes a booking and frees its room if the booking still held it.
func (r *PGRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		var roomID, status string
		err := tx.QueryRow(ctx, `DELETE FROM bookings WHERE id=$1 RETURNING room_id, status`, id).Scan(&roomID, &status)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if Closed(status) {
			return nil
		}
		_, err = tx.Exec(ctx, `UPDATE rooms SET status='AVAILABLE', updated_at=NOW() WHERE id=$1`, roomID)
		return err
	})
}
