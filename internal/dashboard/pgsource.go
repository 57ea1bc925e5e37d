package dashboard

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PGSource struct{ db *pgxpool.Pool }

func NewPGSource(db *pgxpool.Pool) *PGSource { return &PGSource{db: db} }

func (p *PGSource) byStatus(ctx context.Context, table string) (map[string]int, error) {
	rows, err := p.db.Query(ctx, `SELECT status, COUNT(*) FROM `+table+` GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]int{}
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[status] = n
	}
	return out, rows.Err()
}

func (p *PGSource) RoomsByStatus(ctx context.Context) (map[string]int, error) {
	return p.byStatus(ctx, "rooms")
}

func (p *PGSource) TablesByStatus(ctx context.Context) (map[string]int, error) {
	return p.byStatus(ctx, "tables")
}

func (p *PGSource) OrdersByStatus(ctx context.Context) (map[string]int, error) {
	return p.byStatus(ctx, "orders")
}

func (p *PGSource) CountBookings(ctx context.Context) (int, error) {
	var n int
	err := p.db.QueryRow(ctx, `SELECT COUNT(*) FROM bookings`).Scan(&n)
	return n, err
}

func decimalText(s string) (decimal.Decimal, error) { return decimal.NewFromString(s) }

func (p *PGSource) OrderRevenue(ctx context.Context) (decimal.Decimal, decimal.Decimal, error) {
	var t, r string
	err := p.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(total) FILTER (WHERE table_id IS NOT NULL), 0)::text,
		       COALESCE(SUM(total) FILTER (WHERE room_id IS NOT NULL), 0)::text
		FROM orders WHERE status <> 'CANCELLED'
	`).Scan(&t, &r)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	tables, err := decimalText(t)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	rooms, err := decimalText(r)
	return tables, rooms, err
}

func (p *PGSource) BookingRevenue(ctx context.Context) (decimal.Decimal, error) {
	var s string
	err := p.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(r.price * (b.check_out - b.check_in)), 0)::text
		FROM bookings b JOIN rooms r ON r.id = b.room_id
		WHERE b.status = 'COMPLETED'
	`).Scan(&s)
	if err != nil {
		return decimal.Zero, err
	}
	return decimalText(s)
}

func (p *PGSource) TodayRevenue(ctx context.Context, day time.Time) (decimal.Decimal, error) {
	var s string
	err := p.db.QueryRow(ctx, `
		SELECT (
			(SELECT COALESCE(SUM(total), 0) FROM orders
			 WHERE status <> 'CANCELLED' AND created_at >= $1)
			+
			(SELECT COALESCE(SUM(r.price * (b.check_out - b.check_in)), 0)
			 FROM bookings b JOIN rooms r ON r.id = b.room_id
			 WHERE b.status = 'COMPLETED' AND b.check_out = $2::date)
		)::text
	`, day, day.Format("2006-01-02")).Scan(&s)
	if err != nil {
		return decimal.Zero, err
	}
	return decimalText(s)
}

func (p *PGSource) RecentOrders(ctx context.Context, n int) ([]RecentOrder, error) {
	rows, err := p.db.Query(ctx, `
		SELECT o.id,
		       COALESCE('Table ' || t.number::text, 'Room ' || r.number, ''),
		       o.status, o.total::text, o.created_at
		FROM orders o
		LEFT JOIN tables t ON t.id = o.table_id
		LEFT JOIN rooms r ON r.id = o.room_id
		ORDER BY o.created_at DESC
		LIMIT $1
	`, n)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (RecentOrder, error) {
		var (
			o     RecentOrder
			total string
		)
		if err := row.Scan(&o.ID, &o.Destination, &o.Status, &total, &o.CreatedAt); err != nil {
			return o, err
		}
		d, err := decimalText(total)
		o.Total = d
		return o, err
	})
}

func (p *PGSource) RecentBookings(ctx context.Context, n int) ([]RecentBooking, error) {
	rows, err := p.db.Query(ctx, `
		SELECT b.id, b.full_name, COALESCE(r.number, ''), b.status, b.check_in, b.check_out
		FROM bookings b LEFT JOIN rooms r ON r.id = b.room_id
		ORDER BY b.created_at DESC
		LIMIT $1
	`, n)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (RecentBooking, error) {
		var b RecentBooking
		err := row.Scan(&b.ID, &b.FullName, &b.RoomNo, &b.Status, &b.CheckIn, &b.CheckOut)
		return b, err
	})
}
