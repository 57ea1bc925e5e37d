// Package dashboard aggregates the counters and revenue figures shown on the
// back-office home page.
package dashboard

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/Suldaanka/dashboard/internal/apperr"
)

type RoomCounts struct {
	Total       int `json:"total"`
	Occupied    int `json:"occupied"`
	Available   int `json:"available"`
	Maintenance int `json:"maintenance"`
}

type TableCounts struct {
	Total    int `json:"total"`
	Occupied int `json:"occupied"`
}

type OrderCounts struct {
	Total   int `json:"total"`
	Pending int `json:"pending"`
}

// Revenue splits non-cancelled order totals by destination and adds completed
// stays (nightly price times nights). Today covers orders placed since UTC
// midnight plus completed stays checking out today.
type Revenue struct {
	Restaurant decimal.Decimal `json:"restaurant"`
	RoomOrders decimal.Decimal `json:"room_orders"`
	Bookings   decimal.Decimal `json:"bookings"`
	Total      decimal.Decimal `json:"total"`
	Today      decimal.Decimal `json:"today"`
}

type RecentOrder struct {
	ID          string          `json:"id"`
	Destination string          `json:"destination"`
	Status      string          `json:"status"`
	Total       decimal.Decimal `json:"total"`
	CreatedAt   time.Time       `json:"created_at"`
}

type RecentBooking struct {
	ID       string    `json:"id"`
	FullName string    `json:"full_name"`
	RoomNo   string    `json:"room_number"`
	Status   string    `json:"status"`
	CheckIn  time.Time `json:"check_in"`
	CheckOut time.Time `json:"check_out"`
}

// Stats is the dashboard payload.
// swagger:model DashboardStats
type Stats struct {
	Rooms          RoomCounts      `json:"rooms"`
	Tables         TableCounts     `json:"tables"`
	Orders         OrderCounts     `json:"orders"`
	Bookings       int             `json:"bookings"`
	Revenue        Revenue         `json:"revenue"`
	RecentOrders   []RecentOrder   `json:"recent_orders"`
	RecentBookings []RecentBooking `json:"recent_bookings"`
}

// Source runs the individual dashboard queries.
type Source interface {
	RoomsByStatus(ctx context.Context) (map[string]int, error)
	TablesByStatus(ctx context.Context) (map[string]int, error)
	OrdersByStatus(ctx context.Context) (map[string]int, error)
	CountBookings(ctx context.Context) (int, error)
	// OrderRevenue sums non-cancelled order totals for tables and rooms.
	OrderRevenue(ctx context.Context) (tables, rooms decimal.Decimal, err error)
	BookingRevenue(ctx context.Context) (decimal.Decimal, error)
	// TodayRevenue sums revenue booked on day, which is a UTC midnight.
	TodayRevenue(ctx context.Context, day time.Time) (decimal.Decimal, error)
	RecentOrders(ctx context.Context, n int) ([]RecentOrder, error)
	RecentBookings(ctx context.Context, n int) ([]RecentBooking, error)
}

const recentLimit = 5

type Service struct {
	src Source
	now func() time.Time
}

type Option func(*Service)

// WithClock overrides the clock used to find today's date.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(src Source, opts ...Option) *Service {
	s := &Service{src: src, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Stats runs every query concurrently; the first failure cancels the rest.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	var (
		st                    Stats
		rooms, tables, orders map[string]int
		tablesRev, roomsRev   decimal.Decimal
	)
	today := s.now().UTC().Truncate(24 * time.Hour)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { rooms, err = s.src.RoomsByStatus(ctx); return })
	g.Go(func() (err error) { tables, err = s.src.TablesByStatus(ctx); return })
	g.Go(func() (err error) { orders, err = s.src.OrdersByStatus(ctx); return })
	g.Go(func() (err error) { st.Bookings, err = s.src.CountBookings(ctx); return })
	g.Go(func() (err error) { tablesRev, roomsRev, err = s.src.OrderRevenue(ctx); return })
	g.Go(func() (err error) { st.Revenue.Bookings, err = s.src.BookingRevenue(ctx); return })
	g.Go(func() (err error) { st.Revenue.Today, err = s.src.TodayRevenue(ctx, today); return })
	g.Go(func() (err error) { st.RecentOrders, err = s.src.RecentOrders(ctx, recentLimit); return })
	g.Go(func() (err error) { st.RecentBookings, err = s.src.RecentBookings(ctx, recentLimit); return })
	if err := g.Wait(); err != nil {
		return nil, apperr.From(err, "dashboard stats")
	}

	st.Rooms = RoomCounts{
		Total:       sum(rooms),
		Occupied:    rooms["OCCUPIED"],
		Available:   rooms["AVAILABLE"],
		Maintenance: rooms["MAINTENANCE"],
	}
	st.Tables = TableCounts{Total: sum(tables), Occupied: tables["OCCUPIED"]}
	st.Orders = OrderCounts{Total: sum(orders), Pending: orders["PENDING"]}
	st.Revenue.Restaurant = tablesRev
	st.Revenue.RoomOrders = roomsRev
	st.Revenue.Total = tablesRev.Add(roomsRev).Add(st.Revenue.Bookings)
	if st.RecentOrders == nil {
		st.RecentOrders = []RecentOrder{}
	}
	if st.RecentBookings == nil {
		st.RecentBookings = []RecentBooking{}
	}
	return &st, nil
}

func sum(m map[string]int) int {
	n := 0
	for _, v := range m {
		n += v
	}
	return n
}
