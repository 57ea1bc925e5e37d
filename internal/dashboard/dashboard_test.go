package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Suldaanka/dashboard/internal/apperr"
)

type fakeSource struct {
	failBookings bool
	day          *time.Time
}

func (fakeSource) RoomsByStatus(context.Context) (map[string]int, error) {
	return map[string]int{"AVAILABLE": 3, "OCCUPIED": 2, "MAINTENANCE": 1}, nil
}

func (fakeSource) TablesByStatus(context.Context) (map[string]int, error) {
	return map[string]int{"AVAILABLE": 5, "OCCUPIED": 4, "RESERVED": 1}, nil
}

func (fakeSource) OrdersByStatus(context.Context) (map[string]int, error) {
	return map[string]int{"PENDING": 2, "SERVED": 1, "IS_PAYED": 7}, nil
}

func (f fakeSource) CountBookings(context.Context) (int, error) {
	if f.failBookings {
		return 0, errors.New("relation bookings does not exist")
	}
	return 4, nil
}

func (fakeSource) OrderRevenue(context.Context) (decimal.Decimal, decimal.Decimal, error) {
	return decimal.RequireFromString("120.50"), decimal.RequireFromString("30.00"), nil
}

func (fakeSource) BookingRevenue(context.Context) (decimal.Decimal, error) {
	return decimal.RequireFromString("240.00"), nil
}

func (f fakeSource) TodayRevenue(_ context.Context, day time.Time) (decimal.Decimal, error) {
	if f.day != nil {
		*f.day = day
	}
	return decimal.RequireFromString("42.25"), nil
}

func (fakeSource) RecentOrders(context.Context, int) ([]RecentOrder, error) {
	return []RecentOrder{{ID: "o1"}}, nil
}

func (fakeSource) RecentBookings(context.Context, int) ([]RecentBooking, error) {
	return nil, nil
}

func TestStats(t *testing.T) {
	st, err := NewService(fakeSource{}).Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, RoomCounts{Total: 6, Occupied: 2, Available: 3, Maintenance: 1}, st.Rooms)
	assert.Equal(t, TableCounts{Total: 10, Occupied: 4}, st.Tables)
	assert.Equal(t, OrderCounts{Total: 10, Pending: 2}, st.Orders)
	assert.Equal(t, 4, st.Bookings)
	assert.Equal(t, "390.50", st.Revenue.Total.StringFixed(2))
	assert.Equal(t, "42.25", st.Revenue.Today.StringFixed(2))
	assert.Len(t, st.RecentOrders, 1)
	assert.NotNil(t, st.RecentBookings)
}

func TestStats_TodayStartsAtUTCMidnight(t *testing.T) {
	var day time.Time
	clock := func() time.Time {
		return time.Date(2024, 3, 9, 23, 30, 0, 0, time.FixedZone("EAT", 3*60*60))
	}
	_, err := NewService(fakeSource{day: &day}, WithClock(clock)).Stats(context.Background())
	require.NoError(t, err)
	assert.True(t, day.Equal(time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)), "day=%v", day)
}

func TestStats_QueryFailure(t *testing.T) {
	_, err := NewService(fakeSource{failBookings: true}).Stats(context.Background())
	assert.True(t, apperr.Is(err, apperr.ReasonPersistence), "got %v", err)
}
