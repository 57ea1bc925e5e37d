package order_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Suldaanka/dashboard/internal/apperr"
	"github.com/Suldaanka/dashboard/internal/events"
	"github.com/Suldaanka/dashboard/internal/order"
	"github.com/Suldaanka/dashboard/internal/order/ordertest"
)

const (
	pizza = "menu-pizza"
	tea   = "menu-tea"
	soup  = "menu-soup"
)

type fixture struct {
	repo    *ordertest.MemRepo
	catalog *ordertest.Catalog
	events  *events.Recorder
	svc     *order.Service
}

func newFixture(t *testing.T, opts ...order.Option) *fixture {
	t.Helper()
	repo := ordertest.NewMemRepo()
	repo.AddTable("T1", order.DestAvailable)
	repo.AddTable("T2", order.DestAvailable)
	repo.AddRoom("R101", order.DestAvailable)
	repo.AddRoom("R102", order.DestMaintenance)
	repo.AddMenuName(pizza, "Pizza")
	repo.AddMenuName(tea, "Tea")

	catalog := ordertest.NewCatalog(
		order.MenuItemDTO{ID: pizza, Name: "Pizza", Price: "5.00", Status: order.MenuAvailable},
		order.MenuItemDTO{ID: tea, Name: "Tea", Price: "1.50", Status: order.MenuAvailable},
		order.MenuItemDTO{ID: soup, Name: "Soup", Price: "4.00", Status: "UNAVAILABLE"},
	)
	rec := &events.Recorder{}
	return &fixture{
		repo:    repo,
		catalog: catalog,
		events:  rec,
		svc:     order.NewService(repo, catalog, rec, opts...),
	}
}

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func cart(table string, items ...order.SubmitOrderItem) order.SubmitOrderRequest {
	return order.SubmitOrderRequest{TableID: table, Items: items}
}

func line(id string, qty int, p string) order.SubmitOrderItem {
	it := order.SubmitOrderItem{MenuItemID: id, Quantity: qty}
	if p != "" {
		it.Price = price(p)
	}
	return it
}

func TestSubmit_ExampleScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	o, created, err := f.svc.Submit(ctx, "u1", cart("T1", line(pizza, 2, "10.00")))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, order.StatusPending, o.Status)
	assert.Equal(t, "10.00", o.Total.StringFixed(2))
	require.Len(t, o.Items, 1)
	assert.Equal(t, 2, o.Items[0].Quantity)
	assert.Equal(t, order.DestOccupied, f.repo.TableStatus("T1"))

	o2, created, err := f.svc.Submit(ctx, "u1", cart("T1", line(pizza, 1, "5.00")))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, o.ID, o2.ID)
	require.Len(t, o2.Items, 1)
	assert.Equal(t, 3, o2.Items[0].Quantity)
	assert.Equal(t, "15.00", o2.Total.StringFixed(2))

	paid, err := f.svc.UpdateStatus(ctx, o.ID, "u1", string(order.StatusPaid))
	require.NoError(t, err)
	assert.Equal(t, order.StatusPaid, paid.Status)
	assert.Equal(t, order.DestAvailable, f.repo.TableStatus("T1"))

	assert.Equal(t, []string{events.OrderCreated, events.OrderUpdated, events.OrderStatusChanged}, f.events.Types())
}

func TestSubmit_SameItemTwiceMergesIntoOneLine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.svc.Submit(ctx, "u1", cart("T1", line(tea, 1, "")))
	require.NoError(t, err)
	o, _, err := f.svc.Submit(ctx, "u1", cart("T1", line(tea, 1, "")))
	require.NoError(t, err)

	require.Len(t, o.Items, 1)
	assert.Equal(t, 2, o.Items[0].Quantity)
	assert.Equal(t, "3.00", o.Total.StringFixed(2))
}

func TestSubmit_TotalAfterNMerges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	want := decimal.Zero
	var o *order.Order
	for i := 1; i <= 6; i++ {
		p := fmt.Sprintf("%d.25", i)
		want = want.Add(decimal.RequireFromString(p))
		id := pizza
		if i%2 == 0 {
			id = tea
		}
		var err error
		o, _, err = f.svc.Submit(ctx, "u1", cart("T1", line(id, 1, p)))
		require.NoError(t, err)

		sum := decimal.Zero
		for _, it := range o.Items {
			sum = sum.Add(it.Price)
		}
		assert.True(t, o.Total.Equal(sum), "merge %d: total %s != items %s", i, o.Total, sum)
		assert.True(t, o.Total.Equal(want), "merge %d: total %s want %s", i, o.Total, want)
	}
	assert.Len(t, o.Items, 2)
}

func TestSubmit_OmittedPriceUsesCatalog(t *testing.T) {
	f := newFixture(t)
	o, _, err := f.svc.Submit(context.Background(), "u1", cart("T1", line(pizza, 3, "")))
	require.NoError(t, err)
	assert.Equal(t, "15.00", o.Total.StringFixed(2))
}

func TestSubmit_CoalescesRepeatedItemsInOneCart(t *testing.T) {
	f := newFixture(t)
	o, _, err := f.svc.Submit(context.Background(), "u1",
		cart("T1", line(pizza, 1, "5"), line(tea, 1, "1.5"), line(pizza, 2, "10")))
	require.NoError(t, err)
	require.Len(t, o.Items, 2)
	assert.Equal(t, "16.50", o.Total.StringFixed(2))
	assert.Equal(t, 2, f.catalog.Calls, "catalog is asked once per distinct item")
}

func TestSubmit_Destination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	items := []order.SubmitOrderItem{line(pizza, 1, "5")}

	_, _, err := f.svc.Submit(ctx, "u1", order.SubmitOrderRequest{TableID: "T1", RoomID: "R101", Items: items})
	assert.True(t, apperr.Is(err, apperr.ReasonValidation), "both: %v", err)

	_, _, err = f.svc.Submit(ctx, "u1", order.SubmitOrderRequest{Items: items})
	assert.True(t, apperr.Is(err, apperr.ReasonValidation), "neither: %v", err)

	_, _, err = f.svc.Submit(ctx, "u1", order.SubmitOrderRequest{TableID: "T9", Items: items})
	assert.True(t, apperr.Is(err, apperr.ReasonNotFound), "unknown table: %v", err)

	_, _, err = f.svc.Submit(ctx, "u1", order.SubmitOrderRequest{RoomID: "R102", Items: items})
	assert.True(t, apperr.Is(err, apperr.ReasonConflict), "maintenance: %v", err)

	o, created, err := f.svc.Submit(ctx, "u1", order.SubmitOrderRequest{RoomID: "R101", Items: items})
	require.NoError(t, err)
	assert.True(t, created)
	require.NotNil(t, o.RoomID)
	assert.Nil(t, o.TableID)
	assert.Equal(t, order.DestOccupied, f.repo.RoomStatus("R101"))

	assert.Len(t, f.repo.Orders(), 1, "rejected carts must not write")
}

func TestSubmit_RejectsBadItems(t *testing.T) {
	tests := map[string]order.SubmitOrderRequest{
		"empty":          cart("T1"),
		"zero quantity":  cart("T1", line(pizza, 1, "5"), line(tea, 0, "1")),
		"negative qty":   cart("T1", line(pizza, -2, "5")),
		"negative price": cart("T1", line(pizza, 1, "-1")),
		"unknown item":   cart("T1", line(pizza, 1, "5"), line("menu-ghost", 1, "1")),
		"unavailable":    cart("T1", line(soup, 1, "4")),
		"missing id":     cart("T1", line("", 1, "4")),
	}
	for name, req := range tests {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			_, _, err := f.svc.Submit(context.Background(), "u1", req)
			assert.True(t, apperr.Is(err, apperr.ReasonValidation), "got %v", err)
			assert.Empty(t, f.repo.Orders())
			assert.Equal(t, order.DestAvailable, f.repo.TableStatus("T1"))
			assert.Empty(t, f.events.Events())
		})
	}
}

func TestSubmit_CatalogDown(t *testing.T) {
	f := newFixture(t)
	f.catalog.Err = apperr.Unavailable(errors.New("dial tcp: refused"), "menu catalog unreachable")
	_, _, err := f.svc.Submit(context.Background(), "u1", cart("T1", line(pizza, 1, "")))
	assert.True(t, apperr.Is(err, apperr.ReasonUnavailable), "got %v", err)
}

func TestSubmit_MultipleOpenOrdersIsConflict(t *testing.T) {
	f := newFixture(t)
	t1 := "T1"
	f.repo.PutOrder(order.Order{ID: "a", TableID: &t1, Status: order.StatusPending})
	f.repo.PutOrder(order.Order{ID: "b", TableID: &t1, Status: order.StatusServed})

	_, _, err := f.svc.Submit(context.Background(), "u1", cart("T1", line(pizza, 1, "5")))
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.ReasonMultipleOpenOrders), "got %v", err)
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, 409, ae.HTTPStatus())
}

func TestSubmit_SingleOpenOrderPerDestination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, _, err := f.svc.Submit(ctx, "u1", cart("T1", line(pizza, 1, "5")))
	require.NoError(t, err)
	_, _, err = f.svc.Submit(ctx, "u2", cart("T1", line(tea, 1, "1.5")))
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(ctx, first.ID, "u1", string(order.StatusPaid))
	require.NoError(t, err)

	second, created, err := f.svc.Submit(ctx, "u1", cart("T1", line(pizza, 1, "5")))
	require.NoError(t, err)
	assert.True(t, created, "paid order is closed, a new one opens")
	assert.NotEqual(t, first.ID, second.ID)

	open := 0
	for _, o := range f.repo.Orders() {
		if o.Status.Open() && o.TableID != nil && *o.TableID == "T1" {
			open++
		}
	}
	assert.Equal(t, 1, open)
}

// MemRepo serializes whole transactions behind one mutex, so this covers lost
// updates but not row-lock ordering. TestLockOrder checks the order locks are
// taken in; pg_integration_test.go runs the mix against PostgreSQL.
func TestSubmit_ConcurrentCartsLoseNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const n = 20

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := f.svc.Submit(ctx, "u1", cart("T1", line(pizza, 1, "5")))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	orders := f.repo.Orders()
	require.Len(t, orders, 1)
	o, err := f.svc.Get(ctx, orders[0].ID)
	require.NoError(t, err)
	require.Len(t, o.Items, 1)
	assert.Equal(t, n, o.Items[0].Quantity)
	assert.Equal(t, "100.00", o.Total.StringFixed(2))
}

func TestSubmit_RollsBackOnPersistenceFailure(t *testing.T) {
	f := newFixture(t)
	f.repo.FailOn["SetTotal"] = errors.New("connection reset")

	_, _, err := f.svc.Submit(context.Background(), "u1", cart("T1", line(pizza, 1, "5")))
	assert.True(t, apperr.Is(err, apperr.ReasonPersistence), "got %v", err)
	assert.Empty(t, f.repo.Orders())
	assert.Equal(t, order.DestAvailable, f.repo.TableStatus("T1"))
}

func TestUpdateStatus_InvalidValueLeavesStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o, _, err := f.svc.Submit(ctx, "u1", cart("T1", line(pizza, 1, "5")))
	require.NoError(t, err)

	for _, s := range []string{"DONE", "paid", "is_payed", "", " PENDING"} {
		_, err := f.svc.UpdateStatus(ctx, o.ID, "u1", s)
		assert.True(t, apperr.Is(err, apperr.ReasonValidation), "%q: %v", s, err)
	}
	got, err := f.svc.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, got.Status)
}

func TestUpdateStatus_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.UpdateStatus(context.Background(), "missing", "u1", string(order.StatusServed))
	assert.True(t, apperr.Is(err, apperr.ReasonNotFound), "got %v", err)
}

func TestUpdateStatus_SameStatusIsNoop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o, _, err := f.svc.Submit(ctx, "u1", cart("T1", line(pizza, 1, "5")))
	require.NoError(t, err)

	got, err := f.svc.UpdateStatus(ctx, o.ID, "u1", string(order.StatusPending))
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, got.Status)
	assert.Equal(t, []string{events.OrderCreated}, f.events.Types())
}

func TestUpdateStatus_PaidCompletesLinkedPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.repo.AddPayment("p1", "PENDING")

	o, _, err := f.svc.Submit(ctx, "u1", cart("T1", line(pizza, 2, "")))
	require.NoError(t, err)
	_, err = f.svc.LinkPayment(ctx, o.ID, "u1", "p1")
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, o.ID, "u1", string(order.StatusPaid))
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", f.repo.PaymentStatus("p1"))
	assert.Equal(t, order.DestAvailable, f.repo.TableStatus("T1"))
}

func TestUpdateStatus_PaidSideEffectsAreAllOrNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.repo.AddPayment("p1", "PENDING")

	o, _, err := f.svc.Submit(ctx, "u1", cart("T1", line(pizza, 1, "5")))
	require.NoError(t, err)
	_, err = f.svc.LinkPayment(ctx, o.ID, "u1", "p1")
	require.NoError(t, err)

	f.repo.FailOn["SettlePaid"] = errors.New("deadlock detected")
	_, err = f.svc.UpdateStatus(ctx, o.ID, "u1", string(order.StatusPaid))
	assert.True(t, apperr.Is(err, apperr.ReasonPersistence), "got %v", err)

	got, err := f.svc.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, got.Status)
	assert.Equal(t, order.DestOccupied, f.repo.TableStatus("T1"))
	assert.Equal(t, "PENDING", f.repo.PaymentStatus("p1"))
}

func TestUpdateStatus_RoomStaysOccupiedWhenPaid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o, _, err := f.svc.Submit(ctx, "u1", order.SubmitOrderRequest{RoomID: "R101", Items: []order.SubmitOrderItem{line(tea, 1, "")}})
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, o.ID, "u1", string(order.StatusPaid))
	require.NoError(t, err)
	assert.Equal(t, order.DestOccupied, f.repo.RoomStatus("R101"))
}

func TestUpdateStatus_Cancel(t *testing.T) {
	for _, release := range []bool{false, true} {
		t.Run(fmt.Sprintf("release=%v", release), func(t *testing.T) {
			f := newFixture(t, order.WithReleaseOnCancel(release))
			ctx := context.Background()
			o, _, err := f.svc.Submit(ctx, "u1", cart("T1", line(pizza, 1, "5")))
			require.NoError(t, err)

			got, err := f.svc.UpdateStatus(ctx, o.ID, "u1", string(order.StatusCancelled))
			require.NoError(t, err)
			assert.Equal(t, order.StatusCancelled, got.Status)

			want := order.DestOccupied
			if release {
				want = order.DestAvailable
			}
			assert.Equal(t, want, f.repo.TableStatus("T1"))

			_, err = f.svc.UpdateStatus(ctx, o.ID, "u1", string(order.StatusServed))
			assert.True(t, apperr.Is(err, apperr.ReasonConflict), "terminal: %v", err)
		})
	}
}

func TestUpdateStatus_CancelLeavesBookedRoom(t *testing.T) {
	f := newFixture(t, order.WithReleaseOnCancel(true))
	ctx := context.Background()
	f.repo.AddRoom("R201", order.DestOccupied)
	o, _, err := f.svc.Submit(ctx, "u1", order.SubmitOrderRequest{RoomID: "R201", Items: []order.SubmitOrderItem{line(tea, 1, "")}})
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, o.ID, "u1", string(order.StatusCancelled))
	require.NoError(t, err)
	assert.Equal(t, order.DestOccupied, f.repo.RoomStatus("R201"))
}

func TestLockOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o, _, err := f.svc.Submit(ctx, "u1", cart("T1", line(pizza, 1, "5")))
	require.NoError(t, err)
	assert.Equal(t, []string{"table:T1"}, f.repo.Locks())

	f.repo.ResetLocks()
	_, _, err = f.svc.Submit(ctx, "u1", cart("T1", line(tea, 1, "")))
	require.NoError(t, err)
	assert.Equal(t, []string{"table:T1", "order:" + o.ID}, f.repo.Locks())

	f.repo.ResetLocks()
	_, err = f.svc.UpdateStatus(ctx, o.ID, "u1", string(order.StatusServed))
	require.NoError(t, err)
	assert.Equal(t, []string{"table:T1", "order:" + o.ID}, f.repo.Locks())

	f.repo.AddPayment("p1", "PENDING")
	f.repo.ResetLocks()
	_, err = f.svc.LinkPayment(ctx, o.ID, "u1", "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"table:T1", "order:" + o.ID}, f.repo.Locks())

	f.repo.ResetLocks()
	require.NoError(t, f.svc.Delete(ctx, o.ID, "admin"))
	assert.Equal(t, []string{"table:T1", "order:" + o.ID}, f.repo.Locks())
}

func TestLinkPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o, _, err := f.svc.Submit(ctx, "u1", cart("T1", line(pizza, 1, "5")))
	require.NoError(t, err)

	_, err = f.svc.LinkPayment(ctx, o.ID, "u1", "")
	assert.True(t, apperr.Is(err, apperr.ReasonValidation), "got %v", err)
	_, err = f.svc.LinkPayment(ctx, o.ID, "u1", "nope")
	assert.True(t, apperr.Is(err, apperr.ReasonNotFound), "got %v", err)

	f.repo.AddPayment("p1", "PENDING")
	got, err := f.svc.LinkPayment(ctx, o.ID, "u1", "p1")
	require.NoError(t, err)
	require.NotNil(t, got.PaymentID)
	assert.Equal(t, "p1", *got.PaymentID)
}

func TestListAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, _, err := f.svc.Submit(ctx, "u1", cart("T1", line(pizza, 1, "5")))
	require.NoError(t, err)
	b, _, err := f.svc.Submit(ctx, "u1", cart("T2", line(tea, 1, "")))
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(ctx, b.ID, "u1", string(order.StatusServed))
	require.NoError(t, err)

	all, err := f.svc.List(ctx, order.ListQuery{Limit: 10})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, b.ID, all[0].ID, "newest first")

	served, err := f.svc.List(ctx, order.ListQuery{Status: order.StatusServed, Limit: 10})
	require.NoError(t, err)
	require.Len(t, served, 1)

	_, err = f.svc.List(ctx, order.ListQuery{Status: "bogus"})
	assert.True(t, apperr.Is(err, apperr.ReasonValidation))

	require.NoError(t, f.svc.Delete(ctx, a.ID, "admin"))
	assert.Equal(t, order.DestAvailable, f.repo.TableStatus("T1"))
	_, err = f.svc.Get(ctx, a.ID)
	assert.True(t, apperr.Is(err, apperr.ReasonNotFound))
	assert.True(t, apperr.Is(f.svc.Delete(ctx, a.ID, "admin"), apperr.ReasonNotFound))
}

func TestDelete_LeavesBookedRoomOccupied(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.repo.AddRoom("R201", order.DestOccupied)
	o, _, err := f.svc.Submit(ctx, "u1", order.SubmitOrderRequest{RoomID: "R201", Items: []order.SubmitOrderItem{line(tea, 1, "")}})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, o.ID, "admin"))
	assert.Equal(t, order.DestOccupied, f.repo.RoomStatus("R201"))
	assert.Empty(t, f.repo.Orders())
}

func TestReceipt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o, _, err := f.svc.Submit(ctx, "u1", cart("T1", line(pizza, 2, ""), line(tea, 2, "")))
	require.NoError(t, err)

	snap, err := f.svc.Receipt(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "Table T1", snap.Destination)
	assert.Equal(t, "13.00", snap.Subtotal.StringFixed(2))
	assert.Equal(t, "0.65", snap.Tax.StringFixed(2))
	assert.Equal(t, "13.65", snap.GrandTotal.StringFixed(2))
	assert.Contains(t, snap.Text(), "Pizza")

	_, err = f.svc.UpdateStatus(ctx, o.ID, "u1", string(order.StatusCancelled))
	require.NoError(t, err)
	_, err = f.svc.Receipt(ctx, o.ID)
	assert.True(t, apperr.Is(err, apperr.ReasonConflict))
}

func TestPublishFailureDoesNotFailSubmit(t *testing.T) {
	f := newFixture(t)
	f.events.Err = errors.New("broker down")
	_, _, err := f.svc.Submit(context.Background(), "u1", cart("T1", line(pizza, 1, "5")))
	require.NoError(t, err)
	assert.Len(t, f.repo.Orders(), 1)
}
