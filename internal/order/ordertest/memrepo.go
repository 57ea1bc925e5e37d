// Package ordertest provides in-memory fakes of the order store and the menu
// catalog for tests that should not need PostgreSQL.
package ordertest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Suldaanka/dashboard/internal/order"
)

type state struct {
	orders   map[string]order.Order
	items    map[string][]order.Item
	tables   map[string]string
	rooms    map[string]string
	payments map[string]string
}

func (s state) clone() state {
	c := state{
		orders:   make(map[string]order.Order, len(s.orders)),
		items:    make(map[string][]order.Item, len(s.items)),
		tables:   make(map[string]string, len(s.tables)),
		rooms:    make(map[string]string, len(s.rooms)),
		payments: make(map[string]string, len(s.payments)),
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.items {
		c.items[k] = append([]order.Item(nil), v...)
	}
	for k, v := range s.tables {
		c.tables[k] = v
	}
	for k, v := range s.rooms {
		c.rooms[k] = v
	}
	for k, v := range s.payments {
		c.payments[k] = v
	}
	return c
}

// MemRepo is an order.Repository held in memory. WithinTx runs one
// transaction at a time and restores the previous state when fn fails.
type MemRepo struct {
	mu    sync.Mutex
	st    state
	names map[string]string
	clock time.Time
	locks []string

	// FailOn makes the named Tx method (e.g. "SettlePaid") return the error.
	FailOn map[string]error
}

func NewMemRepo() *MemRepo {
	return &MemRepo{
		st: state{
			orders:   map[string]order.Order{},
			items:    map[string][]order.Item{},
			tables:   map[string]string{},
			rooms:    map[string]string{},
			payments: map[string]string{},
		},
		names:  map[string]string{},
		clock:  time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		FailOn: map[string]error{},
	}
}

func (r *MemRepo) AddTable(id, status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.st.tables[id] = status
}

func (r *MemRepo) AddRoom(id, status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.st.rooms[id] = status
}

func (r *MemRepo) AddPayment(id, status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.st.payments[id] = status
}

// AddMenuName sets the name GetByID reports for a menu item.
func (r *MemRepo) AddMenuName(id, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names[id] = name
}

// PutOrder stores o as is, bypassing the service. Used to seed broken state.
func (r *MemRepo) PutOrder(o order.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.st.orders[o.ID] = o
}

func (r *MemRepo) TableStatus(id string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.tables[id]
}

func (r *MemRepo) RoomStatus(id string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.rooms[id]
}

func (r *MemRepo) PaymentStatus(id string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.payments[id]
}

// Orders returns every stored order, oldest first.
// Locks returns the row locks taken so far, in order, as "table:T1",
// "room:R101" or "order:<id>".
func (r *MemRepo) Locks() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.locks...)
}

// ResetLocks clears the lock log.
func (r *MemRepo) ResetLocks() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locks = nil
}

func (r *MemRepo) Orders() []order.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted()
}

func (r *MemRepo) sorted() []order.Order {
	out := make([]order.Order, 0, len(r.st.orders))
	for _, o := range r.st.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (r *MemRepo) WithinTx(ctx context.Context, fn func(tx order.Tx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	saved := r.st.clone()
	if err := fn(&memTx{r: r}); err != nil {
		r.st = saved
		return err
	}
	return nil
}

func (r *MemRepo) GetByID(ctx context.Context, id string) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.st.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	for _, it := range r.st.items[id] {
		it.Name = r.names[it.MenuItemID]
		o.Items = append(o.Items, it)
	}
	switch {
	case o.TableID != nil:
		o.Label = "Table " + *o.TableID
	case o.RoomID != nil:
		o.Label = "Room " + *o.RoomID
	}
	return &o, nil
}

func (r *MemRepo) List(ctx context.Context, q order.ListQuery) ([]order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.sorted()
	out := []order.Order{}
	for i := len(all) - 1; i >= 0; i-- {
		if q.Status == "" || all[i].Status == q.Status {
			out = append(out, all[i])
		}
	}
	if q.Offset >= len(out) {
		return []order.Order{}, nil
	}
	out = out[q.Offset:]
	if q.Limit > 0 && q.Limit < len(out) {
		out = out[:q.Limit]
	}
	return out, nil
}

type memTx struct{ r *MemRepo }

func (t *memTx) fail(op string) error { return t.r.FailOn[op] }

func (t *memTx) registry(d order.Destination) map[string]string {
	if d.Kind == order.DestRoom {
		return t.r.st.rooms
	}
	return t.r.st.tables
}

func (t *memTx) LockDestination(ctx context.Context, d order.Destination) (string, error) {
	if err := t.fail("LockDestination"); err != nil {
		return "", err
	}
	s, ok := t.registry(d)[d.ID]
	if !ok {
		return "", order.ErrDestinationNotFound
	}
	t.r.locks = append(t.r.locks, string(d.Kind)+":"+d.ID)
	return s, nil
}

func (t *memTx) SetDestinationStatus(ctx context.Context, d order.Destination, status string) error {
	if err := t.fail("SetDestinationStatus"); err != nil {
		return err
	}
	reg := t.registry(d)
	if _, ok := reg[d.ID]; !ok {
		return order.ErrDestinationNotFound
	}
	reg[d.ID] = status
	return nil
}

func (t *memTx) OpenOrders(ctx context.Context, d order.Destination) ([]order.Order, error) {
	if err := t.fail("OpenOrders"); err != nil {
		return nil, err
	}
	var out []order.Order
	for _, o := range t.r.sorted() {
		if o.Status.Open() && o.Destination() == d {
			t.r.locks = append(t.r.locks, "order:"+o.ID)
			out = append(out, o)
		}
	}
	return out, nil
}

func (t *memTx) InsertOrder(ctx context.Context, o *order.Order) error {
	if err := t.fail("InsertOrder"); err != nil {
		return err
	}
	t.r.clock = t.r.clock.Add(time.Second)
	o.CreatedAt, o.UpdatedAt = t.r.clock, t.r.clock
	t.r.st.orders[o.ID] = *o
	return nil
}

func (t *memTx) LockOrder(ctx context.Context, id string) (*order.Order, error) {
	if err := t.fail("LockOrder"); err != nil {
		return nil, err
	}
	o, ok := t.r.st.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	t.r.locks = append(t.r.locks, "order:"+id)
	return &o, nil
}

func (t *memTx) OrderDestination(ctx context.Context, id string) (order.Destination, error) {
	if err := t.fail("OrderDestination"); err != nil {
		return order.Destination{}, err
	}
	o, ok := t.r.st.orders[id]
	if !ok {
		return order.Destination{}, order.ErrNotFound
	}
	return o.Destination(), nil
}

func (t *memTx) Items(ctx context.Context, orderID string) ([]order.Item, error) {
	if err := t.fail("Items"); err != nil {
		return nil, err
	}
	return append([]order.Item(nil), t.r.st.items[orderID]...), nil
}

func (t *memTx) InsertItem(ctx context.Context, it order.Item) error {
	if err := t.fail("InsertItem"); err != nil {
		return err
	}
	t.r.st.items[it.OrderID] = append(t.r.st.items[it.OrderID], it)
	return nil
}

func (t *memTx) UpdateItem(ctx context.Context, it order.Item) error {
	if err := t.fail("UpdateItem"); err != nil {
		return err
	}
	items := t.r.st.items[it.OrderID]
	for i := range items {
		if items[i].ID == it.ID {
			items[i] = it
			return nil
		}
	}
	return order.ErrNotFound
}

func (t *memTx) update(id string, fn func(*order.Order)) error {
	o, ok := t.r.st.orders[id]
	if !ok {
		return order.ErrNotFound
	}
	fn(&o)
	o.UpdatedAt = t.r.clock
	t.r.st.orders[id] = o
	return nil
}

func (t *memTx) SetTotal(ctx context.Context, orderID string, total decimal.Decimal) error {
	if err := t.fail("SetTotal"); err != nil {
		return err
	}
	return t.update(orderID, func(o *order.Order) { o.Total = total })
}

func (t *memTx) SetStatus(ctx context.Context, orderID string, s order.Status) error {
	if err := t.fail("SetStatus"); err != nil {
		return err
	}
	return t.update(orderID, func(o *order.Order) { o.Status = s })
}

func (t *memTx) SetPayment(ctx context.Context, orderID, paymentID string) error {
	if err := t.fail("SetPayment"); err != nil {
		return err
	}
	return t.update(orderID, func(o *order.Order) { o.PaymentID = &paymentID })
}

func (t *memTx) PaymentExists(ctx context.Context, paymentID string) (bool, error) {
	if err := t.fail("PaymentExists"); err != nil {
		return false, err
	}
	_, ok := t.r.st.payments[paymentID]
	return ok, nil
}

func (t *memTx) DeleteOrder(ctx context.Context, id string) error {
	if err := t.fail("DeleteOrder"); err != nil {
		return err
	}
	if _, ok := t.r.st.orders[id]; !ok {
		return order.ErrNotFound
	}
	delete(t.r.st.orders, id)
	delete(t.r.st.items, id)
	return nil
}

func (t *memTx) SettlePaid(ctx context.Context, tableID, paymentID *string) error {
	if tableID != nil {
		if _, ok := t.r.st.tables[*tableID]; !ok {
			return order.ErrDestinationNotFound
		}
		t.r.st.tables[*tableID] = order.DestAvailable
	}
	// A failure here lands after the table write, so rollback has to undo it.
	if err := t.fail("SettlePaid"); err != nil {
		return err
	}
	if paymentID != nil {
		if _, ok := t.r.st.payments[*paymentID]; !ok {
			return order.ErrPaymentNotFound
		}
		t.r.st.payments[*paymentID] = "COMPLETED"
	}
	return nil
}

// Catalog is an order.Catalog over a fixed set of menu items.
type Catalog struct {
	mu    sync.Mutex
	items map[string]order.MenuItemDTO
	Err   error
	Calls int
}

func NewCatalog(items ...order.MenuItemDTO) *Catalog {
	c := &Catalog{items: map[string]order.MenuItemDTO{}}
	for _, it := range items {
		c.items[it.ID] = it
	}
	return c
}

func (c *Catalog) Lookup(ctx context.Context, id string) (*order.MenuItemDTO, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls++
	if c.Err != nil {
		return nil, c.Err
	}
	it, ok := c.items[id]
	if !ok {
		return nil, order.ErrUnknownMenuItem
	}
	return &it, nil
}
