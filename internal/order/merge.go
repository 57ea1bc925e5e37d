package order

import (
	"github.com/shopspring/decimal"

	"github.com/Suldaanka/dashboard/internal/apperr"
)

// Line is a validated cart line: quantity > 0, price >= 0.
type Line struct {
	MenuItemID string
	Quantity   int
	Price      decimal.Decimal
}

// Coalesce folds lines naming the same menu item into one, keeping the order
// in which menu items first appear.
func Coalesce(lines []Line) []Line {
	idx := make(map[string]int, len(lines))
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		if i, ok := idx[l.MenuItemID]; ok {
			out[i].Quantity += l.Quantity
			out[i].Price = out[i].Price.Add(l.Price)
			continue
		}
		idx[l.MenuItemID] = len(out)
		out = append(out, l)
	}
	return out
}

// Merge applies lines to the current items of an order. A line for a menu item
// already on the order adds to that item's quantity and price; any other line
// becomes a new item. existing is not modified.
func Merge(orderID string, existing []Item, lines []Line, newID func() string) (inserts, updates []Item) {
	byMenu := make(map[string]Item, len(existing))
	for _, it := range existing {
		byMenu[it.MenuItemID] = it
	}
	for _, l := range Coalesce(lines) {
		if cur, ok := byMenu[l.MenuItemID]; ok {
			cur.Quantity += l.Quantity
			cur.Price = cur.Price.Add(l.Price)
			updates = append(updates, cur)
			continue
		}
		inserts = append(inserts, Item{
			ID:         newID(),
			OrderID:    orderID,
			MenuItemID: l.MenuItemID,
			Quantity:   l.Quantity,
			Price:      l.Price,
		})
	}
	return inserts, updates
}

// Total is the sum of the items' price fields.
func Total(items []Item) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Price)
	}
	return sum
}

var rank = map[Status]int{
	StatusPending:    0,
	StatusInProgress: 1,
	StatusServed:     2,
	StatusPaid:       3,
}

// Valid reports whether s is one of the five known statuses.
func (s Status) Valid() bool {
	_, ok := rank[s]
	return ok || s == StatusCancelled
}

func (s Status) Open() bool {
	return s == StatusPending || s == StatusInProgress || s == StatusServed
}

func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusPaid
}

// CheckTransition validates moving an order from one status to another.
// Open orders only move forward (skipping is allowed); CANCELLED is reachable
// from PENDING only; terminal orders never move. Asking for the current
// status is a no-op.
func CheckTransition(from, to Status) (noop bool, err error) {
	if !to.Valid() {
		return false, apperr.Validation("invalid status value %q", to)
	}
	if from == to {
		return true, nil
	}
	if from.Terminal() {
		return false, apperr.Conflict("order is already %s", from)
	}
	if to == StatusCancelled {
		if from != StatusPending {
			return false, apperr.Conflict("only PENDING orders can be cancelled, order is %s", from)
		}
		return false, nil
	}
	if rank[to] < rank[from] {
		return false, apperr.Conflict("cannot move order from %s back to %s", from, to)
	}
	return false, nil
}
