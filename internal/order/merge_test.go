package order

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Suldaanka/dashboard/internal/apperr"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("item-%d", n)
	}
}

func TestCoalesce(t *testing.T) {
	got := Coalesce([]Line{
		{MenuItemID: "a", Quantity: 1, Price: dec("5")},
		{MenuItemID: "b", Quantity: 2, Price: dec("4")},
		{MenuItemID: "a", Quantity: 3, Price: dec("15")},
	})
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].MenuItemID)
	assert.Equal(t, 4, got[0].Quantity)
	assert.True(t, got[0].Price.Equal(dec("20")))
	assert.Equal(t, "b", got[1].MenuItemID)
}

func TestMerge_SameItemTwiceIsOneLine(t *testing.T) {
	ids := seqIDs()
	ins, upd := Merge("o1", nil, []Line{{MenuItemID: "a", Quantity: 1, Price: dec("5")}}, ids)
	require.Len(t, ins, 1)
	assert.Empty(t, upd)

	ins2, upd2 := Merge("o1", ins, []Line{{MenuItemID: "a", Quantity: 1, Price: dec("5")}}, ids)
	assert.Empty(t, ins2)
	require.Len(t, upd2, 1)
	assert.Equal(t, "item-1", upd2[0].ID)
	assert.Equal(t, 2, upd2[0].Quantity)
	assert.True(t, upd2[0].Price.Equal(dec("10")))
	assert.Equal(t, 1, ins[0].Quantity, "existing slice must not be modified")
}

func TestMerge_MixedInsertAndUpdate(t *testing.T) {
	existing := []Item{{ID: "x", OrderID: "o1", MenuItemID: "a", Quantity: 2, Price: dec("10.00")}}
	ins, upd := Merge("o1", existing, []Line{
		{MenuItemID: "b", Quantity: 1, Price: dec("3.50")},
		{MenuItemID: "a", Quantity: 1, Price: dec("5.00")},
	}, seqIDs())

	require.Len(t, ins, 1)
	assert.Equal(t, "b", ins[0].MenuItemID)
	assert.Equal(t, "o1", ins[0].OrderID)
	require.Len(t, upd, 1)
	assert.Equal(t, 3, upd[0].Quantity)
	assert.True(t, upd[0].Price.Equal(dec("15.00")))
}

func TestTotal(t *testing.T) {
	assert.True(t, Total(nil).IsZero())
	items := []Item{{Price: dec("10.10")}, {Price: dec("0.20")}, {Price: dec("4.70")}}
	assert.Equal(t, "15.00", Total(items).StringFixed(2))
}

func TestCheckTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		noop     bool
		reason   string
	}{
		{StatusPending, StatusInProgress, false, ""},
		{StatusPending, StatusPaid, false, ""},
		{StatusServed, StatusPaid, false, ""},
		{StatusPending, StatusCancelled, false, ""},
		{StatusServed, StatusServed, true, ""},
		{StatusPending, Status("DONE"), false, apperr.ReasonValidation},
		{StatusPending, Status("pending"), false, apperr.ReasonValidation},
		{StatusInProgress, StatusCancelled, false, apperr.ReasonConflict},
		{StatusServed, StatusPending, false, apperr.ReasonConflict},
		{StatusPaid, StatusPending, false, apperr.ReasonConflict},
		{StatusCancelled, StatusPaid, false, apperr.ReasonConflict},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			noop, err := CheckTransition(tt.from, tt.to)
			if tt.reason == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.noop, noop)
				return
			}
			assert.True(t, apperr.Is(err, tt.reason), "got %v", err)
		})
	}
}

func TestStatusPredicates(t *testing.T) {
	for _, s := range OpenStatuses {
		assert.True(t, s.Open())
		assert.False(t, s.Terminal())
	}
	assert.True(t, StatusPaid.Terminal())
	assert.True(t, StatusCancelled.Valid())
	assert.False(t, Status("").Valid())
}
