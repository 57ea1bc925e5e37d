package receipt

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var created = time.Date(2024, 3, 9, 18, 30, 0, 0, time.UTC)

func TestBuild(t *testing.T) {
	s, err := Build("o-1", "Table 1", "SERVED", created, []Item{
		{Name: "Pizza", Quantity: 3, Price: dec("15.00")},
		{Name: "Tea", Quantity: 1, Price: dec("1.99")},
	})
	require.NoError(t, err)
	require.Len(t, s.Lines, 2)
	assert.Equal(t, "5.00", s.Lines[0].UnitPrice.StringFixed(2))
	assert.Equal(t, "16.99", s.Subtotal.StringFixed(2))
	assert.Equal(t, "0.85", s.Tax.StringFixed(2))
	assert.Equal(t, "17.84", s.GrandTotal.StringFixed(2))
}

func TestBuild_RejectsZeroQuantity(t *testing.T) {
	_, err := Build("o-1", "", "SERVED", created, []Item{{Name: "x", Quantity: 0, Price: dec("1")}})
	assert.Error(t, err)
}

func TestTax_RoundsHalfUp(t *testing.T) {
	tests := map[string]string{
		"0":     "0.00",
		"10.00": "0.50",
		"0.10":  "0.01", // 0.005
		"0.09":  "0.00", // 0.0045
		"33.30": "1.67", // 1.665
	}
	for sub, want := range tests {
		assert.Equal(t, want, Tax(dec(sub)).StringFixed(2), "subtotal %s", sub)
	}
}

func TestText_Deterministic(t *testing.T) {
	s, err := Build("o-1", "Room 101", "IS_PAYED", created, []Item{
		{Name: "A very long dish name that overflows", Quantity: 2, Price: dec("10.00")},
	})
	require.NoError(t, err)

	out := s.Text()
	assert.Equal(t, out, s.Text())
	assert.Contains(t, out, "Order: o-1")
	assert.Contains(t, out, "Place: Room 101")
	assert.Contains(t, out, "Date:  2024-03-09 18:30")
	assert.Contains(t, out, "A very long dish ~")
	assert.Contains(t, out, "10.50")
	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		assert.LessOrEqual(t, len(line), width, "line %q", line)
	}
}

func TestQRCode(t *testing.T) {
	png, err := QRCode(Snapshot{OrderID: "o-1"}, 128)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	_, err = QRCode(Snapshot{}, 128)
	assert.Error(t, err)
}
