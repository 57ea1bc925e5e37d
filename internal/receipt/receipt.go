// Package receipt renders a finalized order as a printable text receipt and
// a QR code.
package receipt

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	qrcode "github.com/skip2/go-qrcode"
)

// TaxRate is applied to the subtotal of every receipt.
var TaxRate = decimal.RequireFromString("0.05")

const (
	width     = 40
	nameWidth = 18
)

type Line struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Total     decimal.Decimal `json:"total"`
}

// Snapshot is everything printed on a receipt.
// swagger:model Receipt
type Snapshot struct {
	OrderID     string          `json:"order_id"`
	Destination string          `json:"destination"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	Lines       []Line          `json:"lines"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Tax         decimal.Decimal `json:"tax"`
	GrandTotal  decimal.Decimal `json:"grand_total"`
}

// Item is one order line as stored: quantity and accumulated line price.
type Item struct {
	Name     string
	Quantity int
	Price    decimal.Decimal
}

// Build computes per-line unit prices, subtotal, tax and grand total.
func Build(orderID, destination, status string, createdAt time.Time, items []Item) (Snapshot, error) {
	s := Snapshot{
		OrderID:     orderID,
		Destination: destination,
		Status:      status,
		CreatedAt:   createdAt,
		Lines:       make([]Line, 0, len(items)),
		Subtotal:    decimal.Zero,
	}
	for _, it := range items {
		if it.Quantity <= 0 {
			return Snapshot{}, fmt.Errorf("receipt line %q: quantity %d", it.Name, it.Quantity)
		}
		s.Lines = append(s.Lines, Line{
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.Price.Div(decimal.NewFromInt(int64(it.Quantity))).Round(2),
			Total:     it.Price,
		})
		s.Subtotal = s.Subtotal.Add(it.Price)
	}
	s.Tax = Tax(s.Subtotal)
	s.GrandTotal = s.Subtotal.Add(s.Tax)
	return s, nil
}

// Tax is 5% of subtotal rounded half-up to cents.
func Tax(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(TaxRate).Round(2)
}

// Text renders the receipt. Output depends only on s.
func (s Snapshot) Text() string {
	var b strings.Builder
	rule := strings.Repeat("-", width) + "\n"

	b.WriteString(center("RECEIPT") + "\n")
	fmt.Fprintf(&b, "Order: %s\n", s.OrderID)
	if s.Destination != "" {
		fmt.Fprintf(&b, "Place: %s\n", s.Destination)
	}
	fmt.Fprintf(&b, "Date:  %s\n", s.CreatedAt.UTC().Format("2006-01-02 15:04"))
	b.WriteString(rule)
	fmt.Fprintf(&b, "%-*s %4s %7s %8s\n", nameWidth, "Item", "Qty", "Price", "Total")
	for _, l := range s.Lines {
		fmt.Fprintf(&b, "%-*s %4d %7s %8s\n", nameWidth, clip(l.Name, nameWidth),
			l.Quantity, l.UnitPrice.StringFixed(2), l.Total.StringFixed(2))
	}
	b.WriteString(rule)
	total := func(label string, v decimal.Decimal) {
		fmt.Fprintf(&b, "%-*s %*s\n", width-11, label, 10, v.StringFixed(2))
	}
	total("Subtotal", s.Subtotal)
	total("Tax (5%)", s.Tax)
	total("TOTAL", s.GrandTotal)
	return b.String()
}

// QRCode encodes the order id as a PNG of the given pixel size.
func QRCode(s Snapshot, size int) ([]byte, error) {
	if s.OrderID == "" {
		return nil, fmt.Errorf("qr code: empty order id")
	}
	png, err := qrcode.Encode(s.OrderID, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("qr code: %w", err)
	}
	return png, nil
}

func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "~"
}

func center(s string) string {
	pad := (width - len(s)) / 2
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad) + s
}
