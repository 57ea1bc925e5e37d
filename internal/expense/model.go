// Package expense is the back-office ledger of money paid out or taken in
// outside of orders and bookings, grouped by category.
package expense

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	TypeIncome  = "income"
	TypeOutcome = "outcome"
)

// UnknownCategory is shown for an expense whose category row is gone.
const UnknownCategory = "Unknown"

type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Expense struct {
	ID           string `json:"id"`
	Description  string `json:"description"`
	CategoryID   string `json:"category_id"`
	CategoryName string `json:"category_name"`
	// Amount is NUMERIC as text, always positive; Type gives the direction.
	Amount    string    `json:"amount"`
	Type      string    `json:"type"`
	PaidBy    string    `json:"paid_by"`
	Date      time.Time `json:"date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Request payload to record or update an expense. On update, description and
// amount are required; empty category and type and a missing date keep their
// value.
// swagger:model ExpenseRequest
type Request struct {
	Description string     `json:"description" example:"Gas refill"`
	CategoryID  string     `json:"category_id" example:"0b1c..."`
	Amount      string     `json:"amount"      example:"45.00"`
	Type        string     `json:"type"        example:"outcome"`
	Date        *time.Time `json:"date,omitempty"`
}

// CategoryRequest payload to create a category.
// swagger:model ExpenseCategoryRequest
type CategoryRequest struct {
	Name string `json:"name" example:"Utilities"`
}

// Summary totals a set of expenses by direction.
// swagger:model ExpenseSummary
type Summary struct {
	Income  decimal.Decimal `json:"income"`
	Outcome decimal.Decimal `json:"outcome"`
	Net     decimal.Decimal `json:"net"`
	Count   int             `json:"count"`
}

// NormalizeType lower-cases t, the form types are stored in.
func NormalizeType(t string) string { return strings.ToLower(strings.TrimSpace(t)) }

func ValidType(t string) bool { return t == TypeIncome || t == TypeOutcome }

// ParseAmount accepts a strictly positive decimal.
func ParseAmount(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || !d.IsPositive() {
		return decimal.Zero, false
	}
	return d, true
}

// Summarize adds up income and outcome. Rows with an unparsable amount are
// skipped.
func Summarize(es []Expense) Summary {
	s := Summary{Income: decimal.Zero, Outcome: decimal.Zero}
	for _, e := range es {
		d, err := decimal.NewFromString(e.Amount)
		if err != nil {
			continue
		}
		switch e.Type {
		case TypeIncome:
			s.Income = s.Income.Add(d)
		case TypeOutcome:
			s.Outcome = s.Outcome.Add(d)
		default:
			continue
		}
		s.Count++
	}
	s.Net = s.Income.Sub(s.Outcome)
	return s
}
