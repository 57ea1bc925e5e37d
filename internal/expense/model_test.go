package expense

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidType(t *testing.T) {
	assert.Equal(t, TypeIncome, NormalizeType(" Income "))
	assert.True(t, ValidType(TypeOutcome))
	assert.False(t, ValidType("OUTCOME"))
	assert.False(t, ValidType(""))
}

func TestParseAmount(t *testing.T) {
	d, ok := ParseAmount(" 12.50 ")
	assert.True(t, ok)
	assert.Equal(t, "12.5", d.String())

	for _, s := range []string{"0", "-3", "abc", ""} {
		_, ok := ParseAmount(s)
		assert.False(t, ok, s)
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]Expense{
		{Amount: "100.00", Type: TypeIncome},
		{Amount: "30.25", Type: TypeOutcome},
		{Amount: "9.75", Type: TypeOutcome},
		{Amount: "5.00", Type: "refund"},
	})
	assert.Equal(t, "100.00", s.Income.StringFixed(2))
	assert.Equal(t, "40.00", s.Outcome.StringFixed(2))
	assert.Equal(t, "60.00", s.Net.StringFixed(2))
	assert.Equal(t, 3, s.Count)

	empty := Summarize(nil)
	assert.True(t, empty.Net.IsZero())
	assert.Zero(t, empty.Count)
}
