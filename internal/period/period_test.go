package period

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		code    string
		strict  string
		lenient string
	}{
		{"042024", "April", "April"},
		{"122023", "December", "December"},
		{"032025", "March", "March"},
		{"13", Unknown, Unknown},
		{"05", Unknown, "May"},
		{"", Unknown, Unknown},
		{"1", Unknown, Unknown},
		{"992024", Unknown, Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.strict, Resolve(tt.code))
			assert.Equal(t, tt.lenient, ResolveLenient(tt.code))
		})
	}
}

func TestIndex(t *testing.T) {
	assert.Equal(t, 0, Index("April"))
	assert.Equal(t, 11, Index("March"))
	assert.Equal(t, 12, Index(Unknown))
	assert.Equal(t, 12, Index("april"))
	assert.True(t, Known("January"))
	assert.False(t, Known(Unknown))
}

func TestFinancialYearOrdering(t *testing.T) {
	months := []string{"March", Unknown, "January", "April", "December", "May"}
	sort.SliceStable(months, func(i, j int) bool { return Less(months[i], months[j]) })
	assert.Equal(t, []string{"April", "May", "December", "January", "March", Unknown}, months)
}

func TestOrdered(t *testing.T) {
	got := Ordered([]string{"June", "Bogus", "April", "June", Unknown, "February"})
	assert.Equal(t, []string{"April", "June", "February", "Bogus", Unknown}, got)
	assert.Empty(t, Ordered(nil))
}

func TestDates(t *testing.T) {
	feb := time.Date(2025, time.February, 10, 0, 0, 0, 0, time.UTC)
	apr := time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "February", FromDate(feb))
	assert.Equal(t, 2024, FiscalYear(feb))
	assert.Equal(t, 2024, FiscalYear(apr))
}
