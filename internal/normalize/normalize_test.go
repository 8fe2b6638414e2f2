package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nihasbabu/gst-modules/internal/types"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name string
		in   string
		mode Mode
		want string
	}{
		{"empty is zero", "", Raw, "0"},
		{"blank is zero", "   ", Rounded, "0"},
		{"garbage is zero", "12abc", Raw, "0"},
		{"comma grouping is not a number", "1,000", Raw, "0"},
		{"raw keeps precision", "1234.5678", Raw, "1234.5678"},
		{"rounded to two places", "1234.5678", Rounded, "1234.57"},
		{"rounded half away from zero", "0.125", Rounded, "0.13"},
		{"rounded negative", "-0.125", Rounded, "-0.13"},
		{"integer truncates", "27.9", Integer, "27"},
		{"integer truncates negative toward zero", "-27.9", Integer, "-27"},
		{"surrounding whitespace", " 18 ", Raw, "18"},
		{"exponent", "1.5e2", Raw, "150"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseNumber(tt.in, tt.mode).String())
		})
	}
}

func TestNumberValueIsAlwaysNumeric(t *testing.T) {
	v := Number("not a number", Rounded)
	assert.True(t, v.IsNumeric())
	assert.True(t, v.Decimal().IsZero())
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, time.April, 15, 0, 0, 0, 0, time.UTC)

	for _, in := range []string{"15-04-2024", "2024-04-15", "15-04-24", " 15-04-2024 "} {
		got, ok := ParseDate(in)
		require.True(t, ok, in)
		assert.True(t, want.Equal(got), in)
	}

	for _, in := range []string{"", "15/04/2024", "April 15", "31-02-2024"} {
		_, ok := ParseDate(in)
		assert.False(t, ok, in)
	}
}

func TestParseDateUnpadded(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"5-4-2024", time.Date(2024, time.April, 5, 0, 0, 0, 0, time.UTC)},
		{"15-4-2024", time.Date(2024, time.April, 15, 0, 0, 0, 0, time.UTC)},
		{"5-11-24", time.Date(2024, time.November, 5, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, ok := ParseDate(tt.in)
		require.True(t, ok, tt.in)
		assert.True(t, tt.want.Equal(got), "%s: got %s", tt.in, got)
	}
}

func TestDateValues(t *testing.T) {
	assert.Equal(t, types.KindDate, Date("01-05-2024").Kind())
	assert.True(t, Date("bad").IsNull())

	assert.Equal(t, types.KindDate, DateOrText("2024-05-01").Kind())
	assert.Equal(t, "05/01/2024", DateOrText("05/01/2024").Str())
	assert.True(t, DateOrText("  ").IsNull())
}

func TestDateLessNullsLast(t *testing.T) {
	early := Date("01-04-2024")
	late := Date("02-04-2024")
	null := types.Null()

	assert.True(t, DateLess(early, late))
	assert.False(t, DateLess(late, early))
	assert.True(t, DateLess(late, null))
	assert.False(t, DateLess(null, early))
	assert.False(t, DateLess(null, null))
}
