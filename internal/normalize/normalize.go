// =============================================================================
// GST Returns Reporter - Numeric and Date Normalizer
// =============================================================================
//
// Government exports carry amounts as JSON numbers, quoted strings, empty
// strings or not at all. This package turns those into exact decimals and
// calendar dates with a fail-soft policy:
//   - empty, missing or unparseable amounts become 0, never an error
//   - empty or unparseable dates become null, which sorts after every date
//
// ROUNDING:
//   Rounded amounts use two decimal places, half away from zero. Integer
//   amounts are truncated toward zero.
//
// =============================================================================

package normalize

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nihasbabu/gst-modules/internal/types"
)

// =============================================================================
// NUMBERS
// =============================================================================

// Mode selects how a parsed amount is shaped.
type Mode int

const (
	// Raw keeps the amount as written.
	Raw Mode = iota

	// Rounded rounds to two decimal places.
	Rounded

	// Integer truncates toward zero.
	Integer
)

// ParseNumber converts text to a decimal under the given mode. Empty text and
// text that is not a number both yield zero.
//
// PARAMETERS:
//   - s: The raw text (surrounding whitespace is ignored).
//   - mode: Raw, Rounded or Integer.
//
// RETURNS:
//   - The parsed amount, or decimal.Zero.
func ParseNumber(s string, mode Mode) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	switch mode {
	case Rounded:
		return d.Round(2)
	case Integer:
		return d.Truncate(0)
	default:
		return d
	}
}

// Number is ParseNumber wrapped as a cell value.
func Number(s string, mode Mode) types.Value {
	return types.Number(ParseNumber(s, mode))
}

// =============================================================================
// DATES
// =============================================================================

// dateLayouts are tried in order; the first match wins.
var dateLayouts = []string{
	"02-01-2006",
	"2006-01-02",
	"02-01-06",
	"2-1-2006",
	"2-1-06",
}

// ParseDate parses day-month-year (four-digit year), ISO year-month-day or
// day-month-year (two-digit year) text. Day and month may drop their
// leading zero. ok is false for empty or unparseable
// input.
func ParseDate(s string) (t time.Time, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// Date is ParseDate wrapped as a cell value; failures become null.
func Date(s string) types.Value {
	t, ok := ParseDate(s)
	if !ok {
		return types.Null()
	}
	return types.Date(t)
}

// DateOrText parses s as a date and keeps the original text when it is not
// one. Empty input is null.
func DateOrText(s string) types.Value {
	if t, ok := ParseDate(s); ok {
		return types.Date(t)
	}
	if strings.TrimSpace(s) == "" {
		return types.Null()
	}
	return types.Text(s)
}

// DateLess orders two date values with nulls last.
func DateLess(a, b types.Value) bool {
	ta, okA := a.Time()
	tb, okB := b.Time()
	switch {
	case okA && okB:
		return ta.Before(tb)
	case okA:
		return true
	default:
		return false
	}
}
