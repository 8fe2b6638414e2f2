// =============================================================================
// GST Returns Reporter - Shared Types
// =============================================================================
//
// This package contains the row and schema types shared by every extractor,
// the aggregator and the report sinks. Keeping them here avoids import cycles
// between:
//   - gstr1, gstr2b, gstr3b, sales (producers of rows)
//   - summary, anomaly (post-processing)
//   - report (consumers of rows)
//
// CELL VALUES:
//   A cell is a small sum type rather than an interface{}. Extracted data can
//   hold text, an exact decimal amount, a calendar date, nothing at all, or the
//   "error" marker that flags a document whose line-item detail could not be
//   recovered. Sinks switch on the kind instead of comparing strings.
//
// =============================================================================

package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// VALUE KINDS
// =============================================================================

// Kind identifies which variant a Value holds.
type Kind int

const (
	// KindNull is an absent value (missing date, unset column).
	KindNull Kind = iota

	// KindText is a plain string.
	KindText

	// KindNumber is an exact decimal amount.
	KindNumber

	// KindDate is a calendar date (no time of day).
	KindDate

	// KindError marks a cell that could not be derived from the source
	// document and needs manual correction.
	KindError
)

// ErrorMarker is the literal text rendered for KindError cells.
const ErrorMarker = "error"

// =============================================================================
// VALUE
// =============================================================================

// Value is a single cell of an extracted row.
type Value struct {
	kind Kind
	text string
	num  decimal.Decimal
	date time.Time
}

// Null returns an empty value.
func Null() Value { return Value{kind: KindNull} }

// Text wraps a string.
func Text(s string) Value { return Value{kind: KindText, text: s} }

// Number wraps a decimal amount.
func Number(d decimal.Decimal) Value { return Value{kind: KindNumber, num: d} }

// Int wraps an integer amount.
func Int(i int64) Value { return Value{kind: KindNumber, num: decimal.NewFromInt(i)} }

// Date wraps a calendar date. The zero time is treated as null.
func Date(t time.Time) Value {
	if t.IsZero() {
		return Null()
	}
	return Value{kind: KindDate, date: t}
}

// ErrorValue returns the "error" marker.
func ErrorValue() Value { return Value{kind: KindError} }

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is empty.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsNumeric reports whether v holds a number. Only numeric values take part
// in summation; everything else contributes zero.
func (v Value) IsNumeric() bool { return v.kind == KindNumber }

// IsError reports whether v is the "error" marker.
func (v Value) IsError() bool { return v.kind == KindError }

// IsNonZero reports whether v is a number different from zero.
func (v Value) IsNonZero() bool { return v.kind == KindNumber && !v.num.IsZero() }

// Decimal returns the numeric content of v, or zero for any other kind.
func (v Value) Decimal() decimal.Decimal {
	if v.kind == KindNumber {
		return v.num
	}
	return decimal.Zero
}

// Time returns the date held by v and whether v is a date.
func (v Value) Time() (time.Time, bool) {
	if v.kind == KindDate {
		return v.date, true
	}
	return time.Time{}, false
}

// Str returns the text of a KindText value, or "" otherwise.
func (v Value) Str() string {
	if v.kind == KindText {
		return v.text
	}
	return ""
}

// String renders v the way a spreadsheet cell would display it before
// number formatting. It is also used for column width calculation.
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumber:
		return v.num.String()
	case KindDate:
		return v.date.Format("2006-01-02")
	case KindError:
		return ErrorMarker
	default:
		return ""
	}
}

// Cell returns the value to hand to a spreadsheet library.
//
// RETURNS:
//   - nil for null values
//   - float64 for numbers
//   - time.Time for dates
//   - string for text and the error marker
func (v Value) Cell() interface{} {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumber:
		return v.num.InexactFloat64()
	case KindDate:
		return v.date
	case KindError:
		return ErrorMarker
	default:
		return nil
	}
}

// Neg returns the arithmetic negation of a numeric value. Other kinds are
// returned unchanged.
func (v Value) Neg() Value {
	if v.kind != KindNumber {
		return v
	}
	return Number(v.num.Neg())
}

// =============================================================================
// ROW
// =============================================================================

// Row is one flat record emitted by an extractor or aggregator.
type Row struct {
	// Values maps column names to cell values. Columns missing from the map
	// read as null.
	Values map[string]Value

	// Highlight marks the row for manual review.
	Highlight bool

	// Total marks a trailing totals row (rendered in red, not bold).
	Total bool
}

// NewRow returns an empty row ready for Set.
func NewRow() Row {
	return Row{Values: make(map[string]Value)}
}

// Get returns the value of a column, or null if the column is not set.
func (r Row) Get(col string) Value {
	if r.Values == nil {
		return Null()
	}
	v, ok := r.Values[col]
	if !ok {
		return Null()
	}
	return v
}

// Set assigns a column value.
func (r Row) Set(col string, v Value) {
	r.Values[col] = v
}

// Text returns the text content of a column ("" for non-text values).
func (r Row) Text(col string) string {
	return r.Get(col).Str()
}

// Clone returns a copy of r with its own value map.
func (r Row) Clone() Row {
	out := Row{
		Values:    make(map[string]Value, len(r.Values)),
		Highlight: r.Highlight,
		Total:     r.Total,
	}
	for k, v := range r.Values {
		out.Values[k] = v
	}
	return out
}

// HasError reports whether any cell holds the error marker.
func (r Row) HasError() bool {
	for _, v := range r.Values {
		if v.IsError() {
			return true
		}
	}
	return false
}
