// =============================================================================
// GST Returns Reporter - Monthly Aggregator
// =============================================================================
//
// This module folds extracted rows into one summary row per month. It is
// shared by every return kind; each summary sheet is described by a View
// (which column holds the month, which fields are summed into which output
// columns, how records are counted, whether the result is negated).
//
// AGGREGATION RULES:
//   - Rows whose month cell is not text are skipped
//   - Only numeric cells are added; text, null and the error marker add 0
//   - With a natural key, the record count is the number of distinct keys
//   - Months passed as expected appear even when no row matched them
//   - Output follows the financial year, unknown labels after March
//
// =============================================================================

package summary

import (
	"github.com/shopspring/decimal"

	"github.com/nihasbabu/gst-modules/internal/period"
	"github.com/nihasbabu/gst-modules/internal/types"
)

// Standard column names shared by most summary sheets.
const (
	ColReportingMonth = "Reporting Month"
	ColMonth          = "Month"
	ColRecords        = "No. of Records"
	ColTaxable        = "Taxable Value"
	ColIntegrated     = "Integrated Tax"
	ColCentral        = "Central Tax"
	ColState          = "State/UT Tax"
	ColCess           = "Cess"
)

// =============================================================================
// VIEW
// =============================================================================

// Sum maps a source field onto an output column.
type Sum struct {
	// Out is the summary column.
	Out string

	// In is the field read from each detail row. Empty means the column is
	// always zero.
	In string
}

// View describes one summary sheet.
type View struct {
	// MonthField is the detail column holding the month name.
	MonthField string

	// MonthColumn is the output column for the month. Defaults to
	// MonthField.
	MonthColumn string

	// CountColumn is the output column for the record count. Empty omits it.
	CountColumn string

	// Key is the natural-key field. When set, records are counted as
	// distinct keys; rows with an empty key do not count.
	Key string

	// GlobalKeys counts each key once across the whole view, in the month
	// it is first seen, instead of once per month.
	GlobalKeys bool

	// CountFrom sums this field to produce the record count instead of
	// counting rows or keys.
	CountFrom string

	// Sums lists the summed output columns in display order.
	Sums []Sum

	// Filter restricts the rows that contribute. Nil accepts every row.
	Filter func(types.Row) bool

	// Negate flips the sign of every non-zero summed value.
	Negate bool
}

// Columns returns the output column names in order.
func (v View) Columns() []string {
	cols := []string{v.monthColumn()}
	if v.CountColumn != "" {
		cols = append(cols, v.CountColumn)
	}
	for _, s := range v.Sums {
		cols = append(cols, s.Out)
	}
	return cols
}

func (v View) monthColumn() string {
	if v.MonthColumn != "" {
		return v.MonthColumn
	}
	return v.MonthField
}

// TaxSums returns the usual taxable-plus-four-taxes column mapping, reading
// the taxable value and cess from the named fields.
func TaxSums(taxableField, cessField string) []Sum {
	return []Sum{
		{Out: ColTaxable, In: taxableField},
		{Out: ColIntegrated, In: ColIntegrated},
		{Out: ColCentral, In: ColCentral},
		{Out: ColState, In: ColState},
		{Out: ColCess, In: cessField},
	}
}

// =============================================================================
// BUILDER
// =============================================================================

type bucket struct {
	count decimal.Decimal
	keys  map[string]struct{}
	sums  []decimal.Decimal
}

// Builder accumulates rows for one View.
type Builder struct {
	view    View
	buckets map[string]*bucket
	seen    map[string]struct{}
}

// NewBuilder creates a Builder seeded with the expected months.
func NewBuilder(view View, expected []string) *Builder {
	b := &Builder{
		view:    view,
		buckets: make(map[string]*bucket),
		seen:    make(map[string]struct{}),
	}
	for _, m := range expected {
		b.bucket(m)
	}
	return b
}

func (b *Builder) bucket(month string) *bucket {
	bk, ok := b.buckets[month]
	if !ok {
		bk = &bucket{
			keys: make(map[string]struct{}),
			sums: make([]decimal.Decimal, len(b.view.Sums)),
		}
		b.buckets[month] = bk
	}
	return bk
}

// Merge adds one detail row. It reports whether the row contributed.
func (b *Builder) Merge(row types.Row) bool {
	if b.view.Filter != nil && !b.view.Filter(row) {
		return false
	}
	mv := row.Get(b.view.MonthField)
	if mv.Kind() != types.KindText {
		return false
	}
	bk := b.bucket(mv.Str())

	switch {
	case b.view.CountFrom != "":
		bk.count = bk.count.Add(row.Get(b.view.CountFrom).Decimal())
	case b.view.Key != "":
		key := row.Get(b.view.Key).String()
		if key == "" {
			break
		}
		if b.view.GlobalKeys {
			if _, dup := b.seen[key]; !dup {
				b.seen[key] = struct{}{}
				bk.count = bk.count.Add(decimal.NewFromInt(1))
			}
		} else {
			bk.keys[key] = struct{}{}
		}
	default:
		bk.count = bk.count.Add(decimal.NewFromInt(1))
	}

	for i, s := range b.view.Sums {
		if s.In == "" {
			continue
		}
		bk.sums[i] = bk.sums[i].Add(row.Get(s.In).Decimal())
	}
	return true
}

// Rows returns one summary row per month in financial-year order.
func (b *Builder) Rows() []types.Row {
	months := make([]string, 0, len(b.buckets))
	for m := range b.buckets {
		months = append(months, m)
	}

	out := make([]types.Row, 0, len(months))
	for _, m := range period.Ordered(months) {
		bk := b.buckets[m]
		row := types.NewRow()
		row.Set(b.view.monthColumn(), types.Text(m))

		if b.view.CountColumn != "" {
			count := bk.count
			if b.view.Key != "" && !b.view.GlobalKeys && b.view.CountFrom == "" {
				count = decimal.NewFromInt(int64(len(bk.keys)))
			}
			row.Set(b.view.CountColumn, types.Number(count))
		}

		for i, s := range b.view.Sums {
			v := types.Number(bk.sums[i])
			if b.view.Negate && v.IsNonZero() {
				v = v.Neg()
			}
			row.Set(s.Out, v)
		}
		out = append(out, row)
	}
	return out
}

// Aggregate is the one-shot form of NewBuilder, Merge and Rows.
//
// PARAMETERS:
//   - view: The summary sheet description.
//   - rows: The detail rows.
//   - expected: Months that must appear even without matching rows.
//
// RETURNS:
//   - Summary rows in financial-year order.
func Aggregate(view View, rows []types.Row, expected []string) []types.Row {
	b := NewBuilder(view, expected)
	for _, r := range rows {
		b.Merge(r)
	}
	return b.Rows()
}

// =============================================================================
// TOTALS
// =============================================================================

// TotalRow sums the given columns over rows and returns a row labelled
// "Total" in labelColumn, marked as a total row.
func TotalRow(rows []types.Row, labelColumn string, columns []string) types.Row {
	total := types.NewRow()
	total.Total = true
	total.Set(labelColumn, types.Text("Total"))
	for _, c := range columns {
		sum := decimal.Zero
		for _, r := range rows {
			sum = sum.Add(r.Get(c).Decimal())
		}
		total.Set(c, types.Number(sum))
	}
	return total
}
