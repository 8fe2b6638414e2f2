package gstr1

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/nihasbabu/gst-modules/internal/jsonx"
	"github.com/nihasbabu/gst-modules/internal/normalize"
	"github.com/nihasbabu/gst-modules/internal/period"
	"github.com/nihasbabu/gst-modules/internal/types"
)

// =============================================================================
// HSN
// =============================================================================

type hsnEntry struct {
	HsnSc jsonx.Text   `json:"hsn_sc"`
	Uqc   jsonx.Text   `json:"uqc"`
	Rt    jsonx.Amount `json:"rt"`
	Qty   jsonx.Amount `json:"qty"`
	Txval jsonx.Amount `json:"txval"`
	Iamt  jsonx.Amount `json:"iamt"`
	Camt  jsonx.Amount `json:"camt"`
	Samt  jsonx.Amount `json:"samt"`
	Csamt jsonx.Amount `json:"csamt"`
}

type hsnKey struct {
	month string
	code  string
	uqc   string
}

// hsnTotals accumulates one (month, code, unit) group.
type hsnTotals struct {
	records  int64
	rate     decimal.Decimal
	quantity decimal.Decimal
	taxable  decimal.Decimal
	iamt     decimal.Decimal
	camt     decimal.Decimal
	samt     decimal.Decimal
	csamt    decimal.Decimal
}

func (t *hsnTotals) add(e hsnEntry) {
	t.records++
	t.quantity = t.quantity.Add(e.Qty.Dec(normalize.Rounded))
	t.taxable = t.taxable.Add(e.Txval.Dec(normalize.Rounded))
	t.iamt = t.iamt.Add(e.Iamt.Dec(normalize.Rounded))
	t.camt = t.camt.Add(e.Camt.Dec(normalize.Rounded))
	t.samt = t.samt.Add(e.Samt.Dec(normalize.Rounded))
	t.csamt = t.csamt.Add(e.Csamt.Dec(normalize.Rounded))
}

// HSN aggregates the HSN section of every given return by (reporting month,
// code, unit). Entries with a blank code or unit are dropped. The tax rate of
// a group is the rate of its first entry.
//
// RETURNS:
//   - One row per group, ordered by financial-year month and then code.
func HSN(returns []*Return) []types.Row {
	groups := make(map[hsnKey]*hsnTotals)
	var order []hsnKey

	for _, r := range returns {
		var entries jsonx.Section[hsnEntry]
		if !r.section("HSN", &entries) {
			continue
		}
		for _, e := range entries {
			code, uqc := e.HsnSc.Trim(), e.Uqc.Trim()
			if code == "" || uqc == "" {
				continue
			}
			key := hsnKey{month: r.Month, code: code, uqc: uqc}
			t, ok := groups[key]
			if !ok {
				t = &hsnTotals{rate: e.Rt.Dec(normalize.Rounded)}
				groups[key] = t
				order = append(order, key)
			}
			t.add(e)
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		mi, mj := period.Index(order[i].month), period.Index(order[j].month)
		if mi != mj {
			return mi < mj
		}
		return order[i].code < order[j].code
	})

	rows := make([]types.Row, 0, len(order))
	for _, key := range order {
		t := groups[key]
		row := types.NewRow()
		row.Set(colReportingMonth, types.Text(key.month))
		row.Set(colHSNCode, types.Text(key.code))
		row.Set(colRecords, types.Int(t.records))
		row.Set(colUQC, types.Text(key.uqc))
		row.Set("Quantity", types.Number(t.quantity))
		row.Set(colTaxable, types.Number(t.taxable))
		row.Set("Tax Rate", types.Number(t.rate))
		row.Set(colIntegrated, types.Number(t.iamt))
		row.Set(colCentral, types.Number(t.camt))
		row.Set(colState, types.Number(t.samt))
		row.Set(colCess, types.Number(t.csamt))
		rows = append(rows, row)
	}
	return rows
}
