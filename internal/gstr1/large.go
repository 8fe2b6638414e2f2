package gstr1

import (
	"github.com/shopspring/decimal"

	"github.com/nihasbabu/gst-modules/internal/jsonx"
	"github.com/nihasbabu/gst-modules/internal/normalize"
	"github.com/nihasbabu/gst-modules/internal/period"
	"github.com/nihasbabu/gst-modules/internal/source"
	"github.com/nihasbabu/gst-modules/internal/types"
)

// =============================================================================
// LARGE-TIER B2B
// =============================================================================
//
// Filers with more than 500 B2B invoices download the section separately. The
// whole document is one period:
//
//   { "gstin": "...", "fp": "<MMYYYY>", "b2b": [ { "ctin": "...", "inv": [...] } ] }
//
// Line items are assumed present, so there is no error-row fallback. Instead:
//   - rates within 0.02 of a standard slab are snapped onto it; a rate that
//     cannot be snapped highlights its row
//   - an invoice whose items carry two or more distinct positive rates has
//     all of its rows highlighted
//   - integrated tax is taken only for inter-state supplies (place of supply
//     differs from the supplier state), central and state tax only for
//     intra-state ones

// standardRates are the GST slabs a rate is snapped onto.
var standardRates = []decimal.Decimal{
	decimal.NewFromInt(0),
	decimal.NewFromInt(5),
	decimal.NewFromInt(12),
	decimal.NewFromInt(18),
	decimal.NewFromInt(28),
}

var snapTolerance = decimal.RequireFromString("0.02")

// LargeReturn is one parsed large-tier B2B download.
type LargeReturn struct {
	// Name is the base name of the source file.
	Name string

	// Code is the filing period ("fp").
	Code string

	// Month is the reporting month of Code.
	Month string

	gstin string
	b2b   []largeBuyer
}

type largeBuyer struct {
	Ctin jsonx.Text               `json:"ctin"`
	Inv  jsonx.List[largeInvoice] `json:"inv"`
}

type largeInvoice struct {
	Inum       jsonx.Text           `json:"inum"`
	Idt        jsonx.Text           `json:"idt"`
	Val        jsonx.Amount         `json:"val"`
	Pos        jsonx.Text           `json:"pos"`
	Rchrg      jsonx.Text           `json:"rchrg"`
	InvTyp     jsonx.Text           `json:"inv_typ"`
	Irn        jsonx.Text           `json:"irn"`
	Irngendate jsonx.Text           `json:"irngendate"`
	Itms       jsonx.List[lineItem] `json:"itms"`
}

// ParseLarge reads a large-tier download. fallbackCode is used as the period
// when the document carries no "fp".
func ParseLarge(doc *source.Document, fallbackCode string) *LargeReturn {
	var raw struct {
		Gstin jsonx.Text             `json:"gstin"`
		Fp    jsonx.Text             `json:"fp"`
		B2B   jsonx.List[largeBuyer] `json:"b2b"`
	}
	_ = doc.Unmarshal(&raw)

	code := raw.Fp.Trim()
	if code == "" {
		code = fallbackCode
	}
	return &LargeReturn{
		Name:  doc.Name(),
		Code:  code,
		Month: period.Resolve(code),
		gstin: raw.Gstin.String(),
		b2b:   raw.B2B,
	}
}

// B2B extracts one row per line item.
func (l *LargeReturn) B2B() []types.Row {
	supplierState := l.gstin
	if len(supplierState) > 2 {
		supplierState = supplierState[:2]
	}

	var rows []types.Row
	for _, buyer := range l.b2b {
		for _, inv := range buyer.Inv {
			num := inv.Inum.Trim()
			if num == "" {
				continue
			}
			multiRate := distinctPositiveRates(inv.Itms) >= 2
			interState := inv.Pos.String() != supplierState
			invType := inv.InvTyp.Value()

			base := types.NewRow()
			base.Set(colRecipient, buyer.Ctin.Value())
			base.Set(colReceiverName, types.Text(""))
			base.Set(colInvoiceNumber, types.Text(num))
			base.Set(colInvoiceDate, normalize.Date(inv.Idt.String()))
			base.Set(colReportingMonth, types.Text(l.Month))
			base.Set(colTaxType, invType)
			base.Set("Invoice value", inv.Val.Value(normalize.Rounded))
			base.Set(colPOS, stateCode(inv.Pos.String()))
			base.Set("Reverse Charge", inv.Rchrg.Value())
			base.Set("Invoice Type", invType)
			base.Set("E-Commerce GSTIN", types.Text(""))
			base.Set(colIRN, inv.Irn.Value())
			base.Set(colIRNDate, normalize.Date(inv.Irngendate.String()))
			base.Set(colEInvoice, eInvoiceStatus(inv.Irn.String()))

			for _, item := range inv.Itms {
				det := item.ItmDet
				rate, snapped := SnapRate(det.Rt.Dec(normalize.Rounded))

				row := base.Clone()
				row.Set(colRate, types.Number(rate))
				row.Set(colTaxable, det.Txval.Value(normalize.Rounded))
				row.Set(colCess, det.Csamt.Value(normalize.Rounded))
				if interState {
					row.Set(colIntegrated, det.Iamt.Value(normalize.Rounded))
					row.Set(colCentral, types.Int(0))
					row.Set(colState, types.Int(0))
				} else {
					row.Set(colIntegrated, types.Int(0))
					row.Set(colCentral, det.Camt.Value(normalize.Rounded))
					row.Set(colState, det.Samt.Value(normalize.Rounded))
				}
				row.Highlight = multiRate || !snapped
				rows = append(rows, row)
			}
		}
	}
	return rows
}

// SnapRate moves a rate onto the first standard slab within 0.02 of it. ok is
// false when no slab is close enough; the rate is then returned unchanged.
func SnapRate(rate decimal.Decimal) (snapped decimal.Decimal, ok bool) {
	for _, std := range standardRates {
		if rate.Sub(std).Abs().LessThanOrEqual(snapTolerance) {
			return std, true
		}
	}
	return rate, false
}

// distinctPositiveRates counts the different rates above zero among items.
func distinctPositiveRates(items []lineItem) int {
	seen := make(map[string]struct{})
	for _, item := range items {
		if !item.ItmDet.Rt.Dec(normalize.Raw).IsPositive() {
			continue
		}
		seen[item.ItmDet.Rt.Dec(normalize.Rounded).StringFixed(2)] = struct{}{}
	}
	return len(seen)
}
