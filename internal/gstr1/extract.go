// =============================================================================
// GST Returns Reporter - GSTR-1 Extractors
// =============================================================================
//
// This module turns one GSTR-1 export (the small-tier download, keyed by its
// return period) into flat rows, one extractor per section.
//
// DOCUMENT SHAPE:
//   { "<MMYYYY>": {
//       "summary":  { "data": { "ret_period": "<MMYYYY>" } },
//       "sections": { "B2B": {...}, "CDNR": {...}, ... } } }
//
// INVOICE AND NOTE SECTIONS (B2B, CDNR, EXP, B2BA, CDNUR):
//   Each document carries top-level amounts and, normally, nested line items
//   under its own "invoiceDetails". When the nested items are missing a single
//   row is emitted with Rate set to the error marker and the top-level
//   amounts. Otherwise one row is emitted per line item carrying both "rt"
//   and "txval". Rows whose natural key repeats within the document are
//   highlighted.
//
// FLAT SECTIONS (B2CS, NIL, DOC, AT, TXPD):
//   Read entry by entry, no fallback and no highlighting.
//
// =============================================================================

package gstr1

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/nihasbabu/gst-modules/internal/anomaly"
	"github.com/nihasbabu/gst-modules/internal/jsonx"
	"github.com/nihasbabu/gst-modules/internal/normalize"
	"github.com/nihasbabu/gst-modules/internal/period"
	"github.com/nihasbabu/gst-modules/internal/source"
	"github.com/nihasbabu/gst-modules/internal/types"
)

// =============================================================================
// RETURN
// =============================================================================

// Return is one parsed small-tier GSTR-1 export.
type Return struct {
	// Name is the base name of the source file.
	Name string

	// Code is the period key the document is wrapped in, e.g. "042024".
	Code string

	// Month is the reporting month taken from summary.data.ret_period.
	Month string

	sections map[string]json.RawMessage
}

// Parse reads the period wrapper of a loaded document. A document without a
// period key yields a Return whose extractors emit nothing.
func Parse(doc *source.Document) *Return {
	r := &Return{Name: doc.Name(), Month: period.Unknown}
	key, ok := doc.PeriodKey()
	if !ok {
		return r
	}
	r.Code = key

	var inner struct {
		Summary struct {
			Data struct {
				RetPeriod jsonx.Text `json:"ret_period"`
			} `json:"data"`
		} `json:"summary"`
		Sections map[string]json.RawMessage `json:"sections"`
	}
	jsonx.Decode(doc.Fields[key], &inner)

	r.Month = period.Resolve(inner.Summary.Data.RetPeriod.String())
	r.sections = inner.Sections
	return r
}

// PeriodMonth is the month named by the period key. It is what the run
// records as processed.
func (r *Return) PeriodMonth() string {
	return period.Resolve(r.Code)
}

func (r *Return) section(name string, v interface{}) bool {
	return jsonx.Decode(r.sections[name], v)
}

// Extract runs the extractor of one section. HSN is not extracted per
// document; see HSN.
func (r *Return) Extract(section string) []types.Row {
	switch section {
	case SectionB2B:
		return r.B2B()
	case SectionCDNR:
		return r.CDNR()
	case SectionB2CS:
		return r.B2CS()
	case SectionNIL:
		return r.NIL()
	case SectionEXP:
		return r.EXP()
	case SectionB2BA:
		return r.B2BA()
	case SectionCDNUR:
		return r.CDNUR()
	case SectionDOC:
		return r.DOC()
	case SectionAT:
		return r.advances(SectionAT)
	case SectionTXPD:
		return r.advances(SectionTXPD)
	default:
		return nil
	}
}

// =============================================================================
// SHARED SHAPES
// =============================================================================

// taxLine is one line item: a rate with its taxable value and tax amounts.
type taxLine struct {
	Rt    jsonx.Amount `json:"rt"`
	Txval jsonx.Amount `json:"txval"`
	Iamt  jsonx.Amount `json:"iamt"`
	Camt  jsonx.Amount `json:"camt"`
	Samt  jsonx.Amount `json:"samt"`
	Csamt jsonx.Amount `json:"csamt"`
}

// complete reports whether the item carries both a rate and a taxable value.
func (l taxLine) complete() bool {
	return l.Rt.Present() && l.Txval.Present()
}

// fill writes the item onto a row. The rate is always kept as written.
func (l taxLine) fill(row types.Row, taxableCol, cessCol string, mode normalize.Mode) {
	row.Set(colRate, l.Rt.Value(normalize.Raw))
	row.Set(taxableCol, l.Txval.Value(mode))
	row.Set(colIntegrated, l.Iamt.Value(mode))
	row.Set(colCentral, l.Camt.Value(mode))
	row.Set(colState, l.Samt.Value(mode))
	row.Set(cessCol, l.Csamt.Value(mode))
}

type lineItem struct {
	ItmDet taxLine `json:"itm_det"`
}

type itemGroup struct {
	Itms jsonx.List[lineItem] `json:"itms"`
}

// docAmounts are the document-level totals used when line items are missing.
type docAmounts struct {
	Val      jsonx.Amount `json:"val"`
	Invtxval jsonx.Amount `json:"invtxval"`
	Inviamt  jsonx.Amount `json:"inviamt"`
	Invcamt  jsonx.Amount `json:"invcamt"`
	Invsamt  jsonx.Amount `json:"invsamt"`
	Invcsamt jsonx.Amount `json:"invcsamt"`
}

// taxableOrValue is invtxval when present, else val.
func (a docAmounts) taxableOrValue() jsonx.Amount {
	return a.Invtxval.Or(a.Val)
}

// fallback writes the error marker and the top-level amounts onto a row.
func (a docAmounts) fallback(row types.Row, taxable jsonx.Amount, taxableCol, cessCol string) {
	row.Set(colRate, types.ErrorValue())
	row.Set(taxableCol, taxable.Value(normalize.Rounded))
	row.Set(colIntegrated, a.Inviamt.Value(normalize.Rounded))
	row.Set(colCentral, a.Invcamt.Value(normalize.Rounded))
	row.Set(colState, a.Invsamt.Value(normalize.Rounded))
	row.Set(cessCol, a.Invcsamt.Value(normalize.Rounded))
}

type party struct {
	Ctin      jsonx.Text `json:"ctin"`
	TradeName jsonx.Text `json:"trade_name"`
	TxpTyp    jsonx.Text `json:"txp_typ"`
}

type supplierGroup[T any] struct {
	Supplier party         `json:"supplier"`
	Docs     jsonx.List[T] `json:"invoiceDetails"`
}

type supplierSection[T any] struct {
	Suppliers jsonx.List[supplierGroup[T]] `json:"suppliers"`
}

type detailSection[T any] struct {
	Docs jsonx.List[T] `json:"invoiceDetails"`
}

// stateCode returns the first two characters of a GSTIN as a number, or as
// text when they are not digits.
func stateCode(gstin string) types.Value {
	if gstin == "" {
		return types.Null()
	}
	code := gstin
	if len(code) > 2 {
		code = code[:2]
	}
	d, err := decimal.NewFromString(code)
	if err != nil {
		return types.Text(code)
	}
	return types.Number(d)
}

func eInvoiceStatus(irn string) types.Value {
	if irn != "" {
		return types.Text("Yes")
	}
	return types.Text("")
}

// =============================================================================
// B2B, SEZ, DE
// =============================================================================

type b2bInvoice struct {
	docAmounts
	Inum       jsonx.Text             `json:"inum"`
	Idt        jsonx.Text             `json:"idt"`
	Rchrg      jsonx.Text             `json:"rchrg"`
	InvTyp     jsonx.Text             `json:"inv_typ"`
	Ctin       jsonx.Text             `json:"ctin"`
	Irn        jsonx.Text             `json:"irn"`
	Irngendate jsonx.Text             `json:"irngendate"`
	Nested     jsonx.List[invWrapper] `json:"invoiceDetails"`
}

type invWrapper struct {
	Inv jsonx.List[itemGroup] `json:"inv"`
}

// B2B extracts registered-recipient invoices. Invoices with a blank number
// are skipped. Only the first nested invoice is read.
func (r *Return) B2B() []types.Row {
	var sec supplierSection[b2bInvoice]
	if !r.section("B2B", &sec) {
		return nil
	}

	var rows []types.Row
	for _, sup := range sec.Suppliers {
		gstin := sup.Supplier.Ctin.String()
		for _, inv := range sup.Docs {
			num := inv.Inum.Trim()
			if num == "" {
				continue
			}

			base := types.NewRow()
			base.Set(colRecipient, types.Text(gstin))
			base.Set(colReceiverName, sup.Supplier.TradeName.Value())
			base.Set(colInvoiceNumber, types.Text(num))
			base.Set(colInvoiceDate, normalize.Date(inv.Idt.String()))
			base.Set(colReportingMonth, types.Text(r.Month))
			base.Set(colTaxType, sup.Supplier.TxpTyp.Value())
			base.Set("Invoice value", inv.Val.Value(normalize.Rounded))
			base.Set(colPOS, stateCode(gstin))
			base.Set("Reverse Charge", inv.Rchrg.Value())
			base.Set("Invoice Type", inv.InvTyp.Value())
			base.Set("E-Commerce GSTIN", inv.Ctin.Value())
			base.Set(colIRN, inv.Irn.Value())
			base.Set(colIRNDate, normalize.Date(inv.Irngendate.String()))
			base.Set(colEInvoice, eInvoiceStatus(inv.Irn.String()))

			if len(inv.Nested) == 0 || len(inv.Nested[0].Inv) == 0 {
				inv.fallback(base, inv.Invtxval, colTaxable, colCess)
				rows = append(rows, base)
				continue
			}
			for _, item := range inv.Nested[0].Inv[0].Itms {
				if !item.ItmDet.complete() {
					continue
				}
				row := base.Clone()
				item.ItmDet.fill(row, colTaxable, colCess, normalize.Rounded)
				rows = append(rows, row)
			}
		}
	}
	anomaly.FlagDuplicates(rows, colInvoiceNumber)
	return rows
}

// =============================================================================
// CDNR
// =============================================================================

type cdnrNote struct {
	docAmounts
	NtNum      jsonx.Text            `json:"nt_num"`
	NtDt       jsonx.Text            `json:"nt_dt"`
	Ntty       jsonx.Text            `json:"ntty"`
	Rchrg      jsonx.Text            `json:"rchrg"`
	InvTyp     jsonx.Text            `json:"inv_typ"`
	Irn        jsonx.Text            `json:"irn"`
	Irngendate jsonx.Text            `json:"irngendate"`
	Nested     jsonx.List[ntWrapper] `json:"invoiceDetails"`
}

type ntWrapper struct {
	Nt jsonx.List[itemGroup] `json:"nt"`
}

// CDNR extracts credit and debit notes issued to registered recipients.
func (r *Return) CDNR() []types.Row {
	var sec supplierSection[cdnrNote]
	if !r.section("CDNR", &sec) {
		return nil
	}

	var rows []types.Row
	for _, sup := range sec.Suppliers {
		gstin := sup.Supplier.Ctin.String()
		for _, note := range sup.Docs {
			num := note.NtNum.Trim()
			if num == "" {
				continue
			}

			base := types.NewRow()
			base.Set(colRecipient, types.Text(gstin))
			base.Set(colReceiverName, sup.Supplier.TradeName.Value())
			base.Set(colNoteNumber, types.Text(num))
			base.Set(colNoteDate, normalize.Date(note.NtDt.String()))
			base.Set(colReportingMonth, types.Text(r.Month))
			base.Set("Note Type", note.Ntty.Value())
			base.Set(colPOS, stateCode(gstin))
			base.Set("Reverse Charge", note.Rchrg.Value())
			base.Set("Note Supply Type", note.InvTyp.Value())
			base.Set("Note Value", note.Val.Value(normalize.Rounded))
			base.Set(colIRN, note.Irn.Value())
			base.Set(colIRNDate, normalize.Date(note.Irngendate.String()))
			base.Set(colEInvoice, eInvoiceStatus(note.Irn.String()))

			if len(note.Nested) == 0 || len(note.Nested[0].Nt) == 0 {
				note.fallback(base, note.taxableOrValue(), colTaxable, colCessAmount)
				rows = append(rows, base)
				continue
			}
			for _, item := range note.Nested[0].Nt[0].Itms {
				if !item.ItmDet.complete() {
					continue
				}
				row := base.Clone()
				item.ItmDet.fill(row, colTaxable, colCessAmount, normalize.Rounded)
				rows = append(rows, row)
			}
		}
	}
	anomaly.FlagDuplicates(rows, colNoteNumber)
	return rows
}

// =============================================================================
// B2CS AND NIL
// =============================================================================

type b2csEntry struct {
	Pos      jsonx.Amount `json:"pos"`
	Rt       jsonx.Amount `json:"rt"`
	Invtxval jsonx.Amount `json:"invtxval"`
	Inviamt  jsonx.Amount `json:"inviamt"`
	Invcamt  jsonx.Amount `json:"invcamt"`
	Invsamt  jsonx.Amount `json:"invsamt"`
	Invcsamt jsonx.Amount `json:"invcsamt"`
	Typ      jsonx.Text   `json:"typ"`
	SplyTy   jsonx.Text   `json:"sply_ty"`
}

// B2CS extracts the consolidated unregistered-recipient supplies.
func (r *Return) B2CS() []types.Row {
	var entries jsonx.Section[b2csEntry]
	if !r.section("B2CS", &entries) {
		return nil
	}
	rows := make([]types.Row, 0, len(entries))
	for _, e := range entries {
		row := types.NewRow()
		row.Set(colReportingMonth, types.Text(r.Month))
		row.Set(colPOS, e.Pos.Value(normalize.Integer))
		row.Set(colRate, e.Rt.Value(normalize.Rounded))
		row.Set(colTaxable, e.Invtxval.Value(normalize.Rounded))
		row.Set(colIntegrated, e.Inviamt.Value(normalize.Rounded))
		row.Set(colCentral, e.Invcamt.Value(normalize.Rounded))
		row.Set(colState, e.Invsamt.Value(normalize.Rounded))
		row.Set(colCess, e.Invcsamt.Value(normalize.Rounded))
		row.Set("Type", e.Typ.Value())
		row.Set("Supply Type", e.SplyTy.Value())
		rows = append(rows, row)
	}
	return rows
}

type nilEntry struct {
	SplyTy   jsonx.Text   `json:"sply_ty"`
	NilAmt   jsonx.Amount `json:"nil_amt"`
	ExptAmt  jsonx.Amount `json:"expt_amt"`
	NgsupAmt jsonx.Amount `json:"ngsup_amt"`
}

// NIL extracts nil-rated, exempted and non-GST supplies.
func (r *Return) NIL() []types.Row {
	var entries jsonx.Section[nilEntry]
	if !r.section("NIL", &entries) {
		return nil
	}
	rows := make([]types.Row, 0, len(entries))
	for _, e := range entries {
		row := types.NewRow()
		row.Set(colReportingMonth, types.Text(r.Month))
		row.Set("Supply Type", e.SplyTy.Value())
		row.Set(colNilRated, e.NilAmt.Value(normalize.Rounded))
		row.Set(colExempted, e.ExptAmt.Value(normalize.Rounded))
		row.Set(colNonGST, e.NgsupAmt.Value(normalize.Rounded))
		rows = append(rows, row)
	}
	return rows
}

// =============================================================================
// EXP
// =============================================================================

type expInvoice struct {
	docAmounts
	Inum       jsonx.Text             `json:"inum"`
	Idt        jsonx.Text             `json:"idt"`
	Irn        jsonx.Text             `json:"irn"`
	Irngendate jsonx.Text             `json:"irngendate"`
	ExpTyp     jsonx.Text             `json:"exp_typ"`
	Srctyp     jsonx.Text             `json:"srctyp"`
	Nested     jsonx.List[expWrapper] `json:"invoiceDetails"`
}

type expWrapper struct {
	Inv jsonx.List[expGroup] `json:"inv"`
}

// Export line items carry the rate directly, without an itm_det wrapper.
type expGroup struct {
	Itms jsonx.List[taxLine] `json:"itms"`
}

// EXP extracts export invoices. Invoice numbers are taken as written and line
// item amounts are not rounded.
func (r *Return) EXP() []types.Row {
	var sec detailSection[expInvoice]
	if !r.section("EXP", &sec) {
		return nil
	}

	var rows []types.Row
	for _, inv := range sec.Docs {
		base := types.NewRow()
		base.Set(colExpInvoice, inv.Inum.Value())
		base.Set(colInvoiceDate, normalize.Date(inv.Idt.String()))
		base.Set(colReportingMonth, types.Text(r.Month))
		base.Set(colGSTPayment, inv.ExpTyp.Value())
		base.Set("Supply type", inv.Srctyp.Value())
		base.Set("Total Invoice value", inv.Val.Value(normalize.Raw))
		base.Set(colIRN, inv.Irn.Value())
		base.Set(colIRNDate, normalize.Date(inv.Irngendate.String()))

		if len(inv.Nested) == 0 || len(inv.Nested[0].Inv) == 0 {
			inv.fallback(base, inv.taxableOrValue(), colTotalTaxable, colCess)
			rows = append(rows, base)
			continue
		}
		for _, group := range inv.Nested[0].Inv {
			for _, item := range group.Itms {
				if !item.complete() {
					continue
				}
				row := base.Clone()
				item.fill(row, colTotalTaxable, colCess, normalize.Raw)
				rows = append(rows, row)
			}
		}
	}
	anomaly.FlagDuplicates(rows, colExpInvoice)
	return rows
}

// =============================================================================
// B2BA
// =============================================================================

type b2baInvoice struct {
	docAmounts
	Inum   jsonx.Text             `json:"inum"`
	Idt    jsonx.Text             `json:"idt"`
	Oinum  jsonx.Text             `json:"oinum"`
	Oidt   jsonx.Text             `json:"oidt"`
	Ctin   jsonx.Text             `json:"ctin"`
	Nested jsonx.List[invWrapper] `json:"invoiceDetails"`
}

// B2BA extracts amended B2B invoices. Rows are keyed by the original invoice
// number and every nested invoice is read.
func (r *Return) B2BA() []types.Row {
	var sec detailSection[b2baInvoice]
	if !r.section("B2BA", &sec) {
		return nil
	}

	var rows []types.Row
	for _, inv := range sec.Docs {
		base := types.NewRow()
		base.Set("Recipient GSTIN/UIN", inv.Ctin.Value())
		base.Set("Revised Invoice no", inv.Inum.Value())
		base.Set(colB2BADate, normalize.Date(inv.Idt.String()))
		base.Set(colReportingMonth, types.Text(r.Month))
		base.Set(colB2BAOriginal, inv.Oinum.Value())
		base.Set("Revised/Original Invoice date", normalize.Date(inv.Oidt.String()))
		base.Set("Total Invoice value", inv.Val.Value(normalize.Rounded))

		if len(inv.Nested) == 0 || len(inv.Nested[0].Inv) == 0 {
			inv.fallback(base, inv.taxableOrValue(), colTotalTaxable, colCess)
			rows = append(rows, base)
			continue
		}
		for _, group := range inv.Nested[0].Inv {
			for _, item := range group.Itms {
				if !item.ItmDet.complete() {
					continue
				}
				row := base.Clone()
				item.ItmDet.fill(row, colTotalTaxable, colCess, normalize.Rounded)
				rows = append(rows, row)
			}
		}
	}
	anomaly.FlagDuplicates(rows, colB2BAOriginal)
	return rows
}

// =============================================================================
// CDNUR
// =============================================================================

type cdnurNote struct {
	docAmounts
	NtNum      jsonx.Text            `json:"nt_num"`
	NtDt       jsonx.Text            `json:"nt_dt"`
	Ntty       jsonx.Text            `json:"ntty"`
	Typ        jsonx.Text            `json:"typ"`
	Irn        jsonx.Text            `json:"irn"`
	Irngendate jsonx.Text            `json:"irngendate"`
	Nested     jsonx.List[itemGroup] `json:"invoiceDetails"`
}

// CDNUR extracts credit and debit notes issued to unregistered recipients.
// Their line items sit directly under the first nested entry.
func (r *Return) CDNUR() []types.Row {
	var sec detailSection[cdnurNote]
	if !r.section("CDNUR", &sec) {
		return nil
	}

	var rows []types.Row
	for _, note := range sec.Docs {
		base := types.NewRow()
		base.Set(colCDNURNumber, note.NtNum.Value())
		base.Set(colCDNURDate, normalize.Date(note.NtDt.String()))
		base.Set(colReportingMonth, types.Text(r.Month))
		base.Set("Note Type", note.Ntty.Value())
		base.Set(colCDNURType, note.Typ.Value())
		base.Set(colIRN, note.Irn.Value())
		base.Set(colIRNDate, normalize.Date(note.Irngendate.String()))

		if len(note.Nested) == 0 || len(note.Nested[0].Itms) == 0 {
			note.fallback(base, note.taxableOrValue(), colTaxable, colCess)
			rows = append(rows, base)
			continue
		}
		for _, item := range note.Nested[0].Itms {
			if !item.ItmDet.complete() {
				continue
			}
			row := base.Clone()
			item.ItmDet.fill(row, colTaxable, colCess, normalize.Rounded)
			rows = append(rows, row)
		}
	}
	anomaly.FlagDuplicates(rows, colCDNURNumber)
	return rows
}

// =============================================================================
// DOC, AT, TXPD
// =============================================================================

type docEntry struct {
	DocTyp jsonx.Text           `json:"doc_typ"`
	Docs   jsonx.List[docRange] `json:"docs"`
}

type docRange struct {
	From     jsonx.Text   `json:"from"`
	To       jsonx.Text   `json:"to"`
	Totnum   jsonx.Amount `json:"totnum"`
	Cancel   jsonx.Amount `json:"cancel"`
	NetIssue jsonx.Amount `json:"net_issue"`
}

// DOC extracts the documents-issued register. Each row carries its document
// type in a column that is not part of the sheet.
func (r *Return) DOC() []types.Row {
	var entries jsonx.Section[docEntry]
	if !r.section("DOC", &entries) {
		return nil
	}
	var rows []types.Row
	for _, e := range entries {
		for _, d := range e.Docs {
			row := types.NewRow()
			row.Set(colReportingMonth, types.Text(r.Month))
			row.Set("From (Sr. No.)", d.From.Value())
			row.Set("To (Sr. No.)", d.To.Value())
			row.Set(colTotalNumber, d.Totnum.Value(normalize.Integer))
			row.Set(colCancelled, d.Cancel.Value(normalize.Integer))
			row.Set(colNetIssued, d.NetIssue.Value(normalize.Integer))
			row.Set(colDocType, e.DocTyp.Value())
			rows = append(rows, row)
		}
	}
	return rows
}

type advanceEntry struct {
	Pos      jsonx.Text   `json:"pos"`
	SplyTy   jsonx.Text   `json:"sply_ty"`
	Invadamt jsonx.Amount `json:"invadamt"`
	Inviamt  jsonx.Amount `json:"inviamt"`
	Invcamt  jsonx.Amount `json:"invcamt"`
	Invsamt  jsonx.Amount `json:"invsamt"`
	Invcsamt jsonx.Amount `json:"invcsamt"`
}

// AT extracts advances received.
func (r *Return) AT() []types.Row { return r.advances(SectionAT) }

// TXPD extracts advances adjusted.
func (r *Return) TXPD() []types.Row { return r.advances(SectionTXPD) }

func (r *Return) advances(name string) []types.Row {
	var entries jsonx.Section[advanceEntry]
	if !r.section(name, &entries) {
		return nil
	}
	rows := make([]types.Row, 0, len(entries))
	for _, e := range entries {
		row := types.NewRow()
		row.Set(colMonth, types.Text(r.Month))
		row.Set(colPOS, e.Pos.Value())
		row.Set("Supply Type", e.SplyTy.Value())
		row.Set(colGrossAdv, e.Invadamt.Value(normalize.Rounded))
		row.Set(colIntegrated, e.Inviamt.Value(normalize.Rounded))
		row.Set(colCentral, e.Invcamt.Value(normalize.Rounded))
		row.Set(colState, e.Invsamt.Value(normalize.Rounded))
		row.Set(colAdvCess, e.Invcsamt.Value(normalize.Rounded))
		rows = append(rows, row)
	}
	return rows
}
