// =============================================================================
// GST Returns Reporter - GSTR-2B Extractors
// =============================================================================
//
// This module turns one GSTR-2B statement into flat rows.
//
// DOCUMENT SHAPE:
//   { "data": {
//       "rtnprd":     "<MMYYYY>",
//       "docdata":    { "b2b": [...], "b2ba": [...], "cdnr": [...], "impg": [...] },
//       "cpsumm":     { "b2ba": [...] },
//       "docRejdata": { "b2b": [...] } } }
//
// Supplier entries hold "inv" or "nt", each either a list or a single object.
// A document with "items" gives one row per item; without items it gives a
// single row with blank part and rate, carrying the document amounts.
//
// All amounts are rounded to two decimals. Dates are read as dates when they
// parse and kept as text otherwise.
//
// =============================================================================

package gstr2b

import (
	"github.com/nihasbabu/gst-modules/internal/jsonx"
	"github.com/nihasbabu/gst-modules/internal/normalize"
	"github.com/nihasbabu/gst-modules/internal/period"
	"github.com/nihasbabu/gst-modules/internal/source"
	"github.com/nihasbabu/gst-modules/internal/types"
)

// =============================================================================
// STATEMENT
// =============================================================================

// Statement is one parsed GSTR-2B file.
type Statement struct {
	// Name is the base name of the source file.
	Name string

	// FilingPeriod is the month of data.rtnprd.
	FilingPeriod string

	data statementData
}

type statementData struct {
	Rtnprd  jsonx.Text `json:"rtnprd"`
	Docdata struct {
		B2B  jsonx.List[supplier]    `json:"b2b"`
		B2BA jsonx.List[supplier]    `json:"b2ba"`
		CDNR jsonx.List[supplier]    `json:"cdnr"`
		IMPG jsonx.List[importEntry] `json:"impg"`
	} `json:"docdata"`
	Cpsumm struct {
		B2BA jsonx.List[cumulative] `json:"b2ba"`
	} `json:"cpsumm"`
	DocRejdata struct {
		B2B jsonx.List[supplier] `json:"b2b"`
	} `json:"docRejdata"`
}

// Parse reads a loaded GSTR-2B document.
func Parse(doc *source.Document) *Statement {
	s := &Statement{Name: doc.Name()}
	jsonx.Decode(doc.Fields["data"], &s.data)
	s.FilingPeriod = period.ResolveLenient(s.data.Rtnprd.String())
	return s
}

// Extract runs the extractor of one section.
func (s *Statement) Extract(section string) []types.Row {
	switch section {
	case SectionB2B:
		return s.B2B()
	case SectionB2BA:
		return s.B2BA()
	case SectionB2BCum:
		return s.B2BACumulative()
	case SectionCDNR:
		return s.CDNR()
	case SectionIMPG:
		return s.IMPG()
	case SectionB2BRej:
		return s.B2BRejected()
	default:
		return nil
	}
}

// =============================================================================
// SHAPES
// =============================================================================

type taxAmounts struct {
	Txval jsonx.Amount `json:"txval"`
	Igst  jsonx.Amount `json:"igst"`
	Cgst  jsonx.Amount `json:"cgst"`
	Sgst  jsonx.Amount `json:"sgst"`
	Cess  jsonx.Amount `json:"cess"`
}

func (a taxAmounts) fill(row types.Row, taxableCol string) {
	row.Set(taxableCol, a.Txval.Value(normalize.Rounded))
	row.Set(colIntegrated, a.Igst.Value(normalize.Rounded))
	row.Set(colCentral, a.Cgst.Value(normalize.Rounded))
	row.Set(colState, a.Sgst.Value(normalize.Rounded))
	row.Set(colCess, a.Cess.Value(normalize.Rounded))
}

type item struct {
	taxAmounts
	Num jsonx.Text   `json:"num"`
	Rt  jsonx.Amount `json:"rt"`
}

// document is an invoice or a note.
type document struct {
	taxAmounts
	Inum   jsonx.Text       `json:"inum"`
	Oinum  jsonx.Text       `json:"oinum"`
	Oidt   jsonx.Text       `json:"oidt"`
	Ntnum  jsonx.Text       `json:"ntnum"`
	Typ    jsonx.Text       `json:"typ"`
	Suptyp jsonx.Text       `json:"suptyp"`
	Dt     jsonx.Text       `json:"dt"`
	Val    jsonx.Amount     `json:"val"`
	Pos    jsonx.Amount     `json:"pos"`
	Rev    jsonx.Text       `json:"rev"`
	Itcavl jsonx.Text       `json:"itcavl"`
	Rsn    jsonx.Text       `json:"rsn"`
	Srctyp jsonx.Text       `json:"srctyp"`
	Items  jsonx.List[item] `json:"items"`
}

type supplier struct {
	Ctin     jsonx.Text           `json:"ctin"`
	Trdnm    jsonx.Text           `json:"trdnm"`
	Supprd   jsonx.Text           `json:"supprd"`
	Supfildt jsonx.Text           `json:"supfildt"`
	Inv      jsonx.List[document] `json:"inv"`
	Nt       jsonx.List[document] `json:"nt"`
}

type cumulative struct {
	taxAmounts
	Ctin     jsonx.Text   `json:"ctin"`
	Trdnm    jsonx.Text   `json:"trdnm"`
	Supprd   jsonx.Text   `json:"supprd"`
	Supfildt jsonx.Text   `json:"supfildt"`
	Ttldocs  jsonx.Amount `json:"ttldocs"`
}

type importEntry struct {
	taxAmounts
	Refdt    jsonx.Text `json:"refdt"`
	Portcode jsonx.Text `json:"portcode"`
	Boenum   jsonx.Text `json:"boenum"`
	Boedt    jsonx.Text `json:"boedt"`
	Recdt    jsonx.Text `json:"recdt"`
	Isamd    jsonx.Text `json:"isamd"`
}

// supplierRow starts a row with the supplier and period columns.
func (s *Statement) supplierRow(ctin, trdnm, supprd, supfildt jsonx.Text) types.Row {
	row := types.NewRow()
	row.Set(colSupplier, ctin.Value())
	row.Set(colTradeName, trdnm.Value())
	row.Set(colPeriod, types.Text(period.ResolveLenient(supprd.String())))
	row.Set(colFilingDate, normalize.DateOrText(supfildt.String()))
	row.Set(colFilingPeriod, types.Text(s.FilingPeriod))
	return row
}

// expand emits one row per item of doc, or a single row with blank part and
// rate when it has none.
func expand(base types.Row, doc document, partCol string) []types.Row {
	if len(doc.Items) == 0 {
		row := base.Clone()
		row.Set(partCol, types.Text(""))
		row.Set(colRate, types.Text(""))
		doc.fill(row, colTotalTaxable)
		return []types.Row{row}
	}
	rows := make([]types.Row, 0, len(doc.Items))
	for _, it := range doc.Items {
		row := base.Clone()
		row.Set(partCol, it.Num.Value())
		row.Set(colRate, it.Rt.Value(normalize.Rounded))
		it.fill(row, colTotalTaxable)
		rows = append(rows, row)
	}
	return rows
}

// =============================================================================
// EXTRACTORS
// =============================================================================

// B2B extracts invoices with ITC available.
func (s *Statement) B2B() []types.Row {
	return s.invoices(s.data.Docdata.B2B, false)
}

// B2BRejected extracts invoices whose ITC was rejected.
func (s *Statement) B2BRejected() []types.Row {
	return s.invoices(s.data.DocRejdata.B2B, true)
}

func (s *Statement) invoices(suppliers []supplier, rejected bool) []types.Row {
	var rows []types.Row
	for _, sup := range suppliers {
		for _, inv := range sup.Inv {
			base := s.supplierRow(sup.Ctin, sup.Trdnm, sup.Supprd, sup.Supfildt)
			base.Set(colInvoiceNumber, inv.Inum.Value())
			base.Set(colInvoiceType, inv.Typ.Value())
			base.Set(colInvoiceDate, normalize.DateOrText(inv.Dt.String()))
			base.Set(colInvoiceValue, inv.Val.Value(normalize.Rounded))
			base.Set(colPOS, inv.Pos.Value(normalize.Integer))
			base.Set(colSource, inv.Srctyp.Value())
			if !rejected {
				base.Set(colReverse, inv.Rev.Value())
				base.Set(colITC, inv.Itcavl.Value())
				base.Set(colReason, inv.Rsn.Value())
			}
			rows = append(rows, expand(base, inv, colInvoicePart)...)
		}
	}
	return rows
}

// B2BA extracts amended invoices.
func (s *Statement) B2BA() []types.Row {
	var rows []types.Row
	for _, sup := range s.data.Docdata.B2BA {
		for _, inv := range sup.Inv {
			base := s.supplierRow(sup.Ctin, sup.Trdnm, sup.Supprd, sup.Supfildt)
			base.Set(colOrigNumber, inv.Oinum.Value())
			base.Set(colOrigDate, normalize.DateOrText(inv.Oidt.String()))
			base.Set(colInvoiceNumber, inv.Inum.Value())
			base.Set(colInvoiceDate, normalize.DateOrText(inv.Dt.String()))
			base.Set(colInvoiceType, inv.Typ.Value())
			base.Set(colInvoiceValue, inv.Val.Value(normalize.Rounded))
			base.Set(colPOS, inv.Pos.Value(normalize.Integer))
			base.Set(colReverse, inv.Rev.Value())
			base.Set(colITC, inv.Itcavl.Value())
			base.Set(colReason, inv.Rsn.Value())
			rows = append(rows, expand(base, inv, colInvoicePart)...)
		}
	}
	return rows
}

// B2BACumulative extracts the per-supplier cumulative amendment totals.
func (s *Statement) B2BACumulative() []types.Row {
	rows := make([]types.Row, 0, len(s.data.Cpsumm.B2BA))
	for _, c := range s.data.Cpsumm.B2BA {
		row := s.supplierRow(c.Ctin, c.Trdnm, c.Supprd, c.Supfildt)
		row.Set(colTotalDocs, c.Ttldocs.Value(normalize.Integer))
		c.fill(row, colTotalTaxable)
		rows = append(rows, row)
	}
	return rows
}

// CDNR extracts credit and debit notes.
func (s *Statement) CDNR() []types.Row {
	var rows []types.Row
	for _, sup := range s.data.Docdata.CDNR {
		for _, note := range sup.Nt {
			base := s.supplierRow(sup.Ctin, sup.Trdnm, sup.Supprd, sup.Supfildt)
			base.Set(colNoteNumber, note.Ntnum.Value())
			base.Set(colNoteType, note.Typ.Value())
			base.Set(colNoteSupply, note.Suptyp.Value())
			base.Set(colNoteDate, normalize.DateOrText(note.Dt.String()))
			base.Set(colNoteValue, note.Val.Value(normalize.Rounded))
			base.Set(colPOS, note.Pos.Value(normalize.Integer))
			base.Set(colReverse, note.Rev.Value())
			base.Set(colITC, note.Itcavl.Value())
			base.Set(colReason, note.Rsn.Value())
			rows = append(rows, expand(base, note, colNotePart)...)
		}
	}
	return rows
}

// IMPG extracts bills of entry for imported goods.
func (s *Statement) IMPG() []types.Row {
	rows := make([]types.Row, 0, len(s.data.Docdata.IMPG))
	for _, e := range s.data.Docdata.IMPG {
		row := types.NewRow()
		row.Set(colRefDate, normalize.DateOrText(e.Refdt.String()))
		row.Set(colPortCode, e.Portcode.Value())
		row.Set(colBOENumber, e.Boenum.Value())
		row.Set(colBOEDate, normalize.DateOrText(e.Boedt.String()))
		row.Set(colTaxable, e.Txval.Value(normalize.Rounded))
		row.Set(colIntegrated, e.Igst.Value(normalize.Rounded))
		row.Set(colCess, e.Cess.Value(normalize.Rounded))
		row.Set(colRecordDate, normalize.DateOrText(e.Recdt.String()))
		row.Set(colFilingPeriod, types.Text(s.FilingPeriod))
		row.Set(colAmended, e.Isamd.Value())
		rows = append(rows, row)
	}
	return rows
}
