package gstr2b

import (
	"github.com/nihasbabu/gst-modules/internal/summary"
	"github.com/nihasbabu/gst-modules/internal/types"
)

// Section (and sheet) names.
const (
	SectionB2B    = "2B-B2B"
	SectionB2BA   = "2B-B2BA"
	SectionB2BCum = "2B-B2BA(cum)"
	SectionCDNR   = "2B-CDNR"
	SectionIMPG   = "2B-IMPG"
	SectionB2BRej = "2B-B2B(ITC_Rej)"
)

// Sections lists the detail sections in report order.
var Sections = []string{
	SectionB2B, SectionB2BA, SectionB2BCum, SectionCDNR, SectionIMPG, SectionB2BRej,
}

const (
	colSupplier      = "GSTIN of supplier"
	colTradeName     = "Trade/legal name"
	colInvoiceNumber = "Invoice number"
	colInvoicePart   = "Invoice Part"
	colInvoiceType   = "Invoice type"
	colInvoiceDate   = "Invoice Date"
	colInvoiceValue  = "Invoice Value"
	colOrigNumber    = "Original Invoice number"
	colOrigDate      = "Original Invoice Date"
	colNoteNumber    = "Note number"
	colNotePart      = "Note Part"
	colNoteType      = "Note type"
	colNoteSupply    = "Note supply type"
	colNoteDate      = "Note Date"
	colNoteValue     = "Note Value"
	colRate          = "Tax Rate"
	colPOS           = "Place of supply"
	colReverse       = "Supply Attract Reverse Charge"
	colTotalTaxable  = "Total Taxable Value"
	colTaxable       = "Taxable Value"
	colIntegrated    = "Integrated Tax"
	colCentral       = "Central Tax"
	colState         = "State/UT Tax"
	colCess          = "Cess"
	colPeriod        = "GSTR Period"
	colFilingDate    = "GSTR Filing Date"
	colFilingPeriod  = "GSTR Filing Period"
	colITC           = "ITC Availability"
	colReason        = "Reason"
	colSource        = "Source"
	colTotalDocs     = "Total Documents"
	colRefDate       = "ICEGATE Reference Date"
	colPortCode      = "Port Code"
	colBOENumber     = "Bill of Entry Number"
	colBOEDate       = "Bill of Entry Date"
	colRecordDate    = "Record Date"
	colAmended       = "Amended (Yes)"
	colMonth         = "Month"
)

const (
	indian = types.FormatIndian
	date   = types.FormatDate
)

// columnPad widens every 2B column by two characters.
const columnPad = 2

var formats = map[string]string{
	colInvoiceDate: date, colOrigDate: date, colNoteDate: date, colFilingDate: date,
	colRefDate: date, colBOEDate: date, colRecordDate: date,
	colInvoiceValue: indian, colNoteValue: indian, colTotalTaxable: indian, colTaxable: indian,
	colIntegrated: indian, colCentral: indian, colState: indian, colCess: indian,
	colTotalDocs: types.FormatCount,
}

func schema(sheet, title string, cols []string, numeric ...string) types.Schema {
	return types.Schema{
		Sheet:   sheet,
		Title:   title,
		Columns: types.Cols(cols, formats),
		Numeric: numeric,
		Pad:     columnPad,
	}
}

var schemas = map[string]types.Schema{
	SectionB2B: schema(SectionB2B,
		"Taxable inward supplies received from registered person : 2B-B2B",
		[]string{
			colSupplier, colTradeName, colInvoiceNumber, colInvoicePart,
			colInvoiceType, colRate, colInvoiceDate, colInvoiceValue, colPOS,
			colReverse, colTotalTaxable, colIntegrated,
			colCentral, colState, colCess, colPeriod, colFilingDate,
			colFilingPeriod, colITC, colReason, colSource,
		},
		colInvoiceValue, colTotalTaxable, colIntegrated, colCentral, colState, colCess),
	SectionB2BA: schema(SectionB2BA,
		"Amendments to previously filed invoices by supplier : 2B-B2BA",
		[]string{
			colSupplier, colTradeName, colOrigNumber, colOrigDate,
			colInvoiceNumber, colInvoicePart, colInvoiceDate, colInvoiceType, colRate,
			colInvoiceValue, colPOS, colReverse, colTotalTaxable,
			colIntegrated, colCentral, colState, colCess, colPeriod, colFilingDate,
			colFilingPeriod, colITC, colReason,
		},
		colInvoiceValue, colTotalTaxable, colIntegrated, colCentral, colState, colCess),
	SectionB2BCum: schema(SectionB2BCum,
		"Amendments to previously filed invoices by supplier : 2B-B2BA (Cumulative)",
		[]string{
			colSupplier, colTradeName, colTotalDocs, colTotalTaxable,
			colIntegrated, colCentral, colState, colCess, colPeriod,
			colFilingDate, colFilingPeriod,
		},
		colTotalTaxable, colIntegrated, colCentral, colState, colCess),
	SectionCDNR: schema(SectionCDNR,
		"Debit/Credit notes(Original) : 2B-CDNR",
		[]string{
			colSupplier, colTradeName, colNoteNumber, colNotePart, colNoteType,
			colRate, colNoteSupply, colNoteDate, colNoteValue, colPOS,
			colReverse, colTotalTaxable, colIntegrated,
			colCentral, colState, colCess, colPeriod, colFilingDate,
			colFilingPeriod, colITC, colReason,
		},
		colNoteValue, colTotalTaxable, colIntegrated, colCentral, colState, colCess),
	SectionIMPG: schema(SectionIMPG,
		"Import of Goods : 2B-IMPG",
		[]string{
			colRefDate, colPortCode, colBOENumber, colBOEDate,
			colTaxable, colIntegrated, colCess, colRecordDate, colFilingPeriod,
			colAmended,
		},
		colTaxable, colIntegrated, colCess),
	SectionB2BRej: schema(SectionB2BRej,
		"Taxable inward supplies received from registered person : 2B-B2B (ITC Rejected)",
		[]string{
			colSupplier, colTradeName, colInvoiceNumber, colInvoicePart,
			colInvoiceType, colRate, colInvoiceDate, colInvoiceValue, colPOS,
			colTotalTaxable, colIntegrated, colCentral, colState, colCess,
			colPeriod, colFilingDate, colFilingPeriod, colSource,
		},
		colInvoiceValue, colTotalTaxable, colIntegrated, colCentral, colState, colCess),
}

// SchemaOf returns the schema of a detail section.
func SchemaOf(section string) types.Schema {
	return schemas[section]
}

// =============================================================================
// SUMMARIES
// =============================================================================

// summarySpec is one ITC summary: a filtered view of a detail section,
// totalled per filing period.
type summarySpec struct {
	sheet   string
	title   string
	section string
	filter  func(types.Row) bool
	sums    []summary.Sum
}

var taxSums = []summary.Sum{
	{Out: colIntegrated, In: colIntegrated},
	{Out: colCentral, In: colCentral},
	{Out: colState, In: colState},
	{Out: colCess, In: colCess},
}

// importSums carry no central or state tax.
var importSums = []summary.Sum{
	{Out: colIntegrated, In: colIntegrated},
	{Out: colCentral},
	{Out: colState},
	{Out: colCess, In: colCess},
}

func is(col, value string) func(types.Row) bool {
	return func(r types.Row) bool { return r.Text(col) == value }
}

func creditDebit(noteType string) func(types.Row) bool {
	return func(r types.Row) bool {
		return r.Text(colNoteType) == noteType && r.Text(colReverse) != "Y"
	}
}

var summarySpecs = []summarySpec{
	{
		sheet: "2B-Summary-B2B_not RC(ITC_Avl)", section: SectionB2B,
		title:  "3. ITC Available - PART A1 - Supplies other than Reverse charge - B2B Invoices (IMS) - Summary",
		filter: is(colReverse, "N"), sums: taxSums,
	},
	{
		sheet: "2B-Summary-B2B_RC(ITC_Avl)", section: SectionB2B,
		title:  "3. ITC Available - PART A3 - Supplies liable for Reverse charge - B2B Invoices - Summary",
		filter: is(colReverse, "Y"), sums: taxSums,
	},
	{
		sheet: "2B-Summary-B2BA_not RC(ITC_Avl)", section: SectionB2BA,
		title:  "3. ITC Available - PART A1 - Supplies other than Reverse charge - B2BA Invoices (IMS) - Summary",
		filter: is(colReverse, "N"), sums: taxSums,
	},
	{
		sheet: "2B-Summary-B2BA_RC(ITC_Avl)", section: SectionB2BA,
		title:  "3. ITC Available - PART A3 - Supplies liable for Reverse charge - B2BA Invoices (IMS) - Summary",
		filter: is(colReverse, "Y"), sums: taxSums,
	},
	{
		sheet: "2B-Summary-B2BA_cum(ITC_Avl)", section: SectionB2BCum,
		title: "3. ITC Available - PART A1&A3 - All Supplies including those liable for Reverse charge - B2BA(cum) Invoices (IMS) - Summary",
		sums:  taxSums,
	},
	{
		sheet: "2B-Summary-CDNR_DN(ITC_Avl)", section: SectionCDNR,
		title:  "3. ITC Available - PART A1 - B2B Debit Notes - Summary",
		filter: creditDebit("D"), sums: taxSums,
	},
	{
		sheet: "2B-Summary-CDNR_CN(ITC_Avl)", section: SectionCDNR,
		title:  "3. ITC Available - PART B1 - B2B Credit Notes (IMS) - Summary",
		filter: creditDebit("C"), sums: taxSums,
	},
	{
		sheet: "2B-Summary-CDNR_RC(ITC_Avl)", section: SectionCDNR,
		title:  "3. ITC Available - PART B1 - B2B Credit Notes (Reverse charge) - Summary",
		filter: is(colReverse, "Y"), sums: taxSums,
	},
	{
		sheet: "2B-Summary-IMPG(ITC_Avl)", section: SectionIMPG,
		title:  "3. ITC Available - PART A4 - Import of goods from overseas - Summary",
		filter: is(colAmended, "N"), sums: importSums,
	},
	{
		sheet: "2B-Summary-IMPGA(ITC_Avl)", section: SectionIMPG,
		title:  "3. ITC Available - PART A4 - Import of goods from overseas (Amendment) - Summary",
		filter: is(colAmended, "Y"), sums: importSums,
	},
	{
		sheet: "2B-Summary-B2B(ITC_Rej)", section: SectionB2BRej,
		title: "6. ITC Rejected - PART A1 - Supplies other than Reverse charge - B2B Invoices (IMS) - Summary",
		sums:  taxSums,
	},
}

func (s summarySpec) view() summary.View {
	return summary.View{
		MonthField:  colFilingPeriod,
		MonthColumn: colMonth,
		Sums:        s.sums,
		Filter:      s.filter,
	}
}

func (s summarySpec) schema() types.Schema {
	v := s.view()
	return schema(s.sheet, s.title, v.Columns(), colIntegrated, colCentral, colState, colCess)
}
