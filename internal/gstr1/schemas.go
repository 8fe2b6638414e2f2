package gstr1

import (
	"github.com/nihasbabu/gst-modules/internal/summary"
	"github.com/nihasbabu/gst-modules/internal/types"
)

// =============================================================================
// SECTIONS
// =============================================================================

// Section names. They double as the exclusion tags a filer can declare for a
// period, except B2B whose section is written as "B2B,SEZ,DE".
const (
	SectionB2B   = "B2B,SEZ,DE"
	SectionCDNR  = "CDNR"
	SectionB2CS  = "B2CS"
	SectionNIL   = "NIL"
	SectionEXP   = "EXP"
	SectionHSN   = "HSN"
	SectionB2BA  = "B2BA"
	SectionCDNUR = "CDNUR"
	SectionDOC   = "DOC"
	SectionAT    = "AT"
	SectionTXPD  = "TXPD"
)

// Sections lists the detail sections in report order.
var Sections = []string{
	SectionB2B, SectionCDNR, SectionB2CS, SectionNIL, SectionEXP, SectionHSN,
	SectionB2BA, SectionCDNUR, SectionDOC, SectionAT, SectionTXPD,
}

// tagOf returns the exclusion tag of a section.
func tagOf(section string) string {
	if section == SectionB2B {
		return "B2B"
	}
	return section
}

const sheetPrefix = "R1-"

// Column names used by more than one section.
const (
	colReportingMonth = "Reporting Month"
	colMonth          = "Month"
	colRate           = "Rate"
	colTaxable        = "Taxable Value"
	colTotalTaxable   = "Total Taxable Value"
	colIntegrated     = "Integrated Tax"
	colCentral        = "Central Tax"
	colState          = "State/UT Tax"
	colCess           = "Cess"
	colCessAmount     = "Cess Amount"
	colPOS            = "Place of Supply"
	colApplicable     = "Applicable % of Tax Rate"
	colIRN            = "IRN"
	colIRNDate        = "IRN date"
	colEInvoice       = "E-invoice status"
	colRecipient      = "GSTIN/UIN of Recipient"
	colReceiverName   = "Receiver Name"
	colRecords        = "No. of Records"

	colInvoiceNumber = "Invoice number"
	colInvoiceDate   = "Invoice date"
	colTaxType       = "Tax type"
	colNoteNumber    = "Note Number"
	colNoteDate      = "Note Date"
	colExpInvoice    = "Invoice no"
	colGSTPayment    = "GST payment"
	colB2BAOriginal  = "Revised/Original Invoice no"
	colB2BADate      = "Revised Invoice date"
	colCDNURNumber   = "C/D Note No"
	colCDNURDate     = "C/D Note Date"
	colCDNURType     = "Type"
	colHSNCode       = "HSN/SAC"
	colUQC           = "UQC"
	colTotalNumber   = "Total Number"
	colCancelled     = "Cancelled"
	colNetIssued     = "Net Issued"

	// colDocType is carried on document-register rows but is not part of
	// the sheet.
	colDocType = "Document Type"
)

const (
	indian  = types.FormatIndian
	date    = types.FormatDate
	integer = types.FormatInteger
)

var schemas = map[string]types.Schema{
	SectionB2B: {
		Title: "B2B, SEZ, DE Invoices",
		Columns: types.Cols([]string{
			colRecipient, colReceiverName, colInvoiceNumber, colInvoiceDate,
			colReportingMonth, colTaxType, "Invoice value", colPOS, "Reverse Charge",
			colApplicable, "Invoice Type", "E-Commerce GSTIN", colRate, colTaxable,
			colIntegrated, colCentral, colState, colCess, colIRN, colIRNDate, colEInvoice,
		}, map[string]string{
			colInvoiceDate: date, "Invoice value": indian, colPOS: integer, colRate: indian,
			colTaxable: indian, colIntegrated: indian, colCentral: indian, colState: indian,
			colCess: indian, colIRNDate: date,
		}),
		Numeric: []string{"Invoice value", colPOS, colRate, colTaxable, colIntegrated, colCentral, colState, colCess},
		Key:     colInvoiceNumber,
	},
	SectionCDNR: {
		Title: "CDNR - Credit/Debit Notes (Registered)",
		Columns: types.Cols([]string{
			colRecipient, colReceiverName, colNoteNumber, colNoteDate, colReportingMonth,
			"Note Type", colPOS, "Reverse Charge", "Note Supply Type", "Note Value",
			colApplicable, colRate, colTaxable, colIntegrated,
			colCentral, colState, colCessAmount, colIRN, colIRNDate, colEInvoice,
		}, map[string]string{
			colNoteDate: date, "Note Value": indian, colPOS: integer, colRate: indian,
			colTaxable: indian, colIntegrated: indian, colCentral: indian, colState: indian,
			colCessAmount: indian, colIRNDate: date,
		}),
		Numeric: []string{"Note Value", colPOS, colRate, colTaxable, colIntegrated, colCentral, colState, colCessAmount},
		Key:     colNoteNumber,
	},
	SectionB2CS: {
		Title: "B2CS - B2C (Others)",
		Columns: types.Cols([]string{
			colReportingMonth, colPOS, colRate, colTaxable, colIntegrated,
			colCentral, colState, colCess, colApplicable, "Type", "Supply Type",
		}, map[string]string{
			colPOS: integer, colRate: indian, colTaxable: indian, colIntegrated: indian,
			colCentral: indian, colState: indian, colCess: indian,
		}),
		Numeric: []string{colPOS, colRate, colTaxable, colIntegrated, colCentral, colState, colCess},
	},
	SectionNIL: {
		Title: "NIL - Nil Rated, Exempted and Non-GST Supplies",
		Columns: types.Cols([]string{
			colReportingMonth, "Supply Type", colNilRated, colExempted, colNonGST,
		}, map[string]string{
			colNilRated: indian, colExempted: indian, colNonGST: indian,
		}),
		Numeric: []string{colNilRated, colExempted, colNonGST},
	},
	SectionEXP: {
		Title: "EXP - Exports Invoices (with/without payment)",
		Columns: types.Cols([]string{
			colExpInvoice, colInvoiceDate, colReportingMonth, colGSTPayment, "Supply type",
			"Total Invoice value", colRate, colTotalTaxable, colIntegrated, colCentral,
			colState, colCess, colIRN, colIRNDate,
		}, map[string]string{
			colInvoiceDate: date, "Total Invoice value": indian, colRate: indian,
			colTotalTaxable: indian, colIntegrated: indian, colCentral: indian,
			colState: indian, colCess: indian, colIRNDate: date,
		}),
		Numeric: []string{"Total Invoice value", colTotalTaxable, colIntegrated, colCentral, colState, colCess},
		Key:     colExpInvoice,
	},
	SectionHSN: {
		Title: "HSN - HSN wise details of outward supplies",
		Columns: types.Cols([]string{
			colReportingMonth, colHSNCode, colRecords, colUQC, "Quantity", colTaxable,
			"Tax Rate", colIntegrated, colCentral, colState, colCess,
		}, map[string]string{
			colHSNCode: integer, colRecords: integer, "Quantity": indian, colTaxable: indian,
			"Tax Rate": types.FormatRate, colIntegrated: indian, colCentral: indian,
			colState: indian, colCess: indian,
		}),
		Numeric: []string{colRecords, "Quantity", colTaxable, "Tax Rate", colIntegrated, colCentral, colState, colCess},
	},
	SectionB2BA: {
		Title: "B2BA - Amended B2B Invoices",
		Columns: types.Cols([]string{
			"Recipient GSTIN/UIN", "Revised Invoice no", colB2BADate, colReportingMonth,
			colB2BAOriginal, "Revised/Original Invoice date",
			"Total Invoice value", colRate, colTotalTaxable, colIntegrated,
			colCentral, colState, colCess,
		}, map[string]string{
			colB2BADate: date, "Revised/Original Invoice date": date,
			"Total Invoice value": indian, colRate: indian, colTotalTaxable: indian,
			colIntegrated: indian, colCentral: indian, colState: indian, colCess: indian,
		}),
		Numeric: []string{"Total Invoice value", colTotalTaxable, colIntegrated, colCentral, colState, colCess},
		Key:     colB2BAOriginal,
	},
	SectionCDNUR: {
		Title: "CDNUR - Credit/Debit Notes (Unregistered)",
		Columns: types.Cols([]string{
			colCDNURNumber, colCDNURDate, colReportingMonth, "Note Type", colCDNURType, colRate,
			colTaxable, colIntegrated, colCentral, colState, colCess,
			colIRN, colIRNDate,
		}, map[string]string{
			colCDNURDate: date, colRate: indian, colTaxable: indian, colIntegrated: indian,
			colCentral: indian, colState: indian, colCess: indian, colIRNDate: date,
		}),
		Numeric: []string{colTaxable, colIntegrated, colCentral, colState, colCess},
		Key:     colCDNURNumber,
	},
	SectionDOC: {
		Title: "Documents issued",
		Columns: types.Cols([]string{
			colReportingMonth, "From (Sr. No.)", "To (Sr. No.)", colTotalNumber, colCancelled, colNetIssued,
		}, map[string]string{
			colTotalNumber: integer, colCancelled: integer, colNetIssued: integer,
		}),
		Numeric: []string{colTotalNumber, colCancelled, colNetIssued},
	},
	SectionAT:   advanceSchema("Tax Liability (Advances Received)"),
	SectionTXPD: advanceSchema("Adjustment of Advances"),
}

const (
	colNilRated = "Nil Rated Supplies"
	colExempted = "Exempted(Other than Nil rated/non-GST supply)"
	colNonGST   = "Non-GST Supplies"
	colGrossAdv = "Gross Advance Adjusted"
	colAdvCess  = "CESS"
)

func advanceSchema(title string) types.Schema {
	return types.Schema{
		Title: title,
		Columns: types.Cols([]string{
			colMonth, colPOS, "Supply Type", colGrossAdv,
			colIntegrated, colCentral, colState, colAdvCess,
		}, map[string]string{
			colGrossAdv: indian, colIntegrated: indian, colCentral: indian,
			colState: indian, colAdvCess: indian,
		}),
		Numeric: []string{colGrossAdv, colIntegrated, colCentral, colState, colAdvCess},
	}
}

// SchemaOf returns the schema of a detail section with its sheet name set.
func SchemaOf(section string) types.Schema {
	s := schemas[section]
	s.Sheet = sheetPrefix + section
	return s
}

// =============================================================================
// DOCUMENT REGISTER
// =============================================================================

// docSheet pairs a statutory document type with its sheet suffix and title.
type docSheet struct {
	docType string
	suffix  string
	title   string
}

var docSheets = []docSheet{
	{"Invoices for outward supply", "DOC1", "1. Invoices for outward supply"},
	{"Invoices for inward supply from unregistered person", "DOC2", "2. Invoices for inward supply from unregistered person"},
	{"Revised Invoice", "DOC3", "3. Revised Invoice"},
	{"Debit Note", "DOC4", "4. Debit Note"},
	{"Credit Note", "DOC5", "5. Credit Note"},
	{"Receipt voucher", "DOC6", "6. Receipt voucher"},
	{"Payment Voucher", "DOC7", "7. Payment Voucher"},
	{"Refund voucher", "DOC8", "8. Refund voucher"},
	{"Delivery Challan for job work", "DOC9", "9. Delivery Challan for job work"},
	{"Delivery Challan for supply on approval", "DOC10", "10. Delivery Challan for supply on approval"},
	{"Delivery Challan in case of liquid gas", "DOC11", "11. Delivery Challan in case of liquid gas"},
	{
		"Delivery Challan in cases other than by way of supply (excluding at S no. 9 to 11)", "DOC12",
		"12. Delivery Challan in cases other than by way of supply (excluding at S no. 9 to 11)",
	},
}

// =============================================================================
// SUPPLIER-WISE VIEWS
// =============================================================================

var swsTitles = map[string]string{
	SectionB2B:  "B2B, SEZ, DE Invoices - Sorted Supplier_wise",
	SectionCDNR: "CDNR - Credit/Debit Notes (Registered) - Sorted Supplier_wise",
}

// =============================================================================
// SUMMARIES
// =============================================================================

// summarySpec describes one summary sheet: the section it is built from and
// the aggregation view applied to it.
type summarySpec struct {
	name    string
	title   string
	section string
	view    summary.View
	numeric []string
}

var summaryFormats = map[string]string{
	colRecords: integer, colTaxable: indian, colIntegrated: indian,
	colCentral: indian, colState: indian, colCess: indian,
}

func taxView(taxable, cess, key string, filter func(types.Row) bool, negate bool) summary.View {
	return summary.View{
		MonthField:  colReportingMonth,
		CountColumn: colRecords,
		Key:         key,
		Sums:        summary.TaxSums(taxable, cess),
		Filter:      filter,
		Negate:      negate,
	}
}

func textIn(col string, values ...string) func(types.Row) bool {
	return func(r types.Row) bool {
		got := r.Text(col)
		for _, v := range values {
			if got == v {
				return true
			}
		}
		return false
	}
}

var summarySpecs = []summarySpec{
	{
		name: "B2B", section: SectionB2B,
		title: "4A-Supplies to registered persons(other than reverse charge)-B2B Regular-Summary",
		view:  taxView(colTaxable, colCess, colInvoiceNumber, textIn(colTaxType, "NT", "CO", "R"), false),
	},
	{
		name: "SEZWP-WOP", section: SectionB2B,
		title: "6B-Supplies made to SEZ-SEZWP/SEZWOP Total-Summary",
		view:  taxView(colTaxable, colCess, "", textIn(colTaxType, "SEZ", "SEZWOP", "SEZWP", "SEWP", "SEWOP"), false),
	},
	{
		name: "B2CS", section: SectionB2CS,
		title: "7-Supplies to unregistered persons-B2CS (Others)-Summary",
		view:  taxView(colTaxable, colCess, "", nil, false),
	},
	{
		name: "CDNR", section: SectionCDNR,
		title: "9B-Credit/Debit Notes(Registered)-Summary",
		view:  taxView(colTaxable, colCessAmount, colNoteNumber, nil, true),
	},
	{
		name: "NIL", section: SectionNIL,
		title: "8-Nil Rated,exempted,non GST supplies-Summary",
		view: summary.View{
			MonthField:  colReportingMonth,
			CountColumn: colRecords,
			Sums: []summary.Sum{
				{Out: colTaxable, In: colNilRated},
				{Out: colIntegrated}, {Out: colCentral}, {Out: colState}, {Out: colCess},
			},
		},
		numeric: []string{colRecords, colTaxable},
	},
	{
		name: "AT", section: SectionAT,
		title: "11A(1),11A(2)-Advances received-No invoice issued (tax to be added to tax liability)-Summary",
		view:  advanceView(),
	},
	{
		name: "TXPD", section: SectionTXPD,
		title: "11B(1),11B(2)-Advances received in earlier tax period-Adjusted in this tax period-Summary",
		view:  advanceView(),
	},
	{
		name: "HSN", section: SectionHSN,
		title: "12-HSN wise outward supplies-Summary",
		view: summary.View{
			MonthField:  colReportingMonth,
			CountColumn: colRecords,
			CountFrom:   colRecords,
			Sums:        summary.TaxSums(colTaxable, colCess),
		},
	},
	{
		name: "DOC", section: SectionDOC,
		title: "13-Documents issued-Summary",
		view: summary.View{
			MonthField:  colReportingMonth,
			CountColumn: colRecords,
			Key:         colDocType,
			Sums: []summary.Sum{
				{Out: "Net issued Documents", In: colNetIssued},
				{Out: "Documents issued", In: colTotalNumber},
				{Out: "Documents cancelled", In: colCancelled},
			},
		},
	},
	{
		name: "B2BA Total", section: SectionB2BA,
		title: "9A-Amendment to Supplies made to registered persons in earlier tax period-B2B Amended total-Summary",
		view:  taxView(colTotalTaxable, colCess, colB2BAOriginal, nil, false),
	},
	{
		name: "EXPWP", section: SectionEXP,
		title: "6A–Exports (with payment)-Summary",
		view:  taxView(colTotalTaxable, colCess, colExpInvoice, textIn(colGSTPayment, "WPAY"), false),
	},
	{
		name: "EXPWOP", section: SectionEXP,
		title: "6A–Exports (without payment)-Summary",
		view:  taxView(colTotalTaxable, colCess, colExpInvoice, textIn(colGSTPayment, "WOPAY"), false),
	},
	{
		name: "EXP-Total", section: SectionEXP,
		title: "6A–Exports (with/without payment)-Summary",
		view:  taxView(colTotalTaxable, colCess, colExpInvoice, nil, false),
	},
	{
		name: "CDNUR-B2CL", section: SectionCDNUR,
		title: "9B-Credit/Debit Notes(Unregistered)-B2CL-Summary",
		view:  taxView(colTaxable, colCess, colCDNURNumber, textIn(colCDNURType, "B2CL"), true),
	},
	{
		name: "CDNUR-EXPWP", section: SectionCDNUR,
		title: "9B-Credit/Debit Notes(Unregistered)-EXPWP-Summary",
		view:  taxView(colTaxable, colCess, colCDNURNumber, textIn(colCDNURType, "EXPWP"), true),
	},
	{
		name: "CDNUR-EXPWOP", section: SectionCDNUR,
		title: "9B-Credit/Debit Notes(Unregistered)-EXPWOP-Summary",
		view:  taxView(colTaxable, colCess, colCDNURNumber, textIn(colCDNURType, "EXPWOP"), true),
	},
	{
		name: "CDNUR-TOTAL", section: SectionCDNUR,
		title: "9B-Credit/Debit Notes(Unregistered)-CDNUR-Total-Summary",
		view:  taxView(colTaxable, colCess, colCDNURNumber, nil, true),
	},
}

func advanceView() summary.View {
	return summary.View{
		MonthField:  colMonth,
		MonthColumn: colReportingMonth,
		CountColumn: colRecords,
		Sums:        summary.TaxSums(colGrossAdv, colAdvCess),
	}
}

// schema returns the sheet schema of a summary.
func (s summarySpec) schema() types.Schema {
	cols := s.view.Columns()
	formats := summaryFormats
	if s.section == SectionDOC {
		formats = map[string]string{}
		for _, c := range cols[1:] {
			formats[c] = integer
		}
	}
	numeric := s.numeric
	if numeric == nil {
		numeric = cols[1:]
	}
	return types.Schema{
		Sheet:   sheetPrefix + "Summary-" + s.name,
		Title:   s.title,
		Columns: types.Cols(cols, formats),
		Numeric: numeric,
	}
}
