package gstr3b

import (
	"github.com/nihasbabu/gst-modules/internal/types"
)

const (
	colPeriod     = "Tax Period"
	colTaxable    = "Total taxable value"
	colIntegrated = "Integrated Tax"
	colCentral    = "Central Tax"
	colState      = "State/UT Tax"
	colCess       = "Cess"
	colByITC      = "Tax-by-ITC"
	colByCash     = "Tax-by-Cash"
)

var (
	taxCols    = []string{colIntegrated, colCentral, colState, colCess}
	supplyCols = []string{colTaxable, colIntegrated, colCentral, colState, colCess}
	interCols  = []string{colTaxable, colIntegrated}
	payCols    = []string{colByITC, colByCash}
)

// table is one 3B table and the sheet it is written to. amounts lists the
// numeric columns a row of the table carries; columns may show more.
type table struct {
	key     string
	sheet   string
	title   string
	columns []string
	amounts []string
}

func newTable(key, sheet, title string, amounts []string) table {
	return table{
		key:     key,
		sheet:   sheet,
		title:   title,
		columns: append([]string{colPeriod}, amounts...),
		amounts: amounts,
	}
}

// Table keys.
const (
	OutwardTaxable = "OSUP-Detail"
	OutwardZero    = "OSUP-Zero"
	OutwardNil     = "OSUP-Nil,Exmp"
	InwardReverse  = "ISUP-Rev"
	OutwardNonGST  = "OSUP-NonGST"
	InterUnreg     = "InterSUP-Unreg"
	InterComp      = "InterSUP-Comp"
	InterUIN       = "InterSUP-UIN"
	ITCAvailable   = "ITC-Available"
	ITCReversed    = "ITC-Reversed"
	NetITC         = "Net-ITC"
	ITCIneligible  = "ITC-Ineligible"
	InterestPaid   = "INTR-paid"
	LateFee        = "Late-fee"
	TaxPay         = "Tax-Pay"
)

func itcTable(key, title string) table {
	return newTable(key, "3B-"+key, title, taxCols)
}

// tables lists every 3B table in report order.
var tables = append([]table{
	newTable(OutwardTaxable, "3B-OSUP-Detail", "3.1A - Outward taxable supplies (other than zero rated, nil rated and exempted)", supplyCols),
	newTable(OutwardZero, "3B-OSUP-Zero", "3.1B - Outward taxable supplies (zero rated)", supplyCols),
	newTable(OutwardNil, "3B-OSUP-Nil,Exmp", "3.1C - Other outward supplies (nil rated, exempted)", supplyCols),
	newTable(InwardReverse, "3B-ISUP-Rev", "3.1D - Inward supplies (liable to reverse charge)", supplyCols),
	newTable(OutwardNonGST, "3B-OSUP-NonGST", "3.1E - Non-GST outward supplies", supplyCols),
	newTable(InterUnreg, "3B-InterSUP-Unreg", "3.2A - Inter state - supplies made to Unregistered Persons", interCols),
	newTable(InterComp, "3B-InterSUP-Comp", "3.2B - Inter state - Supplies made to Composition Taxable Persons", interCols),
	newTable(InterUIN, "3B-InterSUP-UIN", "3.2C - Inter state - Supplies made to UIN holders", interCols),
	itcTable(ITCAvailable, "4A - ITC Available (whether in full or part)"),
	itcTable("ITC-avl-IMPG", "4A1 - ITC Available_Import of goods"),
	itcTable("ITC-avl-IMPS", "4A2 - ITC Available_Import of services"),
	{
		key:     "ITC-avl-ISRC",
		sheet:   "3B-ITC-avl-ISRC",
		title:   "4A3 - ITC Available_Inward supplies liable to reverse charge (other than 1 & 2 above)",
		columns: append([]string{colPeriod}, supplyCols...),
		amounts: taxCols,
	},
	itcTable("ITC-avl-ISD", "4A4 - ITC Available_Inward supplies from ISD"),
	itcTable("ITC-avl-OTH", "4A5 - ITC Available_All other ITC"),
	itcTable(ITCReversed, "4B - ITC Reversed"),
	itcTable("ITC-rev-RUL", "4B1 - ITC Reversed_As per rules 38,42 & 43 of CGST Rules and section17(5)"),
	itcTable("ITC-rev-OTH", "4B2 - ITC Reversed_Others"),
	itcTable(NetITC, "4C - Net ITC Available (A-B)"),
	itcTable(ITCIneligible, "4D - Other Details"),
	itcTable("ITC-inelg-RUL", "4D1 - Other Details_ITC reclaimed which was reversed under Table 4B2 in earlier tax period"),
	itcTable("ITC-inelg-OTH", "4D2 - Other Details_Ineligible ITC under section 16(4) & ITC restricted due to PoS rules"),
	itcTable(InterestPaid, "5.1A - Interest Paid"),
	itcTable(LateFee, "5.1B - Late fee"),
	newTable(TaxPay, "3B-Tax-Pay", "6 - Payment of Tax", payCols),
}, paymentTables()...)

// =============================================================================
// 6.1 PAYMENT OF TAX
// =============================================================================

// Transaction codes of the two halves of table 6.1.
const (
	tranOther   = "30002"
	tranReverse = "30003"
)

// paymentPart is one line of table 6.1: the code suffix, the sheet-name stem
// and the title stem.
type paymentPart struct {
	code  string
	stem  string
	title string
}

var paymentParts = []paymentPart{
	{"1", "TotTax", "Total Tax Payable"},
	{"2", "AdjNL", "Adjustment of Negative Liability"},
	{"3", "NetTax", "Net Tax Payable"},
	{"5", "pdby_Cash", "Tax Paid in Cash"},
	{"6", "Int_pdby_Cash", "Interest Paid by Cash"},
	{"7", "LateFee_pdby_Cash", "Late Fee Paid by Cash"},
	{"41", "ITC_IGST", "Tax Paid by ITC - IGST"},
	{"42", "ITC_CGST", "Tax Paid by ITC - CGST"},
	{"43", "ITC_SGST", "Tax Paid by ITC - SGST"},
	{"44", "ITC_Cess", "Tax Paid by ITC - Cess"},
}

// paymentKey returns the table key of a 6.1 line, e.g. "6.1a41".
func paymentKey(reverse bool, code string) string {
	if reverse {
		return "6.1b" + code
	}
	return "6.1a" + code
}

func paymentTables() []table {
	var out []table
	for _, reverse := range []bool{false, true} {
		half, suffix, label := "A", "-OthRC", "Other than reverse charge"
		if reverse {
			half, suffix, label = "B", "-RC", "Reverse charge"
		}
		for _, p := range paymentParts {
			out = append(out, newTable(
				paymentKey(reverse, p.code),
				"3B-TaxPay_"+p.stem+suffix,
				"6.1"+half+p.code+" - Payment of Tax - "+p.title+" ("+label+")",
				taxCols))
		}
	}
	return out
}

// schema returns the sheet schema of a table. 3B sheets have no frozen
// panes and wider columns.
func (t table) schema() types.Schema {
	formats := make(map[string]string, len(t.columns))
	for _, c := range t.columns[1:] {
		formats[c] = types.FormatIndian
	}
	return types.Schema{
		Sheet:    t.sheet,
		Title:    t.title,
		Columns:  types.Cols(t.columns, formats),
		Numeric:  t.amounts,
		NoFreeze: true,
		Pad:      2,
	}
}

var tableIndex = func() map[string]table {
	m := make(map[string]table, len(tables))
	for _, t := range tables {
		m[t.key] = t
	}
	return m
}()

func isTable(key string) bool {
	_, ok := tableIndex[key]
	return ok
}

// SchemaOf returns the sheet schema of a table key such as "Net-ITC" or
// "6.1a41".
func SchemaOf(key string) types.Schema {
	return tableIndex[key].schema()
}

// Keys returns every table key in report order.
func Keys() []string {
	keys := make([]string, len(tables))
	for i, t := range tables {
		keys[i] = t.key
	}
	return keys
}
