package gstr1

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nihasbabu/gst-modules/internal/merge"
	"github.com/nihasbabu/gst-modules/internal/report"
	"github.com/nihasbabu/gst-modules/internal/source"
	"github.com/nihasbabu/gst-modules/internal/types"
)

// =============================================================================
// FIXTURES
// =============================================================================

const b2bLineItems = `{
  "042024": {
    "summary": {"data": {"ret_period": "042024"}},
    "sections": {
      "B2B": {"suppliers": [{
        "supplier": {"ctin": "27AAACA1111A1Z5", "trade_name": "Acme Traders", "txp_typ": "R"},
        "invoiceDetails": [{
          "inum": "INV1", "idt": "05-04-2024", "val": 1180,
          "invtxval": 1000, "inviamt": 180,
          "invoiceDetails": [{"inv": [{"itms": [{"itm_det": {"rt": 18, "txval": 1000, "iamt": 180}}]}]}]
        }]
      }]}
    }
  }
}`

const b2bMissingItems = `{
  "042024": {
    "summary": {"data": {"ret_period": "042024"}},
    "sections": {
      "B2B": {"suppliers": [{
        "supplier": {"ctin": "27AAACA1111A1Z5", "txp_typ": "R"},
        "invoiceDetails": [{
          "inum": "INV2", "idt": "06-04-2024", "val": 590,
          "invtxval": 500.4, "inviamt": 0, "invcamt": 45, "invsamt": 45, "invcsamt": 0,
          "invoiceDetails": []
        }]
      }]}
    }
  }
}`

func parse(t *testing.T, content string) *Return {
	t.Helper()
	doc, err := source.Decode([]byte(content), source.Options{})
	require.NoError(t, err)
	return Parse(doc)
}

func writeReturn(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func assertDecimal(t *testing.T, want string, v types.Value, msgAndArgs ...interface{}) {
	t.Helper()
	if !v.IsNumeric() {
		require.Fail(t, "value "+v.String()+" is not numeric", msgAndArgs...)
	}
	if !decimal.RequireFromString(want).Equal(v.Decimal()) {
		assert.Fail(t, "want "+want+", got "+v.String(), msgAndArgs...)
	}
}

// =============================================================================
// EXTRACTORS
// =============================================================================

func TestB2BLineItems(t *testing.T) {
	r := parse(t, b2bLineItems)
	assert.Equal(t, "042024", r.Code)
	assert.Equal(t, "April", r.Month)

	rows := r.B2B()
	require.Len(t, rows, 1)
	row := rows[0]
	assertDecimal(t, "18", row.Get(colRate))
	assertDecimal(t, "1000", row.Get(colTaxable))
	assertDecimal(t, "180", row.Get(colIntegrated))
	assertDecimal(t, "27", row.Get(colPOS))
	assert.Equal(t, "Acme Traders", row.Text(colReceiverName))
	assert.False(t, row.Highlight)
}

func TestB2BFallbackRow(t *testing.T) {
	rows := parse(t, b2bMissingItems).B2B()
	require.Len(t, rows, 1)
	row := rows[0]
	assert.True(t, row.Get(colRate).IsError())
	assertDecimal(t, "500.4", row.Get(colTaxable))
	assertDecimal(t, "45", row.Get(colCentral))
	assertDecimal(t, "45", row.Get(colState))
	assert.False(t, row.Highlight)
}

func TestDuplicateInvoiceNumbersHighlighted(t *testing.T) {
	content := `{"042024": {"summary": {"data": {"ret_period": "042024"}}, "sections": {
	  "B2B": {"suppliers": [{"supplier": {"ctin": "29BBB"}, "invoiceDetails": [
	    {"inum": "INV1", "invoiceDetails": [{"inv": [{"itms": [{"itm_det": {"rt": 5, "txval": 100}}]}]}]},
	    {"inum": "INV1", "invoiceDetails": [{"inv": [{"itms": [{"itm_det": {"rt": 12, "txval": 200}}]}]}]},
	    {"inum": "INV3", "invoiceDetails": [{"inv": [{"itms": [{"itm_det": {"rt": 18, "txval": 300}}]}]}]}
	  ]}]}}}}`

	rows := parse(t, content).B2B()
	require.Len(t, rows, 3)
	assert.True(t, rows[0].Highlight)
	assert.True(t, rows[1].Highlight)
	assert.False(t, rows[2].Highlight)
}

func TestCDNRFallbackUsesValue(t *testing.T) {
	content := `{"052024": {"summary": {"data": {"ret_period": "052024"}}, "sections": {
	  "CDNR": {"suppliers": [{"supplier": {"ctin": "07CCC"}, "invoiceDetails": [
	    {"nt_num": "CN1", "nt_dt": "10-05-2024", "ntty": "C", "val": 250, "invcsamt": 3}
	  ]}]}}}}`

	rows := parse(t, content).CDNR()
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Get(colRate).IsError())
	assertDecimal(t, "250", rows[0].Get(colTaxable))
	assertDecimal(t, "3", rows[0].Get(colCessAmount))
	assert.Equal(t, "May", rows[0].Text(colReportingMonth))
}

func TestHSNAcrossReturns(t *testing.T) {
	hsn := func(qty, value string) string {
		return `{"042024": {"summary": {"data": {"ret_period": "042024"}}, "sections": {
		  "HSN": {"invoiceDetails": [
		    {"hsn_sc": "8471", "uqc": "NOS", "rt": 18, "qty": ` + qty + `, "txval": ` + value + `, "iamt": 10},
		    {"hsn_sc": "", "uqc": "NOS", "txval": 999}
		  ]}}}}`
	}

	rows := HSN([]*Return{parse(t, hsn("2", "100")), parse(t, hsn("3", "250"))})
	require.Len(t, rows, 1)
	row := rows[0]
	assert.Equal(t, "8471", row.Text(colHSNCode))
	assertDecimal(t, "2", row.Get(colRecords))
	assertDecimal(t, "5", row.Get("Quantity"))
	assertDecimal(t, "350", row.Get(colTaxable))
	assertDecimal(t, "20", row.Get(colIntegrated))
	assertDecimal(t, "18", row.Get("Tax Rate"))
}

func TestDOCKeepsDocumentType(t *testing.T) {
	content := `{"042024": {"summary": {"data": {"ret_period": "042024"}}, "sections": {
	  "DOC": {"invoiceDetails": [
	    {"doc_typ": "Credit Note", "docs": [{"from": "CN1", "to": "CN9", "totnum": 9, "cancel": 1, "net_issue": 8}]}
	  ]}}}}`

	rows := parse(t, content).DOC()
	require.Len(t, rows, 1)
	assert.Equal(t, "Credit Note", rows[0].Text(colDocType))
	assertDecimal(t, "8", rows[0].Get(colNetIssued))

	sections := documentSections(rows)
	require.Len(t, sections, len(docSheets))
	assert.Equal(t, "R1-DOC5", sections[4].Schema.Sheet)
	assert.Len(t, sections[4].Rows, 1)
	assert.Empty(t, sections[0].Rows)
}

func wrapSection(section, body string) string {
	return `{"042024": {"summary": {"data": {"ret_period": "042024"}}, "sections": {"` + section + `": ` + body + `}}}`
}

func TestAmendmentAndExportDocuments(t *testing.T) {
	tests := []struct {
		name     string
		section  string
		body     string
		keyCol   string
		taxCol   string
		wantKey  string
		wantRate string // empty means the error marker
		wantTax  string
		checkCol string
		checkVal string
	}{
		{
			name:    "export without line items",
			section: SectionEXP,
			body:    `{"invoiceDetails": [{"inum": "E1", "val": 250.556, "inviamt": 12.346}]}`,
			keyCol:  colExpInvoice, taxCol: colTotalTaxable,
			wantKey: "E1", wantTax: "250.56",
			checkCol: colIntegrated, checkVal: "12.35",
		},
		{
			name:    "export line items kept unrounded",
			section: SectionEXP,
			body: `{"invoiceDetails": [{"inum": "E2", "invtxval": 999, "invoiceDetails": [{"inv": [{"itms": [
			  {"rt": 0.1, "txval": 100.456, "iamt": 0.1},
			  {"txval": 5}
			]}]}]}]}`,
			keyCol: colExpInvoice, taxCol: colTotalTaxable,
			wantKey: "E2", wantRate: "0.1", wantTax: "100.456",
			checkCol: colIntegrated, checkVal: "0.1",
		},
		{
			name:    "amendment without line items",
			section: SectionB2BA,
			body:    `{"invoiceDetails": [{"inum": "R1", "oinum": "O1", "invtxval": 80, "val": 94.4, "inviamt": 14.4}]}`,
			keyCol:  colB2BAOriginal, taxCol: colTotalTaxable,
			wantKey: "O1", wantTax: "80",
			checkCol: colIntegrated, checkVal: "14.4",
		},
		{
			name:    "amendment line items",
			section: SectionB2BA,
			body: `{"invoiceDetails": [{"inum": "R2", "oinum": "O2", "invoiceDetails": [{"inv": [{"itms": [
			  {"itm_det": {"rt": 5, "txval": 100.456, "camt": 2.5}},
			  {"itm_det": {"rt": 12}}
			]}]}]}]}`,
			keyCol: colB2BAOriginal, taxCol: colTotalTaxable,
			wantKey: "O2", wantRate: "5", wantTax: "100.46",
			checkCol: colCentral, checkVal: "2.5",
		},
		{
			name:    "unregistered note without line items",
			section: SectionCDNUR,
			body:    `{"invoiceDetails": [{"nt_num": "N1", "typ": "B2CL", "val": 40, "invcsamt": 1}]}`,
			keyCol:  colCDNURNumber, taxCol: colTaxable,
			wantKey: "N1", wantTax: "40",
			checkCol: colCess, checkVal: "1",
		},
		{
			name:    "unregistered note line items",
			section: SectionCDNUR,
			body: `{"invoiceDetails": [{"nt_num": "N2", "invoiceDetails": [{"itms": [
			  {"itm_det": {"rt": 18, "txval": 30, "iamt": 5.4}},
			  {"itm_det": {"txval": 3}}
			]}]}]}`,
			keyCol: colCDNURNumber, taxCol: colTaxable,
			wantKey: "N2", wantRate: "18", wantTax: "30",
			checkCol: colIntegrated, checkVal: "5.4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := parse(t, wrapSection(tt.section, tt.body)).Extract(tt.section)
			require.Len(t, rows, 1)
			row := rows[0]
			assert.Equal(t, tt.wantKey, row.Text(tt.keyCol))
			assert.Equal(t, "April", row.Text(colReportingMonth))
			if tt.wantRate == "" {
				assert.True(t, row.Get(colRate).IsError(), "rate should carry the error marker")
				assert.True(t, row.HasError())
			} else {
				assertDecimal(t, tt.wantRate, row.Get(colRate))
				assert.False(t, row.HasError())
			}
			assertDecimal(t, tt.wantTax, row.Get(tt.taxCol))
			assertDecimal(t, tt.checkVal, row.Get(tt.checkCol))
		})
	}
}

func TestB2CSAndNIL(t *testing.T) {
	b2cs := parse(t, wrapSection(SectionB2CS, `[
	  {"pos": "29", "rt": 18, "invtxval": 1000.004, "inviamt": 180, "typ": "OE", "sply_ty": "INTER"}
	]`)).B2CS()
	require.Len(t, b2cs, 1)
	assertDecimal(t, "29", b2cs[0].Get(colPOS))
	assertDecimal(t, "18", b2cs[0].Get(colRate))
	assertDecimal(t, "1000", b2cs[0].Get(colTaxable))
	assertDecimal(t, "180", b2cs[0].Get(colIntegrated))
	assert.Equal(t, "OE", b2cs[0].Text("Type"))
	assert.Equal(t, "INTER", b2cs[0].Text("Supply Type"))
	assert.Equal(t, "April", b2cs[0].Text(colReportingMonth))

	nilRows := parse(t, wrapSection(SectionNIL, `{"inv": [
	  {"sply_ty": "INTRB2B", "nil_amt": 10, "expt_amt": 20.126, "ngsup_amt": 0},
	  {"sply_ty": "INTRB2C", "ngsup_amt": "7"}
	]}`)).NIL()
	require.Len(t, nilRows, 2)
	assert.Equal(t, "INTRB2B", nilRows[0].Text("Supply Type"))
	assertDecimal(t, "10", nilRows[0].Get(colNilRated))
	assertDecimal(t, "20.13", nilRows[0].Get(colExempted))
	assertDecimal(t, "0", nilRows[0].Get(colNonGST))
	assertDecimal(t, "7", nilRows[1].Get(colNonGST))
	assertDecimal(t, "0", nilRows[1].Get(colNilRated))

	assert.Empty(t, parse(t, wrapSection(SectionB2B, `{"suppliers": []}`)).B2CS())
}

func TestAdvances(t *testing.T) {
	for _, section := range []string{SectionAT, SectionTXPD} {
		t.Run(section, func(t *testing.T) {
			r := parse(t, wrapSection(section, `{"invoiceDetails": [
			  {"pos": "27", "sply_ty": "INTRA", "invadamt": 500.004, "invcamt": 45, "invsamt": 45, "invcsamt": 1.5}
			]}`))
			rows := r.Extract(section)
			require.Len(t, rows, 1)
			row := rows[0]
			assert.Equal(t, "April", row.Text(colMonth))
			assert.Equal(t, "27", row.Text(colPOS))
			assert.Equal(t, "INTRA", row.Text("Supply Type"))
			assertDecimal(t, "500", row.Get(colGrossAdv))
			assertDecimal(t, "0", row.Get(colIntegrated))
			assertDecimal(t, "45", row.Get(colCentral))
			assertDecimal(t, "45", row.Get(colState))
			assertDecimal(t, "1.5", row.Get(colAdvCess))
		})
	}

	r := parse(t, wrapSection(SectionAT, `[{"pos": "27", "invadamt": 1}]`))
	assert.Len(t, r.AT(), 1)
	assert.Empty(t, r.TXPD())
}

// =============================================================================
// LARGE TIER
// =============================================================================

func TestSnapRate(t *testing.T) {
	got, ok := SnapRate(decimal.RequireFromString("17.99"))
	assert.True(t, ok)
	assert.True(t, got.Equal(decimal.NewFromInt(18)))

	got, ok = SnapRate(decimal.RequireFromString("7"))
	assert.False(t, ok)
	assert.True(t, got.Equal(decimal.NewFromInt(7)))
}

func TestLargeReturnRoutingAndHighlight(t *testing.T) {
	content := `{"gstin": "27AAACA1111A1Z5", "b2b": [{"ctin": "29BBB", "inv": [
	  {"inum": "L1", "idt": "01-06-2024", "pos": "29", "inv_typ": "R", "itms": [
	    {"itm_det": {"rt": 18.01, "txval": 100, "iamt": 18, "camt": 9, "samt": 9}}
	  ]},
	  {"inum": "L2", "idt": "02-06-2024", "pos": "27", "itms": [
	    {"itm_det": {"rt": 5, "txval": 100, "iamt": 5, "camt": 2.5, "samt": 2.5}},
	    {"itm_det": {"rt": 12, "txval": 100, "camt": 6, "samt": 6}}
	  ]},
	  {"inum": "L3", "pos": "27", "itms": [{"itm_det": {"rt": 7, "txval": 10}}]}
	]}]}`
	doc, err := source.Decode([]byte(content), source.Options{})
	require.NoError(t, err)

	large := ParseLarge(doc, "062024")
	assert.Equal(t, "062024", large.Code)
	assert.Equal(t, "June", large.Month)

	rows := large.B2B()
	require.Len(t, rows, 4)

	// inter-state, snapped
	assertDecimal(t, "18", rows[0].Get(colRate))
	assertDecimal(t, "18", rows[0].Get(colIntegrated))
	assertDecimal(t, "0", rows[0].Get(colCentral))
	assert.False(t, rows[0].Highlight)

	// intra-state, two rates on one invoice
	assertDecimal(t, "0", rows[1].Get(colIntegrated))
	assertDecimal(t, "2.5", rows[1].Get(colCentral))
	assert.True(t, rows[1].Highlight)
	assert.True(t, rows[2].Highlight)

	// rate that cannot be snapped
	assertDecimal(t, "7", rows[3].Get(colRate))
	assert.True(t, rows[3].Highlight)
}

// =============================================================================
// PROCESSOR
// =============================================================================

func TestProcessCombinesFiles(t *testing.T) {
	dir := t.TempDir()
	first := writeReturn(t, dir, "GSTR1_042024.json", b2bLineItems)
	second := writeReturn(t, dir, "GSTR1_052024.json", `{"052024": {
	  "summary": {"data": {"ret_period": "052024"}},
	  "sections": {
	    "B2B": {"suppliers": [{"supplier": {"ctin": "27AAA", "trade_name": "Acme Traders"}, "invoiceDetails": [
	      {"inum": "INV1", "invoiceDetails": [{"inv": [{"itms": [{"itm_det": {"rt": 18, "txval": 50, "iamt": 9}}]}]}]}
	    ]}]},
	    "CDNR": {"suppliers": [{"supplier": {"ctin": "07CCC"}, "invoiceDetails": [
	      {"nt_num": "CN1", "invoiceDetails": [{"nt": [{"itms": [{"itm_det": {"rt": 18, "txval": 40, "iamt": 7.2}}]}]}]}
	    ]}]}
	  }}}`)
	missing := filepath.Join(dir, "GSTR1_062024.json")

	book, err := NewProcessor(nil).Process(Input{Small: []string{first, missing, second}})
	require.NoError(t, err)
	assert.Equal(t, 2, book.Files)
	assert.Equal(t, []string{"April", "May"}, book.Months)

	b2b, ok := book.Section("R1-" + SectionB2B)
	require.True(t, ok)
	require.Len(t, b2b.Rows, 2)
	assert.Equal(t, "April", b2b.Rows[0].Text(colReportingMonth))
	assert.True(t, b2b.Rows[0].Highlight, "INV1 repeats across files")
	assert.True(t, b2b.Rows[1].Highlight)

	cdnr, ok := book.Section("R1-Summary-CDNR")
	require.True(t, ok)
	require.NotEmpty(t, cdnr.Rows)
	assert.Equal(t, "April", cdnr.Rows[0].Text(colReportingMonth))
	assertDecimal(t, "-40", cdnr.Rows[1].Get(colTaxable))
	assertDecimal(t, "-7.2", cdnr.Rows[1].Get(colIntegrated))

	var failed int
	for _, f := range book.Findings {
		if f.File == missing {
			failed++
		}
	}
	assert.Equal(t, 1, failed)

	sink := report.NewMemorySink()
	names, err := book.Publish(sink)
	require.NoError(t, err)
	assert.Contains(t, names, "R1-B2B,SEZ,DE")
	assert.Contains(t, names, "R1-B2B,SEZ,DE_sws")
	assert.NotContains(t, names, "R1-EXP")
}

func TestProcessHonoursExclusions(t *testing.T) {
	dir := t.TempDir()
	path := writeReturn(t, dir, "GSTR1_042024_excluding_B2B.json", b2bLineItems)

	_, err := NewProcessor(nil).Process(Input{Small: []string{path}})
	assert.True(t, errors.Is(err, merge.ErrNoData))

	book, err := NewProcessor(nil).Process(Input{Small: []string{path}, IgnoreWarnings: true})
	require.NoError(t, err)
	b2b, ok := book.Section("R1-" + SectionB2B)
	require.True(t, ok)
	assert.Empty(t, b2b.Rows)
}

func TestProcessLargeTier(t *testing.T) {
	dir := t.TempDir()
	path := writeReturn(t, dir, "27AAACA1111A1Z5_072024_B2B.json", `{"gstin": "27AAACA1111A1Z5", "b2b": [
	  {"ctin": "29BBB", "inv": [{"inum": "L1", "pos": "29", "itms": [{"itm_det": {"rt": 28, "txval": 10, "iamt": 2.8}}]}]}
	]}`)

	excl := merge.Exclusions{}
	book, err := NewProcessor(nil).Process(Input{Large: []string{path}, Exclusions: excl})
	require.NoError(t, err)
	assert.Equal(t, []string{"July"}, book.Months)
	b2b, _ := book.Section("R1-" + SectionB2B)
	require.Len(t, b2b.Rows, 1)
	assertDecimal(t, "28", b2b.Rows[0].Get(colRate))

	excl.Add("072024", "B2B")
	_, err = NewProcessor(nil).Process(Input{Large: []string{path}, Exclusions: excl})
	assert.True(t, errors.Is(err, merge.ErrNoData))
}

func TestSupplierWiseOrder(t *testing.T) {
	mk := func(name, gstin string) types.Row {
		r := types.NewRow()
		r.Set(colReceiverName, types.Text(name))
		r.Set(colRecipient, types.Text(gstin))
		return r
	}
	sec := supplierWise(SectionB2B, []types.Row{mk("Zeta", "01A"), mk("", "27B"), mk("Alpha", "09C")})
	assert.Equal(t, "R1-B2B,SEZ,DE_sws", sec.Schema.Sheet)

	var got []string
	for _, r := range sec.Rows {
		got = append(got, r.Text(colRecipient))
	}
	assert.Equal(t, []string{"27B", "09C", "01A"}, got)
}

func TestProcessNegatesUnregisteredNoteSummary(t *testing.T) {
	dir := t.TempDir()
	april := writeReturn(t, dir, "GSTR1_042024.json", wrapSection(SectionCDNUR, `{"invoiceDetails": [
	  {"nt_num": "N1", "typ": "B2CL", "invoiceDetails": [{"itms": [{"itm_det": {"rt": 18, "txval": 30, "iamt": 5.4}}]}]},
	  {"nt_num": "N2", "typ": "EXPWP", "invtxval": 20, "inviamt": 3.6}
	]}`))
	may := writeReturn(t, dir, "GSTR1_052024.json", `{"052024": {"summary": {"data": {"ret_period": "052024"}}, "sections": {
	  "B2CS": [{"pos": "27", "rt": 5, "invtxval": 100, "invcamt": 2.5, "invsamt": 2.5}]
	}}}`)

	book, err := NewProcessor(nil).Process(Input{Small: []string{april, may}})
	require.NoError(t, err)

	total, ok := book.Section("R1-Summary-CDNUR-TOTAL")
	require.True(t, ok)
	require.Len(t, total.Rows, 2)

	apr := total.Rows[0]
	assert.Equal(t, "April", apr.Text(colReportingMonth))
	assertDecimal(t, "2", apr.Get(colRecords))
	assertDecimal(t, "-50", apr.Get(colTaxable))
	assertDecimal(t, "-9", apr.Get(colIntegrated))

	mayRow := total.Rows[1]
	assert.Equal(t, "May", mayRow.Text(colReportingMonth))
	assertDecimal(t, "0", mayRow.Get(colRecords))
	assertDecimal(t, "0", mayRow.Get(colTaxable))
	assertDecimal(t, "0", mayRow.Get(colIntegrated))
}
