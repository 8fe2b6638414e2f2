package gstr3b

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

const mayReturn = `{
  "data": {"r3b": {
    "ret_period": "052024",
    "sup_details": {
      "osup_det": {"txval": 1000.456, "iamt": 180, "camt": 0, "samt": 0, "csamt": 0},
      "osup_zero": {"txval": 0}
    },
    "inter_sup": {"unreg_details": {"txval": 500, "iamt": 90, "pos": "29"}},
    "itc_elg": {
      "itc_avl": [
        {"ty": "IMPG", "iamt": 10, "camt": 0, "samt": 0, "csamt": 1},
        {"ty": "OTH", "iamt": 0, "camt": 5, "samt": 5, "csamt": 0},
        {"ty": "XYZ", "iamt": 2, "camt": 0, "samt": 0, "csamt": 0}
      ],
      "itc_net": {"iamt": 12, "camt": 5, "samt": 5, "csamt": 1}
    },
    "intr_ltfee": {"intr_details": {"iamt": 3.5}},
    "tt_val": {"tt_itc_pd": 22, "tt_csh_pd": "158"}
  }},
  "taxpayable": {"data": {"returnsDbCdredList": {
    "tax_pay": [
      {"trancd": 30002, "igst": {"tx": 180, "intr": 3.5, "fee": 0}, "cgst": {"tx": 0}},
      {"trancd": 99999, "igst": {"tx": 7}}
    ],
    "tax_paid": {
      "pd_by_itc": [
        {"trancd": 30002, "debit_id": "D1", "igst_igst_amt": 10, "cgst_igst_amt": 5, "sgst_sgst_amt": 5, "igst_cgst": 9},
        {"trancd": "30003", "cess_cess_amt": 1}
      ],
      "pd_by_cash": {"trancd": 30002, "igst": {"tx": 158}}
    }
  }}}
}`

const aprilReturn = `{"data": {"r3b": {
  "ret_period": "042024",
  "sup_details": {"osup_det": {"txval": 10, "iamt": 1.8}}
}}}`

func parse(t *testing.T, content string) *Return {
	t.Helper()
	doc, err := source.Decode([]byte(content), source.Options{})
	require.NoError(t, err)
	return Parse(doc)
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

func TestOutwardAndInterState(t *testing.T) {
	ret := parse(t, mayReturn)
	assert.Equal(t, "May", ret.TaxPeriod)
	tbl := ret.Tables()

	require.Len(t, tbl[OutwardTaxable], 1)
	row := tbl[OutwardTaxable][0]
	assert.Equal(t, "May", row.Text(colPeriod))
	assertDecimal(t, "1000.46", row.Get(colTaxable))
	assertDecimal(t, "180", row.Get(colIntegrated))

	// missing 3.1 keys still give a zero row
	require.Len(t, tbl[OutwardNonGST], 1)
	assertDecimal(t, "0", tbl[OutwardNonGST][0].Get(colCess))

	require.Len(t, tbl[InterUnreg], 1, "single object read as a list")
	assertDecimal(t, "90", tbl[InterUnreg][0].Get(colIntegrated))
	assert.False(t, tbl[InterUnreg][0].Get(colCentral).IsNumeric(), "3.2 rows carry no central tax")
}

func TestITCRoutingAndTotals(t *testing.T) {
	tbl := parse(t, mayReturn).Tables()

	assertDecimal(t, "10", tbl["ITC-avl-IMPG"][0].Get(colIntegrated))
	assertDecimal(t, "5", tbl["ITC-avl-OTH"][0].Get(colState))
	assertDecimal(t, "0", tbl["ITC-avl-ISD"][0].Get(colIntegrated))

	require.Len(t, tbl[ITCAvailable], 1)
	total := tbl[ITCAvailable][0]
	assertDecimal(t, "12", total.Get(colIntegrated), "unknown types count towards the total")
	assertDecimal(t, "5", total.Get(colCentral))
	assertDecimal(t, "1", total.Get(colCess))

	assertDecimal(t, "0", tbl[ITCReversed][0].Get(colIntegrated))
	assertDecimal(t, "12", tbl[NetITC][0].Get(colIntegrated))
	assertDecimal(t, "3.5", tbl[InterestPaid][0].Get(colIntegrated))
	assertDecimal(t, "0", tbl[LateFee][0].Get(colIntegrated))

	assertDecimal(t, "22", tbl[TaxPay][0].Get(colByITC))
	assertDecimal(t, "158", tbl[TaxPay][0].Get(colByCash))
}

func TestPaymentOfTax(t *testing.T) {
	tbl := parse(t, mayReturn).Tables()

	require.Len(t, tbl["6.1a1"], 1, "unknown transaction codes are skipped")
	assertDecimal(t, "180", tbl["6.1a1"][0].Get(colIntegrated))
	assertDecimal(t, "3.5", tbl["6.1a6"][0].Get(colIntegrated))
	assertDecimal(t, "0", tbl["6.1a7"][0].Get(colIntegrated))
	assertDecimal(t, "158", tbl["6.1a5"][0].Get(colIntegrated))
	assertDecimal(t, "0", tbl["6.1a2"][0].Get(colIntegrated))

	// liability head picks the table, credit head picks the column
	igst := tbl["6.1a41"][0]
	assertDecimal(t, "10", igst.Get(colIntegrated))
	assertDecimal(t, "5", igst.Get(colCentral))
	assertDecimal(t, "5", tbl["6.1a43"][0].Get(colState))
	assertDecimal(t, "0", tbl["6.1a42"][0].Get(colIntegrated), "keys without _amt are ignored")

	assertDecimal(t, "1", tbl["6.1b44"][0].Get(colCess))
	assertDecimal(t, "0", tbl["6.1b41"][0].Get(colIntegrated))
}

func TestMissingTaxPayableGivesZeroRows(t *testing.T) {
	tbl := parse(t, aprilReturn).Tables()
	for _, key := range Keys() {
		require.Len(t, tbl[key], 1, key)
		assert.Equal(t, "April", tbl[key][0].Text(colPeriod), key)
	}
}

func TestISRCLeavesTaxableBlank(t *testing.T) {
	schema := SchemaOf("ITC-avl-ISRC")
	assert.Equal(t, []string{colPeriod, colTaxable, colIntegrated, colCentral, colState, colCess}, schema.Names())
	assert.Equal(t, taxCols, schema.Numeric)
	assert.True(t, schema.NoFreeze)
	assert.Equal(t, 2, schema.Pad)

	row := parse(t, aprilReturn).Tables()["ITC-avl-ISRC"][0]
	assert.True(t, row.Get(colTaxable).IsNull())
}

func TestProcessOrdersPeriodsAndHidesZeroTables(t *testing.T) {
	dir := t.TempDir()
	may := filepath.Join(dir, "3B_052024.json")
	apr := filepath.Join(dir, "3B_042024.json")
	require.NoError(t, os.WriteFile(may, []byte(mayReturn), 0644))
	require.NoError(t, os.WriteFile(apr, []byte(aprilReturn), 0644))

	book, err := NewProcessor(nil).Process(Input{Files: []string{may, apr}})
	require.NoError(t, err)
	assert.Equal(t, 2, book.Files)
	assert.Equal(t, []string{"April", "May"}, book.Months)

	sec, ok := book.Section("3B-OSUP-Detail")
	require.True(t, ok)
	require.Len(t, sec.Rows, 2)
	assert.Equal(t, "April", sec.Rows[0].Text(colPeriod))
	assert.Equal(t, "May", sec.Rows[1].Text(colPeriod))

	sink := report.NewMemorySink()
	names, err := book.Publish(sink)
	require.NoError(t, err)
	assert.Contains(t, names, "3B-OSUP-Detail")
	assert.Contains(t, names, "3B-TaxPay_ITC_IGST-OthRC")
	assert.NotContains(t, names, "3B-OSUP-Zero")
	assert.NotContains(t, names, "3B-ITC-Reversed")
	assert.NotContains(t, names, "3B-Late-fee")
}

func TestProcessNothingReadable(t *testing.T) {
	book, err := NewProcessor(nil).Process(Input{Files: []string{filepath.Join(t.TempDir(), "missing.json")}})
	assert.True(t, errors.Is(err, merge.ErrNoData))
	assert.Equal(t, 0, book.Files)
	require.Len(t, book.Findings, 1)
}
