package gstr2b

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

const statement = `{"data": {
  "rtnprd": "052024",
  "docdata": {
    "b2b": [
      {"ctin": "27AAA", "trdnm": "Acme", "supprd": "052024", "supfildt": "11-06-2024",
       "inv": [
         {"inum": "A1", "typ": "R", "dt": "02-05-2024", "val": 1180, "pos": "27", "rev": "N",
          "items": [{"num": 1, "rt": 18, "txval": 1000, "cgst": 90, "sgst": 90}]},
         {"inum": "A2", "dt": "03-05-2024", "val": 105, "pos": "27", "rev": "Y",
          "txval": 100, "cgst": 2.5, "sgst": 2.5}
       ]},
      {"ctin": "29BBB", "trdnm": "Beta", "supprd": "042024",
       "inv": {"inum": "B1", "dt": "not a date", "val": 50, "rev": "N", "txval": 50, "igst": 9}}
    ],
    "cdnr": [
      {"ctin": "27AAA", "supprd": "052024", "nt": [
        {"ntnum": "C1", "typ": "C", "rev": "N", "txval": 10, "cgst": 1, "sgst": 1},
        {"ntnum": "D1", "typ": "D", "rev": "N", "txval": 20, "igst": 3.6},
        {"ntnum": "R1", "typ": "C", "rev": "Y", "txval": 5, "igst": 0.9}
      ]}
    ],
    "impg": [
      {"refdt": "01-05-2024", "boenum": "9", "txval": 100, "igst": 18, "cess": 1, "isamd": "N"},
      {"refdt": "02-05-2024", "boenum": "8", "txval": 10, "igst": 1.8, "isamd": "Y"}
    ]
  },
  "cpsumm": {"b2ba": [{"ctin": "27AAA", "supprd": "042024", "ttldocs": 3, "txval": 300, "igst": 54}]}
}}`

func parse(t *testing.T, content string) *Statement {
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

func TestB2BItemsAndInvoiceLevelRows(t *testing.T) {
	st := parse(t, statement)
	assert.Equal(t, "May", st.FilingPeriod)

	rows := st.B2B()
	require.Len(t, rows, 3)

	assert.Equal(t, "1", rows[0].Text(colInvoicePart))
	assertDecimal(t, "18", rows[0].Get(colRate))
	assertDecimal(t, "1000", rows[0].Get(colTotalTaxable))
	assertDecimal(t, "27", rows[0].Get(colPOS))
	assert.Equal(t, types.KindDate, rows[0].Get(colInvoiceDate).Kind())

	assert.Equal(t, "", rows[1].Text(colRate))
	assertDecimal(t, "100", rows[1].Get(colTotalTaxable))

	// single invoice object, unparseable date kept as text
	assert.Equal(t, "B1", rows[2].Text(colInvoiceNumber))
	assert.Equal(t, "not a date", rows[2].Text(colInvoiceDate))
	assert.Equal(t, "April", rows[2].Text(colPeriod))
	assertDecimal(t, "0", rows[2].Get(colPOS))
}

func TestCumulativeAndImports(t *testing.T) {
	st := parse(t, statement)

	cum := st.B2BACumulative()
	require.Len(t, cum, 1)
	assertDecimal(t, "3", cum[0].Get(colTotalDocs))
	assertDecimal(t, "54", cum[0].Get(colIntegrated))

	impg := st.IMPG()
	require.Len(t, impg, 2)
	assert.Equal(t, "May", impg[0].Text(colFilingPeriod))
	assert.Equal(t, "Y", impg[1].Text(colAmended))
}

func TestProcessSummaries(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "2B_052024.json")
	require.NoError(t, os.WriteFile(path, []byte(statement), 0644))

	book, err := NewProcessor(nil).Process(Input{Files: []string{path}})
	require.NoError(t, err)
	assert.Equal(t, []string{"May"}, book.Months)

	b2b, ok := book.Section(SectionB2B)
	require.True(t, ok)
	assert.Equal(t, "April", b2b.Rows[0].Text(colPeriod), "sorted by supplier period")

	tests := []struct {
		sheet string
		col   string
		want  string
	}{
		{"2B-Summary-B2B_not RC(ITC_Avl)", colCentral, "90"},
		{"2B-Summary-B2B_not RC(ITC_Avl)", colIntegrated, "9"},
		{"2B-Summary-B2B_RC(ITC_Avl)", colState, "2.5"},
		{"2B-Summary-CDNR_CN(ITC_Avl)", colCentral, "1"},
		{"2B-Summary-CDNR_DN(ITC_Avl)", colIntegrated, "3.6"},
		{"2B-Summary-CDNR_RC(ITC_Avl)", colIntegrated, "0.9"},
		{"2B-Summary-IMPG(ITC_Avl)", colCess, "1"},
		{"2B-Summary-IMPGA(ITC_Avl)", colIntegrated, "1.8"},
		{"2B-Summary-B2BA_cum(ITC_Avl)", colIntegrated, "54"},
	}
	for _, tt := range tests {
		sec, ok := book.Section(tt.sheet)
		require.True(t, ok, tt.sheet)
		require.Len(t, sec.Rows, 1, tt.sheet)
		assert.Equal(t, "May", sec.Rows[0].Text(colMonth))
		assertDecimal(t, tt.want, sec.Rows[0].Get(tt.col))
	}

	sink := report.NewMemorySink()
	names, err := book.Publish(sink)
	require.NoError(t, err)
	assert.Contains(t, names, SectionB2B)
	assert.NotContains(t, names, SectionB2BA)
	assert.NotContains(t, names, "2B-Summary-B2B(ITC_Rej)")
}

func TestProcessEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"data": {"rtnprd": "042024"}}`), 0644))

	book, err := NewProcessor(nil).Process(Input{Files: []string{path, filepath.Join(dir, "missing.json")}})
	assert.True(t, errors.Is(err, merge.ErrNoData))
	assert.Equal(t, 1, book.Files)
	require.Len(t, book.Findings, 1)
}
