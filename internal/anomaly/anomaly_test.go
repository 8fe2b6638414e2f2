package anomaly

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nihasbabu/gst-modules/internal/types"
)

func invoiceRow(num string) types.Row {
	r := types.NewRow()
	r.Set("Invoice number", types.Text(num))
	r.Set("Reporting Month", types.Text("April"))
	return r
}

func TestFlagDuplicates(t *testing.T) {
	rows := []types.Row{invoiceRow("INV1"), invoiceRow("INV2"), invoiceRow("INV1")}

	n := FlagDuplicates(rows, "Invoice number")

	assert.Equal(t, 2, n)
	assert.True(t, rows[0].Highlight)
	assert.False(t, rows[1].Highlight)
	assert.True(t, rows[2].Highlight)
}

func TestFlagDuplicatesKeepsEarlierFlags(t *testing.T) {
	rows := []types.Row{invoiceRow("INV1"), invoiceRow("INV2")}
	rows[1].Highlight = true

	n := FlagDuplicates(rows, "Invoice number")

	assert.Equal(t, 0, n)
	assert.False(t, rows[0].Highlight)
	assert.True(t, rows[1].Highlight)
}

func TestFlagDuplicatesCountsErrorRows(t *testing.T) {
	errRow := invoiceRow("INV9")
	errRow.Set("Rate", types.ErrorValue())
	rows := []types.Row{errRow, invoiceRow("INV9")}

	FlagDuplicates(rows, "Invoice number")
	assert.True(t, rows[0].Highlight)
	assert.True(t, rows[1].Highlight)
}

func TestFlagDuplicatesWithoutKey(t *testing.T) {
	rows := []types.Row{invoiceRow("A"), invoiceRow("A")}
	assert.Equal(t, 0, FlagDuplicates(rows, ""))
	assert.False(t, rows[0].Highlight)
}

func TestReview(t *testing.T) {
	dup1, dup2 := invoiceRow("INV1"), invoiceRow("INV1")
	multi := invoiceRow("INV2")
	multi.Highlight = true
	errRow := invoiceRow("INV3")
	errRow.Set("Rate", types.ErrorValue())
	rows := []types.Row{dup1, dup2, multi, errRow, invoiceRow("INV4")}
	FlagDuplicates(rows, "Invoice number")

	findings := Review("B2B", rows, "Invoice number", "Reporting Month")
	require.Len(t, findings, 4)

	rules := map[string]int{}
	for _, f := range findings {
		rules[f.Rule]++
		assert.Equal(t, SeverityWarning, f.Severity)
		assert.Equal(t, "B2B", f.Section)
		assert.Equal(t, "April", f.Month)
	}
	assert.Equal(t, 2, rules[RuleDuplicateKey])
	assert.Equal(t, 1, rules[RuleRateReview])
	assert.Equal(t, 1, rules[RuleMissingDetail])
}

func TestResultCounts(t *testing.T) {
	var res Result
	res.Add(FileFailed("a.json", errors.New("boom")), &Finding{Severity: SeverityWarning}, nil)

	assert.Len(t, res.Findings, 2)
	assert.Equal(t, 1, res.ErrorCount)
	assert.Equal(t, 1, res.WarningCount)
	assert.Contains(t, res.Findings[0].Error(), "[ERROR] File 'a.json',")
	assert.Contains(t, res.Findings[0].Error(), "boom")
}

func TestWriteFindingsLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "findings.log")
	findings := []*Finding{{Severity: SeverityWarning, Section: "CDNR", Key: "N1", Message: "key occurs 2 times"}}

	require.NoError(t, WriteFindingsLog(findings, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "GST Returns Reporter - Findings")
	assert.Contains(t, string(data), "1. [WARNING] Section 'CDNR', Key 'N1', key occurs 2 times")
}

func TestFormatFindingsEmpty(t *testing.T) {
	assert.Equal(t, "No findings.", FormatFindings(nil))
}
