package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nihasbabu/gst-modules/internal/anomaly"
	"github.com/nihasbabu/gst-modules/internal/report"
	"github.com/nihasbabu/gst-modules/internal/types"
)

func TestRunCounts(t *testing.T) {
	rec := NewRecorder()
	book := &report.Book{
		Files: 2,
		Rows:  40,
		Findings: []*anomaly.Finding{
			{Severity: anomaly.SeverityWarning, Rule: anomaly.RuleDuplicateKey, Key: "INV1"},
			{Severity: anomaly.SeverityWarning, Rule: anomaly.RuleDuplicateKey, Key: "INV2"},
			anomaly.FileFailed("bad.json", errors.New("truncated")),
		},
	}

	rec.Run("gstr1", book, 7, StatusOK, 1500*time.Millisecond)
	rec.Run("gstr1", nil, 0, StatusFailed, time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(rec.files.WithLabelValues("gstr1", "read")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.files.WithLabelValues("gstr1", "failed")))
	assert.Equal(t, 40.0, testutil.ToFloat64(rec.rows.WithLabelValues("gstr1")))
	assert.Equal(t, 2.0, testutil.ToFloat64(rec.findings.WithLabelValues("gstr1", anomaly.RuleDuplicateKey)))
	assert.Equal(t, 7.0, testutil.ToFloat64(rec.sheets.WithLabelValues("gstr1")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.runs.WithLabelValues("gstr1", StatusOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.runs.WithLabelValues("gstr1", StatusFailed)))
	assert.Equal(t, 1, testutil.CollectAndCount(rec.duration))
}

func TestRunCountsFlaggedRows(t *testing.T) {
	rec := NewRecorder()

	flagged := types.NewRow()
	flagged.Highlight = true
	broken := types.NewRow()
	broken.Set("Tax", types.ErrorValue())
	total := types.NewRow()
	total.Total = true
	total.Highlight = true

	book := &report.Book{Sections: []types.Section{
		{Rows: []types.Row{flagged, broken, types.NewRow(), total}},
	}}
	rec.Run("sales", book, 1, StatusOK, time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(rec.flagged.WithLabelValues("sales")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.errored.WithLabelValues("sales")))
}

func TestWriteTextfile(t *testing.T) {
	rec := NewRecorder()
	rec.Run("gstr3b", &report.Book{Files: 1, Rows: 44}, 3, StatusOK, time.Second)

	path := filepath.Join(t.TempDir(), "gstreport.prom")
	require.NoError(t, rec.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.Contains(text, `gstreport_rows_extracted_total{kind="gstr3b"} 44`), text)
	assert.True(t, strings.Contains(text, "gstreport_run_duration_seconds_count"), text)
}
