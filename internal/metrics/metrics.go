// =============================================================================
// GST Returns Reporter - Run Metrics
// =============================================================================
//
// This module counts what each processing run did. The reporter is a batch
// tool with no HTTP listener, so metrics are kept in a private registry and
// written as a node-exporter textfile at the end of the run when a metrics
// file is configured.
//
// METRICS (all labelled by return kind):
//   gstreport_files_total{outcome}        input files read or failed
//   gstreport_rows_extracted_total        detail rows extracted
//   gstreport_findings_total{rule}        findings by rule
//   gstreport_highlighted_rows_total      rows highlighted for review
//   gstreport_error_rows_total            rows holding an error cell
//   gstreport_sheets_written_total        sheets written to the workbook
//   gstreport_runs_total{status}          runs by final status
//   gstreport_run_duration_seconds        run wall time
//
// =============================================================================

package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nihasbabu/gst-modules/internal/report"
)

const namespace = "gstreport"

// Run statuses.
const (
	StatusOK     = "ok"
	StatusNoData = "no_data"
	StatusFailed = "failed"
)

// Recorder holds the metrics of one process.
type Recorder struct {
	registry *prometheus.Registry

	files    *prometheus.CounterVec
	rows     *prometheus.CounterVec
	findings *prometheus.CounterVec
	flagged  *prometheus.CounterVec
	errored  *prometheus.CounterVec
	sheets   *prometheus.CounterVec
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewRecorder creates a Recorder with its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_total",
			Help:      "Input files processed, by outcome.",
		}, []string{"kind", "outcome"}),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_extracted_total",
			Help:      "Detail rows extracted from input files.",
		}, []string{"kind"}),
		findings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "findings_total",
			Help:      "Findings recorded for manual review, by rule.",
		}, []string{"kind", "rule"}),
		flagged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "highlighted_rows_total",
			Help:      "Report rows highlighted for review.",
		}, []string{"kind"}),
		errored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "error_rows_total",
			Help:      "Report rows holding an error cell.",
		}, []string{"kind"}),
		sheets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sheets_written_total",
			Help:      "Sheets written to report workbooks.",
		}, []string{"kind"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Processing runs, by final status.",
		}, []string{"kind", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of processing runs.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}, []string{"kind"}),
	}
	r.registry.MustRegister(r.files, r.rows, r.findings, r.flagged, r.errored, r.sheets, r.runs, r.duration)
	return r
}

// Registry returns the registry the metrics are registered with.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Run records one finished run. book may be nil when the run failed before
// producing one. Files that could not be read are counted from the book's
// file-level findings.
func (r *Recorder) Run(kind string, book *report.Book, sheets int, status string, elapsed time.Duration) {
	if book != nil {
		r.files.WithLabelValues(kind, "read").Add(float64(book.Files))
		r.rows.WithLabelValues(kind).Add(float64(book.Rows))
		for _, f := range book.Findings {
			r.findings.WithLabelValues(kind, f.Rule).Inc()
			if f.File != "" {
				r.files.WithLabelValues(kind, "failed").Inc()
			}
		}
		for _, sec := range book.Sections {
			for _, row := range sec.Rows {
				if row.Total {
					continue
				}
				if row.Highlight {
					r.flagged.WithLabelValues(kind).Inc()
				}
				if row.HasError() {
					r.errored.WithLabelValues(kind).Inc()
				}
			}
		}
	}
	r.sheets.WithLabelValues(kind).Add(float64(sheets))
	r.runs.WithLabelValues(kind, status).Inc()
	r.duration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// WriteTextfile writes every metric to path in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	return nil
}
