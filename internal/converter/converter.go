// =============================================================================
// GST Returns Reporter - Converter Module
// =============================================================================
//
// This module runs the reporting pipeline for one job: one taxpayer profile
// and one return kind, with all the input files that belong to it.
//
// CONVERSION PIPELINE:
//   1. Resolve the profile against the main config
//   2. Run the processor for the return kind
//   3. Publish the report book to a workbook (or to memory on a dry run)
//   4. Save the workbook and the findings log
//   5. Archive the inputs and the workbook
//   6. Record metrics
//
// CONCURRENCY:
//   Jobs are independent. RunAll processes them concurrently, bounded by
//   max_concurrency. Each job is single-threaded inside.
//
// =============================================================================

package converter

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nihasbabu/gst-modules/internal/anomaly"
	"github.com/nihasbabu/gst-modules/internal/config"
	"github.com/nihasbabu/gst-modules/internal/gstr1"
	"github.com/nihasbabu/gst-modules/internal/gstr2b"
	"github.com/nihasbabu/gst-modules/internal/gstr3b"
	"github.com/nihasbabu/gst-modules/internal/logging"
	"github.com/nihasbabu/gst-modules/internal/merge"
	"github.com/nihasbabu/gst-modules/internal/metrics"
	"github.com/nihasbabu/gst-modules/internal/report"
	"github.com/nihasbabu/gst-modules/internal/sales"
	"github.com/nihasbabu/gst-modules/internal/source"
	"github.com/nihasbabu/gst-modules/pkg/utils"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of one job.
type Result struct {
	Job Job

	// OutputFile is the workbook written. Empty on failure and on dry runs.
	OutputFile string

	// FindingsLog is the findings file written next to the workbook, if any.
	FindingsLog string

	// Sheets are the sheet names published, in order.
	Sheets []string

	// Book is the processor output. It may be set even when Error is.
	Book *report.Book

	// Status is one of the metrics statuses.
	Status string

	// Error is nil when the job succeeded.
	Error error

	Duration time.Duration
}

// Success reports whether the job produced its report.
func (r Result) Success() bool {
	return r.Error == nil
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter runs jobs. It is safe for concurrent use.
type Converter struct {
	main    *config.MainConfig
	files   *utils.FileManager
	log     logging.Logger
	metrics *metrics.Recorder

	// DryRun publishes to memory and writes nothing to disk.
	DryRun bool
}

// New creates a new Converter.
//
// PARAMETERS:
//   - main: The main configuration.
//   - files: File manager for naming and archiving.
//   - log: The logger, usually carrying the run id. A nil logger discards output.
//   - rec: Metrics recorder. May be nil.
func New(main *config.MainConfig, files *utils.FileManager, log logging.Logger, rec *metrics.Recorder) *Converter {
	if log == nil {
		log = logging.Nop()
	}
	return &Converter{main: main, files: files, log: log, metrics: rec}
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the pipeline for one job.
func (c *Converter) Run(job Job) Result {
	start := time.Now()
	log := logging.With(c.log, "profile", job.Profile.Label(), "kind", string(job.Kind))
	result := Result{Job: job, Status: metrics.StatusFailed}

	defer func() {
		result.Duration = time.Since(start)
		if c.metrics != nil {
			c.metrics.Run(string(job.Kind), result.Book, len(result.Sheets), result.Status, result.Duration)
		}
	}()

	log.Info("Processing job", "inputs", len(job.Inputs()))

	// =========================================================================
	// STEP 1: RESOLVE SETTINGS
	// =========================================================================

	settings, err := config.Resolve(c.main, job.Profile)
	if err != nil {
		result.Error = err
		return result
	}

	// =========================================================================
	// STEP 2: PROCESS
	// =========================================================================

	book, err := c.process(job, settings, log)
	result.Book = book
	if err != nil {
		if errors.Is(err, merge.ErrNoData) {
			result.Status = metrics.StatusNoData
		}
		if !errors.Is(err, merge.ErrNoData) || !settings.IgnoreWarnings || book == nil {
			result.Error = err
			c.writeFindings(&result, log)
			log.Error("Job failed", "error", err)
			return result
		}
		log.Warn("No data found, continuing because warnings are ignored")
	}
	book.IgnoreWarnings = settings.IgnoreWarnings

	// =========================================================================
	// STEP 3: PUBLISH
	// =========================================================================

	if c.DryRun {
		sheets, err := book.Publish(report.NewMemorySink())
		result.Sheets = sheets
		if err != nil {
			result.Error = err
			return result
		}
		if len(sheets) == 0 {
			result.Status = metrics.StatusNoData
			result.Error = fmt.Errorf("every section is empty: %w", merge.ErrNoData)
			return result
		}
		result.Status = metrics.StatusOK
		log.Info("Dry run complete", "sheets", len(sheets), "findings", len(book.Findings))
		return result
	}

	sink, err := report.NewExcelSink(settings.TemplatePath)
	if err != nil {
		result.Error = fmt.Errorf("failed to create workbook: %w", err)
		return result
	}
	defer sink.Close()

	sheets, err := book.Publish(sink)
	result.Sheets = sheets
	if err != nil {
		result.Error = err
		return result
	}
	if len(sheets) == 0 {
		result.Status = metrics.StatusNoData
		result.Error = fmt.Errorf("every section is empty: %w", merge.ErrNoData)
		c.writeFindings(&result, log)
		return result
	}

	// =========================================================================
	// STEP 4: WRITE OUTPUT FILES
	// =========================================================================

	name := c.files.GenerateOutputFileName(c.main.OutputNameFormat, map[string]string{
		"kind":    string(job.Kind),
		"gstin":   job.Profile.GSTIN,
		"profile": job.Profile.Label(),
	})
	outputPath := filepath.Join(c.files.OutputDir, name)
	if err := sink.Save(outputPath); err != nil {
		result.Error = fmt.Errorf("failed to write output: %w", err)
		return result
	}
	result.OutputFile = outputPath
	c.writeFindings(&result, log)
	log.Info("Wrote report", "file", outputPath, "sheets", len(sheets), "findings", len(book.Findings))

	// =========================================================================
	// STEP 5: ARCHIVE FILES
	// =========================================================================

	c.archive(&result, log)

	result.Status = metrics.StatusOK
	return result
}

// process runs the processor for the job's kind.
func (c *Converter) process(job Job, s *config.Settings, log logging.Logger) (*report.Book, error) {
	src := source.Options{Lenient: s.LenientJSON}

	switch job.Kind {
	case config.KindGSTR1:
		return gstr1.NewProcessor(log).Process(gstr1.Input{
			Small:          job.Files,
			Large:          job.Large,
			Exclusions:     merge.Exclusions(s.Profile.Exclusions),
			IgnoreWarnings: s.IgnoreWarnings,
			Source:         src,
		})
	case config.KindGSTR2B:
		return gstr2b.NewProcessor(log).Process(gstr2b.Input{Files: job.Files, Source: src})
	case config.KindGSTR3B:
		return gstr3b.NewProcessor(log).Process(gstr3b.Input{Files: job.Files, Source: src})
	case config.KindSales:
		branch := job.Branch
		if branch == "" {
			branch = s.Profile.Branch
		}
		in := sales.Input{}
		for _, f := range job.Files {
			in.Files = append(in.Files, sales.File{Path: f, Branch: branch})
		}
		return sales.NewProcessor(log).Process(in)
	default:
		return nil, fmt.Errorf("unknown return kind %q", job.Kind)
	}
}

// writeFindings writes the findings log next to the workbook. Failures are
// logged, not returned.
func (c *Converter) writeFindings(result *Result, log logging.Logger) {
	if c.DryRun || result.Book == nil || len(result.Book.Findings) == 0 {
		return
	}

	var path string
	if result.OutputFile != "" {
		path = strings.TrimSuffix(result.OutputFile, filepath.Ext(result.OutputFile)) + "_findings.txt"
	} else {
		name := c.files.GenerateOutputFileName(c.main.OutputNameFormat, map[string]string{
			"kind":    string(result.Job.Kind),
			"gstin":   result.Job.Profile.GSTIN,
			"profile": result.Job.Profile.Label(),
		})
		path = filepath.Join(c.files.OutputDir, strings.TrimSuffix(name, filepath.Ext(name))+"_findings.txt")
	}

	if err := anomaly.WriteFindingsLog(result.Book.Findings, path); err != nil {
		log.Warn("Failed to write findings log", "error", err)
		return
	}
	result.FindingsLog = path
}

// archive moves the inputs and copies the workbook into the archive. Failures
// are logged but do not fail the job.
func (c *Converter) archive(result *Result, log logging.Logger) {
	if !c.files.ArchiveOnSuccess {
		return
	}
	for _, path := range result.Job.Inputs() {
		if _, err := c.files.ArchiveInputFile(path); err != nil {
			log.Warn("Failed to archive input", "file", path, "error", err)
		}
	}
	if _, err := c.files.ArchiveOutputFile(result.OutputFile); err != nil {
		log.Warn("Failed to archive output", "file", result.OutputFile, "error", err)
	}
}

// =============================================================================
// CONCURRENT EXECUTION
// =============================================================================

// RunAll runs every job, at most max_concurrency at a time. Jobs not yet
// started when ctx is cancelled are reported with ctx's error.
//
// RETURNS:
//   - One result per job, ordered by profile then kind.
func (c *Converter) RunAll(ctx context.Context, jobs []Job) []Result {
	limit := c.main.MaxConcurrency
	if limit <= 0 {
		limit = 1
	}

	var wg sync.WaitGroup
	results := make(chan Result, len(jobs))
	sem := make(chan struct{}, limit)

	for _, job := range jobs {
		wg.Add(1)
		go func(job Job) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				results <- Result{Job: job, Status: metrics.StatusFailed, Error: ctx.Err()}
				return
			}
			defer func() { <-sem }()

			if err := ctx.Err(); err != nil {
				results <- Result{Job: job, Status: metrics.StatusFailed, Error: err}
				return
			}
			results <- c.Run(job)
		}(job)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var out []Result
	for r := range results {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Job.less(out[j].Job)
	})
	return out
}

// =============================================================================
// SUMMARY
// =============================================================================

// Summarize converts results into the run summary.
func Summarize(runID string, start, end time.Time, results []Result) utils.RunSummary {
	summary := utils.RunSummary{RunID: runID, StartTime: start, EndTime: end}
	for _, r := range results {
		info := utils.RunInfo{
			Profile:     r.Job.Profile.Label(),
			Kind:        string(r.Job.Kind),
			Inputs:      r.Job.Inputs(),
			OutputFile:  r.OutputFile,
			FindingsLog: r.FindingsLog,
			Sheets:      len(r.Sheets),
			Status:      r.Status,
			Duration:    r.Duration,
		}
		if r.Book != nil {
			info.Files = r.Book.Files
			info.Rows = r.Book.Rows
			info.Findings = len(r.Book.Findings)
		}
		if r.Error != nil {
			info.Error = r.Error.Error()
		}
		summary.Runs = append(summary.Runs, info)
	}
	return summary
}
