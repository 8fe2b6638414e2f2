// =============================================================================
// GST Returns Reporter - Process Command
// =============================================================================
//
// This file defines the 'process' command, which reports on everything in
// the input directory.
//
// COMMAND USAGE:
//   gstreport process [flags]
//
// FLAGS:
//   --dry-run  : Build every report in memory and list the sheets
//   --profile  : Process only files of one taxpayer (GSTIN)
//
// PROCESSING PIPELINE:
//   1. Load configuration and profiles
//   2. Discover input files in the input directory
//   3. Match each file to a profile and a return kind
//   4. Run each (profile, kind) group concurrently
//   5. Write the run summary and metrics
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/nihasbabu/gst-modules/internal/config"
	"github.com/nihasbabu/gst-modules/internal/converter"
	"github.com/nihasbabu/gst-modules/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// dryRun builds the reports without writing output files.
var dryRun bool

// profileFilter limits processing to one GSTIN.
var profileFilter string

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Report on every return export in the input directory",
	Long: `The process command scans the input directory for return exports, matches
them to taxpayer profiles by file name, and writes one workbook per taxpayer
and return type.

Runs for different taxpayers and return types are processed concurrently. A
file that cannot be read is recorded in the findings log and the rest of the
run continues.

On success:
  - The workbook is placed in the output directory
  - A findings log is written next to it when anything needs review
  - Inputs are archived if archive_on_success is set

On error:
  - The inputs remain in the input directory
  - The run summary in the output directory records the error`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd)
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Build reports in memory and list the sheets without writing files")
	processCmd.Flags().StringVar(&profileFilter, "profile", "", "Process only files of this profile (GSTIN)")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runProcess(cmd *cobra.Command) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.log.Sync()

	if profileFilter != "" {
		p, err := a.profile(profileFilter)
		if err != nil {
			return err
		}
		a.profiles = map[string]*config.Profile{p.GSTIN: p}
	}

	// =========================================================================
	// DISCOVER AND PLAN
	// =========================================================================

	inputFiles, err := a.files.DiscoverInputFiles()
	if err != nil {
		return fmt.Errorf("failed to discover input files: %w", err)
	}
	if len(inputFiles) == 0 {
		fmt.Println("No return exports found in the input directory.")
		return nil
	}

	jobs, unmatched := converter.Plan(inputFiles, a.profiles)
	for _, f := range unmatched {
		a.log.Warn("No profile matches file, skipping", "file", f)
	}
	fmt.Printf("Found %d file(s) in %d run(s)\n", len(inputFiles)-len(unmatched), len(jobs))

	return execute(cmd, a, jobs)
}

// execute runs the jobs, prints the outcome and writes the summary and
// metrics. It returns an error when any job failed.
func execute(cmd *cobra.Command, a *app, jobs []converter.Job) error {
	start := time.Now()

	conv := converter.New(a.cfg, a.files, a.log, a.metrics)
	conv.DryRun = dryRun
	results := conv.RunAll(cmd.Context(), jobs)

	// =========================================================================
	// PRINT RESULTS
	// =========================================================================

	var failed int
	for _, r := range results {
		label := fmt.Sprintf("%s %s", r.Job.Profile.Label(), r.Job.Kind)
		switch {
		case !r.Success():
			failed++
			fmt.Printf("  ✗ %s: %v\n", label, r.Error)
		case dryRun:
			fmt.Printf("  ✓ %s: %d sheet(s)\n", label, len(r.Sheets))
			for _, s := range r.Sheets {
				fmt.Printf("      %s\n", s)
			}
		default:
			fmt.Printf("  ✓ %s -> %s\n", label, filepath.Base(r.OutputFile))
		}
		if r.FindingsLog != "" {
			fmt.Printf("      %d finding(s), see %s\n", len(r.Book.Findings), filepath.Base(r.FindingsLog))
		}
	}

	// =========================================================================
	// SUMMARY AND METRICS
	// =========================================================================

	summary := converter.Summarize(a.runID, start, time.Now(), results)
	if !dryRun {
		path, err := utils.WriteSummaryLog(summary, a.cfg.OutputDir)
		if err != nil {
			a.log.Warn("Failed to write summary log", "error", err)
		} else {
			a.log.Info("Wrote summary", "file", path)
		}
	}
	if a.cfg.MetricsFile != "" {
		if err := a.metrics.WriteTextfile(a.cfg.MetricsFile); err != nil {
			a.log.Warn("Failed to write metrics", "error", err)
		}
	}

	fmt.Println("\n=== Processing Complete ===")
	fmt.Printf("Runs:         %d\n", len(results))
	fmt.Printf("Successful:   %d\n", len(results)-failed)
	fmt.Printf("Failed:       %d\n", failed)
	fmt.Printf("Time elapsed: %s\n", time.Since(start).Round(time.Millisecond))

	if failed > 0 {
		return fmt.Errorf("%d of %d run(s) failed", failed, len(results))
	}
	return nil
}
