// =============================================================================
// GST Returns Reporter - Return Commands
// =============================================================================
//
// One command per return kind. Each builds a single workbook from the files
// named on the command line, or from the matching files in the input
// directory when none are named.
//
// COMMAND USAGE:
//   gstreport gstr1  [files...] [--profile GSTIN]
//   gstreport gstr2b [files...] [--profile GSTIN]
//   gstreport gstr3b [files...] [--profile GSTIN]
//   gstreport sales  [files...] [--profile GSTIN] [--branch NAME]
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nihasbabu/gst-modules/internal/config"
	"github.com/nihasbabu/gst-modules/internal/converter"
)

// branch overrides the profile branch for sales registers.
var branch string

func newReturnCommand(kind config.Kind, use, short string) *cobra.Command {
	c := &cobra.Command{
		Use:   use + " [files...]",
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReturn(cmd, kind, args)
		},
	}
	c.Flags().StringVar(&profileFilter, "profile", "", "Profile (GSTIN) the files belong to")
	c.Flags().BoolVar(&dryRun, "dry-run", false, "Build the report in memory and list the sheets without writing files")
	return c
}

func init() {
	gstr1Cmd := newReturnCommand(config.KindGSTR1, "gstr1",
		"Report on GSTR-1 exports (small-tier JSON/ZIP and large-tier B2B downloads)")
	gstr2bCmd := newReturnCommand(config.KindGSTR2B, "gstr2b", "Report on GSTR-2B statements")
	gstr3bCmd := newReturnCommand(config.KindGSTR3B, "gstr3b", "Report on GSTR-3B returns")
	salesCmd := newReturnCommand(config.KindSales, "sales", "Report on Tally sales register exports")
	salesCmd.Flags().StringVar(&branch, "branch", "", "Branch written into every row (default: profile branch, else file name)")

	rootCmd.AddCommand(gstr1Cmd, gstr2bCmd, gstr3bCmd, salesCmd)
}

func runReturn(cmd *cobra.Command, kind config.Kind, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.log.Sync()

	var jobs []converter.Job
	if len(args) == 0 {
		files, err := a.files.DiscoverInputFiles()
		if err != nil {
			return fmt.Errorf("failed to discover input files: %w", err)
		}
		profiles := a.profiles
		if profileFilter != "" {
			p, err := a.profile(profileFilter)
			if err != nil {
				return err
			}
			profiles = map[string]*config.Profile{p.GSTIN: p}
		}
		planned, _ := converter.Plan(files, profiles)
		jobs = converter.Only(planned, kind)
	} else {
		p, err := a.profile(profileFilter)
		if err != nil {
			return err
		}
		jobs = []converter.Job{explicitJob(p, kind, args)}
	}

	if len(jobs) == 0 {
		return fmt.Errorf("no %s files found in %s", kind, a.cfg.InputDir)
	}
	for i := range jobs {
		jobs[i].Branch = branch
	}
	return execute(cmd, a, jobs)
}

// explicitJob builds a job from files named on the command line. GSTR-1
// files the profile classifies as large-tier downloads go to the large list;
// every other file is taken as the command's kind.
func explicitJob(p *config.Profile, kind config.Kind, files []string) converter.Job {
	job := converter.Job{Profile: p, Kind: kind}
	for _, f := range files {
		f = filepath.Clean(strings.TrimSpace(f))
		if kind == config.KindGSTR1 {
			if class, ok := p.Classify(f); ok && class.Large {
				job.Large = append(job.Large, f)
				continue
			}
		}
		job.Files = append(job.Files, f)
	}
	return job
}
