// =============================================================================
// GST Returns Reporter - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (gstreport)
//   ├── processCmd (gstreport process)
//   ├── gstr1Cmd   (gstreport gstr1 [files...])
//   ├── gstr2bCmd  (gstreport gstr2b [files...])
//   ├── gstr3bCmd  (gstreport gstr3b [files...])
//   ├── salesCmd   (gstreport sales [files...])
//   └── versionCmd (gstreport version)
//
// CONFIGURATION:
//   Persistent flags are bound to viper keys named like the config file
//   fields, so --output-dir, GSTR_OUTPUT_DIR and output_dir are the same
//   setting.
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nihasbabu/gst-modules/internal/config"
	"github.com/nihasbabu/gst-modules/internal/logging"
	"github.com/nihasbabu/gst-modules/internal/metrics"
	"github.com/nihasbabu/gst-modules/pkg/utils"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// verbose forces debug logging.
var verbose bool

// overrides reads GSTR_* variables and the bound flags.
var overrides = config.NewViper()

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "gstreport",
	Short: "GST Returns Reporter - Turn GST return exports into review workbooks",
	Long: `GST Returns Reporter reads the JSON exports of GSTR-1, GSTR-2B and GSTR-3B
returns and Tally sales registers, and writes one Excel workbook per taxpayer
and return type, with monthly summaries and a findings log for review.

Example Usage:
  gstreport process                       # Process everything in the input directory
  gstreport process --dry-run             # List the sheets that would be written
  gstreport gstr1 GSTR1_042024.json       # Report on specific files
  gstreport sales --branch Pune Pune.xlsx # Sales register with an explicit branch`,

	SilenceUsage:  true,
	SilenceErrors: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	flags := rootCmd.PersistentFlags()

	flags.StringVar(&cfgFile, "config", "config.yaml", "Path to the main configuration file (.yaml or .toml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output for debugging")

	// Flags that override config file settings. The viper key is the config
	// field name.
	flags.String("input-dir", "", "Directory scanned for return exports")
	flags.String("output-dir", "", "Directory the workbooks are written to")
	flags.String("profiles-dir", "", "Directory holding taxpayer profiles")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.String("template", "", "Workbook template to start reports from")
	flags.String("metrics-file", "", "Write run metrics to this file")
	flags.Int("max-concurrency", 0, "Number of runs processed at once")
	flags.Bool("ignore-warnings", false, "Write all-zero sheets and do not fail when no data is found")
	flags.Bool("lenient-json", false, "Retry malformed exports with the repairing decoders")
	flags.Bool("archive", false, "Archive inputs and workbooks after a successful run")

	bindings := map[string]string{
		"input_dir":          "input-dir",
		"output_dir":         "output-dir",
		"profiles_dir":       "profiles-dir",
		"log_level":          "log-level",
		"template_path":      "template",
		"metrics_file":       "metrics-file",
		"max_concurrency":    "max-concurrency",
		"ignore_warnings":    "ignore-warnings",
		"lenient_json":       "lenient-json",
		"archive_on_success": "archive",
	}
	for key, flag := range bindings {
		if err := overrides.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(err)
		}
	}
}

// =============================================================================
// APPLICATION SETUP
// =============================================================================

// app is what every command needs once configuration has loaded.
type app struct {
	cfg      *config.MainConfig
	profiles map[string]*config.Profile
	log      *logging.ZapLogger
	files    *utils.FileManager
	metrics  *metrics.Recorder
	runID    string
}

// setup loads .env, the main config and the profiles, and builds the logger.
func setup(cmd *cobra.Command) (*app, error) {
	boot := logging.Stdout()
	if err := config.LoadDotEnv(".env"); err != nil {
		boot.Warn("Ignoring .env", "error", err)
	}

	// The default config file is optional; an explicit one is not.
	optional := !cmd.Flags().Changed("config")
	cfg, err := config.LoadMainConfig(cfgFile, optional, overrides)
	if err != nil {
		return nil, fmt.Errorf("failed to load main config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	zl, err := logging.New(logging.Options{
		Level:      cfg.LogLevel,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	profiles, err := config.LoadProfiles(cfg.ProfilesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}
	if len(profiles) == 0 {
		def := config.DefaultProfile()
		profiles[def.GSTIN] = def
	}

	runID := uuid.New().String()
	fm := utils.NewFileManager(cfg.InputDir, cfg.OutputDir, cfg.InputArchiveDir, cfg.OutputArchiveDir)
	fm.ArchiveOnSuccess = cfg.ArchiveOnSuccess

	a := &app{
		cfg:      cfg,
		profiles: profiles,
		log:      zl.With("run_id", runID),
		files:    fm,
		metrics:  metrics.NewRecorder(),
		runID:    runID,
	}
	a.log.Debug("Configuration loaded", "config", cfgFile, "profiles", len(profiles),
		"input_dir", cfg.InputDir, "output_dir", cfg.OutputDir)
	return a, nil
}

// profile returns the profile named by gstin, or the only profile when gstin
// is empty.
func (a *app) profile(gstin string) (*config.Profile, error) {
	if gstin != "" {
		if p, ok := a.profiles[gstin]; ok {
			return p, nil
		}
		return nil, fmt.Errorf("no profile for %s", gstin)
	}
	if len(a.profiles) == 1 {
		for _, p := range a.profiles {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%d profiles loaded, choose one with --profile", len(a.profiles))
}
