// =============================================================================
// GST Returns Reporter - Configuration Module
// =============================================================================
//
// This module is responsible for loading and managing all configuration files.
// It handles both the main application configuration and the per-taxpayer
// profiles.
//
// CONFIGURATION FILES:
//   1. Main Config (config.yaml or config.toml): Global application settings
//   2. Profiles (profiles/*.yaml): One file per GSTIN
//
// PRECEDENCE (highest first):
//   command-line flag > GSTR_* environment variable > config file > default
//
//   A .env file in the working directory is loaded into the environment
//   before the overrides are read.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment variable overrides, e.g.
// GSTR_OUTPUT_DIR.
const EnvPrefix = "GSTR"

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is scanned recursively for return exports.
	// Default: "./input"
	InputDir string `yaml:"input_dir" toml:"input_dir"`

	// OutputDir receives the report workbooks and their logs.
	// Default: "./output"
	OutputDir string `yaml:"output_dir" toml:"output_dir"`

	// InputArchiveDir is where inputs are moved after a successful run.
	// Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir" toml:"input_archive_dir"`

	// OutputArchiveDir keeps a copy of every workbook written.
	// Default: "./output_archive"
	OutputArchiveDir string `yaml:"output_archive_dir" toml:"output_archive_dir"`

	// ProfilesDir holds one YAML profile per taxpayer.
	// Default: "./profiles"
	ProfilesDir string `yaml:"profiles_dir" toml:"profiles_dir"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogFile is the JSON log file. Default: "./logs/gstreport.log"
	LogFile string `yaml:"log_file" toml:"log_file"`

	// LogLevel is one of "debug", "info", "warn", "error". Default: "info"
	LogLevel string `yaml:"log_level" toml:"log_level"`

	LogMaxSizeMB  int `yaml:"log_max_size_mb" toml:"log_max_size_mb"`
	LogMaxBackups int `yaml:"log_max_backups" toml:"log_max_backups"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputNameFormat defines the workbook file name.
	// Placeholders:
	//   {kind}      - Return kind (gstr1, gstr2b, gstr3b, sales)
	//   {gstin}     - Profile GSTIN
	//   {profile}   - Profile name
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {uuid}      - A random UUID
	//
	// Default: "{kind}_{gstin}_{timestamp}.xlsx"
	OutputNameFormat string `yaml:"output_name_format" toml:"output_name_format"`

	// TemplatePath is an optional workbook whose styles the reports start from.
	TemplatePath string `yaml:"template_path" toml:"template_path"`

	// MetricsFile is where run metrics are written in the Prometheus text
	// format. Empty disables it.
	MetricsFile string `yaml:"metrics_file" toml:"metrics_file"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// IgnoreWarnings writes all-zero sheets and suppresses the no-data error.
	IgnoreWarnings bool `yaml:"ignore_warnings" toml:"ignore_warnings"`

	// MaxConcurrency is the number of runs processed at once.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency" toml:"max_concurrency"`

	// ArchiveOnSuccess moves inputs to the archive after a successful run.
	ArchiveOnSuccess bool `yaml:"archive_on_success" toml:"archive_on_success"`

	// LenientJSON retries malformed exports with the repair and Hjson
	// decoders.
	LenientJSON bool `yaml:"lenient_json" toml:"lenient_json"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// LoadMainConfig loads the main configuration.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file. A ".toml"
//     extension selects the TOML decoder; anything else is read as YAML.
//   - optional: When true a missing file is not an error and defaults are
//     used instead.
//   - overrides: Environment and flag values to apply on top of the file.
//     May be nil.
//
// RETURNS:
//   - A pointer to the MainConfig struct.
//   - An error if the file cannot be read or parsed, or a directory cannot
//     be created.
func LoadMainConfig(configPath string, optional bool, overrides *viper.Viper) (*MainConfig, error) {
	var config MainConfig

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := decode(configPath, data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case optional && errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if overrides != nil {
		ApplyOverrides(&config, overrides)
	}
	applyMainConfigDefaults(&config)

	if err := validateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

func decode(path string, data []byte, config *MainConfig) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		_, err := toml.Decode(string(data), config)
		return err
	}
	return yaml.Unmarshal(data, config)
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.InputDir == "" {
		config.InputDir = "./input"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.InputArchiveDir == "" {
		config.InputArchiveDir = "./input_archive"
	}
	if config.OutputArchiveDir == "" {
		config.OutputArchiveDir = "./output_archive"
	}
	if config.ProfilesDir == "" {
		config.ProfilesDir = "./profiles"
	}
	if config.LogFile == "" {
		config.LogFile = "./logs/gstreport.log"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.LogMaxSizeMB == 0 {
		config.LogMaxSizeMB = 10
	}
	if config.LogMaxBackups == 0 {
		config.LogMaxBackups = 5
	}
	if config.OutputNameFormat == "" {
		config.OutputNameFormat = "{kind}_{gstin}_{timestamp}.xlsx"
	}
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 4
	}
}

// validateMainConfig creates the working directories.
func validateMainConfig(config *MainConfig) error {
	dirs := []string{
		config.InputDir,
		config.OutputDir,
		config.ProfilesDir,
	}
	if config.ArchiveOnSuccess {
		dirs = append(dirs, config.InputArchiveDir, config.OutputArchiveDir)
	}

	for _, dir := range dirs {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", dir, err)
			}
		}
	}
	return nil
}

// =============================================================================
// ENVIRONMENT AND FLAG OVERRIDES
// =============================================================================

// LoadDotEnv loads path into the process environment. A missing file is not
// an error. Variables already set are left alone.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// NewViper returns a viper instance reading GSTR_* environment variables.
// Keys use the config file names, so GSTR_OUTPUT_DIR overrides output_dir.
// Callers bind command-line flags onto the same keys.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

// ApplyOverrides copies every key set in v (by flag or environment) onto
// config.
func ApplyOverrides(config *MainConfig, v *viper.Viper) {
	strs := map[string]*string{
		"input_dir":          &config.InputDir,
		"output_dir":         &config.OutputDir,
		"input_archive_dir":  &config.InputArchiveDir,
		"output_archive_dir": &config.OutputArchiveDir,
		"profiles_dir":       &config.ProfilesDir,
		"log_file":           &config.LogFile,
		"log_level":          &config.LogLevel,
		"output_name_format": &config.OutputNameFormat,
		"template_path":      &config.TemplatePath,
		"metrics_file":       &config.MetricsFile,
	}
	for key, dst := range strs {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}

	ints := map[string]*int{
		"log_max_size_mb": &config.LogMaxSizeMB,
		"log_max_backups": &config.LogMaxBackups,
		"max_concurrency": &config.MaxConcurrency,
	}
	for key, dst := range ints {
		if v.IsSet(key) {
			*dst = v.GetInt(key)
		}
	}

	bools := map[string]*bool{
		"ignore_warnings":    &config.IgnoreWarnings,
		"archive_on_success": &config.ArchiveOnSuccess,
		"lenient_json":       &config.LenientJSON,
	}
	for key, dst := range bools {
		if v.IsSet(key) {
			*dst = v.GetBool(key)
		}
	}
}
