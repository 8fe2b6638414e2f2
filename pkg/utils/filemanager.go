// =============================================================================
// GST Returns Reporter - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the reporter, including:
//   - Input discovery (recursive)
//   - File archival (moving processed inputs, copying workbooks)
//   - Output file naming
//   - The run summary log
//
// ARCHIVAL STRATEGY:
//   - Inputs are moved to input_archive/<run timestamp>/ after a successful run
//   - Workbooks are copied to output_archive/<run timestamp>/
//   - Inputs of failed runs stay where they are
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// InputExtensions are the file types picked up from the input directory.
var InputExtensions = []string{".json", ".zip", ".xlsx"}

// stampLayout names timestamped archive directories and output files.
const stampLayout = "20060102_150405"

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for one process run.
type FileManager struct {
	InputDir         string
	OutputDir        string
	InputArchiveDir  string
	OutputArchiveDir string

	// ArchiveOnSuccess determines whether to archive files after successful processing.
	ArchiveOnSuccess bool

	// RunTime stamps archive subdirectories and output names. Every file of
	// one run lands in the same subdirectory.
	RunTime time.Time
}

// NewFileManager creates a new FileManager with the specified directories.
func NewFileManager(inputDir, outputDir, inputArchiveDir, outputArchiveDir string) *FileManager {
	return &FileManager{
		InputDir:         inputDir,
		OutputDir:        outputDir,
		InputArchiveDir:  inputArchiveDir,
		OutputArchiveDir: outputArchiveDir,
		ArchiveOnSuccess: true,
		RunTime:          time.Now(),
	}
}

// EnsureDirectories creates all required directories if they don't exist.
func (fm *FileManager) EnsureDirectories() error {
	dirs := []string{fm.InputDir, fm.OutputDir}
	if fm.ArchiveOnSuccess {
		dirs = append(dirs, fm.InputArchiveDir, fm.OutputArchiveDir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverInputFiles scans the input directory recursively for return
// exports.
//
// RETURNS:
//   - The paths of .json, .zip and .xlsx files, sorted. Excel lock files
//     (~$...) and hidden files are skipped.
//   - An error if the directory cannot be read.
func (fm *FileManager) DiscoverInputFiles() ([]string, error) {
	var files []string

	err := filepath.Walk(fm.InputDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		name := info.Name()
		if strings.HasPrefix(name, "~$") || strings.HasPrefix(name, ".") {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(name))
		for _, want := range InputExtensions {
			if ext == want {
				files = append(files, path)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk input directory: %w", err)
	}

	sort.Strings(files)
	return files, nil
}

// =============================================================================
// FILE ARCHIVAL
// =============================================================================

// ArchiveInputFile moves an input file to the archive directory.
//
// RETURNS:
//   - The path to the archived file, or filePath unchanged when archiving is
//     off.
//   - An error if archival fails.
func (fm *FileManager) ArchiveInputFile(filePath string) (string, error) {
	if !fm.ArchiveOnSuccess {
		return filePath, nil
	}

	archivePath := fm.getArchivePath(fm.InputArchiveDir, filePath)
	if err := os.MkdirAll(filepath.Dir(archivePath), 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	if err := os.Rename(filePath, archivePath); err != nil {
		// Rename fails across devices.
		if err := copyFile(filePath, archivePath); err != nil {
			return "", fmt.Errorf("failed to copy file to archive: %w", err)
		}
		if err := os.Remove(filePath); err != nil {
			return "", fmt.Errorf("failed to remove original file: %w", err)
		}
	}

	return archivePath, nil
}

// ArchiveOutputFile copies a workbook to the archive directory. The original
// stays in the output directory.
func (fm *FileManager) ArchiveOutputFile(filePath string) (string, error) {
	if !fm.ArchiveOnSuccess {
		return filePath, nil
	}

	archivePath := fm.getArchivePath(fm.OutputArchiveDir, filePath)
	if err := os.MkdirAll(filepath.Dir(archivePath), 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}
	if err := copyFile(filePath, archivePath); err != nil {
		return "", fmt.Errorf("failed to copy file to archive: %w", err)
	}

	return archivePath, nil
}

// getArchivePath places a file in the run's timestamped subdirectory. Inputs
// keep their path relative to the input directory so files of the same name
// in different folders do not collide.
func (fm *FileManager) getArchivePath(archiveDir, filePath string) string {
	rel := filepath.Base(filePath)
	if r, err := filepath.Rel(fm.InputDir, filePath); err == nil && !strings.HasPrefix(r, "..") {
		rel = r
	}
	return filepath.Join(archiveDir, fm.RunTime.Format(stampLayout), rel)
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// GenerateOutputFileName fills in an output name format.
//
// PARAMETERS:
//   - format: The format string for the file name.
//             Placeholders:
//               {uuid}      - A random UUID
//               {timestamp} - Run timestamp (YYYYMMDD_HHMMSS)
//               {date}      - Run date (YYYYMMDD)
//               {kind}, {gstin}, {profile} - from params
//   - params: A map of placeholder values.
//
// RETURNS:
//   - The generated file name, always ending in .xlsx. Path separators in
//     values are replaced so the name stays in one directory.
//
// EXAMPLE:
//   format: "{kind}_{gstin}_{timestamp}.xlsx"
//   params: {"kind": "gstr1", "gstin": "27AAACA1234A1Z5"}
//   output: "gstr1_27AAACA1234A1Z5_20240115_143022.xlsx"
func (fm *FileManager) GenerateOutputFileName(format string, params map[string]string) string {
	replacements := map[string]string{
		"{uuid}":      uuid.New().String(),
		"{timestamp}": fm.RunTime.Format(stampLayout),
		"{date}":      fm.RunTime.Format("20060102"),
	}
	clean := strings.NewReplacer("/", "-", `\`, "-", " ", "_")
	for key, value := range params {
		replacements["{"+key+"}"] = clean.Replace(value)
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	if !strings.HasSuffix(strings.ToLower(result), ".xlsx") {
		result += ".xlsx"
	}
	return result
}

// =============================================================================
// PROCESSING SUMMARY
// =============================================================================

// RunSummary describes one invocation of the process command.
type RunSummary struct {
	RunID     string
	StartTime time.Time
	EndTime   time.Time
	Runs      []RunInfo
}

// RunInfo describes one (profile, kind) run.
type RunInfo struct {
	Profile     string
	Kind        string
	Inputs      []string
	OutputFile  string
	FindingsLog string
	Files       int
	Rows        int
	Sheets      int
	Findings    int
	Status      string
	Error       string
	Duration    time.Duration
}

// summaryPrinter groups numbers the Indian way (12,34,567).
var summaryPrinter = message.NewPrinter(language.MustParse("en-IN"))

// WriteSummaryLog writes a processing summary to a log file.
//
// RETURNS:
//   - The path to the summary file.
//   - An error if writing fails.
func WriteSummaryLog(summary RunSummary, outputDir string) (string, error) {
	summaryPath := filepath.Join(outputDir,
		fmt.Sprintf("processing_summary_%s.txt", summary.StartTime.Format(stampLayout)))

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	if _, err := writer.WriteString(FormatSummary(summary)); err != nil {
		return "", fmt.Errorf("failed to write summary file: %w", err)
	}
	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}
	return summaryPath, nil
}

// FormatSummary renders a summary as text.
func FormatSummary(summary RunSummary) string {
	var b strings.Builder
	p := summaryPrinter

	var ok, failed, rows, findings int
	for _, r := range summary.Runs {
		if r.Error == "" {
			ok++
		} else {
			failed++
		}
		rows += r.Rows
		findings += r.Findings
	}

	p.Fprintf(&b, "GST Returns Reporter - Processing Summary\n"+
		"================================================================================\n\n"+
		"Run Information:\n"+
		"  Run ID:         %s\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n\n"+
		"Statistics:\n"+
		"  Runs:           %d\n"+
		"  Successful:     %d\n"+
		"  Failed:         %d\n"+
		"  Rows:           %d\n"+
		"  Findings:       %d\n\n",
		summary.RunID,
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Sub(summary.StartTime).Round(time.Millisecond).String(),
		len(summary.Runs), ok, failed, rows, findings)

	b.WriteString("Runs:\n")
	b.WriteString("--------------------------------------------------------------------------------\n")
	for _, r := range summary.Runs {
		p.Fprintf(&b, "  Profile:  %s\n", r.Profile)
		p.Fprintf(&b, "  Kind:     %s\n", r.Kind)
		p.Fprintf(&b, "  Status:   %s\n", r.Status)
		p.Fprintf(&b, "  Inputs:   %d (%d read)\n", len(r.Inputs), r.Files)
		p.Fprintf(&b, "  Rows:     %d\n", r.Rows)
		if r.OutputFile != "" {
			p.Fprintf(&b, "  Output:   %s (%d sheets)\n", r.OutputFile, r.Sheets)
		}
		if r.Findings > 0 {
			p.Fprintf(&b, "  Findings: %d, see %s\n", r.Findings, r.FindingsLog)
		}
		if r.Error != "" {
			p.Fprintf(&b, "  Error:    %s\n", r.Error)
		}
		p.Fprintf(&b, "  Time:     %s\n\n", r.Duration.Round(time.Millisecond).String())
	}

	b.WriteString("================================================================================\n" +
		"End of Summary\n")
	return b.String()
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}
	return destFile.Sync()
}
