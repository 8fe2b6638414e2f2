// =============================================================================
// GST Returns Reporter - Anomaly Flagger
// =============================================================================
//
// This module marks extracted rows that need a human to look at them and
// keeps a log of why. It works at two levels:
//   1. Row-level: rows whose natural key (invoice or note number) occurs more
//      than once in a section are highlighted
//   2. Run-level: every highlighted row, error row and failed input file is
//      recorded as a Finding and written to a findings log next to the report
//
// ERROR HANDLING:
//   - Findings are collected, never thrown
//   - Each finding carries its context (section, key, file)
//   - Findings are warnings (row needs review) or errors (input was skipped)
//
// Highlighting only ever adds flags. A flag set by an extractor (multiple
// rates on one invoice, an unsnapped rate) is never cleared here.
//
// =============================================================================

package anomaly

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/nihasbabu/gst-modules/internal/types"
)

// =============================================================================
// FINDINGS
// =============================================================================

// Severity levels.
const (
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// Rules that produce findings.
const (
	RuleDuplicateKey  = "duplicate_key"
	RuleRateReview    = "rate_review"
	RuleMissingDetail = "missing_detail"
	RuleInputFailed   = "input_failed"
	RuleNoData        = "no_data"
)

// Finding is one entry of the findings log.
type Finding struct {
	// Severity is SeverityWarning or SeverityError.
	Severity string

	// Section is the sheet or section the finding belongs to.
	Section string

	// Key is the natural-key value of the row, if any.
	Key string

	// Month is the reporting month of the row, if any.
	Month string

	// File is the input file, for file-level findings.
	File string

	// Rule is the rule that produced the finding.
	Rule string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (f *Finding) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s]", strings.ToUpper(f.Severity))
	if f.File != "" {
		fmt.Fprintf(&b, " File '%s',", f.File)
	}
	if f.Section != "" {
		fmt.Fprintf(&b, " Section '%s',", f.Section)
	}
	if f.Month != "" {
		fmt.Fprintf(&b, " Month %s,", f.Month)
	}
	if f.Key != "" {
		fmt.Fprintf(&b, " Key '%s',", f.Key)
	}
	fmt.Fprintf(&b, " %s", f.Message)
	return b.String()
}

// FileFailed records an input file that could not be read.
func FileFailed(file string, err error) *Finding {
	return &Finding{
		Severity: SeverityError,
		File:     file,
		Rule:     RuleInputFailed,
		Message:  fmt.Sprintf("file skipped: %v", err),
	}
}

// =============================================================================
// RESULT
// =============================================================================

// Result collects the findings of one run.
type Result struct {
	Findings     []*Finding
	ErrorCount   int
	WarningCount int
}

// Add appends findings and updates the counters.
func (r *Result) Add(findings ...*Finding) {
	for _, f := range findings {
		if f == nil {
			continue
		}
		r.Findings = append(r.Findings, f)
		if f.Severity == SeverityError {
			r.ErrorCount++
		} else {
			r.WarningCount++
		}
	}
}

// =============================================================================
// ROW FLAGGING
// =============================================================================

// FlagDuplicates highlights every row whose key occurs more than once among
// rows. Rows with an empty key are counted like any other value. It returns
// the number of rows newly highlighted.
func FlagDuplicates(rows []types.Row, key string) int {
	if key == "" {
		return 0
	}
	counts := keyCounts(rows, key)

	flagged := 0
	for i := range rows {
		if counts[rows[i].Get(key).String()] > 1 && !rows[i].Highlight {
			rows[i].Highlight = true
			flagged++
		}
	}
	return flagged
}

func keyCounts(rows []types.Row, key string) map[string]int {
	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.Get(key).String()]++
	}
	return counts
}

// Review returns a finding for every highlighted row and every row holding
// the error marker.
//
// PARAMETERS:
//   - section: The section name used in the findings.
//   - rows: The section rows, after flagging.
//   - key: The natural-key column, or "".
//   - monthField: The column holding the reporting month, or "".
func Review(section string, rows []types.Row, key, monthField string) []*Finding {
	var counts map[string]int
	if key != "" {
		counts = keyCounts(rows, key)
	}

	var findings []*Finding
	for _, r := range rows {
		base := Finding{Severity: SeverityWarning, Section: section}
		if key != "" {
			base.Key = r.Get(key).String()
		}
		if monthField != "" {
			base.Month = r.Text(monthField)
		}

		if r.HasError() {
			f := base
			f.Rule = RuleMissingDetail
			f.Message = "line-item detail missing, rate could not be determined"
			findings = append(findings, &f)
		}
		if r.Highlight {
			f := base
			if key != "" && counts[base.Key] > 1 {
				f.Rule = RuleDuplicateKey
				f.Message = fmt.Sprintf("key occurs %d times", counts[base.Key])
			} else {
				f.Rule = RuleRateReview
				f.Message = "multiple or non-standard tax rates"
			}
			findings = append(findings, &f)
		}
	}
	return findings
}

// =============================================================================
// OUTPUT
// =============================================================================

// FormatFindings formats findings for display or logging.
func FormatFindings(findings []*Finding) string {
	if len(findings) == 0 {
		return "No findings."
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Run completed with %d finding(s):\n\n", len(findings)))
	for i, f := range findings {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, f.Error()))
	}
	return builder.String()
}

// WriteFindingsLog writes findings to a log file.
//
// PARAMETERS:
//   - findings: The findings to write.
//   - filePath: The path to the output file.
//
// RETURNS:
//   - An error if writing fails.
func WriteFindingsLog(findings []*Finding, filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create findings log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	fmt.Fprintf(writer, "================================================================================\n")
	fmt.Fprintf(writer, "GST Returns Reporter - Findings\n")
	fmt.Fprintf(writer, "Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(writer, "================================================================================\n\n")
	writer.WriteString(FormatFindings(findings))

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to write findings log: %w", err)
	}
	return nil
}
