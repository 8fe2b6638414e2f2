// =============================================================================
// GST Returns Reporter - Report Sink
// =============================================================================
//
// This module is the boundary between the extraction pipeline and the
// rendered report. Processors hand it a list of sections (schema plus rows);
// Publish decides which of them become sheets and passes those to a Sink.
//
// SHEET LAYOUT (every sink renders the same logical layout):
//
//   Row 1   Title, merged across all columns
//   Row 2   Column headers
//   Row 3+  Data rows in the order given, total rows last
//
// VISIBILITY:
//   A section becomes a sheet when it has rows and at least one of its
//   numeric columns holds a non-zero number. IgnoreWarnings drops the
//   non-zero requirement. Schemas marked Always are written regardless.
//
// =============================================================================

package report

import (
	"fmt"
	"unicode/utf8"

	"github.com/nihasbabu/gst-modules/internal/anomaly"
	"github.com/nihasbabu/gst-modules/internal/types"
)

// maxSheetName is the longest worksheet name spreadsheet applications accept.
const maxSheetName = 31

// =============================================================================
// SINK
// =============================================================================

// Sink receives sections that passed the visibility check.
type Sink interface {
	// AddSheet renders one section as a sheet. A sheet with the same name
	// is replaced.
	AddSheet(sec types.Section) error
}

// Options controls Publish.
type Options struct {
	// IgnoreWarnings writes sections that have rows but only zero values.
	IgnoreWarnings bool
}

// Visible reports whether a section should become a sheet.
func Visible(sec types.Section, ignoreWarnings bool) bool {
	if sec.Schema.Always {
		return true
	}
	if len(sec.Rows) == 0 {
		return false
	}
	if ignoreWarnings {
		return true
	}
	for _, r := range sec.Rows {
		for _, col := range sec.Schema.Numeric {
			if r.Get(col).IsNonZero() {
				return true
			}
		}
	}
	return false
}

// Publish passes every visible section to the sink, in order.
//
// RETURNS:
//   - The names of the sheets written.
//   - The first error reported by the sink.
func Publish(sink Sink, sections []types.Section, opts Options) ([]string, error) {
	var written []string
	for _, sec := range sections {
		if !Visible(sec, opts.IgnoreWarnings) {
			continue
		}
		if err := sink.AddSheet(sec); err != nil {
			return written, fmt.Errorf("failed to write sheet %s: %w", sec.Schema.Sheet, err)
		}
		written = append(written, SheetName(sec.Schema.Sheet))
	}
	return written, nil
}

// =============================================================================
// BOOK
// =============================================================================

// Book is everything one processor run produces for a single workbook.
type Book struct {
	// Sections are the candidate sheets in display order.
	Sections []types.Section

	// Findings are the anomalies noticed while processing.
	Findings []*anomaly.Finding

	// Months are the reporting months processed, in financial-year order.
	Months []string

	// Files is the number of input files read successfully.
	Files int

	// Rows is the number of detail rows extracted.
	Rows int

	// IgnoreWarnings is passed on to Publish.
	IgnoreWarnings bool
}

// Publish writes the visible sections of the book to sink.
func (b *Book) Publish(sink Sink) ([]string, error) {
	return Publish(sink, b.Sections, Options{IgnoreWarnings: b.IgnoreWarnings})
}

// Section returns the section whose sheet is named sheet.
func (b *Book) Section(sheet string) (types.Section, bool) {
	for _, sec := range b.Sections {
		if sec.Schema.Sheet == sheet {
			return sec, true
		}
	}
	return types.Section{}, false
}

// SheetName trims a sheet name to the length spreadsheet applications
// accept.
func SheetName(name string) string {
	if utf8.RuneCountInString(name) <= maxSheetName {
		return name
	}
	runes := []rune(name)
	return string(runes[:maxSheetName])
}

// =============================================================================
// CELL HELPERS
// =============================================================================

// ColumnWidth returns the width of a column: the longest header or cell text
// plus the schema padding, but never below 15.
func ColumnWidth(sec types.Section, col string) float64 {
	pad := sec.Schema.Pad
	if pad == 0 {
		pad = 1
	}
	longest := utf8.RuneCountInString(col)
	for _, r := range sec.Rows {
		if n := utf8.RuneCountInString(r.Get(col).String()); n > longest {
			longest = n
		}
	}
	width := longest + pad
	if width < 15 {
		width = 15
	}
	return float64(width)
}

// HasErrorCell reports whether any row of the section holds the error marker.
func HasErrorCell(sec types.Section) bool {
	for _, r := range sec.Rows {
		if r.HasError() {
			return true
		}
	}
	return false
}

// =============================================================================
// MEMORY SINK
// =============================================================================

// Sheet is a section as recorded by MemorySink.
type Sheet struct {
	types.Section

	// RedTab is true when the sheet has an error cell.
	RedTab bool
}

// MemorySink keeps sheets in memory. It backs tests and dry runs.
type MemorySink struct {
	Sheets []Sheet
}

// NewMemorySink creates an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// AddSheet records a section, replacing any sheet with the same name.
func (m *MemorySink) AddSheet(sec types.Section) error {
	sheet := Sheet{Section: sec, RedTab: HasErrorCell(sec)}
	sheet.Schema.Sheet = SheetName(sec.Schema.Sheet)
	for i := range m.Sheets {
		if m.Sheets[i].Schema.Sheet == sheet.Schema.Sheet {
			m.Sheets[i] = sheet
			return nil
		}
	}
	m.Sheets = append(m.Sheets, sheet)
	return nil
}

// Names returns the sheet names in order.
func (m *MemorySink) Names() []string {
	names := make([]string, len(m.Sheets))
	for i, s := range m.Sheets {
		names[i] = s.Schema.Sheet
	}
	return names
}

// Get returns a sheet by name.
func (m *MemorySink) Get(name string) (Sheet, bool) {
	for _, s := range m.Sheets {
		if s.Schema.Sheet == name {
			return s, true
		}
	}
	return Sheet{}, false
}
