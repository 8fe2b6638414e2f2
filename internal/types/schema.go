package types

// =============================================================================
// NUMBER FORMATS
// =============================================================================

// Number format codes understood by the spreadsheet sink.
const (
	// FormatGeneral leaves the cell unformatted.
	FormatGeneral = ""

	// FormatIndian groups digits the Indian way (lakh / crore) with two decimals.
	FormatIndian = `[>=10000000]##\,##\,##\,##0.00;[>=100000]##\,##\,##0.00;##,##0.00;-;`

	// FormatDate renders day-month-year.
	FormatDate = "DD-MM-YYYY"

	// FormatInteger renders a grouped whole number.
	FormatInteger = "#,##0"

	// FormatRate renders a grouped number with two decimals.
	FormatRate = "#,##0.00"

	// FormatCount renders a plain whole number.
	FormatCount = "0"
)

// =============================================================================
// SCHEMA
// =============================================================================

// Column describes a single output column.
type Column struct {
	Name   string
	Format string
}

// Schema describes one report section: where it goes, what it is called, the
// ordered columns it carries and which of them are numeric.
type Schema struct {
	// Sheet is the worksheet name.
	Sheet string

	// Title is written above the header row.
	Title string

	// Columns in display order.
	Columns []Column

	// Numeric lists the columns inspected by the "has any non-zero value"
	// visibility check.
	Numeric []string

	// Key is the natural-key column used for duplicate detection and
	// distinct counting. Empty when the section has none.
	Key string

	// NoFreeze disables the frozen header panes.
	NoFreeze bool

	// Always writes the sheet even when it has no rows or only zeros.
	Always bool

	// Pad is added to the longest cell text when sizing columns. Zero means 1.
	Pad int
}

// Names returns the column names in order.
func (s Schema) Names() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// FormatOf returns the number format of a column, or FormatGeneral.
func (s Schema) FormatOf(name string) string {
	for _, c := range s.Columns {
		if c.Name == name {
			return c.Format
		}
	}
	return FormatGeneral
}

// WithSheet returns a copy of s with a different sheet name and title.
func (s Schema) WithSheet(sheet, title string) Schema {
	out := s
	out.Sheet = sheet
	out.Title = title
	return out
}

// Cols builds a column list where every column uses FormatGeneral unless
// listed in formats.
func Cols(names []string, formats map[string]string) []Column {
	cols := make([]Column, len(names))
	for i, n := range names {
		cols[i] = Column{Name: n, Format: formats[n]}
	}
	return cols
}

// Section pairs a schema with the rows rendered under it.
type Section struct {
	Schema Schema
	Rows   []Row
}
