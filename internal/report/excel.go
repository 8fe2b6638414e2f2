package report

import (
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/nihasbabu/gst-modules/internal/types"
)

// =============================================================================
// EXCEL SINK
// =============================================================================

const (
	colorRed    = "FF0000"
	colorHeader = "D9D9D9"
)

// fontKind selects the data-cell font.
type fontKind int

const (
	fontPlain fontKind = iota
	fontRedBold
	fontRed
)

type styleKey struct {
	format string
	font   fontKind
}

// ExcelSink renders sections into an .xlsx workbook.
type ExcelSink struct {
	file        *excelize.File
	styles      map[styleKey]int
	titleStyle  int
	headerStyle int

	// defaultSheet is the blank sheet of a new workbook. It is removed on
	// Save once another sheet exists.
	defaultSheet string
}

// NewExcelSink creates a sink writing into a new workbook, or into a copy of
// the template workbook when templatePath is set and exists.
//
// PARAMETERS:
//   - templatePath: Optional path to an .xlsx template.
//
// RETURNS:
//   - The sink.
//   - An error if the template cannot be opened or styles cannot be created.
func NewExcelSink(templatePath string) (*ExcelSink, error) {
	s := &ExcelSink{styles: make(map[styleKey]int)}

	if templatePath != "" {
		if _, err := os.Stat(templatePath); err == nil {
			f, err := excelize.OpenFile(templatePath)
			if err != nil {
				return nil, fmt.Errorf("failed to open template: %w", err)
			}
			s.file = f
		}
	}
	if s.file == nil {
		s.file = excelize.NewFile()
		s.defaultSheet = s.file.GetSheetName(0)
	}

	var err error
	s.titleStyle, err = s.file.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create title style: %w", err)
	}
	s.headerStyle, err = s.file.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{colorHeader}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	return s, nil
}

// File exposes the underlying workbook.
func (s *ExcelSink) File() *excelize.File {
	return s.file
}

// AddSheet renders one section.
//
// RENDERING:
//   1. Replace any existing sheet of the same name
//   2. Write the merged title row and the grey header row
//   3. Write data rows; highlighted rows and error cells in bold red, total
//      rows in red
//   4. Apply number formats to numeric and date cells
//   5. Freeze panes at B3 unless the schema says otherwise
//   6. Size columns and paint the tab red when an error cell exists
func (s *ExcelSink) AddSheet(sec types.Section) error {
	name := SheetName(sec.Schema.Sheet)
	cols := sec.Schema.Columns

	if idx, err := s.file.GetSheetIndex(name); err == nil && idx >= 0 {
		if err := s.file.DeleteSheet(name); err != nil {
			return fmt.Errorf("failed to replace sheet: %w", err)
		}
	}
	if _, err := s.file.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	if err := s.writeTitle(name, sec.Schema.Title, len(cols)); err != nil {
		return err
	}
	if err := s.writeHeader(name, cols); err != nil {
		return err
	}

	for i, row := range sec.Rows {
		if err := s.writeRow(name, cols, row, i+3); err != nil {
			return err
		}
	}

	if !sec.Schema.NoFreeze {
		err := s.file.SetPanes(name, &excelize.Panes{
			Freeze:      true,
			XSplit:      1,
			YSplit:      2,
			TopLeftCell: "B3",
			ActivePane:  "bottomRight",
		})
		if err != nil {
			return fmt.Errorf("failed to freeze panes: %w", err)
		}
	}

	for i, c := range cols {
		letter, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := s.file.SetColWidth(name, letter, letter, ColumnWidth(sec, c.Name)); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	if HasErrorCell(sec) {
		red := colorRed
		if err := s.file.SetSheetProps(name, &excelize.SheetPropsOptions{TabColorRGB: &red}); err != nil {
			return fmt.Errorf("failed to color tab: %w", err)
		}
	}
	return nil
}

func (s *ExcelSink) writeTitle(sheet, title string, ncols int) error {
	if err := s.file.SetCellValue(sheet, "A1", title); err != nil {
		return fmt.Errorf("failed to write title: %w", err)
	}
	if ncols > 1 {
		last, err := excelize.CoordinatesToCellName(ncols, 1)
		if err != nil {
			return err
		}
		if err := s.file.MergeCell(sheet, "A1", last); err != nil {
			return fmt.Errorf("failed to merge title: %w", err)
		}
	}
	return s.file.SetCellStyle(sheet, "A1", "A1", s.titleStyle)
}

func (s *ExcelSink) writeHeader(sheet string, cols []types.Column) error {
	for i, c := range cols {
		cell, err := excelize.CoordinatesToCellName(i+1, 2)
		if err != nil {
			return err
		}
		if err := s.file.SetCellValue(sheet, cell, c.Name); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		if err := s.file.SetCellStyle(sheet, cell, cell, s.headerStyle); err != nil {
			return err
		}
	}
	return nil
}

func (s *ExcelSink) writeRow(sheet string, cols []types.Column, row types.Row, rowNum int) error {
	for i, c := range cols {
		cell, err := excelize.CoordinatesToCellName(i+1, rowNum)
		if err != nil {
			return err
		}
		v := row.Get(c.Name)
		if !v.IsNull() {
			if err := s.file.SetCellValue(sheet, cell, v.Cell()); err != nil {
				return fmt.Errorf("failed to write cell %s: %w", cell, err)
			}
		}

		key := styleKey{}
		if k := v.Kind(); k == types.KindNumber || k == types.KindDate {
			key.format = c.Format
			if row.Total && k == types.KindNumber && key.format == types.FormatGeneral {
				key.format = types.FormatIndian
			}
		}
		switch {
		case row.Total:
			key.font = fontRed
		case v.IsError() || row.Highlight:
			key.font = fontRedBold
		}
		if key == (styleKey{}) {
			continue
		}

		style, err := s.style(key)
		if err != nil {
			return err
		}
		if err := s.file.SetCellStyle(sheet, cell, cell, style); err != nil {
			return err
		}
	}
	return nil
}

// style returns a cached style id for a format and font combination.
func (s *ExcelSink) style(key styleKey) (int, error) {
	if id, ok := s.styles[key]; ok {
		return id, nil
	}

	st := &excelize.Style{}
	if key.format != types.FormatGeneral {
		format := key.format
		st.CustomNumFmt = &format
	}
	switch key.font {
	case fontRedBold:
		st.Font = &excelize.Font{Bold: true, Color: colorRed}
	case fontRed:
		st.Font = &excelize.Font{Color: colorRed}
	}

	id, err := s.file.NewStyle(st)
	if err != nil {
		return 0, fmt.Errorf("failed to create cell style: %w", err)
	}
	s.styles[key] = id
	return id, nil
}

// SheetNames returns the sheets currently in the workbook.
func (s *ExcelSink) SheetNames() []string {
	return s.file.GetSheetList()
}

// Save writes the workbook. The blank default sheet of a new workbook is
// dropped when other sheets exist.
func (s *ExcelSink) Save(path string) error {
	if s.defaultSheet != "" && len(s.file.GetSheetList()) > 1 {
		if err := s.file.DeleteSheet(s.defaultSheet); err != nil {
			return fmt.Errorf("failed to remove default sheet: %w", err)
		}
		s.defaultSheet = ""
	}
	if err := s.file.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// Close releases the workbook.
func (s *ExcelSink) Close() error {
	return s.file.Close()
}
