// =============================================================================
// GST Returns Reporter - Tally Sales Register Reader
// =============================================================================
//
// This module reads the "Sales Register" export produced by Tally. The export
// is a free-form sheet: a few banner rows (company name, period) followed by a
// header row whose first cell is "Date", then one row per voucher and a
// closing "Grand Total" row.
//
// REGISTER STRUCTURE (Expected Columns):
//   Column positions vary between exports, so columns are matched by header
//   text. Known headers are renamed; any other header is carried through
//   under its own name, after the standard columns.
//
//   | Tally header     | Report column            |
//   |------------------|--------------------------|
//   | Date             | Invoice date             |
//   | Particulars      | Receiver Name            |
//   | GSTIN/UIN        | GSTIN/UIN of Recipient   |
//   | Voucher Type     | Invoice Type             |
//   | Voucher No(.)    | Invoice number           |
//   | Gross Total      | Invoice value            |
//   | Value            | Taxable Value            |
//   | IGST / CGST      | Integrated / Central Tax |
//   | SGST / Cess      | State/UT Tax / Cess      |
//   | ROUND OFF        | Round Off                |
//
// SKIPPED ROWS:
//   - No date, or a date that does not parse
//   - A "Grand Total" row
//   - No voucher type or no voucher number
//
// =============================================================================

package sales

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/nihasbabu/gst-modules/internal/normalize"
	"github.com/nihasbabu/gst-modules/internal/types"
)

// Errors returned while opening a register.
var (
	// ErrNoHeader means no row has "Date" in its first cell.
	ErrNoHeader = errors.New("header row starting with 'Date' not found")

	// ErrNoSalesSheet means the workbook has several sheets and none is
	// named "Sales Register".
	ErrNoSalesSheet = errors.New("multiple sheets found but 'Sales Register' not present")
)

// salesSheet is the sheet read from multi-sheet workbooks.
const salesSheet = "Sales Register"

// Report column names.
const (
	colGSTIN    = "GSTIN/UIN of Recipient"
	colReceiver = "Receiver Name"
	colBranch   = "Branch"
	colInvoice  = "Invoice number"
	colDate     = "Invoice date"
	colType     = "Invoice Type"
	colValue    = "Invoice value"
	colTaxable  = "Taxable Value"
	colIGST     = "Integrated Tax"
	colCGST     = "Central Tax"
	colSGST     = "State/UT Tax"
	colCess     = "Cess"
	colRoundOff = "Round Off"
	colAddlCost = "Addl. Cost"
)

// Tally header names with special handling.
const (
	headerDate        = "Date"
	headerParticulars = "Particulars"
	headerRoundOff    = "ROUND OFF"
)

// headerMap renames Tally headers to report columns.
var headerMap = map[string]string{
	"GSTIN/UIN":       colGSTIN,
	headerParticulars: colReceiver,
	"Voucher No":      colInvoice,
	"Voucher No.":     colInvoice,
	headerDate:        colDate,
	"Gross Total":     colValue,
	"Voucher Type":    colType,
	"Value":           colTaxable,
	"IGST":            colIGST,
	"CGST":            colCGST,
	"SGST":            colSGST,
	"Cess":            colCess,
	headerRoundOff:    colRoundOff,
}

// standardColumns open every register sheet, in this order.
var standardColumns = []string{
	colGSTIN, colReceiver, colBranch, colInvoice, colDate, colType,
	colValue, colTaxable, colIGST, colCGST, colSGST, colCess,
}

// textColumns are never read as numbers.
var textColumns = map[string]bool{
	colGSTIN: true, colReceiver: true, colBranch: true, colInvoice: true, colType: true,
}

// tallyTimestamp is how Tally writes dates stored as text.
const tallyTimestamp = "2006-01-02 15:04:05"

// =============================================================================
// REGISTER
// =============================================================================

// Register is the voucher rows of one export.
type Register struct {
	// Path is the workbook the rows were read from.
	Path string

	// Rows are the accepted voucher rows, in sheet order.
	Rows []types.Row

	// Extra lists the non-standard columns, in the order first seen.
	Extra []string

	// Skipped counts rows that were not vouchers.
	Skipped int
}

// Read opens a Tally sales register export and returns its voucher rows, each
// tagged with branch.
//
// PARAMETERS:
//   - path: The .xlsx export.
//   - branch: The branch written into every row.
//
// RETURNS:
//   - The register.
//   - ErrNoSalesSheet or ErrNoHeader (wrapped) for exports of the wrong
//     shape, or an error if the workbook cannot be read.
func Read(path, branch string) (*Register, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sales register: %w", err)
	}
	defer f.Close()

	sheet, err := pickSheet(f)
	if err != nil {
		return nil, fmt.Errorf("%w in %s", err, filepath.Base(path))
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	headerRow := findHeaderRow(rows)
	if headerRow < 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoHeader, filepath.Base(path))
	}

	reg := &Register{Path: path}
	headers := rows[headerRow]
	reg.Extra = extraColumns(headers)

	for _, cells := range rows[headerRow+1:] {
		row, ok := parseRow(headers, cells)
		if !ok {
			reg.Skipped++
			continue
		}
		row.Set(colBranch, types.Text(branch))
		reg.Rows = append(reg.Rows, row)
	}
	return reg, nil
}

// pickSheet returns the only sheet of the workbook, or "Sales Register" when
// there are several.
func pickSheet(f *excelize.File) (string, error) {
	sheets := f.GetSheetList()
	switch {
	case len(sheets) == 0:
		return "", ErrNoSalesSheet
	case len(sheets) == 1:
		return sheets[0], nil
	}
	for _, s := range sheets {
		if s == salesSheet {
			return s, nil
		}
	}
	return "", ErrNoSalesSheet
}

// findHeaderRow returns the index of the first row whose first cell is
// "Date", or -1.
func findHeaderRow(rows [][]string) int {
	for i, row := range rows {
		if len(row) > 0 && strings.TrimSpace(row[0]) == headerDate {
			return i
		}
	}
	return -1
}

// extraColumns returns the report names of headers that are not mapped,
// keeping their first-seen order. A ROUND OFF header adds "Round Off".
func extraColumns(headers []string) []string {
	var extra []string
	seen := make(map[string]bool)
	for _, h := range headers {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		name, mapped := headerMap[h]
		if mapped && h != headerRoundOff {
			continue
		}
		if !mapped {
			name = h
		}
		if !seen[name] {
			seen[name] = true
			extra = append(extra, name)
		}
	}
	return extra
}

// =============================================================================
// ROW PARSING
// =============================================================================

// parseRow maps one sheet row onto report columns. ok is false for rows that
// are not vouchers.
func parseRow(headers, cells []string) (types.Row, bool) {
	raw := make(map[string]string, len(headers))
	for i, h := range headers {
		h = strings.TrimSpace(h)
		if h == "" || i >= len(cells) {
			continue
		}
		raw[h] = cells[i]
	}

	dateText := strings.TrimSpace(raw[headerDate])
	if dateText == "" || strings.Contains(raw[headerParticulars], "Grand Total") {
		return types.Row{}, false
	}
	date, ok := parseDate(dateText)
	if !ok {
		return types.Row{}, false
	}

	// ROUND OFF wins over a separate Round Off column when it holds a value.
	if ro, ok := raw[headerRoundOff]; ok {
		if _, both := raw[colRoundOff]; both && strings.TrimSpace(ro) == "" {
			ro = raw[colRoundOff]
		}
		raw[colRoundOff] = ro
		delete(raw, headerRoundOff)
	}

	row := types.NewRow()
	for h, text := range raw {
		col, mapped := headerMap[h]
		if !mapped {
			col = h
		}
		if col == colDate {
			continue
		}
		row.Set(col, cellValue(col, text))
	}
	row.Set(colDate, types.Date(date))

	if row.Text(colType) == "" || row.Text(colInvoice) == "" {
		return types.Row{}, false
	}
	return row, true
}

// cellValue reads a raw cell. Numeric text becomes a number except in the
// identifier columns; anything else stays text.
func cellValue(col, text string) types.Value {
	text = strings.TrimSpace(text)
	if text == "" {
		return types.Null()
	}
	if !textColumns[col] {
		if d, err := decimal.NewFromString(text); err == nil {
			return types.Number(d)
		}
	}
	return types.Text(text)
}

// parseDate accepts an Excel serial date, Tally's timestamp text or any of
// the usual day-month-year forms.
func parseDate(text string) (time.Time, bool) {
	if serial, err := strconv.ParseFloat(text, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
	if t, err := time.Parse(tallyTimestamp, text); err == nil {
		return t, true
	}
	return normalize.ParseDate(text)
}
