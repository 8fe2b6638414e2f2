package sales

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/nihasbabu/gst-modules/internal/anomaly"
	"github.com/nihasbabu/gst-modules/internal/logging"
	"github.com/nihasbabu/gst-modules/internal/merge"
	"github.com/nihasbabu/gst-modules/internal/period"
	"github.com/nihasbabu/gst-modules/internal/report"
	"github.com/nihasbabu/gst-modules/internal/summary"
	"github.com/nihasbabu/gst-modules/internal/types"
)

// Sheet names.
const (
	SheetTotal        = "SALE-Total"
	SheetReceiverWise = "SALE-Total_sws"
	SheetB2B          = "SALE-B2B"
	SheetB2C          = "SALE-B2C"
	SheetSummaryTotal = "SALE-Summary-Total"
	SheetSummaryB2B   = "SALE-Summary-B2B"
	SheetSummaryB2C   = "SALE-Summary-B2C"
)

var titles = map[string]string{
	SheetTotal:        "Sales Register - Total",
	SheetReceiverWise: "Sales Register - Total - Receiver wise",
	SheetB2B:          "Sales Register - B2B only",
	SheetB2C:          "Sales Register - B2C only",
	SheetSummaryTotal: "Sales Register - Total - Summary",
	SheetSummaryB2B:   "Sales Register - B2B only - Summary",
	SheetSummaryB2C:   "Sales Register - B2C only - Summary",
}

// totalColumns are summed into the Total row of the register sheets.
var totalColumns = []string{
	colValue, colTaxable, colIGST, colCGST, colSGST, colCess, colAddlCost, colRoundOff,
}

var formats = map[string]string{
	colDate:     types.FormatDate,
	colValue:    types.FormatIndian,
	colTaxable:  types.FormatIndian,
	colIGST:     types.FormatIndian,
	colCGST:     types.FormatIndian,
	colSGST:     types.FormatIndian,
	colCess:     types.FormatIndian,
	colAddlCost: types.FormatIndian,
	colRoundOff: types.FormatIndian,
}

// summaryView totals vouchers per month. Each invoice number is counted once,
// in the first month it appears.
var summaryView = summary.View{
	MonthField:  summary.ColMonth,
	CountColumn: summary.ColRecords,
	Key:         colInvoice,
	GlobalKeys:  true,
	Sums:        summary.TaxSums(colTaxable, colCess),
}

// File is one register export and the branch its rows belong to.
type File struct {
	Path string

	// Branch defaults to the file's base name.
	Branch string
}

// Input lists the register exports of one run.
type Input struct {
	Files []File
}

// Processor builds sales register report books.
type Processor struct {
	log logging.Logger
}

// NewProcessor creates a Processor. A nil logger discards output.
func NewProcessor(log logging.Logger) *Processor {
	if log == nil {
		log = logging.Nop()
	}
	return &Processor{log: log}
}

// Process reads every export and lays the vouchers out as the total,
// receiver-wise, B2B and B2C registers plus their monthly summaries. Every
// sheet is written, even when empty.
//
// merge.ErrNoData is returned when no export could be read.
func (p *Processor) Process(in Input) (*report.Book, error) {
	book := &report.Book{}
	var all []types.Row
	var extra []string
	seenExtra := make(map[string]bool)

	for _, file := range in.Files {
		branch := file.Branch
		if branch == "" {
			branch = strings.TrimSuffix(filepath.Base(file.Path), filepath.Ext(file.Path))
		}
		reg, err := Read(file.Path, branch)
		if err != nil {
			p.log.Error("Failed to read sales register", "file", file.Path, "error", err)
			book.Findings = append(book.Findings, anomaly.FileFailed(file.Path, err))
			continue
		}
		book.Files++
		for _, col := range reg.Extra {
			if !seenExtra[col] {
				seenExtra[col] = true
				extra = append(extra, col)
			}
		}
		all = append(all, reg.Rows...)
		p.log.Debug("Read sales register", "file", file.Path, "branch", branch,
			"rows", len(reg.Rows), "skipped", reg.Skipped)
	}
	if book.Files == 0 {
		return book, merge.ErrNoData
	}
	book.Rows = len(all)

	sortByDate(all)
	b2b := byType(all, "B2B")
	b2c := byType(all, "B2C")
	columns := append(append([]string(nil), standardColumns...), extra...)

	book.Sections = append(book.Sections,
		register(SheetTotal, columns, all),
		register(SheetReceiverWise, columns, receiverWise(all)),
		register(SheetB2B, columns, b2b),
		register(SheetB2C, columns, b2c),
		monthly(SheetSummaryTotal, all),
		monthly(SheetSummaryB2B, b2b),
		monthly(SheetSummaryB2C, b2c),
	)
	book.Months = months(all)

	p.log.Info("Sales register processed", "files", book.Files, "rows", book.Rows,
		"b2b", len(b2b), "b2c", len(b2c))
	return book, nil
}

// =============================================================================
// LAYOUT
// =============================================================================

func register(sheet string, columns []string, rows []types.Row) types.Section {
	out := append([]types.Row(nil), rows...)
	var sums []string
	for _, c := range totalColumns {
		if contains(columns, c) {
			sums = append(sums, c)
		}
	}
	if len(out) > 0 {
		out = append(out, summary.TotalRow(rows, columns[0], sums))
	}
	return types.Section{
		Schema: types.Schema{
			Sheet:   sheet,
			Title:   titles[sheet],
			Columns: types.Cols(columns, formats),
			Numeric: sums,
			Always:  true,
		},
		Rows: out,
	}
}

func monthly(sheet string, rows []types.Row) types.Section {
	projected := make([]types.Row, 0, len(rows))
	for _, r := range rows {
		t, ok := r.Get(colDate).Time()
		if !ok {
			continue
		}
		m := r.Clone()
		m.Set(summary.ColMonth, types.Text(period.FromDate(t)))
		projected = append(projected, m)
	}
	out := summary.Aggregate(summaryView, projected, nil)
	cols := summaryView.Columns()
	if len(out) > 0 {
		out = append(out, summary.TotalRow(out, summary.ColMonth, cols[1:]))
	}
	return types.Section{
		Schema: types.Schema{
			Sheet:   sheet,
			Title:   titles[sheet],
			Columns: types.Cols(cols, formats),
			Numeric: cols[1:],
			Always:  true,
		},
		Rows: out,
	}
}

// =============================================================================
// ORDERING
// =============================================================================

func sortByDate(rows []types.Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		ti, _ := rows[i].Get(colDate).Time()
		tj, _ := rows[j].Get(colDate).Time()
		return ti.Before(tj)
	})
}

func byType(rows []types.Row, kind string) []types.Row {
	var out []types.Row
	for _, r := range rows {
		if r.Text(colType) == kind {
			out = append(out, r)
		}
	}
	return out
}

// walkIn reports whether a receiver is a cash sale, a cancelled voucher or
// blank. Those go after named receivers.
func walkIn(receiver string) bool {
	switch strings.ToLower(receiver) {
	case "", "cash", "(cancelled )":
		return true
	}
	return false
}

// receiverWise returns rows ordered by receiver name, then date, with walk-in
// receivers last.
func receiverWise(rows []types.Row) []types.Row {
	out := append([]types.Row(nil), rows...)
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := out[i].Text(colReceiver), out[j].Text(colReceiver)
		if wi, wj := walkIn(ri), walkIn(rj); wi != wj {
			return wj
		}
		if ri != rj {
			return ri < rj
		}
		ti, _ := out[i].Get(colDate).Time()
		tj, _ := out[j].Get(colDate).Time()
		return ti.Before(tj)
	})
	return out
}

func months(rows []types.Row) []string {
	var out []string
	for _, r := range rows {
		if t, ok := r.Get(colDate).Time(); ok {
			out = append(out, period.FromDate(t))
		}
	}
	return period.Ordered(out)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
