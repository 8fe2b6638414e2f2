// =============================================================================
// GST Returns Reporter - GSTR-1 Processor
// =============================================================================
//
// This module combines any number of GSTR-1 exports into one report book.
//
// PROCESSING PIPELINE:
//   1. Small-tier files: load, extract every section the filer did not
//      exclude for that period, collect the documents for HSN
//   2. Flag natural keys repeated anywhere in a keyed section
//   3. Large-tier files: append their B2B rows (already flagged for rates)
//   4. Aggregate HSN across all documents
//   5. Sort each section by financial-year month, then by its date column
//   6. Build detail, DOC1-12, supplier-wise and summary sections
//
// ERROR HANDLING:
//   - A file that cannot be read is logged, recorded as a finding and skipped
//   - ErrNoData is returned when nothing was extracted, unless warnings are
//     ignored
//
// =============================================================================

package gstr1

import (
	"fmt"
	"sort"

	"github.com/nihasbabu/gst-modules/internal/anomaly"
	"github.com/nihasbabu/gst-modules/internal/logging"
	"github.com/nihasbabu/gst-modules/internal/merge"
	"github.com/nihasbabu/gst-modules/internal/normalize"
	"github.com/nihasbabu/gst-modules/internal/report"
	"github.com/nihasbabu/gst-modules/internal/source"
	"github.com/nihasbabu/gst-modules/internal/summary"
	"github.com/nihasbabu/gst-modules/internal/types"
	"github.com/nihasbabu/gst-modules/pkg/utils"
)

// Input lists the files and options of one GSTR-1 run.
type Input struct {
	// Small are small-tier exports (.json or .zip).
	Small []string

	// Large are large-tier B2B downloads.
	Large []string

	// Exclusions are sections declared not applicable, by period code. Tags
	// found in small-tier file names are added per file.
	Exclusions merge.Exclusions

	// IgnoreWarnings keeps all-zero sections and suppresses ErrNoData.
	IgnoreWarnings bool

	// Source controls how input documents are decoded.
	Source source.Options
}

// Processor builds GSTR-1 report books.
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

// Process runs the whole pipeline over in.
//
// RETURNS:
//   - The report book. It is returned with the findings gathered so far
//     even when err is ErrNoData.
//   - merge.ErrNoData when no section holds rows.
func (p *Processor) Process(in Input) (*report.Book, error) {
	book := &report.Book{IgnoreWarnings: in.IgnoreWarnings}
	coll := merge.NewCollection(Sections...)
	var months merge.Months
	var hsnReturns []*Return

	for _, path := range in.Small {
		doc, err := source.Load(path, in.Source)
		if err != nil {
			p.fail(book, path, err)
			continue
		}
		book.Files++

		ret := Parse(doc)
		code, tags := utils.ParseReturnFileName(path)
		if code == "" {
			code = ret.Code
		}
		excluded := in.Exclusions.Set(code, tags...)
		months.Add(ret.PeriodMonth())

		for _, sec := range Sections {
			if sec == SectionHSN || excluded.Has(tagOf(sec)) {
				continue
			}
			coll.Extend(sec, ret.Extract(sec))
		}
		if !excluded.Has(SectionHSN) {
			hsnReturns = append(hsnReturns, ret)
		}
		p.log.Debug("Extracted GSTR-1 return", "file", ret.Name, "period", code, "month", ret.Month)
	}

	for _, sec := range Sections {
		if key := schemas[sec].Key; key != "" {
			anomaly.FlagDuplicates(coll.Rows(sec), key)
		}
	}

	for _, path := range in.Large {
		doc, err := source.Load(path, in.Source)
		if err != nil {
			p.fail(book, path, err)
			continue
		}
		book.Files++

		large := ParseLarge(doc, utils.ParseLargeFileName(path))
		if in.Exclusions.Excluded(large.Code, tagOf(SectionB2B)) {
			p.log.Info("Skipping large-tier B2B file, section excluded", "file", large.Name, "period", large.Code)
			continue
		}
		months.Add(large.Month)
		rows := large.B2B()
		coll.Extend(SectionB2B, rows)
		p.log.Debug("Extracted large-tier B2B file", "file", large.Name, "period", large.Code, "rows", len(rows))
	}

	coll.Set(SectionHSN, HSN(hsnReturns))
	for _, sec := range Sections {
		book.Rows += coll.Len(sec)
	}

	if err := coll.Check(in.IgnoreWarnings, SectionDOC); err != nil {
		return book, err
	}

	sortSections(coll)
	book.Months = months.List()
	book.Sections = buildSections(coll, book.Months)

	for _, sec := range Sections {
		schema := SchemaOf(sec)
		book.Findings = append(book.Findings,
			anomaly.Review(schema.Sheet, coll.Rows(sec), schema.Key, monthFieldOf(sec))...)
	}

	p.log.Info("GSTR-1 processed",
		"files", book.Files,
		"rows", book.Rows,
		"months", len(book.Months),
		"findings", len(book.Findings))
	return book, nil
}

func (p *Processor) fail(book *report.Book, path string, err error) {
	p.log.Error("Failed to load file", "file", path, "error", err)
	book.Findings = append(book.Findings, anomaly.FileFailed(path, err))
}

// monthFieldOf returns the column holding the reporting month of a section.
func monthFieldOf(section string) string {
	if section == SectionAT || section == SectionTXPD {
		return colMonth
	}
	return colReportingMonth
}

// =============================================================================
// SORTING
// =============================================================================

// sortDates maps a section to the date column that orders it within a month.
var sortDates = map[string]string{
	SectionB2B:   colInvoiceDate,
	SectionCDNR:  colNoteDate,
	SectionEXP:   colInvoiceDate,
	SectionB2BA:  colB2BADate,
	SectionCDNUR: colCDNURDate,
}

func byDate(col string) func(a, b types.Row) bool {
	return func(a, b types.Row) bool {
		return normalize.DateLess(a.Get(col), b.Get(col))
	}
}

func sortSections(coll *merge.Collection) {
	for _, sec := range Sections {
		var then func(a, b types.Row) bool
		switch {
		case sortDates[sec] != "":
			then = byDate(sortDates[sec])
		case sec == SectionHSN:
			then = func(a, b types.Row) bool { return a.Text(colHSNCode) < b.Text(colHSNCode) }
		}
		coll.Sort(sec, monthFieldOf(sec), then)
	}
}

// =============================================================================
// SECTION ASSEMBLY
// =============================================================================

func buildSections(coll *merge.Collection, months []string) []types.Section {
	var out []types.Section
	for _, sec := range Sections {
		if sec == SectionDOC {
			continue
		}
		out = append(out, types.Section{Schema: SchemaOf(sec), Rows: coll.Rows(sec)})
	}

	out = append(out, documentSections(coll.Rows(SectionDOC))...)
	out = append(out,
		supplierWise(SectionCDNR, coll.Rows(SectionCDNR)),
		supplierWise(SectionB2B, coll.Rows(SectionB2B)))

	for _, spec := range summarySpecs {
		out = append(out, types.Section{
			Schema: spec.schema(),
			Rows:   summary.Aggregate(spec.view, coll.Rows(spec.section), months),
		})
	}
	return out
}

// documentSections splits the document register into one section per
// statutory document type.
func documentSections(rows []types.Row) []types.Section {
	base := SchemaOf(SectionDOC)
	out := make([]types.Section, 0, len(docSheets))
	for _, ds := range docSheets {
		var matched []types.Row
		for _, r := range rows {
			if r.Text(colDocType) == ds.docType {
				matched = append(matched, r)
			}
		}
		out = append(out, types.Section{
			Schema: base.WithSheet(sheetPrefix+ds.suffix, ds.title),
			Rows:   matched,
		})
	}
	return out
}

// supplierWise returns a copy of a section ordered by receiver name. Rows
// without a name sort by GSTIN instead, after named rows with the same text.
func supplierWise(section string, rows []types.Row) types.Section {
	sorted := append([]types.Row(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool {
		ai, bi := receiverKey(sorted[i])
		aj, bj := receiverKey(sorted[j])
		if ai != aj {
			return ai < aj
		}
		return bi < bj
	})

	schema := SchemaOf(section)
	schema.Sheet = fmt.Sprintf("%s%s_sws", sheetPrefix, section)
	schema.Title = swsTitles[section]
	return types.Section{Schema: schema, Rows: sorted}
}

func receiverKey(r types.Row) (string, string) {
	name := r.Text(colReceiverName)
	if name != "" {
		return name, ""
	}
	gstin := r.Text(colRecipient)
	return gstin, gstin
}
