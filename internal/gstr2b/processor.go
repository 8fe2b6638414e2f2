package gstr2b

import (
	"github.com/nihasbabu/gst-modules/internal/anomaly"
	"github.com/nihasbabu/gst-modules/internal/logging"
	"github.com/nihasbabu/gst-modules/internal/merge"
	"github.com/nihasbabu/gst-modules/internal/period"
	"github.com/nihasbabu/gst-modules/internal/report"
	"github.com/nihasbabu/gst-modules/internal/source"
	"github.com/nihasbabu/gst-modules/internal/summary"
	"github.com/nihasbabu/gst-modules/internal/types"
)

// Input lists the GSTR-2B statements of one run.
type Input struct {
	Files  []string
	Source source.Options
}

// Processor builds GSTR-2B report books.
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

// Process extracts every statement, orders the supplier sections by the
// supplier's return period and appends the ITC summaries.
//
// Sheets are only written when they hold a non-zero amount. merge.ErrNoData
// is returned when no statement yielded a row.
func (p *Processor) Process(in Input) (*report.Book, error) {
	book := &report.Book{}
	coll := merge.NewCollection(Sections...)

	for _, path := range in.Files {
		doc, err := source.Load(path, in.Source)
		if err != nil {
			p.log.Error("Failed to load file", "file", path, "error", err)
			book.Findings = append(book.Findings, anomaly.FileFailed(path, err))
			continue
		}
		book.Files++

		st := Parse(doc)
		for _, sec := range Sections {
			coll.Extend(sec, st.Extract(sec))
		}
		p.log.Debug("Extracted GSTR-2B statement", "file", st.Name, "filing_period", st.FilingPeriod)
	}

	for _, sec := range Sections {
		book.Rows += coll.Len(sec)
	}
	if err := coll.Check(false); err != nil {
		return book, err
	}

	for _, sec := range Sections {
		if sec != SectionIMPG {
			coll.Sort(sec, colPeriod, nil)
		}
	}

	periods := filingPeriods(coll)
	book.Months = periods
	for _, sec := range Sections {
		book.Sections = append(book.Sections, types.Section{Schema: SchemaOf(sec), Rows: coll.Rows(sec)})
	}
	for _, spec := range summarySpecs {
		book.Sections = append(book.Sections, types.Section{
			Schema: spec.schema(),
			Rows:   summary.Aggregate(spec.view(), coll.Rows(spec.section), periods),
		})
	}

	p.log.Info("GSTR-2B processed", "files", book.Files, "rows", book.Rows, "periods", len(periods))
	return book, nil
}

// filingPeriods returns every filing period present in any section, in
// financial-year order.
func filingPeriods(coll *merge.Collection) []string {
	seen := make(map[string]bool)
	var out []string
	for _, sec := range coll.Sections() {
		for _, r := range coll.Rows(sec) {
			fp := r.Text(colFilingPeriod)
			if fp != "" && !seen[fp] {
				seen[fp] = true
				out = append(out, fp)
			}
		}
	}
	return period.Ordered(out)
}
