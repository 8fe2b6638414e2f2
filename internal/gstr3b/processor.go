package gstr3b

import (
	"github.com/nihasbabu/gst-modules/internal/anomaly"
	"github.com/nihasbabu/gst-modules/internal/logging"
	"github.com/nihasbabu/gst-modules/internal/merge"
	"github.com/nihasbabu/gst-modules/internal/period"
	"github.com/nihasbabu/gst-modules/internal/report"
	"github.com/nihasbabu/gst-modules/internal/source"
	"github.com/nihasbabu/gst-modules/internal/types"
)

// Input lists the GSTR-3B returns of one run.
type Input struct {
	Files  []string
	Source source.Options
}

// Processor builds GSTR-3B report books.
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

// Process extracts every table of every return and orders the rows of each
// table by tax period.
//
// merge.ErrNoData is returned when no return could be read. A return that
// reads but holds only zeros still yields a book; its sheets are simply not
// written.
func (p *Processor) Process(in Input) (*report.Book, error) {
	book := &report.Book{}
	keys := Keys()
	coll := merge.NewCollection(keys...)
	var periods []string

	for _, path := range in.Files {
		doc, err := source.Load(path, in.Source)
		if err != nil {
			p.log.Error("Failed to load file", "file", path, "error", err)
			book.Findings = append(book.Findings, anomaly.FileFailed(path, err))
			continue
		}
		book.Files++

		ret := Parse(doc)
		for key, rows := range ret.Tables() {
			coll.Extend(key, rows)
		}
		periods = append(periods, ret.TaxPeriod)
		p.log.Debug("Extracted GSTR-3B return", "file", ret.Name, "tax_period", ret.TaxPeriod)
	}

	for _, key := range keys {
		book.Rows += coll.Len(key)
	}
	if err := coll.Check(false); err != nil {
		return book, err
	}

	book.Months = period.Ordered(periods)
	for _, key := range keys {
		coll.Sort(key, colPeriod, nil)
		book.Sections = append(book.Sections, types.Section{Schema: SchemaOf(key), Rows: coll.Rows(key)})
	}

	p.log.Info("GSTR-3B processed", "files", book.Files, "periods", len(book.Months))
	return book, nil
}
