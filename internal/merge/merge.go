// =============================================================================
// GST Returns Reporter - Multi-File Merge
// =============================================================================
//
// A processing run reads any number of files and extends one combined row
// collection per section. This module holds that collection together with
// the bookkeeping around it: which months were processed, which sections a
// filer excluded for a period, and the run-wide "nothing extracted" check.
//
// =============================================================================

package merge

import (
	"errors"
	"sort"
	"strings"

	"github.com/nihasbabu/gst-modules/internal/period"
	"github.com/nihasbabu/gst-modules/internal/types"
)

// ErrNoData is returned when a run extracted nothing.
var ErrNoData = errors.New("No data found in provided JSON files.")

// =============================================================================
// COLLECTION
// =============================================================================

// Collection holds the combined rows of every section for one run.
type Collection struct {
	order []string
	rows  map[string][]types.Row
}

// NewCollection creates a collection with the given sections in display
// order.
func NewCollection(sections ...string) *Collection {
	c := &Collection{rows: make(map[string][]types.Row, len(sections))}
	for _, s := range sections {
		c.ensure(s)
	}
	return c
}

func (c *Collection) ensure(section string) {
	if _, ok := c.rows[section]; !ok {
		c.order = append(c.order, section)
		c.rows[section] = nil
	}
}

// Extend appends rows to a section.
func (c *Collection) Extend(section string, rows []types.Row) {
	c.ensure(section)
	c.rows[section] = append(c.rows[section], rows...)
}

// Set replaces the rows of a section.
func (c *Collection) Set(section string, rows []types.Row) {
	c.ensure(section)
	c.rows[section] = rows
}

// Rows returns the rows of a section.
func (c *Collection) Rows(section string) []types.Row {
	return c.rows[section]
}

// Len returns the number of rows in a section.
func (c *Collection) Len(section string) int {
	return len(c.rows[section])
}

// Sections returns the section names in display order.
func (c *Collection) Sections() []string {
	return append([]string(nil), c.order...)
}

// HasData reports whether any section other than those skipped holds rows.
func (c *Collection) HasData(skip ...string) bool {
	skipped := make(map[string]bool, len(skip))
	for _, s := range skip {
		skipped[s] = true
	}
	for _, s := range c.order {
		if !skipped[s] && len(c.rows[s]) > 0 {
			return true
		}
	}
	return false
}

// Check returns ErrNoData when the collection is empty and warnings are not
// ignored.
func (c *Collection) Check(ignoreWarnings bool, skip ...string) error {
	if ignoreWarnings || c.HasData(skip...) {
		return nil
	}
	return ErrNoData
}

// Sort orders a section by financial-year month, then by then (which may be
// nil). The sort is stable.
func (c *Collection) Sort(section, monthField string, then func(a, b types.Row) bool) {
	SortByMonth(c.rows[section], monthField, then)
}

// SortByMonth stably orders rows by the financial-year position of their
// month column, then by then.
func SortByMonth(rows []types.Row, monthField string, then func(a, b types.Row) bool) {
	sort.SliceStable(rows, func(i, j int) bool {
		mi := period.Index(rows[i].Text(monthField))
		mj := period.Index(rows[j].Text(monthField))
		if mi != mj {
			return mi < mj
		}
		if then == nil {
			return false
		}
		return then(rows[i], rows[j])
	})
}

// =============================================================================
// PROCESSED MONTHS
// =============================================================================

// Months records the months a run processed, ignoring Unknown.
type Months struct {
	seen  map[string]bool
	order []string
}

// Add records a month.
func (m *Months) Add(month string) {
	if month == "" || month == period.Unknown {
		return
	}
	if m.seen == nil {
		m.seen = make(map[string]bool)
	}
	if !m.seen[month] {
		m.seen[month] = true
		m.order = append(m.order, month)
	}
}

// List returns the recorded months in financial-year order.
func (m *Months) List() []string {
	return period.Ordered(m.order)
}

// =============================================================================
// EXCLUSIONS
// =============================================================================

// Exclusions maps a return-period code (MMYYYY) to the section tags the filer
// declared not applicable for that period.
type Exclusions map[string][]string

// Add records tags for a period. Tags are upper-cased.
func (e Exclusions) Add(code string, tags ...string) {
	for _, t := range tags {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		e[code] = append(e[code], t)
	}
}

// Excluded reports whether tag is excluded for code.
func (e Exclusions) Excluded(code, tag string) bool {
	for _, t := range e[code] {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// Set returns the excluded tags of one period as a lookup set, merged with
// extra.
func (e Exclusions) Set(code string, extra ...string) TagSet {
	set := make(TagSet)
	for _, t := range e[code] {
		set[strings.ToUpper(t)] = true
	}
	for _, t := range extra {
		set[strings.ToUpper(strings.TrimSpace(t))] = true
	}
	return set
}

// TagSet is a set of excluded section tags.
type TagSet map[string]bool

// Has reports whether tag is in the set.
func (s TagSet) Has(tag string) bool {
	return s[strings.ToUpper(tag)]
}
