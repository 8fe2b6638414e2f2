package merge

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nihasbabu/gst-modules/internal/normalize"
	"github.com/nihasbabu/gst-modules/internal/period"
	"github.com/nihasbabu/gst-modules/internal/types"
)

func monthRow(month, date string) types.Row {
	r := types.NewRow()
	r.Set("Reporting Month", types.Text(month))
	r.Set("Invoice date", normalize.Date(date))
	return r
}

func TestCollectionExtendAndOrder(t *testing.T) {
	c := NewCollection("B2B", "CDNR")
	c.Extend("B2B", []types.Row{monthRow("April", "")})
	c.Extend("DOC", []types.Row{monthRow("April", "")})
	c.Extend("B2B", []types.Row{monthRow("May", "")})

	assert.Equal(t, []string{"B2B", "CDNR", "DOC"}, c.Sections())
	assert.Equal(t, 2, c.Len("B2B"))
	assert.Equal(t, 0, c.Len("CDNR"))

	c.Set("B2B", nil)
	assert.Equal(t, 0, c.Len("B2B"))
}

func TestCheckNoData(t *testing.T) {
	c := NewCollection("B2B", "DOC")
	c.Extend("DOC", []types.Row{monthRow("April", "")})

	err := c.Check(false, "DOC")
	assert.True(t, errors.Is(err, ErrNoData))
	assert.Equal(t, "No data found in provided JSON files.", err.Error())

	assert.NoError(t, c.Check(true, "DOC"))
	assert.NoError(t, c.Check(false))

	c.Extend("B2B", []types.Row{monthRow("April", "")})
	assert.NoError(t, c.Check(false, "DOC"))
}

func TestSortByMonthThenDate(t *testing.T) {
	rows := []types.Row{
		monthRow("May", "01-05-2024"),
		monthRow(period.Unknown, "01-01-2024"),
		monthRow("April", ""),
		monthRow("April", "20-04-2024"),
		monthRow("April", "02-04-2024"),
	}
	SortByMonth(rows, "Reporting Month", func(a, b types.Row) bool {
		return normalize.DateLess(a.Get("Invoice date"), b.Get("Invoice date"))
	})

	var got []string
	for _, r := range rows {
		got = append(got, r.Text("Reporting Month")+" "+r.Get("Invoice date").String())
	}
	assert.Equal(t, []string{
		"April 2024-04-02",
		"April 2024-04-20",
		"April ",
		"May 2024-05-01",
		"Unknown 2024-01-01",
	}, got)
}

func TestMonths(t *testing.T) {
	var m Months
	for _, s := range []string{"June", period.Unknown, "April", "June", ""} {
		m.Add(s)
	}
	assert.Equal(t, []string{"April", "June"}, m.List())
}

func TestExclusions(t *testing.T) {
	e := Exclusions{}
	e.Add("042024", "b2b", " HSN ", "")

	assert.True(t, e.Excluded("042024", "B2B"))
	assert.True(t, e.Excluded("042024", "hsn"))
	assert.False(t, e.Excluded("052024", "B2B"))

	set := e.Set("042024", "DOC")
	assert.True(t, set.Has("b2b"))
	assert.True(t, set.Has("DOC"))
	assert.False(t, set.Has("CDNR"))
}
