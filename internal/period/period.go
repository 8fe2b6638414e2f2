// =============================================================================
// GST Returns Reporter - Period Resolver
// =============================================================================
//
// Return periods are six-digit MMYYYY codes ("042024"). Reports are keyed by
// the English month name and ordered by the Indian financial year, which runs
// April to March. Every sort and every aggregation in the module goes through
// the helpers in this file so the April-first order is defined once.
//
// =============================================================================

package period

import (
	"time"
)

// Unknown is the label used for a period code that cannot be resolved. It
// always sorts after March.
const Unknown = "Unknown"

// Months lists the month names in financial-year order.
var Months = []string{
	"April", "May", "June", "July", "August", "September",
	"October", "November", "December", "January", "February", "March",
}

var monthByCode = map[string]string{
	"01": "January", "02": "February", "03": "March", "04": "April",
	"05": "May", "06": "June", "07": "July", "08": "August",
	"09": "September", "10": "October", "11": "November", "12": "December",
}

var indexByMonth = func() map[string]int {
	m := make(map[string]int, len(Months))
	for i, name := range Months {
		m[name] = i
	}
	return m
}()

// Resolve maps a return-period code to its month name. The code must be at
// least six characters long; anything shorter, or with an unknown month
// prefix, yields Unknown.
func Resolve(code string) string {
	if len(code) < 6 {
		return Unknown
	}
	return byPrefix(code)
}

// ResolveLenient is Resolve without the length requirement beyond the two
// month digits. GSTR-2B and GSTR-3B exports are resolved this way.
func ResolveLenient(code string) string {
	if len(code) < 2 {
		return Unknown
	}
	return byPrefix(code)
}

func byPrefix(code string) string {
	if name, ok := monthByCode[code[:2]]; ok {
		return name
	}
	return Unknown
}

// Index returns the financial-year position of a month name: April is 0 and
// March is 11. Unrecognised labels return 12 so they sort last.
func Index(month string) int {
	if i, ok := indexByMonth[month]; ok {
		return i
	}
	return len(Months)
}

// Known reports whether month is one of the twelve month names.
func Known(month string) bool {
	_, ok := indexByMonth[month]
	return ok
}

// Less orders two month labels by financial year.
func Less(a, b string) bool {
	return Index(a) < Index(b)
}

// FromDate returns the month name of t.
func FromDate(t time.Time) string {
	return t.Month().String()
}

// FiscalYear returns the calendar year in which the financial year containing
// t started.
func FiscalYear(t time.Time) int {
	if t.Month() >= time.April {
		return t.Year()
	}
	return t.Year() - 1
}

// Ordered returns the given month labels in financial-year order with
// duplicates removed. Unknown labels are kept, after March, in first-seen
// order.
func Ordered(months []string) []string {
	seen := make(map[string]bool, len(months))
	var known [12]bool
	var unknown []string
	for _, m := range months {
		if seen[m] {
			continue
		}
		seen[m] = true
		if i, ok := indexByMonth[m]; ok {
			known[i] = true
		} else {
			unknown = append(unknown, m)
		}
	}
	out := make([]string, 0, len(seen))
	for i, ok := range known {
		if ok {
			out = append(out, Months[i])
		}
	}
	return append(out, unknown...)
}
