package utils

import (
	"path/filepath"
	"regexp"
	"strings"
)

// =============================================================================
// RETURN FILE NAMES
// =============================================================================
//
// Small-tier GSTR-1 downloads are saved as
//
//   GSTR1_<MMYYYY>[_...][_excluding_<TAG>_<TAG>...].json
//
// The period comes from the name and the trailing tags list the sections the
// filer declared not applicable for that period.

var (
	returnPeriodPattern = regexp.MustCompile(`GSTR1_(\d{6})`)
	exclusionPattern    = regexp.MustCompile(`excluding_([A-Z0-9_]+)`)
	trailingPeriod      = regexp.MustCompile(`(\d{6})$`)
)

// ParseReturnFileName extracts the period code and the excluded section tags
// from a small-tier GSTR-1 file name. Either may be empty.
func ParseReturnFileName(path string) (code string, excluded []string) {
	base := filepath.Base(path)
	if m := returnPeriodPattern.FindStringSubmatch(base); m != nil {
		code = m[1]
	}
	if m := exclusionPattern.FindStringSubmatch(base); m != nil {
		for _, tag := range strings.Split(m[1], "_") {
			if tag != "" {
				excluded = append(excluded, tag)
			}
		}
	}
	return code, excluded
}

// ParseLargeFileName extracts the period code of a large-tier download: the
// first underscore-separated part made of six digits, else six digits at the
// end of the name. It returns "" when neither is found.
func ParseLargeFileName(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	for _, part := range strings.Split(base, "_") {
		if len(part) == 6 && isDigits(part) {
			return part
		}
	}
	if m := trailingPeriod.FindStringSubmatch(base); m != nil {
		return m[1]
	}
	return ""
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
