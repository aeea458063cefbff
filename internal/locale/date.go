// Package locale parses the date and amount notations found in German and
// English bank exports.
package locale

import (
	"fmt"
	"strings"
	"time"
)

const (
	LayoutGerman      = "02.01.2006"
	LayoutISO         = "2006-01-02"
	LayoutGermanShort = "02.01.06"
)

// dateLayouts is tried in order; the first layout that parses wins.
var dateLayouts = []string{
	LayoutGerman,
	LayoutISO,
	LayoutGermanShort,
}

// ParseDate parses s with the first matching layout. Years below 100 are
// treated as two-digit years of this century.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)

	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}

		return normalizeYear(t, layout), nil
	}

	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func normalizeYear(t time.Time, layout string) time.Time {
	if t.Year() < 100 {
		return t.AddDate(2000, 0, 0)
	}

	// time.Parse puts "69".."99" into the 1900s.
	if layout == LayoutGermanShort && t.Year() < 2000 {
		return t.AddDate(100, 0, 0)
	}

	return t
}
