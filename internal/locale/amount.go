package locale

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// 1.234,56 | 1234,56 | -12,5 | 1.234
	germanAmount = regexp.MustCompile(`^[+-]?(\d{1,3}(\.\d{3})+|\d+)(,\d+)?$`)
	// 1,234.56 | 1234.56 | -12.5 | 1,234
	englishAmount = regexp.MustCompile(`^[+-]?(\d{1,3}(,\d{3})+|\d+)(\.\d+)?$`)
)

var currencyMarkers = strings.NewReplacer("€", "", "EUR", "", "eur", "", " ", "", "\u00a0", "", "\t", "")

// ParseAmount parses a decimal amount written in German notation (comma
// decimal separator, dot grouping) or, failing that, English notation.
func ParseAmount(s string) (decimal.Decimal, error) {
	clean := strings.TrimPrefix(currencyMarkers.Replace(s), "+")
	if clean == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}

	if d, ok := parseGerman(clean); ok {
		return d, nil
	}

	if d, ok := parseEnglish(clean); ok {
		return d, nil
	}

	return decimal.Zero, fmt.Errorf("unrecognized amount %q", s)
}

func parseGerman(s string) (decimal.Decimal, bool) {
	if !germanAmount.MatchString(s) {
		return decimal.Zero, false
	}

	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")

	d, err := decimal.NewFromString(s)

	return d, err == nil
}

func parseEnglish(s string) (decimal.Decimal, bool) {
	if !englishAmount.MatchString(s) {
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))

	return d, err == nil
}
