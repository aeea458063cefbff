package learning

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
)

var ErrNotFound = errors.New("rule not found")

// Rule maps a cleaned usage pattern to the category it was last seen with.
type Rule struct {
	Pattern      string `yaml:"pattern"`
	Category     string `yaml:"category"`
	ExampleUsage string `yaml:"exampleUsage"`
	Count        int    `yaml:"count"`
}

var (
	datePattern  = regexp.MustCompile(`\b\d{1,4}[./-]\d{1,2}[./-]\d{1,4}\b`)
	digitPattern = regexp.MustCompile(`\d{4,}`)
)

// Clean reduces a usage text to the pattern rules are keyed by: lower case,
// without dates, long digit runs or punctuation, single spaced.
func Clean(text string) string {
	s := strings.ToLower(text)
	s = datePattern.ReplaceAllString(s, " ")
	s = digitPattern.ReplaceAllString(s, " ")

	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}

		return ' '
	}, s)

	return strings.Join(strings.Fields(s), " ")
}
