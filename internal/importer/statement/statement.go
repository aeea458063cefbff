// Package statement tokenizes bank statement CSV exports. It detects the
// delimiter, maps localized headers and parses each row into typed values.
package statement

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	enc "github.com/MrJamesThe3rd/cashbook/internal/encoding"
	"github.com/MrJamesThe3rd/cashbook/internal/locale"
)

var errTooFewColumns = errors.New("too few columns")

// Row is one parsed statement line with text fields already repaired.
type Row struct {
	Line     int
	Date     time.Time
	Amount   decimal.Decimal
	Name     string
	Purpose  string
	Category string
}

type Statement struct {
	Delimiter rune
	Columns   Columns
	Rows      []Row
	Skipped   []*RowParseError
}

type line struct {
	num  int
	text string
}

// Parse reads a whole statement. Broken rows are collected in Skipped; only
// an unreadable file or a header without date or amount fails the call.
func Parse(r io.Reader) (*Statement, error) {
	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, &ImportError{Reason: "detect encoding", Err: err}
	}

	data, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, &ImportError{Reason: "read input", Err: err}
	}

	lines := splitLines(string(data))
	if len(lines) == 0 {
		return nil, &ImportError{Reason: "empty statement"}
	}

	delim := DetectDelimiter(lines[0].text)

	header, err := splitRow(lines[0].text, delim)
	if err != nil {
		return nil, &ImportError{Reason: "read header", Err: err}
	}

	cols := mapHeader(header)

	switch {
	case cols.Date < 0:
		return nil, &ImportError{Reason: "missing date column"}
	case cols.Amount < 0:
		return nil, &ImportError{Reason: "missing amount column"}
	}

	st := &Statement{Delimiter: delim, Columns: cols}

	for _, l := range lines[1:] {
		row, perr := parseRow(l, delim, cols)
		if perr != nil {
			st.Skipped = append(st.Skipped, perr)
			continue
		}

		st.Rows = append(st.Rows, row)
	}

	return st, nil
}

// DetectDelimiter picks ',' or ';' by counting them in the header line.
// Ties go to ','.
func DetectDelimiter(header string) rune {
	if strings.Count(header, ";") > strings.Count(header, ",") {
		return ';'
	}

	return ','
}

func splitLines(text string) []line {
	var lines []line

	for i, raw := range strings.Split(text, "\n") {
		s := strings.TrimSpace(raw)
		if s == "" {
			continue
		}

		lines = append(lines, line{num: i + 1, text: s})
	}

	return lines
}

// splitRow splits one line on delim, honouring quotes.
func splitRow(text string, delim rune) ([]string, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = delim
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	cells, err := reader.Read()
	if err != nil {
		return nil, err
	}

	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}

	return cells, nil
}

func parseRow(l line, delim rune, cols Columns) (Row, *RowParseError) {
	cells, err := splitRow(l.text, delim)
	if err != nil {
		return Row{}, &RowParseError{Line: l.num, Err: err}
	}

	if len(cells) <= cols.required() {
		return Row{}, &RowParseError{Line: l.num, Err: fmt.Errorf("%w: got %d", errTooFewColumns, len(cells))}
	}

	dateStr := cells[cols.Date]

	date, err := locale.ParseDate(dateStr)
	if err != nil {
		return Row{}, &RowParseError{Line: l.num, Field: string(FieldDate), Value: dateStr, Err: err}
	}

	amountStr := cells[cols.Amount]

	amount, err := locale.ParseAmount(amountStr)
	if err != nil {
		return Row{}, &RowParseError{Line: l.num, Field: string(FieldAmount), Value: amountStr, Err: err}
	}

	if amount.IsZero() {
		return Row{}, &RowParseError{Line: l.num, Field: string(FieldAmount), Value: amountStr, Err: errors.New("zero amount")}
	}

	if !amount.Equal(amount.Round(2)) {
		return Row{}, &RowParseError{Line: l.num, Field: string(FieldAmount), Value: amountStr, Err: errors.New("more than two decimal places")}
	}

	return Row{
		Line:     l.num,
		Date:     date,
		Amount:   amount,
		Name:     enc.Repair(cell(cells, cols.Name)),
		Purpose:  enc.Repair(cell(cells, cols.Purpose)),
		Category: enc.Repair(cell(cells, cols.Category)),
	}, nil
}

// cell safely gets a cell value, "" for absent columns.
func cell(cells []string, idx int) string {
	if idx < 0 || idx >= len(cells) {
		return ""
	}

	return cells[idx]
}
