package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/MrJamesThe3rd/cashbook/internal/ledger"
	"github.com/MrJamesThe3rd/cashbook/internal/locale"
)

type EntryLister interface {
	ListEntries(ctx context.Context, filter ledger.EntryFilter) ([]*ledger.Entry, error)
}

// Row is one exported entry. The headers are ones the statement importer
// recognises, so an export can be imported into another account.
type Row struct {
	Date     string `csv:"Datum"`
	Amount   string `csv:"Betrag"`
	Name     string `csv:"Name"`
	Purpose  string `csv:"Verwendungszweck"`
	Category string `csv:"Kategorie"`
	Kind     string `csv:"Art"`
}

// Service writes ledger entries as semicolon separated CSV.
type Service struct {
	entries EntryLister
}

func NewService(entries EntryLister) *Service {
	return &Service{entries: entries}
}

// Entries lists the entries an export would contain.
func (s *Service) Entries(ctx context.Context, filter ledger.EntryFilter) ([]*ledger.Entry, error) {
	entries, err := s.entries.ListEntries(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}

	return entries, nil
}

// Export writes the entries matching filter to w.
func (s *Service) Export(ctx context.Context, w io.Writer, filter ledger.EntryFilter) (int, error) {
	entries, err := s.Entries(ctx, filter)
	if err != nil {
		return 0, err
	}

	if err := WriteCSV(w, entries); err != nil {
		return 0, err
	}

	return len(entries), nil
}

func WriteCSV(w io.Writer, entries []*ledger.Entry) error {
	rows := make([]*Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, toRow(e))
	}

	csvWriter := csv.NewWriter(w)
	csvWriter.Comma = ';'

	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}

	return nil
}

func toRow(e *ledger.Entry) *Row {
	return &Row{
		Date:     e.Date.Format(locale.LayoutGerman),
		Amount:   FormatAmount(e),
		Name:     e.Usage,
		Purpose:  e.Usage,
		Category: e.Category,
		Kind:     string(e.Kind),
	}
}

// FormatAmount renders the amount in German notation, e.g. "-1234,50".
func FormatAmount(e *ledger.Entry) string {
	return strings.Replace(e.Amount.StringFixed(2), ".", ",", 1)
}

// Summary renders one line per entry followed by the raw and evaluation
// totals, for pasting into mails or terminals.
func Summary(entries []*ledger.Entry) string {
	var sb strings.Builder

	for _, e := range entries {
		fmt.Fprintf(&sb, "* %s | %s | %s € | %s\n",
			e.Date.Format("2006-01-02"), e.Usage, e.Amount.StringFixed(2), e.Category)
	}

	fmt.Fprintf(&sb, "Total: %s € (evaluation %s €)\n",
		ledger.Sum(entries, ledger.ViewRaw).StringFixed(2),
		ledger.Sum(entries, ledger.ViewEvaluation).StringFixed(2))

	return sb.String()
}
