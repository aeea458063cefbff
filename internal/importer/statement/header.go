package statement

import (
	"strings"

	enc "github.com/MrJamesThe3rd/cashbook/internal/encoding"
)

// Field is a statement column the importer understands.
type Field string

const (
	FieldDate     Field = "date"
	FieldAmount   Field = "amount"
	FieldCategory Field = "category"
	FieldName     Field = "name"
	FieldPurpose  Field = "purpose"
)

// synonyms lists the header spellings of each field, lower case.
var synonyms = map[Field][]string{
	FieldDate: {
		"date", "booking-date", "value-date",
		"datum", "buchungstag", "buchungsdatum", "valuta", "wertstellung",
	},
	FieldAmount: {
		"amount", "amount_eur", "sum",
		"betrag", "betrag (eur)", "summe",
	},
	FieldCategory: {
		"main-category", "category",
		"hauptkategorie", "kategorie",
	},
	FieldName: {
		"name", "payee", "payer",
		"empfänger", "auftraggeber", "zahlungspflichtiger", "beguenstigter/zahlungspflichtiger",
	},
	FieldPurpose: {
		"purpose", "reference", "description",
		"zweck", "verwendungszweck", "referenz", "beschreibung",
	},
}

// Columns holds the index of each field in a row, -1 when absent.
type Columns struct {
	Date     int
	Amount   int
	Category int
	Name     int
	Purpose  int
}

// required is the highest index a row must reach to be parseable.
func (c Columns) required() int {
	return max(c.Date, c.Amount)
}

// mapHeader assigns header cells to fields. The first matching cell wins.
// Cells are repaired first so mis-decoded umlauts still match.
func mapHeader(cells []string) Columns {
	cols := Columns{Date: -1, Amount: -1, Category: -1, Name: -1, Purpose: -1}

	for i, cell := range cells {
		name := strings.ToLower(enc.Repair(strings.TrimSpace(cell)))

		switch {
		case cols.Date < 0 && matches(FieldDate, name):
			cols.Date = i
		case cols.Amount < 0 && matches(FieldAmount, name):
			cols.Amount = i
		case cols.Category < 0 && matches(FieldCategory, name):
			cols.Category = i
		case cols.Name < 0 && matches(FieldName, name):
			cols.Name = i
		case cols.Purpose < 0 && matches(FieldPurpose, name):
			cols.Purpose = i
		}
	}

	return cols
}

func matches(f Field, name string) bool {
	for _, s := range synonyms[f] {
		if s == name {
			return true
		}
	}

	return false
}
