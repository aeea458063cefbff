package statement_test

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/cashbook/internal/importer/statement"
)

func TestDetectDelimiter(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   rune
	}{
		{name: "Semicolon", header: "Datum;Betrag;Name", want: ';'},
		{name: "Comma", header: "date,amount,name", want: ','},
		{name: "TieGoesToComma", header: "a;b,c", want: ','},
		{name: "NoDelimiter", header: "date", want: ','},
		{name: "QuotedCommasCount", header: `"Betrag (EUR)";"Empfänger, Name";Datum`, want: ';'},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statement.DetectDelimiter(tt.header))
		})
	}
}

func TestParse(t *testing.T) {
	type testCase struct {
		name        string
		csvContent  string
		wantRows    int
		wantSkipped int
		verify      func(t *testing.T, st *statement.Statement)
	}

	tests := []testCase{
		{
			name:       "GermanExport",
			csvContent: "Datum;Betrag;Name;Zweck\n01.02.2025;-12,50;ACME;Groceries\n",
			wantRows:   1,
			verify: func(t *testing.T, st *statement.Statement) {
				row := st.Rows[0]
				assert.Equal(t, ';', st.Delimiter)
				assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), row.Date)
				assert.True(t, decimal.RequireFromString("-12.50").Equal(row.Amount))
				assert.Equal(t, "ACME", row.Name)
				assert.Equal(t, "Groceries", row.Purpose)
				assert.Equal(t, "", row.Category)
				assert.Equal(t, 2, row.Line)
			},
		},
		{
			name: "EnglishExportWithQuotes",
			csvContent: "Booking-Date,Amount,Payee,Description,Category\n" +
				`2025-03-04,"1,234.56","Smith, John",Salary March,Income` + "\n",
			wantRows: 1,
			verify: func(t *testing.T, st *statement.Statement) {
				row := st.Rows[0]
				assert.Equal(t, ',', st.Delimiter)
				assert.True(t, decimal.RequireFromString("1234.56").Equal(row.Amount))
				assert.Equal(t, "Smith, John", row.Name)
				assert.Equal(t, "Salary March", row.Purpose)
				assert.Equal(t, "Income", row.Category)
			},
		},
		{
			name:       "BlankLinesAndCRLF",
			csvContent: "\r\nDatum;Betrag\r\n\r\n01.02.25;5,00\r\n   \r\n02.02.25;-5,00\r\n",
			wantRows:   2,
			verify: func(t *testing.T, st *statement.Statement) {
				assert.Equal(t, 2025, st.Rows[0].Date.Year())
				assert.Equal(t, 4, st.Rows[0].Line)
				assert.Equal(t, 6, st.Rows[1].Line)
			},
		},
		{
			name: "BadRowsAreSkipped",
			csvContent: "Name;Datum;Betrag\n" +
				"Short;01.02.2025\n" +
				"Bad date;32.13.2025;1,00\n" +
				"Bad amount;01.02.2025;abc\n" +
				"Zero;01.02.2025;0,00\n" +
				"Sub-cent;01.02.2025;0,001\n" +
				"Good;01.02.2025;1,00\n",
			wantRows:    1,
			wantSkipped: 5,
			verify: func(t *testing.T, st *statement.Statement) {
				assert.Equal(t, "Good", st.Rows[0].Name)

				assert.Equal(t, 2, st.Skipped[0].Line)
				assert.Equal(t, "date", st.Skipped[1].Field)
				assert.Equal(t, "32.13.2025", st.Skipped[1].Value)
				assert.Equal(t, "amount", st.Skipped[2].Field)
				assert.Equal(t, "amount", st.Skipped[3].Field)
				assert.Equal(t, "0,001", st.Skipped[4].Value)
			},
		},
		{
			name:       "MojibakeRepaired",
			csvContent: "Datum;Betrag;Empfänger;Verwendungszweck\n01.02.2025;-3,20;BÃ¤ckerei MÃ¼ller;BrÃ¶tchen\n",
			wantRows:   1,
			verify: func(t *testing.T, st *statement.Statement) {
				assert.Equal(t, "Bäckerei Müller", st.Rows[0].Name)
				assert.Equal(t, "Brötchen", st.Rows[0].Purpose)
			},
		},
		{
			name:       "Windows1252Input",
			csvContent: "Buchungstag;Betrag (EUR);Empf\xe4nger\n01.02.2025;-1,00;B\xe4ckerei\n",
			wantRows:   1,
			verify: func(t *testing.T, st *statement.Statement) {
				assert.Equal(t, 2, st.Columns.Name)
				assert.Equal(t, "Bäckerei", st.Rows[0].Name)
			},
		},
		{
			name:       "CaseInsensitiveHeader",
			csvContent: "DATUM;BETRAG;HAUPTKATEGORIE\n01.02.2025;7,00;Food\n",
			wantRows:   1,
			verify: func(t *testing.T, st *statement.Statement) {
				assert.Equal(t, "Food", st.Rows[0].Category)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := statement.Parse(strings.NewReader(tt.csvContent))
			require.NoError(t, err)
			require.Len(t, st.Rows, tt.wantRows)
			require.Len(t, st.Skipped, tt.wantSkipped)

			if tt.verify != nil {
				tt.verify(t, st)
			}
		})
	}
}

func TestParse_ImportErrors(t *testing.T) {
	tests := []struct {
		name       string
		csvContent string
		wantReason string
	}{
		{name: "Empty", csvContent: "\n  \n", wantReason: "empty statement"},
		{name: "MissingDate", csvContent: "Betrag;Name\n1,00;x\n", wantReason: "missing date column"},
		{name: "MissingAmount", csvContent: "Datum;Name\n01.02.2025;x\n", wantReason: "missing amount column"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := statement.Parse(strings.NewReader(tt.csvContent))
			assert.Nil(t, st)

			var ierr *statement.ImportError
			require.ErrorAs(t, err, &ierr)
			assert.Equal(t, tt.wantReason, ierr.Reason)
		})
	}
}
