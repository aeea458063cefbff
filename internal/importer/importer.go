package importer

import (
	"github.com/MrJamesThe3rd/cashbook/internal/importer/statement"
	"github.com/MrJamesThe3rd/cashbook/internal/ledger"
)

type (
	ImportError   = statement.ImportError
	RowParseError = statement.RowParseError
)

// Suspicious is a row held back because it resembles a stored entry. It is
// a review item, not an error.
type Suspicious struct {
	Line     int
	Params   ledger.CreateParams
	Existing *ledger.Entry
}

// Report summarizes one import.
type Report struct {
	Imported   []*ledger.Entry
	Skipped    []*RowParseError
	Suspicious []Suspicious
}
