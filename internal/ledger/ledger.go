package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind tags what an entry represents and how balances treat it.
type Kind string

const (
	KindIncome      Kind = "income"
	KindExpense     Kind = "expense"
	KindTransfer    Kind = "transfer"
	KindReservation Kind = "reservation"
	KindCashDeposit Kind = "cashDeposit"
)

// Kinds lists every valid entry kind.
var Kinds = []Kind{KindIncome, KindExpense, KindTransfer, KindReservation, KindCashDeposit}

func (k Kind) Valid() bool {
	for _, v := range Kinds {
		if k == v {
			return true
		}
	}

	return false
}

// AccountKind describes where the money of an account physically lives.
type AccountKind string

const (
	AccountBank  AccountKind = "bank"
	AccountCash  AccountKind = "cash"
	AccountOther AccountKind = "other"
)

// ReservedCategory is the fallback category. It can never be deleted and
// receives the entries of deleted categories.
const ReservedCategory = "Sonstiges"

// Group collects accounts for aggregated balances.
type Group struct {
	ID    uuid.UUID
	Name  string
	Order int
}

// Account is a named money pool owned by exactly one group.
type Account struct {
	ID                uuid.UUID
	GroupID           uuid.UUID
	Name              string
	Kind              AccountKind
	IncludedInBalance bool
	Order             int
}

// Category labels entries. A nil GroupID marks a global category.
type Category struct {
	ID      uuid.UUID
	Name    string
	GroupID *uuid.UUID
}

// Entry is a single ledger record.
type Entry struct {
	ID              uuid.UUID
	Amount          decimal.Decimal
	Date            time.Time
	Usage           string
	Category        string
	AccountID       uuid.UUID
	TargetAccountID *uuid.UUID // transfers only
	Kind            Kind
	CreatedAt       time.Time
	UpdatedAt       *time.Time
}

// IsTransfer reports whether e is a transfer leg that points at another account.
func (e *Entry) IsTransfer() bool {
	return e.Kind == KindTransfer && e.TargetAccountID != nil
}
