package ledger

import "github.com/shopspring/decimal"

// View selects which entry kinds count towards a balance.
type View string

const (
	// ViewRaw is the daily balance: everything except reservations.
	ViewRaw View = "raw"
	// ViewEvaluation is the reporting balance: cash deposits are left out too.
	ViewEvaluation View = "evaluation"
)

func (v View) Valid() bool {
	return v == ViewRaw || v == ViewEvaluation
}

// Counts reports whether an entry of kind k is part of the balance in view v.
func (v View) Counts(k Kind) bool {
	switch k {
	case KindReservation:
		return false
	case KindCashDeposit:
		return v != ViewEvaluation
	}

	return true
}

// Sum adds up the amounts of the entries that count in view v.
func Sum(entries []*Entry, v View) decimal.Decimal {
	total := decimal.Zero

	for _, e := range entries {
		if v.Counts(e.Kind) {
			total = total.Add(e.Amount)
		}
	}

	return total
}
