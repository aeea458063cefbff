package classify

import (
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/cashbook/internal/ledger"
	"github.com/MrJamesThe3rd/cashbook/internal/locale"
)

const (
	CategoryPersonal    = "Personal"
	CategoryReservation = "Reservation"
	CategoryCashPoint   = "ATM/Cash-point"

	maxGuestNameLen = 30
)

var (
	payrollKeywords = []string{"lohn", "gehalt", "salary", "wage", "payroll"}
	payrollName     = regexp.MustCompile(`(?i)(?:lohn|gehalt|salary|wage)s?\s+(?:für|fuer|for|to|an)\s+(\p{L}[\p{L}'-]*(?:\s+\p{L}[\p{L}'-]*)?)`)

	reservationPattern = regexp.MustCompile(`(?i)\b(?:reservierung|buchung|anzahlung|booking|reservation|deposit)`)

	cashDepositPattern = regexp.MustCompile(`(?i)sb-einzahlung|bareinzahlung|cash deposit`)
	cashWords          = []string{"cash", "bar", "atm"}
	cashFragments      = []string{"einzahlung", "auszahlung", "geldautomat"}

	purposeDate = regexp.MustCompile(`\b\d{1,2}\.\d{1,2}\.\d{2,4}\b`)
)

// Payroll claims wage payments. The employee name comes from the name field
// or from a "salary for NAME" phrase in the purpose.
func Payroll(in Input) (Result, bool) {
	purpose := strings.ToLower(in.Purpose)
	if !containsAny(purpose, payrollKeywords) {
		return Result{}, false
	}

	usage := strings.TrimSpace(in.Name)
	if usage == "" {
		if m := payrollName.FindStringSubmatch(in.Purpose); m != nil {
			usage = m[1]
		}
	}

	if usage == "" {
		usage = strings.TrimSpace(in.Purpose)
	}

	return Result{Usage: usage, Category: CategoryPersonal, Kind: ledger.KindExpense}, true
}

// Reservation returns the stage that claims booking deposits: rows with a
// booking keyword, or rows paying exactly guestDeposit from a short name that
// is not a cash movement.
func Reservation(guestDeposit decimal.Decimal) Stage {
	return func(in Input) (Result, bool) {
		name := strings.TrimSpace(in.Name)

		if !isReservation(in, name, guestDeposit) {
			return Result{}, false
		}

		usage := CategoryReservation
		if name != "" {
			usage += " " + name
		}

		return Result{Usage: usage, Category: CategoryReservation, Kind: ledger.KindReservation}, true
	}
}

// isReservation accepts a booking keyword unless the purpose describes a
// cash deposit ("cash deposit" also says "deposit"). The guest deposit amount
// alone is weaker evidence, so any cash wording in name or purpose rejects it.
func isReservation(in Input, name string, guestDeposit decimal.Decimal) bool {
	if reservationPattern.MatchString(in.Purpose) || reservationPattern.MatchString(name) {
		return !cashDepositPattern.MatchString(in.Purpose) && !containsAny(strings.ToLower(in.Purpose), cashFragments)
	}

	if isCashPhrase(in.Purpose) || isCashPhrase(name) {
		return false
	}

	return in.Amount.Equal(guestDeposit) &&
		name != "" &&
		utf8.RuneCountInString(name) <= maxGuestNameLen
}

// isCashPhrase reports whether s describes handling cash rather than a guest.
func isCashPhrase(s string) bool {
	s = strings.ToLower(s)
	if containsAny(s, cashFragments) {
		return true
	}

	for _, w := range strings.FieldsFunc(s, func(r rune) bool { return !unicode.IsLetter(r) }) {
		if slices.Contains(cashWords, w) {
			return true
		}
	}

	return false
}

// CashDeposit claims self-service deposits of cash into the bank account.
func CashDeposit(in Input) (Result, bool) {
	marker := cashDepositPattern.FindString(in.Purpose)
	if marker == "" {
		return Result{}, false
	}

	usage := marker
	if raw := purposeDate.FindString(in.Purpose); raw != "" {
		usage = "Cash deposit - " + raw

		if t, err := locale.ParseDate(raw); err == nil {
			usage = "Cash deposit - " + t.Format(locale.LayoutGerman)
		}
	}

	return Result{Usage: usage, Category: CategoryCashPoint, Kind: ledger.KindCashDeposit}, true
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}

	return false
}
