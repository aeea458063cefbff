package classify_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/cashbook/internal/classify"
	"github.com/MrJamesThe3rd/cashbook/internal/learning"
	"github.com/MrJamesThe3rd/cashbook/internal/ledger"
)

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestClassifier_Classify(t *testing.T) {
	type testCase struct {
		name  string
		rules []*learning.Rule
		in    classify.Input
		want  classify.Result
	}

	tests := []testCase{
		{
			name: "PayrollWithName",
			in:   classify.Input{Purpose: "Lohn März", Name: "Anna Schmidt", Amount: amount("-1800")},
			want: classify.Result{Usage: "Anna Schmidt", Category: "Personal", Kind: ledger.KindExpense},
		},
		{
			name: "PayrollNameFromPurpose",
			in:   classify.Input{Purpose: "Gehalt für Max Mustermann 03/2025", Amount: amount("-2100")},
			want: classify.Result{Usage: "Max Mustermann", Category: "Personal", Kind: ledger.KindExpense},
		},
		{
			name: "PayrollEnglish",
			in:   classify.Input{Purpose: "salary to John Doe", Amount: amount("-900")},
			want: classify.Result{Usage: "John Doe", Category: "Personal", Kind: ledger.KindExpense},
		},
		{
			name: "ReservationKeyword",
			in:   classify.Input{Purpose: "Anzahlung Zimmer 4", Name: "Familie Weber", Amount: amount("120")},
			want: classify.Result{Usage: "Reservation Familie Weber", Category: "Reservation", Kind: ledger.KindReservation},
		},
		{
			name: "ReservationByGuestDeposit",
			in:   classify.Input{Purpose: "Gutschrift", Name: "Jane Roe", Amount: amount("50.00")},
			want: classify.Result{Usage: "Reservation Jane Roe", Category: "Reservation", Kind: ledger.KindReservation},
		},
		{
			name: "GuestDepositLongNameIsNotReservation",
			in: classify.Input{
				Purpose: "Gutschrift", Name: "Verein der Freunde des Stadtparks e.V.",
				Amount: amount("50"), Category: "Spenden",
			},
			want: classify.Result{Usage: "Verein der Freunde des Stadtparks e.V.", Category: "Spenden", Kind: ledger.KindIncome},
		},
		{
			name: "ReservationKeywordWithBarInName",
			in:   classify.Input{Purpose: "Reservierung Tisch 4", Name: "Cocktail Bar Müller", Amount: amount("80")},
			want: classify.Result{Usage: "Reservation Cocktail Bar Müller", Category: "Reservation", Kind: ledger.KindReservation},
		},
		{
			name: "GuestDepositFromBarIsNotReservation",
			in:   classify.Input{Purpose: "Gutschrift", Name: "Bar Müller", Amount: amount("50"), Category: "Umsatz"},
			want: classify.Result{Usage: "Bar Müller", Category: "Umsatz", Kind: ledger.KindIncome},
		},
		{
			name: "CashDepositKeywordIsNotReservation",
			in:   classify.Input{Purpose: "Cash deposit", Amount: amount("120")},
			want: classify.Result{Usage: "Cash deposit", Category: "ATM/Cash-point", Kind: ledger.KindCashDeposit},
		},
		{
			name: "UmbuchungIsNotReservation",
			in:   classify.Input{Purpose: "Umbuchung Sparkonto", Amount: amount("-300")},
			want: classify.Result{Usage: "Umbuchung Sparkonto", Category: ledger.ReservedCategory, Kind: ledger.KindTransfer},
		},
		{
			name: "InsuranceByOperatingNumber",
			in:   classify.Input{Purpose: "Beitrag Betriebsnummer 12345678", Name: "AOK Bayern", Amount: amount("-420.10")},
			want: classify.Result{Usage: "AOK Bayern - Health insurance", Category: "Insurance", Kind: ledger.KindExpense},
		},
		{
			name: "UtilityVendor",
			in:   classify.Input{Purpose: "Abschlag Strom", Name: "Stadtwerke München", Amount: amount("-85")},
			want: classify.Result{Usage: "Stadtwerke München - Utilities", Category: "Utilities", Kind: ledger.KindExpense},
		},
		{
			name: "VendorFromPurposeWithoutName",
			in:   classify.Input{Purpose: "Rechnung Vodafone GmbH", Amount: amount("-39.99")},
			want: classify.Result{Usage: "Vodafone - Telecom", Category: "Telecom", Kind: ledger.KindExpense},
		},
		{
			name: "DeliveryPayoutIsIncome",
			in:   classify.Input{Purpose: "Auszahlung KW 12", Name: "Lieferando", Amount: amount("812.40")},
			want: classify.Result{Usage: "Lieferando - Delivery platform", Category: "Delivery", Kind: ledger.KindIncome},
		},
		{
			name: "CashDepositWithDate",
			in:   classify.Input{Purpose: "SB-Einzahlung 25.04.25 Filiale", Amount: amount("50")},
			want: classify.Result{Usage: "Cash deposit - 25.04.2025", Category: "ATM/Cash-point", Kind: ledger.KindCashDeposit},
		},
		{
			name: "CashDepositWithoutDate",
			in:   classify.Input{Purpose: "Bareinzahlung am Geldautomat", Amount: amount("200")},
			want: classify.Result{Usage: "Bareinzahlung", Category: "ATM/Cash-point", Kind: ledger.KindCashDeposit},
		},
		{
			name: "ATMWithdrawalIsTransfer",
			in:   classify.Input{Purpose: "SB-Auszahlung Geldautomat", Category: "Bargeld", Amount: amount("-100")},
			want: classify.Result{Usage: "SB-Auszahlung Geldautomat", Category: "Bargeld", Kind: ledger.KindTransfer},
		},
		{
			name:  "LearnedCategory",
			rules: []*learning.Rule{{Pattern: "acme gmbh", Category: "Food", Count: 3}},
			in:    classify.Input{Purpose: "Rechnung 123456", Name: "ACME GmbH", Amount: amount("-12.50"), Category: "Misc"},
			want:  classify.Result{Usage: "ACME GmbH", Category: "Food", Kind: ledger.KindExpense},
		},
		{
			name: "CSVCategory",
			in:   classify.Input{Purpose: "Rechnung 123456", Name: "ACME GmbH", Amount: amount("-12.50"), Category: "Misc"},
			want: classify.Result{Usage: "ACME GmbH", Category: "Misc", Kind: ledger.KindExpense},
		},
		{
			name: "ReservedCategoryAndPurposeUsage",
			in:   classify.Input{Purpose: "Gutschrift Rückerstattung", Amount: amount("7.30")},
			want: classify.Result{Usage: "Gutschrift Rückerstattung", Category: ledger.ReservedCategory, Kind: ledger.KindIncome},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			learner := learning.NewService(learning.NewMemoryRepository(tt.rules...))
			c := classify.New(learner, classify.DefaultGuestDeposit)

			got := c.Classify(context.Background(), tt.in)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifier_LearnsKnownOutcomes(t *testing.T) {
	ctx := context.Background()
	repo := learning.NewMemoryRepository()
	c := classify.New(learning.NewService(repo), classify.DefaultGuestDeposit)

	c.Classify(ctx, classify.Input{Name: "Stadtwerke", Purpose: "Abschlag", Amount: amount("-60")})
	c.Classify(ctx, classify.Input{Name: "Bäckerei Kunz", Category: "Food", Amount: amount("-4.20")})
	c.Classify(ctx, classify.Input{Name: "Bäckerei Kunz", Amount: amount("-3.10")})

	r, err := repo.Get(ctx, "stadtwerke utilities")
	require.NoError(t, err)
	assert.Equal(t, "Utilities", r.Category)

	r, err = repo.Get(ctx, "bäckerei kunz")
	require.NoError(t, err)
	assert.Equal(t, 2, r.Count)
	assert.Equal(t, "Food", r.Category)
}

func TestClassifier_ReservedCategoryIsNotLearned(t *testing.T) {
	ctx := context.Background()
	repo := learning.NewMemoryRepository()
	c := classify.New(learning.NewService(repo), classify.DefaultGuestDeposit)

	got := c.Classify(ctx, classify.Input{Name: "Müller", Amount: amount("-5")})
	assert.Equal(t, ledger.ReservedCategory, got.Category)

	_, err := repo.Get(ctx, "müller")
	assert.ErrorIs(t, err, learning.ErrNotFound)

	got = c.Classify(ctx, classify.Input{Name: "Müller Bäckerei", Category: "Food", Amount: amount("-4")})
	assert.Equal(t, "Food", got.Category)
}

func TestClassifier_LearnerFailuresAreNotFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	learner := classify.NewMockLearner(ctrl)
	learner.EXPECT().Suggest(gomock.Any(), "ACME").Return("", false, errors.New("db down"))
	learner.EXPECT().Learn(gomock.Any(), "ACME", "Misc").Return(errors.New("db down"))

	c := classify.New(learner, classify.DefaultGuestDeposit)
	got := c.Classify(context.Background(), classify.Input{Name: "ACME", Category: "Misc", Amount: amount("-1")})

	assert.Equal(t, classify.Result{Usage: "ACME", Category: "Misc", Kind: ledger.KindExpense}, got)
}

func TestClassifier_WithStages(t *testing.T) {
	always := func(classify.Input) (classify.Result, bool) {
		return classify.Result{Usage: "x", Category: "y", Kind: ledger.KindIncome}, true
	}

	c := classify.New(nil, classify.DefaultGuestDeposit, classify.WithStages(always))
	got := c.Classify(context.Background(), classify.Input{Purpose: "Gehalt", Amount: amount("-1")})

	assert.Equal(t, "x", got.Usage)
}

func TestIsTransfer(t *testing.T) {
	tests := []struct {
		in   classify.Input
		want bool
	}{
		{in: classify.Input{Purpose: "SB-Auszahlung"}, want: true},
		{in: classify.Input{Purpose: "Transfer to savings"}, want: true},
		{in: classify.Input{Name: "ATM Hauptbahnhof"}, want: true},
		{in: classify.Input{Purpose: "Atmosphäre Café"}, want: false},
		{in: classify.Input{Purpose: "Überweisung Miete"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.in.Purpose+tt.in.Name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify.IsTransfer(tt.in))
		})
	}
}
