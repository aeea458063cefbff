package duplicate_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/cashbook/internal/duplicate"
	"github.com/MrJamesThe3rd/cashbook/internal/ledger"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestDetector_Check(t *testing.T) {
	accountID := uuid.New()

	stored := &ledger.Entry{
		ID: uuid.New(), AccountID: accountID, Amount: dec("50"),
		Usage: "Cash deposit - 25.04.2025", Category: "ATM/Cash-point", Kind: ledger.KindCashDeposit,
	}

	type testCase struct {
		name      string
		candidate duplicate.Candidate
		setupMock func(repo *ledger.MockRepository)
		want      *ledger.Entry
		wantErr   bool
	}

	tests := []testCase{
		{
			name:      "CashDepositDuplicate",
			candidate: duplicate.Candidate{Amount: dec("50.00"), Usage: "Cash deposit - 25.04.2025", Category: "ATM/Cash-point"},
			setupMock: func(repo *ledger.MockRepository) {
				repo.EXPECT().ListEntries(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, f ledger.EntryFilter) ([]*ledger.Entry, error) {
						assert.Equal(t, accountID, *f.AccountID)
						assert.True(t, dec("50").Equal(*f.Amount))
						assert.True(t, duplicate.DefaultTolerance.Equal(f.Tolerance))

						return []*ledger.Entry{stored}, nil
					})
			},
			want: stored,
		},
		{
			name:      "StoredEntryMatchesOnCategoryOnly",
			candidate: duplicate.Candidate{Amount: dec("50"), Usage: "SB-Einzahlung", Category: "Cash-point"},
			setupMock: func(repo *ledger.MockRepository) {
				repo.EXPECT().ListEntries(gomock.Any(), gomock.Any()).Return([]*ledger.Entry{
					{Amount: dec("49.995"), Usage: "Kasse", Category: "geldautomat"},
				}, nil)
			},
			want: &ledger.Entry{Amount: dec("49.995"), Usage: "Kasse", Category: "geldautomat"},
		},
		{
			name:      "StoredEntryWithoutMarker",
			candidate: duplicate.Candidate{Amount: dec("50"), Usage: "Bareinzahlung", Category: "ATM/Cash-point"},
			setupMock: func(repo *ledger.MockRepository) {
				repo.EXPECT().ListEntries(gomock.Any(), gomock.Any()).Return([]*ledger.Entry{
					{Amount: dec("50"), Usage: "Kasse", Category: "Food"},
				}, nil)
			},
		},
		{
			name:      "NonCashCategoryNeverChecked",
			candidate: duplicate.Candidate{Amount: dec("50"), Usage: "Cash deposit", Category: "Food"},
		},
		{
			name:      "CashCategoryWithoutMarker",
			candidate: duplicate.Candidate{Amount: dec("-100"), Usage: "SB-Auszahlung", Category: "ATM/Cash-point"},
		},
		{
			name:      "FinderError",
			candidate: duplicate.Candidate{Amount: dec("50"), Usage: "cash deposit", Category: "Cash-point"},
			setupMock: func(repo *ledger.MockRepository) {
				repo.EXPECT().ListEntries(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := ledger.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			got, err := duplicate.NewDetector().Check(context.Background(), repo, accountID, tt.candidate)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetector_CustomCategories(t *testing.T) {
	d := duplicate.NewDetector(duplicate.WithCategories("Kasse"), duplicate.WithMarkers("Einzahlung"))

	assert.True(t, d.Sensitive(" kasse "))
	assert.False(t, d.Sensitive("ATM/Cash-point"))
}
