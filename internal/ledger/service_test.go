package ledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/cashbook/internal/ledger"
)

var day = time.Date(2025, 4, 25, 0, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestService_CreateEntry(t *testing.T) {
	var (
		bank = &ledger.Account{ID: uuid.New(), Name: "Girokonto", Kind: ledger.AccountBank}
		cash = &ledger.Account{ID: uuid.New(), Name: "Cash", Kind: ledger.AccountCash}
	)

	type testCase struct {
		name      string
		params    ledger.CreateParams
		setupMock func(repo *ledger.MockRepository, m *ledger.MockMutation)
		verify    func(t *testing.T, entries []*ledger.Entry)
		wantErr   func(t *testing.T, err error)
	}

	tests := []testCase{
		{
			name: "Expense",
			params: ledger.CreateParams{
				Kind: ledger.KindExpense, Amount: dec("-12.50"), Category: "Food",
				AccountID: bank.ID, Usage: "Bakery", Date: day,
			},
			setupMock: func(repo *ledger.MockRepository, m *ledger.MockMutation) {
				repo.EXPECT().Begin(gomock.Any()).Return(m, nil)
				m.EXPECT().CreateEntries(gomock.Any(), gomock.Len(1)).Return(nil)
				m.EXPECT().Commit().Return(nil)
				m.EXPECT().Rollback().Return(nil)
			},
			verify: func(t *testing.T, entries []*ledger.Entry) {
				require.Len(t, entries, 1)
				assert.True(t, dec("-12.50").Equal(entries[0].Amount))
				assert.NotEqual(t, uuid.Nil, entries[0].ID)
			},
		},
		{
			name: "MirroredTransfer",
			params: ledger.CreateParams{
				Kind: ledger.KindTransfer, Amount: dec("100"), Category: "Transfer",
				AccountID: bank.ID, TargetAccountID: &cash.ID, Usage: "Withdrawal", Date: day,
			},
			setupMock: func(repo *ledger.MockRepository, m *ledger.MockMutation) {
				repo.EXPECT().GetAccount(gomock.Any(), bank.ID).Return(bank, nil)
				repo.EXPECT().GetAccount(gomock.Any(), cash.ID).Return(cash, nil)
				repo.EXPECT().Begin(gomock.Any()).Return(m, nil)
				m.EXPECT().CreateEntries(gomock.Any(), gomock.Len(2)).Return(nil)
				m.EXPECT().Commit().Return(nil)
				m.EXPECT().Rollback().Return(nil)
			},
			verify: func(t *testing.T, entries []*ledger.Entry) {
				require.Len(t, entries, 2)
				source, mirror := entries[0], entries[1]

				assert.True(t, dec("-100").Equal(source.Amount))
				assert.Equal(t, bank.ID, source.AccountID)
				assert.Equal(t, cash.ID, *source.TargetAccountID)

				assert.True(t, source.Amount.Neg().Equal(mirror.Amount))
				assert.Equal(t, cash.ID, mirror.AccountID)
				assert.Equal(t, bank.ID, *mirror.TargetAccountID)
				assert.Equal(t, source.Date, mirror.Date)
				assert.Equal(t, source.Category, mirror.Category)
				assert.Equal(t, source.Usage, mirror.Usage)
				assert.Equal(t, ledger.KindTransfer, mirror.Kind)
			},
		},
		{
			name: "CashToBankIsNotMirrored",
			params: ledger.CreateParams{
				Kind: ledger.KindTransfer, Amount: dec("50"), Category: "Transfer",
				AccountID: cash.ID, TargetAccountID: &bank.ID, Date: day,
			},
			setupMock: func(repo *ledger.MockRepository, m *ledger.MockMutation) {
				repo.EXPECT().GetAccount(gomock.Any(), cash.ID).Return(cash, nil)
				repo.EXPECT().GetAccount(gomock.Any(), bank.ID).Return(bank, nil)
				repo.EXPECT().Begin(gomock.Any()).Return(m, nil)
				m.EXPECT().CreateEntries(gomock.Any(), gomock.Len(1)).Return(nil)
				m.EXPECT().Commit().Return(nil)
				m.EXPECT().Rollback().Return(nil)
			},
			verify: func(t *testing.T, entries []*ledger.Entry) {
				require.Len(t, entries, 1)
				assert.True(t, dec("-50").Equal(entries[0].Amount))
			},
		},
		{
			name: "ZeroAmount",
			params: ledger.CreateParams{
				Kind: ledger.KindIncome, Amount: decimal.Zero, Category: "Salary", AccountID: bank.ID,
			},
			wantErr: func(t *testing.T, err error) {
				var verr *ledger.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, "amount", verr.Field)
			},
		},
		{
			name: "NegativeTransferLeavesSource",
			params: ledger.CreateParams{
				Kind: ledger.KindTransfer, Amount: dec("-80"), Category: "Transfer",
				AccountID: bank.ID, TargetAccountID: &cash.ID, Date: day,
			},
			setupMock: func(repo *ledger.MockRepository, m *ledger.MockMutation) {
				repo.EXPECT().GetAccount(gomock.Any(), bank.ID).Return(bank, nil)
				repo.EXPECT().GetAccount(gomock.Any(), cash.ID).Return(cash, nil)
				repo.EXPECT().Begin(gomock.Any()).Return(m, nil)
				m.EXPECT().CreateEntries(gomock.Any(), gomock.Len(2)).Return(nil)
				m.EXPECT().Commit().Return(nil)
				m.EXPECT().Rollback().Return(nil)
			},
			verify: func(t *testing.T, entries []*ledger.Entry) {
				require.Len(t, entries, 2)
				assert.True(t, dec("-80").Equal(entries[0].Amount))
				assert.Equal(t, bank.ID, entries[0].AccountID)
				assert.True(t, dec("80").Equal(entries[1].Amount))
				assert.Equal(t, cash.ID, entries[1].AccountID)
			},
		},
		{
			name: "SubCentAmount",
			params: ledger.CreateParams{
				Kind: ledger.KindExpense, Amount: dec("-0.001"), Category: "Food", AccountID: bank.ID,
			},
			wantErr: func(t *testing.T, err error) {
				var verr *ledger.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, "amount", verr.Field)
			},
		},
		{
			name: "UnknownKind",
			params: ledger.CreateParams{
				Kind: "refund", Amount: dec("1"), Category: "Food", AccountID: bank.ID,
			},
			wantErr: func(t *testing.T, err error) {
				var verr *ledger.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, "kind", verr.Field)
			},
		},
		{
			name: "EmptyCategory",
			params: ledger.CreateParams{
				Kind: ledger.KindExpense, Amount: dec("-1"), Category: "  ", AccountID: bank.ID,
			},
			wantErr: func(t *testing.T, err error) {
				var verr *ledger.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, "category", verr.Field)
			},
		},
		{
			name: "CommitFails",
			params: ledger.CreateParams{
				Kind: ledger.KindExpense, Amount: dec("-1"), Category: "Food", AccountID: bank.ID, Date: day,
			},
			setupMock: func(repo *ledger.MockRepository, m *ledger.MockMutation) {
				repo.EXPECT().Begin(gomock.Any()).Return(m, nil)
				m.EXPECT().CreateEntries(gomock.Any(), gomock.Any()).Return(nil)
				m.EXPECT().Commit().Return(errors.New("disk full"))
				m.EXPECT().Rollback().Return(nil)
			},
			wantErr: func(t *testing.T, err error) {
				var cerr *ledger.CommitError
				require.ErrorAs(t, err, &cerr)
				assert.Contains(t, err.Error(), "disk full")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := ledger.NewMockRepository(ctrl)
			m := ledger.NewMockMutation(ctrl)

			if tt.setupMock != nil {
				tt.setupMock(repo, m)
			}

			svc := ledger.NewService(repo)
			got, err := svc.CreateEntry(context.Background(), tt.params)

			if tt.wantErr != nil {
				require.Error(t, err)
				tt.wantErr(t, err)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			tt.verify(t, got)
		})
	}
}

func TestService_DeleteEntry_RemovesMirrorFirst(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	m := ledger.NewMockMutation(ctrl)
	svc := ledger.NewService(repo)

	bankID, cashID := uuid.New(), uuid.New()
	source := &ledger.Entry{
		ID: uuid.New(), Amount: dec("-100"), Date: day, Kind: ledger.KindTransfer,
		AccountID: bankID, TargetAccountID: &cashID, Category: "Transfer",
	}
	mirror := &ledger.Entry{
		ID: uuid.New(), Amount: dec("100"), Date: day, Kind: ledger.KindTransfer,
		AccountID: cashID, TargetAccountID: &bankID, Category: "Transfer",
	}

	repo.EXPECT().GetEntry(gomock.Any(), source.ID).Return(source, nil)
	repo.EXPECT().Begin(gomock.Any()).Return(m, nil)
	m.EXPECT().FindEntries(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, f ledger.EntryFilter) ([]*ledger.Entry, error) {
			assert.Equal(t, cashID, *f.AccountID)
			assert.Equal(t, ledger.KindTransfer, *f.Kind)
			assert.True(t, dec("100").Equal(*f.Amount))
			assert.True(t, f.From.Equal(day))
			assert.True(t, f.To.Before(day.AddDate(0, 0, 1)))

			return []*ledger.Entry{mirror}, nil
		})
	gomock.InOrder(
		m.EXPECT().DeleteEntry(gomock.Any(), mirror.ID).Return(nil),
		m.EXPECT().DeleteEntry(gomock.Any(), source.ID).Return(nil),
	)
	m.EXPECT().Commit().Return(nil)
	m.EXPECT().Rollback().Return(nil)

	require.NoError(t, svc.DeleteEntry(context.Background(), source.ID))
}

func TestService_DeleteEntry_MissingMirrorIsNotFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	m := ledger.NewMockMutation(ctrl)
	svc := ledger.NewService(repo)

	cashID, bankID := uuid.New(), uuid.New()
	source := &ledger.Entry{
		ID: uuid.New(), Amount: dec("-50"), Date: day, Kind: ledger.KindTransfer,
		AccountID: cashID, TargetAccountID: &bankID, Category: "Transfer",
	}

	repo.EXPECT().GetEntry(gomock.Any(), source.ID).Return(source, nil)
	repo.EXPECT().Begin(gomock.Any()).Return(m, nil)
	m.EXPECT().FindEntries(gomock.Any(), gomock.Any()).Return(nil, nil)
	m.EXPECT().DeleteEntry(gomock.Any(), source.ID).Return(nil)
	m.EXPECT().Commit().Return(nil)
	m.EXPECT().Rollback().Return(nil)

	require.NoError(t, svc.DeleteEntry(context.Background(), source.ID))
}

func TestService_DeleteEntry_PlainEntry(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	m := ledger.NewMockMutation(ctrl)
	svc := ledger.NewService(repo)

	e := &ledger.Entry{ID: uuid.New(), Amount: dec("-3"), Kind: ledger.KindExpense, AccountID: uuid.New()}

	repo.EXPECT().GetEntry(gomock.Any(), e.ID).Return(e, nil)
	repo.EXPECT().Begin(gomock.Any()).Return(m, nil)
	m.EXPECT().DeleteEntry(gomock.Any(), e.ID).Return(nil)
	m.EXPECT().Commit().Return(nil)
	m.EXPECT().Rollback().Return(nil)

	require.NoError(t, svc.DeleteEntry(context.Background(), e.ID))
}

func TestService_UpdateEntry_UpdatesBothLegs(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	m := ledger.NewMockMutation(ctrl)
	svc := ledger.NewService(repo)

	bankID, cashID := uuid.New(), uuid.New()
	id := uuid.New()
	original := &ledger.Entry{
		ID: id, Amount: dec("-100"), Date: day, Kind: ledger.KindTransfer,
		AccountID: bankID, TargetAccountID: &cashID, Category: "Transfer", Usage: "ATM",
	}
	mirror := &ledger.Entry{
		ID: uuid.New(), Amount: dec("100"), Date: day, Kind: ledger.KindTransfer,
		AccountID: cashID, TargetAccountID: &bankID, Category: "Transfer", Usage: "ATM",
	}

	edited := *original
	edited.Amount = dec("-80")
	edited.Usage = "ATM Hauptbahnhof"
	edited.Date = day.AddDate(0, 0, 1)

	repo.EXPECT().GetEntry(gomock.Any(), id).Return(original, nil)
	repo.EXPECT().Begin(gomock.Any()).Return(m, nil)
	m.EXPECT().FindEntries(gomock.Any(), gomock.Any()).Return([]*ledger.Entry{mirror}, nil)
	m.EXPECT().UpdateEntry(gomock.Any(), &edited).Return(nil)
	m.EXPECT().UpdateEntry(gomock.Any(), mirror).
		DoAndReturn(func(_ context.Context, e *ledger.Entry) error {
			assert.True(t, dec("80").Equal(e.Amount))
			assert.Equal(t, "ATM Hauptbahnhof", e.Usage)
			assert.Equal(t, edited.Date, e.Date)

			return nil
		})
	m.EXPECT().Commit().Return(nil)
	m.EXPECT().Rollback().Return(nil)

	require.NoError(t, svc.UpdateEntry(context.Background(), &edited))
}

func TestService_UpdateEntry_TransferBecomesExpense(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	m := ledger.NewMockMutation(ctrl)
	svc := ledger.NewService(repo)

	bankID, cashID := uuid.New(), uuid.New()
	original := &ledger.Entry{
		ID: uuid.New(), Amount: dec("-100"), Date: day, Kind: ledger.KindTransfer,
		AccountID: bankID, TargetAccountID: &cashID, Category: "Transfer",
	}
	mirror := &ledger.Entry{
		ID: uuid.New(), Amount: dec("100"), Date: day, Kind: ledger.KindTransfer,
		AccountID: cashID, TargetAccountID: &bankID, Category: "Transfer",
	}

	edited := *original
	edited.Kind = ledger.KindExpense
	edited.TargetAccountID = nil

	repo.EXPECT().GetEntry(gomock.Any(), original.ID).Return(original, nil)
	repo.EXPECT().Begin(gomock.Any()).Return(m, nil)
	m.EXPECT().FindEntries(gomock.Any(), gomock.Any()).Return([]*ledger.Entry{mirror}, nil)
	m.EXPECT().UpdateEntry(gomock.Any(), &edited).Return(nil)
	m.EXPECT().DeleteEntry(gomock.Any(), mirror.ID).Return(nil)
	m.EXPECT().Commit().Return(nil)
	m.EXPECT().Rollback().Return(nil)

	require.NoError(t, svc.UpdateEntry(context.Background(), &edited))
}

func TestService_UpdateEntry_Invalid(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := ledger.NewService(ledger.NewMockRepository(ctrl))

	err := svc.UpdateEntry(context.Background(), &ledger.Entry{
		ID: uuid.New(), Amount: decimal.Zero, Kind: ledger.KindExpense, Category: "Food", AccountID: uuid.New(),
	})

	var verr *ledger.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestSum(t *testing.T) {
	entries := []*ledger.Entry{
		{Amount: dec("1000"), Kind: ledger.KindIncome},
		{Amount: dec("-250.50"), Kind: ledger.KindExpense},
		{Amount: dec("-100"), Kind: ledger.KindTransfer},
		{Amount: dec("-50"), Kind: ledger.KindReservation},
		{Amount: dec("300"), Kind: ledger.KindCashDeposit},
	}

	raw := ledger.Sum(entries, ledger.ViewRaw)
	evaluation := ledger.Sum(entries, ledger.ViewEvaluation)

	assert.True(t, dec("949.50").Equal(raw), "raw %s", raw)
	assert.True(t, dec("649.50").Equal(evaluation), "evaluation %s", evaluation)
	assert.True(t, raw.Sub(dec("300")).Equal(evaluation))
	assert.True(t, ledger.Sum(nil, ledger.ViewRaw).IsZero())
}

func TestService_GroupBalance(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	svc := ledger.NewService(repo)

	groupID := uuid.New()
	included := &ledger.Account{ID: uuid.New(), GroupID: groupID, IncludedInBalance: true}
	alsoIncluded := &ledger.Account{ID: uuid.New(), GroupID: groupID, IncludedInBalance: true}
	excluded := &ledger.Account{ID: uuid.New(), GroupID: groupID, IncludedInBalance: false}

	repo.EXPECT().ListAccounts(gomock.Any(), &groupID).
		Return([]*ledger.Account{included, alsoIncluded, excluded}, nil)
	repo.EXPECT().ListEntries(gomock.Any(), ledger.EntryFilter{AccountID: &included.ID}).
		Return([]*ledger.Entry{
			{Amount: dec("10"), Kind: ledger.KindIncome},
			{Amount: dec("99"), Kind: ledger.KindReservation},
		}, nil)
	repo.EXPECT().ListEntries(gomock.Any(), ledger.EntryFilter{AccountID: &alsoIncluded.ID}).
		Return([]*ledger.Entry{
			{Amount: dec("5"), Kind: ledger.KindCashDeposit},
		}, nil)

	got, err := svc.GroupBalance(context.Background(), groupID, ledger.ViewRaw)
	require.NoError(t, err)
	assert.True(t, dec("15").Equal(got), "got %s", got)
}

func TestService_Balance_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	svc := ledger.NewService(repo)

	repo.EXPECT().ListEntries(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))

	_, err := svc.Balance(context.Background(), uuid.New(), ledger.ViewEvaluation)
	assert.Error(t, err)
}

func TestService_DeleteCategory(t *testing.T) {
	t.Run("Reserved", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := ledger.NewMockRepository(ctrl)
		svc := ledger.NewService(repo)

		c := &ledger.Category{ID: uuid.New(), Name: ledger.ReservedCategory}
		repo.EXPECT().GetCategory(gomock.Any(), c.ID).Return(c, nil)

		err := svc.DeleteCategory(context.Background(), c.ID)
		assert.ErrorIs(t, err, ledger.ErrReservedCategory)
	})

	t.Run("ReassignsEntries", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := ledger.NewMockRepository(ctrl)
		m := ledger.NewMockMutation(ctrl)
		svc := ledger.NewService(repo)

		groupID := uuid.New()
		c := &ledger.Category{ID: uuid.New(), Name: "Hobby", GroupID: &groupID}

		repo.EXPECT().GetCategory(gomock.Any(), c.ID).Return(c, nil)
		repo.EXPECT().FindCategory(gomock.Any(), ledger.ReservedCategory, &groupID).Return(nil, ledger.ErrNotFound)
		repo.EXPECT().CreateCategory(gomock.Any(), gomock.Any()).Return(nil)
		repo.EXPECT().Begin(gomock.Any()).Return(m, nil)
		gomock.InOrder(
			m.EXPECT().ReassignCategory(gomock.Any(), c, ledger.ReservedCategory).Return(nil),
			m.EXPECT().DeleteCategory(gomock.Any(), c.ID).Return(nil),
		)
		m.EXPECT().Commit().Return(nil)
		m.EXPECT().Rollback().Return(nil)

		require.NoError(t, svc.DeleteCategory(context.Background(), c.ID))
	})
}

func TestService_ResolveCategory(t *testing.T) {
	groupID := uuid.New()

	tests := []struct {
		name      string
		input     string
		setupMock func(repo *ledger.MockRepository)
		want      *ledger.Category
		wantErr   bool
	}{
		{
			name:  "Existing",
			input: "Food",
			setupMock: func(repo *ledger.MockRepository) {
				repo.EXPECT().FindCategory(gomock.Any(), "Food", &groupID).
					Return(&ledger.Category{Name: "Food"}, nil)
			},
			want: &ledger.Category{Name: "Food"},
		},
		{
			name:  "CreatedInGroup",
			input: "  Hobby ",
			setupMock: func(repo *ledger.MockRepository) {
				repo.EXPECT().FindCategory(gomock.Any(), "Hobby", &groupID).Return(nil, ledger.ErrNotFound)
				repo.EXPECT().CreateCategory(gomock.Any(), &ledger.Category{Name: "Hobby", GroupID: &groupID}).Return(nil)
			},
			want: &ledger.Category{Name: "Hobby", GroupID: &groupID},
		},
		{
			name:  "EmptyIsReserved",
			input: "",
			setupMock: func(repo *ledger.MockRepository) {
				repo.EXPECT().FindCategory(gomock.Any(), ledger.ReservedCategory, &groupID).
					Return(&ledger.Category{Name: ledger.ReservedCategory}, nil)
			},
			want: &ledger.Category{Name: ledger.ReservedCategory},
		},
		{
			name:  "LookupFails",
			input: "Food",
			setupMock: func(repo *ledger.MockRepository) {
				repo.EXPECT().FindCategory(gomock.Any(), "Food", &groupID).Return(nil, errors.New("db down"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := ledger.NewMockRepository(ctrl)
			tt.setupMock(repo)

			got, err := ledger.NewService(repo).ResolveCategory(context.Background(), &groupID, tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_Cleanup(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	m := ledger.NewMockMutation(ctrl)
	svc := ledger.NewService(repo)

	repo.EXPECT().Begin(gomock.Any()).Return(m, nil)
	m.EXPECT().DeleteInvalidEntries(gomock.Any()).Return(3, nil)
	m.EXPECT().Commit().Return(nil)
	m.EXPECT().Rollback().Return(nil)

	n, err := svc.Cleanup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestService_ImportBatch_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := ledger.NewService(ledger.NewMockRepository(ctrl))

	got, err := svc.ImportBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
