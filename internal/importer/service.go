package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/cashbook/internal/classify"
	"github.com/MrJamesThe3rd/cashbook/internal/duplicate"
	"github.com/MrJamesThe3rd/cashbook/internal/importer/statement"
	"github.com/MrJamesThe3rd/cashbook/internal/ledger"
)

//go:generate mockgen -source=service.go -destination=ledger_mock.go -package=importer
type Ledger interface {
	GetAccount(ctx context.Context, id uuid.UUID) (*ledger.Account, error)
	ListEntries(ctx context.Context, filter ledger.EntryFilter) ([]*ledger.Entry, error)
	ImportBatch(ctx context.Context, params []ledger.CreateParams) ([]*ledger.Entry, error)
	ResolveCategory(ctx context.Context, groupID *uuid.UUID, name string) (*ledger.Category, error)
}

type Classifier interface {
	Classify(ctx context.Context, in classify.Input) classify.Result
}

type ImportParams struct {
	AccountID uuid.UUID
	// TransferAccountID receives the other leg of outgoing transfer rows,
	// typically the cash account for ATM withdrawals. Without it transfer
	// rows are booked as plain expenses.
	TransferAccountID *uuid.UUID
	Reader            io.Reader
}

type Service struct {
	ledger     Ledger
	classifier Classifier
	detector   *duplicate.Detector
	logger     *slog.Logger
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func NewService(l Ledger, c Classifier, d *duplicate.Detector, opts ...Option) *Service {
	s := &Service{
		ledger:     l,
		classifier: c,
		detector:   d,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Import parses, classifies and books a statement for one account. Rows that
// resemble stored cash-point entries are returned for review instead of being
// booked. All booked rows commit together. When ctx is cancelled the rows
// processed so far are still booked and the partial report is returned along
// with the cancellation error.
func (s *Service) Import(ctx context.Context, p ImportParams) (*Report, error) {
	account, err := s.ledger.GetAccount(ctx, p.AccountID)
	if err != nil {
		return nil, fmt.Errorf("getting account: %w", err)
	}

	st, err := statement.Parse(p.Reader)
	if err != nil {
		return nil, err
	}

	report := &Report{Skipped: st.Skipped}
	categories := make(map[string]string)

	var (
		batch     []ledger.CreateParams
		cancelErr error
	)

	for _, row := range st.Rows {
		if err := ctx.Err(); err != nil {
			cancelErr = fmt.Errorf("import cancelled before line %d: %w", row.Line, err)
			break
		}

		params, existing, err := s.check(ctx, account, p.TransferAccountID, row, categories)
		if err != nil {
			if ctx.Err() != nil {
				cancelErr = fmt.Errorf("import cancelled at line %d: %w", row.Line, ctx.Err())
				break
			}

			return nil, fmt.Errorf("line %d: %w", row.Line, err)
		}

		if existing != nil {
			report.Suspicious = append(report.Suspicious, Suspicious{Line: row.Line, Params: params, Existing: existing})
			continue
		}

		batch = append(batch, params)
	}

	for _, skipped := range report.Skipped {
		s.logger.Warn("skipped statement row", "line", skipped.Line, "error", skipped)
	}

	if len(batch) > 0 {
		// Rows already processed are committed even after cancellation.
		entries, err := s.ledger.ImportBatch(context.WithoutCancel(ctx), batch)
		if err != nil {
			return nil, err
		}

		report.Imported = onAccount(entries, account.ID)
	}

	s.logger.Info("statement imported",
		"account_id", account.ID,
		"imported", len(report.Imported),
		"skipped", len(report.Skipped),
		"suspicious", len(report.Suspicious),
		"cancelled", cancelErr != nil,
	)

	return report, cancelErr
}

// check prepares a row and looks for a stored entry it duplicates.
func (s *Service) check(
	ctx context.Context,
	account *ledger.Account,
	transferAccountID *uuid.UUID,
	row statement.Row,
	categories map[string]string,
) (ledger.CreateParams, *ledger.Entry, error) {
	params, err := s.prepare(ctx, account, transferAccountID, row, categories)
	if err != nil {
		return ledger.CreateParams{}, nil, err
	}

	existing, err := s.detector.Check(ctx, s.ledger, account.ID, duplicate.Candidate{
		Amount:   row.Amount,
		Usage:    params.Usage,
		Category: params.Category,
	})
	if err != nil {
		return ledger.CreateParams{}, nil, err
	}

	return params, existing, nil
}

// Resolve books suspicious rows the operator approved.
func (s *Service) Resolve(ctx context.Context, accountID uuid.UUID, approved []Suspicious) ([]*ledger.Entry, error) {
	params := make([]ledger.CreateParams, len(approved))
	for i, a := range approved {
		params[i] = a.Params
	}

	entries, err := s.ledger.ImportBatch(ctx, params)
	if err != nil {
		return nil, err
	}

	return onAccount(entries, accountID), nil
}

// prepare classifies a row and turns it into ledger params. categories caches
// resolved category names for the duration of one import.
func (s *Service) prepare(
	ctx context.Context,
	account *ledger.Account,
	transferAccountID *uuid.UUID,
	row statement.Row,
	categories map[string]string,
) (ledger.CreateParams, error) {
	res := s.classifier.Classify(ctx, classify.Input{
		Purpose:  row.Purpose,
		Name:     row.Name,
		Category: row.Category,
		Amount:   row.Amount,
	})

	category, ok := categories[res.Category]
	if !ok {
		c, err := s.ledger.ResolveCategory(ctx, &account.GroupID, res.Category)
		if err != nil {
			return ledger.CreateParams{}, fmt.Errorf("resolving category: %w", err)
		}

		category = c.Name
		categories[res.Category] = category
	}

	params := ledger.CreateParams{
		Kind:      res.Kind,
		Amount:    row.Amount,
		Category:  category,
		AccountID: account.ID,
		Usage:     res.Usage,
		Date:      row.Date,
	}

	if params.Kind != ledger.KindTransfer {
		return params, nil
	}

	// Only outgoing transfers with a known destination become two-legged;
	// the ledger books the source leg as -|amount|.
	if transferAccountID == nil || *transferAccountID == account.ID || !row.Amount.IsNegative() {
		params.Kind = classify.KindBySign(row.Amount)
		return params, nil
	}

	params.Amount = row.Amount.Abs()
	params.TargetAccountID = transferAccountID

	return params, nil
}

func onAccount(entries []*ledger.Entry, accountID uuid.UUID) []*ledger.Entry {
	var out []*ledger.Entry

	for _, e := range entries {
		if e.AccountID == accountID {
			out = append(out, e)
		}
	}

	return out
}
