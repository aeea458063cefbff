package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MirrorTolerance is how far a mirror leg's amount may drift from the exact
// negation of its source leg and still be recognised.
var MirrorTolerance = decimal.New(1, -2)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=ledger
type Repository interface {
	GetEntry(ctx context.Context, id uuid.UUID) (*Entry, error)
	ListEntries(ctx context.Context, filter EntryFilter) ([]*Entry, error)

	GetAccount(ctx context.Context, id uuid.UUID) (*Account, error)
	ListAccounts(ctx context.Context, groupID *uuid.UUID) ([]*Account, error)
	CreateAccount(ctx context.Context, a *Account) error

	ListGroups(ctx context.Context) ([]*Group, error)
	CreateGroup(ctx context.Context, g *Group) error

	GetCategory(ctx context.Context, id uuid.UUID) (*Category, error)
	FindCategory(ctx context.Context, name string, groupID *uuid.UUID) (*Category, error)
	CreateCategory(ctx context.Context, c *Category) error

	Begin(ctx context.Context) (Mutation, error)
}

// Mutation is a scoped write against the store. Nothing is visible to
// readers until Commit succeeds; Rollback after Commit is a no-op.
type Mutation interface {
	FindEntries(ctx context.Context, filter EntryFilter) ([]*Entry, error)
	CreateEntries(ctx context.Context, entries []*Entry) error
	UpdateEntry(ctx context.Context, e *Entry) error
	DeleteEntry(ctx context.Context, id uuid.UUID) error
	DeleteInvalidEntries(ctx context.Context) (int, error)
	ReassignCategory(ctx context.Context, from *Category, to string) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	Commit() error
	Rollback() error
}

// EntryFilter narrows entry queries. Zero values are ignored. When Amount is
// set, entries match if they are within Tolerance of it.
type EntryFilter struct {
	AccountID *uuid.UUID
	Kind      *Kind
	From      *time.Time
	To        *time.Time
	Amount    *decimal.Decimal
	Tolerance decimal.Decimal
}

type CreateParams struct {
	Kind            Kind
	Amount          decimal.Decimal
	Category        string
	AccountID       uuid.UUID
	TargetAccountID *uuid.UUID
	Usage           string
	Date            time.Time
}

type Service struct {
	repo        Repository
	logger      *slog.Logger
	nonMirrored []Route
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithNonMirroredRoutes replaces DefaultNonMirroredRoutes.
func WithNonMirroredRoutes(routes []Route) Option {
	return func(s *Service) { s.nonMirrored = routes }
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:        repo,
		logger:      slog.Default(),
		nonMirrored: DefaultNonMirroredRoutes,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Validate checks the invariants every stored entry must satisfy.
func Validate(p CreateParams) error {
	if !p.Kind.Valid() {
		return &ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown kind %q", p.Kind)}
	}

	if p.Amount.IsZero() {
		return &ValidationError{Field: "amount", Reason: "must not be zero"}
	}

	// Amounts are stored in cents; finer values would round, possibly to zero.
	if !p.Amount.Equal(p.Amount.Round(2)) {
		return &ValidationError{Field: "amount", Reason: "must not have more than two decimal places"}
	}

	if strings.TrimSpace(p.Category) == "" {
		return &ValidationError{Field: "category", Reason: "must not be empty"}
	}

	if p.AccountID == uuid.Nil {
		return &ValidationError{Field: "account", Reason: "is required"}
	}

	if p.TargetAccountID != nil && *p.TargetAccountID == p.AccountID {
		return &ValidationError{Field: "target account", Reason: "must differ from the source account"}
	}

	return nil
}

// CreateEntry stores a manual entry. A transfer to another account books the
// source leg as -|amount| and, unless the route is exempt, a
// mirror leg on the target. Both legs commit together.
func (s *Service) CreateEntry(ctx context.Context, p CreateParams) ([]*Entry, error) {
	if err := Validate(p); err != nil {
		return nil, err
	}

	entries, err := s.legs(ctx, p)
	if err != nil {
		return nil, err
	}

	if err := s.mutate(ctx, "create entry", func(m Mutation) error {
		return m.CreateEntries(ctx, entries)
	}); err != nil {
		return nil, err
	}

	return entries, nil
}

// ImportBatch stores already classified entries for one account in a single
// mutation. Either every entry is committed or none is.
func (s *Service) ImportBatch(ctx context.Context, params []CreateParams) ([]*Entry, error) {
	if len(params) == 0 {
		return nil, nil
	}

	var entries []*Entry

	for i, p := range params {
		if err := Validate(p); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}

		legs, err := s.legs(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}

		entries = append(entries, legs...)
	}

	if err := s.mutate(ctx, "import batch", func(m Mutation) error {
		return m.CreateEntries(ctx, entries)
	}); err != nil {
		return nil, err
	}

	return entries, nil
}

// UpdateEntry persists changes to an entry. Transfer legs are kept in sync:
// the mirror follows amount, date, usage and category of the edited leg.
func (s *Service) UpdateEntry(ctx context.Context, e *Entry) error {
	if err := Validate(paramsOf(e)); err != nil {
		return err
	}

	original, err := s.repo.GetEntry(ctx, e.ID)
	if err != nil {
		return fmt.Errorf("getting entry: %w", err)
	}

	return s.mutate(ctx, "update entry", func(m Mutation) error {
		var mirror *Entry

		if original.IsTransfer() {
			found, err := s.findMirror(ctx, m, original)
			if err != nil {
				return err
			}

			mirror = found
		}

		if err := m.UpdateEntry(ctx, e); err != nil {
			return err
		}

		return s.syncMirror(ctx, m, e, mirror)
	})
}

// syncMirror brings the mirror leg in line with the edited leg e. A mirror
// that no longer fits (kind or target changed) is replaced.
func (s *Service) syncMirror(ctx context.Context, m Mutation, e, mirror *Entry) error {
	if mirror != nil && e.IsTransfer() && mirror.AccountID == *e.TargetAccountID {
		mirror.Amount = e.Amount.Neg()
		mirror.Date = e.Date
		mirror.Usage = e.Usage
		mirror.Category = e.Category

		return m.UpdateEntry(ctx, mirror)
	}

	if mirror != nil {
		if err := m.DeleteEntry(ctx, mirror.ID); err != nil {
			return err
		}
	}

	if !e.IsTransfer() {
		return nil
	}

	mirrored, err := s.mirrored(ctx, e.AccountID, *e.TargetAccountID)
	if err != nil || !mirrored {
		return err
	}

	return m.CreateEntries(ctx, []*Entry{mirrorOf(e)})
}

// DeleteEntry removes an entry. For transfers the mirror leg goes first; a
// missing mirror is logged and does not block the delete.
func (s *Service) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	e, err := s.repo.GetEntry(ctx, id)
	if err != nil {
		return fmt.Errorf("getting entry: %w", err)
	}

	return s.mutate(ctx, "delete entry", func(m Mutation) error {
		if e.IsTransfer() {
			mirror, err := s.findMirror(ctx, m, e)
			if err != nil {
				return err
			}

			if mirror == nil {
				s.logger.Warn("transfer mirror not found",
					"entry_id", e.ID, "account_id", e.AccountID, "target_account_id", *e.TargetAccountID)
			} else if err := m.DeleteEntry(ctx, mirror.ID); err != nil {
				return err
			}
		}

		return m.DeleteEntry(ctx, e.ID)
	})
}

// Cleanup purges entries that violate the entry invariants (zero amount or
// unknown kind) and returns how many were removed.
func (s *Service) Cleanup(ctx context.Context) (int, error) {
	var n int

	err := s.mutate(ctx, "cleanup", func(m Mutation) error {
		var err error
		n, err = m.DeleteInvalidEntries(ctx)

		return err
	})
	if err != nil {
		return 0, err
	}

	if n > 0 {
		s.logger.Info("purged invalid entries", "count", n)
	}

	return n, nil
}

// Balance sums the entries of one account under view v.
func (s *Service) Balance(ctx context.Context, accountID uuid.UUID, v View) (decimal.Decimal, error) {
	entries, err := s.repo.ListEntries(ctx, EntryFilter{AccountID: &accountID})
	if err != nil {
		return decimal.Zero, fmt.Errorf("listing entries: %w", err)
	}

	return Sum(entries, v), nil
}

// GroupBalance sums the balances of the group's accounts that are included
// in totals.
func (s *Service) GroupBalance(ctx context.Context, groupID uuid.UUID, v View) (decimal.Decimal, error) {
	accounts, err := s.repo.ListAccounts(ctx, &groupID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("listing accounts: %w", err)
	}

	total := decimal.Zero

	for _, a := range accounts {
		if !a.IncludedInBalance {
			continue
		}

		b, err := s.Balance(ctx, a.ID, v)
		if err != nil {
			return decimal.Zero, err
		}

		total = total.Add(b)
	}

	return total, nil
}

// ResolveCategory returns the category called name for the group, falling
// back to a global one, and creates it when neither exists.
func (s *Service) ResolveCategory(ctx context.Context, groupID *uuid.UUID, name string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = ReservedCategory
	}

	c, err := s.repo.FindCategory(ctx, name, groupID)
	if err == nil {
		return c, nil
	}

	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("finding category: %w", err)
	}

	c = &Category{Name: name, GroupID: groupID}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, fmt.Errorf("creating category: %w", err)
	}

	return c, nil
}

// DeleteCategory removes a category after moving its entries to the
// reserved category.
func (s *Service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	c, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("getting category: %w", err)
	}

	if strings.EqualFold(c.Name, ReservedCategory) {
		return ErrReservedCategory
	}

	if _, err := s.ResolveCategory(ctx, c.GroupID, ReservedCategory); err != nil {
		return err
	}

	return s.mutate(ctx, "delete category", func(m Mutation) error {
		if err := m.ReassignCategory(ctx, c, ReservedCategory); err != nil {
			return err
		}

		return m.DeleteCategory(ctx, c.ID)
	})
}

func (s *Service) GetEntry(ctx context.Context, id uuid.UUID) (*Entry, error) {
	return s.repo.GetEntry(ctx, id)
}

func (s *Service) ListEntries(ctx context.Context, filter EntryFilter) ([]*Entry, error) {
	return s.repo.ListEntries(ctx, filter)
}

func (s *Service) GetAccount(ctx context.Context, id uuid.UUID) (*Account, error) {
	return s.repo.GetAccount(ctx, id)
}

func (s *Service) ListAccounts(ctx context.Context) ([]*Account, error) {
	return s.repo.ListAccounts(ctx, nil)
}

func (s *Service) CreateAccount(ctx context.Context, a *Account) error {
	if strings.TrimSpace(a.Name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}

	if a.Kind == "" {
		a.Kind = AccountBank
	}

	return s.repo.CreateAccount(ctx, a)
}

func (s *Service) ListGroups(ctx context.Context) ([]*Group, error) {
	return s.repo.ListGroups(ctx)
}

func (s *Service) CreateGroup(ctx context.Context, g *Group) error {
	if strings.TrimSpace(g.Name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}

	return s.repo.CreateGroup(ctx, g)
}

// legs builds the entries for p: one entry, or two for a mirrored transfer.
func (s *Service) legs(ctx context.Context, p CreateParams) ([]*Entry, error) {
	if p.Kind != KindTransfer || p.TargetAccountID == nil {
		return []*Entry{newEntry(p, p.Amount)}, nil
	}

	source := newEntry(p, p.Amount.Abs().Neg())

	mirrored, err := s.mirrored(ctx, p.AccountID, *p.TargetAccountID)
	if err != nil {
		return nil, err
	}

	if !mirrored {
		return []*Entry{source}, nil
	}

	return []*Entry{source, mirrorOf(source)}, nil
}

func (s *Service) mirrored(ctx context.Context, sourceID, targetID uuid.UUID) (bool, error) {
	source, err := s.repo.GetAccount(ctx, sourceID)
	if err != nil {
		return false, fmt.Errorf("getting source account: %w", err)
	}

	target, err := s.repo.GetAccount(ctx, targetID)
	if err != nil {
		return false, fmt.Errorf("getting target account: %w", err)
	}

	return !containsRoute(s.nonMirrored, source.Kind, target.Kind), nil
}

// findMirror looks for the other leg of transfer e: same day, swapped
// accounts, amount close to -e.Amount. It returns nil when there is none.
func (s *Service) findMirror(ctx context.Context, m Mutation, e *Entry) (*Entry, error) {
	from, to := dayBounds(e.Date)
	kind := KindTransfer
	amount := e.Amount.Neg()

	candidates, err := m.FindEntries(ctx, EntryFilter{
		AccountID: e.TargetAccountID,
		Kind:      &kind,
		From:      &from,
		To:        &to,
		Amount:    &amount,
		Tolerance: MirrorTolerance,
	})
	if err != nil {
		return nil, fmt.Errorf("finding mirror: %w", err)
	}

	for _, c := range candidates {
		if c.ID != e.ID && c.TargetAccountID != nil && *c.TargetAccountID == e.AccountID {
			return c, nil
		}
	}

	return nil, nil
}

func (s *Service) mutate(ctx context.Context, op string, fn func(Mutation) error) error {
	m, err := s.repo.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", op, err)
	}
	defer m.Rollback()

	if err := fn(m); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := m.Commit(); err != nil {
		return &CommitError{Op: op, Err: err}
	}

	return nil
}

func newEntry(p CreateParams, amount decimal.Decimal) *Entry {
	return &Entry{
		ID:              uuid.New(),
		Amount:          amount,
		Date:            p.Date,
		Usage:           p.Usage,
		Category:        p.Category,
		AccountID:       p.AccountID,
		TargetAccountID: p.TargetAccountID,
		Kind:            p.Kind,
	}
}

// mirrorOf builds the counter leg of transfer e on its target account.
func mirrorOf(e *Entry) *Entry {
	source := e.AccountID

	return &Entry{
		ID:              uuid.New(),
		Amount:          e.Amount.Neg(),
		Date:            e.Date,
		Usage:           e.Usage,
		Category:        e.Category,
		AccountID:       *e.TargetAccountID,
		TargetAccountID: &source,
		Kind:            KindTransfer,
	}
}

func paramsOf(e *Entry) CreateParams {
	return CreateParams{
		Kind:            e.Kind,
		Amount:          e.Amount,
		Category:        e.Category,
		AccountID:       e.AccountID,
		TargetAccountID: e.TargetAccountID,
		Usage:           e.Usage,
		Date:            e.Date,
	}
}

func dayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1).Add(-time.Nanosecond)
}
