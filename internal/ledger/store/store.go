package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/cashbook/internal/ledger"
)

type Store struct {
	db *sql.DB

	scopeOnce sync.Once
	scoped    bool
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanEntry reads an entry row from the scanner.
// Expected column order: id, amount, date, usage, category, account_id, target_account_id, kind, created_at, updated_at
func scanEntry(s scanner) (*ledger.Entry, error) {
	var e ledger.Entry

	var kind string

	if err := s.Scan(
		&e.ID, &e.Amount, &e.Date, &e.Usage, &e.Category,
		&e.AccountID, &e.TargetAccountID, &kind,
		&e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, err
	}

	e.Kind = ledger.Kind(kind)

	return &e, nil
}

const selectEntryColumns = `
	e.id, e.amount, e.date, e.usage, e.category,
	e.account_id, e.target_account_id, e.kind, e.created_at, e.updated_at
`

func (s *Store) GetEntry(ctx context.Context, id uuid.UUID) (*ledger.Entry, error) {
	query := `SELECT ` + selectEntryColumns + ` FROM entries e WHERE e.id = $1`

	e, err := scanEntry(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrNotFound
		}

		return nil, fmt.Errorf("getting entry: %w", err)
	}

	return e, nil
}

func (s *Store) ListEntries(ctx context.Context, filter ledger.EntryFilter) ([]*ledger.Entry, error) {
	return findEntries(ctx, s.db, filter)
}

func findEntries(ctx context.Context, q querier, filter ledger.EntryFilter) ([]*ledger.Entry, error) {
	query := `SELECT ` + selectEntryColumns + ` FROM entries e WHERE TRUE`

	var args []any

	argIdx := 1

	if filter.AccountID != nil {
		query += fmt.Sprintf(" AND e.account_id = $%d", argIdx)

		args = append(args, *filter.AccountID)
		argIdx++
	}

	if filter.Kind != nil {
		query += fmt.Sprintf(" AND e.kind = $%d", argIdx)

		args = append(args, string(*filter.Kind))
		argIdx++
	}

	if filter.From != nil {
		query += fmt.Sprintf(" AND e.date >= $%d", argIdx)

		args = append(args, *filter.From)
		argIdx++
	}

	if filter.To != nil {
		query += fmt.Sprintf(" AND e.date <= $%d", argIdx)

		args = append(args, *filter.To)
		argIdx++
	}

	if filter.Amount != nil {
		query += fmt.Sprintf(" AND ABS(e.amount - $%d) <= $%d", argIdx, argIdx+1)

		args = append(args, *filter.Amount, filter.Tolerance)
		argIdx += 2
	}

	query += " ORDER BY e.date ASC, e.created_at ASC"

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	defer rows.Close()

	var entries []*ledger.Entry

	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entry rows: %w", err)
	}

	return entries, nil
}

const selectAccountColumns = `id, group_id, name, kind, included_in_balance, sort_order`

func scanAccount(s scanner) (*ledger.Account, error) {
	var a ledger.Account

	var kind string

	if err := s.Scan(&a.ID, &a.GroupID, &a.Name, &kind, &a.IncludedInBalance, &a.Order); err != nil {
		return nil, err
	}

	a.Kind = ledger.AccountKind(kind)

	return &a, nil
}

func (s *Store) GetAccount(ctx context.Context, id uuid.UUID) (*ledger.Account, error) {
	query := `SELECT ` + selectAccountColumns + ` FROM accounts WHERE id = $1`

	a, err := scanAccount(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrNotFound
		}

		return nil, fmt.Errorf("getting account: %w", err)
	}

	return a, nil
}

func (s *Store) ListAccounts(ctx context.Context, groupID *uuid.UUID) ([]*ledger.Account, error) {
	query := `SELECT ` + selectAccountColumns + ` FROM accounts`

	var args []any

	if groupID != nil {
		query += ` WHERE group_id = $1`

		args = append(args, *groupID)
	}

	query += ` ORDER BY sort_order ASC, name ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*ledger.Account

	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}

		accounts = append(accounts, a)
	}

	return accounts, rows.Err()
}

func (s *Store) CreateAccount(ctx context.Context, a *ledger.Account) error {
	query := `
		INSERT INTO accounts (group_id, name, kind, included_in_balance, sort_order)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := s.db.QueryRowContext(ctx, query,
		a.GroupID, a.Name, string(a.Kind), a.IncludedInBalance, a.Order,
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("creating account: %w", err)
	}

	return nil
}

func (s *Store) ListGroups(ctx context.Context) ([]*ledger.Group, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, sort_order FROM groups ORDER BY sort_order ASC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing groups: %w", err)
	}
	defer rows.Close()

	var groups []*ledger.Group

	for rows.Next() {
		var g ledger.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.Order); err != nil {
			return nil, fmt.Errorf("scanning group: %w", err)
		}

		groups = append(groups, &g)
	}

	return groups, rows.Err()
}

func (s *Store) CreateGroup(ctx context.Context, g *ledger.Group) error {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO groups (name, sort_order) VALUES ($1, $2) RETURNING id`,
		g.Name, g.Order,
	).Scan(&g.ID)
	if err != nil {
		return fmt.Errorf("creating group: %w", err)
	}

	return nil
}

// scopedCategories reports whether the categories table carries a group_id
// column. Older databases only know global categories.
func (s *Store) scopedCategories(ctx context.Context) bool {
	s.scopeOnce.Do(func() {
		query := `
			SELECT EXISTS (
				SELECT 1 FROM information_schema.columns
				WHERE table_name = 'categories' AND column_name = 'group_id'
			)
		`
		if err := s.db.QueryRowContext(ctx, query).Scan(&s.scoped); err != nil {
			s.scoped = false
		}
	})

	return s.scoped
}

func (s *Store) GetCategory(ctx context.Context, id uuid.UUID) (*ledger.Category, error) {
	var c ledger.Category

	var err error

	if s.scopedCategories(ctx) {
		err = s.db.QueryRowContext(ctx,
			`SELECT id, name, group_id FROM categories WHERE id = $1`, id,
		).Scan(&c.ID, &c.Name, &c.GroupID)
	} else {
		err = s.db.QueryRowContext(ctx,
			`SELECT id, name FROM categories WHERE id = $1`, id,
		).Scan(&c.ID, &c.Name)
	}

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrNotFound
		}

		return nil, fmt.Errorf("getting category: %w", err)
	}

	return &c, nil
}

// FindCategory looks the name up case-insensitively. A group-scoped match
// wins over a global one.
func (s *Store) FindCategory(ctx context.Context, name string, groupID *uuid.UUID) (*ledger.Category, error) {
	var c ledger.Category

	var err error

	if s.scopedCategories(ctx) && groupID != nil {
		query := `
			SELECT id, name, group_id FROM categories
			WHERE LOWER(name) = LOWER($1) AND (group_id = $2 OR group_id IS NULL)
			ORDER BY group_id NULLS LAST
			LIMIT 1
		`
		err = s.db.QueryRowContext(ctx, query, name, *groupID).Scan(&c.ID, &c.Name, &c.GroupID)
	} else {
		query := `SELECT id, name FROM categories WHERE LOWER(name) = LOWER($1) LIMIT 1`
		err = s.db.QueryRowContext(ctx, query, name).Scan(&c.ID, &c.Name)
	}

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrNotFound
		}

		return nil, fmt.Errorf("finding category: %w", err)
	}

	return &c, nil
}

func (s *Store) CreateCategory(ctx context.Context, c *ledger.Category) error {
	var err error

	if s.scopedCategories(ctx) {
		err = s.db.QueryRowContext(ctx,
			`INSERT INTO categories (name, group_id) VALUES ($1, $2) RETURNING id`,
			c.Name, c.GroupID,
		).Scan(&c.ID)
	} else {
		c.GroupID = nil
		err = s.db.QueryRowContext(ctx,
			`INSERT INTO categories (name) VALUES ($1) RETURNING id`, c.Name,
		).Scan(&c.ID)
	}

	if err != nil {
		return fmt.Errorf("creating category: %w", err)
	}

	return nil
}

type mutation struct {
	tx     *sql.Tx
	scoped bool
}

func (s *Store) Begin(ctx context.Context) (ledger.Mutation, error) {
	scoped := s.scopedCategories(ctx)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning mutation: %w", err)
	}

	return &mutation{tx: tx, scoped: scoped}, nil
}

func (m *mutation) Commit() error   { return m.tx.Commit() }
func (m *mutation) Rollback() error { return m.tx.Rollback() }

func (m *mutation) FindEntries(ctx context.Context, filter ledger.EntryFilter) ([]*ledger.Entry, error) {
	return findEntries(ctx, m.tx, filter)
}

func (m *mutation) CreateEntries(ctx context.Context, entries []*ledger.Entry) error {
	query := `
		INSERT INTO entries (id, amount, date, usage, category, account_id, target_account_id, kind, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING created_at
	`

	for _, e := range entries {
		err := m.tx.QueryRowContext(ctx, query,
			e.ID,
			e.Amount,
			e.Date,
			e.Usage,
			e.Category,
			e.AccountID,
			e.TargetAccountID,
			string(e.Kind),
		).Scan(&e.CreatedAt)
		if err != nil {
			return fmt.Errorf("creating entry: %w", err)
		}
	}

	return nil
}

func (m *mutation) UpdateEntry(ctx context.Context, e *ledger.Entry) error {
	query := `
		UPDATE entries
		SET amount = $1, date = $2, usage = $3, category = $4,
			target_account_id = $5, kind = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING updated_at
	`

	err := m.tx.QueryRowContext(ctx, query,
		e.Amount,
		e.Date,
		e.Usage,
		e.Category,
		e.TargetAccountID,
		string(e.Kind),
		e.ID,
	).Scan(&e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ledger.ErrNotFound
		}

		return fmt.Errorf("updating entry: %w", err)
	}

	return nil
}

func (m *mutation) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	res, err := m.tx.ExecContext(ctx, `DELETE FROM entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting entry: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return ledger.ErrNotFound
	}

	return nil
}

func (m *mutation) DeleteInvalidEntries(ctx context.Context) (int, error) {
	kinds := make([]string, len(ledger.Kinds))
	for i, k := range ledger.Kinds {
		kinds[i] = string(k)
	}

	res, err := m.tx.ExecContext(ctx,
		`DELETE FROM entries WHERE amount = $1 OR kind IS NULL OR NOT (kind = ANY($2))`,
		decimal.Zero, kinds,
	)
	if err != nil {
		return 0, fmt.Errorf("deleting invalid entries: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted entries: %w", err)
	}

	return int(n), nil
}

// ReassignCategory moves entries labelled with from to the category named to.
// A group-scoped category only touches entries of that group's accounts.
func (m *mutation) ReassignCategory(ctx context.Context, from *ledger.Category, to string) error {
	query := `UPDATE entries SET category = $1, updated_at = NOW() WHERE LOWER(category) = LOWER($2)`
	args := []any{to, from.Name}

	if m.scoped && from.GroupID != nil {
		query += ` AND account_id IN (SELECT id FROM accounts WHERE group_id = $3)`

		args = append(args, *from.GroupID)
	}

	if _, err := m.tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("reassigning category: %w", err)
	}

	return nil
}

func (m *mutation) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := m.tx.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting category: %w", err)
	}

	return nil
}
