package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MrJamesThe3rd/cashbook/internal/learning"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Get(ctx context.Context, pattern string) (*learning.Rule, error) {
	query := `
		SELECT pattern, category, example_usage, count
		FROM learning_rules
		WHERE pattern = $1
	`

	var r learning.Rule

	err := s.db.QueryRowContext(ctx, query, pattern).Scan(&r.Pattern, &r.Category, &r.ExampleUsage, &r.Count)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, learning.ErrNotFound
		}

		return nil, fmt.Errorf("getting rule: %w", err)
	}

	return &r, nil
}

func (s *Store) Upsert(ctx context.Context, r *learning.Rule) error {
	query := `
		INSERT INTO learning_rules (pattern, category, example_usage, count, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (pattern) DO UPDATE
		SET category = EXCLUDED.category, count = EXCLUDED.count, updated_at = NOW()
	`

	if _, err := s.db.ExecContext(ctx, query, r.Pattern, r.Category, r.ExampleUsage, r.Count); err != nil {
		return fmt.Errorf("upserting rule: %w", err)
	}

	return nil
}

func (s *Store) All(ctx context.Context) ([]*learning.Rule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT pattern, category, example_usage, count
		FROM learning_rules
		ORDER BY pattern ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("listing rules: %w", err)
	}
	defer rows.Close()

	var rules []*learning.Rule

	for rows.Next() {
		var r learning.Rule
		if err := rows.Scan(&r.Pattern, &r.Category, &r.ExampleUsage, &r.Count); err != nil {
			return nil, fmt.Errorf("scanning rule: %w", err)
		}

		rules = append(rules, &r)
	}

	return rules, rows.Err()
}
