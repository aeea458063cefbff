package learning

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

type Repository interface {
	Get(ctx context.Context, pattern string) (*Rule, error)
	Upsert(ctx context.Context, r *Rule) error
	All(ctx context.Context) ([]*Rule, error)
}

type Service struct {
	repo Repository
	mu   sync.Mutex
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Learn records that usage was filed under category. A known pattern has its
// count bumped and takes over the latest category.
func (s *Service) Learn(ctx context.Context, usage, category string) error {
	pattern := Clean(usage)
	if pattern == "" || strings.TrimSpace(category) == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.repo.Get(ctx, pattern)

	switch {
	case errors.Is(err, ErrNotFound):
		r = &Rule{Pattern: pattern, Category: category, ExampleUsage: usage, Count: 1}
	case err != nil:
		return fmt.Errorf("getting rule: %w", err)
	default:
		r.Count++
		r.Category = category
	}

	if err := s.repo.Upsert(ctx, r); err != nil {
		return fmt.Errorf("saving rule: %w", err)
	}

	return nil
}

// Suggest returns the category learned for usage. An exact pattern match
// wins; otherwise the most used rule whose pattern contains, or is contained
// in, the cleaned usage.
func (s *Service) Suggest(ctx context.Context, usage string) (string, bool, error) {
	pattern := Clean(usage)
	if pattern == "" {
		return "", false, nil
	}

	r, err := s.repo.Get(ctx, pattern)
	if err == nil {
		return r.Category, true, nil
	}

	if !errors.Is(err, ErrNotFound) {
		return "", false, fmt.Errorf("getting rule: %w", err)
	}

	rules, err := s.repo.All(ctx)
	if err != nil {
		return "", false, fmt.Errorf("listing rules: %w", err)
	}

	var best *Rule

	for _, r := range rules {
		if r.Pattern == "" {
			continue
		}

		if !strings.Contains(pattern, r.Pattern) && !strings.Contains(r.Pattern, pattern) {
			continue
		}

		if best == nil || better(r, best) {
			best = r
		}
	}

	if best == nil {
		return "", false, nil
	}

	return best.Category, true, nil
}

func (s *Service) Rules(ctx context.Context) ([]*Rule, error) {
	return s.repo.All(ctx)
}

func better(a, b *Rule) bool {
	if a.Count != b.Count {
		return a.Count > b.Count
	}

	if len(a.Pattern) != len(b.Pattern) {
		return len(a.Pattern) > len(b.Pattern)
	}

	return a.Pattern < b.Pattern
}
