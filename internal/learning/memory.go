package learning

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepository keeps rules in process memory.
type MemoryRepository struct {
	mu    sync.RWMutex
	rules map[string]Rule
}

func NewMemoryRepository(rules ...*Rule) *MemoryRepository {
	m := &MemoryRepository{rules: make(map[string]Rule, len(rules))}
	for _, r := range rules {
		m.rules[r.Pattern] = *r
	}

	return m
}

func (m *MemoryRepository) Get(_ context.Context, pattern string) (*Rule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.rules[pattern]
	if !ok {
		return nil, ErrNotFound
	}

	return &r, nil
}

func (m *MemoryRepository) Upsert(_ context.Context, r *Rule) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rules[r.Pattern] = *r

	return nil
}

func (m *MemoryRepository) All(_ context.Context) ([]*Rule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rules := make([]*Rule, 0, len(m.rules))
	for _, r := range m.rules {
		rules = append(rules, &r)
	}

	sort.Slice(rules, func(i, j int) bool { return rules[i].Pattern < rules[j].Pattern })

	return rules, nil
}
