// Package filestore persists learning rules as a YAML list, for setups that
// run without a database.
package filestore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/MrJamesThe3rd/cashbook/internal/learning"
)

type Store struct {
	path string

	mu    sync.Mutex
	rules map[string]learning.Rule
}

// Open loads the rules at path. A missing file starts an empty store that is
// created on the first write.
func Open(path string) (*Store, error) {
	s := &Store{path: path, rules: make(map[string]learning.Rule)}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}

	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}

	var rules []learning.Rule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parsing rules file: %w", err)
	}

	for _, r := range rules {
		s.rules[r.Pattern] = r
	}

	return s, nil
}

func (s *Store) Get(_ context.Context, pattern string) (*learning.Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rules[pattern]
	if !ok {
		return nil, learning.ErrNotFound
	}

	return &r, nil
}

func (s *Store) Upsert(_ context.Context, r *learning.Rule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.rules[r.Pattern]
	s.rules[r.Pattern] = *r

	if err := s.flush(); err != nil {
		if existed {
			s.rules[r.Pattern] = prev
		} else {
			delete(s.rules, r.Pattern)
		}

		return err
	}

	return nil
}

func (s *Store) All(_ context.Context) ([]*learning.Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*learning.Rule, 0, len(s.rules))
	for _, r := range s.sorted() {
		out = append(out, &r)
	}

	return out, nil
}

func (s *Store) sorted() []learning.Rule {
	rules := make([]learning.Rule, 0, len(s.rules))
	for _, r := range s.rules {
		rules = append(rules, r)
	}

	sort.Slice(rules, func(i, j int) bool { return rules[i].Pattern < rules[j].Pattern })

	return rules
}

// flush rewrites the file through a temp file so readers never see a
// partial list. Callers hold mu.
func (s *Store) flush() error {
	var buf bytes.Buffer

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	if err := enc.Encode(s.sorted()); err != nil {
		return fmt.Errorf("encoding rules: %w", err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("encoding rules: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".rules-*.yaml")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("writing rules: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing rules: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing rules file: %w", err)
	}

	return nil
}
