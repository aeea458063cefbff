package filestore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/cashbook/internal/learning"
	"github.com/MrJamesThe3rd/cashbook/internal/learning/filestore"
)

func TestStore_PersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "rules.yaml")

	s, err := filestore.Open(path)
	require.NoError(t, err)

	svc := learning.NewService(s)
	require.NoError(t, svc.Learn(ctx, "Stadtwerke Abschlag", "Utilities"))
	require.NoError(t, svc.Learn(ctx, "Stadtwerke Abschlag", "Utilities"))

	reopened, err := filestore.Open(path)
	require.NoError(t, err)

	r, err := reopened.Get(ctx, "stadtwerke abschlag")
	require.NoError(t, err)
	assert.Equal(t, 2, r.Count)
	assert.Equal(t, "Utilities", r.Category)
	assert.Equal(t, "Stadtwerke Abschlag", r.ExampleUsage)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "exampleUsage: Stadtwerke Abschlag")
}

func TestStore_MissingFile(t *testing.T) {
	s, err := filestore.Open(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)

	_, err = s.Get(context.Background(), "x")
	assert.ErrorIs(t, err, learning.ErrNotFound)

	rules, err := s.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestStore_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pattern: [unclosed"), 0o600))

	_, err := filestore.Open(path)
	assert.Error(t, err)
}
