package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appscans "github.com/bryanwahyu/leakbridge/internal/application/scans"
	domain "github.com/bryanwahyu/leakbridge/internal/domain/scans"
)

func result(id string) *appscans.Result {
	return &appscans.Result{
		ID:       id,
		Kind:     domain.KindDir,
		Target:   "/src",
		Output:   "raw output with ghp_token",
		Findings: []domain.Finding{{RuleID: "github-pat", Secret: "ghp_token", Match: "t=ghp_token"}},
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(time.Minute)

	_, err := m.Last(ctx)
	assert.ErrorIs(t, err, appscans.ErrNoResult)

	require.NoError(t, m.Put(ctx, result("a")))
	require.NoError(t, m.Put(ctx, result("b")))

	last, err := m.Last(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", last.ID)
	assert.Equal(t, domain.Placeholder, last.Findings[0].Secret)
	assert.Empty(t, last.Output)

	got, err := m.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "a", got.ID)

	_, err = m.Get(ctx, "missing")
	assert.ErrorIs(t, err, appscans.ErrNoResult)
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(10 * time.Millisecond)
	require.NoError(t, m.Put(ctx, result("a")))
	time.Sleep(30 * time.Millisecond)
	_, err := m.Get(ctx, "a")
	assert.ErrorIs(t, err, appscans.ErrNoResult)
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "last.json")
	f := NewFile(path)

	_, err := f.Last(ctx)
	assert.ErrorIs(t, err, appscans.ErrNoResult)

	require.NoError(t, f.Put(ctx, result("a")))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "ghp_token")

	last, err := NewFile(path).Last(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", last.ID)
	assert.Equal(t, "github-pat", last.Findings[0].RuleID)

	_, err = f.Get(ctx, "other")
	assert.ErrorIs(t, err, appscans.ErrNoResult)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file renamed away")
}
