package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileCreatesAndPersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "prefs.json")
	store := NewFile(path)
	assert.Equal(t, path, store.Path())

	_, ok, err := store.Get(ctx, "userCurrency")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "userCurrency", "GBP"))
	require.NoError(t, store.Set(ctx, "other", "x"))

	reopened := NewFile(path)
	value, ok, err := reopened.Get(ctx, "userCurrency")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "GBP", value)

	require.NoError(t, reopened.Delete(ctx, "userCurrency"))
	_, ok, err = store.Get(ctx, "userCurrency")
	require.NoError(t, err)
	assert.False(t, ok)

	value, ok, err = store.Get(ctx, "other")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "x", value)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestFileEmptyAndCorrupt(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))
	_, ok, err := NewFile(empty).Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	corrupt := filepath.Join(dir, "corrupt.json")
	require.NoError(t, os.WriteFile(corrupt, []byte("{not json"), 0o600))
	store := NewFile(corrupt)
	_, _, err = store.Get(ctx, "k")
	assert.Error(t, err)
	assert.Error(t, store.Set(ctx, "k", "v"))
	assert.Error(t, store.Delete(ctx, "k"))
}

func TestFileDeleteMissingKeyDoesNotWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	require.NoError(t, NewFile(path).Delete(context.Background(), "k"))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestFileHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := NewFile(filepath.Join(t.TempDir(), "prefs.json"))

	assert.ErrorIs(t, store.Set(ctx, "k", "v"), context.Canceled)
	_, _, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}
