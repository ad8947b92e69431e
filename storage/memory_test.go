package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemory(0)

	_, ok, err := store.Get(ctx, "userCurrency")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "userCurrency", "EUR"))
	value, ok, err := store.Get(ctx, "userCurrency")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "EUR", value)

	require.NoError(t, store.Delete(ctx, "userCurrency"))
	_, ok, err = store.Get(ctx, "userCurrency")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, store.Delete(ctx, "missing"))
}

func TestMemoryExpires(t *testing.T) {
	ctx := context.Background()
	store := NewMemory(20 * time.Millisecond)
	require.NoError(t, store.Set(ctx, "userCurrency", "JPY"))

	assert.Eventually(t, func() bool {
		_, ok, err := store.Get(ctx, "userCurrency")
		return err == nil && !ok
	}, time.Second, 10*time.Millisecond)
}

func TestMemoryHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := NewMemory(0)

	_, _, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, store.Set(ctx, "k", "v"), context.Canceled)
	assert.ErrorIs(t, store.Delete(ctx, "k"), context.Canceled)
}
