package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIdempotencyStore_MarkApplied(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	t.Run("records a new key", func(t *testing.T) {
		isNew, err := store.MarkApplied(ctx, "key-1", "result-1", time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)
	})

	t.Run("returns false for an already recorded key", func(t *testing.T) {
		isNew, err := store.MarkApplied(ctx, "key-2", "result-2", time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)

		isNew, err = store.MarkApplied(ctx, "key-2", "other-result", time.Hour)
		require.NoError(t, err)
		assert.False(t, isNew)

		// the original result stays
		result, found, err := store.AppliedResult(ctx, "key-2")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "result-2", result)
	})

	t.Run("allows re-recording after expiration", func(t *testing.T) {
		isNew, err := store.MarkApplied(ctx, "key-3", "result-3", 10*time.Millisecond)
		require.NoError(t, err)
		assert.True(t, isNew)

		time.Sleep(20 * time.Millisecond)

		isNew, err = store.MarkApplied(ctx, "key-3", "result-3b", 10*time.Millisecond)
		require.NoError(t, err)
		assert.True(t, isNew)
	})
}

func TestInMemoryIdempotencyStore_AppliedResult(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	t.Run("unknown key is not found", func(t *testing.T) {
		_, found, err := store.AppliedResult(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("recorded key returns its result", func(t *testing.T) {
		_, err := store.MarkApplied(ctx, "key-4", "sub-order-id", time.Hour)
		require.NoError(t, err)

		result, found, err := store.AppliedResult(ctx, "key-4")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "sub-order-id", result)
	})

	t.Run("expired key is not found", func(t *testing.T) {
		_, err := store.MarkApplied(ctx, "key-5", "result-5", 10*time.Millisecond)
		require.NoError(t, err)

		time.Sleep(20 * time.Millisecond)

		_, found, err := store.AppliedResult(ctx, "key-5")
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestInMemoryIdempotencyStore_Cleanup(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()
	_, err := store.MarkApplied(ctx, "short", "r", 5*time.Millisecond)
	require.NoError(t, err)
	_, err = store.MarkApplied(ctx, "long", "r", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 2, store.Size())

	time.Sleep(20 * time.Millisecond)
	store.cleanup()
	assert.Equal(t, 1, store.Size())
}

func TestInMemoryIdempotencyStore_CloseIsIdempotent(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
}
