// Copyright (c) 2026 Crescendo. All rights reserved.

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crescendofm/crescendo/internal/platform/cache"
)

/*
TestMemoryStore_RoundTrip covers set, get, overwrite, and delete.
*/
func TestMemoryStore_RoundTrip(t *testing.T) {
	store := cache.NewMemoryStore()
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, cache.ErrMiss)

	require.NoError(t, store.Set(ctx, "key", "one", 0))
	value, err := store.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, "one", value)

	require.NoError(t, store.Set(ctx, "key", "two", 0))
	value, err = store.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, "two", value)

	require.NoError(t, store.Delete(ctx, "key"))
	_, err = store.Get(ctx, "key")
	assert.ErrorIs(t, err, cache.ErrMiss)

	// Deleting an absent key is not an error.
	assert.NoError(t, store.Delete(ctx, "key"))
}

/*
TestMemoryStore_Expiry verifies entries self-expire and are dropped on the
first read past their TTL.
*/
func TestMemoryStore_Expiry(t *testing.T) {
	store := cache.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "short", "gone soon", 10*time.Millisecond))
	require.NoError(t, store.Set(ctx, "forever", "stays", 0))

	value, err := store.Get(ctx, "short")
	require.NoError(t, err)
	assert.Equal(t, "gone soon", value)

	time.Sleep(20 * time.Millisecond)

	_, err = store.Get(ctx, "short")
	assert.ErrorIs(t, err, cache.ErrMiss)
	assert.Equal(t, 1, store.Len()) // Lazy expiry removed the stale entry.

	value, err = store.Get(ctx, "forever")
	require.NoError(t, err)
	assert.Equal(t, "stays", value)
}
