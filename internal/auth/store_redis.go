// Copyright (c) 2026 Crescendo. All rights reserved.

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/crescendofm/crescendo/internal/platform/cache"
	"github.com/crescendofm/crescendo/internal/platform/constants"
)

// CacheBlacklist implements the [Blacklist] interface on top of a shared
// [cache.Store]. In production the store is Redis, so every API instance
// sees a revocation the moment it is written.
type CacheBlacklist struct {
	store cache.Store
}

// NewBlacklist creates a [CacheBlacklist] backed by the given store.
func NewBlacklist(store cache.Store) *CacheBlacklist {
	return &CacheBlacklist{store: store}
}

// Revoke records the raw token for the given duration.
//
// # Parameters
//   - ctx: Context for the cache operation.
//   - token: The raw (still-signed) access token string.
//   - ttl: How long the entry must outlive; aligned to the token's
//     remaining lifetime by the caller.
func (blacklist *CacheBlacklist) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	key := constants.RedisPrefixBlacklist + token
	if err := blacklist.store.Set(ctx, key, "revoked", ttl); err != nil {
		return fmt.Errorf("blacklist_revoke_failed: %w", err)
	}
	return nil
}

// IsRevoked reports whether the raw token has been blacklisted.
//
// # Returns
//   - (false, nil) when the token is absent from the deny list.
//   - (true, nil) when the token has been revoked.
//   - (false, err) when the store is unreachable. Callers fail closed.
func (blacklist *CacheBlacklist) IsRevoked(ctx context.Context, token string) (bool, error) {
	key := constants.RedisPrefixBlacklist + token
	_, err := blacklist.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, cache.ErrMiss) {
			return false, nil
		}
		return false, fmt.Errorf("blacklist_lookup_failed: %w", err)
	}
	return true, nil
}
