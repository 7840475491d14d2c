// Copyright (c) 2026 Crescendo. All rights reserved.

/*
Package cache provides the key-value store abstraction shared by both core
subsystems: the access-token blacklist and the external catalog's response
and service-token caches.

Architecture:

  - Store: a minimal get/set-with-TTL/delete contract.
  - RedisStore: the production backend.
  - MemoryStore: an expiry-aware in-process backend used by tests.

Every entry carries a TTL; nothing in this package is ever deleted manually
in production paths — entries self-expire.
*/
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by [Store.Get] when a key is absent or has expired.
//
// Callers must distinguish it from connectivity errors: a miss is a normal
// outcome, a connectivity error is not.
var ErrMiss = errors.New("cache: key not found")

// Store is the contract both subsystems depend on.
//
// # Implementations
//
// [RedisStore] in production, [MemoryStore] in tests. Components accept a
// Store, never a concrete Redis client, so tests can substitute fakes.
type Store interface {
	// Get returns the value for key, or [ErrMiss].
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key. A positive ttl bounds the entry's lifetime;
	// a zero ttl stores it without expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
