// Copyright (c) 2026 Crescendo. All rights reserved.

package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an expiry-aware in-process [Store].
//
// It exists for tests and single-process development runs; production always
// uses [RedisStore] so that revocations and catalog tokens are shared across
// server instances.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry)}
}

// Get returns the value for key, honoring per-entry expiry.
func (store *MemoryStore) Get(_ context.Context, key string) (string, error) {
	store.mu.RLock()
	entry, found := store.entries[key]
	store.mu.RUnlock()

	if !found {
		return "", ErrMiss
	}

	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		// Lazy expiry: drop the stale entry on first read past its TTL.
		store.mu.Lock()
		delete(store.entries, key)
		store.mu.Unlock()
		return "", ErrMiss
	}

	return entry.value, nil
}

// Set stores value under key with the given TTL.
func (store *MemoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}

	store.mu.Lock()
	store.entries[key] = entry
	store.mu.Unlock()
	return nil
}

// Delete removes key.
func (store *MemoryStore) Delete(_ context.Context, key string) error {
	store.mu.Lock()
	delete(store.entries, key)
	store.mu.Unlock()
	return nil
}

// Len reports the number of live entries. Test helper.
func (store *MemoryStore) Len() int {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return len(store.entries)
}
