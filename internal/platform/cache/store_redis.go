// Copyright (c) 2026 Crescendo. All rights reserved.

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements [Store] on top of a shared go-redis client.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an already-connected Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

/*
Get returns the value stored under key.

Description: Returns [ErrMiss] if the key is absent or its TTL has lapsed.

Parameters:
  - ctx: context.Context
  - key: string

Returns:
  - string: Stored value
  - error: ErrMiss or connectivity errors
*/
func (store *RedisStore) Get(ctx context.Context, key string) (string, error) {
	value, err := store.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrMiss
		}
		return "", fmt.Errorf("cache_get_failed: %w", err)
	}
	return value, nil
}

/*
Set stores value under key with the given TTL.

Parameters:
  - ctx: context.Context
  - key: string
  - value: string
  - ttl: time.Duration (zero means no expiry)

Returns:
  - error: Storage failures
*/
func (store *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := store.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("cache_set_failed: %w", err)
	}
	return nil
}

/*
Delete removes the key.

Parameters:
  - ctx: context.Context
  - key: string

Returns:
  - error: Deletion failures
*/
func (store *RedisStore) Delete(ctx context.Context, key string) error {
	if err := store.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("cache_delete_failed: %w", err)
	}
	return nil
}
