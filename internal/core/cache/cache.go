// Package cache defines the key/value cache contract used for read-side projections.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// Cache stores opaque values with a TTL. Implementations: redis and in-process memory.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
}

// GetOrSet returns the cached JSON value of key, or loads, stores and returns it.
// Cache faults never fail the call; the loader result is returned instead.
func GetOrSet[T any](ctx context.Context, c Cache, key string, ttl time.Duration, load func(ctx context.Context) (T, error)) (T, error) {
	if c == nil {
		return load(ctx)
	}

	if data, err := c.Get(ctx, key); err == nil {
		var cached T
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	if data, err := json.Marshal(value); err == nil {
		_ = c.Set(ctx, key, data, ttl)
	}
	return value, nil
}
