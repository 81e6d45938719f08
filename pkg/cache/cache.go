package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a typed TTL cache over Redis. Values are JSON-encoded, so T must
// round-trip through encoding/json.
type Cache[T any] struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// New creates a cache whose keys are namespaced with prefix and whose
// entries expire after ttl. A zero ttl stores entries without expiration.
func New[T any](client *redis.Client, prefix string, ttl time.Duration) *Cache[T] {
	return &Cache[T]{client: client, prefix: prefix, ttl: ttl}
}

func (c *Cache[T]) key(k string) string {
	return c.prefix + ":" + k
}

// Get returns the cached value for key, or ErrCacheMiss.
func (c *Cache[T]) Get(ctx context.Context, key string) (T, error) {
	var zero T
	raw, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return zero, ErrCacheMiss
		}
		return zero, err
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return zero, errors.Join(ErrDecoding, err)
	}
	return v, nil
}

// Set stores value under key with the cache's TTL.
func (c *Cache[T]) Set(ctx context.Context, key string, value T) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return errors.Join(ErrEncoding, err)
	}
	return c.client.Set(ctx, c.key(key), raw, c.ttl).Err()
}

// Delete removes key from the cache. Deleting a missing key is not an error.
func (c *Cache[T]) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.key(key)).Err()
}
