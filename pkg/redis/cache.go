package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a thin byte-oriented wrapper over a Redis client for read-through
// caching. A missing key is reported as (nil, nil) rather than an error.
type Cache struct {
	db redis.UniversalClient
}

// NewCache wraps an established client.
func NewCache(client redis.UniversalClient) *Cache {
	return &Cache{db: client}
}

// Get returns the cached value, or nil when the key does not exist.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.db.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return val, err
}

// Set stores a value with an expiration. Zero expiration means no expiry.
func (c *Cache) Set(ctx context.Context, key string, val []byte, exp time.Duration) error {
	return c.db.Set(ctx, key, val, exp).Err()
}

// Delete removes a key; deleting a missing key is not an error.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.db.Del(ctx, key).Err()
}
