package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keySetKeyPrefix = "jwks:"

// ErrCacheMiss is returned when a key is not present in the cache.
var ErrCacheMiss = errors.New("cache miss")

// GetKeySet retrieves raw JWKS JSON cached for the given URL.
// Returns ErrCacheMiss if absent or expired.
func (c *Cache) GetKeySet(ctx context.Context, jwksURL string) ([]byte, error) {
	raw, err := c.client.Get(ctx, keySetKeyPrefix+jwksURL).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return raw, nil
}

// SetKeySet stores raw JWKS JSON for the given URL with a bounded TTL.
func (c *Cache) SetKeySet(ctx context.Context, jwksURL string, raw []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := c.client.Set(ctx, keySetKeyPrefix+jwksURL, raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache key set: %w", err)
	}
	return nil
}
