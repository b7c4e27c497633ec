package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// BytesCache is a shared byte-payload cache backed by Redis. It is optional:
// when disabled the acquisition layer relies on the in-process SeriesCache
// alone. Payloads are pre-encoded by the caller, so the cache stays agnostic
// of value types.
type BytesCache struct {
	rdb *redis.Client
}

func NewBytesCache(addr, password string, db int) *BytesCache {
	return &BytesCache{
		rdb: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

// Get returns the payload for key, or absent on miss.
func (c *BytesCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

// Set stores payload under key for ttl.
func (c *BytesCache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, payload, ttl).Err()
}

// Ping verifies connectivity.
func (c *BytesCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *BytesCache) Close() error {
	return c.rdb.Close()
}
