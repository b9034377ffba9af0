package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tair/retail-ledger/internal/ledger/usecase/query"
)

// RedisSummaryCache keeps rendered projections in redis
type RedisSummaryCache struct {
	rdb *redis.Client
}

// NewRedisSummaryCache creates a new redis cache
func NewRedisSummaryCache(rdb *redis.Client) *RedisSummaryCache {
	return &RedisSummaryCache{rdb: rdb}
}

// Get returns query.ErrCacheMiss when the key is absent
func (c *RedisSummaryCache) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, query.ErrCacheMiss
	}
	return raw, err
}

// Set stores value for ttl
func (c *RedisSummaryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, value, ttl).Err()
}
