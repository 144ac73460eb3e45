package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dpatel/binance-collector/internal/snapshot"
)

// LatestCache keeps the most recent payload per query prefix so
// downstream consumers can read fresh data without scanning the data
// directory.
type LatestCache interface {
	Name() string
	Record(ctx context.Context, rec snapshot.SavedRecord, payload []byte) error
	Close() error
}

type redisLatestCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisLatestCache builds a cache keyed by query prefix.
func NewRedisLatestCache(addr, password string, db int, ttl time.Duration, prefix string) (LatestCache, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis addr is required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if prefix == "" {
		prefix = "latest"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &redisLatestCache{client: client, ttl: ttl, prefix: prefix}, nil
}

func (c *redisLatestCache) key(queryPrefix string) string {
	return fmt.Sprintf("%s:%s", c.prefix, queryPrefix)
}

func (c *redisLatestCache) Name() string {
	return "redis"
}

func (c *redisLatestCache) Record(ctx context.Context, rec snapshot.SavedRecord, payload []byte) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Set(ctx, c.key(rec.Prefix), payload, c.ttl).Err()
}

func (c *redisLatestCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
