package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const (
	defaultCacheTTL = 30 * time.Second
	cacheKeyPrefix  = "stats:v1:"
)

// StatsCache stores computed analytics views as JSON with a fixed TTL.
type StatsCache struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewStatsCache(client *goredis.Client, ttl time.Duration) (*StatsCache, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}

	return &StatsCache{client: client, ttl: ttl}, nil
}

// Get decodes the cached value for key into dest. A miss reports false with
// a nil error.
func (c *StatsCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	raw, err := c.client.Get(ctx, cacheKeyPrefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read stats cache: %w", err)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("failed to decode stats cache entry: %w", err)
	}
	return true, nil
}

func (c *StatsCache) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode stats cache entry: %w", err)
	}

	if err := c.client.Set(ctx, cacheKeyPrefix+key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write stats cache: %w", err)
	}
	return nil
}
