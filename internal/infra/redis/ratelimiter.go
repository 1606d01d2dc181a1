package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kursadbilgin/dispatch-console/internal/ratelimit"
	goredis "github.com/redis/go-redis/v9"
)

const (
	defaultLimitPerSec int64 = 5
	windowSeconds            = 1
)

var allowScript = goredis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[2])
end
if current > tonumber(ARGV[1]) then
  return 0
end
return 1
`)

var _ ratelimit.RateLimiter = (*RedisRateLimiter)(nil)

// RedisRateLimiter is a fixed one-second window limiter shared by every API
// instance. Counters live under ratelimit:<scope>:<key>:<unix-second>.
type RedisRateLimiter struct {
	client      *goredis.Client
	scope       string
	limitPerSec int64
	now         func() time.Time
	script      *goredis.Script
}

func NewRedisRateLimiter(client *goredis.Client, scope string, limitPerSec int) (*RedisRateLimiter, error) {
	return newRedisRateLimiter(client, scope, int64(limitPerSec), time.Now)
}

func newRedisRateLimiter(
	client *goredis.Client,
	scope string,
	limitPerSec int64,
	nowFn func() time.Time,
) (*RedisRateLimiter, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	scope = strings.ToLower(strings.TrimSpace(scope))
	if scope == "" {
		return nil, fmt.Errorf("rate limit scope is required")
	}
	if limitPerSec <= 0 {
		limitPerSec = defaultLimitPerSec
	}
	if nowFn == nil {
		nowFn = time.Now
	}

	return &RedisRateLimiter{
		client:      client,
		scope:       scope,
		limitPerSec: limitPerSec,
		now:         nowFn,
		script:      allowScript,
	}, nil
}

func (r *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if r == nil || r.client == nil || r.script == nil {
		return false, fmt.Errorf("rate limiter is not initialized")
	}

	normalizedKey := strings.ToLower(strings.TrimSpace(key))
	if normalizedKey == "" {
		return false, fmt.Errorf("rate limit key is required")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	redisKey := fmt.Sprintf("ratelimit:%s:%s:%d", r.scope, normalizedKey, r.now().UTC().Unix())
	result, err := r.script.Run(ctx, r.client, []string{redisKey}, r.limitPerSec, windowSeconds).Int()
	if err != nil {
		return false, fmt.Errorf("failed to evaluate rate limit: %w", err)
	}

	return result == 1, nil
}
