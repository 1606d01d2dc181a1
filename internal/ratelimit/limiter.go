package ratelimit

import "context"

// RateLimiter bounds how often a caller identified by key may act within a
// fixed window.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}
