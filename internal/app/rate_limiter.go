package app

import (
	"context"
	"log"
	"strings"
	"time"

	"kentei-quiz-service/internal/domain"
)

// RateLimiter is a fixed window request counter per caller identity, kept in the cache.
type RateLimiter struct {
	cache  Cache
	window time.Duration
	max    int64
}

func NewRateLimiter(cache Cache, window time.Duration, max int) *RateLimiter {
	if window <= 0 {
		window = 60 * time.Second
	}
	if max <= 0 {
		max = 10
	}
	return &RateLimiter{cache: cache, window: window, max: int64(max)}
}

// Allow returns domain.ErrRateLimited once identity exceeds the window budget.
// An empty identity is not limited; cache failures let the request through.
func (l *RateLimiter) Allow(ctx context.Context, identity string) error {
	if l == nil {
		return nil
	}
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return nil
	}
	count, err := l.cache.Incr(ctx, "rate_"+identity, l.window)
	if err != nil {
		log.Printf("ratelimit: counter for %s: %v", identity, err)
		return nil
	}
	if count > l.max {
		log.Printf("ratelimit: throttling %s (%d requests)", identity, count)
		return domain.ErrRateLimited
	}
	return nil
}
