// Package ratelimit counts requests per client in fixed windows aligned to
// the Unix epoch.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrRateLimitExceeded = errors.New("rate limit exceeded")

// Store increments the counter for key, creating it with the given expiry if
// absent. Increments must be atomic across concurrent callers.
type Store interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

type Result struct {
	Allowed    bool
	Exceeded   Rate
	RetryAfter time.Duration
}

type Limiter struct {
	store  Store
	prefix string
	now    func() time.Time
}

func NewLimiter(store Store, prefix string) *Limiter {
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &Limiter{
		store:  store,
		prefix: prefix,
		now:    time.Now,
	}
}

// Allow counts one hit against every rate. The request is rejected when any
// counter goes over its limit; the longest wait among violated rates is
// reported.
func (l *Limiter) Allow(ctx context.Context, key string, rates ...Rate) (Result, error) {
	now := l.now()
	result := Result{Allowed: true}

	for _, rate := range rates {
		window := rate.Period
		if window < time.Second {
			window = time.Second
		}
		slot := now.UnixNano() / int64(window)
		counterKey := fmt.Sprintf("%s:%s:%d:%d", l.prefix, key, int64(window/time.Second), slot)

		count, err := l.store.Incr(ctx, counterKey, window)
		if err != nil {
			return Result{Allowed: true}, fmt.Errorf("increment rate counter failed: %w", err)
		}
		if count <= rate.Limit {
			continue
		}

		retryAfter := time.Unix(0, (slot+1)*int64(window)).Sub(now)
		if result.Allowed || retryAfter > result.RetryAfter {
			result.Exceeded = rate
			result.RetryAfter = retryAfter
		}
		result.Allowed = false
	}
	return result, nil
}
