package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RateLimiter is a fixed-window request counter backed by Redis. It
// satisfies echo's middleware.RateLimiterStore so limits hold across
// replicas.
// Key format: ratelimit:<scope>:<identifier>:<window_index>
type RateLimiter struct {
	client  *redis.Client
	scope   string
	limit   int64
	window  time.Duration
	timeout time.Duration
	log     zerolog.Logger
	now     func() time.Time
}

// NewRateLimiter allows limit requests per identifier within each window.
func NewRateLimiter(client *redis.Client, scope string, limit int, window time.Duration, log zerolog.Logger) *RateLimiter {
	if window < time.Second {
		window = time.Minute
	}
	return &RateLimiter{
		client:  client,
		scope:   scope,
		limit:   int64(limit),
		window:  window,
		timeout: defaultTimeout,
		log:     log,
		now:     time.Now,
	}
}

// Allow counts one request for identifier. When Redis is unreachable the
// request is let through and the failure is logged.
func (l *RateLimiter) Allow(identifier string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()

	key := l.key(identifier, l.now())

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		l.log.Warn().Err(err).Str("scope", l.scope).Msg("rate limit store unavailable, allowing request")
		return true, nil
	}

	return incr.Val() <= l.limit, nil
}

func (l *RateLimiter) key(identifier string, now time.Time) string {
	window := int64(l.window / time.Second)
	return fmt.Sprintf("ratelimit:%s:%s:%d", l.scope, identifier, now.Unix()/window)
}
