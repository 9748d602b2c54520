package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter implements a fixed window counter with INCR + EXPIRE. The two
// commands run in one pipeline so a counter never lingers without a deadline.
type RedisLimiter struct {
	client *redis.Client
	cfg    Config
	prefix string
}

// NewRedisLimiter constructs a limiter over the given Redis client. The prefix
// namespaces counters so multiple limiters can share one database.
func NewRedisLimiter(client *redis.Client, prefix string, cfg Config) *RedisLimiter {
	return &RedisLimiter{client: client, cfg: cfg, prefix: prefix}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (*Result, error) {
	now := time.Now()
	window := now.Truncate(l.cfg.Window)
	redisKey := fmt.Sprintf("ratelimit:%s:%s:%d", l.prefix, key, window.Unix())

	pipe := l.client.Pipeline()
	count := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, l.cfg.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("rate limit check: %w", err)
	}

	n := int(count.Val())
	remaining := l.cfg.Limit - n
	if remaining < 0 {
		remaining = 0
	}
	return &Result{
		Allowed:   n <= l.cfg.Limit,
		Limit:     l.cfg.Limit,
		Remaining: remaining,
		ResetAt:   window.Add(l.cfg.Window),
	}, nil
}
