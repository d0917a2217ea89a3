package ratelimit

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "sora:ratelimit:"

// RedisLimiter shares rate limit state between instances through Redis.
// If Redis is unavailable the request is allowed and the error logged.
type RedisLimiter struct {
	client redis.Cmdable
	window time.Duration
	logger *slog.Logger
}

// NewRedisLimiter creates a limiter on top of an existing Redis client.
func NewRedisLimiter(client redis.Cmdable, window time.Duration, logger *slog.Logger) *RedisLimiter {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisLimiter{client: client, window: window, logger: logger}
}

// Allow sets a key that expires after the window; the request is admitted
// only if the key did not exist yet.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	ok, err := l.client.SetNX(ctx, redisKeyPrefix+key, 1, l.window).Result()
	if err != nil {
		l.logger.Warn("rate limiter unavailable, allowing request",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return true, nil
	}
	return ok, nil
}

// Compile-time check that RedisLimiter implements Limiter.
var _ Limiter = (*RedisLimiter)(nil)
