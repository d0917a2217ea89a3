package ratelimit

import (
	"context"
	"time"

	"github.com/maauso/sora-studio/internal/cache"
)

// MemoryLimiter tracks the last accepted request per key in process memory.
type MemoryLimiter struct {
	seen *cache.TTL[struct{}]
}

// NewMemoryLimiter creates a limiter that admits one request per key per window.
func NewMemoryLimiter(window time.Duration, opts ...cache.Option) *MemoryLimiter {
	return &MemoryLimiter{seen: cache.New[struct{}](window, opts...)}
}

// Allow admits the request if key has no request inside the current window.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	return l.seen.SetIfAbsent(key, struct{}{}), nil
}

// Run evicts stale keys every interval until ctx is done.
func (l *MemoryLimiter) Run(ctx context.Context, interval time.Duration) {
	l.seen.Run(ctx, interval)
}

// Len returns the number of tracked keys.
func (l *MemoryLimiter) Len() int {
	return l.seen.Len()
}

// Compile-time check that MemoryLimiter implements Limiter.
var _ Limiter = (*MemoryLimiter)(nil)
