package ratelimit

import (
	"context"
	"net"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maauso/sora-studio/internal/cache"
)

func TestClientKey(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		remoteAddr string
		want       string
	}{
		{"single ip", "203.0.113.1", "198.51.100.10:1234", "203.0.113.1"},
		{"multiple ips use first", " 203.0.113.1 , 198.51.100.2 ", "198.51.100.10:1234", "203.0.113.1"},
		{"invalid forwarded falls back", "invalid", "198.51.100.10:1234", "198.51.100.10"},
		{"empty forwarded uses remote host", "", "198.51.100.10:1234", "198.51.100.10"},
		{"ipv6 forwarded", "2001:db8::1", net.JoinHostPort("2001:db8::2", "443"), "2001:db8::1"},
		{"ipv6 remote fallback", "", net.JoinHostPort("2001:db8::2", "443"), "2001:db8::2"},
		{"remote without port", "", "203.0.113.1", "203.0.113.1"},
		{"nothing known", "", "", UnknownClient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/generate", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.header != "" {
				r.Header.Set("X-Forwarded-For", tt.header)
			}
			assert.Equal(t, tt.want, ClientKey(r))
		})
	}
}

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func TestMemoryLimiter_OnePerWindow(t *testing.T) {
	ctx := context.Background()
	clk := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	l := NewMemoryLimiter(10*time.Second, cache.WithClock(clk.Now))

	ok, err := l.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = l.Allow(ctx, "1.2.3.4")
	assert.False(t, ok, "second request inside window")

	ok, _ = l.Allow(ctx, "5.6.7.8")
	assert.True(t, ok, "other clients are independent")

	clk.now = clk.now.Add(9999 * time.Millisecond)
	ok, _ = l.Allow(ctx, "1.2.3.4")
	assert.False(t, ok, "just before window end")

	clk.now = clk.now.Add(time.Millisecond)
	ok, _ = l.Allow(ctx, "1.2.3.4")
	assert.True(t, ok, "window elapsed")
}

func TestMemoryLimiter_RejectedRequestDoesNotExtendWindow(t *testing.T) {
	ctx := context.Background()
	clk := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	l := NewMemoryLimiter(10*time.Second, cache.WithClock(clk.Now))

	ok, _ := l.Allow(ctx, "k")
	require.True(t, ok)

	clk.now = clk.now.Add(5 * time.Second)
	ok, _ = l.Allow(ctx, "k")
	require.False(t, ok)

	clk.now = clk.now.Add(5 * time.Second)
	ok, _ = l.Allow(ctx, "k")
	assert.True(t, ok)
}

func TestMemoryLimiter_Run(t *testing.T) {
	clk := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	l := NewMemoryLimiter(time.Second, cache.WithClock(clk.Now))

	_, _ = l.Allow(context.Background(), "a")
	_, _ = l.Allow(context.Background(), "b")
	require.Equal(t, 2, l.Len())

	clk.now = clk.now.Add(2 * time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		l.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return l.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

func TestRedisLimiter_FailsOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	l := NewRedisLimiter(client, 10*time.Second, nil)

	ok, err := l.Allow(context.Background(), "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, ok)
}

// TestRedisLimiter_Integration runs against a real server when REDIS_ADDR is set.
func TestRedisLimiter_Integration(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	ctx := context.Background()
	key := "integration-" + time.Now().Format("150405.000000")
	l := NewRedisLimiter(client, 2*time.Second, nil)
	t.Cleanup(func() { client.Del(ctx, redisKeyPrefix+key) })

	ok, err := l.Allow(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.Allow(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}
