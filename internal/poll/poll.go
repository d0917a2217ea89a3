// Package poll repeatedly fetches a value until it reaches a terminal state,
// waiting between attempts with capped exponential backoff and jitter.
package poll

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

// Default polling parameters.
const (
	DefaultInterval    = 1500 * time.Millisecond
	DefaultMaxInterval = 6000 * time.Millisecond
	DefaultTimeout     = 90000 * time.Millisecond
	DefaultMultiplier  = 1.5
	MaxJitter          = 200 * time.Millisecond
)

// ErrTimedOut is returned by Result.Unwrap when polling ran out of time.
var ErrTimedOut = errors.New("poll: timed out")

// Result is the outcome of a Poll call. Exactly one of Data, Err or
// TimedOut is set.
type Result[T any] struct {
	Data     T
	Err      error
	TimedOut bool
}

// Unwrap returns the data or the error, with a timeout reported as ErrTimedOut.
func (r Result[T]) Unwrap() (T, error) {
	if r.TimedOut {
		var zero T
		return zero, ErrTimedOut
	}
	return r.Data, r.Err
}

// Clock abstracts time so polling can be tested deterministically.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// FetchFunc performs one attempt. ok is false when the attempt produced no
// value yet, which is treated like a value that should keep polling.
type FetchFunc[T any] func(ctx context.Context) (value T, ok bool, err error)

type options struct {
	interval    time.Duration
	maxInterval time.Duration
	timeout     time.Duration
	multiplier  float64
	clock       Clock
	jitter      func() time.Duration
}

// Option configures a Poll call.
type Option func(*options)

// WithInterval sets the wait before the second attempt.
func WithInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.interval = d
		}
	}
}

// WithMaxInterval caps every wait.
func WithMaxInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.maxInterval = d
		}
	}
}

// WithTimeout bounds the total time spent polling. Zero is allowed and
// makes Poll time out before the first attempt.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.timeout = d
		}
	}
}

// WithBackoffMultiplier sets how much the interval grows after each wait.
func WithBackoffMultiplier(m float64) Option {
	return func(o *options) {
		if m >= 1 {
			o.multiplier = m
		}
	}
}

// WithClock overrides the time source.
func WithClock(c Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithJitter overrides the jitter source. The default draws uniformly
// from [0, MaxJitter).
func WithJitter(fn func() time.Duration) Option {
	return func(o *options) {
		if fn != nil {
			o.jitter = fn
		}
	}
}

func defaultJitter() time.Duration {
	return rand.N(MaxJitter)
}

// Poll calls fetch until shouldContinue reports false for a fetched value,
// fetch fails, ctx is done or the timeout elapses. Only one fetch is ever
// outstanding. Fetch errors are returned immediately without retry.
func Poll[T any](ctx context.Context, fetch FetchFunc[T], shouldContinue func(T) bool, opts ...Option) Result[T] {
	o := options{
		interval:    DefaultInterval,
		maxInterval: DefaultMaxInterval,
		timeout:     DefaultTimeout,
		multiplier:  DefaultMultiplier,
		clock:       realClock{},
		jitter:      defaultJitter,
	}
	for _, opt := range opts {
		opt(&o)
	}

	start := o.clock.Now()
	interval := min(o.interval, o.maxInterval)

	for o.clock.Now().Sub(start) < o.timeout {
		if err := ctx.Err(); err != nil {
			return Result[T]{Err: fmt.Errorf("poll: %w", err)}
		}

		value, ok, err := fetch(ctx)
		if err != nil {
			return Result[T]{Err: err}
		}
		if ok && !shouldContinue(value) {
			return Result[T]{Data: value}
		}

		wait := min(interval+o.jitter(), o.maxInterval)
		select {
		case <-ctx.Done():
			return Result[T]{Err: fmt.Errorf("poll: %w", ctx.Err())}
		case <-o.clock.After(wait):
		}
		interval = nextInterval(interval, o.multiplier, o.maxInterval)
	}

	return Result[T]{TimedOut: true}
}

// nextInterval grows current by multiplier, capped at ceiling.
func nextInterval(current time.Duration, multiplier float64, ceiling time.Duration) time.Duration {
	return min(time.Duration(float64(current)*multiplier), ceiling)
}
