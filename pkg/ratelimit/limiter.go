// Package ratelimit implements a fixed-window request counter keyed by
// caller identity.
package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// Defaults for the quote endpoint.
const (
	DefaultMax    = 5
	DefaultWindow = time.Minute
)

// Record is the counter state for one caller within one window.
type Record struct {
	Key     string
	Count   int
	ResetAt time.Time
}

// Store keeps window records. Implementations must make IncrementOrReset
// atomic per key.
type Store interface {
	// Get returns the current record for key, false if none exists.
	Get(ctx context.Context, key string) (Record, bool, error)
	// IncrementOrReset starts a new window with count 1 when the key is
	// absent or its window has elapsed at now, otherwise adds one.
	IncrementOrReset(ctx context.Context, key string, now time.Time, window time.Duration) (Record, error)
}

// Decision is the outcome of a single Allow call.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	Count     int
	ResetAt   time.Time
}

// RetryAfter returns how long until the window resets, rounded up to
// whole seconds and never below one.
func (d Decision) RetryAfter(now time.Time) time.Duration {
	wait := d.ResetAt.Sub(now)
	if wait <= 0 {
		return time.Second
	}
	return (wait + time.Second - 1).Truncate(time.Second)
}

// Option customizes a Limiter.
type Option func(*Limiter)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// Limiter allows at most max requests per key within each window.
type Limiter struct {
	store  Store
	max    int
	window time.Duration
	now    func() time.Time
}

// New creates a limiter.
func New(store Store, max int, window time.Duration, opts ...Option) (*Limiter, error) {
	if store == nil {
		return nil, fmt.Errorf("ratelimit: nil store")
	}
	if max < 1 {
		return nil, fmt.Errorf("ratelimit: max must be at least 1, got %d", max)
	}
	if window <= 0 {
		return nil, fmt.Errorf("ratelimit: window must be positive, got %s", window)
	}

	l := &Limiter{
		store:  store,
		max:    max,
		window: window,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Allow counts one request for key and reports whether it is within the limit.
func (l *Limiter) Allow(ctx context.Context, key string) (Decision, error) {
	rec, err := l.store.IncrementOrReset(ctx, key, l.now(), l.window)
	if err != nil {
		return Decision{}, fmt.Errorf("increment %q: %w", key, err)
	}
	return l.decide(rec), nil
}

// Status reports the state for key without counting a request.
func (l *Limiter) Status(ctx context.Context, key string) (Decision, error) {
	now := l.now()
	rec, ok, err := l.store.Get(ctx, key)
	if err != nil {
		return Decision{}, fmt.Errorf("get %q: %w", key, err)
	}
	if !ok || now.After(rec.ResetAt) {
		return Decision{Allowed: true, Limit: l.max, Remaining: l.max, ResetAt: now.Add(l.window)}, nil
	}
	d := l.decide(rec)
	d.Allowed = rec.Count < l.max
	return d, nil
}

// Limit returns the configured maximum per window.
func (l *Limiter) Limit() int { return l.max }

// Window returns the configured window length.
func (l *Limiter) Window() time.Duration { return l.window }

// Now returns the limiter's current time.
func (l *Limiter) Now() time.Time { return l.now() }

func (l *Limiter) decide(rec Record) Decision {
	remaining := l.max - rec.Count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   rec.Count <= l.max,
		Limit:     l.max,
		Remaining: remaining,
		Count:     rec.Count,
		ResetAt:   rec.ResetAt,
	}
}
