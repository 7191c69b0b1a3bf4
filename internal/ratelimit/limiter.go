package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	initialBackoff = 100 * time.Millisecond
	maxBackoff     = 2 * time.Minute
)

// Limiter is a per-minute token bucket that also pauses callers after the
// upstream has answered 429.
type Limiter struct {
	limiter *rate.Limiter
	name    string

	mu           sync.Mutex
	backoff      time.Duration
	blockedUntil time.Time
	now          func() time.Time
}

// NewLimiter creates a limiter allowing perMinute requests per minute.
// Burst is a tenth of the per-minute rate, clamped to [1, 5].
func NewLimiter(name string, perMinute int) *Limiter {
	if perMinute < 1 {
		perMinute = 1
	}
	burst := perMinute / 10
	if burst < 1 {
		burst = 1
	}
	if burst > 5 {
		burst = 5
	}

	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), burst),
		name:    name,
		backoff: initialBackoff,
		now:     time.Now,
	}
}

// Wait blocks until any 429 pause has elapsed and a token is available, or
// ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if d := l.pause(); d > 0 {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	return l.limiter.Wait(ctx)
}

// Allow reports whether a request may happen now without waiting
func (l *Limiter) Allow() bool {
	if l.pause() > 0 {
		return false
	}
	return l.limiter.Allow()
}

// SignalRateLimited doubles the backoff and pauses the limiter for it
func (l *Limiter) SignalRateLimited() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.backoff *= 2
	if l.backoff > maxBackoff {
		l.backoff = maxBackoff
	}
	l.blockedUntil = l.now().Add(l.backoff)
}

// ResetBackoff resets the backoff after a successful request
func (l *Limiter) ResetBackoff() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.backoff = initialBackoff
	l.blockedUntil = time.Time{}
}

// GetBackoff returns the current backoff duration
func (l *Limiter) GetBackoff() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.backoff
}

// Name returns the limiter name
func (l *Limiter) Name() string {
	return l.name
}

func (l *Limiter) pause() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.blockedUntil.IsZero() {
		return 0
	}
	return l.blockedUntil.Sub(l.now())
}

// MultiLimiter keeps one limiter per upstream endpoint
type MultiLimiter struct {
	limiters map[string]*Limiter
	mu       sync.RWMutex
}

// NewMultiLimiter creates an empty multi-limiter
func NewMultiLimiter() *MultiLimiter {
	return &MultiLimiter{
		limiters: make(map[string]*Limiter),
	}
}

// Add registers a limiter for name
func (m *MultiLimiter) Add(name string, perMinute int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.limiters[name] = NewLimiter(name, perMinute)
}

// Get returns the limiter for name, or nil
func (m *MultiLimiter) Get(name string) *Limiter {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.limiters[name]
}

// Wait waits on the named limiter; unknown names proceed immediately
func (m *MultiLimiter) Wait(ctx context.Context, name string) error {
	limiter := m.Get(name)
	if limiter == nil {
		return nil
	}
	return limiter.Wait(ctx)
}

// SignalRateLimited applies backoff to the named limiter
func (m *MultiLimiter) SignalRateLimited(name string) {
	if l := m.Get(name); l != nil {
		l.SignalRateLimited()
	}
}

// ResetBackoff clears backoff on the named limiter
func (m *MultiLimiter) ResetBackoff(name string) {
	if l := m.Get(name); l != nil {
		l.ResetBackoff()
	}
}
