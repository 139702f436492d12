package resilience

import (
	"context"
	"sync"
	"time"
)

// Limiter enforces a minimum spacing between calls per key. Keys are
// upstream identities (supplier names, API hosts), so one slow supplier
// never throttles another.
//
// State is an explicit mutex-guarded map rather than ambient package
// globals; the limiter is shared by handing the same instance around.
type Limiter struct {
	mu       sync.Mutex
	minDelay time.Duration
	last     map[string]time.Time
	now      func() time.Time
}

// NewLimiter creates a Limiter with the given minimum inter-call spacing.
func NewLimiter(minDelay time.Duration) *Limiter {
	return &Limiter{
		minDelay: minDelay,
		last:     make(map[string]time.Time),
		now:      time.Now,
	}
}

// Wait suspends until at least the limiter's minimum delay has elapsed
// since the last permitted call for key, then stamps the permitted call
// time. Concurrent waiters on the same key are serialized by reserving
// their slot under the lock before sleeping.
func (l *Limiter) Wait(ctx context.Context, key string) error {
	l.mu.Lock()
	now := l.now()
	slot := now
	if prev, ok := l.last[key]; ok {
		if next := prev.Add(l.minDelay); next.After(now) {
			slot = next
		}
	}
	l.last[key] = slot
	l.mu.Unlock()

	return Sleep(ctx, slot.Sub(now))
}
