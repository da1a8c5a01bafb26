package ingest

import (
	"sync"
	"time"
)

// Throttle admits at most one operation per interval.
type Throttle struct {
	interval time.Duration
	now      func() time.Time

	mu   sync.Mutex
	next time.Time
}

// NewThrottle returns a throttle. A non-positive interval admits everything.
func NewThrottle(interval time.Duration) *Throttle {
	if interval <= 0 {
		return &Throttle{now: time.Now}
	}
	return &Throttle{interval: interval, now: time.Now}
}

// Allow reports whether an operation may run now and, if so, reserves the
// next slot. It never blocks.
func (t *Throttle) Allow() bool {
	if t == nil || t.interval <= 0 {
		return true
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	if now.Before(t.next) {
		return false
	}
	t.next = now.Add(t.interval)
	return true
}
