package store

import "sync"

// Counters is a pair of monotonically increasing byte counters.
type Counters struct {
	Up   uint64
	Down uint64
}

// SaturatingSub returns a-b, or 0 when b > a.
func SaturatingSub(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}

// RateTracker derives per-key deltas between consecutive snapshots. Keys
// missing from a snapshot are forgotten.
type RateTracker struct {
	mu   sync.Mutex
	last map[string]Counters
}

// NewRateTracker returns an empty tracker.
func NewRateTracker() *RateTracker {
	return &RateTracker{last: map[string]Counters{}}
}

// Observe records cur for key in the pending generation and returns the delta
// against the previous generation. The second result is false for keys seen
// for the first time.
func (r *RateTracker) Observe(next map[string]Counters, key string, cur Counters) (Counters, bool) {
	next[key] = cur
	r.mu.Lock()
	prev, ok := r.last[key]
	r.mu.Unlock()
	if !ok {
		return Counters{}, false
	}
	return Counters{
		Up:   SaturatingSub(cur.Up, prev.Up),
		Down: SaturatingSub(cur.Down, prev.Down),
	}, true
}

// Commit makes next the previous generation.
func (r *RateTracker) Commit(next map[string]Counters) {
	r.mu.Lock()
	r.last = next
	r.mu.Unlock()
}

// Rate is a single-key convenience wrapper that observes and commits at once.
func (r *RateTracker) Rate(key string, cur Counters) Counters {
	r.mu.Lock()
	prev, ok := r.last[key]
	r.last[key] = cur
	r.mu.Unlock()
	if !ok {
		return Counters{}
	}
	return Counters{
		Up:   SaturatingSub(cur.Up, prev.Up),
		Down: SaturatingSub(cur.Down, prev.Down),
	}
}
