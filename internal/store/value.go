package store

import "sync"

// Value is a single shared snapshot replaced wholesale by background fetches
// and read by the UI loop.
type Value[T any] struct {
	mu  sync.RWMutex
	v   T
	set bool
	gen uint64
}

// Set replaces the value.
func (v *Value[T]) Set(x T) {
	v.mu.Lock()
	v.v = x
	v.set = true
	v.gen++
	v.mu.Unlock()
}

// Get returns the value and whether it was ever set.
func (v *Value[T]) Get() (T, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.v, v.set
}

// Generation increases on every Set.
func (v *Value[T]) Generation() uint64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.gen
}
