// Package store holds the bounded record buffers shared between ingestion
// tasks and the UI loop. Each store owns one ring of raw records and a derived
// view, both guarded by a single RWMutex that is held only for the duration of
// a copy or insert.
package store

import (
	"sync"

	"github.com/potoo0/mihomo-tui-sub000/internal/logging/events"
	"github.com/potoo0/mihomo-tui-sub000/internal/view"
)

// Buffer sizes used by the dashboard.
const (
	BufferSize      = 100
	ConnsBufferSize = 500
	LogsBufferSize  = 500
)

// Store is a fixed-capacity history plus its filtered and sorted view. The
// view only changes through ComputeView or Refresh.
type Store[T any] struct {
	name string
	cols view.Columns[T]

	mu     sync.RWMutex
	raw    *Ring[T]
	view   []T
	search view.SearchState
	gen    uint64
	viewAt uint64
	// searchGen counts ComputeView calls; searchAt is the searchGen the
	// published view was computed with.
	searchGen uint64
	searchAt  uint64
}

// New creates a store. cols drives filtering and sorting of the view.
func New[T any](name string, capacity int, cols view.Columns[T]) *Store[T] {
	return &Store[T]{
		name:   name,
		cols:   cols,
		raw:    NewRing[T](capacity),
		search: view.NewSearchState(len(cols)),
	}
}

func (s *Store[T]) Name() string             { return s.name }
func (s *Store[T]) Columns() view.Columns[T] { return s.cols }
func (s *Store[T]) Capacity() int            { return s.raw.Cap() }

// Push appends item, evicting the oldest record once at capacity.
func (s *Store[T]) Push(item T) {
	s.mu.Lock()
	s.raw.Push(item)
	s.gen++
	s.mu.Unlock()
}

// PushAll appends items in order under a single lock acquisition.
func (s *Store[T]) PushAll(items []T) {
	s.mu.Lock()
	for _, item := range items {
		s.raw.Push(item)
	}
	s.gen++
	s.mu.Unlock()
}

// Replace swaps the raw contents for items. Only the last Capacity items are
// kept.
func (s *Store[T]) Replace(items []T) {
	s.mu.Lock()
	s.replaceLocked(items)
	s.mu.Unlock()
}

func (s *Store[T]) replaceLocked(items []T) {
	s.raw.Clear()
	for _, item := range items {
		s.raw.Push(item)
	}
	s.gen++
}

// Raw copies the raw records, oldest first.
func (s *Store[T]) Raw() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.raw.Items()
}

// Len is the raw record count.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.raw.Len()
}

// Generation increases on every raw mutation.
func (s *Store[T]) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

// Stale reports whether raw or the search state changed since the view was
// last computed.
func (s *Store[T]) Stale() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen != s.viewAt || s.searchGen != s.searchAt
}

// Search returns a copy of the state used by the last computation.
func (s *Store[T]) Search() view.SearchState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.search.Clone()
}

// ComputeView stores state and rebuilds the view from a snapshot of raw.
func (s *Store[T]) ComputeView(state view.SearchState) {
	s.mu.Lock()
	s.search = state.Clone()
	s.searchGen++
	s.mu.Unlock()
	s.Refresh()
}

// Refresh rebuilds the view with the stored search state.
func (s *Store[T]) Refresh() {
	s.mu.RLock()
	raw := s.raw.Items()
	state := s.search.Clone()
	gen, searchGen := s.gen, s.searchGen
	s.mu.RUnlock()

	computed := view.Compute(raw, state, s.cols)

	s.mu.Lock()
	if searchGen != s.searchGen || gen < s.viewAt {
		// the search state was replaced or a newer view is already published
		s.mu.Unlock()
		return
	}
	s.view = computed
	s.viewAt = gen
	s.searchAt = searchGen
	s.mu.Unlock()
	events.Store.ComputeView(s.name, state.PatternText(), len(raw), len(computed))
}

// View copies the current view.
func (s *Store[T]) View() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, len(s.view))
	copy(out, s.view)
	return out
}

// ViewLen is the number of rows in the view.
func (s *Store[T]) ViewLen() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.view)
}

// Get returns the view row at index.
func (s *Store[T]) Get(index int) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var zero T
	if index < 0 || index >= len(s.view) {
		return zero, false
	}
	return s.view[index], true
}

// WithView runs fn on the view under the read lock. fn must not retain the
// slice or block.
func (s *Store[T]) WithView(fn func([]T)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.view)
}

// Window copies at most limit rows starting at offset.
func (s *Store[T]) Window(offset, limit int) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if offset < 0 {
		offset = 0
	}
	if offset >= len(s.view) || limit <= 0 {
		return nil
	}
	end := offset + limit
	if end > len(s.view) {
		end = len(s.view)
	}
	out := make([]T, end-offset)
	copy(out, s.view[offset:end])
	return out
}
