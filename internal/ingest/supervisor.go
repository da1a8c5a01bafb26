package ingest

import (
	"context"
	"net/url"
	"sort"
	"sync"

	"github.com/potoo0/mihomo-tui-sub000/internal/api"
	"github.com/potoo0/mihomo-tui-sub000/internal/logging/events"
)

// Supervisor keeps at most one task per endpoint.
type Supervisor struct {
	src Source

	ctx    context.Context
	cancel context.CancelFunc

	mu    sync.Mutex
	tasks map[api.Endpoint]*Task
}

// NewSupervisor returns a supervisor whose tasks all derive from parent.
func NewSupervisor(parent context.Context, src Source) *Supervisor {
	ctx, cancel := context.WithCancel(parent)
	return &Supervisor{
		src:    src,
		ctx:    ctx,
		cancel: cancel,
		tasks:  map[api.Endpoint]*Task{},
	}
}

// Start runs a task for endpoint and returns without blocking. A task
// already registered for the endpoint is cancelled, and the new task
// subscribes only after the old one has exited, so two tasks never overlap.
func (s *Supervisor) Start(endpoint api.Endpoint, params url.Values, handle HandleFunc) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var after <-chan struct{}
	if old, ok := s.tasks[endpoint]; ok {
		events.Ingest.Restart(string(endpoint), flatten(params))
		old.Stop()
		after = old.Done()
	}
	t, err := start(s.ctx, s.src, endpoint, params, handle, after)
	if err != nil {
		return nil, err
	}
	s.tasks[endpoint] = t
	return t, nil
}

// Ensure starts endpoint only when no live task exists for it.
func (s *Supervisor) Ensure(endpoint api.Endpoint, params url.Values, handle HandleFunc) (*Task, error) {
	s.mu.Lock()
	if t, ok := s.tasks[endpoint]; ok && !t.State().Terminal() {
		s.mu.Unlock()
		return t, nil
	}
	s.mu.Unlock()
	return s.Start(endpoint, params, handle)
}

// Task returns the current task for endpoint.
func (s *Supervisor) Task(endpoint api.Endpoint) (*Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[endpoint]
	return t, ok
}

// Endpoints lists endpoints with a registered task.
func (s *Supervisor) Endpoints() []api.Endpoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]api.Endpoint, 0, len(s.tasks))
	for e := range s.tasks {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Shutdown cancels every task and waits for them or for ctx.
func (s *Supervisor) Shutdown(ctx context.Context) error {
	s.cancel()
	s.mu.Lock()
	tasks := make([]*Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		tasks = append(tasks, t)
	}
	s.tasks = map[api.Endpoint]*Task{}
	s.mu.Unlock()
	for _, t := range tasks {
		if err := t.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}
