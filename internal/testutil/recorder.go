package testutil

import (
	"sync"

	"github.com/potoo0/mihomo-tui-sub000/internal/action"
)

// Recorder is an action.Sender that keeps every action it receives.
type Recorder struct {
	mu      sync.Mutex
	actions []action.Action
}

var _ action.Sender = (*Recorder)(nil)

func (r *Recorder) Send(a action.Action) error {
	if a == nil {
		return nil
	}
	r.mu.Lock()
	r.actions = append(r.actions, a)
	r.mu.Unlock()
	return nil
}

// Actions returns a copy of the recorded actions.
func (r *Recorder) Actions() []action.Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]action.Action(nil), r.actions...)
}

// Reset drops recorded actions.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.actions = nil
	r.mu.Unlock()
}

// Names lists action.Name for each recorded action.
func (r *Recorder) Names() []string {
	var out []string
	for _, a := range r.Actions() {
		out = append(out, action.Name(a))
	}
	return out
}

// Last returns the most recent action of type T.
func Last[T action.Action](r *Recorder) (T, bool) {
	acts := r.Actions()
	for i := len(acts) - 1; i >= 0; i-- {
		if v, ok := acts[i].(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}
