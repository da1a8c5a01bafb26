// Package ingest runs one cancellable background task per streaming
// endpoint. Tasks decode frames and hand them to a handler; they never touch
// UI state directly.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/potoo0/mihomo-tui-sub000/internal/api"
	"github.com/potoo0/mihomo-tui-sub000/internal/logging"
	"github.com/potoo0/mihomo-tui-sub000/internal/logging/events"
)

// State is the lifecycle stage of a Task.
type State int32

const (
	Idle State = iota
	Streaming
	Cancelled
	Closed
	Errored
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Streaming:
		return "streaming"
	case Cancelled:
		return "cancelled"
	case Closed:
		return "closed"
	case Errored:
		return "errored"
	default:
		return "unknown"
	}
}

// Terminal reports whether the task has stopped.
func (s State) Terminal() bool {
	return s == Cancelled || s == Closed || s == Errored
}

// Source opens streams. api.DataSource satisfies it.
type Source interface {
	Subscribe(ctx context.Context, endpoint api.Endpoint, params url.Values) (api.Stream, error)
}

// HandleFunc consumes one frame. A returned error marks the frame malformed;
// it is logged and skipped.
type HandleFunc func(payload []byte) error

// JSON decodes each frame into T before calling fn.
func JSON[T any](fn func(T)) HandleFunc {
	return func(payload []byte) error {
		var v T
		if err := json.Unmarshal(payload, &v); err != nil {
			return err
		}
		fn(v)
		return nil
	}
}

// malformedWarnInterval bounds how often a task logs rejected frames.
const malformedWarnInterval = time.Second

// Task streams one endpoint until cancelled or the stream ends.
type Task struct {
	endpoint api.Endpoint
	params   url.Values
	src      Source
	handle   HandleFunc

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	// after, when set, is awaited before subscribing.
	after <-chan struct{}

	state     atomic.Int32
	items     atomic.Int64
	malformed atomic.Int64
	warn      *Throttle

	mu  sync.Mutex
	err error
}

// Start launches a task on its own goroutine. The task stops when parent is
// cancelled or Stop is called.
func Start(parent context.Context, src Source, endpoint api.Endpoint, params url.Values, handle HandleFunc) (*Task, error) {
	return start(parent, src, endpoint, params, handle, nil)
}

func start(parent context.Context, src Source, endpoint api.Endpoint, params url.Values, handle HandleFunc, after <-chan struct{}) (*Task, error) {
	if src == nil {
		return nil, errors.New("ingest: nil source")
	}
	if handle == nil {
		return nil, errors.New("ingest: nil handler")
	}
	ctx, cancel := context.WithCancel(parent)
	t := &Task{
		endpoint: endpoint,
		params:   cloneValues(params),
		src:      src,
		handle:   handle,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
		warn:     NewThrottle(malformedWarnInterval),
		after:    after,
	}
	events.Ingest.Start(string(endpoint), flatten(t.params))
	go t.run()
	return t, nil
}

// Endpoint returns the streamed endpoint.
func (t *Task) Endpoint() api.Endpoint { return t.endpoint }

// Params returns a copy of the subscription parameters.
func (t *Task) Params() url.Values { return cloneValues(t.params) }

// State returns the current lifecycle stage.
func (t *Task) State() State { return State(t.state.Load()) }

// Items counts frames handled successfully.
func (t *Task) Items() int64 { return t.items.Load() }

// Malformed counts frames the handler rejected.
func (t *Task) Malformed() int64 { return t.malformed.Load() }

// Err returns the error that moved the task to Errored.
func (t *Task) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Done is closed once the task goroutine has exited.
func (t *Task) Done() <-chan struct{} { return t.done }

// Stop cancels the task without waiting.
func (t *Task) Stop() { t.cancel() }

// Wait blocks until the task has exited or ctx is done.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *Task) run() {
	defer close(t.done)
	defer func() {
		events.Ingest.Stop(string(t.endpoint), int(t.items.Load()))
	}()

	if t.after != nil {
		<-t.after
	}
	if err := t.ctx.Err(); err != nil {
		t.finish(err)
		return
	}
	stream, err := t.src.Subscribe(t.ctx, t.endpoint, t.params)
	if err != nil {
		t.finish(err)
		return
	}
	defer stream.Close()
	t.transition(Streaming)

	for {
		payload, err := stream.Recv(t.ctx)
		if err != nil {
			t.finish(err)
			return
		}
		if t.ctx.Err() != nil {
			t.finish(t.ctx.Err())
			return
		}
		if err := t.handle(payload); err != nil {
			events.Ingest.Malformed(string(t.endpoint), err)
			n := t.malformed.Add(1)
			if t.warn.Allow() {
				logging.WithFields(map[string]any{"endpoint": t.endpoint, "malformed": n}).Warnf("drop malformed frame: %v", err)
			}
			continue
		}
		t.items.Add(1)
	}
}

func (t *Task) finish(err error) {
	switch {
	case t.ctx.Err() != nil:
		t.transition(Cancelled)
	case errors.Is(err, io.EOF):
		t.transition(Closed)
	default:
		t.mu.Lock()
		t.err = err
		t.mu.Unlock()
		logging.WithFields(map[string]any{"endpoint": t.endpoint}).Warnf("stream failed: %v", err)
		t.transition(Errored)
	}
}

func (t *Task) transition(to State) {
	from := State(t.state.Swap(int32(to)))
	events.Ingest.State(string(t.endpoint), from.String(), to.String())
}

func cloneValues(v url.Values) url.Values {
	if v == nil {
		return nil
	}
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}

func flatten(v url.Values) map[string]string {
	if len(v) == 0 {
		return nil
	}
	out := make(map[string]string, len(v))
	for k := range v {
		out[k] = v.Get(k)
	}
	return out
}
