package ingest

import (
	"context"
	"errors"
	"io"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/potoo0/mihomo-tui-sub000/internal/api"
	"github.com/potoo0/mihomo-tui-sub000/internal/testutil"
)

const waitFor = 2 * time.Second

type collector struct {
	mu    sync.Mutex
	items []api.Traffic
}

func (c *collector) add(v api.Traffic) {
	c.mu.Lock()
	c.items = append(c.items, v)
	c.mu.Unlock()
}

func (c *collector) snapshot() []api.Traffic {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]api.Traffic(nil), c.items...)
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(waitFor)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met within %s", waitFor)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestTaskSkipsMalformedFrames(t *testing.T) {
	src := testutil.NewFakeSource()
	var c collector
	task, err := Start(context.Background(), src, api.EndpointTraffic, nil, JSON(c.add))
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	stream, err := src.Stream(api.EndpointTraffic, waitFor)
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	_ = stream.PushJSON(api.Traffic{Up: 1, Down: 2})
	stream.PushRaw([]byte("{not json"))
	stream.PushRaw([]byte("[]"))
	_ = stream.PushJSON(api.Traffic{Up: 3, Down: 4})
	stream.End(nil)

	if err := task.Wait(ctxTimeout(t)); err != nil {
		t.Fatalf("wait: %v", err)
	}
	got := c.snapshot()
	if len(got) != 2 || got[0].Up != 1 || got[1].Up != 3 {
		t.Fatalf("expected two decoded frames in order, got %#v", got)
	}
	if task.State() != Closed {
		t.Fatalf("expected closed state, got %s", task.State())
	}
	if task.Items() != 2 {
		t.Fatalf("expected 2 handled items, got %d", task.Items())
	}
	if task.Malformed() != 2 {
		t.Fatalf("expected 2 malformed frames, got %d", task.Malformed())
	}
	if !stream.IsClosed() {
		t.Fatalf("expected stream closed on exit")
	}
}

func TestTaskCancelStopsWrites(t *testing.T) {
	src := testutil.NewFakeSource()
	var c collector
	task, _ := Start(context.Background(), src, api.EndpointTraffic, nil, JSON(c.add))
	stream, _ := src.Stream(api.EndpointTraffic, waitFor)
	_ = stream.PushJSON(api.Traffic{Up: 1})
	waitUntil(t, func() bool { return len(c.snapshot()) == 1 })

	task.Stop()
	if err := task.Wait(ctxTimeout(t)); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if task.State() != Cancelled {
		t.Fatalf("expected cancelled, got %s", task.State())
	}
	_ = stream.PushJSON(api.Traffic{Up: 2})
	time.Sleep(20 * time.Millisecond)
	if len(c.snapshot()) != 1 {
		t.Fatalf("expected no writes after cancellation")
	}
}

func TestTaskSubscribeFailureErrors(t *testing.T) {
	src := testutil.NewFakeSource()
	src.SubscribeErr = errors.New("dial refused")
	task, err := Start(context.Background(), src, api.EndpointMemory, nil, func([]byte) error { return nil })
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	_ = task.Wait(ctxTimeout(t))
	if task.State() != Errored || task.Err() == nil {
		t.Fatalf("expected errored task, got %s %v", task.State(), task.Err())
	}
}

func TestTaskStreamErrorIsErrored(t *testing.T) {
	src := testutil.NewFakeSource()
	task, _ := Start(context.Background(), src, api.EndpointLogs, nil, func([]byte) error { return nil })
	stream, _ := src.Stream(api.EndpointLogs, waitFor)
	stream.End(errors.New("reset by peer"))
	_ = task.Wait(ctxTimeout(t))
	if task.State() != Errored {
		t.Fatalf("expected errored, got %s", task.State())
	}
}

func TestStartRejectsNilArguments(t *testing.T) {
	if _, err := Start(context.Background(), nil, api.EndpointLogs, nil, func([]byte) error { return nil }); err == nil {
		t.Fatalf("expected error for nil source")
	}
	if _, err := Start(context.Background(), testutil.NewFakeSource(), api.EndpointLogs, nil, nil); err == nil {
		t.Fatalf("expected error for nil handler")
	}
}

func TestSupervisorRestartNeverOverlaps(t *testing.T) {
	src := testutil.NewFakeSource()
	sup := NewSupervisor(context.Background(), src)
	defer sup.Shutdown(ctxTimeout(t))

	handle := func([]byte) error { return nil }
	first, err := sup.Start(api.EndpointLogs, url.Values{"level": {"info"}}, handle)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := src.Stream(api.EndpointLogs, waitFor); err != nil {
		t.Fatalf("stream: %v", err)
	}
	second, err := sup.Start(api.EndpointLogs, url.Values{"level": {"debug"}}, handle)
	if err != nil {
		t.Fatalf("restart: %v", err)
	}
	if err := first.Wait(ctxTimeout(t)); err != nil {
		t.Fatalf("expected previous task to exit: %v", err)
	}
	if first.State() != Cancelled {
		t.Fatalf("expected previous task cancelled, got %s", first.State())
	}
	if got, _ := sup.Task(api.EndpointLogs); got != second {
		t.Fatalf("expected supervisor to track the new task")
	}
	if second.Params().Get("level") != "debug" {
		t.Fatalf("expected new params, got %v", second.Params())
	}
	waitUntil(t, func() bool { return len(src.Streams(api.EndpointLogs)) == 2 })
	streams := src.Streams(api.EndpointLogs)
	if !streams[0].IsClosed() {
		t.Fatalf("expected first stream closed")
	}
	if streams[1].Params.Get("level") != "debug" {
		t.Fatalf("expected second stream to use new level")
	}
}

// stuckSource hands out streams that ignore cancellation until released.
type stuckSource struct {
	release     chan struct{}
	onSubscribe func()

	mu     sync.Mutex
	params []url.Values
}

func (s *stuckSource) Subscribe(_ context.Context, _ api.Endpoint, params url.Values) (api.Stream, error) {
	if s.onSubscribe != nil {
		s.onSubscribe()
	}
	s.mu.Lock()
	s.params = append(s.params, params)
	s.mu.Unlock()
	return &stuckStream{release: s.release}, nil
}

func (s *stuckSource) subscribed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.params)
}

type stuckStream struct {
	release chan struct{}
}

func (s *stuckStream) Recv(context.Context) ([]byte, error) {
	<-s.release
	return nil, io.EOF
}

func (s *stuckStream) Close() error { return nil }

func TestSupervisorRestartDoesNotWaitForOldStream(t *testing.T) {
	src := &stuckSource{release: make(chan struct{})}
	sup := NewSupervisor(context.Background(), src)
	defer sup.Shutdown(ctxTimeout(t))

	handle := func([]byte) error { return nil }
	first, err := sup.Start(api.EndpointLogs, url.Values{"level": {"info"}}, handle)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	waitUntil(t, func() bool { return src.subscribed() == 1 })

	var overlapped atomic.Bool
	src.onSubscribe = func() {
		select {
		case <-first.Done():
		default:
			overlapped.Store(true)
		}
	}
	restarted := make(chan *Task, 1)
	go func() {
		next, _ := sup.Start(api.EndpointLogs, url.Values{"level": {"debug"}}, handle)
		restarted <- next
	}()
	var second *Task
	select {
	case second = <-restarted:
	case <-time.After(waitFor):
		t.Fatalf("expected restart to return while the old stream is stuck")
	}
	if src.subscribed() != 1 {
		t.Fatalf("expected new task to wait for the old one before subscribing")
	}

	close(src.release)
	waitUntil(t, func() bool { return src.subscribed() == 2 })
	if overlapped.Load() {
		t.Fatalf("expected old task to exit before the new subscription")
	}
	if first.State() != Cancelled {
		t.Fatalf("expected previous task cancelled, got %s", first.State())
	}
	if second.Params().Get("level") != "debug" {
		t.Fatalf("expected new params, got %v", second.Params())
	}
}

func TestSupervisorEnsureAndShutdown(t *testing.T) {
	src := testutil.NewFakeSource()
	sup := NewSupervisor(context.Background(), src)
	handle := func([]byte) error { return nil }
	a, _ := sup.Ensure(api.EndpointMemory, nil, handle)
	b, _ := sup.Ensure(api.EndpointMemory, nil, handle)
	if a != b {
		t.Fatalf("expected Ensure to reuse a live task")
	}
	_, _ = sup.Ensure(api.EndpointTraffic, nil, handle)
	if got := sup.Endpoints(); len(got) != 2 {
		t.Fatalf("expected 2 endpoints, got %v", got)
	}
	if err := sup.Shutdown(ctxTimeout(t)); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if a.State() != Cancelled {
		t.Fatalf("expected cancelled after shutdown, got %s", a.State())
	}
	if len(sup.Endpoints()) != 0 {
		t.Fatalf("expected no tasks after shutdown")
	}
}

func TestThrottleAllow(t *testing.T) {
	now := time.Unix(0, 0)
	th := NewThrottle(100 * time.Millisecond)
	th.now = func() time.Time { return now }
	if !th.Allow() {
		t.Fatalf("expected first call allowed")
	}
	if th.Allow() {
		t.Fatalf("expected second call throttled")
	}
	now = now.Add(100 * time.Millisecond)
	if !th.Allow() {
		t.Fatalf("expected call after interval allowed")
	}
	if !NewThrottle(0).Allow() || !NewThrottle(0).Allow() {
		t.Fatalf("expected zero interval to admit everything")
	}
}

func ctxTimeout(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	t.Cleanup(cancel)
	return ctx
}
