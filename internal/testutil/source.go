// Package testutil provides in-memory fakes shared by package tests.
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"

	"github.com/potoo0/mihomo-tui-sub000/internal/api"
)

// Call records one DataSource invocation.
type Call struct {
	Method string
	Args   []any
}

// FakeSource is an api.DataSource backed by fixtures. Streams are created
// per Subscribe call and fed through Stream.
type FakeSource struct {
	mu sync.Mutex

	VersionInfo   api.Version
	ProxyMap      map[string]api.Proxy
	ProviderMap   map[string]api.Provider
	RuleList      []api.Rule
	RuleProvs     map[string]api.RuleProvider
	ConfigDoc     map[string]any
	Delays        map[string]int64
	SubscribeErr  error
	FailMutations error

	calls   []Call
	streams map[api.Endpoint][]*FakeStream
	opened  chan api.Endpoint
}

var _ api.DataSource = (*FakeSource)(nil)

// NewFakeSource returns an empty fake.
func NewFakeSource() *FakeSource {
	return &FakeSource{
		ProxyMap:    map[string]api.Proxy{},
		ProviderMap: map[string]api.Provider{},
		RuleProvs:   map[string]api.RuleProvider{},
		ConfigDoc:   map[string]any{},
		Delays:      map[string]int64{},
		streams:     map[api.Endpoint][]*FakeStream{},
		opened:      make(chan api.Endpoint, 64),
	}
}

// Calls returns a copy of the recorded invocations.
func (f *FakeSource) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// Called reports whether method was invoked.
func (f *FakeSource) Called(method string) bool {
	for _, c := range f.Calls() {
		if c.Method == method {
			return true
		}
	}
	return false
}

func (f *FakeSource) record(method string, args ...any) {
	f.mu.Lock()
	f.calls = append(f.calls, Call{Method: method, Args: args})
	f.mu.Unlock()
}

func (f *FakeSource) mutate(method string, args ...any) error {
	f.record(method, args...)
	return f.FailMutations
}

// Opened delivers the endpoint of every successful Subscribe.
func (f *FakeSource) Opened() <-chan api.Endpoint { return f.opened }

// Stream returns the latest stream opened for endpoint, waiting up to timeout.
func (f *FakeSource) Stream(endpoint api.Endpoint, timeout time.Duration) (*FakeStream, error) {
	deadline := time.Now().Add(timeout)
	for {
		f.mu.Lock()
		list := f.streams[endpoint]
		f.mu.Unlock()
		if len(list) > 0 {
			return list[len(list)-1], nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("no stream opened for %s", endpoint)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// Streams returns every stream opened for endpoint, oldest first.
func (f *FakeSource) Streams(endpoint api.Endpoint) []*FakeStream {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*FakeStream(nil), f.streams[endpoint]...)
}

func (f *FakeSource) Version(context.Context) (api.Version, error) {
	f.record("Version")
	return f.VersionInfo, nil
}

func (f *FakeSource) Subscribe(ctx context.Context, endpoint api.Endpoint, params url.Values) (api.Stream, error) {
	f.record("Subscribe", endpoint, params.Encode())
	if f.SubscribeErr != nil {
		return nil, f.SubscribeErr
	}
	s := NewFakeStream(params)
	f.mu.Lock()
	f.streams[endpoint] = append(f.streams[endpoint], s)
	f.mu.Unlock()
	select {
	case f.opened <- endpoint:
	default:
	}
	return s, nil
}

func (f *FakeSource) Proxies(context.Context) (map[string]api.Proxy, error) {
	f.record("Proxies")
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]api.Proxy, len(f.ProxyMap))
	for k, v := range f.ProxyMap {
		out[k] = v
	}
	return out, nil
}

func (f *FakeSource) Providers(context.Context) (map[string]api.Provider, error) {
	f.record("Providers")
	return f.ProviderMap, nil
}

func (f *FakeSource) Rules(context.Context) ([]api.Rule, error) {
	f.record("Rules")
	return append([]api.Rule(nil), f.RuleList...), nil
}

func (f *FakeSource) RuleProviders(context.Context) (map[string]api.RuleProvider, error) {
	f.record("RuleProviders")
	return f.RuleProvs, nil
}

func (f *FakeSource) Configs(context.Context) (map[string]any, error) {
	f.record("Configs")
	return f.ConfigDoc, nil
}

func (f *FakeSource) DeleteConnection(_ context.Context, id string) error {
	return f.mutate("DeleteConnection", id)
}

func (f *FakeSource) CloseAllConnections(context.Context) error {
	return f.mutate("CloseAllConnections")
}

func (f *FakeSource) UpdateSelectedProxy(_ context.Context, group, name string) error {
	return f.mutate("UpdateSelectedProxy", group, name)
}

func (f *FakeSource) TestProxy(_ context.Context, name, testURL string, timeout time.Duration) (int64, error) {
	if err := f.mutate("TestProxy", name, testURL, timeout); err != nil {
		return 0, err
	}
	return f.Delays[name], nil
}

func (f *FakeSource) TestGroup(_ context.Context, name, testURL string, timeout time.Duration) (map[string]int64, error) {
	if err := f.mutate("TestGroup", name, testURL, timeout); err != nil {
		return nil, err
	}
	return f.Delays, nil
}

func (f *FakeSource) HealthCheckProvider(_ context.Context, name string) error {
	return f.mutate("HealthCheckProvider", name)
}

func (f *FakeSource) UpdateProvider(_ context.Context, name string) error {
	return f.mutate("UpdateProvider", name)
}

func (f *FakeSource) UpdateRuleProvider(_ context.Context, name string) error {
	return f.mutate("UpdateRuleProvider", name)
}

func (f *FakeSource) DisableRules(_ context.Context, changes map[int]bool) error {
	return f.mutate("DisableRules", changes)
}

func (f *FakeSource) PatchConfigs(_ context.Context, patch map[string]any) error {
	return f.mutate("PatchConfigs", patch)
}

func (f *FakeSource) ReloadConfig(context.Context) error { return f.mutate("ReloadConfig") }
func (f *FakeSource) Restart(context.Context) error      { return f.mutate("Restart") }
func (f *FakeSource) FlushFakeIPCache(context.Context) error {
	return f.mutate("FlushFakeIPCache")
}
func (f *FakeSource) FlushDNSCache(context.Context) error { return f.mutate("FlushDNSCache") }
func (f *FakeSource) UpdateGeo(context.Context) error     { return f.mutate("UpdateGeo") }

// FakeStream is an api.Stream fed by the test.
type FakeStream struct {
	Params url.Values

	frames chan []byte
	once   sync.Once
	closed chan struct{}
	ended  chan struct{}
	endErr error
}

// NewFakeStream returns an open stream.
func NewFakeStream(params url.Values) *FakeStream {
	return &FakeStream{
		Params: params,
		frames: make(chan []byte, 256),
		closed: make(chan struct{}),
		ended:  make(chan struct{}),
	}
}

// PushRaw queues a raw frame.
func (s *FakeStream) PushRaw(frame []byte) {
	s.frames <- frame
}

// PushJSON marshals v and queues it.
func (s *FakeStream) PushJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.PushRaw(data)
	return nil
}

// End makes Recv return err (io.EOF when nil) once queued frames are read.
func (s *FakeStream) End(err error) {
	if err == nil {
		err = io.EOF
	}
	s.endErr = err
	close(s.ended)
}

// IsClosed reports whether Close was called.
func (s *FakeStream) IsClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

func (s *FakeStream) Recv(ctx context.Context) ([]byte, error) {
	select {
	case frame := <-s.frames:
		return frame, nil
	default:
	}
	select {
	case frame := <-s.frames:
		return frame, nil
	case <-s.ended:
		return nil, s.endErr
	case <-s.closed:
		return nil, io.EOF
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *FakeStream) Close() error {
	s.once.Do(func() { close(s.closed) })
	return nil
}
