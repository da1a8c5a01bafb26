package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestParseBaseURLDefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.String() != DefaultBaseURL {
		t.Fatalf("url = %q, want %q", u.String(), DefaultBaseURL)
	}

	u, err = parseBaseURL("127.0.0.1:9097/api/?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" || u.Path != "/api" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}

	if _, err := parseBaseURL("ftp://example.com"); err == nil {
		t.Fatalf("expected error for ftp scheme")
	}
}

type recordedRequest struct {
	method string
	path   string
	query  url.Values
	auth   string
	body   string
}

func newRecordingServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var mu sync.Mutex
	var got []recordedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		got = append(got, recordedRequest{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.Query(),
			auth:   r.Header.Get("Authorization"),
			body:   string(body),
		})
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(server.Close)
	return server, &got
}

func TestClientFetchesResources(t *testing.T) {
	t.Parallel()

	server, got := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/version":
			_, _ = io.WriteString(w, `{"meta":true,"version":"v1.19.2"}`)
		case "/proxies":
			_, _ = io.WriteString(w, `{"proxies":{"GLOBAL":{"name":"GLOBAL","type":"Selector","all":["a","b"],"now":"a"},"a":{"name":"a","type":"Shadowsocks","history":[{"time":"2024-01-01T00:00:00Z","delay":120}]}}}`)
		case "/providers/proxies":
			_, _ = io.WriteString(w, `{"providers":{"sub":{"name":"sub","vehicleType":"HTTP","proxies":[],"updatedAt":"2024-01-01T00:00:00Z","subscriptionInfo":{"Download":10,"Upload":5,"Total":100,"Expire":1700000000}}}}`)
		case "/rules":
			_, _ = io.WriteString(w, `{"rules":[{"type":"DOMAIN","payload":"example.com","proxy":"DIRECT","size":-1,"index":0,"extra":{"disabled":true,"hitCount":3}}]}`)
		case "/providers/rules":
			_, _ = io.WriteString(w, `{"providers":{"ads":{"name":"ads","behavior":"domain","vehicleType":"HTTP","ruleCount":42,"updatedAt":"2024-01-01T00:00:00Z"}}}`)
		case "/configs":
			_, _ = io.WriteString(w, `{"mode":"rule","port":7890}`)
		default:
			http.NotFound(w, r)
		}
	})

	c, err := NewClient(server.URL, "s3cret")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	v, err := c.Version(ctx)
	if err != nil {
		t.Fatalf("Version returned error: %v", err)
	}
	if v.String() != "Clash(Meta) v1.19.2" {
		t.Fatalf("version = %q", v.String())
	}

	proxies, err := c.Proxies(ctx)
	if err != nil {
		t.Fatalf("Proxies returned error: %v", err)
	}
	if proxies["GLOBAL"].Now != "a" || len(proxies["GLOBAL"].All) != 2 {
		t.Fatalf("unexpected GLOBAL group %#v", proxies["GLOBAL"])
	}
	if h := proxies["a"].History; len(h) != 1 || h[0].Delay != 120 {
		t.Fatalf("unexpected history %#v", h)
	}

	providers, err := c.Providers(ctx)
	if err != nil {
		t.Fatalf("Providers returned error: %v", err)
	}
	sub := providers["sub"]
	if sub.SubscriptionInfo == nil || sub.SubscriptionInfo.Used() != 15 {
		t.Fatalf("unexpected subscription info %#v", sub.SubscriptionInfo)
	}
	if !sub.Updatable() {
		t.Fatalf("expected HTTP provider to be updatable")
	}

	rules, err := c.Rules(ctx)
	if err != nil {
		t.Fatalf("Rules returned error: %v", err)
	}
	if len(rules) != 1 || !rules[0].SupportsDisable() || !rules[0].Extra.Disabled {
		t.Fatalf("unexpected rules %#v", rules)
	}

	ruleProviders, err := c.RuleProviders(ctx)
	if err != nil {
		t.Fatalf("RuleProviders returned error: %v", err)
	}
	if ruleProviders["ads"].RuleCount != 42 {
		t.Fatalf("unexpected rule providers %#v", ruleProviders)
	}

	cfg, err := c.Configs(ctx)
	if err != nil {
		t.Fatalf("Configs returned error: %v", err)
	}
	if cfg["mode"] != "rule" {
		t.Fatalf("unexpected configs %#v", cfg)
	}

	for _, req := range *got {
		if req.auth != "Bearer s3cret" {
			t.Fatalf("request %s missing bearer token, got %q", req.path, req.auth)
		}
	}
}

func TestClientMutationsUseExpectedRoutes(t *testing.T) {
	t.Parallel()

	server, got := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/delay") && strings.HasPrefix(r.URL.Path, "/group/"):
			_, _ = io.WriteString(w, `{"a":100,"b":0}`)
		case strings.HasSuffix(r.URL.Path, "/delay"):
			_, _ = io.WriteString(w, `{"delay":88}`)
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	})
	c, err := NewClient(server.URL, "")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	ctx := context.Background()

	steps := []struct {
		name string
		run  func() error
		want recordedRequest
	}{
		{"delete", func() error { return c.DeleteConnection(ctx, "abc") }, recordedRequest{method: "DELETE", path: "/connections/abc"}},
		{"close-all", func() error { return c.CloseAllConnections(ctx) }, recordedRequest{method: "DELETE", path: "/connections"}},
		{"select", func() error { return c.UpdateSelectedProxy(ctx, "Proxy Group", "node-1") }, recordedRequest{method: "PUT", path: "/proxies/Proxy Group", body: `{"name":"node-1"}`}},
		{"healthcheck", func() error { return c.HealthCheckProvider(ctx, "sub") }, recordedRequest{method: "GET", path: "/providers/proxies/sub/healthcheck"}},
		{"update-provider", func() error { return c.UpdateProvider(ctx, "sub") }, recordedRequest{method: "PUT", path: "/providers/proxies/sub"}},
		{"update-rule-provider", func() error { return c.UpdateRuleProvider(ctx, "ads") }, recordedRequest{method: "PUT", path: "/providers/rules/ads"}},
		{"disable-rules", func() error { return c.DisableRules(ctx, map[int]bool{3: true}) }, recordedRequest{method: "PATCH", path: "/rules/disable", body: `{"3":true}`}},
		{"patch-configs", func() error { return c.PatchConfigs(ctx, map[string]any{"mode": "global"}) }, recordedRequest{method: "PATCH", path: "/configs", body: `{"mode":"global"}`}},
		{"reload", func() error { return c.ReloadConfig(ctx) }, recordedRequest{method: "PUT", path: "/configs", body: `{"path":"","payload":""}`}},
		{"restart", func() error { return c.Restart(ctx) }, recordedRequest{method: "POST", path: "/restart", body: `{}`}},
		{"flush-fakeip", func() error { return c.FlushFakeIPCache(ctx) }, recordedRequest{method: "POST", path: "/cache/fakeip/flush"}},
		{"flush-dns", func() error { return c.FlushDNSCache(ctx) }, recordedRequest{method: "POST", path: "/cache/dns/flush"}},
		{"update-geo", func() error { return c.UpdateGeo(ctx) }, recordedRequest{method: "POST", path: "/configs/geo", body: `{}`}},
	}
	for i, step := range steps {
		if err := step.run(); err != nil {
			t.Fatalf("%s returned error: %v", step.name, err)
		}
		req := (*got)[i]
		if req.method != step.want.method || req.path != step.want.path {
			t.Fatalf("%s: got %s %s, want %s %s", step.name, req.method, req.path, step.want.method, step.want.path)
		}
		if step.want.body != "" && req.body != step.want.body {
			t.Fatalf("%s: body = %q, want %q", step.name, req.body, step.want.body)
		}
	}
	if q := (*got)[8].query; q.Get("force") != "true" {
		t.Fatalf("reload query = %v, want force=true", q)
	}

	delay, err := c.TestProxy(ctx, "node-1", "https://www.gstatic.com/generate_204", 5*time.Second)
	if err != nil || delay != 88 {
		t.Fatalf("TestProxy = %d, %v", delay, err)
	}
	last := (*got)[len(*got)-1]
	if last.query.Get("timeout") != "5000" || last.query.Get("url") != "https://www.gstatic.com/generate_204" {
		t.Fatalf("unexpected delay query %v", last.query)
	}

	delays, err := c.TestGroup(ctx, "auto", "http://cp.cloudflare.com", time.Second)
	if err != nil || delays["a"] != 100 || delays["b"] != 0 {
		t.Fatalf("TestGroup = %v, %v", delays, err)
	}
}

func TestClientReportsStatusErrors(t *testing.T) {
	t.Parallel()

	server, _ := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"message":"provider not found"}`)
	})
	c, err := NewClient(server.URL, "")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	err = c.UpdateProvider(context.Background(), "missing")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.Code != http.StatusBadRequest || !strings.Contains(statusErr.Body, "provider not found") {
		t.Fatalf("unexpected status error %#v", statusErr)
	}
}

func TestSubscribeStreamsFramesWithToken(t *testing.T) {
	t.Parallel()

	var gotToken, gotLevel string
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/logs" {
			http.NotFound(w, r)
			return
		}
		gotToken = r.URL.Query().Get("token")
		gotLevel = r.URL.Query().Get("level")
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for _, msg := range []string{`{"type":"info","payload":"one"}`, `{"type":"warning","payload":"two"}`} {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(msg))
		}
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		time.Sleep(50 * time.Millisecond)
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, "tok")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	stream, err := c.Subscribe(ctx, EndpointLogs, url.Values{"level": []string{"info"}})
	if err != nil {
		t.Fatalf("Subscribe returned error: %v", err)
	}
	defer stream.Close()

	var logs []Log
	for {
		data, err := stream.Recv(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Recv returned error: %v", err)
		}
		var entry Log
		if err := json.Unmarshal(data, &entry); err != nil {
			t.Fatalf("decode frame: %v", err)
		}
		logs = append(logs, entry)
	}
	if len(logs) != 2 || logs[1].Payload != "two" {
		t.Fatalf("unexpected frames %#v", logs)
	}
	if gotToken != "tok" || gotLevel != "info" {
		t.Fatalf("query token=%q level=%q", gotToken, gotLevel)
	}
}

func TestStreamRecvHonoursCancellation(t *testing.T) {
	t.Parallel()

	upgrader := websocket.Upgrader{}
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		<-release
	}))
	t.Cleanup(server.Close)
	t.Cleanup(func() { close(release) })

	c, _ := NewClient(server.URL, "")
	stream, err := c.Subscribe(context.Background(), EndpointTraffic, nil)
	if err != nil {
		t.Fatalf("Subscribe returned error: %v", err)
	}
	defer stream.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := stream.Recv(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestConnectionDecodingAndHostPort(t *testing.T) {
	raw := `{"downloadTotal":10,"uploadTotal":20,"memory":30,"connections":[
		{"id":"1","metadata":{"host":"example.com","destinationIP":"1.1.1.1","destinationPort":"443"},"upload":1,"download":2,"start":"2024-01-01T00:00:00Z","chains":["node","group"],"rule":"Match","rulePayload":""},
		{"id":"2","metadata":{"host":"","destinationIP":"2001:db8::1","destinationPort":53},"chains":[],"start":"2024-01-01T00:00:00Z"}]}`
	var snap ConnectionsSnapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if got := snap.Connections[0].HostPort(); got != "example.com:443" {
		t.Fatalf("host port = %q", got)
	}
	if got := snap.Connections[1].HostPort(); got != "[2001:db8::1]:53" {
		t.Fatalf("ipv6 host port = %q", got)
	}
	if got := snap.Connections[0].ChainPath(); got != "group > node" {
		t.Fatalf("chain path = %q", got)
	}
	stat := snap.Stat()
	if stat.Count != 2 || stat.Memory != 30 || stat.UpTotal != 20 || stat.DownTotal != 10 {
		t.Fatalf("unexpected stat %#v", stat)
	}
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]LogLevel{"warn": LogLevelWarning, "DEBUG": LogLevelDebug, " info ": LogLevelInfo}
	for in, want := range cases {
		got, err := ParseLogLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLogLevel(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseLogLevel("silent"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
