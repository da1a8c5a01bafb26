package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// DataSource is everything the dashboard needs from the core. *Client is the
// production implementation; tests substitute in-memory fakes.
type DataSource interface {
	Version(ctx context.Context) (Version, error)
	Subscribe(ctx context.Context, endpoint Endpoint, params url.Values) (Stream, error)

	Proxies(ctx context.Context) (map[string]Proxy, error)
	Providers(ctx context.Context) (map[string]Provider, error)
	Rules(ctx context.Context) ([]Rule, error)
	RuleProviders(ctx context.Context) (map[string]RuleProvider, error)
	Configs(ctx context.Context) (map[string]any, error)

	DeleteConnection(ctx context.Context, id string) error
	CloseAllConnections(ctx context.Context) error
	UpdateSelectedProxy(ctx context.Context, group, name string) error
	TestProxy(ctx context.Context, name, testURL string, timeout time.Duration) (int64, error)
	TestGroup(ctx context.Context, name, testURL string, timeout time.Duration) (map[string]int64, error)
	HealthCheckProvider(ctx context.Context, name string) error
	UpdateProvider(ctx context.Context, name string) error
	UpdateRuleProvider(ctx context.Context, name string) error
	DisableRules(ctx context.Context, changes map[int]bool) error
	PatchConfigs(ctx context.Context, patch map[string]any) error
	ReloadConfig(ctx context.Context) error
	Restart(ctx context.Context) error
	FlushFakeIPCache(ctx context.Context) error
	FlushDNSCache(ctx context.Context) error
	UpdateGeo(ctx context.Context) error
}

// Ensure Client implements DataSource at compile time.
var _ DataSource = (*Client)(nil)

// Client talks to the mihomo external controller.
type Client struct {
	baseURL   *url.URL
	secret    string
	http      *http.Client
	dialer    *websocket.Dialer
	userAgent string
}

const (
	DefaultBaseURL   = "http://127.0.0.1:9090"
	defaultUserAgent = "mihomo-tui/dev"
	requestTimeout   = 10 * time.Second
)

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client used for request/response calls.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if strings.TrimSpace(ua) != "" {
			c.userAgent = ua
		}
	}
}

// NewClient builds a Client for the controller at rawURL. secret may be empty.
func NewClient(rawURL, secret string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(rawURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL: base,
		secret:  secret,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalised controller address.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// StatusError reports a non-2xx controller response.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("api %s %s returned status %d", e.Method, e.Path, e.Code)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

func (c *Client) Version(ctx context.Context) (Version, error) {
	var v Version
	if err := c.do(ctx, http.MethodGet, "/version", nil, nil, &v); err != nil {
		return Version{}, err
	}
	return v, nil
}

func (c *Client) Proxies(ctx context.Context) (map[string]Proxy, error) {
	var payload proxiesResponse
	if err := c.do(ctx, http.MethodGet, "/proxies", nil, nil, &payload); err != nil {
		return nil, err
	}
	return payload.Proxies, nil
}

func (c *Client) Providers(ctx context.Context) (map[string]Provider, error) {
	var payload providersResponse
	if err := c.do(ctx, http.MethodGet, "/providers/proxies", nil, nil, &payload); err != nil {
		return nil, err
	}
	return payload.Providers, nil
}

func (c *Client) Rules(ctx context.Context) ([]Rule, error) {
	var payload rulesResponse
	if err := c.do(ctx, http.MethodGet, "/rules", nil, nil, &payload); err != nil {
		return nil, err
	}
	return payload.Rules, nil
}

func (c *Client) RuleProviders(ctx context.Context) (map[string]RuleProvider, error) {
	var payload ruleProvidersResponse
	if err := c.do(ctx, http.MethodGet, "/providers/rules", nil, nil, &payload); err != nil {
		return nil, err
	}
	return payload.Providers, nil
}

func (c *Client) Configs(ctx context.Context) (map[string]any, error) {
	payload := map[string]any{}
	if err := c.do(ctx, http.MethodGet, "/configs", nil, nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (c *Client) DeleteConnection(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/connections/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) CloseAllConnections(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/connections", nil, nil, nil)
}

func (c *Client) UpdateSelectedProxy(ctx context.Context, group, name string) error {
	body := map[string]string{"name": name}
	return c.do(ctx, http.MethodPut, "/proxies/"+url.PathEscape(group), nil, body, nil)
}

func (c *Client) TestProxy(ctx context.Context, name, testURL string, timeout time.Duration) (int64, error) {
	var payload delayResponse
	query := delayQuery(testURL, timeout)
	if err := c.do(ctx, http.MethodGet, "/proxies/"+url.PathEscape(name)+"/delay", query, nil, &payload); err != nil {
		return 0, err
	}
	return payload.Delay, nil
}

func (c *Client) TestGroup(ctx context.Context, name, testURL string, timeout time.Duration) (map[string]int64, error) {
	payload := map[string]int64{}
	query := delayQuery(testURL, timeout)
	if err := c.do(ctx, http.MethodGet, "/group/"+url.PathEscape(name)+"/delay", query, nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (c *Client) HealthCheckProvider(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodGet, "/providers/proxies/"+url.PathEscape(name)+"/healthcheck", nil, nil, nil)
}

func (c *Client) UpdateProvider(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodPut, "/providers/proxies/"+url.PathEscape(name), nil, nil, nil)
}

func (c *Client) UpdateRuleProvider(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodPut, "/providers/rules/"+url.PathEscape(name), nil, nil, nil)
}

func (c *Client) DisableRules(ctx context.Context, changes map[int]bool) error {
	if len(changes) == 0 {
		return nil
	}
	body := make(map[string]bool, len(changes))
	for idx, disabled := range changes {
		body[strconv.Itoa(idx)] = disabled
	}
	return c.do(ctx, http.MethodPatch, "/rules/disable", nil, body, nil)
}

func (c *Client) PatchConfigs(ctx context.Context, patch map[string]any) error {
	return c.do(ctx, http.MethodPatch, "/configs", nil, patch, nil)
}

func (c *Client) ReloadConfig(ctx context.Context) error {
	query := url.Values{"force": []string{"true"}}
	body := map[string]string{"path": "", "payload": ""}
	return c.do(ctx, http.MethodPut, "/configs", query, body, nil)
}

func (c *Client) Restart(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/restart", nil, map[string]string{}, nil)
}

func (c *Client) FlushFakeIPCache(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/cache/fakeip/flush", nil, nil, nil)
}

func (c *Client) FlushDNSCache(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/cache/dns/flush", nil, nil, nil)
}

func (c *Client) UpdateGeo(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/configs/geo", nil, map[string]string{}, nil)
}

func delayQuery(testURL string, timeout time.Duration) url.Values {
	values := url.Values{}
	values.Set("url", testURL)
	values.Set("timeout", strconv.FormatInt(timeout.Milliseconds(), 10))
	return values
}

func (c *Client) endpoint(path string, query url.Values) *url.URL {
	u := *c.baseURL
	raw := strings.TrimRight(c.baseURL.EscapedPath(), "/") + path
	unescaped, err := url.PathUnescape(raw)
	if err != nil {
		unescaped = raw
	}
	u.Path = unescaped
	u.RawPath = raw
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return &u
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, dest any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	reqURL := c.endpoint(path, query)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.secret != "" {
		req.Header.Set("Authorization", "Bearer "+c.secret)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{
			Method: method,
			Path:   path,
			Code:   resp.StatusCode,
			Body:   strings.TrimSpace(string(snippet)),
		}
	}
	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("parse api url %q: unsupported scheme %q", raw, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api url %q: missing host", raw)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
