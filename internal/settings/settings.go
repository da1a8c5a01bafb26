// Package settings holds the user-tunable proxy test settings shared by the
// proxies, providers and settings components.
package settings

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/potoo0/mihomo-tui-sub000/internal/proxy"
)

const (
	DefaultTestURL = "https://www.gstatic.com/generate_204"
	DefaultTimeout = 5000
	MaxTimeout     = 60000
)

// DefaultPath is where settings persist when no prefs file is configured.
const DefaultPath = "~/.config/mihomo-tui/prefs.toml"

var (
	ErrInvalidURL       = errors.New("invalid test url")
	ErrInvalidTimeout   = errors.New("invalid test timeout")
	ErrInvalidThreshold = errors.New("invalid latency threshold")
)

// Settings is a value snapshot. Timeout is in milliseconds.
type Settings struct {
	TestURL   string
	Timeout   int64
	Threshold proxy.Threshold
}

// fileSettings is the persisted form.
type fileSettings struct {
	TestURL   string  `toml:"test_url"`
	Timeout   int64   `toml:"test_timeout"`
	Threshold []int64 `toml:"threshold"`
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		TestURL:   DefaultTestURL,
		Timeout:   DefaultTimeout,
		Threshold: proxy.DefaultThreshold,
	}
}

// TimeoutDuration converts Timeout for api calls.
func (s Settings) TimeoutDuration() time.Duration {
	return time.Duration(s.Timeout) * time.Millisecond
}

// Validate checks every field.
func (s Settings) Validate() error {
	if _, err := ValidateURL(s.TestURL); err != nil {
		return err
	}
	if s.Timeout < 1 || s.Timeout > MaxTimeout {
		return fmt.Errorf("%w: Timeout must be between 1 and %d milliseconds", ErrInvalidTimeout, MaxTimeout)
	}
	if s.Threshold.Good <= 0 || s.Threshold.Good >= s.Threshold.Bad {
		return fmt.Errorf("%w: Threshold must satisfy 0 < good < bad", ErrInvalidThreshold)
	}
	return nil
}

// ValidateURL trims raw and requires an absolute http or https URL.
func ValidateURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: URL cannot be empty", ErrInvalidURL)
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("%w: URL is malformed", ErrInvalidURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: URL must start with http:// or https://", ErrInvalidURL)
	}
	return raw, nil
}

// ParseTimeout parses a millisecond timeout typed by the user.
func ParseTimeout(raw string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: Timeout must be a number", ErrInvalidTimeout)
	}
	if v < 1 || v > MaxTimeout {
		return 0, fmt.Errorf("%w: Timeout must be between 1 and %d milliseconds", ErrInvalidTimeout, MaxTimeout)
	}
	return v, nil
}

// ParseThreshold parses "good,bad".
func ParseThreshold(raw string) (proxy.Threshold, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return proxy.Threshold{}, fmt.Errorf("%w: Threshold must be two numbers separated by a comma", ErrInvalidThreshold)
	}
	good, err1 := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	bad, err2 := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
	if err1 != nil || err2 != nil {
		return proxy.Threshold{}, fmt.Errorf("%w: Threshold must be two numbers separated by a comma", ErrInvalidThreshold)
	}
	if good <= 0 || good >= bad {
		return proxy.Threshold{}, fmt.Errorf("%w: Threshold must satisfy 0 < good < bad", ErrInvalidThreshold)
	}
	return proxy.Threshold{Good: good, Bad: bad}, nil
}

// FormatThreshold is the inverse of ParseThreshold.
func FormatThreshold(t proxy.Threshold) string {
	return fmt.Sprintf("%d,%d", t.Good, t.Bad)
}

// Handle is the shared, lock-guarded settings value. Readers take snapshots;
// only the settings component calls Set.
type Handle struct {
	mu   sync.RWMutex
	cur  Settings
	path string
}

// NewHandle returns a handle seeded with s. An empty path disables
// persistence.
func NewHandle(s Settings, path string) *Handle {
	return &Handle{cur: s, path: path}
}

// Get returns a snapshot.
func (h *Handle) Get() Settings {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cur
}

// Threshold is a shortcut for Get().Threshold.
func (h *Handle) Threshold() proxy.Threshold {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cur.Threshold
}

// Path is the persistence file, possibly empty.
func (h *Handle) Path() string { return h.path }

// Set validates s, replaces the current value and saves it when a path is
// configured. An invalid value leaves the handle untouched.
func (h *Handle) Set(s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	h.mu.Lock()
	h.cur = s
	path := h.path
	h.mu.Unlock()
	if path == "" {
		return nil
	}
	return Save(path, s)
}

// Load reads settings from path. A missing file yields the defaults. Invalid
// stored values fall back to their defaults field by field.
func Load(path string) (Settings, error) {
	s := Default()
	expanded, err := homedir.Expand(path)
	if err != nil {
		return s, fmt.Errorf("expand prefs path: %w", err)
	}
	data, err := os.ReadFile(expanded)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("read prefs: %w", err)
	}
	var f fileSettings
	if err := toml.Unmarshal(data, &f); err != nil {
		return s, fmt.Errorf("decode prefs: %w", err)
	}
	if u, err := ValidateURL(f.TestURL); err == nil {
		s.TestURL = u
	}
	if f.Timeout >= 1 && f.Timeout <= MaxTimeout {
		s.Timeout = f.Timeout
	}
	if len(f.Threshold) == 2 && f.Threshold[0] > 0 && f.Threshold[0] < f.Threshold[1] {
		s.Threshold = proxy.Threshold{Good: f.Threshold[0], Bad: f.Threshold[1]}
	}
	return s, nil
}

// Save writes s to path, creating parent directories.
func Save(path string, s Settings) error {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return fmt.Errorf("expand prefs path: %w", err)
	}
	data, err := toml.Marshal(fileSettings{
		TestURL:   s.TestURL,
		Timeout:   s.Timeout,
		Threshold: []int64{s.Threshold.Good, s.Threshold.Bad},
	})
	if err != nil {
		return fmt.Errorf("encode prefs: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}
	if err := os.WriteFile(expanded, data, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}
