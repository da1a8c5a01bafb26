package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadArgsDefaults(t *testing.T) {
	path := writeConfig(t, "")
	cfg, err := LoadArgs([]string{"--config", path}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.App.API != DefaultAPI {
		t.Fatalf("expected default api, got %q", cfg.App.API)
	}
	if cfg.App.TickRate != DefaultTickRate || cfg.App.FrameRate != DefaultFrameRate {
		t.Fatalf("expected default rates, got %v/%v", cfg.App.TickRate, cfg.App.FrameRate)
	}
	if cfg.Logging.FilePath != DefaultLogFile || cfg.Logging.Level != DefaultLogLevel || cfg.Logging.Trace {
		t.Fatalf("unexpected logging defaults %#v", cfg.Logging)
	}
	if cfg.File != path {
		t.Fatalf("expected config file %q, got %q", path, cfg.File)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}

func TestLoadArgsPrecedence(t *testing.T) {
	path := writeConfig(t, strings.Join([]string{
		`mihomo_api = "http://file:9090"`,
		`mihomo_secret = "file-secret"`,
		`log_level = "warn"`,
		`tick_rate = 2.0`,
		`frame_rate = 20.0`,
		`trace = true`,
		`prefs_file = "/tmp/prefs.toml"`,
	}, "\n"))
	env := []string{
		"MIHOMO_TUI_CONFIG=" + path,
		"MIHOMO_TUI_API=http://env:9090",
		"MIHOMO_TUI_TICK_RATE=8",
		"MIHOMO_TUI_TRACE=false",
	}
	cfg, err := LoadArgs([]string{"--api", "https://flag:9443", "--frame-rate", "60"}, env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cases := []struct {
		name string
		got  any
		want any
	}{
		{"api from flag", cfg.App.API, "https://flag:9443"},
		{"secret from file", cfg.App.Secret, "file-secret"},
		{"log level from file", cfg.Logging.Level, "warn"},
		{"tick rate from env", cfg.App.TickRate, 8.0},
		{"frame rate from flag", cfg.App.FrameRate, 60.0},
		{"trace from env", cfg.Logging.Trace, false},
		{"prefs from file", cfg.App.PrefsFile, "/tmp/prefs.toml"},
	}
	for _, tc := range cases {
		if tc.got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, tc.got)
		}
	}
	if cfg.Flags["api"] != "https://flag:9443" {
		t.Fatalf("expected resolved api in flags map, got %q", cfg.Flags["api"])
	}
}

func TestLoadArgsMissingExplicitConfig(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.toml")
	if _, err := LoadArgs([]string{"--config", missing}, nil); err == nil {
		t.Fatalf("expected error for missing explicit config")
	}
}

func TestLoadArgsMalformedConfig(t *testing.T) {
	path := writeConfig(t, "mihomo_api = ")
	if _, err := LoadArgs([]string{"--config", path}, nil); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestLoadArgsRejectsBadEnv(t *testing.T) {
	path := writeConfig(t, "")
	env := []string{"MIHOMO_TUI_TICK_RATE=fast"}
	if _, err := LoadArgs([]string{"--config", path}, env); err == nil {
		t.Fatalf("expected error for non-numeric tick rate")
	}
}

func TestLoadArgsUnknownFlag(t *testing.T) {
	if _, err := LoadArgs([]string{"--width", "10"}, nil); err == nil {
		t.Fatalf("expected error for unknown flag")
	}
}

func TestValidate(t *testing.T) {
	path := writeConfig(t, "")
	base, err := LoadArgs([]string{"--config", path}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"scheme", func(c *Config) { c.App.API = "ws://127.0.0.1:9090" }},
		{"relative", func(c *Config) { c.App.API = "127.0.0.1:9090" }},
		{"tick rate", func(c *Config) { c.App.TickRate = 0 }},
		{"frame rate", func(c *Config) { c.App.FrameRate = -1 }},
		{"log level", func(c *Config) { c.Logging.Level = "loud" }},
	}
	for _, tc := range cases {
		cfg := base
		tc.mutate(&cfg)
		if err := Validate(cfg); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}
