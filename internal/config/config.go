package config

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/pflag"

	"github.com/potoo0/mihomo-tui-sub000/internal/app"
	"github.com/potoo0/mihomo-tui-sub000/internal/logging"
)

// Config captures runtime configuration for the application.
type Config struct {
	App     app.Config
	Logging Logging
	// File is the configuration file that was read, if any.
	File  string
	Flags map[string]string
	Args  []string
}

type Logging struct {
	FilePath string
	Level    string
	Trace    bool
}

const (
	envAPI       = "MIHOMO_TUI_API"
	envSecret    = "MIHOMO_TUI_SECRET"
	envConfig    = "MIHOMO_TUI_CONFIG"
	envLogFile   = "MIHOMO_TUI_LOG_FILE"
	envLogLevel  = "MIHOMO_TUI_LOG_LEVEL"
	envTrace     = "MIHOMO_TUI_TRACE"
	envTickRate  = "MIHOMO_TUI_TICK_RATE"
	envFrameRate = "MIHOMO_TUI_FRAME_RATE"
	envPrefsFile = "MIHOMO_TUI_PREFS_FILE"
)

const (
	DefaultAPI        = "http://127.0.0.1:9090"
	DefaultConfigFile = "~/.config/mihomo-tui/config.toml"
	DefaultPrefsFile  = "~/.config/mihomo-tui/prefs.toml"
	DefaultLogFile    = "mihomo-tui.log"
	DefaultLogLevel   = "info"
	DefaultTickRate   = 4.0
	DefaultFrameRate  = 30.0
)

// fileConfig is the TOML layout. Unset keys keep lower precedence values.
type fileConfig struct {
	MihomoAPI    *string  `toml:"mihomo_api"`
	MihomoSecret *string  `toml:"mihomo_secret"`
	LogFile      *string  `toml:"log_file"`
	LogLevel     *string  `toml:"log_level"`
	Trace        *bool    `toml:"trace"`
	TickRate     *float64 `toml:"tick_rate"`
	FrameRate    *float64 `toml:"frame_rate"`
	PrefsFile    *string  `toml:"prefs_file"`
}

// FlagSet declares the command line flags. The same set is attached to the
// cobra root command and read back by FromFlags.
func FlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("mihomo-tui", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringP("api", "a", DefaultAPI, "mihomo external controller address")
	fs.StringP("secret", "s", "", "mihomo external controller secret")
	fs.StringP("config", "c", DefaultConfigFile, "path to the configuration file")
	fs.String("log-file", DefaultLogFile, "path to the log file")
	fs.String("log-level", DefaultLogLevel, "log level (debug, info, warn, error)")
	fs.Bool("trace", false, "enable verbose JSON trace logging")
	fs.Float64("tick-rate", DefaultTickRate, "data refresh rate in hertz")
	fs.Float64("frame-rate", DefaultFrameRate, "redraw rate in hertz")
	fs.String("prefs-file", DefaultPrefsFile, "path to the proxy test settings file")
	return fs
}

// LoadArgs allows tests to supply specific args/environment.
func LoadArgs(args []string, environ []string) (Config, error) {
	fs := FlagSet()
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return FromFlags(fs, environ)
}

// FromFlags resolves the configuration from parsed flags, the environment and
// the configuration file. Explicit flags win over the environment, which wins
// over the file.
func FromFlags(fs *pflag.FlagSet, environ []string) (Config, error) {
	env := parseEnv(environ)
	cfg := Config{
		App: app.Config{
			API:       DefaultAPI,
			TickRate:  DefaultTickRate,
			FrameRate: DefaultFrameRate,
			PrefsFile: DefaultPrefsFile,
		},
		Logging: Logging{
			FilePath: DefaultLogFile,
			Level:    DefaultLogLevel,
		},
		Args: append([]string(nil), fs.Args()...),
	}

	path, explicit := DefaultConfigFile, false
	if v, ok := env[envConfig]; ok && v != "" {
		path, explicit = v, true
	}
	if fs.Changed("config") {
		path, _ = fs.GetString("config")
		explicit = true
	}
	file, err := readFile(path, explicit)
	if err != nil {
		return Config{}, err
	}
	if file != nil {
		cfg.File = path
		file.apply(&cfg)
	}

	if err := applyEnv(env, &cfg); err != nil {
		return Config{}, err
	}
	applyFlags(fs, &cfg)

	cfg.Flags = map[string]string{
		"api":       cfg.App.API,
		"config":    cfg.File,
		"logFile":   cfg.Logging.FilePath,
		"logLevel":  cfg.Logging.Level,
		"trace":     strconv.FormatBool(cfg.Logging.Trace),
		"tickRate":  strconv.FormatFloat(cfg.App.TickRate, 'f', -1, 64),
		"frameRate": strconv.FormatFloat(cfg.App.FrameRate, 'f', -1, 64),
		"prefsFile": cfg.App.PrefsFile,
	}
	return cfg, nil
}

// readFile loads path. A missing file is only an error when it was asked for
// explicitly.
func readFile(path string, explicit bool) (*fileConfig, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("expand config path: %w", err)
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return nil, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &fc, nil
}

func (fc *fileConfig) apply(cfg *Config) {
	setString(&cfg.App.API, fc.MihomoAPI)
	setString(&cfg.App.Secret, fc.MihomoSecret)
	setString(&cfg.Logging.FilePath, fc.LogFile)
	setString(&cfg.Logging.Level, fc.LogLevel)
	setString(&cfg.App.PrefsFile, fc.PrefsFile)
	if fc.Trace != nil {
		cfg.Logging.Trace = *fc.Trace
	}
	if fc.TickRate != nil {
		cfg.App.TickRate = *fc.TickRate
	}
	if fc.FrameRate != nil {
		cfg.App.FrameRate = *fc.FrameRate
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func applyEnv(env map[string]string, cfg *Config) error {
	envString(env, envAPI, &cfg.App.API)
	envString(env, envSecret, &cfg.App.Secret)
	envString(env, envLogFile, &cfg.Logging.FilePath)
	envString(env, envLogLevel, &cfg.Logging.Level)
	envString(env, envPrefsFile, &cfg.App.PrefsFile)
	if v, ok := env[envTrace]; ok && strings.TrimSpace(v) != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", envTrace, err)
		}
		cfg.Logging.Trace = parsed
	}
	for key, dst := range map[string]*float64{envTickRate: &cfg.App.TickRate, envFrameRate: &cfg.App.FrameRate} {
		v, ok := env[key]
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = parsed
	}
	return nil
}

func envString(env map[string]string, key string, dst *string) {
	if v, ok := env[key]; ok && v != "" {
		*dst = v
	}
}

func applyFlags(fs *pflag.FlagSet, cfg *Config) {
	targets := map[string]*string{
		"api":        &cfg.App.API,
		"secret":     &cfg.App.Secret,
		"log-file":   &cfg.Logging.FilePath,
		"log-level":  &cfg.Logging.Level,
		"prefs-file": &cfg.App.PrefsFile,
	}
	for name, dst := range targets {
		if fs.Changed(name) {
			*dst, _ = fs.GetString(name)
		}
	}
	if fs.Changed("trace") {
		cfg.Logging.Trace, _ = fs.GetBool("trace")
	}
	if fs.Changed("tick-rate") {
		cfg.App.TickRate, _ = fs.GetFloat64("tick-rate")
	}
	if fs.Changed("frame-rate") {
		cfg.App.FrameRate, _ = fs.GetFloat64("frame-rate")
	}
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		values[parts[0]] = parts[1]
	}
	return values
}

// Validate ensures required minimum configuration is present.
func Validate(cfg Config) error {
	u, err := url.Parse(cfg.App.API)
	if err != nil || u.Host == "" {
		return fmt.Errorf("api must be an absolute URL (got %q)", cfg.App.API)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api must use http or https (got %q)", u.Scheme)
	}
	if cfg.App.TickRate <= 0 {
		return fmt.Errorf("tick rate must be > 0 (got %v)", cfg.App.TickRate)
	}
	if cfg.App.FrameRate <= 0 {
		return fmt.Errorf("frame rate must be > 0 (got %v)", cfg.App.FrameRate)
	}
	if !logging.ValidLevel(cfg.Logging.Level) {
		return fmt.Errorf("unknown log level %q", cfg.Logging.Level)
	}
	return nil
}
