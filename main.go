package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/potoo0/mihomo-tui-sub000/internal/app"
	"github.com/potoo0/mihomo-tui-sub000/internal/config"
	"github.com/potoo0/mihomo-tui-sub000/internal/logging"
	"github.com/potoo0/mihomo-tui-sub000/internal/logging/events"
)

const versionTimeout = 3 * time.Second

// exitError carries the process exit status for a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func main() {
	if err := newRootCmd().Execute(); err != nil {
		code := 1
		if ee, ok := err.(*exitError); ok {
			code = ee.code
		}
		fmt.Fprintf(color.Error, "%s %v\n", color.RedString("Error:"), err)
		os.Exit(code)
	}
}

func newRootCmd() *cobra.Command {
	flags := config.FlagSet()
	root := &cobra.Command{
		Use:           "mihomo-tui",
		Short:         "Terminal dashboard for a mihomo proxy core",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolve(cmd)
			if err != nil {
				return err
			}
			traceStartup(cfg)
			if err := app.Run(cfg.App); err != nil {
				logging.Error(err)
				return err
			}
			return nil
		},
	}
	root.PersistentFlags().AddFlagSet(flags)
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print client and core versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolve(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), versionTimeout)
			defer cancel()
			core := "unknown"
			if v, err := app.CoreVersion(ctx, cfg.App); err != nil {
				core = color.YellowString(err.Error())
			} else if s := v.String(); s != "" {
				core = s
			}

			tbl := uitable.New()
			tbl.Separator = "  "
			tbl.AddRow("client", app.Version)
			tbl.AddRow("core", core)
			tbl.AddRow("api", cfg.App.API)
			_, _ = fmt.Fprintln(color.Output, tbl)
			return nil
		},
	}
}

// resolve builds and validates the configuration, then sets up logging.
func resolve(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.FromFlags(cmd.Flags(), os.Environ())
	if err != nil {
		return config.Config{}, &exitError{code: 2, err: fmt.Errorf("configuration: %w", err)}
	}
	if err := config.Validate(cfg); err != nil {
		return config.Config{}, &exitError{code: 2, err: fmt.Errorf("configuration: %w", err)}
	}
	logging.Configure(cfg.Logging.FilePath)
	if err := logging.SetLevel(cfg.Logging.Level); err != nil {
		return config.Config{}, &exitError{code: 2, err: err}
	}
	logging.SetTraceEnabled(cfg.Logging.Trace)
	return cfg, nil
}

func traceStartup(cfg config.Config) {
	events.App.Start(startupTracePayload(cfg))
}

// startupTracePayload bundles runtime context for trace logging.
func startupTracePayload(cfg config.Config) map[string]interface{} {
	flags := make(map[string]interface{}, len(cfg.Flags))
	for k, v := range cfg.Flags {
		flags[k] = v
	}
	flags["trace"] = cfg.Logging.Trace
	flags["logFile"] = cfg.Logging.FilePath
	redacted := cfg
	if redacted.App.Secret != "" {
		redacted.App.Secret = "***"
	}
	payload := map[string]interface{}{
		"argv":    cfg.Args,
		"flags":   flags,
		"config":  redacted,
		"version": app.Version,
	}
	if exe, err := os.Executable(); err == nil {
		payload["executable"] = exe
	} else {
		payload["executableError"] = err.Error()
	}
	if cwd, err := os.Getwd(); err == nil {
		payload["cwd"] = cwd
	} else {
		payload["cwdError"] = err.Error()
	}
	payload["tty"] = collectTTYDetails()
	return payload
}

type ttyDetails struct {
	Detected *ttyDetected     `json:"detected,omitempty"`
	Probes   []ttyProbeResult `json:"probes"`
}

type ttyDetected struct {
	Source string `json:"source"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type ttyProbeResult struct {
	Name       string `json:"name"`
	IsTerminal bool   `json:"is_terminal"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	Error      string `json:"error,omitempty"`
}

// collectTTYDetails inspects standard descriptors for terminal support and dimensions.
func collectTTYDetails() ttyDetails {
	probes := []struct {
		name string
		fd   uintptr
	}{
		{"stdin", os.Stdin.Fd()},
		{"stdout", os.Stdout.Fd()},
		{"stderr", os.Stderr.Fd()},
	}
	results := make([]ttyProbeResult, 0, len(probes))
	var detected *ttyDetected
	for _, probe := range probes {
		entry := ttyProbeResult{Name: probe.name}
		fd := int(probe.fd)
		if fd >= 0 && term.IsTerminal(fd) {
			entry.IsTerminal = true
			if width, height, err := term.GetSize(fd); err == nil {
				entry.Width = width
				entry.Height = height
				if detected == nil {
					detected = &ttyDetected{Source: probe.name, Width: width, Height: height}
				}
			} else {
				entry.Error = err.Error()
			}
		}
		results = append(results, entry)
	}
	return ttyDetails{Detected: detected, Probes: results}
}
