package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultLogFile = "mihomo-tui.log"

var (
	mu           sync.Mutex
	traceEnabled bool
	logPath      = defaultLogFile
	level        = logrus.InfoLevel
	out          io.WriteCloser
	logger       *logrus.Logger
	tracer       *logrus.Logger
)

// Error writes errors to the shared log file.
func Error(err error) {
	if err == nil {
		return
	}
	if l := current(); l != nil {
		l.Error(err.Error())
	}
}

// Debugf, Infof and Warnf write leveled lines to the shared log file.
func Debugf(format string, args ...interface{}) {
	if l := current(); l != nil {
		l.Debugf(format, args...)
	}
}

func Infof(format string, args ...interface{}) {
	if l := current(); l != nil {
		l.Infof(format, args...)
	}
}

func Warnf(format string, args ...interface{}) {
	if l := current(); l != nil {
		l.Warnf(format, args...)
	}
}

// WithFields returns an entry carrying structured context.
func WithFields(fields map[string]interface{}) *logrus.Entry {
	l := current()
	if l == nil {
		l = discard()
	}
	return l.WithFields(logrus.Fields(fields))
}

// SetTraceEnabled toggles emission of structured trace entries.
func SetTraceEnabled(enabled bool) {
	mu.Lock()
	traceEnabled = enabled
	mu.Unlock()
}

// TraceEnabled reports whether trace entries are written.
func TraceEnabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return traceEnabled
}

// SetLevel parses a logrus level name. Unknown names keep the current level.
func SetLevel(name string) error {
	parsed, err := logrus.ParseLevel(strings.TrimSpace(name))
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}
	mu.Lock()
	level = parsed
	if logger != nil {
		logger.SetLevel(parsed)
	}
	mu.Unlock()
	return nil
}

// ValidLevel reports whether SetLevel would accept name.
func ValidLevel(name string) bool {
	_, err := logrus.ParseLevel(strings.TrimSpace(name))
	return err == nil
}

// Trace appends a structured JSON entry to the shared log when tracing is enabled.
func Trace(event string, payload interface{}) {
	mu.Lock()
	enabled := traceEnabled
	mu.Unlock()
	if !enabled {
		return
	}
	t := currentTracer()
	if t == nil {
		return
	}
	entry := t.WithTime(time.Now().UTC()).WithField("event", event)
	if payload != nil {
		entry = entry.WithField("payload", payload)
	}
	entry.Info("trace")
}

// Configure sets the log destination. Empty values fall back to the default
// path. Directories are created automatically when missing.
func Configure(path string) {
	mu.Lock()
	defer mu.Unlock()
	target := strings.TrimSpace(path)
	if target == "" {
		target = defaultLogFile
	} else if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "unable to create log directory: %v\n", err)
		target = defaultLogFile
	}
	closeLocked()
	logPath = target
}

// Path returns the active log file path.
func Path() string {
	mu.Lock()
	defer mu.Unlock()
	return logPath
}

// Close flushes and releases the log file.
func Close() {
	mu.Lock()
	closeLocked()
	mu.Unlock()
}

func closeLocked() {
	if out != nil {
		out.Close()
	}
	out = nil
	logger = nil
	tracer = nil
}

func current() *logrus.Logger {
	mu.Lock()
	defer mu.Unlock()
	if !openLocked() {
		return nil
	}
	return logger
}

func currentTracer() *logrus.Logger {
	mu.Lock()
	defer mu.Unlock()
	if !openLocked() {
		return nil
	}
	return tracer
}

func openLocked() bool {
	if logger != nil {
		return true
	}
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging failed: %v\n", err)
		return false
	}
	out = f

	logger = logrus.New()
	logger.SetOutput(f)
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})

	tracer = logrus.New()
	tracer.SetOutput(f)
	tracer.SetLevel(logrus.InfoLevel)
	tracer.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339Nano,
		FieldMap:        logrus.FieldMap{logrus.FieldKeyMsg: "kind"},
	})
	return true
}

func discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
