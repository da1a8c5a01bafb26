package logging

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func configureTemp(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "tui.log")
	Configure(path)
	t.Cleanup(func() {
		SetTraceEnabled(false)
		Close()
		Configure("")
	})
	return path
}

func TestTraceDisabledWritesNothing(t *testing.T) {
	path := configureTemp(t)
	SetTraceEnabled(false)
	Trace("ingest.start", map[string]interface{}{"endpoint": "logs"})
	Close()
	if data, err := os.ReadFile(path); err == nil && len(data) > 0 {
		t.Fatalf("expected empty log, got %q", string(data))
	}
}

func TestTraceWritesJSONLine(t *testing.T) {
	path := configureTemp(t)
	SetTraceEnabled(true)
	Trace("ui.tab", map[string]interface{}{"from": "Overview", "to": "Logs"})
	Close()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		t.Fatalf("expected a trace line")
	}
	var entry map[string]interface{}
	if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON trace line, got %q: %v", scanner.Text(), err)
	}
	if entry["event"] != "ui.tab" {
		t.Fatalf("expected event ui.tab, got %v", entry["event"])
	}
	payload, ok := entry["payload"].(map[string]interface{})
	if !ok || payload["to"] != "Logs" {
		t.Fatalf("expected payload with to=Logs, got %#v", entry["payload"])
	}
}

func TestErrorAppendsToFile(t *testing.T) {
	path := configureTemp(t)
	Error(errors.New("stream dropped"))
	Error(nil)
	Close()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "stream dropped") {
		t.Fatalf("expected error in log, got %q", string(data))
	}
	if strings.Count(string(data), "\n") != 1 {
		t.Fatalf("expected exactly one line, got %q", string(data))
	}
}

func TestSetLevelFiltersDebug(t *testing.T) {
	path := configureTemp(t)
	if err := SetLevel("warn"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { _ = SetLevel("info") })
	Debugf("hidden %d", 1)
	Warnf("visible %d", 2)
	Close()
	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "hidden") {
		t.Fatalf("expected debug line to be filtered, got %q", string(data))
	}
	if !strings.Contains(string(data), "visible 2") {
		t.Fatalf("expected warn line, got %q", string(data))
	}
	if err := SetLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
