package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "debug", Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Info("lookup complete", slog.String("doi", "10.1000/xyz"), slog.Int("hits", 3))

	line := buf.String()
	if !strings.Contains(line, "INFO") {
		t.Errorf("missing level label in %q", line)
	}
	if !strings.Contains(line, "lookup complete") {
		t.Errorf("missing message in %q", line)
	}
	if !strings.Contains(line, "doi=10.1000/xyz") {
		t.Errorf("missing doi attr in %q", line)
	}
	if !strings.Contains(line, "hits=3") {
		t.Errorf("missing hits attr in %q", line)
	}
}

func TestNewJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Warn("provider unavailable", slog.String("provider", "crossref"))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["level"] != "warn" {
		t.Errorf("level = %v, want warn", entry["level"])
	}
	if entry["msg"] != "provider unavailable" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["provider"] != "crossref" {
		t.Errorf("provider = %v", entry["provider"])
	}
}

func TestNewLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "warn", Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Info("should be dropped")
	logger.Debug("also dropped")
	if buf.Len() != 0 {
		t.Errorf("expected no output below warn, got %q", buf.String())
	}

	logger.Error("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Errorf("error line missing: %q", buf.String())
	}
}

func TestNewUnsupportedFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewNopDiscards(t *testing.T) {
	logger := NewNop()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Error("nop logger should not be enabled at any level")
	}
	logger.Error("goes nowhere")
}

func TestWithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "debug", Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.With(slog.String("component", "enrich")).
		WithGroup("run").
		Info("started", slog.String("id", "abc"))

	line := buf.String()
	if !strings.Contains(line, "component=enrich") {
		t.Errorf("missing inherited attr in %q", line)
	}
	if !strings.Contains(line, "run.id=abc") {
		t.Errorf("missing grouped attr in %q", line)
	}
}
