package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for input, want := range cases {
		if got := ParseLevel(input); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestNewWithWriterJSON(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "info", "json")
	logger.Debug("hidden")
	logger.Info("journal.saved", "entry_id", "abc")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 log line, got %d: %q", len(lines), buf.String())
	}
	var record map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &record); err != nil {
		t.Fatalf("decode json log line: %v", err)
	}
	if record["msg"] != "journal.saved" || record["entry_id"] != "abc" {
		t.Fatalf("unexpected record: %v", record)
	}
	if _, ok := record["source"]; ok {
		t.Fatalf("json logs should not carry source: %v", record)
	}
	if slog.Default() != logger {
		t.Fatalf("expected logger installed as default")
	}
}

func TestNewWithWriterText(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "debug", "text")
	logger.Debug("analysis.tier", "tier", "heuristic")

	out := buf.String()
	if !strings.Contains(out, "msg=analysis.tier") || !strings.Contains(out, "tier=heuristic") {
		t.Fatalf("unexpected text output: %q", out)
	}
	if !strings.Contains(out, "source=") {
		t.Fatalf("text logs should carry source: %q", out)
	}
}
