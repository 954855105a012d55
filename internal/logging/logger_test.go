package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// logLines parses every JSON line the logger wrote to dir.
func logLines(t *testing.T, dir string) []map[string]any {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(dir, LogFileName))
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	var lines []map[string]any
	for _, raw := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if raw == "" {
			continue
		}
		var line map[string]any
		if err := json.Unmarshal([]byte(raw), &line); err != nil {
			t.Fatalf("log line is not JSON: %q: %v", raw, err)
		}
		lines = append(lines, line)
	}
	return lines
}

func TestNewLogger(t *testing.T) {
	t.Run("writes JSON lines to the log file", func(t *testing.T) {
		dir := t.TempDir()
		logger, err := NewLogger(dir, "info")
		if err != nil {
			t.Fatalf("NewLogger failed: %v", err)
		}

		logger.Info("roster loaded", "participants", 5)
		if err := logger.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}

		lines := logLines(t, dir)
		if len(lines) != 1 {
			t.Fatalf("expected 1 log line, got %d", len(lines))
		}
		if lines[0]["msg"] != "roster loaded" {
			t.Errorf("msg = %v, want %q", lines[0]["msg"], "roster loaded")
		}
		if lines[0]["level"] != LevelInfo {
			t.Errorf("level = %v, want %s", lines[0]["level"], LevelInfo)
		}
		if lines[0]["participants"] != float64(5) {
			t.Errorf("participants = %v, want 5", lines[0]["participants"])
		}
		if _, ok := lines[0]["time"]; !ok {
			t.Error("expected a time field")
		}
	})

	t.Run("creates the log directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "logs")
		logger, err := NewLogger(dir, "info")
		if err != nil {
			t.Fatalf("NewLogger failed: %v", err)
		}
		defer logger.Close()

		if _, err := os.Stat(filepath.Join(dir, LogFileName)); err != nil {
			t.Errorf("log file was not created: %v", err)
		}
	})

	t.Run("empty dir writes to stderr without a file", func(t *testing.T) {
		logger, err := NewLogger("", "error")
		if err != nil {
			t.Fatalf("NewLogger failed: %v", err)
		}
		if err := logger.Close(); err != nil {
			t.Errorf("Close without a file should be nil, got %v", err)
		}
	})
}

func TestLoggerLevels(t *testing.T) {
	t.Run("info level drops debug entries", func(t *testing.T) {
		dir := t.TempDir()
		logger, err := NewLogger(dir, "info")
		if err != nil {
			t.Fatalf("NewLogger failed: %v", err)
		}

		logger.Debug("replay attempt")
		logger.Info("parsed")
		logger.Warn("low availability")
		logger.Error("generation failed")
		logger.Close()

		lines := logLines(t, dir)
		if len(lines) != 3 {
			t.Fatalf("expected 3 log lines, got %d", len(lines))
		}
		want := []string{LevelInfo, LevelWarn, LevelError}
		for i, line := range lines {
			if line["level"] != want[i] {
				t.Errorf("line %d level = %v, want %s", i, line["level"], want[i])
			}
		}
	})

	t.Run("debug level keeps everything", func(t *testing.T) {
		dir := t.TempDir()
		logger, err := NewLogger(dir, "debug")
		if err != nil {
			t.Fatalf("NewLogger failed: %v", err)
		}

		logger.Debug("replay attempt")
		logger.Info("parsed")
		logger.Close()

		if got := len(logLines(t, dir)); got != 2 {
			t.Errorf("expected 2 log lines, got %d", got)
		}
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		dir := t.TempDir()
		logger, err := NewLogger(dir, "chatty")
		if err != nil {
			t.Fatalf("NewLogger failed: %v", err)
		}

		logger.Debug("replay attempt")
		logger.Info("parsed")
		logger.Close()

		lines := logLines(t, dir)
		if len(lines) != 1 || lines[0]["level"] != LevelInfo {
			t.Errorf("expected a single INFO line, got %v", lines)
		}
	})
}

func TestLoggerContext(t *testing.T) {
	t.Run("child loggers stamp run context", func(t *testing.T) {
		dir := t.TempDir()
		logger, err := NewLogger(dir, "info")
		if err != nil {
			t.Fatalf("NewLogger failed: %v", err)
		}

		child := logger.WithRequest("req-9").WithPhase("parsing").WithStrategy("tolerant")
		child.Info("items recovered", "count", 2)
		logger.Close()

		lines := logLines(t, dir)
		if len(lines) != 1 {
			t.Fatalf("expected 1 log line, got %d", len(lines))
		}
		line := lines[0]
		if line["request_id"] != "req-9" {
			t.Errorf("request_id = %v, want req-9", line["request_id"])
		}
		if line["phase"] != "parsing" {
			t.Errorf("phase = %v, want parsing", line["phase"])
		}
		if line["strategy"] != "tolerant" {
			t.Errorf("strategy = %v, want tolerant", line["strategy"])
		}
		if line["count"] != float64(2) {
			t.Errorf("count = %v, want 2", line["count"])
		}
	})

	t.Run("parent is not contaminated by the child", func(t *testing.T) {
		dir := t.TempDir()
		logger, err := NewLogger(dir, "info")
		if err != nil {
			t.Fatalf("NewLogger failed: %v", err)
		}

		logger.WithComponent("engine").Info("scored")
		logger.Info("done")
		logger.Close()

		lines := logLines(t, dir)
		if len(lines) != 2 {
			t.Fatalf("expected 2 log lines, got %d", len(lines))
		}
		if lines[0]["component"] != "engine" {
			t.Errorf("child line missing component, got %v", lines[0])
		}
		if _, ok := lines[1]["component"]; ok {
			t.Errorf("parent line should not carry component, got %v", lines[1])
		}
	})

	t.Run("With accepts arbitrary pairs", func(t *testing.T) {
		dir := t.TempDir()
		logger, err := NewLogger(dir, "info")
		if err != nil {
			t.Fatalf("NewLogger failed: %v", err)
		}

		logger.With("roster", "class-3b", "items", 4).Info("assigned")
		logger.Close()

		line := logLines(t, dir)[0]
		if line["roster"] != "class-3b" || line["items"] != float64(4) {
			t.Errorf("bound attrs missing, got %v", line)
		}
	})

	t.Run("With of nothing returns the same logger", func(t *testing.T) {
		logger := NopLogger()
		if logger.With() != logger {
			t.Error("With() should return the receiver")
		}
	})
}

func TestLoggerClose(t *testing.T) {
	t.Run("close is idempotent", func(t *testing.T) {
		logger, err := NewLogger(t.TempDir(), "info")
		if err != nil {
			t.Fatalf("NewLogger failed: %v", err)
		}
		if err := logger.Close(); err != nil {
			t.Fatalf("first Close failed: %v", err)
		}
		if err := logger.Close(); err != nil {
			t.Errorf("second Close should be nil, got %v", err)
		}
	})

	t.Run("children share the file with the parent", func(t *testing.T) {
		logger, err := NewLogger(t.TempDir(), "info")
		if err != nil {
			t.Fatalf("NewLogger failed: %v", err)
		}

		child := logger.WithRequest("req-1")
		if err := child.Close(); err != nil {
			t.Fatalf("Close via child failed: %v", err)
		}
		if err := logger.Close(); err != nil {
			t.Errorf("parent Close after child Close should be nil, got %v", err)
		}
	})
}

func TestNopLogger(t *testing.T) {
	logger := NopLogger()
	logger.Debug("dropped")
	logger.Info("dropped")
	logger.Warn("dropped")
	logger.Error("dropped")
	logger.WithRequest("req-1").WithPhase("assigning").Info("dropped")

	if err := logger.Close(); err != nil {
		t.Errorf("Close on NopLogger should be nil, got %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]string{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"Warn":    LevelWarn,
		"error":   LevelError,
		"verbose": LevelInfo,
		"":        LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestValidLevels(t *testing.T) {
	levels := ValidLevels()
	if len(levels) != 4 {
		t.Fatalf("expected 4 levels, got %d", len(levels))
	}
	if levels[0] != LevelDebug || levels[3] != LevelError {
		t.Errorf("levels out of severity order: %v", levels)
	}
}
