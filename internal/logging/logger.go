package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// LogFileName is the file created inside the log directory.
const LogFileName = "reparto.log"

// Levels accepted by NewLogger and stored in emitted entries.
const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// sink is the closable destination behind a Logger. Both a plain
// *os.File and a *RotatingWriter satisfy it.
type sink interface {
	Sync() error
	Close() error
}

// Logger emits JSON log lines enriched with run context. The With
// methods derive child loggers that stamp every entry with a request ID,
// phase, or strategy; all children share one destination, so closing any
// of them closes the underlying file. Safe for concurrent use.
type Logger struct {
	slog *slog.Logger
	out  *shared
}

// shared is the destination common to a logger and all its children.
type shared struct {
	mu   sync.Mutex
	sink sink
}

// NewLogger opens {logDir}/reparto.log for appending and returns a
// Logger writing JSON lines to it. Entries below level are dropped;
// unrecognized level strings fall back to INFO. An empty logDir sends
// output to stderr instead.
func NewLogger(logDir string, level string) (*Logger, error) {
	if logDir == "" {
		return newLogger(os.Stderr, nil, level), nil
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	path := filepath.Join(logDir, LogFileName)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return newLogger(file, file, level), nil
}

// NewLoggerWithRotation is NewLogger with a size cap: once the file
// passes config.MaxSizeMB the writer moves it aside and keeps the
// configured number of backups. An empty logDir means stderr, where
// rotation does not apply.
func NewLoggerWithRotation(logDir string, level string, config RotationConfig) (*Logger, error) {
	if logDir == "" {
		return NewLogger("", level)
	}

	rw, err := NewRotatingWriter(filepath.Join(logDir, LogFileName), config)
	if err != nil {
		return nil, err
	}
	return newLogger(rw, rw, level), nil
}

// NopLogger returns a Logger that discards everything. Components take
// it when logging is disabled so they never have to nil-check.
func NopLogger() *Logger {
	return newLogger(io.Discard, nil, LevelError)
}

func newLogger(w io.Writer, s sink, level string) *Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slogLevel(level)})
	return &Logger{
		slog: slog.New(handler),
		out:  &shared{sink: s},
	}
}

// slogLevel maps a level string onto slog's scale, defaulting to INFO.
func slogLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithRequest stamps every entry with the request ID so one run can be
// pulled out of an aggregated log.
func (l *Logger) WithRequest(requestID string) *Logger {
	return l.derive("request_id", requestID)
}

// WithPhase stamps entries with the pipeline phase, such as "generating"
// or "assigning".
func (l *Logger) WithPhase(phase string) *Logger {
	return l.derive("phase", phase)
}

// WithStrategy stamps entries with the parse strategy that produced
// them.
func (l *Logger) WithStrategy(strategy string) *Logger {
	return l.derive("strategy", strategy)
}

// WithComponent stamps entries with the reporting component, such as
// "parser" or "engine".
func (l *Logger) WithComponent(component string) *Logger {
	return l.derive("component", component)
}

// With returns a child Logger carrying the given alternating key-value
// pairs on every entry.
func (l *Logger) With(args ...any) *Logger {
	if len(args) == 0 {
		return l
	}
	return &Logger{slog: l.slog.With(args...), out: l.out}
}

func (l *Logger) derive(key, value string) *Logger {
	return &Logger{slog: l.slog.With(key, value), out: l.out}
}

// Debug records a DEBUG entry with optional key-value pairs.
func (l *Logger) Debug(msg string, args ...any) {
	l.slog.Debug(msg, args...)
}

// Info records an INFO entry with optional key-value pairs.
func (l *Logger) Info(msg string, args ...any) {
	l.slog.Info(msg, args...)
}

// Warn records a WARN entry with optional key-value pairs.
func (l *Logger) Warn(msg string, args ...any) {
	l.slog.Warn(msg, args...)
}

// Error records an ERROR entry with optional key-value pairs.
func (l *Logger) Error(msg string, args ...any) {
	l.slog.Error(msg, args...)
}

// Close flushes and closes the log file. Loggers writing to stderr, and
// loggers already closed, return nil. Children of this logger share the
// file and are closed along with it.
func (l *Logger) Close() error {
	l.out.mu.Lock()
	defer l.out.mu.Unlock()

	if l.out.sink == nil {
		return nil
	}
	if err := l.out.sink.Sync(); err != nil {
		return fmt.Errorf("failed to sync log file: %w", err)
	}
	if err := l.out.sink.Close(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	l.out.sink = nil
	return nil
}

// ParseLevel normalizes a level string to one of the Level constants,
// falling back to LevelInfo for anything it does not recognize.
func ParseLevel(level string) string {
	up := strings.ToUpper(level)
	for _, known := range ValidLevels() {
		if up == known {
			return known
		}
	}
	return LevelInfo
}

// ValidLevels lists the accepted level strings in severity order.
func ValidLevels() []string {
	return []string{LevelDebug, LevelInfo, LevelWarn, LevelError}
}
