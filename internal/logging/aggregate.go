package logging

import (
	"bufio"
	"compress/gzip"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// LogEntry is one parsed log line with its structured fields.
type LogEntry struct {
	Timestamp time.Time      `json:"time"`
	Level     string         `json:"level"`
	Message   string         `json:"msg"`
	RequestID string         `json:"request_id,omitempty"`
	Phase     string         `json:"phase,omitempty"`
	Strategy  string         `json:"strategy,omitempty"`
	Attrs     map[string]any `json:"attrs,omitempty"`
}

// LogFilter selects log entries. Every set field must match; zero-valued
// fields do not constrain the result.
type LogFilter struct {
	// Level keeps entries at or above this level
	// (DEBUG < INFO < WARN < ERROR).
	Level string

	// StartTime and EndTime bound the entry timestamps, inclusive.
	StartTime time.Time
	EndTime   time.Time

	// RequestID keeps entries from one request.
	RequestID string

	// Phase keeps entries from one pipeline phase.
	Phase string

	// Strategy keeps entries from one parse strategy.
	Strategy string

	// MessageContains keeps entries whose message has this substring.
	MessageContains string
}

// severity ranks levels for the Level filter.
var severity = map[string]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// AggregateLogs reads every log entry under a log directory: the active
// reparto.log plus any rotated backups, gzipped or not. Entries come
// back in timestamp order. Lines that do not parse as JSON are skipped,
// so a truncated log still yields its readable part.
func AggregateLogs(logDir string) ([]LogEntry, error) {
	paths, err := logFiles(logDir)
	if err != nil {
		return nil, err
	}

	var entries []LogEntry
	for _, path := range paths {
		fromFile, err := readEntries(path)
		if err != nil {
			return nil, err
		}
		entries = append(entries, fromFile...)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timestamp.Before(entries[j].Timestamp)
	})
	return entries, nil
}

// logFiles lists the active log and its rotated backups. The active file
// must exist; backups are optional.
func logFiles(logDir string) ([]string, error) {
	active := filepath.Join(logDir, LogFileName)
	if _, err := os.Stat(active); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no log file found in log directory: %w", err)
		}
		return nil, fmt.Errorf("failed to stat log file: %w", err)
	}

	backups, err := filepath.Glob(active + ".*")
	if err != nil {
		return nil, fmt.Errorf("failed to list log backups: %w", err)
	}
	return append(backups, active), nil
}

// readEntries parses one log file, transparently decompressing .gz
// backups.
func readEntries(path string) ([]LogEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var reader io.Reader = file
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read compressed log: %w", err)
		}
		defer func() { _ = gz.Close() }()
		reader = gz
	}

	var entries []LogEntry
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		entry, err := parseLogEntry(line)
		if err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading log file: %w", err)
	}
	return entries, nil
}

// ParseEntry parses a single JSON log line into a LogEntry. Callers
// tailing a live log use it to handle lines one at a time.
func ParseEntry(line string) (LogEntry, error) {
	return parseLogEntry(line)
}

// knownKeys are the JSON keys mapped to named LogEntry fields. Anything
// else on a log line lands in Attrs.
var knownKeys = []string{"time", "level", "msg", "request_id", "phase", "strategy"}

func parseLogEntry(line string) (LogEntry, error) {
	var entry LogEntry
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		return LogEntry{}, fmt.Errorf("invalid log line: %w", err)
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return LogEntry{}, fmt.Errorf("invalid log line: %w", err)
	}
	for _, key := range knownKeys {
		delete(raw, key)
	}
	if len(raw) > 0 {
		entry.Attrs = raw
	}
	return entry, nil
}

// FilterLogs returns the entries matching every set field of filter.
func FilterLogs(entries []LogEntry, filter LogFilter) []LogEntry {
	var out []LogEntry
	for _, entry := range entries {
		if filter.matches(entry) {
			out = append(out, entry)
		}
	}
	return out
}

func (f LogFilter) matches(e LogEntry) bool {
	if f.Level != "" {
		want, knownWant := severity[strings.ToUpper(f.Level)]
		got, knownGot := severity[e.Level]
		if knownWant && knownGot && got < want {
			return false
		}
	}
	if !f.StartTime.IsZero() && e.Timestamp.Before(f.StartTime) {
		return false
	}
	if !f.EndTime.IsZero() && e.Timestamp.After(f.EndTime) {
		return false
	}
	if f.RequestID != "" && e.RequestID != f.RequestID {
		return false
	}
	if f.Phase != "" && e.Phase != f.Phase {
		return false
	}
	if f.Strategy != "" && e.Strategy != f.Strategy {
		return false
	}
	if f.MessageContains != "" && !strings.Contains(e.Message, f.MessageContains) {
		return false
	}
	return true
}

// ExportLogEntries writes entries to a file in the given format. The
// supported formats are "json", "text", and "csv".
func ExportLogEntries(entries []LogEntry, outputPath string, format string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	switch strings.ToLower(format) {
	case "json":
		return exportJSON(file, entries)
	case "text":
		return exportText(file, entries)
	case "csv":
		return exportCSV(file, entries)
	default:
		return fmt.Errorf("unsupported export format: %s (supported: json, text, csv)", format)
	}
}

// exportJSON writes entries as an indented JSON array.
func exportJSON(w io.Writer, entries []LogEntry) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}

// exportText writes one line per entry:
// [timestamp] LEVEL - message (request=..., phase=...) {extra attrs}
func exportText(w io.Writer, entries []LogEntry) error {
	for _, entry := range entries {
		var line strings.Builder
		fmt.Fprintf(&line, "[%s] %s - %s",
			entry.Timestamp.Format("2006-01-02 15:04:05.000"), entry.Level, entry.Message)
		if scope := entryScope(entry); scope != "" {
			fmt.Fprintf(&line, " (%s)", scope)
		}
		if len(entry.Attrs) > 0 {
			extra, _ := json.Marshal(entry.Attrs)
			fmt.Fprintf(&line, " %s", extra)
		}
		line.WriteByte('\n')
		if _, err := io.WriteString(w, line.String()); err != nil {
			return fmt.Errorf("failed to write text entry: %w", err)
		}
	}
	return nil
}

// entryScope renders the run context fields of an entry.
func entryScope(e LogEntry) string {
	var scope []string
	if e.RequestID != "" {
		scope = append(scope, "request="+e.RequestID)
	}
	if e.Phase != "" {
		scope = append(scope, "phase="+e.Phase)
	}
	if e.Strategy != "" {
		scope = append(scope, "strategy="+e.Strategy)
	}
	return strings.Join(scope, ", ")
}

// exportCSV writes entries as CSV with a header row.
func exportCSV(w io.Writer, entries []LogEntry) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"timestamp", "level", "message", "request_id", "phase", "strategy", "attrs"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, entry := range entries {
		var extra string
		if len(entry.Attrs) > 0 {
			if b, err := json.Marshal(entry.Attrs); err == nil {
				extra = string(b)
			}
		}
		row := []string{
			entry.Timestamp.Format(time.RFC3339Nano),
			entry.Level,
			entry.Message,
			entry.RequestID,
			entry.Phase,
			entry.Strategy,
			extra,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	return nil
}
