package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/atelier-edu/reparto/internal/config"
	"github.com/atelier-edu/reparto/internal/logging"
)

// decomposition is a response in the block format the parser chain
// reads at full confidence.
const decomposition = `ITEM 1:
Description: Research harvest traditions in the library corner
Competencies: research, language
Complexity: 5
Type: individual
Duration: 45
Dependencies: none

ITEM 2:
Description: Build the display stand from cardboard
Competencies: crafts
Complexity: 3
Type: pair
Duration: 30
Dependencies: ITEM 1
`

const rosterYAML = `participants:
  - id: p1
    name: Ana
    neurotype: typical
    availability: 90
    strengths: [research]
  - id: p2
    name: Bo
    neurotype: adhd
    availability: 60
    support_needs: [frequent_breaks]
`

// executeCommand runs a cobra command with args and returns captured output
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err = root.Execute()
	return buf.String(), err
}

// resetFlags restores every registered flag to its default. Flag values
// land on package-level vars and persist between Execute calls, so each
// test starts from a clean slate.
func resetFlags() {
	reset := func(f *pflag.Flag) {
		if f.Changed {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		}
	}
	rootCmd.PersistentFlags().VisitAll(reset)
	for _, c := range rootCmd.Commands() {
		c.Flags().VisitAll(reset)
	}
}

// setupTestConfig points the config directory at a temp dir so tests
// never touch the user's real config or logs.
func setupTestConfig(t *testing.T) string {
	t.Helper()
	resetFlags()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return dir
}

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

func TestRootCommand(t *testing.T) {
	if rootCmd.Use != "reparto" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "reparto")
	}

	expectedCmds := []string{"assign", "parse", "roster", "config", "logs"}
	cmdMap := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		cmdMap[cmd.Name()] = true
	}
	for _, expected := range expectedCmds {
		if !cmdMap[expected] {
			t.Errorf("expected subcommand %q not found", expected)
		}
	}
}

func TestAssignCommand_RequiresIntent(t *testing.T) {
	setupTestConfig(t)

	_, err := executeCommand(rootCmd, "assign")
	if err == nil || !strings.Contains(err.Error(), "--intent") {
		t.Errorf("err = %v, want an --intent requirement", err)
	}
}

func TestAssignCommand_FromFile(t *testing.T) {
	setupTestConfig(t)
	file := writeFixture(t, "response.txt", decomposition)

	output, err := executeCommand(rootCmd,
		"assign", "--intent", "stage the harvest exhibition", "--from", file)
	if err != nil {
		t.Fatalf("assign failed: %v\nOutput: %s", err, output)
	}

	for _, want := range []string{"Assignment result", "item-01", "coherence", "strict"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestAssignCommand_RosterFlag(t *testing.T) {
	setupTestConfig(t)
	file := writeFixture(t, "response.txt", decomposition)
	roster := writeFixture(t, "roster.yaml", rosterYAML)

	output, err := executeCommand(rootCmd,
		"assign", "-i", "harvest exhibition", "--from", file, "--roster", roster)
	if err != nil {
		t.Fatalf("assign failed: %v\nOutput: %s", err, output)
	}
	if !strings.Contains(output, "Ana") {
		t.Errorf("output does not use the supplied roster:\n%s", output)
	}
}

func TestAssignCommand_JSON(t *testing.T) {
	setupTestConfig(t)
	file := writeFixture(t, "response.txt", decomposition)

	output, err := executeCommand(rootCmd,
		"assign", "-i", "harvest exhibition", "--from", file, "--json")
	if err != nil {
		t.Fatalf("assign failed: %v\nOutput: %s", err, output)
	}

	var res struct {
		RequestID       string `json:"request_id"`
		ParseConfidence string `json:"parse_confidence"`
		Record          struct {
			Assignments map[string][]json.RawMessage `json:"assignments"`
		} `json:"record"`
	}
	if err := json.Unmarshal([]byte(output), &res); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, output)
	}
	if res.RequestID == "" {
		t.Error("request_id missing from JSON output")
	}
	if res.ParseConfidence != "high" {
		t.Errorf("parse_confidence = %q, want high", res.ParseConfidence)
	}
	if len(res.Record.Assignments) == 0 {
		t.Error("record.assignments missing from JSON output")
	}
}

func TestParseCommand(t *testing.T) {
	setupTestConfig(t)
	file := writeFixture(t, "response.txt", decomposition)

	output, err := executeCommand(rootCmd, "parse", file)
	if err != nil {
		t.Fatalf("parse failed: %v\nOutput: %s", err, output)
	}

	for _, want := range []string{"parsed via strict", "item-01", "item-02", "validation: clean"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
	if strings.Contains(output, "degraded") {
		t.Errorf("well formed input reported as degraded:\n%s", output)
	}
}

func TestParseCommand_JSON(t *testing.T) {
	setupTestConfig(t)
	file := writeFixture(t, "response.txt", decomposition)

	output, err := executeCommand(rootCmd, "parse", file, "--json")
	if err != nil {
		t.Fatalf("parse failed: %v\nOutput: %s", err, output)
	}

	var out parseOutput
	if err := json.Unmarshal([]byte(output), &out); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, output)
	}
	if len(out.Items) != 2 {
		t.Errorf("items = %d, want 2", len(out.Items))
	}
	if out.Strategy != "strict" {
		t.Errorf("strategy = %q, want strict", out.Strategy)
	}
}

func TestParseCommand_MissingFile(t *testing.T) {
	setupTestConfig(t)

	_, err := executeCommand(rootCmd, "parse", filepath.Join(t.TempDir(), "absent.txt"))
	if err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestRosterCommand_Builtin(t *testing.T) {
	setupTestConfig(t)

	output, err := executeCommand(rootCmd, "roster")
	if err != nil {
		t.Fatalf("roster failed: %v\nOutput: %s", err, output)
	}
	if !strings.Contains(output, "Alex M.") {
		t.Errorf("output missing a built-in participant:\n%s", output)
	}
	if !strings.Contains(output, "from builtin") {
		t.Errorf("output missing the builtin source line:\n%s", output)
	}
}

func TestRosterCommand_File(t *testing.T) {
	setupTestConfig(t)
	roster := writeFixture(t, "roster.yaml", rosterYAML)

	output, err := executeCommand(rootCmd, "roster", "--file", roster)
	if err != nil {
		t.Fatalf("roster failed: %v\nOutput: %s", err, output)
	}
	for _, want := range []string{"Ana", "Bo", "2 participant(s)"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestRosterCommand_InvalidFile(t *testing.T) {
	setupTestConfig(t)
	roster := writeFixture(t, "roster.yaml", "participants: []\n")

	_, err := executeCommand(rootCmd, "roster", "--file", roster)
	if err == nil {
		t.Error("expected an error for an empty roster")
	}
}

func TestConfigShow(t *testing.T) {
	setupTestConfig(t)

	output, err := executeCommand(rootCmd, "config", "show")
	if err != nil {
		t.Fatalf("config show failed: %v\nOutput: %s", err, output)
	}
	for _, want := range []string{"generation:", "max_tokens: 800", "base_score: 0.5"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestConfigInitAndPath(t *testing.T) {
	setupTestConfig(t)

	output, err := executeCommand(rootCmd, "config", "init")
	if err != nil {
		t.Fatalf("config init failed: %v\nOutput: %s", err, output)
	}
	if _, err := os.Stat(config.ConfigFile()); err != nil {
		t.Errorf("config file not created: %v", err)
	}

	// A second init must refuse to overwrite.
	if _, err := executeCommand(rootCmd, "config", "init"); err == nil {
		t.Error("expected an error when the config file already exists")
	}

	output, err = executeCommand(rootCmd, "config", "path")
	if err != nil {
		t.Fatalf("config path failed: %v\nOutput: %s", err, output)
	}
	if !strings.Contains(output, "config.yaml") {
		t.Errorf("output missing the config path:\n%s", output)
	}
}

func TestLogsCommand_NoLogFile(t *testing.T) {
	setupTestConfig(t)

	output, err := executeCommand(rootCmd, "logs")
	if err != nil {
		t.Fatalf("logs failed: %v\nOutput: %s", err, output)
	}
	if !strings.Contains(output, "No debug log found") {
		t.Errorf("output missing the no-log notice:\n%s", output)
	}
}

func TestLogsCommand_FiltersEntries(t *testing.T) {
	setupTestConfig(t)

	logDir := config.Get().LogDir()
	if err := os.MkdirAll(logDir, 0755); err != nil {
		t.Fatalf("failed to create log dir: %v", err)
	}
	lines := `{"time":"2026-08-23T10:00:00.000Z","level":"INFO","msg":"request started","request_id":"req-1"}
{"time":"2026-08-23T10:00:01.000Z","level":"WARN","msg":"deliberation failed","request_id":"req-1"}
`
	logPath := filepath.Join(logDir, logging.LogFileName)
	if err := os.WriteFile(logPath, []byte(lines), 0644); err != nil {
		t.Fatalf("failed to write log file: %v", err)
	}

	output, err := executeCommand(rootCmd, "logs")
	if err != nil {
		t.Fatalf("logs failed: %v\nOutput: %s", err, output)
	}
	for _, want := range []string{"request started", "deliberation failed", "[WARN]"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}

	output, err = executeCommand(rootCmd, "logs", "--level", "warn")
	if err != nil {
		t.Fatalf("logs --level failed: %v\nOutput: %s", err, output)
	}
	if strings.Contains(output, "request started") {
		t.Errorf("level filter kept an INFO entry:\n%s", output)
	}
	if !strings.Contains(output, "deliberation failed") {
		t.Errorf("level filter dropped a WARN entry:\n%s", output)
	}
}

func TestLogsCommand_Export(t *testing.T) {
	setupTestConfig(t)

	logDir := config.Get().LogDir()
	if err := os.MkdirAll(logDir, 0755); err != nil {
		t.Fatalf("failed to create log dir: %v", err)
	}
	line := `{"time":"2026-08-23T10:00:00.000Z","level":"INFO","msg":"request started","request_id":"req-1"}` + "\n"
	if err := os.WriteFile(filepath.Join(logDir, logging.LogFileName), []byte(line), 0644); err != nil {
		t.Fatalf("failed to write log file: %v", err)
	}

	exportPath := filepath.Join(t.TempDir(), "out.json")
	output, err := executeCommand(rootCmd, "logs", "--export", exportPath)
	if err != nil {
		t.Fatalf("logs --export failed: %v\nOutput: %s", err, output)
	}
	if !strings.Contains(output, "Exported 1 entries") {
		t.Errorf("output missing the export summary:\n%s", output)
	}
	data, err := os.ReadFile(exportPath)
	if err != nil {
		t.Fatalf("export file not written: %v", err)
	}
	if !strings.Contains(string(data), "request started") {
		t.Errorf("export file missing the entry:\n%s", data)
	}
}

func TestFormatEntry(t *testing.T) {
	entry := logging.LogEntry{
		Timestamp: time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC),
		Level:     "INFO",
		Message:   "request started",
		RequestID: "req-1",
		Attrs:     map[string]any{"items": 3, "confidence": "high"},
	}

	got := formatEntry(entry)
	for _, want := range []string{"[10:00:00.000]", "[INFO]", "request started", "request_id=req-1", "confidence=high", "items=3"} {
		if !strings.Contains(got, want) {
			t.Errorf("formatEntry missing %q:\n%s", want, got)
		}
	}
	// Attrs print in sorted key order.
	if strings.Index(got, "confidence=") > strings.Index(got, "items=") {
		t.Errorf("attrs not sorted:\n%s", got)
	}
}

func TestMatchesGrep(t *testing.T) {
	entry := logging.LogEntry{
		Message: "batch normalized",
		Attrs:   map[string]any{"strategy": "fallback"},
	}

	if !matchesGrep(entry, regexp.MustCompile("normalized")) {
		t.Error("message match missed")
	}
	if !matchesGrep(entry, regexp.MustCompile("fallback")) {
		t.Error("attr match missed")
	}
	if matchesGrep(entry, regexp.MustCompile("absent")) {
		t.Error("unexpected match")
	}
}

func TestSettingParsers(t *testing.T) {
	for _, level := range []string{"debug", "INFO", "Warn", "error"} {
		if _, err := asLogLevel(level); err != nil {
			t.Errorf("asLogLevel(%q) = %v, want nil", level, err)
		}
	}
	if _, err := asLogLevel("verbose"); err == nil {
		t.Error("asLogLevel(verbose) accepted an unknown level")
	}

	if v, err := asBool("true"); err != nil || v != true {
		t.Errorf("asBool(true) = %v, %v", v, err)
	}
	if _, err := asBool("yes"); err == nil {
		t.Error("asBool accepted a non-boolean word")
	}
	if v, err := asInt("3"); err != nil || v != 3 {
		t.Errorf("asInt(3) = %v, %v", v, err)
	}
	if v, err := asFloat("0.5"); err != nil || v != 0.5 {
		t.Errorf("asFloat(0.5) = %v, %v", v, err)
	}
}
