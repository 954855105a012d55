package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/atelier-edu/reparto/internal/config"
	"github.com/atelier-edu/reparto/internal/logging"
	"github.com/atelier-edu/reparto/internal/render"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "View and filter the debug log",
	Long: `View and filter Reparto's debug log.

Entries are read from the configured log directory. Use flags to
filter, follow, or export the output.

Examples:
  # Show the last 50 entries
  reparto logs

  # Show everything a request logged
  reparto logs --request 2f6b… -n 0

  # Follow the log while an assignment runs
  reparto logs -f

  # Warnings and errors from the last hour
  reparto logs --level warn --since 1h

  # Search messages and fields
  reparto logs --grep "degraded|fallback"

  # Export matching entries for a bug report
  reparto logs --since 24h --export run.csv --format csv`,
	RunE: runLogs,
}

var (
	logsTail    int
	logsFollow  bool
	logsLevel   string
	logsSince   string
	logsRequest string
	logsGrep    string
	logsExport  string
	logsFormat  string
)

func init() {
	rootCmd.AddCommand(logsCmd)

	logsCmd.Flags().IntVarP(&logsTail, "tail", "n", 50, "Number of entries to show (0 for all)")
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "Follow log output (like tail -f)")
	logsCmd.Flags().StringVar(&logsLevel, "level", "", "Filter by minimum level (debug/info/warn/error)")
	logsCmd.Flags().StringVar(&logsSince, "since", "", "Show entries since duration ago (e.g., 1h, 30m)")
	logsCmd.Flags().StringVar(&logsRequest, "request", "", "Filter by request id")
	logsCmd.Flags().StringVar(&logsGrep, "grep", "", "Filter entries matching pattern (regex)")
	logsCmd.Flags().StringVar(&logsExport, "export", "", "Write matching entries to a file instead of printing")
	logsCmd.Flags().StringVar(&logsFormat, "format", "json", "Export format (json/text/csv)")
}

// Level and field styling reuses the render palette so log output
// matches the rest of the CLI.
var (
	logTimeStyle  = lipgloss.NewStyle().Foreground(render.MutedColor)
	logFieldStyle = lipgloss.NewStyle().Foreground(render.PrimaryColor)

	logLevelStyles = map[string]lipgloss.Style{
		logging.LevelDebug: lipgloss.NewStyle().Foreground(render.MutedColor),
		logging.LevelInfo:  lipgloss.NewStyle().Foreground(render.InfoColor),
		logging.LevelWarn:  lipgloss.NewStyle().Foreground(render.WarnColor),
		logging.LevelError: lipgloss.NewStyle().Foreground(render.BadColor),
	}
)

func runLogs(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	logDir := cfg.LogDir()
	logPath := filepath.Join(logDir, logging.LogFileName)

	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "No debug log found at %s\n", logPath)
		fmt.Fprintln(out, "Logging may be disabled (logging.enabled) or nothing has run yet.")
		return nil
	}

	filter := logging.LogFilter{RequestID: logsRequest}
	if logsLevel != "" {
		filter.Level = logging.ParseLevel(logsLevel)
	}
	if logsSince != "" {
		duration, err := time.ParseDuration(logsSince)
		if err != nil {
			return fmt.Errorf("invalid duration format: %w", err)
		}
		filter.StartTime = time.Now().Add(-duration)
	}

	var grepRegex *regexp.Regexp
	if logsGrep != "" {
		var err error
		grepRegex, err = regexp.Compile(logsGrep)
		if err != nil {
			return fmt.Errorf("invalid grep pattern: %w", err)
		}
	}

	if logsFollow {
		return followLogs(cmd.OutOrStdout(), logPath, filter, grepRegex)
	}

	entries, err := logging.AggregateLogs(logDir)
	if err != nil {
		return err
	}
	entries = logging.FilterLogs(entries, filter)
	if grepRegex != nil {
		kept := entries[:0]
		for _, entry := range entries {
			if matchesGrep(entry, grepRegex) {
				kept = append(kept, entry)
			}
		}
		entries = kept
	}

	if logsExport != "" {
		if err := logging.ExportLogEntries(entries, logsExport, logsFormat); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entries to %s\n", len(entries), logsExport)
		return nil
	}

	if logsTail > 0 && len(entries) > logsTail {
		entries = entries[len(entries)-logsTail:]
	}

	out := cmd.OutOrStdout()
	for _, entry := range entries {
		fmt.Fprintln(out, formatEntry(entry))
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "No matching log entries found.")
	}
	return nil
}

// followLogs implements tail -f behavior over the log file.
func followLogs(out io.Writer, logPath string, filter logging.LogFilter, grepRegex *regexp.Regexp) error {
	file, err := os.Open(logPath)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Only new entries matter in follow mode.
	if _, err := file.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("failed to seek to end: %w", err)
	}

	fmt.Fprintf(out, "Following %s (Ctrl+C to stop)\n\n", logPath)

	reader := bufio.NewReader(file)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				// No new data, wait briefly and try again
				time.Sleep(100 * time.Millisecond)
				continue
			}
			return fmt.Errorf("error reading log file: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		entry, perr := logging.ParseEntry(line)
		if perr != nil {
			// Not one of ours, show the raw line
			fmt.Fprintln(out, line)
			continue
		}
		if len(logging.FilterLogs([]logging.LogEntry{entry}, filter)) == 0 {
			continue
		}
		if grepRegex != nil && !matchesGrep(entry, grepRegex) {
			continue
		}
		fmt.Fprintln(out, formatEntry(entry))
	}
}

// matchesGrep searches the message and all structured fields.
func matchesGrep(entry logging.LogEntry, re *regexp.Regexp) bool {
	if re.MatchString(entry.Message) {
		return true
	}
	for _, v := range entry.Attrs {
		if re.MatchString(fmt.Sprintf("%v", v)) {
			return true
		}
	}
	return false
}

// formatEntry renders one log entry for the terminal.
func formatEntry(entry logging.LogEntry) string {
	var sb strings.Builder

	sb.WriteString(logTimeStyle.Render("[" + entry.Timestamp.Format("15:04:05.000") + "]"))
	sb.WriteString(" ")

	level := strings.ToUpper(entry.Level)
	style, ok := logLevelStyles[level]
	if !ok {
		style = logTimeStyle
	}
	sb.WriteString(style.Render("[" + level + "]"))
	sb.WriteString(" ")
	sb.WriteString(entry.Message)

	if entry.RequestID != "" {
		sb.WriteString(" ")
		sb.WriteString(logFieldStyle.Render("request_id="))
		sb.WriteString(entry.RequestID)
	}
	if entry.Phase != "" {
		sb.WriteString(" ")
		sb.WriteString(logFieldStyle.Render("phase="))
		sb.WriteString(entry.Phase)
	}
	if entry.Strategy != "" {
		sb.WriteString(" ")
		sb.WriteString(logFieldStyle.Render("strategy="))
		sb.WriteString(entry.Strategy)
	}

	// Sorted so repeated runs print fields in a stable order.
	keys := make([]string, 0, len(entry.Attrs))
	for k := range entry.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteString(" ")
		sb.WriteString(logFieldStyle.Render(k + "="))
		sb.WriteString(fmt.Sprintf("%v", entry.Attrs[k]))
	}

	return sb.String()
}
