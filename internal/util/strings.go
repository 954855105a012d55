package util

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

const ellipsis = "..."

// TruncateString shortens s to at most limit runes, replacing the cut
// tail with "...". Escape sequences count like any other runes, so this
// is only for plain text; styled terminal output goes through
// TruncateANSI.
func TruncateString(s string, limit int) string {
	if limit <= len(ellipsis) {
		return ellipsis
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-len(ellipsis)]) + ellipsis
}

// TruncateANSI shortens styled text to at most width terminal columns,
// replacing the cut tail with "...". Escape sequences pass through
// uncounted and double-width characters cover two columns.
func TruncateANSI(s string, width int) string {
	if width <= len(ellipsis) {
		return ellipsis
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	return ansi.Truncate(s, width, ellipsis)
}

// CollapseSpaces folds every run of whitespace in s into a single space
// and trims the ends. Used to clean free-form text coming back from a
// language model before parsing it.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
