package render

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/atelier-edu/reparto/internal/activity"
	"github.com/atelier-edu/reparto/internal/assign"
	"github.com/atelier-edu/reparto/internal/consensus"
	"github.com/atelier-edu/reparto/internal/parse"
)

var (
	// Colors - every foreground meets WCAG AA contrast (4.5:1) on black
	PrimaryColor = lipgloss.Color("#A78BFA") // Purple (violet-400)
	GoodColor    = lipgloss.Color("#10B981") // Green
	InfoColor    = lipgloss.Color("#60A5FA") // Blue (blue-400)
	WarnColor    = lipgloss.Color("#F59E0B") // Amber
	BadColor     = lipgloss.Color("#F87171") // Red (red-400)
	MutedColor   = lipgloss.Color("#9CA3AF") // Gray (gray-400)
	TextColor    = lipgloss.Color("#F9FAFB") // Light text

	// Convenience styles for colors
	Good  = lipgloss.NewStyle().Foreground(GoodColor)
	Warn  = lipgloss.NewStyle().Foreground(WarnColor)
	Bad   = lipgloss.NewStyle().Foreground(BadColor)
	Muted = lipgloss.NewStyle().Foreground(MutedColor)

	// Title heads a full report
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(PrimaryColor)

	// Section heads one block inside a report
	Section = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextColor)

	// Badge wraps a short status word, colored by its Background
	Badge = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextColor).
		Padding(0, 1)
)

// ConfidenceColor returns the color for a parse confidence grade.
func ConfidenceColor(c parse.Confidence) lipgloss.Color {
	switch c {
	case parse.ConfidenceHigh:
		return GoodColor
	case parse.ConfidenceGood:
		return InfoColor
	case parse.ConfidenceReplay:
		return PrimaryColor
	case parse.ConfidenceMinimal:
		return WarnColor
	case parse.ConfidenceFallback:
		return BadColor
	default:
		return MutedColor
	}
}

// SeverityColor returns the color for a validation severity.
func SeverityColor(s activity.ValidationSeverity) lipgloss.Color {
	switch s {
	case activity.SeverityError:
		return BadColor
	case activity.SeverityWarning:
		return WarnColor
	default:
		return MutedColor
	}
}

// SeverityIcon returns an icon for a validation severity.
func SeverityIcon(s activity.ValidationSeverity) string {
	switch s {
	case activity.SeverityError:
		return "✗"
	case activity.SeverityWarning:
		return "!"
	default:
		return "·"
	}
}

// DecisionColor returns the color for a deliberation decision type.
func DecisionColor(t consensus.DecisionType) lipgloss.Color {
	switch t {
	case consensus.DecisionConsensus:
		return GoodColor
	case consensus.DecisionModificationPedagogical:
		return WarnColor
	case consensus.DecisionFallback:
		return BadColor
	default:
		return MutedColor
	}
}

// ModeIcon returns an icon for a collaboration mode. The fill level
// tracks how many participants the item involves.
func ModeIcon(m activity.CollaborationMode) string {
	switch m {
	case activity.ModeIndividual:
		return "○"
	case activity.ModePair:
		return "◐"
	case activity.ModeGroup:
		return "●"
	default:
		return "●"
	}
}

// AvailabilityColor colors a capacity percentage using the same
// thresholds the assignment engine applies to load caps.
func AvailabilityColor(pct int) lipgloss.Color {
	switch {
	case pct >= assign.DefaultAvailabilityHigh:
		return GoodColor
	case pct < assign.DefaultAvailabilityLow:
		return WarnColor
	default:
		return TextColor
	}
}
