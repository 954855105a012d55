package render

import (
	"testing"

	"github.com/atelier-edu/reparto/internal/activity"
	"github.com/atelier-edu/reparto/internal/consensus"
	"github.com/atelier-edu/reparto/internal/parse"
)

func TestConfidenceColor(t *testing.T) {
	tests := []struct {
		confidence parse.Confidence
		expected   string // Expected color hex value
	}{
		{parse.ConfidenceHigh, "#10B981"},
		{parse.ConfidenceGood, "#60A5FA"},
		{parse.ConfidenceReplay, "#A78BFA"},
		{parse.ConfidenceMinimal, "#F59E0B"},
		{parse.ConfidenceFallback, "#F87171"},
		{parse.Confidence("unknown"), "#9CA3AF"}, // Should fall back to MutedColor
	}

	for _, tt := range tests {
		t.Run(string(tt.confidence), func(t *testing.T) {
			got := ConfidenceColor(tt.confidence)
			if string(got) != tt.expected {
				t.Errorf("ConfidenceColor(%q) = %q, want %q", tt.confidence, got, tt.expected)
			}
		})
	}
}

func TestSeverityColor(t *testing.T) {
	tests := []struct {
		severity activity.ValidationSeverity
		expected string
	}{
		{activity.SeverityError, "#F87171"},
		{activity.SeverityWarning, "#F59E0B"},
		{activity.SeverityInfo, "#9CA3AF"},
	}

	for _, tt := range tests {
		t.Run(string(tt.severity), func(t *testing.T) {
			got := SeverityColor(tt.severity)
			if string(got) != tt.expected {
				t.Errorf("SeverityColor(%q) = %q, want %q", tt.severity, got, tt.expected)
			}
		})
	}
}

func TestSeverityIcon(t *testing.T) {
	tests := []struct {
		severity activity.ValidationSeverity
		expected string
	}{
		{activity.SeverityError, "✗"},
		{activity.SeverityWarning, "!"},
		{activity.SeverityInfo, "·"},
	}

	for _, tt := range tests {
		t.Run(string(tt.severity), func(t *testing.T) {
			got := SeverityIcon(tt.severity)
			if got != tt.expected {
				t.Errorf("SeverityIcon(%q) = %q, want %q", tt.severity, got, tt.expected)
			}
		})
	}
}

func TestDecisionColor(t *testing.T) {
	tests := []struct {
		decision consensus.DecisionType
		expected string
	}{
		{consensus.DecisionConsensus, "#10B981"},
		{consensus.DecisionModificationPedagogical, "#F59E0B"},
		{consensus.DecisionFallback, "#F87171"},
		{consensus.DecisionType("unknown"), "#9CA3AF"},
	}

	for _, tt := range tests {
		t.Run(string(tt.decision), func(t *testing.T) {
			got := DecisionColor(tt.decision)
			if string(got) != tt.expected {
				t.Errorf("DecisionColor(%q) = %q, want %q", tt.decision, got, tt.expected)
			}
		})
	}
}

func TestModeIcon(t *testing.T) {
	tests := []struct {
		mode     activity.CollaborationMode
		expected string
	}{
		{activity.ModeIndividual, "○"},
		{activity.ModePair, "◐"},
		{activity.ModeGroup, "●"},
		{activity.CollaborationMode("unknown"), "●"}, // Should fall back to group
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			got := ModeIcon(tt.mode)
			if got != tt.expected {
				t.Errorf("ModeIcon(%q) = %q, want %q", tt.mode, got, tt.expected)
			}
		})
	}
}

func TestAvailabilityColor(t *testing.T) {
	tests := []struct {
		name     string
		pct      int
		expected string
	}{
		{"full capacity", 100, "#10B981"},
		{"at the high threshold", 80, "#10B981"},
		{"just under the high threshold", 79, "#F9FAFB"},
		{"at the low threshold", 70, "#F9FAFB"},
		{"below the low threshold", 69, "#F59E0B"},
		{"no capacity", 0, "#F59E0B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AvailabilityColor(tt.pct)
			if string(got) != tt.expected {
				t.Errorf("AvailabilityColor(%d) = %q, want %q", tt.pct, got, tt.expected)
			}
		})
	}
}
