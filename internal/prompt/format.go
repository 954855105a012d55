package prompt

import (
	"fmt"
	"strings"

	"github.com/atelier-edu/reparto/internal/activity"
	"github.com/atelier-edu/reparto/internal/participant"
	"github.com/atelier-edu/reparto/internal/retrieval"
	"github.com/atelier-edu/reparto/internal/util"
)

// formatItems renders the work item batch as one line per item.
func formatItems(items []activity.WorkItem) string {
	var sb strings.Builder
	for _, it := range items {
		fmt.Fprintf(&sb, "- %s: %s (complexity %d, %s, %d min",
			it.ID, it.Description, it.Complexity, it.Mode, it.DurationMinutes)
		if len(it.DependsOn) > 0 {
			fmt.Fprintf(&sb, ", after %s", strings.Join(it.DependsOn, ", "))
		}
		sb.WriteString(")\n")
	}
	return sb.String()
}

// formatProfiles renders the roster as one line per participant.
// Support needs are included because every reviewing prompt must see them.
func formatProfiles(profiles []participant.Profile) string {
	var sb strings.Builder
	for _, p := range profiles {
		fmt.Fprintf(&sb, "- %s (%s): neurotype %s, availability %d%%",
			p.ID, p.Name, p.Neurotype, p.Availability)
		if len(p.Strengths) > 0 {
			fmt.Fprintf(&sb, ", strengths: %s", strings.Join(p.Strengths, ", "))
		}
		if len(p.SupportNeeds) > 0 {
			fmt.Fprintf(&sb, ", support needs: %s", strings.Join(p.SupportNeeds, ", "))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// formatExamples renders retrieved past activities as quoted context.
func formatExamples(examples []retrieval.RankedExample) string {
	var sb strings.Builder
	for _, ex := range examples {
		fmt.Fprintf(&sb, "- %s: %s\n", ex.Example.Title, ex.Example.Summary)
	}
	return sb.String()
}

// formatWeights renders the preference weights as emphasis lines.
func formatWeights(w Weights) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "- structure and predictability: %s\n", emphasis(w.Structure))
	fmt.Fprintf(&sb, "- collaboration between participants: %s\n", emphasis(w.Collaboration))
	fmt.Fprintf(&sb, "- room for improvisation and choice: %s\n", emphasis(w.Flexibility))
	return sb.String()
}

// emphasis maps a 0 to 1 weight onto a coarse emphasis word. Coarse words
// steer generation more reliably than raw decimals.
func emphasis(w float64) string {
	w = util.Clamp01(w)
	switch {
	case w >= 0.67:
		return "high"
	case w >= 0.34:
		return "moderate"
	default:
		return "low"
	}
}
