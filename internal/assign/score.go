package assign

import (
	"fmt"
	"strings"

	"github.com/atelier-edu/reparto/internal/activity"
	"github.com/atelier-edu/reparto/internal/participant"
	"github.com/atelier-edu/reparto/internal/util"
)

// Competency tags with a fixed meaning for neurotype scoring.
const (
	tagImprovisation = "improvisation"
	tagStructure     = "structure"
	tagPrecision     = "precision"
	tagMovement      = "movement"
	tagDynamic       = "dynamic"
	tagSimple        = "simple"
)

// score computes the compatibility of an item for a profile, clamped to
// [0, 1], along with the rationale text that explains the placement.
//
// The matrix is base score plus one tag bonus per matched strength, adjusted
// by the neurotype rules: structured and precise work suits autistic
// participants while improvisation does not; movement and variety suit ADHD
// participants while sustained high complexity does not; gifted participants
// get the hard items and skip the trivially simple ones.
func (e *Engine) score(item activity.WorkItem, p participant.Profile) (float64, string) {
	s := e.opts.BaseScore
	var reasons []string

	for _, tag := range item.Competencies {
		if p.HasStrength(tag) {
			s += e.opts.TagBonus
			reasons = append(reasons, "plays to strength "+strings.ToLower(tag))
		}
	}

	switch p.Neurotype {
	case participant.NeurotypeASD:
		if item.RequiresCompetency(tagImprovisation) {
			s -= e.opts.NeurotypePenalty
			reasons = append(reasons, "improvised work is a poor fit")
		}
		if item.RequiresCompetency(tagStructure) {
			s += e.opts.TagBonus
			reasons = append(reasons, "structured work suits this profile")
		}
		if item.RequiresCompetency(tagPrecision) {
			s += e.opts.TagBonus
			reasons = append(reasons, "precise work suits this profile")
		}
	case participant.NeurotypeADHD:
		if item.RequiresCompetency(tagMovement) {
			s += e.opts.TagBonus
			reasons = append(reasons, "movement keeps engagement up")
		}
		if item.RequiresCompetency(tagDynamic) {
			s += e.opts.TagBonus
			reasons = append(reasons, "varied work keeps engagement up")
		}
		if item.Complexity > 3 {
			s -= e.opts.NeurotypePenalty
			reasons = append(reasons, "long focus stretch")
		}
	case participant.NeurotypeGifted:
		if item.Complexity >= 4 {
			s += e.opts.TagBonus
			reasons = append(reasons, "welcome challenge")
		}
		if item.RequiresCompetency(tagSimple) {
			s -= e.opts.NeurotypePenalty
			reasons = append(reasons, "too routine for this profile")
		}
	}

	s = util.Clamp01(s)
	return s, buildRationale(reasons)
}

// buildRationale joins the scoring reasons into one short sentence.
func buildRationale(reasons []string) string {
	if len(reasons) == 0 {
		return "baseline fit"
	}
	return strings.Join(reasons, "; ")
}

// loadCap derives the per-participant item cap from availability. High
// availability earns an extra slot, low availability gives one up, and
// everyone can hold at least one item.
func (e *Engine) loadCap(p participant.Profile) int {
	limit := e.opts.BaseLoadCap
	switch {
	case p.Availability > e.opts.AvailabilityHigh:
		limit++
	case p.Availability < e.opts.AvailabilityLow:
		limit--
	}
	if limit < 1 {
		limit = 1
	}
	return limit
}

// describeOverCap appends the over-capacity marker to a rationale.
func describeOverCap(rationale string) string {
	return fmt.Sprintf("%s; over capacity", rationale)
}
