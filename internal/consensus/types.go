package consensus

import (
	"strings"

	"github.com/atelier-edu/reparto/internal/activity"
	"github.com/atelier-edu/reparto/internal/participant"
)

// State represents the lifecycle state of a deliberation.
type State string

const (
	// StateCollecting means proposals are still being gathered.
	StateCollecting State = "collecting"
	// StateEvaluating means all proposals arrived and are being arbitrated.
	StateEvaluating State = "evaluating"
	// StateDecided means the deliberation produced a decision.
	StateDecided State = "decided"
	// StateFallback means proposer failures forced a degraded decision.
	StateFallback State = "fallback"
)

// Terminal reports whether the deliberation has finished.
func (s State) Terminal() bool {
	return s == StateDecided || s == StateFallback
}

// String returns the state as a string.
func (s State) String() string {
	return string(s)
}

// Verdict is a proposer's judgement on the proposal it reviewed.
type Verdict string

const (
	VerdictApproved                Verdict = "approved"
	VerdictApprovedWithAdaptations Verdict = "approved_with_adaptations"
	VerdictRequiresRevision        Verdict = "requires_revision"
)

// ParseVerdict normalizes a verdict string from a generation response.
// Returns false when the text matches no known verdict.
func ParseVerdict(s string) (Verdict, bool) {
	switch Verdict(strings.ToLower(strings.TrimSpace(s))) {
	case VerdictApproved:
		return VerdictApproved, true
	case VerdictApprovedWithAdaptations:
		return VerdictApprovedWithAdaptations, true
	case VerdictRequiresRevision:
		return VerdictRequiresRevision, true
	default:
		return "", false
	}
}

// DecisionType classifies how a decision was reached.
type DecisionType string

const (
	// DecisionConsensus means all proposers approved and their proposals merged.
	DecisionConsensus DecisionType = "CONSENSUS"
	// DecisionModificationPedagogical means the pedagogical review rejected the
	// structure strongly enough to replace it.
	DecisionModificationPedagogical DecisionType = "MODIFICATION_PEDAGOGICAL"
	// DecisionFallback means at least one proposer failed and the best
	// available proposal was kept.
	DecisionFallback DecisionType = "FALLBACK"
)

// String returns the decision type as a string.
func (t DecisionType) String() string {
	return string(t)
}

// Proposal is one proposer's contribution to the deliberation.
//
// Structure always carries the proposer's full body text so that any
// proposal can stand alone as a fallback. The pedagogical and feasibility
// proposers additionally surface their body through the dedicated field
// the merged decision reads.
type Proposal struct {
	ProposerID             string  `json:"proposer_id"`
	Structure              string  `json:"structure"`
	AdaptationRequirements string  `json:"adaptation_requirements,omitempty"`
	FeasibilityAdjustments string  `json:"feasibility_adjustments,omitempty"`
	Verdict                Verdict `json:"verdict"`
	Score                  float64 `json:"score"`
}

// Weights control how much each proposer contributes to the merged score.
// The merge normalizes by the weight sum, so only relative magnitude matters.
type Weights struct {
	Structural  float64 `json:"structural"`
	Pedagogical float64 `json:"pedagogical"`
	Feasibility float64 `json:"feasibility"`
}

// DefaultWeights returns the standard arbitration weights.
func DefaultWeights() Weights {
	return Weights{
		Structural:  0.40,
		Pedagogical: 0.35,
		Feasibility: 0.25,
	}
}

// IsZero reports whether no weight was set.
func (w Weights) IsZero() bool {
	return w.Structural == 0 && w.Pedagogical == 0 && w.Feasibility == 0
}

// Sum returns the total weight.
func (w Weights) Sum() float64 {
	return w.Structural + w.Pedagogical + w.Feasibility
}

// Decision is the outcome of a deliberation.
type Decision struct {
	Type                   DecisionType `json:"type"`
	State                  State        `json:"state"`
	Structure              string       `json:"structure"`
	AdaptationRequirements string       `json:"adaptation_requirements,omitempty"`
	FeasibilityAdjustments string       `json:"feasibility_adjustments,omitempty"`
	Score                  float64      `json:"score"`
	Rationale              string       `json:"rationale"`
	Proposals              []Proposal   `json:"proposals,omitempty"`
	FailedProposers        []string     `json:"failed_proposers,omitempty"`
}

// Input carries everything proposers need to deliberate.
//
// Proposal and Review start empty: the coordinator fills them as earlier
// proposers finish, so the pedagogical proposer reviews the structural
// proposal and the feasibility proposer sees both.
type Input struct {
	// Intent is the free-text activity description.
	Intent string

	// Items is the normalized work item batch under deliberation.
	Items []activity.WorkItem

	// Profiles is the roster the items will be assigned across.
	Profiles []participant.Profile

	// Proposal is the structural proposal text, once available.
	Proposal string

	// Review is the pedagogical review text, once available.
	Review string
}
