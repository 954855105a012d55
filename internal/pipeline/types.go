package pipeline

import (
	"github.com/atelier-edu/reparto/internal/activity"
	"github.com/atelier-edu/reparto/internal/assign"
	"github.com/atelier-edu/reparto/internal/consensus"
	"github.com/atelier-edu/reparto/internal/normalize"
	"github.com/atelier-edu/reparto/internal/parse"
	"github.com/atelier-edu/reparto/internal/participant"
	"github.com/atelier-edu/reparto/internal/prompt"
)

// Phase represents a phase of a request moving through the pipeline.
type Phase string

const (
	// PhaseGenerating indicates the request is waiting on the text service.
	PhaseGenerating Phase = "generating"

	// PhaseParsing indicates the parser chain is reading the response.
	PhaseParsing Phase = "parsing"

	// PhaseNormalizing indicates the batch is being completed and remapped.
	PhaseNormalizing Phase = "normalizing"

	// PhaseDeliberating indicates a consensus round is running.
	PhaseDeliberating Phase = "deliberating"

	// PhaseAssigning indicates the engine is distributing items.
	PhaseAssigning Phase = "assigning"

	// PhaseDone indicates the request has completed successfully.
	PhaseDone Phase = "done"

	// PhaseFailed indicates the request has failed.
	PhaseFailed Phase = "failed"
)

// String returns the string representation of the phase.
func (p Phase) String() string {
	return string(p)
}

// IsTerminal returns true if this phase represents a final state.
func (p Phase) IsTerminal() bool {
	return p == PhaseDone || p == PhaseFailed
}

// Config holds required dependencies for creating a Pipeline.
type Config struct {
	Chain      *parse.Chain            // Reads generated text into work items
	Normalizer *normalize.Normalizer   // Completes and remaps parsed batches
	Engine     *assign.Engine          // Distributes items across the roster
	Repository *participant.Repository // Supplies the roster at assignment time
}

// Request describes one distribution request.
type Request struct {
	// Intent is the teacher's free-text description of the activity.
	Intent string

	// Weights are the teacher's optional preference weights, folded
	// into the decomposition prompt. The zero value states no preference.
	Weights prompt.Weights
}

// Result is the outcome of one completed request.
type Result struct {
	// RequestID tags the run's events and log entries.
	RequestID string `json:"request_id"`

	// Items is the normalized work item batch.
	Items []activity.WorkItem `json:"items"`

	// Record holds the per-participant assignments.
	Record *assign.Record `json:"record"`

	// Decision is the deliberation outcome. Nil when the deliberating
	// phase is not configured or did not complete.
	Decision *consensus.Decision `json:"decision,omitempty"`

	// Validation reports structural findings in the final batch.
	Validation *activity.ValidationResult `json:"validation,omitempty"`

	// ParseStrategy names the chain strategy that produced the batch.
	ParseStrategy string `json:"parse_strategy"`

	// ParseConfidence grades how much trust to place in the batch.
	ParseConfidence parse.Confidence `json:"parse_confidence"`

	// AssignmentPath records which engine path produced the record.
	AssignmentPath assign.Path `json:"assignment_path"`

	// Coherence is the closing sanity check over the assembled result.
	Coherence Coherence `json:"coherence"`
}

// Degraded reports whether the batch came from a rescue parse. Callers
// should present degraded results differently from high-confidence ones.
func (r *Result) Degraded() bool {
	return r.ParseConfidence.Degraded()
}
