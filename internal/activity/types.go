// Package activity defines the core work item model shared across reparto.
//
// A work item is the atomic unit of distributable work: one concrete step of
// a larger activity, carrying the competencies it requires, an estimated
// complexity and duration, a collaboration mode, and its dependencies on
// other items in the same batch.
//
// This package defines the data types used throughout the request lifecycle:
//   - Items: WorkItem, CollaborationMode, Stage
//   - Validation: ValidationResult, ValidationMessage, ValidationSeverity
//
// These are pure data types with no behavior beyond basic accessors, designed
// to be produced by the parser chain, completed by the normalizer, and
// consumed by the assignment engine.
package activity

import "strings"

// Complexity bounds for a work item. Values outside this range are clamped
// by the normalizer and flagged by validation.
const (
	MinComplexity = 1
	MaxComplexity = 5
)

// -----------------------------------------------------------------------------
// Collaboration Mode
// -----------------------------------------------------------------------------

// CollaborationMode represents how a work item is meant to be carried out.
//
// The mode affects assignment decisions: individual items go to exactly one
// participant while pair and group items tolerate shared ownership. When the
// source text does not state a mode, the normalizer infers one from keyword
// tables and falls back to ModeGroup.
type CollaborationMode string

const (
	// ModeIndividual indicates an item one participant completes alone.
	ModeIndividual CollaborationMode = "individual"

	// ModePair indicates an item designed for two participants working together.
	ModePair CollaborationMode = "pair"

	// ModeGroup indicates an item carried out by the whole group.
	// This is the default when no mode can be inferred.
	ModeGroup CollaborationMode = "group"
)

// String returns the string representation of the collaboration mode.
func (m CollaborationMode) String() string {
	return string(m)
}

// IsValid returns true if this is a recognized collaboration mode.
func (m CollaborationMode) IsValid() bool {
	switch m {
	case ModeIndividual, ModePair, ModeGroup:
		return true
	default:
		return false
	}
}

// -----------------------------------------------------------------------------
// Stage
// -----------------------------------------------------------------------------

// Stage labels the position of a work item within the arc of an activity.
//
// The three canonical stages come from the fallback decomposition every
// request can degrade to: prepare, carry out, look back. Parsed items may
// carry other free-form labels; only the canonical three satisfy IsValid.
type Stage string

const (
	// StagePreparation covers setup work done before the main activity.
	StagePreparation Stage = "preparation"

	// StageExecution covers the main body of the activity.
	StageExecution Stage = "execution"

	// StageReflection covers review and discussion after the activity.
	StageReflection Stage = "reflection"
)

// String returns the string representation of the stage.
func (s Stage) String() string {
	return string(s)
}

// IsValid returns true if this is one of the canonical stages.
func (s Stage) IsValid() bool {
	switch s {
	case StagePreparation, StageExecution, StageReflection:
		return true
	default:
		return false
	}
}

// -----------------------------------------------------------------------------
// Work Item
// -----------------------------------------------------------------------------

// WorkItem represents a single atomic step of a decomposed activity.
//
// Items are produced by the parser chain in whatever partial shape the source
// text allowed, then completed by the normalizer so that every field below
// holds a usable value. Dependencies form a directed acyclic graph within a
// batch; items with no dependencies can be taken up immediately.
type WorkItem struct {
	// ID uniquely identifies this item within its batch.
	// Assigned by the normalizer as a sequential, batch-stable id ("item-01", …).
	ID string `json:"id"`

	// Description is the human-readable statement of the work.
	// Never empty after parsing: the chain rejects items without one.
	Description string `json:"description"`

	// Competencies lists the competency tags this item calls for.
	// Matched against participant strengths during assignment.
	// The normalizer guarantees at least one tag ("transversal" by default).
	Competencies []string `json:"required_competencies"`

	// Complexity estimates how demanding the item is, from MinComplexity
	// to MaxComplexity. Defaults to 3 when the source text gives none.
	Complexity int `json:"complexity"`

	// Mode states how the item is meant to be carried out.
	Mode CollaborationMode `json:"collaboration_mode"`

	// DurationMinutes is the estimated time to complete the item.
	// Derived from complexity when the source text gives none.
	DurationMinutes int `json:"estimated_duration_minutes"`

	// DependsOn lists ids of items in the same batch that must complete first.
	// An empty list means the item has no ordering constraints.
	DependsOn []string `json:"dependencies,omitempty"`

	// Stage labels where in the activity arc this item sits.
	Stage Stage `json:"stage,omitempty"`
}

// HasDependencies returns true if this item depends on other items.
func (w *WorkItem) HasDependencies() bool {
	return len(w.DependsOn) > 0
}

// HasCompetencies returns true if this item carries competency tags.
func (w *WorkItem) HasCompetencies() bool {
	return len(w.Competencies) > 0
}

// RequiresCompetency reports whether the item carries the given tag.
// Comparison is case-insensitive.
func (w *WorkItem) RequiresCompetency(tag string) bool {
	for _, c := range w.Competencies {
		if strings.EqualFold(c, tag) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the item. Slices are copied so mutating the
// clone never aliases the original.
func (w WorkItem) Clone() WorkItem {
	c := w
	if w.Competencies != nil {
		c.Competencies = make([]string, len(w.Competencies))
		copy(c.Competencies, w.Competencies)
	}
	if w.DependsOn != nil {
		c.DependsOn = make([]string, len(w.DependsOn))
		copy(c.DependsOn, w.DependsOn)
	}
	return c
}

// CloneBatch returns a deep copy of a batch of items.
func CloneBatch(items []WorkItem) []WorkItem {
	if items == nil {
		return nil
	}
	out := make([]WorkItem, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}

// ItemByID returns a pointer to the item with the given id, or nil if the
// batch holds no such item.
func ItemByID(items []WorkItem, id string) *WorkItem {
	for i := range items {
		if items[i].ID == id {
			return &items[i]
		}
	}
	return nil
}

// IDs returns the ids of all items in batch order.
func IDs(items []WorkItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}
