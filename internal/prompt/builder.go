// Package prompt assembles the text sent to the generation client: the
// intent decomposition request, its stricter replay variant, the optimizer
// assignment request, and the three deliberation prompts.
//
// Builders render from a shared Context and validate the fields they need,
// so a caller can assemble one Context per request and hand it to whichever
// builders the pipeline is configured to use.
package prompt

import (
	"fmt"

	"github.com/atelier-edu/reparto/internal/activity"
	"github.com/atelier-edu/reparto/internal/errors"
	"github.com/atelier-edu/reparto/internal/participant"
	"github.com/atelier-edu/reparto/internal/retrieval"
)

// Builder renders one prompt kind from a Context.
type Builder interface {
	// Build generates a prompt string from the given context.
	// Returns an error if the context is invalid for this prompt kind.
	Build(ctx *Context) (string, error)
}

// Kind identifies which prompt a Context is being rendered into.
type Kind string

const (
	KindDecomposition Kind = "decomposition"
	KindReplay        Kind = "replay"
	KindOptimization  Kind = "optimization"
	KindStructural    Kind = "structural"
	KindPedagogical   Kind = "pedagogical"
	KindFeasibility   Kind = "feasibility"
)

// Weights are the teacher's optional preference weights. Each value is
// read on a 0 to 1 scale; values outside the range are clamped when
// rendered. The zero value means "no preference stated" and the
// preferences section is omitted entirely.
type Weights struct {
	Structure     float64 `json:"structure"`
	Collaboration float64 `json:"collaboration"`
	Flexibility   float64 `json:"flexibility"`
}

// IsZero reports whether no preference was stated.
func (w Weights) IsZero() bool {
	return w.Structure == 0 && w.Collaboration == 0 && w.Flexibility == 0
}

// Context provides the information needed to build any prompt kind.
// Not all fields are required for every kind; builders validate the
// fields they need.
type Context struct {
	// Kind identifies which prompt is being built.
	Kind Kind

	// Intent is the teacher's free-text description of the activity.
	Intent string

	// Weights are the optional preference weights.
	Weights Weights

	// Examples are retrieved past activities used to enrich the
	// decomposition prompt. Their text is quoted, never parsed.
	Examples []retrieval.RankedExample

	// Items is the current work item batch (optimization and
	// deliberation prompts).
	Items []activity.WorkItem

	// Profiles is the roster the items will be assigned across.
	Profiles []participant.Profile

	// Proposal carries the structural proposal text into the
	// pedagogical and feasibility review prompts.
	Proposal string

	// Review carries the pedagogical review text into the
	// feasibility prompt.
	Review string
}

// Validation errors shared by the builders.
var (
	ErrNilContext  = errors.New("prompt context is nil")
	ErrInvalidKind = errors.New("invalid or empty prompt kind")
	ErrNoIntent    = errors.New("activity intent is required")
	ErrNoItems     = errors.New("work items are required for this prompt")
	ErrNoProfiles  = errors.New("participant profiles are required for this prompt")
)

// Validate checks that the context carries what its kind requires.
func (c *Context) Validate() error {
	if c == nil {
		return ErrNilContext
	}
	switch c.Kind {
	case KindDecomposition, KindReplay, KindStructural:
		if c.Intent == "" {
			return ErrNoIntent
		}
		return nil
	case KindOptimization:
		if len(c.Items) == 0 {
			return ErrNoItems
		}
		if len(c.Profiles) == 0 {
			return ErrNoProfiles
		}
		return nil
	case KindPedagogical:
		if len(c.Profiles) == 0 {
			return ErrNoProfiles
		}
		return nil
	case KindFeasibility:
		if len(c.Items) == 0 {
			return ErrNoItems
		}
		return nil
	case "":
		return ErrInvalidKind
	default:
		return fmt.Errorf("%w: %s", ErrInvalidKind, c.Kind)
	}
}

// ValidKinds returns all prompt kinds a Context can be rendered into.
func ValidKinds() []Kind {
	return []Kind{
		KindDecomposition,
		KindReplay,
		KindOptimization,
		KindStructural,
		KindPedagogical,
		KindFeasibility,
	}
}
