package parse

import (
	"context"

	"github.com/atelier-edu/reparto/internal/activity"
	"github.com/atelier-edu/reparto/internal/normalize"
)

// FallbackStrategy terminates the chain. It ignores the text entirely and
// emits the canonical generic decomposition, so parsing as a whole can
// never come back empty.
type FallbackStrategy struct{}

// NewFallbackStrategy creates a new FallbackStrategy.
func NewFallbackStrategy() *FallbackStrategy {
	return &FallbackStrategy{}
}

// Name identifies this strategy in results and logs.
func (s *FallbackStrategy) Name() string { return "fallback" }

// Confidence reports the grade for batches this strategy produces.
func (s *FallbackStrategy) Confidence() Confidence { return ConfidenceFallback }

// Attempt always succeeds with the canonical batch.
func (s *FallbackStrategy) Attempt(_ context.Context, _ string, _ Hints) ([]activity.WorkItem, error) {
	return CanonicalBatch(), nil
}

// CanonicalBatch returns the fixed three-item decomposition every
// activity can fall back on: prepare, do, reflect. Each item carries
// complexity 3 and thirty minutes so downstream scoring and scheduling
// see complete data.
func CanonicalBatch() []activity.WorkItem {
	return []activity.WorkItem{
		{
			ID:              normalize.ItemID(1),
			Description:     "Prepare the materials and set up the workspace",
			Competencies:    []string{normalize.CompetencyTransversal},
			Complexity:      3,
			Mode:            activity.ModeGroup,
			DurationMinutes: 30,
			Stage:           activity.StagePreparation,
		},
		{
			ID:              normalize.ItemID(2),
			Description:     "Carry out the main activity",
			Competencies:    []string{normalize.CompetencyTransversal},
			Complexity:      3,
			Mode:            activity.ModeGroup,
			DurationMinutes: 30,
			Stage:           activity.StageExecution,
		},
		{
			ID:              normalize.ItemID(3),
			Description:     "Review the results and share what was learned",
			Competencies:    []string{normalize.CompetencyTransversal},
			Complexity:      3,
			Mode:            activity.ModeGroup,
			DurationMinutes: 30,
			Stage:           activity.StageReflection,
		},
	}
}
