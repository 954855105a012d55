package parse

import (
	"context"

	"github.com/atelier-edu/reparto/internal/activity"
	"github.com/atelier-edu/reparto/internal/errors"
	"github.com/atelier-edu/reparto/internal/normalize"
)

// StrictStrategy reads the explicit block format the decomposition prompt
// requests: "ITEM n:" headers followed by "Field: value" lines from the
// known vocabulary. Dependency references to declared item numbers are
// resolved to final ids in a second pass so forward references work.
type StrictStrategy struct{}

// NewStrictStrategy creates a new StrictStrategy.
func NewStrictStrategy() *StrictStrategy {
	return &StrictStrategy{}
}

// Name identifies this strategy in results and logs.
func (s *StrictStrategy) Name() string { return "strict" }

// Confidence reports the grade for batches this strategy produces.
func (s *StrictStrategy) Confidence() Confidence { return ConfidenceHigh }

// Attempt parses raw into items. It fails when the text carries no block
// structure or no block yields a described item.
func (s *StrictStrategy) Attempt(_ context.Context, raw string, _ Hints) ([]activity.WorkItem, error) {
	blocks := splitBlocks(raw)
	if len(blocks) == 0 {
		return nil, errors.NewParseError("no field blocks found", errors.ErrNoItems).WithStrategy(s.Name())
	}

	type draft struct {
		item activity.WorkItem
		deps string
	}

	// First pass: read fields and index declared numbers, so dependencies
	// can point at items declared later in the text.
	drafts := make([]draft, 0, len(blocks))
	numToID := make(map[int]string)
	for _, b := range blocks {
		item, deps := parseBlock(b)
		if item.Description == "" {
			continue
		}
		item.ID = normalize.ItemID(len(drafts) + 1)
		numToID[b.declared] = item.ID
		drafts = append(drafts, draft{item: item, deps: deps})
	}
	if len(drafts) == 0 {
		return nil, errors.NewParseError("no block yielded a described item", errors.ErrBlankDescription).WithStrategy(s.Name())
	}

	items := make([]activity.WorkItem, len(drafts))
	for i, d := range drafts {
		d.item.DependsOn = resolveDependencies(d.deps, numToID)
		items[i] = d.item
	}
	return items, nil
}
