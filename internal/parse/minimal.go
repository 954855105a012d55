package parse

import (
	"context"
	"strings"
	"unicode"

	"github.com/atelier-edu/reparto/internal/activity"
	"github.com/atelier-edu/reparto/internal/errors"
	"github.com/atelier-edu/reparto/internal/normalize"
	"github.com/atelier-edu/reparto/internal/util"
)

const (
	// A line must read like a sentence fragment of real work before it
	// becomes an item. Short nonsense falls through to the canonical
	// fallback instead of producing a one-item batch of gibberish.
	minLineWords = 3
	minLineLen   = 15

	// maxLineItems bounds the batch when the text is a wall of prose.
	maxLineItems = 12
)

// MinimalStrategy treats each qualifying non-empty line as a
// description-only item. Everything else about the item is left for the
// normalizer to fill in.
type MinimalStrategy struct{}

// NewMinimalStrategy creates a new MinimalStrategy.
func NewMinimalStrategy() *MinimalStrategy {
	return &MinimalStrategy{}
}

// Name identifies this strategy in results and logs.
func (s *MinimalStrategy) Name() string { return "minimal" }

// Confidence reports the grade for batches this strategy produces.
func (s *MinimalStrategy) Confidence() Confidence { return ConfidenceMinimal }

// Attempt turns qualifying lines into description-only items.
func (s *MinimalStrategy) Attempt(_ context.Context, raw string, _ Hints) ([]activity.WorkItem, error) {
	var items []activity.WorkItem
	for _, line := range strings.Split(raw, "\n") {
		desc := lineDescription(line)
		if !qualifies(desc) {
			continue
		}
		items = append(items, activity.WorkItem{
			ID:          normalize.ItemID(len(items) + 1),
			Description: desc,
		})
		if len(items) == maxLineItems {
			break
		}
	}
	if len(items) == 0 {
		return nil, errors.NewParseError("no usable lines", errors.ErrNoItems).WithStrategy(s.Name())
	}
	return items, nil
}

// lineDescription cleans a line down to its descriptive text.
func lineDescription(line string) string {
	if text, ok := listEntry(line); ok {
		return util.CollapseSpaces(strings.ReplaceAll(text, "**", ""))
	}
	trimmed := strings.TrimLeft(line, "#>-*• \t")
	return util.CollapseSpaces(strings.ReplaceAll(trimmed, "**", ""))
}

// qualifies applies the minimum-shape rule for a description line.
func qualifies(desc string) bool {
	if len(desc) < minLineLen {
		return false
	}
	if len(strings.Fields(desc)) < minLineWords {
		return false
	}
	return strings.IndexFunc(desc, unicode.IsLetter) >= 0
}
