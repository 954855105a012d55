package prompt

import (
	"fmt"
	"strings"
)

// OptimizationBuilder builds the prompt asking the text service to
// propose a participant to item mapping. The response contract is a bare
// JSON object so the assignment engine can decode it without scraping.
type OptimizationBuilder struct{}

// NewOptimizationBuilder creates a new OptimizationBuilder.
func NewOptimizationBuilder() *OptimizationBuilder {
	return &OptimizationBuilder{}
}

// Build generates the optimization prompt from the context.
func (b *OptimizationBuilder) Build(ctx *Context) (string, error) {
	if err := b.validate(ctx); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("Assign these work items across the participants.\n\n")

	sb.WriteString("ITEMS:\n")
	sb.WriteString(formatItems(ctx.Items))
	sb.WriteString("\n")

	sb.WriteString("PARTICIPANTS:\n")
	sb.WriteString(formatProfiles(ctx.Profiles))
	sb.WriteString("\n")

	sb.WriteString("RULES:\n")
	sb.WriteString("- balance load by availability: lower availability means fewer items\n")
	sb.WriteString("- match items to strengths where you can\n")
	sb.WriteString("- respect support needs: predictable items for participants who need structure, dynamic items for participants who need movement, harder items for participants who need challenge\n")
	sb.WriteString("- every item is assigned exactly once\n")
	sb.WriteString("- respect dependencies: an item and the items it waits on may go to different participants, but keep chains short\n\n")

	sb.WriteString("Respond ONLY with this JSON object, no extra text:\n")
	sb.WriteString(assignmentJSONExample)

	return sb.String(), nil
}

func (b *OptimizationBuilder) validate(ctx *Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	if ctx.Kind != KindOptimization {
		return fmt.Errorf("%w: expected %s, got %s", ErrInvalidKind, KindOptimization, ctx.Kind)
	}
	if len(ctx.Items) == 0 {
		return ErrNoItems
	}
	if len(ctx.Profiles) == 0 {
		return ErrNoProfiles
	}
	return nil
}

// assignmentJSONExample shows the exact response shape. The keys are
// participant ids and the values are lists of item ids.
const assignmentJSONExample = `{
  "assignments": {
    "p-001": ["item-01", "item-04"],
    "p-002": ["item-02"],
    "p-003": ["item-03"]
  }
}`
