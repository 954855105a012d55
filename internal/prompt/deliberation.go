package prompt

import (
	"fmt"
	"strings"
)

// verdictTrailer is the parseable ending every deliberation prompt demands.
// The consensus coordinator reads the two lines back out of the response.
const verdictTrailer = `End your answer with exactly these two lines:
VERDICT: approved, approved_with_adaptations, or requires_revision
SCORE: a number between 0.0 and 1.0`

// StructuralBuilder builds the first deliberation prompt: propose the
// overall shape of the activity from the intent and the item batch.
type StructuralBuilder struct{}

// NewStructuralBuilder creates a new StructuralBuilder.
func NewStructuralBuilder() *StructuralBuilder {
	return &StructuralBuilder{}
}

// Build generates the structural proposal prompt from the context.
func (b *StructuralBuilder) Build(ctx *Context) (string, error) {
	if err := b.validate(ctx); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("Propose the overall structure for this classroom activity: the stages, how participants are grouped at each stage, and the order of work.\n\n")
	fmt.Fprintf(&sb, "ACTIVITY:\n%s\n\n", strings.TrimSpace(ctx.Intent))

	if len(ctx.Items) > 0 {
		sb.WriteString("PLANNED ITEMS:\n")
		sb.WriteString(formatItems(ctx.Items))
		sb.WriteString("\n")
	}

	sb.WriteString("Keep the proposal short: name the stages, say which items belong to each, and flag any item that looks out of place.\n\n")
	sb.WriteString(verdictTrailer)

	return sb.String(), nil
}

func (b *StructuralBuilder) validate(ctx *Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	if ctx.Kind != KindStructural {
		return fmt.Errorf("%w: expected %s, got %s", ErrInvalidKind, KindStructural, ctx.Kind)
	}
	if strings.TrimSpace(ctx.Intent) == "" {
		return ErrNoIntent
	}
	return nil
}

// PedagogicalBuilder builds the second deliberation prompt: review the
// structural proposal against every participant profile and name the
// concrete adaptations each one needs.
type PedagogicalBuilder struct{}

// NewPedagogicalBuilder creates a new PedagogicalBuilder.
func NewPedagogicalBuilder() *PedagogicalBuilder {
	return &PedagogicalBuilder{}
}

// Build generates the pedagogical review prompt from the context.
func (b *PedagogicalBuilder) Build(ctx *Context) (string, error) {
	if err := b.validate(ctx); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("Review this activity proposal against the participant roster. For each participant who needs one, name the concrete adaptation, not the category.\n\n")

	if p := strings.TrimSpace(ctx.Proposal); p != "" {
		fmt.Fprintf(&sb, "PROPOSAL:\n%s\n\n", p)
	}

	sb.WriteString("PARTICIPANTS:\n")
	sb.WriteString(formatProfiles(ctx.Profiles))
	sb.WriteString("\n")

	sb.WriteString("CHECK IN PARTICULAR:\n")
	sb.WriteString("- participants who rely on predictable structure get items with clear steps and no surprises\n")
	sb.WriteString("- participants who need movement get dynamic items and short work cycles\n")
	sb.WriteString("- participants ready for more get genuinely harder items, not just more items\n")
	sb.WriteString("- no participant is left with only filler work\n\n")

	sb.WriteString("Use requires_revision only when the proposal would have to change materially to serve a participant.\n\n")
	sb.WriteString(verdictTrailer)

	return sb.String(), nil
}

func (b *PedagogicalBuilder) validate(ctx *Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	if ctx.Kind != KindPedagogical {
		return fmt.Errorf("%w: expected %s, got %s", ErrInvalidKind, KindPedagogical, ctx.Kind)
	}
	if len(ctx.Profiles) == 0 {
		return ErrNoProfiles
	}
	return nil
}

// FeasibilityBuilder builds the third deliberation prompt: check that the
// proposal fits the time budget and materials, after the pedagogical
// review has had its say.
type FeasibilityBuilder struct{}

// NewFeasibilityBuilder creates a new FeasibilityBuilder.
func NewFeasibilityBuilder() *FeasibilityBuilder {
	return &FeasibilityBuilder{}
}

// Build generates the feasibility review prompt from the context.
func (b *FeasibilityBuilder) Build(ctx *Context) (string, error) {
	if err := b.validate(ctx); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("Assess whether this activity is practical to run as planned.\n\n")

	if p := strings.TrimSpace(ctx.Proposal); p != "" {
		fmt.Fprintf(&sb, "PROPOSAL:\n%s\n\n", p)
	}
	if r := strings.TrimSpace(ctx.Review); r != "" {
		fmt.Fprintf(&sb, "PEDAGOGICAL REVIEW:\n%s\n\n", r)
	}

	sb.WriteString("ITEMS:\n")
	sb.WriteString(formatItems(ctx.Items))
	sb.WriteString("\n")

	sb.WriteString("CHECK:\n")
	sb.WriteString("- total duration fits a single session, or the split between sessions is explicit\n")
	sb.WriteString("- the materials are ordinary classroom supplies\n")
	sb.WriteString("- dependency order is actually achievable, with no item waiting on most of the class\n")
	sb.WriteString("- adjustments from the pedagogical review do not break the schedule\n\n")

	sb.WriteString(verdictTrailer)

	return sb.String(), nil
}

func (b *FeasibilityBuilder) validate(ctx *Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	if ctx.Kind != KindFeasibility {
		return fmt.Errorf("%w: expected %s, got %s", ErrInvalidKind, KindFeasibility, ctx.Kind)
	}
	if len(ctx.Items) == 0 {
		return ErrNoItems
	}
	return nil
}
