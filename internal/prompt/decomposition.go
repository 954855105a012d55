package prompt

import (
	"fmt"
	"strings"
)

// itemFormatBlock is the field vocabulary the response parser reads back.
// The decomposition and replay prompts must stay in lockstep with it.
const itemFormatBlock = `ITEM 1:
Description: [one concrete piece of work, stated for the participants]
Competencies: [tags separated by commas, e.g. mathematics, language]
Complexity: [1-5]
Type: [individual, pair, or group]
Duration: [minutes]
Dependencies: [none, or ITEM numbers that must finish first]

Repeat the block for every item, numbering them ITEM 2, ITEM 3, and so on.`

// DecompositionBuilder builds the main prompt asking the text service to
// break an activity intent into work items. When the context carries
// preference weights or retrieved examples, they are folded in as extra
// sections.
type DecompositionBuilder struct{}

// NewDecompositionBuilder creates a new DecompositionBuilder.
func NewDecompositionBuilder() *DecompositionBuilder {
	return &DecompositionBuilder{}
}

// Build generates the decomposition prompt from the context.
func (b *DecompositionBuilder) Build(ctx *Context) (string, error) {
	if err := b.validate(ctx); err != nil {
		return "", err
	}

	var sb strings.Builder

	sb.WriteString("Break this classroom activity into concrete work items that can be shared out across a group of participants.\n\n")
	fmt.Fprintf(&sb, "ACTIVITY:\n%s\n\n", strings.TrimSpace(ctx.Intent))

	if !ctx.Weights.IsZero() {
		sb.WriteString("PREFERENCES (weigh these when shaping the items):\n")
		sb.WriteString(formatWeights(ctx.Weights))
		sb.WriteString("\n")
	}

	if len(ctx.Examples) > 0 {
		sb.WriteString("PAST ACTIVITIES THAT WORKED WELL (for inspiration only):\n")
		sb.WriteString(formatExamples(ctx.Examples))
		sb.WriteString("\n")
	}

	sb.WriteString("GUIDELINES:\n")
	sb.WriteString("- Follow a preparation, execution, reflection arc unless the activity calls for another shape\n")
	sb.WriteString("- Prefer tangible, analog materials over screens\n")
	sb.WriteString("- Give each item a single clear outcome a participant can finish\n")
	sb.WriteString("- Keep items assignable: one item should not require the whole group unless its type is group\n")
	sb.WriteString("- Account for participants who need predictable structure, movement breaks, or extra challenge\n\n")

	sb.WriteString("Answer with one block per item in exactly this format:\n\n")
	sb.WriteString(itemFormatBlock)
	sb.WriteString("\n")

	return sb.String(), nil
}

func (b *DecompositionBuilder) validate(ctx *Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	if ctx.Kind != KindDecomposition {
		return fmt.Errorf("%w: expected %s, got %s", ErrInvalidKind, KindDecomposition, ctx.Kind)
	}
	if strings.TrimSpace(ctx.Intent) == "" {
		return ErrNoIntent
	}
	return nil
}

// ReplayBuilder builds the stricter re-request used when the first
// response could not be parsed. It drops every optional section and
// demands the bare format.
type ReplayBuilder struct{}

// NewReplayBuilder creates a new ReplayBuilder.
func NewReplayBuilder() *ReplayBuilder {
	return &ReplayBuilder{}
}

// Build generates the replay prompt from the context.
func (b *ReplayBuilder) Build(ctx *Context) (string, error) {
	if err := b.validate(ctx); err != nil {
		return "", err
	}
	return fmt.Sprintf(replayTemplate, strings.TrimSpace(ctx.Intent), itemFormatBlock), nil
}

func (b *ReplayBuilder) validate(ctx *Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	if ctx.Kind != KindReplay {
		return fmt.Errorf("%w: expected %s, got %s", ErrInvalidKind, KindReplay, ctx.Kind)
	}
	if strings.TrimSpace(ctx.Intent) == "" {
		return ErrNoIntent
	}
	return nil
}

// replayTemplate leaves no room for prose: the previous answer was
// unreadable, so this one must be nothing but item blocks.
const replayTemplate = `Your previous answer could not be read.

Break this classroom activity into work items:

%s

Respond ONLY with item blocks in exactly this format. No introduction, no commentary, no markdown fences:

%s`
