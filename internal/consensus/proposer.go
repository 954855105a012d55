package consensus

import (
	"context"
	"strconv"
	"strings"

	"github.com/atelier-edu/reparto/internal/errors"
	"github.com/atelier-edu/reparto/internal/prompt"
	"github.com/atelier-edu/reparto/internal/textgen"
	"github.com/atelier-edu/reparto/internal/util"
)

// Well-known proposer ids. The coordinator threads earlier proposals into
// later proposers by these ids, and the merge reads one field from each.
const (
	ProposerStructural  = "structural"
	ProposerPedagogical = "pedagogical"
	ProposerFeasibility = "feasibility"
)

// Proposer contributes one proposal to a deliberation.
type Proposer interface {
	// ID returns the proposer's stable identifier.
	ID() string

	// Propose produces a proposal for the given input. Implementations must
	// honor context cancellation.
	Propose(ctx context.Context, in Input) (Proposal, error)
}

// textProposer renders a deliberation prompt, sends it through the
// generation client, and reads the verdict trailer off the response.
type textProposer struct {
	id        string
	kind      prompt.Kind
	builder   prompt.Builder
	client    textgen.Client
	maxTokens int
}

// NewTextProposers returns the standard three proposers backed by the
// generation client, in the order the coordinator should run them:
// structural, then pedagogical, then feasibility.
func NewTextProposers(client textgen.Client, maxTokens int) []Proposer {
	return []Proposer{
		&textProposer{
			id:        ProposerStructural,
			kind:      prompt.KindStructural,
			builder:   prompt.NewStructuralBuilder(),
			client:    client,
			maxTokens: maxTokens,
		},
		&textProposer{
			id:        ProposerPedagogical,
			kind:      prompt.KindPedagogical,
			builder:   prompt.NewPedagogicalBuilder(),
			client:    client,
			maxTokens: maxTokens,
		},
		&textProposer{
			id:        ProposerFeasibility,
			kind:      prompt.KindFeasibility,
			builder:   prompt.NewFeasibilityBuilder(),
			client:    client,
			maxTokens: maxTokens,
		},
	}
}

// ID returns the proposer's identifier.
func (p *textProposer) ID() string {
	return p.id
}

// Propose builds the prompt for this proposer's kind, generates a response,
// and parses the verdict trailer. A response without a readable trailer is
// treated as approved with a neutral score rather than rejected.
func (p *textProposer) Propose(ctx context.Context, in Input) (Proposal, error) {
	pctx := &prompt.Context{
		Kind:     p.kind,
		Intent:   in.Intent,
		Items:    in.Items,
		Profiles: in.Profiles,
		Proposal: in.Proposal,
		Review:   in.Review,
	}

	text, err := p.builder.Build(pctx)
	if err != nil {
		return Proposal{}, errors.NewConsensusError("failed to build prompt", err).
			WithProposerID(p.id)
	}

	raw, err := p.client.Generate(ctx, textgen.Request{Prompt: text, MaxTokens: p.maxTokens})
	if err != nil {
		return Proposal{}, errors.NewConsensusError("generation failed", err).
			WithProposerID(p.id)
	}

	body, verdict, score := parseTrailer(raw)
	if body == "" {
		return Proposal{}, errors.NewConsensusError("empty proposal body", errors.ErrEmptyResponse).
			WithProposerID(p.id)
	}

	prop := Proposal{
		ProposerID: p.id,
		Structure:  body,
		Verdict:    verdict,
		Score:      score,
	}
	switch p.kind {
	case prompt.KindPedagogical:
		prop.AdaptationRequirements = body
	case prompt.KindFeasibility:
		prop.FeasibilityAdjustments = body
	}
	return prop, nil
}

// parseTrailer splits a response into its body and the VERDICT/SCORE
// trailer lines. Missing or unreadable trailer values default to an
// approved verdict with a neutral 0.5 score. When a line repeats, the
// last occurrence wins.
func parseTrailer(raw string) (body string, verdict Verdict, score float64) {
	verdict = VerdictApproved
	score = 0.5

	var kept []string
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		upper := strings.ToUpper(trimmed)

		switch {
		case strings.HasPrefix(upper, "VERDICT:"):
			if v, ok := ParseVerdict(trimmed[len("VERDICT:"):]); ok {
				verdict = v
			}
		case strings.HasPrefix(upper, "SCORE:"):
			value := strings.TrimSpace(trimmed[len("SCORE:"):])
			if f, err := strconv.ParseFloat(value, 64); err == nil {
				score = util.Clamp01(f)
			}
		default:
			kept = append(kept, line)
		}
	}

	return strings.TrimSpace(strings.Join(kept, "\n")), verdict, score
}
