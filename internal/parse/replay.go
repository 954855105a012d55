package parse

import (
	"context"
	"strings"

	"github.com/atelier-edu/reparto/internal/activity"
	"github.com/atelier-edu/reparto/internal/errors"
	"github.com/atelier-edu/reparto/internal/prompt"
	"github.com/atelier-edu/reparto/internal/textgen"
)

// ReplayStrategy re-requests the decomposition under the stricter replay
// template, then re-reads the new text with the strict and tolerant
// strategies. It runs at most once per parse: the chain visits each
// strategy a single time, and this strategy makes a single generation
// call inside that visit.
type ReplayStrategy struct {
	client    textgen.Client
	builder   *prompt.ReplayBuilder
	maxTokens int
	inner     []Strategy
}

// NewReplayStrategy creates a ReplayStrategy backed by the given client.
func NewReplayStrategy(client textgen.Client, maxTokens int) *ReplayStrategy {
	return &ReplayStrategy{
		client:    client,
		builder:   prompt.NewReplayBuilder(),
		maxTokens: maxTokens,
		inner:     []Strategy{NewStrictStrategy(), NewTolerantStrategy()},
	}
}

// Name identifies this strategy in results and logs.
func (s *ReplayStrategy) Name() string { return "replay" }

// Confidence reports the grade for batches this strategy produces.
func (s *ReplayStrategy) Confidence() Confidence { return ConfidenceReplay }

// Attempt re-requests the text and parses the replacement. The original
// raw text is deliberately unused: it already failed the earlier
// strategies.
func (s *ReplayStrategy) Attempt(ctx context.Context, _ string, hints Hints) ([]activity.WorkItem, error) {
	if s.client == nil {
		return nil, errors.NewParseError("no generation client configured", errors.ErrStrategyUnavailable).WithStrategy(s.Name())
	}
	intent := strings.TrimSpace(hints.Intent)
	if intent == "" {
		return nil, errors.NewParseError("replay needs the original intent", errors.ErrStrategyUnavailable).WithStrategy(s.Name())
	}

	text, err := s.builder.Build(&prompt.Context{Kind: prompt.KindReplay, Intent: intent})
	if err != nil {
		return nil, errors.NewParseError("failed to build replay prompt", err).WithStrategy(s.Name())
	}

	replayed, err := s.client.Generate(ctx, textgen.Request{Prompt: text, MaxTokens: s.maxTokens})
	if err != nil {
		return nil, errors.NewParseError("replay generation failed", err).WithStrategy(s.Name())
	}

	for _, inner := range s.inner {
		items, err := inner.Attempt(ctx, replayed, hints)
		if err != nil {
			continue
		}
		if usable(items) {
			return items, nil
		}
	}
	return nil, errors.NewParseError("replayed text still unparseable", errors.ErrReplayExhausted).WithStrategy(s.Name())
}
