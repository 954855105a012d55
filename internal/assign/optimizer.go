package assign

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/atelier-edu/reparto/internal/activity"
	"github.com/atelier-edu/reparto/internal/errors"
	"github.com/atelier-edu/reparto/internal/logging"
	"github.com/atelier-edu/reparto/internal/participant"
	"github.com/atelier-edu/reparto/internal/prompt"
	"github.com/atelier-edu/reparto/internal/textgen"
)

// Optimizer proposes a participant to item mapping for a batch. The ids in
// the returned mapping are the optimizer's own; the engine validates and
// remaps them against the canonical batch before trusting anything.
type Optimizer interface {
	Optimize(ctx context.Context, items []activity.WorkItem, profiles []participant.Profile) (map[string][]string, error)
}

// OptimizerFunc adapts a plain function to the Optimizer interface.
type OptimizerFunc func(ctx context.Context, items []activity.WorkItem, profiles []participant.Profile) (map[string][]string, error)

// Optimize calls f.
func (f OptimizerFunc) Optimize(ctx context.Context, items []activity.WorkItem, profiles []participant.Profile) (map[string][]string, error) {
	return f(ctx, items, profiles)
}

// -----------------------------------------------------------------------------
// Text service optimizer
// -----------------------------------------------------------------------------

// TextOptimizer asks the text generation service for an assignment proposal
// and decodes the JSON object it returns.
type TextOptimizer struct {
	client    textgen.Client
	builder   *prompt.OptimizationBuilder
	maxTokens int
	log       *logging.Logger
}

// NewTextOptimizer creates a TextOptimizer on the given client. A zero
// maxTokens leaves the response length to the client default.
func NewTextOptimizer(client textgen.Client, maxTokens int, logger *logging.Logger) *TextOptimizer {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &TextOptimizer{
		client:    client,
		builder:   prompt.NewOptimizationBuilder(),
		maxTokens: maxTokens,
		log:       logger.WithComponent("optimizer"),
	}
}

// Optimize requests an assignment proposal for the batch.
func (o *TextOptimizer) Optimize(ctx context.Context, items []activity.WorkItem, profiles []participant.Profile) (map[string][]string, error) {
	if o.client == nil {
		return nil, errors.NewAssignmentError("no generation client configured", errors.ErrOptimizerUnavailable).
			WithPath(PathOptimizer.String())
	}

	p, err := o.builder.Build(&prompt.Context{
		Kind:     prompt.KindOptimization,
		Items:    items,
		Profiles: profiles,
	})
	if err != nil {
		return nil, errors.NewAssignmentError("building optimization prompt", err).
			WithPath(PathOptimizer.String())
	}

	o.log.Debug("requesting assignment proposal", "items", len(items), "participants", len(profiles))
	raw, err := o.client.Generate(ctx, textgen.Request{Prompt: p, MaxTokens: o.maxTokens})
	if err != nil {
		return nil, errors.NewAssignmentError("optimizer generation failed", err).
			WithPath(PathOptimizer.String())
	}

	return decodeProposal(raw)
}

// decodeProposal extracts the assignments object from raw generated text.
// The service is asked for bare JSON but tends to wrap it in prose or
// markdown fences, so the decoder strips fences and works on the outermost
// brace-delimited slice.
func decodeProposal(raw string) (map[string][]string, error) {
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end <= start {
		return nil, errors.NewAssignmentError("no JSON object in optimizer response", errors.ErrEmptyResponse).
			WithPath(PathOptimizer.String())
	}

	var payload struct {
		Assignments map[string][]string `json:"assignments"`
	}
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &payload); err != nil {
		return nil, errors.NewAssignmentError("optimizer response is not valid JSON", err).
			WithPath(PathOptimizer.String())
	}
	if len(payload.Assignments) == 0 {
		return nil, errors.NewAssignmentError("optimizer response has no assignments", nil).
			WithPath(PathOptimizer.String())
	}
	return payload.Assignments, nil
}
