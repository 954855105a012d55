// Package parse turns unreliable generated text into work item batches.
//
// Parsing is an ordered strategy chain. Each strategy reads the same raw
// text its own way, from the strict field format down to a canonical
// generic batch that always succeeds. The chain stops at the first
// strategy whose batch is usable and tags the result with that strategy's
// confidence, so callers can tell a clean parse from a rescue.
//
// Strategy failures never escape the chain: errors and panics mark the
// strategy failed and the chain moves on.
package parse

import (
	"context"
	"fmt"
	"strings"

	"github.com/atelier-edu/reparto/internal/activity"
	"github.com/atelier-edu/reparto/internal/errors"
	"github.com/atelier-edu/reparto/internal/logging"
	"github.com/atelier-edu/reparto/internal/textgen"
)

// Hints carries request context a strategy may need beyond the raw text.
type Hints struct {
	// Intent is the original activity intent. The replay strategy uses
	// it to re-request the decomposition.
	Intent string
}

// Result is a parsed batch plus its provenance.
type Result struct {
	Items      []activity.WorkItem
	Strategy   string
	Confidence Confidence
}

// Degraded reports whether the batch came from a rescue strategy.
func (r *Result) Degraded() bool {
	return r.Confidence.Degraded()
}

// Strategy is one way of reading raw text into items.
type Strategy interface {
	// Name identifies the strategy in results and logs.
	Name() string

	// Confidence is the fixed grade for batches this strategy produces.
	Confidence() Confidence

	// Attempt parses raw into items. Returning an error or an unusable
	// batch advances the chain to the next strategy.
	Attempt(ctx context.Context, raw string, hints Hints) ([]activity.WorkItem, error)
}

// Options configure the default chain.
type Options struct {
	// Client backs the replay strategy. Leave nil to run without replay.
	Client textgen.Client

	// MaxReplays enables the replay strategy when positive. The chain
	// performs at most one replay per parse regardless of the value.
	MaxReplays int

	// MaxTokens is the token budget for replay generation.
	MaxTokens int
}

// Chain tries strategies in order until one produces a usable batch.
type Chain struct {
	strategies []Strategy
	logger     *logging.Logger
}

// NewChain builds the standard chain: strict, tolerant, replay (when a
// client is configured and replays are enabled), minimal, fallback.
func NewChain(opts Options, logger *logging.Logger) *Chain {
	strategies := []Strategy{
		NewStrictStrategy(),
		NewTolerantStrategy(),
	}
	if opts.Client != nil && opts.MaxReplays > 0 {
		strategies = append(strategies, NewReplayStrategy(opts.Client, opts.MaxTokens))
	}
	strategies = append(strategies,
		NewMinimalStrategy(),
		NewFallbackStrategy(),
	)
	return NewChainWithStrategies(logger, strategies...)
}

// NewChainWithStrategies builds a chain from an explicit strategy order.
func NewChainWithStrategies(logger *logging.Logger, strategies ...Strategy) *Chain {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Chain{
		strategies: strategies,
		logger:     logger.WithComponent("parse"),
	}
}

// Strategies returns the names of the chain's strategies in order.
func (c *Chain) Strategies() []string {
	names := make([]string, len(c.strategies))
	for i, s := range c.strategies {
		names[i] = s.Name()
	}
	return names
}

// Parse runs the chain over raw text. With the standard chain the
// returned error is only ever a context cancellation: the canonical
// fallback accepts any input, so some batch always comes back.
func (c *Chain) Parse(ctx context.Context, raw string, hints Hints) (*Result, error) {
	for _, s := range c.strategies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		items, err := c.attempt(ctx, s, raw, hints)
		if err != nil {
			c.logger.Debug("parse strategy failed",
				"strategy", s.Name(),
				"error", err.Error())
			continue
		}
		if !usable(items) {
			c.logger.Debug("parse strategy produced unusable batch",
				"strategy", s.Name(),
				"items", len(items))
			continue
		}

		conf := s.Confidence()
		if conf.Degraded() {
			c.logger.Warn("parse degraded",
				"strategy", s.Name(),
				"confidence", conf.String(),
				"items", len(items))
		} else {
			c.logger.Debug("parse succeeded",
				"strategy", s.Name(),
				"confidence", conf.String(),
				"items", len(items))
		}
		return &Result{Items: items, Strategy: s.Name(), Confidence: conf}, nil
	}
	return nil, errors.NewParseError("no strategy produced a usable batch", errors.ErrNoItems)
}

// attempt runs one strategy with panic isolation.
func (c *Chain) attempt(ctx context.Context, s Strategy, raw string, hints Hints) (items []activity.WorkItem, err error) {
	defer func() {
		if r := recover(); r != nil {
			items = nil
			err = errors.NewParseError(fmt.Sprintf("strategy panicked: %v", r), nil).WithStrategy(s.Name())
		}
	}()
	return s.Attempt(ctx, raw, hints)
}

// usable is the chain's acceptance rule: a non-empty batch in which every
// item carries a description.
func usable(items []activity.WorkItem) bool {
	if len(items) == 0 {
		return false
	}
	for _, it := range items {
		if strings.TrimSpace(it.Description) == "" {
			return false
		}
	}
	return true
}
