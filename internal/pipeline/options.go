package pipeline

import (
	"time"

	"github.com/atelier-edu/reparto/internal/consensus"
	"github.com/atelier-edu/reparto/internal/event"
	"github.com/atelier-edu/reparto/internal/logging"
	"github.com/atelier-edu/reparto/internal/retrieval"
	"github.com/atelier-edu/reparto/internal/textgen"
)

// Option configures a Pipeline.
type Option func(*pipelineOptions)

// pipelineOptions holds optional settings for the Pipeline.
type pipelineOptions struct {
	logger       *logging.Logger
	bus          *event.Bus
	client       textgen.Client
	retriever    retrieval.Retriever
	topK         int
	deliberation *Deliberation
}

// Deliberation configures the optional deliberating phase. Zero-valued
// fields fall back to the consensus package defaults.
type Deliberation struct {
	// Proposers contribute one proposal each, in order.
	Proposers []consensus.Proposer

	// Weights control each proposer's share of the merged score.
	Weights consensus.Weights

	// RevisionThreshold is the pedagogical score below which a
	// requires_revision verdict dominates the decision.
	RevisionThreshold float64

	// ProposerTimeout bounds each proposer's run.
	ProposerTimeout time.Duration
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *logging.Logger) Option {
	return func(c *pipelineOptions) {
		c.logger = logger
	}
}

// WithBus attaches an event bus. Lifecycle, phase, and outcome events for
// every run are published on it.
func WithBus(bus *event.Bus) Option {
	return func(c *pipelineOptions) {
		c.bus = bus
	}
}

// WithClient sets the text generation client the generating phase calls.
// Without one, Run fails with ErrGeneratorUnavailable and only RunRaw is
// available.
func WithClient(client textgen.Client) Option {
	return func(c *pipelineOptions) {
		c.client = client
	}
}

// WithRetriever enriches decomposition prompts with up to k past
// activities similar to the intent. A nil retriever or k < 1 disables
// enrichment.
func WithRetriever(r retrieval.Retriever, k int) Option {
	return func(c *pipelineOptions) {
		c.retriever = r
		c.topK = k
	}
}

// WithConsensus enables the deliberating phase. Each run holds a fresh
// deliberation round over the normalized batch before assignment.
func WithConsensus(d Deliberation) Option {
	return func(c *pipelineOptions) {
		c.deliberation = &d
	}
}
