package consensus

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/atelier-edu/reparto/internal/errors"
	"github.com/atelier-edu/reparto/internal/event"
	"github.com/atelier-edu/reparto/internal/logging"
	"github.com/atelier-edu/reparto/internal/util"
)

const (
	// DefaultRevisionThreshold is the pedagogical score below which a
	// requires_revision verdict replaces the structural proposal.
	DefaultRevisionThreshold = 0.6

	// DefaultProposerTimeout bounds each proposer's run.
	DefaultProposerTimeout = 60 * time.Second
)

// Callbacks holds callbacks for deliberation notifications.
// All fields are optional.
type Callbacks struct {
	// OnStateChange is called when the deliberation moves to a new state.
	OnStateChange func(from, to State)

	// OnProposal is called when a proposer contributes successfully.
	OnProposal func(p Proposal)

	// OnProposerError is called when a proposer fails or times out.
	OnProposerError func(proposerID string, err error)

	// OnDecision is called once with the final decision.
	OnDecision func(d Decision)
}

// Options configures a Coordinator.
type Options struct {
	// RequestID tags published events and log lines. Optional.
	RequestID string

	// Weights control each proposer's contribution to the merged score.
	// The zero value means DefaultWeights.
	Weights Weights

	// RevisionThreshold is the pedagogical score below which a
	// requires_revision verdict dominates the decision. Zero means
	// DefaultRevisionThreshold.
	RevisionThreshold float64

	// ProposerTimeout bounds each proposer's run. Zero means
	// DefaultProposerTimeout.
	ProposerTimeout time.Duration

	// Bus receives consensus events when non-nil.
	Bus *event.Bus

	// Logger receives deliberation logging. Nil disables logging.
	Logger *logging.Logger

	// Callbacks receive deliberation notifications. Optional.
	Callbacks *Callbacks
}

// Coordinator runs one deliberation: it collects a proposal from every
// proposer in order, threading earlier proposals into later prompts, then
// arbitrates the results into a single decision.
//
// A Coordinator is single use. Decide returns ErrAlreadyDecided when
// called a second time.
type Coordinator struct {
	mu      sync.Mutex
	state   State
	started bool

	proposers         []Proposer
	requestID         string
	weights           Weights
	revisionThreshold float64
	proposerTimeout   time.Duration
	bus               *event.Bus
	callbacks         *Callbacks
	log               *logging.Logger
}

// NewCoordinator creates a coordinator over the given proposers.
// Zero-valued options fall back to package defaults.
func NewCoordinator(proposers []Proposer, opts Options) *Coordinator {
	weights := opts.Weights
	if weights.IsZero() {
		weights = DefaultWeights()
	}

	threshold := opts.RevisionThreshold
	if threshold == 0 {
		threshold = DefaultRevisionThreshold
	}

	timeout := opts.ProposerTimeout
	if timeout == 0 {
		timeout = DefaultProposerTimeout
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}
	log := logger.WithComponent("consensus")
	if opts.RequestID != "" {
		log = log.WithRequest(opts.RequestID)
	}

	return &Coordinator{
		state:             StateCollecting,
		proposers:         proposers,
		requestID:         opts.RequestID,
		weights:           weights,
		revisionThreshold: threshold,
		proposerTimeout:   timeout,
		bus:               opts.Bus,
		callbacks:         opts.Callbacks,
		log:               log,
	}
}

// State returns the current deliberation state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Decide runs the deliberation and returns the decision.
//
// Every proposer runs even when an earlier one fails; a partial failure
// produces a fallback decision built from the best available proposal.
// Only a total failure, a canceled context, or a reused coordinator
// returns an error.
func (c *Coordinator) Decide(ctx context.Context, in Input) (*Decision, error) {
	c.mu.Lock()
	if c.started {
		state := c.state
		c.mu.Unlock()
		return nil, errors.NewConsensusError("coordinator is single use", errors.ErrAlreadyDecided).
			WithState(string(state))
	}
	c.started = true
	c.mu.Unlock()

	if len(c.proposers) == 0 {
		c.setState(StateFallback)
		return nil, errors.NewConsensusError("no proposers configured", errors.ErrNoProposals).
			WithState(string(StateFallback))
	}

	var (
		proposals []Proposal
		failed    []string
	)

	for _, p := range c.proposers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		prop, err := c.propose(ctx, p, in)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			failed = append(failed, p.ID())
			c.log.Warn("proposer failed", "proposer", p.ID(), "error", err)
			c.notifyProposerError(p.ID(), err)
			continue
		}

		prop.Score = util.Clamp01(prop.Score)
		proposals = append(proposals, prop)
		c.log.Debug("proposal collected",
			"proposer", prop.ProposerID,
			"verdict", string(prop.Verdict),
			"score", prop.Score,
		)
		c.notifyProposal(prop)

		// Thread earlier rounds into later proposers.
		switch prop.ProposerID {
		case ProposerStructural:
			in.Proposal = prop.Structure
		case ProposerPedagogical:
			in.Review = prop.AdaptationRequirements
		}
	}

	if len(proposals) == 0 {
		c.setState(StateFallback)
		c.publishFallback("", "all proposers failed")
		return nil, errors.NewConsensusError("all proposers failed", errors.ErrNoProposals).
			WithState(string(StateFallback))
	}

	if len(failed) > 0 {
		c.setState(StateFallback)
		decision, source := c.fallbackDecision(proposals, failed)
		c.log.Warn("deliberation fell back",
			"kept", source,
			"failed", strings.Join(failed, ","),
		)
		c.publishFallback(source, decision.Rationale)
		c.notifyDecision(*decision)
		return decision, nil
	}

	c.setState(StateEvaluating)
	decision := c.evaluate(proposals)
	c.setState(StateDecided)

	c.log.Info("deliberation complete",
		"type", decision.Type.String(),
		"score", decision.Score,
		"proposals", len(decision.Proposals),
	)
	if c.bus != nil {
		c.bus.Publish(event.NewConsensusDecidedEvent(c.requestID, decision.Type.String(), decision.Score))
	}
	c.notifyDecision(*decision)
	return decision, nil
}

// propose runs one proposer under its timeout, classifying a timeout
// distinctly from other failures.
func (c *Coordinator) propose(ctx context.Context, p Proposer, in Input) (Proposal, error) {
	pctx, cancel := context.WithTimeout(ctx, c.proposerTimeout)
	defer cancel()

	prop, err := c.safePropose(pctx, p, in)
	if err != nil && errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return Proposal{}, errors.NewConsensusError("proposer timed out", errors.ErrProposerTimeout).
			WithProposerID(p.ID())
	}
	return prop, err
}

// safePropose invokes a proposer and recovers from any panic, so one
// misbehaving proposer degrades the deliberation instead of crashing it.
func (c *Coordinator) safePropose(ctx context.Context, p Proposer, in Input) (prop Proposal, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.NewConsensusError(fmt.Sprintf("proposer panicked: %v", r), errors.ErrProposerFailed).
				WithProposerID(p.ID())
		}
	}()
	return p.Propose(ctx, in)
}

// evaluate arbitrates a full set of proposals into a decision.
//
// A pedagogical requires_revision verdict scoring below the revision
// threshold dominates: the pedagogical proposal replaces the structure.
// Otherwise the proposals merge field by field under the weighted score.
func (c *Coordinator) evaluate(proposals []Proposal) *Decision {
	if p, ok := byID(proposals, ProposerPedagogical); ok &&
		p.Verdict == VerdictRequiresRevision && p.Score < c.revisionThreshold {
		d := &Decision{
			Type:                   DecisionModificationPedagogical,
			State:                  StateDecided,
			Structure:              p.Structure,
			AdaptationRequirements: p.AdaptationRequirements,
			Score:                  p.Score,
			Rationale:              "proposal modified on pedagogical grounds",
			Proposals:              proposals,
		}
		if f, ok := byID(proposals, ProposerFeasibility); ok {
			d.FeasibilityAdjustments = f.FeasibilityAdjustments
		}
		return d
	}

	d := &Decision{
		Type:      DecisionConsensus,
		State:     StateDecided,
		Structure: proposals[0].Structure,
		Score:     c.weightedScore(proposals),
		Rationale: "consensus reached across all proposers",
		Proposals: proposals,
	}
	if s, ok := byID(proposals, ProposerStructural); ok {
		d.Structure = s.Structure
	}
	if p, ok := byID(proposals, ProposerPedagogical); ok {
		d.AdaptationRequirements = p.AdaptationRequirements
	}
	if f, ok := byID(proposals, ProposerFeasibility); ok {
		d.FeasibilityAdjustments = f.FeasibilityAdjustments
	}
	return d
}

// fallbackDecision keeps the best available proposal after failures:
// the structural proposal when it survived, otherwise the first one
// collected in proposer order. Returns the decision and the id of the
// proposer it was built from.
func (c *Coordinator) fallbackDecision(proposals []Proposal, failed []string) (*Decision, string) {
	chosen := proposals[0]
	if s, ok := byID(proposals, ProposerStructural); ok {
		chosen = s
	}

	d := &Decision{
		Type:      DecisionFallback,
		State:     StateFallback,
		Structure: chosen.Structure,
		Score:     chosen.Score,
		Rationale: fmt.Sprintf("kept %s proposal after failures: %s",
			chosen.ProposerID, strings.Join(failed, ", ")),
		Proposals:       proposals,
		FailedProposers: failed,
	}
	if p, ok := byID(proposals, ProposerPedagogical); ok {
		d.AdaptationRequirements = p.AdaptationRequirements
	}
	if f, ok := byID(proposals, ProposerFeasibility); ok {
		d.FeasibilityAdjustments = f.FeasibilityAdjustments
	}
	return d, chosen.ProposerID
}

// weightedScore merges proposal scores, normalized by the weight sum.
// Proposers outside the standard three count with unit weight.
func (c *Coordinator) weightedScore(proposals []Proposal) float64 {
	var sum, total float64
	for _, p := range proposals {
		w := c.weightFor(p.ProposerID)
		sum += w * p.Score
		total += w
	}
	if total == 0 {
		return 0
	}
	return util.Clamp01(sum / total)
}

func (c *Coordinator) weightFor(id string) float64 {
	switch id {
	case ProposerStructural:
		return c.weights.Structural
	case ProposerPedagogical:
		return c.weights.Pedagogical
	case ProposerFeasibility:
		return c.weights.Feasibility
	default:
		return 1
	}
}

// setState transitions the deliberation state and notifies observers.
func (c *Coordinator) setState(to State) {
	c.mu.Lock()
	from := c.state
	c.state = to
	c.mu.Unlock()

	c.log.Debug("state changed", "from", string(from), "to", string(to))
	c.notifyStateChange(from, to)
}

func (c *Coordinator) publishFallback(proposerID, reason string) {
	if c.bus == nil {
		return
	}
	c.bus.Publish(event.NewConsensusFallbackEvent(c.requestID, proposerID, reason))
}

func (c *Coordinator) notifyStateChange(from, to State) {
	if c.callbacks != nil && c.callbacks.OnStateChange != nil {
		c.callbacks.OnStateChange(from, to)
	}
}

func (c *Coordinator) notifyProposal(p Proposal) {
	if c.callbacks != nil && c.callbacks.OnProposal != nil {
		c.callbacks.OnProposal(p)
	}
}

func (c *Coordinator) notifyProposerError(proposerID string, err error) {
	if c.callbacks != nil && c.callbacks.OnProposerError != nil {
		c.callbacks.OnProposerError(proposerID, err)
	}
}

func (c *Coordinator) notifyDecision(d Decision) {
	if c.callbacks != nil && c.callbacks.OnDecision != nil {
		c.callbacks.OnDecision(d)
	}
}

// byID finds a proposal by proposer id.
func byID(proposals []Proposal, id string) (Proposal, bool) {
	for _, p := range proposals {
		if p.ProposerID == id {
			return p, true
		}
	}
	return Proposal{}, false
}
