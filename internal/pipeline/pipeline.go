package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/atelier-edu/reparto/internal/activity"
	"github.com/atelier-edu/reparto/internal/consensus"
	"github.com/atelier-edu/reparto/internal/errors"
	"github.com/atelier-edu/reparto/internal/event"
	"github.com/atelier-edu/reparto/internal/logging"
	"github.com/atelier-edu/reparto/internal/parse"
	"github.com/atelier-edu/reparto/internal/participant"
	"github.com/atelier-edu/reparto/internal/prompt"
	"github.com/atelier-edu/reparto/internal/textgen"
)

// Pipeline runs distribution requests end to end.
//
// A request moves through sequential phases (generating → parsing →
// normalizing → deliberating → assigning), each handled by an injected
// component. The Pipeline itself holds no mutable state: every run tracks
// its phase in a request-scoped value, so one Pipeline serves concurrent
// requests.
type Pipeline struct {
	cfg     Config
	pcfg    pipelineOptions
	builder *prompt.DecompositionBuilder
	log     *logging.Logger
}

// NewPipeline creates a Pipeline with the given configuration and options.
func NewPipeline(cfg Config, opts ...Option) (*Pipeline, error) {
	if cfg.Chain == nil {
		return nil, errors.New("pipeline: Chain is required")
	}
	if cfg.Normalizer == nil {
		return nil, errors.New("pipeline: Normalizer is required")
	}
	if cfg.Engine == nil {
		return nil, errors.New("pipeline: Engine is required")
	}
	if cfg.Repository == nil {
		return nil, errors.New("pipeline: Repository is required")
	}

	pc := &pipelineOptions{}
	for _, opt := range opts {
		opt(pc)
	}
	if pc.logger == nil {
		pc.logger = logging.NopLogger()
	}

	return &Pipeline{
		cfg:     cfg,
		pcfg:    *pc,
		builder: prompt.NewDecompositionBuilder(),
		log:     pc.logger.WithComponent("pipeline"),
	}, nil
}

// Run executes one full request: generate, parse, normalize, deliberate
// when configured, assign. It blocks until the request reaches a terminal
// phase or the context is cancelled.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.Intent) == "" {
		return nil, errors.ErrEmptyIntent
	}
	if p.pcfg.client == nil {
		return nil, errors.ErrGeneratorUnavailable
	}

	r := p.newRequest(req.Intent)
	raw, err := p.generate(ctx, r, req)
	if err != nil {
		return nil, p.fail(r, err)
	}
	return p.process(ctx, r, req, raw)
}

// RunRaw executes a request over already-generated text, skipping the
// generating phase. The text moves through the same parsing, normalizing,
// deliberating, and assigning phases as Run.
func (p *Pipeline) RunRaw(ctx context.Context, raw string, req Request) (*Result, error) {
	r := p.newRequest(req.Intent)
	return p.process(ctx, r, req, raw)
}

// generate builds the decomposition prompt and calls the text service.
func (p *Pipeline) generate(ctx context.Context, r *request, req Request) (string, error) {
	r.setPhase(PhaseGenerating)

	pctx := &prompt.Context{
		Kind:    prompt.KindDecomposition,
		Intent:  req.Intent,
		Weights: req.Weights,
	}
	if p.pcfg.retriever != nil {
		pctx.Examples = p.pcfg.retriever.FindSimilar(req.Intent, p.pcfg.topK)
	}

	text, err := p.builder.Build(pctx)
	if err != nil {
		return "", err
	}

	r.log.Debug("requesting decomposition",
		"prompt_chars", len(text),
		"examples", len(pctx.Examples))
	return p.pcfg.client.Generate(ctx, textgen.Request{Prompt: text})
}

// process carries a request from raw text to an assembled result.
func (p *Pipeline) process(ctx context.Context, r *request, req Request, raw string) (*Result, error) {
	// Parsing.
	r.setPhase(PhaseParsing)
	parsed, err := p.cfg.Chain.Parse(ctx, raw, parse.Hints{Intent: req.Intent})
	if err != nil {
		return nil, p.fail(r, err)
	}
	if parsed.Degraded() {
		r.publish(event.NewParseDegradedEvent(
			r.id, parsed.Strategy, parsed.Confidence.String(), len(parsed.Items),
		))
	}

	// Normalizing. Validation errors after normalization mean the batch is
	// structurally broken (cycles, unresolvable dependencies) and cannot be
	// assigned; warnings ride along on the result.
	r.setPhase(PhaseNormalizing)
	items := p.cfg.Normalizer.Normalize(parsed.Items)
	validation := activity.ValidateBatch(items)
	if validation.HasErrors() {
		verr := errors.NewValidationError(fmt.Sprintf(
			"normalized batch is unusable: %d validation error(s)", validation.ErrorCount,
		))
		return nil, p.fail(r, verr)
	}
	if validation.HasWarnings() {
		r.log.Warn("batch validation raised warnings", "warnings", validation.WarningCount)
	}

	profiles := p.cfg.Repository.All()

	result := &Result{
		RequestID:       r.id,
		Items:           items,
		Validation:      validation,
		ParseStrategy:   parsed.Strategy,
		ParseConfidence: parsed.Confidence,
	}

	// Deliberating, when a consensus round is configured. The round is
	// advisory: its decision is recorded on the result, and a failed round
	// is logged while the request proceeds to assignment without one.
	if p.pcfg.deliberation != nil {
		r.setPhase(PhaseDeliberating)
		decision, err := p.deliberate(ctx, r, req.Intent, items, profiles)
		switch {
		case err != nil && ctx.Err() != nil:
			return nil, p.fail(r, ctx.Err())
		case err != nil:
			r.log.Warn("deliberation failed, continuing to assignment", "error", err)
		default:
			result.Decision = decision
		}
	}

	// Assigning.
	r.setPhase(PhaseAssigning)
	record, err := p.cfg.Engine.Assign(ctx, items, profiles)
	if err != nil {
		return nil, p.fail(r, err)
	}
	result.Record = record
	result.AssignmentPath = record.Path
	r.publish(event.NewAssignmentCompletedEvent(
		r.id, record.Path.String(), record.TotalAssigned(), len(profiles), record.BackFilled,
	))

	result.Coherence = checkCoherence(items, record, len(profiles))

	r.setPhase(PhaseDone)
	r.publish(event.NewRequestCompletedEvent(r.id, true, ""))
	r.log.Info("request completed",
		"items", len(items),
		"confidence", parsed.Confidence.String(),
		"path", record.Path.String(),
		"coherence", result.Coherence.Score)
	return result, nil
}

// deliberate runs one consensus round over the normalized batch. The
// coordinator is single use, so each request builds its own.
func (p *Pipeline) deliberate(ctx context.Context, r *request, intent string, items []activity.WorkItem, profiles []participant.Profile) (*consensus.Decision, error) {
	d := p.pcfg.deliberation
	coord := consensus.NewCoordinator(d.Proposers, consensus.Options{
		RequestID:         r.id,
		Weights:           d.Weights,
		RevisionThreshold: d.RevisionThreshold,
		ProposerTimeout:   d.ProposerTimeout,
		Bus:               p.pcfg.bus,
		Logger:            p.pcfg.logger,
	})
	return coord.Decide(ctx, consensus.Input{
		Intent:   intent,
		Items:    items,
		Profiles: profiles,
	})
}

// newRequest mints the identity and request-scoped state one run carries
// through its phases.
func (p *Pipeline) newRequest(intent string) *request {
	id := uuid.New().String()
	r := &request{
		id:  id,
		log: p.log.WithRequest(id),
		bus: p.pcfg.bus,
	}
	r.publish(event.NewRequestStartedEvent(id, intent))
	r.log.Info("request started", "intent_chars", len(intent))
	return r
}

// fail moves the request to the failed phase, publishes the completion,
// and returns err unchanged so callers can hand it straight back.
func (p *Pipeline) fail(r *request, err error) error {
	r.setPhase(PhaseFailed)
	r.publish(event.NewRequestCompletedEvent(r.id, false, err.Error()))
	r.log.Error("request failed", "error", err)
	return err
}

// request tracks one run's identity and phase. State lives here rather
// than on the Pipeline so concurrent runs never share anything mutable.
type request struct {
	id    string
	phase Phase
	log   *logging.Logger
	bus   *event.Bus
}

// setPhase advances the request to the given phase, publishes the change,
// and returns the previous phase.
func (r *request) setPhase(phase Phase) Phase {
	prev := r.phase
	r.phase = phase
	r.log.Debug("phase changed", "from", prev.String(), "to", phase.String())
	r.publish(event.NewPhaseChangeEvent(r.id, event.Phase(prev), event.Phase(phase)))
	return prev
}

// publish sends the event when a bus is attached.
func (r *request) publish(e event.Event) {
	if r.bus != nil {
		r.bus.Publish(e)
	}
}
