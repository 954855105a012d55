package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/atelier-edu/reparto/internal/assign"
	"github.com/atelier-edu/reparto/internal/config"
	"github.com/atelier-edu/reparto/internal/consensus"
	"github.com/atelier-edu/reparto/internal/event"
	"github.com/atelier-edu/reparto/internal/logging"
	"github.com/atelier-edu/reparto/internal/normalize"
	"github.com/atelier-edu/reparto/internal/parse"
	"github.com/atelier-edu/reparto/internal/participant"
	"github.com/atelier-edu/reparto/internal/pipeline"
	"github.com/atelier-edu/reparto/internal/retrieval"
	"github.com/atelier-edu/reparto/internal/textgen"
)

// components bundles the assembled subsystems a verb needs to run
// distribution requests.
type components struct {
	cfg    *config.Config
	logger *logging.Logger
	bus    *event.Bus
	repo   *participant.Repository
	client textgen.Client
	pipe   *pipeline.Pipeline
}

// close releases everything the bundle holds. Safe on a partially built
// bundle.
func (c *components) close() {
	if c.repo != nil {
		c.repo.StopWatching()
	}
	if c.logger != nil {
		_ = c.logger.Close()
	}
}

// buildLogger creates the debug logger the configuration asks for. A
// disabled logging section yields a no-op logger.
func buildLogger(cfg *config.Config) (*logging.Logger, error) {
	if !cfg.Logging.Enabled {
		return logging.NopLogger(), nil
	}
	return logging.NewLoggerWithRotation(cfg.LogDir(), cfg.Logging.Level, logging.RotationConfig{
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})
}

// buildComponents loads the configuration and assembles the full request
// pipeline from it. rosterOverride, when non-empty, replaces the
// configured roster path.
func buildComponents(rosterOverride string) (*components, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger, err := buildLogger(cfg)
	if err != nil {
		return nil, err
	}

	c := &components{
		cfg:    cfg,
		logger: logger,
		bus:    event.NewBus(),
	}

	// The generation client is optional: without one, only raw text can
	// be distributed and the optimizer and consensus paths stay off.
	if cfg.Generation.Command != "" {
		c.client = textgen.NewCommandClient(textgen.Options{
			Command:   cfg.Generation.Command,
			Args:      cfg.Generation.Args,
			MaxTokens: cfg.Generation.MaxTokens,
			Timeout:   cfg.Generation.Timeout(),
		}, logger)
	}

	c.repo = participant.NewRepository(logger)
	rosterPath := cfg.Roster.Path
	if rosterOverride != "" {
		rosterPath = rosterOverride
	}
	if rosterPath != "" {
		if err := c.repo.LoadFile(rosterPath); err != nil {
			c.close()
			return nil, err
		}
		if cfg.Roster.Watch {
			if err := c.repo.StartWatching(); err != nil {
				c.close()
				return nil, err
			}
		}
	}

	chain := parse.NewChain(parse.Options{
		Client:     c.client,
		MaxReplays: cfg.Parser.MaxReplays,
		MaxTokens:  cfg.Generation.MaxTokens,
	}, logger)

	normalizer := normalize.NewNormalizerWithOptions(normalizeOptions(cfg), logger)

	engineOpts := assign.Options{
		BaseScore:        cfg.Assign.BaseScore,
		TagBonus:         cfg.Assign.TagBonus,
		NeurotypePenalty: cfg.Assign.NeurotypePenalty,
		BaseLoadCap:      cfg.Assign.BaseLoadCap,
		AvailabilityHigh: cfg.Assign.AvailabilityHigh,
		AvailabilityLow:  cfg.Assign.AvailabilityLow,
		Logger:           logger,
	}
	if c.client != nil {
		engineOpts.Optimizer = assign.NewTextOptimizer(c.client, cfg.Generation.MaxTokens, logger)
	}

	opts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithBus(c.bus),
	}
	if c.client != nil {
		opts = append(opts, pipeline.WithClient(c.client))
	}
	if cfg.Retrieval.CorpusPath != "" {
		examples, err := retrieval.LoadCorpus(cfg.Retrieval.CorpusPath)
		if err != nil {
			c.close()
			return nil, err
		}
		retriever := retrieval.NewCorpusRetriever(examples, logger)
		opts = append(opts, pipeline.WithRetriever(retriever, cfg.Retrieval.TopK))
	}
	if cfg.Consensus.Enabled {
		if c.client == nil {
			c.close()
			return nil, fmt.Errorf("consensus deliberation needs a generation command: set generation.command or disable consensus.enabled")
		}
		opts = append(opts, pipeline.WithConsensus(pipeline.Deliberation{
			Proposers: consensus.NewTextProposers(c.client, cfg.Generation.MaxTokens),
			Weights: consensus.Weights{
				Structural:  cfg.Consensus.Weights.Structural,
				Pedagogical: cfg.Consensus.Weights.Pedagogical,
				Feasibility: cfg.Consensus.Weights.Feasibility,
			},
			RevisionThreshold: cfg.Consensus.RevisionThreshold,
			ProposerTimeout:   cfg.Consensus.ProposerTimeout(),
		}))
	}

	pipe, err := pipeline.NewPipeline(pipeline.Config{
		Chain:      chain,
		Normalizer: normalizer,
		Engine:     assign.NewEngine(engineOpts),
		Repository: c.repo,
	}, opts...)
	if err != nil {
		c.close()
		return nil, err
	}
	c.pipe = pipe
	return c, nil
}

// normalizeOptions maps the normalize config section onto the
// normalizer's options.
func normalizeOptions(cfg *config.Config) normalize.Options {
	return normalize.Options{
		DefaultComplexity:     cfg.Normalize.DefaultComplexity,
		DurationPerComplexity: cfg.Normalize.DurationPerComplexity,
		MinDurationMinutes:    cfg.Normalize.MinDurationMinutes,
		MaxDurationMinutes:    cfg.Normalize.MaxDurationMinutes,
	}
}

// printJSON writes v as indented JSON, the machine readable shape every
// verb shares behind --json.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
