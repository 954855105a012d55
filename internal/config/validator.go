package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError is a single rejected config value.
type ValidationError struct {
	Field   string // dotted config path, e.g. "assign.base_score"
	Value   any    // the value that was rejected
	Message string // why it was rejected
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors reports every rejected value as one error.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	switch len(e) {
	case 0:
		return ""
	case 1:
		return e[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// ValidLogLevels returns the accepted logging.level values in severity order.
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Caps that bound otherwise open-ended values. Complexity must agree
// with the range the activity package puts on work items; it is
// restated here to keep config import-free.
const (
	maxTokensCap  = 32000
	timeoutCapSec = 3600
	replayCap     = 5
	complexityMin = 1
	complexityMax = 5
	topKCap       = 20
	logSizeCapMB  = 1000
	pathLenCap    = 4096
)

// Validate checks every section and returns all rejected values, not
// just the first.
func (c *Config) Validate() []ValidationError {
	r := &report{}
	c.checkGeneration(r)
	c.checkParser(r)
	c.checkNormalize(r)
	c.checkAssign(r)
	c.checkConsensus(r)
	c.checkRoster(r)
	c.checkRetrieval(r)
	c.checkLogging(r)
	return r.errs
}

// report collects failures while the section checks run.
type report struct {
	errs []ValidationError
}

func (r *report) reject(field string, value any, msg string) {
	r.errs = append(r.errs, ValidationError{Field: field, Value: value, Message: msg})
}

func (r *report) rejectf(field string, value any, format string, args ...any) {
	r.reject(field, value, fmt.Sprintf(format, args...))
}

// unitScore checks a tuning value that shares the [0,1] scale with the
// scores it feeds into.
func (r *report) unitScore(field string, v float64) {
	if v < 0 || v > 1 {
		r.reject(field, v, "must be between 0 and 1")
	}
}

// percent checks an availability threshold.
func (r *report) percent(field string, v int) {
	if v < 0 || v > 100 {
		r.reject(field, v, "must be between 0 and 100")
	}
}

// timeout checks a whole-seconds timeout. An hour is already far beyond
// any sane generation round.
func (r *report) timeout(field string, v int) {
	if v < 1 {
		r.reject(field, v, "must be at least 1 second")
	}
	if v > timeoutCapSec {
		r.rejectf(field, v, "exceeds maximum of %d seconds", timeoutCapSec)
	}
}

// path runs the syntax checks shared by every configurable file path.
// Empty paths are valid; existence is the consumer's concern.
func (r *report) path(field, p string) {
	if p == "" {
		return
	}
	if strings.ContainsRune(p, '\x00') {
		r.reject(field, p, "path contains invalid null character")
	}
	if len(p) > pathLenCap {
		r.rejectf(field, p, "path exceeds maximum length of %d characters", pathLenCap)
	}
}

func (c *Config) checkGeneration(r *report) {
	if c.Generation.MaxTokens <= 0 {
		r.reject("generation.max_tokens", c.Generation.MaxTokens, "must be positive")
	}
	if c.Generation.MaxTokens > maxTokensCap {
		r.rejectf("generation.max_tokens", c.Generation.MaxTokens, "exceeds maximum of %d", maxTokensCap)
	}
	r.timeout("generation.timeout_seconds", c.Generation.TimeoutSeconds)
}

func (c *Config) checkParser(r *report) {
	if c.Parser.MaxReplays < 0 {
		r.reject("parser.max_replays", c.Parser.MaxReplays, "must be non-negative (0 disables replay)")
	}
	// Each replay costs a full generation round trip.
	if c.Parser.MaxReplays > replayCap {
		r.rejectf("parser.max_replays", c.Parser.MaxReplays, "exceeds maximum of %d", replayCap)
	}
}

func (c *Config) checkNormalize(r *report) {
	n := c.Normalize
	if n.DefaultComplexity < complexityMin || n.DefaultComplexity > complexityMax {
		r.rejectf("normalize.default_complexity", n.DefaultComplexity, "must be between %d and %d", complexityMin, complexityMax)
	}
	if n.DurationPerComplexity <= 0 {
		r.reject("normalize.duration_per_complexity", n.DurationPerComplexity, "must be positive")
	}
	if n.MinDurationMinutes <= 0 {
		r.reject("normalize.min_duration_minutes", n.MinDurationMinutes, "must be positive")
	}
	if n.MaxDurationMinutes < n.MinDurationMinutes {
		r.rejectf("normalize.max_duration_minutes", n.MaxDurationMinutes, "must be at least min_duration_minutes (%d)", n.MinDurationMinutes)
	}
}

func (c *Config) checkAssign(r *report) {
	a := c.Assign
	r.unitScore("assign.base_score", a.BaseScore)
	r.unitScore("assign.tag_bonus", a.TagBonus)
	r.unitScore("assign.neurotype_penalty", a.NeurotypePenalty)
	if a.BaseLoadCap < 1 {
		r.reject("assign.base_load_cap", a.BaseLoadCap, "must be at least 1")
	}
	r.percent("assign.availability_high", a.AvailabilityHigh)
	r.percent("assign.availability_low", a.AvailabilityLow)
	if a.AvailabilityLow >= a.AvailabilityHigh {
		r.rejectf("assign.availability_low", a.AvailabilityLow, "must be less than availability_high (%d)", a.AvailabilityHigh)
	}
}

func (c *Config) checkConsensus(r *report) {
	w := c.Consensus.Weights
	weights := []struct {
		field string
		value float64
	}{
		{"consensus.weights.structural", w.Structural},
		{"consensus.weights.pedagogical", w.Pedagogical},
		{"consensus.weights.feasibility", w.Feasibility},
	}
	for _, wt := range weights {
		if wt.value < 0 {
			r.reject(wt.field, wt.value, "must be non-negative")
		}
	}
	if sum := w.Structural + w.Pedagogical + w.Feasibility; sum <= 0 {
		r.reject("consensus.weights", sum, "weights must sum to a positive value")
	}

	r.timeout("consensus.proposer_timeout_seconds", c.Consensus.ProposerTimeoutSeconds)
	r.unitScore("consensus.revision_threshold", c.Consensus.RevisionThreshold)
}

func (c *Config) checkRoster(r *report) {
	// Watching nothing is a config mistake, not a silent no-op.
	if c.Roster.Watch && c.Roster.Path == "" {
		r.reject("roster.watch", c.Roster.Watch, "requires roster.path to be set")
	}
	r.path("roster.path", c.Roster.Path)
}

func (c *Config) checkRetrieval(r *report) {
	if c.Retrieval.TopK < 0 {
		r.reject("retrieval.top_k", c.Retrieval.TopK, "must be non-negative (0 disables enrichment)")
	}
	// Every example costs prompt tokens.
	if c.Retrieval.TopK > topKCap {
		r.rejectf("retrieval.top_k", c.Retrieval.TopK, "exceeds maximum of %d", topKCap)
	}
	r.path("retrieval.corpus_path", c.Retrieval.CorpusPath)
}

func (c *Config) checkLogging(r *report) {
	l := c.Logging
	if l.Level != "" && !slices.Contains(ValidLogLevels(), l.Level) {
		r.rejectf("logging.level", l.Level, "must be one of: %s", strings.Join(ValidLogLevels(), ", "))
	}
	if l.MaxSizeMB <= 0 {
		r.reject("logging.max_size_mb", l.MaxSizeMB, "must be positive")
	}
	if l.MaxSizeMB > logSizeCapMB {
		r.rejectf("logging.max_size_mb", l.MaxSizeMB, "exceeds maximum of %dMB", logSizeCapMB)
	}
	if l.MaxBackups < 0 {
		r.reject("logging.max_backups", l.MaxBackups, "must be non-negative")
	}
	r.path("logging.dir", l.Dir)
}
