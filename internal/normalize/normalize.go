// Package normalize turns parser drafts into complete, consistent work
// items. Every rule is deterministic and idempotent: normalizing an
// already-normalized batch changes nothing, so the pipeline can run the
// normalizer at any point.
package normalize

import (
	"fmt"
	"strings"

	"github.com/atelier-edu/reparto/internal/activity"
	"github.com/atelier-edu/reparto/internal/logging"
	"github.com/atelier-edu/reparto/internal/util"
)

// Duration bounds for the complexity-derived default, in minutes.
const (
	minutesPerComplexity = 12
	minDurationMinutes   = 15
	maxDurationMinutes   = 60
)

// ItemID returns the canonical id for the item at the given 1-based
// position. Ids are positional so every parser strategy yields the same
// ids for the same batch shape.
func ItemID(position int) string {
	return fmt.Sprintf("item-%02d", position)
}

// Options tunes the values the normalizer fills in. Zero-valued fields
// keep the documented defaults, so the zero Options is the stock
// normalizer.
type Options struct {
	// DefaultComplexity is assigned when the parser recovered no
	// complexity, on the 1-5 scale.
	DefaultComplexity int

	// DurationPerComplexity is the minutes per complexity point used to
	// derive a missing duration.
	DurationPerComplexity int

	// MinDurationMinutes clamps derived durations from below.
	MinDurationMinutes int

	// MaxDurationMinutes clamps derived durations from above.
	MaxDurationMinutes int
}

// Normalizer fills the gaps different parser strategies leave behind.
type Normalizer struct {
	opts   Options
	logger *logging.Logger
}

// NewNormalizer creates a normalizer with the default rules. Pass a nil
// logger to disable logging.
func NewNormalizer(logger *logging.Logger) *Normalizer {
	return NewNormalizerWithOptions(Options{}, logger)
}

// NewNormalizerWithOptions creates a normalizer with tuned fill-in
// values. Fields left at zero fall back to the defaults.
func NewNormalizerWithOptions(opts Options, logger *logging.Logger) *Normalizer {
	if logger == nil {
		logger = logging.NopLogger()
	}
	if opts.DefaultComplexity <= 0 {
		opts.DefaultComplexity = complexityDefault
	}
	if opts.DurationPerComplexity <= 0 {
		opts.DurationPerComplexity = minutesPerComplexity
	}
	if opts.MinDurationMinutes <= 0 {
		opts.MinDurationMinutes = minDurationMinutes
	}
	if opts.MaxDurationMinutes <= 0 {
		opts.MaxDurationMinutes = maxDurationMinutes
	}
	return &Normalizer{
		opts:   opts,
		logger: logger.WithComponent("normalize"),
	}
}

// Normalize returns a normalized deep copy of the batch. The input is not
// mutated. Rules, in order:
//
//  1. ids become sequential and batch-stable ("item-01", "item-02", ...);
//     dependency references to the previous ids are remapped alongside.
//  2. missing complexity defaults to 3; out-of-range values are clamped
//     into 1-5.
//  3. a missing or invalid collaboration mode is inferred from the
//     description keywords, defaulting to group.
//  4. a missing duration becomes clamp(complexity*12, 15, 60).
//  5. missing competencies are inferred from the description keywords,
//     defaulting to the single "transversal" tag.
func (n *Normalizer) Normalize(items []activity.WorkItem) []activity.WorkItem {
	if items == nil {
		return nil
	}

	out := activity.CloneBatch(items)

	// First pass assigns ids and records how old ids map to new ones, so
	// dependencies written against parser-local ids stay meaningful.
	idMap := make(map[string]string, len(out))
	for i := range out {
		newID := ItemID(i + 1)
		if old := strings.TrimSpace(out[i].ID); old != "" {
			idMap[old] = newID
		}
		out[i].ID = newID
	}

	inferred := 0
	for i := range out {
		if n.normalizeItem(&out[i], idMap) {
			inferred++
		}
	}

	n.logger.Debug("batch normalized",
		"items", len(out),
		"items_with_inferred_fields", inferred)
	return out
}

// normalizeItem applies the per-item rules in place. Reports whether any
// field had to be inferred or corrected.
func (n *Normalizer) normalizeItem(item *activity.WorkItem, idMap map[string]string) bool {
	changed := false

	item.Description = strings.TrimSpace(item.Description)

	if item.Complexity == 0 {
		item.Complexity = n.opts.DefaultComplexity
		changed = true
	} else if item.Complexity < activity.MinComplexity || item.Complexity > activity.MaxComplexity {
		item.Complexity = util.Clamp(item.Complexity, activity.MinComplexity, activity.MaxComplexity)
		changed = true
	}

	if !item.Mode.IsValid() {
		if mode, ok := ClassifyMode(item.Description); ok {
			item.Mode = mode
		} else {
			item.Mode = activity.ModeGroup
		}
		changed = true
	}

	if item.DurationMinutes <= 0 {
		item.DurationMinutes = util.Clamp(item.Complexity*n.opts.DurationPerComplexity, n.opts.MinDurationMinutes, n.opts.MaxDurationMinutes)
		changed = true
	}

	if len(item.Competencies) == 0 {
		if tags := ClassifyCompetencies(item.Description); len(tags) > 0 {
			item.Competencies = tags
		} else {
			item.Competencies = []string{CompetencyTransversal}
		}
		changed = true
	}

	item.DependsOn = remapDependencies(item.DependsOn, idMap)

	return changed
}

// remapDependencies rewrites dependency references through the id map.
// References that were already canonical or that point at ids the batch
// never declared pass through untouched; batch validation reports the
// latter.
func remapDependencies(deps []string, idMap map[string]string) []string {
	if len(deps) == 0 {
		return deps
	}
	out := make([]string, 0, len(deps))
	seen := make(map[string]bool, len(deps))
	for _, dep := range deps {
		dep = strings.TrimSpace(dep)
		if dep == "" {
			continue
		}
		if mapped, ok := idMap[dep]; ok {
			dep = mapped
		}
		if seen[dep] {
			continue
		}
		seen[dep] = true
		out = append(out, dep)
	}
	return out
}
