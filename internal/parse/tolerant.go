package parse

import (
	"context"
	"regexp"
	"strings"

	"github.com/atelier-edu/reparto/internal/activity"
	"github.com/atelier-edu/reparto/internal/errors"
	"github.com/atelier-edu/reparto/internal/normalize"
	"github.com/atelier-edu/reparto/internal/util"
)

var (
	numberedLineRe = regexp.MustCompile(`^\s*(?:\*\*)?\d{1,3}\s*[.)]\s+(.+)$`)
	bulletLineRe   = regexp.MustCompile(`^\s*[-*•]\s+(.+)$`)
	boldLineRe     = regexp.MustCompile(`^\s*\*\*([^*]+)\*\*\s*[:.\-]?\s*(.*)$`)
)

// stageAliases maps line prefixes onto activity stages, so a response
// organized as "Preparation: ..." lines keeps its arc.
var stageAliases = map[string]activity.Stage{
	"preparation": activity.StagePreparation,
	"setup":       activity.StagePreparation,
	"warm-up":     activity.StagePreparation,
	"execution":   activity.StageExecution,
	"development": activity.StageExecution,
	"main":        activity.StageExecution,
	"reflection":  activity.StageReflection,
	"review":      activity.StageReflection,
	"closing":     activity.StageReflection,
	"wrap-up":     activity.StageReflection,
}

// TolerantStrategy reads looser structure: numbered lists, bullet lists,
// bold-marked lines, stage-prefixed lines, or a single unheaded field
// block. Fields the text does not state are inferred with the keyword
// classifier, so a bare list still comes out with competencies, a mode
// guess, and a verb-based complexity estimate.
type TolerantStrategy struct{}

// NewTolerantStrategy creates a new TolerantStrategy.
func NewTolerantStrategy() *TolerantStrategy {
	return &TolerantStrategy{}
}

// Name identifies this strategy in results and logs.
func (s *TolerantStrategy) Name() string { return "tolerant" }

// Confidence reports the grade for batches this strategy produces.
func (s *TolerantStrategy) Confidence() Confidence { return ConfidenceGood }

// Attempt parses raw into items, inferring unstated fields.
func (s *TolerantStrategy) Attempt(_ context.Context, raw string, _ Hints) ([]activity.WorkItem, error) {
	var items []activity.WorkItem
	for _, line := range strings.Split(raw, "\n") {
		// Standalone field lines belong to a block, not a list; blocks
		// are the strict strategy's job.
		if _, _, isField := matchField(line); isField {
			continue
		}
		text, ok := listEntry(line)
		if !ok {
			continue
		}
		stage, desc := detectStage(text)
		desc = util.CollapseSpaces(strings.ReplaceAll(desc, "**", ""))
		if desc == "" {
			continue
		}
		items = append(items, s.inferred(activity.WorkItem{
			ID:          normalize.ItemID(len(items) + 1),
			Description: desc,
			Stage:       stage,
		}))
	}
	if len(items) > 0 {
		return items, nil
	}

	// No list structure. A lone unheaded field block is still readable.
	if item, ok := s.singleBlock(raw); ok {
		return []activity.WorkItem{item}, nil
	}

	return nil, errors.NewParseError("no list structure found", errors.ErrNoItems).WithStrategy(s.Name())
}

// listEntry extracts the item text from a list-shaped line.
func listEntry(line string) (string, bool) {
	if m := numberedLineRe.FindStringSubmatch(line); m != nil {
		return m[1], true
	}
	if m := bulletLineRe.FindStringSubmatch(line); m != nil {
		return m[1], true
	}
	if m := boldLineRe.FindStringSubmatch(line); m != nil {
		if strings.TrimSpace(m[2]) == "" {
			return m[1], true
		}
		return m[1] + ": " + m[2], true
	}
	// Stage-prefixed plain lines count as entries; other colon lines
	// are prose. The prefix stays on so the caller's stage detection
	// sees it.
	trimmed := strings.TrimSpace(line)
	if stage, _ := detectStage(trimmed); stage != "" {
		return trimmed, true
	}
	return "", false
}

// detectStage splits a "Prefix: rest" line when the prefix names a stage.
// The stage keeps its text as the description when nothing follows the
// colon.
func detectStage(text string) (activity.Stage, string) {
	idx := strings.Index(text, ":")
	if idx <= 0 {
		return "", text
	}
	prefix := strings.ToLower(util.CollapseSpaces(text[:idx]))
	stage, ok := stageAliases[prefix]
	if !ok {
		return "", text
	}
	rest := util.CollapseSpaces(text[idx+1:])
	if rest == "" {
		rest = util.CollapseSpaces(text[:idx])
	}
	return stage, rest
}

// inferred fills the fields the text did not state.
func (s *TolerantStrategy) inferred(item activity.WorkItem) activity.WorkItem {
	if len(item.Competencies) == 0 {
		item.Competencies = normalize.ClassifyCompetencies(item.Description)
	}
	if item.Complexity == 0 {
		item.Complexity = normalize.EstimateComplexity(item.Description)
	}
	if !item.Mode.IsValid() {
		if mode, ok := normalize.ClassifyMode(item.Description); ok {
			item.Mode = mode
		}
	}
	return item
}

// singleBlock parses the whole text as one unheaded field block.
func (s *TolerantStrategy) singleBlock(raw string) (activity.WorkItem, bool) {
	lines := strings.Split(raw, "\n")
	hasField := false
	for _, line := range lines {
		if _, _, ok := matchField(line); ok {
			hasField = true
			break
		}
	}
	if !hasField {
		return activity.WorkItem{}, false
	}

	item, deps := parseBlock(block{declared: 1, body: lines})
	if item.Description == "" {
		return activity.WorkItem{}, false
	}
	item.ID = normalize.ItemID(1)
	item.DependsOn = resolveDependencies(deps, map[int]string{1: item.ID})
	return s.inferred(item), true
}
