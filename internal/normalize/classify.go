package normalize

import (
	"strings"

	"github.com/atelier-edu/reparto/internal/activity"
)

// The keyword tables below drive every inference the normalizer makes.
// Matching is case-insensitive substring matching against the item
// description, so "collaborative" matches the "collaborat" stem.
//
// Table declaration order is part of the contract: mode categories are
// tried top to bottom and the first category with any matching keyword
// wins, so a description mentioning both a group and individual work
// classifies as group.

// modeCategory pairs a collaboration mode with its trigger keywords.
type modeCategory struct {
	mode     activity.CollaborationMode
	keywords []string
}

var modeCategories = []modeCategory{
	{
		mode: activity.ModeGroup,
		keywords: []string{
			"group", "team", "together", "collaborat", "collective",
			"shared", "everyone", "mural", "assembly", "whole class",
		},
	},
	{
		mode: activity.ModePair,
		keywords: []string{
			"pair", "partner", "duo", "peer", "interview each other",
		},
	},
	{
		mode: activity.ModeIndividual,
		keywords: []string{
			"individual", "alone", "on their own", "personal", "independent",
			"journal", "solo", "each student",
		},
	},
}

// competencyCategory pairs a competency tag with its trigger keywords.
type competencyCategory struct {
	tag      string
	keywords []string
}

var competencyCategories = []competencyCategory{
	{
		tag: "mathematics",
		keywords: []string{
			"math", "count", "measure", "number", "calculat", "fraction",
			"geometr", "graph", "estimat", "budget",
		},
	},
	{
		tag: "language",
		keywords: []string{
			"write", "writing", "read", "story", "text", "present",
			"vocabulary", "grammar", "describe", "poster", "letter",
		},
	},
	{
		tag: "science",
		keywords: []string{
			"experiment", "observe", "hypothes", "science", "nature",
			"classify", "plant", "animal", "weather", "measure temperature",
		},
	},
	{
		tag: "creative",
		keywords: []string{
			"draw", "design", "paint", "build", "craft", "creative",
			"invent", "model", "decorate",
		},
	},
	{
		tag: "social",
		keywords: []string{
			"discuss", "share", "agree", "negotiate", "help each other",
			"roles", "feedback",
		},
	},
	{
		tag: "organizational",
		keywords: []string{
			"organize", "organise", "prepare", "plan", "gather", "collect",
			"arrange", "set up", "distribute",
		},
	},
	{
		tag: "metacognitive",
		keywords: []string{
			"reflect", "review", "evaluate", "self-assess", "diary",
			"what we learned", "conclusion",
		},
	},
}

// CompetencyTransversal is the fallback tag when no category matches.
const CompetencyTransversal = "transversal"

// Verb lists for complexity estimation. Higher-order verbs point at
// analysis and synthesis work; lower-order verbs point at mechanical or
// recall work. When a description contains verbs from both lists the
// higher-order reading wins.
var (
	complexityRaisingVerbs = []string{
		"analyze", "analyse", "design", "investigate", "evaluate",
		"create", "compare", "justify", "argue", "synthesize", "hypothes",
		"devise", "critique",
	}
	complexityLoweringVerbs = []string{
		"list", "copy", "name", "label", "sort", "color", "colour",
		"repeat", "trace", "cut out", "glue",
	}
)

// Complexity values produced by EstimateComplexity.
const (
	complexityRaised  = 4
	complexityDefault = 3
	complexityLowered = 2
)

// ClassifyMode infers a collaboration mode from free text. The boolean is
// false when no keyword matched and the caller should apply its default.
func ClassifyMode(text string) (activity.CollaborationMode, bool) {
	lower := strings.ToLower(text)
	for _, category := range modeCategories {
		for _, keyword := range category.keywords {
			if strings.Contains(lower, keyword) {
				return category.mode, true
			}
		}
	}
	return "", false
}

// ClassifyCompetencies returns every competency tag whose keywords match
// the text, in table order. Returns nil when nothing matches.
func ClassifyCompetencies(text string) []string {
	lower := strings.ToLower(text)
	var tags []string
	for _, category := range competencyCategories {
		for _, keyword := range category.keywords {
			if strings.Contains(lower, keyword) {
				tags = append(tags, category.tag)
				break
			}
		}
	}
	return tags
}

// EstimateComplexity guesses an item's complexity from the verbs in its
// description: 4 for higher-order verbs, 2 for mechanical ones, 3 when
// neither appears. The tolerant parsing strategy uses this when the text
// carries no explicit complexity.
func EstimateComplexity(text string) int {
	lower := strings.ToLower(text)
	for _, verb := range complexityRaisingVerbs {
		if strings.Contains(lower, verb) {
			return complexityRaised
		}
	}
	for _, verb := range complexityLoweringVerbs {
		if strings.Contains(lower, verb) {
			return complexityLowered
		}
	}
	return complexityDefault
}
