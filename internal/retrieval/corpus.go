package retrieval

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Example is one past activity in the corpus. Examples are prompt material:
// the pipeline quotes them to the text service as patterns to follow, and
// never parses them back into structured data.
type Example struct {
	// ID identifies the example within the corpus.
	ID string `yaml:"id"`

	// Title is a short activity name ("The class market day").
	Title string `yaml:"title"`

	// Summary describes the activity and what made it work, a sentence or
	// two.
	Summary string `yaml:"summary"`

	// Tags are free-form topic markers used for matching alongside the
	// title and summary.
	Tags []string `yaml:"tags,omitempty"`
}

// corpusFile is the on-disk YAML shape of a corpus.
type corpusFile struct {
	Examples []Example `yaml:"examples"`
}

// LoadCorpus reads a YAML example corpus. Entries without an id or title
// are skipped rather than failing the whole file.
func LoadCorpus(path string) ([]Example, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus file: %w", err)
	}

	var file corpusFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse corpus file %s: %w", path, err)
	}

	examples := make([]Example, 0, len(file.Examples))
	for _, ex := range file.Examples {
		if ex.ID == "" || ex.Title == "" {
			continue
		}
		examples = append(examples, ex)
	}
	return examples, nil
}

// BuiltinExamples returns the small built-in corpus used when no corpus
// file is configured. Each call returns a fresh copy.
func BuiltinExamples() []Example {
	return []Example{
		{
			ID:      "ex-market-day",
			Title:   "The class market day",
			Summary: "Students set up market stalls, price goods with decimal amounts, handle play money, and balance a stall ledger. Worked because every role had a concrete, tangible job.",
			Tags:    []string{"mathematics", "money", "roles", "group"},
		},
		{
			ID:      "ex-plant-journal",
			Title:   "Plant growth journal",
			Summary: "Each student grows a bean plant, measures it twice a week, and keeps an observation journal with drawings and measurements. Worked because progress was visible and personal.",
			Tags:    []string{"science", "measurement", "journal", "individual"},
		},
		{
			ID:      "ex-neighborhood-map",
			Title:   "Neighborhood map mural",
			Summary: "Pairs survey one street each and the class assembles a large mural map with distances and landmarks. Worked because pair work fed a shared final product.",
			Tags:    []string{"geometry", "measurement", "mural", "pair", "group"},
		},
		{
			ID:      "ex-recycling-campaign",
			Title:   "Recycling campaign",
			Summary: "Teams weigh a week of classroom waste, chart the totals, and design posters proposing one change. Worked because data collection led to a persuasive product.",
			Tags:    []string{"science", "data", "posters", "group"},
		},
		{
			ID:      "ex-class-newspaper",
			Title:   "Class newspaper",
			Summary: "Students draft, review, and lay out a one-page newspaper with assigned sections: news, interviews, a puzzle. Worked because sections matched different strengths.",
			Tags:    []string{"language", "writing", "roles", "group"},
		},
	}
}
