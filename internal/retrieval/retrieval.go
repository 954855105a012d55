// Package retrieval ranks past activity examples against an intent so the
// prompt builder can show the text service what similar activities looked
// like. Ranking is plain token overlap: good enough to surface relevant
// patterns, cheap enough to run on every request, and dependency-free.
package retrieval

import (
	"sort"
	"strings"

	"github.com/atelier-edu/reparto/internal/logging"
)

// RankedExample pairs an example with its similarity to the query.
type RankedExample struct {
	Example Example
	// Score is the Jaccard similarity between query and example token
	// sets, in [0,1].
	Score float64
}

// Retriever finds examples similar to a piece of text.
type Retriever interface {
	FindSimilar(text string, k int) []RankedExample
}

// minTokenLen drops short function words ("a", "of", "in") from token sets
// without needing a stopword list.
const minTokenLen = 3

// CorpusRetriever ranks a fixed in-memory corpus.
type CorpusRetriever struct {
	examples []Example
	// tokens[i] is the precomputed token set of examples[i].
	tokens []map[string]bool
	logger *logging.Logger
}

// NewCorpusRetriever builds a retriever over the given examples. Pass a nil
// logger to disable logging.
func NewCorpusRetriever(examples []Example, logger *logging.Logger) *CorpusRetriever {
	if logger == nil {
		logger = logging.NopLogger()
	}
	tokens := make([]map[string]bool, len(examples))
	for i, ex := range examples {
		tokens[i] = tokenize(matchText(ex))
	}
	return &CorpusRetriever{
		examples: examples,
		tokens:   tokens,
		logger:   logger.WithComponent("retrieval"),
	}
}

// Len returns the corpus size.
func (r *CorpusRetriever) Len() int {
	return len(r.examples)
}

// FindSimilar returns up to k examples ranked by similarity to the text.
// Examples with no token in common are omitted, so the result may be
// shorter than k or empty. Ties keep corpus order.
func (r *CorpusRetriever) FindSimilar(text string, k int) []RankedExample {
	if k <= 0 {
		return nil
	}
	query := tokenize(text)
	if len(query) == 0 {
		return nil
	}

	ranked := make([]RankedExample, 0, len(r.examples))
	for i, ex := range r.examples {
		score := jaccard(query, r.tokens[i])
		if score == 0 {
			continue
		}
		ranked = append(ranked, RankedExample{Example: ex, Score: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if len(ranked) > k {
		ranked = ranked[:k]
	}
	r.logger.Debug("examples retrieved",
		"query_tokens", len(query),
		"matches", len(ranked),
		"k", k)
	return ranked
}

// matchText concatenates the searchable fields of an example.
func matchText(ex Example) string {
	parts := []string{ex.Title, ex.Summary}
	parts = append(parts, ex.Tags...)
	return strings.Join(parts, " ")
}

// tokenize lowercases the text and splits it into a set of alphanumeric
// tokens, dropping tokens shorter than minTokenLen.
func tokenize(text string) map[string]bool {
	tokens := make(map[string]bool)
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !isTokenRune(r)
	})
	for _, f := range fields {
		if len(f) >= minTokenLen {
			tokens[f] = true
		}
	}
	return tokens
}

func isTokenRune(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r >= 'à' && r <= 'ÿ'
}

// jaccard computes |a∩b| / |a∪b| for two token sets.
func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for token := range a {
		if b[token] {
			intersection++
		}
	}
	if intersection == 0 {
		return 0
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}
