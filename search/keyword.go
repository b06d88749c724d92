package search

import (
	"strings"
	"unicode"

	"github.com/poiesic/cortex/core"
)

// Scorer assigns a relevance score in [0, 1] to an item for a fixed query.
// It exists so the keyword formula can be swapped (e.g. for BM25) without
// touching the ranking loop.
type Scorer interface {
	Score(item *core.ContextItem) float64
}

// ScorerFactory builds a Scorer for a query string.
type ScorerFactory func(query string) Scorer

// tokenize lowercases text and splits it on non-alphanumeric boundaries.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// tokenSet returns the distinct tokens of text.
func tokenSet(text string) map[string]bool {
	tokens := tokenize(text)
	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		set[t] = true
	}
	return set
}

// KeywordScorer scores items by distinct query-term matches, weighting
// title matches double:
//
//	score = (2*titleMatches + contentMatches) / (2*queryTerms + 1)
//
// The denominator keeps a content-only match below a title match, and the
// result is clamped to 1 so a short query matching everywhere cannot
// outrank the scale. An empty query scores every item 0.
type KeywordScorer struct {
	terms map[string]bool
}

// NewKeywordScorer builds a keyword scorer for the given query.
func NewKeywordScorer(query string) Scorer {
	return &KeywordScorer{terms: tokenSet(query)}
}

// Score implements Scorer.
func (k *KeywordScorer) Score(item *core.ContextItem) float64 {
	if len(k.terms) == 0 {
		return 0
	}

	titleTokens := tokenSet(item.Title)
	contentTokens := tokenSet(item.Content)

	var titleMatches, contentMatches int
	for term := range k.terms {
		if titleTokens[term] {
			titleMatches++
		}
		if contentTokens[term] {
			contentMatches++
		}
	}

	score := float64(2*titleMatches+contentMatches) / float64(2*len(k.terms)+1)
	if score > 1 {
		score = 1
	}
	return score
}
