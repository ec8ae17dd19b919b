// Package topic contains the static conversation topic catalog.
//
// Topics are immutable configuration: once built they are shared read-only
// across sessions and must never be mutated.
package topic

import "strings"

// Keyword is a term or phrase the conversation is measured against.
type Keyword struct {
	// Term is the keyword or phrase to match. Multi-word terms match only as
	// contiguous whole-word phrases.
	Term string

	// Description explains the keyword's relevance; it is forwarded to the
	// semantic analysis collaborator as context.
	Description string

	// Weight is a relative importance multiplier used additively in score
	// aggregation. Weights are not normalized to sum to 1 across a topic.
	Weight float64
}

// Topic is a named subject with a weighted keyword list and an opening prompt.
type Topic struct {
	Name         string
	Description  string
	Keywords     []Keyword
	Introduction string
}

// TotalWeight sums the weights of all keywords, matched or not. The scoring
// base divides by this sum.
func (t *Topic) TotalWeight() float64 {
	var sum float64
	for _, kw := range t.Keywords {
		sum += kw.Weight
	}
	return sum
}

// Slug returns the topic name normalized for use in session identifiers.
func (t *Topic) Slug() string {
	return strings.ReplaceAll(strings.ToLower(t.Name), " ", "_")
}
