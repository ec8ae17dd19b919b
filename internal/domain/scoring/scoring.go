// Package scoring computes weighted keyword coverage scores over accumulated
// conversation text.
//
// The analyzer combines deterministic whole-word matching with a semantic
// relevance signal from an external collaborator. The collaborator is
// optional: when it is absent or fails, scoring degrades to lexical-only
// matching and never surfaces an error to the caller.
package scoring

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/okian/parley/internal/domain/topic"
	"github.com/okian/parley/pkg/metrics"
)

// Scoring constants per the aggregation formula.
const (
	relevanceFloor      = 0.1 // minimum semantic relevance to count a term without occurrences
	occurrenceStep      = 0.3 // each occurrence adds this much occurrence score, capped at 1.0
	coverageBonusMax    = 10.0
	lengthBonusMax      = 5.0
	lengthBonusDivisor  = 20.0
	maxScore            = 100.0
	defaultSnippetWords = 10 // words of context kept on each side of a match
)

// Analysis is the semantic collaborator's verdict on a text. The zero value
// means "no semantic signal" and is the degraded fallback on failure.
type Analysis struct {
	// MatchedTerms holds terms the collaborator found in the text,
	// exactly or semantically. Keys are lowercase-normalized terms.
	MatchedTerms map[string]bool

	// RelevanceScores maps terms to semantic confidence in [0,1].
	RelevanceScores map[string]float64

	// ContextSnippets holds collaborator-extracted context per term.
	ContextSnippets map[string][]string

	// SemanticOnly holds terms matched by meaning without a literal occurrence.
	SemanticOnly map[string]bool
}

// Semantic is the external analysis collaborator contract. Implementations
// may block on network round-trips; callers pass a context for cancellation.
type Semantic interface {
	Analyze(ctx context.Context, text string, keywords []topic.Keyword) (Analysis, error)
}

// Memo caches scoring results keyed by accumulated text. The analyzer
// consults it before invoking the semantic collaborator, so repeated scoring
// of unchanged text is deterministic and cheap.
type Memo interface {
	Get(key string) (Result, bool)
	Put(key string, res Result)
}

// KeywordMatch is the per-keyword outcome of one scoring pass. It is
// recomputed from scratch on every call and never persisted on its own.
type KeywordMatch struct {
	Keyword         topic.Keyword
	Occurrences     int
	ContextSnippets []string
	Relevance       float64
}

// Breakdown explains one keyword's contribution to the total score.
type Breakdown struct {
	Weight       float64 `json:"weight"`
	Occurrences  int     `json:"occurrences"`
	Relevance    float64 `json:"relevance"`
	Contribution float64 `json:"contribution"`
}

// Result is a full scoring snapshot for one text/topic pair.
type Result struct {
	TotalScore         float64
	KeywordMatches     map[string]KeywordMatch
	CoveragePercentage float64
	DetailedBreakdown  map[string]Breakdown
}

// MatchedCount returns the number of distinct matched terms.
func (r Result) MatchedCount() int {
	return len(r.KeywordMatches)
}

// RelevanceByTerm flattens the matches to a term -> relevance mapping, the
// shape stored on turns and in persisted records.
func (r Result) RelevanceByTerm() map[string]float64 {
	out := make(map[string]float64, len(r.KeywordMatches))
	for term, m := range r.KeywordMatches {
		out[term] = m.Relevance
	}
	return out
}

// Option applies a configuration option to the Analyzer.
type Option func(*Analyzer)

// WithSemantic sets the external semantic analysis collaborator.
func WithSemantic(s Semantic) Option {
	return func(a *Analyzer) {
		a.semantic = s
	}
}

// WithMemo sets a result cache consulted before each scoring pass.
func WithMemo(m Memo) Option {
	return func(a *Analyzer) {
		a.memo = m
	}
}

// WithSnippetWindow sets the number of context words kept on each side of a
// deterministic match.
func WithSnippetWindow(words int) Option {
	return func(a *Analyzer) {
		if words > 0 {
			a.snippetWindow = words
		}
	}
}

// Analyzer scores accumulated user text against a topic's keyword list.
type Analyzer struct {
	semantic      Semantic
	memo          Memo
	snippetWindow int
}

// NewAnalyzer creates an analyzer with configuration options. Without
// WithSemantic it scores on lexical matching alone.
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{
		snippetWindow: defaultSnippetWords,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Score computes a scoring snapshot for text against t. It is deterministic
// given a deterministic semantic collaborator and never returns an error:
// collaborator failure degrades to lexical-only matching.
func (a *Analyzer) Score(ctx context.Context, text string, t *topic.Topic) Result {
	start := time.Now()
	defer func() {
		metrics.RecordScoringLatency(float64(time.Since(start).Milliseconds()))
	}()

	key := t.Name + "\x00" + text
	if a.memo != nil {
		if cached, ok := a.memo.Get(key); ok {
			return cached
		}
	}

	// The original text goes to the collaborator verbatim; the normalized
	// copy is used for deterministic matching only.
	words := normalizeWords(text)
	analysis := a.analyze(ctx, text, t.Keywords)

	matches := make(map[string]KeywordMatch)
	breakdown := make(map[string]Breakdown)
	var contributionSum float64

	// Iterate in declared order but key by lowercased term: a topic that
	// lists the same term twice collapses to one entry, last write wins.
	for _, kw := range t.Keywords {
		term := normalize(kw.Term)
		termWords := strings.Fields(term)
		if len(termWords) == 0 {
			continue
		}

		positions := findPhrase(words, termWords)
		occurrences := len(positions)

		relevance := clamp01(analysis.RelevanceScores[term])
		if occurrences == 0 && relevance > relevanceFloor &&
			(analysis.MatchedTerms[term] || analysis.SemanticOnly[term]) {
			// Semantic-only hit counts as a single occurrence.
			occurrences = 1
		}

		if occurrences == 0 && relevance <= relevanceFloor {
			// A miss: the term is simply absent from the result set.
			// Duplicates of a missed term miss identically.
			continue
		}

		snippets := analysis.ContextSnippets[term]
		if len(snippets) == 0 && len(positions) > 0 {
			snippets = extractSnippets(words, positions, len(termWords), a.snippetWindow)
		}

		if _, dup := matches[term]; dup {
			contributionSum -= breakdown[term].Contribution
		}
		matches[term] = KeywordMatch{
			Keyword:         kw,
			Occurrences:     occurrences,
			ContextSnippets: snippets,
			Relevance:       relevance,
		}

		occurrenceScore := math.Min(1.0, float64(occurrences)*occurrenceStep)
		contribution := kw.Weight * (occurrenceScore + relevance) / 2
		contributionSum += contribution
		breakdown[term] = Breakdown{
			Weight:       kw.Weight,
			Occurrences:  occurrences,
			Relevance:    relevance,
			Contribution: contribution,
		}
	}

	res := a.aggregate(t, matches, breakdown, contributionSum, len(words))
	if a.memo != nil {
		a.memo.Put(key, res)
	}
	return res
}

func (a *Analyzer) aggregate(t *topic.Topic, matches map[string]KeywordMatch, breakdown map[string]Breakdown, contributionSum float64, wordCount int) Result {
	totalKeywords := len(t.Keywords)
	matched := len(matches)

	var baseScore, coverageBonus, coverage float64
	if totalKeywords > 0 {
		if tw := t.TotalWeight(); tw > 0 {
			// The base divides by the weight of ALL topic keywords, not
			// just the matched ones.
			baseScore = maxScore * contributionSum / tw
		}
		coverageBonus = coverageBonusMax * float64(matched) / float64(totalKeywords)
		coverage = maxScore * float64(matched) / float64(totalKeywords)
	}
	lengthBonus := math.Min(lengthBonusMax, float64(wordCount)/lengthBonusDivisor)

	total := baseScore + coverageBonus + lengthBonus
	if matched == 0 {
		// With no matched terms the length bonus alone must not produce a
		// nonzero score.
		total = 0
	}

	return Result{
		TotalScore:         math.Min(maxScore, total),
		KeywordMatches:     matches,
		CoveragePercentage: coverage,
		DetailedBreakdown:  breakdown,
	}
}

// analyze invokes the semantic collaborator, degrading to an empty analysis
// on any failure.
func (a *Analyzer) analyze(ctx context.Context, text string, keywords []topic.Keyword) Analysis {
	if a.semantic == nil {
		return Analysis{}
	}
	metrics.RecordSemanticCall()
	start := time.Now()
	analysis, err := a.semantic.Analyze(ctx, text, keywords)
	metrics.RecordSemanticLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordSemanticFallback()
		metrics.RecordErrorByComponent("semantic", "analyze_failed")
		return Analysis{}
	}
	return analysis
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
