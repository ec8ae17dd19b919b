// Package semantic analyzes conversation text for keyword relevance using
// the Gemini API. It implements the scoring package's collaborator contract;
// callers degrade to lexical-only matching when this adapter errors.
package semantic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/okian/parley/internal/domain/scoring"
	"github.com/okian/parley/internal/domain/topic"
	"github.com/okian/parley/pkg/logger"
)

const defaultModel = "gemini-2.0-flash"

// Analyzer asks a generation model which keywords a text covers and how
// strongly. Responses are requested as structured JSON.
type Analyzer struct {
	client *genai.Client
	model  string
	logger logger.Logger
}

// Option applies a configuration option to the Analyzer.
type Option func(*Analyzer)

// WithModel sets the generation model name.
func WithModel(model string) Option {
	return func(a *Analyzer) {
		if model != "" {
			a.model = model
		}
	}
}

// NewAnalyzer creates an Analyzer authenticated with apiKey.
func NewAnalyzer(ctx context.Context, apiKey string, opts ...Option) (*Analyzer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("semantic analyzer: API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("semantic analyzer: create client: %w", err)
	}

	a := &Analyzer{
		client: client,
		model:  defaultModel,
		logger: logger.Get().Named("semantic"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// termVerdict is the per-keyword shape the model is asked to emit.
type termVerdict struct {
	Term      string   `json:"term"`
	Matched   bool     `json:"matched"`
	Semantic  bool     `json:"semantic_only"`
	Relevance float64  `json:"relevance"`
	Snippets  []string `json:"snippets"`
}

// Analyze returns the model's keyword verdict for text. Terms in the result
// are keyed by their lowercase-normalized form.
func (a *Analyzer) Analyze(ctx context.Context, text string, keywords []topic.Keyword) (scoring.Analysis, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(a.prompt(text, keywords), genai.RoleUser),
	}

	resp, err := a.client.Models.GenerateContent(ctx, a.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0),
	})
	if err != nil {
		return scoring.Analysis{}, fmt.Errorf("semantic analyze: %w", err)
	}

	raw := resp.Text()
	if raw == "" {
		return scoring.Analysis{}, ErrEmptyResponse
	}

	var verdicts []termVerdict
	if err := json.Unmarshal([]byte(raw), &verdicts); err != nil {
		a.logger.Warn(ctx, "unparseable analysis response", logger.Error(err))
		return scoring.Analysis{}, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}

	analysis := scoring.Analysis{
		MatchedTerms:    make(map[string]bool),
		RelevanceScores: make(map[string]float64),
		ContextSnippets: make(map[string][]string),
		SemanticOnly:    make(map[string]bool),
	}
	for _, v := range verdicts {
		term := scoring.NormalizeTerm(v.Term)
		if term == "" {
			continue
		}
		if v.Matched || v.Semantic {
			analysis.MatchedTerms[term] = true
		}
		if v.Semantic {
			analysis.SemanticOnly[term] = true
		}
		analysis.RelevanceScores[term] = v.Relevance
		if len(v.Snippets) > 0 {
			analysis.ContextSnippets[term] = v.Snippets
		}
	}
	return analysis, nil
}

// prompt renders the analysis instruction with the keyword list and the text
// under review.
func (a *Analyzer) prompt(text string, keywords []topic.Keyword) string {
	var b strings.Builder
	b.WriteString("You evaluate how well a conversation response covers a set of topic keywords.\n")
	b.WriteString("For each keyword decide whether the response addresses it, literally or by meaning,\n")
	b.WriteString("and rate its relevance between 0.0 and 1.0.\n\n")
	b.WriteString("Keywords:\n")
	for _, kw := range keywords {
		fmt.Fprintf(&b, "- %s: %s\n", kw.Term, kw.Description)
	}
	b.WriteString("\nResponse under review:\n")
	b.WriteString(text)
	b.WriteString("\n\nReply with a JSON array only. One object per keyword with fields:\n")
	b.WriteString(`"term" (the keyword), "matched" (bool), "semantic_only" (bool, true when the idea`)
	b.WriteString(" is addressed without the literal words), \"relevance\" (0.0-1.0), and")
	b.WriteString(" \"snippets\" (short quotes from the response that address the keyword, or an empty array).\n")
	return b.String()
}
