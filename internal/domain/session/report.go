package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/parley/internal/domain/scoring"
)

// ProgressReport formats a read-only view of the current score, coverage,
// covered keywords, and improvement suggestions. No side effects.
func (m *Manager) ProgressReport(ctx context.Context) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return "No active conversation to report on."
	}

	score, res := m.currentScoreLocked(ctx)

	var b strings.Builder
	b.WriteString("PROGRESS REPORT\n")
	fmt.Fprintf(&b, "Current score: %.1f/100\n", score)
	fmt.Fprintf(&b, "Responses given: %d\n", m.current.UserTurnCount())

	if res != nil {
		fmt.Fprintf(&b, "Topic coverage: %.1f%%\n", res.CoveragePercentage)
		fmt.Fprintf(&b, "Keywords mentioned: %d/%d\n", res.MatchedCount(), len(m.current.Topic.Keywords))

		if covered := m.coveredTerms(res); len(covered) > 0 {
			b.WriteString("Topics you've covered:\n")
			for _, term := range covered {
				fmt.Fprintf(&b, "  - %s: %.1f relevance\n", term, res.KeywordMatches[term].Relevance)
			}
		}

		if suggestions := scoring.Suggestions(*res, m.current.Topic); len(suggestions) > 0 {
			b.WriteString("Suggestions:\n")
			for _, s := range suggestions {
				fmt.Fprintf(&b, "  - %s\n", s)
			}
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// Summary formats overall session statistics and progress. No side effects.
func (m *Manager) Summary(ctx context.Context) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return "No active conversation"
	}

	score, res := m.currentScoreLocked(ctx)

	var b strings.Builder
	fmt.Fprintf(&b, "Conversation summary - session %s\n", m.current.SessionID)
	fmt.Fprintf(&b, "Topic: %s\n", m.current.Topic.Name)
	fmt.Fprintf(&b, "Duration: %.1f minutes\n", m.current.Elapsed(m.now()).Minutes())
	fmt.Fprintf(&b, "Total turns: %d\n", len(m.current.Turns))
	fmt.Fprintf(&b, "User responses: %d\n", m.current.UserTurnCount())
	fmt.Fprintf(&b, "Current score: %.1f/100\n", score)
	fmt.Fprintf(&b, "Total user words: %d\n", m.current.TotalUserWords)

	if res != nil {
		fmt.Fprintf(&b, "Topic coverage: %.1f%%\n", res.CoveragePercentage)
		fmt.Fprintf(&b, "Keywords mentioned: %d/%d\n", res.MatchedCount(), len(m.current.Topic.Keywords))
	}

	return strings.TrimRight(b.String(), "\n")
}

// coveredTerms returns matched terms in the topic's declared keyword order,
// capped at topMatchesCap. Duplicate declarations surface once.
func (m *Manager) coveredTerms(res *scoring.Result) []string {
	seen := make(map[string]bool)
	var out []string
	for _, kw := range m.current.Topic.Keywords {
		term := scoring.NormalizeTerm(kw.Term)
		if seen[term] {
			continue
		}
		if _, ok := res.KeywordMatches[term]; !ok {
			continue
		}
		seen[term] = true
		out = append(out, term)
		if len(out) == topMatchesCap {
			break
		}
	}
	return out
}
