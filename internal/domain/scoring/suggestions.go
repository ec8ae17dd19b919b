package scoring

import (
	"fmt"

	"github.com/okian/parley/internal/domain/topic"
)

// Suggestion thresholds.
const (
	highWeight       = 1.1 // keywords above this weight are called out when missed
	lowRelevance     = 0.3 // matched keywords below this relevance prompt a detail hint
	lowCoveragePct   = 50.0
	maxMissedCallout = 3
)

// Suggestions derives improvement hints from a scoring snapshot. Order is
// fixed: missed high-weight keywords first, then a detail hint for shallow
// matches, then a breadth hint for low coverage. Hints that do not apply are
// omitted.
func Suggestions(res Result, t *topic.Topic) []string {
	var out []string

	missed := 0
	for _, kw := range t.Keywords {
		if missed >= maxMissedCallout {
			break
		}
		if kw.Weight <= highWeight {
			continue
		}
		if _, ok := res.KeywordMatches[normalize(kw.Term)]; ok {
			continue
		}
		out = append(out, fmt.Sprintf("Consider discussing %s", kw.Term))
		missed++
	}

	for _, m := range res.KeywordMatches {
		if m.Relevance < lowRelevance {
			out = append(out, "Add more detail and context to the points you raise")
			break
		}
	}

	if res.CoveragePercentage < lowCoveragePct {
		out = append(out, fmt.Sprintf("Explore more aspects of %s", t.Name))
	}

	return out
}
