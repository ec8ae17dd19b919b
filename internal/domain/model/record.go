package model

import (
	"time"

	"github.com/okian/parley/internal/domain/scoring"
)

// TurnRecord is the serialized form of one turn.
type TurnRecord struct {
	Timestamp      string             `json:"timestamp"`
	Speaker        Speaker            `json:"speaker"`
	Content        string             `json:"content"`
	Score          *float64           `json:"score"`
	KeywordMatches map[string]float64 `json:"keyword_matches"`
}

// ScoringDetails is the final scoring snapshot embedded in a session record.
type ScoringDetails struct {
	CoveragePercentage     float64                      `json:"coverage_percentage"`
	KeywordMatches         map[string]float64           `json:"keyword_matches"`
	DetailedBreakdown      map[string]scoring.Breakdown `json:"detailed_breakdown"`
	ImprovementSuggestions []string                     `json:"improvement_suggestions"`
}

// SessionRecord is the durable form of a finished session: one JSON file per
// record, filename derived from the session id.
type SessionRecord struct {
	SessionID       string          `json:"session_id"`
	Topic           string          `json:"topic"`
	StartTime       string          `json:"start_time"`
	EndTime         string          `json:"end_time"`
	DurationMinutes float64         `json:"duration_minutes"`
	FinalScore      float64         `json:"final_score"`
	TotalTurns      int             `json:"total_turns"`
	UserTurns       int             `json:"user_turns"`
	TotalUserWords  int             `json:"total_user_words"`
	Turns           []TurnRecord    `json:"turns"`
	ScoringDetails  *ScoringDetails `json:"scoring_details,omitempty"`
}

// NewSessionRecord assembles the serializable record for an ended session.
// details may be nil when the session had no user turns to score.
func NewSessionRecord(s *ConversationSession, details *ScoringDetails) SessionRecord {
	end := s.StartTime
	if s.EndTime != nil {
		end = *s.EndTime
	}
	var finalScore float64
	if s.FinalScore != nil {
		finalScore = *s.FinalScore
	}

	turns := make([]TurnRecord, len(s.Turns))
	for i := range s.Turns {
		t := &s.Turns[i]
		turns[i] = TurnRecord{
			Timestamp:      t.Timestamp.Format(time.RFC3339),
			Speaker:        t.Speaker,
			Content:        t.Content,
			Score:          t.Score,
			KeywordMatches: t.KeywordMatches,
		}
	}

	return SessionRecord{
		SessionID:       s.SessionID,
		Topic:           s.Topic.Name,
		StartTime:       s.StartTime.Format(time.RFC3339),
		EndTime:         end.Format(time.RFC3339),
		DurationMinutes: end.Sub(s.StartTime).Minutes(),
		FinalScore:      finalScore,
		TotalTurns:      len(s.Turns),
		UserTurns:       s.UserTurnCount(),
		TotalUserWords:  s.TotalUserWords,
		Turns:           turns,
		ScoringDetails:  details,
	}
}
