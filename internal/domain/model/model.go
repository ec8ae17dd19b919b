// Package model contains conversation domain models passed between layers.
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/parley/internal/domain/topic"
)

// Speaker identifies who produced a turn.
type Speaker string

// Speaker values.
const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
)

// Valid reports whether s is a known speaker.
func (s Speaker) Valid() bool {
	return s == SpeakerUser || s == SpeakerAssistant
}

// ConversationTurn is one message within a session. Turns are created once,
// appended to the session's sequence, and never mutated afterward.
type ConversationTurn struct {
	TurnID    string
	Timestamp time.Time
	Speaker   Speaker
	Content   string

	// Score is set only for user turns: the session score after this turn.
	Score *float64

	// KeywordMatches snapshots term -> relevance at the time of the turn.
	KeywordMatches map[string]float64
}

// NewTurn creates a turn with a fresh id.
func NewTurn(ts time.Time, speaker Speaker, content string) ConversationTurn {
	return ConversationTurn{
		TurnID:    uuid.NewString(),
		Timestamp: ts,
		Speaker:   speaker,
		Content:   content,
	}
}

// WordCount counts whitespace-separated words in content.
func (t *ConversationTurn) WordCount() int {
	return len(strings.Fields(t.Content))
}

// ConversationSession is the aggregate root for one bounded conversation on a
// single topic. The lifecycle manager owns all mutation; everything here is a
// data container plus read-only derivations.
type ConversationSession struct {
	SessionID      string
	Topic          *topic.Topic // shared read-only reference
	StartTime      time.Time
	EndTime        *time.Time
	Turns          []ConversationTurn // append-only, insertion-ordered
	FinalScore     *float64           // set iff the session has ended
	TotalUserWords int
}

// NewSession creates an active session. The id embeds the topic name and the
// start timestamp at second precision; collisions are possible and not
// resolved.
func NewSession(t *topic.Topic, start time.Time) *ConversationSession {
	return &ConversationSession{
		SessionID: t.Slug() + "_" + start.Format("20060102_150405"),
		Topic:     t,
		StartTime: start,
	}
}

// Ended reports whether the session has been sealed.
func (s *ConversationSession) Ended() bool {
	return s.EndTime != nil
}

// UserTurnTexts returns the content of all user turns in turn order.
func (s *ConversationSession) UserTurnTexts() []string {
	var texts []string
	for i := range s.Turns {
		if s.Turns[i].Speaker == SpeakerUser {
			texts = append(texts, s.Turns[i].Content)
		}
	}
	return texts
}

// UserTurnCount returns the number of user turns so far.
func (s *ConversationSession) UserTurnCount() int {
	n := 0
	for i := range s.Turns {
		if s.Turns[i].Speaker == SpeakerUser {
			n++
		}
	}
	return n
}

// Elapsed returns time since start for an active session, or the final
// duration for an ended one.
func (s *ConversationSession) Elapsed(now time.Time) time.Duration {
	if s.EndTime != nil {
		return s.EndTime.Sub(s.StartTime)
	}
	return now.Sub(s.StartTime)
}
