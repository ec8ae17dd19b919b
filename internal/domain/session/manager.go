// Package session manages the lifecycle of a conversation session: start,
// turn appends with rescoring, the stopping policy, and finalization.
//
// Exactly one session may be active at a time per Manager. Progression is
// cooperative and caller-driven; the only potentially slow operation is the
// semantic analysis round-trip inside the analyzer.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/okian/parley/internal/domain/model"
	"github.com/okian/parley/internal/domain/scoring"
	"github.com/okian/parley/internal/domain/topic"
	"github.com/okian/parley/pkg/logger"
	"github.com/okian/parley/pkg/metrics"
)

// Default stopping-policy thresholds.
const (
	defaultMinUserTurns = 2
	defaultTargetScore  = 80.0
	defaultMaxUserTurns = 8
	defaultTimeLimit    = 10 * time.Minute
	goodCoveragePct     = 60.0
	topMatchesCap       = 5
)

// Scorer is the analyzer contract the manager depends on.
type Scorer interface {
	Score(ctx context.Context, text string, t *topic.Topic) scoring.Result
}

// Archiver accepts finalized records for persistence. Implementations must
// not fail the caller: a record that cannot be persisted is logged and
// dropped, never propagated.
type Archiver interface {
	Archive(ctx context.Context, rec model.SessionRecord) bool
}

// Message is a turn formatted for reply-generation context.
type Message struct {
	Role      model.Speaker
	Content   string
	Timestamp time.Time
}

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithArchiver sets the persistence pipeline for finalized records.
func WithArchiver(a Archiver) Option {
	return func(m *Manager) {
		m.archiver = a
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(m *Manager) {
		m.logger = l
	}
}

// WithClock sets the time source, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithTargetScore sets the score at which the conversation stops early.
func WithTargetScore(score float64) Option {
	return func(m *Manager) {
		if score > 0 {
			m.targetScore = score
		}
	}
}

// WithMaxUserTurns sets the user-turn count that ends the conversation.
func WithMaxUserTurns(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.maxUserTurns = n
		}
	}
}

// WithTimeLimit sets the session duration that ends the conversation.
func WithTimeLimit(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.timeLimit = d
		}
	}
}

// Manager owns the single active session and applies the stopping policy.
type Manager struct {
	mu       sync.Mutex
	analyzer Scorer
	archiver Archiver
	logger   logger.Logger
	now      func() time.Time

	targetScore  float64
	maxUserTurns int
	minUserTurns int
	timeLimit    time.Duration

	current *model.ConversationSession
}

// NewManager creates a manager around the given analyzer.
func NewManager(analyzer Scorer, opts ...Option) *Manager {
	m := &Manager{
		analyzer:     analyzer,
		now:          time.Now,
		targetScore:  defaultTargetScore,
		maxUserTurns: defaultMaxUserTurns,
		minUserTurns: defaultMinUserTurns,
		timeLimit:    defaultTimeLimit,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// StartSession opens a new session for t. It fails with ErrSessionActive when
// one is already active: end or discard it first.
func (m *Manager) StartSession(t *topic.Topic) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil {
		return "", ErrSessionActive
	}

	m.current = model.NewSession(t, m.now())
	metrics.RecordSessionStarted()
	metrics.UpdateActiveSession(true)
	if m.logger != nil {
		m.logger.Info(context.Background(), "started conversation session",
			logger.String("sessionID", m.current.SessionID),
			logger.String("topic", t.Name),
		)
	}
	return m.current.SessionID, nil
}

// AddTurn appends a turn to the active session. Assistant turns are recorded
// as-is; user turns trigger a full rescore over all accumulated user text and
// return the resulting score.
func (m *Manager) AddTurn(ctx context.Context, speaker model.Speaker, content string) (*float64, error) {
	if !speaker.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSpeaker, speaker)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return nil, ErrNoActiveSession
	}

	turn := model.NewTurn(m.now(), speaker, content)

	if speaker == model.SpeakerUser {
		accumulated := append(m.current.UserTurnTexts(), content)
		res := m.analyzer.Score(ctx, strings.Join(accumulated, " "), m.current.Topic)

		score := res.TotalScore
		turn.Score = &score
		turn.KeywordMatches = res.RelevanceByTerm()
		m.current.TotalUserWords += turn.WordCount()
	}

	m.current.Turns = append(m.current.Turns, turn)
	metrics.RecordTurn(string(speaker))
	return turn.Score, nil
}

// CurrentScore rescores the accumulated user text. It returns (0, nil) when
// no session is active or no user turn has arrived yet.
func (m *Manager) CurrentScore(ctx context.Context) (float64, *scoring.Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentScoreLocked(ctx)
}

func (m *Manager) currentScoreLocked(ctx context.Context) (float64, *scoring.Result) {
	if m.current == nil {
		return 0, nil
	}
	texts := m.current.UserTurnTexts()
	if len(texts) == 0 {
		return 0, nil
	}
	res := m.analyzer.Score(ctx, strings.Join(texts, " "), m.current.Topic)
	return res.TotalScore, &res
}

// ShouldContinue applies the stopping ladder to the current session state.
// It is a pure decision over present state, evaluated fresh on every call.
func (m *Manager) ShouldContinue(ctx context.Context) (bool, string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return false, "no active session"
	}

	if m.current.UserTurnCount() < m.minUserTurns {
		return true, "continue - need more user input"
	}

	score, res := m.currentScoreLocked(ctx)

	if score >= m.targetScore {
		return false, fmt.Sprintf("excellent coverage achieved, score %.1f/100", score)
	}
	if m.current.UserTurnCount() >= m.maxUserTurns {
		return false, fmt.Sprintf("conversation has reached good length, final score %.1f/100", score)
	}
	if m.current.Elapsed(m.now()) > m.timeLimit {
		return false, fmt.Sprintf("time limit reached, final score %.1f/100", score)
	}

	// Informational only: both branches continue.
	if res != nil && res.CoveragePercentage >= goodCoveragePct {
		return true, fmt.Sprintf("good progress, %.1f%% coverage", res.CoveragePercentage)
	}
	return true, "continue conversation"
}

// EndSession seals the active session: stamps the end time, computes the
// final score, hands the record to the archiver, and releases the session.
// It returns nil when no session is active. The record is returned even when
// persistence fails downstream.
func (m *Manager) EndSession(ctx context.Context) *model.SessionRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return nil
	}

	finalScore, res := m.currentScoreLocked(ctx)
	end := m.now()
	m.current.EndTime = &end
	m.current.FinalScore = &finalScore

	details := &model.ScoringDetails{
		KeywordMatches:    map[string]float64{},
		DetailedBreakdown: map[string]scoring.Breakdown{},
	}
	if res != nil {
		details.CoveragePercentage = res.CoveragePercentage
		details.KeywordMatches = res.RelevanceByTerm()
		details.DetailedBreakdown = res.DetailedBreakdown
		details.ImprovementSuggestions = scoring.Suggestions(*res, m.current.Topic)
	}

	rec := model.NewSessionRecord(m.current, details)

	if m.archiver != nil {
		m.archiver.Archive(ctx, rec)
	}

	metrics.RecordSessionCompleted()
	metrics.ObserveFinalScore(finalScore)
	metrics.UpdateActiveSession(false)
	if m.logger != nil {
		m.logger.Info(ctx, "conversation session ended",
			logger.String("sessionID", rec.SessionID),
			logger.Float64("finalScore", finalScore),
			logger.Int("turns", rec.TotalTurns),
		)
	}

	m.current = nil
	return &rec
}

// Active reports whether a session is in progress.
func (m *Manager) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current != nil
}

// SessionID returns the active session's id, or "".
func (m *Manager) SessionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return ""
	}
	return m.current.SessionID
}

// Topic returns the active session's topic, or nil.
func (m *Manager) Topic() *topic.Topic {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil
	}
	return m.current.Topic
}

// Context returns up to maxTurns most recent turns formatted for reply
// generation.
func (m *Manager) Context(maxTurns int) []Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return nil
	}
	turns := m.current.Turns
	if maxTurns > 0 && len(turns) > maxTurns {
		turns = turns[len(turns)-maxTurns:]
	}
	out := make([]Message, len(turns))
	for i := range turns {
		out[i] = Message{
			Role:      turns[i].Speaker,
			Content:   turns[i].Content,
			Timestamp: turns[i].Timestamp,
		}
	}
	return out
}

// Stats returns counters for the /stats endpoint.
func (m *Manager) Stats() map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := map[string]interface{}{
		"active": m.current != nil,
	}
	if m.current != nil {
		stats["sessionID"] = m.current.SessionID
		stats["topic"] = m.current.Topic.Name
		stats["turns"] = len(m.current.Turns)
		stats["userTurns"] = m.current.UserTurnCount()
		stats["totalUserWords"] = m.current.TotalUserWords
		stats["elapsedSeconds"] = int(m.current.Elapsed(m.now()).Seconds())
	}
	return stats
}
