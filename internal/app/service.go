// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the interactive loop.
package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/okian/parley/internal/adapters/archive"
	"github.com/okian/parley/internal/adapters/repository"
	"github.com/okian/parley/internal/domain/memo"
	"github.com/okian/parley/internal/domain/model"
	"github.com/okian/parley/internal/domain/scoring"
	"github.com/okian/parley/internal/domain/session"
	"github.com/okian/parley/internal/domain/topic"
	"github.com/okian/parley/internal/domain/types"
	"github.com/okian/parley/pkg/logger"
	"github.com/okian/parley/pkg/metrics"
)

// Replier generates assistant turns. Implementations must return a usable
// reply even on collaborator failure.
type Replier interface {
	Respond(ctx context.Context, t *topic.Topic, history []session.Message, userInput string) (string, error)
	FollowUp(ctx context.Context, t *topic.Topic, userResponse string, currentScore float64) string
	TestConnectivity(ctx context.Context) bool
}

// Transcriber turns recorded audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader) (string, error)
}

// Service wires the topic catalog, scoring, session lifecycle, and
// persistence into one conversation engine.
type Service struct {
	mu sync.RWMutex

	// Core components
	catalog     *topic.Catalog
	analyzer    *scoring.Analyzer
	manager     *session.Manager
	store       repository.Store
	archiver    *archive.Archiver
	replier     Replier
	semantic    scoring.Semantic
	transcriber Transcriber

	// Configuration
	dataDir            string
	saveSessions       bool
	memoSize           int
	archiveQueueSize   int
	archiveWriterCount int
	snippetWindow      int
	contextMaxTurns    int
	targetScore        float64
	maxUserTurns       int
	timeLimit          time.Duration

	// State
	started bool

	// Logging
	logger logger.Logger
}

// TurnOutcome is the result of recording one user turn.
type TurnOutcome = types.TurnOutcome

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		dataDir:            "conversations",
		saveSessions:       true,
		memoSize:           1024,
		archiveQueueSize:   64,
		archiveWriterCount: 2,
		contextMaxTurns:    6,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting conversation service...")

	if s.catalog == nil {
		s.catalog = topic.NewCatalog()
	}

	analyzerOpts := []scoring.Option{
		scoring.WithMemo(memo.New(memo.WithMaxEntries(s.memoSize))),
	}
	if s.semantic != nil {
		analyzerOpts = append(analyzerOpts, scoring.WithSemantic(s.semantic))
	}
	if s.snippetWindow > 0 {
		analyzerOpts = append(analyzerOpts, scoring.WithSnippetWindow(s.snippetWindow))
	}
	s.analyzer = scoring.NewAnalyzer(analyzerOpts...)

	if s.store == nil && s.saveSessions {
		store, err := repository.NewFileStore(s.dataDir)
		if err != nil {
			return fmt.Errorf("start service: %w", err)
		}
		s.store = store
	}

	managerOpts := []session.Option{
		session.WithLogger(s.logger.Named("session")),
	}
	if s.store != nil {
		s.archiver = archive.New(s.store,
			archive.WithQueueCapacity(s.archiveQueueSize),
			archive.WithWriterCount(s.archiveWriterCount),
		)
		s.archiver.Start(ctx)
		managerOpts = append(managerOpts, session.WithArchiver(s.archiver))
	}
	if s.targetScore > 0 {
		managerOpts = append(managerOpts, session.WithTargetScore(s.targetScore))
	}
	if s.maxUserTurns > 0 {
		managerOpts = append(managerOpts, session.WithMaxUserTurns(s.maxUserTurns))
	}
	if s.timeLimit > 0 {
		managerOpts = append(managerOpts, session.WithTimeLimit(s.timeLimit))
	}
	s.manager = session.NewManager(s.analyzer, managerOpts...)

	s.started = true
	s.logger.Info(ctx, "conversation service started",
		logger.Int("topics", s.catalog.Len()),
		logger.Bool("persistence", s.store != nil),
	)
	return nil
}

// Stop shuts down the service, draining pending archive writes.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping conversation service...")

	// Finalize any active session so its record reaches the archive.
	if s.manager != nil && s.manager.Active() {
		s.manager.EndSession(ctx)
	}

	if s.archiver != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		if err := s.archiver.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "archive shutdown failed", logger.Error(err))
		}
		cancel()
	}

	s.started = false
	s.logger.Info(ctx, "conversation service stopped")
}

// Catalog exposes the topic catalog.
func (s *Service) Catalog() *topic.Catalog {
	return s.catalog
}

// StartSession selects a topic and begins a session. The selector is a
// topic key, a 1-based list number, or "random".
func (s *Service) StartSession(ctx context.Context, selector string) (string, *topic.Topic, error) {
	t, ok := s.catalog.Select(selector)
	if !ok {
		return "", nil, fmt.Errorf("%w: %q", ErrUnknownTopic, selector)
	}

	id, err := s.manager.StartSession(t)
	if err != nil {
		return "", nil, fmt.Errorf("start session: %w", err)
	}

	// The topic introduction opens the conversation as the first assistant turn.
	if t.Introduction != "" {
		if _, err := s.manager.AddTurn(ctx, model.SpeakerAssistant, t.Introduction); err != nil {
			s.logger.Warn(ctx, "failed to record introduction turn", logger.Error(err))
		}
	}

	s.logger.Info(ctx, "session started",
		logger.String("session_id", id),
		logger.String("topic", t.Name),
	)
	return id, t, nil
}

// RecordUserTurn adds a user turn, generates the assistant's reply, records
// it, and evaluates the stopping policy.
func (s *Service) RecordUserTurn(ctx context.Context, content string) (TurnOutcome, error) {
	t := s.manager.Topic()
	if t == nil {
		return TurnOutcome{}, session.ErrNoActiveSession
	}

	history := s.manager.Context(s.contextMaxTurns)

	score, err := s.manager.AddTurn(ctx, model.SpeakerUser, content)
	if err != nil {
		return TurnOutcome{}, fmt.Errorf("record user turn: %w", err)
	}

	cont, reason := s.manager.ShouldContinue(ctx)

	reply := s.reply(ctx, t, history, content, score)
	if _, err := s.manager.AddTurn(ctx, model.SpeakerAssistant, reply); err != nil {
		return TurnOutcome{}, fmt.Errorf("record assistant turn: %w", err)
	}

	return TurnOutcome{
		Reply:          reply,
		Score:          score,
		ShouldContinue: cont,
		Reason:         reason,
	}, nil
}

// reply asks the generator for an assistant turn, falling back to a
// follow-up question prompt when no generator is configured.
func (s *Service) reply(ctx context.Context, t *topic.Topic, history []session.Message, userInput string, score *float64) string {
	if s.replier == nil {
		return fallbackReply
	}

	text, err := s.replier.Respond(ctx, t, history, userInput)
	if err != nil {
		// Respond already degraded to a usable fallback; try a targeted
		// follow-up question instead when we have a score to steer by.
		if score != nil {
			return s.replier.FollowUp(ctx, t, userInput, *score)
		}
	}
	return text
}

// CurrentScore returns the live score of the active session.
func (s *Service) CurrentScore(ctx context.Context) (float64, *scoring.Result, error) {
	if !s.manager.Active() {
		return 0, nil, session.ErrNoActiveSession
	}
	score, res := s.manager.CurrentScore(ctx)
	return score, res, nil
}

// ProgressReport returns the formatted progress view of the active session.
func (s *Service) ProgressReport(ctx context.Context) (string, error) {
	if !s.manager.Active() {
		return "", session.ErrNoActiveSession
	}
	return s.manager.ProgressReport(ctx), nil
}

// Summary returns the formatted session summary of the active session.
func (s *Service) Summary(ctx context.Context) (string, error) {
	if !s.manager.Active() {
		return "", session.ErrNoActiveSession
	}
	return s.manager.Summary(ctx), nil
}

// ShouldContinue evaluates the stopping policy for the active session.
func (s *Service) ShouldContinue(ctx context.Context) (bool, string, error) {
	if !s.manager.Active() {
		return false, "", session.ErrNoActiveSession
	}
	cont, reason := s.manager.ShouldContinue(ctx)
	return cont, reason, nil
}

// EndSession finalizes the active session and returns its record.
func (s *Service) EndSession(ctx context.Context) (*model.SessionRecord, error) {
	rec := s.manager.EndSession(ctx)
	if rec == nil {
		return nil, session.ErrNoActiveSession
	}
	return rec, nil
}

// ActiveSessionID returns the id of the active session, or "".
func (s *Service) ActiveSessionID() string {
	return s.manager.SessionID()
}

// ListSessions returns persisted session ids, most recent first.
func (s *Service) ListSessions(ctx context.Context) ([]string, error) {
	if s.store == nil {
		return nil, ErrPersistenceDisabled
	}
	return s.store.List(ctx)
}

// LoadSession returns a persisted session record.
func (s *Service) LoadSession(ctx context.Context, id string) (model.SessionRecord, error) {
	if s.store == nil {
		return model.SessionRecord{}, ErrPersistenceDisabled
	}
	return s.store.Load(ctx, id)
}

// Transcribe turns recorded audio into text.
func (s *Service) Transcribe(ctx context.Context, audio io.Reader) (string, error) {
	if s.transcriber == nil {
		return "", ErrTranscriptionDisabled
	}
	return s.transcriber.Transcribe(ctx, audio)
}

// TestConnectivity verifies the reply collaborator is reachable.
func (s *Service) TestConnectivity(ctx context.Context) bool {
	if s.replier == nil {
		return false
	}
	return s.replier.TestConnectivity(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started": s.started,
		"topics":  0,
	}
	if s.catalog != nil {
		stats["topics"] = s.catalog.Len()
	}

	if s.started {
		for k, v := range s.manager.Stats() {
			stats[k] = v
		}
		if s.store != nil {
			saved := s.store.Count(ctx)
			stats["savedSessions"] = saved
			metrics.UpdateSavedSessions(saved)
		}
		if s.archiver != nil {
			stats["archivePending"] = s.archiver.Pending(ctx)
		}
	}

	return stats
}

const fallbackReply = "That's interesting! Can you tell me more about what you think influences this the most?"
