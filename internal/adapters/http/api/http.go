// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/okian/parley/internal/domain/model"
	"github.com/okian/parley/internal/domain/scoring"
	"github.com/okian/parley/internal/domain/topic"
	"github.com/okian/parley/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Catalog() *topic.Catalog

	StartSession(ctx context.Context, selector string) (string, *topic.Topic, error)
	RecordUserTurn(ctx context.Context, content string) (TurnOutcome, error)
	CurrentScore(ctx context.Context) (float64, *scoring.Result, error)
	ProgressReport(ctx context.Context) (string, error)
	EndSession(ctx context.Context) (*model.SessionRecord, error)
	ActiveSessionID() string

	ListSessions(ctx context.Context) ([]string, error)
	LoadSession(ctx context.Context, id string) (model.SessionRecord, error)

	Transcribe(ctx context.Context, audio io.Reader) (string, error)
}

// TurnOutcome mirrors the service-level result of one recorded user turn.
type TurnOutcome = types.TurnOutcome

// Server wires HTTP routes for the business API.
type Server struct {
	topicsHandler     *TopicsHandler
	sessionHandler    *SessionHandler
	turnsHandler      *TurnsHandler
	sessionsHandler   *SessionsHandler
	transcribeHandler *TranscribeHandler
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		topicsHandler:     NewTopicsHandler(deps),
		sessionHandler:    NewSessionHandler(deps),
		turnsHandler:      NewTurnsHandler(deps),
		sessionsHandler:   NewSessionsHandler(deps),
		transcribeHandler: NewTranscribeHandler(deps),
		healthHandler:     NewHealthHandler(),
		statsHandler:      NewStatsHandler(statsProvider),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/topics", MetricsMiddleware(s.topicsHandler.HandleGetTopics, "topics"))
	mux.HandleFunc("/session/turns", MetricsMiddleware(s.turnsHandler.HandlePostTurn, "turns"))
	mux.HandleFunc("/session/score", MetricsMiddleware(s.sessionHandler.HandleGetScore, "score"))
	mux.HandleFunc("/session/report", MetricsMiddleware(s.sessionHandler.HandleGetReport, "report"))
	mux.HandleFunc("/session", MetricsMiddleware(s.sessionHandler.HandleSession, "session"))
	mux.HandleFunc("/sessions", MetricsMiddleware(s.sessionsHandler.HandleListSessions, "sessions"))
	mux.HandleFunc("/sessions/", MetricsMiddleware(s.sessionsHandler.HandleGetSession, "sessions"))
	mux.HandleFunc("/transcribe", MetricsMiddleware(s.transcribeHandler.HandlePostTranscribe, "transcribe"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// NewKind annotates a sentinel error with the operation that raised it.
func NewKind(op string, kind error) error {
	return fmt.Errorf("%s: %w", op, kind)
}

// WrapKind attaches both a sentinel kind and a cause to an operation.
func WrapKind(op string, kind, err error) error {
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}

// isNotFound allows the API to translate upstream not-found errors to 404.
func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotFound) {
		return true
	}
	// Best-effort check for upstream packages with their own sentinels.
	return strings.Contains(strings.ToLower(err.Error()), "not found")
}
