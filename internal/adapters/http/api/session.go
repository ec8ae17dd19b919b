// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/parley/internal/domain/session"
)

// startSessionRequest mirrors the schema for POST /session.
type startSessionRequest struct {
	// Topic is a catalog key, a 1-based list number, or "random".
	Topic string `json:"topic"`
}

type startSessionResponse struct {
	SessionID    string `json:"session_id"`
	Topic        string `json:"topic"`
	Introduction string `json:"introduction"`
}

type scoreResponse struct {
	SessionID          string             `json:"session_id"`
	Score              float64            `json:"score"`
	CoveragePercentage float64            `json:"coverage_percentage"`
	KeywordMatches     map[string]float64 `json:"keyword_matches"`
}

type reportResponse struct {
	SessionID string `json:"session_id"`
	Report    string `json:"report"`
}

// SessionHandler handles session lifecycle requests.
type SessionHandler struct {
	deps Dependencies
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(deps Dependencies) *SessionHandler {
	return &SessionHandler{deps: deps}
}

// HandleSession handles POST /session (start) and DELETE /session (end).
func (h *SessionHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handleStart(w, r)
	case http.MethodDelete:
		h.handleEnd(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *SessionHandler) handleStart(w http.ResponseWriter, r *http.Request) {
	const op = "api.start_session"
	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.Topic) == "" {
		req.Topic = "random"
	}

	id, t, err := h.deps.StartSession(r.Context(), req.Topic)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrSessionActive):
			writeError(w, http.StatusConflict, "session_active", err)
		case strings.Contains(err.Error(), "unknown topic"):
			writeError(w, http.StatusNotFound, "unknown_topic", err)
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, startSessionResponse{
		SessionID:    id,
		Topic:        t.Name,
		Introduction: t.Introduction,
	})
}

func (h *SessionHandler) handleEnd(w http.ResponseWriter, r *http.Request) {
	rec, err := h.deps.EndSession(r.Context())
	if err != nil {
		if errors.Is(err, session.ErrNoActiveSession) {
			writeError(w, http.StatusNotFound, "no_session", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// HandleGetScore handles GET /session/score requests.
func (h *SessionHandler) HandleGetScore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	score, res, err := h.deps.CurrentScore(r.Context())
	if err != nil {
		if errors.Is(err, session.ErrNoActiveSession) {
			writeError(w, http.StatusNotFound, "no_session", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}

	resp := scoreResponse{
		SessionID:      h.deps.ActiveSessionID(),
		Score:          score,
		KeywordMatches: map[string]float64{},
	}
	if res != nil {
		resp.CoveragePercentage = res.CoveragePercentage
		resp.KeywordMatches = res.RelevanceByTerm()
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleGetReport handles GET /session/report requests.
func (h *SessionHandler) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	report, err := h.deps.ProgressReport(r.Context())
	if err != nil {
		if errors.Is(err, session.ErrNoActiveSession) {
			writeError(w, http.StatusNotFound, "no_session", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}

	writeJSON(w, http.StatusOK, reportResponse{
		SessionID: h.deps.ActiveSessionID(),
		Report:    report,
	})
}
