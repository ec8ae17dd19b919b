// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/parley/internal/domain/session"
)

// turnRequest mirrors the schema for POST /session/turns.
type turnRequest struct {
	Content string `json:"content"`
}

func (t turnRequest) validate() error {
	if strings.TrimSpace(t.Content) == "" {
		return errors.New("missing content")
	}
	return nil
}

type turnResponse struct {
	Reply          string   `json:"reply"`
	Score          *float64 `json:"score,omitempty"`
	ShouldContinue bool     `json:"should_continue"`
	Reason         string   `json:"reason,omitempty"`
}

// TurnsHandler handles conversation turn requests.
type TurnsHandler struct {
	deps Dependencies
}

// NewTurnsHandler creates a new turns handler.
func NewTurnsHandler(deps Dependencies) *TurnsHandler {
	return &TurnsHandler{deps: deps}
}

// HandlePostTurn handles POST /session/turns requests.
func (h *TurnsHandler) HandlePostTurn(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_turn"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req turnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	outcome, err := h.deps.RecordUserTurn(r.Context(), req.Content)
	if err != nil {
		if errors.Is(err, session.ErrNoActiveSession) {
			writeError(w, http.StatusNotFound, "no_session", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}

	writeJSON(w, http.StatusOK, turnResponse{
		Reply:          outcome.Reply,
		Score:          outcome.Score,
		ShouldContinue: outcome.ShouldContinue,
		Reason:         outcome.Reason,
	})
}
