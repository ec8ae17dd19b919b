// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"net/http"
	"strings"
)

// Raw audio uploads are capped to keep transcription requests bounded.
const maxAudioBytes = 32 << 20

type transcribeResponse struct {
	Text string `json:"text"`
}

// TranscribeHandler handles audio transcription requests.
type TranscribeHandler struct {
	deps Dependencies
}

// NewTranscribeHandler creates a new transcribe handler.
func NewTranscribeHandler(deps Dependencies) *TranscribeHandler {
	return &TranscribeHandler{deps: deps}
}

// HandlePostTranscribe handles POST /transcribe requests. The request body
// is the raw audio payload.
func (h *TranscribeHandler) HandlePostTranscribe(w http.ResponseWriter, r *http.Request) {
	const op = "api.transcribe"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if r.Body == nil || r.ContentLength == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing audio body")))
		return
	}

	body := http.MaxBytesReader(w, r.Body, maxAudioBytes)
	text, err := h.deps.Transcribe(r.Context(), body)
	if err != nil {
		if strings.Contains(err.Error(), "not configured") {
			writeError(w, http.StatusServiceUnavailable, "unavailable", err)
			return
		}
		writeError(w, http.StatusBadGateway, "transcription_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, transcribeResponse{Text: text})
}
