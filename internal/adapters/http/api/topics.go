// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
)

// topicSummary mirrors the read shape of a catalog topic.
type topicSummary struct {
	Key          string `json:"key"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Keywords     int    `json:"keywords"`
	Introduction string `json:"introduction"`
}

// TopicsHandler handles topic catalog requests.
type TopicsHandler struct {
	deps Dependencies
}

// NewTopicsHandler creates a new topics handler.
func NewTopicsHandler(deps Dependencies) *TopicsHandler {
	return &TopicsHandler{deps: deps}
}

// HandleGetTopics handles GET /topics requests.
func (h *TopicsHandler) HandleGetTopics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	catalog := h.deps.Catalog()
	out := make([]topicSummary, 0, catalog.Len())
	for _, key := range catalog.Keys() {
		t, ok := catalog.Get(key)
		if !ok {
			continue
		}
		out = append(out, topicSummary{
			Key:          key,
			Name:         t.Name,
			Description:  t.Description,
			Keywords:     len(t.Keywords),
			Introduction: t.Introduction,
		})
	}
	writeJSON(w, http.StatusOK, out)
}
