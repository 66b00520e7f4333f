package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/iterate-labs/newsletter-portal/internal/types"
)

// handleListUpdates returns active internal update snippets.
func (s *Server) handleListUpdates(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			s.errorResponse(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	updates, err := s.store.ListActiveInternalUpdates(r.Context(), limit)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"updates": updates,
		"count":   len(updates),
	})
}

// handleCreateUpdate records a new internal update snippet.
func (s *Server) handleCreateUpdate(w http.ResponseWriter, r *http.Request) {
	var req types.InternalUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	update, err := s.store.CreateInternalUpdate(r.Context(), req.Title, req.Body, req.SourceURL, active)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	s.jsonResponse(w, http.StatusCreated, update)
}
