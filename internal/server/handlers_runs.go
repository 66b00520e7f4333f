package server

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/iterate-labs/newsletter-portal/internal/db"
)

const defaultRunListLimit = 20

// handleStartRun creates a manual run for a customer and kicks off research.
// A customer can have many runs; nothing prevents overlap, the runs are
// independent rows and each settles on its own.
func (s *Server) handleStartRun(w http.ResponseWriter, r *http.Request) {
	customerID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid customer ID")
		return
	}

	customer, err := s.store.GetCustomer(r.Context(), customerID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if customer == nil {
		s.errorResponse(w, http.StatusNotFound, "Customer not found")
		return
	}

	run, err := s.store.CreateRun(r.Context(), customerID, db.TriggerManual)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	jobID, err := s.engine.StartRun(r.Context(), run, customer)
	if err != nil {
		// The run is already marked error with the submission failure message.
		s.jsonResponse(w, http.StatusBadGateway, map[string]any{
			"run_id": run.ID,
			"status": db.RunStatusError,
			"error":  err.Error(),
		})
		return
	}

	s.jsonResponse(w, http.StatusAccepted, map[string]any{
		"run_id":          run.ID,
		"status":          db.RunStatusResearching,
		"research_job_id": jobID,
	})
}

// handleGetRun returns a single run, including its content when finished.
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	runID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid run ID")
		return
	}

	run, err := s.store.GetRun(r.Context(), runID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if run == nil {
		s.errorResponse(w, http.StatusNotFound, "Run not found")
		return
	}
	s.jsonResponse(w, http.StatusOK, run)
}

// handleListCustomerRuns lists a customer's recent runs, newest first.
func (s *Server) handleListCustomerRuns(w http.ResponseWriter, r *http.Request) {
	customerID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid customer ID")
		return
	}

	limit := defaultRunListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			s.errorResponse(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = parsed
	}

	runs, err := s.store.ListRunsForCustomer(r.Context(), customerID, limit)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"runs":  runs,
		"count": len(runs),
	})
}
