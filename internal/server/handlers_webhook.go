package server

import (
	"io"
	"log"
	"net/http"

	"github.com/iterate-labs/newsletter-portal/internal/research"
)

// handleResearchWebhook receives provider push notifications for research
// jobs. The webhook always acknowledges with 200 once the event is matched
// to a run; the poll sweep remains the safety net for anything that cannot
// be settled here, so a dropped or half-processed event is never fatal.
func (s *Server) handleResearchWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	status, err := research.ParseWebhook(body)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid webhook payload: "+err.Error())
		return
	}

	run, err := s.store.GetRunByResearchJobID(r.Context(), status.JobID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if run == nil {
		// Job id we never issued, or the run was created by another deployment.
		log.Printf("[webhook] no run for research job %s, ignoring", status.JobID)
		s.jsonResponse(w, http.StatusOK, map[string]any{
			"ok":      true,
			"message": "No matching run found",
		})
		return
	}
	if run.Terminal() {
		s.jsonResponse(w, http.StatusOK, map[string]any{
			"ok":      true,
			"message": "Run already processed",
			"status":  run.Status,
		})
		return
	}

	customer, err := s.store.GetCustomer(r.Context(), run.CustomerID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if customer == nil {
		s.engine.Fail(r.Context(), run.ID, "customer not found")
		s.jsonResponse(w, http.StatusOK, map[string]any{"ok": true, "outcome": "error"})
		return
	}

	// Completion events often carry only the job id. Fetch the full output
	// once; if that fails, acknowledge anyway and let the sweep finish it.
	if status.Status == research.JobCompleted && len(status.Output) == 0 {
		full, err := s.research.CheckStatus(r.Context(), status.JobID)
		if err != nil {
			log.Printf("[webhook] run %s: failed to fetch output for job %s: %v", run.ID, status.JobID, err)
			s.jsonResponse(w, http.StatusOK, map[string]any{
				"ok":      true,
				"message": "Output fetch failed, deferred to poll sweep",
			})
			return
		}
		status = full
	}

	outcome, err := s.engine.Observe(r.Context(), run.ID, customer, status)
	if err != nil {
		log.Printf("[webhook] run %s: observation error: %v", run.ID, err)
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"ok":      true,
		"outcome": outcome,
	})
}

// handleWebhookHealth lets the provider's endpoint verification succeed.
func (s *Server) handleWebhookHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ready"})
}
