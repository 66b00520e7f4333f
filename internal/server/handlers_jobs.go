package server

import (
	"log"
	"net/http"
	"time"

	"github.com/iterate-labs/newsletter-portal/internal/db"
	"github.com/iterate-labs/newsletter-portal/internal/schedule"
)

// handleRunNewsletters is the scheduled kickoff: it walks active customers,
// creates a run for each one whose frequency interval has elapsed, and
// submits research for it. Failures are isolated per customer so one bad
// profile does not block the rest of the batch.
func (s *Server) handleRunNewsletters(w http.ResponseWriter, r *http.Request) {
	if !s.authorizedCron(r) {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	customers, err := s.store.ListCustomers(r.Context(), true)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	now := time.Now()
	started := 0
	skipped := 0
	errored := 0

	for i := range customers {
		customer := &customers[i]
		if !schedule.IsCustomerDue(customer, now) {
			skipped++
			continue
		}

		run, err := s.store.CreateRun(r.Context(), customer.ID, db.TriggerScheduled)
		if err != nil {
			log.Printf("[run-newsletters] customer %s: failed to create run: %v", customer.ID, err)
			errored++
			continue
		}

		if _, err := s.engine.StartRun(r.Context(), run, customer); err != nil {
			log.Printf("[run-newsletters] customer %s: %v", customer.ID, err)
			errored++
			continue
		}
		started++
	}

	log.Printf("[run-newsletters] started=%d skipped=%d errored=%d", started, skipped, errored)
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"started": started,
		"skipped": skipped,
		"errored": errored,
	})
}

// handlePollResearch sweeps all researching runs once and reports the tally.
func (s *Server) handlePollResearch(w http.ResponseWriter, r *http.Request) {
	if !s.authorizedCron(r) {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	summary, err := s.engine.Sweep(r.Context(), s.sweep)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Sweep failed: "+err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, summary)
}
