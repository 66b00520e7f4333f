package db

import (
	"time"

	"github.com/google/uuid"

	"github.com/iterate-labs/newsletter-portal/internal/research"
	"github.com/iterate-labs/newsletter-portal/internal/types"
)

// Run status constants. Success and error are terminal; once a run reaches
// either, no further field on it changes.
const (
	RunStatusPending     = "pending"
	RunStatusResearching = "researching"
	RunStatusSuccess     = "success"
	RunStatusError       = "error"
)

// Trigger type constants
const (
	TriggerScheduled = "scheduled"
	TriggerManual    = "manual"
)

// Run represents one attempt to produce a newsletter for one customer.
type Run struct {
	ID              uuid.UUID                `json:"id"`
	CustomerID      uuid.UUID                `json:"customer_id"`
	TriggerType     string                   `json:"trigger_type"`
	Status          string                   `json:"status"`
	ResearchJobID   *string                  `json:"research_job_id,omitempty"`
	ResearchPayload *ResearchSnapshot        `json:"research_payload,omitempty"`
	Content         *types.NewsletterContent `json:"content,omitempty"`
	ErrorMessage    *string                  `json:"error_message,omitempty"`
	DocID           *string                  `json:"doc_id,omitempty"`
	DocURL          *string                  `json:"doc_url,omitempty"`
	StartedAt       time.Time                `json:"started_at"`
	FinishedAt      *time.Time               `json:"finished_at,omitempty"`
}

// Terminal reports whether the run has reached success or error.
func (r *Run) Terminal() bool {
	return r.Status == RunStatusSuccess || r.Status == RunStatusError
}

// ResearchSnapshot is the persisted output of a finished research job: the
// structured payload plus the raw joined text kept for audit.
type ResearchSnapshot struct {
	Structured *research.Payload `json:"structured,omitempty"`
	RawText    string            `json:"rawText,omitempty"`
}
