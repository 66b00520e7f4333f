// Package newsletter implements the completion engine: the state machine that
// starts research jobs, interprets status observations from the poll sweep and
// the webhook, and synthesizes and persists finished newsletters exactly once.
package newsletter

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/iterate-labs/newsletter-portal/internal/db"
)

// Store is the persistence contract the engine drives runs through. The
// *db.DB Postgres store satisfies it; tests substitute an in-memory fake.
//
// StartResearch, CompleteRun, and FailRun are conditional updates: they only
// write when the run is still in the expected pre-state and report whether
// they did. That property linearizes transitions on a single run across
// racing triggers.
type Store interface {
	CreateRun(ctx context.Context, customerID uuid.UUID, triggerType string) (*db.Run, error)
	GetRun(ctx context.Context, runID uuid.UUID) (*db.Run, error)
	GetRunByResearchJobID(ctx context.Context, jobID string) (*db.Run, error)
	ListRunsByStatus(ctx context.Context, status string) ([]db.Run, error)

	StartResearch(ctx context.Context, runID uuid.UUID, jobID string) (bool, error)
	SaveResearchPayload(ctx context.Context, runID uuid.UUID, snapshot *db.ResearchSnapshot) error
	CompleteRun(ctx context.Context, runID uuid.UUID, content any, finishedAt time.Time) (bool, error)
	FailRun(ctx context.Context, runID uuid.UUID, message string, finishedAt time.Time) (bool, error)
	SetRunExport(ctx context.Context, runID uuid.UUID, docID, docURL string) error

	GetCustomer(ctx context.Context, customerID uuid.UUID) (*db.Customer, error)
	TouchCustomerLastRun(ctx context.Context, customerID uuid.UUID, completedAt time.Time) error

	ListActiveInternalUpdates(ctx context.Context, limit int) ([]db.InternalUpdate, error)
}
