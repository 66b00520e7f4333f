package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const runColumns = `id, customer_id, trigger_type, status, research_job_id,
       research_payload, content, error_message, doc_id, doc_url,
       started_at, finished_at`

// CreateRun creates a new pending run for a customer.
func (db *DB) CreateRun(ctx context.Context, customerID uuid.UUID, triggerType string) (*Run, error) {
	row := db.pool.QueryRow(ctx,
		`INSERT INTO newsletter_runs (customer_id, trigger_type, status)
		 VALUES ($1, $2, 'pending')
		 RETURNING `+runColumns,
		customerID, triggerType,
	)
	run, err := scanRun(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	return run, nil
}

// GetRun retrieves a run by ID. Returns nil if no run exists.
func (db *DB) GetRun(ctx context.Context, runID uuid.UUID) (*Run, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+runColumns+` FROM newsletter_runs WHERE id = $1`, runID)
	run, err := scanRun(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// GetRunByResearchJobID retrieves the run that owns an external research job.
// Returns nil if no run tracks that job.
func (db *DB) GetRunByResearchJobID(ctx context.Context, jobID string) (*Run, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+runColumns+` FROM newsletter_runs WHERE research_job_id = $1`, jobID)
	run, err := scanRun(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run by job id: %w", err)
	}
	return run, nil
}

// ListRunsByStatus retrieves all runs currently in the given status.
func (db *DB) ListRunsByStatus(ctx context.Context, status string) ([]Run, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+runColumns+` FROM newsletter_runs WHERE status = $1 ORDER BY started_at`, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()
	return collectRuns(rows)
}

// ListRunsForCustomer retrieves a customer's most recent runs.
func (db *DB) ListRunsForCustomer(ctx context.Context, customerID uuid.UUID, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.pool.Query(ctx,
		`SELECT `+runColumns+` FROM newsletter_runs
		 WHERE customer_id = $1 ORDER BY started_at DESC LIMIT $2`,
		customerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list customer runs: %w", err)
	}
	defer rows.Close()
	return collectRuns(rows)
}

// StartResearch transitions a run from pending to researching and records the
// external job id in the same conditional update. Returns false if the run was
// no longer pending, in which case nothing was written.
func (db *DB) StartResearch(ctx context.Context, runID uuid.UUID, jobID string) (bool, error) {
	tag, err := db.pool.Exec(ctx,
		`UPDATE newsletter_runs
		 SET status = 'researching', research_job_id = $2
		 WHERE id = $1 AND status = 'pending'`,
		runID, jobID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to start research for run %s: %w", runID, err)
	}
	return tag.RowsAffected() == 1, nil
}

// SaveResearchPayload persists the extracted research snapshot while the run is
// still in flight, so a later synthesis failure does not discard the research.
func (db *DB) SaveResearchPayload(ctx context.Context, runID uuid.UUID, snapshot *ResearchSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal research payload: %w", err)
	}
	_, err = db.pool.Exec(ctx,
		`UPDATE newsletter_runs SET research_payload = $2
		 WHERE id = $1 AND status NOT IN ('success', 'error')`,
		runID, data,
	)
	if err != nil {
		return fmt.Errorf("failed to save research payload for run %s: %w", runID, err)
	}
	return nil
}

// CompleteRun transitions a run from researching to success, persisting the
// finished artifact. The update is conditioned on the run still being in
// researching; a false return means a racing trigger finished first and
// nothing was written.
func (db *DB) CompleteRun(ctx context.Context, runID uuid.UUID, content any, finishedAt time.Time) (bool, error) {
	data, err := json.Marshal(content)
	if err != nil {
		return false, fmt.Errorf("failed to marshal content: %w", err)
	}
	tag, err := db.pool.Exec(ctx,
		`UPDATE newsletter_runs
		 SET status = 'success', content = $2, finished_at = $3, error_message = NULL
		 WHERE id = $1 AND status = 'researching'`,
		runID, data, finishedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to complete run %s: %w", runID, err)
	}
	return tag.RowsAffected() == 1, nil
}

// FailRun transitions a run to error from any non-terminal state. Returns
// false if the run was already terminal, in which case nothing was written.
func (db *DB) FailRun(ctx context.Context, runID uuid.UUID, message string, finishedAt time.Time) (bool, error) {
	tag, err := db.pool.Exec(ctx,
		`UPDATE newsletter_runs
		 SET status = 'error', error_message = $2, finished_at = $3
		 WHERE id = $1 AND status IN ('pending', 'researching')`,
		runID, message, finishedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to fail run %s: %w", runID, err)
	}
	return tag.RowsAffected() == 1, nil
}

// SetRunExport records the exported document reference on a successful run.
func (db *DB) SetRunExport(ctx context.Context, runID uuid.UUID, docID, docURL string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE newsletter_runs SET doc_id = $2, doc_url = $3
		 WHERE id = $1 AND status = 'success'`,
		runID, docID, docURL,
	)
	if err != nil {
		return fmt.Errorf("failed to set export reference for run %s: %w", runID, err)
	}
	return nil
}

func scanRun(row pgx.Row) (*Run, error) {
	var run Run
	var payloadJSON, contentJSON []byte
	err := row.Scan(&run.ID, &run.CustomerID, &run.TriggerType, &run.Status,
		&run.ResearchJobID, &payloadJSON, &contentJSON, &run.ErrorMessage,
		&run.DocID, &run.DocURL, &run.StartedAt, &run.FinishedAt)
	if err != nil {
		return nil, err
	}
	if payloadJSON != nil {
		_ = json.Unmarshal(payloadJSON, &run.ResearchPayload)
	}
	if contentJSON != nil {
		_ = json.Unmarshal(contentJSON, &run.Content)
	}
	return &run, nil
}

func collectRuns(rows pgx.Rows) ([]Run, error) {
	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}
