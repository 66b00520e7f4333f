package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// InternalUpdate is a product/company update snippet surfaced in newsletters.
type InternalUpdate struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Body      *string   `json:"body,omitempty"`
	SourceURL *string   `json:"source_url,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateInternalUpdate creates a new internal update snippet.
func (db *DB) CreateInternalUpdate(ctx context.Context, title, body, sourceURL string, active bool) (*InternalUpdate, error) {
	var u InternalUpdate
	err := db.pool.QueryRow(ctx,
		`INSERT INTO internal_updates (title, body, source_url, active)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, title, body, source_url, active, created_at`,
		title, nullString(body), nullString(sourceURL), active,
	).Scan(&u.ID, &u.Title, &u.Body, &u.SourceURL, &u.Active, &u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create internal update: %w", err)
	}
	return &u, nil
}

// ListActiveInternalUpdates retrieves the newest active update snippets.
func (db *DB) ListActiveInternalUpdates(ctx context.Context, limit int) ([]InternalUpdate, error) {
	if limit <= 0 {
		limit = 6
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id, title, body, source_url, active, created_at
		 FROM internal_updates
		 WHERE active = true
		 ORDER BY created_at DESC
		 LIMIT $1`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list internal updates: %w", err)
	}
	defer rows.Close()

	var updates []InternalUpdate
	for rows.Next() {
		var u InternalUpdate
		if err := rows.Scan(&u.ID, &u.Title, &u.Body, &u.SourceURL, &u.Active, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan internal update: %w", err)
		}
		updates = append(updates, u)
	}
	return updates, rows.Err()
}
