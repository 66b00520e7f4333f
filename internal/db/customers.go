package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const customerColumns = `id, name, aliases, industry, sub_verticals, website_url,
       active, frequency, tone, max_items_per_section, news_keywords, competitors,
       key_priorities, sensitive_topics, current_initiatives, last_run_at,
       created_at, updated_at`

// CreateCustomer creates a new customer record.
func (db *DB) CreateCustomer(ctx context.Context, input *CustomerInput) (*Customer, error) {
	applyCustomerDefaults(input)
	row := db.pool.QueryRow(ctx,
		`INSERT INTO customers (name, aliases, industry, sub_verticals, website_url,
		        active, frequency, tone, max_items_per_section, news_keywords,
		        competitors, key_priorities, sensitive_topics, current_initiatives)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 RETURNING `+customerColumns,
		input.Name, input.Aliases, input.Industry, input.SubVerticals,
		nullString(input.WebsiteURL), input.Active, input.Frequency, input.Tone,
		input.MaxItemsPerSection, input.NewsKeywords, input.Competitors,
		input.KeyPriorities, input.SensitiveTopics, nullString(input.CurrentInitiatives),
	)
	customer, err := scanCustomer(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return customer, nil
}

// GetCustomer retrieves a customer by ID. Returns nil if no customer exists.
func (db *DB) GetCustomer(ctx context.Context, customerID uuid.UUID) (*Customer, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE id = $1`, customerID)
	customer, err := scanCustomer(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return customer, nil
}

// ListCustomers retrieves customers, optionally restricted to active ones.
func (db *DB) ListCustomers(ctx context.Context, activeOnly bool) ([]Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers`
	if activeOnly {
		query += ` WHERE active = true`
	}
	query += ` ORDER BY name`

	rows, err := db.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	var customers []Customer
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, *customer)
	}
	return customers, rows.Err()
}

// UpdateCustomer replaces a customer's profile fields. Returns nil if no
// customer exists with that ID.
func (db *DB) UpdateCustomer(ctx context.Context, customerID uuid.UUID, input *CustomerInput) (*Customer, error) {
	applyCustomerDefaults(input)
	row := db.pool.QueryRow(ctx,
		`UPDATE customers
		 SET name = $2, aliases = $3, industry = $4, sub_verticals = $5,
		     website_url = $6, active = $7, frequency = $8, tone = $9,
		     max_items_per_section = $10, news_keywords = $11, competitors = $12,
		     key_priorities = $13, sensitive_topics = $14, current_initiatives = $15,
		     updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+customerColumns,
		customerID, input.Name, input.Aliases, input.Industry, input.SubVerticals,
		nullString(input.WebsiteURL), input.Active, input.Frequency, input.Tone,
		input.MaxItemsPerSection, input.NewsKeywords, input.Competitors,
		input.KeyPriorities, input.SensitiveTopics, nullString(input.CurrentInitiatives),
	)
	customer, err := scanCustomer(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}
	return customer, nil
}

// DeleteCustomer deletes a customer and, via cascade, its runs.
func (db *DB) DeleteCustomer(ctx context.Context, customerID uuid.UUID) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM customers WHERE id = $1`, customerID)
	if err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("customer not found: %s", customerID)
	}
	return nil
}

// TouchCustomerLastRun records the completion time of a successful run.
func (db *DB) TouchCustomerLastRun(ctx context.Context, customerID uuid.UUID, completedAt time.Time) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE customers SET last_run_at = $2, updated_at = NOW() WHERE id = $1`,
		customerID, completedAt)
	if err != nil {
		return fmt.Errorf("failed to touch last run for customer %s: %w", customerID, err)
	}
	return nil
}

func applyCustomerDefaults(input *CustomerInput) {
	if input.Frequency == "" {
		input.Frequency = FrequencyBiweekly
	}
	if input.Tone == "" {
		input.Tone = "friendly_exec"
	}
	if input.MaxItemsPerSection == 0 {
		input.MaxItemsPerSection = 4
	}
}

func scanCustomer(row pgx.Row) (*Customer, error) {
	var c Customer
	err := row.Scan(&c.ID, &c.Name, &c.Aliases, &c.Industry, &c.SubVerticals,
		&c.WebsiteURL, &c.Active, &c.Frequency, &c.Tone, &c.MaxItemsPerSection,
		&c.NewsKeywords, &c.Competitors, &c.KeyPriorities, &c.SensitiveTopics,
		&c.CurrentInitiatives, &c.LastRunAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
