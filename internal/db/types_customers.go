package db

import (
	"time"

	"github.com/google/uuid"
)

// Newsletter frequency constants
const (
	FrequencyWeekly   = "weekly"
	FrequencyBiweekly = "biweekly"
	FrequencyMonthly  = "monthly"
)

// Customer represents a customer account the portal drafts newsletters for.
type Customer struct {
	ID                 uuid.UUID  `json:"id"`
	Name               string     `json:"name"`
	Aliases            []string   `json:"aliases,omitempty"`
	Industry           string     `json:"industry"`
	SubVerticals       []string   `json:"sub_verticals,omitempty"`
	WebsiteURL         *string    `json:"website_url,omitempty"`
	Active             bool       `json:"active"`
	Frequency          string     `json:"frequency"`
	Tone               string     `json:"tone"`
	MaxItemsPerSection int        `json:"max_items_per_section"`
	NewsKeywords       []string   `json:"news_keywords,omitempty"`
	Competitors        []string   `json:"competitors,omitempty"`
	KeyPriorities      []string   `json:"key_priorities,omitempty"`
	SensitiveTopics    []string   `json:"sensitive_topics,omitempty"`
	CurrentInitiatives *string    `json:"current_initiatives,omitempty"`
	LastRunAt          *time.Time `json:"last_run_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// CustomerInput is used when creating or updating a customer.
type CustomerInput struct {
	Name               string
	Aliases            []string
	Industry           string
	SubVerticals       []string
	WebsiteURL         string
	Active             bool
	Frequency          string
	Tone               string
	MaxItemsPerSection int
	NewsKeywords       []string
	Competitors        []string
	KeyPriorities      []string
	SensitiveTopics    []string
	CurrentInitiatives string
}
