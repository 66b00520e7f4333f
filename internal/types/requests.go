package types

import (
	"github.com/go-playground/validator/v10"
)

// CustomerRequest represents the request body for creating or updating a customer.
type CustomerRequest struct {
	Name               string   `json:"name" validate:"required,min=1,max=256"`
	Aliases            []string `json:"aliases,omitempty"`
	Industry           string   `json:"industry" validate:"required,min=1,max=128"`
	SubVerticals       []string `json:"sub_verticals,omitempty"`
	WebsiteURL         string   `json:"website_url,omitempty" validate:"omitempty,url"`
	Active             *bool    `json:"active,omitempty"`
	Frequency          string   `json:"frequency,omitempty" validate:"omitempty,oneof=weekly biweekly monthly"`
	Tone               string   `json:"tone,omitempty" validate:"omitempty,oneof=formal consultative friendly_exec concise"`
	MaxItemsPerSection int      `json:"max_items_per_section,omitempty" validate:"omitempty,min=1,max=10"`
	NewsKeywords       []string `json:"news_keywords,omitempty"`
	Competitors        []string `json:"competitors,omitempty"`
	KeyPriorities      []string `json:"key_priorities,omitempty"`
	SensitiveTopics    []string `json:"sensitive_topics,omitempty"`
	CurrentInitiatives string   `json:"current_initiatives,omitempty"`
}

// InternalUpdateRequest represents the request body for creating an internal update snippet.
type InternalUpdateRequest struct {
	Title     string `json:"title" validate:"required,min=1,max=256"`
	Body      string `json:"body,omitempty"`
	SourceURL string `json:"source_url,omitempty" validate:"omitempty,url"`
	Active    *bool  `json:"active,omitempty"`
}

// Validate validates the CustomerRequest using the validator.
func (r *CustomerRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the InternalUpdateRequest using the validator.
func (r *InternalUpdateRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
