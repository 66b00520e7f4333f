package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/iterate-labs/newsletter-portal/internal/prompts"
	"github.com/iterate-labs/newsletter-portal/internal/schemas"
	"github.com/iterate-labs/newsletter-portal/internal/types"
)

// CustomerContext carries the customer fields that shape the synthesis prompt.
type CustomerContext struct {
	Name               string   `json:"name"`
	Industry           string   `json:"industry"`
	SubVerticals       []string `json:"subVerticals,omitempty"`
	KeyPriorities      []string `json:"keyPriorities,omitempty"`
	CurrentInitiatives string   `json:"currentInitiatives,omitempty"`
	Tone               string   `json:"-"`
	SensitiveTopics    []string `json:"-"`
	MaxItemsPerSection int      `json:"-"`
}

// Synthesizer produces the finished newsletter artifact from normalized
// research findings and internal updates.
type Synthesizer struct {
	client Client
}

// NewSynthesizer creates a Synthesizer backed by the given LLM client.
func NewSynthesizer(client Client) *Synthesizer {
	return &Synthesizer{client: client}
}

// Synthesize invokes the model and validates its output against the newsletter
// content schema before returning it.
func (s *Synthesizer) Synthesize(ctx context.Context, customer CustomerContext, findings types.NormalizedResearch, updates []types.UpdateItem) (*types.NewsletterContent, error) {
	prompt, err := buildSynthesisPrompt(customer, findings, updates)
	if err != nil {
		return nil, err
	}

	raw, err := s.client.GenerateJSON(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("synthesis failed: %w", err)
	}

	if err := schemas.ValidateNewsletterContent([]byte(raw)); err != nil {
		return nil, fmt.Errorf("synthesis produced invalid newsletter content: %w", err)
	}

	var content types.NewsletterContent
	if err := json.Unmarshal([]byte(raw), &content); err != nil {
		return nil, fmt.Errorf("failed to parse synthesized newsletter: %w", err)
	}
	if content.GeneratedAtISO == "" {
		content.GeneratedAtISO = time.Now().UTC().Format(time.RFC3339)
	}
	return &content, nil
}

func buildSynthesisPrompt(customer CustomerContext, findings types.NormalizedResearch, updates []types.UpdateItem) (string, error) {
	maxItems := customer.MaxItemsPerSection
	if maxItems <= 0 {
		maxItems = 4
	}
	tone := customer.Tone
	if tone == "" {
		tone = "friendly_exec"
	}
	sensitive := strings.Join(customer.SensitiveTopics, ", ")
	if sensitive == "" {
		sensitive = "none"
	}
	priorities := strings.Join(customer.KeyPriorities, "; ")
	if priorities == "" {
		priorities = "n/a"
	}

	input, err := json.Marshal(map[string]any{
		"customer": customer,
		"sections": map[string]any{
			"customerNews":   findings.CustomerNews,
			"competitorNews": findings.CompetitorNews,
			"industryTrends": findings.IndustryTrends,
			"iterateUpdates": updates,
		},
		"maxItemsPerSection": maxItems,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal synthesis input: %w", err)
	}

	template := prompts.MustGet("newsletter.json", "synthesize")
	return prompts.Format(template, map[string]string{
		"Name":            customer.Name,
		"Tone":            tone,
		"SensitiveTopics": sensitive,
		"Priorities":      priorities,
		"MaxItems":        fmt.Sprintf("%d", maxItems),
		"Input":           string(input),
	}), nil
}
