package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iterate-labs/newsletter-portal/internal/types"
)

type mockClient struct {
	response string
	err      error
	prompt   string
}

func (m *mockClient) GenerateJSON(_ context.Context, prompt string) (string, error) {
	m.prompt = prompt
	return m.response, m.err
}

func (m *mockClient) Close() error { return nil }

func validNewsletterJSON() string {
	return `{
		"executiveSummary": "Acme had a strong quarter.",
		"customerHighlights": [{"summary": "Raised Series C", "implication": "Budget for expansion"}],
		"industryTrends": [{"trend": "AI adoption up", "implication": "Automation opportunity"}],
		"iterateUpdates": [{"update": "Shipped v2 dashboards"}],
		"futureIdeas": [{"idea": "Pilot route optimization", "value": "Lower fuel spend"}],
		"generatedAtIso": "2026-03-15T10:00:00Z"
	}`
}

func testContext() CustomerContext {
	return CustomerContext{
		Name:               "Acme Logistics",
		Industry:           "Logistics",
		KeyPriorities:      []string{"Cut fuel costs"},
		Tone:               "consultative",
		SensitiveTopics:    []string{"layoffs"},
		MaxItemsPerSection: 3,
	}
}

func testFindings() types.NormalizedResearch {
	return types.NormalizedResearch{
		CustomerNews: []types.NewsArticle{
			{Title: "Acme raises Series C", URL: "https://example.com/acme", Source: "example.com"},
		},
		CompetitorNews: []types.NewsArticle{},
		IndustryTrends: []types.NewsArticle{},
	}
}

func TestSynthesizeReturnsValidatedContent(t *testing.T) {
	client := &mockClient{response: validNewsletterJSON()}
	synth := NewSynthesizer(client)

	content, err := synth.Synthesize(context.Background(), testContext(), testFindings(), nil)
	require.NoError(t, err)
	assert.Equal(t, "Acme had a strong quarter.", content.ExecutiveSummary)
	require.Len(t, content.CustomerHighlights, 1)
	assert.Equal(t, "2026-03-15T10:00:00Z", content.GeneratedAtISO)
}

func TestSynthesizePromptCarriesCustomerAndFindings(t *testing.T) {
	client := &mockClient{response: validNewsletterJSON()}
	synth := NewSynthesizer(client)

	_, err := synth.Synthesize(context.Background(), testContext(), testFindings(), []types.UpdateItem{
		{Update: "Shipped v2 dashboards"},
	})
	require.NoError(t, err)

	assert.Contains(t, client.prompt, "Acme Logistics")
	assert.Contains(t, client.prompt, "consultative")
	assert.Contains(t, client.prompt, "layoffs")
	assert.Contains(t, client.prompt, "Acme raises Series C")
	assert.Contains(t, client.prompt, "Shipped v2 dashboards")
}

func TestSynthesizeRejectsInvalidContent(t *testing.T) {
	// Missing executiveSummary fails schema validation before unmarshal.
	client := &mockClient{response: `{"customerHighlights": [], "industryTrends": [], "iterateUpdates": [], "futureIdeas": []}`}
	synth := NewSynthesizer(client)

	_, err := synth.Synthesize(context.Background(), testContext(), testFindings(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid newsletter content")
}

func TestSynthesizeClientError(t *testing.T) {
	client := &mockClient{err: errors.New("model overloaded")}
	synth := NewSynthesizer(client)

	_, err := synth.Synthesize(context.Background(), testContext(), testFindings(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model overloaded")
}

func TestSynthesizeDefaultsGeneratedAt(t *testing.T) {
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(validNewsletterJSON()), &doc))
	delete(doc, "generatedAtIso")
	raw, _ := json.Marshal(doc)

	client := &mockClient{response: string(raw)}
	synth := NewSynthesizer(client)

	content, err := synth.Synthesize(context.Background(), testContext(), testFindings(), nil)
	require.NoError(t, err)
	assert.NotEmpty(t, content.GeneratedAtISO)
}

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"No wrapper", `{"a":1}`, `{"a":1}`},
		{"JSON fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"Generic fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"Fence with language tag", "```javascript\n{\"a\":1}\n```", `{"a":1}`},
		{"Surrounding whitespace", "  {\"a\":1}  ", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJSONBlock(tt.input))
		})
	}
}
