package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validContent() string {
	return `{
		"executiveSummary": "Acme had a strong quarter.",
		"customerHighlights": [{"summary": "Raised Series C", "implication": "Budget for expansion", "sourceUrl": "https://example.com/a"}],
		"industryTrends": [{"trend": "AI adoption up", "implication": "Automation opportunity"}],
		"iterateUpdates": [{"update": "Shipped v2 dashboards"}],
		"futureIdeas": [{"idea": "Pilot route optimization", "value": "Lower fuel spend"}],
		"generatedAtIso": "2026-03-15T10:00:00Z"
	}`
}

func TestValidateNewsletterContentAccepts(t *testing.T) {
	assert.NoError(t, ValidateNewsletterContent([]byte(validContent())))
}

func TestValidateNewsletterContentEmptySections(t *testing.T) {
	doc := `{
		"executiveSummary": "Quiet period.",
		"customerHighlights": [],
		"industryTrends": [],
		"iterateUpdates": [],
		"futureIdeas": []
	}`
	assert.NoError(t, ValidateNewsletterContent([]byte(doc)))
}

func TestValidateNewsletterContentRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "Missing executive summary",
			doc:  `{"customerHighlights": [], "industryTrends": [], "iterateUpdates": [], "futureIdeas": []}`,
		},
		{
			name: "Empty executive summary",
			doc:  `{"executiveSummary": "", "customerHighlights": [], "industryTrends": [], "iterateUpdates": [], "futureIdeas": []}`,
		},
		{
			name: "Highlight without implication",
			doc:  `{"executiveSummary": "x", "customerHighlights": [{"summary": "y"}], "industryTrends": [], "iterateUpdates": [], "futureIdeas": []}`,
		},
		{
			name: "Trend as string",
			doc:  `{"executiveSummary": "x", "customerHighlights": [], "industryTrends": ["not an object"], "iterateUpdates": [], "futureIdeas": []}`,
		},
		{
			name: "Idea without value",
			doc:  `{"executiveSummary": "x", "customerHighlights": [], "industryTrends": [], "iterateUpdates": [], "futureIdeas": [{"idea": "y"}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNewsletterContent([]byte(tt.doc))
			require.Error(t, err)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.NotEmpty(t, ve.Errors)
		})
	}
}

func TestValidationErrorMessageNamesFields(t *testing.T) {
	err := ValidateNewsletterContent([]byte(`{"customerHighlights": [], "industryTrends": [], "iterateUpdates": [], "futureIdeas": []}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "executiveSummary")
}
