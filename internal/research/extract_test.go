package research

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func messageOutput(texts ...string) []OutputItem {
	var pieces []ContentPiece
	for _, text := range texts {
		pieces = append(pieces, ContentPiece{Type: "output_text", Text: text})
	}
	return []OutputItem{{Type: "message", Content: pieces}}
}

func TestJoinOutputText(t *testing.T) {
	tests := []struct {
		name     string
		output   []OutputItem
		expected string
	}{
		{
			name:     "Single message single piece",
			output:   messageOutput("hello"),
			expected: "hello",
		},
		{
			name:     "Multiple pieces joined with newline",
			output:   messageOutput("first", "second"),
			expected: "first\nsecond",
		},
		{
			name: "Non-message items skipped",
			output: []OutputItem{
				{Type: "reasoning", Content: []ContentPiece{{Type: "output_text", Text: "internal"}}},
				{Type: "message", Content: []ContentPiece{{Type: "output_text", Text: "visible"}}},
			},
			expected: "visible",
		},
		{
			name: "Non-text pieces skipped",
			output: []OutputItem{
				{Type: "message", Content: []ContentPiece{
					{Type: "refusal", Text: "nope"},
					{Type: "output_text", Text: "kept"},
				}},
			},
			expected: "kept",
		},
		{
			name:     "Empty output",
			output:   nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, JoinOutputText(tt.output))
		})
	}
}

func TestExtractValidPayload(t *testing.T) {
	raw := `{"customerNews":[{"title":"Acme raises Series C","url":"https://news.example.com/acme"}],"competitorNews":[],"industryTrends":[{"title":"AI spend up","url":"https://trends.example.com/ai"}]}`

	payload, rawText, err := Extract(messageOutput(raw))
	require.NoError(t, err)
	assert.Equal(t, raw, rawText)
	require.Len(t, payload.CustomerNews, 1)
	assert.Equal(t, "Acme raises Series C", payload.CustomerNews[0].Title)
	assert.Empty(t, payload.CompetitorNews)
	require.Len(t, payload.IndustryTrends, 1)
}

func TestExtractFencedPayload(t *testing.T) {
	fenced := "```json\n{\"customerNews\":[{\"title\":\"Uses `backticks` inline\",\"url\":\"https://a.example.com\"}],\"competitorNews\":[],\"industryTrends\":[]}\n```"

	payload, _, err := Extract(messageOutput(fenced))
	require.NoError(t, err)
	require.Len(t, payload.CustomerNews, 1)
	assert.Equal(t, "Uses `backticks` inline", payload.CustomerNews[0].Title)
}

func TestExtractProseWrappedPayload(t *testing.T) {
	// Prose before and after the object triggers the outermost-brace retry.
	text := `Here are the findings you asked for:
{"customerNews":[],"competitorNews":[],"industryTrends":[]}
Let me know if you need more detail.`

	payload, _, err := Extract(messageOutput(text))
	require.NoError(t, err)
	assert.NotNil(t, payload.CustomerNews)
}

func TestExtractErrors(t *testing.T) {
	tests := []struct {
		name     string
		output   []OutputItem
		expected error
	}{
		{
			name:     "Empty output",
			output:   nil,
			expected: ErrEmptyOutput,
		},
		{
			name:     "No text pieces",
			output:   []OutputItem{{Type: "message"}},
			expected: ErrEmptyOutput,
		},
		{
			name:     "Not JSON at all",
			output:   messageOutput("not-json"),
			expected: ErrMalformedJSON,
		},
		{
			name:     "Missing sections",
			output:   messageOutput(`{"customerNews":[],"competitorNews":[]}`),
			expected: ErrMissingSections,
		},
		{
			name:     "JSON array instead of object",
			output:   messageOutput(`[1,2,3]`),
			expected: ErrMalformedJSON,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Extract(tt.output)
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"No fence", `{"a":1}`, `{"a":1}`},
		{"Plain fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"Language tagged fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"Fence without newline", "```{\"a\":1}```", `{"a":1}`},
		{"Inner backticks preserved", "```json\n{\"a\":\"`x`\"}\n```", `{"a":"` + "`x`" + `"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, stripCodeFence(tt.input))
		})
	}
}
