package newsletter

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iterate-labs/newsletter-portal/internal/research"
)

func TestNormalizeDedupsURLVariants(t *testing.T) {
	payload := &research.Payload{
		CustomerNews: []research.Finding{
			{Title: "First", URL: "https://News.Example.com/story/"},
			{Title: "Duplicate by trailing slash", URL: "https://news.example.com/story"},
			{Title: "Duplicate by case", URL: "HTTPS://NEWS.EXAMPLE.COM/story/"},
			{Title: "Different story", URL: "https://news.example.com/other"},
		},
	}

	result := Normalize(payload)
	require.Len(t, result.CustomerNews, 2)
	assert.Equal(t, "First", result.CustomerNews[0].Title)
	assert.Equal(t, "https://news.example.com/story", result.CustomerNews[0].URL)
	assert.Equal(t, "Different story", result.CustomerNews[1].Title)
}

func TestNormalizeDropsUnusableFindings(t *testing.T) {
	payload := &research.Payload{
		CompetitorNews: []research.Finding{
			{Title: "No URL at all"},
			{Title: "Relative URL", URL: "/local/path"},
			{Title: "   ", URL: "https://example.com/blank-title"},
			{URL: "https://example.com/missing-title"},
			{Title: "Kept", URL: "https://example.com/kept"},
		},
	}

	result := Normalize(payload)
	require.Len(t, result.CompetitorNews, 1)
	assert.Equal(t, "Kept", result.CompetitorNews[0].Title)
}

func TestNormalizeCapsSections(t *testing.T) {
	var customer, competitor, industry []research.Finding
	for i := 0; i < 30; i++ {
		f := research.Finding{
			Title: fmt.Sprintf("Story %d", i),
			URL:   fmt.Sprintf("https://example.com/story/%d", i),
		}
		customer = append(customer, f)
		competitor = append(competitor, f)
		industry = append(industry, f)
	}

	result := Normalize(&research.Payload{
		CustomerNews:   customer,
		CompetitorNews: competitor,
		IndustryTrends: industry,
	})
	assert.Len(t, result.CustomerNews, maxCustomerFindings)
	assert.Len(t, result.CompetitorNews, maxCompetitorFindings)
	assert.Len(t, result.IndustryTrends, maxIndustryFindings)
}

func TestNormalizeDerivesSourceFromHost(t *testing.T) {
	payload := &research.Payload{
		IndustryTrends: []research.Finding{
			{Title: "Named source", URL: "https://www.reuters.com/a", Source: "Reuters"},
			{Title: "Derived source", URL: "https://www.techcrunch.com/b"},
			{Title: "Bare host", URL: "https://ft.com/c"},
		},
	}

	result := Normalize(payload)
	require.Len(t, result.IndustryTrends, 3)
	assert.Equal(t, "Reuters", result.IndustryTrends[0].Source)
	assert.Equal(t, "techcrunch.com", result.IndustryTrends[1].Source)
	assert.Equal(t, "ft.com", result.IndustryTrends[2].Source)
}

func TestNormalizeTrimsFields(t *testing.T) {
	payload := &research.Payload{
		CustomerNews: []research.Finding{
			{Title: "  Padded title  ", URL: "  https://example.com/x  ", Summary: "  padded summary  "},
		},
	}

	result := Normalize(payload)
	require.Len(t, result.CustomerNews, 1)
	assert.Equal(t, "Padded title", result.CustomerNews[0].Title)
	assert.Equal(t, "padded summary", result.CustomerNews[0].Description)
}

func TestCanonicalURL(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		ok       bool
	}{
		{"Lowercases scheme and host", "HTTPS://Example.COM/Path", "https://example.com/Path", true},
		{"Trims trailing slash", "https://example.com/path/", "https://example.com/path", true},
		{"Keeps query", "https://example.com/path?id=1", "https://example.com/path?id=1", true},
		{"Rejects relative", "/just/a/path", "", false},
		{"Rejects empty", "", "", false},
		{"Rejects garbage", "://nope", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := canonicalURL(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}
