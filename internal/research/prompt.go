package research

import (
	"strings"

	"github.com/iterate-labs/newsletter-portal/internal/prompts"
)

// maxCompetitors caps how many competitors we ask the provider to cover.
const maxCompetitors = 5

// BuildPrompt renders the analyst research prompt from a customer profile.
// Empty profile fields fall back to sensible phrasing so the prompt never
// contains blank slots.
func BuildPrompt(p Profile) string {
	keywords := strings.Join(p.Keywords, ", ")
	if keywords == "" {
		keywords = p.Name
	}

	competitors := p.Competitors
	if len(competitors) > maxCompetitors {
		competitors = competitors[:maxCompetitors]
	}
	competitorList := strings.Join(competitors, ", ")
	if competitorList == "" {
		competitorList = "Peer set in same industry"
	}

	priorities := strings.Join(p.Priorities, "; ")
	if priorities == "" {
		priorities = "Not specified"
	}

	subVerticals := strings.Join(p.SubVerticals, ", ")
	if subVerticals == "" {
		subVerticals = p.Industry
	}

	initiatives := p.Initiatives
	if initiatives == "" {
		initiatives = "Not specified"
	}

	template := prompts.MustGet("research.json", "news_research")
	return strings.TrimSpace(prompts.Format(template, map[string]string{
		"Name":         p.Name,
		"Industry":     p.Industry,
		"SubVerticals": subVerticals,
		"Priorities":   priorities,
		"Initiatives":  initiatives,
		"Keywords":     keywords,
		"Competitors":  competitorList,
	}))
}
