package newsletter

import (
	"net/url"
	"strings"

	"github.com/iterate-labs/newsletter-portal/internal/research"
	"github.com/iterate-labs/newsletter-portal/internal/types"
)

// Per-section caps on normalized findings.
const (
	maxCustomerFindings   = 15
	maxCompetitorFindings = 10
	maxIndustryFindings   = 15
)

// Normalize turns a raw research payload into deduplicated, capped article
// lists ready for synthesis. Findings without a usable URL or title are dropped.
func Normalize(payload *research.Payload) types.NormalizedResearch {
	return types.NormalizedResearch{
		CustomerNews:   normalizeSection(payload.CustomerNews, maxCustomerFindings),
		CompetitorNews: normalizeSection(payload.CompetitorNews, maxCompetitorFindings),
		IndustryTrends: normalizeSection(payload.IndustryTrends, maxIndustryFindings),
	}
}

func normalizeSection(findings []research.Finding, limit int) []types.NewsArticle {
	seen := make(map[string]bool)
	var articles []types.NewsArticle
	for _, f := range findings {
		canonical, ok := canonicalURL(f.URL)
		if !ok {
			continue
		}
		title := strings.TrimSpace(f.Title)
		if title == "" {
			continue
		}
		key := strings.ToLower(canonical)
		if seen[key] {
			continue
		}
		seen[key] = true

		source := strings.TrimSpace(f.Source)
		if source == "" {
			source = deriveSource(canonical)
		}
		articles = append(articles, types.NewsArticle{
			Title:       title,
			URL:         canonical,
			Description: strings.TrimSpace(f.Summary),
			Source:      source,
		})
		if len(articles) == limit {
			break
		}
	}
	return articles
}

// canonicalURL parses and canonicalizes an article URL: scheme and host are
// lowercased and a trailing slash on the path is dropped, so variants of the
// same link dedup to one entry. Relative or unparseable URLs are rejected.
func canonicalURL(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", false
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Path = strings.TrimSuffix(u.Path, "/")
	return u.String(), true
}

// deriveSource labels an article by its host when the research did not name a
// publisher.
func deriveSource(canonical string) string {
	u, err := url.Parse(canonical)
	if err != nil || u.Hostname() == "" {
		return "source"
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}
