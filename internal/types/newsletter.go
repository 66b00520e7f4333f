// Package types provides type definitions for structured data used throughout the newsletter portal.
package types

// Insight is a customer highlight bullet with its implication for the account.
type Insight struct {
	Summary     string `json:"summary"`
	Implication string `json:"implication"`
	SourceURL   string `json:"sourceUrl,omitempty"`
}

// TrendItem is an industry trend bullet with its implication for the account.
type TrendItem struct {
	Trend       string `json:"trend"`
	Implication string `json:"implication"`
	SourceURL   string `json:"sourceUrl,omitempty"`
}

// UpdateItem is an internal product/company update surfaced in the newsletter.
type UpdateItem struct {
	Update    string `json:"update"`
	SourceURL string `json:"sourceUrl,omitempty"`
}

// FutureIdea is a forward-looking suggestion with its expected value.
type FutureIdea struct {
	Idea  string `json:"idea"`
	Value string `json:"value"`
}

// NewsletterContent is the finished newsletter artifact produced by synthesis.
// Field names match the JSON shape stored in the run record and rendered by the portal.
type NewsletterContent struct {
	ExecutiveSummary   string       `json:"executiveSummary"`
	CustomerHighlights []Insight    `json:"customerHighlights"`
	IndustryTrends     []TrendItem  `json:"industryTrends"`
	IterateUpdates     []UpdateItem `json:"iterateUpdates"`
	FutureIdeas        []FutureIdea `json:"futureIdeas"`
	GeneratedAtISO     string       `json:"generatedAtIso"`
}

// NewsArticle is a normalized research finding ready for synthesis.
type NewsArticle struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
	Source      string `json:"source,omitempty"`
}

// NormalizedResearch holds the deduplicated, capped finding sections.
type NormalizedResearch struct {
	CustomerNews   []NewsArticle `json:"customerNews"`
	CompetitorNews []NewsArticle `json:"competitorNews"`
	IndustryTrends []NewsArticle `json:"industryTrends"`
}
