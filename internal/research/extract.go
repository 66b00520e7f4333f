package research

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Extract parses a completed job's raw output into a validated Payload.
// It returns the payload together with the raw joined text, which is retained
// for audit and debugging and never re-parsed downstream.
func Extract(output []OutputItem) (*Payload, string, error) {
	raw := JoinOutputText(output)
	if raw == "" {
		return nil, "", ErrEmptyOutput
	}

	payload, err := parsePayload(stripCodeFence(raw))
	if err != nil {
		return nil, raw, err
	}
	return payload, raw, nil
}

// JoinOutputText concatenates the textual segments of the job output in the
// order they were emitted.
func JoinOutputText(output []OutputItem) string {
	var chunks []string
	for _, item := range output {
		if item.Type != "message" {
			continue
		}
		for _, piece := range item.Content {
			if piece.Type == "output_text" && piece.Text != "" {
				chunks = append(chunks, piece.Text)
			}
		}
	}
	return strings.TrimSpace(strings.Join(chunks, "\n"))
}

// stripCodeFence removes a single leading/trailing fenced-code-block wrapper.
// The provider sometimes wraps the JSON in ```json ... ```. Backticks inside
// string values are left untouched.
func stripCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	body := text
	if idx := strings.Index(body, "\n"); idx >= 0 {
		body = body[idx+1:] // drop the opening fence and optional language tag
	} else {
		body = strings.TrimPrefix(body, "```")
	}
	if idx := strings.LastIndex(body, "```"); idx >= 0 {
		body = body[:idx]
	}
	return strings.TrimSpace(body)
}

func parsePayload(text string) (*Payload, error) {
	payload, err := tryParse(text)
	if err != nil {
		// The model occasionally prepends prose; retry on the outermost braces.
		start := strings.Index(text, "{")
		end := strings.LastIndex(text, "}")
		if start >= 0 && end > start {
			payload, err = tryParse(text[start : end+1])
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}

	if payload.CustomerNews == nil || payload.CompetitorNews == nil || payload.IndustryTrends == nil {
		return nil, ErrMissingSections
	}
	return payload, nil
}

func tryParse(text string) (*Payload, error) {
	var probe struct {
		CustomerNews   []Finding `json:"customerNews"`
		CompetitorNews []Finding `json:"competitorNews"`
		IndustryTrends []Finding `json:"industryTrends"`
	}
	dec := json.NewDecoder(strings.NewReader(text))
	if err := dec.Decode(&probe); err != nil {
		return nil, err
	}
	return &Payload{
		CustomerNews:   probe.CustomerNews,
		CompetitorNews: probe.CompetitorNews,
		IndustryTrends: probe.IndustryTrends,
	}, nil
}
