package research

import (
	"encoding/json"
	"fmt"
	"strings"
)

// webhookBody tolerates both payload shapes the provider has been observed to
// send: the response object itself, or an event envelope {id, type, data:{...}}.
type webhookBody struct {
	ID     string `json:"id"`
	Type   string `json:"type,omitempty"`
	Status string `json:"status,omitempty"`

	Output    []OutputItem  `json:"output,omitempty"`
	Error     *providerFail `json:"error,omitempty"`
	LastError *providerFail `json:"last_error,omitempty"`

	Data *providerResponse `json:"data,omitempty"`
}

// ParseWebhook normalizes a provider push notification into a StatusResult.
// It returns an error only for structurally unparseable bodies or bodies that
// identify no job; callers should answer 400 in that case and 200 otherwise.
func ParseWebhook(body []byte) (StatusResult, error) {
	var wb webhookBody
	if err := json.Unmarshal(body, &wb); err != nil {
		return StatusResult{}, fmt.Errorf("invalid webhook body: %w", err)
	}

	resp := providerResponse{
		ID:        wb.ID,
		Status:    wb.Status,
		Output:    wb.Output,
		Error:     wb.Error,
		LastError: wb.LastError,
	}

	// Enveloped events carry the response object under data and encode the
	// outcome in the event type (e.g. "response.completed").
	if wb.Data != nil && wb.Data.ID != "" {
		resp = *wb.Data
	}
	if resp.Status == "" && wb.Type != "" {
		resp.Status = statusFromEventType(wb.Type)
	}

	if resp.ID == "" {
		return StatusResult{}, fmt.Errorf("webhook body identifies no job")
	}
	return normalizeResponse(&resp), nil
}

func statusFromEventType(eventType string) string {
	if idx := strings.LastIndex(eventType, "."); idx >= 0 {
		return eventType[idx+1:]
	}
	return eventType
}
