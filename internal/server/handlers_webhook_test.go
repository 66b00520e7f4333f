package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iterate-labs/newsletter-portal/internal/db"
	"github.com/iterate-labs/newsletter-portal/internal/research"
)

func completedWebhookBody(jobID string) []byte {
	raw := `{"customerNews":[],"competitorNews":[],"industryTrends":[]}`
	body, _ := json.Marshal(map[string]any{
		"id":     jobID,
		"status": "completed",
		"output": []map[string]any{{
			"type": "message",
			"content": []map[string]any{{
				"type": "output_text",
				"text": raw,
			}},
		}},
	})
	return body
}

func TestWebhookCompletesRun(t *testing.T) {
	store := newMemStore()
	customer := seedCustomer(store)
	run := seedResearchingRun(store, customer.ID, "job-1")
	srv := newTestServer(store, &stubResearch{})

	req := httptest.NewRequest(http.MethodPost, "/webhooks/research", bytes.NewReader(completedWebhookBody("job-1")))
	rec := srv.serve(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		OK      bool   `json:"ok"`
		Outcome string `json:"outcome"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, "success", resp.Outcome)

	stored, _ := store.GetRun(context.Background(), run.ID)
	assert.Equal(t, db.RunStatusSuccess, stored.Status)
}

func TestWebhookMalformedBody(t *testing.T) {
	srv := newTestServer(newMemStore(), &stubResearch{})
	req := httptest.NewRequest(http.MethodPost, "/webhooks/research", bytes.NewReader([]byte("not json")))
	assert.Equal(t, http.StatusBadRequest, srv.serve(req).Code)
}

func TestWebhookNoMatchingRun(t *testing.T) {
	srv := newTestServer(newMemStore(), &stubResearch{})

	req := httptest.NewRequest(http.MethodPost, "/webhooks/research", bytes.NewReader(completedWebhookBody("unknown-job")))
	rec := srv.serve(req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		OK      bool   `json:"ok"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, "No matching run found", resp.Message)
}

func TestWebhookAlreadyProcessedRun(t *testing.T) {
	store := newMemStore()
	customer := seedCustomer(store)
	run := seedResearchingRun(store, customer.ID, "job-1")
	now := time.Now().UTC()
	store.mu.Lock()
	store.runs[run.ID].Status = db.RunStatusSuccess
	store.runs[run.ID].FinishedAt = &now
	store.mu.Unlock()

	srv := newTestServer(store, &stubResearch{})

	req := httptest.NewRequest(http.MethodPost, "/webhooks/research", bytes.NewReader(completedWebhookBody("job-1")))
	rec := srv.serve(req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		OK      bool   `json:"ok"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, "Run already processed", resp.Message)
}

func TestWebhookEnvelopedCompletionFetchesOutput(t *testing.T) {
	store := newMemStore()
	customer := seedCustomer(store)
	run := seedResearchingRun(store, customer.ID, "job-1")

	raw := `{"customerNews":[],"competitorNews":[],"industryTrends":[]}`
	client := &stubResearch{status: research.StatusResult{
		JobID:  "job-1",
		Status: research.JobCompleted,
		Output: []research.OutputItem{{
			Type:    "message",
			Content: []research.ContentPiece{{Type: "output_text", Text: raw}},
		}},
	}}
	srv := newTestServer(store, client)

	// Enveloped event without the response output; the handler must fetch it.
	body := []byte(`{"id":"evt_1","type":"response.completed","data":{"id":"job-1","status":"completed"}}`)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/research", bytes.NewReader(body))
	rec := srv.serve(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	stored, _ := store.GetRun(context.Background(), run.ID)
	assert.Equal(t, db.RunStatusSuccess, stored.Status)
}

func TestWebhookOutputFetchFailureDefersToSweep(t *testing.T) {
	store := newMemStore()
	customer := seedCustomer(store)
	run := seedResearchingRun(store, customer.ID, "job-1")
	srv := newTestServer(store, &stubResearch{statusErr: fmt.Errorf("connection refused")})

	body := []byte(`{"id":"job-1","status":"completed"}`)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/research", bytes.NewReader(body))
	rec := srv.serve(req)
	require.Equal(t, http.StatusOK, rec.Code)

	stored, _ := store.GetRun(context.Background(), run.ID)
	assert.Equal(t, db.RunStatusResearching, stored.Status)
}

func TestWebhookFailedEventFailsRun(t *testing.T) {
	store := newMemStore()
	customer := seedCustomer(store)
	run := seedResearchingRun(store, customer.ID, "job-1")
	srv := newTestServer(store, &stubResearch{})

	body := []byte(`{"id":"job-1","status":"failed","last_error":{"message":"Rate limit exceeded"}}`)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/research", bytes.NewReader(body))
	rec := srv.serve(req)
	require.Equal(t, http.StatusOK, rec.Code)

	stored, _ := store.GetRun(context.Background(), run.ID)
	assert.Equal(t, db.RunStatusError, stored.Status)
	require.NotNil(t, stored.ErrorMessage)
	assert.Equal(t, "Rate limit exceeded", *stored.ErrorMessage)
}

func TestWebhookHealth(t *testing.T) {
	srv := newTestServer(newMemStore(), &stubResearch{})
	rec := srv.serve(httptest.NewRequest(http.MethodGet, "/webhooks/research", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
