package research

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client is the contract for the external deep research provider.
// All calls are single round-trips; looping and backoff belong to the caller.
type Client interface {
	// Start submits a background research job and returns its opaque job id.
	Start(ctx context.Context, profile Profile) (string, error)
	// CheckStatus performs one non-blocking status poll.
	CheckStatus(ctx context.Context, jobID string) (StatusResult, error)
	// FetchDiagnostics retrieves a human-readable description of a failed job.
	// Best effort, for operator logging only.
	FetchDiagnostics(ctx context.Context, jobID string) (string, error)
}

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "o4-mini-deep-research"
	defaultTimeout = 30 * time.Second
)

// ClientConfig configures the HTTP research client. Timeout bounds a single
// API call; it is not the job's overall wait budget.
type ClientConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// HTTPClient talks to the provider's background responses API.
type HTTPClient struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
}

// NewClient creates a research client. Missing config fields use defaults.
func NewClient(cfg ClientConfig) (*HTTPClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("research API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &HTTPClient{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type createJobRequest struct {
	Model      string    `json:"model"`
	Input      string    `json:"input"`
	Background bool      `json:"background"`
	Tools      []jobTool `json:"tools"`
}

type jobTool struct {
	Type string `json:"type"`
}

// providerResponse mirrors the fields we read from the provider's response object.
type providerResponse struct {
	ID        string        `json:"id"`
	Status    string        `json:"status"`
	Output    []OutputItem  `json:"output,omitempty"`
	Error     *providerFail `json:"error,omitempty"`
	LastError *providerFail `json:"last_error,omitempty"`
}

type providerFail struct {
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

// Start submits a background research job built from the customer profile.
func (c *HTTPClient) Start(ctx context.Context, profile Profile) (string, error) {
	body := createJobRequest{
		Model:      c.model,
		Input:      BuildPrompt(profile),
		Background: true,
		Tools:      []jobTool{{Type: "web_search_preview"}},
	}

	resp, err := c.do(ctx, http.MethodPost, c.baseURL+"/responses", body)
	if err != nil {
		return "", fmt.Errorf("failed to submit research job: %w", err)
	}
	if resp.ID == "" {
		return "", fmt.Errorf("research submission returned no job id")
	}
	return resp.ID, nil
}

// CheckStatus performs a single status poll and normalizes the result.
func (c *HTTPClient) CheckStatus(ctx context.Context, jobID string) (StatusResult, error) {
	resp, err := c.do(ctx, http.MethodGet, c.baseURL+"/responses/"+jobID, nil)
	if err != nil {
		return StatusResult{}, fmt.Errorf("failed to check research job %s: %w", jobID, err)
	}
	return normalizeResponse(resp), nil
}

// FetchDiagnostics returns a short description of the job's terminal state.
func (c *HTTPClient) FetchDiagnostics(ctx context.Context, jobID string) (string, error) {
	resp, err := c.do(ctx, http.MethodGet, c.baseURL+"/responses/"+jobID, nil)
	if err != nil {
		return "", fmt.Errorf("failed to fetch diagnostics for job %s: %w", jobID, err)
	}
	msg := failureMessage(resp)
	if msg == "" {
		msg = "no error details reported"
	}
	return fmt.Sprintf("job %s status=%s: %s", jobID, resp.Status, msg), nil
}

func (c *HTTPClient) do(ctx context.Context, method, url string, payload any) (*providerResponse, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	httpResp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		var apiErr struct {
			Error *providerFail `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("provider returned %d: %s", httpResp.StatusCode, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("provider returned %d", httpResp.StatusCode)
	}

	var resp providerResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode provider response: %w", err)
	}
	return &resp, nil
}

// normalizeResponse folds the provider's raw status vocabulary into StatusResult.
// "queued" becomes pending and "incomplete" is treated as a failure, since the
// provider will not finish such a job.
func normalizeResponse(resp *providerResponse) StatusResult {
	result := StatusResult{JobID: resp.ID}

	switch resp.Status {
	case "queued", "pending", "":
		result.Status = JobPending
	case "in_progress":
		result.Status = JobInProgress
	case "completed":
		result.Status = JobCompleted
		result.Output = resp.Output
	case "cancelled":
		result.Status = JobCancelled
		result.ErrorMessage = failureMessage(resp)
	case "expired":
		result.Status = JobExpired
		result.ErrorMessage = failureMessage(resp)
	case "incomplete":
		result.Status = JobFailed
		result.ErrorMessage = failureMessage(resp)
		if result.ErrorMessage == "" {
			result.ErrorMessage = "research incomplete"
		}
	default: // "failed" and anything unrecognized
		result.Status = JobFailed
		result.ErrorMessage = failureMessage(resp)
	}

	if result.Status == JobFailed && result.ErrorMessage == "" {
		result.ErrorMessage = "research " + resp.Status
	}
	return result
}

func failureMessage(resp *providerResponse) string {
	if resp.LastError != nil && resp.LastError.Message != "" {
		return resp.LastError.Message
	}
	if resp.Error != nil && resp.Error.Message != "" {
		return resp.Error.Message
	}
	return ""
}
