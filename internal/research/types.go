// Package research provides the client and payload handling for the external
// deep research provider. Research jobs run in the background on the provider
// side; this package only submits jobs, polls their status, and turns finished
// output into a validated payload.
package research

import "errors"

// JobStatus is the normalized lifecycle state of an external research job.
type JobStatus string

// Normalized job statuses. The provider reports "queued" for jobs that have
// not started; we fold that into JobPending.
const (
	JobPending    JobStatus = "pending"
	JobInProgress JobStatus = "in_progress"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
	JobCancelled  JobStatus = "cancelled"
	JobExpired    JobStatus = "expired"
)

// Terminal reports whether the status is one the provider will never advance past.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobCompleted, JobFailed, JobCancelled, JobExpired:
		return true
	}
	return false
}

// ContentPiece is one content fragment inside a provider output item.
type ContentPiece struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// OutputItem is one item of the provider's raw job output.
type OutputItem struct {
	Type    string         `json:"type"`
	Content []ContentPiece `json:"content,omitempty"`
}

// StatusResult is a single non-blocking observation of a research job.
// Output is only populated for completed jobs; ErrorMessage only for failed ones.
type StatusResult struct {
	JobID        string
	Status       JobStatus
	Output       []OutputItem
	ErrorMessage string
}

// Profile carries the customer fields the research prompt is built from.
type Profile struct {
	Name         string
	Industry     string
	SubVerticals []string
	Priorities   []string
	Initiatives  string
	Keywords     []string
	Competitors  []string
}

// Finding is a single research result item. All fields are optional strings;
// normalization downstream decides what is usable.
type Finding struct {
	Title       string `json:"title,omitempty"`
	Summary     string `json:"summary,omitempty"`
	URL         string `json:"url,omitempty"`
	Source      string `json:"source,omitempty"`
	PublishedAt string `json:"publishedAt,omitempty"`
}

// Payload is the structured research result: three categorized finding lists.
type Payload struct {
	CustomerNews   []Finding `json:"customerNews"`
	CompetitorNews []Finding `json:"competitorNews"`
	IndustryTrends []Finding `json:"industryTrends"`
}

// Extraction error taxonomy. Callers match with errors.Is.
var (
	// ErrEmptyOutput indicates the completed job produced no text output.
	ErrEmptyOutput = errors.New("research output contained no text")
	// ErrMalformedJSON indicates the output text could not be parsed as JSON.
	ErrMalformedJSON = errors.New("failed to parse JSON from research output")
	// ErrMissingSections indicates the parsed payload lacks a required finding array.
	ErrMissingSections = errors.New("research payload missing required sections")
)
