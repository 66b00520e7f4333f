package newsletter

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iterate-labs/newsletter-portal/internal/db"
	"github.com/iterate-labs/newsletter-portal/internal/llm"
	"github.com/iterate-labs/newsletter-portal/internal/research"
	"github.com/iterate-labs/newsletter-portal/internal/types"
)

// defaultUpdatesLimit is how many internal update snippets are pulled into a newsletter.
const defaultUpdatesLimit = 6

// Outcome describes what an engine transition did to a run.
type Outcome string

// Transition outcomes. OutcomeSkipped means the run was already terminal and
// the call was an idempotent no-op.
const (
	OutcomeInProgress Outcome = "researching"
	OutcomeCompleted  Outcome = "success"
	OutcomeFailed     Outcome = "error"
	OutcomeSkipped    Outcome = "skipped"
)

// Synthesizer produces the finished newsletter artifact. *llm.Synthesizer is
// the production implementation.
type Synthesizer interface {
	Synthesize(ctx context.Context, customer llm.CustomerContext, findings types.NormalizedResearch, updates []types.UpdateItem) (*types.NewsletterContent, error)
}

// Exporter publishes a finished newsletter to an external document store.
// Export failures never affect a run's outcome.
type Exporter interface {
	Export(ctx context.Context, customerName string, content *types.NewsletterContent) (docID, docURL string, err error)
}

// Engine is the completion state machine for newsletter runs.
// Runs move pending -> researching -> {success | error}; success and error are
// terminal. All run and customer mutations go through the engine.
type Engine struct {
	store    Store
	research research.Client
	synth    Synthesizer
	exporter Exporter // optional; nil disables document export
}

// NewEngine creates a completion engine. exporter may be nil.
func NewEngine(store Store, researchClient research.Client, synth Synthesizer, exporter Exporter) *Engine {
	return &Engine{
		store:    store,
		research: researchClient,
		synth:    synth,
		exporter: exporter,
	}
}

// StartRun submits the external research job for a pending run and moves the
// run to researching. On submission failure the run goes straight to error;
// researching is never entered without a valid job id.
func (e *Engine) StartRun(ctx context.Context, run *db.Run, customer *db.Customer) (string, error) {
	if run.Status != db.RunStatusPending {
		return "", fmt.Errorf("run %s is not pending (status=%s)", run.ID, run.Status)
	}

	jobID, err := e.research.Start(ctx, researchProfile(customer))
	if err != nil {
		msg := fmt.Sprintf("research submission failed: %v", err)
		e.Fail(ctx, run.ID, msg)
		return "", fmt.Errorf("failed to start research for run %s: %w", run.ID, err)
	}

	ok, err := e.store.StartResearch(ctx, run.ID, jobID)
	if err != nil {
		return "", err
	}
	if !ok {
		// Another trigger already advanced this run; the submitted job will be
		// picked up by nothing and eventually expires on the provider side.
		log.Printf("[engine] run %s no longer pending, ignoring job %s", run.ID, jobID)
		return jobID, nil
	}

	log.Printf("[engine] run %s researching (customer=%s job=%s)", run.ID, customer.Name, jobID)
	return jobID, nil
}

// Observe interprets one status observation of a run's research job, from
// either the poll sweep or the webhook. It re-reads the persisted run status
// first and is a no-op for terminal runs, so racing observers cannot complete
// the same run twice.
func (e *Engine) Observe(ctx context.Context, runID uuid.UUID, customer *db.Customer, status research.StatusResult) (Outcome, error) {
	run, err := e.store.GetRun(ctx, runID)
	if err != nil {
		return OutcomeInProgress, err
	}
	if run == nil {
		return OutcomeSkipped, fmt.Errorf("run %s not found", runID)
	}
	if run.Terminal() {
		log.Printf("[engine] run %s already %s, skipping observation", run.ID, run.Status)
		return OutcomeSkipped, nil
	}

	switch status.Status {
	case research.JobPending, research.JobInProgress:
		return OutcomeInProgress, nil

	case research.JobCompleted:
		payload, rawText, err := research.Extract(status.Output)
		if err != nil {
			return e.failWith(ctx, run.ID, fmt.Sprintf("research extraction failed: %v", err))
		}
		return e.complete(ctx, run, customer, payload, rawText)

	default: // failed, cancelled, expired
		msg := status.ErrorMessage
		if msg == "" {
			msg = "research " + string(status.Status)
		}
		e.logDiagnostics(ctx, status.JobID)
		return e.failWith(ctx, run.ID, msg)
	}
}

// complete normalizes the findings, synthesizes the newsletter, and persists
// the result. The research snapshot is saved before synthesis so a synthesis
// failure does not discard finished research.
func (e *Engine) complete(ctx context.Context, run *db.Run, customer *db.Customer, payload *research.Payload, rawText string) (Outcome, error) {
	snapshot := &db.ResearchSnapshot{Structured: payload, RawText: rawText}
	if err := e.store.SaveResearchPayload(ctx, run.ID, snapshot); err != nil {
		log.Printf("[engine] run %s: failed to save research payload: %v", run.ID, err)
	}

	findings := Normalize(payload)

	updates, err := e.store.ListActiveInternalUpdates(ctx, defaultUpdatesLimit)
	if err != nil {
		return e.failWith(ctx, run.ID, fmt.Sprintf("failed to load internal updates: %v", err))
	}

	content, err := e.synth.Synthesize(ctx, customerContext(customer), findings, updateItems(updates))
	if err != nil {
		return e.failWith(ctx, run.ID, fmt.Sprintf("newsletter synthesis failed: %v", err))
	}

	now := time.Now().UTC()
	won, err := e.store.CompleteRun(ctx, run.ID, content, now)
	if err != nil {
		// Run stays researching; the next sweep retries the completion.
		return OutcomeInProgress, err
	}
	if !won {
		log.Printf("[engine] run %s completed by a racing trigger, discarding result", run.ID)
		return OutcomeSkipped, nil
	}

	if err := e.store.TouchCustomerLastRun(ctx, customer.ID, now); err != nil {
		log.Printf("[engine] run %s: failed to update customer last run: %v", run.ID, err)
	}

	e.export(ctx, run.ID, customer.Name, content)

	log.Printf("[engine] run %s success (customer=%s)", run.ID, customer.Name)
	return OutcomeCompleted, nil
}

// Fail moves a run to error. A no-op if the run is already terminal.
func (e *Engine) Fail(ctx context.Context, runID uuid.UUID, message string) {
	won, err := e.store.FailRun(ctx, runID, message, time.Now().UTC())
	if err != nil {
		log.Printf("[engine] failed to mark run %s as error: %v", runID, err)
		return
	}
	if won {
		log.Printf("[engine] run %s error: %s", runID, message)
	}
}

func (e *Engine) failWith(ctx context.Context, runID uuid.UUID, message string) (Outcome, error) {
	e.Fail(ctx, runID, message)
	return OutcomeFailed, nil
}

// export publishes the finished newsletter if an exporter is configured.
// Failures are logged and never affect the run.
func (e *Engine) export(ctx context.Context, runID uuid.UUID, customerName string, content *types.NewsletterContent) {
	if e.exporter == nil {
		return
	}
	docID, docURL, err := e.exporter.Export(ctx, customerName, content)
	if err != nil {
		log.Printf("[engine] run %s: document export failed (optional): %v", runID, err)
		return
	}
	if err := e.store.SetRunExport(ctx, runID, docID, docURL); err != nil {
		log.Printf("[engine] run %s: failed to record export reference: %v", runID, err)
	}
}

func (e *Engine) logDiagnostics(ctx context.Context, jobID string) {
	if jobID == "" {
		return
	}
	diag, err := e.research.FetchDiagnostics(ctx, jobID)
	if err != nil {
		log.Printf("[engine] diagnostics unavailable for job %s: %v", jobID, err)
		return
	}
	log.Printf("[engine] diagnostics: %s", diag)
}

func researchProfile(c *db.Customer) research.Profile {
	return research.Profile{
		Name:         c.Name,
		Industry:     c.Industry,
		SubVerticals: c.SubVerticals,
		Priorities:   c.KeyPriorities,
		Initiatives:  stringValue(c.CurrentInitiatives),
		Keywords:     c.NewsKeywords,
		Competitors:  c.Competitors,
	}
}

func customerContext(c *db.Customer) llm.CustomerContext {
	return llm.CustomerContext{
		Name:               c.Name,
		Industry:           c.Industry,
		SubVerticals:       c.SubVerticals,
		KeyPriorities:      c.KeyPriorities,
		CurrentInitiatives: stringValue(c.CurrentInitiatives),
		Tone:               c.Tone,
		SensitiveTopics:    c.SensitiveTopics,
		MaxItemsPerSection: c.MaxItemsPerSection,
	}
}

func updateItems(updates []db.InternalUpdate) []types.UpdateItem {
	items := make([]types.UpdateItem, 0, len(updates))
	for _, u := range updates {
		text := u.Title
		if u.Body != nil && *u.Body != "" {
			text = strings.TrimSpace(text + " - " + *u.Body)
		}
		items = append(items, types.UpdateItem{
			Update:    text,
			SourceURL: stringValue(u.SourceURL),
		})
	}
	return items
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
