package newsletter

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iterate-labs/newsletter-portal/internal/db"
)

// SweepConfig bounds one poll sweep. MaxResearchWait is the age past which a
// run still researching is actively failed instead of polled forever.
type SweepConfig struct {
	MaxResearchWait time.Duration
	Concurrency     int
}

// SweepSummary reports what one sweep did across all researching runs.
type SweepSummary struct {
	Processed        int `json:"processed"`
	Completed        int `json:"completed"`
	StillResearching int `json:"stillResearching"`
	Errored          int `json:"errored"`
}

// Sweep polls every run currently in researching and advances each through
// Observe. Runs are processed independently; one run's failure never aborts
// the sweep. No run appears twice in the listing, so concurrent workers never
// touch the same run.
func (e *Engine) Sweep(ctx context.Context, cfg SweepConfig) (SweepSummary, error) {
	runs, err := e.store.ListRunsByStatus(ctx, db.RunStatusResearching)
	if err != nil {
		return SweepSummary{}, err
	}
	log.Printf("[poll-research] found %d runs in researching status", len(runs))

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	var mu sync.Mutex
	summary := SweepSummary{Processed: len(runs)}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, run := range runs {
		g.Go(func() error {
			outcome := e.sweepRun(gCtx, run, cfg.MaxResearchWait)
			mu.Lock()
			switch outcome {
			case OutcomeCompleted:
				summary.Completed++
			case OutcomeFailed:
				summary.Errored++
			case OutcomeInProgress:
				summary.StillResearching++
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	log.Printf("[poll-research] done: %d completed, %d still researching, %d errored",
		summary.Completed, summary.StillResearching, summary.Errored)
	return summary, nil
}

func (e *Engine) sweepRun(ctx context.Context, run db.Run, maxWait time.Duration) Outcome {
	// Defensive: researching runs always carry a job id under the store invariants.
	if run.ResearchJobID == nil || *run.ResearchJobID == "" {
		log.Printf("[poll-research] run %s has no research job id, marking as error", run.ID)
		outcome, _ := e.failWith(ctx, run.ID, "missing research job id")
		return outcome
	}

	customer, err := e.store.GetCustomer(ctx, run.CustomerID)
	if err != nil {
		log.Printf("[poll-research] run %s: failed to load customer: %v", run.ID, err)
		return OutcomeInProgress
	}
	if customer == nil {
		log.Printf("[poll-research] run %s has no customer, marking as error", run.ID)
		outcome, _ := e.failWith(ctx, run.ID, "customer not found")
		return outcome
	}

	if maxWait > 0 && time.Since(run.StartedAt) > maxWait {
		outcome, _ := e.failWith(ctx, run.ID,
			"research abandoned after exceeding max wait of "+maxWait.String())
		return outcome
	}

	status, err := e.research.CheckStatus(ctx, *run.ResearchJobID)
	if err != nil {
		// Transient poll failure: the run stays researching and the next sweep retries.
		log.Printf("[poll-research] run %s: status check failed: %v", run.ID, err)
		return OutcomeInProgress
	}

	outcome, err := e.Observe(ctx, run.ID, customer, status)
	if err != nil {
		log.Printf("[poll-research] run %s: observe failed: %v", run.ID, err)
	}
	log.Printf("[poll-research] run %s for %s: %s", run.ID, customer.Name, outcome)
	return outcome
}
