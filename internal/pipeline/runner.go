package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"jobfeed-engine/internal/dedup"
	"jobfeed-engine/internal/domain"
	"jobfeed-engine/internal/events"
	"jobfeed-engine/internal/logger"
)

// ErrRunInProgress means a pass was requested while one is mid-flight.
var ErrRunInProgress = errors.New("run already in progress")

// Aggregator produces the screened postings of one pass.
type Aggregator interface {
	Run(ctx context.Context) []domain.JobPosting
}

// Enricher fills postings in place and returns the same batch.
type Enricher interface {
	Enrich(ctx context.Context, batch []domain.JobPosting) []domain.JobPosting
}

// Sink is the durable store behind the pipeline.
type Sink interface {
	LoadExisting(ctx context.Context) ([]domain.JobKey, error)
	Append(ctx context.Context, postings []domain.JobPosting) (int, error)
}

// Summary is what one pass amounted to.
type Summary struct {
	RunID      string    `json:"run_id"`
	Started    time.Time `json:"started"`
	Finished   time.Time `json:"finished"`
	Status     Status    `json:"status"`
	Scraped    int       `json:"scraped"`
	AfterDedup int       `json:"after_dedup"`
	Enriched   int       `json:"enriched"`
	Stored     int       `json:"stored"`
	Error      string    `json:"error,omitempty"`
}

// Runner executes passes one at a time. Each pass is independent: the
// only state carried across passes is whatever the sink persists.
type Runner struct {
	Aggregator Aggregator
	Enricher   Enricher
	Sink       Sink
	Log        logger.Logger
	Events     *events.Hub // optional

	mu     sync.Mutex
	status Status
	last   *Summary
}

func NewRunner(agg Aggregator, enr Enricher, sink Sink, log logger.Logger, hub *events.Hub) *Runner {
	return &Runner{
		Aggregator: agg,
		Enricher:   enr,
		Sink:       sink,
		Log:        log,
		Events:     hub,
		status:     StatusIdle,
	}
}

// Status returns the runner's current state.
func (r *Runner) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Running reports whether a pass is mid-flight.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status.running()
}

// LastSummary returns the most recently finished pass, if any.
func (r *Runner) LastSummary() (Summary, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == nil {
		return Summary{}, false
	}
	return *r.last, true
}

// Run executes one full pass. A second concurrent call fails fast with
// ErrRunInProgress instead of queueing.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	sum := Summary{
		RunID:   fmt.Sprintf("run-%s", time.Now().UTC().Format("20060102-150405")),
		Started: time.Now().UTC(),
	}

	if err := r.begin(); err != nil {
		return sum, err
	}
	r.publish(sum.RunID, "run.started", nil)

	r.Log.Infof("Job Aggregator Bot started.")

	batch := r.Aggregator.Run(ctx)
	sum.Scraped = len(batch)

	if err := r.advance(sum.RunID, StatusEnriching); err != nil {
		return r.fail(sum, err), err
	}

	existing, err := r.Sink.LoadExisting(ctx)
	if err != nil {
		err = fmt.Errorf("load existing postings: %w", err)
		return r.fail(sum, err), err
	}
	ix := dedup.NewIndex(existing...)
	fresh := ix.Filter(batch)
	sum.AfterDedup = len(fresh)
	r.Log.Infof("Jobs after dedup: %d", len(fresh))

	fresh = r.Enricher.Enrich(ctx, fresh)
	for _, p := range fresh {
		if p.Enriched() {
			sum.Enriched++
		}
	}
	r.Log.Infof("Jobs enriched: %d", sum.Enriched)

	if err := r.advance(sum.RunID, StatusPersisting); err != nil {
		return r.fail(sum, err), err
	}

	stored, err := r.Sink.Append(ctx, fresh)
	if err != nil {
		err = fmt.Errorf("append to sink: %w", err)
		return r.fail(sum, err), err
	}
	sum.Stored = stored
	r.Log.Infof("Enriched and stored %d new jobs.", stored)

	r.Log.Infof("Job Aggregator Bot finished.")
	return r.finish(sum), nil
}

// begin claims the runner and moves to AGGREGATING.
func (r *Runner) begin() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status.running() {
		return ErrRunInProgress
	}
	if !IsTransitionAllowed(r.status, StatusAggregating) {
		return invalidTransition(r.status, StatusAggregating)
	}
	r.status = StatusAggregating
	return nil
}

func (r *Runner) advance(runID string, to Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !IsTransitionAllowed(r.status, to) {
		return invalidTransition(r.status, to)
	}
	r.status = to
	r.publish(runID, "run.state", map[string]string{"status": string(to)})
	return nil
}

func (r *Runner) finish(sum Summary) Summary {
	sum.Finished = time.Now().UTC()
	sum.Status = StatusDone

	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = StatusDone
	r.last = &sum
	r.publish(sum.RunID, "run.finished", sum)
	return sum
}

func (r *Runner) fail(sum Summary, cause error) Summary {
	sum.Finished = time.Now().UTC()
	sum.Status = StatusFailed
	sum.Error = cause.Error()

	r.Log.Errorf("Run failed: %v", cause)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = StatusFailed
	r.last = &sum
	r.publish(sum.RunID, "run.failed", sum)
	return sum
}

func (r *Runner) publish(runID, typ string, data any) {
	if r.Events != nil {
		r.Events.Publish(runID, typ, data)
	}
}
