package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"jobfeed-engine/internal/domain"
	"jobfeed-engine/internal/events"
	"jobfeed-engine/internal/logger"
	"jobfeed-engine/internal/pipeline"
)

// ── fakes ──────────────────────────────────────────────────────────────────

type fakeAggregator struct {
	batch []domain.JobPosting
	calls int
}

func (f *fakeAggregator) Run(ctx context.Context) []domain.JobPosting {
	f.calls++
	return append([]domain.JobPosting(nil), f.batch...)
}

type fakeEnricher struct {
	fill  bool
	calls int
}

func (f *fakeEnricher) Enrich(ctx context.Context, batch []domain.JobPosting) []domain.JobPosting {
	f.calls++
	for i := range batch {
		if f.fill {
			batch[i].SetCompanyInfo(&domain.CompanyProfile{Industry: "Software"})
			batch[i].SetSalaryInfo(&domain.SalaryBenchmark{
				AvgSalary: 100000, Currency: "USD", Comparison: domain.SalaryWithin,
			})
		}
		batch[i].StampScraped(time.Now())
	}
	return batch
}

// fakeSink remembers appends and reports their keys back on the next
// LoadExisting, like the real ledger does.
type fakeSink struct {
	existing  []domain.JobKey
	loadErr   error
	appendErr error

	appended []domain.JobPosting
	loads    int
}

func (f *fakeSink) LoadExisting(ctx context.Context) ([]domain.JobKey, error) {
	f.loads++
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	keys := append([]domain.JobKey(nil), f.existing...)
	for i := range f.appended {
		keys = append(keys, f.appended[i].Identity())
	}
	return keys, nil
}

func (f *fakeSink) Append(ctx context.Context, postings []domain.JobPosting) (int, error) {
	if f.appendErr != nil {
		return 0, f.appendErr
	}
	f.appended = append(f.appended, postings...)
	return len(postings), nil
}

func posting(title, company, link, source string) domain.JobPosting {
	return domain.JobPosting{Title: title, Company: company, Link: link, Location: "Remote", Source: source}
}

// ── Run — a full successful pass ───────────────────────────────────────────

func TestRun_FullPass(t *testing.T) {
	batch := []domain.JobPosting{
		posting("Backend Engineer", "Acme", "https://acme.example/jobs/1", "Greenhouse"),
		posting("SRE", "Initech", "https://initech.example/jobs/9", "Lever"),
		// same triple again from another source: not in the sink yet, so
		// both copies pass dedup and the sink's identity index decides
		posting("Backend Engineer", "Acme", "https://acme.example/jobs/1", "LinkedIn"),
		// already in the sink from an earlier pass
		posting("Data Analyst", "Hooli", "https://hooli.example/jobs/4", "Greenhouse"),
	}
	sink := &fakeSink{existing: []domain.JobKey{
		{Title: "Data Analyst", Company: "Hooli", Link: "https://hooli.example/jobs/4"},
	}}
	log := logger.NewCapture()
	r := pipeline.NewRunner(&fakeAggregator{batch: batch}, &fakeEnricher{fill: true}, sink, log, nil)

	sum, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned unexpected error: %v", err)
	}

	if sum.Status != pipeline.StatusDone {
		t.Errorf("summary status = %s, want DONE", sum.Status)
	}
	if sum.Scraped != 4 || sum.AfterDedup != 3 || sum.Enriched != 3 || sum.Stored != 3 {
		t.Errorf("summary counts = %d/%d/%d/%d, want 4/3/3/3",
			sum.Scraped, sum.AfterDedup, sum.Enriched, sum.Stored)
	}
	if sum.RunID == "" || sum.Finished.Before(sum.Started) {
		t.Errorf("summary bookkeeping off: id %q, started %v, finished %v", sum.RunID, sum.Started, sum.Finished)
	}

	// survivors keep aggregation order, the in-batch repeat included
	if len(sink.appended) != 3 {
		t.Fatalf("sink received %d postings, want 3", len(sink.appended))
	}
	if sink.appended[0].Title != "Backend Engineer" || sink.appended[1].Title != "SRE" {
		t.Errorf("sink order = [%s, %s, ...], want [Backend Engineer, SRE, ...]",
			sink.appended[0].Title, sink.appended[1].Title)
	}
	if sink.appended[2].Source != "LinkedIn" {
		t.Errorf("third posting source = %q, want the LinkedIn copy", sink.appended[2].Source)
	}
	for _, p := range sink.appended {
		if !p.Enriched() || p.ScrapedAt.IsZero() {
			t.Errorf("posting %q reached the sink unenriched", p.Title)
		}
	}

	for _, want := range []string{
		"Job Aggregator Bot started.",
		"Jobs after dedup: 3",
		"Jobs enriched: 3",
		"Enriched and stored 3 new jobs.",
		"Job Aggregator Bot finished.",
	} {
		if !log.Contains(want) {
			t.Errorf("log missing %q", want)
		}
	}

	if got := r.Status(); got != pipeline.StatusDone {
		t.Errorf("runner status = %s, want DONE", got)
	}
	last, ok := r.LastSummary()
	if !ok || last.RunID != sum.RunID {
		t.Errorf("LastSummary = (%v, %v), want the pass just run", last, ok)
	}
}

// ── Run — empty aggregation still finishes cleanly ─────────────────────────

func TestRun_EmptyBatch(t *testing.T) {
	sink := &fakeSink{}
	log := logger.NewCapture()
	r := pipeline.NewRunner(&fakeAggregator{}, &fakeEnricher{}, sink, log, nil)

	sum, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned unexpected error: %v", err)
	}
	if sum.Scraped != 0 || sum.AfterDedup != 0 || sum.Enriched != 0 || sum.Stored != 0 {
		t.Errorf("summary counts = %d/%d/%d/%d, want all zero",
			sum.Scraped, sum.AfterDedup, sum.Enriched, sum.Stored)
	}
	if sum.Status != pipeline.StatusDone {
		t.Errorf("summary status = %s, want DONE", sum.Status)
	}
	if !log.Contains("Enriched and stored 0 new jobs.") {
		t.Error("log missing zero-store line")
	}
}

// ── Run — passes are independent; the sink is the only memory ──────────────

func TestRun_SecondPassDedupesAgainstSink(t *testing.T) {
	batch := []domain.JobPosting{
		posting("Backend Engineer", "Acme", "https://acme.example/jobs/1", "Greenhouse"),
		posting("SRE", "Initech", "https://initech.example/jobs/9", "Lever"),
	}
	sink := &fakeSink{}
	r := pipeline.NewRunner(&fakeAggregator{batch: batch}, &fakeEnricher{fill: true}, sink, logger.NewCapture(), nil)

	first, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("first pass: %v", err)
	}
	if first.Stored != 2 {
		t.Fatalf("first pass stored %d, want 2", first.Stored)
	}

	second, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if second.Scraped != 2 || second.AfterDedup != 0 || second.Stored != 0 {
		t.Errorf("second pass counts = %d/%d/%d, want 2/0/0",
			second.Scraped, second.AfterDedup, second.Stored)
	}
	if len(sink.appended) != 2 {
		t.Errorf("sink holds %d postings after two passes, want 2", len(sink.appended))
	}
}

// ── Run — sink failures end the pass in FAILED ─────────────────────────────

func TestRun_SinkLoadFailure(t *testing.T) {
	sink := &fakeSink{loadErr: errors.New("ledger: disk full")}
	log := logger.NewCapture()
	r := pipeline.NewRunner(&fakeAggregator{batch: []domain.JobPosting{
		posting("Backend Engineer", "Acme", "https://acme.example/jobs/1", "Greenhouse"),
	}}, &fakeEnricher{}, sink, log, nil)

	sum, err := r.Run(context.Background())
	if err == nil {
		t.Fatal("Run should fail when the sink cannot be read")
	}
	if sum.Status != pipeline.StatusFailed || sum.Error == "" {
		t.Errorf("summary = %s / %q, want FAILED with an error", sum.Status, sum.Error)
	}
	if got := r.Status(); got != pipeline.StatusFailed {
		t.Errorf("runner status = %s, want FAILED", got)
	}
	if len(sink.appended) != 0 {
		t.Errorf("sink received %d postings after a failed load", len(sink.appended))
	}
	if !log.Contains("Run failed:") {
		t.Error("log missing failure line")
	}
	if log.Contains("Job Aggregator Bot finished.") {
		t.Error("failed pass must not log the finished line")
	}
}

func TestRun_SinkAppendFailure(t *testing.T) {
	sink := &fakeSink{appendErr: errors.New("ledger: database is locked")}
	r := pipeline.NewRunner(&fakeAggregator{batch: []domain.JobPosting{
		posting("Backend Engineer", "Acme", "https://acme.example/jobs/1", "Greenhouse"),
	}}, &fakeEnricher{fill: true}, sink, logger.NewCapture(), nil)

	sum, err := r.Run(context.Background())
	if err == nil {
		t.Fatal("Run should fail when the sink rejects the batch")
	}
	if sum.Status != pipeline.StatusFailed || sum.Stored != 0 {
		t.Errorf("summary = %s with %d stored, want FAILED with 0", sum.Status, sum.Stored)
	}
}

// ── Run — recovery after a failure ─────────────────────────────────────────

func TestRun_RecoversAfterFailure(t *testing.T) {
	sink := &fakeSink{loadErr: errors.New("ledger: disk full")}
	r := pipeline.NewRunner(&fakeAggregator{batch: []domain.JobPosting{
		posting("Backend Engineer", "Acme", "https://acme.example/jobs/1", "Greenhouse"),
	}}, &fakeEnricher{fill: true}, sink, logger.NewCapture(), nil)

	if _, err := r.Run(context.Background()); err == nil {
		t.Fatal("first pass should fail")
	}

	sink.loadErr = nil
	sum, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("pass after failure: %v", err)
	}
	if sum.Status != pipeline.StatusDone || sum.Stored != 1 {
		t.Errorf("recovery pass = %s with %d stored, want DONE with 1", sum.Status, sum.Stored)
	}
}

// ── Run — a second concurrent call is rejected, not queued ─────────────────

type blockingAggregator struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingAggregator) Run(ctx context.Context) []domain.JobPosting {
	close(b.entered)
	<-b.release
	return nil
}

func TestRun_RejectsConcurrentPass(t *testing.T) {
	agg := &blockingAggregator{entered: make(chan struct{}), release: make(chan struct{})}
	r := pipeline.NewRunner(agg, &fakeEnricher{}, &fakeSink{}, logger.NewCapture(), nil)

	done := make(chan error, 1)
	go func() {
		_, err := r.Run(context.Background())
		done <- err
	}()

	<-agg.entered
	if got := r.Status(); got != pipeline.StatusAggregating {
		t.Errorf("mid-pass status = %s, want AGGREGATING", got)
	}
	if _, err := r.Run(context.Background()); !errors.Is(err, pipeline.ErrRunInProgress) {
		t.Errorf("second Run error = %v, want ErrRunInProgress", err)
	}

	close(agg.release)
	if err := <-done; err != nil {
		t.Fatalf("first pass: %v", err)
	}
	if got := r.Status(); got != pipeline.StatusDone {
		t.Errorf("post-pass status = %s, want DONE", got)
	}
}

// ── Run — lifecycle events reach subscribers ───────────────────────────────

func TestRun_PublishesLifecycle(t *testing.T) {
	hub := events.NewHub()
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	r := pipeline.NewRunner(&fakeAggregator{batch: []domain.JobPosting{
		posting("Backend Engineer", "Acme", "https://acme.example/jobs/1", "Greenhouse"),
	}}, &fakeEnricher{fill: true}, &fakeSink{}, logger.NewCapture(), hub)

	sum, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned unexpected error: %v", err)
	}

	wantTypes := []string{"run.started", "run.state", "run.state", "run.finished"}
	var got []events.Event
	for i, want := range wantTypes {
		var evt events.Event
		select {
		case raw := <-ch:
			if err := json.Unmarshal([]byte(raw), &evt); err != nil {
				t.Fatalf("event %d does not decode: %v", i, err)
			}
		default:
			t.Fatalf("event %d (%s) never arrived", i, want)
		}
		if evt.Type != want {
			t.Errorf("event %d type = %s, want %s", i, evt.Type, want)
		}
		if evt.RunID != sum.RunID {
			t.Errorf("event %d run id = %q, want %q", i, evt.RunID, sum.RunID)
		}
		got = append(got, evt)
	}

	// the final event carries the summary
	var payload pipeline.Summary
	if err := json.Unmarshal(got[len(got)-1].Data, &payload); err != nil {
		t.Fatalf("summary payload does not decode: %v", err)
	}
	if payload.Stored != sum.Stored || payload.Status != sum.Status {
		t.Errorf("summary payload = %d/%s, want %d/%s", payload.Stored, payload.Status, sum.Stored, sum.Status)
	}
}
