package scrape_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"jobfeed-engine/internal/logger"
	"jobfeed-engine/internal/scrape"
)

type fakeSite struct {
	name   string
	leads  []scrape.Lead
	err    error
	delay  time.Duration
	calls  atomic.Int32
	cacheK string
}

func (f *fakeSite) Name() string { return f.name }

func (f *fakeSite) Fetch(ctx context.Context) (scrape.Result, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return scrape.Result{}, ctx.Err()
		}
	}
	if f.err != nil {
		return scrape.Result{}, f.err
	}
	return scrape.Result{Source: f.name, Leads: f.leads}, nil
}

func (f *fakeSite) CacheKey() string { return f.cacheK }

type mapCache struct {
	m map[string][]scrape.Lead
}

func (c *mapCache) GetLeads(_ context.Context, key string) ([]scrape.Lead, bool) {
	leads, ok := c.m[key]
	return leads, ok
}

func (c *mapCache) PutLeads(_ context.Context, key string, leads []scrape.Lead) {
	c.m[key] = leads
}

func lead(title, company, link string) scrape.Lead {
	return scrape.Lead{Title: title, Company: company, Link: link, Source: "test"}
}

// ── Failure tolerance ──

func TestRunSurvivesFailingSite(t *testing.T) {
	log := logger.NewCapture()
	a := &scrape.Aggregator{
		Fetchers: []scrape.Fetcher{
			&fakeSite{name: "Greenhouse", leads: []scrape.Lead{lead("A1", "Acme", "l1"), lead("A2", "Acme", "l2")}},
			&fakeSite{name: "Lever", err: errors.New("connection refused")},
			&fakeSite{name: "LinkedIn", leads: []scrape.Lead{lead("C1", "Cogs", "l3"), lead("C2", "Cogs", "l4")}},
		},
		Log: log,
	}

	got := a.Run(context.Background())

	if len(got) != 4 {
		t.Fatalf("postings = %d, want exactly 4", len(got))
	}
	if !log.Contains("Error scraping: Lever: connection refused") {
		t.Fatalf("failure not logged with source and cause: %v", log.Lines())
	}
	if !log.Contains("Total jobs scraped: 4") {
		t.Fatalf("missing total line: %v", log.Lines())
	}
}

func TestRunAllSitesFailIsEmptyNotFatal(t *testing.T) {
	log := logger.NewCapture()
	a := &scrape.Aggregator{
		Fetchers: []scrape.Fetcher{
			&fakeSite{name: "Greenhouse", err: errors.New("down")},
			&fakeSite{name: "Lever", err: errors.New("down")},
		},
		Log: log,
	}

	got := a.Run(context.Background())
	if len(got) != 0 {
		t.Fatalf("postings = %d, want 0", len(got))
	}
	if !log.Contains("Total jobs scraped: 0") {
		t.Fatalf("missing total line: %v", log.Lines())
	}
}

// ── Ordering ──

func TestRunKeepsRegistrationOrder(t *testing.T) {
	a := &scrape.Aggregator{
		Fetchers: []scrape.Fetcher{
			// first site finishes last; its postings must still come first
			&fakeSite{name: "Greenhouse", delay: 30 * time.Millisecond, leads: []scrape.Lead{lead("G1", "A", "g1"), lead("G2", "A", "g2")}},
			&fakeSite{name: "Lever", leads: []scrape.Lead{lead("L1", "B", "l1")}},
		},
		Log: logger.NewCapture(),
	}

	got := a.Run(context.Background())
	titles := make([]string, len(got))
	for i, p := range got {
		titles[i] = p.Title
	}
	want := []string{"G1", "G2", "L1"}
	for i := range want {
		if titles[i] != want[i] {
			t.Fatalf("order = %v, want %v", titles, want)
		}
	}
}

// ── Every site is invoked ──

func TestRunInvokesEverySiteOnce(t *testing.T) {
	sites := []*fakeSite{
		{name: "Greenhouse"},
		{name: "Lever"},
		{name: "LinkedIn"},
	}
	fetchers := make([]scrape.Fetcher, len(sites))
	for i, s := range sites {
		fetchers[i] = s
	}

	a := &scrape.Aggregator{Fetchers: fetchers, Log: logger.NewCapture()}
	a.Run(context.Background())

	for _, s := range sites {
		if n := s.calls.Load(); n != 1 {
			t.Fatalf("%s invoked %d times, want 1", s.name, n)
		}
	}
}

// ── Cache ──

func TestRunServesFromCache(t *testing.T) {
	cache := &mapCache{m: map[string][]scrape.Lead{}}
	site := &fakeSite{name: "Greenhouse", cacheK: "gh:v1", leads: []scrape.Lead{lead("G1", "A", "g1")}}

	log := logger.NewCapture()
	a := &scrape.Aggregator{Fetchers: []scrape.Fetcher{site}, Log: log, Cache: cache}

	first := a.Run(context.Background())
	second := a.Run(context.Background())

	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("runs = %d, %d postings; want 1 each", len(first), len(second))
	}
	if n := site.calls.Load(); n != 1 {
		t.Fatalf("site fetched %d times, want 1 (second run cached)", n)
	}
	if !log.Contains("served from cache") {
		t.Fatalf("cache hit not logged: %v", log.Lines())
	}
}

func TestRunUncachedWhenNoKey(t *testing.T) {
	cache := &mapCache{m: map[string][]scrape.Lead{}}
	site := &fakeSite{name: "LinkedIn", leads: []scrape.Lead{lead("M1", "A", "m1")}}

	a := &scrape.Aggregator{Fetchers: []scrape.Fetcher{site}, Log: logger.NewCapture(), Cache: cache}
	a.Run(context.Background())
	a.Run(context.Background())

	if n := site.calls.Load(); n != 2 {
		t.Fatalf("keyless site fetched %d times, want 2", n)
	}
}
