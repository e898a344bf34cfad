package scrape

import (
	"context"
	"time"

	"jobfeed-engine/internal/domain"
)

// Lead is one raw posting as a site handed it over. Salary is the
// advertised annual figure in whole units, 0 when the ad names none.
type Lead struct {
	Title    string     `json:"title"`
	Company  string     `json:"company"`
	Link     string     `json:"link"`
	Location string     `json:"location"`
	Salary   int        `json:"salary,omitempty"`
	Source   string     `json:"source"`
	PostedAt *time.Time `json:"posted_at,omitempty"`
}

// ToPosting carries the lead into the pipeline's posting type. Identity
// fields copy over verbatim; nothing is trimmed or folded here.
func (l Lead) ToPosting() domain.JobPosting {
	return domain.JobPosting{
		Title:    l.Title,
		Company:  l.Company,
		Link:     l.Link,
		Location: l.Location,
		Source:   l.Source,
	}
}

// Result is one site's contribution to a pass. Leads have already been
// screened against the configured criteria by the site itself.
type Result struct {
	Source string `json:"source"`
	Leads  []Lead `json:"leads"`
}

// Fetcher is a job site the aggregator can pull from. Fetch returns the
// site's matching leads; screening and the per-site log lines happen
// inside the site, the way the rest of the pipeline expects.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context) (Result, error)
}

// ResultCache lets closely spaced passes skip a site that was pulled
// moments ago. Sites opt in by exposing a cache key.
type ResultCache interface {
	GetLeads(ctx context.Context, key string) ([]Lead, bool)
	PutLeads(ctx context.Context, key string, leads []Lead)
}

// CacheKeyer marks a Fetcher whose results are safe to reuse across
// passes. Incremental sources (mail) must not implement it.
type CacheKeyer interface {
	CacheKey() string
}
