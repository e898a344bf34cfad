package lever

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"jobfeed-engine/internal/logger"
	"jobfeed-engine/internal/scrape"
	"jobfeed-engine/internal/scrape/util"
)

type rewriteTransport struct{ target string }

func (rt rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	u, err := url.Parse(rt.target)
	if err != nil {
		return nil, err
	}
	req.URL.Scheme = u.Scheme
	req.URL.Host = u.Host
	return http.DefaultTransport.RoundTrip(req)
}

func testClient(srv *httptest.Server) *util.Client {
	return util.NewClientWith(
		&http.Client{Transport: rewriteTransport{target: srv.URL}},
		util.NewHostLimiter(1000, 1000),
	)
}

const netlifyPostings = `[
  {
    "id": "a1",
    "text": "Senior Platform Engineer",
    "hostedUrl": "https://jobs.lever.co/netlify/a1",
    "createdAt": 1755216000000,
    "categories": {"location": "Remote"},
    "description": "<p>Build the edge platform.</p><p>$130,000 - $160,000 / year</p>"
  },
  {
    "id": "a2",
    "text": "Office Coordinator",
    "hostedUrl": "https://jobs.lever.co/netlify/a2",
    "categories": {"location": "Remote"},
    "description": "<p>Front desk and events.</p>"
  },
  {
    "id": "a3",
    "text": "",
    "hostedUrl": "https://jobs.lever.co/netlify/a3"
  }
]`

func TestFetchDecodesAndScreens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v0/postings/netlify" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("mode") != "json" {
			t.Errorf("mode param missing: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(netlifyPostings))
	}))
	defer srv.Close()

	log := &logger.Capture{}
	crit := scrape.Criteria{Keywords: []string{"Engineer"}, Location: "Remote"}
	s := New([]string{"netlify"}, testClient(srv), crit, log)

	if s.Name() != "Lever" {
		t.Fatalf("Name() = %q", s.Name())
	}

	res, err := s.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if res.Source != "Lever" {
		t.Errorf("source = %q", res.Source)
	}
	if len(res.Leads) != 1 {
		t.Fatalf("got %d leads, want 1: %+v", len(res.Leads), res.Leads)
	}

	lead := res.Leads[0]
	if lead.Title != "Senior Platform Engineer" || lead.Company != "Netlify" {
		t.Errorf("lead = %+v", lead)
	}
	if lead.Link != "https://jobs.lever.co/netlify/a1" {
		t.Errorf("link = %q", lead.Link)
	}
	if lead.Salary != 130000 {
		t.Errorf("salary = %d, want 130000", lead.Salary)
	}
	if lead.PostedAt == nil || !lead.PostedAt.Equal(time.UnixMilli(1755216000000).UTC()) {
		t.Errorf("postedAt = %v", lead.PostedAt)
	}

	// titleless posting a3 is dropped before screening
	if !log.Contains("Lever: 2 jobs found before filtering.") {
		t.Error("missing found line")
	}
	if !log.Contains("Lever: 1 jobs matched all criteria.") {
		t.Error("missing matched line")
	}
	if !log.Contains("Job 'Office Coordinator' rejected") {
		t.Error("missing rejection detail")
	}
}

func TestFetchSurvivesDeadBoard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v0/postings/netlify" {
			w.Write([]byte(netlifyPostings))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	log := &logger.Capture{}
	s := New([]string{"missing", "netlify"}, testClient(srv), scrape.Criteria{}, log)

	res, err := s.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(res.Leads) != 2 {
		t.Fatalf("got %d leads, want 2", len(res.Leads))
	}
	if !log.Contains("board missing") {
		t.Error("dead board warning missing")
	}
}

func TestCompanyLabel(t *testing.T) {
	if got := companyLabel("netlify"); got != "Netlify" {
		t.Errorf("companyLabel = %q", got)
	}
	if got := companyLabel(""); got != "" {
		t.Errorf("companyLabel(\"\") = %q", got)
	}
}
