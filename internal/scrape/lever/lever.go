// Package lever pulls postings from the public Lever API,
// api.lever.co/v0/postings/<slug>?mode=json. The JSON carries location
// and the ad body, so no page hydration is needed.
package lever

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"jobfeed-engine/internal/logger"
	"jobfeed-engine/internal/scrape"
	"jobfeed-engine/internal/scrape/util"
)

type Scraper struct {
	boards   []string // api.lever.co/v0/postings/<slug>
	client   *util.Client
	criteria scrape.Criteria
	log      logger.Logger
}

func New(boards []string, client *util.Client, crit scrape.Criteria, log logger.Logger) *Scraper {
	return &Scraper{boards: boards, client: client, criteria: crit, log: log}
}

func (s *Scraper) Name() string { return "Lever" }

func (s *Scraper) CacheKey() string {
	return util.HashKey("lever", strings.Join(s.boards, ","), s.criteria.Fingerprint())
}

type leverPosting struct {
	ID         string `json:"id"`
	Text       string `json:"text"` // title
	HostedURL  string `json:"hostedUrl"`
	CreatedAt  int64  `json:"createdAt"` // ms epoch
	Categories struct {
		Location string `json:"location"`
		Team     string `json:"team"`
	} `json:"categories"`
	Description string `json:"description"` // html
}

func (s *Scraper) Fetch(ctx context.Context) (scrape.Result, error) {
	s.log.Infof("Scraping %s for jobs...", s.Name())

	const workers = 8

	leadsCh := make(chan []scrape.Lead, len(s.boards))
	workCh := make(chan string)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for slug := range workCh {
				bctx, cancel := context.WithTimeout(ctx, 20*time.Second)
				leads, err := s.fetchBoard(bctx, slug)
				cancel()

				if err != nil {
					s.log.Warnf("[lever] board %s: %v", slug, err)
					continue
				}
				if len(leads) > 0 {
					leadsCh <- leads
				}
			}
		}()
	}

	go func() {
		defer close(workCh)
		for _, slug := range s.boards {
			select {
			case <-ctx.Done():
				return
			case workCh <- slug:
			}
		}
	}()

	wg.Wait()
	close(leadsCh)

	var raw []scrape.Lead
	for batch := range leadsCh {
		raw = append(raw, batch...)
	}

	screen := scrape.Screen{Site: s.Name(), Criteria: s.criteria, Log: s.log}
	return scrape.Result{Source: s.Name(), Leads: screen.Apply(raw)}, nil
}

func (s *Scraper) fetchBoard(ctx context.Context, slug string) ([]scrape.Lead, error) {
	apiURL := fmt.Sprintf("https://api.lever.co/v0/postings/%s?mode=json", slug)

	res, err := s.client.Get(ctx, apiURL)
	if err != nil {
		return nil, fmt.Errorf("get: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("status %d", res.StatusCode)
	}

	var postings []leverPosting
	if err := json.NewDecoder(res.Body).Decode(&postings); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	company := companyLabel(slug)

	out := make([]scrape.Lead, 0, len(postings))
	for _, p := range postings {
		if p.ID == "" || p.HostedURL == "" || strings.TrimSpace(p.Text) == "" {
			continue
		}

		var posted *time.Time
		if p.CreatedAt > 0 {
			t := time.UnixMilli(p.CreatedAt).UTC()
			posted = &t
		}

		out = append(out, scrape.Lead{
			Title:    strings.TrimSpace(p.Text),
			Company:  company,
			Link:     util.CanonicalizeURL(p.HostedURL),
			Location: util.NormalizeLocation(p.Categories.Location),
			Salary:   util.ParseSalaryText(util.FindSalaryText(p.Description)),
			Source:   s.Name(),
			PostedAt: posted,
		})
	}
	return out, nil
}

// companyLabel turns a board slug into a display name; Lever's API
// doesn't carry one.
func companyLabel(slug string) string {
	if slug == "" {
		return ""
	}
	return strings.ToUpper(slug[:1]) + slug[1:]
}
