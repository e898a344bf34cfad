// Package greenhouse scrapes boards.greenhouse.io board pages. Boards
// only list titles and links, so each job page is fetched once more for
// location and an advertised pay range when one is posted.
package greenhouse

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"jobfeed-engine/internal/logger"
	"jobfeed-engine/internal/scrape"
	"jobfeed-engine/internal/scrape/util"
)

type Scraper struct {
	boards   []string // boards.greenhouse.io/<slug>
	client   *util.Client
	criteria scrape.Criteria
	log      logger.Logger
}

func New(boards []string, client *util.Client, crit scrape.Criteria, log logger.Logger) *Scraper {
	return &Scraper{boards: boards, client: client, criteria: crit, log: log}
}

func (s *Scraper) Name() string { return "Greenhouse" }

func (s *Scraper) CacheKey() string {
	return util.HashKey("greenhouse", strings.Join(s.boards, ","), s.criteria.Fingerprint())
}

func (s *Scraper) Fetch(ctx context.Context) (scrape.Result, error) {
	s.log.Infof("Scraping %s for jobs...", s.Name())

	var raw []scrape.Lead
	for _, slug := range s.boards {
		leads, err := s.fetchBoard(ctx, slug)
		if err != nil {
			// one dead board shouldn't cost us the others
			s.log.Warnf("[greenhouse] board %s: %v", slug, err)
			continue
		}
		raw = append(raw, leads...)
	}

	screen := scrape.Screen{Site: s.Name(), Criteria: s.criteria, Log: s.log}
	return scrape.Result{Source: s.Name(), Leads: screen.Apply(raw)}, nil
}

func (s *Scraper) fetchBoard(ctx context.Context, slug string) ([]scrape.Lead, error) {
	boardURL := fmt.Sprintf("https://boards.greenhouse.io/%s", slug)

	res, err := s.client.Get(ctx, boardURL)
	if err != nil {
		return nil, fmt.Errorf("get board: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("board status %d", res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("parse board html: %w", err)
	}

	company := boardCompanyName(doc, slug)

	// Board pages link each opening as /<slug>/jobs/<id> or absolute
	seen := map[string]bool{}
	var leads []scrape.Lead
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}

		abs := href
		if strings.HasPrefix(href, "/") {
			abs = "https://boards.greenhouse.io" + href
		}
		low := strings.ToLower(abs)
		if !strings.Contains(low, "boards.greenhouse.io") || !strings.Contains(low, "/jobs/") {
			return
		}
		if extractJobID(abs) == "" {
			return
		}

		link := util.CanonicalizeURL(abs)
		if seen[link] {
			return
		}
		seen[link] = true

		title := util.CleanText(a.Text())
		if looksLikeJunkTitle(title) {
			// the job page carries the real title
			title = ""
		}

		leads = append(leads, scrape.Lead{
			Title:   title,
			Company: company,
			Link:    link,
			Source:  s.Name(),
		})
	})

	// Hydrate title/location/salary from each job page
	for i := range leads {
		if err := s.hydrateLead(ctx, &leads[i]); err != nil && ctx.Err() != nil {
			return leads[:i], ctx.Err()
		}
	}

	// Drop entries that never produced a title; they're nav links
	kept := leads[:0]
	for _, l := range leads {
		if l.Title != "" {
			kept = append(kept, l)
		}
	}
	return kept, nil
}

func (s *Scraper) hydrateLead(ctx context.Context, l *scrape.Lead) error {
	res, err := s.client.Get(ctx, l.Link)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return fmt.Errorf("job page status %d", res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return err
	}

	if l.Title == "" {
		l.Title = util.CleanText(doc.Find("h1").First().Text())
	}

	loc := util.CleanText(doc.Find(".location").First().Text())
	if loc == "" {
		loc = findLabeledLocation(doc)
	}
	l.Location = util.NormalizeLocation(loc)

	// Pay transparency ranges show up in the posting body
	body := util.CleanText(doc.Find("#content").First().Text())
	if body == "" {
		body = util.CleanText(doc.Find("body").Text())
	}
	l.Salary = util.ParseSalaryText(util.FindSalaryText(body))

	return nil
}

func boardCompanyName(doc *goquery.Document, slug string) string {
	if v, ok := doc.Find(`meta[property="og:site_name"]`).Attr("content"); ok {
		if name := util.CleanText(v); name != "" {
			return name
		}
	}
	h1 := util.CleanText(doc.Find("h1").First().Text())
	h1 = strings.TrimSpace(strings.TrimPrefix(h1, "Jobs at"))
	if h1 != "" && len(h1) <= 60 {
		return h1
	}
	// fall back to the slug with a capital
	if slug == "" {
		return ""
	}
	return strings.ToUpper(slug[:1]) + slug[1:]
}

func findLabeledLocation(doc *goquery.Document) string {
	for _, sel := range []string{
		".job__location",
		"[data-testid='job-location']",
		"[data-testid='location']",
	} {
		if t := util.CleanText(doc.Find(sel).First().Text()); t != "" {
			return t
		}
	}

	if v, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok {
		if loc := locationAfterLabel(v); loc != "" {
			return loc
		}
	}
	// raw text keeps the newlines the label cut needs
	return locationAfterLabel(doc.Find("body").Text())
}

// locationAfterLabel extracts what follows "Location:" style labels in
// plain text.
func locationAfterLabel(s string) string {
	low := strings.ToLower(s)
	for _, lab := range []string{"location:", "locations:", "job location:"} {
		i := strings.Index(low, lab)
		if i < 0 {
			continue
		}
		rest := strings.TrimSpace(s[i+len(lab):])
		for _, cut := range []string{"\n", "\r", " | ", " · "} {
			if j := strings.Index(rest, cut); j >= 0 {
				rest = rest[:j]
			}
		}
		rest = util.CleanText(rest)
		if rest != "" && len(rest) <= 80 {
			return rest
		}
	}
	return ""
}

func extractJobID(u string) string {
	parts := strings.Split(u, "/jobs/")
	if len(parts) < 2 {
		return ""
	}
	id := ""
	for _, r := range parts[1] {
		if r >= '0' && r <= '9' {
			id += string(r)
		} else {
			break
		}
	}
	return id
}

func looksLikeJunkTitle(t string) bool {
	l := strings.ToLower(t)
	return l == "" || strings.Contains(l, "view") || strings.Contains(l, "apply")
}
