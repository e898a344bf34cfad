package scrape

import (
	"fmt"
	"strings"

	"jobfeed-engine/internal/config"
	"jobfeed-engine/internal/logger"
)

// Criteria is what the user asked for, lifted out of the config once
// per pass.
type Criteria struct {
	Keywords  []string
	Location  string
	MinSalary int
}

func CriteriaFromConfig(cfg config.Config) Criteria {
	min, _ := cfg.SalaryBounds()
	return Criteria{
		Keywords:  cfg.JobKeywords,
		Location:  cfg.Location,
		MinSalary: min,
	}
}

// Fingerprint identifies the criteria inside cache keys, so a config
// edit invalidates cached results.
func (c Criteria) Fingerprint() string {
	return fmt.Sprintf("%s|%s|%d", strings.Join(c.Keywords, ","), c.Location, c.MinSalary)
}

// Match checks one lead and returns every reason it fails. An empty
// keyword list matches every title; an empty configured location or a
// lead without one skips the location check; a lead without an
// advertised salary skips the salary check.
func (c Criteria) Match(l Lead) (keep bool, reasons []string) {
	if c.Location != "" && l.Location != "" && !locationMatches(c.Location, l.Location) {
		reasons = append(reasons, fmt.Sprintf("location mismatch (expected '%s', got '%s')", c.Location, l.Location))
	}

	if c.MinSalary > 0 && l.Salary > 0 && l.Salary < c.MinSalary {
		reasons = append(reasons, fmt.Sprintf("salary below minimum (expected >= %d, got %d)", c.MinSalary, l.Salary))
	}

	if len(c.Keywords) > 0 && !matchesAnyKeyword(c.Keywords, l.Title) {
		reasons = append(reasons, fmt.Sprintf("title matches no configured keyword (got '%s')", l.Title))
	}

	return len(reasons) == 0, reasons
}

func locationMatches(want, got string) bool {
	w := strings.ToLower(strings.TrimSpace(want))
	g := strings.ToLower(strings.TrimSpace(got))
	// "Remote - EMEA" still counts as Remote
	return g == w || strings.Contains(g, w)
}

func matchesAnyKeyword(keywords []string, title string) bool {
	t := strings.ToLower(title)
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if strings.Contains(t, k) {
			return true
		}
	}
	return false
}

// Screen applies the criteria to a site's raw leads and emits the
// found/matched/rejected lines the dashboards parse. Sites call it at
// the end of Fetch, after scraping and before handing leads back.
type Screen struct {
	Site     string
	Criteria Criteria
	Log      logger.Logger
}

type rejected struct {
	title   string
	reasons []string
}

func (s Screen) Apply(leads []Lead) []Lead {
	s.Log.Infof("%s: %d jobs found before filtering.", s.Site, len(leads))

	var kept []Lead
	var dropped []rejected
	for _, l := range leads {
		ok, reasons := s.Criteria.Match(l)
		if ok {
			kept = append(kept, l)
			continue
		}
		dropped = append(dropped, rejected{title: l.Title, reasons: reasons})
	}

	s.Log.Infof("%s: %d jobs matched all criteria.", s.Site, len(kept))
	if len(dropped) > 0 {
		s.Log.Infof("%s: %d jobs rejected. Reasons:", s.Site, len(dropped))
		for _, r := range dropped {
			for _, reason := range r.reasons {
				s.Log.Infof("  - Job '%s' rejected: %s", r.title, reason)
			}
		}
	}
	return kept
}
