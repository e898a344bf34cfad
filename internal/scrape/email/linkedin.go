package email

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"jobfeed-engine/internal/scrape"
	"jobfeed-engine/internal/scrape/util"
)

var reJobID = regexp.MustCompile(`/jobs/view/(\d+)`)

// parseAlertHTML extracts leads from a LinkedIn job-alert digest.
// Several anchors point at the same job (logo, title, card body), so
// candidates are merged by job id before anything is emitted.
func parseAlertHTML(htmlBody string) ([]scrape.Lead, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlBody))
	if err != nil {
		return nil, err
	}

	type candidate struct {
		lead  scrape.Lead
		order int
	}
	byID := map[string]*candidate{}
	next := 0

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if href == "" {
			return
		}

		lh := strings.ToLower(href)
		if !strings.Contains(lh, "linkedin.com") {
			return
		}
		if !strings.Contains(lh, "/jobs/view/") && !strings.Contains(lh, "/comm/jobs/view/") {
			return
		}

		jobURL := unwrapRedirect(href)
		if jobURL == "" || util.URLIsTooGeneric(jobURL) {
			return
		}

		key := jobURL
		if m := reJobID.FindStringSubmatch(jobURL); len(m) == 2 {
			key = m[1]
		}

		c, ok := byID[key]
		if !ok {
			c = &candidate{
				lead:  scrape.Lead{Link: util.CanonicalizeURL(jobURL), Source: "LinkedIn"},
				order: next,
			}
			next++
			byID[key] = c
		}

		// anchor text is the title on jobcard anchors, junk on the rest
		titleCand := stripBadTitleSuffixes(util.CleanText(a.Text()))
		if betterTitle(titleCand, c.lead.Title) {
			c.lead.Title = titleCand
		}

		// the surrounding card holds "Company · Location" and salary
		card := a.Closest("table")
		if card.Length() == 0 {
			card = a.Closest("tr")
		}
		if card.Length() == 0 {
			card = a.Parent()
		}

		card.Find("p").Each(func(_ int, p *goquery.Selection) {
			t := util.CleanText(p.Text())
			if t == "" {
				return
			}

			if c.lead.Company == "" && c.lead.Location == "" && strings.Contains(t, " · ") {
				parts := strings.SplitN(t, " · ", 2)
				c.lead.Company = strings.TrimSpace(parts[0])
				c.lead.Location = util.NormalizeLocation(parts[1])
			}

			t2 := stripBadTitleSuffixes(t)
			if !strings.Contains(t2, " · ") && betterTitle(t2, c.lead.Title) {
				c.lead.Title = t2
			}
		})

		if c.lead.Salary == 0 {
			if blob := util.FindSalaryText(util.CleanText(card.Text())); blob != "" {
				c.lead.Salary = util.ParseSalaryText(blob)
			}
		}
	})

	// emit in document order; a lead without a title is an unparsed card
	ordered := make([]*candidate, 0, len(byID))
	for _, c := range byID {
		if strings.TrimSpace(c.lead.Title) == "" {
			continue
		}
		ordered = append(ordered, c)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].order < ordered[j].order })

	out := make([]scrape.Lead, len(ordered))
	for i, c := range ordered {
		out[i] = c.lead
	}
	return out, nil
}

func looksLikeAlert(from, subj, body string) bool {
	if strings.Contains(strings.ToLower(from), "jobalerts-noreply") {
		return true
	}
	s := strings.ToLower(subj)
	if strings.Contains(s, "job alert") || strings.Contains(s, "linkedin") {
		// body check prevents false positives
		b := strings.ToLower(body)
		return strings.Contains(b, "linkedin.com/comm/jobs/view") ||
			strings.Contains(b, "linkedin.com/jobs/view")
	}
	return false
}

// unwrapRedirect follows ?url= wrappers and google /url?q= redirects to
// the job link they carry.
func unwrapRedirect(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}

	if raw := u.Query().Get("url"); raw != "" {
		if uu, err := url.Parse(raw); err == nil && uu.Host != "" {
			return uu.String()
		}
	}

	if strings.Contains(strings.ToLower(u.Host), "google.") && strings.HasPrefix(u.Path, "/url") {
		if q := u.Query().Get("q"); q != "" {
			if uu, err := url.Parse(q); err == nil && uu.Host != "" {
				return uu.String()
			}
		}
	}

	if u.Host != "" {
		return u.String()
	}
	return href
}

func stripBadTitleSuffixes(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	// badge text LinkedIn appends to card anchors
	for _, b := range []string{"Actively recruiting", "Easy Apply", "Promoted"} {
		s = strings.TrimSpace(strings.ReplaceAll(s, b, ""))
	}
	low := strings.ToLower(s)
	if strings.Contains(low, "alumni") ||
		strings.Contains(low, "connections") ||
		strings.Contains(low, "applicants") ||
		strings.Contains(low, "school") {
		return ""
	}
	return strings.Join(strings.Fields(s), " ")
}

// betterTitle decides whether a candidate should replace the current
// title. Replacement needs a clear margin to avoid flip-flopping
// between anchors of the same card.
func betterTitle(candidate, current string) bool {
	c := strings.TrimSpace(candidate)
	if c == "" {
		return false
	}
	cur := strings.TrimSpace(current)
	if cur == "" {
		return titleScore(c) >= 5
	}
	return titleScore(c) >= titleScore(cur)+3
}

func titleScore(s string) int {
	orig := strings.TrimSpace(s)
	if orig == "" {
		return -100
	}

	l := strings.ToLower(orig)
	score := 0

	if strings.Contains(l, "unsubscribe") || (strings.Contains(l, "manage") && strings.Contains(l, "alert")) {
		return -50
	}
	if strings.Contains(l, "http://") || strings.Contains(l, "https://") || strings.Contains(l, "www.") {
		return -30
	}

	// salary-ish strings are row data, not titles
	if strings.ContainsAny(orig, "$€£") {
		score -= 8
	}
	if strings.Contains(l, "/year") || strings.Contains(l, "per year") || strings.Contains(l, "/hour") || strings.Contains(l, "per hour") {
		score -= 6
	}

	for _, bad := range []string{"apply", "view job", "see job", "see details", "learn more", "sign in"} {
		if strings.Contains(l, bad) {
			score -= 6
		}
	}

	for _, loc := range []string{"remote", "hybrid", "on-site", "onsite", "united states"} {
		if strings.Contains(l, loc) {
			score -= 3
		}
	}

	titleWords := []string{
		"engineer", "developer", "software", "backend", "frontend", "full stack",
		"platform", "cloud", "devops", "sre", "security",
		"data", "scientist", "analyst", "architect",
		"manager", "director", "lead", "principal", "staff", "intern",
	}
	for _, w := range titleWords {
		if strings.Contains(l, w) {
			score += 4
			break
		}
	}

	n := len([]rune(orig))
	if n >= 6 && n <= 80 {
		score += 2
	} else if n < 4 || n > 140 {
		score -= 6
	}

	if strings.HasSuffix(orig, ".") || strings.Contains(l, "you will") || strings.Contains(l, "we are") {
		score -= 4
	}

	digits := 0
	for _, r := range orig {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if digits >= 6 {
		score -= 4
	}

	return score
}
