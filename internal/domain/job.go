package domain

import "time"

// JobKey is the identity triple of a posting. Two postings are the same
// job exactly when all three fields match byte for byte; no trimming or
// case folding is applied before comparison.
type JobKey struct {
	Title   string
	Company string
	Link    string
}

// JobPosting is one job offer as it moves through a run. Identity fields
// are set once by the source that found it and never change afterwards;
// enrichment fields start empty and fill at most once.
type JobPosting struct {
	Title    string `json:"title"`
	Company  string `json:"company"`
	Link     string `json:"link"`
	Location string `json:"location"`
	Source   string `json:"source"` // greenhouse/lever/email

	ScrapedAt time.Time `json:"scraped_at,omitzero"` // UTC, zero until stamped

	CompanyInfo *CompanyProfile  `json:"company_info,omitempty"`
	SalaryInfo  *SalaryBenchmark `json:"salary_info,omitempty"`
}

func (p *JobPosting) Identity() JobKey {
	return JobKey{Title: p.Title, Company: p.Company, Link: p.Link}
}

// SetCompanyInfo fills the company profile if it is still empty.
// A second call is a no-op.
func (p *JobPosting) SetCompanyInfo(info *CompanyProfile) {
	if p.CompanyInfo == nil {
		p.CompanyInfo = info
	}
}

// SetSalaryInfo fills the salary benchmark if it is still empty.
// A second call is a no-op.
func (p *JobPosting) SetSalaryInfo(info *SalaryBenchmark) {
	if p.SalaryInfo == nil {
		p.SalaryInfo = info
	}
}

// StampScraped records when the posting went through enrichment. The
// timestamp is stored in UTC and only ever set once.
func (p *JobPosting) StampScraped(t time.Time) {
	if p.ScrapedAt.IsZero() {
		p.ScrapedAt = t.UTC()
	}
}

// Enriched reports whether both lookups produced something.
func (p *JobPosting) Enriched() bool {
	return p.CompanyInfo != nil && p.SalaryInfo != nil
}
