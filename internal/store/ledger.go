package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"jobfeed-engine/internal/domain"
)

// timestamps are stored in sqlite's own datetime shape so the window
// filters in List can compare them against datetime('now', ...)
const ledgerTimeLayout = "2006-01-02 15:04:05"

// Ledger is the sqlite-backed sink.
type Ledger struct {
	db *DB
}

func OpenLedger(path string) (*Ledger, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db.Pool); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Ledger{db: db}, nil
}

func (l *Ledger) Close() error { return l.db.Close() }

// LoadExisting returns the identity triple of every persisted posting.
func (l *Ledger) LoadExisting(ctx context.Context) ([]domain.JobKey, error) {
	rows, err := l.db.Pool.QueryContext(ctx,
		`SELECT job_title, company_name, source_link FROM jobs;`)
	if err != nil {
		return nil, fmt.Errorf("load existing: %w", err)
	}
	defer rows.Close()

	var keys []domain.JobKey
	for rows.Next() {
		var k domain.JobKey
		if err := rows.Scan(&k.Title, &k.Company, &k.Link); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Append inserts postings and reports how many rows were actually new.
// Rows the identity index already holds are skipped silently, so a
// replayed batch cannot double-write.
func (l *Ledger) Append(ctx context.Context, postings []domain.JobPosting) (int, error) {
	if len(postings) == 0 {
		return 0, nil
	}

	tx, err := l.db.Pool.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	added := 0
	for _, p := range postings {
		r := newJobRow(p)
		if _, err := tx.ExecContext(ctx, `
INSERT OR IGNORE INTO jobs
  (job_title, company_name, source_link, location, source,
   industry, company_size, year_founded, notable_info,
   average_salary, comparison, scraped_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
			r.title, r.company, r.link, r.location, r.source,
			r.industry, r.companySize, r.yearFounded, r.notableInfo,
			r.averageSalary, r.comparison, r.scrapedAt,
		); err != nil {
			return 0, fmt.Errorf("append %q: %w", p.Title, err)
		}

		// OR IGNORE swallows duplicates; changes() says whether this row landed
		var changes int
		if err := tx.QueryRowContext(ctx, `SELECT changes();`).Scan(&changes); err != nil {
			return 0, err
		}
		added += changes
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return added, nil
}

// Count returns how many postings the ledger holds.
func (l *Ledger) Count(ctx context.Context) (int, error) {
	var n int
	err := l.db.Pool.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs;`).Scan(&n)
	return n, err
}

type jobRow struct {
	title, company, link, location, source string
	industry, companySize                  string
	yearFounded                            int
	notableInfo                            string
	averageSalary                          int
	comparison                             string
	scrapedAt                              string
}

func newJobRow(p domain.JobPosting) jobRow {
	r := jobRow{
		title:    p.Title,
		company:  p.Company,
		link:     p.Link,
		location: p.Location,
		source:   p.Source,
	}
	if !p.ScrapedAt.IsZero() {
		r.scrapedAt = p.ScrapedAt.UTC().Format(ledgerTimeLayout)
	}
	if ci := p.CompanyInfo; ci != nil {
		r.industry = ci.Industry
		r.companySize = ci.Size
		r.yearFounded = ci.FoundedYear
		r.notableInfo = ci.Description
	}
	if si := p.SalaryInfo; si != nil {
		r.averageSalary = si.AvgSalary
		r.comparison = string(si.Comparison)
	}
	return r
}

type ListOpts struct {
	Sort   string // scraped_at | company | title
	Window string // 24h | 7d | all
	Limit  int
}

// List returns persisted postings for the control API.
func (l *Ledger) List(ctx context.Context, opts ListOpts) ([]domain.JobPosting, error) {
	// whitelist sort columns (prevents SQL injection)
	sortCol := map[string]string{
		"scraped_at": "scraped_at",
		"company":    "company_name",
		"title":      "job_title",
	}[opts.Sort]
	order := "asc"
	if sortCol == "" || sortCol == "scraped_at" {
		sortCol, order = "scraped_at", "desc"
	}
	if opts.Limit <= 0 || opts.Limit > 2000 {
		opts.Limit = 500
	}

	where := ""
	switch opts.Window {
	case "24h":
		where = "WHERE scraped_at >= datetime('now','-24 hours')"
	case "all":
		// no filter
	default:
		where = "WHERE scraped_at >= datetime('now','-7 days')"
	}

	query := fmt.Sprintf(`
SELECT job_title, company_name, source_link, location, source,
       industry, company_size, year_founded, notable_info,
       average_salary, comparison, scraped_at
FROM jobs
%s
ORDER BY %s %s
LIMIT ?;
`, where, sortCol, order)

	rows, err := l.db.Pool.QueryContext(ctx, query, opts.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.JobPosting
	for rows.Next() {
		var r jobRow
		if err := rows.Scan(
			&r.title, &r.company, &r.link, &r.location, &r.source,
			&r.industry, &r.companySize, &r.yearFounded, &r.notableInfo,
			&r.averageSalary, &r.comparison, &r.scrapedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, r.posting())
	}
	return out, rows.Err()
}

func (r jobRow) posting() domain.JobPosting {
	p := domain.JobPosting{
		Title:    r.title,
		Company:  r.company,
		Link:     r.link,
		Location: r.location,
		Source:   r.source,
	}
	if t, err := time.ParseInLocation(ledgerTimeLayout, r.scrapedAt, time.UTC); err == nil {
		p.ScrapedAt = t
	}
	if r.industry != "" || r.companySize != "" || r.yearFounded != 0 || r.notableInfo != "" {
		p.CompanyInfo = &domain.CompanyProfile{
			Industry:    r.industry,
			Size:        r.companySize,
			FoundedYear: r.yearFounded,
			Description: r.notableInfo,
		}
	}
	if r.averageSalary != 0 || r.comparison != "" {
		p.SalaryInfo = &domain.SalaryBenchmark{
			AvgSalary:  r.averageSalary,
			Comparison: domain.SalaryComparison(r.comparison),
		}
	}
	return p
}

// GetProfile returns the cached background for a company, if any.
func (l *Ledger) GetProfile(ctx context.Context, company string) (domain.CompanyProfile, bool, error) {
	key := profileKey(company)
	if key == "" {
		return domain.CompanyProfile{}, false, nil
	}

	var p domain.CompanyProfile
	err := l.db.Pool.QueryRowContext(ctx, `
SELECT industry, company_size, year_founded, website, notable_info
FROM company_profiles WHERE company = ? LIMIT 1;`, key).
		Scan(&p.Industry, &p.Size, &p.FoundedYear, &p.Website, &p.Description)

	if err == sql.ErrNoRows {
		return domain.CompanyProfile{}, false, nil
	}
	if err != nil {
		return domain.CompanyProfile{}, false, err
	}
	return p, true, nil
}

func (l *Ledger) PutProfile(ctx context.Context, company string, p domain.CompanyProfile) error {
	key := profileKey(company)
	if key == "" {
		return nil
	}

	_, err := l.db.Pool.ExecContext(ctx, `
INSERT INTO company_profiles(company, industry, company_size, year_founded, website, notable_info, fetched_at)
VALUES(?,?,?,?,?,?,?)
ON CONFLICT(company) DO UPDATE SET
  industry = excluded.industry,
  company_size = excluded.company_size,
  year_founded = excluded.year_founded,
  website = excluded.website,
  notable_info = excluded.notable_info,
  fetched_at = excluded.fetched_at;
`, key, p.Industry, p.Size, p.FoundedYear, p.Website, p.Description,
		time.Now().UTC().Format(time.RFC3339))

	return err
}

// profile rows are keyed loosely: "Acme Corp" and "acme  corp" are the
// same company here even though posting identity treats them as distinct
func profileKey(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Join(strings.Fields(s), " ")
	return strings.ToLower(s)
}
