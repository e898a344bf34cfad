package enrich

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"jobfeed-engine/internal/domain"
	"jobfeed-engine/internal/logger"
)

// Enricher runs the lookups for a batch of postings over a bounded
// worker pool. Postings are mutated in place; every posting comes out
// the other side stamped, enriched or not.
type Enricher struct {
	Companies CompanySource // nil leaves backgrounds unset
	Salaries  SalarySource  // nil leaves benchmarks unset
	Cache     ProfileCache  // optional
	Log       logger.Logger
	Workers   int

	// salary_range bounds the benchmark average is compared against
	MinSalary int
	MaxSalary int
	Currency  string

	flight singleflight.Group
}

type companyResult struct {
	profile domain.CompanyProfile
	ok      bool
}

func (e *Enricher) Enrich(ctx context.Context, batch []domain.JobPosting) []domain.JobPosting {
	if len(batch) == 0 {
		return batch
	}

	if e.Companies == nil {
		e.Log.Warnf("No company background source configured; backgrounds stay empty.")
	}
	if e.Salaries == nil {
		e.Log.Warnf("No salary benchmark source configured; benchmarks stay empty.")
	}

	workers := e.Workers
	if workers <= 0 {
		workers = 4
	}
	if workers > len(batch) {
		workers = len(batch)
	}

	idxCh := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range idxCh {
				e.enrichOne(ctx, &batch[i])
			}
		}()
	}

feed:
	for i := range batch {
		select {
		case <-ctx.Done():
			break feed
		case idxCh <- i:
		}
	}
	close(idxCh)
	wg.Wait()

	// postings skipped on cancellation still leave with a timestamp
	now := time.Now()
	for i := range batch {
		batch[i].StampScraped(now)
	}
	return batch
}

func (e *Enricher) enrichOne(ctx context.Context, p *domain.JobPosting) {
	e.Log.Infof("Enriching company background for %s...", p.Company)
	if prof, ok := e.companyProfile(ctx, p.Company); ok {
		p.SetCompanyInfo(&prof)
	}

	e.Log.Infof("Benchmarking salary for %s in %s...", p.Title, p.Location)
	if avg, ok := e.salaryAverage(ctx, p.Title, p.Location); ok {
		p.SetSalaryInfo(&domain.SalaryBenchmark{
			AvgSalary:  avg,
			Currency:   e.Currency,
			Comparison: domain.CompareSalary(avg, e.MinSalary, e.MaxSalary),
		})
	}

	p.StampScraped(time.Now())
}

// companyProfile resolves one company through cache, then source.
// Concurrent lookups for the same company collapse into one call.
func (e *Enricher) companyProfile(ctx context.Context, company string) (domain.CompanyProfile, bool) {
	v, err, _ := e.flight.Do(company, func() (any, error) {
		if e.Cache != nil {
			if p, ok, cerr := e.Cache.GetProfile(ctx, company); cerr == nil && ok {
				return companyResult{profile: p, ok: true}, nil
			}
		}
		if e.Companies == nil {
			return companyResult{}, nil
		}

		p, ok, ferr := e.Companies.CompanyProfile(ctx, company)
		if ferr != nil {
			return nil, ferr
		}
		if ok && e.Cache != nil {
			if perr := e.Cache.PutProfile(ctx, company, p); perr != nil {
				e.Log.Warnf("profile cache write for %s: %v", company, perr)
			}
		}
		return companyResult{profile: p, ok: ok}, nil
	})
	if err != nil {
		e.Log.Warnf("company background for %s: %v", company, err)
		return domain.CompanyProfile{}, false
	}
	r := v.(companyResult)
	return r.profile, r.ok
}

func (e *Enricher) salaryAverage(ctx context.Context, title, location string) (int, bool) {
	if e.Salaries == nil {
		return 0, false
	}
	avg, ok, err := e.Salaries.AverageSalary(ctx, title, location)
	if err != nil {
		e.Log.Warnf("salary benchmark for %s: %v", title, err)
		return 0, false
	}
	return avg, ok
}
