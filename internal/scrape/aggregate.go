package scrape

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"jobfeed-engine/internal/domain"
	"jobfeed-engine/internal/logger"
)

// Aggregator fans a pass out over every registered site and gathers
// whatever they return. A failing site is logged and contributes
// nothing; it never takes the pass down with it. Output order is
// registration order, then each site's own order.
type Aggregator struct {
	Fetchers []Fetcher
	Log      logger.Logger
	Cache    ResultCache // optional
}

func sourceTimeout(name string) time.Duration {
	switch name {
	case "Greenhouse", "Lever":
		return 5 * time.Minute
	case "LinkedIn":
		return 2 * time.Minute
	}
	return 2 * time.Minute
}

// Run invokes every site exactly once, concurrently, and flattens the
// results into postings.
func (a *Aggregator) Run(ctx context.Context) []domain.JobPosting {
	results := make([]Result, len(a.Fetchers))

	var g errgroup.Group
	for i, f := range a.Fetchers {
		i, f := i, f
		g.Go(func() error {
			if leads, ok := a.cachedLeads(ctx, f); ok {
				results[i] = Result{Source: f.Name(), Leads: leads}
				return nil
			}

			fctx, cancel := context.WithTimeout(ctx, sourceTimeout(f.Name()))
			defer cancel()

			res, err := f.Fetch(fctx)
			if err != nil {
				a.Log.Errorf("Error scraping: %s: %v", f.Name(), err)
				return nil // best-effort: one dead site never kills the pass
			}
			results[i] = res
			a.storeLeads(ctx, f, res.Leads)
			return nil
		})
	}
	_ = g.Wait()

	var out []domain.JobPosting
	for _, res := range results {
		for _, l := range res.Leads {
			out = append(out, l.ToPosting())
		}
	}
	a.Log.Infof("Total jobs scraped: %d", len(out))
	return out
}

func cacheKey(f Fetcher) string {
	if ck, ok := f.(CacheKeyer); ok {
		return ck.CacheKey()
	}
	return ""
}

func (a *Aggregator) cachedLeads(ctx context.Context, f Fetcher) ([]Lead, bool) {
	key := cacheKey(f)
	if a.Cache == nil || key == "" {
		return nil, false
	}
	leads, hit := a.Cache.GetLeads(ctx, key)
	if hit {
		a.Log.Infof("[cache] %s served from cache (%d leads)", f.Name(), len(leads))
	}
	return leads, hit
}

func (a *Aggregator) storeLeads(ctx context.Context, f Fetcher, leads []Lead) {
	key := cacheKey(f)
	if a.Cache == nil || key == "" {
		return
	}
	a.Cache.PutLeads(ctx, key, leads)
}
