// Package dedup screens postings against what the sink already holds.
// Identity is the exact (title, company, link) triple: no case folding,
// no trimming, and the site a posting came from is not part of it.
package dedup

import (
	mapset "github.com/deckarep/golang-set/v2"

	"jobfeed-engine/internal/domain"
)

type Index struct {
	seen mapset.Set[domain.JobKey]
}

// NewIndex builds an index, optionally preloaded with keys already in
// the ledger.
func NewIndex(existing ...domain.JobKey) *Index {
	s := mapset.NewSet[domain.JobKey]()
	for _, k := range existing {
		s.Add(k)
	}
	return &Index{seen: s}
}

// Add marks a key seen and reports whether it was new.
func (ix *Index) Add(k domain.JobKey) bool { return ix.seen.Add(k) }

func (ix *Index) Contains(k domain.JobKey) bool { return ix.seen.Contains(k) }

func (ix *Index) Len() int { return ix.seen.Cardinality() }

// Filter returns the postings whose identity is absent from the index,
// in input order. Filter never mutates the index: the set of known
// triples is fixed when the run loads it, so repeats inside the batch
// all pass, and the ledger's identity unique index collapses them at
// persistence.
func (ix *Index) Filter(batch []domain.JobPosting) []domain.JobPosting {
	out := make([]domain.JobPosting, 0, len(batch))
	for _, p := range batch {
		if !ix.seen.Contains(p.Identity()) {
			out = append(out, p)
		}
	}
	return out
}
