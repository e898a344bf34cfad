// Package enrich fills scraped postings with company background and a
// salary benchmark. Both lookups are best-effort: a failed or missing
// answer leaves the field unset and never stops the run.
package enrich

import (
	"context"

	"jobfeed-engine/internal/domain"
)

// CompanySource answers company background lookups. ok is false when
// the source has nothing on record for the name.
type CompanySource interface {
	CompanyProfile(ctx context.Context, company string) (domain.CompanyProfile, bool, error)
}

// SalarySource answers market-rate lookups for a title in a location.
type SalarySource interface {
	AverageSalary(ctx context.Context, title, location string) (int, bool, error)
}

// ProfileCache stores resolved company profiles across runs so a company
// seen in every run costs one lookup total, not one per run.
type ProfileCache interface {
	GetProfile(ctx context.Context, company string) (domain.CompanyProfile, bool, error)
	PutProfile(ctx context.Context, company string, p domain.CompanyProfile) error
}
