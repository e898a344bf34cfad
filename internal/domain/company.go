package domain

// CompanyProfile is what the company-background lookup returns. Fields
// the provider doesn't know stay empty.
type CompanyProfile struct {
	Industry    string `json:"industry,omitempty"`
	Size        string `json:"company_size,omitempty"` // headcount band, e.g. "51-200"
	FoundedYear int    `json:"year_founded,omitempty"`
	Website     string `json:"website,omitempty"`
	Description string `json:"notable_info,omitempty"`
}

// SalaryComparison places a benchmark against the configured salary range.
type SalaryComparison string

const (
	SalaryAbove   SalaryComparison = "above"
	SalaryBelow   SalaryComparison = "below"
	SalaryWithin  SalaryComparison = "within"
	SalaryUnknown SalaryComparison = "unknown"
)

// SalaryBenchmark is what the salary lookup returns for a title+location.
type SalaryBenchmark struct {
	AvgSalary  int              `json:"average_salary"` // annual, whole units of Currency; 0 = unknown
	Currency   string           `json:"currency,omitempty"`
	Comparison SalaryComparison `json:"comparison,omitempty"`
}

// CompareSalary places an annual amount against a [min, max] range.
// A zero amount means the benchmark is unknown.
func CompareSalary(amount, min, max int) SalaryComparison {
	switch {
	case amount <= 0:
		return SalaryUnknown
	case amount < min:
		return SalaryBelow
	case amount > max:
		return SalaryAbove
	default:
		return SalaryWithin
	}
}
