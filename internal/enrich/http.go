package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"jobfeed-engine/internal/domain"
)

const (
	companyPath = "/v1/companies"
	salaryPath  = "/v1/salaries"
	httpTimeout = 15 * time.Second
)

// HTTPCompanySource queries a company-background API:
// GET <base>/v1/companies?name=<company>. A 404 means the company is
// simply not on record.
type HTTPCompanySource struct {
	BaseURL string
	APIKey  string // optional bearer token
	client  *http.Client
}

func NewHTTPCompanySource(baseURL string) *HTTPCompanySource {
	return &HTTPCompanySource{
		BaseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: httpTimeout},
	}
}

// companyResponse mirrors the API answer.
type companyResponse struct {
	Name        string `json:"name"`
	Industry    string `json:"industry"`
	CompanySize string `json:"company_size"`
	YearFounded int    `json:"year_founded"`
	Website     string `json:"website"`
	NotableInfo string `json:"notable_info"`
}

func (s *HTTPCompanySource) CompanyProfile(ctx context.Context, company string) (domain.CompanyProfile, bool, error) {
	params := url.Values{}
	params.Set("name", company)

	var cr companyResponse
	ok, err := getJSON(ctx, s.client, s.BaseURL+companyPath+"?"+params.Encode(), s.APIKey, &cr)
	if err != nil || !ok {
		return domain.CompanyProfile{}, false, err
	}

	p := domain.CompanyProfile{
		Industry:    cr.Industry,
		Size:        cr.CompanySize,
		FoundedYear: cr.YearFounded,
		Website:     cr.Website,
		Description: cr.NotableInfo,
	}
	return p, p != (domain.CompanyProfile{}), nil
}

// HTTPSalarySource queries a salary-benchmark API:
// GET <base>/v1/salaries?title=<title>&location=<location>.
type HTTPSalarySource struct {
	BaseURL string
	APIKey  string // optional bearer token
	client  *http.Client
}

func NewHTTPSalarySource(baseURL string) *HTTPSalarySource {
	return &HTTPSalarySource{
		BaseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: httpTimeout},
	}
}

type salaryResponse struct {
	AverageSalary int    `json:"average_salary"`
	Currency      string `json:"currency"`
}

func (s *HTTPSalarySource) AverageSalary(ctx context.Context, title, location string) (int, bool, error) {
	params := url.Values{}
	params.Set("title", title)
	params.Set("location", location)

	var sr salaryResponse
	ok, err := getJSON(ctx, s.client, s.BaseURL+salaryPath+"?"+params.Encode(), s.APIKey, &sr)
	if err != nil || !ok {
		return 0, false, err
	}
	return sr.AverageSalary, sr.AverageSalary > 0, nil
}

// getJSON fetches one endpoint. A 404 reports (false, nil): the record
// does not exist, which is an answer rather than a failure.
func getJSON(ctx context.Context, client *http.Client, reqURL, apiKey string, out any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return false, fmt.Errorf("http GET: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return false, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("api returned %d: %s", resp.StatusCode, snippet(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return false, fmt.Errorf("json unmarshal: %w", err)
	}
	return true, nil
}

func snippet(b []byte) string {
	const max = 200
	if len(b) > max {
		b = b[:max]
	}
	return strings.TrimSpace(string(b))
}
