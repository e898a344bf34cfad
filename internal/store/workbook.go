package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"jobfeed-engine/internal/domain"
)

// workbookHeader is the spreadsheet's first row, in the ledger's column
// vocabulary.
var workbookHeader = []string{
	"job_title", "company_name", "source_link", "location", "source",
	"industry", "company_size", "year_founded", "notable_info",
	"average_salary", "comparison", "scraped_at",
}

// Workbook appends postings to a CSV spreadsheet. It fills the same
// sink boundary as the Ledger, for setups that want a file they can
// open in a spreadsheet app.
type Workbook struct {
	Path string
}

func NewWorkbook(path string) *Workbook { return &Workbook{Path: path} }

func (w *Workbook) LoadExisting(ctx context.Context) ([]domain.JobKey, error) {
	f, err := os.Open(w.Path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // tolerate hand-edited rows
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read workbook: %w", err)
	}

	var keys []domain.JobKey
	for i, rec := range records {
		if i == 0 && len(rec) > 0 && rec[0] == workbookHeader[0] {
			continue
		}
		if len(rec) < 3 {
			continue
		}
		keys = append(keys, domain.JobKey{Title: rec[0], Company: rec[1], Link: rec[2]})
	}
	return keys, nil
}

func (w *Workbook) Append(ctx context.Context, postings []domain.JobPosting) (int, error) {
	if len(postings) == 0 {
		return 0, nil
	}

	_, statErr := os.Stat(w.Path)
	fresh := os.IsNotExist(statErr)

	f, err := os.OpenFile(w.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return 0, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if fresh {
		if err := cw.Write(workbookHeader); err != nil {
			return 0, err
		}
	}
	for _, p := range postings {
		if err := cw.Write(workbookRecord(p)); err != nil {
			return 0, err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("write workbook: %w", err)
	}
	return len(postings), nil
}

func workbookRecord(p domain.JobPosting) []string {
	rec := []string{
		p.Title, p.Company, p.Link, p.Location, p.Source,
		"", "", "", "", "", "", "",
	}
	if ci := p.CompanyInfo; ci != nil {
		rec[5] = ci.Industry
		rec[6] = ci.Size
		if ci.FoundedYear != 0 {
			rec[7] = strconv.Itoa(ci.FoundedYear)
		}
		rec[8] = ci.Description
	}
	if si := p.SalaryInfo; si != nil {
		if si.AvgSalary != 0 {
			rec[9] = strconv.Itoa(si.AvgSalary)
		}
		rec[10] = string(si.Comparison)
	}
	if !p.ScrapedAt.IsZero() {
		rec[11] = p.ScrapedAt.UTC().Format(time.RFC3339)
	}
	return rec
}
