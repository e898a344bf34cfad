package config

import (
	"fmt"
	"strings"

	"jobfeed-engine/internal/schedule"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

func (v Validation) Err() error {
	if v.OK() {
		return nil
	}
	return fmt.Errorf("config validation failed:\n- %s", strings.Join(v.Errors, "\n- "))
}

// NormalizeAndValidate returns a cleaned copy plus everything wrong or
// suspicious about it. Errors are fatal for the caller; warnings are
// logged and the run continues.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	out := cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.JobKeywords = trimList(out.JobKeywords)
	out.Location = strings.TrimSpace(out.Location)
	out.Currency = strings.TrimSpace(out.Currency)

	// ---- Validation rules ----

	if len(out.JobKeywords) == 0 {
		res.addWarn("job_keywords is empty; every title will match.")
	}
	if out.Location == "" {
		res.addWarn("location is empty; location filtering is off.")
	}

	if out.Currency == "" {
		out.Currency = "USD"
		res.addWarn("currency is empty; assuming USD.")
	}

	if out.SalaryRange == "" {
		res.addWarn("salary_range is empty; salary filtering and benchmark comparison are off.")
	} else if _, _, err := ParseSalaryRange(out.SalaryRange); err != nil {
		res.addErr("%v", err)
	}

	if out.Schedule != nil {
		s := strings.TrimSpace(*out.Schedule)
		if s == "" {
			out.Schedule = nil
			res.addWarn("schedule is empty; running a single pass.")
		} else if _, err := schedule.Parse(s); err != nil {
			res.addErr("%v", err)
		} else {
			out.Schedule = &s
		}
	}

	if e := out.Notification.Email; e != nil && !strings.Contains(*e, "@") {
		res.addWarn("notification.email %q does not look like an address.", *e)
	}
	if w := out.Notification.SlackWebhook; w != nil && !strings.HasPrefix(*w, "https://") {
		res.addWarn("notification.slack_webhook is not an https URL.")
	}

	return out, res
}
