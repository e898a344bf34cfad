package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Notification holds the optional delivery targets for run summaries.
// Null in the JSON means the target is off.
type Notification struct {
	Email        *string `json:"email"`
	SlackWebhook *string `json:"slack_webhook"`
}

// Config is the user-facing configuration, kept deliberately small.
// The key set and shapes are a compatibility contract with existing
// installs, so fields are never renamed.
type Config struct {
	JobKeywords  []string     `json:"job_keywords"`
	Location     string       `json:"location"`
	SalaryRange  string       `json:"salary_range"` // "min-max", annual
	Currency     string       `json:"currency"`
	Schedule     *string      `json:"schedule"` // "daily HH:MM" or null
	Notification Notification `json:"notification"`

	// Board rosters and mail credentials come from the sources.yml
	// overlay, not from the user JSON.
	Sources Sources `json:"-"`
}

// Template is the config written on first run, byte for byte.
const Template = `{
  "job_keywords": ["Software Engineer", "Data Scientist"],
  "location": "Remote",
  "salary_range": "60000-80000",
  "currency": "USD",
  "schedule": null,
  "notification": {
    "email": null,
    "slack_webhook": null
  }
}
`

// Load reads and decodes the user config. A file that exists but does
// not decode is an error the caller must treat as fatal.
func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.Sources = DefaultSources()
	return cfg, nil
}

// ParseSalaryRange splits "min-max" into annual bounds.
func ParseSalaryRange(s string) (min, max int, err error) {
	lo, hi, ok := strings.Cut(s, "-")
	if !ok {
		return 0, 0, fmt.Errorf("salary_range %q: want \"min-max\"", s)
	}
	min, err = strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return 0, 0, fmt.Errorf("salary_range %q: bad minimum", s)
	}
	max, err = strconv.Atoi(strings.TrimSpace(hi))
	if err != nil {
		return 0, 0, fmt.Errorf("salary_range %q: bad maximum", s)
	}
	if min < 0 || max < min {
		return 0, 0, fmt.Errorf("salary_range %q: want 0 <= min <= max", s)
	}
	return min, max, nil
}

// SalaryBounds returns the parsed range, or zeros when the field is
// empty or malformed. Validate catches the malformed case up front.
func (c Config) SalaryBounds() (min, max int) {
	if c.SalaryRange == "" {
		return 0, 0
	}
	min, max, err := ParseSalaryRange(c.SalaryRange)
	if err != nil {
		return 0, 0
	}
	return min, max
}
