// config/overlay.go
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Sources describes where postings come from. It lives in sources.yml
// next to config.json so the user JSON stays on its fixed key set.
type Sources struct {
	Greenhouse BoardList   `yaml:"greenhouse"`
	Lever      BoardList   `yaml:"lever"`
	Email      EmailSource `yaml:"email"`
}

type BoardList struct {
	Boards []string `yaml:"boards"`
}

type EmailSource struct {
	Enabled          bool     `yaml:"enabled"`
	IMAPHost         string   `yaml:"imap_host"`
	IMAPPort         int      `yaml:"imap_port"`
	Username         string   `yaml:"username"`
	Mailbox          string   `yaml:"mailbox"`
	SearchSubjectAny []string `yaml:"search_subject_any"`
}

type sourcesFile struct {
	Sources Sources `yaml:"sources"`
}

// DefaultSources is the roster used when no sources.yml exists.
func DefaultSources() Sources {
	return Sources{
		Greenhouse: BoardList{Boards: []string{"stripe", "datadog", "cloudflare"}},
		Lever:      BoardList{Boards: []string{"netlify", "plaid"}},
		Email: EmailSource{
			IMAPPort:         993,
			Mailbox:          "INBOX",
			SearchSubjectAny: []string{"job alert", "new jobs", "jobs for you"},
		},
	}
}

// OverlaySources replaces roster sections with whatever sources.yml
// provides. A missing file is fine; the defaults stay.
func OverlaySources(cfg *Config, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		// Missing sources file should not kill startup
		return nil
	}

	var sf sourcesFile
	if err := yaml.Unmarshal(b, &sf); err != nil {
		return err
	}

	if len(sf.Sources.Greenhouse.Boards) > 0 {
		cfg.Sources.Greenhouse.Boards = sf.Sources.Greenhouse.Boards
	}
	if len(sf.Sources.Lever.Boards) > 0 {
		cfg.Sources.Lever.Boards = sf.Sources.Lever.Boards
	}
	if sf.Sources.Email.Enabled {
		e := sf.Sources.Email
		if e.IMAPPort == 0 {
			e.IMAPPort = 993
		}
		if e.Mailbox == "" {
			e.Mailbox = "INBOX"
		}
		if len(e.SearchSubjectAny) == 0 {
			e.SearchSubjectAny = cfg.Sources.Email.SearchSubjectAny
		}
		cfg.Sources.Email = e
	}
	return nil
}
