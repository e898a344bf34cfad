package email

import (
	"context"
	"fmt"
	"strings"

	"github.com/emersion/go-imap/v2"

	"jobfeed-engine/internal/config"
	"jobfeed-engine/internal/logger"
	"jobfeed-engine/internal/scrape"
)

// Source scans unseen job-alert mail over IMAP. Every scanned message
// is flagged \Seen afterwards, matching or not, so the next pass only
// looks at new mail. That also makes this site uncacheable.
type Source struct {
	Cfg      config.EmailSource
	Password string
	Criteria scrape.Criteria
	Log      logger.Logger
	MaxMail  int
}

func (s *Source) Name() string { return "LinkedIn" }

func (s *Source) Fetch(ctx context.Context) (scrape.Result, error) {
	s.Log.Infof("Scraping %s for jobs...", s.Name())

	if s.Cfg.IMAPHost == "" || s.Cfg.Username == "" {
		return scrape.Result{}, fmt.Errorf("email source missing imap_host/username")
	}
	if s.Password == "" {
		return scrape.Result{}, fmt.Errorf("email source missing password (set JOBFEED_EMAIL_PASSWORD or the keyring entry)")
	}

	addr := s.Cfg.IMAPHost
	if !strings.Contains(addr, ":") {
		port := s.Cfg.IMAPPort
		if port == 0 {
			port = 993
		}
		addr = fmt.Sprintf("%s:%d", addr, port)
	}

	c, err := dial(ctx, addr, s.Cfg.Username, s.Password)
	if err != nil {
		return scrape.Result{}, err
	}
	defer logoutAndClose(c)

	mailbox := s.Cfg.Mailbox
	if mailbox == "" {
		mailbox = "INBOX"
	}
	if _, err := c.Select(mailbox, &imap.SelectOptions{ReadOnly: false}).Wait(); err != nil {
		return scrape.Result{}, fmt.Errorf("imap select %q: %w", mailbox, err)
	}

	msgs, err := fetchUnseen(ctx, c, s.MaxMail)
	if err != nil {
		return scrape.Result{}, err
	}

	var raw []scrape.Lead
	processed := make([]imap.UID, 0, len(msgs))
	for _, m := range msgs {
		processed = append(processed, m.UID)

		bodyText, htmlBody, subj := parseRFC822(m.Raw, m.Subject)
		subj = decodeRFC2047(subj)

		if len(s.Cfg.SearchSubjectAny) > 0 && !containsAnyCI(subj, s.Cfg.SearchSubjectAny) {
			continue
		}
		if !looksLikeAlert(m.From, subj, bodyText+" "+htmlBody) {
			continue
		}

		leads, perr := parseAlertHTML(htmlBody)
		if perr != nil {
			s.Log.Warnf("[email] alert parse (%q): %v", subj, perr)
			continue
		}
		s.Log.Infof("[email] %q: %d leads", subj, len(leads))
		raw = append(raw, leads...)
	}

	if err := markSeen(c, processed); err != nil {
		// leads are already in hand; \Seen failing only risks re-reads
		s.Log.Warnf("[email] mark seen: %v", err)
	}

	screen := scrape.Screen{Site: s.Name(), Criteria: s.Criteria, Log: s.Log}
	return scrape.Result{Source: s.Name(), Leads: screen.Apply(raw)}, nil
}
