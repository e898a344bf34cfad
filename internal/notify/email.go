package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"jobfeed-engine/internal/pipeline"
)

// Email sends summaries through a plain SMTP relay.
type Email struct {
	Host string
	Port int
	From string
	To   string
	User string // empty = unauthenticated relay
	Pass string
}

func (e *Email) Name() string { return "email" }

func (e *Email) Notify(ctx context.Context, sum pipeline.Summary) error {
	addr := fmt.Sprintf("%s:%d", e.Host, e.Port)

	var auth smtp.Auth
	if e.User != "" {
		auth = smtp.PlainAuth("", e.User, e.Pass, e.Host)
	}

	subject := fmt.Sprintf("Job Aggregator Bot: %d new jobs", sum.Stored)
	if err := smtp.SendMail(addr, auth, e.From, []string{e.To}, buildMessage(e.From, e.To, subject, message(sum))); err != nil {
		return fmt.Errorf("email: sending via %s: %w", addr, err)
	}
	return nil
}

// buildMessage assembles the RFC 5322 bytes SendMail wants.
func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	b.WriteString("\r\n")
	return []byte(b.String())
}
