package email

import (
	"encoding/base64"
	"strings"
	"testing"
)

func TestParseRFC822Multipart(t *testing.T) {
	htmlPart := `<html><body><p>Senior Backend Engineer</p></body></html>`
	b64 := base64.StdEncoding.EncodeToString([]byte(htmlPart))

	raw := strings.Join([]string{
		"From: LinkedIn Job Alerts <jobalerts-noreply@linkedin.com>",
		"Subject: 30+ new jobs for you",
		`Content-Type: multipart/alternative; boundary="b1"`,
		"",
		"--b1",
		"Content-Type: text/plain; charset=utf-8",
		"Content-Transfer-Encoding: quoted-printable",
		"",
		"R=C3=A9sum=C3=A9 matches for Senior Backend Engineer",
		"--b1",
		"Content-Type: text/html; charset=utf-8",
		"Content-Transfer-Encoding: base64",
		"",
		b64,
		"--b1--",
		"",
	}, "\r\n")

	plain, htmlBody, subject := parseRFC822([]byte(raw), "fallback")
	if subject != "30+ new jobs for you" {
		t.Errorf("subject = %q", subject)
	}
	if !strings.Contains(plain, "Résumé matches") {
		t.Errorf("plain part not decoded: %q", plain)
	}
	if htmlBody != htmlPart {
		t.Errorf("html part = %q, want %q", htmlBody, htmlPart)
	}
}

func TestParseRFC822PlainFallbacks(t *testing.T) {
	// not RFC822 at all: whole blob becomes the plain body
	plain, htmlBody, subject := parseRFC822([]byte("just some text"), "fb")
	if plain != "just some text" || htmlBody != "" || subject != "fb" {
		t.Errorf("got (%q, %q, %q)", plain, htmlBody, subject)
	}

	// single-part html message
	raw := strings.Join([]string{
		"Subject: hi",
		"Content-Type: text/html",
		"",
		"<p>hello</p>",
	}, "\r\n")
	plain, htmlBody, _ = parseRFC822([]byte(raw), "")
	if plain != "" || !strings.Contains(htmlBody, "<p>hello</p>") {
		t.Errorf("got (%q, %q)", plain, htmlBody)
	}
}

func TestDecodeRFC2047(t *testing.T) {
	if got := decodeRFC2047("=?utf-8?q?New_jobs_for_you?="); got != "New jobs for you" {
		t.Errorf("q-encoded: got %q", got)
	}
	if got := decodeRFC2047("plain subject"); got != "plain subject" {
		t.Errorf("passthrough: got %q", got)
	}
	if got := decodeRFC2047(""); got != "" {
		t.Errorf("empty: got %q", got)
	}
}

func TestHTMLToText(t *testing.T) {
	in := `<div><p>Senior&nbsp;Engineer</p> <a href="#">link</a></div>`
	got := htmlToText(in)
	if !strings.Contains(got, "Engineer") || strings.Contains(got, "<") {
		t.Errorf("htmlToText = %q", got)
	}
}

func TestContainsAnyCI(t *testing.T) {
	subj := "Daily digest: New Jobs For You"
	if !containsAnyCI(subj, []string{"job alert", "new jobs"}) {
		t.Error("case-insensitive needle should match")
	}
	if containsAnyCI(subj, []string{"job alert"}) {
		t.Error("absent needle matched")
	}
	if containsAnyCI(subj, []string{"", "  "}) {
		t.Error("blank needles must not match everything")
	}
}
