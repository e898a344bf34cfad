package util_test

import (
	"testing"

	"jobfeed-engine/internal/scrape/util"
)

// ── Text cleaning ──

func TestCleanText(t *testing.T) {
	cases := []struct{ in, want string }{
		{"  Software Engineer  ", "Software Engineer"},
		{"one\n\ttwo   three", "one two three"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := util.CleanText(tc.in); got != tc.want {
			t.Fatalf("CleanText(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeLocation(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Location: Berlin, Germany", "Berlin, Germany"},
		{"Remote, Remote", "Remote"},
		{"  ", ""},
	}
	for _, tc := range cases {
		if got := util.NormalizeLocation(tc.in); got != tc.want {
			t.Fatalf("NormalizeLocation(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

// ── Salary text ──

func TestParseSalaryText(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"$70,000 - $90,000 / year", 70000},
		{"$85K/year", 85000},
		{"70000-90000 USD", 70000},
		{"€55,000 per annum", 55000},
		{"$1.2M total comp", 1200000},
		{"Competitive", 0},
		{"", 0},
		{"$40/hour", 0}, // figures under 1000 with no suffix are not annual
	}
	for _, tc := range cases {
		if got := util.ParseSalaryText(tc.in); got != tc.want {
			t.Fatalf("ParseSalaryText(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

// ── URLs ──

func TestCanonicalizeURL(t *testing.T) {
	cases := []struct{ in, want string }{
		{
			"HTTPS://Boards.Greenhouse.io/acme/jobs/123?utm_source=feed&gclid=x",
			"https://boards.greenhouse.io/acme/jobs/123",
		},
		{
			"https://www.linkedin.com/comm/jobs/view?currentJobId=42&trk=alert",
			"https://www.linkedin.com/comm/jobs/view?currentJobId=42",
		},
		{"not a url at all\x7f", "not a url at all\x7f"},
	}
	for _, tc := range cases {
		if got := util.CanonicalizeURL(tc.in); got != tc.want {
			t.Fatalf("CanonicalizeURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestURLIsTooGeneric(t *testing.T) {
	if !util.URLIsTooGeneric("https://www.linkedin.com/comm/jobs/alerts?x=1") {
		t.Fatal("alert digest link should be flagged")
	}
	if util.URLIsTooGeneric("https://boards.greenhouse.io/acme/jobs/123") {
		t.Fatal("board job link flagged as generic")
	}
}
