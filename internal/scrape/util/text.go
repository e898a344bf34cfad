package util

import (
	"regexp"
	"strconv"
	"strings"
)

func CleanText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

func NormalizeLocation(loc string) string {
	loc = CleanText(loc)
	if loc == "" {
		return ""
	}

	loc = strings.TrimPrefix(loc, "Location:")
	loc = strings.TrimPrefix(loc, "LOCATIONS:")
	loc = strings.TrimSpace(loc)

	parts := strings.Split(loc, ",")
	seen := map[string]bool{}
	var out []string
	for _, p := range parts {
		p = CleanText(p)
		if p == "" {
			continue
		}
		k := strings.ToLower(p)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, p)
	}
	return strings.Join(out, ", ")
}

// matches "$70,000 - $90,000 / year", "$85K/year", "70000-90000 USD" and
// similar shapes boards put in ad copy
var reSalaryFigure = regexp.MustCompile(`(?i)[\$€£]?\s?(\d[\d,.]*)\s*([KM])?`)

// an annual salary phrase inside arbitrary page text; anchoring on the
// per-year suffix keeps headcounts and job ids from matching
var reSalaryBlob = regexp.MustCompile(`(?i)[\$€£]\s?\d[\d,.]*(?:K|M)?\s*(?:-\s*[\$€£]?\s?\d[\d,.]*(?:K|M)?)?\s*(?:/|per)\s*(?:year|annum|yr)`)

// FindSalaryText pulls an annual salary phrase out of ad copy, or ""
// when none is advertised. Feed the result to ParseSalaryText.
func FindSalaryText(s string) string {
	return CleanText(reSalaryBlob.FindString(s))
}

// ParseSalaryText pulls the first (lowest) annual figure out of an
// advertised salary blob. Returns 0 when nothing usable is there.
func ParseSalaryText(s string) int {
	s = CleanText(s)
	if s == "" {
		return 0
	}

	m := reSalaryFigure.FindStringSubmatch(s)
	if m == nil {
		return 0
	}

	num := strings.ReplaceAll(m[1], ",", "")
	// "85.5K" style decimals only matter with a magnitude suffix
	var val float64
	if f, err := strconv.ParseFloat(num, 64); err == nil {
		val = f
	} else {
		return 0
	}

	switch strings.ToUpper(m[2]) {
	case "K":
		val *= 1_000
	case "M":
		val *= 1_000_000
	}

	// figures like "40" or "55.5" with no suffix are hourly or junk
	if val < 1000 {
		return 0
	}
	return int(val)
}
