package util

import (
	"net/url"
	"sort"
	"strings"
)

// CanonicalizeURL strips tracking noise so the same job seen twice
// carries the same link. Posting identity is exact-match on the link,
// so this is the only place links get rewritten.
func CanonicalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	// drop common tracking params
	q := u.Query()
	for k := range q {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, "utm_") ||
			lk == "gclid" || lk == "fbclid" || lk == "msclkid" ||
			lk == "mc_cid" || lk == "mc_eid" ||
			lk == "mkt_tok" {
			q.Del(k)
		}
	}

	// LinkedIn alert links: only currentJobId identifies the job
	if strings.Contains(u.Host, "linkedin.com") {
		keep := url.Values{}
		if v := q.Get("currentJobId"); v != "" {
			keep.Set("currentJobId", v)
		}
		q = keep
	}

	// deterministic query
	for k := range q {
		vals := q[k]
		sort.Strings(vals)
		q[k] = vals
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// URLIsTooGeneric flags links that point at a listing page rather than
// one job (alert digests and the like).
func URLIsTooGeneric(u string) bool {
	lu := strings.ToLower(u)
	return strings.Contains(lu, "linkedin.com/comm/jobs/alerts")
}
