// Package canonical produces the deterministic canonical string form of a
// URL. The canonical form is the primary dedup key for the whole worker: any
// two URLs differing only in tracking parameters, fragment, default port,
// host case, or a trailing slash reduce to the same string.
package canonical

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"aggregator/domain"
)

var schemePattern = regexp.MustCompile(`(?i)^https?://`)

// trackingParams is the closed set of query parameter names stripped during
// canonicalization, matched against the lowercased name.
var trackingParams = map[string]struct{}{
	"utm_source":   {},
	"utm_medium":   {},
	"utm_campaign": {},
	"utm_term":     {},
	"utm_content":  {},
	"utm_id":       {},
	"fbclid":       {},
	"gclid":        {},
	"igshid":       {},
	"mc_cid":       {},
	"mc_eid":       {},
	"ref":          {},
	"ref_src":      {},
	"spm":          {},
}

// Canonicalize reduces raw to its canonical form. It returns
// domain.ErrUncanonicalizable on empty input or any parse failure; callers
// drop such items silently.
func Canonicalize(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("%w: empty input", domain.ErrUncanonicalizable)
	}
	s = norm.NFC.String(s)

	if !schemePattern.MatchString(s) {
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUncanonicalizable, err)
	}

	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Host)
	if host == "" {
		return "", fmt.Errorf("%w: missing host", domain.ErrUncanonicalizable)
	}

	switch scheme {
	case "http":
		host = strings.TrimSuffix(host, ":80")
	case "https":
		host = strings.TrimSuffix(host, ":443")
	}

	query := filterQuery(u.RawQuery)

	path := u.EscapedPath()
	if path != "/" && strings.HasSuffix(path, "/") {
		path = path[:len(path)-1]
	}

	var b strings.Builder
	b.WriteString(scheme)
	b.WriteString("://")
	b.WriteString(host)
	b.WriteString(path)
	if query != "" {
		b.WriteString("?")
		b.WriteString(query)
	}

	return b.String(), nil
}

// filterQuery removes tracking parameters and sorts the survivors by key.
// Pairs are kept verbatim: values are neither decoded nor re-encoded, so
// repeated invocations always rebuild the same string.
func filterQuery(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}

	type pair struct {
		key string
		raw string
	}

	var kept []pair

	for _, part := range strings.Split(rawQuery, "&") {
		if part == "" {
			continue
		}
		key := part
		if i := strings.Index(part, "="); i >= 0 {
			key = part[:i]
		}
		if decoded, err := url.QueryUnescape(key); err == nil {
			key = decoded
		}
		if _, tracked := trackingParams[strings.ToLower(key)]; tracked {
			continue
		}
		kept = append(kept, pair{key: key, raw: part})
	}

	if len(kept) == 0 {
		return ""
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].key < kept[j].key
	})

	parts := make([]string, len(kept))
	for i, p := range kept {
		parts[i] = p.raw
	}

	return strings.Join(parts, "&")
}
