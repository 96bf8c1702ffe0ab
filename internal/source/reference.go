package source

import (
	"regexp"
	"strings"
)

var (
	postURLPattern      = regexp.MustCompile(`^(?:((?i)https?)://)?((?i)(?:www\.)?instagram\.com)/(p|reel)/([a-zA-Z0-9_-]+)/?.*$`)
	searchPrefixPattern = regexp.MustCompile(`^(?:issearch|igsearch):`)
)

// Reference is a normalized post or reel URL. It is both the cache key and
// the fetch target.
type Reference struct {
	URL       string // scheme://host/<p|reel>/<shortcode>
	Kind      string // "p" or "reel"
	Shortcode string
}

// ParseReference normalizes identifier, dropping the query string and any
// trailing path. The scheme defaults to https.
func ParseReference(identifier string) (Reference, bool) {
	m := postURLPattern.FindStringSubmatch(strings.TrimSpace(identifier))
	if m == nil {
		return Reference{}, false
	}

	scheme := strings.ToLower(m[1])
	if scheme == "" {
		scheme = "https"
	}
	host := strings.ToLower(m[2])

	return Reference{
		URL:       scheme + "://" + host + "/" + m[3] + "/" + m[4],
		Kind:      m[3],
		Shortcode: m[4],
	}, true
}

// IsSearch reports whether identifier is a search query, which this source
// does not support.
func IsSearch(identifier string) bool {
	return searchPrefixPattern.MatchString(strings.TrimSpace(identifier))
}
