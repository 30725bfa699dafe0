package service

import (
	"fmt"
	"net/url"
	"strings"
)

// CanonicalURL normalizes an article URL for fingerprinting: lowercased
// scheme and host, query and fragment stripped, trailing slash trimmed.
// Tracking parameters and fragments routinely vary between sitemap entries
// for the same page.
func CanonicalURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("url %q has no scheme or host", raw)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.RawQuery = ""
	u.Fragment = ""
	u.Path = strings.TrimSuffix(u.Path, "/")
	return u.String(), nil
}
