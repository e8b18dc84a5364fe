// Package urlparse splits a pasted store URL into the pieces of a request.
package urlparse

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/lsx-cli/lsx/internal/api"
	"github.com/lsx-cli/lsx/internal/validation"
)

// ParsedURL is a store API URL broken into request parts.
type ParsedURL struct {
	DomainPrefix string
	APIVersion   string
	Path         string // always starts with "/"
	Params       api.Query
}

// pathPattern matches /api/{version}{path} with a dotted numeric version.
var pathPattern = regexp.MustCompile(`^/api/([0-9]+\.[0-9]+)(/.*)?$`)

// IsURL reports whether s looks like an absolute http(s) URL rather than an API path.
func IsURL(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "http://")
}

// Parse extracts the store, version, path and ordered query from a URL like
// https://mystore.vendhq.com/api/2.0/products?page_size=50.
func Parse(rawURL string) (*ParsedURL, error) {
	if rawURL == "" {
		return nil, fmt.Errorf("URL cannot be empty")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid URL scheme %q: expected http or https", parsed.Scheme)
	}

	host := strings.ToLower(parsed.Hostname())
	prefix, ok := strings.CutSuffix(host, "."+api.Host)
	if !ok || strings.Contains(prefix, ".") {
		return nil, fmt.Errorf("invalid store URL host %q: expected {domain_prefix}.%s", host, api.Host)
	}
	if err := validation.ValidateDomainPrefix(prefix); err != nil {
		return nil, err
	}

	matches := pathPattern.FindStringSubmatch(parsed.EscapedPath())
	if matches == nil {
		return nil, fmt.Errorf("invalid store URL path %q: expected /api/{version}/...", parsed.Path)
	}
	path := matches[2]
	if path == "" {
		path = "/"
	}

	params, err := parseQuery(parsed.RawQuery)
	if err != nil {
		return nil, err
	}

	return &ParsedURL{
		DomainPrefix: prefix,
		APIVersion:   matches[1],
		Path:         path,
		Params:       params,
	}, nil
}

// parseQuery decodes raw in its original order; url.ParseQuery would sort it.
func parseQuery(raw string) (api.Query, error) {
	var q api.Query
	for part := range strings.SplitSeq(raw, "&") {
		if part == "" {
			continue
		}
		k, v, _ := strings.Cut(part, "=")
		key, err := url.QueryUnescape(k)
		if err != nil {
			return nil, fmt.Errorf("invalid query key %q: %w", k, err)
		}
		value, err := url.QueryUnescape(v)
		if err != nil {
			return nil, fmt.Errorf("invalid query value for %q: %w", key, err)
		}
		q = q.Add(key, value)
	}
	return q, nil
}
