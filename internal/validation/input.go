// Package validation checks user input before it reaches the API client.
package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// MaxJSONPayload caps request bodies read from flags, files or stdin.
const MaxJSONPayload = 1048576

const vendorSuffix = ".vendhq.com"

var domainLabel = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)

var apiVersionSegment = regexp.MustCompile(`^[0-9A-Za-z][0-9A-Za-z._-]*$`)

// NormalizeDomainPrefix accepts a bare prefix ("mystore"), a host
// ("mystore.vendhq.com") or a store URL ("https://mystore.vendhq.com/...")
// and returns the lower-cased prefix.
func NormalizeDomainPrefix(input string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(input))
	if s == "" {
		return "", fmt.Errorf("domain prefix is required")
	}
	if strings.Contains(s, "://") {
		u, err := url.Parse(s)
		if err != nil || u.Host == "" {
			return "", fmt.Errorf("invalid store URL %q", input)
		}
		s = u.Hostname()
	}
	s = strings.TrimSuffix(s, "/")
	s = strings.TrimSuffix(s, vendorSuffix)
	if err := ValidateDomainPrefix(s); err != nil {
		return "", err
	}
	return s, nil
}

// ValidateDomainPrefix checks that prefix is a single DNS label.
func ValidateDomainPrefix(prefix string) error {
	if prefix == "" {
		return fmt.Errorf("domain prefix is required")
	}
	if !domainLabel.MatchString(prefix) {
		return fmt.Errorf("invalid domain prefix %q: must be 1-63 lowercase letters, digits or hyphens, not starting or ending with a hyphen", prefix)
	}
	return nil
}

// ValidateAPIVersion checks that v can stand as the {version} path segment.
// Undocumented versions are allowed; only values that would change the
// shape of the URL are rejected.
func ValidateAPIVersion(v string) error {
	if !apiVersionSegment.MatchString(v) {
		return fmt.Errorf("invalid API version %q: must be a single path segment such as 2.0", v)
	}
	return nil
}

// ParseKeyValue splits "key=value". The value may be empty and may contain '='.
func ParseKeyValue(field string) (string, string, error) {
	key, value, ok := strings.Cut(field, "=")
	if !ok {
		return "", "", fmt.Errorf("invalid field format %q: must be key=value", field)
	}
	if strings.TrimSpace(key) == "" {
		return "", "", fmt.Errorf("invalid field format %q: key is missing", field)
	}
	return key, value, nil
}

// ValidateJSONPayload checks a request body size limit.
func ValidateJSONPayload(payload []byte) error {
	if len(payload) > MaxJSONPayload {
		return fmt.Errorf("JSON payload exceeds maximum size of %d bytes (got %d bytes)", MaxJSONPayload, len(payload))
	}
	return nil
}

// ValidateEndpoint checks an endpoint override such as http://localhost:8080.
func ValidateEndpoint(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid endpoint %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid endpoint %q: host is missing", raw)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return fmt.Errorf("invalid endpoint %q: query and fragment are not allowed", raw)
	}
	return nil
}
