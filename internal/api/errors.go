package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"
)

// HTTPStatusError is returned when the API answers with a non-2xx status.
type HTTPStatusError struct {
	StatusCode int
	Body       []byte
	Method     string
	URL        string
}

func (e *HTTPStatusError) Error() string {
	msg := summarizeBody(e.Body)
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Method != "" && e.URL != "" {
		return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.URL, e.StatusCode, msg)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, msg)
}

// Message returns the human-readable part of the error body.
func (e *HTTPStatusError) Message() string {
	return summarizeBody(e.Body)
}

// summarizeBody pulls the message out of a Lightspeed error payload, falling
// back to the first line of the raw body.
func summarizeBody(body []byte) string {
	var payload struct {
		Error   any    `json:"error"`
		Details string `json:"details"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		var parts []string
		switch v := payload.Error.(type) {
		case string:
			parts = append(parts, v)
		case map[string]any:
			if m, ok := v["message"].(string); ok {
				parts = append(parts, m)
			}
		}
		if payload.Message != "" {
			parts = append(parts, payload.Message)
		}
		if payload.Details != "" {
			parts = append(parts, payload.Details)
		}
		if len(parts) > 0 {
			return strings.Join(parts, ": ")
		}
	}
	text := strings.TrimSpace(string(body))
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	const maxLen = 200
	if len(text) > maxLen {
		cut := maxLen
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut] + "..."
	}
	return text
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}

// IsNotFoundError checks if the error is a 404 response.
func IsNotFoundError(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsAuthError checks if the error is a 401 or 403 response.
func IsAuthError(err error) bool {
	code := StatusCode(err)
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}
