package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lsx-cli/lsx/internal/api"
	"github.com/lsx-cli/lsx/internal/config"
)

// HandleError processes an error and returns a user-friendly message with suggestions
func HandleError(err error) string {
	if err == nil {
		return ""
	}

	var msg strings.Builder
	var statusErr *api.HTTPStatusError
	lower := strings.ToLower(err.Error())

	switch {
	case errors.Is(err, config.ErrNotConfigured):
		msg.WriteString("Not authenticated.\n\n")
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Run: lsx auth login --token TOKEN --domain-prefix STORE\n")
		fmt.Fprintf(&msg, "  - Or set %s and %s\n", config.EnvToken, config.EnvDomainPrefix)

	case errors.As(err, &statusErr):
		fmt.Fprintf(&msg, "API error (HTTP %d) for %s %s", statusErr.StatusCode, statusErr.Method, statusErr.URL)
		if detail := statusErr.Message(); detail != "" {
			fmt.Fprintf(&msg, ": %s", detail)
		}
		msg.WriteString("\n\n")
		msg.WriteString(suggestionsForStatusCode(statusErr.StatusCode))

	case strings.Contains(lower, "connection refused"):
		msg.WriteString("Connection refused.\n\n")
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Check the endpoint override (LSX_ENDPOINT or settings file)\n")
		msg.WriteString("  - Check your network connection\n")

	case strings.Contains(lower, "no such host"):
		msg.WriteString("DNS resolution failed.\n\n")
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Check the domain prefix spelling: lsx auth status\n")
		msg.WriteString("  - Verify your DNS settings\n")

	case strings.Contains(lower, "certificate"):
		msg.WriteString("TLS certificate error.\n\n")
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Check for a proxy intercepting HTTPS traffic\n")
		msg.WriteString("  - Verify the system certificate store is up to date\n")

	case strings.Contains(lower, "deadline exceeded") || strings.Contains(lower, "timeout"):
		msg.WriteString("Request timed out.\n\n")
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Raise --timeout (current default comes from LSX_TIMEOUT or 30s)\n")
		msg.WriteString("  - Narrow the request with page_size or other query parameters\n")

	default:
		fmt.Fprintf(&msg, "Error: %s\n", err.Error())
	}

	return msg.String()
}

func suggestionsForStatusCode(code int) string {
	var suggestions strings.Builder
	suggestions.WriteString("Suggestions:\n")

	switch {
	case code == 400 || code == 422:
		suggestions.WriteString("  - Check your request parameters and body\n")
		suggestions.WriteString("  - Use --debug to see the resolved request URL\n")
	case code == 401:
		suggestions.WriteString("  - Your personal token may be invalid or revoked\n")
		suggestions.WriteString("  - Run: lsx auth login\n")
	case code == 403:
		suggestions.WriteString("  - The token lacks permission for this resource\n")
		suggestions.WriteString("  - Check the token's scopes in the Retail back office\n")
	case code == 404:
		suggestions.WriteString("  - Check the path and the resource ID\n")
		suggestions.WriteString("  - Some resources exist only in one API version (--api-version)\n")
	case code == 429:
		suggestions.WriteString("  - Too many requests; wait before retrying\n")
	case code >= 500:
		suggestions.WriteString("  - Server error - not your fault\n")
		suggestions.WriteString("  - Wait and retry\n")
	default:
		suggestions.WriteString("  - Use --debug for more details\n")
	}

	return suggestions.String()
}
