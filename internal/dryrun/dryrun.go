// Package dryrun provides dry-run mode: the request a command would send is
// described instead of sent.
package dryrun

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
)

type contextKey string

const dryRunKey contextKey = "dry_run_enabled"

// WithDryRun returns a context with dry-run mode enabled/disabled.
func WithDryRun(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, dryRunKey, enabled)
}

// IsEnabled returns true if dry-run mode is enabled.
func IsEnabled(ctx context.Context) bool {
	if v, ok := ctx.Value(dryRunKey).(bool); ok {
		return v
	}
	return false
}

// Preview is a request that was not sent.
type Preview struct {
	Method   string            `json:"method"`
	URL      string            `json:"url"`
	Headers  map[string]string `json:"headers,omitempty"`
	Body     any               `json:"body,omitempty"`
	Warnings []string          `json:"warnings,omitempty"`
}

// Write outputs the preview to the writer
func (p *Preview) Write(w io.Writer) error {
	_, _ = fmt.Fprintf(w, "[DRY-RUN] Would send %s %s\n", p.Method, p.URL)
	_, _ = fmt.Fprintf(w, "───────────────────────────────────────\n")

	for _, k := range slices.Sorted(maps.Keys(p.Headers)) {
		_, _ = fmt.Fprintf(w, "  %s: %s\n", k, p.Headers[k])
	}

	if p.Body != nil {
		data, err := json.MarshalIndent(p.Body, "  ", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode preview body: %w", err)
		}
		_, _ = fmt.Fprintf(w, "\n  %s\n", data)
	}

	if len(p.Warnings) > 0 {
		_, _ = fmt.Fprintln(w, "\nWarnings:")
		for _, warning := range p.Warnings {
			_, _ = fmt.Fprintf(w, "  ! %s\n", warning)
		}
	}

	_, _ = fmt.Fprintf(w, "───────────────────────────────────────\n")
	_, err := fmt.Fprintln(w, "No request sent (dry-run mode)")
	return err
}
