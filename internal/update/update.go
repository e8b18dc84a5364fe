// Package update checks GitHub for a newer lsx release.
package update

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/mod/semver"
)

const (
	DefaultGitHubReleasesURL = "https://api.github.com/repos/lsx-cli/lsx/releases/latest"
	CheckTimeout             = 5 * time.Second
)

// GitHubReleasesURL can be overridden in tests.
var GitHubReleasesURL = DefaultGitHubReleasesURL

type Release struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

type CheckResult struct {
	CurrentVersion  string `json:"current_version"`
	LatestVersion   string `json:"latest_version"`
	UpdateURL       string `json:"update_url,omitempty"`
	UpdateAvailable bool   `json:"update_available"`
}

// Notice returns a one-line upgrade hint, or "" when up to date.
func (r *CheckResult) Notice() string {
	if r == nil || !r.UpdateAvailable {
		return ""
	}
	msg := fmt.Sprintf("A new version of lsx is available: %s (current %s)", r.LatestVersion, r.CurrentVersion)
	if r.UpdateURL != "" {
		msg += " " + r.UpdateURL
	}
	return msg
}

// CheckForUpdate returns nil when the check cannot complete. It never
// blocks the CLI for longer than CheckTimeout.
func CheckForUpdate(ctx context.Context, currentVersion string) *CheckResult {
	if currentVersion == "dev" || currentVersion == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, CheckTimeout)
	defer cancel()

	var release Release
	resp, err := resty.New().
		SetTimeout(CheckTimeout).
		R().
		SetContext(ctx).
		SetHeader("Accept", "application/vnd.github.v3+json").
		SetResult(&release).
		Get(GitHubReleasesURL)
	if err != nil || !resp.IsSuccess() || release.TagName == "" {
		return nil
	}

	current := normalizeVersion(currentVersion)
	latest := normalizeVersion(release.TagName)

	result := &CheckResult{
		CurrentVersion: currentVersion,
		LatestVersion:  strings.TrimPrefix(release.TagName, "v"),
		UpdateURL:      release.HTMLURL,
	}
	if semver.IsValid(current) && semver.IsValid(latest) {
		result.UpdateAvailable = semver.Compare(latest, current) > 0
	}
	return result
}

func normalizeVersion(v string) string {
	if !strings.HasPrefix(v, "v") {
		return "v" + v
	}
	return v
}
