package config

import (
	"fmt"
	"os"
	"strings"
)

// ClientConfig contains resolved API client settings.
type ClientConfig struct {
	Token        string
	DomainPrefix string
	Source       Source
	// Profile is empty when the credentials came from the environment.
	Profile string
}

// ActiveProfile picks the profile name to use: override, then LSX_PROFILE,
// then the stored current profile.
func ActiveProfile(override string) (string, error) {
	if name := strings.TrimSpace(override); name != "" {
		return name, nil
	}
	if name := strings.TrimSpace(os.Getenv(EnvProfile)); name != "" {
		return name, nil
	}
	return CurrentProfile()
}

// ResolveClientConfig resolves credentials for the API client. The
// LIGHTSPEED_* environment pair always wins; otherwise the profile chosen by
// ActiveProfile(profile) is loaded from the keyring.
func ResolveClientConfig(profile string) (ClientConfig, error) {
	if account, ok, err := AccountFromEnv(); ok {
		if err != nil {
			return ClientConfig{}, err
		}
		return ClientConfig{
			Token:        account.Token,
			DomainPrefix: account.DomainPrefix,
			Source:       SourceEnv,
		}, nil
	}

	name, err := ActiveProfile(profile)
	if err != nil {
		return ClientConfig{}, err
	}
	account, err := LoadProfile(name)
	if err != nil {
		return ClientConfig{}, err
	}
	if account.Token == "" {
		return ClientConfig{}, fmt.Errorf("token not configured for profile %q (set %s or run 'lsx auth login')", name, EnvToken)
	}
	if account.DomainPrefix == "" {
		return ClientConfig{}, fmt.Errorf("domain prefix not configured for profile %q (set %s or run 'lsx auth login')", name, EnvDomainPrefix)
	}
	return ClientConfig{
		Token:        account.Token,
		DomainPrefix: account.DomainPrefix,
		Source:       SourceProfile,
		Profile:      name,
	}, nil
}
