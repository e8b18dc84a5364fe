package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/lsx-cli/lsx/internal/api"
	"github.com/lsx-cli/lsx/internal/config"
	"github.com/lsx-cli/lsx/internal/iocontext"
	"github.com/lsx-cli/lsx/internal/validation"
)

type clientFactory struct {
	timeout     time.Duration
	userAgent   string
	endpoint    string
	debug       bool
	diagnostics io.Writer
}

func newClientFactory(cmd *cobra.Command) *clientFactory {
	return &clientFactory{
		timeout:     flags.Timeout,
		userAgent:   fmt.Sprintf("lsx/%s", version),
		endpoint:    settings.Endpoint,
		debug:       flags.Debug,
		diagnostics: iocontext.GetIO(cmd.Context()).ErrOut,
	}
}

// client resolves credentials for profile and builds an API client.
func (f *clientFactory) client(profile string) (*api.Client, error) {
	cfg, err := config.ResolveClientConfig(profile)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateDomainPrefix(cfg.DomainPrefix); err != nil {
		return nil, err
	}
	return f.newClient(cfg)
}

func (f *clientFactory) newClient(cfg config.ClientConfig) (*api.Client, error) {
	opts := []api.Option{
		api.WithDebug(f.debug),
		api.WithUserAgent(f.userAgent),
		api.WithDiagnostics(f.diagnostics),
	}
	if f.timeout > 0 {
		opts = append(opts, api.WithTimeout(f.timeout))
	}
	if f.endpoint != "" {
		if err := validation.ValidateEndpoint(f.endpoint); err != nil {
			return nil, err
		}
		opts = append(opts, api.WithEndpoint(f.endpoint))
	}
	return api.New(cfg.Token, cfg.DomainPrefix, opts...), nil
}

func getClient(cmd *cobra.Command) (*api.Client, error) {
	return newClientFactory(cmd).client(flags.Profile)
}
