package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lsx-cli/lsx/internal/config"
	"github.com/lsx-cli/lsx/internal/validation"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "auth",
		Aliases: []string{"au"},
		Short:   "Manage store credentials",
		Long:    "Save and manage Lightspeed personal tokens in your OS keychain, one profile per store.",
	}

	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthStatusCmd())
	cmd.AddCommand(newAuthLogoutCmd())
	cmd.AddCommand(newAuthSwitchCmd())
	cmd.AddCommand(newAuthListCmd())

	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var (
		token        string
		domainPrefix string
		envFile      string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Save a personal token for a store",
		Long: strings.TrimSpace(`
Save Lightspeed Retail credentials to your OS keychain.

You'll need:
- Domain prefix: the store subdomain, e.g. "mystore" for mystore.vendhq.com
- Personal token: Setup > Personal Tokens in the Retail POS back office

Use the global --profile flag to keep several stores side by side.
`),
		Example: strings.TrimSpace(`
  lsx auth login --token YOUR_TOKEN --domain-prefix mystore

  # Second store under its own profile
  lsx auth login --token OTHER_TOKEN --domain-prefix outlet --profile outlet

  # Read LIGHTSPEED_TOKEN and LIGHTSPEED_DOMAIN_PREFIX from a .env file
  lsx auth login --env-file .env
`),
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			if envFile != "" {
				fromFile, err := config.ReadEnvFile(envFile)
				if err != nil {
					return err
				}
				if token == "" {
					token = fromFile.Token
				}
				if domainPrefix == "" {
					domainPrefix = fromFile.DomainPrefix
				}
			}

			if strings.TrimSpace(token) == "" {
				return fmt.Errorf("--token is required")
			}
			if strings.TrimSpace(domainPrefix) == "" {
				return fmt.Errorf("--domain-prefix is required")
			}
			prefix, err := validation.NormalizeDomainPrefix(domainPrefix)
			if err != nil {
				return err
			}

			profile := flags.Profile
			if profile == "" {
				profile = "default"
			}
			account := config.Account{Token: strings.TrimSpace(token), DomainPrefix: prefix}
			if err := config.SaveProfile(profile, account); err != nil {
				return fmt.Errorf("failed to save credentials: %w", err)
			}

			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{
					"saved":         true,
					"profile":       profile,
					"domain_prefix": prefix,
				})
			}
			printIfNotQuiet(cmd, "Authentication credentials saved successfully!\n")
			printIfNotQuiet(cmd, "  Store: https://%s.vendhq.com\n", prefix)
			printIfNotQuiet(cmd, "  Profile: %s\n", profile)
			if _, fromEnv, _ := config.AccountFromEnv(); fromEnv {
				printIfNotQuiet(cmd, "  Note: %s/%s are set and take precedence over saved profiles\n", config.EnvToken, config.EnvDomainPrefix)
			}
			return nil
		}),
	}

	cmd.Flags().StringVar(&token, "token", "", "Personal token")
	cmd.Flags().StringVar(&domainPrefix, "domain-prefix", "", "Store subdomain (or full store URL)")
	cmd.Flags().StringVar(&envFile, "env-file", "", "Load LIGHTSPEED_TOKEN and LIGHTSPEED_DOMAIN_PREFIX from a .env file")
	flagAlias(cmd.Flags(), "token", "tk")
	flagAlias(cmd.Flags(), "domain-prefix", "dp")
	flagAlias(cmd.Flags(), "env-file", "env")

	return cmd
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which credentials will be used",
		Long:  "Display the credentials the next request will use. The token is masked.",
		Example: strings.TrimSpace(`
  lsx auth status
  lsx auth status --json
`),
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.ResolveClientConfig(flags.Profile)
			if err != nil {
				if errors.Is(err, config.ErrNotConfigured) {
					if isJSON(cmd) {
						return printJSON(cmd, map[string]any{
							"authenticated": false,
							"message":       "Not authenticated. Run 'lsx auth login' to configure credentials.",
						})
					}
					printIfNotQuiet(cmd, "Not authenticated.\nRun 'lsx auth login' to configure credentials.\n")
					return nil
				}
				return fmt.Errorf("failed to load credentials: %w", err)
			}

			if isJSON(cmd) {
				payload := map[string]any{
					"authenticated": true,
					"domain_prefix": cfg.DomainPrefix,
					"token":         maskToken(cfg.Token),
					"source":        string(cfg.Source),
				}
				if cfg.Profile != "" {
					payload["profile"] = cfg.Profile
				}
				return printJSON(cmd, payload)
			}

			printIfNotQuiet(cmd, "Authenticated\n")
			printIfNotQuiet(cmd, "  Store: https://%s.vendhq.com\n", cfg.DomainPrefix)
			printIfNotQuiet(cmd, "  Token: %s\n", maskToken(cfg.Token))
			if cfg.Profile != "" {
				printIfNotQuiet(cmd, "  Profile: %s\n", cfg.Profile)
			}
			printIfNotQuiet(cmd, "  Source: %s\n", cfg.Source)
			return nil
		}),
	}
}

func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove a saved profile",
		Long:  "Delete the saved credentials for --profile (default: the current profile).",
		Example: strings.TrimSpace(`
  lsx auth logout
  lsx auth logout --profile outlet
`),
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			profile, err := config.ActiveProfile(flags.Profile)
			if err != nil {
				return fmt.Errorf("failed to determine profile: %w", err)
			}

			exists, err := config.HasProfile(profile)
			if err != nil {
				return fmt.Errorf("failed to load credentials: %w", err)
			}
			if !exists {
				printIfNotQuiet(cmd, "No credentials found for profile %s.\n", profile)
				return nil
			}

			if err := config.DeleteProfile(profile); err != nil {
				return fmt.Errorf("failed to remove credentials: %w", err)
			}
			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"removed": true, "profile": profile})
			}
			printIfNotQuiet(cmd, "Profile %s removed successfully.\n", profile)
			return nil
		}),
	}
}

func newAuthSwitchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "switch <profile>",
		Short: "Make a saved profile current",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			profile := strings.TrimSpace(args[0])
			exists, err := config.HasProfile(profile)
			if err != nil {
				return fmt.Errorf("failed to load credentials: %w", err)
			}
			if !exists {
				msg := fmt.Sprintf("profile %q not found", profile)
				if known, err := config.ListProfiles(); err == nil {
					if suggestion := suggestProfile(profile, known); suggestion != "" {
						msg += fmt.Sprintf(" (did you mean %q?)", suggestion)
					}
				}
				return errors.New(msg)
			}

			if err := config.SetCurrentProfile(profile); err != nil {
				return fmt.Errorf("failed to switch profile: %w", err)
			}
			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"current_profile": profile})
			}
			printIfNotQuiet(cmd, "Switched to profile %s.\n", profile)
			if os.Getenv(config.EnvProfile) != "" {
				printIfNotQuiet(cmd, "  Note: %s is set and overrides the current profile\n", config.EnvProfile)
			}
			return nil
		}),
	}
}

func newAuthListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved profiles",
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			profiles, err := config.ListProfiles()
			if err != nil {
				return fmt.Errorf("failed to list profiles: %w", err)
			}
			current, _ := config.CurrentProfile()

			if isJSON(cmd) {
				if profiles == nil {
					profiles = []string{}
				}
				return printJSON(cmd, map[string]any{"profiles": profiles, "current": current})
			}
			if len(profiles) == 0 {
				printIfNotQuiet(cmd, "No saved profiles.\n")
				return nil
			}
			for _, p := range profiles {
				marker := " "
				if p == current {
					marker = "*"
				}
				printIfNotQuiet(cmd, "%s %s\n", marker, p)
			}
			return nil
		}),
	}
}

// maskToken masks a token for display, showing only first and last 4 characters
func maskToken(token string) string {
	if len(token) < 8 {
		return strings.Repeat("*", len(token))
	}
	return token[:4] + strings.Repeat("*", len(token)-8) + token[len(token)-4:]
}
