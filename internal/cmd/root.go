package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/lsx-cli/lsx/internal/config"
	"github.com/lsx-cli/lsx/internal/debug"
	"github.com/lsx-cli/lsx/internal/dryrun"
	"github.com/lsx-cli/lsx/internal/iocontext"
	"github.com/lsx-cli/lsx/internal/outfmt"
)

// rootFlags holds global CLI flags
type rootFlags struct {
	Output   string
	JSON     bool
	Query    string
	JQ       string
	Template string
	Compact  bool
	Debug    bool
	DryRun   bool
	Timeout  time.Duration
	Profile  string
	Quiet    bool
	Silent   bool
}

// flags and settings are package-level state reset at the start of every
// Execute call. Reading them outside a command's RunE sees the previous run.
var (
	flags    rootFlags
	settings = config.DefaultSettings()
)

// Execute runs the root command
func Execute(ctx context.Context, args []string) error {
	// Keys from ./.env fill in unset variables before settings are read so
	// LSX_* and LIGHTSPEED_* values placed there take effect.
	_ = config.LoadDotEnv(".env")

	root := &cobra.Command{
		Use:                "lsx",
		Short:              "CLI for the Lightspeed Retail (X-Series) API",
		Long:               rootLong,
		SilenceUsage:       true,
		SilenceErrors:      true,
		DisableSuggestions: true, // enhanceUnknownError provides did-you-mean
	}
	root.SetContext(ctx)
	root.SetArgs(args)

	loaded, err := config.LoadSettings()
	if err != nil {
		_, _ = fmt.Fprintf(root.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	settings = loaded
	flags = rootFlags{
		Output:  settings.Output,
		Timeout: settings.Timeout,
	}

	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if flags.JSON {
			if flagOrAliasChanged(cmd, "output") && flags.Output != "json" {
				return fmt.Errorf("--json conflicts with --output %s", flags.Output)
			}
			flags.Output = "json"
		}
		needsJSON := flags.Query != "" || flags.JQ != "" || flags.Template != ""
		if needsJSON && flags.Output != "json" {
			if flagOrAliasChanged(cmd, "output") {
				return fmt.Errorf("--query/--jq/--template require --output json (or --json)")
			}
			flags.Output = "json"
		}

		mode, err := outfmt.Parse(flags.Output)
		if err != nil {
			return err
		}
		ctx = outfmt.WithMode(ctx, mode)
		ctx = outfmt.WithCompact(ctx, flags.Compact)

		if flags.Timeout < 0 {
			return fmt.Errorf("--timeout must be >= 0")
		}

		// Errors always reach stderr; --silent and --quiet only drop
		// diagnostics, and --quiet also drops text output.
		ioStreams := iocontext.DefaultIO()
		cmd.SetErr(ioStreams.ErrOut)
		if flags.Silent || flags.Quiet {
			ioStreams = ioStreams.Quiet(flags.Quiet && mode == outfmt.Text)
		}
		ctx = iocontext.WithIO(ctx, ioStreams)
		cmd.SetOut(ioStreams.Out)

		debug.SetupLogger(ioStreams.ErrOut, flags.Debug, mode == outfmt.JSON)
		ctx = debug.WithDebug(ctx, flags.Debug)
		ctx = dryrun.WithDryRun(ctx, flags.DryRun)
		if settings.ConfigFile != "" {
			slog.Debug("loaded settings", "file", settings.ConfigFile)
		}

		if query := getJQQuery(); query != "" {
			ctx = outfmt.WithQuery(ctx, query)
		}
		if flags.Template != "" {
			tmpl, err := loadTemplate(flags.Template)
			if err != nil {
				return err
			}
			ctx = outfmt.WithTemplate(ctx, tmpl)
		}

		cmd.SetContext(ctx)
		return nil
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.Output, "output", "o", flags.Output, "Output format: text|json (env LSX_OUTPUT)")
	pf.BoolVarP(&flags.JSON, "json", "j", false, "Shorthand for --output json")
	pf.StringVarP(&flags.Query, "query", "q", "", "JQ expression to filter JSON output")
	pf.StringVar(&flags.JQ, "jq", "", "Alias for --query")
	pf.StringVar(&flags.Template, "template", "", "Go template string (or @path) to render JSON output")
	pf.BoolVar(&flags.Compact, "compact-json", false, "Compact JSON output (no indentation)")
	pf.BoolVar(&flags.Debug, "debug", false, "Print resolved request URLs and debug logs to stderr")
	pf.BoolVar(&flags.DryRun, "dry-run", false, "Print the request that would be sent without sending it")
	pf.DurationVar(&flags.Timeout, "timeout", flags.Timeout, "HTTP request timeout (e.g., 30s, 2m; env LSX_TIMEOUT)")
	pf.StringVar(&flags.Profile, "profile", "", "Credential profile to use (env LSX_PROFILE)")
	pf.BoolVarP(&flags.Quiet, "quiet", "Q", false, "Suppress non-essential output")
	pf.BoolVar(&flags.Silent, "silent", false, "Suppress non-error output to stderr")

	flagAlias(pf, "output", "out")
	flagAlias(pf, "compact-json", "cj")
	flagAlias(pf, "template", "tpl")
	flagAlias(pf, "timeout", "to")
	flagAlias(pf, "profile", "pf")
	flagAlias(pf, "debug", "dbg")
	flagAlias(pf, "dry-run", "dr")

	root.AddCommand(newAPICmd())
	for _, method := range shorthandMethods {
		root.AddCommand(newMethodCmd(method))
	}
	root.AddCommand(newAuthCmd())
	root.AddCommand(newVersionCmd())

	targetCmd, err := root.ExecuteC()
	if err != nil {
		if !errors.Is(err, errAlreadyHandled) {
			_, _ = fmt.Fprintln(root.ErrOrStderr(), enhanceUnknownError(err, root, targetCmd))
		}
		return err
	}
	return nil
}

const rootLong = `Call the Lightspeed Retail (X-Series, formerly Vend) REST API with a personal token.

Requests go to https://{domain_prefix}.vendhq.com/api/{version}{path}.
Credentials come from LIGHTSPEED_TOKEN and LIGHTSPEED_DOMAIN_PREFIX, or from a
profile saved with 'lsx auth login'.`

// enhanceUnknownError adds "did you mean?" suggestions to unknown command/flag errors.
func enhanceUnknownError(err error, root *cobra.Command, targetCmd *cobra.Command) string {
	msg := err.Error()

	if strings.Contains(msg, "unknown command") {
		if unknown := extractQuoted(msg); unknown != "" {
			var names []string
			for _, c := range root.Commands() {
				if c.IsAvailableCommand() || c.Name() == "help" {
					names = append(names, c.Name())
					names = append(names, c.Aliases...)
				}
			}
			if suggestion := suggestCommand(unknown, names); suggestion != "" {
				return fmt.Sprintf("%s\n\nDid you mean %q?", msg, suggestion)
			}
		}
		return msg
	}

	if strings.Contains(msg, "unknown flag") || strings.Contains(msg, "unknown shorthand flag") {
		unknown := extractFlag(msg)
		if unknown == "" {
			return msg
		}
		seen := make(map[string]bool)
		var flagNames []string
		addFlags := func(fs *pflag.FlagSet) {
			fs.VisitAll(func(f *pflag.Flag) {
				if f.Hidden {
					return
				}
				names := []string{"--" + f.Name}
				if f.Shorthand != "" {
					names = append(names, "-"+f.Shorthand)
				}
				for _, name := range names {
					if !seen[name] {
						seen[name] = true
						flagNames = append(flagNames, name)
					}
				}
			})
		}
		target := targetCmd
		if target == nil {
			target = root
		}
		addFlags(target.Flags())
		addFlags(target.InheritedFlags())

		helpCmd := strings.TrimSpace(target.CommandPath()) + " --help"
		if suggestion := suggestFlag(unknown, flagNames); suggestion != "" {
			return fmt.Sprintf("%s\n\nDid you mean %q?\nRun %q to see supported flags.", msg, suggestion, helpCmd)
		}
		return fmt.Sprintf("%s\n\nRun %q to see supported flags.", msg, helpCmd)
	}

	return msg
}

// extractQuoted extracts the first double-quoted substring from s.
func extractQuoted(s string) string {
	start := strings.IndexByte(s, '"')
	if start < 0 {
		return ""
	}
	end := strings.IndexByte(s[start+1:], '"')
	if end < 0 {
		return ""
	}
	return s[start+1 : start+1+end]
}

// extractFlag extracts a flag name such as "--foo" or "-x" from an error message.
func extractFlag(s string) string {
	idx := strings.Index(s, "--")
	if idx < 0 {
		// "unknown shorthand flag: 'a' in -a"
		idx = strings.LastIndex(s, " -")
		if idx < 0 {
			return ""
		}
		rest := strings.TrimSpace(s[idx+1:])
		if end := strings.IndexByte(rest, ' '); end >= 0 {
			rest = rest[:end]
		}
		rest = strings.TrimRight(rest, ".,;:!?\"'")
		if strings.HasPrefix(rest, "-") && len(rest) > 1 {
			return rest
		}
		return ""
	}
	rest := s[idx:]
	end := strings.IndexByte(rest, ' ')
	if end < 0 {
		end = len(rest)
	}
	return strings.TrimRight(rest[:end], ".,;:!?\"'")
}
