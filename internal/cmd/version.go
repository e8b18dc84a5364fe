package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lsx-cli/lsx/internal/iocontext"
	"github.com/lsx-cli/lsx/internal/update"
)

// version is set at build time via ldflags
var version = "dev"

func newVersionCmd() *cobra.Command {
	var noCheck bool

	cmd := &cobra.Command{
		Use:     "version",
		Aliases: []string{"v"},
		Short:   "Print version information",
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			var result *update.CheckResult
			if !noCheck {
				// Fails silently and never waits longer than update.CheckTimeout.
				result = update.CheckForUpdate(cmd.Context(), version)
			}

			if isJSON(cmd) {
				payload := map[string]any{"version": version}
				if result != nil {
					payload["update"] = result
				}
				return printJSON(cmd, payload)
			}

			printIfNotQuiet(cmd, "lsx version %s\n", version)
			if notice := result.Notice(); notice != "" {
				_, _ = fmt.Fprintf(iocontext.GetIO(cmd.Context()).ErrOut, "\n%s\n", notice)
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&noCheck, "no-check", false, "Skip the release check")
	return cmd
}
