// Package commands provides the CLI command implementations for minkspec.
package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/AshkanYarmoradi/minkspec/cli/config"
	"github.com/AshkanYarmoradi/minkspec/cli/styles"
	"github.com/AshkanYarmoradi/minkspec/cli/ui"
)

var (
	// Version information (set at build time)
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// NewRootCommand creates the root command for the minkspec CLI
func NewRootCommand() *cobra.Command {
	var noColor bool

	rootCmd := &cobra.Command{
		Use:   "minkspec",
		Short: "Given/When/Then scenarios for message processors",
		Long: ui.Banner() + `

minkspec runs behavior scenarios against message processors: replay a
history of commands and events, execute one operation, assert on its
result and on the events it published.

` + styles.Title.Render("Quick Start:") + `

  ` + styles.Code.Render("minkspec init") + `              Write a minkspec.yaml
  ` + styles.Code.Render("minkspec config show") + `       Print the active configuration
  ` + styles.Code.Render("minkspec diagnose") + `          Run a smoke scenario with it`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				styles.DisableColors()
			}
		},
	}

	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(NewInitCommand())
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewDiagnoseCommand())
	rootCmd.AddCommand(NewVersionCommand(Version, Commit, BuildDate))

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCommand()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, styles.FormatError(err.Error()))
		return err
	}

	return nil
}

// loadConfig finds the configuration starting at dir, falling back to the
// defaults when no file exists.
func loadConfig(dir string) (string, *config.Config, error) {
	root, cfg, err := config.FindConfig(dir)
	if errors.Is(err, os.ErrNotExist) {
		return "", config.DefaultConfig(), nil
	}
	if err != nil {
		return "", nil, err
	}
	return filepath.Join(root, config.ConfigFileName), cfg, nil
}
