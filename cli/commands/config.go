package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AshkanYarmoradi/minkspec/cli/config"
	"github.com/AshkanYarmoradi/minkspec/cli/styles"
	"github.com/AshkanYarmoradi/minkspec/cli/ui"
)

// NewConfigCommand creates the config command
func NewConfigCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the minkspec configuration",
	}
	cmd.PersistentFlags().StringVarP(&dir, "dir", "C", ".", "Directory to search for "+config.ConfigFileName)

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the active configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, cfg, err := loadConfig(dir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if path == "" {
				fmt.Fprintln(out, styles.FormatInfo("No "+config.ConfigFileName+" found, showing defaults"))
			} else {
				fmt.Fprintln(out, styles.FormatInfo("Loaded "+path))
			}
			fmt.Fprintln(out, settingsTable(cfg).Render())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Check the configuration for errors",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, cfg, err := loadConfig(dir)
			if err != nil {
				return err
			}
			if path == "" {
				return fmt.Errorf("no %s found", config.ConfigFileName)
			}

			out := cmd.OutOrStdout()
			problems := cfg.Validate()
			if len(problems) == 0 {
				fmt.Fprintln(out, styles.FormatSuccess(path+" is valid"))
				return nil
			}

			for _, p := range problems {
				fmt.Fprintln(out, styles.FormatError(p))
			}
			return fmt.Errorf("%s has %d problem(s)", path, len(problems))
		},
	})

	return cmd
}

func settingsTable(cfg *config.Config) *ui.Table {
	seed := cfg.Clock.Seed
	if seed == "" {
		seed = "now"
	}

	table := ui.NewTable("Setting", "Value")
	table.AddRow("project.name", cfg.Project.Name)
	table.AddRow("project.module", cfg.Project.Module)
	table.AddRow("clock.seed", seed)
	table.AddRow("clock.frozen", strconv.FormatBool(cfg.Clock.Frozen))
	table.AddRow("logging", cfg.Logging.Level+" / "+cfg.Logging.Format)
	table.AddRow("metrics", enabledSummary(cfg.Metrics.Enabled, cfg.Metrics.Namespace, cfg.Metrics.Service))
	table.AddRow("tracing", enabledSummary(cfg.Tracing.Enabled, cfg.Tracing.Service))
	return table
}

func enabledSummary(enabled bool, details ...string) string {
	if !enabled {
		return "disabled"
	}
	return "enabled (" + strings.Join(details, ", ") + ")"
}
