package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/AshkanYarmoradi/minkspec/cli/config"
	"github.com/AshkanYarmoradi/minkspec/cli/styles"
	"github.com/AshkanYarmoradi/minkspec/cli/ui"
)

// NewInitCommand creates the init command
func NewInitCommand() *cobra.Command {
	var (
		name    string
		module  string
		seed    string
		frozen  bool
		metrics bool
		tracing bool
		force   bool
	)

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create a minkspec.yaml",
		Long: `Create a minkspec.yaml configuration file.

The project name defaults to the directory name and the module is read
from go.mod when present.

Examples:
  minkspec init                                 # Current directory
  minkspec init ./bank --frozen                 # Scenarios start on a frozen clock
  minkspec init --seed 2024-01-01T09:00:00Z     # Scenarios start at a fixed instant`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			absDir, err := filepath.Abs(dir)
			if err != nil {
				return err
			}

			if config.Exists(absDir) && !force {
				fmt.Fprintln(out, styles.FormatWarning(config.ConfigFileName+" already exists in this directory"))
				return nil
			}

			if seed != "" {
				if _, err := time.Parse(time.RFC3339, seed); err != nil {
					return fmt.Errorf("invalid --seed %q: expected RFC 3339", seed)
				}
			}

			if err := os.MkdirAll(absDir, 0755); err != nil {
				return err
			}

			cfg := config.DefaultConfig()
			cfg.Project.Name = filepath.Base(absDir)
			if detected := detectModule(absDir); detected != "" {
				cfg.Project.Module = detected
			}
			if name != "" {
				cfg.Project.Name = name
			}
			if module != "" {
				cfg.Project.Module = module
			}
			cfg.Metrics.Service = cfg.Project.Name
			cfg.Clock.Seed = seed
			cfg.Clock.Frozen = frozen
			cfg.Metrics.Enabled = metrics
			cfg.Tracing.Enabled = tracing

			configPath := filepath.Join(absDir, config.ConfigFileName)
			if err := os.WriteFile(configPath, []byte(config.GenerateYAML(cfg)), 0644); err != nil {
				return fmt.Errorf("failed to create config file: %w", err)
			}

			fmt.Fprintln(out, ui.Banner())
			fmt.Fprintln(out)
			fmt.Fprintln(out, styles.FormatSuccess("Created "+configPath))
			fmt.Fprintln(out, styles.InfoBox.Render(nextSteps(cfg)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Project name")
	cmd.Flags().StringVarP(&module, "module", "m", "", "Go module path")
	cmd.Flags().StringVar(&seed, "seed", "", "RFC 3339 instant scenarios start at")
	cmd.Flags().BoolVar(&frozen, "frozen", false, "Freeze the scenario clock")
	cmd.Flags().BoolVar(&metrics, "metrics", false, "Enable Prometheus metrics")
	cmd.Flags().BoolVar(&tracing, "tracing", false, "Enable OpenTelemetry tracing")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")

	return cmd
}

// detectModule tries to detect the Go module from go.mod
func detectModule(dir string) string {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		return ""
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "module ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "module "))
		}
	}

	return ""
}

func nextSteps(cfg *config.Config) string {
	steps := []string{
		styles.Bold.Render("Next Steps:"),
		"",
		ui.NumberedList([]string{
			"Load it in your tests:  " + styles.Code.Render("cfg, _ := config.Load(\".\")"),
			"Check the setup:        " + styles.Code.Render("minkspec diagnose"),
		}),
	}
	if !cfg.Clock.Frozen {
		steps = append(steps, styles.Muted.Render("Tip: --frozen makes scenario time move only when a scenario says so."))
	}
	return strings.Join(steps, "\n")
}
