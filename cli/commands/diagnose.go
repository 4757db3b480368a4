package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AshkanYarmoradi/minkspec"
	"github.com/AshkanYarmoradi/minkspec/cli/config"
	"github.com/AshkanYarmoradi/minkspec/cli/styles"
	"github.com/AshkanYarmoradi/minkspec/cli/ui"
	"github.com/AshkanYarmoradi/minkspec/testing/bdd"
	"github.com/AshkanYarmoradi/minkspec/testing/testutil"
)

// CheckStatus represents the status of a diagnostic check
type CheckStatus int

const (
	StatusOK CheckStatus = iota
	StatusWarning
	StatusError
)

// String returns the badge label for the status.
func (s CheckStatus) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusWarning:
		return "warning"
	default:
		return "failed"
	}
}

// CheckResult represents the result of a diagnostic check
type CheckResult struct {
	Name           string
	Status         CheckStatus
	Message        string
	Recommendation string
}

// NewDiagnoseCommand creates the diagnose command
func NewDiagnoseCommand() *cobra.Command {
	var (
		dir     string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "diagnose",
		Short: "Run diagnostic checks",
		Long: `Run diagnostic checks on your minkspec setup.

This command verifies that the configuration loads and validates, that its
logger, metrics and tracer can be built, and runs a smoke scenario through a
processor wired with them.`,
		Aliases: []string{"diag", "doctor"},
		RunE: func(cmd *cobra.Command, args []string) error {
			logs := io.Discard
			if verbose {
				logs = cmd.ErrOrStderr()
			}

			results := Diagnose(cmd.Context(), dir, logs)
			renderDiagnostics(cmd.OutOrStdout(), results)

			for _, r := range results {
				if r.Status == StatusError {
					return errors.New("diagnostics failed")
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "C", ".", "Directory to search for "+config.ConfigFileName)
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Write scenario logs and spans to stderr")

	return cmd
}

// Diagnose runs every check in order. Checks that depend on a failed one are
// reported as failed without running.
func Diagnose(ctx context.Context, dir string, logs io.Writer) []CheckResult {
	if ctx == nil {
		ctx = context.Background()
	}

	results := []CheckResult{{
		Name:    "Go Version",
		Status:  StatusOK,
		Message: runtime.Version(),
	}}

	path, cfg, err := loadConfig(dir)
	switch {
	case err != nil:
		return append(results, CheckResult{
			Name:           "Configuration",
			Status:         StatusError,
			Message:        err.Error(),
			Recommendation: "Fix the YAML syntax of " + config.ConfigFileName,
		})
	case path == "":
		results = append(results, CheckResult{
			Name:           "Configuration",
			Status:         StatusWarning,
			Message:        "no " + config.ConfigFileName + " found, using defaults",
			Recommendation: "Run 'minkspec init' to create one",
		})
	default:
		results = append(results, CheckResult{Name: "Configuration", Status: StatusOK, Message: path})
	}

	if problems := cfg.Validate(); len(problems) > 0 {
		return append(results, CheckResult{
			Name:           "Validation",
			Status:         StatusError,
			Message:        strings.Join(problems, "; "),
			Recommendation: "Run 'minkspec config validate' for details",
		})
	}

	rt, err := cfg.Build(logs)
	if err != nil {
		return append(results, CheckResult{Name: "Runtime", Status: StatusError, Message: err.Error()})
	}
	defer func() { _ = rt.Shutdown(context.Background()) }()
	results = append(results, CheckResult{Name: "Runtime", Status: StatusOK, Message: runtimeSummary(rt)})

	if err := runSmokeScenario(ctx, rt); err != nil {
		return append(results, CheckResult{
			Name:           "Smoke Scenario",
			Status:         StatusError,
			Message:        err.Error(),
			Recommendation: "Re-run with --verbose to see the scenario logs",
		})
	}
	return append(results, CheckResult{Name: "Smoke Scenario", Status: StatusOK, Message: "Given/When/Then passed"})
}

func runtimeSummary(rt *config.Runtime) string {
	parts := []string{"logger"}
	if rt.Metrics != nil {
		parts = append(parts, "metrics")
	}
	if rt.Tracer != nil {
		parts = append(parts, "tracing")
	}
	return strings.Join(parts, ", ")
}

// runSmokeScenario replays one increment and checks that a second one
// publishes exactly its own event.
func runSmokeScenario(ctx context.Context, rt *config.Runtime) error {
	p := mink.NewProcessor(rt.ProcessorOptions()...)
	defer p.Close()

	counter := testutil.NewCounter()
	detach := counter.Attach(p)
	defer detach()

	mt := testutil.RunWithMockT(func(t *testutil.MockT) {
		then := bdd.NewScenario(t, p, append(rt.ScenarioOptions(), bdd.WithName("smoke"))...).
			Given().
			Command(counter.IncrementHandler(), testutil.Increment{Amount: 1}).
			When().
			IsExecutedBy(counter.IncrementHandler(), testutil.Increment{Amount: 2}).
			Run(ctx)
		bdd.IsEventStream(then, bdd.Events(testutil.Incremented{Amount: 2}))
	})

	if !mt.Failed() {
		if counter.Current() != 3 {
			return fmt.Errorf("counter is %d after the scenario, expected 3", counter.Current())
		}
		return nil
	}
	if err := mt.Err(); err != nil {
		return err
	}
	return errors.New(mt.Message)
}

func renderDiagnostics(out io.Writer, results []CheckResult) {
	fmt.Fprintln(out, ui.Banner())
	fmt.Fprintln(out)

	table := ui.NewTable("Check", "Status", "Details")
	allPassed := true
	for _, r := range results {
		table.AddRow(r.Name, ui.StatusBadge(r.Status.String()), r.Message)
		if r.Status != StatusOK {
			allPassed = false
		}
	}
	fmt.Fprintln(out, table.Render())
	fmt.Fprintln(out)

	if allPassed {
		fmt.Fprintln(out, styles.FormatSuccess("All checks passed."))
		return
	}

	fmt.Fprintln(out, styles.FormatWarning("Some checks failed or have warnings."))
	for _, r := range results {
		if r.Recommendation != "" {
			fmt.Fprintf(out, "  %s %s\n", styles.IconArrow, r.Recommendation)
		}
	}
}
