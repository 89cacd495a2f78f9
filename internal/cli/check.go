package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lineal-dev/lineal/internal/engine"
	"github.com/lineal-dev/lineal/internal/harness"
	"github.com/lineal-dev/lineal/internal/store"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Database string
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <scenario.yaml>",
		Short: "Run one scenario and report its verdict",
		Long: `Run a single scenario: compile its registry, stage its script,
verify the plan, and compare the outcome against the expect clause.

With --db, the session is recorded to the audit store so the trace
command can inspect it later.

Exit codes:
  0 - Outcome matched the expectation
  1 - Outcome did not match
  2 - Command error (bad scenario, broken declarations)

Examples:
  lineal check scenarios/swap_pair.yaml
  lineal check scenarios/swap_pair.yaml --db lineal.db
  lineal check scenarios/swap_pair.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "record the session to this audit store")
	return cmd
}

func runCheck(opts *CheckOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "loading scenario", err)
	}

	dbPath := opts.Database
	if dbPath == "" {
		dbPath = opts.cfg().Database
	}

	var runOpts []engine.Option
	if dbPath != "" {
		st, err := store.Open(dbPath, zap.NewNop())
		if err != nil {
			return WrapExitError(ExitCommandError, "opening audit store", err)
		}
		defer st.Close()
		runOpts = append(runOpts, engine.WithStore(st))
		formatter.VerboseLog("Recording session to %s", dbPath)
	}

	report, err := harness.Run(scenario, runOpts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "running scenario", err)
	}

	if formatter.Format == "json" {
		if err := formatter.Success(report); err != nil {
			return err
		}
	} else {
		printReport(formatter, report)
	}

	if !report.Pass {
		return NewExitError(ExitFailure, fmt.Sprintf("scenario %s failed", report.Scenario))
	}
	return nil
}

func printReport(formatter *OutputFormatter, report *harness.Report) {
	w := formatter.Writer
	fmt.Fprintf(w, "%s: verdict %s", report.Scenario, report.Verdict)
	if report.Code != "" {
		fmt.Fprintf(w, " (%s)", report.Code)
	}
	fmt.Fprintln(w)

	for _, op := range report.Trace {
		fmt.Fprintf(w, "  %2d  %s.%s  deps=%v  %s\n", op.Seq, op.Receiver, op.Op, op.Deps, op.State)
	}
	for i, v := range report.Values {
		fmt.Fprintf(w, "  out[%d] = %s\n", i, v)
	}

	if report.Pass {
		fmt.Fprintln(w, "PASS")
		return
	}
	fmt.Fprintln(w, "FAIL")
	for _, p := range report.Problems {
		fmt.Fprintf(w, "  %s\n", p)
	}
}
