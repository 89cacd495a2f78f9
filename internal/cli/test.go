package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lineal-dev/lineal/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Filter string
}

// ScenarioResult is the per-scenario summary.
type ScenarioResult struct {
	Name     string   `json:"name"`
	Verdict  string   `json:"verdict"`
	Pass     bool     `json:"pass"`
	Problems []string `json:"problems,omitempty"`
}

// TestResult is the overall summary.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test [scenarios-dir]",
		Short: "Run a directory of scenarios",
		Long: `Run every scenario under a directory and summarize the outcomes.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, broken scenarios)

Examples:
  lineal test ./scenarios
  lineal test ./scenarios --filter "swap_*"
  lineal test ./scenarios --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := rootOpts.cfg().Scenarios
			if len(args) == 1 {
				dir = args[0]
			}
			if dir == "" {
				return NewExitError(ExitCommandError, "no scenario directory: pass an argument or set scenarios in lineal.toml")
			}
			return runTest(opts, dir, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "run only scenarios whose name matches this glob")
	return cmd
}

func runTest(opts *TestOptions, dir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	scenarios, err := harness.LoadScenarioDir(dir)
	if err != nil {
		return WrapExitError(ExitCommandError, "loading scenarios", err)
	}

	result := TestResult{}
	for _, scenario := range scenarios {
		if opts.Filter != "" {
			match, err := filepath.Match(opts.Filter, scenario.Name)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid filter", err)
			}
			if !match {
				continue
			}
		}

		formatter.VerboseLog("Running scenario: %s", scenario.Name)
		report, err := harness.Run(scenario)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("scenario %s", scenario.Name), err)
		}

		result.Scenarios = append(result.Scenarios, ScenarioResult{
			Name:     report.Scenario,
			Verdict:  report.Verdict,
			Pass:     report.Pass,
			Problems: report.Problems,
		})
		result.Total++
		if report.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if result.Total == 0 {
		return NewExitError(ExitCommandError, "no scenarios matched")
	}

	if formatter.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		for _, sr := range result.Scenarios {
			status := "PASS"
			if !sr.Pass {
				status = "FAIL"
			}
			fmt.Fprintf(formatter.Writer, "%s  %s (verdict %s)\n", status, sr.Name, sr.Verdict)
			for _, p := range sr.Problems {
				fmt.Fprintf(formatter.Writer, "      %s\n", p)
			}
		}
		fmt.Fprintf(formatter.Writer, "\n%d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}
