package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lineal-dev/lineal/internal/declc"
)

// ValidationResult holds validation results for JSON output.
type ValidationResult struct {
	Valid  bool                    `json:"valid"`
	Files  int                     `json:"files"`
	Types  int                     `json:"types"`
	Errors []declc.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [decls-dir]",
		Short: "Validate operation declarations",
		Long: `Validate CUE operation declarations without running anything.

Checks naming, transitions, tracked positions, and result types, and
reports every problem found in one pass.

Exit codes:
  0 - All declarations valid
  1 - Validation errors found
  2 - Command error (directory missing, CUE build failed)`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := rootOpts.cfg().Declarations
			if len(args) == 1 {
				dir = args[0]
			}
			if dir == "" {
				return NewExitError(ExitCommandError, "no declarations directory: pass an argument or set declarations in lineal.toml")
			}
			return runValidate(rootOpts, dir, cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	result, loadErrors := declc.Load(dir)
	if result == nil && len(loadErrors) > 0 {
		var loadErr *declc.LoadError
		if errors.As(loadErrors[0], &loadErr) {
			_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
			return NewExitError(ExitCommandError, loadErr.Error())
		}
		_ = formatter.Error(declc.ErrCodeGeneric, loadErrors[0].Error(), nil)
		return NewExitError(ExitCommandError, loadErrors[0].Error())
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", result.FileCount, dir)

	validationErrors := declc.Validate(result.Types)
	for _, err := range loadErrors {
		var loadErr *declc.LoadError
		if errors.As(err, &loadErr) {
			validationErrors = append(validationErrors, declc.ValidationError{
				Field:   "load",
				Message: loadErr.Message,
				Code:    loadErr.Code,
			})
		}
	}

	if len(validationErrors) > 0 {
		return outputValidationErrors(formatter, result, validationErrors)
	}

	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{
			Valid: true,
			Files: result.FileCount,
			Types: len(result.Types),
		})
	}
	fmt.Fprintf(formatter.Writer, "ok: %d type(s) across %d file(s)\n", len(result.Types), result.FileCount)
	return nil
}

func outputValidationErrors(formatter *OutputFormatter, result *declc.LoadResult, errs []declc.ValidationError) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data: ValidationResult{
				Valid:  false,
				Files:  result.FileCount,
				Types:  len(result.Types),
				Errors: errs,
			},
			Error: &CLIError{Code: errs[0].Code, Message: errs[0].Message},
		}
		enc := json.NewEncoder(formatter.Writer)
		enc.SetIndent("", "  ")
		if err := enc.Encode(response); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "validation failed")
	for _, err := range errs {
		fmt.Fprintf(formatter.Writer, "  %s\n", err.Error())
	}
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
