package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lineal-dev/lineal/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Session  string
	Limit    int
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Inspect recorded sessions",
		Long: `Inspect the audit store.

With --session, shows one session's verdict, staged-operation trace,
and violation. Without it, lists recent sessions newest first.

Examples:
  lineal trace --db lineal.db
  lineal trace --db lineal.db --session 01890a5d-ac96-774b-bcce-b302099a8057
  lineal trace --db lineal.db --limit 10 --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Database == "" {
				opts.Database = rootOpts.cfg().Database
			}
			if opts.Database == "" {
				return NewExitError(ExitCommandError, "no audit store: pass --db or set database in lineal.toml")
			}
			return runTraceCmd(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the audit store")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session token to inspect")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum sessions to list")
	return cmd
}

func runTraceCmd(opts *TraceOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	st, err := store.Open(opts.Database, zap.NewNop())
	if err != nil {
		return WrapExitError(ExitCommandError, "opening audit store", err)
	}
	defer st.Close()

	ctx := context.Background()

	if opts.Session == "" {
		return listSessions(ctx, formatter, st, opts.Limit)
	}
	return showSession(ctx, formatter, st, opts.Session)
}

func listSessions(ctx context.Context, formatter *OutputFormatter, st *store.Store, limit int) error {
	sessions, err := st.ListSessions(ctx, limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "listing sessions", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(sessions)
	}

	if len(sessions) == 0 {
		fmt.Fprintln(formatter.Writer, "no sessions recorded")
		return nil
	}
	for _, s := range sessions {
		line := fmt.Sprintf("%s  %s  %s", s.Token, s.Verdict,
			time.Unix(s.CreatedAt, 0).UTC().Format(time.RFC3339))
		if s.Code != "" {
			line += "  " + s.Code
		}
		fmt.Fprintln(formatter.Writer, line)
	}
	return nil
}

func showSession(ctx context.Context, formatter *OutputFormatter, st *store.Store, token string) error {
	rec, err := st.ReadSession(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		return WrapExitError(ExitCommandError, "session not found", err)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "reading session", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(rec)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "session   %s\n", rec.Token)
	fmt.Fprintf(w, "verdict   %s\n", rec.Verdict)
	fmt.Fprintf(w, "plan      %s\n", rec.PlanHash)
	fmt.Fprintf(w, "inputs    %d\n", rec.NInputs)
	fmt.Fprintf(w, "outputs   %d\n", rec.NOutputs)
	fmt.Fprintf(w, "created   %s\n", time.Unix(rec.CreatedAt, 0).UTC().Format(time.RFC3339))

	if len(rec.Trace) > 0 {
		fmt.Fprintln(w, "trace:")
		for _, op := range rec.Trace {
			fmt.Fprintf(w, "  %2d  %s.%s  deps=%v  %s\n", op.Seq, op.Receiver, op.Op, op.Deps, op.State)
		}
	}
	if rec.Violation != nil {
		fmt.Fprintf(w, "violation: [%s] %s\n", rec.Violation.Code, rec.Violation.Message)
	}
	return nil
}
