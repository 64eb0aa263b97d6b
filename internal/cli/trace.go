package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sweep/internal/harness"
	"github.com/roach88/sweep/internal/ir"
	"github.com/roach88/sweep/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database  string
	SessionID string
	Action    string // optional - filter to one action URI
}

// TraceResult is the journal of one session.
type TraceResult struct {
	Session ir.Session  `json:"session"`
	Records []ir.Record `json:"records"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show journaled sessions and actions",
		Long: `List the sessions in a journal, or print one session's actions in
sequence order with their outcomes.

Examples:
  sweep trace --db ./sweep.db
  sweep trace --db ./sweep.db --session 0190...
  sweep trace --db ./sweep.db --session 0190... --action Game.revealCell`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.SessionID, "session", "", "session to print (default: list sessions)")
	cmd.Flags().StringVar(&opts.Action, "action", "", "only show this action URI")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	st, err := openJournal(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	if opts.Action != "" && !ir.ActionRef(opts.Action).Known() {
		return NewExitError(ExitCommandError, fmt.Sprintf("unknown action %q", opts.Action))
	}

	if opts.SessionID == "" {
		summaries, err := st.ListSessions(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list sessions", err)
		}
		if formatter.JSON() {
			return json.NewEncoder(cmd.OutOrStdout()).Encode(CLIResponse{Status: "ok", Data: summaries})
		}
		outputSessionsText(cmd, summaries)
		return nil
	}

	sess, err := st.ReadSession(ctx, opts.SessionID)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("session %s", opts.SessionID), err)
	}
	records, err := st.ReadRecords(ctx, opts.SessionID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read records", err)
	}
	if opts.Action != "" {
		filtered := records[:0]
		for _, rec := range records {
			if string(rec.Action.URI) == opts.Action {
				filtered = append(filtered, rec)
			}
		}
		records = filtered
	}

	if formatter.JSON() {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(CLIResponse{
			Status: "ok",
			Data:   TraceResult{Session: sess, Records: records},
		})
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "session %s seed %d engine %s\n", sess.ID, sess.Seed, sess.EngineVersion)
	for _, rec := range records {
		ev := harness.TraceEvent{
			Seq:    rec.Action.Seq,
			Action: rec.Action.URI,
			Args:   rec.Action.Args,
			Case:   rec.Outcome.Case,
			Result: rec.Outcome.Result,
		}
		fmt.Fprintln(w, ev)
	}
	return nil
}

func outputSessionsText(cmd *cobra.Command, summaries []store.SessionSummary) {
	w := cmd.OutOrStdout()
	if len(summaries) == 0 {
		fmt.Fprintln(w, "No sessions found in database.")
		return
	}
	for _, s := range summaries {
		fmt.Fprintf(w, "%s  seed %d  %d actions\n", s.Session.ID, s.Session.Seed, s.Actions)
	}
}
