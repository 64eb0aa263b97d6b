package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/sweep/internal/engine"
	"github.com/roach88/sweep/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database  string
	SessionID string // optional - one session only
}

// ReplayResult holds the replay reports for every session checked.
type ReplayResult struct {
	Sessions         []*engine.ReplayReport `json:"sessions"`
	TotalSessions    int                    `json:"total_sessions"`
	AllDeterministic bool                   `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay journaled sessions and verify determinism",
		Long: `Re-execute journaled sessions with their recorded seed and compare
every outcome and state hash against the journal.

Sessions played with a fixed mine layout cannot be replayed from the
journal alone and will diverge.

Exit codes:
  0 - All sessions replayed identically
  1 - At least one session diverged
  2 - Command error (database not found, etc.)

Examples:
  sweep replay --db ./sweep.db
  sweep replay --db ./sweep.db --session 0190...
  sweep replay --db ./sweep.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.SessionID, "session", "", "replay one session only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := commandContext(cmd)

	st, err := openJournal(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	ids, err := sessionIDs(ctx, st, opts.SessionID)
	if err != nil {
		return err
	}

	result := ReplayResult{
		Sessions:         make([]*engine.ReplayReport, 0, len(ids)),
		TotalSessions:    len(ids),
		AllDeterministic: true,
	}
	for _, id := range ids {
		report, _, err := engine.Replay(ctx, st, id, engine.WithLogger(opts.Logger()))
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay session %s", id), err)
		}
		result.Sessions = append(result.Sessions, report)
		if !report.Deterministic() {
			result.AllDeterministic = false
		}
	}

	if opts.Format == "json" {
		if err := json.NewEncoder(cmd.OutOrStdout()).Encode(CLIResponse{Status: "ok", Data: result}); err != nil {
			return err
		}
	} else {
		outputReplayText(cmd, result)
	}

	if !result.AllDeterministic {
		return NewExitError(ExitFailure, "replay diverged from the journal")
	}
	return nil
}

func outputReplayText(cmd *cobra.Command, result ReplayResult) {
	w := cmd.OutOrStdout()
	if result.TotalSessions == 0 {
		fmt.Fprintln(w, "No sessions found in database.")
		return
	}
	for _, r := range result.Sessions {
		fmt.Fprintf(w, "session %s (seed %d, engine %s): %d actions, ", r.SessionID, r.Seed, r.EngineVersion, r.Actions)
		if r.Deterministic() {
			fmt.Fprintln(w, "deterministic")
			continue
		}
		fmt.Fprintf(w, "%d divergences\n", len(r.Divergences))
		for _, d := range r.Divergences {
			fmt.Fprintf(w, "  seq %d %s %s: want %s, got %s\n", d.Seq, d.Action, d.Field, d.Want, d.Got)
		}
	}
}

// openJournal opens an existing journal file. Unlike store.Open it does
// not create one.
func openJournal(path string) (*store.Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, WrapExitError(ExitCommandError, "database not found", err)
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

// sessionIDs returns id alone when set, or every journaled session.
func sessionIDs(ctx context.Context, st *store.Store, id string) ([]string, error) {
	if id != "" {
		if _, err := st.ReadSession(ctx, id); err != nil {
			return nil, WrapExitError(ExitCommandError, fmt.Sprintf("session %s", id), err)
		}
		return []string{id}, nil
	}
	summaries, err := st.ListSessions(ctx)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to list sessions", err)
	}
	ids := make([]string, len(summaries))
	for i, s := range summaries {
		ids[i] = s.Session.ID
	}
	return ids, nil
}
