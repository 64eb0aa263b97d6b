package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/sweep/internal/config"
	"github.com/roach88/sweep/internal/engine"
	"github.com/roach88/sweep/internal/game"
	"github.com/roach88/sweep/internal/grid"
	"github.com/roach88/sweep/internal/ir"
)

// PlayOptions holds flags for the play command.
type PlayOptions struct {
	*RootOptions
	SessionFlags

	Preset      string
	PresetsFile string
	Rows        int
	Cols        int
	Mines       int
}

// PlaySummary is printed when a play session ends.
type PlaySummary struct {
	SessionID      string `json:"session_id"`
	Seed           uint64 `json:"seed"`
	Board          string `json:"board"`
	Status         string `json:"status"`
	Revealed       int    `json:"revealed"`
	FlagsRemaining int    `json:"flags_remaining"`
}

func (s PlaySummary) String() string {
	return fmt.Sprintf("session %s seed %d board %s: %s", s.SessionID, s.Seed, s.Board, s.Status)
}

// NewPlayCommand creates the play command.
func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play Minesweeper in the terminal",
		Long: `Play Minesweeper, reading one command per line from stdin:

  r ROW COL           reveal a cell (also: reveal)
  f ROW COL           toggle a flag (also: flag)
  new ROWS COLS MINES start a new board
  reset               start over with the same board size
  q                   quit (also: quit, exit)

The board is printed after every change. Rows and columns count from 0.

Examples:
  sweep play
  sweep play --preset expert --seed 42
  sweep play --rows 5 --cols 5 --mines 3 --db ./sweep.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(opts, cmd)
		},
	}

	opts.SessionFlags.register(cmd)
	cmd.Flags().StringVar(&opts.Preset, "preset", "", "difficulty preset (default $SWEEP_PRESET or beginner)")
	cmd.Flags().StringVar(&opts.PresetsFile, "presets", "", "extra CUE file with preset definitions")
	cmd.Flags().IntVar(&opts.Rows, "rows", 0, "custom board rows")
	cmd.Flags().IntVar(&opts.Cols, "cols", 0, "custom board columns")
	cmd.Flags().IntVar(&opts.Mines, "mines", 0, "custom mine count")

	return cmd
}

func runPlay(opts *PlayOptions, cmd *cobra.Command) error {
	board, err := resolveBoard(opts, cmd)
	if err != nil {
		return err
	}

	sess, err := openSession(cmd, opts.RootOptions, &opts.SessionFlags)
	if err != nil {
		return err
	}
	defer func() {
		if err := sess.close(); err != nil {
			sess.logger.Error("closing session failed", "error", err)
		}
	}()

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	var out io.Writer = &syncWriter{w: cmd.OutOrStdout()}
	if formatter.JSON() {
		out = &syncWriter{w: cmd.ErrOrStderr()}
	} else {
		sess.eng.Game().Subscribe(func(s game.State) {
			fmt.Fprint(out, grid.Render(s.Grid))
			fmt.Fprintf(out, "status: %s  flags: %d\n", s.Status, s.FlagsRemaining())
		})
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	args := ir.Object{"rows": ir.Int(board.Rows), "cols": ir.Int(board.Cols), "mines": ir.Int(board.Mines)}
	if _, err := sess.eng.Dispatch(ctx, ir.ActionInitializeGame, args); err != nil {
		if engine.IsConfigRejected(err) {
			return WrapExitError(ExitCommandError, "invalid board", err)
		}
		return WrapExitError(ExitFailure, "failed to start game", err)
	}
	sess.logger.Info("game started",
		"session", sess.eng.SessionID(),
		"board", board.Name,
		"rows", board.Rows,
		"cols", board.Cols,
		"mines", board.Mines,
	)

	if err := sess.interact(ctx, cmd.InOrStdin(), out, parsePlayLine); err != nil {
		return err
	}

	final := sess.eng.Game().State()
	return formatter.Success(PlaySummary{
		SessionID:      sess.eng.SessionID(),
		Seed:           sess.eng.Seed(),
		Board:          fmt.Sprintf("%dx%d/%d", final.Rows, final.Cols, final.MineCount),
		Status:         string(final.Status),
		Revealed:       final.Grid.Counts().Revealed,
		FlagsRemaining: final.FlagsRemaining(),
	})
}

// resolveBoard picks the board from --rows/--cols/--mines, then --preset,
// then $SWEEP_PRESET.
func resolveBoard(opts *PlayOptions, cmd *cobra.Command) (config.Preset, error) {
	custom := 0
	for _, name := range []string{"rows", "cols", "mines"} {
		if cmd.Flags().Changed(name) {
			custom++
		}
	}
	switch custom {
	case 0:
	case 3:
		return config.Preset{Name: "custom", Rows: opts.Rows, Cols: opts.Cols, Mines: opts.Mines}, nil
	default:
		return config.Preset{}, NewExitError(ExitCommandError, "--rows, --cols and --mines must be given together")
	}

	var files []string
	if opts.PresetsFile != "" {
		files = append(files, opts.PresetsFile)
	}
	catalog, err := config.LoadPresets(files...)
	if err != nil {
		return config.Preset{}, WrapExitError(ExitCommandError, "failed to load presets", err)
	}

	name := opts.Preset
	if name == "" {
		name = opts.Settings().Preset
	}
	preset, ok := catalog.Lookup(name)
	if !ok {
		return config.Preset{}, NewExitError(ExitCommandError, fmt.Sprintf("unknown preset %q", name))
	}
	return preset, nil
}

func parsePlayLine(fields []string) (ir.ActionRef, ir.Object, error) {
	switch strings.ToLower(fields[0]) {
	case "q", "quit", "exit":
		return "", nil, errQuit
	case "r", "reveal":
		args, err := intArgs(fields[1:], "row", "col")
		return ir.ActionRevealCell, args, err
	case "f", "flag":
		args, err := intArgs(fields[1:], "row", "col")
		return ir.ActionToggleFlag, args, err
	case "new":
		args, err := intArgs(fields[1:], "rows", "cols", "mines")
		return ir.ActionInitializeGame, args, err
	case "reset":
		return ir.ActionResetGame, ir.Object{}, nil
	default:
		return "", nil, fmt.Errorf("unknown command %q", fields[0])
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
