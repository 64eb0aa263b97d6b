package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/sweep/internal/counter"
	"github.com/roach88/sweep/internal/ir"
)

// CounterOptions holds flags for the counter command.
type CounterOptions struct {
	*RootOptions
	SessionFlags
}

// CounterSummary is printed when a counter session ends.
type CounterSummary struct {
	SessionID string `json:"session_id"`
	Count     int    `json:"count"`
}

func (s CounterSummary) String() string {
	return fmt.Sprintf("session %s: count %d", s.SessionID, s.Count)
}

// NewCounterCommand creates the counter command.
func NewCounterCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CounterOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "counter",
		Short: "Drive the counter from stdin",
		Long: `Drive the counter, reading one command per line from stdin:

  inc [STEP]   add STEP, default 1 (also: +)
  dec [STEP]   subtract STEP, default 1 (also: -)
  reset        back to zero
  q            quit (also: quit, exit)

The count is printed after every action.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCounter(opts, cmd)
		},
	}

	opts.SessionFlags.register(cmd)
	return cmd
}

func runCounter(opts *CounterOptions, cmd *cobra.Command) error {
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
		sess.eng.Counter().Subscribe(func(s counter.State) {
			fmt.Fprintf(out, "count: %d\n", s.Count)
		})
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := sess.interact(ctx, cmd.InOrStdin(), out, parseCounterLine); err != nil {
		return err
	}

	return formatter.Success(CounterSummary{
		SessionID: sess.eng.SessionID(),
		Count:     sess.eng.Counter().Count(),
	})
}

func parseCounterLine(fields []string) (ir.ActionRef, ir.Object, error) {
	var uri ir.ActionRef
	switch strings.ToLower(fields[0]) {
	case "q", "quit", "exit":
		return "", nil, errQuit
	case "reset":
		return ir.ActionResetCounter, ir.Object{}, nil
	case "inc", "+":
		uri = ir.ActionIncrement
	case "dec", "-":
		uri = ir.ActionDecrement
	default:
		return "", nil, fmt.Errorf("unknown command %q", fields[0])
	}

	switch len(fields) {
	case 1:
		return uri, ir.Object{}, nil
	case 2:
		step, err := strconv.Atoi(fields[1])
		if err != nil {
			return "", nil, fmt.Errorf("step: %q is not a number", fields[1])
		}
		return uri, ir.Object{"step": ir.Int(step)}, nil
	default:
		return "", nil, fmt.Errorf("%s takes at most one step", fields[0])
	}
}
