package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sweep/internal/engine"
	"github.com/roach88/sweep/internal/ir"
	"github.com/roach88/sweep/internal/metrics"
	"github.com/roach88/sweep/internal/store"
)

// SessionFlags are the flags shared by the interactive commands.
type SessionFlags struct {
	Database    string
	MetricsFile string
	Seed        uint64
}

func (f *SessionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.Database, "db", "", "SQLite journal path (default $SWEEP_DB or in-memory)")
	cmd.Flags().StringVar(&f.MetricsFile, "metrics-file", "", "write Prometheus metrics to this textfile on exit")
	cmd.Flags().Uint64Var(&f.Seed, "seed", 0, "mine placement seed (default $SWEEP_SEED or random)")
}

// session is an engine with its journal and metrics, driven by line input.
type session struct {
	eng         *engine.Engine
	store       *store.Store
	metrics     *metrics.Collector
	metricsFile string
	logger      *slog.Logger
}

// openSession resolves flags against the environment settings; a flag set
// on the command line wins.
func openSession(cmd *cobra.Command, root *RootOptions, f *SessionFlags, extra ...engine.Option) (*session, error) {
	settings := root.Settings()
	logger := root.Logger()

	db := settings.DB
	if cmd.Flags().Changed("db") {
		db = f.Database
	}
	metricsFile := settings.MetricsFile
	if cmd.Flags().Changed("metrics-file") {
		metricsFile = f.MetricsFile
	}

	st, err := store.Open(db)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	logger.Debug("journal ready", "db", db)

	m := metrics.New()
	opts := []engine.Option{
		engine.WithStore(st),
		engine.WithMetrics(m),
		engine.WithLogger(logger),
	}
	switch {
	case cmd.Flags().Changed("seed"):
		opts = append(opts, engine.WithSeed(f.Seed))
	case settings.HasSeed:
		opts = append(opts, engine.WithSeed(settings.Seed))
	}
	opts = append(opts, extra...)

	return &session{
		eng:         engine.New(opts...),
		store:       st,
		metrics:     m,
		metricsFile: metricsFile,
		logger:      logger,
	}, nil
}

func (s *session) close() error {
	var errs []error
	if s.metricsFile != "" {
		if err := s.metrics.WriteTextfile(s.metricsFile); err != nil {
			errs = append(errs, fmt.Errorf("write metrics: %w", err))
		} else {
			s.logger.Debug("metrics written", "path", s.metricsFile)
		}
	}
	if err := s.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}
	return errors.Join(errs...)
}

// lineParser turns the fields of one input line into an action.
type lineParser func(fields []string) (ir.ActionRef, ir.Object, error)

// errQuit ends the input loop.
var errQuit = errors.New("quit")

// interact feeds parsed input lines to the engine loop until input ends,
// the user quits, or ctx is cancelled. Messages about bad input and
// ignored actions go to out.
func (s *session) interact(ctx context.Context, in io.Reader, out io.Writer, parse lineParser) error {
	go s.readInput(in, out, parse)

	err := s.eng.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return WrapExitError(ExitFailure, "engine error", err)
	}
	return nil
}

func (s *session) readInput(in io.Reader, out io.Writer, parse lineParser) {
	defer s.eng.Stop()

	sc := bufio.NewScanner(in)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		uri, args, err := parse(strings.Fields(line))
		if errors.Is(err, errQuit) {
			return
		}
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}

		ok := s.eng.Enqueue(engine.Request{
			URI:  uri,
			Args: args,
			Reply: func(o ir.Outcome, err error) {
				switch {
				case err != nil:
					fmt.Fprintf(out, "error: %v\n", err)
				case o.Case == ir.CaseIgnored:
					fmt.Fprintln(out, "ignored")
				}
			},
		})
		if !ok {
			return
		}
	}
	if err := sc.Err(); err != nil {
		s.logger.Error("reading input failed", "error", err)
	}
}

// intArgs parses fields as the named integer arguments.
func intArgs(fields []string, names ...string) (ir.Object, error) {
	if len(fields) != len(names) {
		return nil, fmt.Errorf("want %d numbers (%s), got %d", len(names), strings.Join(names, " "), len(fields))
	}
	args := make(ir.Object, len(names))
	for i, name := range names {
		n, err := strconv.Atoi(fields[i])
		if err != nil {
			return nil, fmt.Errorf("%s: %q is not a number", name, fields[i])
		}
		args[name] = ir.Int(n)
	}
	return args, nil
}
