package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/sweep/internal/engine"
	"github.com/roach88/sweep/internal/game"
	"github.com/roach88/sweep/internal/grid"
	"github.com/roach88/sweep/internal/ir"
	"github.com/roach88/sweep/internal/store"
	"github.com/roach88/sweep/internal/testutil"
)

// Option configures Run.
type Option func(*runConfig)

type runConfig struct {
	logger *slog.Logger
}

// WithLogger sends engine logs to l. By default they are discarded.
func WithLogger(l *slog.Logger) Option {
	return func(c *runConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// Run executes a scenario against a fresh engine and in-memory journal.
//
// Step errors and failed expectations are collected in the Result rather
// than returned; the error return is reserved for infrastructure failures
// such as the journal being unavailable.
func Run(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := runConfig{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&cfg)
	}

	st, err := store.OpenMemory()
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	engOpts := []engine.Option{
		engine.WithStore(st),
		engine.WithClock(testutil.NewDeterministicClock()),
		engine.WithSessionGenerator(testutil.NewFixedSessionGenerator(scenario.SessionID)),
		engine.WithLogger(cfg.logger),
	}
	if g := scenario.Game; g != nil {
		engOpts = append(engOpts, engine.WithSeed(g.Seed))
		if len(g.Layout) > 0 {
			engOpts = append(engOpts, engine.WithPlacer(game.FixedPlacer{Mines: g.minePositions()}))
		}
	} else {
		engOpts = append(engOpts, engine.WithSeed(0))
	}
	eng := engine.New(engOpts...)

	result := NewResult()
	if g := scenario.Game; g != nil {
		args := ir.Object{"rows": ir.Int(g.Rows), "cols": ir.Int(g.Cols), "mines": ir.Int(g.Mines)}
		if _, err := eng.Dispatch(ctx, ir.ActionInitializeGame, args); err != nil {
			result.AddError(fmt.Sprintf("game: %v", err))
		}
	}

	for i, step := range scenario.Flow {
		executeStep(ctx, eng, i, step, result)
	}

	records, err := st.ReadRecords(ctx, eng.SessionID())
	if err != nil {
		return nil, fmt.Errorf("failed to read trace: %w", err)
	}
	for _, rec := range records {
		result.Trace = append(result.Trace, TraceEvent{
			Seq:    rec.Action.Seq,
			Action: rec.Action.URI,
			Args:   rec.Action.Args,
			Case:   rec.Outcome.Case,
			Result: rec.Outcome.Result,
		})
	}

	gs := eng.Game().State()
	result.Status = string(gs.Status)
	result.Board = grid.Render(gs.Grid)
	result.Counter = eng.Counter().Count()

	for _, msg := range evaluateAssertions(scenario.Assertions, gs, result) {
		result.AddError(msg)
	}
	return result, nil
}

func executeStep(ctx context.Context, eng *engine.Engine, i int, step FlowStep, result *Result) {
	args, err := convertArgs(step.Args)
	if err != nil {
		result.AddError(fmt.Sprintf("flow[%d]: %v", i, err))
		return
	}

	out, err := eng.Dispatch(ctx, ir.ActionRef(step.Invoke), args)
	if err != nil && !engine.IsConfigRejected(err) {
		result.AddError(fmt.Sprintf("flow[%d]: %v", i, err))
		return
	}
	if step.Expect != nil {
		for _, msg := range checkExpect(step.Expect, out) {
			result.AddError(fmt.Sprintf("flow[%d]: %s", i, msg))
		}
	}
}

func convertArgs(args map[string]any) (ir.Object, error) {
	if len(args) == 0 {
		return ir.Object{}, nil
	}
	v, err := ir.FromAny(args)
	if err != nil {
		return nil, fmt.Errorf("args: %w", err)
	}
	return v.(ir.Object), nil
}

func checkExpect(exp *Expect, out ir.Outcome) []string {
	var msgs []string
	if exp.Case != "" && string(out.Case) != exp.Case {
		msgs = append(msgs, fmt.Sprintf("expected case %s, got %s", exp.Case, out.Case))
	}
	if exp.Status != "" {
		got, _ := out.Result.Str("status")
		if got != exp.Status {
			msgs = append(msgs, fmt.Sprintf("expected status %q, got %q", exp.Status, got))
		}
	}
	if exp.Count != nil {
		got, err := out.Result.Int("count")
		if err != nil {
			msgs = append(msgs, fmt.Sprintf("expected count %d, got %v", *exp.Count, err))
		} else if int(got) != *exp.Count {
			msgs = append(msgs, fmt.Sprintf("expected count %d, got %d", *exp.Count, got))
		}
	}
	return msgs
}
