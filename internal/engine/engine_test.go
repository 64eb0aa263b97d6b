package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sweep/internal/game"
	"github.com/roach88/sweep/internal/grid"
	"github.com/roach88/sweep/internal/ir"
	"github.com/roach88/sweep/internal/metrics"
	"github.com/roach88/sweep/internal/store"
)

// A 2x3 board with one mine in the top-left corner.
var cornerMine = []grid.Pos{{Row: 0, Col: 0}}

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(t.TempDir() + "/journal.db")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{WithSessionGenerator(NewFixedGenerator("session-1")), WithSeed(1)}, opts...)
	return New(opts...)
}

func dispatch(t *testing.T, e *Engine, uri ir.ActionRef, args ir.Object) ir.Outcome {
	t.Helper()
	out, err := e.Dispatch(context.Background(), uri, args)
	require.NoError(t, err)
	return out
}

func cell(row, col int) ir.Object {
	return ir.Object{"row": ir.Int(row), "col": ir.Int(col)}
}

func board(rows, cols, mines int) ir.Object {
	return ir.Object{"rows": ir.Int(rows), "cols": ir.Int(cols), "mines": ir.Int(mines)}
}

func TestEngine_New(t *testing.T) {
	e := newTestEngine(t, WithSeed(42))
	assert.Equal(t, "session-1", e.SessionID())
	assert.Equal(t, uint64(42), e.Seed())
	assert.NotNil(t, e.Game())
	assert.NotNil(t, e.Counter())
	assert.Equal(t, 0, e.QueueLen())
}

func TestEngine_DefaultSessionIsUUID(t *testing.T) {
	a, b := New(), New()
	assert.Len(t, a.SessionID(), 36)
	assert.NotEqual(t, a.SessionID(), b.SessionID())
}

func TestDispatch_GameFlow(t *testing.T) {
	e := newTestEngine(t, WithPlacer(game.FixedPlacer{Mines: cornerMine}))

	out := dispatch(t, e, ir.ActionInitializeGame, board(2, 3, 1))
	assert.Equal(t, ir.CaseApplied, out.Case)
	assert.Equal(t, int64(1), out.Seq)
	assert.Equal(t, ir.MustActionID("session-1", ir.ActionInitializeGame, board(2, 3, 1), 1), out.ActionID)
	assert.Len(t, out.StateHash, 64)

	out = dispatch(t, e, ir.ActionRevealCell, cell(1, 2))
	assert.Equal(t, ir.CaseApplied, out.Case)
	assert.Equal(t, ir.Object{
		"status":          ir.String("playing"),
		"revealed":        ir.Int(4),
		"flags_remaining": ir.Int(1),
	}, out.Result)

	out = dispatch(t, e, ir.ActionRevealCell, cell(1, 2))
	assert.Equal(t, ir.CaseIgnored, out.Case, "already revealed")

	out = dispatch(t, e, ir.ActionToggleFlag, cell(0, 0))
	assert.Equal(t, ir.CaseApplied, out.Case)
	assert.Equal(t, ir.Int(0), out.Result["flags_remaining"])

	out = dispatch(t, e, ir.ActionRevealCell, cell(0, 0))
	assert.Equal(t, ir.CaseIgnored, out.Case, "flagged")

	out = dispatch(t, e, ir.ActionRevealCell, cell(1, 0))
	assert.Equal(t, ir.CaseApplied, out.Case)
	assert.Equal(t, ir.String("won"), out.Result["status"])
	assert.Equal(t, int64(6), out.Seq)

	out = dispatch(t, e, ir.ActionResetGame, nil)
	assert.Equal(t, ir.CaseApplied, out.Case)
	assert.Equal(t, ir.String("playing"), out.Result["status"])
	assert.Equal(t, ir.Int(0), out.Result["revealed"])
}

func TestDispatch_StateHashTracksState(t *testing.T) {
	e := newTestEngine(t, WithPlacer(game.FixedPlacer{Mines: cornerMine}))
	init := dispatch(t, e, ir.ActionInitializeGame, board(2, 3, 1))
	flag := dispatch(t, e, ir.ActionToggleFlag, cell(1, 1))
	unflag := dispatch(t, e, ir.ActionToggleFlag, cell(1, 1))

	assert.NotEqual(t, init.StateHash, flag.StateHash)
	assert.Equal(t, init.StateHash, unflag.StateHash)
}

func TestDispatch_CounterFlow(t *testing.T) {
	e := newTestEngine(t)

	out := dispatch(t, e, ir.ActionIncrement, ir.Object{"step": ir.Int(5)})
	assert.Equal(t, ir.Object{"count": ir.Int(5)}, out.Result)

	out = dispatch(t, e, ir.ActionDecrement, ir.Object{"step": ir.Int(3)})
	assert.Equal(t, ir.Object{"count": ir.Int(2)}, out.Result)

	out = dispatch(t, e, ir.ActionIncrement, nil)
	assert.Equal(t, ir.Object{"count": ir.Int(3)}, out.Result, "step defaults to 1")

	out = dispatch(t, e, ir.ActionResetCounter, nil)
	assert.Equal(t, ir.CaseApplied, out.Case)
	assert.Equal(t, 0, e.Counter().Count())
}

func TestDispatch_UnknownAction(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Dispatch(context.Background(), "Game.explode", nil)

	assert.True(t, IsUnknownAction(err))
	assert.ErrorContains(t, err, "UNKNOWN_ACTION")
	assert.Equal(t, int64(0), e.clock.Current(), "rejected input does not consume a seq")
}

func TestDispatch_InvalidArgs(t *testing.T) {
	tests := []struct {
		name string
		uri  ir.ActionRef
		args ir.Object
	}{
		{"missing col", ir.ActionRevealCell, ir.Object{"row": ir.Int(0)}},
		{"string row", ir.ActionToggleFlag, ir.Object{"row": ir.String("0"), "col": ir.Int(0)}},
		{"missing mines", ir.ActionInitializeGame, ir.Object{"rows": ir.Int(2), "cols": ir.Int(2)}},
		{"bool step", ir.ActionIncrement, ir.Object{"step": ir.Bool(true)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t)
			_, err := e.Dispatch(context.Background(), tt.uri, tt.args)
			assert.True(t, IsInvalidArgs(err), "got %v", err)
			assert.False(t, IsUnknownAction(err))
		})
	}
}

func TestDispatch_ConfigRejected(t *testing.T) {
	s := setupTestStore(t)
	e := newTestEngine(t, WithStore(s))

	out, err := e.Dispatch(context.Background(), ir.ActionInitializeGame, board(3, 3, 9))
	require.Error(t, err)
	assert.True(t, IsConfigRejected(err))
	assert.ErrorIs(t, err, grid.ErrTooManyMines)
	assert.Equal(t, ir.CaseRejected, out.Case)
	assert.Contains(t, string(out.Result["error"].(ir.String)), "mine count")

	records, err := s.ReadRecords(context.Background(), "session-1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, ir.CaseRejected, records[0].Outcome.Case)
}

func TestDispatch_OversizedBoardRejected(t *testing.T) {
	tests := []struct {
		name       string
		rows, cols int
	}{
		{"product overflows int", (1 << 62) + 1, 4},
		{"too many rows", grid.MaxDimension + 1, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t)
			out, err := e.Dispatch(context.Background(), ir.ActionInitializeGame, board(tt.rows, tt.cols, 0))
			require.Error(t, err)
			assert.True(t, IsConfigRejected(err))
			assert.ErrorIs(t, err, grid.ErrInvalidDimensions)
			assert.Equal(t, ir.CaseRejected, out.Case)
			assert.Equal(t, 0, e.Game().State().Rows)
		})
	}
}

func TestDispatch_PlacementFailedRejected(t *testing.T) {
	s := setupTestStore(t)
	e := newTestEngine(t, WithStore(s), WithPlacer(game.FixedPlacer{Mines: cornerMine}))
	dispatch(t, e, ir.ActionInitializeGame, board(2, 3, 1))

	out, err := e.Dispatch(context.Background(), ir.ActionRevealCell, cell(0, 0))
	require.Error(t, err)
	assert.True(t, IsPlacementFailed(err))
	assert.False(t, IsConfigRejected(err))
	assert.Equal(t, ir.CaseRejected, out.Case)
	assert.Contains(t, string(out.Result["error"].(ir.String)), "safe cell")
	assert.Equal(t, 0, e.Game().State().Grid.Counts().Revealed)

	records, err := s.ReadRecords(context.Background(), "session-1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, ir.CaseRejected, records[1].Outcome.Case)
}

func TestDispatch_Journal(t *testing.T) {
	s := setupTestStore(t)
	e := newTestEngine(t, WithStore(s), WithSeed(99))
	ctx := context.Background()

	dispatch(t, e, ir.ActionInitializeGame, board(4, 4, 3))
	dispatch(t, e, ir.ActionRevealCell, cell(0, 0))
	dispatch(t, e, ir.ActionIncrement, ir.Object{"step": ir.Int(2)})

	sess, err := s.ReadSession(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, uint64(99), sess.Seed)
	assert.Equal(t, ir.EngineVersion, sess.EngineVersion)

	records, err := s.ReadRecords(ctx, "session-1")
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, ir.ActionInitializeGame, records[0].Action.URI)
	assert.Equal(t, ir.ActionRevealCell, records[1].Action.URI)
	assert.Equal(t, cell(0, 0), records[1].Action.Args)
	assert.Equal(t, ir.ActionIncrement, records[2].Action.URI)
	assert.Equal(t, ir.Object{"count": ir.Int(2)}, records[2].Outcome.Result)
}

func TestDispatch_Metrics(t *testing.T) {
	m := metrics.New()
	e := newTestEngine(t, WithMetrics(m), WithPlacer(game.FixedPlacer{Mines: cornerMine}))

	dispatch(t, e, ir.ActionInitializeGame, board(2, 3, 1))
	dispatch(t, e, ir.ActionRevealCell, cell(1, 2))
	dispatch(t, e, ir.ActionRevealCell, cell(1, 2))
	dispatch(t, e, ir.ActionRevealCell, cell(1, 0))
	dispatch(t, e, ir.ActionIncrement, ir.Object{"step": ir.Int(4)})

	expected := `
# HELP sweep_cells_revealed_total Cells opened by reveals, including flood fill.
# TYPE sweep_cells_revealed_total counter
sweep_cells_revealed_total 5
# HELP sweep_counter_value Current value of the counter container.
# TYPE sweep_counter_value gauge
sweep_counter_value 4
# HELP sweep_games_finished_total Games that ended, by final status.
# TYPE sweep_games_finished_total counter
sweep_games_finished_total{status="won"} 1
`
	assert.NoError(t, prom.GatherAndCompare(m.Registry(), strings.NewReader(expected),
		"sweep_cells_revealed_total", "sweep_counter_value", "sweep_games_finished_total"))

	series, err := prom.GatherAndCount(m.Registry(), "sweep_actions_total")
	require.NoError(t, err)
	assert.Equal(t, 4, series, "init, reveal applied, reveal ignored, increment")
}

func TestRun_ProcessesInOrderAndStops(t *testing.T) {
	e := newTestEngine(t)
	var (
		mu     sync.Mutex
		counts []int64
	)
	reply := func(out ir.Outcome, err error) {
		mu.Lock()
		defer mu.Unlock()
		require.NoError(t, err)
		counts = append(counts, int64(out.Result["count"].(ir.Int)))
	}

	require.True(t, e.Enqueue(Request{URI: ir.ActionIncrement, Args: ir.Object{"step": ir.Int(5)}, Reply: reply}))
	require.True(t, e.Enqueue(Request{URI: ir.ActionDecrement, Args: ir.Object{"step": ir.Int(3)}, Reply: reply}))
	require.True(t, e.Enqueue(Request{URI: ir.ActionIncrement, Reply: reply}))
	assert.Equal(t, 3, e.QueueLen())
	e.Stop()
	assert.False(t, e.Enqueue(Request{URI: ir.ActionResetCounter}), "stopped engine rejects requests")

	require.NoError(t, e.Run(context.Background()))
	assert.Equal(t, []int64{5, 2, 3}, counts)
	assert.Equal(t, 3, e.Counter().Count())
}

func TestRun_ContinuesAfterError(t *testing.T) {
	e := newTestEngine(t)
	var errs []error
	reply := func(_ ir.Outcome, err error) { errs = append(errs, err) }

	e.Enqueue(Request{URI: "Nope.nothing", Reply: reply})
	e.Enqueue(Request{URI: ir.ActionIncrement, Reply: reply})
	e.Stop()

	require.NoError(t, e.Run(context.Background()))
	require.Len(t, errs, 2)
	assert.True(t, IsUnknownAction(errs[0]))
	assert.NoError(t, errs[1])
	assert.Equal(t, 1, e.Counter().Count())
}

func TestRun_ConcurrentProducers(t *testing.T) {
	e := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				e.Enqueue(Request{URI: ir.ActionIncrement})
			}
		}()
	}
	wg.Wait()
	e.Stop()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Stop")
	}
	assert.Equal(t, 100, e.Counter().Count())
}

func TestRun_ContextCancel(t *testing.T) {
	e := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.False(t, e.Enqueue(Request{URI: ir.ActionIncrement}))
}

func TestRun_ContextCancelRepliesToPending(t *testing.T) {
	e := newTestEngine(t)
	var errs []error
	reply := func(out ir.Outcome, err error) {
		assert.Empty(t, out.ActionID)
		errs = append(errs, err)
	}
	e.Enqueue(Request{URI: ir.ActionIncrement, Reply: reply})
	e.Enqueue(Request{URI: ir.ActionIncrement, Reply: reply})
	e.Enqueue(Request{URI: ir.ActionIncrement})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := e.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, errs, 2)
	for _, err := range errs {
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, 0, e.Counter().Count(), "cancelled requests are not applied")
	assert.Equal(t, 0, e.QueueLen())
}

func TestGameSubscribersSeeDispatchedChanges(t *testing.T) {
	e := newTestEngine(t, WithPlacer(game.FixedPlacer{Mines: cornerMine}))
	var statuses []game.Status
	e.Game().Subscribe(func(s game.State) { statuses = append(statuses, s.Status) })

	dispatch(t, e, ir.ActionInitializeGame, board(2, 3, 1))
	dispatch(t, e, ir.ActionRevealCell, cell(1, 2))
	dispatch(t, e, ir.ActionRevealCell, cell(0, 0))
	dispatch(t, e, ir.ActionRevealCell, cell(1, 0))

	assert.Equal(t, []game.Status{game.StatusPlaying, game.StatusPlaying, game.StatusLost}, statuses)
}
