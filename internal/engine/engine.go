package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"

	"github.com/roach88/sweep/internal/counter"
	"github.com/roach88/sweep/internal/game"
	"github.com/roach88/sweep/internal/ir"
	"github.com/roach88/sweep/internal/metrics"
	"github.com/roach88/sweep/internal/store"
)

// Engine owns one game, one counter, and the session they are played in.
type Engine struct {
	sessionID string
	seed      uint64
	clock     Sequencer
	game      *game.Game
	counter   *counter.Counter
	store     *store.Store
	metrics   *metrics.Collector
	logger    *slog.Logger
	queue     *requestQueue

	placer     game.Placer
	sessionGen SessionGenerator
	hasSeed    bool
	journaled  bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithStore journals every dispatched action to s.
func WithStore(s *store.Store) Option {
	return func(e *Engine) { e.store = s }
}

// WithSeed seeds mine placement. The seed is recorded with the session so
// it can be replayed. Without it a random seed is drawn.
func WithSeed(seed uint64) Option {
	return func(e *Engine) {
		e.seed = seed
		e.hasSeed = true
	}
}

// WithPlacer overrides seeded mine placement, typically with a
// game.FixedPlacer. Sessions played this way cannot be replayed from the
// journal alone.
func WithPlacer(p game.Placer) Option {
	return func(e *Engine) { e.placer = p }
}

// WithSessionGenerator sets how the session ID is created. The default is
// UUIDv7Generator.
func WithSessionGenerator(g SessionGenerator) Option {
	return func(e *Engine) { e.sessionGen = g }
}

// WithMetrics records dispatch activity in m.
func WithMetrics(m *metrics.Collector) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithLogger sets the logger. The default discards output.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithClock replaces the logical clock.
func WithClock(c Sequencer) Option {
	return func(e *Engine) { e.clock = c }
}

// New creates an engine with a fresh game and counter.
func New(opts ...Option) *Engine {
	e := &Engine{
		clock:      NewClock(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		queue:      newRequestQueue(),
		sessionGen: UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if !e.hasSeed {
		e.seed = rand.Uint64()
	}
	e.sessionID = e.sessionGen.Generate()

	gameOpts := []game.Option{game.WithLogger(e.logger), game.WithSeed(e.seed)}
	if e.placer != nil {
		gameOpts = append(gameOpts, game.WithPlacer(e.placer))
	}
	e.game = game.New(gameOpts...)
	e.counter = counter.New(e.logger)
	return e
}

// SessionID returns the ID actions are journaled under.
func (e *Engine) SessionID() string {
	return e.sessionID
}

// Seed returns the mine placement seed.
func (e *Engine) Seed() uint64 {
	return e.seed
}

// Game returns the engine's game. Subscribe to it to observe changes;
// mutate it only through Dispatch.
func (e *Engine) Game() *game.Game {
	return e.game
}

// Counter returns the engine's counter. Subscribe to it to observe changes;
// mutate it only through Dispatch.
func (e *Engine) Counter() *counter.Counter {
	return e.counter
}

// Enqueue submits a request to the Run loop. It is safe from any goroutine
// and returns false once the engine is stopped.
func (e *Engine) Enqueue(r Request) bool {
	return e.queue.Enqueue(r)
}

// QueueLen returns the number of requests waiting for Run.
func (e *Engine) QueueLen() int {
	return e.queue.Len()
}

// Stop closes the queue. Run drains what is already queued, then returns.
func (e *Engine) Stop() {
	e.queue.Close()
}

// Run applies queued requests until ctx is cancelled or Stop is called and
// the queue is empty. It must be called from exactly one goroutine.
//
// On cancellation, requests still queued are not applied; their Reply is
// called with an error wrapping ctx.Err().
//
// A failing request is logged and processing continues.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Info("engine starting", "session", e.sessionID)

	for {
		if err := ctx.Err(); err != nil {
			e.logger.Info("engine stopping: context cancelled")
			e.queue.Close()
			e.cancelPending(err)
			return err
		}

		if req, ok := e.queue.TryDequeue(); ok {
			out, err := e.Dispatch(ctx, req.URI, req.Args)
			if err != nil {
				e.logger.Error("dispatch failed",
					"action", string(req.URI),
					"session", e.sessionID,
					"error", err,
				)
			}
			if req.Reply != nil {
				req.Reply(out, err)
			}
			continue
		}

		select {
		case <-ctx.Done():
		case <-e.queue.Wait():
			if e.queue.Drained() {
				e.logger.Info("engine stopping: queue closed")
				return nil
			}
		}
	}
}

// cancelPending answers every request still queued with err, without
// applying it.
func (e *Engine) cancelPending(err error) {
	dropped := 0
	for {
		req, ok := e.queue.TryDequeue()
		if !ok {
			break
		}
		dropped++
		if req.Reply != nil {
			req.Reply(ir.Outcome{}, fmt.Errorf("engine stopped: %w", err))
		}
	}
	if dropped > 0 {
		e.logger.Warn("pending requests cancelled", "count", dropped)
	}
}

// Dispatch applies one action and returns its outcome.
//
// Unknown actions and malformed arguments return a RuntimeError and change
// nothing. An impossible initializeGame configuration returns the Rejected
// outcome together with a CONFIG_REJECTED error, and a first reveal whose
// mine placement fails returns Rejected with PLACEMENT_FAILED. Every other
// action, including no-ops, returns a nil error.
func (e *Engine) Dispatch(ctx context.Context, uri ir.ActionRef, args ir.Object) (ir.Outcome, error) {
	if args == nil {
		args = ir.Object{}
	}
	act, err := parseAction(uri, args)
	if err != nil {
		return ir.Outcome{}, err
	}

	seq := e.clock.Next()
	id, err := ir.ActionID(e.sessionID, uri, args, seq)
	if err != nil {
		return ir.Outcome{}, invalidArgs(uri, err)
	}

	before := e.game.State()
	res := act.apply(e)
	out := ir.Outcome{
		ActionID: id,
		Case:     res.outcome,
		Result:   res.result,
		Seq:      seq,
	}
	if out.StateHash, err = e.stateHash(act.container()); err != nil {
		return out, fmt.Errorf("dispatch %s: %w", uri, err)
	}

	e.logger.Debug("action dispatched",
		"action", string(uri),
		"seq", seq,
		"outcome", string(out.Case),
	)
	e.observe(uri, out.Case, before)

	if e.store != nil {
		rec := ir.Record{
			Action:  ir.Action{ID: id, SessionID: e.sessionID, URI: uri, Args: args, Seq: seq},
			Outcome: out,
		}
		if err := e.journal(ctx, rec); err != nil {
			return out, err
		}
	}

	if res.err != nil {
		return out, res.err
	}
	return out, nil
}

func (e *Engine) journal(ctx context.Context, rec ir.Record) error {
	if !e.journaled {
		sess := ir.Session{ID: e.sessionID, Seed: e.seed, EngineVersion: ir.EngineVersion}
		if err := e.store.WriteSession(ctx, sess); err != nil {
			return fmt.Errorf("journal session: %w", err)
		}
		e.journaled = true
	}
	if err := e.store.WriteRecord(ctx, rec); err != nil {
		return fmt.Errorf("journal action: %w", err)
	}
	return nil
}

// observe updates metrics from the state change an action caused.
func (e *Engine) observe(uri ir.ActionRef, c ir.OutcomeCase, before game.State) {
	if e.metrics == nil {
		return
	}
	e.metrics.ObserveAction(string(uri), string(c))
	if c != ir.CaseApplied {
		return
	}

	switch uri {
	case ir.ActionRevealCell:
		after := e.game.State()
		e.metrics.CellsRevealed(after.Grid.Counts().Revealed - before.Grid.Counts().Revealed)
		if !before.Status.Finished() && after.Status.Finished() {
			e.metrics.GameFinished(string(after.Status))
		}
	case ir.ActionIncrement, ir.ActionDecrement, ir.ActionResetCounter:
		e.metrics.SetCounter(e.counter.Count())
	}
}
