// Package game implements the Minesweeper state container.
//
// A Game owns one board and its status and exposes the four player actions:
// Initialize, RevealCell, ToggleFlag, and Reset. Invalid actions (out of
// range, after the game ended, on a revealed or flagged cell) are absorbed
// as no-ops. Every action that changes state publishes the new State to
// subscribers synchronously.
//
// Mutations are copy-on-write: each change builds a new grid.Grid, so a
// State received by a subscriber is never modified afterwards. Game is not
// safe for concurrent use.
package game

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"

	"github.com/roach88/sweep/internal/grid"
	"github.com/roach88/sweep/internal/observer"
)

// Status is the game's lifecycle state.
type Status string

const (
	StatusPlaying Status = "playing"
	StatusWon     Status = "won"
	StatusLost    Status = "lost"
)

// Finished reports whether the game has ended.
func (s Status) Finished() bool {
	return s == StatusWon || s == StatusLost
}

// State is a read-only snapshot of a game. Callers must not modify Grid.
type State struct {
	Grid      grid.Grid `json:"grid"`
	Rows      int       `json:"rows"`
	Cols      int       `json:"cols"`
	MineCount int       `json:"mine_count"`
	Status    Status    `json:"status"`
}

// FlagsRemaining is the mine count minus the number of flags placed. It
// goes negative when the player over-flags.
func (s State) FlagsRemaining() int {
	return s.MineCount - s.Grid.Counts().Flagged
}

// Game is the Minesweeper state container.
type Game struct {
	state     State
	placer    Placer
	logger    *slog.Logger
	listeners observer.Registry[State]
}

// Option configures a Game.
type Option func(*Game)

// WithPlacer sets the mine placement strategy.
func WithPlacer(p Placer) Option {
	return func(g *Game) {
		g.placer = p
	}
}

// WithSeed uses a RandomPlacer seeded with seed.
func WithSeed(seed uint64) Option {
	return func(g *Game) {
		g.placer = NewRandomPlacer(seed)
	}
}

// WithLogger sets the logger. The default discards output.
func WithLogger(l *slog.Logger) Option {
	return func(g *Game) {
		if l != nil {
			g.logger = l
		}
	}
}

// New creates a Game with an empty 0x0 board in the playing state. Call
// Initialize before playing. Without WithPlacer or WithSeed, mines are
// placed from a randomly seeded generator.
func New(opts ...Option) *Game {
	g := &Game{
		state:  State{Status: StatusPlaying},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.placer == nil {
		g.placer = NewRandomPlacer(rand.Uint64())
	}
	return g
}

// State returns the current snapshot.
func (g *Game) State() State {
	return g.state
}

// Subscribe registers fn to receive the state after every change.
func (g *Game) Subscribe(fn func(State)) (unsubscribe func()) {
	return g.listeners.Subscribe(fn)
}

// Initialize starts a new game with an empty board. Mines are placed on the
// first reveal. An impossible configuration is rejected and the current
// game is left untouched.
func (g *Game) Initialize(rows, cols, mineCount int) error {
	if err := grid.ValidateConfig(rows, cols, mineCount); err != nil {
		return fmt.Errorf("initialize game: %w", err)
	}
	board, err := grid.New(rows, cols)
	if err != nil {
		return fmt.Errorf("initialize game: %w", err)
	}

	g.state = State{
		Grid:      board,
		Rows:      rows,
		Cols:      cols,
		MineCount: mineCount,
		Status:    StatusPlaying,
	}
	g.logger.Debug("game initialized", "rows", rows, "cols", cols, "mines", mineCount)
	g.listeners.Notify(g.state)
	return nil
}

// Reset starts over with the stored dimensions and mine count. The board is
// emptied, including mines.
func (g *Game) Reset() {
	board, err := grid.New(g.state.Rows, g.state.Cols)
	if err != nil {
		board = nil
	}
	g.state = State{
		Grid:      board,
		Rows:      g.state.Rows,
		Cols:      g.state.Cols,
		MineCount: g.state.MineCount,
		Status:    StatusPlaying,
	}
	g.logger.Debug("game reset", "rows", g.state.Rows, "cols", g.state.Cols)
	g.listeners.Notify(g.state)
}

// RevealCell opens the cell at (row, col) and reports whether the state
// changed.
//
// The first reveal of a game places the mines, with this cell kept safe.
// Revealing a mine loses the game; otherwise the flood fill runs and the
// game is won when every safe cell is open. If the placer fails the game
// is left untouched and the error is returned.
func (g *Game) RevealCell(row, col int) (bool, error) {
	p, ok := g.target(row, col)
	if !ok {
		return false, nil
	}
	cell := g.state.Grid.At(p)
	if cell.IsRevealed || cell.IsFlagged {
		return false, nil
	}

	next := g.state.Grid.Clone()
	if !next.AnyRevealed() {
		placed, err := g.placer.Place(next, g.state.MineCount, p)
		if err != nil {
			g.logger.Error("mine placement failed", "pos", p.String(), "error", err)
			return false, fmt.Errorf("reveal %s: %w", p, err)
		}
		next = placed
		grid.CalculateNeighborMines(next)
	}

	status := StatusPlaying
	if next[p.Row][p.Col].HasMine {
		next[p.Row][p.Col].IsRevealed = true
		status = StatusLost
	} else {
		grid.Reveal(next, p)
		if grid.CheckWin(next) {
			status = StatusWon
		}
	}

	g.state.Grid = next
	g.state.Status = status
	if status.Finished() {
		g.logger.Info("game finished", "status", string(status), "pos", p.String())
	}
	g.listeners.Notify(g.state)
	return true, nil
}

// ToggleFlag flips the flag on a hidden cell and reports whether the state
// changed.
func (g *Game) ToggleFlag(row, col int) bool {
	p, ok := g.target(row, col)
	if !ok {
		return false
	}
	if g.state.Grid.At(p).IsRevealed {
		return false
	}

	next := g.state.Grid.Clone()
	next[p.Row][p.Col].IsFlagged = !next[p.Row][p.Col].IsFlagged
	g.state.Grid = next
	g.listeners.Notify(g.state)
	return true
}

// target applies the guards shared by RevealCell and ToggleFlag.
func (g *Game) target(row, col int) (grid.Pos, bool) {
	if g.state.Status != StatusPlaying {
		return grid.Pos{}, false
	}
	p := grid.Pos{Row: row, Col: col}
	if !g.state.Grid.InBounds(p) {
		return grid.Pos{}, false
	}
	return p, true
}
