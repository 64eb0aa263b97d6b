package game

import (
	"fmt"
	"math/rand/v2"

	"github.com/roach88/sweep/internal/grid"
)

// Placer decides where mines go when the first cell of a game is revealed.
// Implementations must never put a mine on safe and must return a new grid
// rather than modifying g.
type Placer interface {
	Place(g grid.Grid, mineCount int, safe grid.Pos) (grid.Grid, error)
}

// RandomPlacer places mines uniformly at random from a seeded PCG source.
// The same seed and the same sequence of games produce the same layouts.
type RandomPlacer struct {
	seed uint64
	rng  *rand.Rand
}

// NewRandomPlacer creates a placer seeded with seed.
func NewRandomPlacer(seed uint64) *RandomPlacer {
	return &RandomPlacer{
		seed: seed,
		rng:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Seed returns the seed the placer was created with.
func (p *RandomPlacer) Seed() uint64 {
	return p.seed
}

// Place implements Placer.
func (p *RandomPlacer) Place(g grid.Grid, mineCount int, safe grid.Pos) (grid.Grid, error) {
	return grid.PlaceMines(g, mineCount, safe, p.rng)
}

// FixedPlacer puts mines at a predetermined layout. It is used by scenario
// files and tests that need a known board.
type FixedPlacer struct {
	Mines []grid.Pos
}

// Place implements Placer. The layout must hold exactly mineCount mines.
func (p FixedPlacer) Place(g grid.Grid, mineCount int, safe grid.Pos) (grid.Grid, error) {
	if len(p.Mines) != mineCount {
		return nil, fmt.Errorf("fixed layout has %d mines, game expects %d", len(p.Mines), mineCount)
	}
	return grid.PlaceMinesAt(g, p.Mines, safe)
}
