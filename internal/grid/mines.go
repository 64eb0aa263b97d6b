package grid

import (
	"fmt"
	"math/rand/v2"
)

// PlaceMines returns a copy of g with mineCount mines placed uniformly at
// random over every mine-free cell except safe. The input grid is not
// modified.
//
// A nil r falls back to the process-wide generator of math/rand/v2.
func PlaceMines(g Grid, mineCount int, safe Pos, r *rand.Rand) (Grid, error) {
	if !g.InBounds(safe) {
		return nil, fmt.Errorf("place mines: safe cell %s: %w", safe, ErrInvalidPosition)
	}
	if mineCount < 0 {
		return nil, fmt.Errorf("place mines: %w: %d", ErrNegativeMines, mineCount)
	}

	candidates := make([]Pos, 0, g.Rows()*g.Cols())
	for row := range g {
		for col := range g[row] {
			p := Pos{Row: row, Col: col}
			if p == safe || g[row][col].HasMine {
				continue
			}
			candidates = append(candidates, p)
		}
	}
	if mineCount > len(candidates) {
		return nil, fmt.Errorf("place mines: %w: %d mines, %d free cells", ErrTooManyMines, mineCount, len(candidates))
	}

	out := g.Clone()
	k := len(candidates)
	for range mineCount {
		i := intN(r, k)
		p := candidates[i]
		out[p.Row][p.Col].HasMine = true
		k--
		candidates[i] = candidates[k]
	}
	return out, nil
}

// PlaceMinesAt returns a copy of g with mines at exactly the given
// positions. Positions must be in bounds, distinct, and different from
// safe.
func PlaceMinesAt(g Grid, positions []Pos, safe Pos) (Grid, error) {
	out := g.Clone()
	seen := make(map[Pos]struct{}, len(positions))
	for _, p := range positions {
		if !g.InBounds(p) {
			return nil, fmt.Errorf("place mines at %s: %w", p, ErrInvalidPosition)
		}
		if p == safe {
			return nil, fmt.Errorf("place mines at %s: position is the safe cell", p)
		}
		if _, dup := seen[p]; dup {
			return nil, fmt.Errorf("place mines at %s: duplicate position", p)
		}
		seen[p] = struct{}{}
		out[p.Row][p.Col].HasMine = true
	}
	return out, nil
}

// CalculateNeighborMines writes, for every non-mine cell, the number of
// mined cells among its neighbors. Mine cells are left untouched. g is
// modified in place.
func CalculateNeighborMines(g Grid) {
	for row := range g {
		for col := range g[row] {
			if g[row][col].HasMine {
				continue
			}
			count := 0
			for _, n := range g.Neighbors(Pos{Row: row, Col: col}) {
				if g[n.Row][n.Col].HasMine {
					count++
				}
			}
			g[row][col].NeighborMines = count
		}
	}
}

func intN(r *rand.Rand, n int) int {
	if r == nil {
		return rand.IntN(n)
	}
	return r.IntN(n)
}
