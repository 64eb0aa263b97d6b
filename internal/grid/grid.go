package grid

import (
	"errors"
	"fmt"
)

// Configuration errors. Callers match them with errors.Is.
var (
	ErrInvalidDimensions = errors.New("grid dimensions must be positive")
	ErrTooManyMines      = errors.New("mine count must be less than the number of cells")
	ErrNegativeMines     = errors.New("mine count must not be negative")
	ErrInvalidPosition   = errors.New("position is outside the grid")
)

// Cell is a single square of the board.
//
// NeighborMines is only meaningful after mines have been placed and is
// left at zero on mine cells.
type Cell struct {
	HasMine       bool `json:"has_mine"`
	IsRevealed    bool `json:"is_revealed"`
	IsFlagged     bool `json:"is_flagged"`
	NeighborMines int  `json:"neighbor_mines"`
}

// Pos addresses a cell by row and column.
type Pos struct {
	Row int `json:"row" yaml:"row"`
	Col int `json:"col" yaml:"col"`
}

func (p Pos) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Grid is a rectangular, row-major array of cells.
type Grid [][]Cell

// MaxDimension bounds rows and cols so rows*cols can never overflow and a
// board always fits in memory.
const MaxDimension = 1024

func validDimensions(rows, cols int) error {
	if rows <= 0 || cols <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, rows, cols)
	}
	if rows > MaxDimension || cols > MaxDimension {
		return fmt.Errorf("%w: %dx%d exceeds %dx%d", ErrInvalidDimensions, rows, cols, MaxDimension, MaxDimension)
	}
	return nil
}

// New returns a rows x cols grid with every cell hidden, unflagged, and
// mine-free.
func New(rows, cols int) (Grid, error) {
	if err := validDimensions(rows, cols); err != nil {
		return nil, err
	}
	g := make(Grid, rows)
	for r := range g {
		g[r] = make([]Cell, cols)
	}
	return g, nil
}

// ValidateConfig reports whether a game of the given size and mine count
// can be played. Mine placement needs at least one mine-free cell for the
// opening move, so mines must be strictly less than rows*cols.
func ValidateConfig(rows, cols, mines int) error {
	if err := validDimensions(rows, cols); err != nil {
		return err
	}
	if mines < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeMines, mines)
	}
	if mines >= rows*cols {
		return fmt.Errorf("%w: %d mines on %dx%d", ErrTooManyMines, mines, rows, cols)
	}
	return nil
}

// Rows returns the number of rows.
func (g Grid) Rows() int {
	return len(g)
}

// Cols returns the number of columns, or 0 for an empty grid.
func (g Grid) Cols() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

// InBounds reports whether p addresses a cell of g.
func (g Grid) InBounds(p Pos) bool {
	return p.Row >= 0 && p.Row < g.Rows() && p.Col >= 0 && p.Col < g.Cols()
}

// At returns the cell at p. It panics if p is out of bounds.
func (g Grid) At(p Pos) Cell {
	return g[p.Row][p.Col]
}

// Clone returns a deep copy of g.
func (g Grid) Clone() Grid {
	if g == nil {
		return nil
	}
	out := make(Grid, len(g))
	for r := range g {
		out[r] = make([]Cell, len(g[r]))
		copy(out[r], g[r])
	}
	return out
}

// Neighbors returns the in-bounds neighbors of p in row-major order.
func (g Grid) Neighbors(p Pos) []Pos {
	out := make([]Pos, 0, 8)
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			n := Pos{Row: p.Row + dr, Col: p.Col + dc}
			if g.InBounds(n) {
				out = append(out, n)
			}
		}
	}
	return out
}

// AnyRevealed reports whether at least one cell has been revealed.
func (g Grid) AnyRevealed() bool {
	for r := range g {
		for c := range g[r] {
			if g[r][c].IsRevealed {
				return true
			}
		}
	}
	return false
}

// Counts summarizes a grid.
type Counts struct {
	Revealed int
	Flagged  int
	Mines    int
}

// Counts tallies revealed, flagged, and mined cells.
func (g Grid) Counts() Counts {
	var n Counts
	for r := range g {
		for _, cell := range g[r] {
			if cell.IsRevealed {
				n.Revealed++
			}
			if cell.IsFlagged {
				n.Flagged++
			}
			if cell.HasMine {
				n.Mines++
			}
		}
	}
	return n
}
