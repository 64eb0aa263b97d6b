package grid

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mustLayout builds a grid with mines from a layout and neighbor counts
// already computed.
func mustLayout(t *testing.T, lines ...string) Grid {
	t.Helper()
	mines, rows, cols, err := ParseLayout(lines)
	require.NoError(t, err)
	g, err := New(rows, cols)
	require.NoError(t, err)
	for _, p := range mines {
		g[p.Row][p.Col].HasMine = true
	}
	CalculateNeighborMines(g)
	return g
}

func TestNew(t *testing.T) {
	g, err := New(3, 4)
	require.NoError(t, err)
	assert.Equal(t, 3, g.Rows())
	assert.Equal(t, 4, g.Cols())
	for r := range g {
		for _, cell := range g[r] {
			assert.Equal(t, Cell{}, cell)
		}
	}
}

func TestNew_InvalidDimensions(t *testing.T) {
	tests := []struct {
		name       string
		rows, cols int
	}{
		{"zero rows", 0, 3},
		{"zero cols", 3, 0},
		{"negative", -1, 5},
		{"too many rows", MaxDimension + 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.rows, tt.cols)
			assert.ErrorIs(t, err, ErrInvalidDimensions)
		})
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name              string
		rows, cols, mines int
		want              error
	}{
		{"ok", 9, 9, 10, nil},
		{"no mines", 1, 1, 0, nil},
		{"one free cell", 2, 2, 3, nil},
		{"full board", 2, 2, 4, ErrTooManyMines},
		{"overfull", 2, 2, 9, ErrTooManyMines},
		{"negative mines", 3, 3, -1, ErrNegativeMines},
		{"bad dims", 0, 3, 0, ErrInvalidDimensions},
		{"largest board", MaxDimension, MaxDimension, 1, nil},
		{"too wide", 1, MaxDimension + 1, 0, ErrInvalidDimensions},
		{"product overflows int", (1 << 62) + 1, 4, 0, ErrInvalidDimensions},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateConfig(tt.rows, tt.cols, tt.mines)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNeighbors_ClippedAtEdges(t *testing.T) {
	g, err := New(3, 3)
	require.NoError(t, err)

	assert.Len(t, g.Neighbors(Pos{0, 0}), 3)
	assert.Len(t, g.Neighbors(Pos{0, 1}), 5)
	assert.Len(t, g.Neighbors(Pos{1, 1}), 8)
	assert.Equal(t, []Pos{{0, 1}, {1, 0}, {1, 1}}, g.Neighbors(Pos{0, 0}))
}

func TestClone_IsDeep(t *testing.T) {
	g, err := New(2, 2)
	require.NoError(t, err)
	c := g.Clone()
	c[0][0].IsRevealed = true
	assert.False(t, g[0][0].IsRevealed)
}

func TestPlaceMines_ExactCountNeverOnSafeCell(t *testing.T) {
	for seed := uint64(0); seed < 200; seed++ {
		r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
		g, err := New(6, 7)
		require.NoError(t, err)
		safe := Pos{Row: int(seed % 6), Col: int(seed % 7)}

		out, err := PlaceMines(g, 20, safe, r)
		require.NoError(t, err)

		assert.Equal(t, 20, out.Counts().Mines, "seed %d", seed)
		assert.False(t, out.At(safe).HasMine, "seed %d", seed)
		assert.Equal(t, 0, g.Counts().Mines, "input grid must not change")
	}
}

func TestPlaceMines_FillsEveryCellButSafe(t *testing.T) {
	g, err := New(3, 3)
	require.NoError(t, err)
	out, err := PlaceMines(g, 8, Pos{1, 1}, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)
	assert.Equal(t, "***\n*.*\n***\n", RenderAll(out))
}

func TestPlaceMines_Rejects(t *testing.T) {
	g, err := New(2, 2)
	require.NoError(t, err)

	_, err = PlaceMines(g, 4, Pos{0, 0}, nil)
	assert.ErrorIs(t, err, ErrTooManyMines)

	_, err = PlaceMines(g, -1, Pos{0, 0}, nil)
	assert.ErrorIs(t, err, ErrNegativeMines)

	_, err = PlaceMines(g, 1, Pos{5, 5}, nil)
	assert.ErrorIs(t, err, ErrInvalidPosition)
}

func TestPlaceMines_SameSeedSameLayout(t *testing.T) {
	g, err := New(8, 8)
	require.NoError(t, err)
	a, err := PlaceMines(g, 10, Pos{0, 0}, rand.New(rand.NewPCG(42, 42)))
	require.NoError(t, err)
	b, err := PlaceMines(g, 10, Pos{0, 0}, rand.New(rand.NewPCG(42, 42)))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestPlaceMinesAt(t *testing.T) {
	g, err := New(2, 3)
	require.NoError(t, err)

	out, err := PlaceMinesAt(g, []Pos{{0, 2}, {1, 0}}, Pos{0, 0})
	require.NoError(t, err)
	assert.Equal(t, "..*\n*..\n", RenderAll(out))

	_, err = PlaceMinesAt(g, []Pos{{0, 0}}, Pos{0, 0})
	assert.Error(t, err)

	_, err = PlaceMinesAt(g, []Pos{{0, 1}, {0, 1}}, Pos{0, 0})
	assert.Error(t, err)

	_, err = PlaceMinesAt(g, []Pos{{2, 0}}, Pos{0, 0})
	assert.ErrorIs(t, err, ErrInvalidPosition)
}

func TestCalculateNeighborMines(t *testing.T) {
	g := mustLayout(t,
		"*...",
		"..*.",
		"....",
	)
	assert.Equal(t,
		"*211\n"+
			"12*1\n"+
			".111\n",
		RenderAll(g))
}

func TestCalculateNeighborMines_MatchesBruteForce(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	for i := 0; i < 50; i++ {
		g, err := New(5, 9)
		require.NoError(t, err)
		g, err = PlaceMines(g, r.IntN(44), Pos{2, 4}, r)
		require.NoError(t, err)
		CalculateNeighborMines(g)

		for row := range g {
			for col := range g[row] {
				cell := g[row][col]
				if cell.HasMine {
					assert.Zero(t, cell.NeighborMines)
					continue
				}
				want := 0
				for dr := -1; dr <= 1; dr++ {
					for dc := -1; dc <= 1; dc++ {
						rr, cc := row+dr, col+dc
						if (dr != 0 || dc != 0) && rr >= 0 && rr < 5 && cc >= 0 && cc < 9 && g[rr][cc].HasMine {
							want++
						}
					}
				}
				assert.Equal(t, want, cell.NeighborMines, "cell (%d,%d)", row, col)
			}
		}
	}
}

func TestReveal_FloodFillStopsAtNumberRing(t *testing.T) {
	g := mustLayout(t,
		".....",
		".....",
		"....*",
	)
	n := Reveal(g, Pos{0, 0})

	assert.Equal(t, 14, n)
	assert.Equal(t,
		".....\n"+
			"...11\n"+
			"...1#\n",
		Render(g))
	assert.True(t, CheckWin(g))
}

func TestReveal_NumberCellDoesNotExpand(t *testing.T) {
	g := mustLayout(t,
		"*..",
		"...",
		"...",
	)
	n := Reveal(g, Pos{0, 1})
	assert.Equal(t, 1, n)
	assert.Equal(t, "#1#\n###\n###\n", Render(g))
}

func TestReveal_TerminalCells(t *testing.T) {
	g := mustLayout(t,
		"...",
		"...",
		"..*",
	)
	g[0][2].IsFlagged = true

	assert.Equal(t, 0, Reveal(g, Pos{2, 2}), "mine is never revealed by flood fill")
	assert.Equal(t, 0, Reveal(g, Pos{0, 2}), "flagged cell is terminal")

	n := Reveal(g, Pos{0, 0})
	assert.Equal(t, 7, n)
	assert.Equal(t, "..F\n.11\n.1#\n", Render(g))

	assert.Equal(t, 0, Reveal(g, Pos{0, 0}), "already revealed cell is terminal")
	assert.Equal(t, 0, Reveal(g, Pos{9, 9}))
}

func TestReveal_NeverRevealsMines(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 5))
	for i := 0; i < 50; i++ {
		g, err := New(10, 10)
		require.NoError(t, err)
		safe := Pos{r.IntN(10), r.IntN(10)}
		g, err = PlaceMines(g, 15, safe, r)
		require.NoError(t, err)
		CalculateNeighborMines(g)

		n := Reveal(g, safe)
		assert.Equal(t, n, g.Counts().Revealed)
		for row := range g {
			for _, cell := range g[row] {
				assert.False(t, cell.HasMine && cell.IsRevealed)
			}
		}
	}
}

func TestCheckWin(t *testing.T) {
	g := mustLayout(t, "*.", "..")
	assert.False(t, CheckWin(g), "nothing revealed")

	g[0][1].IsRevealed = true
	g[1][0].IsRevealed = true
	assert.False(t, CheckWin(g), "one safe cell still hidden")

	g[1][1].IsRevealed = true
	assert.True(t, CheckWin(g), "flags are irrelevant")

	g[0][0].IsFlagged = true
	assert.True(t, CheckWin(g))

	g[0][0].IsRevealed = true
	assert.False(t, CheckWin(g), "revealed mine")
}

func TestCheckWin_NoMines(t *testing.T) {
	g, err := New(1, 1)
	require.NoError(t, err)
	assert.False(t, CheckWin(g))
	Reveal(g, Pos{0, 0})
	assert.True(t, CheckWin(g))
}

func TestParseLayout(t *testing.T) {
	mines, rows, cols, err := ParseLayout([]string{"*.", ".*", ".."})
	require.NoError(t, err)
	assert.Equal(t, 3, rows)
	assert.Equal(t, 2, cols)
	assert.Equal(t, []Pos{{0, 0}, {1, 1}}, mines)

	_, _, _, err = ParseLayout([]string{"*.", "."})
	assert.Error(t, err)

	_, _, _, err = ParseLayout([]string{"*x"})
	assert.Error(t, err)

	_, _, _, err = ParseLayout(nil)
	assert.ErrorIs(t, err, ErrInvalidDimensions)
}

func TestRender_FlaggedAndHidden(t *testing.T) {
	g := mustLayout(t, "*.")
	g[0][0].IsFlagged = true
	assert.Equal(t, "F#\n", Render(g))

	g[0][0].IsFlagged = false
	g[0][0].IsRevealed = true
	g[0][1].IsRevealed = true
	assert.Equal(t, "*1\n", Render(g))
}
