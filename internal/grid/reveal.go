package grid

// Reveal flood-fills from start and returns the number of cells it
// revealed. g is modified in place.
//
// A cell that is already revealed, flagged, or mined ends the walk at that
// cell without being revealed. Every other visited cell is revealed, and
// cells with no neighboring mines push their neighbors onto the worklist.
// Each cell is processed at most once per call.
func Reveal(g Grid, start Pos) int {
	if !g.InBounds(start) {
		return 0
	}

	visited := make(map[Pos]struct{})
	stack := []Pos{start}
	revealed := 0

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, seen := visited[p]; seen {
			continue
		}
		visited[p] = struct{}{}

		cell := &g[p.Row][p.Col]
		if cell.IsRevealed || cell.IsFlagged || cell.HasMine {
			continue
		}
		cell.IsRevealed = true
		revealed++

		if cell.NeighborMines != 0 {
			continue
		}
		for _, n := range g.Neighbors(p) {
			if _, seen := visited[n]; !seen {
				stack = append(stack, n)
			}
		}
	}

	return revealed
}

// CheckWin reports whether every mine is hidden and every other cell is
// revealed. Flags do not matter.
func CheckWin(g Grid) bool {
	for row := range g {
		for _, cell := range g[row] {
			if cell.HasMine == cell.IsRevealed {
				return false
			}
		}
	}
	return true
}
