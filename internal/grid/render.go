package grid

import (
	"fmt"
	"strings"
)

// Render glyphs.
const (
	GlyphHidden  = '#'
	GlyphFlag    = 'F'
	GlyphMine    = '*'
	GlyphEmpty   = '.'
	GlyphUnknown = '?'
)

// Render draws the board as a player sees it, one line per row:
// '#' hidden, 'F' flagged, '*' revealed mine, '.' revealed zero, and the
// neighbor count otherwise.
func Render(g Grid) string {
	var b strings.Builder
	for row := range g {
		for _, cell := range g[row] {
			switch {
			case cell.IsFlagged && !cell.IsRevealed:
				b.WriteByte(GlyphFlag)
			case !cell.IsRevealed:
				b.WriteByte(GlyphHidden)
			default:
				b.WriteByte(cellGlyph(cell))
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// RenderAll draws the solved board regardless of what has been revealed.
func RenderAll(g Grid) string {
	var b strings.Builder
	for row := range g {
		for _, cell := range g[row] {
			b.WriteByte(cellGlyph(cell))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func cellGlyph(cell Cell) byte {
	switch {
	case cell.HasMine:
		return GlyphMine
	case cell.NeighborMines == 0:
		return GlyphEmpty
	case cell.NeighborMines > 0 && cell.NeighborMines <= 8:
		return byte('0' + cell.NeighborMines)
	default:
		return GlyphUnknown
	}
}

// ParseLayout reads a mine layout written one string per row, with '*' for
// a mine and '.' for a free cell. It returns the mine positions and the
// layout's dimensions.
func ParseLayout(lines []string) (mines []Pos, rows, cols int, err error) {
	if len(lines) == 0 {
		return nil, 0, 0, fmt.Errorf("parse layout: %w: no rows", ErrInvalidDimensions)
	}
	cols = len(lines[0])
	if cols == 0 {
		return nil, 0, 0, fmt.Errorf("parse layout: %w: empty row", ErrInvalidDimensions)
	}
	for r, line := range lines {
		if len(line) != cols {
			return nil, 0, 0, fmt.Errorf("parse layout: row %d has %d cells, want %d", r, len(line), cols)
		}
		for c, ch := range line {
			switch ch {
			case GlyphMine:
				mines = append(mines, Pos{Row: r, Col: c})
			case GlyphEmpty:
			default:
				return nil, 0, 0, fmt.Errorf("parse layout: row %d col %d: unexpected %q", r, c, ch)
			}
		}
	}
	return mines, len(lines), cols, nil
}
