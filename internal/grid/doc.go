// Package grid implements the Minesweeper grid engine.
//
// Everything here is a pure function over a Grid value: creating an empty
// grid, placing mines around a safe cell, computing neighbor counts,
// flood-fill reveal, and the win check. The package holds no state between
// calls and performs no I/O.
//
// # Neighborhood
//
// A cell's neighborhood is the up-to-8 horizontally, vertically, and
// diagonally adjacent cells, clipped at the grid edges. There is no
// wraparound.
//
// # Mine placement
//
// PlaceMines picks from an explicit candidate list rather than retrying
// random coordinates, so it always terminates. Impossible configurations
// (mines >= rows*cols) are rejected up front by ValidateConfig.
//
// # Flood fill
//
// Reveal walks zero-count cells with an explicit worklist and a visited
// set. Revealed, flagged, and mined cells stop the walk and are never
// revealed by it. The first ring of nonzero cells is revealed but not
// expanded.
package grid
