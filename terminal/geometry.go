package terminal

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// colsPerTile widens tiles so they look square in a terminal font.
const colsPerTile = 2

// Geometry maps the centred, y-up arena onto a grid of character cells.
type Geometry struct {
	arenaW, arenaH float64
	grid           int
}

// NewGeometry creates a mapping for a grid x grid tile arena.
func NewGeometry(arenaW, arenaH float64, grid int) Geometry {
	return Geometry{arenaW: arenaW, arenaH: arenaH, grid: grid}
}

// Cols returns the arena width in cells.
func (g Geometry) Cols() int { return g.grid * colsPerTile }

// Rows returns the arena height in cells.
func (g Geometry) Rows() int { return g.grid }

// CellWidth returns the world width of one cell.
func (g Geometry) CellWidth() float64 {
	if g.grid <= 0 {
		return 0
	}
	return g.arenaW / float64(g.Cols())
}

// ToCell returns the cell under a world point. ok is false outside the arena.
func (g Geometry) ToCell(p r2.Vec) (col, row int, ok bool) {
	if g.grid <= 0 || g.arenaW <= 0 || g.arenaH <= 0 {
		return 0, 0, false
	}
	col = int(math.Floor((p.X + g.arenaW/2) / g.arenaW * float64(g.Cols())))
	row = int(math.Floor((g.arenaH/2 - p.Y) / g.arenaH * float64(g.Rows())))
	ok = col >= 0 && col < g.Cols() && row >= 0 && row < g.Rows()
	return col, row, ok
}

// ToWorld returns the world point at the centre of a cell.
func (g Geometry) ToWorld(col, row int) (r2.Vec, bool) {
	if col < 0 || col >= g.Cols() || row < 0 || row >= g.Rows() {
		return r2.Vec{}, false
	}
	cellW := g.arenaW / float64(g.Cols())
	cellH := g.arenaH / float64(g.Rows())
	return r2.Vec{
		X: -g.arenaW/2 + (float64(col)+0.5)*cellW,
		Y: g.arenaH/2 - (float64(row)+0.5)*cellH,
	}, true
}
