// Package level parses level layouts and places their tiles in the arena.
package level

import (
	"errors"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/cell/components"
)

// Kind is what a layout character spawns.
type Kind uint8

const (
	KindWall Kind = iota
	KindPickup
	KindPlayer
	KindEnemy
)

func (k Kind) String() string {
	switch k {
	case KindWall:
		return "wall"
	case KindPickup:
		return "pickup"
	case KindPlayer:
		return "player"
	case KindEnemy:
		return "enemy"
	default:
		return "unknown"
	}
}

// kindOf maps layout characters. Characters not listed are empty floor.
func kindOf(c rune) (Kind, bool) {
	switch c {
	case '|':
		return KindWall, true
	case '*':
		return KindPickup, true
	case 'P':
		return KindPlayer, true
	case 'E':
		return KindEnemy, true
	}
	return 0, false
}

// Tile is one spawnable cell of a layout.
type Tile struct {
	Kind     Kind
	Row, Col int
}

// Layout is a parsed level.
type Layout struct {
	Grid  int
	Tiles []Tile
}

// Count returns the number of tiles of kind k.
func (l Layout) Count(k Kind) int {
	n := 0
	for _, t := range l.Tiles {
		if t.Kind == k {
			n++
		}
	}
	return n
}

// ErrLayout is wrapped by every layout validation error.
var ErrLayout = errors.New("invalid level layout")

// Parse reads a layout row-major. Newlines are ignored, so the i-th remaining
// character sits at column i%grid, row i/grid. Exactly one player and one
// enemy are required.
func Parse(layout string, grid int) (Layout, error) {
	if grid <= 0 {
		return Layout{}, fmt.Errorf("%w: grid %d", ErrLayout, grid)
	}
	out := Layout{Grid: grid}
	i := 0
	for _, c := range layout {
		if c == '\n' || c == '\r' {
			continue
		}
		if k, ok := kindOf(c); ok {
			out.Tiles = append(out.Tiles, Tile{Kind: k, Row: i / grid, Col: i % grid})
		}
		i++
	}

	if p := out.Count(KindPlayer); p != 1 {
		return Layout{}, fmt.Errorf("%w: %d players, want 1", ErrLayout, p)
	}
	if e := out.Count(KindEnemy); e != 1 {
		return Layout{}, fmt.Errorf("%w: %d enemies, want 1", ErrLayout, e)
	}
	return out, nil
}

// TileCenter returns the world position of a tile centre. Row 0 is the top
// of the arena; the world origin is the arena centre with y up.
func TileCenter(row, col int, tile, arenaW, arenaH float64) r2.Vec {
	return r2.Vec{
		X: float64(col)*tile - arenaW/2 + tile/2,
		Y: -float64(row)*tile + arenaH/2 - tile/2,
	}
}

// Select returns the layout played at a level counter. Counters run down from
// len-1, so levels[0] is played last.
func Select(levels []string, counter int) (string, error) {
	if counter < 0 || counter >= len(levels) {
		return "", fmt.Errorf("%w: counter %d outside %d levels", ErrLayout, counter, len(levels))
	}
	return levels[len(levels)-1-counter], nil
}

// Builder creates the entities of a level.
type Builder interface {
	SpawnWall(at r2.Vec, size float64)
	SpawnPickup(at r2.Vec, size float64, kind components.EffectKind)
	SpawnPlayer(at r2.Vec, size float64)
	SpawnEnemy(at r2.Vec, size float64)
}

// Geometry is the arena the layout is placed in.
type Geometry struct {
	Tile     float64
	CellSize float64
	ArenaW   float64
	ArenaH   float64
}

// Build spawns every tile of layout through b.
func Build(b Builder, layout Layout, g Geometry) {
	for _, t := range layout.Tiles {
		at := TileCenter(t.Row, t.Col, g.Tile, g.ArenaW, g.ArenaH)
		switch t.Kind {
		case KindWall:
			b.SpawnWall(at, g.Tile)
		case KindPickup:
			b.SpawnPickup(at, g.Tile, components.EffectSpeed)
		case KindPlayer:
			b.SpawnPlayer(at, g.CellSize)
		case KindEnemy:
			b.SpawnEnemy(at, g.CellSize)
		}
	}
}

// Render draws a layout back as text, one row per line. Used by previews.
func Render(l Layout) string {
	rows := make([][]byte, l.Grid)
	for r := range rows {
		rows[r] = []byte(strings.Repeat(".", l.Grid))
	}
	glyph := map[Kind]byte{KindWall: '|', KindPickup: '*', KindPlayer: 'P', KindEnemy: 'E'}
	for _, t := range l.Tiles {
		if t.Row < l.Grid {
			rows[t.Row][t.Col] = glyph[t.Kind]
		}
	}
	var sb strings.Builder
	for _, r := range rows {
		sb.Write(r)
		sb.WriteByte('\n')
	}
	return sb.String()
}
