// Package renderer draws the arena and its entities on raylib.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/cell/camera"
	"github.com/pthm-cable/cell/components"
	"github.com/pthm-cable/cell/sim"
)

var (
	floorColor     = rl.Color{R: 22, G: 26, B: 32, A: 255}
	borderColor    = rl.Color{R: 90, G: 100, B: 110, A: 255}
	gridColor      = rl.Color{R: 40, G: 46, B: 54, A: 255}
	footprintColor = rl.Color{R: 255, G: 60, B: 60, A: 200}
)

// ArenaRenderer draws sprites through a camera.
type ArenaRenderer struct {
	cam *camera.Camera

	// Debug toggles
	ShowFootprints bool
	ShowGrid       bool
}

// NewArenaRenderer creates a renderer for the given camera.
func NewArenaRenderer(cam *camera.Camera) *ArenaRenderer {
	return &ArenaRenderer{cam: cam}
}

// Draw renders the arena floor, optional grid, sprites and optional
// collision footprints.
func (a *ArenaRenderer) Draw(sprites []sim.Sprite, arenaW, arenaH float64, grid int) {
	floor := ScreenRect(a.cam, 0, 0, arenaW, arenaH)
	rl.DrawRectangleRec(floor, floorColor)

	if a.ShowGrid {
		a.drawGrid(arenaW, arenaH, grid)
	}

	for i := range sprites {
		sp := &sprites[i]
		half := float32(max(sp.W, sp.H, sp.Footprint.W, sp.Footprint.H) / 2)
		if !a.cam.IsVisible(float32(sp.Pos.X), float32(sp.Pos.Y), half) {
			continue
		}
		a.drawSprite(sp)
	}

	if a.ShowFootprints {
		for i := range sprites {
			sp := &sprites[i]
			r := ScreenRect(a.cam, sp.Pos.X, sp.Pos.Y, sp.Footprint.W, sp.Footprint.H)
			rl.DrawRectangleLinesEx(r, 1, footprintColor)
		}
	}

	rl.DrawRectangleLinesEx(floor, 2, borderColor)
}

func (a *ArenaRenderer) drawSprite(sp *sim.Sprite) {
	color := ToRL(sp.Color)
	switch sp.Layer {
	case components.LayerExplosion:
		// Blast ring shows how far the explosion reaches
		center := ScreenRect(a.cam, sp.Pos.X, sp.Pos.Y, 0, 0)
		reach := a.cam.ScaleLength(float32(sp.Footprint.W / 2))
		faded := color
		faded.A = 60
		rl.DrawCircleV(rl.Vector2{X: center.X, Y: center.Y}, reach, faded)
		rl.DrawRectangleRec(ScreenRect(a.cam, sp.Pos.X, sp.Pos.Y, sp.W, sp.H), color)
	case components.LayerParticle, components.LayerVirus:
		r := ScreenRect(a.cam, sp.Pos.X, sp.Pos.Y, sp.W, sp.H)
		rl.DrawCircleV(rl.Vector2{X: r.X + r.Width/2, Y: r.Y + r.Height/2}, r.Width/2, color)
	default:
		rl.DrawRectangleRec(ScreenRect(a.cam, sp.Pos.X, sp.Pos.Y, sp.W, sp.H), color)
	}
}

func (a *ArenaRenderer) drawGrid(arenaW, arenaH float64, grid int) {
	for _, l := range GridLines(arenaW, arenaH, grid) {
		x0, y0 := a.cam.WorldToScreen(float32(l[0]), float32(l[1]))
		x1, y1 := a.cam.WorldToScreen(float32(l[2]), float32(l[3]))
		rl.DrawLineV(rl.Vector2{X: x0, Y: y0}, rl.Vector2{X: x1, Y: y1}, gridColor)
	}
}

// ScreenRect converts a world box centred at (x, y) to a screen rectangle.
func ScreenRect(cam *camera.Camera, x, y, w, h float64) rl.Rectangle {
	// Top-left in world space is (x - w/2, y + h/2) since y grows upward
	sx, sy := cam.WorldToScreen(float32(x-w/2), float32(y+h/2))
	return rl.Rectangle{
		X:      sx,
		Y:      sy,
		Width:  cam.ScaleLength(float32(w)),
		Height: cam.ScaleLength(float32(h)),
	}
}

// GridLines returns the interior tile boundaries of an arena as
// {x0, y0, x1, y1} world segments.
func GridLines(arenaW, arenaH float64, grid int) [][4]float64 {
	if grid <= 1 {
		return nil
	}
	halfW, halfH := arenaW/2, arenaH/2
	tileW, tileH := arenaW/float64(grid), arenaH/float64(grid)
	lines := make([][4]float64, 0, 2*(grid-1))
	for i := 1; i < grid; i++ {
		x := -halfW + float64(i)*tileW
		lines = append(lines, [4]float64{x, -halfH, x, halfH})
	}
	for i := 1; i < grid; i++ {
		y := -halfH + float64(i)*tileH
		lines = append(lines, [4]float64{-halfW, y, halfW, y})
	}
	return lines
}

// ToRL converts a palette colour to a raylib colour.
func ToRL(c components.Color) rl.Color {
	return rl.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}
