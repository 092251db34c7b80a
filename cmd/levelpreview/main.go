// Level preview tool - browse the configured layouts in play order.
//
// Usage: go run ./cmd/levelpreview [-config path]
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"
	gui "github.com/gen2brain/raylib-go/raygui"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/cell/camera"
	"github.com/pthm-cable/cell/components"
	"github.com/pthm-cable/cell/config"
	"github.com/pthm-cable/cell/level"
	"github.com/pthm-cable/cell/renderer"
	"github.com/pthm-cable/cell/sim"
)

const (
	windowWidth  = 1000
	windowHeight = 720
	previewSize  = 640
	panelX       = previewSize + 30
)

// board collects the tiles of a layout as sprites.
type board struct {
	sprites []sim.Sprite
}

func (b *board) add(at r2.Vec, size float64, c components.Color, l components.Layer) {
	b.sprites = append(b.sprites, sim.Sprite{
		Pos:       at,
		W:         size,
		H:         size,
		Footprint: components.Body{W: size, H: size},
		Color:     c,
		Layer:     l,
	})
}

func (b *board) SpawnWall(at r2.Vec, size float64) {
	b.add(at, size, components.ColorWall, components.LayerWall)
}

func (b *board) SpawnPickup(at r2.Vec, size float64, _ components.EffectKind) {
	b.add(at, size, components.ColorPickup, components.LayerPickup)
}

func (b *board) SpawnPlayer(at r2.Vec, size float64) {
	b.add(at, size, components.ColorPlayer, components.LayerCell)
}

func (b *board) SpawnEnemy(at r2.Vec, size float64) {
	b.add(at, size, components.ColorEnemy, components.LayerCell)
}

// preview is one parsed layout ready to draw.
type preview struct {
	layout  level.Layout
	sprites []sim.Sprite
	err     error
}

func load(cfg *config.Config) []preview {
	geo := level.Geometry{
		Tile:     cfg.Derived.TileSize,
		CellSize: cfg.Derived.CellSize,
		ArenaW:   cfg.Arena.Width,
		ArenaH:   cfg.Arena.Height,
	}
	// Layouts are played from the last entry to the first
	out := make([]preview, 0, len(cfg.Levels))
	for i := len(cfg.Levels) - 1; i >= 0; i-- {
		l, err := level.Parse(cfg.Levels[i], cfg.Arena.Grid)
		if err != nil {
			out = append(out, preview{err: err})
			continue
		}
		b := &board{}
		level.Build(b, l, geo)
		out = append(out, preview{layout: l, sprites: b.sprites})
	}
	return out
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	levels := load(cfg)
	if len(levels) == 0 {
		log.Fatal("no levels configured")
	}

	rl.InitWindow(windowWidth, windowHeight, "Level Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	cam := camera.New(previewSize, previewSize, float32(cfg.Arena.Width), float32(cfg.Arena.Height))
	cam.SetOrigin(10, 10)
	arena := renderer.NewArenaRenderer(cam)
	arena.ShowGrid = true

	current := 0
	for !rl.WindowShouldClose() {
		if rl.IsKeyPressed(rl.KeyRight) {
			current = (current + 1) % len(levels)
		}
		if rl.IsKeyPressed(rl.KeyLeft) {
			current = (current + len(levels) - 1) % len(levels)
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		lv := levels[current]
		if lv.err == nil {
			arena.Draw(lv.sprites, cfg.Arena.Width, cfg.Arena.Height, cfg.Arena.Grid)
		} else {
			rl.DrawText(lv.err.Error(), 20, 20, 16, rl.Red)
		}

		y := float32(10)
		rl.DrawText(fmt.Sprintf("Level %d of %d", current+1, len(levels)), panelX, int32(y), 20, rl.DarkGray)
		y += 35

		if gui.Button(rl.Rectangle{X: panelX, Y: y, Width: 120, Height: 30}, "Previous") {
			current = (current + len(levels) - 1) % len(levels)
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: y, Width: 120, Height: 30}, "Next") {
			current = (current + 1) % len(levels)
		}
		y += 45

		if lv.err == nil {
			for _, k := range []level.Kind{level.KindWall, level.KindPickup, level.KindPlayer, level.KindEnemy} {
				rl.DrawText(fmt.Sprintf("%-8s %d", k, lv.layout.Count(k)), panelX, int32(y), 16, rl.DarkGray)
				y += 20
			}
			y += 10
			for _, line := range strings.Split(level.Render(lv.layout), "\n") {
				rl.DrawText(line, panelX, int32(y), 10, rl.Gray)
				y += 11
			}
		}

		rl.DrawText("Left/Right to browse, C copies the layout", panelX, windowHeight-30, 12, rl.LightGray)
		if rl.IsKeyPressed(rl.KeyC) && lv.err == nil {
			rl.SetClipboardText(level.Render(lv.layout))
		}

		rl.EndDrawing()
	}
}
