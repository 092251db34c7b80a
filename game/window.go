package game

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/cell/camera"
	"github.com/pthm-cable/cell/config"
	"github.com/pthm-cable/cell/renderer"
	"github.com/pthm-cable/cell/state"
	"github.com/pthm-cable/cell/systems"
	"github.com/pthm-cable/cell/telemetry"
	"github.com/pthm-cable/cell/ui"
)

// hudHeight is the status band above the arena.
const hudHeight = 60

const controlsLegend = "WASD move  SPACE eject  Q virus  ESC pause  F1 help  F3 perf  B boxes  G grid"

// keyBindings maps raylib keys to game keys. Arrows mirror WASD.
var keyBindings = []struct {
	key int32
	to  systems.Key
}{
	{rl.KeyW, systems.KeyUp},
	{rl.KeyUp, systems.KeyUp},
	{rl.KeyS, systems.KeyDown},
	{rl.KeyDown, systems.KeyDown},
	{rl.KeyA, systems.KeyLeft},
	{rl.KeyLeft, systems.KeyLeft},
	{rl.KeyD, systems.KeyRight},
	{rl.KeyRight, systems.KeyRight},
}

// WindowHost runs the game in a raylib window.
type WindowHost struct {
	width, height int32

	cam      *camera.Camera
	arena    *renderer.ArenaRenderer
	hud      *ui.HUD
	menu     *ui.Menu
	perf     *ui.PerfPanel
	controls *ui.ControlsPanel
	overlays *ui.OverlayRegistry
	frames   *telemetry.PerfCollector

	clicked Button // Button pressed during the last Draw
}

// NewWindowHost opens the window. perf may be nil.
func NewWindowHost(cfg *config.Config, perf *telemetry.PerfCollector) *WindowHost {
	w, h := int32(cfg.Screen.Width), int32(cfg.Screen.Height)
	rl.SetConfigFlags(rl.FlagMsaa4xHint)
	rl.InitWindow(w, h, cfg.Screen.Title)
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))
	// Escape pauses instead of closing the window
	rl.SetExitKey(0)

	cam := camera.New(float32(w), float32(h-hudHeight), float32(cfg.Arena.Width), float32(cfg.Arena.Height))
	cam.SetOrigin(0, hudHeight)

	return &WindowHost{
		width:    w,
		height:   h,
		cam:      cam,
		arena:    renderer.NewArenaRenderer(cam),
		hud:      ui.NewHUD(),
		menu:     ui.NewMenu(),
		perf:     ui.NewPerfPanel(w-230, hudHeight+10),
		controls: ui.NewControlsPanel(10, hudHeight+10, 260),
		overlays: ui.NewOverlayRegistry(),
		frames:   perf,
	}
}

// Poll reads the keyboard and mouse.
func (h *WindowHost) Poll() Frame {
	h.frames.RecordFrame()

	for key := rl.GetKeyPressed(); key != 0; key = rl.GetKeyPressed() {
		if id, on, ok := h.overlays.HandleKeyPress(key); ok {
			slog.Debug("overlay toggled", "overlay", id, "on", on, "enabled", h.overlays.EnabledOverlays())
		}
	}
	h.arena.ShowFootprints = h.overlays.IsEnabled(ui.OverlayFootprints)
	h.arena.ShowGrid = h.overlays.IsEnabled(ui.OverlayGrid)

	f := Frame{
		Input:  systems.Input{DT: float64(rl.GetFrameTime())},
		Escape: rl.IsKeyPressed(rl.KeyEscape),
		Button: h.clicked,
	}
	h.clicked = ButtonNone

	for _, b := range keyBindings {
		if rl.IsKeyDown(b.key) {
			f.Input.Held = f.Input.Held.With(b.to)
		}
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		f.Input.Pressed = f.Input.Pressed.With(systems.KeyFire)
	}
	if rl.IsKeyPressed(rl.KeyQ) {
		f.Input.Pressed = f.Input.Pressed.With(systems.KeyDropVirus)
	}

	mouse := rl.GetMousePosition()
	if h.cam.InViewport(mouse.X, mouse.Y) {
		wx, wy := h.cam.ScreenToWorld(mouse.X, mouse.Y)
		f.Input.Cursor = r2.Vec{X: float64(wx), Y: float64(wy)}
		f.Input.CursorOK = true
	}
	return f
}

// Draw renders the scene.
func (h *WindowHost) Draw(scene *Scene) {
	rl.BeginDrawing()
	h.menu.DrawBackground()

	switch scene.State {
	case state.Game:
		h.drawGame(scene)
	default:
		h.drawMenu(scene.Menu)
	}

	rl.EndDrawing()
}

func (h *WindowHost) drawMenu(m MenuView) {
	labels := make([]string, len(m.Buttons))
	for i, b := range m.Buttons {
		labels[i] = b.String()
	}
	idx := h.menu.Draw(ui.MenuData{
		Title:     m.Title,
		Score:     m.Score,
		ShowScore: m.ShowScore,
		Buttons:   labels,
	}, h.width, h.height)
	if idx >= 0 {
		h.clicked = m.Buttons[idx]
	}
}

func (h *WindowHost) drawGame(scene *Scene) {
	h.arena.Draw(scene.Sprites, scene.ArenaW, scene.ArenaH, scene.Grid)

	h.hud.Draw(ui.HUDData{
		Score:       scene.HUD.Score,
		Level:       scene.HUD.Level,
		LevelCount:  scene.HUD.LevelCount,
		Lifespan:    scene.HUD.Lifespan,
		MaxLifespan: scene.HUD.MaxLifespan,
		Boosted:     scene.HUD.Boosted,
		Elapsed:     scene.HUD.Elapsed,
		FPS:         rl.GetFPS(),
	}, h.width, hudHeight)

	if h.overlays.IsEnabled(ui.OverlayPerf) {
		h.perf.Draw(scene.Perf, scene.Registry)
	}
	if h.overlays.IsEnabled(ui.OverlayControls) {
		h.controls.Draw(h.overlays)
	} else {
		h.hud.DrawControls(h.height, controlsLegend)
	}
}

// ShouldClose reports whether the window was closed.
func (h *WindowHost) ShouldClose() bool { return rl.WindowShouldClose() }

// Close closes the window.
func (h *WindowHost) Close() error {
	rl.CloseWindow()
	return nil
}
