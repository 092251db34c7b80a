package game

import (
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/cell/components"
	"github.com/pthm-cable/cell/config"
	"github.com/pthm-cable/cell/state"
	"github.com/pthm-cable/cell/systems"
)

var moveChoices = []systems.KeySet{
	0,
	systems.Keys(systems.KeyUp),
	systems.Keys(systems.KeyDown),
	systems.Keys(systems.KeyLeft),
	systems.Keys(systems.KeyRight),
	systems.Keys(systems.KeyUp, systems.KeyLeft),
	systems.Keys(systems.KeyUp, systems.KeyRight),
	systems.Keys(systems.KeyDown, systems.KeyLeft),
	systems.Keys(systems.KeyDown, systems.KeyRight),
}

// HeadlessHost plays the game from a seeded script: it presses the first
// non-quit menu button, wanders, fires at the enemy and drops viruses on
// fixed frame periods. The same seed replays the same session.
type HeadlessHost struct {
	cfg       config.HeadlessConfig
	rng       *rand.Rand
	frame     int
	maxFrames int
	held      systems.KeySet
	scene     *Scene
	aimJitter float64
}

// NewHeadlessHost creates a scripted host. maxFrames 0 runs until the game
// itself stops.
func NewHeadlessHost(cfg *config.Config, seed int64, maxFrames int) *HeadlessHost {
	return &HeadlessHost{
		cfg:       cfg.Headless,
		rng:       rand.New(rand.NewSource(seed)),
		maxFrames: maxFrames,
		aimJitter: cfg.Derived.TileSize,
	}
}

// Frames returns the number of frames polled so far.
func (h *HeadlessHost) Frames() int { return h.frame }

func every(frame, period int) bool {
	return period > 0 && frame%period == 0
}

// Poll scripts the next frame from the last drawn scene.
func (h *HeadlessHost) Poll() Frame {
	h.frame++
	f := Frame{Input: systems.Input{DT: h.cfg.DT}}
	if h.scene == nil {
		return f
	}

	switch h.scene.State {
	case state.Splash, state.Menu:
		for _, b := range h.scene.Menu.Buttons {
			if b != ButtonQuit {
				f.Button = b
				break
			}
		}
	case state.Game:
		if every(h.frame, h.cfg.MoveEvery) {
			h.held = moveChoices[h.rng.Intn(len(moveChoices))]
		}
		f.Input.Held = h.held
		if every(h.frame, h.cfg.FireEvery) {
			if target, ok := h.enemy(); ok {
				f.Input.Pressed = f.Input.Pressed.With(systems.KeyFire)
				f.Input.Cursor = r2.Add(target, r2.Vec{
					X: (h.rng.Float64()*2 - 1) * h.aimJitter,
					Y: (h.rng.Float64()*2 - 1) * h.aimJitter,
				})
				f.Input.CursorOK = true
			}
		}
		if every(h.frame, h.cfg.VirusEvery) {
			f.Input.Pressed = f.Input.Pressed.With(systems.KeyDropVirus)
		}
	}
	return f
}

// enemy finds the enemy sprite in the last scene.
func (h *HeadlessHost) enemy() (r2.Vec, bool) {
	for _, sp := range h.scene.Sprites {
		if sp.Layer == components.LayerCell && sp.Color == components.ColorEnemy {
			return sp.Pos, true
		}
	}
	return r2.Vec{}, false
}

// Draw remembers the scene for the next Poll.
func (h *HeadlessHost) Draw(scene *Scene) { h.scene = scene }

// ShouldClose reports whether the frame budget is spent.
func (h *HeadlessHost) ShouldClose() bool {
	return h.maxFrames > 0 && h.frame >= h.maxFrames
}

// Close does nothing.
func (h *HeadlessHost) Close() error { return nil }
