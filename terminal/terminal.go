// Package terminal runs the game in a text terminal through tcell.
package terminal

import (
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/cell/components"
	"github.com/pthm-cable/cell/game"
	"github.com/pthm-cable/cell/sim"
	"github.com/pthm-cable/cell/state"
	"github.com/pthm-cable/cell/systems"
)

// Terminals report presses but not releases, so a movement key counts as
// held for this many frames after its last press or autorepeat.
const holdFrames = 8

// maxDT caps the frame time after a stall.
const maxDT = 0.1

// arenaTop is the first screen row of the arena; row 0 is the HUD.
const arenaTop = 1

var moveRunes = map[rune]systems.Key{
	'w': systems.KeyUp,
	's': systems.KeyDown,
	'a': systems.KeyLeft,
	'd': systems.KeyRight,
}

var moveKeys = map[tcell.Key]systems.Key{
	tcell.KeyUp:    systems.KeyUp,
	tcell.KeyDown:  systems.KeyDown,
	tcell.KeyLeft:  systems.KeyLeft,
	tcell.KeyRight: systems.KeyRight,
}

var (
	styleText  = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleDim   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleTitle = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
)

// Host draws scenes as character cells. Each tile is two columns wide so
// the arena looks roughly square.
type Host struct {
	screen tcell.Screen
	events chan tcell.Event
	geo    Geometry

	held    [4]int // Frames left per movement key
	frame   game.Frame
	buttons []game.Button
	enemy   r2.Vec
	mouse   r2.Vec
	mouseOK bool
	pressed bool // Left mouse button down at the last mouse event
	closed  bool
	last    time.Time

	tick *time.Ticker // nil when frames are not paced
	done chan struct{}
	once sync.Once
}

// New opens the terminal and paces frames at fps.
func New(fps int) (*Host, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("initializing screen: %w", err)
	}
	return NewWithScreen(screen, fps), nil
}

// NewWithScreen wraps an initialized screen. Poll returns at most fps
// times per second; fps <= 0 leaves frames unpaced.
func NewWithScreen(screen tcell.Screen, fps int) *Host {
	screen.EnableMouse()
	screen.HideCursor()
	h := &Host{
		screen: screen,
		events: make(chan tcell.Event, 100),
		done:   make(chan struct{}),
	}
	if fps > 0 {
		h.tick = time.NewTicker(time.Second / time.Duration(fps))
	}
	go func() {
		// PollEvent returns nil once the screen is finalized
		for ev := screen.PollEvent(); ev != nil; ev = screen.PollEvent() {
			select {
			case h.events <- ev:
			case <-h.done:
				return
			}
		}
	}()
	return h
}

// Poll waits for the next frame tick and drains pending terminal events
// into one frame.
func (h *Host) Poll() game.Frame {
	if h.tick != nil {
		select {
		case <-h.tick.C:
		case <-h.done:
		}
	}
	now := time.Now()
	dt := maxDT
	if !h.last.IsZero() {
		dt = min(now.Sub(h.last).Seconds(), maxDT)
	}
	h.last = now

	h.frame = game.Frame{Input: systems.Input{DT: dt}}
	for k := range h.held {
		if h.held[k] > 0 {
			h.held[k]--
		}
	}
drain:
	for {
		select {
		case ev := <-h.events:
			h.handle(ev)
		default:
			break drain
		}
	}

	for k, n := range h.held {
		if n > 0 {
			h.frame.Input.Held = h.frame.Input.Held.With(systems.Key(k))
		}
	}
	if h.frame.Input.Pressed.Has(systems.KeyFire) {
		h.aim()
	}
	return h.frame
}

func (h *Host) handle(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		h.handleKey(ev)
	case *tcell.EventMouse:
		col, row := ev.Position()
		h.mouse, h.mouseOK = h.geo.ToWorld(col, row-arenaTop)
		down := ev.Buttons()&tcell.Button1 != 0
		if down && !h.pressed {
			h.frame.Input.Pressed = h.frame.Input.Pressed.With(systems.KeyFire)
		}
		h.pressed = down
	case *tcell.EventResize:
		h.screen.Sync()
	}
}

func (h *Host) handleKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyCtrlC:
		h.closed = true
		return
	case tcell.KeyEscape:
		h.frame.Escape = true
		return
	case tcell.KeyEnter:
		h.choose(0)
		return
	case tcell.KeyRune:
	default:
		if k, ok := moveKeys[ev.Key()]; ok {
			h.held[k] = holdFrames
		}
		return
	}

	r := ev.Rune()
	switch {
	case r == ' ':
		h.frame.Input.Pressed = h.frame.Input.Pressed.With(systems.KeyFire)
	case r == 'q':
		h.frame.Input.Pressed = h.frame.Input.Pressed.With(systems.KeyDropVirus)
	case r >= '1' && r <= '9':
		h.choose(int(r - '1'))
	default:
		if k, ok := moveRunes[r]; ok {
			h.held[k] = holdFrames
		}
	}
}

// choose picks the i-th button of the menu on screen.
func (h *Host) choose(i int) {
	if i < len(h.buttons) {
		h.frame.Button = h.buttons[i]
	}
}

// aim sets the fire target: the mouse when it is over the arena, otherwise
// the enemy.
func (h *Host) aim() {
	h.frame.Input.CursorOK = true
	if h.mouseOK {
		h.frame.Input.Cursor = h.mouse
		return
	}
	h.frame.Input.Cursor = h.enemy
}

// Draw renders the scene.
func (h *Host) Draw(scene *game.Scene) {
	h.geo = NewGeometry(scene.ArenaW, scene.ArenaH, scene.Grid)
	h.screen.Clear()

	switch scene.State {
	case state.Game:
		h.buttons = nil
		h.drawArena(scene.Sprites)
		h.drawHUD(scene.HUD)
	default:
		h.buttons = scene.Menu.Buttons
		h.drawMenu(scene.Menu)
	}
	h.screen.Show()
}

func (h *Host) drawHUD(v game.HUDView) {
	line := fmt.Sprintf("Score %d  Level %d/%d  Life %d/%d  %.1fs",
		v.Score, v.Level, v.LevelCount, v.Lifespan, v.MaxLifespan, v.Elapsed)
	if v.Boosted {
		line += "  SPEED"
	}
	h.text(0, 0, line, styleText)
	_, height := h.screen.Size()
	h.text(0, height-1, "wasd move  space eject  q virus  esc pause  ctrl-c quit", styleDim)
}

func (h *Host) drawArena(sprites []sim.Sprite) {
	for c := 0; c < h.geo.Cols(); c++ {
		for r := 0; r < h.geo.Rows(); r++ {
			h.screen.SetContent(c, r+arenaTop, '·', nil, styleDim)
		}
	}
	for i := range sprites {
		sp := &sprites[i]
		if sp.Layer == components.LayerCell && sp.Color == components.ColorEnemy {
			h.enemy = sp.Pos
		}
		if sp.Layer == components.LayerExplosion {
			h.fill(sp.Pos, sp.Footprint.W, sp.Footprint.H, '░', tcell.StyleDefault.Foreground(toTcell(sp.Color)))
		}
		// Anchor on the left column of the two a tile spans
		col, row, ok := h.geo.ToCell(r2.Vec{X: sp.Pos.X - h.geo.CellWidth()/2, Y: sp.Pos.Y})
		if !ok {
			continue
		}
		style := tcell.StyleDefault.Foreground(toTcell(sp.Color))
		g := Glyph(sp)
		h.screen.SetContent(col, row+arenaTop, g, nil, style)
		if sp.Layer == components.LayerWall || sp.Layer == components.LayerCell {
			h.screen.SetContent(col+1, row+arenaTop, g, nil, style)
		}
	}
}

// fill paints every cell under a world box.
func (h *Host) fill(center r2.Vec, w, hgt float64, ch rune, style tcell.Style) {
	minC, minR, _ := h.geo.ToCell(r2.Vec{X: center.X - w/2, Y: center.Y + hgt/2})
	maxC, maxR, _ := h.geo.ToCell(r2.Vec{X: center.X + w/2, Y: center.Y - hgt/2})
	for c := max(minC, 0); c <= min(maxC, h.geo.Cols()-1); c++ {
		for r := max(minR, 0); r <= min(maxR, h.geo.Rows()-1); r++ {
			h.screen.SetContent(c, r+arenaTop, ch, nil, style)
		}
	}
}

func (h *Host) drawMenu(m game.MenuView) {
	width, height := h.screen.Size()
	y := height / 3
	h.centered(width, y, m.Title, styleTitle)
	if m.ShowScore {
		y += 2
		h.centered(width, y, fmt.Sprintf("Score %d", m.Score), styleText)
	}
	y += 2
	for i, b := range m.Buttons {
		h.centered(width, y+i, fmt.Sprintf("[%d] %s", i+1, b), styleText)
	}
}

func (h *Host) centered(width, y int, s string, style tcell.Style) {
	h.text((width-len([]rune(s)))/2, y, s, style)
}

func (h *Host) text(x, y int, s string, style tcell.Style) {
	for _, r := range s {
		h.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

// ShouldClose reports whether the player pressed Ctrl-C.
func (h *Host) ShouldClose() bool { return h.closed }

// Close restores the terminal.
func (h *Host) Close() error {
	h.once.Do(func() {
		close(h.done)
		if h.tick != nil {
			h.tick.Stop()
		}
		h.screen.Fini()
	})
	return nil
}

// Glyph returns the character drawn for a sprite.
func Glyph(sp *sim.Sprite) rune {
	switch sp.Layer {
	case components.LayerWall:
		return '█'
	case components.LayerPickup:
		return '*'
	case components.LayerVirus:
		return 'v'
	case components.LayerParticle:
		return 'o'
	case components.LayerExplosion:
		return '#'
	}
	if sp.Color == components.ColorEnemy {
		return 'E'
	}
	return '@'
}

func toTcell(c components.Color) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
