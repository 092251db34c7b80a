package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/cell/systems"
	"github.com/pthm-cable/cell/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Score       int
	Level       int
	LevelCount  int
	Lifespan    int
	MaxLifespan int
	Boosted     bool
	Elapsed     float64
	FPS         int32
}

// HUD renders the status band above the arena.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer()}
}

// Draw renders the HUD in a band of the given size at the top of the screen.
func (h *HUD) Draw(data HUDData, width, height int32) {
	r := h.renderer
	r.DrawPanel(0, 0, width, height)

	x := r.Theme.Padding
	y := r.Theme.Padding
	rl.DrawText(fmt.Sprintf("Score %d", data.Score), x, y, 20, r.Theme.TitleColor)
	rl.DrawText(fmt.Sprintf("Level %d/%d", data.Level, data.LevelCount), x+140, y, 20, r.Theme.TitleColor)

	y += 26
	r.DrawLifespanBar(x, y, "Lifespan", data.Lifespan, data.MaxLifespan, 260)

	status := fmt.Sprintf("%.1fs  %d fps", data.Elapsed, data.FPS)
	if data.Boosted {
		status = "SPEED  " + status
	}
	sw := rl.MeasureText(status, 16)
	rl.DrawText(status, width-sw-r.Theme.Padding, r.Theme.Padding+4, 16, r.Theme.SectionHeader)
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-20, 12, rl.Gray)
}

// PerfPanel renders per-phase tick timings with the systems in each phase.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{renderer: NewRenderer(), x: x, y: y}
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats, reg *systems.SystemRegistry) {
	r := p.renderer
	lines := int32(len(telemetry.Phases))
	if reg != nil {
		lines += int32(len(reg.All()))
	}
	r.DrawPanel(p.x, p.y, 300, 44+lines*14+r.Theme.Padding)

	x := p.x + r.Theme.Padding
	y := p.y + r.Theme.Padding
	rl.DrawText(fmt.Sprintf("Tick %s  (%.0f/s)", stats.AvgTickDuration.Round(time.Microsecond), stats.TicksPerSecond),
		x, y, 14, rl.Yellow)
	y += 20

	for _, phase := range telemetry.Phases {
		pct := stats.PhasePct[phase]
		color := rl.LightGray
		if pct > 40 {
			color = rl.Red
		} else if pct > 20 {
			color = rl.Orange
		}
		rl.DrawText(fmt.Sprintf("%-10s %8s %5.1f%%", phase, stats.PhaseAvg[phase].Round(time.Microsecond), pct),
			x, y, 12, color)
		y += 14

		if reg == nil {
			continue
		}
		for _, info := range reg.ByCategory(phase) {
			rl.DrawText("  "+info.Name, x, y, 12, rl.Gray)
			y += 14
		}
	}
}
