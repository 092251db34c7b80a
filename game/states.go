package game

import (
	"log/slog"

	"github.com/pthm-cable/cell/audio"
	"github.com/pthm-cable/cell/sim"
	"github.com/pthm-cable/cell/state"
	"github.com/pthm-cable/cell/telemetry"
)

func (g *Game) updateSplash() {
	if g.frame.Button == ButtonPlay {
		g.request(state.Game)
	}
}

func (g *Game) updateMenu() {
	switch g.frame.Button {
	case ButtonPlayAgain, ButtonNextLevel, ButtonResume:
		g.request(state.Game)
	case ButtonQuit:
		slog.Info("quit requested", "score", g.sim.Resources().Score)
		g.quit = true
	}
}

// enterGame loads the selected level unless a paused round is waiting.
func (g *Game) enterGame() {
	g.paused = false
	if g.sim.Loaded() {
		return
	}
	if g.runOver {
		g.sim.ResetScore()
		g.runOver = false
	}
	if err := g.sim.LoadLevel(); err != nil {
		slog.Error("failed to load level", "error", err)
		g.err = err
		g.quit = true
		return
	}
	g.roundCounter = g.sim.Resources().Level
}

func (g *Game) updateGame() {
	if g.frame.Escape {
		g.paused = true
		g.sim.SetMessage(pausedMessage)
		g.request(state.Menu)
		return
	}

	r := g.sim.Step(g.frame.Input)
	g.ticks++
	g.playCues(r)
	g.flushPerf()

	if r.Outcome == sim.OutcomeNone {
		return
	}
	if r.Outcome == sim.OutcomeGameOver || r.Outcome == sim.OutcomeVictory {
		g.runOver = true
	}
	g.recordRound(r.Outcome)
	g.request(state.Menu)
}

// exitGame clears the world unless the player paused.
func (g *Game) exitGame() {
	if !g.paused {
		g.sim.Clear()
	}
}

func (g *Game) playCues(r sim.Report) {
	if r.Fired > 0 || r.PlayerShots > 0 {
		g.audio.Play(audio.CueFire)
	}
	if r.Explosions > 0 {
		g.audio.Play(audio.CueExplode)
	}
	if r.Hits > 0 {
		g.audio.Play(audio.CueHit)
	}
	if r.Pickups > 0 {
		g.audio.Play(audio.CuePickup)
	}
	switch r.Outcome {
	case sim.OutcomeVictory, sim.OutcomeNextLevel:
		g.audio.Play(audio.CueVictory)
	case sim.OutcomeGameOver:
		g.audio.Play(audio.CueGameOver)
	}
}

// flushPerf writes a perf row every perf window.
func (g *Game) flushPerf() {
	window := g.cfg.Telemetry.PerfWindow
	if g.perf == nil || window <= 0 || g.ticks%window != 0 {
		return
	}
	stats := g.perf.Stats()
	stats.LogStats(slog.Default(), g.ticks)
	if err := g.out.WritePerf(stats, int64(g.ticks)); err != nil {
		slog.Error("failed to write perf", "error", err)
	}
}

func (g *Game) recordRound(o sim.Outcome) {
	res := g.sim.Resources()
	st := g.sim.Stats()
	rec := telemetry.RoundRecord{
		Round:      len(g.rounds) + 1,
		Level:      res.LevelCount - 1 - g.roundCounter,
		Counter:    g.roundCounter,
		Outcome:    o.String(),
		Score:      res.Score,
		Ticks:      st.Ticks,
		SimTimeSec: st.Elapsed,
		Fired:      st.Fired,
		Shots:      st.Shots,
		Particles:  st.Particles,
		Viruses:    st.Viruses,
		Explosions: st.Explosions,
		Hits:       st.Hits,
		Bounces:    st.Bounces,
		Pickups:    st.Pickups,
		Dropped:    st.Dropped,
	}
	g.rounds = append(g.rounds, rec)
	slog.Info("round recorded", "round", rec)
	if err := g.out.WriteRound(rec); err != nil {
		slog.Error("failed to write round", "error", err)
	}
}
