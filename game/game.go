// Package game is the application layer: splash, menu and game states
// around the simulation, driven by a Host.
package game

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pthm-cable/cell/audio"
	"github.com/pthm-cable/cell/config"
	"github.com/pthm-cable/cell/sim"
	"github.com/pthm-cable/cell/state"
	"github.com/pthm-cable/cell/telemetry"
)

const pausedMessage = "Paused"

// Options configures a Game.
type Options struct {
	Audio     *audio.Player            // nil plays nothing
	Output    *telemetry.OutputManager // nil writes nothing
	Perf      *telemetry.PerfCollector // nil disables phase timing
	MaxTicks  int                      // Stop after N game ticks (0 = unlimited)
	MaxRounds int                      // Stop after N finished rounds (0 = unlimited)
}

// Game holds the application state.
type Game struct {
	cfg     *config.Config
	sim     *sim.Simulation
	machine *state.Machine[*Game]
	audio   *audio.Player
	out     *telemetry.OutputManager
	perf    *telemetry.PerfCollector
	opts    Options

	frame   Frame
	paused  bool // Leaving Game for the pause menu keeps the world
	runOver bool // Next new round starts a fresh run
	quit    bool
	err     error

	ticks        int
	roundCounter int
	rounds       []telemetry.RoundRecord
}

// New creates a game showing the splash screen.
func New(cfg *config.Config, opts Options) (*Game, error) {
	s, err := sim.New(cfg, sim.Options{Perf: opts.Perf})
	if err != nil {
		return nil, fmt.Errorf("creating simulation: %w", err)
	}

	g := &Game{
		cfg:     cfg,
		sim:     s,
		machine: state.NewMachine[*Game](),
		audio:   opts.Audio,
		out:     opts.Output,
		perf:    opts.Perf,
		opts:    opts,
	}
	g.machine.Register(state.Splash, state.Hooks[*Game]{Update: (*Game).updateSplash})
	g.machine.Register(state.Menu, state.Hooks[*Game]{Update: (*Game).updateMenu})
	g.machine.Register(state.Game, state.Hooks[*Game]{
		Enter:  (*Game).enterGame,
		Update: (*Game).updateGame,
		Exit:   (*Game).exitGame,
	})

	if err := g.machine.Set(state.Splash); err != nil {
		return nil, err
	}
	g.machine.Apply(g)
	return g, nil
}

// Sim returns the simulation.
func (g *Game) Sim() *sim.Simulation { return g.sim }

// State returns the current application state.
func (g *Game) State() state.ID { return g.machine.Current() }

// Ticks returns the number of simulation ticks run so far.
func (g *Game) Ticks() int { return g.ticks }

// Rounds returns every finished round.
func (g *Game) Rounds() []telemetry.RoundRecord { return g.rounds }

// Err returns the error that stopped the game, if any.
func (g *Game) Err() error { return g.err }

// Done reports whether the game should stop.
func (g *Game) Done() bool {
	if g.quit {
		return true
	}
	if g.opts.MaxTicks > 0 && g.ticks >= g.opts.MaxTicks {
		return true
	}
	return g.opts.MaxRounds > 0 && len(g.rounds) >= g.opts.MaxRounds
}

// Update runs one frame: the current state's update, then any transition it
// requested.
func (g *Game) Update(f Frame) {
	g.frame = f
	g.machine.Update(g, time.Duration(f.Input.DT*float64(time.Second)))
	if tr, ok := g.machine.Apply(g); ok {
		slog.Info("state transition", "from", tr.From.String(), "to", tr.To.String())
	}
}

// request queues a state change. A rejected request is logged, not fatal.
func (g *Game) request(next state.ID) {
	if err := g.machine.Set(next); err != nil {
		slog.Warn("state transition rejected", "to", next.String(), "error", err)
	}
}

// Scene builds the view of the current frame.
func (g *Game) Scene() *Scene {
	res := g.sim.Resources()
	sc := &Scene{
		State:    g.machine.Current(),
		Perf:     g.perf.Stats(),
		Registry: g.sim.Registry(),
		ArenaW:   g.cfg.Arena.Width,
		ArenaH:   g.cfg.Arena.Height,
		Grid:     g.cfg.Arena.Grid,
	}

	switch sc.State {
	case state.Splash:
		sc.Menu = MenuView{Title: SplashTitle, Buttons: []Button{ButtonPlay}}
	case state.Menu:
		sc.Menu = MenuView{
			Title:     res.Message,
			Score:     res.Score,
			ShowScore: true,
			Buttons:   menuButtons(res.Message),
		}
	case state.Game:
		sc.Sprites = g.sim.Sprites()
		sc.HUD = HUDView{
			Score:       res.Score,
			Level:       res.LevelCount - res.Level,
			LevelCount:  res.LevelCount,
			MaxLifespan: g.cfg.Player.Lifespan,
			Elapsed:     g.sim.Stats().Elapsed,
		}
		if p, ok := g.sim.PlayerStatus(); ok {
			sc.HUD.Lifespan = p.Lifespan
			sc.HUD.Boosted = p.Boosted
		}
	}
	return sc
}

// Summary aggregates the finished rounds.
func (g *Game) Summary() telemetry.Summary {
	return telemetry.Summarize(g.rounds)
}

// Run drives a game on host until the player quits, the host closes, a
// limit in opts is reached or ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config, host Host, opts Options) (telemetry.Summary, error) {
	g, err := New(cfg, opts)
	if err != nil {
		return telemetry.Summary{}, err
	}
	if err := g.Loop(ctx, host); err != nil {
		return g.Summary(), err
	}
	return g.Summary(), nil
}

// Loop runs frames until the game is done. The host is closed on return.
func (g *Game) Loop(ctx context.Context, host Host) (err error) {
	defer func() {
		if cerr := host.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing host: %w", cerr)
		}
	}()

	host.Draw(g.Scene())
	for !g.Done() && !host.ShouldClose() {
		select {
		case <-ctx.Done():
			slog.Info("game cancelled", "ticks", g.ticks)
			return nil
		default:
		}

		g.Update(host.Poll())
		host.Draw(g.Scene())
	}

	if len(g.rounds) > 0 {
		slog.Info("session finished", "ticks", g.ticks, "summary", g.Summary())
	}
	return g.err
}
