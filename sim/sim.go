// Package sim runs the game world: level loading, the ordered tick of
// systems, and the round outcome rules.
package sim

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sort"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/cell/components"
	"github.com/pthm-cable/cell/config"
	"github.com/pthm-cable/cell/level"
	"github.com/pthm-cable/cell/signals"
	"github.com/pthm-cable/cell/systems"
	"github.com/pthm-cable/cell/telemetry"
)

// Input is what the host reports for one frame.
type Input = systems.Input

// Outcome is how a tick ended the round, if it did.
type Outcome uint8

const (
	OutcomeNone Outcome = iota
	OutcomeGameOver
	OutcomeVictory
	OutcomeNextLevel
)

// String returns the menu message for the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeGameOver:
		return "Game Over"
	case OutcomeVictory:
		return "Victory"
	case OutcomeNextLevel:
		return "Next Level"
	default:
		return ""
	}
}

// Resources is the process-wide state read by the menus.
type Resources struct {
	Message    string
	Score      int
	Level      int // Counts down; levels[len-1-Level] is played
	LevelCount int
}

// Report is what one tick did.
type Report struct {
	Outcome        Outcome
	Fired          int // Eject signals sent by enemies
	PlayerShots    int // Eject signals sent by the player
	VirusesDropped int
	Particles      int // Particles spawned
	Viruses        int // Viruses spawned
	Explosions     int // Explosions spawned
	Detonations    int // Viruses that ran out of fuse
	Hits           int
	Bounces        int
	Pickups        int
	Dropped        int // Signals lost to the one-per-tick drain
	Blocked        bool
	Expired        systems.Expired
}

// Stats accumulates reports over a round.
type Stats struct {
	Ticks      int
	Elapsed    float64
	Fired      int
	Shots      int
	Particles  int
	Viruses    int
	Explosions int
	Hits       int
	Bounces    int
	Pickups    int
	Dropped    int
}

func (s *Stats) add(dt float64, r Report) {
	s.Ticks++
	s.Elapsed += dt
	s.Fired += r.Fired
	s.Shots += r.PlayerShots
	s.Particles += r.Particles
	s.Viruses += r.Viruses
	s.Explosions += r.Explosions
	s.Hits += r.Hits
	s.Bounces += r.Bounces
	s.Pickups += r.Pickups
	s.Dropped += r.Dropped
}

// LogValue implements slog.LogValuer.
func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("ticks", s.Ticks),
		slog.Float64("elapsed", s.Elapsed),
		slog.Int("fired", s.Fired),
		slog.Int("shots", s.Shots),
		slog.Int("hits", s.Hits),
		slog.Int("bounces", s.Bounces),
		slog.Int("dropped", s.Dropped),
	)
}

// Counts is a census of the world.
type Counts struct {
	Cells      int
	Walls      int
	Pickups    int
	Particles  int
	Viruses    int
	Explosions int
	Total      int
}

// Options configures a Simulation.
type Options struct {
	Perf     *telemetry.PerfCollector // nil disables phase timing
	Registry *systems.SystemRegistry  // nil uses the default registry
}

// step is one scheduled system.
type step struct {
	info systems.SystemInfo
	run  func(in Input, r *Report)
}

// Simulation owns the world and runs the tick.
type Simulation struct {
	cfg      *config.Config
	world    *ecs.World
	layouts  []level.Layout
	perf     *telemetry.PerfCollector
	registry *systems.SystemRegistry
	schedule []step

	spawner *Spawner
	cmd     *systems.Commands
	walls   *systems.WallSet
	player  *systems.PlayerQuery

	eject   signals.Mailbox[signals.Eject]
	drop    signals.Mailbox[signals.DropVirus]
	explode signals.Mailbox[signals.Explode]

	all     ecs.Filter1[components.Position]
	sprites ecs.Filter2[components.Position, components.Sprite]
	bodyMap *ecs.Map[components.Body]
	lifeMap *ecs.Map[components.Lifespan]
	census  census

	res      Resources
	stats    Stats
	finished bool
	loaded   bool
}

type census struct {
	cells      ecs.Filter1[components.Cell]
	walls      ecs.Filter1[components.Wall]
	pickups    ecs.Filter1[components.StatusEffect]
	particles  ecs.Filter1[components.Particle]
	viruses    ecs.Filter1[components.Virus]
	explosions ecs.Filter1[components.Explosion]
}

// New creates a simulation. Every configured level is parsed up front so a
// malformed layout fails here rather than mid-game.
func New(cfg *config.Config, opts Options) (*Simulation, error) {
	layouts := make([]level.Layout, len(cfg.Levels))
	for i, src := range cfg.Levels {
		l, err := level.Parse(src, cfg.Arena.Grid)
		if err != nil {
			return nil, fmt.Errorf("level %d: %w", i, err)
		}
		layouts[i] = l
	}
	if len(layouts) == 0 {
		return nil, fmt.Errorf("%w: no levels configured", level.ErrLayout)
	}

	reg := opts.Registry
	if reg == nil {
		reg = systems.NewSystemRegistry()
	}

	w := ecs.NewWorld()
	s := &Simulation{
		cfg:      cfg,
		world:    w,
		layouts:  layouts,
		perf:     opts.Perf,
		registry: reg,
		spawner:  NewSpawner(w, cfg),
		cmd:      systems.NewCommands(w),
		walls:    systems.NewWallSet(w),
		player:   systems.NewPlayerQuery(w),
		all:      *ecs.NewFilter1[components.Position](w),
		sprites:  *ecs.NewFilter2[components.Position, components.Sprite](w),
		bodyMap:  ecs.NewMap[components.Body](w),
		lifeMap:  ecs.NewMap[components.Lifespan](w),
		census: census{
			cells:      *ecs.NewFilter1[components.Cell](w),
			walls:      *ecs.NewFilter1[components.Wall](w),
			pickups:    *ecs.NewFilter1[components.StatusEffect](w).Without(ecs.C[components.Cell]()),
			particles:  *ecs.NewFilter1[components.Particle](w),
			viruses:    *ecs.NewFilter1[components.Virus](w),
			explosions: *ecs.NewFilter1[components.Explosion](w),
		},
		res: Resources{
			Message:    "Paused",
			Level:      len(layouts) - 1,
			LevelCount: len(layouts),
		},
	}
	if err := s.buildSchedule(); err != nil {
		return nil, err
	}
	return s, nil
}

// buildSchedule binds each registered system to its implementation, in
// registry order.
func (s *Simulation) buildSchedule() error {
	cfg := s.cfg
	playerInput := systems.NewPlayerInputSystem(s.player, cfg.Player.Speed, cfg.Player.BoostedSpeed)
	playerFire := systems.NewPlayerFireSystem(s.player, &s.eject)
	virusInput := systems.NewVirusInputSystem(s.player, &s.drop)
	playerMove := systems.NewPlayerMovementSystem(s.player, s.walls)
	particleMove := systems.NewParticleMovementSystem(s.world, s.walls)
	enemyFire := systems.NewEnemyFireSystem(s.world, s.player, &s.eject)
	explosionFuse := systems.NewExplosionFuseSystem(s.world, s.cmd)
	virusFuse := systems.NewVirusFuseSystem(s.world, s.cmd, &s.explode)
	spawnParticle := systems.NewSpawnParticleSystem(&s.eject, s.spawner, cfg.Particle.Speed, cfg.Derived.CellSize)
	spawnVirus := systems.NewSpawnVirusSystem(&s.drop, s.spawner)
	spawnExplosion := systems.NewSpawnExplosionSystem(&s.explode, s.spawner)
	pickup := systems.NewPickupSystem(s.world, s.cmd)
	contact := systems.NewHostileContactSystem(s.world)
	expiry := systems.NewExpirySystem(s.world, s.cmd)

	runs := map[string]func(in Input, r *Report){
		systems.IDPlayerInput: func(in Input, _ *Report) { playerInput.Update(in.Held) },
		systems.IDPlayerFire: func(in Input, r *Report) {
			if playerFire.Update(in) {
				r.PlayerShots++
			}
		},
		systems.IDVirusInput: func(in Input, r *Report) {
			if virusInput.Update(in.Pressed) {
				r.VirusesDropped++
			}
		},
		systems.IDPlayerMovement:   func(in Input, r *Report) { r.Blocked = playerMove.Update(in.DT) },
		systems.IDParticleMovement: func(in Input, r *Report) { r.Bounces += particleMove.Update(in.DT) },
		systems.IDEnemyFire:        func(in Input, r *Report) { r.Fired += enemyFire.Update(in.DT) },
		systems.IDExplosionFuse:    func(in Input, _ *Report) { explosionFuse.Update(in.DT) },
		systems.IDVirusFuse:        func(in Input, r *Report) { r.Detonations += virusFuse.Update(in.DT) },
		systems.IDSpawnParticle: func(_ Input, r *Report) {
			res := spawnParticle.Update()
			r.Dropped += res.Dropped
			if res.Spawned {
				r.Particles++
			}
		},
		systems.IDSpawnVirus: func(_ Input, r *Report) {
			res := spawnVirus.Update()
			r.Dropped += res.Dropped
			if res.Spawned {
				r.Viruses++
			}
		},
		systems.IDSpawnExplosion: func(_ Input, r *Report) {
			res := spawnExplosion.Update()
			r.Dropped += res.Dropped
			if res.Spawned {
				r.Explosions++
			}
		},
		systems.IDPickup:         func(_ Input, r *Report) { r.Pickups += pickup.Update() },
		systems.IDHostileContact: func(_ Input, r *Report) { r.Hits += contact.Update() },
		systems.IDExpiry:         func(_ Input, r *Report) { r.Expired = expiry.Update() },
	}

	for _, info := range s.registry.All() {
		run, ok := runs[info.ID]
		if !ok {
			return fmt.Errorf("no implementation for registered system %q", info.ID)
		}
		s.schedule = append(s.schedule, step{info: info, run: run})
		delete(runs, info.ID)
	}
	if len(runs) > 0 {
		return fmt.Errorf("systems missing from registry: %v", slices.Sorted(maps.Keys(runs)))
	}
	return nil
}

// World exposes the entity store for hosts that draw it directly.
func (s *Simulation) World() *ecs.World { return s.world }

// Registry returns the system registry the schedule was built from.
func (s *Simulation) Registry() *systems.SystemRegistry { return s.registry }

// Spawner returns the entity factory.
func (s *Simulation) Spawner() *Spawner { return s.spawner }

// Resources returns a copy of the menu-facing resources.
func (s *Simulation) Resources() Resources { return s.res }

// SetMessage replaces the menu message.
func (s *Simulation) SetMessage(msg string) { s.res.Message = msg }

// ResetScore zeroes the score at the start of a new run.
func (s *Simulation) ResetScore() { s.res.Score = 0 }

// Stats returns the statistics of the current round.
func (s *Simulation) Stats() Stats { return s.stats }

// Loaded reports whether a level is in the world.
func (s *Simulation) Loaded() bool { return s.loaded }

// Finished reports whether the round has an outcome.
func (s *Simulation) Finished() bool { return s.finished }

// LoadLevel clears the world and builds the level selected by the counter.
func (s *Simulation) LoadLevel() error {
	s.Clear()
	idx := s.res.LevelCount - 1 - s.res.Level
	if idx < 0 || idx >= len(s.layouts) {
		return fmt.Errorf("%w: counter %d outside %d levels", level.ErrLayout, s.res.Level, len(s.layouts))
	}

	level.Build(s.spawner, s.layouts[idx], level.Geometry{
		Tile:     s.cfg.Derived.TileSize,
		CellSize: s.cfg.Derived.CellSize,
		ArenaW:   s.cfg.Arena.Width,
		ArenaH:   s.cfg.Arena.Height,
	})
	s.walls.Collect()
	s.loaded = true

	c := s.Counts()
	slog.Info("level loaded", "counter", s.res.Level, "index", idx, "walls", c.Walls, "pickups", c.Pickups)
	return nil
}

// Clear removes every entity and pending signal and starts a fresh round.
func (s *Simulation) Clear() {
	var all []ecs.Entity
	query := s.all.Query()
	for query.Next() {
		all = append(all, query.Entity())
	}
	for _, e := range all {
		s.world.RemoveEntity(e)
	}
	s.eject.Clear()
	s.drop.Clear()
	s.explode.Clear()
	s.walls.Collect()
	s.stats = Stats{}
	s.finished = false
	s.loaded = false
}

// Step advances the world by one tick. A finished round does not advance
// until the next LoadLevel.
func (s *Simulation) Step(in Input) Report {
	var r Report
	if s.finished || !s.loaded {
		return r
	}

	s.perf.StartTick()
	for _, st := range s.schedule {
		s.perf.StartPhase(st.info.Category)
		st.run(in, &r)
	}
	s.perf.EndTick()

	r.Outcome = s.resolve(r.Expired)
	s.stats.add(in.DT, r)
	if r.Dropped > 0 {
		slog.Debug("signals dropped", "count", r.Dropped, "tick", s.stats.Ticks)
	}
	if r.Outcome != OutcomeNone {
		s.finished = true
		s.res.Message = r.Outcome.String()
		slog.Info("round finished", "outcome", r.Outcome.String(), "score", s.res.Score,
			"counter", s.res.Level, "stats", s.stats)
	}
	return r
}

// resolve applies the lifespan expiry rules. The player's expiry takes
// precedence: when both cells expire in one tick the round is lost and the
// enemy is not credited.
func (s *Simulation) resolve(exp systems.Expired) Outcome {
	if exp.Player {
		if exp.Enemies > 0 {
			slog.Warn("player and enemy expired in the same tick; enemy not credited",
				"counter", s.res.Level)
		}
		return OutcomeGameOver
	}
	if exp.Enemies == 0 {
		return OutcomeNone
	}

	s.res.Score += s.cfg.Score.EnemyDefeated * exp.Enemies
	if s.res.Level == 0 {
		s.res.Level = s.res.LevelCount - 1
		return OutcomeVictory
	}
	s.res.Level--
	return OutcomeNextLevel
}

// Player returns the player's position, panicking unless exactly one exists.
func (s *Simulation) Player() r2.Vec {
	return s.player.Single().Pos.Vec()
}

// PlayerStatus is the HUD view of the player.
type PlayerStatus struct {
	Pos      r2.Vec
	Lifespan int
	Boosted  bool
}

// PlayerStatus returns the player's state. It reports false instead of
// panicking when the world holds no single player, as between rounds.
func (s *Simulation) PlayerStatus() (PlayerStatus, bool) {
	if s.player.Count() != 1 {
		return PlayerStatus{}, false
	}
	p := s.player.Single()
	st := PlayerStatus{Pos: p.Pos.Vec(), Boosted: p.Boosted}
	if s.lifeMap.Has(p.Entity) {
		st.Lifespan = s.lifeMap.Get(p.Entity).Value
	}
	return st, true
}

// Sprite is a render view of one entity.
type Sprite struct {
	Pos       r2.Vec
	W, H      float64
	Footprint components.Body // Collision size, larger than W,H for explosions
	Color     components.Color
	Layer     components.Layer
}

// Sprites returns every drawable entity, lowest layer first.
func (s *Simulation) Sprites() []Sprite {
	var out []Sprite
	query := s.sprites.Query()
	for query.Next() {
		pos, sp := query.Get()
		v := Sprite{Pos: pos.Vec(), W: sp.W, H: sp.H, Color: sp.Color, Layer: sp.Layer}
		if s.bodyMap.Has(query.Entity()) {
			v.Footprint = *s.bodyMap.Get(query.Entity())
		}
		out = append(out, v)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Layer < out[j].Layer })
	return out
}

func count[T any](f *ecs.Filter1[T]) int {
	n := 0
	q := f.Query()
	for q.Next() {
		n++
	}
	return n
}

// Counts returns a census of the world.
func (s *Simulation) Counts() Counts {
	c := Counts{
		Cells:      count(&s.census.cells),
		Walls:      count(&s.census.walls),
		Pickups:    count(&s.census.pickups),
		Particles:  count(&s.census.particles),
		Viruses:    count(&s.census.viruses),
		Explosions: count(&s.census.explosions),
	}
	c.Total = count(&s.all)
	return c
}

// MailboxDrops returns the signals lost to the one-per-tick drain since start.
func (s *Simulation) MailboxDrops() int {
	return s.eject.Dropped() + s.drop.Dropped() + s.explode.Dropped()
}
