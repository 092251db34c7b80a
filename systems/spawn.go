package systems

import (
	"log/slog"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/cell/signals"
)

// Spawner creates the entities that signals ask for.
type Spawner interface {
	SpawnParticle(at, velocity r2.Vec) ecs.Entity
	SpawnVirus(at r2.Vec) ecs.Entity
	SpawnExplosion(at r2.Vec) ecs.Entity
}

// take drains a mailbox the lossy way and logs what was discarded.
func take[T any](m *signals.Mailbox[T], name string) (T, int, bool) {
	dropped := max(0, m.Pending()-1)
	v, ok := m.Take()
	if dropped > 0 {
		slog.Warn("signals dropped", "mailbox", name, "dropped", dropped, "total_dropped", m.Dropped())
	}
	return v, dropped, ok
}

// SpawnResult is what a spawn system did this tick.
type SpawnResult struct {
	Spawned bool
	Entity  ecs.Entity
	Dropped int // Signals discarded by the one-per-tick drain
}

// SpawnParticleSystem consumes one eject signal per tick. The particle
// starts one cell width from the origin along the aim direction and moves
// at the configured speed.
type SpawnParticleSystem struct {
	eject    *signals.Mailbox[signals.Eject]
	spawner  Spawner
	speed    float64
	cellSize float64
}

// NewSpawnParticleSystem creates the particle spawn system.
func NewSpawnParticleSystem(eject *signals.Mailbox[signals.Eject], spawner Spawner, speed, cellSize float64) *SpawnParticleSystem {
	return &SpawnParticleSystem{eject: eject, spawner: spawner, speed: speed, cellSize: cellSize}
}

// Update spawns at most one particle.
func (s *SpawnParticleSystem) Update() SpawnResult {
	ev, dropped, ok := take(s.eject, "eject")
	if !ok {
		return SpawnResult{}
	}

	dir := r2.Sub(ev.Target, ev.Origin)
	if r2.Norm(dir) == 0 {
		slog.Debug("eject without direction ignored", "x", ev.Origin.X, "y", ev.Origin.Y)
		return SpawnResult{Dropped: dropped}
	}
	dir = r2.Unit(dir)
	at := r2.Add(ev.Origin, r2.Scale(s.cellSize, dir))
	e := s.spawner.SpawnParticle(at, r2.Scale(s.speed, dir))
	slog.Debug("particle spawned", "x", at.X, "y", at.Y, "player", ev.Player)
	return SpawnResult{Spawned: true, Entity: e, Dropped: dropped}
}

// SpawnVirusSystem consumes one drop signal per tick.
type SpawnVirusSystem struct {
	drop    *signals.Mailbox[signals.DropVirus]
	spawner Spawner
}

// NewSpawnVirusSystem creates the virus spawn system.
func NewSpawnVirusSystem(drop *signals.Mailbox[signals.DropVirus], spawner Spawner) *SpawnVirusSystem {
	return &SpawnVirusSystem{drop: drop, spawner: spawner}
}

// Update spawns at most one virus.
func (s *SpawnVirusSystem) Update() SpawnResult {
	ev, dropped, ok := take(s.drop, "drop_virus")
	if !ok {
		return SpawnResult{}
	}
	e := s.spawner.SpawnVirus(ev.At)
	slog.Debug("virus dropped", "x", ev.At.X, "y", ev.At.Y)
	return SpawnResult{Spawned: true, Entity: e, Dropped: dropped}
}

// SpawnExplosionSystem consumes one explode signal per tick.
type SpawnExplosionSystem struct {
	explode *signals.Mailbox[signals.Explode]
	spawner Spawner
}

// NewSpawnExplosionSystem creates the explosion spawn system.
func NewSpawnExplosionSystem(explode *signals.Mailbox[signals.Explode], spawner Spawner) *SpawnExplosionSystem {
	return &SpawnExplosionSystem{explode: explode, spawner: spawner}
}

// Update spawns at most one explosion.
func (s *SpawnExplosionSystem) Update() SpawnResult {
	ev, dropped, ok := take(s.explode, "explode")
	if !ok {
		return SpawnResult{}
	}
	e := s.spawner.SpawnExplosion(ev.At)
	slog.Debug("explosion spawned", "x", ev.At.X, "y", ev.At.Y)
	return SpawnResult{Spawned: true, Entity: e, Dropped: dropped}
}
