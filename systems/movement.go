package systems

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/cell/components"
)

// PlayerMovementSystem integrates player velocity. A step whose rectangle
// overlaps any wall is discarded whole; there is no sliding.
type PlayerMovementSystem struct {
	player *PlayerQuery
	walls  *WallSet
}

// NewPlayerMovementSystem creates the player movement system.
func NewPlayerMovementSystem(player *PlayerQuery, walls *WallSet) *PlayerMovementSystem {
	return &PlayerMovementSystem{player: player, walls: walls}
}

// Update moves the player and reports whether the step was blocked.
func (s *PlayerMovementSystem) Update(dt float64) (blocked bool) {
	p := s.player.Single()
	next := r2.Add(p.Pos.Vec(), r2.Scale(dt, p.Vel.Vec()))
	candidate := RectAt(components.Position{X: next.X, Y: next.Y}, *p.Body)
	if s.walls.First(candidate) >= 0 {
		return true
	}
	p.Pos.X, p.Pos.Y = next.X, next.Y
	return false
}

// ParticleMovementSystem moves particles and bounces them off walls.
// Only the first overlapping wall reacts. The axis flipped is X when the
// particle's previous centre lies outside the wall's horizontal extent,
// otherwise Y. Each bounce costs one lifespan and the reflected step is
// applied in the same tick.
type ParticleMovementSystem struct {
	filter ecs.Filter4[components.Position, components.Velocity, components.Body, components.Lifespan]
	walls  *WallSet
}

// NewParticleMovementSystem creates the particle movement system.
func NewParticleMovementSystem(w *ecs.World, walls *WallSet) *ParticleMovementSystem {
	return &ParticleMovementSystem{
		filter: *ecs.NewFilter4[components.Position, components.Velocity, components.Body, components.Lifespan](w).
			With(ecs.C[components.Particle]()),
		walls: walls,
	}
}

// Update moves every particle and returns the number of bounces.
func (s *ParticleMovementSystem) Update(dt float64) int {
	walls := s.walls.Rects()
	bounces := 0

	query := s.filter.Query()
	for query.Next() {
		pos, vel, body, life := query.Get()

		next := r2.Add(pos.Vec(), r2.Scale(dt, vel.Vec()))
		candidate := RectAt(components.Position{X: next.X, Y: next.Y}, *body)
		if i := s.walls.First(candidate); i >= 0 {
			wall := walls[i]
			if pos.X < wall.X-wall.W/2 || pos.X > wall.X+wall.W/2 {
				vel.X = -vel.X
			} else {
				vel.Y = -vel.Y
			}
			life.Value--
			bounces++
		}

		pos.X += vel.X * dt
		pos.Y += vel.Y * dt
	}
	return bounces
}
