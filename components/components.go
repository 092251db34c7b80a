// Package components defines ECS components for the game.
package components

import (
	"log/slog"

	"gonum.org/v1/gonum/spatial/r2"
)

// Position is an entity's centre in world units. The origin is the arena centre, y up.
type Position struct {
	X, Y float64
}

// Vec returns the position as a gonum vector.
func (p Position) Vec() r2.Vec { return r2.Vec{X: p.X, Y: p.Y} }

// Velocity is in world units per second.
type Velocity struct {
	X, Y float64
}

// Vec returns the velocity as a gonum vector.
func (v Velocity) Vec() r2.Vec { return r2.Vec{X: v.X, Y: v.Y} }

// Body is the axis-aligned collision footprint centred on Position.
type Body struct {
	W, H float64
}

// Layer orders sprites when drawing; higher layers draw on top.
type Layer uint8

const (
	LayerWall Layer = iota
	LayerPickup
	LayerVirus
	LayerCell
	LayerParticle
	LayerExplosion
)

// Sprite is the visual representation. It may differ from Body (explosions).
type Sprite struct {
	W, H  float64
	Color Color
	Layer Layer
}

// Lifespan is an integer health counter. The entity despawns once it reaches zero.
type Lifespan struct {
	Value int
}

// Cell marks a living entity, player or enemy.
type Cell struct{}

// Player marks the controlled cell.
type Player struct{}

// Hostile marks entities that damage cells on contact.
type Hostile struct{}

// Particle marks projectiles that bounce off walls.
type Particle struct{}

// Wall marks static obstacles.
type Wall struct{}

// Enemy marks an enemy cell and carries its repeating fire timer.
type Enemy struct {
	Fire Timer
}

// Virus is a dropped charge that detonates when its fuse runs out.
type Virus struct {
	Fuse Timer
}

// Explosion damages cells until its fuse runs out.
type Explosion struct {
	Fuse Timer
}

// EffectKind enumerates status effects.
type EffectKind uint8

const (
	EffectSpeed EffectKind = iota
)

func (k EffectKind) String() string {
	switch k {
	case EffectSpeed:
		return "speed"
	default:
		return "unknown"
	}
}

// StatusEffect is either a pickup lying in the arena or, once collected, the
// effect carried by a cell. A pickup has no Cell component.
type StatusEffect struct {
	Kind EffectKind
}

// LogValue implements slog.LogValuer.
func (s StatusEffect) LogValue() slog.Value {
	return slog.StringValue(s.Kind.String())
}
