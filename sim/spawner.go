package sim

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/cell/components"
	"github.com/pthm-cable/cell/config"
)

// Spawner creates every kind of game entity. It serves both the level
// builder and the signal-driven spawn systems.
type Spawner struct {
	cfg *config.Config

	wallMap      *ecs.Map4[components.Position, components.Body, components.Sprite, components.Wall]
	pickupMap    *ecs.Map4[components.Position, components.Body, components.Sprite, components.StatusEffect]
	playerMap    *ecs.Map7[components.Position, components.Velocity, components.Body, components.Sprite, components.Lifespan, components.Cell, components.Player]
	enemyMap     *ecs.Map6[components.Position, components.Body, components.Sprite, components.Lifespan, components.Cell, components.Enemy]
	particleMap  *ecs.Map7[components.Position, components.Velocity, components.Body, components.Sprite, components.Lifespan, components.Hostile, components.Particle]
	virusMap     *ecs.Map4[components.Position, components.Body, components.Sprite, components.Virus]
	explosionMap *ecs.Map5[components.Position, components.Body, components.Sprite, components.Hostile, components.Explosion]
}

// NewSpawner creates a spawner for w.
func NewSpawner(w *ecs.World, cfg *config.Config) *Spawner {
	return &Spawner{
		cfg:          cfg,
		wallMap:      ecs.NewMap4[components.Position, components.Body, components.Sprite, components.Wall](w),
		pickupMap:    ecs.NewMap4[components.Position, components.Body, components.Sprite, components.StatusEffect](w),
		playerMap:    ecs.NewMap7[components.Position, components.Velocity, components.Body, components.Sprite, components.Lifespan, components.Cell, components.Player](w),
		enemyMap:     ecs.NewMap6[components.Position, components.Body, components.Sprite, components.Lifespan, components.Cell, components.Enemy](w),
		particleMap:  ecs.NewMap7[components.Position, components.Velocity, components.Body, components.Sprite, components.Lifespan, components.Hostile, components.Particle](w),
		virusMap:     ecs.NewMap4[components.Position, components.Body, components.Sprite, components.Virus](w),
		explosionMap: ecs.NewMap5[components.Position, components.Body, components.Sprite, components.Hostile, components.Explosion](w),
	}
}

func pos(at r2.Vec) *components.Position {
	return &components.Position{X: at.X, Y: at.Y}
}

func square(size float64) *components.Body {
	return &components.Body{W: size, H: size}
}

func sprite(size float64, c components.Color, l components.Layer) *components.Sprite {
	return &components.Sprite{W: size, H: size, Color: c, Layer: l}
}

// SpawnWall creates a wall tile.
func (s *Spawner) SpawnWall(at r2.Vec, size float64) {
	s.wallMap.NewEntity(pos(at), square(size),
		sprite(size, components.ColorWall, components.LayerWall), &components.Wall{})
}

// SpawnPickup creates a status effect lying in the arena.
func (s *Spawner) SpawnPickup(at r2.Vec, size float64, kind components.EffectKind) {
	s.pickupMap.NewEntity(pos(at), square(size),
		sprite(size, components.ColorPickup, components.LayerPickup), &components.StatusEffect{Kind: kind})
}

// SpawnPlayer creates the player cell.
func (s *Spawner) SpawnPlayer(at r2.Vec, size float64) {
	s.playerMap.NewEntity(pos(at), &components.Velocity{}, square(size),
		sprite(size, components.ColorPlayer, components.LayerCell),
		&components.Lifespan{Value: s.cfg.Player.Lifespan}, &components.Cell{}, &components.Player{})
}

// SpawnEnemy creates an enemy cell with a fresh fire timer.
func (s *Spawner) SpawnEnemy(at r2.Vec, size float64) {
	s.enemyMap.NewEntity(pos(at), square(size),
		sprite(size, components.ColorEnemy, components.LayerCell),
		&components.Lifespan{Value: s.cfg.Enemy.Lifespan}, &components.Cell{},
		&components.Enemy{Fire: components.NewTimer(s.cfg.Enemy.FirePeriod, components.TimerRepeating)})
}

// SpawnParticle creates a hostile projectile.
func (s *Spawner) SpawnParticle(at, velocity r2.Vec) ecs.Entity {
	size := s.cfg.Particle.Size
	return s.particleMap.NewEntity(pos(at), &components.Velocity{X: velocity.X, Y: velocity.Y}, square(size),
		sprite(size, components.ColorParticle, components.LayerParticle),
		&components.Lifespan{Value: s.cfg.Particle.Lifespan}, &components.Hostile{}, &components.Particle{})
}

// SpawnVirus creates a virus with a running fuse.
func (s *Spawner) SpawnVirus(at r2.Vec) ecs.Entity {
	size := s.cfg.Virus.Size
	return s.virusMap.NewEntity(pos(at), square(size),
		sprite(size, components.ColorVirus, components.LayerVirus),
		&components.Virus{Fuse: components.NewTimer(s.cfg.Virus.Fuse, components.TimerOnce)})
}

// SpawnExplosion creates an explosion whose collision footprint is the
// sprite size times the footprint scale.
func (s *Spawner) SpawnExplosion(at r2.Vec) ecs.Entity {
	size := s.cfg.Explosion.Size
	return s.explosionMap.NewEntity(pos(at), square(size*s.cfg.Explosion.FootprintScale),
		sprite(size, components.ColorExplosion, components.LayerExplosion), &components.Hostile{},
		&components.Explosion{Fuse: components.NewTimer(s.cfg.Explosion.Fuse, components.TimerOnce)})
}
