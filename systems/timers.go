package systems

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/cell/components"
	"github.com/pthm-cable/cell/signals"
)

// EnemyFireSystem ticks enemy fire timers. Each enemy whose timer wrapped
// this tick sends one eject signal aimed at the player, however many
// periods the frame spanned.
type EnemyFireSystem struct {
	filter ecs.Filter2[components.Position, components.Enemy]
	player *PlayerQuery
	eject  *signals.Mailbox[signals.Eject]
}

// NewEnemyFireSystem creates the enemy fire system.
func NewEnemyFireSystem(w *ecs.World, player *PlayerQuery, eject *signals.Mailbox[signals.Eject]) *EnemyFireSystem {
	return &EnemyFireSystem{
		filter: *ecs.NewFilter2[components.Position, components.Enemy](w),
		player: player,
		eject:  eject,
	}
}

// Update returns the number of signals sent.
func (s *EnemyFireSystem) Update(dt float64) int {
	var origins []r2.Vec

	query := s.filter.Query()
	for query.Next() {
		pos, enemy := query.Get()
		if enemy.Fire.Tick(dt).JustFinished() {
			origins = append(origins, pos.Vec())
		}
	}
	if len(origins) == 0 {
		return 0
	}

	target := s.player.Single().Pos.Vec()
	for _, o := range origins {
		s.eject.Send(signals.Eject{Origin: o, Target: target})
	}
	return len(origins)
}

// VirusFuseSystem ticks virus fuses. An expired virus is despawned and sends
// an explode signal at its position.
type VirusFuseSystem struct {
	filter  ecs.Filter2[components.Position, components.Virus]
	cmd     *Commands
	explode *signals.Mailbox[signals.Explode]
}

// NewVirusFuseSystem creates the virus fuse system.
func NewVirusFuseSystem(w *ecs.World, cmd *Commands, explode *signals.Mailbox[signals.Explode]) *VirusFuseSystem {
	return &VirusFuseSystem{
		filter:  *ecs.NewFilter2[components.Position, components.Virus](w),
		cmd:     cmd,
		explode: explode,
	}
}

// Update returns the number of viruses that detonated.
func (s *VirusFuseSystem) Update(dt float64) int {
	n := 0
	query := s.filter.Query()
	for query.Next() {
		pos, virus := query.Get()
		if virus.Fuse.Tick(dt).Finished() {
			s.cmd.Despawn(query.Entity())
			s.explode.Send(signals.Explode{At: pos.Vec()})
			n++
		}
	}
	s.cmd.Apply()
	return n
}

// ExplosionFuseSystem ticks explosion fuses and despawns expired explosions.
type ExplosionFuseSystem struct {
	filter ecs.Filter1[components.Explosion]
	cmd    *Commands
}

// NewExplosionFuseSystem creates the explosion fuse system.
func NewExplosionFuseSystem(w *ecs.World, cmd *Commands) *ExplosionFuseSystem {
	return &ExplosionFuseSystem{
		filter: *ecs.NewFilter1[components.Explosion](w),
		cmd:    cmd,
	}
}

// Update returns the number of explosions removed.
func (s *ExplosionFuseSystem) Update(dt float64) int {
	query := s.filter.Query()
	for query.Next() {
		explosion := query.Get()
		if explosion.Fuse.Tick(dt).Finished() {
			s.cmd.Despawn(query.Entity())
		}
	}
	return s.cmd.Apply()
}
