package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/cell/components"
)

// Expired summarises the entities removed by ExpirySystem in one tick.
type Expired struct {
	Player  bool // The player ran out of lifespan
	Enemies int  // Enemy cells that ran out of lifespan
	Others  int  // Particles and anything else
}

// Any reports whether anything expired.
func (e Expired) Any() bool { return e.Player || e.Enemies > 0 || e.Others > 0 }

// ExpirySystem despawns every entity whose lifespan reached zero and reports
// which kinds went. What an expiry means for the round is decided by the caller.
type ExpirySystem struct {
	filter   ecs.Filter1[components.Lifespan]
	playerMp *ecs.Map[components.Player]
	enemyMp  *ecs.Map[components.Enemy]
	cmd      *Commands
}

// NewExpirySystem creates the expiry system.
func NewExpirySystem(w *ecs.World, cmd *Commands) *ExpirySystem {
	return &ExpirySystem{
		filter:   *ecs.NewFilter1[components.Lifespan](w),
		playerMp: ecs.NewMap[components.Player](w),
		enemyMp:  ecs.NewMap[components.Enemy](w),
		cmd:      cmd,
	}
}

// Update removes expired entities.
func (s *ExpirySystem) Update() Expired {
	var out Expired

	// First pass: collect (must complete before removing)
	query := s.filter.Query()
	for query.Next() {
		life := query.Get()
		if life.Value > 0 {
			continue
		}
		e := query.Entity()
		switch {
		case s.playerMp.Has(e):
			out.Player = true
		case s.enemyMp.Has(e):
			out.Enemies++
		default:
			out.Others++
		}
		s.cmd.Despawn(e)
	}

	// Second pass: remove
	s.cmd.Apply()
	return out
}
