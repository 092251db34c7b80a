package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/cell/components"
)

type pickupInfo struct {
	entity ecs.Entity
	rect   Rect
	effect components.StatusEffect
}

// PickupSystem hands status effects lying in the arena to the cells that
// touch them. Cells already carrying an effect are skipped. Several cells
// touching one pickup in the same tick all receive it.
type PickupSystem struct {
	pickups ecs.Filter3[components.Position, components.Body, components.StatusEffect]
	cells   ecs.Filter2[components.Position, components.Body]
	cmd     *Commands

	buf []pickupInfo
}

// NewPickupSystem creates the pickup system.
func NewPickupSystem(w *ecs.World, cmd *Commands) *PickupSystem {
	return &PickupSystem{
		pickups: *ecs.NewFilter3[components.Position, components.Body, components.StatusEffect](w).
			Without(ecs.C[components.Cell]()),
		cells: *ecs.NewFilter2[components.Position, components.Body](w).
			With(ecs.C[components.Cell]()).
			Without(ecs.C[components.StatusEffect]()),
		cmd: cmd,
	}
}

// Update returns the number of pickups collected.
func (s *PickupSystem) Update() int {
	s.buf = s.buf[:0]
	pq := s.pickups.Query()
	for pq.Next() {
		pos, body, effect := pq.Get()
		s.buf = append(s.buf, pickupInfo{entity: pq.Entity(), rect: RectAt(*pos, *body), effect: *effect})
	}
	if len(s.buf) == 0 {
		return 0
	}

	taken := make(map[ecs.Entity]bool)
	cq := s.cells.Query()
	for cq.Next() {
		pos, body := cq.Get()
		cell := RectAt(*pos, *body)
		for _, p := range s.buf {
			if !Overlaps(p.rect, cell) {
				continue
			}
			// The first effect queued for a cell wins.
			s.cmd.Attach(cq.Entity(), p.effect)
			if !taken[p.entity] {
				taken[p.entity] = true
				s.cmd.Despawn(p.entity)
			}
		}
	}
	s.cmd.Apply()
	return len(taken)
}

// HostileContactSystem takes one lifespan from a cell for every hostile
// touching it this tick. There is no hit cooldown.
type HostileContactSystem struct {
	hostiles ecs.Filter2[components.Position, components.Body]
	cells    ecs.Filter3[components.Position, components.Body, components.Lifespan]

	buf []Rect
}

// NewHostileContactSystem creates the contact damage system.
func NewHostileContactSystem(w *ecs.World) *HostileContactSystem {
	return &HostileContactSystem{
		hostiles: *ecs.NewFilter2[components.Position, components.Body](w).
			With(ecs.C[components.Hostile]()),
		cells: *ecs.NewFilter3[components.Position, components.Body, components.Lifespan](w).
			With(ecs.C[components.Cell]()),
	}
}

// Update returns the number of hits dealt.
func (s *HostileContactSystem) Update() int {
	s.buf = s.buf[:0]
	hq := s.hostiles.Query()
	for hq.Next() {
		pos, body := hq.Get()
		s.buf = append(s.buf, RectAt(*pos, *body))
	}
	if len(s.buf) == 0 {
		return 0
	}

	hits := 0
	cq := s.cells.Query()
	for cq.Next() {
		pos, body, life := cq.Get()
		cell := RectAt(*pos, *body)
		for _, h := range s.buf {
			if Overlaps(h, cell) {
				life.Value--
				hits++
			}
		}
	}
	return hits
}
