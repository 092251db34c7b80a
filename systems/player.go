package systems

import (
	"fmt"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/cell/components"
)

// PlayerRef points at the single player's components. The pointers are valid
// until the next structural change to the world.
type PlayerRef struct {
	Entity  ecs.Entity
	Pos     *components.Position
	Vel     *components.Velocity
	Body    *components.Body
	Boosted bool
}

// PlayerQuery resolves the one player entity. Zero or several players is a
// broken world and panics.
type PlayerQuery struct {
	filter    ecs.Filter1[components.Player]
	posMap    *ecs.Map[components.Position]
	velMap    *ecs.Map[components.Velocity]
	bodyMap   *ecs.Map[components.Body]
	effectMap *ecs.Map[components.StatusEffect]
}

// NewPlayerQuery creates a player query bound to w.
func NewPlayerQuery(w *ecs.World) *PlayerQuery {
	return &PlayerQuery{
		filter:    *ecs.NewFilter1[components.Player](w),
		posMap:    ecs.NewMap[components.Position](w),
		velMap:    ecs.NewMap[components.Velocity](w),
		bodyMap:   ecs.NewMap[components.Body](w),
		effectMap: ecs.NewMap[components.StatusEffect](w),
	}
}

// Count returns the number of player entities.
func (q *PlayerQuery) Count() int {
	n := 0
	query := q.filter.Query()
	for query.Next() {
		n++
	}
	return n
}

// Single returns the player, panicking unless exactly one exists.
func (q *PlayerQuery) Single() PlayerRef {
	var found ecs.Entity
	n := 0
	query := q.filter.Query()
	for query.Next() {
		if n == 0 {
			found = query.Entity()
		}
		n++
	}
	if n != 1 {
		panic(fmt.Sprintf("cell: expected exactly one player entity, found %d", n))
	}
	if !q.posMap.Has(found) || !q.velMap.Has(found) || !q.bodyMap.Has(found) {
		panic(fmt.Sprintf("cell: player entity %v lacks position, velocity or body", found))
	}
	return PlayerRef{
		Entity:  found,
		Pos:     q.posMap.Get(found),
		Vel:     q.velMap.Get(found),
		Body:    q.bodyMap.Get(found),
		Boosted: q.effectMap.Has(found) && q.effectMap.Get(found).Kind == components.EffectSpeed,
	}
}
