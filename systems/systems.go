// Package systems contains the ECS systems that make up one game tick.
package systems

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/cell/components"
)

// Rect is an axis-aligned rectangle given by its centre and full size.
type Rect struct {
	X, Y, W, H float64
}

// RectAt returns the rectangle a body occupies at pos.
func RectAt(pos components.Position, body components.Body) Rect {
	return Rect{X: pos.X, Y: pos.Y, W: body.W, H: body.H}
}

// Min returns the lower-left corner.
func (r Rect) Min() r2.Vec { return r2.Vec{X: r.X - r.W/2, Y: r.Y - r.H/2} }

// Max returns the upper-right corner.
func (r Rect) Max() r2.Vec { return r2.Vec{X: r.X + r.W/2, Y: r.Y + r.H/2} }

// Overlaps reports whether a and b intersect with non-zero area on both axes.
// Touching edges do not overlap.
func Overlaps(a, b Rect) bool {
	amin, amax := a.Min(), a.Max()
	bmin, bmax := b.Min(), b.Max()
	return amin.X < bmax.X && amax.X > bmin.X &&
		amin.Y < bmax.Y && amax.Y > bmin.Y
}

// WallSet is a per-tick snapshot of wall rectangles in query order.
type WallSet struct {
	filter ecs.Filter2[components.Position, components.Body]
	rects  []Rect
}

// NewWallSet creates a wall snapshot bound to w.
func NewWallSet(w *ecs.World) *WallSet {
	return &WallSet{
		filter: *ecs.NewFilter2[components.Position, components.Body](w).
			With(ecs.C[components.Wall]()),
	}
}

// Collect refreshes the snapshot. Walls never move, but levels reload.
func (ws *WallSet) Collect() []Rect {
	ws.rects = ws.rects[:0]
	query := ws.filter.Query()
	for query.Next() {
		pos, body := query.Get()
		ws.rects = append(ws.rects, RectAt(*pos, *body))
	}
	return ws.rects
}

// Rects returns the last collected snapshot.
func (ws *WallSet) Rects() []Rect { return ws.rects }

// First returns the index of the first wall overlapping r, or -1.
func (ws *WallSet) First(r Rect) int {
	for i, wall := range ws.rects {
		if Overlaps(r, wall) {
			return i
		}
	}
	return -1
}

// Commands buffers structural changes made while a query is open.
// Apply runs them in order once iteration is done.
type Commands struct {
	world     *ecs.World
	effectMap *ecs.Map[components.StatusEffect]

	despawn []ecs.Entity
	attach  []attachment
}

type attachment struct {
	entity ecs.Entity
	effect components.StatusEffect
}

// NewCommands creates a command buffer for w.
func NewCommands(w *ecs.World) *Commands {
	return &Commands{
		world:     w,
		effectMap: ecs.NewMap[components.StatusEffect](w),
	}
}

// Despawn queues removal of e. Queuing the same entity twice is harmless.
func (c *Commands) Despawn(e ecs.Entity) {
	c.despawn = append(c.despawn, e)
}

// Attach queues adding a status effect to e.
func (c *Commands) Attach(e ecs.Entity, effect components.StatusEffect) {
	c.attach = append(c.attach, attachment{entity: e, effect: effect})
}

// Apply executes queued changes and returns the number of entities removed.
func (c *Commands) Apply() int {
	for _, a := range c.attach {
		if !c.world.Alive(a.entity) || c.effectMap.Has(a.entity) {
			continue
		}
		effect := a.effect
		c.effectMap.Add(a.entity, &effect)
	}
	c.attach = c.attach[:0]

	removed := 0
	for _, e := range c.despawn {
		if !c.world.Alive(e) {
			continue
		}
		c.world.RemoveEntity(e)
		removed++
	}
	c.despawn = c.despawn[:0]
	return removed
}
