package systems

import (
	"math"
	"strings"
	"testing"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/cell/components"
	"github.com/pthm-cable/cell/signals"
)

// testWorld builds small worlds without the simulation's spawner.
type testWorld struct {
	w         *ecs.World
	walls     *ecs.Map3[components.Position, components.Body, components.Wall]
	players   *ecs.Map5[components.Position, components.Velocity, components.Body, components.Cell, components.Player]
	lifeMap   *ecs.Map[components.Lifespan]
	enemies   *ecs.Map4[components.Position, components.Body, components.Cell, components.Enemy]
	particles *ecs.Map6[components.Position, components.Velocity, components.Body, components.Lifespan, components.Hostile, components.Particle]
	hostiles  *ecs.Map3[components.Position, components.Body, components.Hostile]
	pickups   *ecs.Map3[components.Position, components.Body, components.StatusEffect]
	cells     *ecs.Map3[components.Position, components.Body, components.Cell]
}

func newTestWorld() *testWorld {
	w := ecs.NewWorld()
	return &testWorld{
		w:         w,
		walls:     ecs.NewMap3[components.Position, components.Body, components.Wall](w),
		players:   ecs.NewMap5[components.Position, components.Velocity, components.Body, components.Cell, components.Player](w),
		lifeMap:   ecs.NewMap[components.Lifespan](w),
		enemies:   ecs.NewMap4[components.Position, components.Body, components.Cell, components.Enemy](w),
		particles: ecs.NewMap6[components.Position, components.Velocity, components.Body, components.Lifespan, components.Hostile, components.Particle](w),
		hostiles:  ecs.NewMap3[components.Position, components.Body, components.Hostile](w),
		pickups:   ecs.NewMap3[components.Position, components.Body, components.StatusEffect](w),
		cells:     ecs.NewMap3[components.Position, components.Body, components.Cell](w),
	}
}

func (tw *testWorld) wall(x, y, wd, h float64) {
	tw.walls.NewEntity(&components.Position{X: x, Y: y}, &components.Body{W: wd, H: h}, &components.Wall{})
}

func (tw *testWorld) player(x, y, size float64) ecs.Entity {
	e := tw.players.NewEntity(&components.Position{X: x, Y: y}, &components.Velocity{},
		&components.Body{W: size, H: size}, &components.Cell{}, &components.Player{})
	tw.lifeMap.Add(e, &components.Lifespan{Value: 1})
	return e
}

func (tw *testWorld) enemy(x, y, size, period float64) ecs.Entity {
	e := tw.enemies.NewEntity(&components.Position{X: x, Y: y}, &components.Body{W: size, H: size},
		&components.Cell{}, &components.Enemy{Fire: components.NewTimer(period, components.TimerRepeating)})
	tw.lifeMap.Add(e, &components.Lifespan{Value: 1})
	return e
}

func (tw *testWorld) particle(x, y, vx, vy float64) ecs.Entity {
	return tw.particles.NewEntity(&components.Position{X: x, Y: y}, &components.Velocity{X: vx, Y: vy},
		&components.Body{W: 5, H: 5}, &components.Lifespan{Value: 2}, &components.Hostile{}, &components.Particle{})
}

func (tw *testWorld) marker(at r2.Vec) ecs.Entity {
	return ecs.NewMap[components.Position](tw.w).NewEntity(&components.Position{X: at.X, Y: at.Y})
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Rect
		want bool
	}{
		{"player candidate into wall", Rect{10, 0, 20, 20}, Rect{15, 0, 20, 20}, true},
		{"separated on x", Rect{0, 0, 20, 20}, Rect{30, 0, 20, 20}, false},
		{"touching edges", Rect{0, 0, 20, 20}, Rect{20, 0, 20, 20}, false},
		{"overlap x only", Rect{0, 0, 20, 20}, Rect{5, 25, 20, 20}, false},
		{"contained", Rect{0, 0, 100, 100}, Rect{3, -4, 2, 2}, true},
		{"corner overlap", Rect{0, 0, 10, 10}, Rect{9, 9, 10, 10}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.a, tt.b); got != tt.want {
				t.Errorf("Overlaps(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			if got := Overlaps(tt.b, tt.a); got != tt.want {
				t.Errorf("Overlaps is not symmetric for %v, %v", tt.a, tt.b)
			}
		})
	}
}

func TestPlayerMovementRejectedByWall(t *testing.T) {
	tw := newTestWorld()
	tw.wall(15, 0, 20, 20)
	tw.player(0, 0, 20)

	walls := NewWallSet(tw.w)
	walls.Collect()
	pq := NewPlayerQuery(tw.w)
	sys := NewPlayerMovementSystem(pq, walls)

	p := pq.Single()
	p.Vel.X = 10

	if blocked := sys.Update(1.0); !blocked {
		t.Error("expected move into the wall to be blocked")
	}
	p = pq.Single()
	if p.Pos.X != 0 || p.Pos.Y != 0 {
		t.Errorf("player moved to (%f, %f), expected (0, 0)", p.Pos.X, p.Pos.Y)
	}
}

func TestPlayerMovementNoSliding(t *testing.T) {
	tw := newTestWorld()
	tw.wall(30, 0, 20, 20)
	tw.player(0, 0, 20)

	walls := NewWallSet(tw.w)
	walls.Collect()
	pq := NewPlayerQuery(tw.w)
	sys := NewPlayerMovementSystem(pq, walls)

	// Diagonal step whose x component hits the wall and y component is free
	p := pq.Single()
	p.Vel.X, p.Vel.Y = 15, 15
	sys.Update(1.0)

	p = pq.Single()
	if p.Pos.X != 0 || p.Pos.Y != 0 {
		t.Errorf("expected full rejection, player at (%f, %f)", p.Pos.X, p.Pos.Y)
	}

	// A free step is applied whole
	p.Vel.X, p.Vel.Y = -10, 5
	if sys.Update(0.5) {
		t.Fatal("free step reported as blocked")
	}
	p = pq.Single()
	if math.Abs(p.Pos.X+5) > 1e-9 || math.Abs(p.Pos.Y-2.5) > 1e-9 {
		t.Errorf("expected (-5, 2.5), got (%f, %f)", p.Pos.X, p.Pos.Y)
	}
}

func TestParticleBouncePreservesSpeed(t *testing.T) {
	tests := []struct {
		name       string
		x, y       float64
		vx, vy     float64
		flipX      bool
		wallX, wy  float64
		wallW, wlH float64
	}{
		{"head-on vertical wall", 0, 0, 100, 0, true, 12, 0, 10, 200},
		{"glancing horizontal wall", 0, 0, 30, -100, false, 0, -12, 200, 10},
		{"diagonal into side wall", 0, 0, 80, 60, true, 12, 0, 10, 200},
		{"diagonal into floor", 0, 0, -60, -80, false, 0, -12, 200, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := newTestWorld()
			tw.wall(tt.wallX, tt.wy, tt.wallW, tt.wlH)
			e := tw.particle(tt.x, tt.y, tt.vx, tt.vy)

			walls := NewWallSet(tw.w)
			walls.Collect()
			sys := NewParticleMovementSystem(tw.w, walls)

			before := math.Hypot(tt.vx, tt.vy)
			if n := sys.Update(0.1); n != 1 {
				t.Fatalf("expected 1 bounce, got %d", n)
			}

			velMap := ecs.NewMap[components.Velocity](tw.w)
			v := velMap.Get(e)
			after := math.Hypot(v.X, v.Y)
			if math.Abs(after-before) > 1e-9 {
				t.Errorf("speed changed from %f to %f", before, after)
			}
			if tt.flipX && (v.X != -tt.vx || v.Y != tt.vy) {
				t.Errorf("expected x flip, got velocity (%f, %f)", v.X, v.Y)
			}
			if !tt.flipX && (v.Y != -tt.vy || v.X != tt.vx) {
				t.Errorf("expected y flip, got velocity (%f, %f)", v.X, v.Y)
			}
			if life := tw.lifeMap.Get(e); life.Value != 1 {
				t.Errorf("expected lifespan 1 after bounce, got %d", life.Value)
			}
		})
	}
}

func TestParticleReflectedStepAppliedSameTick(t *testing.T) {
	tw := newTestWorld()
	tw.wall(12, 0, 10, 200)
	e := tw.particle(0, 0, 100, 0)

	walls := NewWallSet(tw.w)
	walls.Collect()
	NewParticleMovementSystem(tw.w, walls).Update(0.1)

	pos := ecs.NewMap[components.Position](tw.w).Get(e)
	if math.Abs(pos.X+10) > 1e-9 {
		t.Errorf("expected particle at x=-10 after reflected step, got %f", pos.X)
	}
}

func TestEnemyFireCount(t *testing.T) {
	tests := []struct {
		name   string
		period float64
		dt     float64
		ticks  int
		want   int
	}{
		{"period 2 over 8s", 2.0, 0.5, 16, 4},
		{"period 2 over 7.5s", 2.0, 0.5, 15, 3},
		{"frame spans two periods", 0.5, 1.25, 2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := newTestWorld()
			tw.player(100, 0, 20)
			tw.enemy(0, 0, 20, tt.period)

			var eject signals.Mailbox[signals.Eject]
			sys := NewEnemyFireSystem(tw.w, NewPlayerQuery(tw.w), &eject)
			for i := 0; i < tt.ticks; i++ {
				sys.Update(tt.dt)
			}
			if eject.Sent() != tt.want {
				t.Errorf("expected %d eject signals, got %d", tt.want, eject.Sent())
			}
		})
	}
}

func TestEnemyFireAimsAtPlayer(t *testing.T) {
	tw := newTestWorld()
	tw.player(100, 50, 20)
	tw.enemy(-20, 10, 20, 1)

	var eject signals.Mailbox[signals.Eject]
	NewEnemyFireSystem(tw.w, NewPlayerQuery(tw.w), &eject).Update(1)

	ev, ok := eject.Take()
	if !ok {
		t.Fatal("expected a signal")
	}
	if ev.Origin != (r2.Vec{X: -20, Y: 10}) || ev.Target != (r2.Vec{X: 100, Y: 50}) || ev.Player {
		t.Errorf("unexpected eject %+v", ev)
	}
}

type fakeSpawner struct {
	tw         *testWorld
	particles  []r2.Vec
	velocities []r2.Vec
	viruses    []r2.Vec
	explosions []r2.Vec
}

func (f *fakeSpawner) SpawnParticle(at, velocity r2.Vec) ecs.Entity {
	f.particles = append(f.particles, at)
	f.velocities = append(f.velocities, velocity)
	return f.tw.particle(at.X, at.Y, velocity.X, velocity.Y)
}

func (f *fakeSpawner) SpawnVirus(at r2.Vec) ecs.Entity {
	f.viruses = append(f.viruses, at)
	return f.tw.marker(at)
}

func (f *fakeSpawner) SpawnExplosion(at r2.Vec) ecs.Entity {
	f.explosions = append(f.explosions, at)
	return f.tw.marker(at)
}

func TestSpawnParticleOffsetAndSpeed(t *testing.T) {
	tw := newTestWorld()
	sp := &fakeSpawner{tw: tw}
	var eject signals.Mailbox[signals.Eject]
	sys := NewSpawnParticleSystem(&eject, sp, 100, 40)

	eject.Send(signals.Eject{Origin: r2.Vec{X: 0, Y: 0}, Target: r2.Vec{X: 30, Y: 40}})
	res := sys.Update()
	if !res.Spawned {
		t.Fatal("expected a particle")
	}

	at, vel := sp.particles[0], sp.velocities[0]
	if math.Abs(at.X-24) > 1e-9 || math.Abs(at.Y-32) > 1e-9 {
		t.Errorf("expected spawn at (24, 32), got (%f, %f)", at.X, at.Y)
	}
	if math.Abs(vel.X-60) > 1e-9 || math.Abs(vel.Y-80) > 1e-9 {
		t.Errorf("expected velocity (60, 80), got (%f, %f)", vel.X, vel.Y)
	}
}

func TestSpawnParticleZeroDirectionIgnored(t *testing.T) {
	tw := newTestWorld()
	sp := &fakeSpawner{tw: tw}
	var eject signals.Mailbox[signals.Eject]
	sys := NewSpawnParticleSystem(&eject, sp, 100, 40)

	eject.Send(signals.Eject{Origin: r2.Vec{X: 5, Y: 5}, Target: r2.Vec{X: 5, Y: 5}})
	if res := sys.Update(); res.Spawned {
		t.Error("eject with no direction should not spawn")
	}
	if len(sp.particles) != 0 {
		t.Error("spawner was called")
	}
}

func TestSpawnDrainsOnePerTick(t *testing.T) {
	tw := newTestWorld()
	sp := &fakeSpawner{tw: tw}
	var explode signals.Mailbox[signals.Explode]
	sys := NewSpawnExplosionSystem(&explode, sp)

	explode.Send(signals.Explode{At: r2.Vec{X: 1}})
	explode.Send(signals.Explode{At: r2.Vec{X: 2}})

	res := sys.Update()
	if !res.Spawned || res.Dropped != 1 {
		t.Errorf("expected one spawn and one drop, got %+v", res)
	}
	if len(sp.explosions) != 1 || sp.explosions[0].X != 1 {
		t.Errorf("expected the first signal to win, got %v", sp.explosions)
	}
	if res := sys.Update(); res.Spawned {
		t.Error("dropped signal resurfaced on the next tick")
	}
}

func TestHostileContactMultiHit(t *testing.T) {
	tw := newTestWorld()
	e := tw.player(0, 0, 20)
	tw.lifeMap.Get(e).Value = 5
	tw.hostiles.NewEntity(&components.Position{X: 0, Y: 0}, &components.Body{W: 100, H: 100}, &components.Hostile{})
	tw.hostiles.NewEntity(&components.Position{X: 5, Y: 5}, &components.Body{W: 5, H: 5}, &components.Hostile{})
	tw.hostiles.NewEntity(&components.Position{X: 300, Y: 0}, &components.Body{W: 5, H: 5}, &components.Hostile{})

	sys := NewHostileContactSystem(tw.w)
	if hits := sys.Update(); hits != 2 {
		t.Errorf("expected 2 hits, got %d", hits)
	}
	sys.Update()
	if life := tw.lifeMap.Get(e).Value; life != 1 {
		t.Errorf("expected lifespan 1 after two ticks of double contact, got %d", life)
	}
}

func TestPickupTransfersAndDespawns(t *testing.T) {
	tw := newTestWorld()
	player := tw.player(0, 0, 40)
	other := tw.cells.NewEntity(&components.Position{X: 10, Y: 0}, &components.Body{W: 40, H: 40}, &components.Cell{})
	pickup := tw.pickups.NewEntity(&components.Position{X: 20, Y: 0}, &components.Body{W: 40, H: 40},
		&components.StatusEffect{Kind: components.EffectSpeed})

	sys := NewPickupSystem(tw.w, NewCommands(tw.w))
	if n := sys.Update(); n != 1 {
		t.Errorf("expected 1 pickup collected, got %d", n)
	}
	if tw.w.Alive(pickup) {
		t.Error("pickup should be despawned")
	}

	effects := ecs.NewMap[components.StatusEffect](tw.w)
	if !effects.Has(player) || !effects.Has(other) {
		t.Error("both touching cells should carry the effect")
	}
	if !NewPlayerQuery(tw.w).Single().Boosted {
		t.Error("player should be boosted")
	}
}

func TestPickupSkipsCellsWithEffect(t *testing.T) {
	tw := newTestWorld()
	player := tw.player(0, 0, 40)
	effects := ecs.NewMap[components.StatusEffect](tw.w)
	effects.Add(player, &components.StatusEffect{Kind: components.EffectSpeed})
	pickup := tw.pickups.NewEntity(&components.Position{X: 0, Y: 0}, &components.Body{W: 40, H: 40},
		&components.StatusEffect{Kind: components.EffectSpeed})

	if n := NewPickupSystem(tw.w, NewCommands(tw.w)).Update(); n != 0 {
		t.Errorf("expected no pickup, got %d", n)
	}
	if !tw.w.Alive(pickup) {
		t.Error("pickup should stay when only boosted cells touch it")
	}
}

func TestExpiryClassifies(t *testing.T) {
	tw := newTestWorld()
	p := tw.player(0, 0, 20)
	en := tw.enemy(100, 0, 20, 2)
	part := tw.particle(50, 50, 1, 0)
	alive := tw.particle(60, 60, 1, 0)

	tw.lifeMap.Get(en).Value = 0
	tw.lifeMap.Get(part).Value = -1

	sys := NewExpirySystem(tw.w, NewCommands(tw.w))
	out := sys.Update()
	if out.Player || out.Enemies != 1 || out.Others != 1 {
		t.Errorf("unexpected expiry %+v", out)
	}
	if tw.w.Alive(en) || tw.w.Alive(part) {
		t.Error("expired entities should be removed")
	}
	if !tw.w.Alive(p) || !tw.w.Alive(alive) {
		t.Error("living entities should remain")
	}

	// Despawn happens exactly once
	if again := sys.Update(); again.Any() {
		t.Errorf("expected nothing on second pass, got %+v", again)
	}
}

func TestPlayerQuerySinglePanics(t *testing.T) {
	tests := []struct {
		name    string
		players int
	}{
		{"none", 0},
		{"two", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := newTestWorld()
			for i := 0; i < tt.players; i++ {
				tw.player(float64(i)*100, 0, 20)
			}
			defer func() {
				r := recover()
				msg, _ := r.(string)
				if !strings.Contains(msg, "exactly one player") {
					t.Errorf("expected diagnostic panic, got %v", r)
				}
			}()
			NewPlayerQuery(tw.w).Single()
		})
	}
}

func TestPlayerInputHeldKeys(t *testing.T) {
	tw := newTestWorld()
	tw.player(0, 0, 20)
	pq := NewPlayerQuery(tw.w)
	sys := NewPlayerInputSystem(pq, 60, 150)

	sys.Update(Keys(KeyRight, KeyUp))
	v := pq.Single().Vel
	if v.X != 60 || v.Y != 60 {
		t.Fatalf("expected (60, 60), got (%f, %f)", v.X, v.Y)
	}

	// Releasing one key keeps that axis while another key is held
	sys.Update(Keys(KeyUp))
	v = pq.Single().Vel
	if v.X != 60 || v.Y != 60 {
		t.Errorf("expected x to persist, got (%f, %f)", v.X, v.Y)
	}

	sys.Update(0)
	v = pq.Single().Vel
	if v.X != 0 || v.Y != 0 {
		t.Errorf("expected stop with no keys, got (%f, %f)", v.X, v.Y)
	}
}

func TestRegistryOrder(t *testing.T) {
	reg := NewSystemRegistry()
	ids := reg.IDs()
	index := make(map[string]int, len(ids))
	for i, id := range ids {
		index[id] = i
	}

	pairs := [][2]string{
		{IDPlayerInput, IDPlayerMovement},
		{IDPlayerFire, IDSpawnParticle},
		{IDEnemyFire, IDSpawnParticle},
		{IDVirusInput, IDSpawnVirus},
		{IDVirusFuse, IDSpawnExplosion},
		{IDSpawnExplosion, IDHostileContact},
		{IDHostileContact, IDExpiry},
	}
	for _, p := range pairs {
		if index[p[0]] >= index[p[1]] {
			t.Errorf("%s must run before %s", p[0], p[1])
		}
	}
	if reg.GetName("missing") != "missing" {
		t.Error("GetName should fall back to the id")
	}
}
