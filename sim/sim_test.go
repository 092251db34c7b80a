package sim

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/cell/components"
	"github.com/pthm-cable/cell/config"
	"github.com/pthm-cable/cell/systems"
	"github.com/pthm-cable/cell/telemetry"
)

// Tiles are 50 units in a 250x250 arena, so tile centres sit at
// -100, -50, 0, 50, 100 on both axes.
const (
	duel = `
PE...
.....
.....
.....
.....
`
	corner = `
....P
.....
.....
.....
E....
`
	pickupRow = `
P*...
.....
.....
.....
....E
`
)

func testConfig(t *testing.T, levels ...string) *config.Config {
	t.Helper()
	var sb strings.Builder
	sb.WriteString("arena:\n  width: 250\n  height: 250\n  grid: 5\nlevels:\n")
	for _, l := range levels {
		sb.WriteString("  - |\n")
		for _, row := range strings.Split(strings.TrimSpace(l), "\n") {
			sb.WriteString("    " + row + "\n")
		}
	}
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	// Keep enemies quiet unless a test wants them to fire
	cfg.Enemy.FirePeriod = 1000
	return cfg
}

func newSim(t *testing.T, cfg *config.Config) *Simulation {
	t.Helper()
	s, err := New(cfg, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.LoadLevel(); err != nil {
		t.Fatalf("LoadLevel: %v", err)
	}
	return s
}

func press(dt float64, keys ...systems.Key) Input {
	return Input{DT: dt, Pressed: systems.Keys(keys...), Held: systems.Keys(keys...)}
}

func TestLoadLevelPlacesEntities(t *testing.T) {
	s := newSim(t, testConfig(t, corner))

	c := s.Counts()
	if c.Cells != 2 || c.Walls != 0 || c.Total != 2 {
		t.Errorf("unexpected counts %+v", c)
	}
	if got := s.Player(); got != (r2.Vec{X: 100, Y: 100}) {
		t.Errorf("player at %v, want (100, 100)", got)
	}
}

func TestNewRejectsMalformedLevel(t *testing.T) {
	cfg := testConfig(t, corner)
	cfg.Levels = []string{strings.Repeat(".", 25)}
	if _, err := New(cfg, Options{}); err == nil {
		t.Error("expected error for a level without player and enemy")
	}
}

func TestStepBeforeLoadIsNoop(t *testing.T) {
	s, err := New(testConfig(t, corner), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if r := s.Step(Input{DT: 1}); r.Outcome != OutcomeNone || s.Stats().Ticks != 0 {
		t.Errorf("step without a level should do nothing, got %+v", r)
	}
}

func TestVirusDetonatesIntoExplosion(t *testing.T) {
	cfg := testConfig(t, corner)
	cfg.Virus.Fuse = 5
	cfg.Player.Lifespan = 100
	s := newSim(t, cfg)

	r := s.Step(press(0.5, systems.KeyDropVirus))
	if r.Viruses != 1 || s.Counts().Viruses != 1 {
		t.Fatalf("expected a virus after the drop tick, report %+v", r)
	}

	// The virus is not ticked on its spawn tick: 10 more ticks of 0.5s
	for i := 0; i < 9; i++ {
		if r := s.Step(Input{DT: 0.5}); r.Detonations != 0 {
			t.Fatalf("virus detonated early on tick %d", i)
		}
	}
	r = s.Step(Input{DT: 0.5})
	if r.Detonations != 1 || r.Explosions != 1 {
		t.Fatalf("expected detonation and explosion, got %+v", r)
	}

	c := s.Counts()
	if c.Viruses != 0 || c.Explosions != 1 {
		t.Errorf("expected virus replaced by explosion, got %+v", c)
	}

	var explosion *Sprite
	for _, sp := range s.Sprites() {
		if sp.Layer == components.LayerExplosion {
			explosion = &sp
		}
	}
	if explosion == nil {
		t.Fatal("no explosion sprite")
	}
	if explosion.Pos != (r2.Vec{X: 100, Y: 100}) {
		t.Errorf("explosion at %v, want (100, 100)", explosion.Pos)
	}
	if explosion.W != 10 || explosion.Footprint.W != 100 {
		t.Errorf("explosion sprite %f footprint %f, want 10 and 100", explosion.W, explosion.Footprint.W)
	}

	// Fresh one second fuse
	s.Step(Input{DT: 0.5})
	if s.Counts().Explosions != 1 {
		t.Fatal("explosion expired too early")
	}
	s.Step(Input{DT: 0.5})
	if s.Counts().Explosions != 0 {
		t.Error("explosion should expire after its one second fuse")
	}
}

func TestExplosionMultiHit(t *testing.T) {
	cfg := testConfig(t, corner)
	cfg.Virus.Fuse = 0.5
	cfg.Player.Lifespan = 100
	s := newSim(t, cfg)

	s.Step(press(0.25, systems.KeyDropVirus))
	s.Step(Input{DT: 0.25})
	r := s.Step(Input{DT: 0.25}) // detonates and hits in the same tick
	if r.Explosions != 1 || r.Hits != 1 {
		t.Fatalf("expected explosion hit on its spawn tick, got %+v", r)
	}
	r = s.Step(Input{DT: 0.25})
	if r.Hits != 1 {
		t.Errorf("explosion should hit again on the next tick, got %d hits", r.Hits)
	}
}

// shoot fires the player's particle at the enemy next to it. The particle
// spawns one cell width away, on top of the enemy.
func shoot(s *Simulation) Report {
	return s.Step(Input{
		DT:       0.01,
		Pressed:  systems.Keys(systems.KeyFire),
		Cursor:   r2.Vec{X: -50, Y: 100},
		CursorOK: true,
	})
}

func TestLevelProgressionAndVictory(t *testing.T) {
	s := newSim(t, testConfig(t, duel, duel))

	if res := s.Resources(); res.Level != 1 || res.LevelCount != 2 {
		t.Fatalf("expected counter 1 of 2, got %+v", res)
	}

	r := shoot(s)
	if r.Outcome != OutcomeNextLevel {
		t.Fatalf("expected Next Level, got %v (%+v)", r.Outcome, r)
	}
	res := s.Resources()
	if res.Message != "Next Level" || res.Level != 0 || res.Score != 1 {
		t.Errorf("unexpected resources after first win %+v", res)
	}
	if !s.Finished() {
		t.Error("round should be finished")
	}
	if r := s.Step(Input{DT: 1}); r.Outcome != OutcomeNone {
		t.Error("finished round must not advance")
	}

	if err := s.LoadLevel(); err != nil {
		t.Fatal(err)
	}
	r = shoot(s)
	if r.Outcome != OutcomeVictory {
		t.Fatalf("expected Victory, got %v", r.Outcome)
	}
	res = s.Resources()
	if res.Message != "Victory" || res.Level != res.LevelCount-1 || res.Score != 2 {
		t.Errorf("unexpected resources after victory %+v", res)
	}
}

func TestGameOver(t *testing.T) {
	cfg := testConfig(t, duel)
	cfg.Enemy.FirePeriod = 0.5
	s := newSim(t, cfg)

	r := s.Step(Input{DT: 0.5})
	if r.Fired != 1 {
		t.Fatalf("expected enemy to fire, got %+v", r)
	}
	if r.Outcome != OutcomeGameOver {
		t.Fatalf("expected Game Over, got %v", r.Outcome)
	}
	res := s.Resources()
	if res.Message != "Game Over" || res.Level != 0 || res.Score != 0 {
		t.Errorf("unexpected resources %+v", res)
	}
}

func TestSimultaneousShotsDropOneSignal(t *testing.T) {
	cfg := testConfig(t, duel)
	cfg.Enemy.FirePeriod = 0.01
	s := newSim(t, cfg)

	// Player and enemy both send an eject this tick; only the first is served
	r := shoot(s)
	if r.PlayerShots != 1 || r.Fired != 1 {
		t.Fatalf("expected both shots, got %+v", r)
	}
	if r.Particles != 1 || r.Dropped != 1 {
		t.Errorf("expected one particle and one drop, got %+v", r)
	}
	if r.Outcome != OutcomeVictory {
		t.Errorf("player's shot was queued first and should win, got %v", r.Outcome)
	}
	if s.MailboxDrops() != 1 {
		t.Errorf("expected 1 recorded drop, got %d", s.MailboxDrops())
	}
}

func TestSimultaneousExpiryPlayerWins(t *testing.T) {
	cfg := testConfig(t, duel, duel)
	cfg.Virus.Fuse = 0.01
	s := newSim(t, cfg)

	s.Step(press(0.01, systems.KeyDropVirus))
	r := s.Step(Input{DT: 0.01})
	if !r.Expired.Player || r.Expired.Enemies != 1 {
		t.Fatalf("expected both cells to expire, got %+v", r.Expired)
	}
	if r.Outcome != OutcomeGameOver {
		t.Errorf("expected Game Over to take precedence, got %v", r.Outcome)
	}
	if res := s.Resources(); res.Score != 0 || res.Level != 1 {
		t.Errorf("enemy must not be credited, got %+v", res)
	}
}

func TestSpeedPickup(t *testing.T) {
	cfg := testConfig(t, pickupRow)
	s := newSim(t, cfg)
	right := Input{DT: 0.1, Held: systems.Keys(systems.KeyRight)}

	start := s.Player()
	r := s.Step(right)
	if r.Pickups != 1 {
		t.Fatalf("expected pickup on first step, got %+v", r)
	}
	if got := s.Player().X - start.X; math.Abs(got-6) > 1e-9 {
		t.Errorf("first step should move at base speed, moved %f", got)
	}
	if s.Counts().Pickups != 0 {
		t.Error("pickup should be gone")
	}

	before := s.Player()
	s.Step(right)
	if got := s.Player().X - before.X; math.Abs(got-15) > 1e-9 {
		t.Errorf("boosted step should move 15, moved %f", got)
	}
}

func TestVirusFuseAtTenthSecondFrames(t *testing.T) {
	cfg := testConfig(t, corner)
	cfg.Virus.Fuse = 5
	cfg.Player.Lifespan = 100
	s := newSim(t, cfg)

	s.Step(press(0.1, systems.KeyDropVirus))
	for i := 1; i < 50; i++ {
		if r := s.Step(Input{DT: 0.1}); r.Detonations != 0 {
			t.Fatalf("virus detonated early on tick %d", i)
		}
	}
	if r := s.Step(Input{DT: 0.1}); r.Detonations != 1 {
		t.Errorf("expected detonation after 5s of 0.1s frames, got %+v", r)
	}
}

func TestEnemyFireCadenceAt60FPS(t *testing.T) {
	cfg := testConfig(t, corner)
	cfg.Enemy.FirePeriod = 2
	cfg.Player.Lifespan = 100000
	cfg.Enemy.Lifespan = 100000
	s := newSim(t, cfg)

	for i := 0; i < 600; i++ {
		s.Step(Input{DT: 1.0 / 60})
	}
	if st := s.Stats(); st.Fired != 5 {
		t.Errorf("expected 5 shots in 10s at 60fps, got %d", st.Fired)
	}
}

func TestEnemyFireCadence(t *testing.T) {
	cfg := testConfig(t, corner)
	cfg.Enemy.FirePeriod = 2
	cfg.Player.Lifespan = 100
	s := newSim(t, cfg)

	for i := 0; i < 16; i++ {
		s.Step(Input{DT: 0.5})
	}
	if st := s.Stats(); st.Fired != 4 || st.Particles != 4 {
		t.Errorf("expected 4 shots in 8s, got fired=%d particles=%d", st.Fired, st.Particles)
	}
}

func TestParticleLifespanFromBounces(t *testing.T) {
	const boxed = `
|||||
|..E|
|...|
|P..|
|||||
`
	cfg := testConfig(t, boxed)
	cfg.Player.Lifespan = 100
	cfg.Enemy.Lifespan = 100
	s := newSim(t, cfg)

	// Shoot straight up into the top wall from the player at (-50, -50)
	s.Step(Input{DT: 0.01, Pressed: systems.Keys(systems.KeyFire), Cursor: r2.Vec{X: -50, Y: 1000}, CursorOK: true})
	if s.Counts().Particles != 1 {
		t.Fatal("expected a particle")
	}
	// Each bounce off the top and bottom walls costs one lifespan
	bounces := 0
	for i := 0; i < 2000 && s.Counts().Particles > 0; i++ {
		bounces += s.Step(Input{DT: 0.01}).Bounces
	}
	if s.Counts().Particles != 0 {
		t.Fatal("particle never expired")
	}
	if bounces != 2 {
		t.Errorf("expected particle to die after 2 bounces, got %d", bounces)
	}
}

func TestLifespanNeverIncreases(t *testing.T) {
	cfg := testConfig(t, corner)
	cfg.Enemy.FirePeriod = 0.3
	cfg.Player.Lifespan = 50
	s := newSim(t, cfg)

	lifeMap := ecs.NewMap[components.Lifespan](s.World())
	lifeOf := func() int {
		pq := systems.NewPlayerQuery(s.World())
		return lifeMap.Get(pq.Single().Entity).Value
	}
	prev := lifeOf()
	for i := 0; i < 300 && !s.Finished(); i++ {
		s.Step(Input{DT: 0.05})
		if s.Finished() {
			break
		}
		now := lifeOf()
		if now > prev {
			t.Fatalf("lifespan increased from %d to %d", prev, now)
		}
		prev = now
	}
}

func TestPerfPhasesRecorded(t *testing.T) {
	perf := telemetry.NewPerfCollector(10)
	s, err := New(testConfig(t, corner), Options{Perf: perf})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.LoadLevel(); err != nil {
		t.Fatal(err)
	}
	s.Step(Input{DT: 0.1})

	stats := perf.Stats()
	for _, phase := range telemetry.Phases {
		if _, ok := stats.PhaseAvg[phase]; !ok {
			t.Errorf("phase %q not recorded", phase)
		}
	}
}

func TestClearEmptiesWorld(t *testing.T) {
	s := newSim(t, testConfig(t, corner))
	s.Clear()
	if c := s.Counts(); c.Total != 0 {
		t.Errorf("expected empty world, got %+v", c)
	}
	if s.Loaded() {
		t.Error("cleared simulation should not report a loaded level")
	}
}

func TestPlayerStatus(t *testing.T) {
	cfg := testConfig(t, pickupRow)
	s := newSim(t, cfg)

	st, ok := s.PlayerStatus()
	if !ok || st.Boosted || st.Lifespan != cfg.Player.Lifespan || st.Pos != s.Player() {
		t.Fatalf("unexpected status %+v ok=%v", st, ok)
	}

	s.Step(Input{DT: 0.1, Held: systems.Keys(systems.KeyRight)})
	if st, _ := s.PlayerStatus(); !st.Boosted {
		t.Error("player should be boosted after the pickup")
	}

	s.Clear()
	if _, ok := s.PlayerStatus(); ok {
		t.Error("cleared world has no player status")
	}
}
