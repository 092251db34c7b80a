// Package config provides configuration loading and access for the game.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all game configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Arena     ArenaConfig     `yaml:"arena"`
	Cell      CellConfig      `yaml:"cell"`
	Player    PlayerConfig    `yaml:"player"`
	Enemy     EnemyConfig     `yaml:"enemy"`
	Particle  ParticleConfig  `yaml:"particle"`
	Virus     VirusConfig     `yaml:"virus"`
	Explosion ExplosionConfig `yaml:"explosion"`
	Score     ScoreConfig     `yaml:"score"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Audio     AudioConfig     `yaml:"audio"`
	Headless  HeadlessConfig  `yaml:"headless"`
	Levels    []string        `yaml:"levels"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	TargetFPS int    `yaml:"target_fps"`
	Title     string `yaml:"title"`
}

// ArenaConfig holds the world dimensions. The origin is the arena centre, y up.
type ArenaConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	Grid   int     `yaml:"grid"` // Tiles per row and per column of a level layout
}

// CellConfig holds shared cell parameters.
type CellConfig struct {
	Size float64 `yaml:"size"` // 0 = tile size; also the particle launch offset
}

// PlayerConfig holds player movement and health.
type PlayerConfig struct {
	Speed        float64 `yaml:"speed"`
	BoostedSpeed float64 `yaml:"boosted_speed"` // Speed while carrying a Speed effect
	Lifespan     int     `yaml:"lifespan"`
}

// EnemyConfig holds enemy fire cadence and health.
type EnemyConfig struct {
	FirePeriod float64 `yaml:"fire_period"` // Seconds between shots
	Lifespan   int     `yaml:"lifespan"`
}

// ParticleConfig holds projectile parameters.
type ParticleConfig struct {
	Speed    float64 `yaml:"speed"`
	Size     float64 `yaml:"size"`
	Lifespan int     `yaml:"lifespan"` // Wall bounces survived
}

// VirusConfig holds virus parameters.
type VirusConfig struct {
	Fuse float64 `yaml:"fuse"` // Seconds until detonation
	Size float64 `yaml:"size"`
}

// ExplosionConfig holds explosion parameters.
type ExplosionConfig struct {
	Fuse           float64 `yaml:"fuse"`
	Size           float64 `yaml:"size"`            // Visual size
	FootprintScale float64 `yaml:"footprint_scale"` // Collision size = size * this
}

// ScoreConfig holds score awards.
type ScoreConfig struct {
	EnemyDefeated int `yaml:"enemy_defeated"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	PerfWindow int `yaml:"perf_window"` // Ticks in the rolling perf window
}

// AudioConfig holds sound settings.
type AudioConfig struct {
	Enabled    bool    `yaml:"enabled"`
	SampleRate int     `yaml:"sample_rate"`
	Volume     float64 `yaml:"volume"` // beep Volume exponent, 0 = unchanged
}

// HeadlessConfig holds the scripted driver used when no window is open.
type HeadlessConfig struct {
	DT         float64 `yaml:"dt"`
	FireEvery  int     `yaml:"fire_every"`  // Ticks between scripted shots (0 = never)
	MoveEvery  int     `yaml:"move_every"`  // Ticks between direction changes
	VirusEvery int     `yaml:"virus_every"` // Ticks between scripted virus drops (0 = never)
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	TileSize   float64 // Arena.Width / Arena.Grid
	CellSize   float64 // Cell.Size, or TileSize when unset
	HalfWidth  float64
	HalfHeight float64
	LevelCount int
	ScreenW32  float32
	ScreenH32  float32
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg, err := Defaults()
	if err != nil {
		return nil, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in the file. A levels list replaces the default list.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Defaults returns the embedded default configuration with derived values computed.
func Defaults() (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	cfg.computeDerived()
	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	if c.Arena.Grid > 0 {
		c.Derived.TileSize = c.Arena.Width / float64(c.Arena.Grid)
	}
	c.Derived.CellSize = c.Cell.Size
	if c.Derived.CellSize == 0 {
		c.Derived.CellSize = c.Derived.TileSize
	}
	c.Derived.HalfWidth = c.Arena.Width / 2
	c.Derived.HalfHeight = c.Arena.Height / 2
	c.Derived.LevelCount = len(c.Levels)
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)
}

// Validate reports every parameter that would make the game ill-defined.
func (c *Config) Validate() error {
	var errs []error
	positive := func(name string, v float64) {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", name, v))
		}
	}
	positive("arena.width", c.Arena.Width)
	positive("arena.height", c.Arena.Height)
	positive("arena.grid", float64(c.Arena.Grid))
	positive("player.speed", c.Player.Speed)
	positive("player.lifespan", float64(c.Player.Lifespan))
	positive("enemy.fire_period", c.Enemy.FirePeriod)
	positive("enemy.lifespan", float64(c.Enemy.Lifespan))
	positive("particle.speed", c.Particle.Speed)
	positive("particle.size", c.Particle.Size)
	positive("particle.lifespan", float64(c.Particle.Lifespan))
	positive("virus.fuse", c.Virus.Fuse)
	positive("virus.size", c.Virus.Size)
	positive("explosion.fuse", c.Explosion.Fuse)
	positive("explosion.size", c.Explosion.Size)
	positive("explosion.footprint_scale", c.Explosion.FootprintScale)

	if len(c.Levels) == 0 {
		errs = append(errs, errors.New("levels: at least one level is required"))
	}
	want := c.Arena.Grid * c.Arena.Grid
	for i, l := range c.Levels {
		if n := len(strings.ReplaceAll(l, "\n", "")); c.Arena.Grid > 0 && n != want {
			errs = append(errs, fmt.Errorf("levels[%d]: %d tiles, want %d", i, n, want))
		}
	}
	return errors.Join(errs...)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
