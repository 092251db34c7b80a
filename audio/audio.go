// Package audio plays short synthesised cues for game events.
package audio

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"

	"github.com/pthm-cable/cell/config"
)

// Cue is a game event with a sound.
type Cue int

const (
	CueFire Cue = iota
	CueExplode
	CueHit
	CuePickup
	CueVictory
	CueGameOver
)

func (c Cue) String() string {
	switch c {
	case CueFire:
		return "fire"
	case CueExplode:
		return "explode"
	case CueHit:
		return "hit"
	case CuePickup:
		return "pickup"
	case CueVictory:
		return "victory"
	case CueGameOver:
		return "game_over"
	default:
		return fmt.Sprintf("cue(%d)", int(c))
	}
}

// Sound builds the streamer for a cue. Every cue is finite.
func Sound(c Cue, rate beep.SampleRate, rng *rand.Rand) beep.Streamer {
	const ms = time.Millisecond
	switch c {
	case CueFire:
		d := 90 * ms
		return gain(NewEnvelope(NewSweep(900, -4000, d, WaveSquare, rate), d, 2*ms, 60*ms, rate), 0.25)
	case CueExplode:
		d := 350 * ms
		noise := NewEnvelope(NewOscillator(0, d, WaveNoise, rate, rng), d, 5*ms, 300*ms, rate)
		rumble := NewEnvelope(NewOscillator(70, d, WaveSine, rate, nil), d, 5*ms, 250*ms, rate)
		return beep.Mix(gain(noise, 0.35), gain(rumble, 0.4))
	case CueHit:
		d := 120 * ms
		return gain(NewEnvelope(NewOscillator(110, d, WaveSaw, rate, nil), d, 2*ms, 80*ms, rate), 0.3)
	case CuePickup:
		d := 160 * ms
		fund := NewEnvelope(NewOscillator(880, d, WaveSine, rate, nil), d, 5*ms, 120*ms, rate)
		over := NewEnvelope(NewOscillator(1760, d, WaveSine, rate, nil), d, 5*ms, 60*ms, rate)
		return beep.Mix(gain(fund, 0.3), gain(over, 0.15))
	case CueVictory:
		return arpeggio(rate, []float64{523.25, 659.25, 783.99, 1046.5}, 110*ms)
	case CueGameOver:
		return arpeggio(rate, []float64{392, 311.13, 261.63, 196}, 160*ms)
	default:
		return beep.Silence(0)
	}
}

// arpeggio plays notes one after another.
func arpeggio(rate beep.SampleRate, notes []float64, each time.Duration) beep.Streamer {
	parts := make([]beep.Streamer, len(notes))
	for i, f := range notes {
		parts[i] = gain(NewEnvelope(NewOscillator(f, each, WaveSine, rate, nil), each, 5*time.Millisecond, each/2, rate), 0.3)
	}
	return beep.Seq(parts...)
}

// Player mixes cues onto the speaker. A disabled or nil Player does nothing.
type Player struct {
	mu          sync.Mutex
	enabled     bool
	rate        beep.SampleRate
	volume      float64
	mixer       *beep.Mixer
	rng         *rand.Rand
	initialized bool
	played      map[Cue]int
}

// New creates a player for cfg. Call Init before Play.
func New(cfg config.AudioConfig, seed int64) *Player {
	return &Player{
		enabled: cfg.Enabled,
		rate:    beep.SampleRate(cfg.SampleRate),
		volume:  cfg.Volume,
		mixer:   &beep.Mixer{},
		rng:     rand.New(rand.NewSource(seed)),
		played:  make(map[Cue]int),
	}
}

// Init opens the speaker. A failure disables the player rather than the game.
func (p *Player) Init() error {
	if p == nil || !p.enabled {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}
	if err := speaker.Init(p.rate, p.rate.N(100*time.Millisecond)); err != nil {
		p.enabled = false
		return fmt.Errorf("initializing speaker: %w", err)
	}
	speaker.Play(&effects.Volume{Streamer: p.mixer, Base: 2, Volume: p.volume})
	p.initialized = true
	slog.Info("audio initialized", "sample_rate", int(p.rate), "volume", p.volume)
	return nil
}

// Play queues a cue.
func (p *Player) Play(c Cue) {
	if p == nil || !p.enabled {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.played[c]++
	if !p.initialized {
		return
	}
	s := Sound(c, p.rate, p.rng)
	speaker.Lock()
	p.mixer.Add(s)
	speaker.Unlock()
}

// Played returns how many times c was requested while enabled.
func (p *Player) Played(c Cue) int {
	if p == nil {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.played[c]
}

// Close stops all sounds and releases the speaker.
func (p *Player) Close() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	speaker.Lock()
	p.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
	p.initialized = false
}
