package systems

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/cell/signals"
)

// Key is a logical game key, independent of the host's key codes.
type Key uint8

const (
	KeyUp Key = iota
	KeyDown
	KeyLeft
	KeyRight
	KeyFire
	KeyDropVirus
)

// KeySet is a bitmask of keys.
type KeySet uint8

// Has reports whether k is in the set.
func (s KeySet) Has(k Key) bool { return s&(1<<k) != 0 }

// With returns the set with k added.
func (s KeySet) With(k Key) KeySet { return s | 1<<k }

// Keys builds a set from keys.
func Keys(keys ...Key) KeySet {
	var s KeySet
	for _, k := range keys {
		s = s.With(k)
	}
	return s
}

// AnyMovement reports whether a direction key is in the set.
func (s KeySet) AnyMovement() bool {
	return s.Has(KeyUp) || s.Has(KeyDown) || s.Has(KeyLeft) || s.Has(KeyRight)
}

// Input is what the host reports for one frame.
type Input struct {
	DT       float64 // Seconds since the previous frame
	Held     KeySet  // Keys down this frame
	Pressed  KeySet  // Keys that went down this frame
	Cursor   r2.Vec  // Cursor in world coordinates
	CursorOK bool    // False when the cursor is outside the window
}

// PlayerInputSystem turns held direction keys into player velocity.
// Each held key sets its own axis. Velocity only returns to zero when no
// direction key is held, so releasing one of two keys keeps that axis moving.
type PlayerInputSystem struct {
	player  *PlayerQuery
	speed   float64
	boosted float64
}

// NewPlayerInputSystem creates the input system.
func NewPlayerInputSystem(player *PlayerQuery, speed, boosted float64) *PlayerInputSystem {
	return &PlayerInputSystem{player: player, speed: speed, boosted: boosted}
}

// Update applies the held keys.
func (s *PlayerInputSystem) Update(held KeySet) {
	p := s.player.Single()
	speed := s.speed
	if p.Boosted {
		speed = s.boosted
	}

	if held.Has(KeyLeft) {
		p.Vel.X = -speed
	}
	if held.Has(KeyRight) {
		p.Vel.X = speed
	}
	if held.Has(KeyUp) {
		p.Vel.Y = speed
	}
	if held.Has(KeyDown) {
		p.Vel.Y = -speed
	}
	if !held.AnyMovement() {
		p.Vel.X = 0
		p.Vel.Y = 0
	}
}

// PlayerFireSystem sends an eject signal from the player toward the cursor
// when the fire key goes down.
type PlayerFireSystem struct {
	player *PlayerQuery
	eject  *signals.Mailbox[signals.Eject]
}

// NewPlayerFireSystem creates the fire input system.
func NewPlayerFireSystem(player *PlayerQuery, eject *signals.Mailbox[signals.Eject]) *PlayerFireSystem {
	return &PlayerFireSystem{player: player, eject: eject}
}

// Update returns true when a signal was sent.
func (s *PlayerFireSystem) Update(in Input) bool {
	if !in.Pressed.Has(KeyFire) || !in.CursorOK {
		return false
	}
	p := s.player.Single()
	s.eject.Send(signals.Eject{Origin: p.Pos.Vec(), Target: in.Cursor, Player: true})
	return true
}

// VirusInputSystem sends a drop signal at the player's position.
type VirusInputSystem struct {
	player *PlayerQuery
	drop   *signals.Mailbox[signals.DropVirus]
}

// NewVirusInputSystem creates the drop input system.
func NewVirusInputSystem(player *PlayerQuery, drop *signals.Mailbox[signals.DropVirus]) *VirusInputSystem {
	return &VirusInputSystem{player: player, drop: drop}
}

// Update returns true when a signal was sent.
func (s *VirusInputSystem) Update(pressed KeySet) bool {
	if !pressed.Has(KeyDropVirus) {
		return false
	}
	p := s.player.Single()
	s.drop.Send(signals.DropVirus{At: p.Pos.Vec()})
	return true
}
