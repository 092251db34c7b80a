package game

import "github.com/pthm-cable/cell/sim"

// Frame is what a host reports for one frame.
type Frame struct {
	Input  sim.Input
	Escape bool   // Pause request while playing
	Button Button // Menu button chosen this frame, if any
}

// Host is a window, terminal or script that feeds frames to the game and
// shows its scenes.
type Host interface {
	Poll() Frame
	Draw(scene *Scene)
	ShouldClose() bool
	Close() error
}
