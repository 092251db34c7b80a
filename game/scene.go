package game

import (
	"fmt"

	"github.com/pthm-cable/cell/sim"
	"github.com/pthm-cable/cell/state"
	"github.com/pthm-cable/cell/systems"
	"github.com/pthm-cable/cell/telemetry"
)

// Button is a menu choice.
type Button int

const (
	ButtonNone Button = iota
	ButtonPlay
	ButtonPlayAgain
	ButtonNextLevel
	ButtonResume
	ButtonQuit
)

// String returns the button label.
func (b Button) String() string {
	switch b {
	case ButtonNone:
		return ""
	case ButtonPlay:
		return "Play"
	case ButtonPlayAgain:
		return "Play Again"
	case ButtonNextLevel:
		return "Next Level"
	case ButtonResume:
		return "Resume"
	case ButtonQuit:
		return "Quit"
	default:
		return fmt.Sprintf("button(%d)", int(b))
	}
}

// SplashTitle is shown on the splash screen.
const SplashTitle = "C E L L"

// HUDView is the in-game status line.
type HUDView struct {
	Score       int
	Level       int // 1-based index of the level being played
	LevelCount  int
	Lifespan    int
	MaxLifespan int
	Boosted     bool
	Elapsed     float64
}

// MenuView is what the splash and menu screens show.
type MenuView struct {
	Title     string
	Score     int
	ShowScore bool
	Buttons   []Button
}

// Scene is everything a host needs to draw one frame.
type Scene struct {
	State    state.ID
	Sprites  []sim.Sprite
	HUD      HUDView
	Menu     MenuView
	Perf     telemetry.PerfStats
	Registry *systems.SystemRegistry

	ArenaW, ArenaH float64
	Grid           int
}

// menuButtons returns the buttons offered after a round ends with msg.
func menuButtons(msg string) []Button {
	switch msg {
	case sim.OutcomeNextLevel.String():
		return []Button{ButtonNextLevel, ButtonQuit}
	case pausedMessage:
		return []Button{ButtonResume, ButtonQuit}
	default:
		return []Button{ButtonPlayAgain, ButtonQuit}
	}
}
