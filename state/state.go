// Package state is the application state machine (splash, menu, game).
package state

import (
	"errors"
	"fmt"
	"time"
)

// ID identifies an application state.
type ID int

const (
	None ID = iota
	Splash
	Menu
	Game
)

func (id ID) String() string {
	switch id {
	case None:
		return "none"
	case Splash:
		return "splash"
	case Menu:
		return "menu"
	case Game:
		return "game"
	default:
		return fmt.Sprintf("state(%d)", int(id))
	}
}

var (
	// ErrAlreadyQueued is returned when a transition is requested while
	// another one is waiting to be applied.
	ErrAlreadyQueued = errors.New("state: transition already queued")
	// ErrAlreadyInState is returned when the requested state is current.
	ErrAlreadyInState = errors.New("state: already in requested state")
)

// Hooks are the callbacks of one state. Any may be nil.
type Hooks[T any] struct {
	Enter  func(ctx T)
	Update func(ctx T)
	Exit   func(ctx T)
}

// Transition records one applied state change.
type Transition struct {
	From, To ID
}

// Machine runs the enter, update and exit hooks of the current state.
// Transitions requested with Set are applied by Apply, which the outer loop
// calls once per frame, so a state never changes halfway through an update.
type Machine[T any] struct {
	hooks       map[ID]Hooks[T]
	current     ID
	pending     ID
	timeInState time.Duration
}

// NewMachine creates a machine with no current state.
func NewMachine[T any]() *Machine[T] {
	return &Machine[T]{hooks: make(map[ID]Hooks[T])}
}

// Register sets the hooks for id, replacing any earlier registration.
func (m *Machine[T]) Register(id ID, h Hooks[T]) {
	if id == None {
		panic("cell: cannot register hooks for the none state")
	}
	m.hooks[id] = h
}

// Set queues a transition to next. Only one transition may be queued per
// frame; a second request is rejected, not merged.
func (m *Machine[T]) Set(next ID) error {
	if _, ok := m.hooks[next]; !ok {
		panic(fmt.Sprintf("cell: transition to unregistered state %v", next))
	}
	if m.pending != None {
		return fmt.Errorf("%w: %v pending, %v requested", ErrAlreadyQueued, m.pending, next)
	}
	if next == m.current {
		return fmt.Errorf("%w: %v", ErrAlreadyInState, next)
	}
	m.pending = next
	return nil
}

// Pending returns the queued state, or None.
func (m *Machine[T]) Pending() ID { return m.pending }

// Apply runs Exit of the current state then Enter of the queued one.
// It returns the transition and true when one happened.
func (m *Machine[T]) Apply(ctx T) (Transition, bool) {
	if m.pending == None {
		return Transition{}, false
	}
	tr := Transition{From: m.current, To: m.pending}
	m.pending = None

	if h, ok := m.hooks[tr.From]; ok && h.Exit != nil {
		h.Exit(ctx)
	}
	m.current = tr.To
	m.timeInState = 0
	if h := m.hooks[tr.To]; h.Enter != nil {
		h.Enter(ctx)
	}
	return tr, true
}

// Update runs the current state's Update hook.
func (m *Machine[T]) Update(ctx T, dt time.Duration) {
	m.timeInState += dt
	if h, ok := m.hooks[m.current]; ok && h.Update != nil {
		h.Update(ctx)
	}
}

// Current returns the active state.
func (m *Machine[T]) Current() ID { return m.current }

// TimeInState returns the time since the active state was entered.
func (m *Machine[T]) TimeInState() time.Duration { return m.timeInState }
