// Package signals carries one-tick messages between systems.
package signals

import "gonum.org/v1/gonum/spatial/r2"

// Mailbox holds signals sent during a tick until their consumer runs.
// Take delivers the first queued signal and discards the rest, so a consumer
// handles at most one signal per tick. Discards are counted, never hidden.
type Mailbox[T any] struct {
	queue   []T
	sent    int
	dropped int
}

// Send queues a signal.
func (m *Mailbox[T]) Send(v T) {
	m.queue = append(m.queue, v)
	m.sent++
}

// Take returns the first queued signal and empties the mailbox.
// The second return value is false when nothing was queued.
func (m *Mailbox[T]) Take() (T, bool) {
	var zero T
	if len(m.queue) == 0 {
		return zero, false
	}
	v := m.queue[0]
	m.dropped += len(m.queue) - 1
	clear(m.queue)
	m.queue = m.queue[:0]
	return v, true
}

// Pending returns the number of queued signals.
func (m *Mailbox[T]) Pending() int { return len(m.queue) }

// Sent returns the total number of signals ever sent.
func (m *Mailbox[T]) Sent() int { return m.sent }

// Dropped returns the total number of signals discarded by Take.
func (m *Mailbox[T]) Dropped() int { return m.dropped }

// Clear discards queued signals without counting them as dropped.
func (m *Mailbox[T]) Clear() {
	clear(m.queue)
	m.queue = m.queue[:0]
}

// Eject asks for a particle launched from Origin toward Target.
type Eject struct {
	Origin r2.Vec
	Target r2.Vec
	Player bool // Fired by the player rather than an enemy
}

// DropVirus asks for a virus at At.
type DropVirus struct {
	At r2.Vec
}

// Explode asks for an explosion at At.
type Explode struct {
	At r2.Vec
}
