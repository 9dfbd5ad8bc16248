package irq

import "sync"

// Mutex_t guards data that an external interrupt handler may touch. Lock
// disables interrupts for the duration of the critical section and restores
// the prior enable state when the guard is released, so a handler can never
// observe the mutex half-acquired.
type Mutex_t struct {
	mu sync.Mutex
}

// Mutex is the exported handle, matching the teacher's *_t export pattern.
type Mutex = *Mutex_t

// NewMutex returns a ready-to-use IRQ-mutex.
func NewMutex() Mutex { return &Mutex_t{} }

// Guard_t is returned by Lock; callers must call Unlock exactly once.
type Guard_t struct {
	m           *Mutex_t
	prevEnabled bool
}

// Lock snapshots the interrupt-enable flag, disables interrupts, and
// acquires the underlying critical section.
func (m *Mutex_t) Lock() *Guard_t {
	prev := AreEnabled()
	Disable()
	m.mu.Lock()
	return &Guard_t{m: m, prevEnabled: prev}
}

// Unlock releases the critical section and re-enables interrupts iff they
// were enabled at the matching Lock call.
func (g *Guard_t) Unlock() {
	g.m.mu.Unlock()
	if g.prevEnabled {
		Enable()
	}
}

// Peek reads through the mutex without locking. Callers MUST already have
// interrupts disabled, or must themselves be the interrupt dispatcher —
// this is how the registry's dispatch path reads a handler slot without
// paying for a second disable/enable bracket around code that is, by
// construction, already running with interrupts off. Peek does not assert
// the caller's interrupt state itself: the dispatcher is exempt from that
// rule (a CPU exception can land with interrupts still enabled), so the
// contract is enforced by review at call sites, not at runtime.
func Peek[T any](m *Mutex_t, read func() T) T {
	return read()
}
