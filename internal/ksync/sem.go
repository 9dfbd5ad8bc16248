// Package ksync implements the blocking synchronization primitives
// layered on top of internal/sched: a counting semaphore, a non-recursive
// lock built from one, and a sleep-mutex pairing a lock with the data it
// guards (spec.md §4.4 Locking).
//
// Every primitive here may put the calling thread to sleep, unlike
// internal/irq.Mutex_t, which only ever disables interrupts for a short
// critical section and never blocks. Use irq.Mutex for data an interrupt
// handler must also touch (spec.md §5's resource table); use these for
// data only ever touched from thread context.
package ksync

import (
	"github.com/inhibitor1217/cheetos/internal/irq"
	"github.com/inhibitor1217/cheetos/internal/list"
	"github.com/inhibitor1217/cheetos/internal/sched"
	"github.com/inhibitor1217/cheetos/internal/thread"
)

// Semaphore_t is a counting semaphore: Down blocks while the count is
// zero, Up increments it and wakes one waiter.
type Semaphore_t struct {
	sched   sched.Scheduler
	mu      irq.Mutex
	count   int
	waiters list.List
}

// Semaphore is the exported handle.
type Semaphore = *Semaphore_t

// NewSemaphore returns a semaphore with the given initial count, scheduled
// against s.
func NewSemaphore(s sched.Scheduler, count int) Semaphore {
	return &Semaphore_t{sched: s, mu: irq.NewMutex(), count: count, waiters: list.New()}
}

// Down blocks the calling thread until the count is positive, then
// consumes one unit.
func (sem *Semaphore_t) Down() {
	g := sem.mu.Lock()
	for sem.count == 0 {
		self := sem.sched.Current()
		self.StatusNode = list.Bind(self)
		sem.waiters.PushBack(self.StatusNode)
		g.Unlock()

		sem.sched.BlockCurrentThread()

		g = sem.mu.Lock()
	}
	sem.count--
	g.Unlock()
}

// TryDown consumes one unit without blocking, reporting whether it could.
func (sem *Semaphore_t) TryDown() bool {
	g := sem.mu.Lock()
	defer g.Unlock()
	if sem.count == 0 {
		return false
	}
	sem.count--
	return true
}

// Up adds one unit and wakes the longest-waiting blocked thread, if any.
func (sem *Semaphore_t) Up() {
	g := sem.mu.Lock()
	sem.count++
	n := sem.waiters.PopFront()
	g.Unlock()

	if n == nil {
		return
	}
	th := n.Elem().(thread.Thread)
	th.StatusNode = nil
	sem.sched.Unblock(th)
}
