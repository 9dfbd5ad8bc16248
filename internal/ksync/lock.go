package ksync

import (
	"fmt"

	"github.com/inhibitor1217/cheetos/internal/irq"
	"github.com/inhibitor1217/cheetos/internal/sched"
	"github.com/inhibitor1217/cheetos/internal/thread"
)

// Lock_t is a non-recursive mutual-exclusion lock built on a semaphore
// initialized to one. The owner field lets Acquire and Release catch the
// two most common misuses: re-acquiring a lock the calling thread already
// holds, and releasing a lock some other thread holds.
type Lock_t struct {
	sem   Semaphore
	owner thread.Thread
}

// Lock is the exported handle.
type Lock = *Lock_t

// NewLock returns an unheld lock scheduled against s.
func NewLock(s sched.Scheduler) Lock {
	return &Lock_t{sem: NewSemaphore(s, 1)}
}

// assertNotExternalContext panics if called from within the interrupt
// dispatcher: an ISR must never block, so it may never acquire a lock
// (spec.md §4.9; mirrors sched.BlockCurrentThread's own assertion).
func assertNotExternalContext() {
	if irq.IsExternalHandlerContext() {
		panic("ksync: lock acquired from external interrupt context")
	}
}

// Acquire blocks until the lock is free, then takes it.
func (l *Lock_t) Acquire() {
	assertNotExternalContext()
	self := l.sem.sched.Current()
	if l.owner == self {
		panic(fmt.Sprintf("ksync: thread %s attempted to acquire a lock it already holds", self.Name()))
	}
	l.sem.Down()
	l.owner = self
}

// TryAcquire takes the lock without blocking, reporting whether it could.
func (l *Lock_t) TryAcquire() bool {
	assertNotExternalContext()
	self := l.sem.sched.Current()
	if l.owner == self {
		panic(fmt.Sprintf("ksync: thread %s attempted to acquire a lock it already holds", self.Name()))
	}
	if !l.sem.TryDown() {
		return false
	}
	l.owner = self
	return true
}

// Release gives up the lock. Panics if the calling thread does not hold it.
func (l *Lock_t) Release() {
	self := l.sem.sched.Current()
	if l.owner != self {
		panic(fmt.Sprintf("ksync: thread %s released a lock it does not hold", self.Name()))
	}
	l.owner = nil
	l.sem.Up()
}
