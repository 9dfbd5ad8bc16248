package ksync

import "github.com/inhibitor1217/cheetos/internal/sched"

// SleepMutex_t pairs a Lock with the data it guards, the way
// internal/irq.Mutex_t pairs an IRQ-disabling critical section with
// nothing (callers read through Peek instead) — here the guarded value
// lives right alongside the lock, and the only way to reach it is through
// a held SleepMutexGuard_t (spec.md §4.4 sleep-mutex).
type SleepMutex_t[T any] struct {
	lock Lock
	data T
}

// SleepMutex is the exported handle.
type SleepMutex[T any] = *SleepMutex_t[T]

// NewSleepMutex wraps data behind a lock scheduled against s.
func NewSleepMutex[T any](s sched.Scheduler, data T) SleepMutex[T] {
	return &SleepMutex_t[T]{lock: NewLock(s), data: data}
}

// SleepMutexGuard_t is returned by Lock; callers must call Unlock exactly
// once.
type SleepMutexGuard_t[T any] struct {
	m *SleepMutex_t[T]
}

// SleepMutexGuard is the exported handle.
type SleepMutexGuard[T any] = *SleepMutexGuard_t[T]

// Lock blocks until the mutex is free and returns a guard over its data.
func (m *SleepMutex_t[T]) Lock() SleepMutexGuard[T] {
	m.lock.Acquire()
	return &SleepMutexGuard_t[T]{m: m}
}

// TryLock attempts to acquire the mutex without blocking.
func (m *SleepMutex_t[T]) TryLock() (SleepMutexGuard[T], bool) {
	if !m.lock.TryAcquire() {
		return nil, false
	}
	return &SleepMutexGuard_t[T]{m: m}, true
}

// Data returns a pointer to the guarded value, valid until Unlock.
func (g *SleepMutexGuard_t[T]) Data() *T { return &g.m.data }

// Unlock releases the mutex.
func (g *SleepMutexGuard_t[T]) Unlock() { g.m.lock.Release() }
