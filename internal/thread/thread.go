// Package thread implements the thread record described in spec.md §3/§4.7:
// a small control block living at the base of a 16 KiB stack region.
//
// A genuine register-level context switch (saving/restoring the callee-saved
// registers and swapping the live stack pointer, spec.md §4.7 "Context
// switch") can only be exercised on real ring-0 hardware — attempting it
// from a hosted `go test` process would corrupt the Go runtime's own
// understanding of its goroutine stacks, since that stack memory is no
// longer one the runtime's scheduler or GC knows about. internal/arch/amd64
// carries the literal asm shim for the record (see switch_amd64.s) the way
// a freestanding build would use it; the scheduler in this module (and in
// internal/sched) instead gives each Thread_t its own goroutine, parked on a
// channel until the scheduler "switches" to it. Because cheetos enforces
// single-CPU, non-preemptive-between-switch-points semantics (spec.md §5:
// exactly one thread runs at a time, with scheduling points only at
// block/yield/exit/tick-driven-preemption), the current thread is modeled
// the same way a single-core kernel would: one pointer, the scheduler's
// current field, updated at every scheduling point and read through
// sched.Scheduler.Current — the logical equivalent of masking the one
// hardware stack pointer a single core has.
package thread

import (
	"fmt"
	"sync/atomic"

	"github.com/inhibitor1217/cheetos/internal/list"
	"github.com/inhibitor1217/cheetos/internal/mem"
)

// Magic distinguishes a valid thread record from corrupted memory.
const Magic = 0xcd6abf4b

// StackSize is the size of a thread's 16 KiB-aligned stack region.
const StackSize = 16 * 1024

// StackPages is StackSize in 4 KiB pages.
const StackPages = StackSize / mem.PageSize

// NameMaxLen is the fixed width of a thread's name field.
const NameMaxLen = 16

// Status_t is a thread's scheduling state (spec.md §3).
type Status_t int

const (
	StatusRunning Status_t = iota
	StatusReady
	StatusBlocked
	StatusDying
)

func (s Status_t) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusReady:
		return "ready"
	case StatusBlocked:
		return "blocked"
	case StatusDying:
		return "dying"
	default:
		return fmt.Sprintf("Status_t(%d)", int(s))
	}
}

// Thread_t is the thread record (spec.md §3 Thread).
type Thread_t struct {
	ID           uint64
	Status       Status_t
	Priority     int
	TicksInSlice int
	Magic        uint32

	name string

	// AllNode links this thread into the scheduler's all-threads list;
	// StatusNode links it into the ready list or, when Blocked, whichever
	// sync primitive's wait list it is parked on (at most one at a time,
	// spec.md §3 Scheduler invariant).
	AllNode    *list.Node_t
	StatusNode *list.Node_t

	pages     mem.PageID
	pageCount int

	resume chan struct{}
	exited chan struct{}
	fn     func()
}

// Thread is the exported handle.
type Thread = *Thread_t

var nextID atomic.Uint64

func truncName(name string) string {
	if len(name) > NameMaxLen {
		return name[:NameMaxLen]
	}
	return name
}

// Name returns the thread's (possibly truncated) name.
func (t *Thread_t) Name() string { return t.name }

// AssertMagic panics if the thread record's magic value does not match,
// signalling stack-overflow corruption or misidentification.
func (t *Thread_t) AssertMagic() {
	if t.Magic != Magic {
		panic(fmt.Sprintf("thread: corrupted thread record (magic %#x, want %#x)", t.Magic, Magic))
	}
}

// NewMain adopts the bootstrap stack as the main thread (spec.md §4.7
// Adoption): no pages are allocated since the bootloader already set up
// this stack.
func NewMain() Thread {
	return &Thread_t{
		ID:     nextID.Add(1),
		Status: StatusRunning,
		name:   truncName("main"),
		Magic:  Magic,
		AllNode: nil,
		resume:  make(chan struct{}, 1),
		exited:  make(chan struct{}),
	}
}

// New allocates a fresh thread record plus its stack pages from alloc and
// wraps fn as the thread's entry point (spec.md §4.7 Spawn, steps 1-4). The
// returned thread starts Blocked; the caller (internal/sched.Spawn) is
// responsible for unblocking it.
func New(alloc mem.Allocator, name string, priority int, fn func()) (Thread, bool) {
	first, ok := alloc.GetPagesAligned(StackPages, StackPages, mem.Zero)
	if !ok {
		return nil, false
	}
	return &Thread_t{
		ID:        nextID.Add(1),
		Status:    StatusBlocked,
		Priority:  priority,
		Magic:     Magic,
		name:      truncName(name),
		pages:     first,
		pageCount: StackPages,
		resume:    make(chan struct{}, 1),
		exited:    make(chan struct{}),
		fn:        fn,
	}, true
}

// Pages reports the stack pages owned by t, and whether t owns any (the
// main and idle threads may or may not, depending on how they were built).
func (t *Thread_t) Pages() (mem.PageID, int, bool) {
	return t.pages, t.pageCount, t.pageCount > 0
}

// Launch starts t's goroutine. The goroutine parks immediately on t.resume
// (standing in for the "SwitchEntryFrame" on a freshly spawned stack — the
// first thing a new thread does is wait to actually be scheduled); once
// released, onResume runs (mirroring switch_entry's call to schedule_tail),
// then fn, then onExit (mirroring kernel_thread_trampoline calling
// exit_current_thread once fn returns).
func (t *Thread_t) Launch(onResume func(Thread), onExit func(Thread)) {
	if t.fn == nil {
		panic("thread: Launch on a thread with no entry point (the main thread is never Launch'd)")
	}
	go func() {
		<-t.resume
		onResume(t)
		t.fn()
		onExit(t)
		close(t.exited)
	}()
}

// Resume releases a thread parked either at Launch's initial wait or inside
// a scheduling point, letting its goroutine proceed. Scheduler-internal;
// callers outside internal/sched should go through sched.Schedule instead.
func (t *Thread_t) Resume() {
	select {
	case t.resume <- struct{}{}:
	default:
	}
}

// Park blocks the calling goroutine (which must be t's own) until Resume is
// called again. internal/sched calls this at every scheduling point to
// model "this thread is not presently running".
func (t *Thread_t) Park() {
	<-t.resume
}

// Wait blocks until t's goroutine has returned from fn and onExit has run.
func (t *Thread_t) Wait() { <-t.exited }
