// Package sched implements the cooperative/preemptive thread scheduler of
// spec.md §4.8: a FIFO ready list, an idle thread run whenever the ready
// list is empty, and tick-driven preemption at a fixed time slice.
//
// internal/thread already resolved the hard part — modeling a kernel
// thread as a goroutine parked on a channel instead of a literal
// register-level context switch (see thread.go's package comment). This
// package owns the scheduling *policy* on top of that: which thread runs
// next, and when a running thread must give way to another. Schedule is
// the single choke point every other entry point (Tick, YieldCurrentThread,
// BlockCurrentThread, thread exit) funnels through, exactly mirroring the
// teacher's single `schedule()` routine that every blocking primitive
// eventually calls.
package sched

import (
	"fmt"

	"github.com/inhibitor1217/cheetos/internal/irq"
	"github.com/inhibitor1217/cheetos/internal/list"
	"github.com/inhibitor1217/cheetos/internal/mem"
	"github.com/inhibitor1217/cheetos/internal/thread"
)

// TimeSlice is the number of timer ticks a thread may run before Tick
// forces a preemptive reschedule (spec.md §4.8 Preemption).
const TimeSlice = 4

// Scheduler_t owns every piece of scheduling state: the ready list, the
// all-threads list (diagnostics and exit-time bookkeeping), the idle
// thread, and the running counters. The ready/all lists are guarded by an
// IRQ-mutex since the timer ISR walks them from external-interrupt context
// (spec.md §5 resource table).
type Scheduler_t struct {
	mu    irq.Mutex
	ready list.List
	all   list.List

	main    thread.Thread
	idle    thread.Thread
	current thread.Thread

	ticks       uint64
	idleTicks   uint64
	kernelTicks uint64

	sleepers list.List

	alloc mem.Allocator
}

// sleeper_t records a thread waiting for Sleep's requested tick count to
// elapse (spec.md §4.8 timer::sleep).
type sleeper_t struct {
	th     thread.Thread
	wakeAt uint64
}

// Scheduler is the exported handle, and the process-wide singleton
// cmd/cheetos installs during boot (spec.md §9 Global singletons).
type Scheduler = *Scheduler_t

// New adopts the calling stack as the main thread (spec.md §4.7 Adoption)
// and returns a scheduler ready for Start. alloc supplies stack pages for
// every thread spawned afterward, including the idle thread.
func New(alloc mem.Allocator) Scheduler {
	s := &Scheduler_t{
		mu:       irq.NewMutex(),
		ready:    list.New(),
		all:      list.New(),
		sleepers: list.New(),
		alloc:    alloc,
	}
	m := thread.NewMain()
	s.main = m
	s.current = m
	s.addAllLocked(m)
	return s
}

// Main returns the adopted main thread.
func (s *Scheduler_t) Main() thread.Thread { return s.main }

// Current returns whichever thread is presently running.
func (s *Scheduler_t) Current() thread.Thread { return s.current }

// IdleTicks and KernelTicks report the diagnostic counters Tick maintains.
func (s *Scheduler_t) IdleTicks() uint64   { return s.idleTicks }
func (s *Scheduler_t) KernelTicks() uint64 { return s.kernelTicks }

// ReadyLen and AllLen are diagnostic-only, mirroring list.List_t.Len's own
// "optional, for diagnostics" status (spec.md §3 Scheduler).
func (s *Scheduler_t) ReadyLen() int { return s.ready.Len() }
func (s *Scheduler_t) AllLen() int   { return s.all.Len() }

func (s *Scheduler_t) addAllLocked(th thread.Thread) {
	th.AllNode = list.Bind(th)
	s.all.PushBack(th.AllNode)
}

func (s *Scheduler_t) removeAllLocked(th thread.Thread) {
	c := s.all.CursorFront()
	for c.Current() != nil {
		if c.Current() == th.AllNode {
			c.RemoveCurrent()
			th.AllNode = nil
			return
		}
		c.MoveNext()
	}
}

func (s *Scheduler_t) enqueueReadyLocked(th thread.Thread) {
	th.Status = thread.StatusReady
	th.StatusNode = list.Bind(th)
	s.ready.PushBack(th.StatusNode)
}

// pickNextLocked dequeues the head of the ready list, or the idle thread
// if the ready list is empty (spec.md §4.8 Schedule, step 1).
func (s *Scheduler_t) pickNextLocked() thread.Thread {
	n := s.ready.PopFront()
	if n == nil {
		return s.idle
	}
	th := n.Elem().(thread.Thread)
	th.StatusNode = nil
	return th
}

func (s *Scheduler_t) afterResume(th thread.Thread) {
	th.Status = thread.StatusRunning
	th.TicksInSlice = 0
}

// Start spawns the idle thread and enables interrupts (spec.md §4.8
// Start). The idle thread is never placed on the ready list — pickNext
// falls back to it directly — so it sits parked at Launch's initial wait
// until the first time the ready list runs dry.
func (s *Scheduler_t) Start() {
	idle, ok := thread.New(s.alloc, "idle", 0, s.idleLoop)
	if !ok {
		panic("sched: failed to allocate stack for the idle thread")
	}
	g := s.mu.Lock()
	s.addAllLocked(idle)
	g.Unlock()
	s.idle = idle
	idle.Launch(s.afterResume, s.exitThread)

	irq.Enable()
}

func (s *Scheduler_t) idleLoop() {
	for {
		s.BlockCurrentThread()
		halter.Halt()
	}
}

// Spawn allocates a thread, makes it Ready, and places it on the ready
// list (spec.md §4.7 Spawn).
func (s *Scheduler_t) Spawn(name string, priority int, fn func()) (thread.Thread, bool) {
	th, ok := thread.New(s.alloc, name, priority, fn)
	if !ok {
		return nil, false
	}
	g := s.mu.Lock()
	s.addAllLocked(th)
	g.Unlock()

	th.Launch(s.afterResume, s.exitThread)
	s.Unblock(th)
	return th, true
}

// Schedule is the single choke point every scheduling decision funnels
// through: pick the next thread to run and, if it differs from the
// caller, hand control to it and park the caller until it is chosen again
// (spec.md §4.8 Schedule).
func (s *Scheduler_t) Schedule() {
	self := s.current

	g := s.mu.Lock()
	next := s.pickNextLocked()
	s.current = next
	g.Unlock()

	if next != self {
		next.Resume()
		self.Park()
	}
	s.afterResume(s.current)
}

// Tick is driven by the timer interrupt handler (already running with
// interrupts disabled). It charges one tick to whichever thread is
// current and, once it has used its full time slice, forces a reschedule
// (spec.md §4.8 Preemption, TIME_SLICE = 4).
func (s *Scheduler_t) Tick() {
	g := s.mu.Lock()
	s.ticks++
	g.Unlock()
	s.wakeDueSleepers()

	th := s.current
	if th == s.idle {
		s.idleTicks++
		return
	}
	s.kernelTicks++

	th.TicksInSlice++
	if th.TicksInSlice < TimeSlice {
		return
	}
	th.TicksInSlice = 0

	g = s.mu.Lock()
	s.enqueueReadyLocked(th)
	g.Unlock()

	s.Schedule()
}

// Sleep blocks the current thread until at least ticks timer ticks have
// elapsed (spec.md §4.8 timer::sleep). Sleeping zero or fewer ticks is a
// same-tick no-op: the caller never blocks.
func (s *Scheduler_t) Sleep(ticks int) {
	if ticks <= 0 {
		return
	}
	self := s.current
	g := s.mu.Lock()
	sl := &sleeper_t{th: self, wakeAt: s.ticks + uint64(ticks)}
	s.sleepers.PushBack(list.Bind(sl))
	g.Unlock()

	s.BlockCurrentThread()
}

// wakeDueSleepers unblocks every sleeper whose requested tick count has
// elapsed. Called from Tick, which may run from external-interrupt
// context, so the scan itself happens under the scheduler's IRQ-mutex and
// the resulting Unblock calls happen after releasing it.
func (s *Scheduler_t) wakeDueSleepers() {
	g := s.mu.Lock()
	var due []*sleeper_t
	c := s.sleepers.CursorFront()
	for c.Current() != nil {
		sl := c.Current().Elem().(*sleeper_t)
		if sl.wakeAt <= s.ticks {
			due = append(due, sl)
			c.RemoveCurrent()
			continue
		}
		c.MoveNext()
	}
	g.Unlock()

	for _, sl := range due {
		s.Unblock(sl.th)
	}
}

// YieldCurrentThread voluntarily gives up the remainder of the current
// thread's time slice.
func (s *Scheduler_t) YieldCurrentThread() {
	th := s.current
	g := s.mu.Lock()
	s.enqueueReadyLocked(th)
	g.Unlock()
	s.Schedule()
}

// BlockCurrentThread parks the current thread without putting it back on
// the ready list. The caller (a semaphore, lock, or the idle loop) must
// already have recorded where this thread is waiting, with interrupts
// disabled, before calling — Unblock is how it comes back. Panics if called
// from external-interrupt context, where no thread may block.
func (s *Scheduler_t) BlockCurrentThread() {
	if irq.IsExternalHandlerContext() {
		panic("sched: BlockCurrentThread called from external interrupt context")
	}
	s.current.Status = thread.StatusBlocked
	s.Schedule()
}

// Unblock moves th from Blocked to Ready and places it on the ready list
// (spec.md §4.8 Unblock). The caller is responsible for having already
// removed th from whatever wait list it was parked on. Unblock on the
// idle thread is a no-op: idle is never ready-list resident, Schedule's
// fallback picks it directly.
func (s *Scheduler_t) Unblock(th thread.Thread) {
	if th == s.idle {
		return
	}
	if th.Status != thread.StatusBlocked {
		panic(fmt.Sprintf("sched: Unblock on thread %s which is not Blocked", th.Name()))
	}
	g := s.mu.Lock()
	s.enqueueReadyLocked(th)
	g.Unlock()
}

// exitThread is wired as every spawned thread's Launch onExit hook,
// mirroring exit_current_thread being the last thing
// kernel_thread_trampoline calls once a thread's entry function returns
// (spec.md §4.7 Exit). The main and idle threads must never reach it.
func (s *Scheduler_t) exitThread(th thread.Thread) {
	if th == s.main || th == s.idle {
		panic(fmt.Sprintf("sched: %s thread must never exit", th.Name()))
	}

	g := s.mu.Lock()
	th.Status = thread.StatusDying
	s.removeAllLocked(th)
	next := s.pickNextLocked()
	s.current = next
	g.Unlock()

	if next != th {
		next.Resume()
	}

	// The reclamation step: free this thread's stack only once control has
	// already moved to whoever runs next. Never reached for main or idle.
	if first, count, owns := th.Pages(); owns {
		s.alloc.FreePages(first, count)
	}
}
