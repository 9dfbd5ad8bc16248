// Package irq implements interrupt control, the IRQ-mutex critical-section
// primitive, and the 256-entry handler registry plus its internal/external
// dispatch logic (spec.md §4.3, §4.4).
package irq

import "sync/atomic"

// hwController is the architecture hook for reading/changing the interrupt
// flag. Production code wires the real amd64 implementation via
// SetController during boot (internal/arch/amd64.Controller); hosted tests
// run against the software-only default below, the same way gopheros's vmm
// package takes a SetFrameAllocator hook instead of calling the hardware
// directly, so the Go-level logic can be exercised without a CPU that
// actually has an interrupt flag to toggle.
type hwController interface {
	AreEnabled() bool
	Enable()
	Disable()
}

type softController struct {
	enabled atomic.Bool
}

func (s *softController) AreEnabled() bool { return s.enabled.Load() }
func (s *softController) Enable()          { s.enabled.Store(true) }
func (s *softController) Disable()         { s.enabled.Store(false) }

var ctrl hwController = newSoftController()

func newSoftController() *softController {
	c := &softController{}
	c.enabled.Store(true)
	return c
}

// SetController installs the hardware interrupt controller. Called exactly
// once, early in boot, before any of the rest of this package is used for
// anything but tests.
func SetController(c hwController) { ctrl = c }

// ResetForTest restores the software controller; test-only helper so one
// test's SetController call can't leak into another's.
func ResetForTest() { ctrl = newSoftController() }

// AreEnabled reports whether maskable interrupts are enabled.
func AreEnabled() bool { return ctrl.AreEnabled() }

// Enable turns on maskable interrupts. Rejected while dispatching an
// external interrupt: an ISR enabling interrupts mid-handler would let a
// second IRQ preempt the first before EOI, which §4.4 forbids.
func Enable() {
	if IsExternalHandlerContext() {
		panic("irq: Enable called from external interrupt context")
	}
	ctrl.Enable()
}

// Disable turns off maskable interrupts.
func Disable() { ctrl.Disable() }

// WithoutInterrupts saves the current enable state, disables interrupts,
// runs body, and restores the prior state on every exit path (including
// panics unwinding through body).
func WithoutInterrupts(body func()) {
	prev := AreEnabled()
	Disable()
	defer func() {
		if prev {
			ctrl.Enable()
		}
	}()
	body()
}

var externalContext atomic.Bool

// IsExternalHandlerContext reports whether an external-interrupt dispatch
// is currently in progress. It reads one package-wide flag, whichever
// goroutine asks (spec.md §3: the
// flag transitions false->true->false within a single IRQ frame and is
// never set from nested calls).
func IsExternalHandlerContext() bool { return externalContext.Load() }

// enterExternalContext sets the flag, asserting it wasn't already set.
func enterExternalContext() {
	if !externalContext.CompareAndSwap(false, true) {
		panic("irq: re-entrant external interrupt context")
	}
}

func leaveExternalContext() {
	if !externalContext.CompareAndSwap(true, false) {
		panic("irq: leaving external context that was never entered")
	}
}
