package irq

import "fmt"

const (
	// VectorCount is the number of IDT slots (spec.md §3 Interrupt registry).
	VectorCount = 256

	// externalBase is the first vector delivered by the PIC rather than
	// raised by the CPU itself.
	externalBase = 0x20

	// slaveBase..slaveBase+7 are the vectors remapped onto the slave PIC.
	slaveBase = 0x28

	// Spurious vectors the master/slave PICs can raise with no real IRQ
	// behind them; silently dropped per spec.md §4.4.
	spuriousMaster = 0x27
	spuriousSlave  = 0x2F

	maxNameLen = 64
)

// Frame_t is the trap frame an interrupt handler observes: the CPU-pushed
// state plus, for exceptions that push one, the error code. External
// interrupts always see ErrorCode == 0 (the PIC never pushes one).
type Frame_t struct {
	Vector    uint8
	ErrorCode uint64
	RIP       uintptr
	CS        uint64
	RFlags    uint64
	RSP       uintptr
	SS        uint64
}

// Handler is invoked with the vector number and the pushed frame.
type Handler func(frame *Frame_t)

// Acknowledger ends an external interrupt at the PIC(s); wired to
// internal/devices/pic during boot. Kept as an injected function, mirroring
// gopheros's SetFrameAllocator-style hooks, so registry tests don't need a
// real PIC.
type Acknowledger func(vector uint8)

type entry_t struct {
	handler Handler
	name    string
	unexpectedCount uint64
}

// Registry_t is the 256-entry interrupt vector table described in spec.md
// §3/§4.4.
type Registry_t struct {
	mu      Mutex
	entries [VectorCount]entry_t
	ack     Acknowledger
}

// Registry is the exported handle.
type Registry = *Registry_t

// NewRegistry returns an empty registry. ack may be nil (tests exercising
// pure dispatch logic without a PIC); production code passes
// internal/devices/pic.EndOfInterrupt.
func NewRegistry(ack Acknowledger) Registry {
	return &Registry_t{mu: NewMutex(), ack: ack}
}

// Register installs handler under vector, truncating name to maxNameLen.
func (r *Registry_t) Register(vector uint8, handler Handler, name string) {
	if len(name) > maxNameLen {
		name = name[:maxNameLen]
	}
	g := r.mu.Lock()
	defer g.Unlock()
	r.entries[vector] = entry_t{handler: handler, name: name}
}

// UnexpectedCount returns how many times vector fired externally with no
// registered handler.
func (r *Registry_t) UnexpectedCount(vector uint8) uint64 {
	g := r.mu.Lock()
	defer g.Unlock()
	return r.entries[vector].unexpectedCount
}

// Name returns the registered name for vector, or "" if none.
func (r *Registry_t) Name(vector uint8) string {
	g := r.mu.Lock()
	defer g.Unlock()
	return r.entries[vector].name
}

// UnexpectedLogger receives a message whenever an external interrupt fires
// with no registered handler; wired to internal/console in production.
type UnexpectedLogger func(format string, args ...any)

var unexpected UnexpectedLogger = func(string, ...any) {}

// SetUnexpectedLogger installs the sink for "no handler for this IRQ"
// messages. Defaults to a no-op so tests don't need a console.
func SetUnexpectedLogger(fn UnexpectedLogger) { unexpected = fn }

// Dispatch is the single generic entry point every one of the 256 IDT slots
// routes through (spec.md §4.4). It distinguishes internal (vector < 0x20,
// CPU exception) from external (vector >= 0x20, PIC-delivered) interrupts,
// and must not sleep or call into the heap.
func (r *Registry_t) Dispatch(frame *Frame_t) {
	v := frame.Vector
	if v == spuriousMaster || v == spuriousSlave {
		return
	}

	external := v >= externalBase
	if external {
		if AreEnabled() {
			panic("irq: external interrupt dispatched with interrupts enabled")
		}
		enterExternalContext()
	}

	h := r.peekHandler(v)
	if h != nil {
		h(frame)
	} else if external {
		r.recordUnexpected(v)
	}

	if external {
		leaveExternalContext()
		if r.ack != nil {
			r.ack(v)
		}
	}
}

// peekHandler reads a slot without taking the mutex. On the external path
// interrupts are already disabled (asserted above), so a racing Register
// call cannot be mid-write; the internal path does not check the interrupt
// state (see Peek).
func (r *Registry_t) peekHandler(v uint8) Handler {
	return Peek(r.mu, func() Handler { return r.entries[v].handler })
}

func (r *Registry_t) recordUnexpected(v uint8) {
	g := r.mu.Lock()
	r.entries[v].unexpectedCount++
	name := r.entries[v].name
	g.Unlock()
	if name == "" {
		name = fmt.Sprintf("vector 0x%02x", v)
	}
	unexpected("unexpected interrupt: %s (vector 0x%02x)", name, v)
}

// InSlaveRange reports whether vector was remapped onto the slave PIC
// (spec.md §6 PIC: IRQ8..15 -> vectors 0x28..0x2F).
func InSlaveRange(vector uint8) bool { return vector >= slaveBase && vector < slaveBase+8 }
