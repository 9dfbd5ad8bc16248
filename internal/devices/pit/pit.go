// Package pit drives the 8253/8254 programmable interval timer in mode 2
// (rate generator), the source of the scheduler's preemption ticks
// (spec.md §6 PIT, §4.8 Preemption).
package pit

import "sync"

// Ports is the narrow port-I/O surface this device needs.
type Ports interface {
	Inb(port uint16) uint8
	Outb(port uint16, v uint8)
}

const (
	commandPort  = 0x43
	channel0Port = 0x40

	// baseFrequency is the PIT's fixed input clock in Hz (spec.md §6 PIT).
	baseFrequency = 1_193_180

	modeRateGenerator = 0x34

	// recentCapacity bounds the diagnostic tick ring (from
	// original_source/kernel/src/devices/timer.rs, supplementing spec.md
	// §4.9's bare tick counter with a small history for the panic path).
	recentCapacity = 8
)

// Divisor computes the 16-bit counter reload value for a requested
// interrupt frequency: round((1_193_180 + f/2)/f), wrapping to 0 (meaning
// 65536) below 19 Hz and clamping to 2 above the base frequency (spec.md
// §6 PIT). Pure and hosted-testable: no port access.
func Divisor(hz int) uint16 {
	if hz < 19 {
		return 0
	}
	if hz > baseFrequency {
		return 2
	}
	return uint16((baseFrequency + hz/2) / hz)
}

// Pit_t is the programmed timer plus its tick bookkeeping.
type Pit_t struct {
	ports Ports

	mu     sync.Mutex
	ticks  uint64
	recent [recentCapacity]uint64
	count  int
}

// Pit is the exported handle, and the process-wide singleton cmd/cheetos
// installs during boot.
type Pit = *Pit_t

// New wraps ports; call Init once during boot to start the counter.
func New(ports Ports) Pit { return &Pit_t{ports: ports} }

// Init programs channel 0 for mode 2 (rate generator) at hz interrupts
// per second.
func (p *Pit_t) Init(hz int) {
	d := Divisor(hz)
	p.ports.Outb(commandPort, modeRateGenerator)
	p.ports.Outb(channel0Port, uint8(d&0xFF))
	p.ports.Outb(channel0Port, uint8(d>>8))
}

// Tick records one elapsed timer interrupt. Called from the IRQ0 handler,
// which already runs with interrupts disabled, so the mutex here only
// guards against a racing RecentTicks/Ticks read from thread context —
// it is never contended from another interrupt.
func (p *Pit_t) Tick() {
	p.mu.Lock()
	p.ticks++
	p.recent[p.count%recentCapacity] = p.ticks
	p.count++
	p.mu.Unlock()
}

// Ticks returns the total number of timer interrupts observed so far.
func (p *Pit_t) Ticks() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ticks
}

// RecentTicks returns up to the last recentCapacity tick counts, oldest
// first, for the panic/diagnostic path (spec.md §7).
func (p *Pit_t) RecentTicks() []uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := p.count
	if n > recentCapacity {
		n = recentCapacity
	}
	out := make([]uint64, n)
	start := p.count - n
	for i := 0; i < n; i++ {
		out[i] = p.recent[(start+i)%recentCapacity]
	}
	return out
}
