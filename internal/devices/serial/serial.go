// Package serial drives the 16550 UART at COM1 in polling mode: the only
// output device cheetos needs before interrupts, the heap, or the
// scheduler exist (spec.md §6 Serial).
package serial

// Ports is the narrow port-I/O surface this device needs, matching the
// DI pattern internal/irq uses for its interrupt-flag controller: tests
// supply a software stand-in, cmd/cheetos wires amd64.Ports.
type Ports interface {
	Inb(port uint16) uint8
	Outb(port uint16, v uint8)
}

const (
	comBase = 0x3F8

	dataOffset       = 0
	lineStatusOffset = 5
	transmitEmptyBit = 0x20
)

// Serial_t is a polling-mode COM1 writer.
type Serial_t struct {
	ports Ports
}

// Serial is the exported handle, and the backing sink internal/console
// wraps (spec.md §9 Global singletons).
type Serial = *Serial_t

// New wraps ports as a COM1 byte sink. The UART itself (baud-divisor,
// FIFO, and line-control register programming) is an external
// collaborator per spec.md §1's Non-goals/out-of-scope list; cheetos
// only needs the polling send path, so New assumes a UART already in a
// usable state (QEMU's default 16550 emulation resets into one) rather
// than reprogramming it. Tests exercise WriteByte/Write directly
// against a software Ports that is already "ready to transmit".
func New(ports Ports) Serial { return &Serial_t{ports: ports} }

// WriteByte polls the line status register until the transmitter is
// empty, then writes b.
func (s *Serial_t) WriteByte(b byte) {
	for s.ports.Inb(comBase+lineStatusOffset)&transmitEmptyBit == 0 {
	}
	s.ports.Outb(comBase+dataOffset, b)
}

// Write implements io.Writer, translating '\n' to "\r\n" the way a
// terminal emulator expects.
func (s *Serial_t) Write(p []byte) (int, error) {
	for _, b := range p {
		if b == '\n' {
			s.WriteByte('\r')
		}
		s.WriteByte(b)
	}
	return len(p), nil
}
