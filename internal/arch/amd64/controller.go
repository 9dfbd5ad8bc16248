package amd64

// Controller adapts the package-level interrupt-flag primitives to the
// hwController shape internal/irq expects. It is only ever constructed by
// cmd/cheetos during boot: on any other platform, calling its methods would
// execute privileged instructions and fault.
type Controller struct{}

func (Controller) AreEnabled() bool { return AreEnabled() }
func (Controller) Enable()          { Enable() }
func (Controller) Disable()         { Disable() }

// Ports adapts Inb/Outb to the Ports interface each internal/devices package
// declares.
type Ports struct{}

func (Ports) Inb(port uint16) uint8     { return Inb(port) }
func (Ports) Outb(port uint16, v uint8) { Outb(port, v) }

// IdleHalter adapts Halt to the internal/sched.Halter shape.
type IdleHalter struct{}

func (IdleHalter) Halt() { Halt() }
