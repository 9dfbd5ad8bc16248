// Package pic drives the dual 8259 programmable interrupt controllers:
// remapping their vectors off the CPU exception range and onto
// 0x20..0x2F, masking individual IRQ lines, and acknowledging serviced
// interrupts (spec.md §6 PIC).
package pic

// Ports is the narrow port-I/O surface this device needs.
type Ports interface {
	Inb(port uint16) uint8
	Outb(port uint16, v uint8)
}

const (
	masterCommand = 0x20
	masterData    = 0x21
	slaveCommand  = 0xA0
	slaveData     = 0xA1

	icw1Init    = 0x11 // edge-triggered, cascade mode, ICW4 present
	icw4Mode8086   = 0x01
	eoi         = 0x20
	cascadeIRQ  = 2 // IRQ2 on the master carries the slave's cascade line

	// MasterVectorBase and SlaveVectorBase match internal/irq's
	// externalBase/slaveBase constants exactly: the PIC and the dispatcher
	// must agree on where external vectors land.
	MasterVectorBase = 0x20
	SlaveVectorBase  = 0x28
)

// Pic_t is the remapped master/slave PIC pair.
type Pic_t struct {
	ports Ports
}

// Pic is the exported handle.
type Pic = *Pic_t

// New wraps ports. Remap must be called once during boot before any IRQ
// is unmasked.
func New(ports Ports) Pic { return &Pic_t{ports: ports} }

// Remap reprograms both PICs to deliver IRQ0..7 on vectors
// MasterVectorBase..+7 and IRQ8..15 on SlaveVectorBase..+7, then restores
// the interrupt masks both PICs held before the remap (the caller unmasks
// what it actually wired a handler for).
func (p *Pic_t) Remap() {
	masterMask := p.ports.Inb(masterData)
	slaveMask := p.ports.Inb(slaveData)

	p.ports.Outb(masterCommand, icw1Init)
	p.ports.Outb(slaveCommand, icw1Init)
	p.ports.Outb(masterData, MasterVectorBase)
	p.ports.Outb(slaveData, SlaveVectorBase)
	p.ports.Outb(masterData, 1<<cascadeIRQ)
	p.ports.Outb(slaveData, cascadeIRQ)
	p.ports.Outb(masterData, icw4Mode8086)
	p.ports.Outb(slaveData, icw4Mode8086)

	p.ports.Outb(masterData, masterMask)
	p.ports.Outb(slaveData, slaveMask)
}

func (p *Pic_t) lineFor(irqLine uint8) (dataPort uint16, bit uint8) {
	if irqLine >= 8 {
		return slaveData, 1 << (irqLine - 8)
	}
	return masterData, 1 << irqLine
}

// Mask disables delivery of irqLine (0..15).
func (p *Pic_t) Mask(irqLine uint8) {
	port, bit := p.lineFor(irqLine)
	p.ports.Outb(port, p.ports.Inb(port)|bit)
}

// Unmask enables delivery of irqLine (0..15), unmasking the cascade line
// on the master too when the line is on the slave.
func (p *Pic_t) Unmask(irqLine uint8) {
	port, bit := p.lineFor(irqLine)
	p.ports.Outb(port, p.ports.Inb(port)&^bit)
	if irqLine >= 8 {
		mport, mbit := p.lineFor(cascadeIRQ)
		p.ports.Outb(mport, p.ports.Inb(mport)&^mbit)
	}
}

// EndOfInterrupt acknowledges vector, matching internal/irq.Acknowledger.
// A slave-delivered vector must be acknowledged on both controllers.
func (p *Pic_t) EndOfInterrupt(vector uint8) {
	if vector >= SlaveVectorBase && vector < SlaveVectorBase+8 {
		p.ports.Outb(slaveCommand, eoi)
	}
	p.ports.Outb(masterCommand, eoi)
}
