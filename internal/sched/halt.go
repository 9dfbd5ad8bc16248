package sched

// Halter wraps the single privileged instruction the idle thread issues:
// pause the CPU until the next interrupt. Executing a real hlt from a
// hosted `go test` process would fault (ring 3 cannot run it), so the
// default is a no-op standing in for "nothing to do right now" — the idle
// goroutine's real waiting is already done by parking on a channel inside
// BlockCurrentThread. cmd/cheetos wires the amd64 asm-backed Halter.
type Halter interface {
	Halt()
}

type softHalter struct{}

func (softHalter) Halt() {}

var halter Halter = softHalter{}

// SetHalter installs h as the idle thread's halt primitive.
func SetHalter(h Halter) { halter = h }

// ResetHalterForTest restores the no-op halter. Intended for test teardown.
func ResetHalterForTest() { halter = softHalter{} }
