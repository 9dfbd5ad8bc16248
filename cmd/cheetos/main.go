// Command cheetos is the kernel entry point: it wires every internal
// package into the boot sequence spec.md §5 describes (adopt the main
// thread, bring up the page allocator and heap, install the interrupt
// registry and timer, start the scheduler) and, once idle, hands off to
// the end-to-end scenarios in cmd/cheetos/tests/heap,
// cmd/cheetos/tests/panic, and cmd/cheetos/tests/threads (spec.md §8).
//
// This package only makes sense running as ring-0 code on the hardware
// (or QEMU) spec.md targets: Boot issues privileged instructions through
// internal/arch/amd64 from the moment it starts. It is never built or run
// as part of this repository's test suite.
package main

import (
	"unsafe"

	"github.com/inhibitor1217/cheetos/internal/arch/amd64"
	"github.com/inhibitor1217/cheetos/internal/bootinfo"
	"github.com/inhibitor1217/cheetos/internal/console"
	"github.com/inhibitor1217/cheetos/internal/devices/pic"
	"github.com/inhibitor1217/cheetos/internal/devices/pit"
	"github.com/inhibitor1217/cheetos/internal/devices/serial"
	"github.com/inhibitor1217/cheetos/internal/devices/shutdown"
	"github.com/inhibitor1217/cheetos/internal/diag"
	"github.com/inhibitor1217/cheetos/internal/heap"
	"github.com/inhibitor1217/cheetos/internal/irq"
	"github.com/inhibitor1217/cheetos/internal/mem"
	"github.com/inhibitor1217/cheetos/internal/sched"

	heaptests "github.com/inhibitor1217/cheetos/cmd/cheetos/tests/heap"
	panictests "github.com/inhibitor1217/cheetos/cmd/cheetos/tests/panic"
	threadtests "github.com/inhibitor1217/cheetos/cmd/cheetos/tests/threads"
)

const (
	timerHz      = 100
	timerIRQLine = 0
	timerVector  = pic.MasterVectorBase + timerIRQLine

	pageFaultVector = 14
	gpFaultVector   = 13
)

// Global singletons, installed once by Boot (spec.md §9).
var (
	Console    console.Console
	Allocator  mem.Allocator
	Heap       heap.Heap
	Interrupts irq.Registry
	Scheduler  sched.Scheduler
	Timer      pit.Pit
)

// main exists only to satisfy `package main`; nothing calls it. The real
// entry point on hardware is Boot, invoked once the patched runtime this
// module assumes (matching the teacher's own assumption: biscuit's
// retrieved main.go also starts mid-flight, after its fork of the Go
// runtime has already brought up a goroutine-capable environment) has a
// stack and a bootinfo record ready.
func main() {}

// Boot brings every subsystem up in spec.md §5's order and then falls
// into the demo scenarios. It never returns on real hardware: either a
// scenario calls Shutdown.Exit, or a panic does.
func Boot(info bootinfo.Info) {
	ser := serial.New(amd64.Ports{})
	Console = console.New(ser)
	Console.Println("cheetos booting")

	Allocator = newAllocatorFromBootInfo(info)
	Heap = heap.New(Allocator.Kernel)
	Console.Printf("cheetos: kernel pool %s pages, user pool %s pages\n",
		console.PadTo(itoa(Allocator.Kernel.Capacity()), 8),
		console.PadTo(itoa(Allocator.User.Capacity()), 8))

	pics := pic.New(amd64.Ports{})
	pics.Remap()

	Interrupts = irq.NewRegistry(pics.EndOfInterrupt)
	irq.SetController(amd64.Controller{})
	irq.SetUnexpectedLogger(Console.Printf)
	registerFaultHandlers(Interrupts)

	Timer = pit.New(amd64.Ports{})
	Timer.Init(timerHz)

	Scheduler = sched.New(Allocator)
	sched.SetHalter(amd64.IdleHalter{})

	Interrupts.Register(timerVector, func(*irq.Frame_t) {
		Timer.Tick()
		Scheduler.Tick()
	}, "pit")
	pics.Unmask(timerIRQLine)

	sd := shutdown.New(amd64.Ports{})
	defer func() {
		if r := recover(); r != nil {
			Console.Printf("cheetos: panic: %v\n", r)
			sd.Exit(shutdown.Failure)
		}
	}()

	Scheduler.Start()
	Console.Println("Boot complete.")
	Console.Println("Hello, world!")

	if info.Scenario == bootinfo.ScenarioPanic {
		panictests.Trigger(Console)
	}

	heaptests.Stress(Heap, Console)
	threadtests.AlarmSingle(Scheduler, Console)
	threadtests.AlarmMultiple(Scheduler, Console)
	threadtests.AlarmZero(Scheduler, Console)

	Console.Println("Powering off...")
	sd.Exit(shutdown.Success)
	amd64.Halt()
}

// newAllocatorFromBootInfo derives the byte slice backing the page pools
// from the bootloader's physical-memory offset: the one place in this
// repository that turns a raw physical address into a Go slice, since
// everywhere else (internal/mem's tests, internal/heap) works over a
// caller-supplied []byte so it can run hosted.
func newAllocatorFromBootInfo(info bootinfo.Info) mem.Allocator {
	usable := info.UsableRegions()
	if len(usable) == 0 {
		panic("cheetos: bootinfo reports no usable memory")
	}
	region := usable[0]
	totalPages := region.Pages

	base := info.PhysOffset + uintptr(region.BasePage)*amd64.PageSize
	backing := unsafe.Slice((*byte)(unsafe.Pointer(base)), totalPages*amd64.PageSize)

	return mem.NewAllocator(mem.PageID(region.BasePage), totalPages, backing, totalPages/2)
}

// registerFaultHandlers wires the page-fault and general-protection-fault
// vectors to a handler that decodes the faulting instruction for the
// panic message (spec.md §7, internal/diag).
func registerFaultHandlers(r irq.Registry) {
	onFault := func(frame *irq.Frame_t) {
		code := unsafe.Slice((*byte)(unsafe.Pointer(frame.RIP)), 16)
		panic(diag.DecodeAt(code, uint64(frame.RIP)))
	}
	r.Register(pageFaultVector, onFault, "page fault")
	r.Register(gpFaultVector, onFault, "general protection fault")
}

// itoa avoids pulling in strconv for one call site that only ever prints
// a page count already known to fit in a handful of decimal digits.
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
