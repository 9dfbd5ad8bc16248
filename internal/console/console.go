// Package console is the kernel's one logging surface: a sync.Mutex-
// guarded io.Writer wrapper over whatever byte sink boot wired up
// (internal/devices/serial in production), exposing Printf/Println the
// way the teacher's main.go drives its cons_t over fmt.Printf (spec.md §6
// Console).
//
// This is the one ambient concern cheetos keeps on the standard library
// rather than a structured logging package: see SPEC_FULL.md's AMBIENT
// STACK section and DESIGN.md for why — a freestanding binary with no
// hosted OS underneath it cannot import a logging framework built around
// os.Stdout or syscalls, and the teacher and every other kernel-domain
// repo in the retrieval pack print straight to a byte sink for the same
// reason.
package console

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// Console_t serializes writes to w so concurrent log lines never
// interleave mid-line.
type Console_t struct {
	mu sync.Mutex
	w  io.Writer
}

// Console is the exported handle, and the process-wide singleton
// cmd/cheetos installs during boot (spec.md §9 Global singletons).
type Console = *Console_t

// New wraps w.
func New(w io.Writer) Console { return &Console_t{w: w} }

// Printf formats and writes the result as is; no newline is appended.
func (c *Console_t) Printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, format, args...)
}

// Println writes args space-separated followed by a newline.
func (c *Console_t) Println(args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.w, args...)
}

// PadTo right-pads s with spaces to width, or returns s unchanged if it
// is already at least that long. Carried over from
// original_source/kernel/src/console.rs's width/fill formatting helper so
// the boot banner's page-pool counts line up the way the original's did
// (spec.md §8 scenario 1).
func PadTo(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
