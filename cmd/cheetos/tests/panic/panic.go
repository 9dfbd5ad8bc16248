// Package panic holds the end-to-end panic-path scenario spec.md §8
// describes: trigger a kernel panic with a known message and let Boot's
// recover handler print it and shut down with the failure exit code,
// mirroring original_source/tests/default/src/bin/panic.rs.
package panic

import "github.com/inhibitor1217/cheetos/internal/console"

// Trigger panics with the exact message spec.md §8 scenario 3 names.
// cmd/cheetos.Boot wraps its scenario calls in a deferred recover that
// prints the recovered value and exits with shutdown.Failure (QEMU exit
// code 0x85), so Trigger itself only needs to panic.
func Trigger(c console.Console) {
	c.Println("panic: triggering panic path")
	panic("I panicked!")
}
