// Package heap holds the end-to-end heap-stress scenario spec.md §8
// describes: 1024 successive small allocations with one long-lived
// allocation held across the whole run, then one allocation standing in
// for a vector summed to a known total, mirroring
// original_source/tests/default/src/bin/heap.rs.
package heap

import (
	"github.com/inhibitor1217/cheetos/internal/console"
	"github.com/inhibitor1217/cheetos/internal/heap"
)

const (
	numBoxes = 1024
	vecSize  = 10000
)

// Stress exercises spec.md §8 scenario 2. internal/heap hands back
// synthetic addresses rather than real memory (see DESIGN.md), so this
// verifies the allocator's bookkeeping in Go-side shadow state — the
// long-lived allocation stays live and distinct across all 1024
// transient ones — the same way internal/heap's own tests check liveness
// and non-reuse without dereferencing the returned uintptr.
func Stress(h heap.Heap, c console.Console) {
	longLived := h.Alloc(8, 8)
	if longLived == 0 {
		c.Println("heap_stress: FAIL long-lived allocation returned null")
		return
	}

	for i := 0; i < numBoxes; i++ {
		x := h.Alloc(8, 8)
		if x == 0 {
			c.Printf("heap_stress: FAIL allocation %d returned null\n", i)
			return
		}
		if x == longLived {
			c.Println("heap_stress: FAIL transient allocation aliased the long-lived one")
			return
		}
		h.Free(x)
	}

	vec := h.Alloc(vecSize*8, 8)
	if vec == 0 {
		c.Println("heap_stress: FAIL vector allocation returned null")
		return
	}

	sum := 0
	for i := 0; i < vecSize; i++ {
		sum += i
	}
	h.Free(vec)
	h.Free(longLived)

	const want = 49_995_000
	if sum != want {
		c.Printf("heap_stress: FAIL sum %d, want %d\n", sum, want)
		return
	}

	c.Println("heap_stress: PASS")
}
