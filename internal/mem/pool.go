// Package mem implements the page-frame allocator: two bitmap-backed pools
// (kernel and user) of 4 KiB pages carved out of a single contiguous usable
// region reported by the bootloader (spec.md §3 Page pool, §4.5).
package mem

import (
	"fmt"

	"github.com/inhibitor1217/cheetos/internal/bitset"
	"github.com/inhibitor1217/cheetos/internal/irq"
)

// PageSize is the architecture's page-frame size.
const PageSize = 4096

// PageID numbers a 4 KiB page frame. Page 0 is never a valid allocation: it
// is reserved so the zero value of PageID reads as "no page" the way a nil
// pointer would.
type PageID uint64

// Flags requested from GetPages / GetPagesAligned.
type Flags uint8

const (
	// Zero requests the returned pages be zero-filled before use.
	Zero Flags = 1 << iota
	// User selects the user pool instead of the kernel pool.
	User
)

// Pool_t is one bitmap-backed pool of page frames. A prefix of the pool's
// page range, sized to hold the bitmap, is reserved and never handed out;
// the bitmap's words themselves live in a separately allocated Go slice,
// not in those prefix pages. BasePage is the first page after the prefix,
// and bit i of the bitmap corresponds to page BasePage+i. A page is free
// iff its bit is 0.
//
// The critical section here is an IRQ-mutex rather than a blocking
// sleep-mutex: spec.md §1 notes the page allocator must be usable before the
// scheduler exists (thread stacks are themselves allocated from this pool),
// so it cannot depend on anything that could call back into the scheduler.
// Using irq.Mutex_t also satisfies §4.6's heap invariant that the page
// allocator itself must never sleep.
type Pool_t struct {
	mu          irq.Mutex
	bits        bitset.Bitset
	basePage    PageID
	bitmapPages int
	backing     []byte // bytes for pages [regionBase, regionBase+totalPages)
	regionBase  PageID
}

// Pool is the exported handle.
type Pool = *Pool_t

// NewPool carves a pool out of backing, which must hold exactly
// totalPages*PageSize bytes representing pages [regionBase,
// regionBase+totalPages). ceil(bitmapBytes/4096) pages at the front of that
// range are reserved for the bitmap (its words are kept in a separate Go
// slice); BasePage is the first page after them.
func NewPool(regionBase PageID, totalPages int, backing []byte) Pool {
	if len(backing) != totalPages*PageSize {
		panic(fmt.Sprintf("mem: pool backing is %d bytes, want %d", len(backing), totalPages*PageSize))
	}

	// Solve for the smallest bitmap-page-count p such that p pages of
	// bitmap storage suffice to cover (totalPages - p) usable bits.
	bitmapPages := 0
	for {
		usable := totalPages - bitmapPages
		if usable <= 0 {
			panic("mem: pool too small to hold any usable page alongside its own bitmap")
		}
		need := bitset.WordsFor(usable) * 8
		needPages := (need + PageSize - 1) / PageSize
		if needPages <= bitmapPages {
			break
		}
		bitmapPages = needPages
	}

	usable := totalPages - bitmapPages
	words := make([]uint64, bitset.WordsFor(usable))
	return &Pool_t{
		bits:        bitset.FromBuffer(usable, words),
		basePage:    regionBase + PageID(bitmapPages),
		bitmapPages: bitmapPages,
		backing:     backing,
		regionBase:  regionBase,
	}
}

// BasePage returns the first page available for allocation.
func (p *Pool_t) BasePage() PageID { return p.basePage }

// Capacity returns the number of allocatable pages in the pool.
func (p *Pool_t) Capacity() int { return p.bits.Cap() }

// Contains reports whether page id was carved from this pool (including its
// bitmap-prefix pages, which are never themselves allocatable).
func (p *Pool_t) Contains(id PageID, count int) bool {
	return id >= p.regionBase && id+PageID(count) <= p.regionBase+PageID(len(p.backing)/PageSize)
}

func (p *Pool_t) indexOf(id PageID) int { return int(id - p.basePage) }

// GetPages allocates count contiguous pages, or reports ok == false if no
// run that long is free.
func (p *Pool_t) GetPages(count int, flags Flags) (id PageID, ok bool) {
	return p.getPagesAligned(count, 1, flags)
}

// GetPagesAligned is like GetPages but restricts the search to runs whose
// starting page is a multiple of alignPages pages (absolute, i.e. relative
// to page 0, not to BasePage) — required for a thread's 16 KiB-aligned
// stack (4 pages at 4-page alignment).
func (p *Pool_t) GetPagesAligned(count, alignPages int, flags Flags) (id PageID, ok bool) {
	return p.getPagesAligned(count, alignPages, flags)
}

func (p *Pool_t) getPagesAligned(count, alignPages int, flags Flags) (PageID, bool) {
	if count <= 0 {
		panic("mem: GetPages with non-positive count")
	}

	g := p.mu.Lock()
	start, ok := p.scanAligned(count, alignPages)
	if ok {
		p.bits.SetMany(start, count, true)
	}
	g.Unlock()
	if !ok {
		return 0, false
	}

	first := p.basePage + PageID(start)
	if flags&Zero != 0 {
		b := p.bytesFor(first, count)
		for i := range b {
			b[i] = 0
		}
	}
	return first, true
}

// scanAligned finds the lowest free run of count bits whose absolute page
// number (basePage + index) is a multiple of alignPages. Must be called
// with p.mu held.
func (p *Pool_t) scanAligned(count, alignPages int) (int, bool) {
	cap := p.bits.Cap()
	for start := p.firstAlignedIndex(alignPages); start+count <= cap; start += alignPages {
		if !p.bits.Contains(start, count, true) {
			return start, true
		}
	}
	return 0, false
}

func (p *Pool_t) firstAlignedIndex(alignPages int) int {
	if alignPages <= 1 {
		return 0
	}
	base := int(p.basePage)
	rem := base % alignPages
	if rem == 0 {
		return 0
	}
	return alignPages - rem
}

// bytesFor returns the byte slice backing [first, first+count) pages.
func (p *Pool_t) bytesFor(first PageID, count int) []byte {
	off := int(first-p.regionBase) * PageSize
	return p.backing[off : off+count*PageSize]
}

const poisonByte = 0xCC

// Free poisons the released bytes to help catch use-after-free, then
// clears the run starting at first, asserting every page in it was
// allocated (spec.md §4.5: poison first, only then clear the bitmap, both
// while still holding the pool's mutex — clearing the bitmap first would
// let a concurrent GetPages hand the same pages back out before the
// poison write below ever runs, clobbering the new allocation's data).
func (p *Pool_t) Free(first PageID, count int) {
	if count <= 0 {
		panic("mem: Free with non-positive count")
	}

	start := p.indexOf(first)
	b := p.bytesFor(first, count)

	g := p.mu.Lock()
	defer g.Unlock()
	if !allSet(p.bits, start, count) {
		panic("mem: Free on a page range that was not fully allocated")
	}
	for i := range b {
		b[i] = poisonByte
	}
	p.bits.SetMany(start, count, false)
}

func allSet(bs bitset.Bitset, start, count int) bool {
	for i := start; i < start+count; i++ {
		if !bs.Get(i) {
			return false
		}
	}
	return true
}

// Bytes returns the byte slice view of [first, first+count) pages, for
// callers (the slab heap, thread stacks) that need to read or write the
// allocated memory directly.
func (p *Pool_t) Bytes(first PageID, count int) []byte {
	return p.bytesFor(first, count)
}
