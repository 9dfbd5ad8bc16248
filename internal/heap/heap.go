// Package heap implements the slab-style kernel heap layered on the page
// allocator: seven power-of-two size classes backed by arenas carved from
// kernel pages, plus a large-allocation path for requests bigger than the
// largest size class (spec.md §3 Slab descriptor/Arena header, §4.6).
package heap

import (
	"fmt"

	"github.com/inhibitor1217/cheetos/internal/irq"
	"github.com/inhibitor1217/cheetos/internal/list"
	"github.com/inhibitor1217/cheetos/internal/mem"
)

// arenaMagic distinguishes a valid arena page from corrupted memory.
const arenaMagic = 0x8a547eed

// poisonByte overwrites a freed block as a use-after-free canary.
const poisonByte = 0xCC

// sizeClasses are the seven block sizes a small allocation can round up to.
var sizeClasses = [...]int{16, 32, 64, 128, 256, 512, 1024}

const maxSmall = 1024

// arenaHeaderSize is how much of a page an arena header consumes. The
// header itself is bookkeeping kept in Go memory, not laid out byte-for-byte
// in the page: see DESIGN.md for why cheetos doesn't place a C-compatible
// struct at the page's first bytes the way the original does.
const arenaHeaderSize = 32

type arena_t struct {
	magic     uint32
	page      mem.PageID
	pageCount int // for large arenas: number of pages this arena spans.

	descriptor *descriptor_t // nil for a large allocation.
	freeCount  int

	node *list.Node_t // membership in descriptor.arenas, nil for large arenas.
}

type block_t struct {
	arena *arena_t
	node  *list.Node_t
	addr  uintptr
}

type descriptor_t struct {
	mu        irq.Mutex
	blockSize int
	perArena  int
	free      list.List // of *block_t
	arenas    list.List // of *arena_t, diagnostic/teardown bookkeeping
}

// Heap_t is the slab heap, backed by a kernel page pool.
type Heap_t struct {
	pages       mem.Pool
	descriptors [len(sizeClasses)]*descriptor_t

	// blocksByAddr and largeByAddr let Free recover the originating arena
	// from a bare address, standing in for masking a real pointer by
	// ~(4096-1) and reading a header placed at the page's first bytes —
	// see DESIGN.md for why cheetos tracks this in a map instead.
	blocksByAddr map[uintptr]*block_t
	largeByAddr  map[uintptr]*arena_t
	mu           irq.Mutex
}

// Heap is the exported handle and the process-wide global allocator once
// installed (spec.md §2, §9 Global singletons).
type Heap = *Heap_t

// New builds a heap over pages. Small allocations request pages from pages
// with mem.Zero unset (arenas are explicitly initialized below) — pages must
// be the kernel pool per spec.md §4.6.
func New(pages mem.Pool) Heap {
	h := &Heap_t{
		pages:        pages,
		blocksByAddr: make(map[uintptr]*block_t),
		largeByAddr:  make(map[uintptr]*arena_t),
		mu:           irq.NewMutex(),
	}
	for i, sz := range sizeClasses {
		h.descriptors[i] = &descriptor_t{
			mu:        irq.NewMutex(),
			blockSize: sz,
			perArena:  (mem.PageSize - arenaHeaderSize) / sz,
			free:      list.New(),
			arenas:    list.New(),
		}
	}
	return h
}

func (h *Heap_t) classFor(size, align int) (*descriptor_t, bool) {
	need := size
	if align > need {
		need = align
	}
	for i, sz := range sizeClasses {
		if sz >= need {
			return h.descriptors[i], true
		}
	}
	return nil, false
}

// allocAddr returns the synthetic address standing in for a real pointer to
// the start of page: the page number times PageSize. It is page-aligned,
// never 0 (no pool hands out page 0), and the same again whenever a freed
// page is handed out anew, so the heap can be driven from Go tests without
// unsafe.Pointer arithmetic on fake physical memory. cmd/cheetos receives
// these same synthetic addresses; see DESIGN.md.
func (h *Heap_t) allocAddr(page mem.PageID) uintptr {
	return uintptr(page) * mem.PageSize
}

// Alloc returns a block of at least size bytes aligned to at least align
// bytes, or 0 (a null pointer) if the page allocator cannot supply memory.
func (h *Heap_t) Alloc(size, align int) uintptr {
	if size <= maxSmall && align <= maxSmall {
		if d, ok := h.classFor(size, align); ok {
			return h.allocSmall(d)
		}
	}
	return h.allocLarge(size)
}

func (h *Heap_t) allocSmall(d *descriptor_t) uintptr {
	g := d.mu.Lock()
	defer g.Unlock()

	if d.free.IsEmpty() {
		if !h.growLocked(d) {
			return 0
		}
	}

	n := d.free.PopFront()
	blk := n.Elem().(*block_t)
	blk.arena.freeCount--

	hg := h.mu.Lock()
	h.blocksByAddr[blk.addr] = blk
	hg.Unlock()
	return blk.addr
}

// growLocked requests one page from the kernel pool, carves it into
// perArena blocks of this class's size, and pushes them all onto the free
// list. Must be called with d.mu held.
func (h *Heap_t) growLocked(d *descriptor_t) bool {
	page, ok := h.pages.GetPages(1, 0)
	if !ok {
		return false
	}

	ar := &arena_t{magic: arenaMagic, page: page, descriptor: d, freeCount: d.perArena}
	ar.node = list.Bind(ar)
	d.arenas.PushBack(ar.node)

	base := h.allocAddr(page)
	for i := 0; i < d.perArena; i++ {
		blk := &block_t{arena: ar, addr: base + uintptr(arenaHeaderSize+i*d.blockSize)}
		blk.node = list.Bind(blk)
		d.free.PushBack(blk.node)
	}
	return true
}

func (h *Heap_t) allocLarge(size int) uintptr {
	pageCount := (size + arenaHeaderSize + mem.PageSize - 1) / mem.PageSize
	page, ok := h.pages.GetPages(pageCount, 0)
	if !ok {
		return 0
	}

	ar := &arena_t{magic: arenaMagic, page: page, pageCount: pageCount, freeCount: pageCount}
	base := h.allocAddr(page)
	addr := base + arenaHeaderSize

	g := h.mu.Lock()
	h.largeByAddr[addr] = ar
	g.Unlock()
	return addr
}

// Free releases a block or large allocation previously returned by Alloc.
// A magic mismatch (an address this heap never handed out) is fatal.
func (h *Heap_t) Free(addr uintptr) {
	g := h.mu.Lock()
	if ar, ok := h.largeByAddr[addr]; ok {
		delete(h.largeByAddr, addr)
		g.Unlock()
		h.freeLarge(ar)
		return
	}
	blk, ok := h.blocksByAddr[addr]
	if !ok {
		g.Unlock()
		panic(fmt.Sprintf("heap: Free on unknown address %#x (magic mismatch)", addr))
	}
	delete(h.blocksByAddr, addr)
	g.Unlock()

	h.freeSmall(blk)
}

func (h *Heap_t) freeSmall(blk *block_t) {
	if blk.arena.magic != arenaMagic {
		panic("heap: corrupted arena magic on free")
	}
	d := blk.arena.descriptor

	g := d.mu.Lock()
	defer g.Unlock()

	// Poison strictly after the block has been fully unlinked from its
	// prior home (it starts out unlinked here, fresh from the map) and
	// before it is reinserted onto the free list, so a poisoned byte never
	// clobbers a live free-list pointer (spec.md §9 open hazard).
	b := h.pages.Bytes(blk.arena.page, 1)
	off := int(blk.addr % mem.PageSize)
	for i := off; i < off+d.blockSize; i++ {
		b[i] = poisonByte
	}
	blk.node = list.Bind(blk)
	ar := blk.arena
	ar.freeCount++
	d.free.PushBack(blk.node)

	if ar.freeCount == d.perArena {
		h.reclaimArenaLocked(d, ar)
	}
}

// reclaimArenaLocked removes every block belonging to ar from d's free
// list and returns ar's page to the page allocator. Must be called with
// d.mu held.
func (h *Heap_t) reclaimArenaLocked(d *descriptor_t, ar *arena_t) {
	var kept []*list.Node_t
	for n := d.free.PopFront(); n != nil; n = d.free.PopFront() {
		if n.Elem().(*block_t).arena != ar {
			kept = append(kept, n)
		}
	}
	for _, n := range kept {
		d.free.PushBack(n)
	}
	removeArenaNode(d, ar)
	h.pages.Free(ar.page, 1)
}

func removeArenaNode(d *descriptor_t, ar *arena_t) {
	c := d.arenas.CursorFront()
	for c.Current() != nil {
		if c.Current().Elem().(*arena_t) == ar {
			c.RemoveCurrent()
			return
		}
		c.MoveNext()
	}
}

func (h *Heap_t) freeLarge(ar *arena_t) {
	if ar.magic != arenaMagic {
		panic("heap: corrupted arena magic on free")
	}
	h.pages.Free(ar.page, ar.freeCount)
}
