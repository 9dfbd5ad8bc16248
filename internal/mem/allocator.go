package mem

import "fmt"

// Allocator_t owns the kernel and user page pools, split from a single
// contiguous usable region reported by the bootloader (spec.md §4.5):
// user_pages = min(userLimit, total/2); kernel_pages = total - user_pages.
type Allocator_t struct {
	Kernel Pool
	User   Pool
}

// Allocator is the exported handle, and also the process-wide singleton
// cmd/cheetos installs during boot (spec.md §9 Global singletons).
type Allocator = *Allocator_t

// NewAllocator splits backing (regionBase..regionBase+totalPages pages) into
// a user and a kernel pool and builds both. userLimit caps how many pages
// the user pool may claim even if half the region would be larger.
func NewAllocator(regionBase PageID, totalPages int, backing []byte, userLimit int) Allocator {
	if len(backing) != totalPages*PageSize {
		panic(fmt.Sprintf("mem: allocator backing is %d bytes, want %d", len(backing), totalPages*PageSize))
	}

	userPages := totalPages / 2
	if userLimit < userPages {
		userPages = userLimit
	}
	kernelPages := totalPages - userPages

	kernelBacking := backing[:kernelPages*PageSize]
	userBacking := backing[kernelPages*PageSize:]

	return &Allocator_t{
		Kernel: NewPool(regionBase, kernelPages, kernelBacking),
		User:   NewPool(regionBase+PageID(kernelPages), userPages, userBacking),
	}
}

func (a *Allocator_t) poolFor(flags Flags) Pool {
	if flags&User != 0 {
		return a.User
	}
	return a.Kernel
}

// GetPages allocates count pages from the pool selected by flags.
func (a *Allocator_t) GetPages(count int, flags Flags) (PageID, bool) {
	return a.poolFor(flags).GetPages(count, flags)
}

// GetPagesAligned allocates count pages, aligned to alignPages, from the
// pool selected by flags.
func (a *Allocator_t) GetPagesAligned(count, alignPages int, flags Flags) (PageID, bool) {
	return a.poolFor(flags).GetPagesAligned(count, alignPages, flags)
}

// FreePages determines the owning pool by bitmap range containment and
// releases the run.
func (a *Allocator_t) FreePages(first PageID, count int) {
	switch {
	case a.Kernel.Contains(first, count):
		a.Kernel.Free(first, count)
	case a.User.Contains(first, count):
		a.User.Free(first, count)
	default:
		panic("mem: FreePages on a page range owned by neither pool")
	}
}

// Bytes returns the byte slice view of an allocation, looking up the owning
// pool the same way FreePages does.
func (a *Allocator_t) Bytes(first PageID, count int) []byte {
	switch {
	case a.Kernel.Contains(first, count):
		return a.Kernel.Bytes(first, count)
	case a.User.Contains(first, count):
		return a.User.Bytes(first, count)
	default:
		panic("mem: Bytes on a page range owned by neither pool")
	}
}
