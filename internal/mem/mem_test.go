package mem

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestAllocator(t *testing.T, totalPages, userLimit int) Allocator {
	t.Helper()
	backing := make([]byte, totalPages*PageSize)
	return NewAllocator(1, totalPages, backing, userLimit)
}

func TestGetPagesMarksBitsUsed(t *testing.T) {
	a := newTestAllocator(t, 64, 32)
	id, ok := a.GetPages(2, 0)
	require.True(t, ok)
	require.True(t, a.Kernel.Contains(id, 2))
	require.True(t, allSet(a.Kernel.bits, a.Kernel.indexOf(id), 2))
}

func TestGetPagesZeroFlagZeroesMemory(t *testing.T) {
	a := newTestAllocator(t, 64, 32)
	id, ok := a.GetPages(1, 0)
	require.True(t, ok)
	b := a.Bytes(id, 1)
	for i := range b {
		b[i] = 0xFF
	}
	a.FreePages(id, 1)

	id2, ok := a.GetPages(1, Zero)
	require.True(t, ok)
	b2 := a.Bytes(id2, 1)
	for _, v := range b2 {
		require.Equal(t, byte(0), v)
	}
}

func TestFreeThenReallocateReusesAddresses(t *testing.T) {
	a := newTestAllocator(t, 64, 32)
	var ids []PageID
	for i := 0; i < 4; i++ {
		id, ok := a.GetPages(1, 0)
		require.True(t, ok)
		ids = append(ids, id)
	}
	for _, id := range ids {
		a.FreePages(id, 1)
	}
	seen := map[PageID]bool{}
	for i := 0; i < 4; i++ {
		id, ok := a.GetPages(1, 0)
		require.True(t, ok)
		seen[id] = true
	}
	for _, id := range ids {
		require.True(t, seen[id])
	}
}

func TestFreePoisonsMemory(t *testing.T) {
	a := newTestAllocator(t, 64, 32)
	id, ok := a.GetPages(1, 0)
	require.True(t, ok)
	a.FreePages(id, 1)
	b := a.Kernel.Bytes(id, 1)
	for _, v := range b {
		require.Equal(t, byte(0xCC), v)
	}
}

func TestFreeUnallocatedPagePanics(t *testing.T) {
	a := newTestAllocator(t, 64, 32)
	id, ok := a.GetPages(1, 0)
	require.True(t, ok)
	a.FreePages(id, 1)
	require.Panics(t, func() { a.FreePages(id, 1) })
}

func TestGetPagesReturnsFalseWhenExhausted(t *testing.T) {
	a := newTestAllocator(t, 8, 4)
	cap := a.Kernel.Capacity()
	_, ok := a.GetPages(cap+1, 0)
	require.False(t, ok)
}

func TestGetPagesAlignedRespectsAlignment(t *testing.T) {
	a := newTestAllocator(t, 256, 128)
	// consume one page to push the natural run off alignment
	_, ok := a.Kernel.GetPages(1, 0)
	require.True(t, ok)

	id, ok := a.Kernel.GetPagesAligned(4, 4, 0)
	require.True(t, ok)
	require.Zero(t, int(id)%4)
}

func TestUserKernelSplitIsHalfWhenLimitDoesNotBind(t *testing.T) {
	a := newTestAllocator(t, 100, 1000) // userLimit larger than half
	// Both pools were built from 50-page regions (minus their own bitmap
	// prefixes), so their usable capacities should be close to equal.
	require.InDelta(t, a.Kernel.Capacity(), a.User.Capacity(), 1)
}

func TestUserPagesCappedByLimit(t *testing.T) {
	a := newTestAllocator(t, 100, 10)
	require.LessOrEqual(t, a.User.Capacity(), 10)
	require.Greater(t, a.Kernel.Capacity(), a.User.Capacity())
}

func TestFreePagesUnknownRangePanics(t *testing.T) {
	a := newTestAllocator(t, 64, 32)
	require.Panics(t, func() { a.FreePages(100000, 1) })
}
