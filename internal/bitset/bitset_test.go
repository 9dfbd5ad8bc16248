package bitset

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromBufferZeroInit(t *testing.T) {
	buf := make([]uint64, WordsFor(100))
	for i := range buf {
		buf[i] = ^uint64(0)
	}
	bs := FromBuffer(100, buf)
	for i := 0; i < 100; i++ {
		require.Falsef(t, bs.Get(i), "bit %d should be zeroed", i)
	}
}

func TestSetGetFlip(t *testing.T) {
	bs := New(64)
	require.False(t, bs.Get(10))
	bs.Set(10, true)
	require.True(t, bs.Get(10))
	require.True(t, bs.Flip(10) == false)
	require.False(t, bs.Get(10))
}

func TestSetManyAndContains(t *testing.T) {
	bs := New(128)
	bs.SetMany(10, 5, true)
	require.True(t, bs.Contains(0, 128, true))
	require.False(t, bs.Contains(0, 10, true))
	require.True(t, bs.Contains(9, 2, true))
	for i := 10; i < 15; i++ {
		require.True(t, bs.Get(i))
	}
}

func TestScanFindsExactRun(t *testing.T) {
	bs := New(32)
	bs.SetMany(4, 3, true)
	idx, ok := bs.Scan(0, 4, false)
	require.True(t, ok)
	require.Equal(t, 0, idx)

	idx, ok = bs.Scan(0, 3, true)
	require.True(t, ok)
	require.Equal(t, 4, idx)

	_, ok = bs.Scan(0, 5, true)
	require.False(t, ok)
}

func TestScanOutOfBounds(t *testing.T) {
	bs := New(8)
	_, ok := bs.Scan(0, 9, false)
	require.False(t, ok)
}

func TestIndexOutOfRangePanics(t *testing.T) {
	bs := New(4)
	require.Panics(t, func() { bs.Get(4) })
	require.Panics(t, func() { bs.Set(-1, true) })
}
