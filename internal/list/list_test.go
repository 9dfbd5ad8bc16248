package list

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPushFrontPopFrontLIFO(t *testing.T) {
	l := New()
	for i := 0; i < 5; i++ {
		l.PushFront(Bind(i))
	}
	for i := 4; i >= 0; i-- {
		n := l.PopFront()
		require.NotNil(t, n)
		require.Equal(t, i, n.Elem())
	}
	require.True(t, l.IsEmpty())
}

func TestPushBackPopFrontFIFO(t *testing.T) {
	l := New()
	for i := 0; i < 5; i++ {
		l.PushBack(Bind(i))
	}
	for i := 0; i < 5; i++ {
		n := l.PopFront()
		require.Equal(t, i, n.Elem())
	}
}

func TestRelinkAfterPopIsAllowed(t *testing.T) {
	l := New()
	n := Bind("x")
	l.PushBack(n)
	require.Equal(t, n, l.PopBack())
	require.NotPanics(t, func() { l.PushBack(n) })
}

func TestDoubleLinkPanics(t *testing.T) {
	l := New()
	n := Bind(1)
	l.PushBack(n)
	require.Panics(t, func() { l.PushBack(n) })
}

func TestRemoveFreeNodePanics(t *testing.T) {
	l := New()
	n := Bind(1)
	require.Panics(t, func() { l.removeNode(n) })
}

func TestCursorSentinelSpliceDegeneratesToPush(t *testing.T) {
	l := New()
	l.PushBack(Bind(1))
	l.PushBack(Bind(2))

	other := New()
	other.PushBack(Bind(3))
	other.PushBack(Bind(4))

	c := l.CursorBack()
	c.MoveNext() // sentinel
	c.SpliceBefore(other)

	require.True(t, other.IsEmpty())
	var got []int
	l.Iter(func(n *Node_t) bool {
		got = append(got, n.Elem().(int))
		return true
	})
	require.Equal(t, []int{1, 2, 3, 4}, got)
}

func TestCursorInsertMiddle(t *testing.T) {
	l := New()
	l.PushBack(Bind(1))
	l.PushBack(Bind(3))

	c := l.CursorFront() // at 1
	c.InsertAfter(Bind(2))

	var got []int
	l.Iter(func(n *Node_t) bool {
		got = append(got, n.Elem().(int))
		return true
	})
	require.Equal(t, []int{1, 2, 3}, got)
}

func TestCursorRemoveCurrentAdvances(t *testing.T) {
	l := New()
	l.PushBack(Bind(1))
	l.PushBack(Bind(2))
	l.PushBack(Bind(3))

	c := l.CursorFront()
	c.MoveNext() // at 2
	removed := c.RemoveCurrent()
	require.Equal(t, 2, removed.Elem())
	require.Equal(t, 3, c.Current().Elem())

	var got []int
	l.Iter(func(n *Node_t) bool {
		got = append(got, n.Elem().(int))
		return true
	})
	require.Equal(t, []int{1, 3}, got)
}

func TestSpliceAfterAtSentinelPrepends(t *testing.T) {
	l := New()
	l.PushBack(Bind(2))
	other := New()
	other.PushBack(Bind(1))

	c := l.CursorFront()
	c.MovePrev() // sentinel (one before head)
	c.SpliceAfter(other)

	var got []int
	l.Iter(func(n *Node_t) bool {
		got = append(got, n.Elem().(int))
		return true
	})
	require.Equal(t, []int{1, 2}, got)
}
