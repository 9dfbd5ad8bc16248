package thread

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/inhibitor1217/cheetos/internal/mem"
)

func newTestAllocator(t *testing.T, totalPages int) mem.Allocator {
	t.Helper()
	backing := make([]byte, totalPages*mem.PageSize)
	return mem.NewAllocator(1, totalPages, backing, totalPages/2)
}

func TestNewMainHasNoPagesAndIsRunning(t *testing.T) {
	m := NewMain()
	require.Equal(t, StatusRunning, m.Status)
	_, _, owns := m.Pages()
	require.False(t, owns)
	require.Equal(t, "main", m.Name())
}

func TestNewAllocatesStackAndStartsBlocked(t *testing.T) {
	a := newTestAllocator(t, 64)
	th, ok := New(a, "worker", 1, func() {})
	require.True(t, ok)
	require.Equal(t, StatusBlocked, th.Status)
	first, count, owns := th.Pages()
	require.True(t, owns)
	require.Equal(t, StackPages, count)
	require.True(t, a.Kernel.Contains(first, count))
}

func TestNewReturnsFalseWhenPagesExhausted(t *testing.T) {
	a := newTestAllocator(t, 4) // far fewer pages than StackPages needs
	_, ok := New(a, "worker", 1, func() {})
	require.False(t, ok)
}

func TestNameIsTruncated(t *testing.T) {
	a := newTestAllocator(t, 64)
	th, ok := New(a, "a-name-much-longer-than-sixteen-bytes", 1, func() {})
	require.True(t, ok)
	require.LessOrEqual(t, len(th.Name()), NameMaxLen)
}

func TestAssertMagicPanicsOnCorruption(t *testing.T) {
	m := NewMain()
	m.Magic = 0
	require.Panics(t, func() { m.AssertMagic() })
}

func TestLaunchRunsResumeHookThenFnThenExit(t *testing.T) {
	a := newTestAllocator(t, 64)
	th, ok := New(a, "worker", 1, func() {})
	require.True(t, ok)

	var order []string
	th.fn = func() { order = append(order, "fn") }

	th.Launch(
		func(Thread) { order = append(order, "resume") },
		func(Thread) { order = append(order, "exit") },
	)
	th.Resume()
	th.Wait()

	require.Equal(t, []string{"resume", "fn", "exit"}, order)
}

func TestParkBlocksUntilResume(t *testing.T) {
	a := newTestAllocator(t, 64)
	th, ok := New(a, "worker", 1, func() {})
	require.True(t, ok)

	parked := make(chan struct{})
	th.fn = func() {
		close(parked)
		th.Park()
	}

	done := make(chan struct{})
	th.Launch(
		func(Thread) {},
		func(Thread) { close(done) },
	)
	th.Resume() // release the launch-time park

	<-parked
	select {
	case <-done:
		t.Fatal("thread finished while parked")
	default:
	}

	th.Resume() // release the Park inside fn
	<-done
	th.Wait()
}
