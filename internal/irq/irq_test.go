package irq

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	ResetForTest()
	m.Run()
}

func TestWithoutInterruptsRestoresState(t *testing.T) {
	ResetForTest()
	Enable()
	require.True(t, AreEnabled())

	ran := false
	WithoutInterrupts(func() {
		require.False(t, AreEnabled())
		ran = true
	})
	require.True(t, ran)
	require.True(t, AreEnabled())
}

func TestWithoutInterruptsRestoresOnPanic(t *testing.T) {
	ResetForTest()
	Disable()
	require.False(t, AreEnabled())

	require.Panics(t, func() {
		WithoutInterrupts(func() { panic("boom") })
	})
	require.False(t, AreEnabled())
}

func TestEnableRejectedInExternalContext(t *testing.T) {
	ResetForTest()
	enterExternalContext()
	defer leaveExternalContext()
	require.Panics(t, func() { Enable() })
}

func TestMutexLockUnlockRestoresInterruptState(t *testing.T) {
	ResetForTest()
	Enable()
	mu := NewMutex()
	g := mu.Lock()
	require.False(t, AreEnabled())
	g.Unlock()
	require.True(t, AreEnabled())
}

func TestDispatchInternalVector(t *testing.T) {
	ResetForTest()
	reg := NewRegistry(nil)
	called := false
	reg.Register(14, func(f *Frame_t) {
		called = true
		require.Equal(t, uint8(14), f.Vector)
	}, "page fault")
	reg.Dispatch(&Frame_t{Vector: 14})
	require.True(t, called)
}

func TestDispatchExternalRequiresInterruptsDisabled(t *testing.T) {
	ResetForTest()
	reg := NewRegistry(nil)
	Enable()
	require.Panics(t, func() {
		reg.Dispatch(&Frame_t{Vector: 0x20})
	})
}

func TestDispatchExternalAcksAndTracksContext(t *testing.T) {
	ResetForTest()
	var acked []uint8
	reg := NewRegistry(func(v uint8) { acked = append(acked, v) })

	var sawExternal bool
	reg.Register(0x20, func(f *Frame_t) {
		sawExternal = IsExternalHandlerContext()
	}, "timer")

	Disable()
	reg.Dispatch(&Frame_t{Vector: 0x20})
	require.True(t, sawExternal)
	require.False(t, IsExternalHandlerContext())
	require.Equal(t, []uint8{0x20}, acked)
}

func TestDispatchUnexpectedExternalIncrementsCounter(t *testing.T) {
	ResetForTest()
	reg := NewRegistry(func(uint8) {})
	Disable()
	reg.Dispatch(&Frame_t{Vector: 0x21})
	reg.Dispatch(&Frame_t{Vector: 0x21})
	require.Equal(t, uint64(2), reg.UnexpectedCount(0x21))
}

func TestDispatchSpuriousVectorsAreSilentlyDropped(t *testing.T) {
	ResetForTest()
	reg := NewRegistry(func(uint8) { t.Fatal("spurious vector should not be acked") })
	Disable()
	reg.Dispatch(&Frame_t{Vector: 0x27})
	reg.Dispatch(&Frame_t{Vector: 0x2F})
	require.Equal(t, uint64(0), reg.UnexpectedCount(0x27))
}

func TestInSlaveRange(t *testing.T) {
	require.False(t, InSlaveRange(0x20))
	require.True(t, InSlaveRange(0x28))
	require.True(t, InSlaveRange(0x2F))
	require.False(t, InSlaveRange(0x30))
}
