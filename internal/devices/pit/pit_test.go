package pit

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDivisorMatchesKnownFrequency(t *testing.T) {
	require.EqualValues(t, (baseFrequency+100/2)/100, Divisor(100))
}

func TestDivisorBelow19HzWrapsToZero(t *testing.T) {
	require.EqualValues(t, 0, Divisor(0))
	require.EqualValues(t, 0, Divisor(-5))
	require.EqualValues(t, 0, Divisor(18))
}

func TestDivisorAboveBaseFrequencyClampsToTwo(t *testing.T) {
	require.EqualValues(t, 2, Divisor(baseFrequency+1))
	require.EqualValues(t, 2, Divisor(2_000_000))
}

type fakePorts struct {
	writes []struct {
		port uint16
		v    uint8
	}
}

func (p *fakePorts) Inb(uint16) uint8 { return 0 }
func (p *fakePorts) Outb(port uint16, v uint8) {
	p.writes = append(p.writes, struct {
		port uint16
		v    uint8
	}{port, v})
}

func TestInitProgramsModeAndDivisor(t *testing.T) {
	fp := &fakePorts{}
	p := New(fp)
	p.Init(100)

	require.Len(t, fp.writes, 3)
	require.Equal(t, uint16(commandPort), fp.writes[0].port)
	require.Equal(t, uint8(modeRateGenerator), fp.writes[0].v)

	d := Divisor(100)
	require.Equal(t, uint8(d&0xFF), fp.writes[1].v)
	require.Equal(t, uint8(d>>8), fp.writes[2].v)
}

func TestTickAccumulatesAndRecentTicksReturnsWindow(t *testing.T) {
	p := New(&fakePorts{})
	for i := 0; i < 12; i++ {
		p.Tick()
	}
	require.EqualValues(t, 12, p.Ticks())

	recent := p.RecentTicks()
	require.Len(t, recent, recentCapacity)
	require.EqualValues(t, 5, recent[0]) // ticks 1..4 fell off the ring
	require.EqualValues(t, 12, recent[len(recent)-1])
}

func TestRecentTicksBeforeCapacityReachedReturnsPartial(t *testing.T) {
	p := New(&fakePorts{})
	p.Tick()
	p.Tick()
	require.Equal(t, []uint64{1, 2}, p.RecentTicks())
}
