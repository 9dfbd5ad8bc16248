package shutdown

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type fakePorts struct {
	port uint16
	v    uint8
}

func (p *fakePorts) Outb(port uint16, v uint8) { p.port, p.v = port, v }

func TestExitWritesCodeToDebugExitPort(t *testing.T) {
	fp := &fakePorts{}
	s := New(fp)
	s.Exit(Failure)
	require.EqualValues(t, 0xF4, fp.port)
	require.Equal(t, Failure, fp.v)
}
