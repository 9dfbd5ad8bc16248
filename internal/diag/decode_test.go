package diag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeAtNop(t *testing.T) {
	out := DecodeAt([]byte{0x90}, 0x1000)
	require.Contains(t, out, "0x1000")
	require.Contains(t, strings.ToUpper(out), "NOP")
}

func TestDecodeAtRet(t *testing.T) {
	out := DecodeAt([]byte{0xC3}, 0x2000)
	require.Contains(t, out, "0x2000")
	require.Contains(t, strings.ToUpper(out), "RET")
}

func TestDecodeAtUndecodableReportsError(t *testing.T) {
	out := DecodeAt(nil, 0x3000)
	require.Contains(t, out, "undecodable")
}
