package console

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPrintfFormats(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf)
	c.Printf("pages: %d", 2048)
	require.Equal(t, "pages: 2048", buf.String())
}

func TestPrintlnJoinsWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf)
	c.Println("kernel", "ready")
	require.Equal(t, "kernel ready\n", buf.String())
}

func TestConcurrentWritesDoNotInterleave(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Println("line")
		}()
	}
	wg.Wait()

	for _, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		require.Equal(t, "line", line)
	}
}

func TestPadToPadsShortStrings(t *testing.T) {
	require.Equal(t, "abc  ", PadTo("abc", 5))
}

func TestPadToLeavesLongStringsUnchanged(t *testing.T) {
	require.Equal(t, "abcdef", PadTo("abcdef", 3))
}
