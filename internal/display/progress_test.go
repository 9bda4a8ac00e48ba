package display

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderBar(t *testing.T) {
	var buf bytes.Buffer
	s := &ConsoleSink{out: &buf, width: 40, isTTY: true}

	s.Start(10)
	s.Update(4, 10)
	s.Stop()

	out := buf.String()
	assert.Contains(t, out, "4/10 (40%)")
	assert.Contains(t, out, "\r[")
	assert.True(t, strings.HasSuffix(out, "\n"), "Stop terminates the bar line")
}

func TestSilentWhenNotTTY(t *testing.T) {
	var buf bytes.Buffer
	s := &ConsoleSink{out: &buf, width: 80, isTTY: false}

	s.Start(3)
	s.Update(1, 3)
	s.Update(2, 3)
	s.Stop()

	assert.Empty(t, buf.String())
}

func TestRenderZeroTotal(t *testing.T) {
	var buf bytes.Buffer
	s := &ConsoleSink{out: &buf, width: 40, isTTY: true}

	s.Start(0)
	s.Update(0, 0)
	s.Stop()
	// nothing but the terminating newline
	assert.Equal(t, "\n", buf.String())
}
