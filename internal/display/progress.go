// Package display renders run progress on the terminal. It implements the
// engine's ProgressSink interface; the engine never depends on a concrete
// renderer.
package display

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

const defaultWidth = 80

// ConsoleSink draws an in-place progress bar. Updates arrive in completion
// order from concurrent workers, so rendering is serialized with a mutex.
type ConsoleSink struct {
	mu    sync.Mutex
	out   io.Writer
	width int
	isTTY bool
	total int
}

// NewConsoleSink builds a sink writing to stderr. When stderr is not a
// terminal the bar degrades to silence; per-run summaries still go through
// the logger.
func NewConsoleSink() *ConsoleSink {
	width := defaultWidth
	isTTY := term.IsTerminal(int(os.Stderr.Fd()))
	if isTTY {
		if w, _, err := term.GetSize(int(os.Stderr.Fd())); err == nil && w > 20 {
			width = w
		}
	}
	return &ConsoleSink{out: os.Stderr, width: width, isTTY: isTTY}
}

func (s *ConsoleSink) Start(total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total = total
	if s.isTTY {
		s.render(0, total)
	}
}

func (s *ConsoleSink) Update(current, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isTTY {
		s.render(current, total)
	}
}

func (s *ConsoleSink) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isTTY {
		fmt.Fprintln(s.out)
	}
}

// render draws "[#####-----] 12/30 (40%)" clamped to the terminal width.
func (s *ConsoleSink) render(current, total int) {
	if total <= 0 {
		return
	}
	pct := current * 100 / total
	label := fmt.Sprintf(" %d/%d (%d%%)", current, total, pct)

	barWidth := s.width - len(label) - 2
	if barWidth < 10 {
		barWidth = 10
	}
	filled := barWidth * current / total
	bar := strings.Repeat("#", filled) + strings.Repeat("-", barWidth-filled)

	fmt.Fprintf(s.out, "\r[%s]%s", bar, label)
}
