// Package spinner draws a single-line progress indicator on a terminal.
package spinner

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-runewidth"
)

var frames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const interval = 80 * time.Millisecond

// Spinner animates a message on w until Stop is called. The message can be
// replaced while the spinner runs.
type Spinner struct {
	w io.Writer

	mu      sync.Mutex
	message string
	widest  int // display columns of the longest message shown

	done     chan struct{}
	cleared  chan struct{}
	stopOnce sync.Once
}

// Start displays an animated spinner with the given message on w.
// Call Stop to stop the spinner and clear the line.
func Start(w io.Writer, message string) *Spinner {
	s := &Spinner{
		w:       w,
		message: message,
		widest:  runewidth.StringWidth(message),
		done:    make(chan struct{}),
		cleared: make(chan struct{}),
	}
	go s.run()
	return s
}

// Update replaces the message shown next to the spinner.
func (s *Spinner) Update(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
	if w := runewidth.StringWidth(message); w > s.widest {
		s.widest = w
	}
}

// Stop halts the animation and clears the line. It is safe to call more
// than once.
func (s *Spinner) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
	})
	<-s.cleared
}

func (s *Spinner) run() {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	i := 0
	for {
		select {
		case <-s.done:
			s.mu.Lock()
			width := s.widest
			s.mu.Unlock()
			fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", width+2)) //nolint:errcheck
			close(s.cleared)
			return
		case <-ticker.C:
			s.mu.Lock()
			msg, width := s.message, s.widest
			s.mu.Unlock()
			// Pad so a shorter message fully overwrites a longer one.
			fmt.Fprintf(s.w, "\r%s %s", frames[i%len(frames)], runewidth.FillRight(msg, width)) //nolint:errcheck
			i++
		}
	}
}
