package session

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Spinner animates a status line on a terminal while an exchange is in flight
type Spinner struct {
	writer  io.Writer
	message string
	stop    chan struct{}
	done    sync.WaitGroup
	once    sync.Once
}

// NewSpinner creates a spinner that writes to w
func NewSpinner(w io.Writer, message string) *Spinner {
	return &Spinner{
		writer:  w,
		message: message,
		stop:    make(chan struct{}),
	}
}

// Start begins the animation in a goroutine
func (s *Spinner) Start() {
	s.done.Add(1)
	go func() {
		defer s.done.Done()
		frames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for i := 0; ; i = (i + 1) % len(frames) {
			fmt.Fprintf(s.writer, "\r%s %s", frames[i], s.message)
			select {
			case <-s.stop:
				fmt.Fprintf(s.writer, "\r\033[K")
				return
			case <-ticker.C:
			}
		}
	}()
}

// Stop ends the animation and clears the line. Safe to call more than once.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		close(s.stop)
	})
	s.done.Wait()
}
