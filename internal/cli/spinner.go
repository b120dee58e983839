package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// spinnerFrames is the braille animation cycle.
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// spinnerInterval is the frame advance rate.
const spinnerInterval = 80 * time.Millisecond

// Spinner renders an animated progress indicator on stderr while a
// long-running operation executes. It stops on its own when the
// attached context is canceled, so Ctrl-C leaves a clean line.
type Spinner struct {
	message string
	parent  context.Context
	ctx     context.Context
	cancel  context.CancelFunc

	stopOnce sync.Once
	stopped  chan struct{} // closed when the render goroutine exits
}

// newSpinner creates a spinner without context cancellation.
func newSpinner(format string, args ...any) *Spinner {
	return newSpinnerWithContext(context.Background(), format, args...)
}

// newSpinnerWithContext creates a spinner that stops when ctx is canceled.
func newSpinnerWithContext(ctx context.Context, format string, args ...any) *Spinner {
	child, cancel := context.WithCancel(ctx)
	return &Spinner{
		message: fmt.Sprintf(format, args...),
		parent:  ctx,
		ctx:     child,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}
}

// Start begins the animation. It returns immediately; rendering runs in
// a background goroutine until Stop or context cancellation.
func (s *Spinner) Start() {
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()

		frame := 0
		for {
			select {
			case <-s.ctx.Done():
				s.clearLine()
				return
			case <-ticker.C:
				fmt.Fprintf(os.Stderr, "\r%s %s",
					styleIconSpinner.Render(spinnerFrames[frame]),
					StyleDim.Render(s.message))
				frame = (frame + 1) % len(spinnerFrames)
			}
		}
	}()
}

// Stop halts the animation and clears the spinner line. Safe to call
// multiple times.
func (s *Spinner) Stop() {
	s.stopOnce.Do(func() {
		s.cancel()
		<-s.stopped
	})
}

// StopWithSuccess stops the spinner and prints a success line.
func (s *Spinner) StopWithSuccess(format string, args ...any) {
	s.Stop()
	printSuccess(format, args...)
}

// StopWithError stops the spinner and prints an error line.
func (s *Spinner) StopWithError(format string, args ...any) {
	s.Stop()
	printError(format, args...)
}

// Cancelled reports whether the parent context was canceled, as opposed
// to the spinner being stopped explicitly.
func (s *Spinner) Cancelled() bool {
	return s.parent.Err() != nil
}

// clearLine erases the spinner from the terminal.
func (s *Spinner) clearLine() {
	width := len(s.message) + 2
	fmt.Fprintf(os.Stderr, "\r%s\r", strings.Repeat(" ", width))
}
