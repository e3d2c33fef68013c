package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

var errSpinnerStopped = errors.New("spinner stopped")

// Spinner animates a single status line with the elapsed time while a
// compile request is in flight. It stops when Stop is called or when its
// parent context ends.
type Spinner struct {
	w       io.Writer
	message string
	ctx     context.Context
	stop    context.CancelCauseFunc
	wg      sync.WaitGroup

	mu    sync.Mutex
	width int // widest line drawn since the last clear
}

func newSpinner(ctx context.Context, w io.Writer, message string) *Spinner {
	ctx, stop := context.WithCancelCause(ctx)
	return &Spinner{w: w, message: message, ctx: ctx, stop: stop}
}

func (s *Spinner) Start() {
	began := time.Now()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		tick := time.NewTicker(80 * time.Millisecond)
		defer tick.Stop()

		for frame := 0; ; frame++ {
			select {
			case <-s.ctx.Done():
				s.clear()
				return
			case <-tick.C:
				s.draw(spinnerFrames[frame%len(spinnerFrames)], time.Since(began))
			}
		}
	}()
}

func (s *Spinner) draw(frame string, elapsed time.Duration) {
	line := fmt.Sprintf("%s %s %s",
		styleIconSpinner.Render(frame),
		StyleDim.Render(s.message),
		StyleDim.Render(elapsed.Truncate(100*time.Millisecond).String()))

	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "\r%s", line)
	s.width = max(s.width, lipgloss.Width(line))
}

func (s *Spinner) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width == 0 {
		return
	}
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width))
	s.width = 0
}

// Stop ends the animation and blanks the line. Safe to call repeatedly or
// without Start.
func (s *Spinner) Stop() {
	s.stop(errSpinnerStopped)
	s.wg.Wait()
	s.clear()
}

func (s *Spinner) StopWithSuccess(message string) {
	s.Stop()
	printSuccess(s.w, "%s", message)
}

func (s *Spinner) StopWithError(message string) {
	s.Stop()
	printError(s.w, "%s", message)
}

// Cancelled reports whether the parent context ended rather than Stop.
func (s *Spinner) Cancelled() bool {
	return s.ctx.Err() != nil && !errors.Is(context.Cause(s.ctx), errSpinnerStopped)
}
