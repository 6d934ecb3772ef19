package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner animates while posters render. With a total above one it also
// shows how many posters have finished.
type Spinner struct {
	w       io.Writer
	message string
	total   int
	done    atomic.Int64

	ctx     context.Context
	cancel  context.CancelFunc
	stop    chan struct{}
	stopped chan struct{}
	started atomic.Bool
	once    sync.Once

	mu    sync.Mutex
	width int // printed width of the last line, for clearing
}

// newSpinner creates a spinner for total posters that stops when ctx is
// cancelled.
func newSpinner(ctx context.Context, w io.Writer, message string, total int) *Spinner {
	spinnerCtx, cancel := context.WithCancel(ctx)
	return &Spinner{
		w:       w,
		message: message,
		total:   total,
		ctx:     spinnerCtx,
		cancel:  cancel,
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Advance records one finished poster. Safe for concurrent use, so it can
// be handed to pipeline.Options.OnPoster directly.
func (s *Spinner) Advance() {
	s.done.Add(1)
}

// line returns the text shown next to the frame.
func (s *Spinner) line() string {
	if s.total <= 1 {
		return s.message
	}
	return fmt.Sprintf("%s %d/%d", s.message, s.done.Load(), s.total)
}

// Start begins the animation in the background.
func (s *Spinner) Start() {
	s.started.Store(true)
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				s.clearLine()
				return
			case <-s.stop:
				return
			case <-ticker.C:
				s.draw(spinnerFrames[i%len(spinnerFrames)])
			}
		}
	}()
}

func (s *Spinner) draw(frame string) {
	text := s.line()
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(text))
	s.width = max(s.width, len(text)+4)
}

// Stop ends the animation and clears the line. Calling it again is a no-op.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		close(s.stop)
		if s.started.Load() {
			<-s.stopped
		}
		s.cancel()
		s.clearLine()
	})
}

func (s *Spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width > 0 {
		fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width))
		s.width = 0
	}
}
