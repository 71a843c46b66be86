package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// SpinnerState is the lifecycle of a Spinner.
type SpinnerState int

const (
	SpinnerPending SpinnerState = iota
	SpinnerInProgress
	SpinnerSuccess
	SpinnerFailed
	SpinnerSkipped
)

var spinnerFrames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

const spinnerInterval = 80 * time.Millisecond

// Spinner shows "<frame> label..." on one line while a request runs, then
// replaces it with a final status line.
type Spinner struct {
	mu      sync.Mutex
	w       io.Writer
	label   string
	state   SpinnerState
	frame   int
	started time.Time
	lastLen int
	stop    chan struct{}
	done    chan struct{}
}

// NewSpinner creates a pending spinner writing to w.
func NewSpinner(w io.Writer, label string) *Spinner {
	return &Spinner{w: w, label: label}
}

// Start begins animating. Calling Start twice is a no-op.
func (s *Spinner) Start() {
	s.mu.Lock()
	if s.state == SpinnerInProgress {
		s.mu.Unlock()
		return
	}
	s.state = SpinnerInProgress
	s.started = time.Now()
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.drawLocked()
	s.mu.Unlock()

	go s.animate()
}

func (s *Spinner) animate() {
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()
	defer close(s.done)
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			s.frame = (s.frame + 1) % len(spinnerFrames)
			s.drawLocked()
			s.mu.Unlock()
		}
	}
}

func (s *Spinner) drawLocked() {
	color := GradientColors[(s.frame/2)%len(GradientColors)]
	line := fmt.Sprintf("%s %s...", lipgloss.NewStyle().Foreground(color).Render(spinnerFrames[s.frame]), s.label)
	s.clearLocked()
	fmt.Fprint(s.w, line)
	s.lastLen = lipgloss.Width(line)
}

func (s *Spinner) clearLocked() {
	if s.lastLen > 0 {
		fmt.Fprint(s.w, "\r"+strings.Repeat(" ", s.lastLen)+"\r")
		s.lastLen = 0
	}
}

// Success stops the spinner with a success mark.
func (s *Spinner) Success() { s.finish(SpinnerSuccess) }

// Fail stops the spinner with a failure mark.
func (s *Spinner) Fail() { s.finish(SpinnerFailed) }

// Skip stops the spinner with a skipped mark.
func (s *Spinner) Skip() { s.finish(SpinnerSkipped) }

func (s *Spinner) finish(final SpinnerState) {
	s.mu.Lock()
	if s.state != SpinnerInProgress {
		s.mu.Unlock()
		return
	}
	close(s.stop)
	done := s.done
	s.mu.Unlock()
	<-done

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = final

	var symbol string
	var style lipgloss.Style
	switch final {
	case SpinnerSuccess:
		symbol, style = SymbolSuccess, SuccessStyle()
	case SpinnerFailed:
		symbol, style = SymbolFail, ErrorStyle()
	default:
		symbol, style = SymbolSkipped, WarningStyle()
	}
	s.clearLocked()
	fmt.Fprintf(s.w, "%s %s %s\n", style.Render(symbol), s.label,
		MutedStyle().Render(FormatDuration(time.Since(s.started))))
}

// State returns the current state.
func (s *Spinner) State() SpinnerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetLabel changes the label shown from the next frame on.
func (s *Spinner) SetLabel(label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.label = label
}

// FormatDuration renders short durations as "0.04s" and longer ones as "1.2s".
func FormatDuration(d time.Duration) string {
	secs := d.Seconds()
	if secs < 0.1 {
		return fmt.Sprintf("%.2fs", secs)
	}
	return fmt.Sprintf("%.1fs", secs)
}
