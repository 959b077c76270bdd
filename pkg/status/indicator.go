// Package status draws a one-line sitting indicator at the bottom of the
// terminal for headless sessions without a system tray.
package status

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/Veraticus/stretchia/pkg/interfaces"
	"github.com/Veraticus/stretchia/pkg/types"
)

// Status represents the current notification status
type Status int

const (
	StatusIdle Status = iota
	StatusSending
	StatusSuccess
	StatusFailed
)

var stageColors = map[string]string{
	"green":  "\033[32m",
	"yellow": "\033[33m",
	"orange": "\033[38;5;208m",
	"red":    "\033[31m",
}

// Indicator manages the status display in the terminal. It is both the
// stage Renderer and an EventSink for the elapsed-time readout.
type Indicator struct {
	mu      sync.Mutex
	status  Status
	enabled bool
	writer  io.Writer

	stage     types.Stage
	afk       bool
	treadmill bool
	elapsedS  uint64
}

var (
	_ interfaces.Renderer  = (*Indicator)(nil)
	_ interfaces.EventSink = (*Indicator)(nil)
)

// NewIndicator creates a new status indicator
func NewIndicator(writer io.Writer, enabled bool) *Indicator {
	return &Indicator{
		status:  StatusIdle,
		writer:  writer,
		enabled: enabled,
	}
}

// SetIndicator implements interfaces.Renderer.
func (i *Indicator) SetIndicator(stage types.Stage, afk bool) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.stage = stage
	i.afk = afk
	return i.draw()
}

// Publish implements interfaces.EventSink.
func (i *Indicator) Publish(p types.TickPayload) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.elapsedS = p.ElapsedS
	i.treadmill = p.IsTreadmill
	// Best effort - don't fail if we can't update the display
	_ = i.draw()
}

// SetStatus updates the notification status
func (i *Indicator) SetStatus(status Status) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.status = status
	_ = i.draw()
}

// draw renders the status line. Callers hold i.mu.
func (i *Indicator) draw() error {
	if !i.enabled || i.writer == nil {
		return nil
	}

	// \0337 DECSC save cursor, \033[r reset scroll region, \033[999;1H last
	// line, \033[2K clear it, \0338 DECRC restore cursor.
	sequence := fmt.Sprintf("\0337\033[r\033[999;1H\033[2K%s\0338", i.getStatusText())
	_, err := fmt.Fprint(i.writer, sequence)
	return err
}

// getStatusText returns the status line with color
func (i *Indicator) getStatusText() string {
	color := stageColors[i.stage.Color()]
	parts := []string{fmt.Sprintf("%s●\033[0m %s", color, i.stage)}

	mode := "sitting"
	if i.treadmill {
		mode = "treadmill"
	}
	parts = append(parts, fmt.Sprintf("%s %s", mode, formatElapsed(i.elapsedS)))

	if i.afk {
		parts = append(parts, "\033[90mⓏ afk\033[0m")
	}

	switch i.status {
	case StatusSending:
		parts = append(parts, "\033[33m⟳ ntfy\033[0m")
	case StatusSuccess:
		parts = append(parts, "\033[32m✓ ntfy\033[0m")
	case StatusFailed:
		parts = append(parts, "\033[31m✗ ntfy\033[0m")
	}

	return strings.Join(parts, " ")
}

// formatElapsed renders seconds as H:MM:SS, or MM:SS under an hour.
func formatElapsed(s uint64) string {
	h, m, sec := s/3600, (s/60)%60, s%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%02d:%02d", m, sec)
}

// Clear removes the status indicator
func (i *Indicator) Clear() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.enabled || i.writer == nil {
		return nil
	}

	_, err := fmt.Fprint(i.writer, "\0337\033[999;1H\033[2K\0338")
	return err
}
