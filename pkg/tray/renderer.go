package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"github.com/Veraticus/stretchia/pkg/interfaces"
	"github.com/Veraticus/stretchia/pkg/types"
)

// Renderer shows the stage as the tray icon. Updates that arrive before the
// tray is ready are held and applied once it is.
type Renderer struct {
	mu         sync.Mutex
	ready      bool
	pending    bool
	stage      types.Stage
	afk        bool
	setIcon    func([]byte)
	setTooltip func(string)
}

var _ interfaces.Renderer = (*Renderer)(nil)

// NewRenderer creates a renderer bound to the system tray.
func NewRenderer() *Renderer {
	return &Renderer{
		setIcon:    systray.SetIcon,
		setTooltip: systray.SetTooltip,
	}
}

// SetIndicator implements interfaces.Renderer.
func (r *Renderer) SetIndicator(stage types.Stage, afk bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stage, r.afk = stage, afk
	if !r.ready {
		r.pending = true
		return nil
	}
	return r.apply()
}

// markReady is called from the tray's ready callback.
func (r *Renderer) markReady() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ready = true
	if !r.pending {
		r.stage, r.afk = types.StageGreen, false
	}
	r.pending = false
	return r.apply()
}

func (r *Renderer) apply() error {
	icon, err := Icon(r.stage)
	if err != nil {
		return err
	}
	r.setIcon(icon)
	r.setTooltip(tooltip(r.stage, r.afk))
	return nil
}

func tooltip(stage types.Stage, afk bool) string {
	if afk {
		return fmt.Sprintf("Stretchia: %s (away)", stage)
	}
	return fmt.Sprintf("Stretchia: %s", stage)
}
