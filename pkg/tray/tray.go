// Package tray renders the stage as a system tray icon and turns tray menu
// clicks into session commands.
package tray

import (
	"context"
	"errors"
	"os/exec"
	"runtime"
	"strings"
	"sync"

	"github.com/getlantern/systray"
	"github.com/sirupsen/logrus"

	"github.com/Veraticus/stretchia/pkg/interfaces"
	"github.com/Veraticus/stretchia/pkg/session"
	"github.com/Veraticus/stretchia/pkg/types"
)

type action int

const (
	actionState action = iota
	actionStretch
	actionTreadmillStart
	actionTreadmillStop
	actionStats
	actionSettings
	actionQuit
)

func (a action) String() string {
	switch a {
	case actionState:
		return "state"
	case actionStretch:
		return "stretch_now"
	case actionTreadmillStart:
		return "treadmill_start"
	case actionTreadmillStop:
		return "treadmill_stop"
	case actionStats:
		return "stats"
	case actionSettings:
		return "settings"
	case actionQuit:
		return "quit"
	default:
		return "unknown"
	}
}

type endpointEntry struct {
	label   string
	tooltip string
	path    string
}

// endpointEntries open a JSON view of the HTTP surface in the browser.
var endpointEntries = map[action]endpointEntry{
	actionState:     {"Current State (JSON)", "Open the live state as JSON", "/api/state"},
	actionStats:    {"Today's Statistics (JSON)", "Open today's statistics as JSON", "/api/stats"},
	actionSettings: {"Settings (JSON)", "Open the stored settings as JSON", "/api/settings"},
}

var errNoUI = errors.New("local UI disabled")

// toggle is the part of *systray.MenuItem the treadmill entries need.
type toggle interface {
	Enable()
	Disable()
}

// Tray owns the tray menu. It is an EventSink so the treadmill entries follow
// the mode no matter which surface changed it.
type Tray struct {
	svc      *session.Service
	renderer *Renderer
	uiURL    string
	logger   logrus.FieldLogger

	open func(url string) error
	quit func()

	mu             sync.Mutex
	treadmillStart toggle
	treadmillStop  toggle
	treadmill      bool
	synced         bool
}

var _ interfaces.EventSink = (*Tray)(nil)

// New creates a tray. uiURL is the base URL of the local HTTP surface; empty
// disables the endpoint entries.
func New(svc *session.Service, renderer *Renderer, uiURL string, logger logrus.FieldLogger) *Tray {
	return &Tray{
		svc:      svc,
		renderer: renderer,
		uiURL:    strings.TrimRight(uiURL, "/"),
		logger:   logger,
		open:     openBrowser,
		quit:     systray.Quit,
	}
}

// SetUIURL replaces the HTTP surface base URL. Call it before Run.
func (t *Tray) SetUIURL(uiURL string) {
	t.uiURL = strings.TrimRight(uiURL, "/")
}

// Publish implements interfaces.EventSink.
func (t *Tray) Publish(p types.TickPayload) {
	t.setTreadmill(p.IsTreadmill)
}

// Run shows the tray and blocks until Quit. It must be called from the main
// goroutine. onExit runs after the tray is torn down.
func (t *Tray) Run(ctx context.Context, onExit func()) {
	systray.Run(func() { t.onReady(ctx) }, onExit)
}

// Quit removes the tray, unblocking Run.
func (t *Tray) Quit() {
	t.quit()
}

func (t *Tray) onReady(ctx context.Context) {
	systray.SetTitle("")
	if err := t.renderer.markReady(); err != nil {
		t.logger.WithError(err).Warn("tray icon not set")
	}

	state := addEndpointItem(actionState)
	stretch := systray.AddMenuItem("Stretch Now", "Record a stretch break")
	treadmillStart := systray.AddMenuItem("Start Treadmill", "Start a treadmill session")
	treadmillStop := systray.AddMenuItem("Stop Treadmill", "Finish the treadmill session")
	stats := addEndpointItem(actionStats)
	settings := addEndpointItem(actionSettings)
	systray.AddSeparator()
	quit := systray.AddMenuItem("Quit", "Quit Stretchia")

	t.attachItems(treadmillStart, treadmillStop)

	go func() {
		for {
			var a action
			select {
			case <-ctx.Done():
				return
			case <-state.ClickedCh:
				a = actionState
			case <-stretch.ClickedCh:
				a = actionStretch
			case <-treadmillStart.ClickedCh:
				a = actionTreadmillStart
			case <-treadmillStop.ClickedCh:
				a = actionTreadmillStop
			case <-stats.ClickedCh:
				a = actionStats
			case <-settings.ClickedCh:
				a = actionSettings
			case <-quit.ClickedCh:
				a = actionQuit
			}
			if err := t.handle(ctx, a); err != nil {
				t.logger.WithError(err).WithField("action", a).Warn("tray command failed")
			}
			t.setTreadmill(t.svc.Current().IsTreadmill)
		}
	}()
}

func (t *Tray) handle(ctx context.Context, a action) error {
	switch a {
	case actionState, actionStats, actionSettings:
		return t.openPath(endpointEntries[a].path)
	case actionStretch:
		done, err := t.svc.RecordStretch(ctx)
		if err != nil {
			return err
		}
		t.logger.WithField("persisted", done.Persisted).Info("stretch recorded")
	case actionTreadmillStart:
		return t.svc.StartTreadmill(ctx)
	case actionTreadmillStop:
		done, err := t.svc.StopTreadmill(ctx)
		if err != nil {
			return err
		}
		t.logger.WithFields(logrus.Fields{
			"duration_s": done.Workout.DurationS,
			"persisted":  done.Persisted,
		}).Info("treadmill session recorded")
	case actionQuit:
		t.quit()
	}
	return nil
}

func (t *Tray) openPath(path string) error {
	if t.uiURL == "" {
		return errNoUI
	}
	return t.open(t.uiURL + path)
}

func addEndpointItem(a action) *systray.MenuItem {
	e := endpointEntries[a]
	return systray.AddMenuItem(e.label, e.tooltip)
}

// attachItems hands the treadmill entries to the tray and applies the
// current mode to them.
func (t *Tray) attachItems(start, stop toggle) {
	on := t.svc.Current().IsTreadmill

	t.mu.Lock()
	defer t.mu.Unlock()
	t.treadmillStart = start
	t.treadmillStop = stop
	t.treadmill = on
	t.synced = false
	t.applyItems()
}

// setTreadmill enables whichever treadmill entry applies. Repeats of the
// applied mode are no-ops.
func (t *Tray) setTreadmill(on bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.synced && t.treadmill == on {
		return
	}
	t.treadmill = on
	t.applyItems()
}

// applyItems requires t.mu.
func (t *Tray) applyItems() {
	if t.treadmillStart == nil || t.treadmillStop == nil {
		return
	}
	if t.treadmill {
		t.treadmillStart.Disable()
		t.treadmillStop.Enable()
	} else {
		t.treadmillStart.Enable()
		t.treadmillStop.Disable()
	}
	t.synced = true
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
