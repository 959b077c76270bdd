package timer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Veraticus/stretchia/pkg/types"
)

// ErrStateUnavailable is returned to command handlers when a state mutation
// panicked. The state is left as the panicking function found it.
var ErrStateUnavailable = errors.New("activity state unavailable")

// Tracker is the single lock-guarded handle to the process-wide State.
// The coordinator and every command handler share one Tracker.
type Tracker struct {
	mu    sync.Mutex
	state *State

	// last observed (stage, afk) pair, used to suppress redundant renders
	observed  bool
	lastStage types.Stage
	lastAFK   bool
}

// NewTracker wraps state. A nil state starts from NewState.
func NewTracker(state *State) *Tracker {
	if state == nil {
		state = NewState()
	}
	return &Tracker{state: state}
}

// Update runs fn with exclusive access to the state.
func (t *Tracker) Update(fn func(*State) error) (err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrStateUnavailable, r)
		}
	}()
	return fn(t.state)
}

// Snapshot returns the current payload without advancing time.
func (t *Tracker) Snapshot() types.TickPayload {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.Payload()
}

// Thresholds returns the thresholds currently in effect.
func (t *Tracker) Thresholds() Thresholds {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.Thresholds
}

// advance is one interval's read-modify-write. It returns the post-tick
// payload and whether (stage, afk) differs from the last observed pair.
func (t *Tracker) advance(idleS uint64) (payload types.TickPayload, stage types.Stage, changed bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.Tick(idleS)
	stage = t.state.Stage()
	afk := t.state.IsAFK

	if !t.observed || stage != t.lastStage || afk != t.lastAFK {
		changed = true
		t.observed = true
		t.lastStage = stage
		t.lastAFK = afk
	}
	return t.state.Payload(), stage, changed
}
