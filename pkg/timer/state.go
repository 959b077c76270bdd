package timer

import (
	"errors"
	"time"

	"github.com/Veraticus/stretchia/pkg/types"
)

var (
	// ErrSecondaryActive is returned when a secondary session is started twice.
	ErrSecondaryActive = errors.New("secondary activity already in progress")
	// ErrNotSecondary is returned when stopping while no secondary session runs.
	ErrNotSecondary = errors.New("no secondary activity in progress")
)

// Thresholds are the configured limits, owned by State.
type Thresholds struct {
	AFKThresholdS uint64
	WarnAtMin     uint64
	ShakeAtMin    uint64
}

// DefaultThresholds returns 5 minutes AFK, warn at 45 and shake at 75 minutes.
func DefaultThresholds() Thresholds {
	return Thresholds{
		AFKThresholdS: 5 * 60,
		WarnAtMin:     45,
		ShakeAtMin:    75,
	}
}

// State is the mutable activity record. It is not safe for concurrent use;
// share it through a Tracker.
type State struct {
	Mode               types.Mode
	ElapsedS           uint64
	SecondaryStartedAt time.Time // zero unless Mode is ModeSecondary
	SittingBeforeS     uint64
	IsAFK              bool
	Thresholds         Thresholds
}

// NewState returns a sitting state with default thresholds.
func NewState() *State {
	return &State{
		Mode:       types.ModeSitting,
		Thresholds: DefaultThresholds(),
	}
}

// Tick advances one interval. It reports whether the AFK flag changed.
func (s *State) Tick(idleS uint64) bool {
	wasAFK := s.IsAFK
	s.IsAFK = idleS >= s.Thresholds.AFKThresholdS
	if !s.IsAFK {
		s.ElapsedS++
	}
	return wasAFK != s.IsAFK
}

// Stage classifies the current elapsed time against the current thresholds.
func (s *State) Stage() types.Stage {
	return Classify(s.ElapsedS, s.Thresholds.WarnAtMin, s.Thresholds.ShakeAtMin)
}

// Reset completes a sitting session. Callers that persist the session must
// read ElapsedS before calling Reset.
func (s *State) Reset() {
	s.SittingBeforeS = s.ElapsedS
	s.ElapsedS = 0
	s.Mode = types.ModeSitting
	s.SecondaryStartedAt = time.Time{}
}

// StartSecondary switches to the secondary activity. Starting twice is
// rejected so the original start time is never lost.
func (s *State) StartSecondary(now time.Time) error {
	if s.Mode == types.ModeSecondary {
		return ErrSecondaryActive
	}
	s.SittingBeforeS = s.ElapsedS
	s.ElapsedS = 0
	s.Mode = types.ModeSecondary
	s.SecondaryStartedAt = now
	return nil
}

// StopSecondary ends the secondary activity and returns the values needed
// to persist it, since the mutation destroys them.
func (s *State) StopSecondary(now time.Time) (startedAt time.Time, durationS, sittingBeforeS uint64, err error) {
	if s.Mode != types.ModeSecondary {
		return time.Time{}, 0, 0, ErrNotSecondary
	}

	startedAt = s.SecondaryStartedAt
	if startedAt.IsZero() {
		startedAt = now
	}
	durationS = s.ElapsedS
	sittingBeforeS = s.SittingBeforeS

	s.ElapsedS = 0
	s.Mode = types.ModeSitting
	s.SecondaryStartedAt = time.Time{}
	s.SittingBeforeS = 0
	return startedAt, durationS, sittingBeforeS, nil
}

// ApplyConfig replaces the thresholds. Elapsed time is not recomputed.
func (s *State) ApplyConfig(t Thresholds) {
	s.Thresholds = t
}

// Payload builds the UI tick payload for the current state.
func (s *State) Payload() types.TickPayload {
	return types.TickPayload{
		Mode:        s.Mode.String(),
		ElapsedS:    s.ElapsedS,
		Stage:       s.Stage().String(),
		IsAFK:       s.IsAFK,
		IsTreadmill: s.Mode == types.ModeSecondary,
	}
}
