// Package session implements the user commands that end or switch
// activity sessions, plus the settings and history queries behind the UI.
//
// Every state mutation reads the values it needs and mutates in one
// Tracker.Update call; persistence happens afterwards, outside the lock.
package session

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Veraticus/stretchia/pkg/interfaces"
	"github.com/Veraticus/stretchia/pkg/metrics"
	"github.com/Veraticus/stretchia/pkg/store"
	"github.com/Veraticus/stretchia/pkg/timer"
	"github.com/Veraticus/stretchia/pkg/types"
)

// ErrInvalidSetting is returned for an empty setting key.
var ErrInvalidSetting = errors.New("invalid setting")

const exportTimeout = 10 * time.Second

// Completed describes a finished session. Persisted is false when the store
// rejected the write; the state transition happened regardless.
type Completed struct {
	Workout   types.Workout `json:"workout"`
	Persisted bool          `json:"persisted"`
}

// Service handles session commands against the shared Tracker.
type Service struct {
	tracker  *timer.Tracker
	store    interfaces.Store
	exporter interfaces.SessionExporter
	logger   logrus.FieldLogger
	now      func() time.Time

	exports sync.WaitGroup
}

// NewService creates a service. exporter may be nil.
func NewService(tracker *timer.Tracker, st interfaces.Store, exporter interfaces.SessionExporter, logger logrus.FieldLogger) *Service {
	return &Service{
		tracker:  tracker,
		store:    st,
		exporter: exporter,
		logger:   logger,
		now:      time.Now,
	}
}

// Current returns the state as of the last tick.
func (s *Service) Current() types.TickPayload {
	return s.tracker.Snapshot()
}

// RecordStretch completes the sitting session with a fixed-length stretch
// break starting now. A running treadmill session is abandoned unrecorded;
// the stretch keeps the sitting time that preceded it.
func (s *Service) RecordStretch(ctx context.Context) (Completed, error) {
	now := s.now()
	var (
		sittingBefore uint64
		abandoned     time.Time
	)

	err := s.tracker.Update(func(st *timer.State) error {
		sittingBefore = st.ElapsedS
		if st.Mode == types.ModeSecondary {
			sittingBefore = st.SittingBeforeS
			abandoned = st.SecondaryStartedAt
		}
		st.Reset()
		return nil
	})
	if err != nil {
		return Completed{}, err
	}
	if !abandoned.IsZero() {
		s.logger.WithField("treadmill_s", uint64(now.Sub(abandoned)/time.Second)).
			Info("treadmill session abandoned for stretch")
	}

	return s.persist(ctx, types.Session{
		Kind:           types.SessionStretch,
		StartedAt:      now,
		EndedAt:        now.Add(types.StretchDuration),
		DurationS:      uint64(types.StretchDuration / time.Second),
		SittingBeforeS: sittingBefore,
	}), nil
}

// StartTreadmill switches to the secondary activity.
func (s *Service) StartTreadmill(_ context.Context) error {
	now := s.now()
	var sittingBefore uint64
	err := s.tracker.Update(func(st *timer.State) error {
		sittingBefore = st.ElapsedS
		return st.StartSecondary(now)
	})
	if err != nil {
		return err
	}
	s.logger.WithField("sitting_before_s", sittingBefore).Info("treadmill started")
	return nil
}

// StopTreadmill ends the secondary activity and records it.
func (s *Service) StopTreadmill(ctx context.Context) (Completed, error) {
	now := s.now()
	var (
		startedAt     time.Time
		duration      uint64
		sittingBefore uint64
	)

	err := s.tracker.Update(func(st *timer.State) error {
		var err error
		startedAt, duration, sittingBefore, err = st.StopSecondary(now)
		return err
	})
	if err != nil {
		return Completed{}, err
	}

	return s.persist(ctx, types.Session{
		Kind:           types.SessionTreadmill,
		StartedAt:      startedAt,
		EndedAt:        startedAt.Add(time.Duration(duration) * time.Second),
		DurationS:      duration,
		SittingBeforeS: sittingBefore,
	}), nil
}

// persist writes a completed session and hands it to the exporter. Store
// failures are logged and dropped.
func (s *Service) persist(ctx context.Context, session types.Session) Completed {
	log := s.logger.WithFields(logrus.Fields{
		"kind":             session.Kind,
		"duration_s":       session.DurationS,
		"sitting_before_s": session.SittingBeforeS,
	})

	w, err := s.store.RecordSession(ctx, session)
	if err != nil {
		metrics.RecordPersistenceFailure("session")
		log.WithError(err).Warn("session not recorded")
		return Completed{}
	}
	metrics.RecordSession(session.Kind)
	log.WithField("id", w.ID).Info("session recorded")

	if s.exporter != nil {
		s.exports.Add(1)
		go func() {
			defer s.exports.Done()
			ectx, cancel := context.WithTimeout(context.WithoutCancel(ctx), exportTimeout)
			defer cancel()
			if err := s.exporter.Export(ectx, w); err != nil {
				log.WithError(err).Warn("session export failed")
			}
		}()
	}
	return Completed{Workout: w, Persisted: true}
}

// ApplySettings reloads the thresholds from the store into the state. Absent
// or malformed values fall back to the defaults.
func (s *Service) ApplySettings(ctx context.Context) timer.Thresholds {
	def := timer.DefaultThresholds()
	t := timer.Thresholds{
		AFKThresholdS: s.minutes(ctx, store.KeyAFKThresholdMin, def.AFKThresholdS/60, maxAFKMinutes) * 60,
		WarnAtMin:     s.minutes(ctx, store.KeyWarnAtMin, def.WarnAtMin, math.MaxUint64),
		ShakeAtMin:    s.minutes(ctx, store.KeyShakeAtMin, def.ShakeAtMin, math.MaxUint64),
	}

	if err := s.tracker.Update(func(st *timer.State) error {
		st.ApplyConfig(t)
		return nil
	}); err != nil {
		s.logger.WithError(err).Warn("thresholds not applied")
		return s.tracker.Thresholds()
	}

	s.logger.WithFields(logrus.Fields{
		"afk_threshold_s": t.AFKThresholdS,
		"warn_at_min":     t.WarnAtMin,
		"shake_at_min":    t.ShakeAtMin,
	}).Debug("thresholds applied")
	return t
}

// maxAFKMinutes keeps the AFK threshold in seconds within uint64.
const maxAFKMinutes = math.MaxUint64 / 60

// minutes reads a whole-minute setting, falling back when it is absent,
// malformed or above limit.
func (s *Service) minutes(ctx context.Context, key string, fallback, limit uint64) uint64 {
	raw, ok := s.store.GetSetting(ctx, key)
	if !ok {
		return fallback
	}
	v, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err == nil && v > limit {
		err = strconv.ErrRange
	}
	if err != nil {
		s.logger.WithField("key", key).WithField("value", raw).Debug("malformed setting, using default")
		return fallback
	}
	return v
}

// UpdateSetting stores a setting. Thresholds take effect on ApplySettings.
func (s *Service) UpdateSetting(ctx context.Context, key, value string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidSetting)
	}
	return s.store.SetSetting(ctx, key, value)
}

// Settings returns every stored setting.
func (s *Service) Settings(ctx context.Context) ([]types.Setting, error) {
	return s.store.Settings(ctx)
}

// TodayHistory returns today's workouts in start order.
func (s *Service) TodayHistory(ctx context.Context) ([]types.Workout, error) {
	return s.store.Workouts(ctx, s.now())
}

// DayStats aggregates one local calendar day.
func (s *Service) DayStats(ctx context.Context, day time.Time) (types.DayStats, error) {
	return s.store.DayStats(ctx, day)
}

// DeleteWorkout removes a workout from history.
func (s *Service) DeleteWorkout(ctx context.Context, id string) error {
	return s.store.DeleteWorkout(ctx, id)
}

// Close waits for in-flight exports.
func (s *Service) Close() {
	s.exports.Wait()
}
