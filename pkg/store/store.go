// Package store holds what the SQLite and Postgres backends share: the
// seeded settings, the setting keys and the sentinel errors.
package store

import (
	"errors"
	"math"
	"time"

	"github.com/Veraticus/stretchia/pkg/types"
)

// ErrNotFound is returned when a workout id does not exist.
var ErrNotFound = errors.New("workout not found")

// Setting keys.
const (
	KeyAFKThresholdMin  = "afk_threshold_min"
	KeyWarnAtMin        = "warn_at_min"
	KeyShakeAtMin       = "shake_at_min"
	KeyWindowOpacity    = "window_opacity"
	KeyHistoryDotsCount = "history_dots_count"
)

// Defaults are seeded into a fresh database. Existing values are never
// overwritten.
var Defaults = []types.Setting{
	{Key: KeyAFKThresholdMin, Value: "5"},
	{Key: KeyWarnAtMin, Value: "45"},
	{Key: KeyShakeAtMin, Value: "75"},
	{Key: KeyWindowOpacity, Value: "0.8"},
	{Key: KeyHistoryDotsCount, Value: "10"},
}

// Summarize fills the workout-derived fields of stats.
func Summarize(stats *types.DayStats, workouts []types.Workout) {
	stats.Workouts = workouts
	var sum int64
	for _, w := range workouts {
		switch w.Kind {
		case types.SessionStretch:
			stats.StretchCount++
		case types.SessionTreadmill:
			stats.TreadmillCount++
			stats.TreadmillTotalS += w.DurationS
		}
		sum += w.SittingBeforeS
		if w.SittingBeforeS > stats.MaxSittingBeforeS {
			stats.MaxSittingBeforeS = w.SittingBeforeS
		}
	}
	if len(workouts) > 0 {
		stats.AvgSittingBeforeS = math.Round(float64(sum)/float64(len(workouts))*10) / 10
	}
}

// ToInt64 converts a duration counter for storage, saturating at MaxInt64.
func ToInt64(v uint64) int64 {
	if v > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(v)
}

// Clock returns the current time. Backends accept one for tests.
type Clock func() time.Time

// Options configure a backend.
type Options struct {
	Now Clock
}

// Option mutates Options.
type Option func(*Options)

// WithClock overrides the clock used to pick the usage day.
func WithClock(now Clock) Option {
	return func(o *Options) {
		o.Now = now
	}
}

// NewOptions applies opts over the defaults.
func NewOptions(opts ...Option) Options {
	o := Options{Now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
