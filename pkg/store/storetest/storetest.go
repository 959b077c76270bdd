// Package storetest is a conformance suite run against every store backend.
package storetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Veraticus/stretchia/pkg/interfaces"
	"github.com/Veraticus/stretchia/pkg/store"
	"github.com/Veraticus/stretchia/pkg/types"
)

// Clock is a settable clock for store.WithClock.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock starts the clock at now.
func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock.
func (c *Clock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Factory opens an empty store driven by clock.
type Factory func(t *testing.T, clock *Clock) interfaces.Store

// Run exercises the full interfaces.Store contract.
func Run(t *testing.T, open Factory) {
	day := time.Date(2026, 10, 19, 10, 0, 0, 0, time.Local)

	t.Run("seeds defaults", func(t *testing.T) {
		s := open(t, NewClock(day))
		ctx := context.Background()

		for _, d := range store.Defaults {
			got, ok := s.GetSetting(ctx, d.Key)
			require.True(t, ok, d.Key)
			require.Equal(t, d.Value, got)
		}

		settings, err := s.Settings(ctx)
		require.NoError(t, err)
		require.Len(t, settings, len(store.Defaults))

		_, ok := s.GetSetting(ctx, "missing")
		require.False(t, ok)
	})

	t.Run("settings upsert", func(t *testing.T) {
		s := open(t, NewClock(day))
		ctx := context.Background()

		require.NoError(t, s.SetSetting(ctx, store.KeyWarnAtMin, "30"))
		require.NoError(t, s.SetSetting(ctx, "window_x", "120"))

		got, ok := s.GetSetting(ctx, store.KeyWarnAtMin)
		require.True(t, ok)
		require.Equal(t, "30", got)

		settings, err := s.Settings(ctx)
		require.NoError(t, err)
		require.Len(t, settings, len(store.Defaults)+1)
	})

	t.Run("records and lists workouts by day", func(t *testing.T) {
		s := open(t, NewClock(day))
		ctx := context.Background()

		stretch, err := s.RecordSession(ctx, types.Session{
			Kind:           types.SessionStretch,
			StartedAt:      day,
			EndedAt:        day.Add(types.StretchDuration),
			DurationS:      300,
			SittingBeforeS: 2700,
		})
		require.NoError(t, err)
		require.NotEmpty(t, stretch.ID)
		require.Equal(t, day.Unix(), stretch.StartedAt)
		require.Equal(t, day.Unix()+300, stretch.EndedAt)

		walk, err := s.RecordSession(ctx, types.Session{
			Kind:           types.SessionTreadmill,
			StartedAt:      day.Add(time.Hour),
			EndedAt:        day.Add(time.Hour + 10*time.Minute),
			DurationS:      600,
			SittingBeforeS: 1200,
		})
		require.NoError(t, err)
		require.NotEqual(t, stretch.ID, walk.ID)

		_, err = s.RecordSession(ctx, types.Session{
			Kind:      types.SessionStretch,
			StartedAt: day.AddDate(0, 0, -1),
			EndedAt:   day.AddDate(0, 0, -1).Add(types.StretchDuration),
			DurationS: 300,
		})
		require.NoError(t, err)

		workouts, err := s.Workouts(ctx, day)
		require.NoError(t, err)
		require.Len(t, workouts, 2)
		require.Equal(t, stretch, workouts[0])
		require.Equal(t, walk, workouts[1])

		empty, err := s.Workouts(ctx, day.AddDate(0, 0, 5))
		require.NoError(t, err)
		require.NotNil(t, empty)
		require.Empty(t, empty)
	})

	t.Run("accumulates usage and builds day stats", func(t *testing.T) {
		clock := NewClock(day)
		s := open(t, clock)
		ctx := context.Background()

		for i := 0; i < 3; i++ {
			require.NoError(t, s.AccumulateDailyUsage(ctx, 1, 0))
		}
		require.NoError(t, s.AccumulateDailyUsage(ctx, 0, 1))

		clock.Set(day.AddDate(0, 0, 1))
		require.NoError(t, s.AccumulateDailyUsage(ctx, 1, 0))

		_, err := s.RecordSession(ctx, types.Session{
			Kind: types.SessionTreadmill, StartedAt: day, EndedAt: day.Add(time.Minute),
			DurationS: 60, SittingBeforeS: 100,
		})
		require.NoError(t, err)
		_, err = s.RecordSession(ctx, types.Session{
			Kind: types.SessionStretch, StartedAt: day.Add(time.Hour), EndedAt: day.Add(time.Hour + 5*time.Minute),
			DurationS: 300, SittingBeforeS: 300,
		})
		require.NoError(t, err)

		stats, err := s.DayStats(ctx, day)
		require.NoError(t, err)
		require.Equal(t, types.DayKey(day), stats.Date)
		require.Equal(t, int64(3), stats.ActiveS)
		require.Equal(t, int64(1), stats.AFKS)
		require.Equal(t, 1, stats.StretchCount)
		require.Equal(t, 1, stats.TreadmillCount)
		require.Equal(t, int64(60), stats.TreadmillTotalS)
		require.Equal(t, int64(300), stats.MaxSittingBeforeS)
		require.InDelta(t, 200.0, stats.AvgSittingBeforeS, 0.001)

		next, err := s.DayStats(ctx, day.AddDate(0, 0, 1))
		require.NoError(t, err)
		require.Equal(t, int64(1), next.ActiveS)
		require.Zero(t, next.StretchCount)

		none, err := s.DayStats(ctx, day.AddDate(0, 0, 30))
		require.NoError(t, err)
		require.Zero(t, none.ActiveS)
		require.Empty(t, none.Workouts)
	})

	t.Run("deletes workouts", func(t *testing.T) {
		s := open(t, NewClock(day))
		ctx := context.Background()

		w, err := s.RecordSession(ctx, types.Session{
			Kind: types.SessionStretch, StartedAt: day, EndedAt: day.Add(types.StretchDuration), DurationS: 300,
		})
		require.NoError(t, err)

		require.NoError(t, s.DeleteWorkout(ctx, w.ID))
		require.ErrorIs(t, s.DeleteWorkout(ctx, w.ID), store.ErrNotFound)

		workouts, err := s.Workouts(ctx, day)
		require.NoError(t, err)
		require.Empty(t, workouts)
	})
}
