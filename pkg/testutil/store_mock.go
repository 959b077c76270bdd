package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Veraticus/stretchia/pkg/store"
	"github.com/Veraticus/stretchia/pkg/types"
)

// UsageDelta records one AccumulateDailyUsage call.
type UsageDelta struct {
	Active int64
	AFK    int64
}

// MockStore is an in-memory interfaces.Store with error injection.
type MockStore struct {
	mu        sync.Mutex
	workouts  []types.Workout
	usage     []UsageDelta
	settings  map[string]string
	nextID    int
	recordErr error
	usageErr  error
	settErr   error
	closed    bool
}

// NewMockStore creates an empty store.
func NewMockStore() *MockStore {
	return &MockStore{settings: map[string]string{}}
}

// RecordSession implements interfaces.Store
func (m *MockStore) RecordSession(_ context.Context, s types.Session) (types.Workout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.recordErr != nil {
		return types.Workout{}, m.recordErr
	}
	m.nextID++
	w := types.Workout{
		ID:             fmt.Sprintf("w-%d", m.nextID),
		Kind:           s.Kind,
		StartedAt:      s.StartedAt.Unix(),
		EndedAt:        s.EndedAt.Unix(),
		DurationS:      store.ToInt64(s.DurationS),
		SittingBeforeS: store.ToInt64(s.SittingBeforeS),
	}
	m.workouts = append(m.workouts, w)
	return w, nil
}

// AccumulateDailyUsage implements interfaces.UsageRecorder
func (m *MockStore) AccumulateDailyUsage(_ context.Context, active, afk int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.usageErr != nil {
		return m.usageErr
	}
	m.usage = append(m.usage, UsageDelta{Active: active, AFK: afk})
	return nil
}

// GetSetting implements interfaces.SettingsStore
func (m *MockStore) GetSetting(_ context.Context, key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.settings[key]
	return v, ok
}

// SetSetting implements interfaces.SettingsStore
func (m *MockStore) SetSetting(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.settErr != nil {
		return m.settErr
	}
	m.settings[key] = value
	return nil
}

// Settings implements interfaces.SettingsStore
func (m *MockStore) Settings(_ context.Context) ([]types.Setting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.settErr != nil {
		return nil, m.settErr
	}
	out := make([]types.Setting, 0, len(m.settings))
	for k, v := range m.settings {
		out = append(out, types.Setting{Key: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Workouts implements interfaces.Store
func (m *MockStore) Workouts(_ context.Context, day time.Time) ([]types.Workout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	start, end := types.DayBounds(day)
	out := []types.Workout{}
	for _, w := range m.workouts {
		if w.StartedAt >= start.Unix() && w.StartedAt < end.Unix() {
			out = append(out, w)
		}
	}
	return out, nil
}

// DayStats implements interfaces.Store
func (m *MockStore) DayStats(ctx context.Context, day time.Time) (types.DayStats, error) {
	workouts, _ := m.Workouts(ctx, day)

	m.mu.Lock()
	defer m.mu.Unlock()
	stats := types.DayStats{Date: types.DayKey(day)}
	for _, u := range m.usage {
		stats.ActiveS += u.Active
		stats.AFKS += u.AFK
	}
	store.Summarize(&stats, workouts)
	return stats, nil
}

// DeleteWorkout implements interfaces.Store
func (m *MockStore) DeleteWorkout(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, w := range m.workouts {
		if w.ID == id {
			m.workouts = append(m.workouts[:i], m.workouts[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

// Close implements interfaces.Store
func (m *MockStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// SetRecordError makes RecordSession fail.
func (m *MockStore) SetRecordError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recordErr = err
}

// SetUsageError makes AccumulateDailyUsage fail.
func (m *MockStore) SetUsageError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.usageErr = err
}

// SetSettingsError makes SetSetting and Settings fail.
func (m *MockStore) SetSettingsError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settErr = err
}

// GetWorkouts returns every recorded workout.
func (m *MockStore) GetWorkouts() []types.Workout {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]types.Workout, len(m.workouts))
	copy(result, m.workouts)
	return result
}

// GetUsage returns every usage delta.
func (m *MockStore) GetUsage() []UsageDelta {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]UsageDelta, len(m.usage))
	copy(result, m.usage)
	return result
}

// IsClosed reports whether Close was called.
func (m *MockStore) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
