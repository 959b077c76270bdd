// Package interfaces defines the core interfaces used throughout the application.
package interfaces

import (
	"context"
	"time"

	"github.com/Veraticus/stretchia/pkg/types"
)

// IdleProbe reports seconds since the last user input.
// Implementations fold every failure to 0.
type IdleProbe interface {
	IdleSeconds() uint64
}

// Renderer updates the stage indicator (tray icon, status line).
// Calls are idempotent and safe to repeat.
type Renderer interface {
	SetIndicator(stage types.Stage, afk bool) error
}

// EventSink receives a tick payload every interval. Delivery is best effort.
type EventSink interface {
	Publish(payload types.TickPayload)
}

// UsageRecorder accumulates per-day active and AFK seconds.
type UsageRecorder interface {
	AccumulateDailyUsage(ctx context.Context, activeDelta, afkDelta int64) error
}

// SettingsStore reads and writes key/value settings.
type SettingsStore interface {
	GetSetting(ctx context.Context, key string) (string, bool)
	SetSetting(ctx context.Context, key, value string) error
	Settings(ctx context.Context) ([]types.Setting, error)
}

// Store is the durable log of completed sessions, usage aggregates and settings.
type Store interface {
	UsageRecorder
	SettingsStore
	RecordSession(ctx context.Context, session types.Session) (types.Workout, error)
	Workouts(ctx context.Context, day time.Time) ([]types.Workout, error)
	DayStats(ctx context.Context, day time.Time) (types.DayStats, error)
	DeleteWorkout(ctx context.Context, id string) error
	Close() error
}

// SessionExporter forwards persisted sessions to an external system.
type SessionExporter interface {
	Export(ctx context.Context, workout types.Workout) error
}

// RateLimiter limits notification frequency.
type RateLimiter interface {
	Allow() bool
	Reset()
}

// StatusReporter reports notification delivery status.
type StatusReporter interface {
	ReportSending()
	ReportSuccess()
	ReportFailure()
}
