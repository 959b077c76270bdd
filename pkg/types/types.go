// Package types contains shared data structures used across the application.
package types

import (
	"strings"
	"time"
)

// Mode is the activity currently being timed. Exactly one mode is active.
type Mode int

const (
	// ModeSitting accrues continuous sitting time.
	ModeSitting Mode = iota
	// ModeSecondary is the alternate tracked activity (a treadmill walk).
	ModeSecondary
)

// String returns the mode label used in tick payloads.
func (m Mode) String() string {
	switch m {
	case ModeSecondary:
		return "Treadmill"
	default:
		return "Sitting"
	}
}

// Stage is the ordered urgency classification of continuous sitting time.
// Stages compare with < and >; Green is the least urgent.
type Stage int

const (
	StageGreen Stage = iota
	StageYellow
	StageOrange
	StageRed
	StageCritical
)

var stageNames = [...]string{"green", "yellow", "orange", "red", "critical"}

// String returns the semantic stage name. Red and Critical differ here.
func (s Stage) String() string {
	if s < StageGreen || s > StageCritical {
		return "unknown"
	}
	return stageNames[s]
}

// Color returns the presentation color. Red and Critical share "red".
func (s Stage) Color() string {
	if s >= StageRed {
		return "red"
	}
	return s.String()
}

// ParseStage converts a stage name back to a Stage.
func ParseStage(name string) (Stage, bool) {
	for i, n := range stageNames {
		if strings.EqualFold(n, name) {
			return Stage(i), true
		}
	}
	return StageGreen, false
}

// TickPayload is published to the UI once per coordinator interval.
type TickPayload struct {
	Mode        string `json:"mode"`
	ElapsedS    uint64 `json:"elapsed_s"`
	Stage       string `json:"stage"`
	IsAFK       bool   `json:"is_afk"`
	IsTreadmill bool   `json:"is_treadmill"`
}

// SessionKind identifies the type of a completed session.
type SessionKind string

const (
	SessionStretch   SessionKind = "stretch"
	SessionTreadmill SessionKind = "treadmill"
)

// StretchDuration is the nominal length recorded for a stretch break.
const StretchDuration = 300 * time.Second

// Session is a completed span handed to the store when it ends.
type Session struct {
	Kind           SessionKind
	StartedAt      time.Time
	EndedAt        time.Time
	DurationS      uint64
	SittingBeforeS uint64
}

// Workout is a persisted, immutable session record.
type Workout struct {
	ID             string      `json:"id"`
	Kind           SessionKind `json:"workout_type"`
	StartedAt      int64       `json:"started_at"`
	EndedAt        int64       `json:"ended_at"`
	DurationS      int64       `json:"duration_s"`
	SittingBeforeS int64       `json:"sitting_before_s"`
}

// Setting is a stored key/value pair.
type Setting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// DayStats aggregates one local calendar day.
type DayStats struct {
	Date              string    `json:"date"`
	StretchCount      int       `json:"stretch_count"`
	TreadmillCount    int       `json:"treadmill_count"`
	TreadmillTotalS   int64     `json:"treadmill_total_s"`
	ActiveS           int64     `json:"active_s"`
	AFKS              int64     `json:"afk_s"`
	AvgSittingBeforeS float64   `json:"avg_sitting_before_s"`
	MaxSittingBeforeS int64     `json:"max_sitting_before_s"`
	Workouts          []Workout `json:"workouts"`
}

// DayKey formats t as the local calendar day key used by aggregates.
func DayKey(t time.Time) string {
	return t.Local().Format("2006-01-02")
}

// DayBounds returns the local midnight that starts t's day and the next one.
func DayBounds(t time.Time) (time.Time, time.Time) {
	lt := t.Local()
	start := time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, time.Local)
	return start, start.AddDate(0, 0, 1)
}
