// Package sqlite is the default on-disk store, a single SQLite file in the
// user's home directory.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/Veraticus/stretchia/pkg/interfaces"
	"github.com/Veraticus/stretchia/pkg/store"
	"github.com/Veraticus/stretchia/pkg/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS workouts (
	id               TEXT PRIMARY KEY,
	type             TEXT NOT NULL,
	started_at       INTEGER NOT NULL,
	ended_at         INTEGER NOT NULL,
	duration_s       INTEGER NOT NULL,
	sitting_before_s INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS workouts_started_at ON workouts (started_at);

CREATE TABLE IF NOT EXISTS computer_usage (
	date     TEXT PRIMARY KEY,
	active_s INTEGER NOT NULL DEFAULT 0,
	afk_s    INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);`

// Store persists sessions, usage and settings in SQLite.
type Store struct {
	db   *sql.DB
	opts store.Options
}

var _ interfaces.Store = (*Store)(nil)

// DefaultPath returns %APPDATA%\StretchReminder\data.db on Windows and
// ~/StretchReminder/data.db elsewhere.
func DefaultPath() (string, error) {
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "StretchReminder", "data.db"), nil
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}
	return filepath.Join(home, "StretchReminder", "data.db"), nil
}

// Open creates the parent directory, opens the database, applies the schema
// and seeds default settings.
func Open(ctx context.Context, path string, opts ...store.Option) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	// SQLite serializes writers anyway; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, opts: store.NewOptions(opts...)}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}
	for _, d := range store.Defaults {
		if _, err := s.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`, d.Key, d.Value); err != nil {
			return fmt.Errorf("seeding %s: %w", d.Key, err)
		}
	}
	return nil
}

// RecordSession implements interfaces.Store.
func (s *Store) RecordSession(ctx context.Context, session types.Session) (types.Workout, error) {
	w := types.Workout{
		ID:             uuid.NewString(),
		Kind:           session.Kind,
		StartedAt:      session.StartedAt.Unix(),
		EndedAt:        session.EndedAt.Unix(),
		DurationS:      store.ToInt64(session.DurationS),
		SittingBeforeS: store.ToInt64(session.SittingBeforeS),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO workouts (id, type, started_at, ended_at, duration_s, sitting_before_s)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		w.ID, string(w.Kind), w.StartedAt, w.EndedAt, w.DurationS, w.SittingBeforeS)
	if err != nil {
		return types.Workout{}, fmt.Errorf("inserting %s workout: %w", w.Kind, err)
	}
	return w, nil
}

// AccumulateDailyUsage implements interfaces.UsageRecorder.
func (s *Store) AccumulateDailyUsage(ctx context.Context, activeDelta, afkDelta int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO computer_usage (date, active_s, afk_s) VALUES (?, ?, ?)
		 ON CONFLICT(date) DO UPDATE SET active_s = active_s + excluded.active_s, afk_s = afk_s + excluded.afk_s`,
		types.DayKey(s.opts.Now()), activeDelta, afkDelta)
	if err != nil {
		return fmt.Errorf("updating computer usage: %w", err)
	}
	return nil
}

// GetSetting implements interfaces.SettingsStore.
func (s *Store) GetSetting(ctx context.Context, key string) (string, bool) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", false
	}
	return value, true
}

// SetSetting implements interfaces.SettingsStore.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("updating setting %s: %w", key, err)
	}
	return nil
}

// Settings implements interfaces.SettingsStore.
func (s *Store) Settings(ctx context.Context) ([]types.Setting, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	defer rows.Close()

	var out []types.Setting
	for rows.Next() {
		var st types.Setting
		if err := rows.Scan(&st.Key, &st.Value); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// Workouts implements interfaces.Store.
func (s *Store) Workouts(ctx context.Context, day time.Time) ([]types.Workout, error) {
	start, end := types.DayBounds(day)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, type, started_at, ended_at, duration_s, sitting_before_s
		 FROM workouts WHERE started_at >= ? AND started_at < ?
		 ORDER BY started_at`, start.Unix(), end.Unix())
	if err != nil {
		return nil, fmt.Errorf("loading workouts: %w", err)
	}
	defer rows.Close()

	out := []types.Workout{}
	for rows.Next() {
		var w types.Workout
		var kind string
		if err := rows.Scan(&w.ID, &kind, &w.StartedAt, &w.EndedAt, &w.DurationS, &w.SittingBeforeS); err != nil {
			return nil, err
		}
		w.Kind = types.SessionKind(kind)
		out = append(out, w)
	}
	return out, rows.Err()
}

// DayStats implements interfaces.Store.
func (s *Store) DayStats(ctx context.Context, day time.Time) (types.DayStats, error) {
	stats := types.DayStats{Date: types.DayKey(day)}

	err := s.db.QueryRowContext(ctx,
		`SELECT active_s, afk_s FROM computer_usage WHERE date = ?`, stats.Date).
		Scan(&stats.ActiveS, &stats.AFKS)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return types.DayStats{}, fmt.Errorf("loading usage: %w", err)
	}

	workouts, err := s.Workouts(ctx, day)
	if err != nil {
		return types.DayStats{}, err
	}
	store.Summarize(&stats, workouts)
	return stats, nil
}

// DeleteWorkout implements interfaces.Store.
func (s *Store) DeleteWorkout(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM workouts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting workout: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Close implements interfaces.Store.
func (s *Store) Close() error {
	return s.db.Close()
}
