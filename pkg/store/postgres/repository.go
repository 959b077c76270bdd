// Package postgres stores sessions in a shared Postgres database, for users
// who sync several machines into one history.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Veraticus/stretchia/pkg/interfaces"
	"github.com/Veraticus/stretchia/pkg/store"
	"github.com/Veraticus/stretchia/pkg/types"
)

//go:embed schema.sql
var schema string

// Repository provides Postgres-backed persistence for workouts, usage and settings.
type Repository struct {
	pool *pgxpool.Pool
	opts store.Options
}

var _ interfaces.Store = (*Repository)(nil)

// NewRepository constructs a Repository over an existing pool.
func NewRepository(pool *pgxpool.Pool, opts ...store.Option) *Repository {
	return &Repository{pool: pool, opts: store.NewOptions(opts...)}
}

// Open connects, applies the schema and seeds default settings.
func Open(ctx context.Context, connString string, opts ...store.Option) (*Repository, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	r := NewRepository(pool, opts...)
	if err := r.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return r, nil
}

// Migrate applies the schema and seeds defaults without overwriting.
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}

	batch := &pgx.Batch{}
	for _, d := range store.Defaults {
		batch.Queue(`INSERT INTO settings (key, value) VALUES ($1, $2) ON CONFLICT (key) DO NOTHING`, d.Key, d.Value)
	}
	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("seeding settings: %w", err)
	}
	return nil
}

// RecordSession implements interfaces.Store.
func (r *Repository) RecordSession(ctx context.Context, session types.Session) (types.Workout, error) {
	w := types.Workout{
		ID:             uuid.NewString(),
		Kind:           session.Kind,
		StartedAt:      session.StartedAt.Unix(),
		EndedAt:        session.EndedAt.Unix(),
		DurationS:      store.ToInt64(session.DurationS),
		SittingBeforeS: store.ToInt64(session.SittingBeforeS),
	}

	const stmt = `INSERT INTO workouts (id, type, started_at, ended_at, duration_s, sitting_before_s)
        VALUES ($1,$2,$3,$4,$5,$6)`
	if _, err := r.pool.Exec(ctx, stmt, w.ID, string(w.Kind), w.StartedAt, w.EndedAt, w.DurationS, w.SittingBeforeS); err != nil {
		return types.Workout{}, fmt.Errorf("inserting %s workout: %w", w.Kind, err)
	}
	return w, nil
}

// AccumulateDailyUsage implements interfaces.UsageRecorder.
func (r *Repository) AccumulateDailyUsage(ctx context.Context, activeDelta, afkDelta int64) error {
	const stmt = `INSERT INTO computer_usage (date, active_s, afk_s) VALUES ($1, $2, $3)
        ON CONFLICT (date) DO UPDATE SET active_s = computer_usage.active_s + EXCLUDED.active_s,
                                         afk_s = computer_usage.afk_s + EXCLUDED.afk_s`
	if _, err := r.pool.Exec(ctx, stmt, types.DayKey(r.opts.Now()), activeDelta, afkDelta); err != nil {
		return fmt.Errorf("updating computer usage: %w", err)
	}
	return nil
}

// GetSetting implements interfaces.SettingsStore.
func (r *Repository) GetSetting(ctx context.Context, key string) (string, bool) {
	var value string
	if err := r.pool.QueryRow(ctx, `SELECT value FROM settings WHERE key = $1`, key).Scan(&value); err != nil {
		return "", false
	}
	return value, true
}

// SetSetting implements interfaces.SettingsStore.
func (r *Repository) SetSetting(ctx context.Context, key, value string) error {
	const stmt = `INSERT INTO settings (key, value) VALUES ($1, $2)
        ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`
	if _, err := r.pool.Exec(ctx, stmt, key, value); err != nil {
		return fmt.Errorf("updating setting %s: %w", key, err)
	}
	return nil
}

// Settings implements interfaces.SettingsStore.
func (r *Repository) Settings(ctx context.Context) ([]types.Setting, error) {
	rows, err := r.pool.Query(ctx, `SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (types.Setting, error) {
		var st types.Setting
		err := row.Scan(&st.Key, &st.Value)
		return st, err
	})
}

// Workouts implements interfaces.Store.
func (r *Repository) Workouts(ctx context.Context, day time.Time) ([]types.Workout, error) {
	start, end := types.DayBounds(day)
	const query = `SELECT id, type, started_at, ended_at, duration_s, sitting_before_s
        FROM workouts WHERE started_at >= $1 AND started_at < $2 ORDER BY started_at`

	rows, err := r.pool.Query(ctx, query, start.Unix(), end.Unix())
	if err != nil {
		return nil, fmt.Errorf("loading workouts: %w", err)
	}
	workouts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (types.Workout, error) {
		var w types.Workout
		var kind string
		err := row.Scan(&w.ID, &kind, &w.StartedAt, &w.EndedAt, &w.DurationS, &w.SittingBeforeS)
		w.Kind = types.SessionKind(kind)
		return w, err
	})
	if err != nil {
		return nil, err
	}
	if workouts == nil {
		workouts = []types.Workout{}
	}
	return workouts, nil
}

// DayStats implements interfaces.Store.
func (r *Repository) DayStats(ctx context.Context, day time.Time) (types.DayStats, error) {
	stats := types.DayStats{Date: types.DayKey(day)}

	err := r.pool.QueryRow(ctx, `SELECT active_s, afk_s FROM computer_usage WHERE date = $1`, stats.Date).
		Scan(&stats.ActiveS, &stats.AFKS)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return types.DayStats{}, fmt.Errorf("loading usage: %w", err)
	}

	workouts, err := r.Workouts(ctx, day)
	if err != nil {
		return types.DayStats{}, err
	}
	store.Summarize(&stats, workouts)
	return stats, nil
}

// DeleteWorkout implements interfaces.Store.
func (r *Repository) DeleteWorkout(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM workouts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting workout: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Close releases the pool.
func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}
