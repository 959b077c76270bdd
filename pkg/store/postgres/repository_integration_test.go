//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Veraticus/stretchia/pkg/interfaces"
	"github.com/Veraticus/stretchia/pkg/store"
	"github.com/Veraticus/stretchia/pkg/store/storetest"
)

func TestRepositoryConformance(t *testing.T) {
	ctx := context.Background()

	pg, err := postgrescontainer.Run(ctx, "postgres:16-alpine",
		postgrescontainer.WithDatabase("stretchia"),
		postgrescontainer.WithUsername("stretchia"),
		postgrescontainer.WithPassword("stretchia"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(pg) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, waitForDatabase(ctx, connStr))

	storetest.Run(t, func(t *testing.T, clock *storetest.Clock) interfaces.Store {
		pool, err := pgxpool.New(ctx, connStr)
		require.NoError(t, err)

		// Each subtest starts from an empty schema.
		_, err = pool.Exec(ctx, `DROP TABLE IF EXISTS workouts, computer_usage, settings`)
		require.NoError(t, err)

		repo := NewRepository(pool, store.WithClock(clock.Now))
		require.NoError(t, repo.Migrate(ctx))
		t.Cleanup(func() { _ = repo.Close() })
		return repo
	})
}

func waitForDatabase(ctx context.Context, connStr string) error {
	deadline := time.Now().Add(30 * time.Second)
	for {
		pool, err := pgxpool.New(ctx, connStr)
		if err == nil {
			err = pool.Ping(ctx)
			pool.Close()
			if err == nil {
				return nil
			}
		}
		if time.Now().After(deadline) {
			return err
		}
		time.Sleep(time.Second)
	}
}
