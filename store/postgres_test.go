package store

import (
	"context"
	"os/exec"
	"sync"
	"testing"
	"time"

	"travis-bott/config"
	"travis-bott/models"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func checkDockerAvailable() bool {
	return exec.Command("docker", "info").Run() == nil
}

func startPostgres(t *testing.T) string {
	if testing.Short() || !checkDockerAvailable() {
		t.Skip("Docker is not available, skipping integration test")
	}

	ctx := context.Background()
	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return dsn
}

func setupPostgres(t *testing.T) *Postgres {
	ctx := context.Background()
	dsn := startPostgres(t)

	p, err := NewPostgres(ctx, config.DatabaseConfig{URL: dsn, PoolSize: 8})
	require.NoError(t, err)
	t.Cleanup(p.Close)

	require.NoError(t, p.Migrate(ctx))
	return p
}

func TestPostgresFromPool(t *testing.T) {
	ctx := context.Background()
	dsn := startPostgres(t)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)

	p := NewPostgresFromPool(pool)
	t.Cleanup(p.Close)
	require.NoError(t, p.Migrate(ctx))
	require.NoError(t, p.Ping(ctx))

	count, err := p.Increment(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	var stored int64
	require.NoError(t, pool.QueryRow(ctx, "SELECT count FROM cookies WHERE user_id = $1", 42).Scan(&stored))
	assert.Equal(t, int64(1), stored)
}

func TestPostgresConcurrentIncrements(t *testing.T) {
	p := setupPostgres(t)
	ctx := context.Background()
	const n = 100

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.Increment(ctx, 99)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	rec, err := p.Get(ctx, 99)
	require.NoError(t, err)
	assert.Equal(t, int64(n), rec.Count)
}

func TestPostgresTopAndMissing(t *testing.T) {
	p := setupPostgres(t)
	ctx := context.Background()

	_, err := p.Get(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	for _, id := range []int64{5, 5, 5, 6, 7, 7} {
		_, err := p.Increment(ctx, id)
		require.NoError(t, err)
	}

	top, err := p.Top(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []models.ScoreRecord{
		{UserID: 5, Count: 3},
		{UserID: 7, Count: 2},
		{UserID: 6, Count: 1},
	}, top)
}
