package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"travis-bott/config"
	"travis-bott/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// Postgres stores scores in PostgreSQL.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres opens a tuned pool and verifies it with a ping.
func NewPostgres(ctx context.Context, cfg config.DatabaseConfig) (*Postgres, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	if cfg.PoolSize > 0 {
		poolConfig.MaxConns = int32(cfg.PoolSize)
	}
	poolConfig.MinConns = poolConfig.MaxConns / 4
	if poolConfig.MinConns < 1 {
		poolConfig.MinConns = 1
	}

	if cfg.ConnectTimeout > 0 {
		poolConfig.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	} else {
		poolConfig.ConnConfig.ConnectTimeout = 10 * time.Second
	}
	if cfg.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	poolConfig.HealthCheckPeriod = 30 * time.Second

	poolConfig.ConnConfig.RuntimeParams["application_name"] = "travis-bott"
	poolConfig.ConnConfig.RuntimeParams["timezone"] = "UTC"
	poolConfig.ConnConfig.RuntimeParams["statement_timeout"] = "30s"

	log.Info().
		Str("host", poolConfig.ConnConfig.Host).
		Str("database", poolConfig.ConnConfig.Database).
		Int32("pool_size", poolConfig.MaxConns).
		Msg("Connecting to PostgreSQL")

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Msg("Successfully connected to PostgreSQL")

	return NewPostgresFromPool(pool), nil
}

// NewPostgresFromPool wraps an existing pool. Close closes the pool.
func NewPostgresFromPool(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Migrate creates the cookies table.
func (p *Postgres) Migrate(ctx context.Context) error {
	for _, stmt := range []string{createCookiesTable, createCookiesIndex} {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate cookies table: %w", err)
		}
	}
	return nil
}

// Increment adds one cookie and returns the new count.
func (p *Postgres) Increment(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := p.pool.QueryRow(ctx, `
		INSERT INTO cookies (user_id, count) VALUES ($1, 1)
		ON CONFLICT (user_id) DO UPDATE SET count = cookies.count + 1
		RETURNING count`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to increment cookies for %d: %w", userID, err)
	}
	return count, nil
}

// Get returns a user's tally.
func (p *Postgres) Get(ctx context.Context, userID int64) (models.ScoreRecord, error) {
	rec := models.ScoreRecord{UserID: userID}
	err := p.pool.QueryRow(ctx, `SELECT count FROM cookies WHERE user_id = $1`, userID).Scan(&rec.Count)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ScoreRecord{}, ErrNotFound
	}
	if err != nil {
		return models.ScoreRecord{}, fmt.Errorf("failed to get cookies for %d: %w", userID, err)
	}
	return rec, nil
}

// Top returns the highest tallies, ties broken by user id.
func (p *Postgres) Top(ctx context.Context, limit int) ([]models.ScoreRecord, error) {
	rows, err := p.pool.Query(ctx, `SELECT user_id, count FROM cookies ORDER BY count DESC, user_id LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}

	records, err := pgx.CollectRows(rows, pgx.RowToStructByPos[models.ScoreRecord])
	if err != nil {
		return nil, fmt.Errorf("failed to scan leaderboard: %w", err)
	}
	return records, nil
}

// Ping checks the connection.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close closes the pool.
func (p *Postgres) Close() {
	if p.pool != nil {
		p.pool.Close()
		log.Info().Msg("PostgreSQL connection pool closed")
	}
}
