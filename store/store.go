// Package store persists cookie race scores.
package store

import (
	"context"
	"errors"
	"fmt"

	"travis-bott/config"
	"travis-bott/models"
)

// ErrNotFound is returned when a user has no score yet.
var ErrNotFound = errors.New("score not found")

// Store is a score backend. Increment must be a single atomic upsert so
// concurrent wins never lose a count.
type Store interface {
	Migrate(ctx context.Context) error
	Increment(ctx context.Context, userID int64) (int64, error)
	Get(ctx context.Context, userID int64) (models.ScoreRecord, error)
	Top(ctx context.Context, limit int) ([]models.ScoreRecord, error)
	Ping(ctx context.Context) error
	Close()
}

const (
	createCookiesTable = `
		CREATE TABLE IF NOT EXISTS cookies (
			user_id BIGINT PRIMARY KEY,
			count BIGINT NOT NULL CHECK (count >= 1)
		)`

	createCookiesIndex = `CREATE INDEX IF NOT EXISTS idx_cookies_count_desc ON cookies (count DESC, user_id)`
)

// Open connects to the backend named by cfg.Driver.
func Open(ctx context.Context, cfg config.DatabaseConfig) (Store, error) {
	switch cfg.Driver {
	case "postgres":
		return NewPostgres(ctx, cfg)
	case "sqlite":
		return NewSQLite(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
