package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"travis-bott/models"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite stores scores in a local database file. It is used for
// development and single-process deployments.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) the database at path.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// A single writer keeps upserts serialised inside the process.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Migrate creates the cookies table.
func (s *SQLite) Migrate(ctx context.Context) error {
	for _, stmt := range []string{createCookiesTable, createCookiesIndex} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate cookies table: %w", err)
		}
	}
	return nil
}

// Increment adds one cookie and returns the new count.
func (s *SQLite) Increment(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO cookies (user_id, count) VALUES (?, 1)
		ON CONFLICT (user_id) DO UPDATE SET count = cookies.count + 1
		RETURNING count`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to increment cookies for %d: %w", userID, err)
	}
	return count, nil
}

// Get returns a user's tally.
func (s *SQLite) Get(ctx context.Context, userID int64) (models.ScoreRecord, error) {
	rec := models.ScoreRecord{UserID: userID}
	err := s.db.QueryRowContext(ctx, `SELECT count FROM cookies WHERE user_id = ?`, userID).Scan(&rec.Count)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ScoreRecord{}, ErrNotFound
	}
	if err != nil {
		return models.ScoreRecord{}, fmt.Errorf("failed to get cookies for %d: %w", userID, err)
	}
	return rec, nil
}

// Top returns the highest tallies, ties broken by user id.
func (s *SQLite) Top(ctx context.Context, limit int) ([]models.ScoreRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT user_id, count FROM cookies ORDER BY count DESC, user_id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	var records []models.ScoreRecord
	for rows.Next() {
		var r models.ScoreRecord
		if err := rows.Scan(&r.UserID, &r.Count); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Ping checks the connection.
func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *SQLite) Close() {
	s.db.Close()
}
