package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"travis-bott/config"
	"travis-bott/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLite(t *testing.T) *SQLite {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "cookies.db"))
	require.NoError(t, err)
	t.Cleanup(s.Close)
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLiteIncrementCreatesThenAdds(t *testing.T) {
	s := newSQLite(t)
	ctx := context.Background()

	_, err := s.Get(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := s.Increment(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = s.Increment(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	rec, err := s.Get(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, models.ScoreRecord{UserID: 42, Count: 2}, rec)
}

func TestSQLiteConcurrentIncrements(t *testing.T) {
	s := newSQLite(t)
	ctx := context.Background()
	const n = 50

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Increment(ctx, 7)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	rec, err := s.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(n), rec.Count)
}

func TestSQLiteTopOrdering(t *testing.T) {
	s := newSQLite(t)
	ctx := context.Background()

	for user, wins := range map[int64]int{1: 2, 2: 5, 3: 2, 4: 1} {
		for i := 0; i < wins; i++ {
			_, err := s.Increment(ctx, user)
			require.NoError(t, err)
		}
	}

	top, err := s.Top(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []models.ScoreRecord{
		{UserID: 2, Count: 5},
		{UserID: 1, Count: 2},
		{UserID: 3, Count: 2},
	}, top)
}

func TestSQLiteMigrateIsIdempotent(t *testing.T) {
	s := newSQLite(t)
	assert.NoError(t, s.Migrate(context.Background()))
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.DatabaseConfig{Driver: "mysql"})
	assert.Error(t, err)
}

func TestOpenSQLite(t *testing.T) {
	st, err := Open(context.Background(), config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "open.db"),
	})
	require.NoError(t, err)
	defer st.Close()
	assert.NoError(t, st.Ping(context.Background()))
}
