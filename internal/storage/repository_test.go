package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alimurrofid/petualangan-cuan/internal/core"
)

func newTestRepo(t *testing.T) (*SQLiteRepository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "cuan.db")
	repo, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo, path
}

func TestSQLiteRepository_SessionRoundTrip(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.LoadSession(ctx)
	assert.ErrorIs(t, err, ErrNoSession)

	saved := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SaveSession(ctx, SessionRecord{
		Token:   "first",
		User:    core.User{ID: 1, Name: "Ani", Email: "ani@example.com"},
		SavedAt: saved,
	}))
	require.NoError(t, repo.SaveSession(ctx, SessionRecord{
		Token: "second",
		User:  core.User{ID: 1, Name: "Ani", Email: "ani@example.com"},
	}))

	rec, err := repo.LoadSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second", rec.Token)
	assert.Equal(t, "ani@example.com", rec.User.Email)

	require.NoError(t, repo.ClearSession(ctx))
	_, err = repo.LoadSession(ctx)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSQLiteRepository_SurvivesReopen(t *testing.T) {
	repo, path := newTestRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.SaveSession(ctx, SessionRecord{Token: "persisted", User: core.User{ID: 9}}))
	require.NoError(t, repo.Close())

	reopened, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	defer reopened.Close()

	rec, err := reopened.LoadSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "persisted", rec.Token)
	assert.Equal(t, int64(9), rec.User.ID)
}

func TestSQLiteRepository_ExportMarkers(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	exported, err := repo.IsExported(ctx, 42)
	require.NoError(t, err)
	assert.False(t, exported)

	require.NoError(t, repo.MarkExported(ctx, 42, "2025 Transaksi!A10:F10"))
	require.NoError(t, repo.MarkExported(ctx, 42, "again"))

	exported, err = repo.IsExported(ctx, 42)
	require.NoError(t, err)
	assert.True(t, exported)

	exported, err = repo.IsExported(ctx, 43)
	require.NoError(t, err)
	assert.False(t, exported)
}

func TestSQLiteRepository_MigratesToLatest(t *testing.T) {
	repo, path := newTestRepo(t)
	assert.Equal(t, uint(2), repo.SchemaVersion())

	// Reopening an up-to-date file is a no-op.
	require.NoError(t, repo.Close())
	again, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	defer again.Close()
	assert.Equal(t, uint(2), again.SchemaVersion())
}
