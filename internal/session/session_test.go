package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alimurrofid/petualangan-cuan/internal/core"
	"github.com/alimurrofid/petualangan-cuan/internal/storage"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 1,
		"exp":     exp.Unix(),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func newRepo(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "cuan.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestManager_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	user := core.User{ID: 1, Name: "Ani", Email: "ani@example.com"}
	token := signedToken(t, time.Now().Add(time.Hour))

	m := New(repo, nil)
	require.NoError(t, m.Init(ctx))
	assert.False(t, m.Authenticated())
	assert.ErrorIs(t, m.RequireAuth(), ErrUnauthenticated)

	require.NoError(t, m.Set(ctx, token, user))
	assert.True(t, m.Authenticated())
	assert.NoError(t, m.RequireAuth())
	assert.Equal(t, token, m.Token())

	// A second manager over the same storage picks the session up.
	restored := New(repo, nil)
	require.NoError(t, restored.Init(ctx))
	got, ok := restored.User()
	assert.True(t, ok)
	assert.Equal(t, "ani@example.com", got.Email)
	assert.Equal(t, token, restored.Token())

	require.NoError(t, restored.Clear(ctx))
	assert.Empty(t, restored.Token())

	fresh := New(repo, nil)
	require.NoError(t, fresh.Init(ctx))
	assert.False(t, fresh.Authenticated())
}

func TestManager_ExpiredTokenIsDiscardedOnInit(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	require.NoError(t, repo.SaveSession(ctx, storage.SessionRecord{
		Token: signedToken(t, time.Now().Add(-time.Minute)),
		User:  core.User{ID: 1},
	}))

	m := New(repo, nil)
	require.NoError(t, m.Init(ctx))

	assert.False(t, m.Authenticated())
	_, err := repo.LoadSession(ctx)
	assert.ErrorIs(t, err, storage.ErrNoSession)
}

func TestManager_ExpiresAt(t *testing.T) {
	m := New(nil, nil)
	exp := time.Now().Add(2 * time.Hour).Truncate(time.Second)
	require.NoError(t, m.Set(context.Background(), signedToken(t, exp), core.User{ID: 1}))

	got, ok := m.ExpiresAt()
	require.True(t, ok)
	assert.True(t, exp.Equal(got))

	m.now = func() time.Time { return exp.Add(time.Second) }
	assert.False(t, m.Authenticated())
}

func TestManager_OpaqueTokenCountsAsValid(t *testing.T) {
	m := New(nil, nil)
	require.NoError(t, m.Set(context.Background(), "opaque-token", core.User{ID: 2}))

	_, ok := m.ExpiresAt()
	assert.False(t, ok)
	assert.True(t, m.Authenticated())
}
