package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := NewDB(context.Background(), filepath.Join(t.TempDir(), "data", "gsb.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestBanRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewBanRepo(newTestDB(t))

	banned, err := repo.IsBanned(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, banned)

	require.NoError(t, repo.Ban(ctx, "10.0.0.1", "spam"))
	require.NoError(t, repo.Ban(ctx, "10.0.0.1", "flooding"))
	require.NoError(t, repo.Ban(ctx, "10.0.0.2", ""))

	banned, err = repo.IsBanned(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, banned)

	bans, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, bans, 2)
	assert.Equal(t, "10.0.0.1", bans[0].Host)
	assert.Equal(t, "flooding", bans[0].Reason)
	assert.False(t, bans[0].CreatedAt.IsZero())

	removed, err := repo.Unban(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Unban(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestWordRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewWordRepo(newTestDB(t))

	require.NoError(t, repo.AddWord(ctx, "Zorkmid"))
	require.NoError(t, repo.AddWord(ctx, "zorkmid"))
	require.NoError(t, repo.AddWord(ctx, "grue"))

	ok, err := repo.HasWord(ctx, "ZORKMID")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.HasWord(ctx, "dragon")
	require.NoError(t, err)
	assert.False(t, ok)

	words, err := repo.Words(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"grue", "zorkmid"}, words)
}

func TestNewDB_Migrations(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "gsb.db")

	db, err := NewDB(ctx, path)
	require.NoError(t, err)
	require.NoError(t, NewWordRepo(db).AddWord(ctx, "kept"))
	require.NoError(t, db.Close())

	// Reopening runs migrations again without touching existing rows.
	db, err = NewDB(ctx, path)
	require.NoError(t, err)
	defer db.Close()

	ok, err := NewWordRepo(db).HasWord(ctx, "kept")
	require.NoError(t, err)
	assert.True(t, ok)
}
