package sqlite_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pets-api/internal/adapters/storage/sqlite"
	"pets-api/internal/adapters/storage/storetest"
	"pets-api/internal/domain/pets"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "pets.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, sqlite.Migrate(context.Background(), db))
	return db
}

func TestStore_Contract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) pets.Repository {
		return sqlite.NewPetsRepo(openTestDB(t))
	})
}

func TestStore_ConcurrentCreatesKeepOneRowPerName(t *testing.T) {
	db := openTestDB(t)
	repo := sqlite.NewPetsRepo(db)

	created := storetest.CreateConcurrently(t, repo, 12)
	require.Len(t, created, 12)

	var groups, traits int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM pet_groups`).Scan(&groups))
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM traits`).Scan(&traits))
	assert.Equal(t, 1, groups)
	assert.Equal(t, 1, traits)

	var key string
	require.NoError(t, db.QueryRow(`SELECT scientific_name_key FROM pet_groups`).Scan(&key))
	assert.Equal(t, "ñandú común", key)
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)
	assert.NoError(t, sqlite.Migrate(context.Background(), db))
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := sqlite.Open("  ")
	assert.Error(t, err)
}

func TestIsUniqueViolation(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `INSERT INTO traits (id, name, name_key, created_at) VALUES ('t1', 'calm', 'calm', CURRENT_TIMESTAMP)`)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `INSERT INTO traits (id, name, name_key, created_at) VALUES ('t2', 'CALM', 'calm', CURRENT_TIMESTAMP)`)
	require.Error(t, err)
	assert.True(t, sqlite.IsUniqueViolation(err))

	_, err = db.ExecContext(ctx, `INSERT INTO pets (id, name, age, weight, created_at, updated_at) VALUES ('p1', 'x', -1, 1, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`)
	require.Error(t, err)
	assert.False(t, sqlite.IsUniqueViolation(err), "check constraint is not a unique violation")

	assert.False(t, sqlite.IsUniqueViolation(nil))
}
