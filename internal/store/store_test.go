package store

import (
	"path/filepath"
	"testing"

	"github.com/rmarques/leadchat/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:", logging.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpen_InMemory(t *testing.T) {
	db := testDB(t)
	assert.NotNil(t, db)
}

func TestOpen_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "leadchat.db")
	db, err := Open(path, logging.Nop())
	require.NoError(t, err)
	defer db.Close()

	kv := NewSQLiteKV(db)
	require.NoError(t, kv.Set("a", "1"))
}

func TestMigrations_Applied(t *testing.T) {
	db := testDB(t)

	var count int
	err := db.sql.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, len(migrations), count)
}

func TestMigrations_Idempotent(t *testing.T) {
	db := testDB(t)

	err := db.migrate()
	require.NoError(t, err)

	var count int
	err = db.sql.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, len(migrations), count)
}

func TestSQLiteKV_GetSetDelete(t *testing.T) {
	kv := NewSQLiteKV(testDB(t))

	_, ok := kv.Get("missing")
	assert.False(t, ok)

	require.NoError(t, kv.Set("session:id", "abc"))
	v, ok := kv.Get("session:id")
	assert.True(t, ok)
	assert.Equal(t, "abc", v)

	// Overwrite wins
	require.NoError(t, kv.Set("session:id", "def"))
	v, _ = kv.Get("session:id")
	assert.Equal(t, "def", v)

	require.NoError(t, kv.Delete("session:id"))
	_, ok = kv.Get("session:id")
	assert.False(t, ok)

	// Deleting an absent key is a no-op
	require.NoError(t, kv.Delete("session:id"))
}

func TestMemoryKV_GetSetDelete(t *testing.T) {
	kv := NewMemoryKV()

	_, ok := kv.Get("k")
	assert.False(t, ok)

	require.NoError(t, kv.Set("k", "v"))
	v, ok := kv.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	require.NoError(t, kv.Delete("k"))
	_, ok = kv.Get("k")
	assert.False(t, ok)
}
