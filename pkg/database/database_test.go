package database

import (
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func openTemp(t *testing.T) *DB {
	t.Helper()
	db, err := New(Config{Path: filepath.Join(t.TempDir(), "hr.db"), MaxOpenConns: 1}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNew_RequiresPath(t *testing.T) {
	_, err := New(Config{}, zap.NewNop())
	assert.Error(t, err)
}

func TestMigrator_RunIsIdempotent(t *testing.T) {
	db := openTemp(t)
	m := NewMigrator(db, zap.NewNop())

	require.NoError(t, m.Run())
	require.NoError(t, m.Run())

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 1, count)

	for _, table := range []string{"users", "workflow_templates", "requests", "request_steps", "request_history"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		assert.NoError(t, err, table)
	}
}

func TestLoadMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"002_add_index.sql":      {Data: []byte("CREATE INDEX x ON t(a);")},
		"001_initial_schema.sql": {Data: []byte("CREATE TABLE t (a INTEGER);")},
		"README.md":              {Data: []byte("ignored")},
	}

	migs, err := LoadMigrations(fsys)
	require.NoError(t, err)
	require.Len(t, migs, 2)
	assert.Equal(t, 1, migs[0].Version)
	assert.Equal(t, "initial_schema", migs[0].Name)
	assert.Equal(t, "add_index", migs[1].Name)

	fsys["002_duplicate.sql"] = &fstest.MapFile{Data: []byte("SELECT 1;")}
	_, err = LoadMigrations(fsys)
	assert.Error(t, err)

	_, err = LoadMigrations(fstest.MapFS{"abc.sql": {Data: []byte("")}})
	assert.Error(t, err)
}

func TestMigrator_FailedMigrationIsNotRecorded(t *testing.T) {
	db := openTemp(t)
	m := NewMigrator(db, zap.NewNop())

	err := m.RunMigrations(fstest.MapFS{"001_broken.sql": {Data: []byte("CREATE TABLE (;")}})
	require.Error(t, err)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Zero(t, count)
}
