package database

import (
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(Config{
		Path:         filepath.Join(t.TempDir(), "migrate.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestLoadMigrations(t *testing.T) {
	t.Run("sorted by version", func(t *testing.T) {
		fsys := fstest.MapFS{
			"002_add_index.sql": {Data: []byte("CREATE INDEX idx_a ON a(name);")},
			"001_create_a.sql":  {Data: []byte("CREATE TABLE a (name TEXT);")},
			"README.md":         {Data: []byte("ignored")},
			"010_create_b.sql":  {Data: []byte("CREATE TABLE b (name TEXT);")},
		}

		migrations, err := LoadMigrations(fsys)

		require.NoError(t, err)
		require.Len(t, migrations, 3)
		assert.Equal(t, []int{1, 2, 10}, []int{migrations[0].Version, migrations[1].Version, migrations[2].Version})
		assert.Equal(t, "create_a", migrations[0].Name)
		assert.Equal(t, "CREATE TABLE b (name TEXT);", migrations[2].SQL)
	})

	t.Run("duplicate version", func(t *testing.T) {
		fsys := fstest.MapFS{
			"001_create_a.sql": {Data: []byte("SELECT 1;")},
			"001_create_b.sql": {Data: []byte("SELECT 1;")},
		}

		_, err := LoadMigrations(fsys)

		assert.ErrorContains(t, err, "duplicate migration version 1")
	})

	t.Run("filename without version", func(t *testing.T) {
		fsys := fstest.MapFS{"schema.sql": {Data: []byte("SELECT 1;")}}

		_, err := LoadMigrations(fsys)

		assert.ErrorContains(t, err, "invalid migration filename format")
	})
}

func TestMigrator_Run(t *testing.T) {
	db := openTestDB(t)
	migrator := NewMigrator(db, zap.NewNop())
	fsys := fstest.MapFS{
		"001_create_a.sql": {Data: []byte("CREATE TABLE a (name TEXT);")},
	}

	require.NoError(t, migrator.Run(fsys))
	// already applied versions are skipped
	require.NoError(t, migrator.Run(fsys))

	fsys["002_insert_a.sql"] = &fstest.MapFile{Data: []byte("INSERT INTO a (name) VALUES ('x');")}
	require.NoError(t, migrator.Run(fsys))

	var versions int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&versions))
	assert.Equal(t, 2, versions)

	var rows int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM a").Scan(&rows))
	assert.Equal(t, 1, rows)
}

func TestMigrator_RunRollsBackFailedMigration(t *testing.T) {
	db := openTestDB(t)
	fsys := fstest.MapFS{
		"001_broken.sql": {Data: []byte("CREATE TABLE broken (;")},
	}

	err := NewMigrator(db, zap.NewNop()).Run(fsys)
	require.Error(t, err)

	var versions int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&versions))
	assert.Zero(t, versions)
}
