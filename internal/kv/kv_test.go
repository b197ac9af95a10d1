package kv

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// contract runs the behaviour every backend must share.
func contract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "tasks")
	require.NoError(t, err)
	assert.False(t, ok, "fresh store must be empty")

	require.NoError(t, s.Set(ctx, "tasks", `[{"id":"1"}]`))
	v, ok, err := s.Get(ctx, "tasks")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"1"}]`, v)

	require.NoError(t, s.Set(ctx, "tasks", `[]`))
	v, ok, err = s.Get(ctx, "tasks")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[]`, v)

	require.NoError(t, s.Set(ctx, "other", "x"))
	v, _, err = s.Get(ctx, "tasks")
	require.NoError(t, err)
	assert.Equal(t, `[]`, v, "keys are independent")

	require.NoError(t, s.Close())
	_, _, err = s.Get(ctx, "tasks")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.Set(ctx, "tasks", "[]"), ErrClosed)
}

func TestFileStore_Contract(t *testing.T) {
	s, err := NewFileStore(afero.NewMemMapFs(), "/data")
	require.NoError(t, err)
	contract(t, s)
}

func TestFileStore_WritesOneFilePerKey(t *testing.T) {
	fs := afero.NewMemMapFs()
	s, err := NewFileStore(fs, "/data/tasklist")
	require.NoError(t, err)

	require.NoError(t, s.Set(context.Background(), "tasks", "[]"))

	data, err := afero.ReadFile(fs, "/data/tasklist/tasks.json")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	entries, err := afero.ReadDir(fs, "/data/tasklist")
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileStore_RejectsBadKeys(t *testing.T) {
	s, err := NewFileStore(afero.NewMemMapFs(), "/data")
	require.NoError(t, err)

	for _, key := range []string{"", "../escape", "a/b", ".hidden"} {
		assert.Error(t, s.Set(context.Background(), key, "x"), "key %q", key)
	}
}

func TestFileStore_CancelledContext(t *testing.T) {
	s, err := NewFileStore(afero.NewMemMapFs(), "/data")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Set(ctx, "tasks", "[]"), context.Canceled)
}

func TestFileStore_ReadOnlyFsFailsWrites(t *testing.T) {
	base := afero.NewMemMapFs()
	require.NoError(t, base.MkdirAll("/data", 0755))
	s, err := NewFileStore(afero.NewReadOnlyFs(base), "/data")
	require.NoError(t, err)

	assert.Error(t, s.Set(context.Background(), "tasks", "[]"))
}

func TestSQLStore_SQLiteMemory(t *testing.T) {
	s, err := OpenSQL(context.Background(), DriverSQLite, ":memory:")
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, s.Driver())
	contract(t, s)
}

func TestSQLStore_SQLiteFilePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", SQLiteFile)
	ctx := context.Background()

	s, err := OpenSQL(ctx, DriverSQLite, path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "tasks", `["kept"]`))
	require.NoError(t, s.Close())

	reopened, err := OpenSQL(ctx, DriverSQLite, path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	v, ok, err := reopened.Get(ctx, "tasks")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `["kept"]`, v)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Config{Driver: DriverFile, Dir: "/d", Fs: afero.NewMemMapFs()})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	s, err = Open(ctx, Config{Fs: afero.NewMemMapFs(), Dir: "/d"})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s, "empty driver defaults to file")

	s, err = Open(ctx, Config{Driver: DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	assert.IsType(t, &SQLStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open(ctx, Config{Driver: DriverPostgres})
	assert.ErrorContains(t, err, "requires a dsn")

	_, err = Open(ctx, Config{Driver: "redis"})
	assert.ErrorContains(t, err, "unknown storage driver")
}

func TestOpenSQL_UnsupportedDriver(t *testing.T) {
	_, err := OpenSQL(context.Background(), "oracle", "x")
	assert.Error(t, err)
}

func TestSQLitePath(t *testing.T) {
	assert.Equal(t, filepath.Join("/data", SQLiteFile), SQLitePath("/data"))
	assert.Equal(t, SQLiteFile, SQLitePath(""))
}

func TestSQLiteFilePath(t *testing.T) {
	tests := []struct {
		dsn  string
		path string
		ok   bool
	}{
		{"/data/tasklist.db", "/data/tasklist.db", true},
		{"tasklist.db", "tasklist.db", true},
		{"file:/data/tasklist.db?_pragma=busy_timeout(1000)", "/data/tasklist.db", true},
		{"file:///data/tasklist.db", "/data/tasklist.db", true},
		{"file:tasklist.db", "tasklist.db", true},
		{":memory:", "", false},
		{"file::memory:?cache=shared", "", false},
		{"file:shared?mode=memory&cache=shared", "", false},
	}
	for _, tt := range tests {
		path, ok := SQLiteFilePath(tt.dsn)
		assert.Equal(t, tt.ok, ok, tt.dsn)
		assert.Equal(t, tt.path, path, tt.dsn)
	}
}

func TestSQLStore_SQLiteURIUsesWAL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", SQLiteFile)
	ctx := context.Background()

	s, err := OpenSQL(ctx, DriverSQLite, "file:"+path+"?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	require.NoError(t, s.Set(ctx, "tasks", "[]"))

	var mode string
	require.NoError(t, s.db.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)

	assert.FileExists(t, path)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), "file:")
	}
}
