package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// SQLiteFile is the database file name used under the data directory.
const SQLiteFile = "tasklist.db"

// dialect holds the statements that differ between SQL engines.
type dialect struct {
	schema string
	get    string
	upsert string
}

var dialects = map[string]dialect{
	DriverSQLite: {
		schema: `CREATE TABLE IF NOT EXISTS tasklist_kv (
			name TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		get: `SELECT value FROM tasklist_kv WHERE name = ?`,
		upsert: `INSERT INTO tasklist_kv (name, value, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
	},
	DriverPostgres: {
		schema: `CREATE TABLE IF NOT EXISTS tasklist_kv (
			name TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		get: `SELECT value FROM tasklist_kv WHERE name = $1`,
		upsert: `INSERT INTO tasklist_kv (name, value, updated_at) VALUES ($1, $2, $3)
			ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
	},
	DriverMySQL: {
		schema: `CREATE TABLE IF NOT EXISTS tasklist_kv (
			name VARCHAR(191) PRIMARY KEY,
			value LONGTEXT NOT NULL,
			updated_at VARCHAR(40) NOT NULL
		)`,
		get: `SELECT value FROM tasklist_kv WHERE name = ?`,
		upsert: `INSERT INTO tasklist_kv (name, value, updated_at) VALUES (?, ?, ?)
			ON DUPLICATE KEY UPDATE value = VALUES(value), updated_at = VALUES(updated_at)`,
	},
}

// SQLStore keeps keys in a single table of a SQL database.
type SQLStore struct {
	db      *sql.DB
	driver  string
	dialect dialect

	mu     sync.RWMutex
	closed bool
}

// SQLitePath returns the database path for a data directory.
func SQLitePath(dir string) string {
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, SQLiteFile)
}

// SQLiteFilePath returns the file behind a sqlite DSN. Both plain paths and
// "file:" URIs are accepted; the URI query is dropped. ok is false for
// in-memory databases.
func SQLiteFilePath(dsn string) (path string, ok bool) {
	path = dsn
	query := ""
	if rest, isURI := strings.CutPrefix(dsn, "file:"); isURI {
		path, query, _ = strings.Cut(rest, "?")
		path = strings.TrimPrefix(path, "//localhost")
		path = strings.TrimPrefix(path, "//")
	}
	if path == "" || path == ":memory:" || strings.Contains(query, "mode=memory") {
		return "", false
	}
	return path, true
}

// OpenSQL connects with driver and dsn, verifies the connection and
// creates the table if needed.
func OpenSQL(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	if driver == DriverSQLite {
		if path, ok := SQLiteFilePath(dsn); ok {
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return newSQLStore(ctx, db, driver, d)
}

func newSQLStore(ctx context.Context, db *sql.DB, driver string, d dialect) (*SQLStore, error) {
	if driver == DriverSQLite {
		// One connection keeps ":memory:" databases shared and avoids
		// SQLITE_BUSY between pooled writers.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if driver == DriverSQLite {
		if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set busy timeout: %w", err)
		}
		// WAL lets a watching process read while another writes. In-memory
		// databases keep their own journal mode.
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("enable wal: %w", err)
		}
	}

	if _, err := db.ExecContext(ctx, d.schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &SQLStore{db: db, driver: driver, dialect: d}, nil
}

// Driver returns the database driver name.
func (s *SQLStore) Driver() string {
	return s.driver
}

func (s *SQLStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return "", false, ErrClosed
	}

	var value string
	err := s.db.QueryRowContext(ctx, s.dialect.get, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := s.db.ExecContext(ctx, s.dialect.upsert, key, value, now); err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
