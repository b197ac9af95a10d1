// Package kv provides the persistent key-value slots the task list is
// mirrored into. Every backend stores opaque string values under string
// keys; the task store owns the encoding.
package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("kv store closed")

// Store is a persistent key-value slot.
type Store interface {
	// Get returns the value under key. ok is false when nothing is stored.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set overwrites the value under key.
	Set(ctx context.Context, key, value string) error

	// Close releases backend resources.
	Close() error
}

// Supported drivers.
const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Drivers lists the accepted driver names.
func Drivers() []string {
	return []string{DriverFile, DriverSQLite, DriverPostgres, DriverMySQL}
}

// Config selects and configures a backend.
type Config struct {
	// Driver is one of Drivers().
	Driver string
	// Dir holds the data files for the file and sqlite drivers.
	Dir string
	// DSN is the connection string for postgres and mysql. For sqlite it
	// overrides the database path derived from Dir.
	DSN string
	// Fs backs the file driver. Defaults to the OS filesystem.
	Fs afero.Fs
}

// Open returns the backend described by cfg.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", DriverFile:
		fs := cfg.Fs
		if fs == nil {
			fs = afero.NewOsFs()
		}
		return NewFileStore(fs, cfg.Dir)
	case DriverSQLite:
		dsn := cfg.DSN
		if dsn == "" {
			dsn = SQLitePath(cfg.Dir)
		}
		return OpenSQL(ctx, DriverSQLite, dsn)
	case DriverPostgres, DriverMySQL:
		if cfg.DSN == "" {
			return nil, fmt.Errorf("storage driver %s requires a dsn", cfg.Driver)
		}
		return OpenSQL(ctx, strings.ToLower(cfg.Driver), cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown storage driver %q (want one of %s)", cfg.Driver, strings.Join(Drivers(), ", "))
	}
}
