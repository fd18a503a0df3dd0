// Package store persists the service state in a key-value store. Values are
// JSON documents replaced whole on every write; there is no partial update.
package store

import (
	"context"
	"fmt"
	"os"
)

// KV is the persistent key-value store. Get omits keys that are not set.
type KV interface {
	Get(ctx context.Context, keys ...string) (map[string][]byte, error)
	Set(ctx context.Context, entries map[string][]byte) error
	Close() error
}

// Driver names a KV backend.
type Driver string

const (
	DriverMemory   Driver = "memory"
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// OpenConfig selects and configures a backend.
type OpenConfig struct {
	Driver      Driver
	SQLitePath  string
	PostgresDSN string
}

// Open constructs the configured KV backend.
func Open(ctx context.Context, cfg OpenConfig) (KV, error) {
	switch cfg.Driver {
	case DriverMemory:
		return NewMemory(), nil
	case DriverSQLite, "":
		return OpenSQLite(ctx, cfg.SQLitePath)
	case DriverPostgres:
		dsn := cfg.PostgresDSN
		if dsn == "" {
			dsn = os.Getenv("BREWLIST_POSTGRES_DSN")
		}
		return OpenPostgres(ctx, dsn)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
