package catapi

import (
	"context"
	"fmt"
	"time"
)

// Store keeps raw catalog answers by entry name.
// Implementations must replace entries atomically: a concurrent reader sees
// either the old or the new answer, never a partial one.
type Store interface {
	// Get returns the data of an entry and the time it was stored.
	// It returns ErrNotFound for a missing entry.
	Get(ctx context.Context, name string) ([]byte, time.Time, error)
	// Put stores data under name, replacing any previous entry.
	Put(ctx context.Context, name string, data []byte) error
	// Delete removes an entry. Deleting a missing entry is not an error.
	Delete(ctx context.Context, name string) error
	// Entries counts the stored entries.
	Entries(ctx context.Context) (int64, error)
	// Prune removes entries stored before cutoff and reports how many.
	Prune(ctx context.Context, cutoff time.Time) (int, error)
	// Clear removes every entry.
	Clear(ctx context.Context) error
	// Close releases resources.
	Close() error
}

// Store backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// StoreConfig selects and configures a Store backend.
type StoreConfig struct {
	Backend  string
	Dir      string
	DBPath   string
	RedisURL string
	// Retention bounds how long the redis backend keeps entries.
	Retention time.Duration
}

// NewStore opens the backend named in cfg.
func NewStore(ctx context.Context, cfg StoreConfig) (Store, error) {
	switch cfg.Backend {
	case "", BackendFile:
		return NewFileStore(nil, cfg.Dir)
	case BackendSQLite:
		return NewSQLiteStore(cfg.DBPath)
	case BackendRedis:
		return NewRedisStore(ctx, RedisConfig{URL: cfg.RedisURL, Retention: cfg.Retention})
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
