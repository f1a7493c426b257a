// Package store implements the persistence layer: a cache-aside generic
// repository over a SQL database adapter and a pluggable cache client.
package store

import (
	"context"
	"database/sql"
	"time"
)

// DBAdapter is the interface database drivers implement.
type DBAdapter interface {
	// Get fetches a single row into dest. Returns ErrNotFound when no row matches.
	Get(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	// Select fetches all matching rows into the slice pointed to by dest.
	Select(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	GetCount(ctx context.Context, tableName string, where string, args []interface{}) (int64, error)
	BeginTx(ctx context.Context, opts *sql.TxOptions) (Tx, error)
	Close() error
}

// Tx is a database transaction.
type Tx interface {
	Get(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	Select(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	Commit() error
	Rollback() error
}

// CacheClient is the interface cache drivers implement.
type CacheClient interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
	Delete(ctx context.Context, key string) error

	GetModel(ctx context.Context, key string, dest interface{}) error
	SetModel(ctx context.Context, key string, model interface{}, expiration time.Duration) error
	DeleteModel(ctx context.Context, key string) error

	GetQueryIDs(ctx context.Context, queryKey string) ([]int64, error)
	SetQueryIDs(ctx context.Context, queryKey string, ids []int64, expiration time.Duration) error

	AcquireLock(ctx context.Context, lockKey string, expiration time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, lockKey string) error

	Incr(ctx context.Context, key string) (int64, error)

	// Stats returns operation counters for monitoring and tests.
	Stats() CacheStats
}

// CacheStats holds cache operation counters.
type CacheStats struct {
	Counters map[string]int
}
