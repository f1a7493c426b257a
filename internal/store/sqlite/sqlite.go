// Package sqlite implements store.DBAdapter over database/sql with the
// mattn/go-sqlite3 driver, using sqlx for struct scanning.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/IrishAnn-code/HomeLibrary/internal/store"
)

const (
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 5
	defaultConnMaxLifetime = 5 * time.Minute
)

// Adapter implements store.DBAdapter for SQLite.
type Adapter struct {
	db      *sqlx.DB
	dsn     string
	closeMx sync.Mutex
	closed  bool
}

var _ store.DBAdapter = (*Adapter)(nil)

// New opens a SQLite database at dsn and verifies the connection.
func New(dsn string) (*Adapter, error) {
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", dsn, err)
	}

	db.SetMaxOpenConns(defaultMaxOpenConns)
	db.SetMaxIdleConns(defaultMaxIdleConns)
	db.SetConnMaxLifetime(defaultConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping %s: %w", dsn, err)
	}

	// Foreign keys are off by default in SQLite.
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: enable foreign keys: %w", err)
	}

	return &Adapter{db: db, dsn: dsn}, nil
}

// Get fetches a single row into dest. A missing row maps to store.ErrNotFound.
func (a *Adapter) Get(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	if a.isClosed() {
		return fmt.Errorf("sqlite: adapter is closed")
	}
	err := a.db.GetContext(ctx, dest, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("sqlite: get: %w", err)
	}
	return nil
}

// Select fetches all matching rows into the slice pointed to by dest.
func (a *Adapter) Select(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	if a.isClosed() {
		return fmt.Errorf("sqlite: adapter is closed")
	}
	if err := a.db.SelectContext(ctx, dest, query, args...); err != nil {
		return fmt.Errorf("sqlite: select: %w", err)
	}
	return nil
}

// Exec runs a statement that returns no rows.
func (a *Adapter) Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	if a.isClosed() {
		return nil, fmt.Errorf("sqlite: adapter is closed")
	}
	result, err := a.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("sqlite: exec: %w", store.ErrConflict)
		}
		return nil, fmt.Errorf("sqlite: exec: %w", err)
	}
	return result, nil
}

// isUniqueViolation reports whether err is a UNIQUE or PRIMARY KEY
// constraint failure. Callers race between their existence checks and
// the insert, so this surfaces as store.ErrConflict instead of an
// opaque driver error.
func isUniqueViolation(err error) bool {
	var serr sqlite3.Error
	if !errors.As(err, &serr) {
		return false
	}
	return serr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		serr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

// GetCount runs SELECT COUNT(*) with an optional WHERE clause.
func (a *Adapter) GetCount(ctx context.Context, tableName string, where string, args []interface{}) (int64, error) {
	if a.isClosed() {
		return 0, fmt.Errorf("sqlite: adapter is closed")
	}
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", tableName)
	if where != "" {
		query += " WHERE " + where
	}
	var count int64
	err := a.db.QueryRowxContext(ctx, query, args...).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("sqlite: count %s: %w", tableName, err)
	}
	return count, nil
}

// BeginTx starts a transaction.
func (a *Adapter) BeginTx(ctx context.Context, opts *sql.TxOptions) (store.Tx, error) {
	if a.isClosed() {
		return nil, fmt.Errorf("sqlite: adapter is closed")
	}
	tx, err := a.db.BeginTxx(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("sqlite: begin tx: %w", err)
	}
	return &Tx{tx: tx}, nil
}

// Close closes the connection pool. Safe to call twice.
func (a *Adapter) Close() error {
	a.closeMx.Lock()
	defer a.closeMx.Unlock()
	if a.closed {
		return nil
	}
	a.closed = true
	return a.db.Close()
}

// DB exposes the underlying sqlx handle.
func (a *Adapter) DB() *sqlx.DB { return a.db }

func (a *Adapter) isClosed() bool {
	a.closeMx.Lock()
	defer a.closeMx.Unlock()
	return a.closed
}

// Tx wraps a sqlx transaction to implement store.Tx.
type Tx struct {
	tx *sqlx.Tx
}

func (t *Tx) Get(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	err := t.tx.GetContext(ctx, dest, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("sqlite: tx get: %w", err)
	}
	return nil
}

func (t *Tx) Select(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	if err := t.tx.SelectContext(ctx, dest, query, args...); err != nil {
		return fmt.Errorf("sqlite: tx select: %w", err)
	}
	return nil
}

func (t *Tx) Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	result, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("sqlite: tx exec: %w", store.ErrConflict)
		}
		return nil, fmt.Errorf("sqlite: tx exec: %w", err)
	}
	return result, nil
}

func (t *Tx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

func (t *Tx) Rollback() error {
	err := t.tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return err
	}
	if err != nil {
		return fmt.Errorf("sqlite: rollback: %w", err)
	}
	return nil
}
