package store

import "errors"

// ErrNotFound is returned when a requested record is not present in the
// database or the cache holds the known-missing marker for it.
var ErrNotFound = errors.New("store: record not found")

// ErrConflict is returned when a write violates a unique constraint.
var ErrConflict = errors.New("store: unique constraint violated")

var (
	ErrLockNotAcquired = errors.New("store: could not acquire lock")
	ErrInvalidModel    = errors.New("store: model must be a non-nil pointer to a struct embedding store.BaseModel")
	ErrZeroID          = errors.New("store: record has no ID")
)

// noneResult is a cache marker for a known-missing record. It lets ByID
// distinguish "key not cached" from "key cached, record does not exist".
const noneResult = "__none__"
