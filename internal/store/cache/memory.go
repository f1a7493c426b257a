// Package cache provides store.CacheClient implementations: a Redis-backed
// client for deployments and an in-process client for single-node use and
// tests.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/IrishAnn-code/HomeLibrary/internal/store"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

func (e memoryEntry) expired() bool {
	return !e.expiresAt.IsZero() && time.Now().After(e.expiresAt)
}

// Memory is an in-process store.CacheClient backed by a map.
type Memory struct {
	mu       sync.RWMutex
	entries  map[string]memoryEntry
	counters map[string]int
}

var _ store.CacheClient = (*Memory)(nil)

// NewMemory creates an empty in-process cache.
func NewMemory() *Memory {
	return &Memory{
		entries:  make(map[string]memoryEntry),
		counters: make(map[string]int),
	}
}

func (m *Memory) count(name string) {
	m.counters[name]++
}

// Get retrieves a raw string value.
func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count("Get")
	entry, ok := m.entries[key]
	if !ok || entry.expired() {
		if ok {
			delete(m.entries, key)
		}
		m.count("GetMiss")
		return "", store.ErrNotFound
	}
	m.count("GetHit")
	return entry.value, nil
}

// Set stores a raw string value.
func (m *Memory) Set(_ context.Context, key string, value string, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count("Set")
	m.entries[key] = memoryEntry{value: value, expiresAt: expiry(expiration)}
	return nil
}

// Delete removes a key.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count("Delete")
	delete(m.entries, key)
	return nil
}

// GetModel retrieves a cached record into dest.
func (m *Memory) GetModel(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	m.count("GetModel")
	entry, ok := m.entries[key]
	if !ok || entry.expired() {
		if ok {
			delete(m.entries, key)
		}
		m.count("GetModelMiss")
		m.mu.Unlock()
		return store.ErrNotFound
	}
	m.count("GetModelHit")
	m.mu.Unlock()

	if err := json.Unmarshal([]byte(entry.value), dest); err != nil {
		return fmt.Errorf("cache: unmarshal model for key %q: %w", key, err)
	}
	return nil
}

// SetModel stores a record as JSON.
func (m *Memory) SetModel(_ context.Context, key string, model interface{}, expiration time.Duration) error {
	raw, err := json.Marshal(model)
	if err != nil {
		return fmt.Errorf("cache: marshal model for key %q: %w", key, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count("SetModel")
	m.entries[key] = memoryEntry{value: string(raw), expiresAt: expiry(expiration)}
	return nil
}

// DeleteModel removes a cached record.
func (m *Memory) DeleteModel(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count("DeleteModel")
	delete(m.entries, key)
	return nil
}

// GetQueryIDs retrieves a cached ID list.
func (m *Memory) GetQueryIDs(_ context.Context, queryKey string) ([]int64, error) {
	m.mu.Lock()
	m.count("GetQueryIDs")
	entry, ok := m.entries[queryKey]
	if !ok || entry.expired() {
		if ok {
			delete(m.entries, queryKey)
		}
		m.count("GetQueryIDsMiss")
		m.mu.Unlock()
		return nil, store.ErrNotFound
	}
	m.count("GetQueryIDsHit")
	m.mu.Unlock()

	var ids []int64
	if err := json.Unmarshal([]byte(entry.value), &ids); err != nil {
		return nil, fmt.Errorf("cache: unmarshal query ids for key %q: %w", queryKey, err)
	}
	return ids, nil
}

// SetQueryIDs stores an ID list as JSON.
func (m *Memory) SetQueryIDs(_ context.Context, queryKey string, ids []int64, expiration time.Duration) error {
	raw, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("cache: marshal query ids for key %q: %w", queryKey, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count("SetQueryIDs")
	m.entries[queryKey] = memoryEntry{value: string(raw), expiresAt: expiry(expiration)}
	return nil
}

// AcquireLock takes the named lock if it is free. Non-blocking.
func (m *Memory) AcquireLock(_ context.Context, lockKey string, expiration time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count("AcquireLock")
	entry, ok := m.entries[lockKey]
	if ok && !entry.expired() {
		return false, nil
	}
	m.entries[lockKey] = memoryEntry{value: "1", expiresAt: expiry(expiration)}
	return true, nil
}

// ReleaseLock frees the named lock.
func (m *Memory) ReleaseLock(_ context.Context, lockKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count("ReleaseLock")
	delete(m.entries, lockKey)
	return nil
}

// Incr increments the integer stored at key, creating it at 1.
func (m *Memory) Incr(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count("Incr")
	var current int64
	if entry, ok := m.entries[key]; ok && !entry.expired() {
		parsed, err := strconv.ParseInt(entry.value, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("cache: incr on non-integer key %q", key)
		}
		current = parsed
	}
	current++
	m.entries[key] = memoryEntry{value: strconv.FormatInt(current, 10)}
	return current, nil
}

// Stats returns a copy of the operation counters.
func (m *Memory) Stats() store.CacheStats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	counters := make(map[string]int, len(m.counters))
	for name, n := range m.counters {
		counters[name] = n
	}
	return store.CacheStats{Counters: counters}
}

// Flush drops every entry. Intended for tests.
func (m *Memory) Flush() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]memoryEntry)
}

func expiry(d time.Duration) time.Time {
	if d <= 0 {
		return time.Time{}
	}
	return time.Now().Add(d)
}
