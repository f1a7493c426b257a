package store

import (
	"context"
	"fmt"
	"log"
	"reflect"
	"strings"
	"time"
)

const (
	// DefaultTTL is the cache lifetime for records and ID lists.
	DefaultTTL = 1 * time.Hour
	// noneResultTTL keeps known-missing markers short-lived so a record
	// created elsewhere becomes visible quickly.
	noneResultTTL = 1 * time.Minute

	lockTTL        = 5 * time.Second
	lockRetryDelay = 50 * time.Millisecond
	lockMaxRetries = 5
)

// Store is a cache-aside repository for a single model type T.
// T must be a struct embedding BaseModel with `db`-tagged columns.
type Store[T any] struct {
	db    DBAdapter
	cache CacheClient
	info  *modelInfo
	ttl   time.Duration
}

// New creates a Store for T bound to the given database and cache.
func New[T any](db DBAdapter, cache CacheClient) (*Store[T], error) {
	if db == nil {
		return nil, fmt.Errorf("store: DBAdapter must be non-nil")
	}
	if cache == nil {
		return nil, fmt.Errorf("store: CacheClient must be non-nil")
	}
	modelType := reflect.TypeOf((*T)(nil)).Elem()
	info, err := getModelInfo(modelType)
	if err != nil {
		return nil, fmt.Errorf("store: model info for %s: %w", modelType.Name(), err)
	}
	return &Store[T]{db: db, cache: cache, info: info, ttl: DefaultTTL}, nil
}

// TableName returns the table the store reads and writes.
func (s *Store[T]) TableName() string { return s.info.tableName }

// DB exposes the underlying adapter for transactional work that does not fit
// the single-record operations below.
func (s *Store[T]) DB() DBAdapter { return s.db }

// ByID fetches a record by primary key, consulting the model cache first.
func (s *Store[T]) ByID(ctx context.Context, id int64) (*T, error) {
	key := modelCacheKey(s.info.tableName, id)

	// Negative cache: known-missing record.
	if raw, err := s.cache.Get(ctx, key); err == nil && raw == noneResult {
		return nil, ErrNotFound
	}

	dest := new(T)
	cacheErr := s.cache.GetModel(ctx, key, dest)
	if cacheErr == nil {
		if bm := baseModelOf(dest); bm != nil {
			bm.SetNewRecordFlag(false)
		}
		return dest, nil
	}
	if cacheErr != ErrNotFound {
		log.Printf("WARN: cache GetModel %s: %v", key, cacheErr)
	}

	query := fmt.Sprintf("%s WHERE %q = ? LIMIT 1", s.selectSQL(), s.info.pkName)
	if err := s.db.Get(ctx, dest, query, id); err != nil {
		if err == ErrNotFound {
			if setErr := s.cache.Set(ctx, key, noneResult, noneResultTTL); setErr != nil {
				log.Printf("WARN: cache Set none-result %s: %v", key, setErr)
			}
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: get %s %d: %w", s.info.tableName, id, err)
	}

	if bm := baseModelOf(dest); bm != nil {
		bm.SetNewRecordFlag(false)
	}
	if err := s.cache.SetModel(ctx, key, dest, s.ttl); err != nil {
		log.Printf("WARN: cache SetModel %s: %v", key, err)
	}
	return dest, nil
}

// Save inserts value when its ID is zero, otherwise updates the columns that
// changed against the stored record. Timestamps are maintained here.
func (s *Store[T]) Save(ctx context.Context, value *T) error {
	if value == nil {
		return ErrInvalidModel
	}
	bm := baseModelOf(value)
	if bm == nil {
		return ErrInvalidModel
	}

	now := time.Now().UTC()
	if bm.IsNewRecord() || bm.ID == 0 {
		return s.insert(ctx, value, bm, now)
	}
	return s.update(ctx, value, bm, now)
}

func (s *Store[T]) insert(ctx context.Context, value *T, bm *BaseModel, now time.Time) error {
	bm.CreatedAt = now
	bm.UpdatedAt = now

	cols := make([]string, 0, len(s.info.columns))
	for _, col := range s.info.columns {
		if col != s.info.pkName {
			cols = append(cols, col)
		}
	}
	args, err := valuesForColumns(value, s.info, cols)
	if err != nil {
		return err
	}

	quoted := make([]string, len(cols))
	placeholders := make([]string, len(cols))
	for i, col := range cols {
		quoted[i] = fmt.Sprintf("%q", col)
		placeholders[i] = "?"
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		s.info.tableName, strings.Join(quoted, ", "), strings.Join(placeholders, ", "))

	result, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("store: insert into %s: %w", s.info.tableName, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("store: last insert id for %s: %w", s.info.tableName, err)
	}
	bm.SetID(id)
	bm.SetNewRecordFlag(false)

	key := modelCacheKey(s.info.tableName, id)
	if err := s.cache.SetModel(ctx, key, value, s.ttl); err != nil {
		log.Printf("WARN: cache SetModel after insert %s: %v", key, err)
	}
	s.bumpTableVersion(ctx)
	return nil
}

func (s *Store[T]) update(ctx context.Context, value *T, bm *BaseModel, now time.Time) error {
	id := bm.ID
	if id == 0 {
		return ErrZeroID
	}

	original, err := s.ByID(ctx, id)
	if err != nil {
		return fmt.Errorf("store: fetch original %s %d: %w", s.info.tableName, id, err)
	}
	changed, err := changedColumns(original, value, s.info)
	if err != nil {
		return err
	}
	if len(changed) == 0 {
		bm.SetNewRecordFlag(false)
		return nil
	}

	bm.UpdatedAt = now
	changed["updated_at"] = now

	cols := make([]string, 0, len(changed))
	for _, col := range s.info.columns { // deterministic column order
		if _, ok := changed[col]; ok {
			cols = append(cols, col)
		}
	}
	setClauses := make([]string, len(cols))
	args := make([]interface{}, 0, len(cols)+1)
	for i, col := range cols {
		setClauses[i] = fmt.Sprintf("%q = ?", col)
		args = append(args, changed[col])
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %q = ?",
		s.info.tableName, strings.Join(setClauses, ", "), s.info.pkName)

	err = s.withLock(ctx, lockKey(s.info.tableName, id), func(ctx context.Context) error {
		if _, execErr := s.db.Exec(ctx, query, args...); execErr != nil {
			return fmt.Errorf("store: update %s %d: %w", s.info.tableName, id, execErr)
		}
		if delErr := s.cache.DeleteModel(ctx, modelCacheKey(s.info.tableName, id)); delErr != nil {
			log.Printf("WARN: cache DeleteModel after update %s %d: %v", s.info.tableName, id, delErr)
		}
		return nil
	})
	if err != nil {
		return err
	}

	bm.SetNewRecordFlag(false)
	s.bumpTableVersion(ctx)
	return nil
}

// Delete removes the record backing value.
func (s *Store[T]) Delete(ctx context.Context, value *T) error {
	bm := baseModelOf(value)
	if bm == nil {
		return ErrInvalidModel
	}
	id := bm.ID
	if id == 0 {
		return ErrZeroID
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE %q = ?", s.info.tableName, s.info.pkName)
	err := s.withLock(ctx, lockKey(s.info.tableName, id), func(ctx context.Context) error {
		result, execErr := s.db.Exec(ctx, query, id)
		if execErr != nil {
			return fmt.Errorf("store: delete %s %d: %w", s.info.tableName, id, execErr)
		}
		if affected, _ := result.RowsAffected(); affected == 0 {
			return ErrNotFound
		}
		if delErr := s.cache.DeleteModel(ctx, modelCacheKey(s.info.tableName, id)); delErr != nil {
			log.Printf("WARN: cache DeleteModel after delete %s %d: %v", s.info.tableName, id, delErr)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.bumpTableVersion(ctx)
	return nil
}

// Query runs a list query. The matching IDs are cached per table version;
// records are hydrated through ByID so the model cache is shared with it.
func (s *Store[T]) Query(ctx context.Context, params QueryParams) ([]*T, error) {
	ids, err := s.ids(ctx, params)
	if err != nil {
		return nil, err
	}
	results := make([]*T, 0, len(ids))
	for _, id := range ids {
		model, err := s.ByID(ctx, id)
		if err != nil {
			if err == ErrNotFound {
				// Dropped between the ID query and hydration.
				continue
			}
			return nil, err
		}
		results = append(results, model)
	}
	return results, nil
}

// Count returns the number of records matching params.Where.
func (s *Store[T]) Count(ctx context.Context, params QueryParams) (int64, error) {
	return s.db.GetCount(ctx, s.info.tableName, params.Where, params.Args)
}

// InvalidateQueries orphans every cached ID list for the table. Call it
// after writing to the table outside of Save and Delete, e.g. in a manual
// transaction.
func (s *Store[T]) InvalidateQueries(ctx context.Context) {
	s.bumpTableVersion(ctx)
}

func (s *Store[T]) ids(ctx context.Context, params QueryParams) ([]int64, error) {
	version := s.tableVersion(ctx)
	key, err := queryCacheKey(s.info.tableName, version, params)
	if err != nil {
		log.Printf("WARN: query cache key for %s: %v", s.info.tableName, err)
	} else {
		cached, cacheErr := s.cache.GetQueryIDs(ctx, key)
		if cacheErr == nil {
			return cached, nil
		}
		if cacheErr != ErrNotFound {
			log.Printf("WARN: cache GetQueryIDs %s: %v", key, cacheErr)
		}
	}

	query, args := s.selectIDsSQL(params)
	var ids []int64
	if err := s.db.Select(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("store: query ids from %s: %w", s.info.tableName, err)
	}

	if key != "" {
		if err := s.cache.SetQueryIDs(ctx, key, ids, s.ttl); err != nil {
			log.Printf("WARN: cache SetQueryIDs %s: %v", key, err)
		}
	}
	return ids, nil
}

func (s *Store[T]) selectSQL() string {
	quoted := make([]string, len(s.info.columns))
	for i, col := range s.info.columns {
		quoted[i] = fmt.Sprintf("%q", col)
	}
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(quoted, ", "), s.info.tableName)
}

func (s *Store[T]) selectIDsSQL(params QueryParams) (string, []interface{}) {
	var b strings.Builder
	args := []interface{}{}

	fmt.Fprintf(&b, "SELECT %q FROM %s", s.info.pkName, s.info.tableName)
	if params.Where != "" {
		b.WriteString(" WHERE ")
		b.WriteString(params.Where)
		args = append(args, params.Args...)
	}
	if params.Order != "" {
		b.WriteString(" ORDER BY ")
		b.WriteString(params.Order)
	}
	if params.Limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, params.Limit)
	}
	if params.Start > 0 {
		b.WriteString(" OFFSET ?")
		args = append(args, params.Start)
	}
	return b.String(), args
}

// tableVersion reads the table's write counter; a missing counter is version 0.
func (s *Store[T]) tableVersion(ctx context.Context) int64 {
	raw, err := s.cache.Get(ctx, tableVersionKey(s.info.tableName))
	if err != nil {
		return 0
	}
	var version int64
	if _, scanErr := fmt.Sscanf(raw, "%d", &version); scanErr != nil {
		return 0
	}
	return version
}

func (s *Store[T]) bumpTableVersion(ctx context.Context) {
	if _, err := s.cache.Incr(ctx, tableVersionKey(s.info.tableName)); err != nil {
		log.Printf("WARN: bump table version for %s: %v", s.info.tableName, err)
	}
}

// withLock runs action while holding the named lock, retrying acquisition a
// few times before giving up.
func (s *Store[T]) withLock(ctx context.Context, key string, action func(ctx context.Context) error) error {
	var acquired bool
	var err error
	for i := 0; i < lockMaxRetries; i++ {
		acquired, err = s.cache.AcquireLock(ctx, key, lockTTL)
		if err != nil {
			return fmt.Errorf("store: acquire lock %s: %w", key, err)
		}
		if acquired {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(lockRetryDelay):
		}
	}
	if !acquired {
		return fmt.Errorf("store: lock %s: %w", key, ErrLockNotAcquired)
	}
	defer func() {
		if releaseErr := s.cache.ReleaseLock(ctx, key); releaseErr != nil {
			log.Printf("WARN: release lock %s: %v", key, releaseErr)
		}
	}()
	return action(ctx)
}
