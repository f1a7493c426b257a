package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// QueryParams describes a list query.
type QueryParams struct {
	Where string        // raw WHERE clause, e.g. "library_id = ? AND title LIKE ?"
	Args  []interface{} // arguments for the WHERE placeholders
	Order string        // raw ORDER BY clause, e.g. "created_at DESC"
	Start int           // offset
	Limit int           // limit, 0 means no limit
}

// modelCacheKey builds the cache key for a single record.
func modelCacheKey(tableName string, id int64) string {
	return fmt.Sprintf("model:%s:%d", tableName, id)
}

// lockKey builds the per-record lock key used around writes.
func lockKey(tableName string, id int64) string {
	return fmt.Sprintf("lock:%s:%d", tableName, id)
}

// tableVersionKey names the counter bumped on every write to a table.
// Query cache keys embed the current counter value, so a bump orphans all
// cached ID lists for the table at once.
func tableVersionKey(tableName string) string {
	return fmt.Sprintf("ver:%s", tableName)
}

// queryCacheKey builds a deterministic key for a list query from the table
// name, its current version and a hash of the params.
func queryCacheKey(tableName string, version int64, params QueryParams) (string, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("store: marshal query params: %w", err)
	}
	sum := sha256.Sum256(raw)
	return fmt.Sprintf("query:%s:%d:%s", tableName, version, hex.EncodeToString(sum[:])), nil
}
