package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/IrishAnn-code/HomeLibrary/internal/store"
)

// Redis implements store.CacheClient on a Redis server.
type Redis struct {
	client   *redis.Client
	mu       sync.Mutex
	counters map[string]int
}

var _ store.CacheClient = (*Redis)(nil)

// RedisOptions holds connection settings.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedis connects to Redis and verifies the connection with a ping.
func NewRedis(opts RedisOptions) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("cache: ping redis at %s: %w", opts.Addr, err)
	}

	return &Redis{client: client, counters: make(map[string]int)}, nil
}

// Close closes the underlying connection.
func (r *Redis) Close() error { return r.client.Close() }

func (r *Redis) count(name string) {
	r.mu.Lock()
	r.counters[name]++
	r.mu.Unlock()
}

// Get retrieves a raw string value.
func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	r.count("Get")
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		r.count("GetMiss")
		return "", store.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("cache: redis Get %q: %w", key, err)
	}
	r.count("GetHit")
	return val, nil
}

// Set stores a raw string value.
func (r *Redis) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	r.count("Set")
	if err := r.client.Set(ctx, key, value, expiration).Err(); err != nil {
		return fmt.Errorf("cache: redis Set %q: %w", key, err)
	}
	return nil
}

// Delete removes a key.
func (r *Redis) Delete(ctx context.Context, key string) error {
	r.count("Delete")
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("cache: redis Del %q: %w", key, err)
	}
	return nil
}

// GetModel retrieves a cached record into dest.
func (r *Redis) GetModel(ctx context.Context, key string, dest interface{}) error {
	r.count("GetModel")
	raw, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		r.count("GetModelMiss")
		return store.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("cache: redis GetModel %q: %w", key, err)
	}
	r.count("GetModelHit")
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return fmt.Errorf("cache: unmarshal model for key %q: %w", key, err)
	}
	return nil
}

// SetModel stores a record as JSON.
func (r *Redis) SetModel(ctx context.Context, key string, model interface{}, expiration time.Duration) error {
	r.count("SetModel")
	raw, err := json.Marshal(model)
	if err != nil {
		return fmt.Errorf("cache: marshal model for key %q: %w", key, err)
	}
	if err := r.client.Set(ctx, key, raw, expiration).Err(); err != nil {
		return fmt.Errorf("cache: redis SetModel %q: %w", key, err)
	}
	return nil
}

// DeleteModel removes a cached record.
func (r *Redis) DeleteModel(ctx context.Context, key string) error {
	r.count("DeleteModel")
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("cache: redis DeleteModel %q: %w", key, err)
	}
	return nil
}

// GetQueryIDs retrieves a cached ID list.
func (r *Redis) GetQueryIDs(ctx context.Context, queryKey string) ([]int64, error) {
	r.count("GetQueryIDs")
	raw, err := r.client.Get(ctx, queryKey).Result()
	if errors.Is(err, redis.Nil) {
		r.count("GetQueryIDsMiss")
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("cache: redis GetQueryIDs %q: %w", queryKey, err)
	}
	r.count("GetQueryIDsHit")
	var ids []int64
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("cache: unmarshal query ids for key %q: %w", queryKey, err)
	}
	return ids, nil
}

// SetQueryIDs stores an ID list as JSON.
func (r *Redis) SetQueryIDs(ctx context.Context, queryKey string, ids []int64, expiration time.Duration) error {
	r.count("SetQueryIDs")
	raw, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("cache: marshal query ids for key %q: %w", queryKey, err)
	}
	if err := r.client.Set(ctx, queryKey, raw, expiration).Err(); err != nil {
		return fmt.Errorf("cache: redis SetQueryIDs %q: %w", queryKey, err)
	}
	return nil
}

// AcquireLock takes the named lock with SET NX. Non-blocking.
func (r *Redis) AcquireLock(ctx context.Context, lockKey string, expiration time.Duration) (bool, error) {
	r.count("AcquireLock")
	ok, err := r.client.SetNX(ctx, lockKey, "1", expiration).Result()
	if err != nil {
		return false, fmt.Errorf("cache: redis AcquireLock %q: %w", lockKey, err)
	}
	return ok, nil
}

// ReleaseLock frees the named lock.
func (r *Redis) ReleaseLock(ctx context.Context, lockKey string) error {
	r.count("ReleaseLock")
	if err := r.client.Del(ctx, lockKey).Err(); err != nil {
		return fmt.Errorf("cache: redis ReleaseLock %q: %w", lockKey, err)
	}
	return nil
}

// Incr increments the integer stored at key, creating it at 1.
func (r *Redis) Incr(ctx context.Context, key string) (int64, error) {
	r.count("Incr")
	n, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("cache: redis Incr %q: %w", key, err)
	}
	return n, nil
}

// Stats returns a copy of the operation counters.
func (r *Redis) Stats() store.CacheStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	counters := make(map[string]int, len(r.counters))
	for name, n := range r.counters {
		counters[name] = n
	}
	return store.CacheStats{Counters: counters}
}
