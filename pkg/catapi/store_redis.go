package catapi

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultRedisPrefix namespaces the keys written by RedisStore.
	DefaultRedisPrefix = "discogen:catalog:"

	// DefaultRedisRetention bounds how long an unused entry stays in Redis.
	DefaultRedisRetention = 7 * 24 * time.Hour

	scanBatch = 256
)

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	// URL is the Redis connection URL (e.g., "redis://localhost:6379/0")
	URL string

	// Prefix is prepended to every entry name (defaults to DefaultRedisPrefix)
	Prefix string

	// Retention is the key expiry set on every write (defaults to DefaultRedisRetention)
	Retention time.Duration
}

// RedisStore keeps each entry in a hash with "data" and "stored_at" fields.
// Several generator hosts can share one store.
type RedisStore struct {
	client    *redis.Client
	prefix    string
	retention time.Duration
}

// NewRedisStore connects to Redis and checks the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	retention := cfg.Retention
	if retention <= 0 {
		retention = DefaultRedisRetention
	}

	return &RedisStore{client: client, prefix: prefix, retention: retention}, nil
}

func (s *RedisStore) key(name string) string {
	return s.prefix + name
}

func (s *RedisStore) Get(ctx context.Context, name string) ([]byte, time.Time, error) {
	vals, err := s.client.HMGet(ctx, s.key(name), "data", "stored_at").Result()
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to get entry from redis: %w", err)
	}
	data, ok1 := vals[0].(string)
	stamp, ok2 := vals[1].(string)
	if !ok1 || !ok2 {
		return nil, time.Time{}, ErrNotFound
	}
	nanos, err := strconv.ParseInt(stamp, 10, 64)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("corrupt stored_at for %s: %w", name, err)
	}
	return []byte(data), time.Unix(0, nanos), nil
}

// Put writes both fields and the expiry in one MULTI/EXEC.
func (s *RedisStore) Put(ctx context.Context, name string, data []byte) error {
	key := s.key(name)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, "data", data, "stored_at", time.Now().UnixNano())
		pipe.Expire(ctx, key, s.retention)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set entry in redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, name string) error {
	if err := s.client.Del(ctx, s.key(name)).Err(); err != nil {
		return fmt.Errorf("failed to delete entry from redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Entries(ctx context.Context) (int64, error) {
	var n int64
	err := s.scan(ctx, func(string) error {
		n++
		return nil
	})
	return n, err
}

func (s *RedisStore) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	removed := 0
	err := s.scan(ctx, func(key string) error {
		stamp, err := s.client.HGet(ctx, key, "stored_at").Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if err == nil && !time.Unix(0, stamp).Before(cutoff) {
			return nil
		}
		if err := s.client.Del(ctx, key).Err(); err != nil {
			return err
		}
		removed++
		return nil
	})
	if err != nil {
		return removed, fmt.Errorf("failed to prune redis entries: %w", err)
	}
	return removed, nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	err := s.scan(ctx, func(key string) error {
		return s.client.Del(ctx, key).Err()
	})
	if err != nil {
		return fmt.Errorf("failed to clear redis entries: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

func (s *RedisStore) scan(ctx context.Context, fn func(key string) error) error {
	iter := s.client.Scan(ctx, 0, s.prefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		if err := fn(iter.Val()); err != nil {
			return err
		}
	}
	return iter.Err()
}
