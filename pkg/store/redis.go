package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tagrel/tagrel/pkg/observability"
)

// RedisStore stores snapshots in Redis, for deployments where several
// processes share one graph.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// RedisConfig configures a RedisStore.
type RedisConfig struct {
	// Addr is the Redis server address (host:port).
	Addr string

	// Password is the optional server password.
	Password string

	// DB is the Redis database number.
	DB int

	// Prefix is prepended to every key, namespacing snapshots from other
	// users of the same server. Defaults to "tagrel:".
	Prefix string
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "tagrel:"
	}
	return &RedisStore{client: client, prefix: prefix}, nil
}

// Save writes a snapshot under the given key.
func (s *RedisStore) Save(ctx context.Context, key string, data []byte) error {
	start := time.Now()
	if err := s.client.Set(ctx, s.prefix+key, data, 0).Err(); err != nil {
		observability.Store().OnError("redis", "save", err)
		return err
	}
	observability.Store().OnSave("redis", key, len(data), time.Since(start))
	return nil
}

// Load retrieves a snapshot by key.
func (s *RedisStore) Load(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		observability.Store().OnError("redis", "load", err)
		return nil, err
	}
	observability.Store().OnLoad("redis", key, len(data), time.Since(start))
	return data, nil
}

// Delete removes a snapshot. Deleting a missing key is not an error.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		observability.Store().OnError("redis", "delete", err)
		return err
	}
	return nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ensure RedisStore implements Store.
var _ Store = (*RedisStore)(nil)
