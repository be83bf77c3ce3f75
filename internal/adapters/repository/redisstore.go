package repository

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each artifact under <prefix>:<name> so several server
// processes can share one trained bundle.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects and pings addr.
func NewRedisStore(ctx context.Context, addr string, opts ...Option) (*RedisStore, error) {
	o := newOptions(opts)
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		DB:       o.db,
		Password: o.password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return &RedisStore{client: client, prefix: o.prefix}, nil
}

// Key returns the redis key for an artifact.
func (s *RedisStore) Key(name string) string { return s.prefix + ":" + name }

func (s *RedisStore) Name() string     { return "redis" }
func (s *RedisStore) Location() string { return s.client.Options().Addr + "/" + s.prefix }

func (s *RedisStore) Read(ctx context.Context, names []string) (map[string][]byte, error) {
	if len(names) == 0 {
		return map[string][]byte{}, nil
	}
	keys := make([]string, len(names))
	for i, n := range names {
		keys[i] = s.Key(n)
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string][]byte, len(names))
	for i, n := range names {
		if v, ok := vals[i].(string); ok {
			out[n] = []byte(v)
		}
	}
	return out, nil
}

// Write sets every blob inside one MULTI/EXEC so readers see either the old
// bundle or the new one.
func (s *RedisStore) Write(ctx context.Context, blobs map[string][]byte) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for name, data := range blobs {
			pipe.Set(ctx, s.Key(name), data, 0)
		}
		return nil
	})
	return err
}

func (s *RedisStore) Close() error { return s.client.Close() }

var _ Store = (*RedisStore)(nil)
