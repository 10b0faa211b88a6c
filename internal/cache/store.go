package cache

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// Store is the persistent tier behind the cache. Implementations hold raw
// serialized entries; namespacing is the cache's job, not the store's.
type Store interface {
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
	MultiGet(ctx context.Context, keys []string) (map[string]string, error)
	MultiSet(ctx context.Context, items map[string]string) error
	MultiRemove(ctx context.Context, keys []string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// RedisStore keeps cache entries in Redis. Entry expiry is managed by the
// cache envelope, not Redis TTLs, so stale entries stay available for the
// serve-stale-on-error path.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) GetItem(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (s *RedisStore) SetItem(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, key, value, 0).Err()
}

func (s *RedisStore) RemoveItem(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

func (s *RedisStore) MultiGet(ctx context.Context, keys []string) (map[string]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(keys))
	for i, v := range vals {
		if v == nil {
			continue
		}
		if str, ok := v.(string); ok {
			out[keys[i]] = str
		}
	}
	return out, nil
}

func (s *RedisStore) MultiSet(ctx context.Context, items map[string]string) error {
	if len(items) == 0 {
		return nil
	}
	pairs := make([]any, 0, len(items)*2)
	for k, v := range items {
		pairs = append(pairs, k, v)
	}
	return s.client.MSet(ctx, pairs...).Err()
}

func (s *RedisStore) MultiRemove(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

func (s *RedisStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	var out []string
	iter := s.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		out = append(out, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
