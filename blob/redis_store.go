package blob

import (
	"context"
	"strings"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
)

// updateRetries bounds the optimistic transaction loop in Update. Shard
// fan-out keeps contention low, so conflicts beyond a handful of attempts
// indicate something badly wrong rather than ordinary load.
const updateRetries = 8

// RedisStore implements Store on a Redis client. All keys live under a
// namespace prefix so several stores can share one database.
type RedisStore struct {
	client    *redis.Client
	namespace string
}

// NewRedisStore creates a namespaced blob store backed by the given client.
func NewRedisStore(client *redis.Client, namespace string) *RedisStore {
	return &RedisStore{
		client:    client,
		namespace: namespace,
	}
}

func (s *RedisStore) namespaced(key string) string {
	return s.namespace + ":" + key
}

// Get retrieves the raw value at key, or ErrNotFound.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, s.namespaced(key)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}
	return value, nil
}

// Put stores value at key, overwriting any previous value.
func (s *RedisStore) Put(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, s.namespaced(key), value, 0).Err()
}

// List returns all keys under the given prefix, with the namespace
// stripped. Uses SCAN so large namespaces do not block the server.
func (s *RedisStore) List(ctx context.Context, prefix string) ([]string, error) {
	pattern := s.namespaced(prefix) + "*"
	var keys []string

	iter := s.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), s.namespace+":"))
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

// Delete removes the value at key. Deleting a missing key is a no-op.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.namespaced(key)).Err()
}

// Update performs an optimistic read-modify-write on key using WATCH.
// Concurrent writers to the same key cause a transaction conflict and a
// retry, so no increment is ever lost to a racing write.
func (s *RedisStore) Update(ctx context.Context, key string, fn UpdateFunc) error {
	nsKey := s.namespaced(key)

	txn := func(tx *redis.Tx) error {
		old, err := tx.Get(ctx, nsKey).Bytes()
		if err == redis.Nil {
			old = nil
		} else if err != nil {
			return err
		}

		next, err := fn(old)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, nsKey, next, 0)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < updateRetries; attempt++ {
		err := s.client.Watch(ctx, txn, nsKey)
		if err == nil {
			return nil
		}
		if err == redis.TxFailedErr {
			log.Debug().
				Str("key", key).
				Int("attempt", attempt+1).
				Msg("Blob update conflict, retrying")
			continue
		}
		return err
	}

	return ErrConflict
}
