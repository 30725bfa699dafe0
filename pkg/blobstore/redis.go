package blobstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the snapshot blob under a single Redis key. SET replaces
// the value atomically, so readers never observe a partially written
// snapshot.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore creates a store backed by the given Redis client and key.
func NewRedisStore(client *redis.Client, key string) *RedisStore {
	return &RedisStore{client: client, key: key}
}

// Download fetches the snapshot blob. A missing key is not an error.
func (s *RedisStore) Download(ctx context.Context) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to download snapshot %q: %w", s.key, err)
	}
	return data, true, nil
}

// Upload replaces the snapshot blob.
func (s *RedisStore) Upload(ctx context.Context, data []byte) error {
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to upload snapshot %q: %w", s.key, err)
	}
	return nil
}
