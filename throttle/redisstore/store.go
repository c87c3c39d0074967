// Package redisstore backs the attempt throttle with Redis, the
// production key-value binding. Records expire via Redis TTLs.
package redisstore

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/cloudclip/auth-service/throttle"
)

// Store implements throttle.Store over a Redis client.
type Store struct {
	client *redis.Client
}

var _ throttle.Store = (*Store)(nil)

// New creates a store over an already-configured client. The caller
// owns the client's lifecycle.
func New(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, throttle.ErrKeyNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "redis get %q", key)
	}
	return value, nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return errors.Wrapf(err, "redis set %q", key)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return errors.Wrapf(err, "redis del %q", key)
	}
	return nil
}
