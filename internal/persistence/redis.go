package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "ariproxy/pkg/errors"
	"ariproxy/pkg/health"
)

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore takes ownership of client; Close closes it.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Put(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, key, value, s.ttl).Err(); err != nil {
		return apperrors.Wrap(fmt.Errorf("redis SET failed: %w", err), apperrors.ErrPersistence)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, apperrors.Wrap(fmt.Errorf("redis GET failed: %w", err), apperrors.ErrPersistence)
	}
	return value, true, nil
}

func (s *RedisStore) CheckHealth(ctx context.Context) health.Report {
	return health.FromError("persistence.redis", s.client.Ping(ctx).Err())
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
