package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "biolink:storage:%s"

// implements Storage using Redis, for clients that share one profile store
type RedisStorage struct {
	client *redis.Client
}

// creates a Redis-backed storage
func NewRedisStorage(client *redis.Client) *RedisStorage {
	return &RedisStorage{client: client}
}

// creates a Redis-backed storage from a URL
func NewRedisStorageFromURL(ctx context.Context, redisURL string) (*RedisStorage, error) {
	if redisURL == "" {
		return nil, fmt.Errorf("redis storage requires REDIS_URL")
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close() //nolint:errcheck,gosec // ping error takes precedence
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStorage{client: client}, nil
}

func (s *RedisStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, fmt.Sprintf(keyPrefix, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}

	if err != nil {
		return "", false, err
	}

	return value, true, nil
}

func (s *RedisStorage) SetItem(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, fmt.Sprintf(keyPrefix, key), value, 0).Err()
}

func (s *RedisStorage) RemoveItem(ctx context.Context, key string) error {
	return s.client.Del(ctx, fmt.Sprintf(keyPrefix, key)).Err()
}

// closes the redis connection
func (s *RedisStorage) Close() error {
	return s.client.Close()
}
