package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "travel:profile:"

// RedisProfileStore keeps profile records as plain Redis strings.
type RedisProfileStore struct {
	client *redis.Client
	prefix string
}

func NewRedisProfileStore(client *redis.Client, prefix string) *RedisProfileStore {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisProfileStore{client: client, prefix: prefix}
}

// NewRedisClient parses a redis:// URL and verifies the connection.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func (s *RedisProfileStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if strings.TrimSpace(key) == "" {
		return nil, false, errors.New("get profile: key must not be empty")
	}

	b, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get profile key=%q: %w", key, err)
	}
	return b, true, nil
}

func (s *RedisProfileStore) Put(ctx context.Context, key string, value []byte) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("put profile: key must not be empty")
	}

	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("put profile key=%q: %w", key, err)
	}
	return nil
}

func (s *RedisProfileStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("delete profile key=%q: %w", key, err)
	}
	return nil
}
