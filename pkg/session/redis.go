package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStorage adapts a go-redis client to the fiber.Storage contract so
// candidate sessions survive process restarts. Keys inherit the session
// middleware's expiration.
type RedisStorage struct {
	client *redis.Client
	prefix string
}

func NewRedisStorage(addr, password string, db int) *RedisStorage {
	return &RedisStorage{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		prefix: "chatbot:session:",
	}
}

// Ping verifies connectivity at startup.
func (s *RedisStorage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStorage) Get(key string) ([]byte, error) {
	b, err := s.client.Get(context.Background(), s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return b, err
}

func (s *RedisStorage) Set(key string, val []byte, exp time.Duration) error {
	return s.client.Set(context.Background(), s.prefix+key, val, exp).Err()
}

func (s *RedisStorage) Delete(key string) error {
	return s.client.Del(context.Background(), s.prefix+key).Err()
}

func (s *RedisStorage) Reset() error {
	iter := s.client.Scan(context.Background(), 0, s.prefix+"*", 0).Iterator()
	for iter.Next(context.Background()) {
		if err := s.client.Del(context.Background(), iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (s *RedisStorage) Close() error {
	return s.client.Close()
}
