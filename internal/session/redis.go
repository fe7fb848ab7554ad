package session

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "console:session:"

// RedisStore keeps session tokens in Redis with native TTL expiry
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Get(sessionID string) (string, error) {
	token, err := s.client.Get(context.Background(), redisKeyPrefix+sessionID).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return token, nil
}

func (s *RedisStore) Put(sessionID, token string, ttl time.Duration) error {
	return s.client.Set(context.Background(), redisKeyPrefix+sessionID, token, ttl).Err()
}

func (s *RedisStore) Delete(sessionID string) error {
	return s.client.Del(context.Background(), redisKeyPrefix+sessionID).Err()
}

// DeleteExpired is a no-op: Redis expires keys itself
func (s *RedisStore) DeleteExpired() (int, error) { return 0, nil }

func (s *RedisStore) Close() error { return s.client.Close() }
