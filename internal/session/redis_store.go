package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// IdentityStore persists the signed-in identity across restarts.
type IdentityStore interface {
	Save(ctx context.Context, userID string) error
	Load(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}

// RedisIdentityStore keeps the identity under a single key with a TTL.
type RedisIdentityStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisIdentityStore constructs a Redis-backed identity store.
func NewRedisIdentityStore(client *redis.Client, prefix string, ttl time.Duration) *RedisIdentityStore {
	if prefix == "" {
		prefix = "skillpath"
	}
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &RedisIdentityStore{client: client, key: prefix + ":session", ttl: ttl}
}

func (s *RedisIdentityStore) Save(ctx context.Context, userID string) error {
	return s.client.Set(ctx, s.key, userID, s.ttl).Err()
}

func (s *RedisIdentityStore) Load(ctx context.Context) (string, error) {
	userID, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return userID, err
}

func (s *RedisIdentityStore) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}
