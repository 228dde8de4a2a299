package throttle

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "consentflow:throttle:"

// RedisStore records throttle marks in Redis so the window holds across
// instances. SET NX with a TTL makes the claim atomic server-side.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore constructs a Redis-backed throttle store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) MarkIfAbsent(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	won, err := s.client.SetNX(ctx, redisKeyPrefix+key, time.Now().Unix(), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("throttle mark: %w", err)
	}
	return won, nil
}
