package repository

import (
	"context"
	"time"

	redisapp "photoflow/internal/storage/redis"

	"github.com/redis/go-redis/v9"
)

// RedisSessionRepo keeps admin session tokens server-side so logout actually
// revokes them.
type RedisSessionRepo struct {
	Client *redisapp.Client
}

func NewRedisSessionRepo(client *redisapp.Client) *RedisSessionRepo {
	return &RedisSessionRepo{Client: client}
}

func (r *RedisSessionRepo) SaveSession(ctx context.Context, token string, ttl time.Duration) error {
	return r.Client.Set(ctx, sessionKey(token), "1", ttl).Err()
}

func (r *RedisSessionRepo) SessionExists(ctx context.Context, token string) (bool, error) {
	val, err := r.Client.Get(ctx, sessionKey(token)).Result()
	if err == redis.Nil {
		return false, nil
	}
	return val == "1", err
}

func (r *RedisSessionRepo) DeleteSession(ctx context.Context, token string) error {
	return r.Client.Del(ctx, sessionKey(token)).Err()
}

func sessionKey(token string) string {
	return "session:" + token
}
