package cache

import (
	"context"

	"github.com/go-redis/redis/v8"
)

const grantedSetKey = "ppv:granted"

// RedisCache shares granted content ids between server instances as one
// Redis set. SADD is idempotent per member.
type RedisCache struct {
	rdb *redis.Client
	key string
}

func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb, key: grantedSetKey}
}

func (r *RedisCache) MarkGranted(ctx context.Context, contentID string) error {
	return r.rdb.SAdd(ctx, r.key, contentID).Err()
}

func (r *RedisCache) IsGranted(ctx context.Context, contentID string) (bool, error) {
	return r.rdb.SIsMember(ctx, r.key, contentID).Result()
}

func (r *RedisCache) ClearAll(ctx context.Context) error {
	return r.rdb.Del(ctx, r.key).Err()
}
