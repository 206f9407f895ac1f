package limiter

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Redis counts pings in a fixed window shared across instances. Redis
// being down allows the request through rather than blocking traffic.
type Redis struct {
	client *redis.Client
	limit  int
	window time.Duration
	log    *zap.Logger
}

func NewRedis(client *redis.Client, limit int, window time.Duration, log *zap.Logger) *Redis {
	return &Redis{client: client, limit: limit, window: window, log: log}
}

func (r *Redis) Allow(ctx context.Context, key string) bool {
	bucket := "ratelimit:" + key

	count, err := r.client.Incr(ctx, bucket).Result()
	if err != nil {
		r.log.Warn("rate limit check failed, allowing request", zap.Error(err))
		return true
	}
	if count == 1 {
		r.client.Expire(ctx, bucket, r.window)
	}

	return count <= int64(r.limit)
}
