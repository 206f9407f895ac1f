package limiter

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestRedis_FailsOpenWhenUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "203.0.113.1:6379", // TEST-NET, never routable
		DialTimeout: 100 * time.Millisecond,
		ReadTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	l := NewRedis(client, 60, time.Minute, zap.NewNop())

	start := time.Now()
	allowed := l.Allow(context.Background(), "203.0.113.5")

	assert.True(t, allowed, "redis being down must not block traffic")
	assert.Less(t, time.Since(start), 2*time.Second)
}
