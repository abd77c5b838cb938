package redisx

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Dedup records processed event ids so redelivered messages are skipped.
type Dedup struct {
	Redis *redis.Client
	TTL   time.Duration // TTLDedup when zero
}

func (d *Dedup) MarkOnce(ctx context.Context, key string) (bool, error) {
	ttl := d.TTL
	if ttl == 0 {
		ttl = TTLDedup
	}
	return MarkOnce(ctx, d.Redis, key, ttl)
}

// Forget drops a mark so the event is processed again on redelivery.
func (d *Dedup) Forget(ctx context.Context, key string) error {
	return d.Redis.Del(ctx, key).Err()
}
