package redisx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-checkout-orders/internal/orders"
	"github.com/redis/go-redis/v9"
)

// StatusCache keeps the latest orders.StatusView per order in redis.
type StatusCache struct {
	Redis *redis.Client
}

func (c *StatusCache) Put(ctx context.Context, v orders.StatusView) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Redis.Set(ctx, fmt.Sprintf(KeyOrderStatus, v.OrderID), b, TTLStatusCache).Err()
}

// Get returns ok=false on a cache miss.
func (c *StatusCache) Get(ctx context.Context, orderID string) (orders.StatusView, bool, error) {
	s, err := c.Redis.Get(ctx, fmt.Sprintf(KeyOrderStatus, orderID)).Result()
	if errors.Is(err, redis.Nil) {
		return orders.StatusView{}, false, nil
	}
	if err != nil {
		return orders.StatusView{}, false, err
	}
	var v orders.StatusView
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return orders.StatusView{}, false, err
	}
	return v, true, nil
}
