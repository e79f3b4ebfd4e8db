package checkers

import (
	"context"
	"time"
)

// Pinger is satisfied by the Redis-backed session storage.
type Pinger interface {
	Ping(ctx context.Context) error
}

type RedisChecker struct {
	store Pinger
}

func NewRedisChecker(store Pinger) *RedisChecker {
	return &RedisChecker{store: store}
}

func (c *RedisChecker) Name() string { return "redis" }

func (c *RedisChecker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	return c.store.Ping(ctx)
}
