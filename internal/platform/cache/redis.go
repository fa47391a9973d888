// Package cache connects the Redis instance that backs browser sessions.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// PingTimeout bounds the reachability check.
const PingTimeout = 5 * time.Second

// New creates a Redis client for addr. A failed ping is returned together
// with the client so the caller can decide whether to start degraded.
func New(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return client, Ping(ctx, client)
}

// Ping checks that Redis answers within PingTimeout.
func Ping(ctx context.Context, client *redis.Client) error {
	ctx, cancel := context.WithTimeout(ctx, PingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("platform/cache: ping %s: %w", client.Options().Addr, err)
	}
	return nil
}
