// Package redis implements the persistence ports of the sync pipeline on
// top of a single Redis connection: transfer history, balance snapshots,
// and contract registrations.
package redis

import (
	"context"

	redis "github.com/redis/go-redis/v9"
)

type client struct {
	conn *redis.Client
}

func (c *client) Close() error {
	return c.conn.Close()
}

func NewClient(ctx context.Context, addr, username, password string, db int) (*client, error) {
	conn := redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: username,
		Password: password,
		DB:       db,
	})

	if err := conn.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &client{
		conn: conn,
	}, nil
}

// deleteByPattern removes every key matching the given pattern. Used by the
// Clear operations; the key space is small enough for KEYS to be fine here.
func (c *client) deleteByPattern(ctx context.Context, pattern string) error {
	keys, err := c.conn.Keys(ctx, pattern).Result()
	if err != nil {
		return err
	}

	if len(keys) == 0 {
		return nil
	}
	return c.conn.Del(ctx, keys...).Err()
}
