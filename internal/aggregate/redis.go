package aggregate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// RedisCounter implements Counter on Redis: INCRBY for the atomic add,
// pub/sub on a per-key channel for change notification.
type RedisCounter struct {
	rdb    *redis.Client
	logger *slog.Logger
}

func NewRedisCounter(rdb *redis.Client, logger *slog.Logger) *RedisCounter {
	return &RedisCounter{rdb: rdb, logger: logger}
}

func channelFor(key string) string { return "counter:" + key }

func (c *RedisCounter) Increment(ctx context.Context, key string, amount int64) error {
	val, err := c.rdb.IncrBy(ctx, key, amount).Result()
	if err != nil {
		return fmt.Errorf("incrementing %s: %w", key, err)
	}
	// Notify subscribers with the new total. Publish failure doesn't
	// undo the increment; subscribers catch up on the next change.
	if err := c.rdb.Publish(ctx, channelFor(key), strconv.FormatInt(val, 10)).Err(); err != nil {
		c.logger.Warn("counter publish failed", "key", key, "error", err)
	}
	return nil
}

func (c *RedisCounter) Value(ctx context.Context, key string) (int64, error) {
	val, err := c.rdb.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", key, err)
	}
	return val, nil
}

func (c *RedisCounter) Subscribe(ctx context.Context, key string, onChange func(int64)) (func(), error) {
	ps := c.rdb.Subscribe(ctx, channelFor(key))
	// Force the subscription to be established before returning.
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, fmt.Errorf("subscribing to %s: %w", key, err)
	}

	go func() {
		for msg := range ps.Channel() {
			val, err := strconv.ParseInt(msg.Payload, 10, 64)
			if err != nil {
				c.logger.Warn("bad counter payload", "key", key, "payload", msg.Payload)
				continue
			}
			onChange(val)
		}
	}()

	return func() { ps.Close() }, nil
}
