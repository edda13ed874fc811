package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// GetDashboardSnapshot returns a cached dashboard payload, or
// redis.Nil when absent. Only the presentation snapshot is cached;
// customer risk is always replayed from history.
func (c *Client) GetDashboardSnapshot(ctx context.Context, userID int64, rangeKey string) ([]byte, error) {
	return c.rdb.Get(ctx, dashboardKey(userID, rangeKey)).Bytes()
}

// SetDashboardSnapshot caches a dashboard payload with a TTL
func (c *Client) SetDashboardSnapshot(ctx context.Context, userID int64, rangeKey string, payload []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, dashboardKey(userID, rangeKey), payload, ttl).Err()
}

// InvalidateDashboard drops every cached snapshot for a user. Called
// after order mutations so stale KPIs do not outlive the TTL.
func (c *Client) InvalidateDashboard(ctx context.Context, userID int64) error {
	iter := c.rdb.Scan(ctx, 0, fmt.Sprintf("dashboard:%d:*", userID), 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func dashboardKey(userID int64, rangeKey string) string {
	return fmt.Sprintf("dashboard:%d:%s", userID, rangeKey)
}

// SetIdempotencyKey stores an idempotency key with TTL
func (c *Client) SetIdempotencyKey(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.rdb.Set(ctx, fmt.Sprintf("idempotency:%s", key), value, ttl).Err()
}

// GetIdempotencyValue returns the value stored under an idempotency
// key, or redis.Nil when absent
func (c *Client) GetIdempotencyValue(ctx context.Context, key string) (string, error) {
	return c.rdb.Get(ctx, fmt.Sprintf("idempotency:%s", key)).Result()
}

// CheckIdempotencyKey checks if an idempotency key exists
func (c *Client) CheckIdempotencyKey(ctx context.Context, key string) (bool, error) {
	result, err := c.rdb.Exists(ctx, fmt.Sprintf("idempotency:%s", key)).Result()
	if err != nil {
		return false, err
	}
	return result > 0, nil
}

// AcquireLock acquires a distributed lock
func (c *Client) AcquireLock(ctx context.Context, lockKey string, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, fmt.Sprintf("lock:%s", lockKey), "1", ttl).Result()
}

// ReleaseLock releases a distributed lock
func (c *Client) ReleaseLock(ctx context.Context, lockKey string) error {
	return c.rdb.Del(ctx, fmt.Sprintf("lock:%s", lockKey)).Err()
}
