package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
)

// DefaultCacheTTL bounds how long a cached reference list may be served.
const DefaultCacheTTL = 5 * time.Minute

// Client wraps Redis operations for the reference-list cache. Every call goes
// through a circuit breaker so a dead Redis degrades to direct DB reads.
type Client struct {
	rdb *redis.Client
	cb  *gobreaker.CircuitBreaker
	ttl time.Duration
}

// Config holds Redis connection configuration.
type Config struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// NewClient creates a new Redis client.
func NewClient(cfg Config) (*Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	c := newClient(redis.NewClient(opts), cfg.CacheTTL)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Ping(ctx); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return c, nil
}

func newClient(rdb *redis.Client, ttl time.Duration) *Client {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Client{rdb: rdb, cb: newBreaker("redis-cache"), ttl: ttl}
}

// newBreaker trips after 3 consecutive failures and probes again after 30s.
func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		// A cache miss is not a failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, redis.Nil)
		},
	})
}

// Ping checks connectivity.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.cb.Execute(func() (any, error) {
		return nil, c.rdb.Ping(ctx).Err()
	})
	return err
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// BreakerState reports the circuit breaker state ("closed", "half-open", "open").
func (c *Client) BreakerState() string {
	return c.cb.State().String()
}

// GetJSON decodes the value at key into dst. found is false on a miss.
func (c *Client) GetJSON(ctx context.Context, key string, dst any) (found bool, err error) {
	res, err := c.cb.Execute(func() (any, error) {
		return c.rdb.Get(ctx, key).Bytes()
	})
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal(res.([]byte), dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// SetJSON stores v at key with the configured TTL.
func (c *Client) SetJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	_, err = c.cb.Execute(func() (any, error) {
		return nil, c.rdb.Set(ctx, key, data, c.ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Delete removes keys.
func (c *Client) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := c.cb.Execute(func() (any, error) {
		return nil, c.rdb.Del(ctx, keys...).Err()
	})
	if err != nil {
		return fmt.Errorf("del: %w", err)
	}
	return nil
}
