// Package cache stores JSON values in Redis.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a JSON value cache on one Redis database. Get reports a missing
// key as redis.Nil.
type Cache struct {
	client *redis.Client
	prefix string
}

type config struct {
	address     string
	dialTimeout time.Duration
	opTimeout   time.Duration
	prefix      string
}

type Option func(*config)

// WithAddress sets host:port or a redis:// / rediss:// URL carrying
// credentials and the database number.
func WithAddress(addr string) Option {
	return func(c *config) {
		c.address = addr
	}
}

func WithDialTimeout(d time.Duration) Option {
	return func(c *config) {
		c.dialTimeout = d
	}
}

// WithKeyPrefix namespaces every key.
func WithKeyPrefix(prefix string) Option {
	return func(c *config) {
		c.prefix = prefix
	}
}

// New connects to Redis and pings it. The client is closed when the ping
// fails.
func New(ctx context.Context, opts ...Option) (*Cache, error) {
	cfg := &config{
		address:     "localhost:6379",
		dialTimeout: 2 * time.Second,
		opTimeout:   time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	ro, err := clientOptions(cfg)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(ro)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis %s: %w", ro.Addr, err)
	}
	return &Cache{client: client, prefix: cfg.prefix}, nil
}

func clientOptions(cfg *config) (*redis.Options, error) {
	ro := &redis.Options{Addr: cfg.address}
	if strings.Contains(cfg.address, "://") {
		parsed, err := redis.ParseURL(cfg.address)
		if err != nil {
			return nil, fmt.Errorf("redis address: %w", err)
		}
		ro = parsed
	}
	ro.DialTimeout = cfg.dialTimeout
	ro.ReadTimeout = cfg.opTimeout
	ro.WriteTimeout = cfg.opTimeout
	ro.MaxRetries = 1
	return ro, nil
}

func (c *Cache) Get(ctx context.Context, key string, dest any) error {
	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		return err
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return c.client.Set(ctx, c.prefix+key, data, ttl).Err()
}

func (c *Cache) Close() error {
	return c.client.Close()
}
