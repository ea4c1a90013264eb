package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis"
	"github.com/pkg/errors"

	"github.com/storefront/dbquery/config"
)

// Cache is a Backend shared between processes through a redis server.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

type Option func(*Cache)

// WithTTL expires entries after the given duration. Entries don't expire by default,
// leaving eviction to the server's maxmemory policy.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

func New(hostname, password string, port, dbIndex int, opts ...Option) *Cache {
	client := redis.NewClient(
		&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", hostname, port),
			Password: password,
			DB:       dbIndex,
		},
	)
	return NewFromClient(client, opts...)
}

func NewFromClient(client *redis.Client, opts ...Option) *Cache {
	c := &Cache{
		client: client,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.WithContext(ctx).Get(key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	} else if err != nil {
		return nil, false, errors.Wrapf(err, "couldn't get %s", key)
	}
	return data, true, nil
}

func (c *Cache) Set(ctx context.Context, key string, value []byte) error {
	if err := c.client.WithContext(ctx).Set(key, value, c.ttl).Err(); err != nil {
		return errors.Wrapf(err, "couldn't set %s", key)
	}
	return nil
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.WithContext(ctx).Del(keys...).Err(); err != nil {
		return errors.Wrap(err, "couldn't delete keys")
	}
	return nil
}

func (c *Cache) Close() error {
	return c.client.Close()
}

// NewFromConfig creates a cache using the configuration.
func NewFromConfig(cacheConfig map[string]interface{}) (*Cache, error) {
	host, port, err := config.GetIPAddress(cacheConfig, "address", config.WithDefault([]interface{}{"localhost", 6379}))
	if err != nil {
		return nil, errors.Wrap(err, "couldn't get address")
	}
	dbIndex, err := config.GetInt(cacheConfig, "database", config.WithDefault(0))
	if err != nil {
		return nil, errors.Wrap(err, "couldn't get database index")
	}
	password, err := config.GetString(cacheConfig, "password", config.WithDefault(""))
	if err != nil {
		return nil, errors.Wrap(err, "couldn't get password")
	}
	ttl, err := config.GetDuration(cacheConfig, "ttl", config.WithDefault(time.Duration(0)))
	if err != nil {
		return nil, errors.Wrap(err, "couldn't get ttl")
	}

	return New(host, password, port, dbIndex, WithTTL(ttl)), nil
}
