package ristretto

import (
	"context"

	"github.com/dgraph-io/ristretto"
	"github.com/pkg/errors"

	"github.com/storefront/dbquery/config"
)

type Config struct {
	// NumCounters is the number of keys to track frequency of, about ten times the expected number of items.
	NumCounters int64
	// MaxCost is the maximum total size of the cached values, in bytes.
	MaxCost int64
}

var DefaultConfig = Config{
	NumCounters: 1e5,
	MaxCost:     1 << 26,
}

// Cache is a bounded in-process Backend with admission and eviction by cost.
// Sets are applied asynchronously and may be dropped under contention.
type Cache struct {
	cache *ristretto.Cache
}

func New(config Config) (*Cache, error) {
	if config.NumCounters <= 0 {
		config.NumCounters = DefaultConfig.NumCounters
	}
	if config.MaxCost <= 0 {
		config.MaxCost = DefaultConfig.MaxCost
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: config.NumCounters,
		MaxCost:     config.MaxCost,
		BufferItems: 64, // number of keys per Get buffer.
	})
	if err != nil {
		return nil, errors.Wrap(err, "couldn't initialize ristretto cache")
	}
	return &Cache{cache: cache}, nil
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, ok := c.cache.Get(key)
	if !ok {
		return nil, false, nil
	}
	data, ok := value.([]byte)
	if !ok {
		return nil, false, errors.Errorf("invalid cached value of type %T", value)
	}
	return data, true, nil
}

func (c *Cache) Set(ctx context.Context, key string, value []byte) error {
	c.cache.Set(key, append([]byte(nil), value...), int64(len(value)))
	return nil
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		c.cache.Del(key)
	}
	return nil
}

func (c *Cache) Close() {
	c.cache.Close()
}

// NewFromConfig creates a cache using the configuration. Missing sizes use DefaultConfig.
func NewFromConfig(cacheConfig map[string]interface{}) (*Cache, error) {
	numCounters, err := config.GetInt(cacheConfig, "numCounters", config.WithDefault(int(DefaultConfig.NumCounters)))
	if err != nil {
		return nil, errors.Wrap(err, "couldn't get number of counters")
	}
	maxCost, err := config.GetInt(cacheConfig, "maxCost", config.WithDefault(int(DefaultConfig.MaxCost)))
	if err != nil {
		return nil, errors.Wrap(err, "couldn't get max cost")
	}

	return New(Config{
		NumCounters: int64(numCounters),
		MaxCost:     int64(maxCost),
	})
}
