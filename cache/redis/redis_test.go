package redis

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis"
	"github.com/stretchr/testify/assert"
)

func TestCache_Unreachable(t *testing.T) {
	ctx := context.Background()
	c := NewFromClient(redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  0,
	}), WithTTL(time.Minute))
	defer c.Close()

	_, ok, err := c.Get(ctx, "key")
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Error(t, c.Set(ctx, "key", []byte("value")))
	assert.Error(t, c.Delete(ctx, "key"))
	assert.NoError(t, c.Delete(ctx))
}

func TestNewFromConfig(t *testing.T) {
	tests := []struct {
		name        string
		cacheConfig map[string]interface{}
		wantTTL     time.Duration
		wantErr     bool
	}{
		{
			name:        "defaults",
			cacheConfig: map[string]interface{}{},
		},
		{
			name:        "full",
			cacheConfig: map[string]interface{}{"address": "cache:6380", "password": "secret", "database": 3, "ttl": "10m"},
			wantTTL:     10 * time.Minute,
		},
		{
			name:        "malformed address",
			cacheConfig: map[string]interface{}{"address": "cache"},
			wantErr:     true,
		},
		{
			name:        "malformed ttl",
			cacheConfig: map[string]interface{}{"ttl": "forever"},
			wantErr:     true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewFromConfig(tt.cacheConfig)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			if assert.NoError(t, err) {
				assert.Equal(t, tt.wantTTL, c.ttl)
				c.Close()
			}
		})
	}
}
