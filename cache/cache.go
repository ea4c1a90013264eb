package cache

import (
	"context"
)

// Backend is a byte-oriented key value cache shared by collection groups.
// Implementations may drop entries at any time; a miss is never an error.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
}

// Nop is a Backend which never stores anything.
type Nop struct{}

func (Nop) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

func (Nop) Set(ctx context.Context, key string, value []byte) error {
	return nil
}

func (Nop) Delete(ctx context.Context, keys ...string) error {
	return nil
}
