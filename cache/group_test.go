package cache

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/dbquery/cache/memory"
	"github.com/storefront/dbquery/schema"
	"github.com/storefront/dbquery/storage"
)

var customers = schema.MustNewTable("edd_customers", "c",
	&schema.Column{Name: "id", Type: schema.Integer, Primary: true},
	&schema.Column{Name: "email", CacheKey: true},
	&schema.Column{Name: "purchase_value", Type: schema.Float},
	&schema.Column{Name: "date_created", Type: schema.Datetime},
)

// failingBackend fails every operation, like an unreachable cache server.
type failingBackend struct{}

var errUnavailable = errors.New("cache unavailable")

func (failingBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, errUnavailable
}

func (failingBackend) Set(ctx context.Context, key string, value []byte) error {
	return errUnavailable
}

func (failingBackend) Delete(ctx context.Context, keys ...string) error {
	return errUnavailable
}

func TestGroup_Results(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	g := NewGroup(backend, "customers", customers)

	generation, ok := g.Generation(ctx)
	require.True(t, ok)
	again, ok := g.Generation(ctx)
	require.True(t, ok)
	assert.Equal(t, generation, again)

	_, ok = g.Get(ctx, "key", generation)
	assert.False(t, ok)

	rs := &ResultSet{IDs: []interface{}{int64(5), int64(2), int64(9)}, Found: 101, Pages: 6}
	g.Put(ctx, "key", generation, rs)
	got, ok := g.Get(ctx, "key", generation)
	require.True(t, ok)
	assert.Equal(t, rs, got)

	g.Put(ctx, "count", generation, &ResultSet{Found: 3})
	got, ok = g.Get(ctx, "count", generation)
	require.True(t, ok)
	assert.Equal(t, 3, got.Found)
	assert.Empty(t, got.IDs)

	g.BumpGeneration(ctx)
	bumped, ok := g.Generation(ctx)
	require.True(t, ok)
	assert.NotEqual(t, generation, bumped)
	_, ok = g.Get(ctx, "key", bumped)
	assert.False(t, ok)
}

func TestGroup_Items(t *testing.T) {
	ctx := context.Background()
	g := NewGroup(memory.New(), "customers", customers)
	created := time.Date(2020, 5, 6, 7, 8, 9, 0, time.UTC)

	_, ok := g.GetItem(ctx, int64(1))
	assert.False(t, ok)

	row := storage.Row{"id": int64(1), "email": "a@example.com", "purchase_value": 20.0, "date_created": created}
	g.PutItem(ctx, row)
	got, ok := g.GetItem(ctx, int64(1))
	require.True(t, ok)
	// Types survive the round trip, even for integral floats.
	assert.Equal(t, row, got)

	g.PutItem(ctx, storage.Row{"id": int64(2), "email": nil})
	got, ok = g.GetItem(ctx, int64(2))
	require.True(t, ok)
	assert.Equal(t, storage.Row{"id": int64(2), "email": nil}, got)

	g.Invalidate(ctx, int64(1), int64(2))
	_, ok = g.GetItem(ctx, int64(1))
	assert.False(t, ok)
	_, ok = g.GetItem(ctx, int64(2))
	assert.False(t, ok)

	g.PutKey(ctx, "email", "a@example.com", int64(1))
	id, ok := g.GetKey(ctx, "email", "a@example.com")
	require.True(t, ok)
	assert.Equal(t, int64(1), id)
	g.DeleteKey(ctx, "email", "a@example.com")
	_, ok = g.GetKey(ctx, "email", "a@example.com")
	assert.False(t, ok)
}

func TestGroup_Isolation(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	customersGroup := NewGroup(backend, "customers", customers)
	ordersGroup := NewGroup(backend, "orders", customers)

	customersGroup.PutItem(ctx, storage.Row{"id": int64(1)})
	_, ok := ordersGroup.GetItem(ctx, int64(1))
	assert.False(t, ok)

	generation, _ := ordersGroup.Generation(ctx)
	customersGroup.BumpGeneration(ctx)
	same, _ := ordersGroup.Generation(ctx)
	assert.Equal(t, generation, same)
}

func TestGroup_FailuresAreMisses(t *testing.T) {
	ctx := context.Background()
	g := NewGroup(failingBackend{}, "customers", customers)

	_, ok := g.Generation(ctx)
	assert.False(t, ok)
	g.Put(ctx, "key", "", &ResultSet{})
	_, ok = g.Get(ctx, "key", "")
	assert.False(t, ok)
	_, ok = g.Get(ctx, "key", "generation")
	assert.False(t, ok)

	g.PutItem(ctx, storage.Row{"id": int64(1)})
	_, ok = g.GetItem(ctx, int64(1))
	assert.False(t, ok)
	g.Invalidate(ctx, int64(1))
	g.BumpGeneration(ctx)
	_, ok = g.GetKey(ctx, "email", "a@example.com")
	assert.False(t, ok)
}

func TestGroup_CorruptEntriesAreMisses(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	g := NewGroup(backend, "customers", customers)

	require.NoError(t, backend.Set(ctx, "customers:query:key:gen", []byte("{not json")))
	_, ok := g.Get(ctx, "key", "gen")
	assert.False(t, ok)

	require.NoError(t, backend.Set(ctx, "customers:item:1", []byte(`{"id": "one"}`)))
	_, ok = g.GetItem(ctx, int64(1))
	assert.False(t, ok)
}
