package cache

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"

	"github.com/oklog/ulid/v2"

	"github.com/storefront/dbquery/schema"
	"github.com/storefront/dbquery/storage"
)

// Group is the cache of a single collection: query results keyed by request descriptor and
// generation, and items keyed by primary key.
//
// Every write to the collection must call BumpGeneration, which makes all cached query results
// unreachable, and Invalidate for the items it touched. Backend failures are logged and reported
// as misses, so the cache can only make things faster, never fail them.
type Group struct {
	backend Backend
	name    string
	table   *schema.Table
}

func NewGroup(backend Backend, name string, table *schema.Table) *Group {
	if backend == nil {
		backend = Nop{}
	}
	return &Group{
		backend: backend,
		name:    name,
		table:   table,
	}
}

func (g *Group) Name() string {
	return g.name
}

func (g *Group) generationKey() string {
	return g.name + ":last_changed"
}

func (g *Group) resultKey(key, generation string) string {
	return fmt.Sprintf("%s:query:%s:%s", g.name, key, generation)
}

func (g *Group) itemKey(id interface{}) string {
	return fmt.Sprintf("%s:item:%v", g.name, id)
}

func (g *Group) columnKey(column string, value interface{}) string {
	return fmt.Sprintf("%s:%s:%v", g.name, column, value)
}

func newGeneration() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}

// Generation returns the collection's current generation, starting a new one if there's none.
// It returns false if the backend is unavailable.
func (g *Group) Generation(ctx context.Context) (string, bool) {
	data, ok, err := g.backend.Get(ctx, g.generationKey())
	if err != nil {
		log.Printf("cache: couldn't get generation of %s: %s", g.name, err)
		return "", false
	}
	if ok && len(data) > 0 {
		return string(data), true
	}

	generation := newGeneration()
	if err := g.backend.Set(ctx, g.generationKey(), []byte(generation)); err != nil {
		log.Printf("cache: couldn't set generation of %s: %s", g.name, err)
		return "", false
	}
	return generation, true
}

// BumpGeneration starts a new generation.
func (g *Group) BumpGeneration(ctx context.Context) {
	// The old marker is deleted first, so even a dropped set leaves no reachable stale results.
	if err := g.backend.Delete(ctx, g.generationKey()); err != nil {
		log.Printf("cache: couldn't delete generation of %s: %s", g.name, err)
	}
	if err := g.backend.Set(ctx, g.generationKey(), []byte(newGeneration())); err != nil {
		log.Printf("cache: couldn't set generation of %s: %s", g.name, err)
	}
}

// Get looks up a query result cached in the given generation.
func (g *Group) Get(ctx context.Context, key, generation string) (*ResultSet, bool) {
	if generation == "" {
		return nil, false
	}
	cacheKey := g.resultKey(key, generation)
	data, ok, err := g.backend.Get(ctx, cacheKey)
	if err != nil {
		log.Printf("cache: couldn't get %s: %s", cacheKey, err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	rs, err := decodeResultSet(g.table, data)
	if err != nil {
		log.Printf("cache: couldn't decode %s: %s", cacheKey, err)
		return nil, false
	}
	return rs, true
}

// Put stores a query result under the generation it was computed in.
func (g *Group) Put(ctx context.Context, key, generation string, rs *ResultSet) {
	if generation == "" {
		return
	}
	cacheKey := g.resultKey(key, generation)
	if err := g.backend.Set(ctx, cacheKey, encodeResultSet(rs)); err != nil {
		log.Printf("cache: couldn't set %s: %s", cacheKey, err)
	}
}

func (g *Group) GetItem(ctx context.Context, id interface{}) (storage.Row, bool) {
	cacheKey := g.itemKey(id)
	data, ok, err := g.backend.Get(ctx, cacheKey)
	if err != nil {
		log.Printf("cache: couldn't get %s: %s", cacheKey, err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	row, err := decodeRow(g.table, data)
	if err != nil {
		log.Printf("cache: couldn't decode %s: %s", cacheKey, err)
		return nil, false
	}
	return row, true
}

func (g *Group) PutItem(ctx context.Context, row storage.Row) {
	id := row.ID(g.table)
	if id == nil {
		return
	}
	cacheKey := g.itemKey(id)
	if err := g.backend.Set(ctx, cacheKey, encodeRow(g.table, row)); err != nil {
		log.Printf("cache: couldn't set %s: %s", cacheKey, err)
	}
}

// Invalidate drops the cached items.
func (g *Group) Invalidate(ctx context.Context, ids ...interface{}) {
	if len(ids) == 0 {
		return
	}
	keys := make([]string, len(ids))
	for i := range ids {
		keys[i] = g.itemKey(ids[i])
	}
	if err := g.backend.Delete(ctx, keys...); err != nil {
		log.Printf("cache: couldn't delete items of %s: %s", g.name, err)
	}
}

// GetKey looks up the primary key of the item with the given value of a cache key column.
// The mapping may be stale, callers must check the item they load.
func (g *Group) GetKey(ctx context.Context, column string, value interface{}) (interface{}, bool) {
	cacheKey := g.columnKey(column, value)
	data, ok, err := g.backend.Get(ctx, cacheKey)
	if err != nil {
		log.Printf("cache: couldn't get %s: %s", cacheKey, err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	id, err := g.table.ID(string(data))
	if err != nil {
		log.Printf("cache: couldn't decode %s: %s", cacheKey, err)
		return nil, false
	}
	return id, true
}

func (g *Group) PutKey(ctx context.Context, column string, value, id interface{}) {
	cacheKey := g.columnKey(column, value)
	if err := g.backend.Set(ctx, cacheKey, []byte(fmt.Sprint(id))); err != nil {
		log.Printf("cache: couldn't set %s: %s", cacheKey, err)
	}
}

func (g *Group) DeleteKey(ctx context.Context, column string, value interface{}) {
	cacheKey := g.columnKey(column, value)
	if err := g.backend.Delete(ctx, cacheKey); err != nil {
		log.Printf("cache: couldn't delete %s: %s", cacheKey, err)
	}
}
