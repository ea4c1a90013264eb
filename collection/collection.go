package collection

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/storefront/dbquery/cache"
	"github.com/storefront/dbquery/query"
	"github.com/storefront/dbquery/schema"
	"github.com/storefront/dbquery/storage"
)

// Definition is what a collection module supplies about its table.
type Definition[T any] struct {
	// Name scopes the collection's cache entries, no two collections may share it.
	Name  string
	Table *schema.Table

	// PerPage is the default limit, 0 means unlimited.
	PerPage int
	// OrderBy defaults to the primary column.
	OrderBy string
	Order   query.Direction

	// Scan hydrates a normalized row into a record.
	Scan func(row storage.Row) (T, error)
}

// RowDefinition is a definition for collections which work on plain rows.
func RowDefinition(name string, table *schema.Table, perPage int, orderBy string, order query.Direction) Definition[storage.Row] {
	return Definition[storage.Row]{
		Name:    name,
		Table:   table,
		PerPage: perPage,
		OrderBy: orderBy,
		Order:   order,
		Scan: func(row storage.Row) (storage.Row, error) {
			return row, nil
		},
	}
}

type options struct {
	cache cache.Backend
	clock func() time.Time
}

type Option func(*options)

// WithCache enables the result and item cache. Without it every call goes to storage.
func WithCache(backend cache.Backend) Option {
	return func(o *options) {
		o.cache = backend
	}
}

// WithClock sets the time source used for relative date queries and write timestamps.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// Collection queries and writes one table. It's safe for concurrent use once set up.
type Collection[T any] struct {
	def     Definition[T]
	storage storage.Storage
	cache   *cache.Group
	clock   func() time.Time

	itemsFilters []func(items []T) []T
}

func New[T any](def Definition[T], storage storage.Storage, opts ...Option) *Collection[T] {
	o := options{
		cache: cache.Nop{},
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if def.OrderBy == "" {
		def.OrderBy = def.Table.Primary().Name
	}
	if def.Name == "" {
		def.Name = def.Table.Name
	}

	return &Collection[T]{
		def:     def,
		storage: storage,
		cache:   cache.NewGroup(o.cache, def.Name, def.Table),
		clock:   o.clock,
	}
}

// AddItemsFilter registers a transform applied to hydrated items before they're returned.
// Filters must be added before the collection is used.
func (c *Collection[T]) AddItemsFilter(filter func(items []T) []T) {
	c.itemsFilters = append(c.itemsFilters, filter)
}

func (c *Collection[T]) Name() string {
	return c.def.Name
}

func (c *Collection[T]) Table() *schema.Table {
	return c.def.Table
}

func (c *Collection[T]) Defaults() query.Defaults {
	return query.Defaults{
		Limit:   c.def.PerPage,
		OrderBy: c.def.OrderBy,
		Order:   c.def.Order,
	}
}

// Install creates the collection's table if it doesn't exist.
func (c *Collection[T]) Install(ctx context.Context) error {
	if err := c.storage.CreateTable(ctx, c.def.Table); err != nil {
		return errors.Wrapf(err, "couldn't install collection %s", c.def.Name)
	}
	return nil
}

func (c *Collection[T]) now() time.Time {
	return c.clock().UTC().Truncate(time.Second)
}
