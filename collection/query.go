package collection

import (
	"context"
	"log"

	"github.com/pkg/errors"

	"github.com/storefront/dbquery/cache"
	"github.com/storefront/dbquery/query"
	"github.com/storefront/dbquery/storage"
)

type Result[T any] struct {
	// IDs are the primary keys of the matched page, in order. Nil for count requests.
	IDs []interface{}
	// Items are the hydrated records of IDs, unless ids only were requested.
	// Rows which disappeared between the id query and hydration are skipped.
	Items []T

	// Found is the number of rows matching the filters, ignoring limit and offset.
	// With no_found_rows it's the size of the page.
	Found int
	Pages int

	// Count is only set for count requests.
	Count int
}

// PageCount is the number of pages of size limit needed for found rows, 0 when unlimited.
func PageCount(found, limit int) int {
	if limit <= 0 || found <= 0 {
		return 0
	}
	return (found + limit - 1) / limit
}

// Query runs a parameterized query. Results are served from the cache when the collection has
// not been written to since they were computed.
func (c *Collection[T]) Query(ctx context.Context, args query.Args) (*Result[T], error) {
	params, err := query.ParseArgs(c.def.Table, args, c.Defaults())
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't parse query of %s", c.def.Name)
	}

	rs, err := c.execute(ctx, params)
	if err != nil {
		return nil, err
	}

	if params.Count {
		return &Result[T]{Count: rs.Found, Found: rs.Found}, nil
	}

	result := &Result[T]{
		IDs:   rs.IDs,
		Found: rs.Found,
		Pages: rs.Pages,
	}
	if !params.IDsOnly {
		items, err := c.hydrate(ctx, rs.IDs)
		if err != nil {
			return nil, err
		}
		result.Items = items
	}
	return result, nil
}

// Count returns the number of rows matching args. Limit and offset are ignored.
func (c *Collection[T]) Count(ctx context.Context, args query.Args) (int, error) {
	withCount := make(query.Args, len(args)+1)
	for k, v := range args {
		withCount[k] = v
	}
	withCount[query.KeyCount] = true

	result, err := c.Query(ctx, withCount)
	if err != nil {
		return 0, err
	}
	return result.Count, nil
}

// IDs returns the primary keys matching args without hydrating the records.
func (c *Collection[T]) IDs(ctx context.Context, args query.Args) ([]interface{}, error) {
	withFields := make(query.Args, len(args)+1)
	for k, v := range args {
		withFields[k] = v
	}
	withFields[query.KeyFields] = "ids"
	delete(withFields, query.KeyCount)

	result, err := c.Query(ctx, withFields)
	if err != nil {
		return nil, err
	}
	return result.IDs, nil
}

func (c *Collection[T]) execute(ctx context.Context, params *query.Params) (*cache.ResultSet, error) {
	stmt := query.Compile(c.def.Table, params, c.now())

	key, err := query.NewDescriptor(stmt, params).Key()
	if err != nil {
		log.Printf("collection %s: couldn't compute cache key: %s", c.def.Name, err)
	}
	var generation string
	if key != "" {
		generation, _ = c.cache.Generation(ctx)
		if rs, ok := c.cache.Get(ctx, key, generation); ok {
			return rs, nil
		}
	}

	rs := &cache.ResultSet{}
	if params.Count {
		count, err := c.storage.Count(ctx, c.def.Table, stmt.Where)
		if err != nil {
			return nil, errors.Wrapf(err, "couldn't count %s", c.def.Name)
		}
		rs.Found = count
	} else {
		ids, err := c.storage.SelectIDs(ctx, stmt)
		if err != nil {
			return nil, errors.Wrapf(err, "couldn't query %s", c.def.Name)
		}
		rs.IDs = ids
		rs.Found = len(ids)
		if stmt.Limit > 0 && !params.NoFoundRows {
			found, err := c.storage.Count(ctx, c.def.Table, stmt.Where)
			if err != nil {
				return nil, errors.Wrapf(err, "couldn't count found rows of %s", c.def.Name)
			}
			rs.Found = found
		}
		rs.Pages = PageCount(rs.Found, stmt.Limit)
	}

	if key != "" {
		c.cache.Put(ctx, key, generation, rs)
	}
	return rs, nil
}

// hydrate loads the records of ids, in order, through the item cache.
func (c *Collection[T]) hydrate(ctx context.Context, ids []interface{}) ([]T, error) {
	rows := make(map[interface{}]storage.Row, len(ids))
	var missing []interface{}
	for _, id := range ids {
		if row, ok := c.cache.GetItem(ctx, id); ok {
			rows[id] = row
			continue
		}
		missing = append(missing, id)
	}

	if len(missing) > 0 {
		fetched, err := c.storage.FetchRows(ctx, c.def.Table, missing)
		if err != nil {
			return nil, errors.Wrapf(err, "couldn't fetch rows of %s", c.def.Name)
		}
		for _, row := range fetched {
			rows[row.ID(c.def.Table)] = row
			c.cache.PutItem(ctx, row)
		}
	}

	items := make([]T, 0, len(ids))
	for _, id := range ids {
		row, ok := rows[id]
		if !ok {
			log.Printf("collection %s: row %v disappeared before hydration, skipping", c.def.Name, id)
			continue
		}
		item, err := c.def.Scan(row)
		if err != nil {
			return nil, errors.Wrapf(err, "couldn't scan row %v of %s", id, c.def.Name)
		}
		items = append(items, item)
	}

	for _, filter := range c.itemsFilters {
		items = filter(items)
	}
	return items, nil
}
