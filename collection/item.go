package collection

import (
	"context"
	"reflect"

	"github.com/pkg/errors"

	"github.com/storefront/dbquery/query"
	"github.com/storefront/dbquery/storage"
)

// ErrNotFound is returned by writes to a row which doesn't exist.
var ErrNotFound = storage.ErrNotFound

// Get loads the record with the given primary key. A missing record isn't an error,
// ok is false instead.
func (c *Collection[T]) Get(ctx context.Context, id interface{}) (item T, ok bool, err error) {
	row, ok, err := c.getRow(ctx, id)
	if err != nil || !ok {
		return item, false, err
	}
	item, err = c.def.Scan(row)
	if err != nil {
		return item, false, errors.Wrapf(err, "couldn't scan row %v of %s", id, c.def.Name)
	}
	return item, true, nil
}

// GetBy loads the first record, in primary key order, whose column equals value.
func (c *Collection[T]) GetBy(ctx context.Context, column string, value interface{}) (item T, ok bool, err error) {
	col, exists := c.def.Table.Column(column)
	if !exists {
		return item, false, errors.Errorf("unknown column %s of %s", column, c.def.Name)
	}
	if col.Primary {
		return c.Get(ctx, value)
	}
	value, err = col.Coerce(value)
	if err != nil || value == nil {
		// No row can hold a value of the wrong type, nor equal NULL.
		return item, false, nil
	}

	if col.CacheKey {
		if id, hit := c.cache.GetKey(ctx, col.Name, value); hit {
			row, found, err := c.getRow(ctx, id)
			if err != nil {
				return item, false, err
			}
			// The mapping may be stale if the row was changed without going through us.
			if found && reflect.DeepEqual(row[col.Name], value) {
				return c.scan(row)
			}
			c.cache.DeleteKey(ctx, col.Name, value)
		}
	}

	ids, err := c.IDs(ctx, query.Args{
		col.Name:             value,
		query.KeyLimit:       1,
		query.KeyOrderBy:     c.def.Table.Primary().Name,
		query.KeyOrder:       query.Ascending.String(),
		query.KeyNoFoundRows: true,
	})
	if err != nil {
		return item, false, err
	}
	if len(ids) == 0 {
		return item, false, nil
	}
	row, found, err := c.getRow(ctx, ids[0])
	if err != nil || !found {
		return item, false, err
	}
	if col.CacheKey {
		c.cache.PutKey(ctx, col.Name, value, ids[0])
	}
	return c.scan(row)
}

func (c *Collection[T]) scan(row storage.Row) (item T, ok bool, err error) {
	item, err = c.def.Scan(row)
	if err != nil {
		return item, false, errors.Wrapf(err, "couldn't scan row %v of %s", row.ID(c.def.Table), c.def.Name)
	}
	return item, true, nil
}

func (c *Collection[T]) getRow(ctx context.Context, id interface{}) (storage.Row, bool, error) {
	id, err := c.def.Table.ID(id)
	if err != nil {
		return nil, false, nil
	}
	if row, ok := c.cache.GetItem(ctx, id); ok {
		return row, true, nil
	}

	row, ok, err := c.fetchRow(ctx, id)
	if err != nil || !ok {
		return nil, false, err
	}
	c.cache.PutItem(ctx, row)
	return row, true, nil
}

// fetchRow reads the row from storage, bypassing the cache.
func (c *Collection[T]) fetchRow(ctx context.Context, id interface{}) (storage.Row, bool, error) {
	rows, err := c.storage.FetchRows(ctx, c.def.Table, []interface{}{id})
	if err != nil {
		return nil, false, errors.Wrapf(err, "couldn't fetch row %v of %s", id, c.def.Name)
	}
	if len(rows) == 0 {
		return nil, false, nil
	}
	return rows[0], true, nil
}

// Add inserts a new row and returns its primary key. Unknown columns are ignored,
// created and modified columns default to the current time.
func (c *Collection[T]) Add(ctx context.Context, values map[string]interface{}) (interface{}, error) {
	row, err := storage.NormalizeRow(c.def.Table, values)
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't add row to %s", c.def.Name)
	}
	now := c.now()
	for _, col := range c.def.Table.Columns {
		if (col.Created || col.Modified) && row[col.Name] == nil {
			row[col.Name] = now
		}
	}

	id, err := c.storage.Insert(ctx, c.def.Table, row)
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't add row to %s", c.def.Name)
	}

	c.cache.Invalidate(ctx, id)
	c.cache.BumpGeneration(ctx)
	return id, nil
}

// Update sets the given columns of the row. The primary key can't be changed,
// modified columns default to the current time.
func (c *Collection[T]) Update(ctx context.Context, id interface{}, values map[string]interface{}) error {
	key, err := c.def.Table.ID(id)
	if err != nil {
		return errors.Wrapf(ErrNotFound, "couldn't update row %v of %s: %s", id, c.def.Name, err)
	}
	id = key
	row, err := storage.NormalizeRow(c.def.Table, values)
	if err != nil {
		return errors.Wrapf(err, "couldn't update row %v of %s", id, c.def.Name)
	}
	delete(row, c.def.Table.Primary().Name)
	now := c.now()
	for _, col := range c.def.Table.Columns {
		if _, ok := row[col.Name]; col.Modified && !ok {
			row[col.Name] = now
		}
	}

	old, ok, err := c.fetchRow(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrapf(ErrNotFound, "couldn't update row %v of %s", id, c.def.Name)
	}

	if err := c.storage.Update(ctx, c.def.Table, id, row); err != nil {
		return errors.Wrapf(err, "couldn't update row %v of %s", id, c.def.Name)
	}

	c.invalidate(ctx, id, old)
	return nil
}

// Delete removes the row.
func (c *Collection[T]) Delete(ctx context.Context, id interface{}) error {
	key, err := c.def.Table.ID(id)
	if err != nil {
		return errors.Wrapf(ErrNotFound, "couldn't delete row %v of %s: %s", id, c.def.Name, err)
	}
	id = key
	old, ok, err := c.fetchRow(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrapf(ErrNotFound, "couldn't delete row %v of %s", id, c.def.Name)
	}

	if err := c.storage.Delete(ctx, c.def.Table, id); err != nil {
		return errors.Wrapf(err, "couldn't delete row %v of %s", id, c.def.Name)
	}

	c.invalidate(ctx, id, old)
	return nil
}

// invalidate drops everything cached about the row as it was before a write.
func (c *Collection[T]) invalidate(ctx context.Context, id interface{}, old storage.Row) {
	c.cache.Invalidate(ctx, id)
	for _, col := range c.def.Table.Columns {
		if col.CacheKey && old[col.Name] != nil {
			c.cache.DeleteKey(ctx, col.Name, old[col.Name])
		}
	}
	c.cache.BumpGeneration(ctx)
}
