package storage

import (
	"context"

	"github.com/pkg/errors"

	"github.com/storefront/dbquery/query"
	"github.com/storefront/dbquery/schema"
)

var ErrNotFound = errors.New("not found")

// Row maps column names to values normalized to the column's scalar type (see schema.Column.Coerce).
type Row map[string]interface{}

// Storage is a backing store for collection tables.
// Implementations must return rows normalized with NormalizeRow, so every backend yields the same value types.
type Storage interface {
	// SelectIDs returns the primary keys of the rows matching the statement, in statement order.
	SelectIDs(ctx context.Context, stmt *query.Statement) ([]interface{}, error)
	// Count returns the number of rows matching where, which may be nil.
	Count(ctx context.Context, table *schema.Table, where query.Formula) (int, error)
	// FetchRows returns the rows with the given primary keys, in any order. Missing rows are skipped.
	FetchRows(ctx context.Context, table *schema.Table, ids []interface{}) ([]Row, error)

	// Insert returns the primary key of the new row, generated if the row didn't carry one.
	Insert(ctx context.Context, table *schema.Table, row Row) (interface{}, error)
	// Update and Delete return ErrNotFound if there's no row with the given primary key.
	Update(ctx context.Context, table *schema.Table, id interface{}, row Row) error
	Delete(ctx context.Context, table *schema.Table, id interface{}) error

	CreateTable(ctx context.Context, table *schema.Table) error
	Close() error
}

func NormalizeRow(table *schema.Table, row map[string]interface{}) (Row, error) {
	out, err := table.NormalizeRow(row)
	if err != nil {
		return nil, err
	}
	return Row(out), nil
}

// ID returns the row's primary key.
func (r Row) ID(table *schema.Table) interface{} {
	return r[table.Primary().Name]
}

func (r Row) Copy() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
