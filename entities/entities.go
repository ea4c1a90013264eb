// Package entities defines the store's built-in collections: their tables, typed records
// and constructors.
package entities

import (
	"time"

	"github.com/pkg/errors"

	"github.com/storefront/dbquery/collection"
	"github.com/storefront/dbquery/query"
	"github.com/storefront/dbquery/schema"
	"github.com/storefront/dbquery/storage"
)

// Entry describes a collection independently of its record type.
type Entry struct {
	Name    string
	Table   *schema.Table
	PerPage int
	OrderBy string
	Order   query.Direction
}

// Rows returns a collection of the entry's table which yields plain rows.
func (e Entry) Rows(s storage.Storage, opts ...collection.Option) *collection.Collection[storage.Row] {
	return collection.New(collection.RowDefinition(e.Name, e.Table, e.PerPage, e.OrderBy, e.Order), s, opts...)
}

func definition[T any](e Entry, scan func(storage.Row) (T, error)) collection.Definition[T] {
	return collection.Definition[T]{
		Name:    e.Name,
		Table:   e.Table,
		PerPage: e.PerPage,
		OrderBy: e.OrderBy,
		Order:   e.Order,
		Scan:    scan,
	}
}

// All lists the built-in collections.
func All() []Entry {
	return []Entry{
		Customers,
		CustomerAddresses,
		Orders,
		OrderItems,
		Discounts,
		Notes,
		Logs,
	}
}

func Find(name string) (Entry, bool) {
	for _, e := range All() {
		if e.Name == name || e.Table.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// Rows are normalized, so plain type assertions are enough. NULLs read as zero values.

func id(row storage.Row) (int64, error) {
	v, ok := row["id"].(int64)
	if !ok {
		return 0, errors.Errorf("row has no valid id: %v", row["id"])
	}
	return v, nil
}

func integer(row storage.Row, name string) int64 {
	v, _ := row[name].(int64)
	return v
}

func float(row storage.Row, name string) float64 {
	v, _ := row[name].(float64)
	return v
}

func text(row storage.Row, name string) string {
	v, _ := row[name].(string)
	return v
}

func datetime(row storage.Row, name string) time.Time {
	v, _ := row[name].(time.Time)
	return v
}

func optionalDatetime(row storage.Row, name string) *time.Time {
	v, ok := row[name].(time.Time)
	if !ok {
		return nil
	}
	return &v
}

// Columns every table shares.

func primary() *schema.Column {
	return &schema.Column{Name: "id", Type: schema.Integer, Primary: true, Sortable: true, In: true, NotIn: true}
}

func dateCreated() *schema.Column {
	return &schema.Column{Name: "date_created", Type: schema.Datetime, Sortable: true, DateQuery: true, Created: true}
}

func dateModified() *schema.Column {
	return &schema.Column{Name: "date_modified", Type: schema.Datetime, Sortable: true, DateQuery: true, Modified: true}
}
