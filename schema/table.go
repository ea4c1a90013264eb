package schema

import (
	"github.com/pkg/errors"
)

var ErrNoPrimaryColumn = errors.New("table needs exactly one primary column")

// Table is an immutable description of a collection's backing table.
type Table struct {
	Name    string
	Alias   string
	Columns []*Column

	primary int
	byName  map[string]int
}

// NewTable validates the column set: names must be unique and exactly one column must be primary.
func NewTable(name, alias string, columns ...*Column) (*Table, error) {
	if name == "" {
		return nil, errors.New("table name can't be empty")
	}
	if alias == "" {
		alias = name[:1]
	}

	t := &Table{
		Name:    name,
		Alias:   alias,
		Columns: make([]*Column, len(columns)),
		primary: -1,
		byName:  make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		if c == nil || c.Name == "" {
			return nil, errors.Wrapf(ErrMalformedColumn, "column %d of table %s", i, name)
		}
		if _, ok := t.byName[c.Name]; ok {
			return nil, errors.Errorf("duplicate column %s in table %s", c.Name, name)
		}
		if c.Primary {
			if t.primary != -1 {
				return nil, errors.Wrapf(ErrNoPrimaryColumn, "table %s has more than one", name)
			}
			t.primary = i
		}
		copied := *c
		t.Columns[i] = &copied
		t.byName[c.Name] = i
	}
	if t.primary == -1 {
		return nil, errors.Wrapf(ErrNoPrimaryColumn, "table %s has none", name)
	}

	return t, nil
}

// MustNewTable is NewTable for statically defined tables.
func MustNewTable(name, alias string, columns ...*Column) *Table {
	t, err := NewTable(name, alias, columns...)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Table) Primary() *Column {
	return t.Columns[t.primary]
}

func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.byName[name]
	if !ok {
		return nil, false
	}
	return t.Columns[i], true
}

func (t *Table) Searchable() []*Column {
	var out []*Column
	for _, c := range t.Columns {
		if c.Searchable {
			out = append(out, c)
		}
	}
	return out
}

// NormalizeRow coerces every known column of the row to its scalar type and drops unknown keys.
func (t *Table) NormalizeRow(row map[string]interface{}) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(row))
	for _, c := range t.Columns {
		v, ok := row[c.Name]
		if !ok {
			continue
		}
		coerced, err := c.Coerce(v)
		if err != nil {
			return nil, errors.Wrapf(err, "couldn't normalize row of table %s", t.Name)
		}
		out[c.Name] = coerced
	}
	return out, nil
}

// ID coerces an identity value to the primary column's type.
func (t *Table) ID(v interface{}) (interface{}, error) {
	id, err := t.Primary().Coerce(v)
	if err != nil {
		return nil, errors.Wrap(err, "invalid identity")
	}
	if id == nil {
		return nil, errors.New("identity can't be null")
	}
	return id, nil
}
