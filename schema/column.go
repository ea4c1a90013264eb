package schema

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

var ErrMalformedColumn = errors.New("malformed column descriptor")

type ScalarType int

const (
	String ScalarType = iota
	Integer
	Float
	Datetime
)

func (t ScalarType) String() string {
	switch t {
	case Integer:
		return "integer"
	case Float:
		return "float"
	case Datetime:
		return "datetime"
	default:
		return "string"
	}
}

// ParseScalarType maps a type name, or the SQL spelling of one, to a ScalarType.
// Anything it doesn't recognize is treated as a string.
func ParseScalarType(name string) ScalarType {
	name = strings.ToLower(strings.TrimSpace(name))
	if i := strings.IndexAny(name, "( "); i != -1 {
		name = name[:i]
	}
	switch name {
	case "integer", "int", "bigint", "smallint", "tinyint", "mediumint", "serial", "bigserial":
		return Integer
	case "float", "double", "decimal", "numeric", "real":
		return Float
	case "datetime", "timestamp", "date", "time":
		return Datetime
	default:
		return String
	}
}

// Column describes one attribute of a table and what queries may do with it.
type Column struct {
	Name string
	Type ScalarType

	Searchable bool
	Sortable   bool
	In         bool
	NotIn      bool
	DateQuery  bool

	Primary bool
	// CacheKey marks a unique column whose values may be used to look items up through the item cache.
	CacheKey bool
	// Created and Modified mark datetime columns stamped on insert and on every update.
	Created  bool
	Modified bool
}

func (c *Column) IsNumeric() bool {
	return c.Type == Integer
}

// ParseColumn builds a column from a loosely typed descriptor, as found in config files.
// Unknown attributes are ignored.
func ParseColumn(v interface{}) (*Column, error) {
	switch v := v.(type) {
	case *Column:
		if v == nil {
			return nil, errors.Wrap(ErrMalformedColumn, "nil column")
		}
		out := *v
		return &out, nil
	case Column:
		return &v, nil
	case map[string]interface{}:
		return columnFromMap(v)
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(v))
		for k, val := range v {
			m[fmt.Sprintf("%v", k)] = val
		}
		return columnFromMap(m)
	default:
		return nil, errors.Wrapf(ErrMalformedColumn, "expected map, got %v", reflect.TypeOf(v))
	}
}

func columnFromMap(m map[string]interface{}) (*Column, error) {
	name, err := cast.ToStringE(m["name"])
	if err != nil || name == "" {
		return nil, errors.Wrap(ErrMalformedColumn, "column name must be a non-empty string")
	}

	c := &Column{Name: name}
	if typ, ok := m["type"]; ok {
		typName, err := cast.ToStringE(typ)
		if err != nil {
			return nil, errors.Wrapf(ErrMalformedColumn, "column %s: type must be a string", name)
		}
		c.Type = ParseScalarType(typName)
	}

	flags := []struct {
		dst  *bool
		keys []string
	}{
		{&c.Searchable, []string{"searchable"}},
		{&c.Sortable, []string{"sortable"}},
		{&c.In, []string{"in"}},
		{&c.NotIn, []string{"notIn", "not_in"}},
		{&c.DateQuery, []string{"dateQuery", "date_query"}},
		{&c.Primary, []string{"primary"}},
		{&c.CacheKey, []string{"cacheKey", "cache_key"}},
		{&c.Created, []string{"created"}},
		{&c.Modified, []string{"modified"}},
	}
	for _, flag := range flags {
		for _, key := range flag.keys {
			raw, ok := m[key]
			if !ok {
				continue
			}
			b, err := cast.ToBoolE(raw)
			if err != nil {
				return nil, errors.Wrapf(ErrMalformedColumn, "column %s: %s must be a boolean", name, key)
			}
			*flag.dst = b
		}
	}

	return c, nil
}

// Coerce converts a value to the Go representation of the column's scalar type:
// int64, float64, string or a UTC time.Time. nil is kept as is.
func (c *Column) Coerce(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	if b, ok := v.([]byte); ok {
		v = string(b)
	}

	switch c.Type {
	case Integer:
		if s, ok := v.(string); ok {
			v = strings.TrimSpace(s)
		}
		out, err := cast.ToInt64E(v)
		if err != nil {
			return nil, errors.Wrapf(err, "couldn't coerce %v to integer for column %s", v, c.Name)
		}
		return out, nil
	case Float:
		out, err := cast.ToFloat64E(v)
		if err != nil {
			return nil, errors.Wrapf(err, "couldn't coerce %v to float for column %s", v, c.Name)
		}
		return out, nil
	case Datetime:
		out, err := ParseTime(v)
		if err != nil {
			return nil, errors.Wrapf(err, "couldn't coerce %v to datetime for column %s", v, c.Name)
		}
		return out, nil
	default:
		out, err := cast.ToStringE(v)
		if err != nil {
			return nil, errors.Wrapf(err, "couldn't coerce %v to string for column %s", v, c.Name)
		}
		return out, nil
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTime reads a datetime the way the storage layer writes them. Values without a zone are UTC.
func ParseTime(v interface{}) (time.Time, error) {
	switch v := v.(type) {
	case time.Time:
		return v.UTC(), nil
	case *time.Time:
		if v == nil {
			return time.Time{}, errors.New("nil time")
		}
		return v.UTC(), nil
	case []byte:
		return ParseTime(string(v))
	case string:
		s := strings.TrimSpace(v)
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), nil
			}
		}
		return time.Time{}, errors.Errorf("unsupported datetime format: %q", v)
	default:
		return time.Time{}, errors.Errorf("expected datetime, got %v", reflect.TypeOf(v))
	}
}
