package query

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cast"

	"github.com/storefront/dbquery/schema"
)

type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "DESC"
	}
	return "ASC"
}

// ParseDirection reads "ASC" or "DESC" case-insensitively.
// Anything else is ascending.
func ParseDirection(v interface{}) Direction {
	s, _ := v.(string)
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DESC":
		return Descending
	case "ASC":
		return Ascending
	default:
		return Ascending
	}
}

func isDirectionToken(s string) bool {
	s = strings.ToUpper(s)
	return s == "ASC" || s == "DESC"
}

// OrderKey is a requested sort key. Keys without an explicit direction use the global order.
type OrderKey struct {
	Name      string
	Direction Direction
	Explicit  bool
}

// OrderTerm is a compiled sort key.
// A term with Ordinal set sorts by the position of the column value within Ordinal and ignores Descending.
type OrderTerm struct {
	Column     string
	Descending bool
	Ordinal    []interface{}
}

func (t OrderTerm) String() string {
	if t.Ordinal != nil {
		return fmt.Sprintf("FIELD(%s, %s)", t.Column, FormatValues(t.Ordinal))
	}
	if t.Descending {
		return t.Column + " DESC"
	}
	return t.Column + " ASC"
}

// parseOrderBy reports whether orderby was passed at all, and whether it disables ordering.
func parseOrderBy(args Args) (keys []OrderKey, disabled bool, ok bool, err error) {
	v, ok := args[KeyOrderBy]
	if !ok || v == nil {
		return nil, false, false, nil
	}

	switch v := v.(type) {
	case bool:
		if v {
			return nil, false, false, nil
		}
		return nil, true, true, nil
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return nil, false, false, nil
		}
		if strings.EqualFold(v, "none") {
			return nil, true, true, nil
		}
		return parseOrderByString(v), false, true, nil
	case []OrderKey:
		return v, len(v) == 0, true, nil
	case map[string]interface{}:
		keys := orderKeysFromMap(v)
		return keys, len(keys) == 0, true, nil
	case map[string]string:
		m := make(map[string]interface{}, len(v))
		for k, dir := range v {
			m[k] = dir
		}
		keys := orderKeysFromMap(m)
		return keys, len(keys) == 0, true, nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false, false, errors.Wrapf(ErrMalformedArgument, "orderby must be a string, list or map, got %v", reflect.TypeOf(v))
	}
	for i := 0; i < rv.Len(); i++ {
		switch item := rv.Index(i).Interface().(type) {
		case string:
			keys = append(keys, parseOrderByString(item)...)
		case OrderKey:
			keys = append(keys, item)
		case map[string]interface{}:
			keys = append(keys, orderKeysFromMap(item)...)
		case map[string]string:
			for k, dir := range item {
				keys = append(keys, OrderKey{Name: k, Direction: ParseDirection(dir), Explicit: true})
			}
		default:
			name, err := cast.ToStringE(item)
			if err != nil {
				return nil, false, false, errors.Wrapf(ErrMalformedArgument, "orderby entry %d has unsupported type %v", i, reflect.TypeOf(item))
			}
			keys = append(keys, OrderKey{Name: name})
		}
	}
	return keys, len(keys) == 0, true, nil
}

// parseOrderByString splits on commas and whitespace. A trailing ASC or DESC token applies to the key before it.
func parseOrderByString(s string) []OrderKey {
	tokens := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	var keys []OrderKey
	for _, token := range tokens {
		if isDirectionToken(token) && len(keys) > 0 && !keys[len(keys)-1].Explicit {
			keys[len(keys)-1].Direction = ParseDirection(token)
			keys[len(keys)-1].Explicit = true
			continue
		}
		keys = append(keys, OrderKey{Name: token})
	}
	return keys
}

// orderKeysFromMap sorts the keys, since maps carry no order of their own.
func orderKeysFromMap(m map[string]interface{}) []OrderKey {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	keys := make([]OrderKey, len(names))
	for i, name := range names {
		dir, isString := m[name].(string)
		keys[i] = OrderKey{Name: name, Direction: ParseDirection(dir), Explicit: isString}
	}
	return keys
}

// CompileOrder turns the requested keys into sort terms.
//
// `{column}__in` sorts by position within the column's IN list. Unknown or unsortable
// columns fall back to the default key, or to the primary column if that isn't sortable either.
// The primary column is always the last term so the order is total.
func CompileOrder(table *schema.Table, params *Params) []OrderTerm {
	if params.OrderDisabled {
		return nil
	}

	primary := table.Primary()
	fallback := primary
	if column, ok := table.Column(params.DefaultOrderBy); ok && column.Sortable {
		fallback = column
	}
	var terms []OrderTerm
	seen := make(map[string]bool)
	add := func(key string, term OrderTerm) {
		if seen[key] {
			return
		}
		seen[key] = true
		terms = append(terms, term)
	}

	for _, key := range params.OrderBy {
		direction := params.Order
		if key.Explicit {
			direction = key.Direction
		}
		descending := direction == Descending

		if strings.HasSuffix(key.Name, "__in") {
			name := strings.TrimSuffix(key.Name, "__in")
			if filter, ok := params.Filter(name, FilterIn); ok {
				add(key.Name, OrderTerm{Column: name, Ordinal: filter.Values})
				continue
			}
			add(fallback.Name, OrderTerm{Column: fallback.Name, Descending: descending})
			continue
		}

		switch column, ok := table.Column(key.Name); {
		case ok && (column.Sortable || column.Primary):
			add(column.Name, OrderTerm{Column: column.Name, Descending: descending})
		default:
			add(fallback.Name, OrderTerm{Column: fallback.Name, Descending: descending})
		}
	}

	if !seen[primary.Name] {
		add(primary.Name, OrderTerm{Column: primary.Name, Descending: params.Order == Descending})
	}

	return terms
}
