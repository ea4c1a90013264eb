package query

import (
	"reflect"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cast"

	"github.com/storefront/dbquery/schema"
)

var ErrMalformedArgument = errors.New("malformed query argument")

// Args is the loosely typed parameter bag handed in by callers.
//
// Per column it understands `name` (equality), `name__in`, `name__not_in` and, for date columns,
// `name_query`. Reserved keys are listed below; anything else is ignored.
type Args map[string]interface{}

const (
	KeySearch        = "search"
	KeySearchColumns = "search_columns"
	KeyOrderBy       = "orderby"
	KeyOrder         = "order"
	KeyLimit         = "limit"
	KeyNumber        = "number"
	KeyOffset        = "offset"
	KeyCount         = "count"
	KeyFields        = "fields"
	KeyNoFoundRows   = "no_found_rows"
	KeyWhere         = "where"
)

type FilterKind int

const (
	FilterEquals FilterKind = iota
	FilterIn
	FilterNotIn
	FilterDateRange
)

func (k FilterKind) String() string {
	switch k {
	case FilterEquals:
		return "equals"
	case FilterIn:
		return "in"
	case FilterNotIn:
		return "not_in"
	case FilterDateRange:
		return "date_range"
	default:
		return "unknown"
	}
}

// Filter is one resolved condition on a column. Values are already coerced to the column's type.
type Filter struct {
	Column string
	Kind   FilterKind
	Values []interface{}
	Date   []DateClause
}

// Defaults are the collection-level values used for keys the caller didn't pass.
type Defaults struct {
	// Limit is the default page size, 0 means unlimited.
	Limit   int
	OrderBy string
	Order   Direction
}

// Params is the structured form of Args, resolved once against a table.
type Params struct {
	Filters       []Filter
	Search        string
	SearchColumns []string

	OrderBy       []OrderKey
	OrderDisabled bool
	Order         Direction
	// DefaultOrderBy is the collection's default key, used in place of unusable ones.
	DefaultOrderBy string

	// Limit of 0 means unlimited.
	Limit  int
	Offset int

	Count       bool
	IDsOnly     bool
	NoFoundRows bool

	// Where is an optional caller supplied formula, ANDed with everything else.
	Where Formula
}

// Filter returns the first filter of the given kind on the column.
func (p *Params) Filter(column string, kind FilterKind) (Filter, bool) {
	for _, f := range p.Filters {
		if f.Column == column && f.Kind == kind {
			return f, true
		}
	}
	return Filter{}, false
}

func ParseArgs(table *schema.Table, args Args, defaults Defaults) (*Params, error) {
	params := &Params{
		Order:          defaults.Order,
		Limit:          defaults.Limit,
		DefaultOrderBy: defaults.OrderBy,
	}

	for _, c := range table.Columns {
		if v, ok := present(args, c.Name); ok {
			var values []interface{}
			kind := FilterEquals
			if isList(v) {
				kind = FilterIn
				list, err := coerceList(c, v)
				if err != nil {
					return nil, err
				}
				values = list
			} else {
				value, err := c.Coerce(v)
				if err != nil {
					return nil, errors.Wrap(ErrMalformedArgument, err.Error())
				}
				values = []interface{}{value}
			}
			if len(values) > 0 {
				params.Filters = append(params.Filters, Filter{Column: c.Name, Kind: kind, Values: values})
			}
		}
		if v, ok := present(args, c.Name+"__in"); ok && c.In {
			values, err := coerceList(c, v)
			if err != nil {
				return nil, err
			}
			if len(values) > 0 {
				params.Filters = append(params.Filters, Filter{Column: c.Name, Kind: FilterIn, Values: values})
			}
		}
		if v, ok := present(args, c.Name+"__not_in"); ok && c.NotIn {
			values, err := coerceList(c, v)
			if err != nil {
				return nil, err
			}
			if len(values) > 0 {
				params.Filters = append(params.Filters, Filter{Column: c.Name, Kind: FilterNotIn, Values: values})
			}
		}
		if v, ok := present(args, c.Name+"_query"); ok && c.DateQuery {
			clauses, err := ParseDateQuery(v)
			if err != nil {
				return nil, errors.Wrapf(err, "couldn't parse %s_query", c.Name)
			}
			if len(clauses) > 0 {
				params.Filters = append(params.Filters, Filter{Column: c.Name, Kind: FilterDateRange, Date: clauses})
			}
		}
	}

	if v, ok := present(args, KeySearch); ok {
		search, err := cast.ToStringE(v)
		if err != nil {
			return nil, errors.Wrapf(ErrMalformedArgument, "search must be a string, got %v", reflect.TypeOf(v))
		}
		params.Search = search
	}
	if v, ok := present(args, KeySearchColumns); ok {
		columns, err := toStringList(v)
		if err != nil {
			return nil, errors.Wrap(err, "couldn't parse search_columns")
		}
		params.SearchColumns = columns
	}

	if v, ok := present(args, KeyOrder); ok {
		params.Order = ParseDirection(v)
	}
	keys, disabled, ok, err := parseOrderBy(args)
	if err != nil {
		return nil, err
	}
	switch {
	case ok:
		params.OrderBy = keys
		params.OrderDisabled = disabled
	case defaults.OrderBy != "":
		params.OrderBy = []OrderKey{{Name: defaults.OrderBy}}
	}

	limitKey := KeyLimit
	if _, ok := args[KeyLimit]; !ok {
		limitKey = KeyNumber
	}
	if v, ok := args[limitKey]; ok {
		limit, err := parseLimit(v)
		if err != nil {
			return nil, err
		}
		params.Limit = limit
	}
	if v, ok := present(args, KeyOffset); ok {
		offset, err := cast.ToIntE(v)
		if err != nil || offset < 0 {
			return nil, errors.Wrapf(ErrMalformedArgument, "offset must be a non-negative integer, got %v", v)
		}
		params.Offset = offset
	}

	for key, dst := range map[string]*bool{
		KeyCount:       &params.Count,
		KeyNoFoundRows: &params.NoFoundRows,
	} {
		if v, ok := present(args, key); ok {
			b, err := cast.ToBoolE(v)
			if err != nil {
				return nil, errors.Wrapf(ErrMalformedArgument, "%s must be a boolean, got %v", key, v)
			}
			*dst = b
		}
	}

	if v, ok := present(args, KeyFields); ok {
		fields, _ := v.(string)
		params.IDsOnly = strings.EqualFold(fields, "ids")
	}

	if v, ok := present(args, KeyWhere); ok {
		where, ok := v.(Formula)
		if !ok {
			return nil, errors.Wrapf(ErrMalformedArgument, "where must be a formula, got %v", reflect.TypeOf(v))
		}
		params.Where = where
	}

	return params, nil
}

// present treats nil and empty strings as absent, like unset query vars.
func present(args Args, key string) (interface{}, bool) {
	v, ok := args[key]
	if !ok || v == nil {
		return nil, false
	}
	if s, isString := v.(string); isString && s == "" {
		return nil, false
	}
	return v, true
}

func parseLimit(v interface{}) (int, error) {
	switch v := v.(type) {
	case nil:
		return 0, nil
	case bool:
		if !v {
			return 0, nil
		}
		return 0, errors.Wrap(ErrMalformedArgument, "limit can't be true")
	case string:
		if v == "" || strings.EqualFold(v, "all") {
			return 0, nil
		}
	}
	limit, err := cast.ToIntE(v)
	if err != nil {
		return 0, errors.Wrapf(ErrMalformedArgument, "limit must be an integer, got %v", v)
	}
	if limit < 0 {
		return 0, nil
	}
	return limit, nil
}

func isList(v interface{}) bool {
	switch v.(type) {
	case string, []byte:
		return false
	}
	kind := reflect.ValueOf(v).Kind()
	return kind == reflect.Slice || kind == reflect.Array
}

// toList accepts slices of any element type and comma separated strings.
func toList(v interface{}) []interface{} {
	switch v := v.(type) {
	case []interface{}:
		return v
	case []byte:
		return toList(string(v))
	case string:
		var out []interface{}
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		out := make([]interface{}, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out
	}
	return []interface{}{v}
}

func coerceList(c *schema.Column, v interface{}) ([]interface{}, error) {
	list := toList(v)
	out := make([]interface{}, 0, len(list))
	for _, item := range list {
		coerced, err := c.Coerce(item)
		if err != nil {
			return nil, errors.Wrap(ErrMalformedArgument, err.Error())
		}
		if coerced != nil {
			out = append(out, coerced)
		}
	}
	return out, nil
}

func toStringList(v interface{}) ([]string, error) {
	list := toList(v)
	out := make([]string, 0, len(list))
	for i := range list {
		s, err := cast.ToStringE(list[i])
		if err != nil {
			return nil, errors.Wrapf(ErrMalformedArgument, "expected string at index %d, got %v", i, reflect.TypeOf(list[i]))
		}
		out = append(out, s)
	}
	return out, nil
}
