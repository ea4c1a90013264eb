package memory

import (
	"github.com/pkg/errors"

	"github.com/storefront/dbquery/query"
	"github.com/storefront/dbquery/storage"
)

// truth is a three-valued logic result, unknown standing for SQL's NULL.
type truth int8

const (
	unknown truth = iota
	no
	yes
)

func truthOf(b bool) truth {
	if b {
		return yes
	}
	return no
}

func (t truth) not() truth {
	switch t {
	case yes:
		return no
	case no:
		return yes
	default:
		return unknown
	}
}

type matcher func(row storage.Row) truth

func matchAll(storage.Row) truth { return yes }

// compileFormula turns a formula into a row matcher, following SQL NULL semantics:
// a comparison with a NULL column is unknown, apart from an explicit equality with nil,
// and only rows the whole formula is true for match.
func compileFormula(formula query.Formula) (matcher, error) {
	if formula == nil {
		return matchAll, nil
	}

	switch formula := formula.(type) {
	case *query.And:
		children, err := compileFormulas(formula.Formulas)
		if err != nil {
			return nil, err
		}
		return func(row storage.Row) truth {
			out := yes
			for _, child := range children {
				switch child(row) {
				case no:
					return no
				case unknown:
					out = unknown
				}
			}
			return out
		}, nil

	case *query.Or:
		children, err := compileFormulas(formula.Formulas)
		if err != nil {
			return nil, err
		}
		return func(row storage.Row) truth {
			out := no
			for _, child := range children {
				switch child(row) {
				case yes:
					return yes
				case unknown:
					out = unknown
				}
			}
			return out
		}, nil

	case *query.Not:
		child, err := compileFormula(formula.Child)
		if err != nil {
			return nil, err
		}
		return func(row storage.Row) truth {
			return child(row).not()
		}, nil

	case *query.Constant:
		value := truthOf(formula.Value)
		return func(storage.Row) truth {
			return value
		}, nil

	case *query.Predicate:
		return compilePredicate(formula)

	default:
		return nil, errors.Errorf("unknown type of query.Formula: %T", formula)
	}
}

func compileFormulas(formulas []query.Formula) ([]matcher, error) {
	out := make([]matcher, len(formulas))
	for i := range formulas {
		child, err := compileFormula(formulas[i])
		if err != nil {
			return nil, err
		}
		out[i] = child
	}
	return out, nil
}

func compilePredicate(p *query.Predicate) (matcher, error) {
	column := p.Column

	switch p.Relation {
	case query.Equal, query.NotEqual:
		if p.Value == nil {
			wantNull := p.Relation == query.Equal
			return func(row storage.Row) truth {
				return truthOf((row[column] == nil) == wantNull)
			}, nil
		}
		return compareWith(column, p.Value, func(cmp int) bool {
			if p.Relation == query.Equal {
				return cmp == 0
			}
			return cmp != 0
		}), nil

	case query.MoreThan:
		return compareWith(column, p.Value, func(cmp int) bool { return cmp > 0 }), nil
	case query.LessThan:
		return compareWith(column, p.Value, func(cmp int) bool { return cmp < 0 }), nil
	case query.GreaterEqual:
		return compareWith(column, p.Value, func(cmp int) bool { return cmp >= 0 }), nil
	case query.LessEqual:
		return compareWith(column, p.Value, func(cmp int) bool { return cmp <= 0 }), nil

	case query.In, query.NotIn:
		values := p.Values
		want := truthOf(p.Relation == query.In)
		if len(values) == 0 {
			return func(storage.Row) truth { return want.not() }, nil
		}
		return func(row storage.Row) truth {
			v := row[column]
			if v == nil {
				return unknown
			}
			// A NULL in the list makes a miss unknown rather than false.
			out := want.not()
			for i := range values {
				if values[i] == nil {
					out = unknown
					continue
				}
				if Compare(v, values[i]) == 0 {
					return want
				}
			}
			return out
		}, nil

	case query.Like:
		pattern, ok := p.Value.(string)
		if !ok {
			return nil, errors.Errorf("LIKE pattern must be a string, got %T", p.Value)
		}
		re, err := likeToRegexp(pattern)
		if err != nil {
			return nil, errors.Wrapf(err, "couldn't compile LIKE pattern %s", pattern)
		}
		return func(row storage.Row) truth {
			v := row[column]
			if v == nil {
				return unknown
			}
			return truthOf(re.MatchString(text(v)))
		}, nil

	default:
		return nil, errors.Errorf("invalid relation: %s", p.Relation)
	}
}

func compareWith(column string, value interface{}, ok func(cmp int) bool) matcher {
	return func(row storage.Row) truth {
		v := row[column]
		if v == nil || value == nil {
			return unknown
		}
		return truthOf(ok(Compare(v, value)))
	}
}
