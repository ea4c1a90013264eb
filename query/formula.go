package query

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Relation string

const (
	Equal        Relation = "="
	NotEqual     Relation = "<>"
	MoreThan     Relation = ">"
	LessThan     Relation = "<"
	GreaterEqual Relation = ">="
	LessEqual    Relation = "<="
	In           Relation = "IN"
	NotIn        Relation = "NOT IN"
	Like         Relation = "LIKE"
)

// Formula is a boolean filter over the rows of a single table.
// String returns a canonical rendering, stable for equal formulas, which is used in cache keys.
type Formula interface {
	fmt.Stringer
	formula()
}

type And struct {
	Formulas []Formula
}

type Or struct {
	Formulas []Formula
}

type Not struct {
	Child Formula
}

type Constant struct {
	Value bool
}

// Predicate compares a column with Value, or with Values for In and NotIn.
// For Like, Value is a pattern with % and _ wildcards and \ as the escape character.
type Predicate struct {
	Column   string
	Relation Relation
	Value    interface{}
	Values   []interface{}
}

func (*And) formula()       {}
func (*Or) formula()        {}
func (*Not) formula()       {}
func (*Constant) formula()  {}
func (*Predicate) formula() {}

// NewAnd skips nil formulas. It returns nil when nothing is left and the formula itself when only one is.
func NewAnd(formulas ...Formula) Formula {
	return newJunction(formulas, func(fs []Formula) Formula { return &And{Formulas: fs} })
}

// NewOr skips nil formulas. It returns nil when nothing is left and the formula itself when only one is.
func NewOr(formulas ...Formula) Formula {
	return newJunction(formulas, func(fs []Formula) Formula { return &Or{Formulas: fs} })
}

func newJunction(formulas []Formula, build func([]Formula) Formula) Formula {
	var out []Formula
	for _, f := range formulas {
		if f != nil {
			out = append(out, f)
		}
	}
	switch len(out) {
	case 0:
		return nil
	case 1:
		return out[0]
	default:
		return build(out)
	}
}

func NewNot(child Formula) *Not {
	return &Not{Child: child}
}

func NewConstant(value bool) *Constant {
	return &Constant{Value: value}
}

func NewPredicate(column string, relation Relation, value interface{}) *Predicate {
	return &Predicate{Column: column, Relation: relation, Value: value}
}

func NewSetPredicate(column string, relation Relation, values []interface{}) *Predicate {
	return &Predicate{Column: column, Relation: relation, Values: values}
}

func (f *And) String() string {
	return joinFormulas(f.Formulas, " AND ")
}

func (f *Or) String() string {
	return joinFormulas(f.Formulas, " OR ")
}

func (f *Not) String() string {
	return fmt.Sprintf("NOT (%s)", f.Child)
}

func (f *Constant) String() string {
	if f.Value {
		return "TRUE"
	}
	return "FALSE"
}

func (f *Predicate) String() string {
	switch f.Relation {
	case In, NotIn:
		return fmt.Sprintf("%s %s (%s)", f.Column, f.Relation, FormatValues(f.Values))
	default:
		return fmt.Sprintf("%s %s %s", f.Column, f.Relation, FormatValue(f.Value))
	}
}

func joinFormulas(formulas []Formula, sep string) string {
	parts := make([]string, len(formulas))
	for i := range formulas {
		parts[i] = "(" + formulas[i].String() + ")"
	}
	return strings.Join(parts, sep)
}

// FormatValue renders a scalar so that values of different types never render the same.
func FormatValue(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return "NULL"
	case string:
		return strconv.Quote(v)
	case time.Time:
		return "'" + v.UTC().Format(time.RFC3339Nano) + "'"
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64) + "f"
	default:
		return fmt.Sprintf("%#v", v)
	}
}

func FormatValues(vs []interface{}) string {
	parts := make([]string, len(vs))
	for i := range vs {
		parts[i] = FormatValue(vs[i])
	}
	return strings.Join(parts, ", ")
}
