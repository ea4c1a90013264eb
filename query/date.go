package query

import (
	"reflect"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cast"

	"github.com/storefront/dbquery/schema"
)

// DateClause is one range condition on a datetime column.
// All set bounds must hold; an empty clause matches everything.
type DateClause struct {
	After     *time.Time
	Before    *time.Time
	Inclusive bool

	// Within matches values no older than this, relative to the time the query is compiled.
	Within time.Duration

	Year  int
	Month int
	Day   int
}

// ParseDateQuery reads a single clause (a map) or a list of clauses.
func ParseDateQuery(v interface{}) ([]DateClause, error) {
	switch v := v.(type) {
	case DateClause:
		return []DateClause{v}, nil
	case []DateClause:
		return v, nil
	case map[string]interface{}:
		clause, err := parseDateClause(v)
		if err != nil {
			return nil, err
		}
		return []DateClause{clause}, nil
	case []interface{}:
		out := make([]DateClause, 0, len(v))
		for i := range v {
			m, ok := v[i].(map[string]interface{})
			if !ok {
				return nil, errors.Wrapf(ErrMalformedArgument, "date clause %d must be a map, got %v", i, reflect.TypeOf(v[i]))
			}
			clause, err := parseDateClause(m)
			if err != nil {
				return nil, errors.Wrapf(err, "couldn't parse date clause %d", i)
			}
			out = append(out, clause)
		}
		return out, nil
	default:
		return nil, errors.Wrapf(ErrMalformedArgument, "date query must be a map or a list of maps, got %v", reflect.TypeOf(v))
	}
}

func parseDateClause(m map[string]interface{}) (DateClause, error) {
	var clause DateClause

	if v, ok := m["inclusive"]; ok {
		inclusive, err := cast.ToBoolE(v)
		if err != nil {
			return clause, errors.Wrapf(ErrMalformedArgument, "inclusive must be a boolean, got %v", v)
		}
		clause.Inclusive = inclusive
	}

	var err error
	if clause.After, err = parseBound(m, "after", !clause.Inclusive); err != nil {
		return clause, err
	}
	if clause.Before, err = parseBound(m, "before", clause.Inclusive); err != nil {
		return clause, err
	}

	if v, ok := m["within"]; ok {
		within, err := cast.ToDurationE(v)
		if err != nil || within < 0 {
			return clause, errors.Wrapf(ErrMalformedArgument, "within must be a positive duration, got %v", v)
		}
		clause.Within = within
	}

	for key, dst := range map[string]*int{"year": &clause.Year, "month": &clause.Month, "day": &clause.Day} {
		if v, ok := m[key]; ok {
			n, err := cast.ToIntE(v)
			if err != nil {
				return clause, errors.Wrapf(ErrMalformedArgument, "%s must be an integer, got %v", key, v)
			}
			*dst = n
		}
	}
	if clause.Month != 0 && clause.Year == 0 {
		return clause, errors.Wrap(ErrMalformedArgument, "month requires year")
	}
	if clause.Day != 0 && clause.Month == 0 {
		return clause, errors.Wrap(ErrMalformedArgument, "day requires month")
	}
	if clause.Month < 0 || clause.Month > 12 || clause.Day < 0 || clause.Day > 31 {
		return clause, errors.Wrapf(ErrMalformedArgument, "invalid calendar date %d-%d-%d", clause.Year, clause.Month, clause.Day)
	}

	return clause, nil
}

// parseBound reads a date bound. A date without a time component given with endOfDay
// is moved to the last second of that day, so "before 2020-01-31, inclusive" covers the whole day.
func parseBound(m map[string]interface{}, key string, endOfDay bool) (*time.Time, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, nil
	}
	t, err := schema.ParseTime(v)
	if err != nil {
		return nil, errors.Wrapf(ErrMalformedArgument, "%s: %s", key, err)
	}
	if s, isString := v.(string); isString && endOfDay && len(strings.TrimSpace(s)) == len("2006-01-02") {
		t = t.Add(24*time.Hour - time.Second)
	}
	return &t, nil
}

// CompileDateClause returns the conjunction of the clause's bounds, or nil if it has none.
func CompileDateClause(column string, clause DateClause, now time.Time) Formula {
	var parts []Formula

	if clause.After != nil {
		relation := MoreThan
		if clause.Inclusive {
			relation = GreaterEqual
		}
		parts = append(parts, NewPredicate(column, relation, clause.After.UTC()))
	}
	if clause.Before != nil {
		relation := LessThan
		if clause.Inclusive {
			relation = LessEqual
		}
		parts = append(parts, NewPredicate(column, relation, clause.Before.UTC()))
	}
	if clause.Within > 0 {
		parts = append(parts, NewPredicate(column, GreaterEqual, now.Add(-clause.Within).UTC()))
	}
	if clause.Year != 0 {
		start, end := calendarRange(clause)
		parts = append(parts,
			NewPredicate(column, GreaterEqual, start),
			NewPredicate(column, LessThan, end),
		)
	}

	return NewAnd(parts...)
}

func calendarRange(clause DateClause) (time.Time, time.Time) {
	switch {
	case clause.Day != 0:
		start := time.Date(clause.Year, time.Month(clause.Month), clause.Day, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 0, 1)
	case clause.Month != 0:
		start := time.Date(clause.Year, time.Month(clause.Month), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, 0)
	default:
		start := time.Date(clause.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(1, 0, 0)
	}
}
