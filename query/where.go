package query

import (
	"time"

	"github.com/storefront/dbquery/schema"
)

// BuildWhere ANDs the column filters, the search and the caller's formula. It returns nil when there's nothing to filter on.
func BuildWhere(table *schema.Table, params *Params, now time.Time) Formula {
	var parts []Formula

	for _, filter := range params.Filters {
		switch filter.Kind {
		case FilterEquals:
			parts = append(parts, NewPredicate(filter.Column, Equal, filter.Values[0]))

		case FilterIn:
			// A single element list is an equality, which is simpler to plan and index.
			if len(filter.Values) == 1 {
				parts = append(parts, NewPredicate(filter.Column, Equal, filter.Values[0]))
			} else {
				parts = append(parts, NewSetPredicate(filter.Column, In, filter.Values))
			}

		case FilterNotIn:
			if len(filter.Values) == 1 {
				parts = append(parts, NewPredicate(filter.Column, NotEqual, filter.Values[0]))
			} else {
				parts = append(parts, NewSetPredicate(filter.Column, NotIn, filter.Values))
			}

		case FilterDateRange:
			for _, clause := range filter.Date {
				parts = append(parts, CompileDateClause(filter.Column, clause, now))
			}
		}
	}

	parts = append(parts, CompileSearch(table, params.Search, params.SearchColumns))
	parts = append(parts, params.Where)

	return NewAnd(parts...)
}
