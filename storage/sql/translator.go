package sql

import (
	"fmt"
	"strings"

	"github.com/storefront/dbquery/query"
	"github.com/storefront/dbquery/schema"
)

// translator renders formulas against one aliased table, collecting arguments in the placeholder map.
type translator struct {
	table    *schema.Table
	template Template
	pm       PlaceholderMap
}

func newTranslator(table *schema.Table, template Template) *translator {
	return &translator{
		table:    table,
		template: template,
		pm:       template.GetPlaceholders(),
	}
}

func (t *translator) column(name string) string {
	return t.table.Alias + "." + t.template.QuoteIdentifier(name)
}

func (t *translator) arg(v interface{}) string {
	return t.pm.AddPlaceholder(t.template.Arg(v))
}

func (t *translator) FormulaToSQL(formula query.Formula) string {
	switch formula := formula.(type) {
	case *query.And:
		return t.junction(formula.Formulas, " AND ")

	case *query.Or:
		return t.junction(formula.Formulas, " OR ")

	case *query.Not:
		child := t.FormulaToSQL(formula.Child)

		return fmt.Sprintf("NOT %s", parenthesize(child))

	case *query.Constant:
		if formula.Value {
			return "TRUE"
		} else {
			return "FALSE"
		}

	case *query.Predicate:
		return t.predicateToSQL(formula)

	default:
		panic(fmt.Sprintf("unknown type of query.Formula: %T", formula))
	}
}

func (t *translator) junction(formulas []query.Formula, sep string) string {
	parts := make([]string, len(formulas))
	for i := range formulas {
		parts[i] = parenthesize(t.FormulaToSQL(formulas[i]))
	}
	return strings.Join(parts, sep)
}

func (t *translator) predicateToSQL(p *query.Predicate) string {
	column := t.column(p.Column)

	switch p.Relation {
	case query.In, query.NotIn:
		if len(p.Values) == 0 {
			if p.Relation == query.In {
				return "FALSE"
			}
			return "TRUE"
		}
		placeholders := make([]string, len(p.Values))
		for i := range p.Values {
			placeholders[i] = t.arg(p.Values[i])
		}
		return fmt.Sprintf("%s %s (%s)", column, p.Relation, strings.Join(placeholders, ", "))

	case query.Like:
		c, _ := t.table.Column(p.Column)
		return t.template.Like(column, c, t.arg(p.Value))

	case query.Equal, query.NotEqual:
		if p.Value == nil {
			if p.Relation == query.Equal {
				return column + " IS NULL"
			}
			return column + " IS NOT NULL"
		}
		return fmt.Sprintf("%s %s %s", column, p.Relation, t.arg(p.Value))

	case query.MoreThan, query.LessThan, query.GreaterEqual, query.LessEqual:
		return fmt.Sprintf("%s %s %s", column, p.Relation, t.arg(p.Value))

	default:
		panic(fmt.Sprintf("invalid relation: %s", p.Relation))
	}
}

// OrderToSQL renders the sort terms. Ordinal terms become a CASE over the list positions,
// with values missing from the list sorted last.
func (t *translator) OrderToSQL(terms []query.OrderTerm) string {
	parts := make([]string, len(terms))
	for i, term := range terms {
		column := t.column(term.Column)
		if term.Ordinal != nil {
			var sb strings.Builder
			sb.WriteString("CASE ")
			sb.WriteString(column)
			for pos, v := range term.Ordinal {
				fmt.Fprintf(&sb, " WHEN %s THEN %d", t.arg(v), pos)
			}
			fmt.Fprintf(&sb, " ELSE %d END", len(term.Ordinal))
			parts[i] = sb.String()
			continue
		}
		if term.Descending {
			parts[i] = column + " DESC"
		} else {
			parts[i] = column + " ASC"
		}
	}
	return strings.Join(parts, ", ")
}

func parenthesize(s string) string {
	return fmt.Sprintf("(%s)", s)
}

// SelectToSQL renders the statement as a query for the primary keys of the matching rows.
func SelectToSQL(stmt *query.Statement, template Template) (string, []interface{}) {
	t := newTranslator(stmt.Table, template)

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s %s",
		t.column(stmt.Table.Primary().Name), template.QuoteIdentifier(stmt.Table.Name), stmt.Table.Alias)
	if stmt.Where != nil {
		sb.WriteString(" WHERE ")
		sb.WriteString(t.FormulaToSQL(stmt.Where))
	}
	if len(stmt.Order) > 0 {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(t.OrderToSQL(stmt.Order))
	}
	if stmt.Limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d OFFSET %d", stmt.Limit, stmt.Offset)
	}

	return sb.String(), t.pm.Values()
}

func CountToSQL(table *schema.Table, where query.Formula, template Template) (string, []interface{}) {
	t := newTranslator(table, template)

	q := fmt.Sprintf("SELECT COUNT(*) FROM %s %s", template.QuoteIdentifier(table.Name), table.Alias)
	if where != nil {
		q += " WHERE " + t.FormulaToSQL(where)
	}

	return q, t.pm.Values()
}
