package query

import (
	"strings"

	"github.com/storefront/dbquery/schema"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike escapes the LIKE wildcards in s, using \ as the escape character.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// SearchPattern builds a LIKE pattern matching strings which contain the search term.
// A * in the term matches anything, so "foo*bar" matches strings containing foo followed by bar.
func SearchPattern(search string) string {
	fragments := strings.Split(search, "*")
	for i := range fragments {
		fragments[i] = EscapeLike(fragments[i])
	}
	return "%" + strings.Join(fragments, "%") + "%"
}

// SearchColumns resolves the columns a search runs against: the requested ones which are searchable,
// or every searchable column when none of the requested ones are.
func SearchColumns(table *schema.Table, requested []string) []string {
	var all, out []string
	wanted := make(map[string]bool, len(requested))
	for _, name := range requested {
		wanted[name] = true
	}
	for _, c := range table.Searchable() {
		all = append(all, c.Name)
		if wanted[c.Name] {
			out = append(out, c.Name)
		}
	}
	if len(out) == 0 {
		return all
	}
	return out
}

// CompileSearch returns a disjunction of LIKE predicates, or nil for an empty search.
func CompileSearch(table *schema.Table, search string, requested []string) Formula {
	if search == "" {
		return nil
	}
	pattern := SearchPattern(search)

	columns := SearchColumns(table, requested)
	predicates := make([]Formula, len(columns))
	for i := range columns {
		predicates[i] = NewPredicate(columns[i], Like, pattern)
	}
	return NewOr(predicates...)
}
