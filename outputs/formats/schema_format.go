package formats

import (
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/storefront/dbquery/schema"
)

// DescribeTable prints the table's columns and what queries may do with them.
func DescribeTable(w io.Writer, table *schema.Table) {
	out := tablewriter.NewWriter(w)
	out.SetHeader([]string{"name", "type", "capabilities"})
	out.SetAutoFormatHeaders(false)
	out.SetRowLine(false)

	for _, c := range table.Columns {
		out.Append([]string{c.Name, c.Type.String(), strings.Join(capabilities(c), ", ")})
	}
	out.Render()
}

func capabilities(c *schema.Column) []string {
	var out []string
	flags := []struct {
		set  bool
		name string
	}{
		{c.Primary, "primary"},
		{c.Searchable, "search"},
		{c.Sortable, "orderby"},
		{c.In, c.Name + "__in"},
		{c.NotIn, c.Name + "__not_in"},
		{c.DateQuery, c.Name + "_query"},
		{c.CacheKey, "cache key"},
		{c.Created, "created"},
		{c.Modified, "modified"},
	}
	for _, flag := range flags {
		if flag.set {
			out = append(out, flag.name)
		}
	}
	return out
}
