package formats

import (
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/storefront/dbquery/schema"
	"github.com/storefront/dbquery/storage"
)

type TableFormatter struct {
	table   *tablewriter.Table
	columns []*schema.Column
}

func NewTableFormatter(w io.Writer) *TableFormatter {
	table := tablewriter.NewWriter(w)
	table.SetColWidth(24)
	table.SetRowLine(false)

	return &TableFormatter{
		table: table,
	}
}

func (t *TableFormatter) SetSchema(table *schema.Table) {
	t.columns = table.Columns
	header := make([]string, len(table.Columns))
	for i := range table.Columns {
		header[i] = table.Columns[i].Name
	}
	t.table.SetHeader(header)
	t.table.SetAutoFormatHeaders(false)
}

func (t *TableFormatter) Write(values storage.Row) error {
	row := make([]string, len(t.columns))
	for i := range t.columns {
		value, ok := values[t.columns[i].Name]
		if ok && value == nil {
			row[i] = "<null>"
			continue
		}
		row[i] = FormatValue(value)
	}
	t.table.Append(row)
	return nil
}

func (t *TableFormatter) Close() error {
	t.table.Render()
	return nil
}
