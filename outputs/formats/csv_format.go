package formats

import (
	"encoding/csv"
	"io"

	"github.com/storefront/dbquery/schema"
	"github.com/storefront/dbquery/storage"
)

type CSVFormatter struct {
	writer  *csv.Writer
	columns []*schema.Column
}

func NewCSVFormatter(w io.Writer) *CSVFormatter {
	writer := csv.NewWriter(w)

	return &CSVFormatter{
		writer: writer,
	}
}

func (t *CSVFormatter) SetSchema(table *schema.Table) {
	t.columns = table.Columns

	header := make([]string, len(table.Columns))
	for i := range table.Columns {
		header[i] = table.Columns[i].Name
	}
	t.writer.Write(header)
}

func (t *CSVFormatter) Write(values storage.Row) error {
	row := make([]string, len(t.columns))
	for i := range t.columns {
		row[i] = FormatValue(values[t.columns[i].Name])
	}
	return t.writer.Write(row)
}

func (t *CSVFormatter) Close() error {
	t.writer.Flush()
	return t.writer.Error()
}
