package formats

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/storefront/dbquery/schema"
	"github.com/storefront/dbquery/storage"
)

// Format writes rows of a single table.
type Format interface {
	SetSchema(table *schema.Table)
	Write(row storage.Row) error
	Close() error
}

// New returns the format with the given name: table, json or csv.
func New(name string, w io.Writer) (Format, error) {
	switch name {
	case "table", "":
		return NewTableFormatter(w), nil
	case "json":
		return NewJSONFormatter(w), nil
	case "csv":
		return NewCSVFormatter(w), nil
	default:
		return nil, errors.Errorf("invalid output format: '%s'", name)
	}
}

// FormatValue renders a normalized row value as text. NULL is the empty string.
func FormatValue(value interface{}) string {
	switch value := value.(type) {
	case nil:
		return ""
	case int64:
		return strconv.FormatInt(value, 10)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case string:
		return value
	case time.Time:
		return value.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", value)
	}
}
