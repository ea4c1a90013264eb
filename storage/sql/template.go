package sql

import (
	"time"

	"github.com/storefront/dbquery/schema"
)

// Template captures what differs between the supported databases.
type Template interface {
	DriverName() string
	DSN(user, password, host, databaseName string, port int) string
	DefaultPort() int

	GetPlaceholders() PlaceholderMap
	QuoteIdentifier(name string) string
	// Like renders a case-insensitive pattern match of column against placeholder, with \ as the escape character.
	Like(column string, c *schema.Column, placeholder string) string
	// Arg converts a normalized value to what the driver expects.
	Arg(v interface{}) interface{}

	ColumnDefinition(c *schema.Column) string
	// Returning reports whether inserts should use RETURNING to get the generated primary key.
	Returning() bool
}

// PlaceholderMap collects the arguments of a query as it's rendered.
type PlaceholderMap interface {
	AddPlaceholder(value interface{}) string
	Values() []interface{}
}

// PositionalPlaceholders is the ? placeholder style.
type PositionalPlaceholders struct {
	values []interface{}
}

func NewPositionalPlaceholders() *PositionalPlaceholders {
	return &PositionalPlaceholders{
		values: make([]interface{}, 0),
	}
}

func (pms *PositionalPlaceholders) AddPlaceholder(value interface{}) string {
	pms.values = append(pms.values, value)

	return "?"
}

func (pms *PositionalPlaceholders) Values() []interface{} {
	return pms.values
}

// TimeFormat is how datetimes are stored by databases without a native timestamp binding we rely on.
// It sorts lexically in time order.
const TimeFormat = "2006-01-02 15:04:05"

// TimeAsString is an Arg implementation storing datetimes as TimeFormat text.
func TimeAsString(v interface{}) interface{} {
	if t, ok := v.(time.Time); ok {
		return t.UTC().Format(TimeFormat)
	}
	return v
}
