package sqlite

import (
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/storefront/dbquery/schema"
	"github.com/storefront/dbquery/storage/sql"
)

type SQLiteTemplate struct{}

var Template = &SQLiteTemplate{}

func (t *SQLiteTemplate) DriverName() string {
	return "sqlite"
}

// DSN ignores everything but the database name, which is the path of the database file.
func (t *SQLiteTemplate) DSN(user, password, host, databaseName string, port int) string {
	return "file:" + databaseName
}

func (t *SQLiteTemplate) DefaultPort() int {
	return 0
}

func (t *SQLiteTemplate) GetPlaceholders() sql.PlaceholderMap {
	return sql.NewPositionalPlaceholders()
}

func (t *SQLiteTemplate) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Like is case-insensitive for ASCII in SQLite.
func (t *SQLiteTemplate) Like(column string, c *schema.Column, placeholder string) string {
	return fmt.Sprintf(`%s LIKE %s ESCAPE '\'`, column, placeholder)
}

func (t *SQLiteTemplate) Arg(v interface{}) interface{} {
	return sql.TimeAsString(v)
}

func (t *SQLiteTemplate) ColumnDefinition(c *schema.Column) string {
	var typ string
	switch c.Type {
	case schema.Integer:
		typ = "INTEGER"
	case schema.Float:
		typ = "REAL"
	case schema.Datetime:
		typ = "DATETIME"
	default:
		typ = "TEXT"
	}
	if c.Primary {
		typ += " PRIMARY KEY"
		if c.Type == schema.Integer {
			typ += " AUTOINCREMENT"
		}
	}
	return t.QuoteIdentifier(c.Name) + " " + typ
}

func (t *SQLiteTemplate) Returning() bool {
	return false
}
