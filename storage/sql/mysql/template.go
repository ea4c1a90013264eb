package mysql

import (
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/storefront/dbquery/schema"
	"github.com/storefront/dbquery/storage/sql"
)

type MySQLTemplate struct{}

var Template = &MySQLTemplate{}

func (t *MySQLTemplate) DriverName() string {
	return "mysql"
}

func (t *MySQLTemplate) DSN(user, password, host, databaseName string, port int) string {
	cfg := mysql.NewConfig()
	cfg.User = user
	cfg.Passwd = password
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", host, port)
	cfg.DBName = databaseName

	return cfg.FormatDSN()
}

func (t *MySQLTemplate) DefaultPort() int {
	return 3306
}

func (t *MySQLTemplate) GetPlaceholders() sql.PlaceholderMap {
	return sql.NewPositionalPlaceholders()
}

func (t *MySQLTemplate) QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// Like relies on the default collation being case-insensitive.
// The escape character has to be escaped itself inside a MySQL string literal.
func (t *MySQLTemplate) Like(column string, c *schema.Column, placeholder string) string {
	return fmt.Sprintf(`%s LIKE %s ESCAPE '\\'`, column, placeholder)
}

func (t *MySQLTemplate) Arg(v interface{}) interface{} {
	return sql.TimeAsString(v)
}

func (t *MySQLTemplate) ColumnDefinition(c *schema.Column) string {
	var typ string
	switch c.Type {
	case schema.Integer:
		typ = "BIGINT"
		if c.Primary {
			typ = "BIGINT NOT NULL AUTO_INCREMENT"
		}
	case schema.Float:
		typ = "DOUBLE"
	case schema.Datetime:
		typ = "DATETIME"
	default:
		// Only bounded strings can be indexed.
		typ = "LONGTEXT"
		if c.Primary || c.CacheKey || c.Sortable || c.In || c.NotIn {
			typ = "VARCHAR(255)"
		}
	}
	if c.Primary {
		typ += " PRIMARY KEY"
	}
	return t.QuoteIdentifier(c.Name) + " " + typ
}

func (t *MySQLTemplate) Returning() bool {
	return false
}
