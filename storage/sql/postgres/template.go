package postgres

import (
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/stdlib"

	"github.com/storefront/dbquery/schema"
	"github.com/storefront/dbquery/storage/sql"
)

// A structure that stores the arguments in $n order
// that will be later passed to the prepared query
type postgresPlaceholders struct {
	PlaceholderToValue map[string]interface{}
	Counter            int
}

func newPostgresPlaceholders() *postgresPlaceholders {
	return &postgresPlaceholders{
		PlaceholderToValue: make(map[string]interface{}),
		Counter:            1,
	}
}

func (pms *postgresPlaceholders) AddPlaceholder(value interface{}) string {
	placeholder := fmt.Sprintf("$%d", pms.Counter)
	pms.PlaceholderToValue[placeholder] = value
	pms.Counter++

	return placeholder
}

func (pms *postgresPlaceholders) Values() []interface{} {
	result := make([]interface{}, pms.Counter-1)

	for index := 1; index < pms.Counter; index++ {
		result[index-1] = pms.PlaceholderToValue[fmt.Sprintf("$%d", index)]
	}

	return result
}

type PostgresTemplate struct{}

var Template = &PostgresTemplate{}

func (t *PostgresTemplate) DriverName() string {
	return "pgx"
}

func (t *PostgresTemplate) DSN(user, password, host, databaseName string, port int) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable", host, port, user, password, databaseName)
}

func (t *PostgresTemplate) DefaultPort() int {
	return 5432
}

func (t *PostgresTemplate) GetPlaceholders() sql.PlaceholderMap {
	return newPostgresPlaceholders()
}

func (t *PostgresTemplate) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Like casts non-text columns, since postgres has no implicit conversion for ILIKE.
func (t *PostgresTemplate) Like(column string, c *schema.Column, placeholder string) string {
	if c != nil && c.Type != schema.String {
		column = fmt.Sprintf("CAST(%s AS TEXT)", column)
	}
	return fmt.Sprintf(`%s ILIKE %s ESCAPE '\'`, column, placeholder)
}

func (t *PostgresTemplate) Arg(v interface{}) interface{} {
	return v
}

func (t *PostgresTemplate) ColumnDefinition(c *schema.Column) string {
	var typ string
	switch c.Type {
	case schema.Integer:
		typ = "BIGINT"
		if c.Primary {
			typ = "BIGSERIAL"
		}
	case schema.Float:
		typ = "DOUBLE PRECISION"
	case schema.Datetime:
		typ = "TIMESTAMP"
	default:
		typ = "TEXT"
	}
	if c.Primary {
		typ += " PRIMARY KEY"
	}
	return t.QuoteIdentifier(c.Name) + " " + typ
}

func (t *PostgresTemplate) Returning() bool {
	return true
}
