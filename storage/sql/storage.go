package sql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/storefront/dbquery/query"
	"github.com/storefront/dbquery/schema"
	"github.com/storefront/dbquery/storage"
)

const DefaultBatchSize = 1000

// Storage runs statements against a database/sql connection pool.
type Storage struct {
	db        *sql.DB
	template  Template
	batchSize int
}

type Option func(*Storage)

// WithBatchSize sets how many primary keys go into a single row fetch.
func WithBatchSize(n int) Option {
	return func(s *Storage) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

func New(db *sql.DB, template Template, opts ...Option) *Storage {
	s := &Storage{
		db:        db,
		template:  template,
		batchSize: DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func Open(template Template, dsn string, opts ...Option) (*Storage, error) {
	db, err := sql.Open(template.DriverName(), dsn)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't connect to the database")
	}
	return New(db, template, opts...), nil
}

func (s *Storage) DB() *sql.DB {
	return s.db
}

func (s *Storage) SelectIDs(ctx context.Context, stmt *query.Statement) ([]interface{}, error) {
	q, args := SelectToSQL(stmt, s.template)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't query %s", stmt.Table.Name)
	}
	defer rows.Close()

	primary := stmt.Table.Primary()
	ids := make([]interface{}, 0)
	for rows.Next() {
		var raw interface{}
		if err := rows.Scan(&raw); err != nil {
			return nil, errors.Wrap(err, "couldn't scan primary key")
		}
		id, err := primary.Coerce(raw)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "couldn't read rows of %s", stmt.Table.Name)
	}

	return ids, nil
}

func (s *Storage) Count(ctx context.Context, table *schema.Table, where query.Formula) (int, error) {
	q, args := CountToSQL(table, where, s.template)

	var count int
	if err := s.db.QueryRowContext(ctx, q, args...).Scan(&count); err != nil {
		return 0, errors.Wrapf(err, "couldn't count rows of %s", table.Name)
	}
	return count, nil
}

func (s *Storage) FetchRows(ctx context.Context, table *schema.Table, ids []interface{}) ([]storage.Row, error) {
	out := make([]storage.Row, 0, len(ids))
	for start := 0; start < len(ids); start += s.batchSize {
		end := start + s.batchSize
		if end > len(ids) {
			end = len(ids)
		}
		batch, err := s.fetchBatch(ctx, table, ids[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, batch...)
	}
	return out, nil
}

func (s *Storage) fetchBatch(ctx context.Context, table *schema.Table, ids []interface{}) ([]storage.Row, error) {
	t := newTranslator(table, s.template)

	columns := make([]string, len(table.Columns))
	for i, c := range table.Columns {
		columns[i] = t.column(c.Name)
	}
	where := t.FormulaToSQL(query.NewSetPredicate(table.Primary().Name, query.In, ids))
	q := fmt.Sprintf("SELECT %s FROM %s %s WHERE %s",
		strings.Join(columns, ", "), s.template.QuoteIdentifier(table.Name), table.Alias, where)

	rows, err := s.db.QueryContext(ctx, q, t.pm.Values()...)
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't fetch rows of %s", table.Name)
	}
	defer rows.Close()

	out := make([]storage.Row, 0, len(ids))
	for rows.Next() {
		values := make([]interface{}, len(table.Columns))
		pointers := make([]interface{}, len(table.Columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, errors.Wrap(err, "couldn't scan row")
		}

		raw := make(map[string]interface{}, len(table.Columns))
		for i, c := range table.Columns {
			raw[c.Name] = values[i]
		}
		row, err := storage.NormalizeRow(table, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "couldn't read rows of %s", table.Name)
	}

	return out, nil
}

// knownColumns returns the row's known columns in table order, so generated SQL is stable.
func knownColumns(table *schema.Table, row storage.Row) []*schema.Column {
	var out []*schema.Column
	for _, c := range table.Columns {
		if _, ok := row[c.Name]; ok {
			out = append(out, c)
		}
	}
	return out
}

func (s *Storage) Insert(ctx context.Context, table *schema.Table, row storage.Row) (interface{}, error) {
	columns := knownColumns(table, row)
	if len(columns) == 0 {
		return nil, errors.Errorf("couldn't insert into %s: row has no known columns", table.Name)
	}

	pm := s.template.GetPlaceholders()
	names := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	for i, c := range columns {
		names[i] = s.template.QuoteIdentifier(c.Name)
		placeholders[i] = pm.AddPlaceholder(s.template.Arg(row[c.Name]))
	}
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		s.template.QuoteIdentifier(table.Name), strings.Join(names, ", "), strings.Join(placeholders, ", "))

	primary := table.Primary()
	if id, ok := row[primary.Name]; ok && id != nil {
		if _, err := s.db.ExecContext(ctx, q, pm.Values()...); err != nil {
			return nil, errors.Wrapf(err, "couldn't insert into %s", table.Name)
		}
		return id, nil
	}

	if s.template.Returning() {
		var raw interface{}
		q += " RETURNING " + s.template.QuoteIdentifier(primary.Name)
		if err := s.db.QueryRowContext(ctx, q, pm.Values()...).Scan(&raw); err != nil {
			return nil, errors.Wrapf(err, "couldn't insert into %s", table.Name)
		}
		return primary.Coerce(raw)
	}

	res, err := s.db.ExecContext(ctx, q, pm.Values()...)
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't insert into %s", table.Name)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, errors.Wrap(err, "couldn't get generated primary key")
	}
	return primary.Coerce(id)
}

func (s *Storage) Update(ctx context.Context, table *schema.Table, id interface{}, row storage.Row) error {
	primary := table.Primary()
	var columns []*schema.Column
	for _, c := range knownColumns(table, row) {
		if c.Name != primary.Name {
			columns = append(columns, c)
		}
	}
	if len(columns) == 0 {
		return s.mustExist(ctx, table, id)
	}

	pm := s.template.GetPlaceholders()
	assignments := make([]string, len(columns))
	for i, c := range columns {
		assignments[i] = fmt.Sprintf("%s = %s", s.template.QuoteIdentifier(c.Name), pm.AddPlaceholder(s.template.Arg(row[c.Name])))
	}
	q := fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s",
		s.template.QuoteIdentifier(table.Name), strings.Join(assignments, ", "),
		s.template.QuoteIdentifier(primary.Name), pm.AddPlaceholder(s.template.Arg(id)))

	res, err := s.db.ExecContext(ctx, q, pm.Values()...)
	if err != nil {
		return errors.Wrapf(err, "couldn't update %v in %s", id, table.Name)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "couldn't get affected row count")
	}
	if affected == 0 {
		// Some databases only count rows which actually changed.
		return s.mustExist(ctx, table, id)
	}
	return nil
}

func (s *Storage) mustExist(ctx context.Context, table *schema.Table, id interface{}) error {
	count, err := s.Count(ctx, table, query.NewPredicate(table.Primary().Name, query.Equal, id))
	if err != nil {
		return err
	}
	if count == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Storage) Delete(ctx context.Context, table *schema.Table, id interface{}) error {
	pm := s.template.GetPlaceholders()
	q := fmt.Sprintf("DELETE FROM %s WHERE %s = %s",
		s.template.QuoteIdentifier(table.Name), s.template.QuoteIdentifier(table.Primary().Name), pm.AddPlaceholder(s.template.Arg(id)))

	res, err := s.db.ExecContext(ctx, q, pm.Values()...)
	if err != nil {
		return errors.Wrapf(err, "couldn't delete %v from %s", id, table.Name)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "couldn't get affected row count")
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Storage) CreateTable(ctx context.Context, table *schema.Table) error {
	definitions := make([]string, len(table.Columns))
	for i, c := range table.Columns {
		definitions[i] = s.template.ColumnDefinition(c)
	}
	q := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", s.template.QuoteIdentifier(table.Name), strings.Join(definitions, ", "))

	if _, err := s.db.ExecContext(ctx, q); err != nil {
		return errors.Wrapf(err, "couldn't create table %s", table.Name)
	}
	return nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}
