package memory

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/tidwall/btree"

	"github.com/storefront/dbquery/query"
	"github.com/storefront/dbquery/schema"
	"github.com/storefront/dbquery/storage"
)

type record struct {
	id  interface{}
	row storage.Row
}

type table struct {
	schema *schema.Table
	rows   *btree.Generic[*record]
	nextID int64
}

// Storage keeps tables in process memory, each ordered by primary key.
type Storage struct {
	mu     sync.RWMutex
	tables map[string]*table
}

func New() *Storage {
	return &Storage{
		tables: make(map[string]*table),
	}
}

func (s *Storage) CreateTable(ctx context.Context, t *schema.Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tables[t.Name]; ok {
		return nil
	}
	s.tables[t.Name] = &table{
		schema: t,
		rows: btree.NewGenericOptions(func(item, than *record) bool {
			return Compare(item.id, than.id) == -1
		}, btree.Options{
			NoLocks: true,
		}),
	}
	return nil
}

// table must be called with the lock held.
func (s *Storage) table(t *schema.Table) (*table, error) {
	out, ok := s.tables[t.Name]
	if !ok {
		return nil, errors.Errorf("table %s doesn't exist", t.Name)
	}
	return out, nil
}

func (s *Storage) scan(t *table, where query.Formula) ([]*record, error) {
	match, err := compileFormula(where)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't compile filter")
	}

	var out []*record
	t.rows.Scan(func(rec *record) bool {
		if match(rec.row) == yes {
			out = append(out, rec)
		}
		return true
	})
	return out, nil
}

func (s *Storage) SelectIDs(ctx context.Context, stmt *query.Statement) ([]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, err := s.table(stmt.Table)
	if err != nil {
		return nil, err
	}
	records, err := s.scan(t, stmt.Where)
	if err != nil {
		return nil, err
	}
	if len(stmt.Order) > 0 {
		records = orderRecords(records, stmt.Order)
	}

	if stmt.Limit > 0 {
		if stmt.Offset >= len(records) {
			records = nil
		} else {
			records = records[stmt.Offset:]
		}
		if len(records) > stmt.Limit {
			records = records[:stmt.Limit]
		}
	}

	ids := make([]interface{}, len(records))
	for i := range records {
		ids[i] = records[i].id
	}
	return ids, nil
}

func (s *Storage) Count(ctx context.Context, t *schema.Table, where query.Formula) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tbl, err := s.table(t)
	if err != nil {
		return 0, err
	}
	records, err := s.scan(tbl, where)
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

func (s *Storage) FetchRows(ctx context.Context, t *schema.Table, ids []interface{}) ([]storage.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tbl, err := s.table(t)
	if err != nil {
		return nil, err
	}

	out := make([]storage.Row, 0, len(ids))
	for _, id := range ids {
		if rec, ok := tbl.rows.Get(&record{id: id}); ok {
			out = append(out, rec.row.Copy())
		}
	}
	return out, nil
}

func (s *Storage) Insert(ctx context.Context, t *schema.Table, row storage.Row) (interface{}, error) {
	normalized, err := storage.NormalizeRow(t, row)
	if err != nil {
		return nil, err
	}
	if len(normalized) == 0 {
		return nil, errors.Errorf("couldn't insert into %s: row has no known columns", t.Name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tbl, err := s.table(t)
	if err != nil {
		return nil, err
	}

	primary := t.Primary()
	id := normalized[primary.Name]
	switch {
	case id != nil:
		if _, ok := tbl.rows.Get(&record{id: id}); ok {
			return nil, errors.Errorf("couldn't insert into %s: duplicate primary key %v", t.Name, id)
		}
		if n, ok := id.(int64); ok && n > tbl.nextID {
			tbl.nextID = n
		}
	case primary.Type == schema.Integer:
		tbl.nextID++
		id = tbl.nextID
	default:
		return nil, errors.Errorf("couldn't insert into %s: missing primary key %s", t.Name, primary.Name)
	}

	// Columns not given are NULL, like in a database.
	full := make(storage.Row, len(t.Columns))
	for _, c := range t.Columns {
		full[c.Name] = normalized[c.Name]
	}
	full[primary.Name] = id
	tbl.rows.Set(&record{id: id, row: full})

	return id, nil
}

func (s *Storage) Update(ctx context.Context, t *schema.Table, id interface{}, row storage.Row) error {
	normalized, err := storage.NormalizeRow(t, row)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tbl, err := s.table(t)
	if err != nil {
		return err
	}
	rec, ok := tbl.rows.Get(&record{id: id})
	if !ok {
		return storage.ErrNotFound
	}

	updated := rec.row.Copy()
	for k, v := range normalized {
		if k != t.Primary().Name {
			updated[k] = v
		}
	}
	tbl.rows.Set(&record{id: rec.id, row: updated})

	return nil
}

func (s *Storage) Delete(ctx context.Context, t *schema.Table, id interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tbl, err := s.table(t)
	if err != nil {
		return err
	}
	if _, ok := tbl.rows.Delete(&record{id: id}); !ok {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Storage) Close() error {
	return nil
}
