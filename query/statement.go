package query

import (
	"fmt"
	"time"

	"github.com/mitchellh/hashstructure"
	"github.com/pkg/errors"

	"github.com/storefront/dbquery/schema"
)

// Statement is a fully resolved request against one table, independent of the backing store.
type Statement struct {
	Table *schema.Table
	// Where is nil when all rows match.
	Where Formula
	// Order is empty when ordering is disabled.
	Order []OrderTerm
	// Limit of 0 means unlimited, in which case Offset is 0 too.
	Limit  int
	Offset int
}

func Compile(table *schema.Table, params *Params, now time.Time) *Statement {
	stmt := &Statement{
		Table: table,
		Where: BuildWhere(table, params, now),
		Order: CompileOrder(table, params),
		Limit: params.Limit,
	}
	if stmt.Limit > 0 {
		stmt.Offset = params.Offset
	}
	return stmt
}

func (s *Statement) String() string {
	out := "SELECT " + s.Table.Primary().Name + " FROM " + s.Table.Name
	if s.Where != nil {
		out += " WHERE " + s.Where.String()
	}
	if len(s.Order) > 0 {
		out += " ORDER BY"
		for i := range s.Order {
			if i > 0 {
				out += ","
			}
			out += " " + s.Order[i].String()
		}
	}
	if s.Limit > 0 {
		out += fmt.Sprintf(" LIMIT %d OFFSET %d", s.Limit, s.Offset)
	}
	return out
}

// Descriptor is the canonical form of everything that affects a result set.
// Semantically equal requests have equal descriptors, whatever order their arguments came in.
type Descriptor struct {
	Table       string
	Where       string
	Order       []string
	Limit       int
	Offset      int
	Count       bool
	NoFoundRows bool
}

// NewDescriptor leaves out what can't change the result: counts ignore ordering and paging.
func NewDescriptor(stmt *Statement, params *Params) Descriptor {
	d := Descriptor{
		Table: stmt.Table.Name,
		Count: params.Count,
	}
	if stmt.Where != nil {
		d.Where = stmt.Where.String()
	}
	if params.Count {
		return d
	}

	d.Order = make([]string, len(stmt.Order))
	for i := range stmt.Order {
		d.Order[i] = stmt.Order[i].String()
	}
	d.Limit = stmt.Limit
	d.Offset = stmt.Offset
	d.NoFoundRows = params.NoFoundRows
	return d
}

func (d Descriptor) Key() (string, error) {
	hash, err := hashstructure.Hash(d, nil)
	if err != nil {
		return "", errors.Wrapf(err, "couldn't hash %+v", d)
	}
	return fmt.Sprintf("%016x", hash), nil
}
