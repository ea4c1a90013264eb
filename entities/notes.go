package entities

import (
	"time"

	"github.com/storefront/dbquery/collection"
	"github.com/storefront/dbquery/query"
	"github.com/storefront/dbquery/schema"
	"github.com/storefront/dbquery/storage"
)

var Notes = Entry{
	Name: "notes",
	Table: schema.MustNewTable("edd_notes", "n",
		primary(),
		&schema.Column{Name: "object_id", Type: schema.Integer, Sortable: true, In: true, NotIn: true},
		&schema.Column{Name: "object_type", Sortable: true, In: true, NotIn: true},
		&schema.Column{Name: "user_id", Type: schema.Integer, Sortable: true, In: true, NotIn: true},
		&schema.Column{Name: "content", Searchable: true, Sortable: true},
		dateCreated(),
		dateModified(),
	),
	PerPage: 20,
	OrderBy: "id",
	Order:   query.Descending,
}

type Note struct {
	ID           int64
	ObjectID     int64
	ObjectType   string
	UserID       int64
	Content      string
	DateCreated  time.Time
	DateModified time.Time
}

func ScanNote(row storage.Row) (*Note, error) {
	noteID, err := id(row)
	if err != nil {
		return nil, err
	}
	return &Note{
		ID:           noteID,
		ObjectID:     integer(row, "object_id"),
		ObjectType:   text(row, "object_type"),
		UserID:       integer(row, "user_id"),
		Content:      text(row, "content"),
		DateCreated:  datetime(row, "date_created"),
		DateModified: datetime(row, "date_modified"),
	}, nil
}

func NewNotes(s storage.Storage, opts ...collection.Option) *collection.Collection[*Note] {
	return collection.New(definition(Notes, ScanNote), s, opts...)
}

var Logs = Entry{
	Name: "logs",
	Table: schema.MustNewTable("edd_logs", "l",
		primary(),
		&schema.Column{Name: "object_id", Type: schema.Integer, Sortable: true, In: true, NotIn: true},
		&schema.Column{Name: "object_type", Sortable: true, In: true, NotIn: true},
		&schema.Column{Name: "user_id", Type: schema.Integer, Sortable: true, In: true, NotIn: true},
		&schema.Column{Name: "type", Sortable: true, In: true, NotIn: true},
		&schema.Column{Name: "title", Searchable: true, Sortable: true},
		&schema.Column{Name: "content", Searchable: true},
		dateCreated(),
		dateModified(),
	),
	PerPage: 30,
	OrderBy: "id",
	Order:   query.Descending,
}

type Log struct {
	ID           int64
	ObjectID     int64
	ObjectType   string
	UserID       int64
	Type         string
	Title        string
	Content      string
	DateCreated  time.Time
	DateModified time.Time
}

func ScanLog(row storage.Row) (*Log, error) {
	logID, err := id(row)
	if err != nil {
		return nil, err
	}
	return &Log{
		ID:           logID,
		ObjectID:     integer(row, "object_id"),
		ObjectType:   text(row, "object_type"),
		UserID:       integer(row, "user_id"),
		Type:         text(row, "type"),
		Title:        text(row, "title"),
		Content:      text(row, "content"),
		DateCreated:  datetime(row, "date_created"),
		DateModified: datetime(row, "date_modified"),
	}, nil
}

func NewLogs(s storage.Storage, opts ...collection.Option) *collection.Collection[*Log] {
	return collection.New(definition(Logs, ScanLog), s, opts...)
}
