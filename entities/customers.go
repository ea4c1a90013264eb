package entities

import (
	"time"

	"github.com/storefront/dbquery/collection"
	"github.com/storefront/dbquery/query"
	"github.com/storefront/dbquery/schema"
	"github.com/storefront/dbquery/storage"
)

var Customers = Entry{
	Name: "customers",
	Table: schema.MustNewTable("edd_customers", "c",
		primary(),
		&schema.Column{Name: "user_id", Type: schema.Integer, In: true, NotIn: true},
		&schema.Column{Name: "email", Searchable: true, Sortable: true, In: true, NotIn: true, CacheKey: true},
		&schema.Column{Name: "name", Searchable: true, Sortable: true, In: true, NotIn: true},
		&schema.Column{Name: "status", Sortable: true, In: true, NotIn: true},
		&schema.Column{Name: "purchase_value", Type: schema.Float, Sortable: true},
		&schema.Column{Name: "purchase_count", Type: schema.Integer, Sortable: true},
		&schema.Column{Name: "uuid", CacheKey: true},
		dateCreated(),
		dateModified(),
	),
	PerPage: 20,
	OrderBy: "id",
	Order:   query.Descending,
}

type Customer struct {
	ID            int64
	UserID        int64
	Email         string
	Name          string
	Status        string
	PurchaseValue float64
	PurchaseCount int64
	UUID          string
	DateCreated   time.Time
	DateModified  time.Time
}

func ScanCustomer(row storage.Row) (*Customer, error) {
	customerID, err := id(row)
	if err != nil {
		return nil, err
	}
	return &Customer{
		ID:            customerID,
		UserID:        integer(row, "user_id"),
		Email:         text(row, "email"),
		Name:          text(row, "name"),
		Status:        text(row, "status"),
		PurchaseValue: float(row, "purchase_value"),
		PurchaseCount: integer(row, "purchase_count"),
		UUID:          text(row, "uuid"),
		DateCreated:   datetime(row, "date_created"),
		DateModified:  datetime(row, "date_modified"),
	}, nil
}

func NewCustomers(s storage.Storage, opts ...collection.Option) *collection.Collection[*Customer] {
	return collection.New(definition(Customers, ScanCustomer), s, opts...)
}

var CustomerAddresses = Entry{
	Name: "customer_addresses",
	Table: schema.MustNewTable("edd_customer_addresses", "ca",
		primary(),
		&schema.Column{Name: "customer_id", Type: schema.Integer, Sortable: true, In: true, NotIn: true},
		&schema.Column{Name: "type", Sortable: true, In: true, NotIn: true},
		&schema.Column{Name: "status", Sortable: true, In: true, NotIn: true},
		&schema.Column{Name: "name", Searchable: true, Sortable: true},
		&schema.Column{Name: "address", Searchable: true},
		&schema.Column{Name: "address2", Searchable: true},
		&schema.Column{Name: "city", Searchable: true, Sortable: true, In: true, NotIn: true},
		&schema.Column{Name: "region", Searchable: true, Sortable: true, In: true, NotIn: true},
		&schema.Column{Name: "postal_code", Searchable: true, Sortable: true, In: true, NotIn: true},
		&schema.Column{Name: "country", Searchable: true, Sortable: true, In: true, NotIn: true},
		dateCreated(),
		dateModified(),
	),
	PerPage: 20,
	OrderBy: "id",
	Order:   query.Descending,
}

type CustomerAddress struct {
	ID           int64
	CustomerID   int64
	Type         string
	Status       string
	Name         string
	Address      string
	Address2     string
	City         string
	Region       string
	PostalCode   string
	Country      string
	DateCreated  time.Time
	DateModified time.Time
}

func ScanCustomerAddress(row storage.Row) (*CustomerAddress, error) {
	addressID, err := id(row)
	if err != nil {
		return nil, err
	}
	return &CustomerAddress{
		ID:           addressID,
		CustomerID:   integer(row, "customer_id"),
		Type:         text(row, "type"),
		Status:       text(row, "status"),
		Name:         text(row, "name"),
		Address:      text(row, "address"),
		Address2:     text(row, "address2"),
		City:         text(row, "city"),
		Region:       text(row, "region"),
		PostalCode:   text(row, "postal_code"),
		Country:      text(row, "country"),
		DateCreated:  datetime(row, "date_created"),
		DateModified: datetime(row, "date_modified"),
	}, nil
}

func NewCustomerAddresses(s storage.Storage, opts ...collection.Option) *collection.Collection[*CustomerAddress] {
	return collection.New(definition(CustomerAddresses, ScanCustomerAddress), s, opts...)
}
