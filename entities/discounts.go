package entities

import (
	"time"

	"github.com/storefront/dbquery/collection"
	"github.com/storefront/dbquery/query"
	"github.com/storefront/dbquery/schema"
	"github.com/storefront/dbquery/storage"
)

var Discounts = Entry{
	Name: "discounts",
	Table: schema.MustNewTable("edd_adjustments", "a",
		primary(),
		&schema.Column{Name: "parent", Type: schema.Integer, Sortable: true, In: true, NotIn: true},
		&schema.Column{Name: "name", Searchable: true, Sortable: true},
		&schema.Column{Name: "code", Searchable: true, Sortable: true, In: true, NotIn: true, CacheKey: true},
		&schema.Column{Name: "status", Sortable: true, In: true, NotIn: true},
		&schema.Column{Name: "type", Sortable: true, In: true, NotIn: true},
		&schema.Column{Name: "scope", Sortable: true, In: true, NotIn: true},
		&schema.Column{Name: "amount_type", Sortable: true, In: true, NotIn: true},
		&schema.Column{Name: "amount", Type: schema.Float, Sortable: true},
		&schema.Column{Name: "description", Searchable: true},
		&schema.Column{Name: "max_uses", Type: schema.Integer, Sortable: true},
		&schema.Column{Name: "use_count", Type: schema.Integer, Sortable: true},
		&schema.Column{Name: "once_per_customer", Type: schema.Integer},
		&schema.Column{Name: "min_charge_amount", Type: schema.Float, Sortable: true},
		&schema.Column{Name: "start_date", Type: schema.Datetime, Sortable: true, DateQuery: true},
		&schema.Column{Name: "end_date", Type: schema.Datetime, Sortable: true, DateQuery: true},
		dateCreated(),
		dateModified(),
	),
	PerPage: 30,
	OrderBy: "id",
	Order:   query.Descending,
}

type Discount struct {
	ID              int64
	Parent          int64
	Name            string
	Code            string
	Status          string
	Type            string
	Scope           string
	AmountType      string
	Amount          float64
	Description     string
	MaxUses         int64
	UseCount        int64
	OncePerCustomer bool
	MinChargeAmount float64
	StartDate       *time.Time
	EndDate         *time.Time
	DateCreated     time.Time
	DateModified    time.Time
}

// Active reports whether the discount can be applied at the given time.
func (d *Discount) Active(at time.Time) bool {
	if d.Status != "active" {
		return false
	}
	if d.StartDate != nil && at.Before(*d.StartDate) {
		return false
	}
	if d.EndDate != nil && at.After(*d.EndDate) {
		return false
	}
	return d.MaxUses == 0 || d.UseCount < d.MaxUses
}

func ScanDiscount(row storage.Row) (*Discount, error) {
	discountID, err := id(row)
	if err != nil {
		return nil, err
	}
	return &Discount{
		ID:              discountID,
		Parent:          integer(row, "parent"),
		Name:            text(row, "name"),
		Code:            text(row, "code"),
		Status:          text(row, "status"),
		Type:            text(row, "type"),
		Scope:           text(row, "scope"),
		AmountType:      text(row, "amount_type"),
		Amount:          float(row, "amount"),
		Description:     text(row, "description"),
		MaxUses:         integer(row, "max_uses"),
		UseCount:        integer(row, "use_count"),
		OncePerCustomer: integer(row, "once_per_customer") != 0,
		MinChargeAmount: float(row, "min_charge_amount"),
		StartDate:       optionalDatetime(row, "start_date"),
		EndDate:         optionalDatetime(row, "end_date"),
		DateCreated:     datetime(row, "date_created"),
		DateModified:    datetime(row, "date_modified"),
	}, nil
}

func NewDiscounts(s storage.Storage, opts ...collection.Option) *collection.Collection[*Discount] {
	return collection.New(definition(Discounts, ScanDiscount), s, opts...)
}
