package entities

import (
	"time"

	"github.com/storefront/dbquery/collection"
	"github.com/storefront/dbquery/query"
	"github.com/storefront/dbquery/schema"
	"github.com/storefront/dbquery/storage"
)

var Orders = Entry{
	Name: "orders",
	Table: schema.MustNewTable("edd_orders", "o",
		primary(),
		&schema.Column{Name: "parent", Type: schema.Integer, Sortable: true, In: true, NotIn: true},
		&schema.Column{Name: "order_number", Searchable: true, Sortable: true, In: true, NotIn: true},
		&schema.Column{Name: "status", Sortable: true, In: true, NotIn: true},
		&schema.Column{Name: "type", Sortable: true, In: true, NotIn: true},
		&schema.Column{Name: "user_id", Type: schema.Integer, Sortable: true, In: true, NotIn: true},
		&schema.Column{Name: "customer_id", Type: schema.Integer, Sortable: true, In: true, NotIn: true},
		&schema.Column{Name: "email", Searchable: true, Sortable: true, In: true, NotIn: true},
		&schema.Column{Name: "ip", Searchable: true, Sortable: true, In: true, NotIn: true},
		&schema.Column{Name: "gateway", Sortable: true, In: true, NotIn: true},
		&schema.Column{Name: "mode", In: true, NotIn: true},
		&schema.Column{Name: "currency", Sortable: true, In: true, NotIn: true},
		&schema.Column{Name: "payment_key", Searchable: true, CacheKey: true},
		&schema.Column{Name: "subtotal", Type: schema.Float, Sortable: true},
		&schema.Column{Name: "discount", Type: schema.Float, Sortable: true},
		&schema.Column{Name: "tax", Type: schema.Float, Sortable: true},
		&schema.Column{Name: "total", Type: schema.Float, Sortable: true},
		dateCreated(),
		dateModified(),
		&schema.Column{Name: "date_completed", Type: schema.Datetime, Sortable: true, DateQuery: true},
		&schema.Column{Name: "date_refundable", Type: schema.Datetime, Sortable: true, DateQuery: true},
	),
	PerPage: 20,
	OrderBy: "id",
	Order:   query.Descending,
}

type Order struct {
	ID             int64
	Parent         int64
	OrderNumber    string
	Status         string
	Type           string
	UserID         int64
	CustomerID     int64
	Email          string
	IP             string
	Gateway        string
	Mode           string
	Currency       string
	PaymentKey     string
	Subtotal       float64
	Discount       float64
	Tax            float64
	Total          float64
	DateCreated    time.Time
	DateModified   time.Time
	DateCompleted  *time.Time
	DateRefundable *time.Time
}

func ScanOrder(row storage.Row) (*Order, error) {
	orderID, err := id(row)
	if err != nil {
		return nil, err
	}
	return &Order{
		ID:             orderID,
		Parent:         integer(row, "parent"),
		OrderNumber:    text(row, "order_number"),
		Status:         text(row, "status"),
		Type:           text(row, "type"),
		UserID:         integer(row, "user_id"),
		CustomerID:     integer(row, "customer_id"),
		Email:          text(row, "email"),
		IP:             text(row, "ip"),
		Gateway:        text(row, "gateway"),
		Mode:           text(row, "mode"),
		Currency:       text(row, "currency"),
		PaymentKey:     text(row, "payment_key"),
		Subtotal:       float(row, "subtotal"),
		Discount:       float(row, "discount"),
		Tax:            float(row, "tax"),
		Total:          float(row, "total"),
		DateCreated:    datetime(row, "date_created"),
		DateModified:   datetime(row, "date_modified"),
		DateCompleted:  optionalDatetime(row, "date_completed"),
		DateRefundable: optionalDatetime(row, "date_refundable"),
	}, nil
}

func NewOrders(s storage.Storage, opts ...collection.Option) *collection.Collection[*Order] {
	return collection.New(definition(Orders, ScanOrder), s, opts...)
}

var OrderItems = Entry{
	Name: "order_items",
	Table: schema.MustNewTable("edd_order_items", "oi",
		primary(),
		&schema.Column{Name: "parent", Type: schema.Integer, Sortable: true, In: true, NotIn: true},
		&schema.Column{Name: "order_id", Type: schema.Integer, Sortable: true, In: true, NotIn: true},
		&schema.Column{Name: "product_id", Type: schema.Integer, Sortable: true, In: true, NotIn: true},
		&schema.Column{Name: "product_name", Searchable: true, Sortable: true},
		&schema.Column{Name: "price_id", Type: schema.Integer, Sortable: true, In: true, NotIn: true},
		&schema.Column{Name: "cart_index", Type: schema.Integer, Sortable: true},
		&schema.Column{Name: "type", Sortable: true, In: true, NotIn: true},
		&schema.Column{Name: "status", Sortable: true, In: true, NotIn: true},
		&schema.Column{Name: "quantity", Type: schema.Integer, Sortable: true},
		&schema.Column{Name: "amount", Type: schema.Float, Sortable: true},
		&schema.Column{Name: "subtotal", Type: schema.Float, Sortable: true},
		&schema.Column{Name: "discount", Type: schema.Float, Sortable: true},
		&schema.Column{Name: "tax", Type: schema.Float, Sortable: true},
		&schema.Column{Name: "total", Type: schema.Float, Sortable: true},
		dateCreated(),
		dateModified(),
	),
	PerPage: 20,
	OrderBy: "cart_index",
	Order:   query.Ascending,
}

type OrderItem struct {
	ID           int64
	Parent       int64
	OrderID      int64
	ProductID    int64
	ProductName  string
	PriceID      int64
	CartIndex    int64
	Type         string
	Status       string
	Quantity     int64
	Amount       float64
	Subtotal     float64
	Discount     float64
	Tax          float64
	Total        float64
	DateCreated  time.Time
	DateModified time.Time
}

func ScanOrderItem(row storage.Row) (*OrderItem, error) {
	itemID, err := id(row)
	if err != nil {
		return nil, err
	}
	return &OrderItem{
		ID:           itemID,
		Parent:       integer(row, "parent"),
		OrderID:      integer(row, "order_id"),
		ProductID:    integer(row, "product_id"),
		ProductName:  text(row, "product_name"),
		PriceID:      integer(row, "price_id"),
		CartIndex:    integer(row, "cart_index"),
		Type:         text(row, "type"),
		Status:       text(row, "status"),
		Quantity:     integer(row, "quantity"),
		Amount:       float(row, "amount"),
		Subtotal:     float(row, "subtotal"),
		Discount:     float(row, "discount"),
		Tax:          float(row, "tax"),
		Total:        float(row, "total"),
		DateCreated:  datetime(row, "date_created"),
		DateModified: datetime(row, "date_modified"),
	}, nil
}

func NewOrderItems(s storage.Storage, opts ...collection.Option) *collection.Collection[*OrderItem] {
	return collection.New(definition(OrderItems, ScanOrderItem), s, opts...)
}
