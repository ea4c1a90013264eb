package entities

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cachememory "github.com/storefront/dbquery/cache/memory"
	"github.com/storefront/dbquery/collection"
	"github.com/storefront/dbquery/query"
	"github.com/storefront/dbquery/storage"
	"github.com/storefront/dbquery/storage/memory"
)

var now = time.Date(2022, 3, 4, 5, 6, 7, 0, time.UTC)

func options() []collection.Option {
	return []collection.Option{
		collection.WithCache(cachememory.New()),
		collection.WithClock(func() time.Time { return now }),
	}
}

func TestAll(t *testing.T) {
	names := make(map[string]bool)
	tables := make(map[string]bool)
	for _, e := range All() {
		assert.False(t, names[e.Name], "duplicate collection %s", e.Name)
		assert.False(t, tables[e.Table.Name], "duplicate table %s", e.Table.Name)
		names[e.Name] = true
		tables[e.Table.Name] = true

		_, ok := e.Table.Column(e.OrderBy)
		assert.True(t, ok, "default order column of %s", e.Name)
		assert.Equal(t, "id", e.Table.Primary().Name)

		found, ok := Find(e.Name)
		require.True(t, ok)
		assert.Equal(t, e.Table, found.Table)
		found, ok = Find(e.Table.Name)
		require.True(t, ok)
		assert.Equal(t, e.Name, found.Name)
	}

	_, ok := Find("subscriptions")
	assert.False(t, ok)
}

func TestCustomers(t *testing.T) {
	ctx := context.Background()
	customers := NewCustomers(memory.New(), options()...)
	require.NoError(t, customers.Install(ctx))

	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		_, err := customers.Add(ctx, map[string]interface{}{"email": email, "status": "active", "purchase_value": "9.99"})
		require.NoError(t, err)
	}

	// Newest first by default, 20 per page.
	result, err := customers.Query(ctx, query.Args{})
	require.NoError(t, err)
	require.Len(t, result.Items, 3)
	assert.Equal(t, int64(3), result.Items[0].ID)
	assert.Equal(t, 3, result.Found)
	assert.Equal(t, 1, result.Pages)

	customer, ok, err := customers.GetBy(ctx, "email", "b@example.com")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, &Customer{
		ID:            2,
		Email:         "b@example.com",
		Status:        "active",
		PurchaseValue: 9.99,
		DateCreated:   now,
		DateModified:  now,
	}, customer)
}

func TestOrders(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	orders := NewOrders(s, options()...)
	items := NewOrderItems(s, options()...)
	require.NoError(t, orders.Install(ctx))
	require.NoError(t, items.Install(ctx))

	completed := now.Add(-time.Hour)
	orderID, err := orders.Add(ctx, map[string]interface{}{
		"order_number":   "EDD-1",
		"status":         "complete",
		"payment_key":    "key-1",
		"total":          30,
		"date_completed": completed,
	})
	require.NoError(t, err)
	_, err = orders.Add(ctx, map[string]interface{}{"order_number": "EDD-2", "status": "pending"})
	require.NoError(t, err)

	for i, name := range []string{"Second", "First"} {
		_, err := items.Add(ctx, map[string]interface{}{
			"order_id":     orderID,
			"product_name": name,
			"cart_index":   1 - i,
			"quantity":     1,
			"amount":       15,
		})
		require.NoError(t, err)
	}

	order, ok, err := orders.GetBy(ctx, "payment_key", "key-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "EDD-1", order.OrderNumber)
	assert.Equal(t, 30.0, order.Total)
	require.NotNil(t, order.DateCompleted)
	assert.Equal(t, completed, *order.DateCompleted)
	assert.Nil(t, order.DateRefundable)

	pending, err := orders.Query(ctx, query.Args{"status__not_in": []string{"complete"}})
	require.NoError(t, err)
	require.Len(t, pending.Items, 1)
	assert.Equal(t, "EDD-2", pending.Items[0].OrderNumber)
	assert.Nil(t, pending.Items[0].DateCompleted)

	// Cart order by default.
	cart, err := items.Query(ctx, query.Args{"order_id": orderID})
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)
	assert.Equal(t, "First", cart.Items[0].ProductName)
	assert.Equal(t, "Second", cart.Items[1].ProductName)
}

func TestOrderItems_UnknownOrderByKeepsDefaultOrder(t *testing.T) {
	ctx := context.Background()
	items := NewOrderItems(memory.New(), options()...)
	require.NoError(t, items.Install(ctx))
	for _, cartIndex := range []int{3, 1, 2} {
		_, err := items.Add(ctx, map[string]interface{}{"order_id": 1, "cart_index": cartIndex})
		require.NoError(t, err)
	}

	tests := []query.Args{
		{"orderby": "not_a_real_column"},
		{"orderby": "cart_index__in"},
		{"orderby": "order_id__in", "order": "ASC"},
	}
	want, err := items.IDs(ctx, query.Args{})
	require.NoError(t, err)
	assert.Equal(t, []interface{}{int64(2), int64(3), int64(1)}, want)
	for _, args := range tests {
		got, err := items.IDs(ctx, args)
		require.NoError(t, err)
		assert.Equal(t, want, got, "%v", args)
	}
}

func TestDiscounts(t *testing.T) {
	ctx := context.Background()
	discounts := NewDiscounts(memory.New(), options()...)
	require.NoError(t, discounts.Install(ctx))

	_, err := discounts.Add(ctx, map[string]interface{}{
		"code":              "SUMMER",
		"status":            "active",
		"amount":            10,
		"max_uses":          2,
		"use_count":         1,
		"once_per_customer": 1,
		"end_date":          now.Add(24 * time.Hour),
	})
	require.NoError(t, err)

	discount, ok, err := discounts.GetBy(ctx, "code", "SUMMER")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, discount.OncePerCustomer)
	assert.Nil(t, discount.StartDate)

	tests := []struct {
		name   string
		modify func(d Discount) Discount
		at     time.Time
		want   bool
	}{
		{name: "active", modify: func(d Discount) Discount { return d }, at: now, want: true},
		{name: "expired", modify: func(d Discount) Discount { return d }, at: now.Add(48 * time.Hour), want: false},
		{name: "inactive", modify: func(d Discount) Discount { d.Status = "inactive"; return d }, at: now, want: false},
		{name: "used up", modify: func(d Discount) Discount { d.UseCount = 2; return d }, at: now, want: false},
		{name: "unlimited uses", modify: func(d Discount) Discount { d.MaxUses, d.UseCount = 0, 100; return d }, at: now, want: true},
		{name: "not started", modify: func(d Discount) Discount {
			start := now.Add(time.Hour)
			d.StartDate = &start
			return d
		}, at: now, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := tt.modify(*discount)
			assert.Equal(t, tt.want, d.Active(tt.at))
		})
	}
}

func TestNotesAndLogs(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	notes := NewNotes(s, options()...)
	logs := Logs.Rows(s, options()...)
	require.NoError(t, notes.Install(ctx))
	require.NoError(t, logs.Install(ctx))

	for _, content := range []string{"Refund issued", "Customer called", "Refund reverted"} {
		_, err := notes.Add(ctx, map[string]interface{}{"object_id": 7, "object_type": "order", "content": content})
		require.NoError(t, err)
	}
	_, err := logs.Add(ctx, map[string]interface{}{"object_id": 7, "object_type": "order", "type": "gateway_error", "title": "Declined"})
	require.NoError(t, err)

	refunds, err := notes.Query(ctx, query.Args{"search": "refund", "orderby": "id", "order": "ASC"})
	require.NoError(t, err)
	require.Len(t, refunds.Items, 2)
	assert.Equal(t, "Refund issued", refunds.Items[0].Content)
	assert.Equal(t, "Refund reverted", refunds.Items[1].Content)

	rows, err := logs.Query(ctx, query.Args{"object_type": "order", "object_id": "7"})
	require.NoError(t, err)
	require.Len(t, rows.Items, 1)
	assert.Equal(t, storage.Row{
		"id":            int64(1),
		"object_id":     int64(7),
		"object_type":   "order",
		"user_id":       nil,
		"type":          "gateway_error",
		"title":         "Declined",
		"content":       nil,
		"date_created":  now,
		"date_modified": now,
	}, rows.Items[0])
}

func TestScan_RequiresID(t *testing.T) {
	_, err := ScanCustomer(storage.Row{"email": "a@example.com"})
	assert.Error(t, err)
	_, err = ScanNote(storage.Row{"id": "1"})
	assert.Error(t, err)
}
