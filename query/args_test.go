package query

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/dbquery/schema"
)

var customers = schema.MustNewTable("edd_customers", "c",
	&schema.Column{Name: "id", Type: schema.Integer, Primary: true, Sortable: true, In: true, NotIn: true},
	&schema.Column{Name: "user_id", Type: schema.Integer, In: true, NotIn: true},
	&schema.Column{Name: "email", Searchable: true, Sortable: true, In: true, NotIn: true},
	&schema.Column{Name: "name", Searchable: true, Sortable: true},
	&schema.Column{Name: "status", In: true},
	&schema.Column{Name: "purchase_value", Type: schema.Float, Sortable: true},
	&schema.Column{Name: "date_created", Type: schema.Datetime, Sortable: true, DateQuery: true, Created: true},
)

func TestParseArgs_Filters(t *testing.T) {
	tests := []struct {
		name string
		args Args
		want []Filter
	}{
		{
			name: "literal equality is coerced",
			args: Args{"user_id": "12"},
			want: []Filter{{Column: "user_id", Kind: FilterEquals, Values: []interface{}{int64(12)}}},
		},
		{
			name: "literal string with a comma stays whole",
			args: Args{"name": "Smith, John"},
			want: []Filter{{Column: "name", Kind: FilterEquals, Values: []interface{}{"Smith, John"}}},
		},
		{
			name: "list under the plain name is a set",
			args: Args{"id": []int{1, 2}},
			want: []Filter{{Column: "id", Kind: FilterIn, Values: []interface{}{int64(1), int64(2)}}},
		},
		{
			name: "in and not in",
			args: Args{"id__in": []interface{}{"5", 2}, "email__not_in": "a@example.com, b@example.com"},
			want: []Filter{
				{Column: "id", Kind: FilterIn, Values: []interface{}{int64(5), int64(2)}},
				{Column: "email", Kind: FilterNotIn, Values: []interface{}{"a@example.com", "b@example.com"}},
			},
		},
		{
			name: "in on an unsupported column is ignored",
			args: Args{"name__in": []string{"a"}, "status__not_in": []string{"active"}},
			want: nil,
		},
		{
			name: "empty lists are ignored",
			args: Args{"id__in": []int{}, "user_id__not_in": ""},
			want: nil,
		},
		{
			name: "unknown keys are ignored",
			args: Args{"nope": 1, "nope__in": []int{1}},
			want: nil,
		},
		{
			name: "date query",
			args: Args{"date_created_query": map[string]interface{}{"year": 2020}},
			want: []Filter{{Column: "date_created", Kind: FilterDateRange, Date: []DateClause{{Year: 2020}}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, err := ParseArgs(customers, tt.args, Defaults{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, params.Filters)
		})
	}
}

func TestParseArgs_Reserved(t *testing.T) {
	defaults := Defaults{Limit: 20, OrderBy: "id", Order: Descending}

	params, err := ParseArgs(customers, Args{}, defaults)
	require.NoError(t, err)
	assert.Equal(t, 20, params.Limit)
	assert.Equal(t, 0, params.Offset)
	assert.Equal(t, Descending, params.Order)
	assert.Equal(t, []OrderKey{{Name: "id"}}, params.OrderBy)
	assert.False(t, params.Count)

	params, err = ParseArgs(customers, Args{
		"search":         "foo",
		"search_columns": []string{"email"},
		"order":          "asc",
		"orderby":        "name",
		"number":         5,
		"offset":         "10",
		"count":          "true",
		"fields":         "ids",
		"no_found_rows":  true,
	}, defaults)
	require.NoError(t, err)
	assert.Equal(t, "foo", params.Search)
	assert.Equal(t, []string{"email"}, params.SearchColumns)
	assert.Equal(t, Ascending, params.Order)
	assert.Equal(t, []OrderKey{{Name: "name"}}, params.OrderBy)
	assert.Equal(t, 5, params.Limit)
	assert.Equal(t, 10, params.Offset)
	assert.True(t, params.Count)
	assert.True(t, params.IDsOnly)
	assert.True(t, params.NoFoundRows)

	// An empty order is as good as no order at all.
	params, err = ParseArgs(customers, Args{"order": "", "orderby": ""}, defaults)
	require.NoError(t, err)
	assert.Equal(t, Descending, params.Order)
	assert.Equal(t, []OrderKey{{Name: "id"}}, params.OrderBy)
}

func TestParseArgs_Limit(t *testing.T) {
	tests := []struct {
		name    string
		value   interface{}
		want    int
		wantErr bool
	}{
		{name: "integer", value: 7, want: 7},
		{name: "string", value: "7", want: 7},
		{name: "zero", value: 0, want: 0},
		{name: "negative", value: -1, want: 0},
		{name: "false", value: false, want: 0},
		{name: "all", value: "all", want: 0},
		{name: "nil", value: nil, want: 0},
		{name: "garbage", value: "seven", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, err := ParseArgs(customers, Args{"limit": tt.value}, Defaults{Limit: 20})
			if tt.wantErr {
				assert.Equal(t, ErrMalformedArgument, errors.Cause(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, params.Limit)
		})
	}
}

func TestParseArgs_Errors(t *testing.T) {
	tests := []struct {
		name string
		args Args
	}{
		{name: "uncoercible integer", args: Args{"user_id": "twelve"}},
		{name: "uncoercible list member", args: Args{"id__in": []string{"1", "x"}}},
		{name: "negative offset", args: Args{"offset": -3}},
		{name: "count not a boolean", args: Args{"count": "maybe"}},
		{name: "where not a formula", args: Args{"where": "id = 1"}},
		{name: "date query not a map", args: Args{"date_created_query": 5}},
		{name: "orderby of unsupported type", args: Args{"orderby": 3.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseArgs(customers, tt.args, Defaults{})
			assert.Equal(t, ErrMalformedArgument, errors.Cause(err))
		})
	}
}

func TestParseArgs_Where(t *testing.T) {
	where := NewPredicate("status", Equal, "active")
	params, err := ParseArgs(customers, Args{"where": where}, Defaults{})
	require.NoError(t, err)
	assert.Equal(t, where, params.Where)

	now := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, `status = "active"`, BuildWhere(customers, params, now).String())
}
