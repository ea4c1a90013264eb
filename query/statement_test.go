package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2021, 6, 15, 12, 0, 0, 0, time.UTC)

func compile(t *testing.T, args Args) (*Statement, *Params) {
	params, err := ParseArgs(customers, args, Defaults{Limit: 20, OrderBy: "id"})
	require.NoError(t, err)
	return Compile(customers, params, now), params
}

func TestBuildWhere(t *testing.T) {
	tests := []struct {
		name string
		args Args
		want string
	}{
		{
			name: "nothing",
			args: Args{},
			want: "",
		},
		{
			name: "single element in degrades to equality",
			args: Args{"user_id__in": []int{7}},
			want: "user_id = 7",
		},
		{
			name: "single element not in degrades to inequality",
			args: Args{"user_id__not_in": []int{7}},
			want: "user_id <> 7",
		},
		{
			name: "sets",
			args: Args{"id__in": []int{1, 2}, "id__not_in": "3,4"},
			want: "(id IN (1, 2)) AND (id NOT IN (3, 4))",
		},
		{
			name: "column filters, search and date ranges",
			args: Args{
				"status":             "active",
				"search":             "foo",
				"search_columns":     "name",
				"date_created_query": map[string]interface{}{"within": "24h"},
			},
			want: `(status = "active") AND (date_created >= '2021-06-14T12:00:00Z') AND (name LIKE "%foo%")`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, _ := compile(t, tt.args)
			if tt.want == "" {
				assert.Nil(t, stmt.Where)
				return
			}
			assert.Equal(t, tt.want, stmt.Where.String())
		})
	}
}

func TestCompile(t *testing.T) {
	stmt, _ := compile(t, Args{"offset": 40})
	assert.Equal(t, 20, stmt.Limit)
	assert.Equal(t, 40, stmt.Offset)
	assert.Equal(t, "SELECT id FROM edd_customers ORDER BY id ASC LIMIT 20 OFFSET 40", stmt.String())

	stmt, _ = compile(t, Args{"offset": 40, "limit": "all", "orderby": false})
	assert.Equal(t, 0, stmt.Limit)
	assert.Equal(t, 0, stmt.Offset)
	assert.Equal(t, "SELECT id FROM edd_customers", stmt.String())
}

func TestDescriptor_Key(t *testing.T) {
	key := func(args Args) string {
		stmt, params := compile(t, args)
		k, err := NewDescriptor(stmt, params).Key()
		require.NoError(t, err)
		return k
	}

	base := key(Args{"status": "active", "id__in": []int{1, 2}, "orderby": "name"})

	// Semantically equal requests share a key.
	assert.Equal(t, base, key(Args{"orderby": "name", "id__in": "1,2", "status": "active"}))
	assert.Equal(t, base, key(Args{"status": "active", "id__in": []int{1, 2}, "orderby": "name", "unrelated": true}))
	assert.Equal(t, base, key(Args{"status": "active", "id__in": []int{1, 2}, "orderby": "name ASC", "limit": 20}))

	// Anything affecting the result changes it.
	assert.NotEqual(t, base, key(Args{"status": "inactive", "id__in": []int{1, 2}, "orderby": "name"}))
	assert.NotEqual(t, base, key(Args{"status": "active", "id__in": []int{1, 2}, "orderby": "email"}))
	assert.NotEqual(t, base, key(Args{"status": "active", "id__in": []int{1, 2}, "orderby": "name", "offset": 20}))
	assert.NotEqual(t, base, key(Args{"status": "active", "id__in": []int{1, 2}, "orderby": "name", "no_found_rows": true}))
	assert.NotEqual(t, base, key(Args{"status": "active", "id__in": []int{1, 2}, "orderby": "name", "count": true}))

	// Counts don't depend on order or paging.
	assert.Equal(t,
		key(Args{"status": "active", "count": true}),
		key(Args{"status": "active", "count": true, "orderby": "email", "order": "DESC", "offset": 60}),
	)

	// Values of different types don't collide.
	assert.NotEqual(t, key(Args{"user_id": 1}), key(Args{"email": "1"}))
}
