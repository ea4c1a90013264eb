package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDirection(t *testing.T) {
	tests := []struct {
		value interface{}
		want  Direction
	}{
		{value: "DESC", want: Descending},
		{value: " desc ", want: Descending},
		{value: "asc", want: Ascending},
		{value: "sideways", want: Ascending},
		{value: 1, want: Ascending},
		{value: nil, want: Ascending},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseDirection(tt.value), "%v", tt.value)
	}
}

func TestCompileOrder(t *testing.T) {
	tests := []struct {
		name string
		args Args
		want []string
	}{
		{
			name: "default",
			args: Args{},
			want: []string{"id ASC"},
		},
		{
			name: "global order applies to every key without its own",
			args: Args{"orderby": "name", "order": "DESC"},
			want: []string{"name DESC", "id DESC"},
		},
		{
			name: "per key directions in a string",
			args: Args{"orderby": "name DESC, email", "order": "ASC"},
			want: []string{"name DESC", "email ASC", "id ASC"},
		},
		{
			name: "map keys are sorted",
			args: Args{"orderby": map[string]interface{}{"name": "DESC", "email": "ASC"}},
			want: []string{"email ASC", "name DESC", "id ASC"},
		},
		{
			name: "list of strings and maps",
			args: Args{"orderby": []interface{}{"purchase_value", map[string]interface{}{"name": "desc"}}, "order": "desc"},
			want: []string{"purchase_value DESC", "name DESC", "id DESC"},
		},
		{
			name: "unknown column falls back to primary",
			args: Args{"orderby": "not_a_real_column"},
			want: []string{"id ASC"},
		},
		{
			name: "unsortable column falls back to primary",
			args: Args{"orderby": "status", "order": "DESC"},
			want: []string{"id DESC"},
		},
		{
			name: "duplicates are dropped",
			args: Args{"orderby": "name, name DESC, id"},
			want: []string{"name ASC", "id ASC"},
		},
		{
			name: "ordinal order",
			args: Args{"orderby": "id__in", "id__in": []int{5, 2, 9}, "order": "DESC"},
			want: []string{"FIELD(id, 5, 2, 9)", "id DESC"},
		},
		{
			name: "ordinal order without the list falls back to primary",
			args: Args{"orderby": "email__in"},
			want: []string{"id ASC"},
		},
		{
			name: "disabled with false",
			args: Args{"orderby": false},
			want: nil,
		},
		{
			name: "disabled with none",
			args: Args{"orderby": "none"},
			want: nil,
		},
		{
			name: "disabled with an empty list",
			args: Args{"orderby": []string{}},
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, err := ParseArgs(customers, tt.args, Defaults{OrderBy: "id"})
			require.NoError(t, err)

			var got []string
			for _, term := range CompileOrder(customers, params) {
				got = append(got, term.String())
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompileOrder_UnknownColumnMatchesDefault(t *testing.T) {
	withUnknown, err := ParseArgs(customers, Args{"orderby": "not_a_real_column", "order": "DESC"}, Defaults{OrderBy: "id"})
	require.NoError(t, err)
	without, err := ParseArgs(customers, Args{"order": "DESC"}, Defaults{OrderBy: "id"})
	require.NoError(t, err)

	assert.Equal(t, CompileOrder(customers, without), CompileOrder(customers, withUnknown))
}

func TestCompileOrder_FallbackToDefaultKey(t *testing.T) {
	tests := []struct {
		name     string
		defaults Defaults
		args     Args
		want     []string
	}{
		{
			name:     "unknown column",
			defaults: Defaults{OrderBy: "purchase_value", Order: Descending},
			args:     Args{"orderby": "not_a_real_column"},
			want:     []string{"purchase_value DESC", "id DESC"},
		},
		{
			name:     "unsortable column",
			defaults: Defaults{OrderBy: "name"},
			args:     Args{"orderby": "status"},
			want:     []string{"name ASC", "id ASC"},
		},
		{
			name:     "ordinal order without the list",
			defaults: Defaults{OrderBy: "name"},
			args:     Args{"orderby": "email__in"},
			want:     []string{"name ASC", "id ASC"},
		},
		{
			name:     "unsortable default",
			defaults: Defaults{OrderBy: "status"},
			args:     Args{"orderby": "not_a_real_column"},
			want:     []string{"id ASC"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, err := ParseArgs(customers, tt.args, tt.defaults)
			require.NoError(t, err)

			var got []string
			for _, term := range CompileOrder(customers, params) {
				got = append(got, term.String())
			}
			assert.Equal(t, tt.want, got)

			without, err := ParseArgs(customers, Args{}, tt.defaults)
			require.NoError(t, err)
			assert.Equal(t, CompileOrder(customers, without), CompileOrder(customers, params))
		})
	}
}
