package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchPattern(t *testing.T) {
	tests := []struct {
		search string
		want   string
	}{
		{search: "foo", want: "%foo%"},
		{search: "foo*bar", want: "%foo%bar%"},
		{search: "50%_off", want: `%50\%\_off%`},
		{search: `back\slash`, want: `%back\\slash%`},
		{search: "*", want: "%%%"},
	}
	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			assert.Equal(t, tt.want, SearchPattern(tt.search))
		})
	}
}

func TestSearchColumns(t *testing.T) {
	tests := []struct {
		name      string
		requested []string
		want      []string
	}{
		{name: "none requested", requested: nil, want: []string{"email", "name"}},
		{name: "subset", requested: []string{"name"}, want: []string{"name"}},
		{name: "not searchable falls back to all", requested: []string{"status"}, want: []string{"email", "name"}},
		{name: "unknown falls back to all", requested: []string{"not_searchable_column"}, want: []string{"email", "name"}},
		{name: "mixed keeps the searchable ones", requested: []string{"status", "email"}, want: []string{"email"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SearchColumns(customers, tt.requested))
		})
	}
}

func TestCompileSearch(t *testing.T) {
	assert.Nil(t, CompileSearch(customers, "", nil))

	got := CompileSearch(customers, "foo", []string{"not_searchable_column"})
	assert.Equal(t, CompileSearch(customers, "foo", nil), got)
	assert.Equal(t, `(email LIKE "%foo%") OR (name LIKE "%foo%")`, got.String())

	assert.Equal(t, `name LIKE "%foo%"`, CompileSearch(customers, "foo", []string{"name"}).String())
}
