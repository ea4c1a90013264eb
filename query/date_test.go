package query

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(year int, month time.Month, day, hour, min, sec int) time.Time {
	return time.Date(year, month, day, hour, min, sec, 0, time.UTC)
}

func TestParseDateQuery(t *testing.T) {
	after := date(2020, 1, 1, 23, 59, 59)
	before := date(2020, 2, 1, 0, 0, 0)
	inclusiveBefore := date(2020, 2, 1, 23, 59, 59)
	exact := date(2020, 3, 4, 5, 6, 7)

	tests := []struct {
		name    string
		value   interface{}
		want    []DateClause
		wantErr bool
	}{
		{
			name:  "exclusive date-only bounds",
			value: map[string]interface{}{"after": "2020-01-01", "before": "2020-02-01"},
			want:  []DateClause{{After: &after, Before: &before}},
		},
		{
			name:  "inclusive date-only bounds cover the whole day",
			value: map[string]interface{}{"after": "2020-01-01", "before": "2020-02-01", "inclusive": true},
			want:  []DateClause{{After: timePtr(date(2020, 1, 1, 0, 0, 0)), Before: &inclusiveBefore, Inclusive: true}},
		},
		{
			name:  "bounds with a time are kept",
			value: map[string]interface{}{"after": "2020-03-04 05:06:07"},
			want:  []DateClause{{After: &exact}},
		},
		{
			name:  "relative",
			value: map[string]interface{}{"within": "72h"},
			want:  []DateClause{{Within: 72 * time.Hour}},
		},
		{
			name:  "list of clauses",
			value: []interface{}{map[string]interface{}{"year": 2020, "month": 2}, map[string]interface{}{"day": 0}},
			want:  []DateClause{{Year: 2020, Month: 2}, {}},
		},
		{name: "month without year", value: map[string]interface{}{"month": 2}, wantErr: true},
		{name: "day without month", value: map[string]interface{}{"year": 2020, "day": 2}, wantErr: true},
		{name: "month out of range", value: map[string]interface{}{"year": 2020, "month": 13}, wantErr: true},
		{name: "bad bound", value: map[string]interface{}{"after": "yesterday"}, wantErr: true},
		{name: "bad within", value: map[string]interface{}{"within": "a while"}, wantErr: true},
		{name: "list of non maps", value: []interface{}{"2020"}, wantErr: true},
		{name: "scalar", value: "2020", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDateQuery(tt.value)
			if tt.wantErr {
				assert.Equal(t, ErrMalformedArgument, errors.Cause(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func TestCompileDateClause(t *testing.T) {
	now := date(2021, 6, 15, 12, 0, 0)
	after := date(2020, 1, 1, 0, 0, 0)
	before := date(2020, 2, 1, 0, 0, 0)

	tests := []struct {
		name   string
		clause DateClause
		want   string
	}{
		{
			name:   "empty",
			clause: DateClause{},
			want:   "<nil>",
		},
		{
			name:   "exclusive",
			clause: DateClause{After: &after, Before: &before},
			want:   "(d > '2020-01-01T00:00:00Z') AND (d < '2020-02-01T00:00:00Z')",
		},
		{
			name:   "inclusive",
			clause: DateClause{After: &after, Inclusive: true},
			want:   "d >= '2020-01-01T00:00:00Z'",
		},
		{
			name:   "within",
			clause: DateClause{Within: 24 * time.Hour},
			want:   "d >= '2021-06-14T12:00:00Z'",
		},
		{
			name:   "year",
			clause: DateClause{Year: 2020},
			want:   "(d >= '2020-01-01T00:00:00Z') AND (d < '2021-01-01T00:00:00Z')",
		},
		{
			name:   "month",
			clause: DateClause{Year: 2020, Month: 12},
			want:   "(d >= '2020-12-01T00:00:00Z') AND (d < '2021-01-01T00:00:00Z')",
		},
		{
			name:   "day",
			clause: DateClause{Year: 2020, Month: 2, Day: 29},
			want:   "(d >= '2020-02-29T00:00:00Z') AND (d < '2020-03-01T00:00:00Z')",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompileDateClause("d", tt.clause, now)
			if got == nil {
				assert.Equal(t, "<nil>", tt.want)
				return
			}
			assert.Equal(t, tt.want, got.String())
		})
	}
}
