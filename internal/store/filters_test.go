package store

import (
	"reflect"
	"testing"
)

func floatPtr(v float64) *float64 { return &v }

func TestFilterWhere(t *testing.T) {
	tests := []struct {
		name     string
		filter   Filter
		wantCond string
		wantArgs []any
	}{
		{
			name:     "unconstrained",
			filter:   Filter{},
			wantCond: "TRUE",
			wantArgs: nil,
		},
		{
			name:     "name contains",
			filter:   Filter{NameContains: "kantor"},
			wantCond: "name ILIKE $1",
			wantArgs: []any{"%kantor%"},
		},
		{
			name:     "district and work unit are exact",
			filter:   Filter{District: "Laweyan", WorkUnit: "Kelurahan Laweyan"},
			wantCond: "district = $1 AND work_unit = $2",
			wantArgs: []any{"Laweyan", "Kelurahan Laweyan"},
		},
		{
			name:     "area range",
			filter:   Filter{MinArea: floatPtr(100), MaxArea: floatPtr(500)},
			wantCond: "area >= $1 AND area <= $2",
			wantArgs: []any{100.0, 500.0},
		},
		{
			name:     "statuses combine with OR",
			filter:   Filter{Statuses: []string{"TERLANTAR", "TKD"}},
			wantCond: "(status ILIKE $1 OR status ILIKE $2)",
			wantArgs: []any{"%TERLANTAR%", "%TKD%"},
		},
		{
			name:     "blank status keywords skipped",
			filter:   Filter{Statuses: []string{"  ", ""}},
			wantCond: "TRUE",
			wantArgs: nil,
		},
		{
			name: "everything combines with AND",
			filter: Filter{
				NameContains: "tanah",
				District:     "Jebres",
				MinArea:      floatPtr(50),
				Statuses:     []string{"TERMANFAATKAN"},
			},
			wantCond: "name ILIKE $1 AND district = $2 AND area >= $3 AND (status ILIKE $4)",
			wantArgs: []any{"%tanah%", "Jebres", 50.0, "%TERMANFAATKAN%"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cond, args := tt.filter.where()
			if cond != tt.wantCond {
				t.Errorf("where() cond = %q, want %q", cond, tt.wantCond)
			}
			if !reflect.DeepEqual(args, tt.wantArgs) {
				t.Errorf("where() args = %v, want %v", args, tt.wantArgs)
			}
		})
	}
}

func TestStatusKeywords(t *testing.T) {
	statuses := []string{
		"Hak Pakai | TERLANTAR",
		"hak pakai | TKD",
		"",
	}

	got := statusKeywords(statuses)
	want := []string{"Hak Pakai", "TERLANTAR", "TKD"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("statusKeywords() = %v, want %v", got, want)
	}
}
