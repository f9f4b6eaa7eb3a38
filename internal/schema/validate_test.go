package schema

import (
	"reflect"
	"strings"
	"testing"
)

func TestValidateUpdatesPerKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		proposed map[string]any
		want     map[string]any
	}{
		{
			name:     "bool accepted",
			proposed: map[string]any{FieldIndependent: true},
			want:     map[string]any{FieldIndependent: true},
		},
		{
			name:     "bool as string rejected",
			proposed: map[string]any{FieldIndependent: "true"},
			want:     nil,
		},
		{
			name:     "enum in domain",
			proposed: map[string]any{FieldIncomeRange: "20_40k"},
			want:     map[string]any{FieldIncomeRange: "20_40k"},
		},
		{
			name:     "enum out of domain dropped silently",
			proposed: map[string]any{FieldIncomeRange: "gazillionaire"},
			want:     nil,
		},
		{
			name:     "string trimmed",
			proposed: map[string]any{FieldStudentName: "  Jordan Lee  "},
			want:     map[string]any{FieldStudentName: "Jordan Lee"},
		},
		{
			name:     "empty string rejected",
			proposed: map[string]any{FieldStudentName: "   "},
			want:     nil,
		},
		{
			name:     "date strict format",
			proposed: map[string]any{FieldStudentDOB: "2007-03-14"},
			want:     map[string]any{FieldStudentDOB: "2007-03-14"},
		},
		{
			name:     "date wrong format rejected",
			proposed: map[string]any{FieldStudentDOB: "03/14/2007"},
			want:     nil,
		},
		{
			name:     "email needs at sign",
			proposed: map[string]any{FieldStudentEmail: "jordan.example.com"},
			want:     nil,
		},
		{
			name:     "email shallow check passes",
			proposed: map[string]any{FieldStudentEmail: "jordan@example.com"},
			want:     map[string]any{FieldStudentEmail: "jordan@example.com"},
		},
		{
			name:     "bank none normalized to lowercase sentinel",
			proposed: map[string]any{FieldBankName: "NONE"},
			want:     map[string]any{FieldBankName: "none"},
		},
		{
			name:     "bank name kept",
			proposed: map[string]any{FieldBankName: "Chase"},
			want:     map[string]any{FieldBankName: "Chase"},
		},
		{
			name:     "award year en dash normalized",
			proposed: map[string]any{FieldAwardYear: "2026–27"},
			want:     map[string]any{FieldAwardYear: "2026-27"},
		},
		{
			name:     "award year free text rejected",
			proposed: map[string]any{FieldAwardYear: "next year"},
			want:     nil,
		},
		{
			name:     "household size from json float",
			proposed: map[string]any{FieldHouseholdSize: float64(4)},
			want:     map[string]any{FieldHouseholdSize: 4},
		},
		{
			name:     "household size zero rejected",
			proposed: map[string]any{FieldHouseholdSize: 0},
			want:     nil,
		},
		{
			name:     "household size fractional rejected",
			proposed: map[string]any{FieldHouseholdSize: 3.5},
			want:     nil,
		},
		{
			name:     "schools from json any slice",
			proposed: map[string]any{FieldSchools: []any{"CMU", " Michigan "}},
			want:     map[string]any{FieldSchools: []string{"CMU", "Michigan"}},
		},
		{
			name:     "schools empty list rejected",
			proposed: map[string]any{FieldSchools: []any{"", "  "}},
			want:     nil,
		},
		{
			name:     "unknown field ignored",
			proposed: map[string]any{"favorite_color": "blue"},
			want:     nil,
		},
		{
			name: "mixed batch keeps only valid entries",
			proposed: map[string]any{
				FieldIncomeRange: "super_rich",
				FieldHasW2:       true,
				"shoe_size":      11,
			},
			want: map[string]any{FieldHasW2: true},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ValidateUpdates(tt.proposed)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("ValidateUpdates(%v) = %v, want %v", tt.proposed, got, tt.want)
			}
		})
	}
}

func TestValidateUpdatesCapsFreeText(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("a", 500)
	got := ValidateUpdates(map[string]any{FieldStudentName: long})
	name, ok := got[FieldStudentName].(string)
	if !ok {
		t.Fatalf("expected student_name accepted, got %v", got)
	}
	if len(name) != 200 {
		t.Fatalf("expected free text capped to 200 chars, got %d", len(name))
	}
}

func TestValidateUpdatesPure(t *testing.T) {
	t.Parallel()

	proposed := map[string]any{FieldIncomeRange: "gazillionaire"}
	_ = ValidateUpdates(proposed)
	if proposed[FieldIncomeRange] != "gazillionaire" {
		t.Fatal("validator must not mutate its input")
	}
}
