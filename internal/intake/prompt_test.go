package intake

import (
	"strings"
	"testing"

	"github.com/fafsabuddy/server/internal/domain"
	"github.com/fafsabuddy/server/internal/schema"
)

func TestBuildDirectiveEmptyProfile(t *testing.T) {
	t.Parallel()

	directive := BuildDirective(domain.NewProfile())
	if !strings.Contains(directive, "(none yet)") {
		t.Fatalf("empty profile should list no collected fields:\n%s", directive)
	}
	if !strings.Contains(directive, `learn "`+schema.FieldUserRole+`"`) {
		t.Fatalf("empty profile should target user_role first:\n%s", directive)
	}
}

func TestBuildDirectiveSeparatesCollectedFromNeeded(t *testing.T) {
	t.Parallel()

	p := domain.Profile{
		schema.FieldUserRole: "student",
		schema.FieldSchools:  []string{"CMU", "Michigan"},
	}
	directive := BuildDirective(p)

	if !strings.Contains(directive, `user_role: "student"`) {
		t.Fatalf("collected section missing user_role:\n%s", directive)
	}
	if !strings.Contains(directive, `schools: ["CMU","Michigan"]`) {
		t.Fatalf("collected section missing schools:\n%s", directive)
	}

	needed := directive[strings.Index(directive, "STILL NEEDED"):]
	if strings.Contains(needed, "user_role (") {
		t.Fatalf("collected field listed as still needed:\n%s", directive)
	}
	if !strings.Contains(needed, schema.FieldStudentName) {
		t.Fatalf("still-needed section missing student_name:\n%s", directive)
	}
}

func TestBuildDirectiveSkipsInapplicableFields(t *testing.T) {
	t.Parallel()

	p := domain.Profile{schema.FieldIndependent: true}
	directive := BuildDirective(p)
	if strings.Contains(directive, schema.FieldParentBankName) {
		t.Fatalf("parent fields must not appear for an independent student:\n%s", directive)
	}
}

func TestBuildDirectiveAllCollected(t *testing.T) {
	t.Parallel()

	p := domain.Profile{
		schema.FieldUserRole:      "student",
		schema.FieldStudentName:   "Jordan Lee",
		schema.FieldStudentEmail:  "jordan@example.com",
		schema.FieldStudentDOB:    "2007-03-14",
		schema.FieldAwardYear:     "2026-27",
		schema.FieldIndependent:   true,
		schema.FieldHouseholdSize: 2,
		schema.FieldIncomeRange:   "20_40k",
		schema.FieldAssetRange:    "1_5k",
		schema.FieldBankName:      "none",
		schema.FieldHasChecking:   false,
		schema.FieldHasSavings:    false,
		schema.FieldHasW2:         false,
		schema.FieldFiledTaxes:    true,
		schema.FieldHasTaxReturn:  true,
		schema.FieldSchools:       []string{"CMU"},
		schema.FieldEnrollment:    "half_time",
	}
	directive := BuildDirective(p)
	if !strings.Contains(directive, "set done: true") {
		t.Fatalf("complete profile should instruct done:\n%s", directive)
	}
	if strings.Contains(directive, "NEXT:") {
		t.Fatalf("complete profile must not request another question:\n%s", directive)
	}
}
