// Package schema is the canonical definition of every collectible intake
// field: its kind, enum domain, conversational hint, and applicability given
// the rest of the profile. Both the directive builder and the validator
// consume this single table, so "what we ask" and "what we accept" cannot
// drift apart.
package schema

import "github.com/fafsabuddy/server/internal/domain"

// Kind is the semantic type of a field, which selects its validation rule.
type Kind int

const (
	// KindBool accepts only literal true/false.
	KindBool Kind = iota
	// KindString accepts any non-empty string after trimming.
	KindString
	// KindEnum accepts only members of the field's declared domain.
	KindEnum
	// KindNumber accepts positive integers.
	KindNumber
	// KindDate accepts strict YYYY-MM-DD strings.
	KindDate
	// KindEmail accepts strings containing "@" (deliberately shallow).
	KindEmail
	// KindBank accepts non-empty strings; case-insensitive "none" is
	// normalized to the lowercase sentinel.
	KindBank
	// KindAwardYear accepts school years like "2026-27" (en/em dashes
	// normalized to "-").
	KindAwardYear
	// KindList accepts non-empty lists of non-empty strings and merges by
	// set union.
	KindList
)

// Canonical field names.
const (
	FieldUserRole            = "user_role"
	FieldStudentName         = "student_name"
	FieldStudentEmail        = "student_email"
	FieldStudentDOB          = "student_dob"
	FieldAwardYear           = "award_year"
	FieldIndependent         = "independent"
	FieldHouseholdSize       = "household_size"
	FieldIncomeRange         = "income_range"
	FieldAssetRange          = "asset_range"
	FieldBankName            = "bank_name"
	FieldHasChecking         = "has_checking"
	FieldHasSavings          = "has_savings"
	FieldHasW2               = "has_w2"
	FieldFiledTaxes          = "filed_taxes"
	FieldHasTaxReturn        = "has_tax_return"
	FieldSchools             = "schools"
	FieldEnrollment          = "enrollment"
	FieldParentIncomeRange   = "parent_income_range"
	FieldParentAssetRange    = "parent_asset_range"
	FieldParentFiledTaxes    = "parent_filed_taxes"
	FieldParentHasTaxReturn  = "parent_has_tax_return"
	FieldParentBankName      = "parent_bank_name"
)

// Enum domains. Income and asset brackets are ordered lowest to highest.
var (
	RoleDomain       = []string{"student", "parent"}
	IncomeDomain     = []string{"under_20k", "20_40k", "40_60k", "60_80k", "80_100k", "100_150k", "150_200k", "over_200k"}
	AssetDomain      = []string{"under_1k", "1_5k", "5_20k", "20_50k", "50_100k", "over_100k"}
	EnrollmentDomain = []string{"full_time", "half_time", "less_than_half"}
)

// Field describes one collectible attribute.
type Field struct {
	Name   string
	Kind   Kind
	Domain []string // enum members; nil otherwise
	Hint   string   // shown to the model in the still-needed list
	Parent bool     // parent-only: skipped entirely for independent students
}

// fields is the canonical collection order: role first, then identity, then
// dependency/household, then student financials, parent financials last.
// The selector and progress calculator both iterate this exact slice.
var fields = []Field{
	{Name: FieldUserRole, Kind: KindEnum, Domain: RoleDomain, Hint: `one of: "student" | "parent"`},
	{Name: FieldStudentName, Kind: KindString, Hint: "the student's full name"},
	{Name: FieldStudentEmail, Kind: KindEmail, Hint: "the student's email address"},
	{Name: FieldStudentDOB, Kind: KindDate, Hint: "the student's date of birth, YYYY-MM-DD"},
	{Name: FieldAwardYear, Kind: KindAwardYear, Hint: `school year, e.g. "2026-27"`},
	{Name: FieldIndependent, Kind: KindBool, Hint: "true or false"},
	{Name: FieldHouseholdSize, Kind: KindNumber, Hint: "a number"},
	{Name: FieldIncomeRange, Kind: KindEnum, Domain: IncomeDomain, Hint: "one of: under_20k, 20_40k, 40_60k, 60_80k, 80_100k, 100_150k, 150_200k, over_200k"},
	{Name: FieldAssetRange, Kind: KindEnum, Domain: AssetDomain, Hint: "one of: under_1k, 1_5k, 5_20k, 20_50k, 50_100k, over_100k"},
	{Name: FieldBankName, Kind: KindBank, Hint: `a bank name like "Chase", or "none" if no account`},
	{Name: FieldHasChecking, Kind: KindBool, Hint: "true or false"},
	{Name: FieldHasSavings, Kind: KindBool, Hint: "true or false"},
	{Name: FieldHasW2, Kind: KindBool, Hint: "true or false"},
	{Name: FieldFiledTaxes, Kind: KindBool, Hint: "true or false"},
	{Name: FieldHasTaxReturn, Kind: KindBool, Hint: "true or false"},
	{Name: FieldSchools, Kind: KindList, Hint: `list of college names, e.g. ["CMU", "Michigan"]`},
	{Name: FieldEnrollment, Kind: KindEnum, Domain: EnrollmentDomain, Hint: "one of: full_time, half_time, less_than_half"},
	{Name: FieldParentIncomeRange, Kind: KindEnum, Domain: IncomeDomain, Hint: "one of: under_20k, 20_40k, 40_60k, 60_80k, 80_100k, 100_150k, 150_200k, over_200k", Parent: true},
	{Name: FieldParentAssetRange, Kind: KindEnum, Domain: AssetDomain, Hint: "one of: under_1k, 1_5k, 5_20k, 20_50k, 50_100k, over_100k", Parent: true},
	{Name: FieldParentFiledTaxes, Kind: KindBool, Hint: "true or false", Parent: true},
	{Name: FieldParentHasTaxReturn, Kind: KindBool, Hint: "true or false", Parent: true},
	{Name: FieldParentBankName, Kind: KindBank, Hint: `the parents' bank, like "Chase"`, Parent: true},
}

var fieldsByName = func() map[string]Field {
	m := make(map[string]Field, len(fields))
	for _, f := range fields {
		m[f.Name] = f
	}
	return m
}()

// OrderedFields returns the canonical collection order. Callers must not
// mutate the returned slice.
func OrderedFields() []Field {
	return fields
}

// Lookup returns the field definition by name.
func Lookup(name string) (Field, bool) {
	f, ok := fieldsByName[name]
	return f, ok
}

// DomainOf returns the enum domain for a field, or nil for non-enum fields
// and unknown names.
func DomainOf(name string) []string {
	return fieldsByName[name].Domain
}

// IsApplicable reports whether the field is relevant given the current
// profile: parent fields drop out for independent students, and the
// checking/savings questions drop out once the no-bank sentinel is set.
func IsApplicable(name string, p domain.Profile) bool {
	f, ok := fieldsByName[name]
	if !ok {
		return false
	}
	if f.Parent {
		if indep, ok := p.Bool(FieldIndependent); ok && indep {
			return false
		}
	}
	if name == FieldHasChecking || name == FieldHasSavings {
		if bank := p.String(FieldBankName); bank == domain.BankNone {
			return false
		}
	}
	return true
}

func inDomain(domainValues []string, v string) bool {
	for _, d := range domainValues {
		if d == v {
			return true
		}
	}
	return false
}
