package checklist

import (
	"testing"

	"github.com/fafsabuddy/server/internal/domain"
	"github.com/fafsabuddy/server/internal/schema"
)

func itemIDs(items []Item) map[string]Item {
	m := make(map[string]Item, len(items))
	for _, it := range items {
		m[it.ID] = it
	}
	return m
}

func TestBuildEmptyProfileErrsTowardMoreDocs(t *testing.T) {
	t.Parallel()

	items := itemIDs(Build(domain.NewProfile()))
	for _, id := range []string{ItemPhotoID, ItemSSNNote, ItemStudentTax, ItemW2} {
		if _, ok := items[id]; !ok {
			t.Errorf("empty profile should still list %s", id)
		}
	}
	// No dependency answer yet, so parent docs wait.
	if _, ok := items[ItemParentTax]; ok {
		t.Error("parent docs should not appear before dependency is known")
	}
	// No bank signal yet.
	if _, ok := items[ItemBankStatement]; ok {
		t.Error("bank statement should not appear without any bank signal")
	}
}

func TestBuildExplicitNegativesDropDocs(t *testing.T) {
	t.Parallel()

	p := domain.Profile{
		schema.FieldFiledTaxes: false,
		schema.FieldHasW2:      false,
	}
	items := itemIDs(Build(p))
	if _, ok := items[ItemStudentTax]; ok {
		t.Error("student tax return should drop when filed_taxes is false")
	}
	if _, ok := items[ItemW2]; ok {
		t.Error("W-2 should drop when has_w2 is false")
	}
}

func TestBuildBankStatement(t *testing.T) {
	t.Parallel()

	withBank := itemIDs(Build(domain.Profile{schema.FieldBankName: "Chase"}))
	item, ok := withBank[ItemBankStatement]
	if !ok {
		t.Fatal("expected bank statement for a named bank")
	}
	if item.Label != "Bank statement (Chase)" {
		t.Fatalf("unexpected label %q", item.Label)
	}

	sentinel := itemIDs(Build(domain.Profile{
		schema.FieldBankName:    domain.BankNone,
		schema.FieldHasChecking: false,
		schema.FieldHasSavings:  false,
	}))
	if _, ok := sentinel[ItemBankStatement]; ok {
		t.Fatal("no-account sentinel must not produce a bank statement item")
	}

	savingsOnly := itemIDs(Build(domain.Profile{schema.FieldHasSavings: true}))
	if _, ok := savingsOnly[ItemBankStatement]; !ok {
		t.Fatal("a savings account alone should require a statement")
	}
}

func TestBuildParentDocsForDependents(t *testing.T) {
	t.Parallel()

	dependent := itemIDs(Build(domain.Profile{
		schema.FieldIndependent:    false,
		schema.FieldParentBankName: "Wells Fargo",
	}))
	if _, ok := dependent[ItemParentTax]; !ok {
		t.Fatal("dependent student needs the parent tax return")
	}
	parentBank, ok := dependent[ItemParentBank]
	if !ok {
		t.Fatal("dependent student needs the parent bank statement")
	}
	if parentBank.Label != "Parent's bank statement (Wells Fargo)" {
		t.Fatalf("unexpected label %q", parentBank.Label)
	}

	independent := itemIDs(Build(domain.Profile{schema.FieldIndependent: true}))
	if _, ok := independent[ItemParentTax]; ok {
		t.Fatal("independent student must not see parent docs")
	}
}

func TestBuildAnnotatesUploads(t *testing.T) {
	t.Parallel()

	p := domain.NewProfile()
	p.SetUpload(ItemW2, domain.Upload{URL: "https://example.com/w2.pdf", UploadedAt: 1700000000})

	items := itemIDs(Build(p))
	w2 := items[ItemW2]
	if w2.UploadURL != "https://example.com/w2.pdf" || w2.UploadedAt != 1700000000 {
		t.Fatalf("upload annotation missing: %+v", w2)
	}
	if items[ItemPhotoID].UploadURL != "" {
		t.Fatal("unrelated items must not carry the upload")
	}
}

func TestSSNNoteNeverTakesUploads(t *testing.T) {
	t.Parallel()

	if UploadsAccepted(ItemSSNNote) {
		t.Fatal("the SSN note must never accept a file")
	}
	if UploadsAccepted("favorite_color") {
		t.Fatal("unknown item IDs must be rejected")
	}
	if !UploadsAccepted(ItemW2) {
		t.Fatal("W-2 should accept an upload")
	}

	items := itemIDs(Build(domain.NewProfile()))
	if !items[ItemSSNNote].NoUpload {
		t.Fatal("SSN note should be flagged no-upload")
	}
}
