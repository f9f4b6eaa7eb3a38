// Package checklist derives the personalized document checklist from a
// collected profile and annotates it with the session's uploads ledger.
package checklist

import (
	"fmt"

	"github.com/fafsabuddy/server/internal/domain"
	"github.com/fafsabuddy/server/internal/schema"
)

// Checklist item IDs. UploadsAccepted reports which of these take a file.
const (
	ItemPhotoID       = "photo_id"
	ItemSSNNote       = "ssn_note"
	ItemStudentTax    = "student_tax"
	ItemW2            = "w2"
	ItemBankStatement = "bank_statement"
	ItemParentTax     = "parent_tax"
	ItemParentBank    = "parent_bank"
)

// Item is one document the user should gather.
type Item struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Instruction string `json:"instruction"`
	Required    bool   `json:"required"`
	NoUpload    bool   `json:"no_upload,omitempty"` // item is informational; no file slot
	UploadURL   string `json:"upload_url,omitempty"`
	UploadedAt  int64  `json:"uploaded_at,omitempty"`
}

// UploadsAccepted reports whether the checklist item takes a file upload.
// Unknown IDs are rejected so the ledger can only hold known documents.
func UploadsAccepted(itemID string) bool {
	switch itemID {
	case ItemPhotoID, ItemStudentTax, ItemW2, ItemBankStatement, ItemParentTax, ItemParentBank:
		return true
	default:
		return false
	}
}

// Build returns the personalized checklist for the profile. Items drop out
// only on an explicit negative answer (filed_taxes=false, has_w2=false), so
// an incomplete profile errs toward listing more documents. Upload status
// comes from the profile's ledger.
func Build(p domain.Profile) []Item {
	items := []Item{
		{
			ID:          ItemPhotoID,
			Label:       "Government-issued photo ID",
			Instruction: "Driver's license, state ID, or passport.",
			Required:    true,
		},
		{
			ID:          ItemSSNNote,
			Label:       "Social Security Number",
			Instruction: "Enter this directly on StudentAid.gov — do NOT upload it here.",
			Required:    true,
			NoUpload:    true,
		},
	}

	if filed, ok := p.Bool(schema.FieldFiledTaxes); !ok || filed {
		items = append(items, Item{
			ID:          ItemStudentTax,
			Label:       "Your federal tax return",
			Instruction: "Your most recent 1040. Get a transcript at IRS.gov → Get Your Tax Record.",
			Required:    true,
		})
	}

	if hasW2, ok := p.Bool(schema.FieldHasW2); !ok || hasW2 {
		items = append(items, Item{
			ID:          ItemW2,
			Label:       "Your W-2",
			Instruction: "Ask your employer's HR or payroll department for your most recent W-2.",
			Required:    true,
		})
	}

	if bank := studentBank(p); bank != "" || hasAnyAccount(p) {
		label := "Bank statement"
		if bank != "" {
			label = fmt.Sprintf("Bank statement (%s)", bank)
		}
		items = append(items, Item{
			ID:          ItemBankStatement,
			Label:       label,
			Instruction: "Download your most recent 2 months of checking and savings statements as PDFs.",
			Required:    true,
		})
	}

	if indep, ok := p.Bool(schema.FieldIndependent); ok && !indep {
		items = append(items, Item{
			ID:          ItemParentTax,
			Label:       "Parent's federal tax return",
			Instruction: "Ask a parent to download their tax transcript from IRS.gov → Get Your Tax Record.",
			Required:    true,
		})
		label := "Parent's bank statement"
		if parentBank := p.String(schema.FieldParentBankName); parentBank != "" && parentBank != domain.BankNone {
			label = fmt.Sprintf("Parent's bank statement (%s)", parentBank)
		}
		items = append(items, Item{
			ID:          ItemParentBank,
			Label:       label,
			Instruction: "Parent's most recent 2 months of checking/savings statements.",
			Required:    true,
		})
	}

	uploads := p.Uploads()
	for i := range items {
		if u, ok := uploads[items[i].ID]; ok {
			items[i].UploadURL = u.URL
			items[i].UploadedAt = u.UploadedAt
		}
	}
	return items
}

// studentBank returns the student's bank name, or "" when absent or the
// no-account sentinel.
func studentBank(p domain.Profile) string {
	bank := p.String(schema.FieldBankName)
	if bank == domain.BankNone {
		return ""
	}
	return bank
}

func hasAnyAccount(p domain.Profile) bool {
	if checking, ok := p.Bool(schema.FieldHasChecking); ok && checking {
		return true
	}
	if savings, ok := p.Bool(schema.FieldHasSavings); ok && savings {
		return true
	}
	return false
}
