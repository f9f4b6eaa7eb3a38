package domain

import "strings"

// sensitiveKeywords flags messages that look like raw identifiers the
// assistant must never collect. Matching is substring, case-insensitive.
var sensitiveKeywords = []string{
	"ssn",
	"social security",
	"routing number",
	"account number",
	"debit card",
	"credit card",
	"pin",
	"password",
}

// SafetyReply is returned verbatim when a message trips the sensitive-text
// guard; the model is never invoked for such a turn.
const SafetyReply = "Quick note: please don't share sensitive info like SSN, full bank account/routing numbers, " +
	"passwords, or PINs. I can help using ranges and checklists."

// ContainsSensitiveText reports whether the text mentions any raw sensitive
// identifier.
func ContainsSensitiveText(text string) bool {
	t := strings.ToLower(text)
	for _, kw := range sensitiveKeywords {
		if strings.Contains(t, kw) {
			return true
		}
	}
	return false
}
