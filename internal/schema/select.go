package schema

import "github.com/fafsabuddy/server/internal/domain"

// NextMissingField returns the name of the first field in canonical order
// that is applicable and not yet collected, or "" when collection is
// complete. The result depends only on the profile contents, never on the
// order fields were filled, so a conversation can be resumed and replayed
// turn by turn.
func NextMissingField(p domain.Profile) string {
	for _, f := range fields {
		if !IsApplicable(f.Name, p) {
			continue
		}
		if !p.Has(f.Name) {
			return f.Name
		}
	}
	return ""
}

// MissingFields returns every applicable, uncollected field in canonical
// order. Used by the directive builder's still-needed list.
func MissingFields(p domain.Profile) []Field {
	var missing []Field
	for _, f := range fields {
		if !IsApplicable(f.Name, p) {
			continue
		}
		if !p.Has(f.Name) {
			missing = append(missing, f)
		}
	}
	return missing
}
