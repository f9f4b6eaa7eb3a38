package schema

import "github.com/fafsabuddy/server/internal/domain"

// Progress returns the completion fraction in [0,1]: collected applicable
// fields over all applicable fields. Auxiliary profile keys (the uploads
// ledger) are not schema fields and count toward neither set, and the
// result is independent of the order fields were filled.
func Progress(p domain.Profile) float64 {
	applicable, collected := 0, 0
	for _, f := range fields {
		if !IsApplicable(f.Name, p) {
			continue
		}
		applicable++
		if p.Has(f.Name) {
			collected++
		}
	}
	if applicable == 0 {
		return 1
	}
	progress := float64(collected) / float64(applicable)
	if progress > 1 {
		return 1
	}
	return progress
}
