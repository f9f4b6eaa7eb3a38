// Package domain contains core domain types for the FAFSA Buddy intake server.
package domain

// BankNone is the sentinel bank name meaning "no account". Once set,
// has_checking and has_savings are forced to false and never asked about.
const BankNone = "none"

// Profile maps canonical field names to collected values. Values are one of
// bool, int, string, or []string (the schools list). A field is collected
// iff its key is present.
type Profile map[string]any

// NewProfile returns an empty profile.
func NewProfile() Profile {
	return make(Profile)
}

// Has reports whether the field has been collected.
func (p Profile) Has(name string) bool {
	_, ok := p[name]
	return ok
}

// Bool returns the field as a bool. ok is false when the field is absent or
// not boolean.
func (p Profile) Bool(name string) (value, ok bool) {
	v, present := p[name]
	if !present {
		return false, false
	}
	b, isBool := v.(bool)
	return b, isBool
}

// String returns the field as a string, or "" when absent or not a string.
func (p Profile) String(name string) string {
	if s, ok := p[name].(string); ok {
		return s
	}
	return ""
}

// Schools returns the schools list. JSON round-trips turn []string into
// []any, so both shapes are accepted.
func (p Profile) Schools() []string {
	switch v := p["schools"].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// Clone returns a shallow copy with the schools slice copied, so merges on
// the clone never alias the original.
func (p Profile) Clone() Profile {
	out := make(Profile, len(p))
	for k, v := range p {
		out[k] = v
	}
	if schools := p.Schools(); schools != nil {
		copied := make([]string, len(schools))
		copy(copied, schools)
		out["schools"] = copied
	}
	return out
}
