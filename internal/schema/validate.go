package schema

import (
	"regexp"
	"strings"
)

// maxFreeTextLen bounds free-string fields so a runaway model reply cannot
// bloat the stored profile.
const maxFreeTextLen = 200

var (
	datePattern      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	awardYearPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)
	dashNormalizer   = strings.NewReplacer("–", "-", "—", "-")
)

// ValidateUpdates filters a model-proposed update batch down to known-good
// values. It is a pure function and the sole trust boundary between model
// output and persisted state: unknown field names and out-of-domain values
// are dropped silently, never coerced and never surfaced as errors.
func ValidateUpdates(proposed map[string]any) map[string]any {
	if len(proposed) == 0 {
		return nil
	}
	accepted := make(map[string]any)
	for name, raw := range proposed {
		f, ok := Lookup(name)
		if !ok {
			continue
		}
		if v, ok := validateValue(f, raw); ok {
			accepted[name] = v
		}
	}
	if len(accepted) == 0 {
		return nil
	}
	return accepted
}

func validateValue(f Field, raw any) (any, bool) {
	switch f.Kind {
	case KindBool:
		b, ok := raw.(bool)
		return b, ok

	case KindString:
		s, ok := trimmedString(raw)
		if !ok {
			return nil, false
		}
		return capLen(s), true

	case KindEnum:
		s, ok := trimmedString(raw)
		if !ok || !inDomain(f.Domain, s) {
			return nil, false
		}
		return s, true

	case KindNumber:
		n, ok := asPositiveInt(raw)
		return n, ok

	case KindDate:
		s, ok := trimmedString(raw)
		if !ok || !datePattern.MatchString(s) {
			return nil, false
		}
		return s, true

	case KindEmail:
		s, ok := trimmedString(raw)
		if !ok || !strings.Contains(s, "@") {
			return nil, false
		}
		return capLen(s), true

	case KindBank:
		s, ok := trimmedString(raw)
		if !ok {
			return nil, false
		}
		if strings.EqualFold(s, "none") {
			return "none", true
		}
		return capLen(s), true

	case KindAwardYear:
		s, ok := trimmedString(raw)
		if !ok {
			return nil, false
		}
		s = dashNormalizer.Replace(s)
		if !awardYearPattern.MatchString(s) {
			return nil, false
		}
		return s, true

	case KindList:
		return asStringList(raw)
	}
	return nil, false
}

func trimmedString(raw any) (string, bool) {
	s, ok := raw.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

func capLen(s string) string {
	if len(s) > maxFreeTextLen {
		return s[:maxFreeTextLen]
	}
	return s
}

// asPositiveInt accepts int or JSON-decoded float64, requiring a whole,
// positive value.
func asPositiveInt(raw any) (int, bool) {
	switch n := raw.(type) {
	case int:
		return n, n > 0
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), n > 0
	default:
		return 0, false
	}
}

// asStringList accepts []string or JSON-decoded []any, requiring at least
// one non-empty entry. Empty entries are dropped; duplicates survive here
// and are resolved by the set-union merge.
func asStringList(raw any) (any, bool) {
	var entries []string
	switch list := raw.(type) {
	case []string:
		entries = list
	case []any:
		for _, e := range list {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			entries = append(entries, s)
		}
	default:
		return nil, false
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if trimmed := strings.TrimSpace(e); trimmed != "" {
			out = append(out, capLen(trimmed))
		}
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}
