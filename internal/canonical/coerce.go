// Boolean-like value coercion for resolved attribute values.
package canonical

import "strings"

// Truthy interprets a resolved attribute value as a boolean. Booleans pass
// through; numbers are true when positive; the strings "true"/"false"
// (case-insensitive) and "1" are recognized. Anything else, "0" included,
// is unknown and reports ok=false so callers can fall back.
func Truthy(v any) (value, ok bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case int64:
		return t > 0, true
	case float64:
		return t > 0, true
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "1":
			return true, true
		case "false":
			return false, true
		}
		return false, false
	default:
		return false, false
	}
}
