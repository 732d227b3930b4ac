// Backend-type value coercion for resolved attribute rows.
package eav

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/mesh-intelligence/portage/pkg/types"
)

// datetimeLayouts lists the timestamp formats the legacy store emits,
// probed in order.
var datetimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC3339,
}

// coerceValue converts a raw storage value according to its backend type.
// Numeric backends return nil for values that do not parse to a finite
// number; unparseable datetimes pass through as the raw string.
func coerceValue(backendType string, raw any) any {
	if b, ok := raw.([]byte); ok {
		raw = string(b)
	}
	if raw == nil {
		return nil
	}

	switch backendType {
	case types.BackendInt:
		f, ok := toFloat(raw)
		if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		return int64(f)
	case types.BackendDecimal:
		f, ok := toFloat(raw)
		if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		return f
	case types.BackendDatetime:
		return coerceDatetime(raw)
	default:
		switch raw.(type) {
		case string, bool, int64, float64:
			return raw
		default:
			return fmt.Sprint(raw)
		}
	}
}

// coerceDatetime re-emits a parseable timestamp as an RFC 3339 UTC string.
// Invalid dates pass through untouched.
func coerceDatetime(raw any) any {
	if t, ok := raw.(time.Time); ok {
		return t.UTC().Format(time.RFC3339)
	}
	s, ok := raw.(string)
	if !ok {
		return fmt.Sprint(raw)
	}
	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Format(time.RFC3339)
		}
	}
	return s
}

// toFloat parses a raw storage value as a float64.
func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
