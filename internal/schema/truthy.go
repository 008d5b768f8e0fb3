package schema

import "strings"

// truthyStrings is the documented coercion set for conditions: these
// strings, case-insensitively, are truthy; every other string is falsy.
var truthyStrings = map[string]struct{}{
	"true": {}, "t": {}, "yes": {}, "y": {}, "on": {}, "1": {},
}

// Truthy coerces a resolved condition value. Booleans count as themselves;
// strings follow the truthy-string rule; everything else, including nil,
// is falsy.
func Truthy(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		_, ok := truthyStrings[strings.ToLower(strings.TrimSpace(v))]
		return ok
	default:
		return false
	}
}
