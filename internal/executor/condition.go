package executor

import "github.com/modkit/brickflow/internal/schema"

// conditionMet applies the documented truthy-string coercion to a resolved
// step condition.
func conditionMet(value any) bool {
	return schema.Truthy(value)
}
