package hclconf

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// ctyToNative recursively converts a cty.Value into its natural Go
// counterpart. Marker objects produced by the expression functions are
// returned as rawExpr for the translator to finish; everything else maps to
// the plain JSON-style shapes the executor works with.
func ctyToNative(v cty.Value) (any, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}

	ty := v.Type()

	if ty.IsObjectType() && ty.HasAttribute(markerKey) {
		tag := v.GetAttr(markerKey)
		if tag.Type() != cty.String {
			return nil, fmt.Errorf("malformed expression marker")
		}
		inner, err := ctyToNative(v.GetAttr("value"))
		if err != nil {
			return nil, err
		}
		return rawExpr{tag: tag.AsString(), value: inner}, nil
	}

	switch {
	case ty == cty.String:
		return v.AsString(), nil

	case ty == cty.Number:
		// float64 is the natural representation for a generic number; it
		// also matches what the JSON-schema validator sees after
		// normalization.
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, fmt.Errorf("could not convert number: %w", err)
		}
		return f, nil

	case ty == cty.Bool:
		return v.True(), nil

	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		out := make([]any, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, element := it.Element()
			native, err := ctyToNative(element)
			if err != nil {
				return nil, err
			}
			out = append(out, native)
		}
		return out, nil

	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any)
		for it := v.ElementIterator(); it.Next(); {
			key, element := it.Element()
			native, err := ctyToNative(element)
			if err != nil {
				return nil, fmt.Errorf("in attribute %q: %w", key.AsString(), err)
			}
			out[key.AsString()] = native
		}
		return out, nil

	default:
		return nil, fmt.Errorf("unsupported value type %s", ty.FriendlyName())
	}
}

// rawExpr is a marker object lifted out of cty, before pipeline references
// are resolved and the value becomes a *schema.Expression.
type rawExpr struct {
	tag   string
	value any
}
