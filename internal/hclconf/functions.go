package hclconf

import (
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// Expression values in HCL mod files are written as function calls:
//
//	condition = v("@input.flag")
//	message   = nunjucks("Hello {{ input.name }}")
//	body      = sub("notify")
//	detail    = lazy({ text = v("@input.x") })
//
// Each function wraps its argument in a marker object the translator later
// turns into a *schema.Expression. The marker key is unlikely to collide
// with real config data and is rejected if it ever appears verbatim.
const markerKey = "__brickflow_expr__"

// marker builds the tagged wrapper object.
func marker(tag string, value cty.Value) cty.Value {
	return cty.ObjectVal(map[string]cty.Value{
		markerKey: cty.StringVal(tag),
		"value":   value,
	})
}

// stringExprFunc defines a one-string-argument expression constructor.
func stringExprFunc(tag string) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "value", Type: cty.String},
		},
		Type: function.StaticReturnType(cty.DynamicPseudoType),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			return marker(tag, args[0]), nil
		},
	})
}

// lazyExprFunc defers an arbitrary value, nested expressions included.
func lazyExprFunc() function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "value", Type: cty.DynamicPseudoType, AllowDynamicType: true},
		},
		Type: function.StaticReturnType(cty.DynamicPseudoType),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			return marker("defer", args[0]), nil
		},
	})
}

// exprFunctions is the function table mod file attributes are evaluated
// with. "sub" references a named pipeline block; the translator resolves
// the name after all pipelines are known.
func exprFunctions() map[string]function.Function {
	return map[string]function.Function{
		"v":          stringExprFunc("var"),
		"mustache":   stringExprFunc("mustache"),
		"nunjucks":   stringExprFunc("nunjucks"),
		"handlebars": stringExprFunc("handlebars"),
		"sub":        stringExprFunc("pipeline"),
		"lazy":       lazyExprFunc(),
	}
}
