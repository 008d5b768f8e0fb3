package executor

import "github.com/modkit/brickflow/internal/schema"

// newContext builds the execution context for a top-level run: integration
// bindings first, then the implicit "@input" and "@options" variables. The
// context grows monotonically as output keys are merged in and never
// shrinks within a run.
func newContext(initial InitialValues) map[string]any {
	ectx := make(map[string]any, len(initial.ServiceContext)+2)
	for key, value := range initial.ServiceContext {
		ectx[key] = value
	}
	input := initial.Input
	if input == nil {
		input = map[string]any{}
	}
	options := initial.OptionsArgs
	if options == nil {
		options = map[string]any{}
	}
	ectx["@input"] = input
	ectx["@options"] = options
	return ectx
}

// copyContext shallow-copies an execution context. Sub-pipelines receive a
// copy rather than a reference so child merges cannot leak upward unless a
// control-flow brick merges them back explicitly.
func copyContext(ectx map[string]any) map[string]any {
	out := make(map[string]any, len(ectx))
	for key, value := range ectx {
		out[key] = value
	}
	return out
}

// mergeOutput threads a new context forward with the step's result bound
// under its output key. The input map is left untouched.
func mergeOutput(ectx map[string]any, outputKey string, output any) map[string]any {
	out := copyContext(ectx)
	out["@"+outputKey] = output
	return out
}

// extendContext merges extra variables into a copy of the parent context,
// for sub-pipeline invocations that inject e.g. "@element" or "@error".
func extendContext(ectx map[string]any, extra map[string]any) map[string]any {
	out := copyContext(ectx)
	for key, value := range extra {
		out[key] = value
	}
	return out
}

// pickRoot chooses the sub-pipeline root: an explicit root from the
// control-flow brick wins, otherwise the invoking step's root is inherited.
func pickRoot(explicit, inherited schema.Root) schema.Root {
	if explicit.IsZero() {
		return inherited
	}
	return explicit
}
