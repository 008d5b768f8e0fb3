// Package foreach provides the loop control-flow brick: it runs its body
// sub-pipeline once per element, injecting the current element into the
// body's context. Iterations run sequentially so branch counters reflect
// loop order in the trace.
package foreach

import (
	"context"

	"github.com/modkit/brickflow/internal/fault"
	"github.com/modkit/brickflow/internal/registry"
	"github.com/modkit/brickflow/internal/schema"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the brick with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.Register(&Brick{})
}

// Brick is the for-each control-flow brick.
type Brick struct{}

func (b *Brick) ID() string { return "for-each" }

func (b *Brick) InputSchema() string {
	return `{
		"type": "object",
		"properties": {
			"elements": {"type": "array"},
			"body": {},
			"element_key": {"type": "string"}
		},
		"required": ["elements", "body"]
	}`
}

func (b *Brick) Run(ctx context.Context, args map[string]any, opts *registry.BrickOptions) (any, error) {
	elements, ok := args["elements"].([]any)
	if !ok {
		return nil, fault.Business("argument \"elements\" must be an array")
	}
	body, err := registry.PipelineArg(args["body"], "body")
	if err != nil {
		return nil, err
	}

	elementKey := "element"
	if key, ok := args["element_key"].(string); ok && key != "" {
		if !schema.ValidOutputKey(key) {
			return nil, fault.Businessf("invalid element key %q", key)
		}
		elementKey = key
	}

	// Outputs aggregate in iteration order, so downstream steps can
	// consume the whole loop's results as one list.
	outputs := make([]any, 0, len(elements))
	for i, element := range elements {
		extra := map[string]any{"@" + elementKey: element}
		branch := schema.Branch{Key: "loop", Counter: i}
		out, err := opts.RunPipeline(ctx, body, branch, extra, schema.Root{})
		if err != nil {
			// Body failures propagate unwrapped so the caller sees the
			// original error.
			return nil, err
		}
		outputs = append(outputs, out)
	}
	return outputs, nil
}
