// Package ifelse provides the conditional control-flow brick: it runs one
// of two embedded sub-pipelines depending on a condition. The untaken
// branch arrives as an unresolved pipeline expression and is never
// evaluated.
package ifelse

import (
	"context"

	"github.com/modkit/brickflow/internal/registry"
	"github.com/modkit/brickflow/internal/schema"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the brick with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.Register(&Brick{})
}

// Brick is the if/else control-flow brick.
type Brick struct{}

func (b *Brick) ID() string { return "if-else" }

func (b *Brick) InputSchema() string {
	return `{
		"type": "object",
		"properties": {
			"condition": {},
			"if": {},
			"else": {}
		},
		"required": ["condition", "if"]
	}`
}

func (b *Brick) Run(ctx context.Context, args map[string]any, opts *registry.BrickOptions) (any, error) {
	var branch schema.Branch
	var chosen any
	if schema.Truthy(args["condition"]) {
		branch = schema.Branch{Key: "if"}
		chosen = args["if"]
	} else {
		branch = schema.Branch{Key: "else"}
		chosen = args["else"]
	}

	if chosen == nil {
		// No else branch configured: the step is a no-op.
		return nil, nil
	}

	pipeline, err := registry.PipelineArg(chosen, branch.Key)
	if err != nil {
		return nil, err
	}
	return opts.RunPipeline(ctx, pipeline, branch, nil, schema.Root{})
}
