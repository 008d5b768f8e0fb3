// Package identity provides the identity transform: it echoes its value
// argument unchanged. Useful as a pipeline's data source in tests and as a
// cheap way to bind a computed value to an output key.
package identity

import (
	"context"

	"github.com/modkit/brickflow/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the brick with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.Register(&Brick{})
}

// Brick is the identity transform.
type Brick struct{}

func (b *Brick) ID() string { return "identity" }

func (b *Brick) InputSchema() string {
	return `{
		"type": "object",
		"properties": {
			"value": {}
		},
		"required": ["value"]
	}`
}

// IsPure marks the brick safe to re-run for preview.
func (b *Brick) IsPure() bool { return true }

func (b *Brick) Run(ctx context.Context, args map[string]any, opts *registry.BrickOptions) (any, error) {
	return args["value"], nil
}
