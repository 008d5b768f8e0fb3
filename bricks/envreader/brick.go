// Package envreader provides a brick that reads process environment
// variables into the pipeline context.
package envreader

import (
	"context"
	"os"
	"strings"

	"github.com/modkit/brickflow/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the brick with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.Register(&Brick{})
}

// Brick reads environment variables. With no arguments it returns all of
// them; with a "names" list it returns only those, missing ones as "".
type Brick struct{}

func (b *Brick) ID() string { return "env-reader" }

func (b *Brick) InputSchema() string {
	return `{
		"type": "object",
		"properties": {
			"names": {
				"type": "array",
				"items": {"type": "string"}
			}
		}
	}`
}

func (b *Brick) IsPure() bool { return false }

func (b *Brick) Run(ctx context.Context, args map[string]any, opts *registry.BrickOptions) (any, error) {
	if raw, ok := args["names"].([]any); ok {
		vars := make(map[string]any, len(raw))
		for _, n := range raw {
			name, ok := n.(string)
			if !ok {
				continue
			}
			vars[name] = os.Getenv(name)
		}
		return map[string]any{"vars": vars}, nil
	}

	vars := make(map[string]any)
	for _, e := range os.Environ() {
		pair := strings.SplitN(e, "=", 2)
		if len(pair) == 2 {
			vars[pair[0]] = pair[1]
		}
	}
	return map[string]any{"vars": vars}, nil
}
