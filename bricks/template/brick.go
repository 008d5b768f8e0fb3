// Package template provides a transform brick that renders a template
// string against an explicit payload, independent of the step's own
// config rendering.
package template

import (
	"context"

	"github.com/modkit/brickflow/internal/expression"
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

// Brick renders a template against a caller-supplied payload.
type Brick struct{}

func (b *Brick) ID() string { return "template" }

func (b *Brick) InputSchema() string {
	return `{
		"type": "object",
		"properties": {
			"template": {"type": "string"},
			"engine": {"type": "string", "enum": ["mustache", "nunjucks", "handlebars"]},
			"payload": {"type": "object"}
		},
		"required": ["template"]
	}`
}

// IsPure marks the brick safe to re-run for preview.
func (b *Brick) IsPure() bool { return true }

func (b *Brick) Run(ctx context.Context, args map[string]any, opts *registry.BrickOptions) (any, error) {
	templateText, _ := args["template"].(string)

	engine := schema.TagNunjucks
	if name, ok := args["engine"].(string); ok && name != "" {
		engine = schema.Tag(name)
		if !engine.IsTemplate() {
			return nil, fault.Businessf("unknown template engine %q", name)
		}
	}

	// The payload defaults to the step's execution context, so the brick
	// can re-render against prior outputs without restating them.
	payload, ok := args["payload"].(map[string]any)
	if !ok {
		payload = opts.Ctxt
	}

	resolver := expression.NewResolver()
	return resolver.Render(ctx, schema.TemplateExpr(engine, templateText), payload, expression.Options{ExplicitDataFlow: true})
}
