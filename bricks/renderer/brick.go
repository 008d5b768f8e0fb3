// Package renderer provides the document renderer brick. Renderers do not
// return data to the next step: their payload is destined for another
// surface (a panel or sidebar), so the brick hands it off through the
// headless signal and the interpreter routes it to the run boundary.
package renderer

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

// Brick renders a document payload.
type Brick struct{}

func (b *Brick) ID() string { return "render-document" }

func (b *Brick) InputSchema() string {
	return `{
		"type": "object",
		"properties": {
			"title": {"type": "string"},
			"body": {}
		},
		"required": ["body"]
	}`
}

// IsRootAware reports that the rendered output depends on the invocation
// root.
func (b *Brick) IsRootAware() bool { return true }

func (b *Brick) Run(ctx context.Context, args map[string]any, opts *registry.BrickOptions) (any, error) {
	body := args["body"]

	// A deferred body is resolved here, not during config rendering: the
	// renderer decides when its sub-document's expressions are evaluated.
	if expr, ok := body.(*schema.Expression); ok && expr.Tag == schema.TagDefer {
		resolver := expression.NewResolver()
		resolved, err := resolver.Render(ctx, expr.Value, opts.Ctxt, expression.Options{ExplicitDataFlow: true})
		if err != nil {
			return nil, err
		}
		body = resolved
	}

	payload := map[string]any{
		"type": "document",
		"body": body,
	}
	if title, ok := args["title"].(string); ok && title != "" {
		payload["title"] = title
	}
	if !opts.Root.IsZero() && !opts.Root.Document {
		payload["root"] = opts.Root.Selector
	}

	return nil, &fault.HeadlessSignal{BrickID: b.ID(), Payload: payload}
}
