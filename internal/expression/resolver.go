// Package expression renders tagged expressions against an execution
// context. Template tags dispatch to the corresponding engine, var tags
// walk the context by path, and pipeline/defer tags pass through unresolved
// for the interpreter and the consuming brick to handle.
package expression

import (
	"context"
	"fmt"

	"github.com/modkit/brickflow/internal/ctxlog"
	"github.com/modkit/brickflow/internal/fault"
	"github.com/modkit/brickflow/internal/schema"
)

// Options control how the resolver treats plain values.
type Options struct {
	// ExplicitDataFlow is the v2+ mode: only tagged Expressions are
	// dynamic. When false, plain string values are implicit templates in
	// DefaultEngine.
	ExplicitDataFlow bool

	// DefaultEngine is the template engine for implicit (v1) string
	// rendering. Zero value means mustache.
	DefaultEngine schema.Tag

	// Autoescape enables HTML-escaping template output (v3).
	Autoescape bool
}

func (o Options) engine() schema.Tag {
	if o.DefaultEngine == "" {
		return schema.TagMustache
	}
	return o.DefaultEngine
}

// Resolver renders expressions and expression-bearing structures. It is
// stateless and safe for concurrent use.
type Resolver struct{}

// NewResolver creates a Resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// Render resolves a config value against the execution context. Maps and
// slices are walked recursively and each leaf resolved independently;
// literals pass through unchanged. Pipeline- and defer-tagged expressions
// are returned as-is: the interpreter executes the former via the brick's
// pipeline callback, and the consuming brick decides when to resolve the
// latter.
func (r *Resolver) Render(ctx context.Context, value any, ectx map[string]any, opts Options) (any, error) {
	switch v := value.(type) {
	case *schema.Expression:
		if !opts.ExplicitDataFlow {
			// Explicit expressions inside an implicit-dataflow (v1)
			// pipeline mean the config mixes apiVersions.
			return nil, fault.Businessf("expression %q is not allowed in a v1 (implicit data flow) pipeline", v.Tag)
		}
		return r.renderExpression(ctx, v, ectx, opts)

	case map[string]any:
		out := make(map[string]any, len(v))
		for key, val := range v {
			rendered, err := r.Render(ctx, val, ectx, opts)
			if err != nil {
				return nil, err
			}
			out[key] = rendered
		}
		return out, nil

	case []any:
		out := make([]any, len(v))
		for i, val := range v {
			rendered, err := r.Render(ctx, val, ectx, opts)
			if err != nil {
				return nil, err
			}
			out[i] = rendered
		}
		return out, nil

	case string:
		if !opts.ExplicitDataFlow {
			return renderTemplate(opts.engine(), v, ectx, opts.Autoescape)
		}
		return v, nil

	default:
		return value, nil
	}
}

// renderExpression resolves a single tagged expression.
func (r *Resolver) renderExpression(ctx context.Context, expr *schema.Expression, ectx map[string]any, opts Options) (any, error) {
	switch expr.Tag {
	case schema.TagVar:
		path, ok := expr.Value.(string)
		if !ok {
			return nil, fault.Businessf("var expression value must be a string, got %T", expr.Value)
		}
		value, err := lookupPath(ectx, path)
		if err != nil {
			return nil, err
		}
		ctxlog.FromContext(ctx).Debug("Resolved variable reference.", "path", path)
		return value, nil

	case schema.TagMustache, schema.TagNunjucks, schema.TagHandlebars:
		template, ok := expr.TemplateString()
		if !ok {
			return nil, fault.Businessf("%s expression value must be a string, got %T", expr.Tag, expr.Value)
		}
		return renderTemplate(expr.Tag, template, ectx, opts.Autoescape)

	case schema.TagPipeline, schema.TagDefer:
		return expr, nil

	default:
		// The tag set is closed; anything else got past construction
		// illegally and must fail loudly rather than pass through.
		panic(fmt.Sprintf("expression: unknown expression tag %q", expr.Tag))
	}
}
