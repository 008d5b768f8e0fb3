package executor

import (
	"context"

	"github.com/modkit/brickflow/internal/fault"
	"github.com/modkit/brickflow/internal/schema"
)

// resolveRoot establishes the root target for one step.
//
// RootModeInherit with no ancestor root falls back to the document. The
// source system was inconsistent here (some callers fell back to the
// document, others to nothing at all); the document is the only default
// that leaves every downstream brick with a usable target, so that is the
// documented behavior.
func (ip *Interp) resolveRoot(ctx context.Context, step *schema.Step, ectx map[string]any, inherited schema.Root, opts Options) (schema.Root, error) {
	switch step.RootMode {
	case "", schema.RootModeInherit:
		if inherited.IsZero() {
			return schema.DocumentRoot, nil
		}
		return inherited, nil

	case schema.RootModeDocument:
		return schema.DocumentRoot, nil

	case schema.RootModeElement:
		resolved, err := ip.resolver.Render(ctx, step.Root, ectx, resolverOptions(step, opts))
		if err != nil {
			return schema.Root{}, err
		}
		switch v := resolved.(type) {
		case schema.Root:
			if v.IsZero() {
				return schema.Root{}, missingRoot(step)
			}
			return v, nil
		case string:
			if v == "" {
				return schema.Root{}, missingRoot(step)
			}
			return schema.Root{Selector: v}, nil
		case nil:
			return schema.Root{}, missingRoot(step)
		default:
			return schema.Root{}, fault.Businessf("step %q: root reference resolved to %T, expected a selector", step.BrickID, resolved)
		}

	default:
		return schema.Root{}, fault.Businessf("step %q: unknown root mode %q", step.BrickID, step.RootMode)
	}
}

func missingRoot(step *schema.Step) error {
	return fault.Businessf("step %q requires a root element, but none was available", step.BrickID)
}
