package executor

import (
	"context"

	"github.com/mitchellh/copystructure"

	"github.com/modkit/brickflow/internal/fault"
	"github.com/modkit/brickflow/internal/schema"
)

// RunSingleBrick executes one step in isolation against a caller-supplied
// context, for live preview. The step runs as a synthetic one-element
// pipeline with tracing disabled and the last-step rule forced, so no
// output key merge takes place. The result is deep-copied before being
// returned: bricks may hand back mutable structures, and preview results
// cross a process boundary in the embedding system.
//
// Preview requires explicit data flow; a v1 (implicit templating) step is
// rejected with a business error before any brick is looked up.
func (ip *Interp) RunSingleBrick(ctx context.Context, step *schema.Step, ectx map[string]any, root schema.Root, opts Options) (any, error) {
	if !opts.Version.ExplicitDataFlow {
		return nil, fault.Business("brick preview requires explicit data flow (apiVersion v2 or later)")
	}
	if step == nil || step.BrickID == "" {
		return nil, fault.Business("brick preview requires a configured step")
	}

	// Tracing off: preview runs are ephemeral by definition.
	opts.RunID = nil
	meta := schema.RunMetadata{ComponentID: opts.ComponentID}

	// The output key is irrelevant for a single-step run and must not
	// leak a merge into the caller's context.
	preview := *step
	preview.OutputKey = ""

	outcome, err := ip.reduceStep(ctx, &preview, stepState{
		ectx:   copyContext(ectx),
		root:   root,
		meta:   meta,
		isLast: true,
	}, opts)
	if err != nil {
		return nil, err
	}
	if outcome.skipped {
		return nil, nil
	}

	copied, err := copystructure.Copy(outcome.previous)
	if err != nil {
		return nil, fault.Businessf("brick output cannot be copied for preview: %w", err)
	}
	return copied, nil
}
