package executor

import (
	"context"

	"github.com/modkit/brickflow/internal/ctxlog"
	"github.com/modkit/brickflow/internal/fault"
	"github.com/modkit/brickflow/internal/schema"
)

// Run executes a pipeline to completion and returns its overall result: the
// last executed step's output, carried through any trailing skipped steps.
//
// A renderer's headless signal is caught here, at the boundary between
// pipeline execution and the caller. When the caller requested headless
// execution the signal itself becomes the result; otherwise it is re-thrown
// so the surrounding surface can take over rendering.
func (ip *Interp) Run(ctx context.Context, pipeline schema.Pipeline, initial InitialValues, opts Options) (any, error) {
	if opts.Logger != nil {
		ctx = ctxlog.WithLogger(ctx, opts.Logger)
	}
	logger := ctxlog.FromContext(ctx)

	if err := pipeline.Validate(); err != nil {
		// A malformed pipeline reaching the interpreter is a programmer
		// error in the embedding program, not a user condition.
		panic("executor: invalid pipeline: " + err.Error())
	}

	meta := schema.RunMetadata{RunID: opts.RunID, ComponentID: opts.ComponentID}
	logger.Debug("Starting pipeline run.", "steps", len(pipeline), "tracing", meta.Tracing(), "headless", opts.Headless)

	result, err := ip.reduce(ctx, pipeline, newContext(initial), initial.Root, meta, opts)
	if err != nil {
		if signal, ok := fault.AsHeadless(err); ok && opts.Headless {
			logger.Debug("Pipeline ended with renderer payload.", "brick", signal.BrickID)
			return signal, nil
		}
		return nil, err
	}

	logger.Debug("Pipeline run finished.")
	return result, nil
}

// reduce is the interpreter loop shared by top-level runs and sub-pipeline
// invocations. The execution context, root, and run metadata are threaded
// by value: each step that binds an output produces a new context for its
// successors, and recursive descents extend copies, never the originals.
func (ip *Interp) reduce(ctx context.Context, pipeline schema.Pipeline, ectx map[string]any, root schema.Root, meta schema.RunMetadata, opts Options) (any, error) {
	var previous any

	for i, step := range pipeline {
		// Cancellation is checked at every step boundary. In-flight brick
		// work is not forcibly killed, but nothing further is scheduled.
		if err := ctx.Err(); err != nil {
			return nil, fault.Cancelled(err)
		}

		outcome, err := ip.reduceStep(ctx, step, stepState{
			ectx:     ectx,
			previous: previous,
			root:     root,
			meta:     meta,
			isLast:   i == len(pipeline)-1,
		}, opts)
		if err != nil {
			return nil, err
		}
		if outcome.skipped {
			// A skipped step carries the previous output through untouched
			// and leaves no trace record behind.
			continue
		}

		ectx = outcome.ectx
		previous = outcome.previous
	}

	return previous, nil
}
