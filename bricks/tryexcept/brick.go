// Package tryexcept provides the error-recovery control-flow brick: it
// runs its try sub-pipeline and, when a business error escapes it, runs
// the except sub-pipeline with the failure injected as "@error".
// Cancellation and renderer signals are never caught here.
package tryexcept

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

// Brick is the try/except control-flow brick.
type Brick struct{}

func (b *Brick) ID() string { return "try-except" }

func (b *Brick) InputSchema() string {
	return `{
		"type": "object",
		"properties": {
			"try": {},
			"except": {},
			"error_key": {"type": "string"}
		},
		"required": ["try"]
	}`
}

func (b *Brick) Run(ctx context.Context, args map[string]any, opts *registry.BrickOptions) (any, error) {
	tryPipeline, err := registry.PipelineArg(args["try"], "try")
	if err != nil {
		return nil, err
	}

	out, runErr := opts.RunPipeline(ctx, tryPipeline, schema.Branch{Key: "try"}, nil, schema.Root{})
	if runErr == nil {
		return out, nil
	}

	// Only business failures are recoverable. A renderer handing off its
	// payload and a cancelled run both pass through untouched.
	if _, headless := fault.AsHeadless(runErr); headless || fault.IsCancelled(runErr) || !fault.IsBusiness(runErr) {
		return nil, runErr
	}

	if args["except"] == nil {
		// No recovery pipeline: the failure is swallowed and the step
		// yields nothing, matching "try without except" semantics.
		opts.Logger.Debug("Recoverable failure with no except pipeline.", "error", runErr)
		return nil, nil
	}

	exceptPipeline, err := registry.PipelineArg(args["except"], "except")
	if err != nil {
		return nil, err
	}

	errorKey := "error"
	if key, ok := args["error_key"].(string); ok && key != "" {
		if !schema.ValidOutputKey(key) {
			return nil, fault.Businessf("invalid error key %q", key)
		}
		errorKey = key
	}
	extra := map[string]any{
		"@" + errorKey: map[string]any{"message": runErr.Error()},
	}
	return opts.RunPipeline(ctx, exceptPipeline, schema.Branch{Key: "recover"}, extra, schema.Root{})
}
