package executor

import (
	"context"
	"log/slog"
	"time"

	"github.com/modkit/brickflow/internal/ctxlog"
	"github.com/modkit/brickflow/internal/expression"
	"github.com/modkit/brickflow/internal/fault"
	"github.com/modkit/brickflow/internal/registry"
	"github.com/modkit/brickflow/internal/schema"
	"github.com/modkit/brickflow/internal/trace"
)

// stepState is the interpreter state threaded into one step.
type stepState struct {
	ectx     map[string]any
	previous any
	root     schema.Root
	meta     schema.RunMetadata
	isLast   bool
}

// stepOutcome is what a step hands back to the loop.
type stepOutcome struct {
	skipped  bool
	ectx     map[string]any
	previous any
}

// reduceStep runs a single step: condition, root, argument rendering,
// lookup, validation, invocation, merge, trace.
func (ip *Interp) reduceStep(ctx context.Context, step *schema.Step, st stepState, opts Options) (stepOutcome, error) {
	logger := ctxlog.FromContext(ctx).With("brick", step.BrickID, "instance", step.InstanceID.String())
	if step.Label != "" {
		logger = logger.With("label", step.Label)
	}
	ctx = ctxlog.WithLogger(ctx, logger)
	ropts := resolverOptions(step, opts)

	// 1. Condition: a falsy condition skips the step entirely, with no
	// trace record and no context change.
	if step.Condition != nil {
		condition, err := ip.resolver.Render(ctx, step.Condition, st.ectx, ropts)
		if err != nil {
			return stepOutcome{}, err
		}
		if !conditionMet(condition) {
			logger.Debug("Condition not met; skipping step.")
			return stepOutcome{skipped: true}, nil
		}
	}

	// 2. Root.
	root, err := ip.resolveRoot(ctx, step, st.ectx, st.root, opts)
	if err != nil {
		return stepOutcome{}, err
	}

	// 3. Rendered arguments.
	rendered, err := ip.renderConfig(ctx, step, st.ectx, ropts)
	if err != nil {
		return stepOutcome{}, err
	}
	if opts.LogValues {
		logger.Debug("Rendered step arguments.", "args", rendered)
	}

	// 4. Brick lookup and input validation.
	brick, err := ip.registry.Lookup(step.BrickID)
	if err != nil {
		ip.record(ctx, step, st, rendered, nil, err)
		return stepOutcome{}, err
	}
	if err := ip.registry.ValidateInput(brick, rendered); err != nil {
		ip.record(ctx, step, st, rendered, nil, err)
		return stepOutcome{}, err
	}

	// 5. Invocation.
	logger.Info("▶️ Running brick.")
	output, err := brick.Run(ctx, rendered, ip.brickOptions(logger, st, root, opts))
	if err != nil {
		if signal, ok := fault.AsHeadless(err); ok {
			// Not a failure: record the renderer payload and let the
			// signal travel to the run boundary.
			ip.record(ctx, step, st, rendered, signal.Payload, nil)
			return stepOutcome{}, err
		}
		if fault.IsCancelled(err) || ctx.Err() != nil {
			// A cancelled run records nothing further.
			return stepOutcome{}, fault.Cancelled(err)
		}
		logger.Error("Brick failed.", "error", err)
		ip.record(ctx, step, st, rendered, nil, err)
		// The original error propagates unwrapped; display is the
		// caller's concern.
		return stepOutcome{}, err
	}
	logger.Info("✅ Brick finished.")
	if opts.LogValues {
		logger.Debug("Brick output.", "output", output)
	}

	// 6–8. Merge and trace. A bound output extends the context for later
	// steps; an unbound one becomes the carry-through "previous output".
	// The final step's output is the pipeline result either way.
	outcome := stepOutcome{ectx: st.ectx, previous: st.previous}
	if step.OutputKey != "" {
		outcome.ectx = mergeOutput(st.ectx, step.OutputKey, output)
	}
	if step.OutputKey == "" || st.isLast {
		outcome.previous = output
	}

	ip.record(ctx, step, st, rendered, output, nil)
	return outcome, nil
}

// renderConfig resolves every config field against the execution context.
func (ip *Interp) renderConfig(ctx context.Context, step *schema.Step, ectx map[string]any, ropts expression.Options) (map[string]any, error) {
	config := step.Config
	if config == nil {
		config = map[string]any{}
	}
	rendered, err := ip.resolver.Render(ctx, config, ectx, ropts)
	if err != nil {
		return nil, err
	}
	return rendered.(map[string]any), nil
}

// brickOptions assembles the per-invocation capability object, including
// the sub-pipeline callbacks that keep branch threading local to this run.
func (ip *Interp) brickOptions(logger *slog.Logger, st stepState, root schema.Root, opts Options) *registry.BrickOptions {
	runPipeline := func(ctx context.Context, pipeline schema.Pipeline, branch schema.Branch, extra map[string]any, subRoot schema.Root) (any, error) {
		child := extendContext(st.ectx, extra)
		return ip.reduce(ctx, pipeline, child, pickRoot(subRoot, root), st.meta.WithBranch(branch), opts)
	}

	runRendererPipeline := func(ctx context.Context, pipeline schema.Pipeline, branch schema.Branch, extra map[string]any, subRoot schema.Root) (any, error) {
		out, err := runPipeline(ctx, pipeline, branch, extra, subRoot)
		if err != nil {
			if signal, ok := fault.AsHeadless(err); ok {
				// An embedded renderer's payload becomes this brick's
				// data; the signal stops here.
				return signal.Payload, nil
			}
			return nil, err
		}
		return out, nil
	}

	return &registry.BrickOptions{
		Ctxt:                copyContext(st.ectx),
		Logger:              logger,
		Root:                root,
		Headless:            opts.Headless,
		Meta:                st.meta,
		RunPipeline:         runPipeline,
		RunRendererPipeline: runRendererPipeline,
	}
}

// record emits a best-effort trace record. Disabled tracing short-circuits;
// recorder misbehavior never aborts the run.
func (ip *Interp) record(ctx context.Context, step *schema.Step, st stepState, rendered map[string]any, output any, failure error) {
	if !st.meta.Tracing() {
		return
	}

	rec := &trace.Record{
		RunID:           *st.meta.RunID,
		ComponentID:     st.meta.ComponentID,
		InstanceID:      step.InstanceID,
		BrickID:         step.BrickID,
		Branches:        st.meta.Branches,
		TemplateContext: copyContext(st.ectx),
		RenderedArgs:    rendered,
		Output:          output,
		Timestamp:       time.Now(),
	}
	if failure != nil {
		rec.Error = failure.Error()
	}
	ip.recorder.Record(ctx, rec)
}
