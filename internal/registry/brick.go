package registry

import (
	"context"
	"log/slog"

	"github.com/modkit/brickflow/internal/fault"
	"github.com/modkit/brickflow/internal/schema"
)

// Brick is a single unit of work: a reader, effect, transform, renderer, or
// control-flow construct. Implementations receive fully rendered arguments;
// expression resolution has already happened by the time Run is called,
// except for pipeline- and defer-tagged values, which arrive unresolved on
// purpose.
type Brick interface {
	// ID is the identifier steps use to refer to this brick.
	ID() string

	// InputSchema returns the JSON Schema document validating rendered
	// arguments before invocation. Empty string skips validation.
	InputSchema() string

	// Run executes the brick. A business-classified error aborts the
	// pipeline; a fault.HeadlessSignal hands a renderer payload up the
	// stack; any other error is treated as fatal.
	Run(ctx context.Context, args map[string]any, opts *BrickOptions) (any, error)
}

// PureBrick is implemented by bricks with no side effects. Preview tooling
// uses it to decide whether re-running is safe.
type PureBrick interface {
	Brick
	IsPure() bool
}

// RootAwareBrick is implemented by bricks whose behavior depends on the
// root element they are invoked against. Preview tooling uses it to decide
// whether a root change requires a re-run.
type RootAwareBrick interface {
	Brick
	IsRootAware() bool
}

// PipelineRunner executes an embedded sub-pipeline on behalf of a
// control-flow brick. The branch annotates the descent for trace
// correlation; extra variables (e.g. "@element" for loop bodies, "@error"
// for recovery blocks) are merged into a copy of the parent context; a
// zero root inherits the invoking step's root.
type PipelineRunner func(ctx context.Context, pipeline schema.Pipeline, branch schema.Branch, extra map[string]any, root schema.Root) (any, error)

// BrickOptions is the capability object passed to every brick invocation.
// It is constructed fresh per step; bricks must not retain it beyond Run.
type BrickOptions struct {
	// Ctxt is the execution context visible to the step, for bricks that
	// need to resolve deferred values or inspect prior outputs.
	Ctxt map[string]any

	// Logger is pre-tagged with the step's identity.
	Logger *slog.Logger

	// Root is the resolved root target for this invocation.
	Root schema.Root

	// Headless reports whether the caller requested headless execution.
	Headless bool

	// Meta carries the run correlation identity and the branch stack.
	Meta schema.RunMetadata

	// RunPipeline executes a pipeline-tagged expression in a child context.
	RunPipeline PipelineRunner

	// RunRendererPipeline is like RunPipeline but catches the headless
	// signal and yields the renderer payload as the result, for bricks
	// that embed renderers inside their own output.
	RunRendererPipeline PipelineRunner
}

// PipelineArg unwraps a pipeline-tagged expression argument. Control-flow
// bricks receive their sub-pipelines unresolved; anything else in the field
// is a user configuration mistake.
func PipelineArg(value any, field string) (schema.Pipeline, error) {
	expr, ok := value.(*schema.Expression)
	if !ok {
		return nil, fault.Businessf("argument %q must be a pipeline", field)
	}
	pipeline, ok := expr.AsPipeline()
	if !ok {
		return nil, fault.Businessf("argument %q must be a pipeline, got a %s expression", field, expr.Tag)
	}
	return pipeline, nil
}
