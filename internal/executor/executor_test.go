package executor_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modkit/brickflow/bricks/foreach"
	"github.com/modkit/brickflow/bricks/ifelse"
	"github.com/modkit/brickflow/bricks/renderer"
	"github.com/modkit/brickflow/bricks/tryexcept"
	"github.com/modkit/brickflow/internal/executor"
	"github.com/modkit/brickflow/internal/fault"
	"github.com/modkit/brickflow/internal/registry"
	"github.com/modkit/brickflow/internal/schema"
	"github.com/modkit/brickflow/internal/testutil"
	"github.com/modkit/brickflow/internal/trace"
)

var v3 = executor.Options{Version: schema.V3.Options()}

func step(brickID string, config map[string]any) *schema.Step {
	return &schema.Step{BrickID: brickID, InstanceID: uuid.New(), Config: config}
}

func run(t *testing.T, h *testutil.Harness, pipeline schema.Pipeline, initial executor.InitialValues, opts executor.Options) any {
	t.Helper()
	result, err := h.Interp.Run(context.Background(), pipeline, initial, opts)
	require.NoError(t, err)
	return result
}

func TestRun_OutputKeysThreadThroughContext(t *testing.T) {
	t.Parallel()

	h := testutil.NewHarness(&testutil.StubBrick{BrickID: "echo"})

	first := step("echo", map[string]any{"value": schema.VarExpr("@input.seed")})
	first.OutputKey = "a"
	second := step("echo", map[string]any{"value": schema.VarExpr("@a.value")})
	second.OutputKey = "b"
	third := step("echo", map[string]any{"value": schema.VarExpr("@b.value")})

	result := run(t, h, schema.Pipeline{first, second, third}, executor.InitialValues{
		Input: map[string]any{"seed": "s"},
	}, v3)

	assert.Equal(t, map[string]any{"value": "s"}, result)
}

func TestRun_UnboundOutputCarriesAsPrevious(t *testing.T) {
	t.Parallel()

	h := testutil.NewHarness(
		testutil.StaticBrick("first", "from-first"),
		testutil.StaticBrick("second", "from-second"),
	)

	// The second step binds an output key and is also the last step, so
	// its output is both merged and returned.
	bound := step("second", nil)
	bound.OutputKey = "out"

	result := run(t, h, schema.Pipeline{step("first", nil), bound}, executor.InitialValues{}, v3)
	assert.Equal(t, "from-second", result)
}

func TestRun_SkippedTrailingStepCarriesPreviousOutput(t *testing.T) {
	t.Parallel()

	h := testutil.NewHarness(
		testutil.StaticBrick("first", "kept"),
		testutil.StaticBrick("second", "never"),
	)

	skipped := step("second", nil)
	skipped.Condition = schema.VarExpr("@input.go")

	result := run(t, h, schema.Pipeline{step("first", nil), skipped}, executor.InitialValues{
		Input: map[string]any{"go": "no"},
	}, v3)

	assert.Equal(t, "kept", result)
}

func TestRun_ConditionSkipLeavesNoTrace(t *testing.T) {
	t.Parallel()

	spy := testutil.StaticBrick("second", "never")
	h := testutil.NewHarness(testutil.StaticBrick("first", "kept"), spy)

	skipped := step("second", nil)
	skipped.Condition = "false"

	runID := uuid.New()
	opts := v3
	opts.RunID = &runID

	_ = run(t, h, schema.Pipeline{step("first", nil), skipped}, executor.InitialValues{}, opts)

	assert.Equal(t, 0, spy.CallCount())
	records := h.Recorder.Snapshot(runID)
	require.Len(t, records, 1)
	assert.Equal(t, "first", records[0].BrickID)
}

func TestRun_TruthyConditionRunsStep(t *testing.T) {
	t.Parallel()

	spy := testutil.StaticBrick("only", "ran")
	h := testutil.NewHarness(spy)

	conditional := step("only", nil)
	conditional.Condition = "YES"

	result := run(t, h, schema.Pipeline{conditional}, executor.InitialValues{}, v3)
	assert.Equal(t, "ran", result)
	assert.Equal(t, 1, spy.CallCount())
}

func TestRun_BusinessErrorPropagatesUnwrapped(t *testing.T) {
	t.Parallel()

	boom := fault.Business("item 3 has no price")
	h := testutil.NewHarness(
		testutil.StaticBrick("first", "ok"),
		testutil.FailBrick("second", boom),
		testutil.StaticBrick("third", "unreachable"),
	)

	spyThird, err := h.Registry.Lookup("third")
	require.NoError(t, err)

	_, runErr := h.Interp.Run(context.Background(), schema.Pipeline{
		step("first", nil), step("second", nil), step("third", nil),
	}, executor.InitialValues{}, v3)

	// The exact error value comes back; nothing wraps or rewords it.
	require.ErrorIs(t, runErr, boom)
	assert.Equal(t, 0, spyThird.(*testutil.StubBrick).CallCount())
}

func TestRun_NestedErrorStillPropagatesUnmodified(t *testing.T) {
	t.Parallel()

	boom := fault.Business("nested failure")
	h := testutil.NewHarness(&foreach.Brick{}, testutil.FailBrick("inner", boom))

	body := schema.PipelineExpr(schema.Pipeline{step("inner", nil)})
	loop := step("for-each", map[string]any{
		"elements": []any{1, 2},
		"body":     body,
	})

	_, err := h.Interp.Run(context.Background(), schema.Pipeline{loop}, executor.InitialValues{}, v3)
	assert.ErrorIs(t, err, boom)
	assert.True(t, fault.IsBusiness(err))
}

func TestRun_MissingBrickIsBusinessError(t *testing.T) {
	t.Parallel()

	h := testutil.NewHarness()
	_, err := h.Interp.Run(context.Background(), schema.Pipeline{step("ghost", nil)}, executor.InitialValues{}, v3)
	require.Error(t, err)
	assert.True(t, fault.IsBusiness(err))
	assert.ErrorContains(t, err, "ghost")
}

func TestRun_InvalidPipelinePanics(t *testing.T) {
	t.Parallel()

	h := testutil.NewHarness()
	assert.Panics(t, func() {
		_, _ = h.Interp.Run(context.Background(), schema.Pipeline{{BrickID: "missing-instance"}}, executor.InitialValues{}, v3)
	})
}

func TestRun_CancelledContextAbortsBetweenSteps(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	h := testutil.NewHarness(&testutil.StubBrick{
		BrickID: "canceller",
		Fn: func(context.Context, map[string]any, *registry.BrickOptions) (any, error) {
			cancel()
			return "done", nil
		},
	}, testutil.StaticBrick("after", "never"))

	_, err := h.Interp.Run(ctx, schema.Pipeline{step("canceller", nil), step("after", nil)}, executor.InitialValues{}, v3)
	require.Error(t, err)
	assert.True(t, fault.IsCancelled(err))
	assert.False(t, fault.IsBusiness(err))
}

func TestRun_HeadlessSignalBecomesResult(t *testing.T) {
	t.Parallel()

	h := testutil.NewHarness(&renderer.Brick{})
	render := step("render-document", map[string]any{"body": "hello", "title": "Greeting"})

	opts := v3
	opts.Headless = true
	result := run(t, h, schema.Pipeline{render}, executor.InitialValues{}, opts)

	signal, ok := result.(*fault.HeadlessSignal)
	require.True(t, ok)
	assert.Equal(t, "render-document", signal.BrickID)
	payload := signal.Payload.(map[string]any)
	assert.Equal(t, "document", payload["type"])
	assert.Equal(t, "hello", payload["body"])
	assert.Equal(t, "Greeting", payload["title"])
}

func TestRun_HeadlessSignalRethrownWhenNotHeadless(t *testing.T) {
	t.Parallel()

	h := testutil.NewHarness(&renderer.Brick{})
	render := step("render-document", map[string]any{"body": "hello"})

	_, err := h.Interp.Run(context.Background(), schema.Pipeline{render}, executor.InitialValues{}, v3)
	require.Error(t, err)
	_, ok := fault.AsHeadless(err)
	assert.True(t, ok)
	assert.False(t, fault.IsBusiness(err))
}

func TestRun_RendererStopsFollowingSteps(t *testing.T) {
	t.Parallel()

	after := testutil.StaticBrick("after", "never")
	h := testutil.NewHarness(&renderer.Brick{}, after)

	opts := v3
	opts.Headless = true
	result := run(t, h, schema.Pipeline{
		step("render-document", map[string]any{"body": "x"}),
		step("after", nil),
	}, executor.InitialValues{}, opts)

	_, ok := result.(*fault.HeadlessSignal)
	assert.True(t, ok)
	assert.Equal(t, 0, after.CallCount())
}

func TestRun_ServiceContextIsVisible(t *testing.T) {
	t.Parallel()

	h := testutil.NewHarness(&testutil.StubBrick{BrickID: "echo"})
	s := step("echo", map[string]any{"base": schema.VarExpr("@google.base_url")})

	result := run(t, h, schema.Pipeline{s}, executor.InitialValues{
		ServiceContext: map[string]any{"@google": map[string]any{"base_url": "https://sheets.example"}},
	}, v3)

	assert.Equal(t, map[string]any{"base": "https://sheets.example"}, result)
}

func TestRun_SubPipelineContextDoesNotLeakUpward(t *testing.T) {
	t.Parallel()

	probe := &testutil.StubBrick{BrickID: "probe"}
	h := testutil.NewHarness(&ifelse.Brick{}, testutil.StaticBrick("inner", "x"), probe)

	// The sub-pipeline binds "@hidden"; the step after the if-else must
	// not see it.
	innerStep := step("inner", nil)
	innerStep.OutputKey = "hidden"
	branch := step("if-else", map[string]any{
		"condition": true,
		"if":        schema.PipelineExpr(schema.Pipeline{innerStep}),
	})
	after := step("probe", map[string]any{"leak": schema.VarExpr("@hidden?.x")})

	result := run(t, h, schema.Pipeline{branch, after}, executor.InitialValues{}, v3)
	assert.Equal(t, map[string]any{"leak": nil}, result)
}

func TestRun_LoopBranchesInTrace(t *testing.T) {
	t.Parallel()

	h := testutil.NewHarness(&foreach.Brick{}, &testutil.StubBrick{
		BrickID: "double",
		Fn: func(_ context.Context, args map[string]any, _ *registry.BrickOptions) (any, error) {
			n := args["n"].(float64)
			return n * 2, nil
		},
	})

	inner := step("double", map[string]any{"n": schema.VarExpr("@item")})
	loop := step("for-each", map[string]any{
		"elements":    []any{float64(1), float64(2), float64(3)},
		"body":        schema.PipelineExpr(schema.Pipeline{inner}),
		"element_key": "item",
	})

	runID := uuid.New()
	opts := v3
	opts.RunID = &runID

	result := run(t, h, schema.Pipeline{loop}, executor.InitialValues{}, opts)
	assert.Equal(t, []any{float64(2), float64(4), float64(6)}, result)

	var innerRecords []*trace.Record
	for _, rec := range h.Recorder.Snapshot(runID) {
		if rec.BrickID == "double" {
			innerRecords = append(innerRecords, rec)
		}
	}
	require.Len(t, innerRecords, 3)
	for i, rec := range innerRecords {
		assert.Equal(t, []schema.Branch{{Key: "loop", Counter: i}}, rec.Branches)
		assert.Equal(t, rec.InstanceID, inner.InstanceID)
	}
}

func TestRun_TraceRerunOverwrites(t *testing.T) {
	t.Parallel()

	h := testutil.NewHarness(testutil.StaticBrick("only", "v"))
	pipeline := schema.Pipeline{step("only", nil)}

	runID := uuid.New()
	opts := v3
	opts.RunID = &runID

	_ = run(t, h, pipeline, executor.InitialValues{}, opts)
	_ = run(t, h, pipeline, executor.InitialValues{}, opts)

	assert.Len(t, h.Recorder.Snapshot(runID), 1)
}

func TestRun_NilRunIDDisablesTracing(t *testing.T) {
	t.Parallel()

	h := testutil.NewHarness(testutil.StaticBrick("only", "v"))
	_ = run(t, h, schema.Pipeline{step("only", nil)}, executor.InitialValues{}, v3)
	assert.Equal(t, 0, h.Recorder.Len())
}

func TestRun_FailedStepRecordsError(t *testing.T) {
	t.Parallel()

	h := testutil.NewHarness(testutil.FailBrick("bad", errors.New("wires crossed")))

	runID := uuid.New()
	opts := v3
	opts.RunID = &runID

	_, err := h.Interp.Run(context.Background(), schema.Pipeline{step("bad", nil)}, executor.InitialValues{}, opts)
	require.Error(t, err)

	records := h.Recorder.Snapshot(runID)
	require.Len(t, records, 1)
	assert.Equal(t, "wires crossed", records[0].Error)
	assert.Nil(t, records[0].Output)
}

func TestRun_TryExceptRecoversBusinessFailures(t *testing.T) {
	t.Parallel()

	h := testutil.NewHarness(
		&tryexcept.Brick{},
		testutil.FailBrick("flaky", fault.Business("upstream said no")),
		&testutil.StubBrick{BrickID: "echo"},
	)

	tryStep := step("try-except", map[string]any{
		"try":    schema.PipelineExpr(schema.Pipeline{step("flaky", nil)}),
		"except": schema.PipelineExpr(schema.Pipeline{step("echo", map[string]any{"message": schema.VarExpr("@error.message")})}),
	})

	result := run(t, h, schema.Pipeline{tryStep}, executor.InitialValues{}, v3)
	assert.Equal(t, map[string]any{"message": "upstream said no"}, result)
}
