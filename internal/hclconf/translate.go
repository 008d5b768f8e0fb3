package hclconf

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hashicorp/hcl/v2"

	"github.com/modkit/brickflow/internal/config"
	"github.com/modkit/brickflow/internal/ctxlog"
	"github.com/modkit/brickflow/internal/schema"
)

// mainPipeline is the name of the mod's entry pipeline block.
const mainPipeline = "main"

// translate turns the merged HCL blocks into the config model.
func translate(ctx context.Context, root *fileRoot) (*config.Mod, error) {
	ctxlog.FromContext(ctx).Debug("Translating mod blocks.", "pipelines", len(root.Pipelines), "integrations", len(root.Integrations))
	evalCtx := &hcl.EvalContext{Functions: exprFunctions()}

	mod := &config.Mod{
		ID:         root.Mod.ID,
		Name:       root.Mod.Name,
		APIVersion: schema.V3,
	}
	if root.Mod.APIVersion != "" {
		version, err := schema.ParseAPIVersion(root.Mod.APIVersion)
		if err != nil {
			return nil, err
		}
		mod.APIVersion = version
	}
	if isExprDefined(root.Mod.OptionDefaults) {
		value, err := evalToNative(root.Mod.OptionDefaults, evalCtx)
		if err != nil {
			return nil, fmt.Errorf("invalid option_defaults: %w", err)
		}
		defaults, ok := value.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("option_defaults must be an object")
		}
		mod.OptionDefaults = defaults
	}

	for _, block := range root.Integrations {
		integration, err := translateIntegration(block, evalCtx)
		if err != nil {
			return nil, err
		}
		mod.Integrations = append(mod.Integrations, integration)
	}

	tr := &translator{
		evalCtx:    evalCtx,
		raw:        make(map[string]*pipelineBlock, len(root.Pipelines)),
		done:       make(map[string]schema.Pipeline),
		inProgress: make(map[string]bool),
	}
	for _, block := range root.Pipelines {
		if _, dup := tr.raw[block.Name]; dup {
			return nil, fmt.Errorf("duplicate pipeline block %q", block.Name)
		}
		tr.raw[block.Name] = block
	}

	main, err := tr.pipeline(mainPipeline)
	if err != nil {
		return nil, err
	}
	mod.Pipeline = main
	return mod, nil
}

// translateIntegration evaluates an integration block's attributes into its
// config map. The block label is the bare output key.
func translateIntegration(block *integrationBlock, evalCtx *hcl.EvalContext) (config.Integration, error) {
	attrs, diags := block.Body.JustAttributes()
	if diags.HasErrors() {
		return config.Integration{}, fmt.Errorf("integration %q: %w", block.Name, diags)
	}

	cfg := make(map[string]any, len(attrs))
	for name, attr := range attrs {
		value, err := evalToNative(attr.Expr, evalCtx)
		if err != nil {
			return config.Integration{}, fmt.Errorf("integration %q, attribute %q: %w", block.Name, name, err)
		}
		cfg[name] = value
	}

	return config.Integration{OutputKey: "@" + block.Name, Config: cfg}, nil
}

// translator resolves named pipeline blocks into schema pipelines,
// memoizing results and rejecting reference cycles.
type translator struct {
	evalCtx    *hcl.EvalContext
	raw        map[string]*pipelineBlock
	done       map[string]schema.Pipeline
	inProgress map[string]bool
}

func (t *translator) pipeline(name string) (schema.Pipeline, error) {
	if p, ok := t.done[name]; ok {
		return p, nil
	}
	if t.inProgress[name] {
		return nil, fmt.Errorf("pipeline %q is part of a reference cycle", name)
	}
	block, ok := t.raw[name]
	if !ok {
		return nil, fmt.Errorf("unknown pipeline %q", name)
	}

	t.inProgress[name] = true
	defer delete(t.inProgress, name)

	pipeline := make(schema.Pipeline, 0, len(block.Steps))
	for _, sb := range block.Steps {
		step, err := t.step(sb)
		if err != nil {
			return nil, fmt.Errorf("pipeline %q: %w", name, err)
		}
		pipeline = append(pipeline, step)
	}

	t.done[name] = pipeline
	return pipeline, nil
}

func (t *translator) step(block *stepBlock) (*schema.Step, error) {
	step := &schema.Step{
		BrickID:        block.BrickID,
		Label:          block.Name,
		OutputKey:      block.OutputKey,
		RootMode:       schema.RootMode(block.RootMode),
		Window:         schema.Window(block.Window),
		TemplateEngine: schema.Tag(block.TemplateEngine),
	}

	if block.InstanceID != "" {
		id, err := uuid.Parse(block.InstanceID)
		if err != nil {
			return nil, fmt.Errorf("step %q: invalid instance_id: %w", block.Name, err)
		}
		step.InstanceID = id
	} else {
		step.InstanceID = uuid.New()
	}

	if isExprDefined(block.Condition) {
		condition, err := t.valueOf(block.Condition)
		if err != nil {
			return nil, fmt.Errorf("step %q condition: %w", block.Name, err)
		}
		step.Condition = condition
	}
	if isExprDefined(block.Root) {
		rootRef, err := t.valueOf(block.Root)
		if err != nil {
			return nil, fmt.Errorf("step %q root: %w", block.Name, err)
		}
		step.Root = rootRef
	}

	step.Config = map[string]any{}
	if block.Config != nil {
		attrs, diags := block.Config.Body.JustAttributes()
		if diags.HasErrors() {
			return nil, fmt.Errorf("step %q config: %w", block.Name, diags)
		}
		for name, attr := range attrs {
			value, err := t.valueOf(attr.Expr)
			if err != nil {
				return nil, fmt.Errorf("step %q, config attribute %q: %w", block.Name, name, err)
			}
			step.Config[name] = value
		}
	}

	return step, nil
}

// valueOf evaluates an attribute expression and finalizes markers.
func (t *translator) valueOf(expr hcl.Expression) (any, error) {
	native, err := evalToNative(expr, t.evalCtx)
	if err != nil {
		return nil, err
	}
	return t.finalize(native)
}

// finalize replaces rawExpr markers with schema expressions, resolving
// pipeline references by name.
func (t *translator) finalize(value any) (any, error) {
	switch v := value.(type) {
	case rawExpr:
		return t.finalizeExpr(v)
	case map[string]any:
		for key, nested := range v {
			final, err := t.finalize(nested)
			if err != nil {
				return nil, err
			}
			v[key] = final
		}
		return v, nil
	case []any:
		for i, nested := range v {
			final, err := t.finalize(nested)
			if err != nil {
				return nil, err
			}
			v[i] = final
		}
		return v, nil
	default:
		return value, nil
	}
}

func (t *translator) finalizeExpr(raw rawExpr) (any, error) {
	switch tag := schema.Tag(raw.tag); tag {
	case schema.TagPipeline:
		name, ok := raw.value.(string)
		if !ok {
			return nil, fmt.Errorf("sub() requires a pipeline name")
		}
		sub, err := t.pipeline(name)
		if err != nil {
			return nil, err
		}
		return schema.PipelineExpr(sub), nil

	case schema.TagDefer:
		inner, err := t.finalize(raw.value)
		if err != nil {
			return nil, err
		}
		return schema.DeferExpr(inner), nil

	default:
		text, ok := raw.value.(string)
		if !ok {
			return nil, fmt.Errorf("%s() requires a string argument", tag)
		}
		return schema.NewExpression(tag, text), nil
	}
}

// evalToNative evaluates an HCL expression and converts the result to
// native Go values with markers preserved.
func evalToNative(expr hcl.Expression, evalCtx *hcl.EvalContext) (any, error) {
	value, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return nil, diags
	}
	return ctyToNative(value)
}

// isExprDefined checks whether an optional HCL attribute was actually
// present. The decoder populates omitted optionals with zero-width
// expression placeholders, so a nil check is not enough: a real attribute
// occupies bytes in the file.
func isExprDefined(expr hcl.Expression) bool {
	if expr == nil {
		return false
	}
	r := expr.Range()
	return r.End.Byte > r.Start.Byte
}
