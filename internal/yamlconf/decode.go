package yamlconf

import (
	"fmt"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/modkit/brickflow/internal/schema"
)

// expressionTags maps YAML local tags to expression tags.
var expressionTags = map[string]schema.Tag{
	"!var":        schema.TagVar,
	"!mustache":   schema.TagMustache,
	"!nunjucks":   schema.TagNunjucks,
	"!handlebars": schema.TagHandlebars,
	"!pipeline":   schema.TagPipeline,
	"!defer":      schema.TagDefer,
}

// decodeValue converts a YAML node into a config value: expression-tagged
// nodes become *schema.Expression, mappings and sequences are walked
// recursively, and plain scalars decode to their natural Go types.
func decodeValue(node *yaml.Node) (any, error) {
	if node.Kind == yaml.AliasNode {
		return decodeValue(node.Alias)
	}

	if tag, ok := expressionTags[node.Tag]; ok {
		return decodeExpression(tag, node)
	}

	switch node.Kind {
	case yaml.MappingNode:
		out := make(map[string]any, len(node.Content)/2)
		for i := 0; i < len(node.Content)-1; i += 2 {
			value, err := decodeValue(node.Content[i+1])
			if err != nil {
				return nil, err
			}
			out[node.Content[i].Value] = value
		}
		return out, nil

	case yaml.SequenceNode:
		out := make([]any, len(node.Content))
		for i, item := range node.Content {
			value, err := decodeValue(item)
			if err != nil {
				return nil, err
			}
			out[i] = value
		}
		return out, nil

	case yaml.ScalarNode:
		var value any
		if err := node.Decode(&value); err != nil {
			return nil, fmt.Errorf("line %d: %w", node.Line, err)
		}
		return value, nil

	default:
		return nil, fmt.Errorf("line %d: unsupported YAML node kind", node.Line)
	}
}

// decodeExpression builds the Expression for a tagged node.
func decodeExpression(tag schema.Tag, node *yaml.Node) (any, error) {
	switch tag {
	case schema.TagPipeline:
		pipeline, err := decodeSteps(node)
		if err != nil {
			return nil, err
		}
		return schema.PipelineExpr(pipeline), nil

	case schema.TagDefer:
		// The wrapped value keeps its own nested expressions; the
		// consuming brick renders them later, if at all.
		value, err := decodeUntagged(node)
		if err != nil {
			return nil, err
		}
		return schema.DeferExpr(value), nil

	default:
		if node.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: %s expression must be a string", node.Line, tag)
		}
		return schema.NewExpression(tag, node.Value), nil
	}
}

// decodeUntagged decodes a defer body: the node's own expression tag is
// already consumed, but nested tags still apply.
func decodeUntagged(node *yaml.Node) (any, error) {
	stripped := *node
	stripped.Tag = ""
	switch node.Kind {
	case yaml.ScalarNode:
		// Re-resolve the scalar as if it were untagged.
		stripped.Tag = "!!str"
	}
	return decodeValue(&stripped)
}

// decodeSteps turns a YAML sequence into a pipeline.
func decodeSteps(node *yaml.Node) (schema.Pipeline, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("line %d: pipeline must be a sequence of steps", node.Line)
	}

	pipeline := make(schema.Pipeline, 0, len(node.Content))
	for _, item := range node.Content {
		step, err := decodeStep(item)
		if err != nil {
			return nil, err
		}
		pipeline = append(pipeline, step)
	}
	return pipeline, nil
}

// decodeStep maps one step mapping onto the schema.
func decodeStep(node *yaml.Node) (*schema.Step, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: step must be a mapping", node.Line)
	}

	step := &schema.Step{}
	for i := 0; i < len(node.Content)-1; i += 2 {
		key := node.Content[i].Value
		value := node.Content[i+1]

		switch key {
		case "brick":
			step.BrickID = value.Value
		case "instance_id":
			id, err := uuid.Parse(value.Value)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid instance_id: %w", value.Line, err)
			}
			step.InstanceID = id
		case "label":
			step.Label = value.Value
		case "output_key":
			step.OutputKey = value.Value
		case "condition":
			condition, err := decodeValue(value)
			if err != nil {
				return nil, err
			}
			step.Condition = condition
		case "root_mode":
			step.RootMode = schema.RootMode(value.Value)
		case "root":
			root, err := decodeValue(value)
			if err != nil {
				return nil, err
			}
			step.Root = root
		case "window":
			step.Window = schema.Window(value.Value)
		case "template_engine":
			step.TemplateEngine = schema.Tag(value.Value)
		case "config":
			cfg, err := decodeValue(value)
			if err != nil {
				return nil, err
			}
			m, ok := cfg.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("line %d: step config must be a mapping", value.Line)
			}
			step.Config = m
		default:
			return nil, fmt.Errorf("line %d: unknown step key %q", node.Content[i].Line, key)
		}
	}

	// Steps authored without an explicit instance id get a fresh one. Ids
	// persisted in the file survive re-loading, which is what keeps trace
	// correlation stable across edits.
	if step.InstanceID == uuid.Nil {
		step.InstanceID = uuid.New()
	}
	return step, nil
}
