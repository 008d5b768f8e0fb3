package schema

import "fmt"

// Tag identifies the kind of deferred computation an Expression represents.
type Tag string

const (
	// TagMustache renders the value as a mustache template string.
	TagMustache Tag = "mustache"
	// TagNunjucks renders the value as a nunjucks (jinja-style) template string.
	TagNunjucks Tag = "nunjucks"
	// TagHandlebars renders the value as a handlebars template string.
	TagHandlebars Tag = "handlebars"
	// TagVar looks the value up as a variable path in the execution context.
	TagVar Tag = "var"
	// TagPipeline marks the value as a sub-pipeline for a control-flow brick.
	TagPipeline Tag = "pipeline"
	// TagDefer leaves the value unevaluated; the consuming brick decides
	// when, and whether, to resolve it.
	TagDefer Tag = "defer"
)

// Valid reports whether t is one of the recognized expression tags.
func (t Tag) Valid() bool {
	switch t {
	case TagMustache, TagNunjucks, TagHandlebars, TagVar, TagPipeline, TagDefer:
		return true
	}
	return false
}

// IsTemplate reports whether t names a string template engine.
func (t Tag) IsTemplate() bool {
	return t == TagMustache || t == TagNunjucks || t == TagHandlebars
}

// Expression is a tagged deferred value. For template tags and TagVar the
// value is a string; for TagPipeline it is a Pipeline; for TagDefer it is an
// arbitrary unevaluated value.
type Expression struct {
	Tag   Tag
	Value any
}

// NewExpression constructs an Expression, panicking on an unrecognized tag.
// An invalid tag is a programmer error, never user input surviving this far.
func NewExpression(tag Tag, value any) *Expression {
	if !tag.Valid() {
		panic(fmt.Sprintf("schema: unknown expression tag %q", tag))
	}
	return &Expression{Tag: tag, Value: value}
}

// VarExpr builds a variable-reference expression for the given path.
func VarExpr(path string) *Expression {
	return &Expression{Tag: TagVar, Value: path}
}

// TemplateExpr builds a template expression. The tag must name a template
// engine.
func TemplateExpr(tag Tag, template string) *Expression {
	if !tag.IsTemplate() {
		panic(fmt.Sprintf("schema: tag %q is not a template engine", tag))
	}
	return &Expression{Tag: tag, Value: template}
}

// PipelineExpr wraps a sub-pipeline so a control-flow brick can execute it.
func PipelineExpr(p Pipeline) *Expression {
	return &Expression{Tag: TagPipeline, Value: p}
}

// DeferExpr wraps a value that must not be resolved until the consuming
// brick asks for it.
func DeferExpr(value any) *Expression {
	return &Expression{Tag: TagDefer, Value: value}
}

// AsPipeline returns the wrapped sub-pipeline when e is pipeline-tagged.
func (e *Expression) AsPipeline() (Pipeline, bool) {
	if e == nil || e.Tag != TagPipeline {
		return nil, false
	}
	p, ok := e.Value.(Pipeline)
	return p, ok
}

// TemplateString returns the template text when e carries a template tag.
func (e *Expression) TemplateString() (string, bool) {
	if e == nil || !e.Tag.IsTemplate() {
		return "", false
	}
	s, ok := e.Value.(string)
	return s, ok
}
