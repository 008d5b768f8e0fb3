package schema

import (
	"fmt"
	"regexp"

	"github.com/google/uuid"
)

// RootMode controls how a step resolves the DOM subtree it operates against.
type RootMode string

const (
	// RootModeInherit uses the root passed down from the parent pipeline.
	RootModeInherit RootMode = "inherit"
	// RootModeDocument forces the page document as the root.
	RootModeDocument RootMode = "document"
	// RootModeElement resolves an explicit element reference from the step's
	// Root field and fails when it is absent.
	RootModeElement RootMode = "element"
)

// Valid reports whether m is a recognized root mode. The empty string is
// valid and treated as RootModeInherit.
func (m RootMode) Valid() bool {
	switch m {
	case "", RootModeInherit, RootModeDocument, RootModeElement:
		return true
	}
	return false
}

// Root identifies the subtree a brick operates against: the whole document,
// or an element addressed by selector.
type Root struct {
	Document bool
	Selector string
}

// DocumentRoot is the root covering the entire page document.
var DocumentRoot = Root{Document: true}

// IsZero reports whether r carries no target at all. A zero root means no
// ancestor established one.
func (r Root) IsZero() bool {
	return !r.Document && r.Selector == ""
}

// Window is a routing hint naming the browsing context a step targets. The
// interpreter carries it through to bricks unchanged; routing is owned by
// the messaging layer outside this module.
type Window string

const (
	WindowSelf      Window = "self"
	WindowTarget    Window = "target"
	WindowTop       Window = "top"
	WindowBroadcast Window = "broadcast"
)

// Step is a single brick invocation inside a pipeline.
type Step struct {
	// BrickID names the brick implementation to look up in the registry.
	BrickID string

	// InstanceID is generated once when the step is created and never
	// reused. It is the trace correlation key; position in the pipeline is
	// not stable under editing and must never substitute for it.
	InstanceID uuid.UUID

	// Label is an optional human-readable name for logs and traces.
	Label string

	// Config holds the step's arguments. Values may be literals, or
	// *Expression leaves nested arbitrarily deep in maps and slices.
	Config map[string]any

	// OutputKey, when set, names the context variable the step's result is
	// bound to (addressed as "@<OutputKey>" by later steps).
	OutputKey string

	// Condition, when non-nil, is resolved before the step runs; a falsy
	// result skips the step entirely.
	Condition any

	// RootMode selects how the step's root is established.
	RootMode RootMode

	// Root is the element reference used by RootModeElement. It may be a
	// literal selector string or an expression resolving to one.
	Root any

	// Window is the browsing-context routing hint.
	Window Window

	// TemplateEngine is the engine applied to plain string config values
	// under v1 implicit templating. Ignored when explicit data flow is on.
	TemplateEngine Tag
}

// Pipeline is an ordered sequence of steps. It is constructed immediately
// before each run and never mutated while running.
type Pipeline []*Step

var outputKeyRe = regexp.MustCompile(`^[A-Za-z_][0-9A-Za-z_]*$`)

// ValidOutputKey reports whether key is a legal output variable identifier.
func ValidOutputKey(key string) bool {
	return outputKeyRe.MatchString(key)
}

// Validate checks the structural invariants of the pipeline: every step
// names a brick, carries a stable instance id, and uses legal output keys
// and root modes.
func (p Pipeline) Validate() error {
	seen := make(map[uuid.UUID]struct{}, len(p))
	for i, step := range p {
		if step == nil {
			return fmt.Errorf("step %d: nil step", i)
		}
		if step.BrickID == "" {
			return fmt.Errorf("step %d: missing brick id", i)
		}
		if step.InstanceID == uuid.Nil {
			return fmt.Errorf("step %d (%s): missing instance id", i, step.BrickID)
		}
		if _, dup := seen[step.InstanceID]; dup {
			return fmt.Errorf("step %d (%s): duplicate instance id %s", i, step.BrickID, step.InstanceID)
		}
		seen[step.InstanceID] = struct{}{}
		if step.OutputKey != "" && !ValidOutputKey(step.OutputKey) {
			return fmt.Errorf("step %d (%s): invalid output key %q", i, step.BrickID, step.OutputKey)
		}
		if !step.RootMode.Valid() {
			return fmt.Errorf("step %d (%s): invalid root mode %q", i, step.BrickID, step.RootMode)
		}
		if step.TemplateEngine != "" && !step.TemplateEngine.IsTemplate() {
			return fmt.Errorf("step %d (%s): invalid template engine %q", i, step.BrickID, step.TemplateEngine)
		}
	}
	return nil
}
