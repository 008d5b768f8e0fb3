package executor

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/modkit/brickflow/internal/expression"
	"github.com/modkit/brickflow/internal/registry"
	"github.com/modkit/brickflow/internal/schema"
	"github.com/modkit/brickflow/internal/trace"
)

// Options configure one pipeline run.
type Options struct {
	// Logger overrides the context logger when set.
	Logger *slog.Logger

	// RunID correlates trace records. Nil disables tracing, which is what
	// preview and other ephemeral runs want.
	RunID *uuid.UUID

	// ComponentID names the owning mod component. Empty disables component
	// correlation in traces.
	ComponentID string

	// Headless makes a renderer's headless signal the run's result instead
	// of an error surfaced to the caller.
	Headless bool

	// LogValues enables debug logging of rendered arguments and outputs.
	// Off by default because step data routinely contains page content.
	LogValues bool

	// Version carries the apiVersion behavior flags for the whole run.
	Version schema.VersionOptions
}

// InitialValues seed the execution context for a top-level run.
type InitialValues struct {
	// Input is the payload from the triggering event, exposed as "@input".
	Input map[string]any

	// OptionsArgs are the mod's configured option values, exposed as
	// "@options".
	OptionsArgs map[string]any

	// ServiceContext holds integration bindings already keyed by their
	// declared output variables (e.g. "@google").
	ServiceContext map[string]any

	// Root is the root target inherited by steps in RootModeInherit.
	Root schema.Root
}

// Interp is the pipeline interpreter. It is immutable after construction
// and safe for concurrent runs; all per-run state lives on the call stack.
type Interp struct {
	registry *registry.Registry
	recorder trace.Recorder
	resolver *expression.Resolver
}

// New creates an interpreter bound to a brick registry and a trace
// recorder. A nil recorder disables tracing.
func New(reg *registry.Registry, rec trace.Recorder) *Interp {
	if reg == nil {
		panic("executor: nil registry")
	}
	if rec == nil {
		rec = trace.Nop()
	}
	return &Interp{registry: reg, recorder: rec, resolver: expression.NewResolver()}
}

// resolverOptions derives the expression resolver settings for one step.
func resolverOptions(step *schema.Step, opts Options) expression.Options {
	return expression.Options{
		ExplicitDataFlow: opts.Version.ExplicitDataFlow,
		DefaultEngine:    step.TemplateEngine,
		Autoescape:       opts.Version.AutoescapeTemplates,
	}
}
