// Package trace records brick invocations for later inspection by preview
// tooling. Recording is strictly best-effort: a recorder must never fail
// the run it is observing.
package trace

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/modkit/brickflow/internal/schema"
)

// Record is one logical brick invocation. A run produces a linear log of
// records; the branch stacks are what let a viewer fold the log back into
// a tree.
type Record struct {
	RunID       uuid.UUID
	ComponentID string
	InstanceID  uuid.UUID
	BrickID     string
	Branches    []schema.Branch

	// TemplateContext is the execution context the step's config was
	// rendered against.
	TemplateContext map[string]any
	// RenderedArgs are the concrete arguments the brick was invoked with.
	RenderedArgs map[string]any

	// Output is the brick result on success; Error carries the flattened
	// failure message otherwise. At most one is set.
	Output any
	Error  string

	Timestamp time.Time
}

// Key is the idempotence key for a record: re-running the same step along
// the same branch path overwrites rather than duplicates, so the trace for
// a loop body reflects only the latest iteration.
func (r *Record) Key() string {
	return r.RunID.String() + "|" + r.InstanceID.String() + "|" + schema.BranchPath(r.Branches)
}

// Recorder accepts trace records. Implementations swallow their own
// failures; Record has no error return on purpose.
type Recorder interface {
	Record(ctx context.Context, rec *Record)
}

// nopRecorder drops everything. Used when tracing is disabled.
type nopRecorder struct{}

func (nopRecorder) Record(context.Context, *Record) {}

// Nop returns a recorder that discards all records.
func Nop() Recorder {
	return nopRecorder{}
}
