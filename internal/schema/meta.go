package schema

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Branch identifies one control-flow path taken while descending into a
// sub-pipeline: the branch key (e.g. "if", "else", "loop") and the
// iteration counter. Counters for a repeated key are monotonically
// non-decreasing across a run, which is what lets the trace viewer
// reconstruct loop ordering from a flat log.
type Branch struct {
	Key     string
	Counter int
}

func (b Branch) String() string {
	return fmt.Sprintf("%s:%d", b.Key, b.Counter)
}

// RunMetadata travels by value down the interpreter's call stack. Each
// descent into a sub-pipeline constructs a new value with an extended
// branch stack; nothing is ever mutated in place.
type RunMetadata struct {
	// RunID correlates trace records for one top-level run. Nil disables
	// tracing entirely.
	RunID *uuid.UUID

	// ComponentID identifies the mod component that owns the run. Empty
	// disables correlation with the component but not tracing.
	ComponentID string

	// Branches is the stack of control-flow branches taken to reach the
	// current pipeline.
	Branches []Branch
}

// Tracing reports whether trace records should be emitted for this run.
func (m RunMetadata) Tracing() bool {
	return m.RunID != nil
}

// WithBranch returns a copy of m with branch appended to the stack. The
// receiver's slice is never shared with the result.
func (m RunMetadata) WithBranch(branch Branch) RunMetadata {
	branches := make([]Branch, len(m.Branches), len(m.Branches)+1)
	copy(branches, m.Branches)
	m.Branches = append(branches, branch)
	return m
}

// BranchPath flattens a branch stack into a stable string key, e.g.
// "loop:2/if:0". The empty stack yields "".
func BranchPath(branches []Branch) string {
	if len(branches) == 0 {
		return ""
	}
	parts := make([]string, len(branches))
	for i, b := range branches {
		parts[i] = b.String()
	}
	return strings.Join(parts, "/")
}
