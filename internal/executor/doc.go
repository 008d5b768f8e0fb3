// Package executor implements the brick pipeline interpreter. It walks an
// ordered sequence of steps, resolves each step's expressions against the
// run's execution context, dispatches to brick implementations through the
// registry, threads a fresh context forward after every output merge, and
// emits best-effort trace records keyed by instance id and branch stack.
//
// Control-flow bricks receive per-invocation callbacks for executing their
// embedded sub-pipelines, so the branch stack threading stays local to one
// run's call chain: the interpreter holds no global mutable state.
package executor
