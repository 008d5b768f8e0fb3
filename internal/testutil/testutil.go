// Package testutil provides shared helpers for interpreter and brick tests:
// a thread-safe log buffer, configurable stub bricks, and a harness that
// assembles a registry, recorder, and interpreter in one call.
package testutil

import (
	"bytes"
	"context"
	"sync"

	"github.com/modkit/brickflow/internal/executor"
	"github.com/modkit/brickflow/internal/registry"
	"github.com/modkit/brickflow/internal/trace"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// StubBrick is a configurable test brick. Zero-value fields fall back to
// sensible defaults: no schema, echo the arguments back as output.
type StubBrick struct {
	BrickID string
	Schema  string
	Fn      func(ctx context.Context, args map[string]any, opts *registry.BrickOptions) (any, error)

	mu    sync.Mutex
	calls []Call
}

// Call captures one invocation of a stub brick.
type Call struct {
	Args map[string]any
	Opts *registry.BrickOptions
}

func (s *StubBrick) ID() string          { return s.BrickID }
func (s *StubBrick) InputSchema() string { return s.Schema }

func (s *StubBrick) Run(ctx context.Context, args map[string]any, opts *registry.BrickOptions) (any, error) {
	s.mu.Lock()
	s.calls = append(s.calls, Call{Args: args, Opts: opts})
	s.mu.Unlock()

	if s.Fn != nil {
		return s.Fn(ctx, args, opts)
	}
	return args, nil
}

// Calls returns a copy of the recorded invocations.
func (s *StubBrick) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallCount returns how many times the brick ran.
func (s *StubBrick) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// StaticBrick returns a brick that ignores its arguments and returns a
// fixed value.
func StaticBrick(id string, value any) *StubBrick {
	return &StubBrick{
		BrickID: id,
		Fn: func(context.Context, map[string]any, *registry.BrickOptions) (any, error) {
			return value, nil
		},
	}
}

// FailBrick returns a brick that always fails with the given error.
func FailBrick(id string, err error) *StubBrick {
	return &StubBrick{
		BrickID: id,
		Fn: func(context.Context, map[string]any, *registry.BrickOptions) (any, error) {
			return nil, err
		},
	}
}

// Harness bundles the pieces most interpreter tests need.
type Harness struct {
	Registry *registry.Registry
	Recorder *trace.MemoryRecorder
	Interp   *executor.Interp
}

// NewHarness builds a registry containing the given bricks and an
// interpreter with an in-memory trace recorder.
func NewHarness(bricks ...registry.Brick) *Harness {
	reg := registry.New()
	for _, b := range bricks {
		reg.Register(b)
	}
	rec := trace.NewMemoryRecorder()
	return &Harness{
		Registry: reg,
		Recorder: rec,
		Interp:   executor.New(reg, rec),
	}
}
