package trace

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/modkit/brickflow/internal/ctxlog"
)

// MemoryRecorder is an in-process, append-only trace store keyed by
// (run, instance, branch path). Re-recording an existing key replaces the
// record in place so log order reflects first arrival while content
// reflects the latest iteration.
type MemoryRecorder struct {
	mu      sync.Mutex
	index   map[string]int
	records []*Record
}

// NewMemoryRecorder creates an empty in-memory trace store.
func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{index: make(map[string]int)}
}

// Record stores rec, overwriting any prior record with the same key. It
// never panics out to the caller: tracing failures must not abort a run.
func (s *MemoryRecorder) Record(ctx context.Context, rec *Record) {
	defer func() {
		if r := recover(); r != nil {
			ctxlog.FromContext(ctx).Warn("Trace recording failed; continuing run.", "panic", r)
		}
	}()

	if rec == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := rec.Key()
	if i, exists := s.index[key]; exists {
		s.records[i] = rec
		return
	}
	s.index[key] = len(s.records)
	s.records = append(s.records, rec)
}

// Snapshot returns the records for one run in arrival order. The returned
// slice is a copy; callers may hold it across further recording.
func (s *MemoryRecorder) Snapshot(runID uuid.UUID) []*Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*Record
	for _, rec := range s.records {
		if rec.RunID == runID {
			out = append(out, rec)
		}
	}
	return out
}

// Len reports the total number of stored records across all runs.
func (s *MemoryRecorder) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
