package schema

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRunMetadata_WithBranch_DoesNotShareSlices(t *testing.T) {
	t.Parallel()

	runID := uuid.New()
	base := RunMetadata{RunID: &runID}

	left := base.WithBranch(Branch{Key: "loop", Counter: 0})
	right := base.WithBranch(Branch{Key: "loop", Counter: 1})

	// Two descents from the same parent must not clobber each other.
	deeper := left.WithBranch(Branch{Key: "if", Counter: 0})

	assert.Equal(t, []Branch{{Key: "loop", Counter: 0}}, left.Branches)
	assert.Equal(t, []Branch{{Key: "loop", Counter: 1}}, right.Branches)
	assert.Equal(t, []Branch{{Key: "loop", Counter: 0}, {Key: "if", Counter: 0}}, deeper.Branches)
	assert.Empty(t, base.Branches)
}

func TestRunMetadata_Tracing(t *testing.T) {
	t.Parallel()

	runID := uuid.New()
	assert.True(t, RunMetadata{RunID: &runID}.Tracing())
	assert.False(t, RunMetadata{}.Tracing())
}

func TestBranchPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", BranchPath(nil))
	assert.Equal(t, "loop:2", BranchPath([]Branch{{Key: "loop", Counter: 2}}))
	assert.Equal(t, "loop:2/if:0", BranchPath([]Branch{
		{Key: "loop", Counter: 2},
		{Key: "if", Counter: 0},
	}))
}
