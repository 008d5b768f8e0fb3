package envreader

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modkit/brickflow/internal/registry"
)

func TestEnvReader_FiltersByNames(t *testing.T) {
	t.Setenv("BRICKFLOW_TEST_A", "alpha")
	t.Setenv("BRICKFLOW_TEST_B", "beta")

	got, err := (&Brick{}).Run(context.Background(), map[string]any{
		"names": []any{"BRICKFLOW_TEST_A", "BRICKFLOW_TEST_MISSING"},
	}, &registry.BrickOptions{})
	require.NoError(t, err)

	vars := got.(map[string]any)["vars"].(map[string]any)
	assert.Equal(t, map[string]any{
		"BRICKFLOW_TEST_A":       "alpha",
		"BRICKFLOW_TEST_MISSING": "",
	}, vars)
}

func TestEnvReader_ReturnsAllWithoutNames(t *testing.T) {
	t.Setenv("BRICKFLOW_TEST_ALL", "everything")

	got, err := (&Brick{}).Run(context.Background(), map[string]any{}, &registry.BrickOptions{})
	require.NoError(t, err)

	vars := got.(map[string]any)["vars"].(map[string]any)
	assert.Equal(t, "everything", vars["BRICKFLOW_TEST_ALL"])
}
