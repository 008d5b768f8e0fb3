package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modkit/brickflow/internal/registry"
)

func TestIdentity_EchoesValue(t *testing.T) {
	t.Parallel()

	b := &Brick{}
	for _, value := range []any{"text", float64(7), map[string]any{"k": "v"}, nil} {
		got, err := b.Run(context.Background(), map[string]any{"value": value}, &registry.BrickOptions{})
		require.NoError(t, err)
		assert.Equal(t, value, got)
	}
}

func TestIdentity_SchemaRequiresValue(t *testing.T) {
	t.Parallel()

	r := registry.New()
	(&Module{}).Register(r)

	b, err := r.Lookup("identity")
	require.NoError(t, err)
	assert.Error(t, r.ValidateInput(b, map[string]any{}))
	assert.NoError(t, r.ValidateInput(b, map[string]any{"value": 1}))
}
