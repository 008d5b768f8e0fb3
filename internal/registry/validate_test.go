package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modkit/brickflow/internal/fault"
)

const personSchema = `{
	"type": "object",
	"properties": {
		"name": {"type": "string"},
		"age": {"type": "integer", "minimum": 0}
	},
	"required": ["name"]
}`

func TestValidateInput(t *testing.T) {
	t.Parallel()

	r := New()
	brick := &fakeBrick{id: "person", schema: personSchema}
	r.Register(brick)

	t.Run("accepts valid arguments", func(t *testing.T) {
		t.Parallel()
		err := r.ValidateInput(brick, map[string]any{"name": "Ada", "age": 36})
		assert.NoError(t, err)
	})

	t.Run("accepts Go ints against integer schemas", func(t *testing.T) {
		t.Parallel()
		// JSON normalization turns int into float64; the validator must
		// still treat a whole number as an integer.
		err := r.ValidateInput(brick, map[string]any{"name": "Ada", "age": int64(1)})
		assert.NoError(t, err)
	})

	t.Run("reports the missing field", func(t *testing.T) {
		t.Parallel()
		err := r.ValidateInput(brick, map[string]any{"age": 3})
		require.Error(t, err)
		assert.True(t, fault.IsBusiness(err))

		var ve *fault.InputValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "person", ve.BrickID)
	})

	t.Run("names the offending nested field", func(t *testing.T) {
		t.Parallel()
		err := r.ValidateInput(brick, map[string]any{"name": "Ada", "age": -1})
		require.Error(t, err)

		var ve *fault.InputValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "age", ve.Field)
	})

	t.Run("rejects non-serializable arguments", func(t *testing.T) {
		t.Parallel()
		err := r.ValidateInput(brick, map[string]any{"name": "Ada", "age": make(chan int)})
		require.Error(t, err)
		assert.True(t, fault.IsBusiness(err))
	})

	t.Run("no schema accepts anything", func(t *testing.T) {
		t.Parallel()
		open := &fakeBrick{id: "open"}
		r := New()
		r.Register(open)
		assert.NoError(t, r.ValidateInput(open, map[string]any{"anything": true}))
	})
}
