package registry

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/modkit/brickflow/internal/fault"
)

// notFound builds the business error for a lookup miss.
func notFound(id string) error {
	return fault.Businessf("brick %q is not registered", id)
}

// ValidateInput checks rendered arguments against the brick's input schema.
// Failures are business errors naming the offending field. Bricks without a
// schema accept anything.
func (r *Registry) ValidateInput(b Brick, args map[string]any) error {
	compiled := r.compiledSchema(b.ID())
	if compiled == nil {
		return nil
	}

	// The validator only understands plain JSON shapes, and rendered args
	// may carry richer Go values (ints, typed nils). Normalizing through
	// JSON also catches non-serializable arguments early.
	raw, err := json.Marshal(args)
	if err != nil {
		return fault.NewInputValidation(b.ID(), "", "arguments are not serializable: "+err.Error(), err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fault.NewInputValidation(b.ID(), "", "arguments are not serializable: "+err.Error(), err)
	}

	if err := compiled.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			field, detail := leafCause(ve)
			return fault.NewInputValidation(b.ID(), field, detail, err)
		}
		return fault.NewInputValidation(b.ID(), "", err.Error(), err)
	}
	return nil
}

// leafCause walks a validation error to the most specific failing location
// and reports it as a dotted field path plus message.
func leafCause(ve *jsonschema.ValidationError) (field, detail string) {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	field = strings.TrimPrefix(ve.InstanceLocation, "/")
	field = strings.ReplaceAll(field, "/", ".")
	return field, ve.Message
}
