// Package registry provides the central lookup from brick identifiers to
// executable brick implementations.
//
// The registry is populated once during application startup and is
// read-mostly afterwards. Registration failures (duplicate ids, malformed
// input schemas) are programmer errors and panic; a lookup miss at run time
// is a business error naming the missing id, because a mod referring to an
// unknown brick is a user-fixable condition.
package registry

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Module is the interface brick packages implement to register their bricks.
type Module interface {
	Register(r *Registry)
}

// Registry holds the brick implementations for a single application
// instance. Explicitly passing a Registry around, rather than a package
// global, keeps test instances isolated per run.
type Registry struct {
	mu      sync.RWMutex
	bricks  map[string]Brick
	schemas map[string]*jsonschema.Schema
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		bricks:  make(map[string]Brick),
		schemas: make(map[string]*jsonschema.Schema),
	}
}

// Register adds a brick. Registering the same id twice, or a brick with an
// uncompilable input schema, panics: both are bugs in the embedding
// program, not runtime conditions.
func (r *Registry) Register(b Brick) {
	id := b.ID()
	if id == "" {
		panic("registry: brick with empty id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.bricks[id]; exists {
		panic(fmt.Sprintf("registry: brick %q already registered", id))
	}

	if raw := b.InputSchema(); raw != "" {
		compiled, err := jsonschema.CompileString(id+".schema.json", raw)
		if err != nil {
			panic(fmt.Sprintf("registry: brick %q has an invalid input schema: %v", id, err))
		}
		r.schemas[id] = compiled
	}

	slog.Debug("Registered brick.", "id", id)
	r.bricks[id] = b
}

// Lookup resolves a brick id to its implementation.
func (r *Registry) Lookup(id string) (Brick, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.bricks[id]
	if !ok {
		return nil, notFound(id)
	}
	return b, nil
}

// IDs returns the registered brick ids, unordered.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.bricks))
	for id := range r.bricks {
		ids = append(ids, id)
	}
	return ids
}

// compiledSchema returns the compiled input schema for a brick id, or nil
// when the brick declared none.
func (r *Registry) compiledSchema(id string) *jsonschema.Schema {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.schemas[id]
}
