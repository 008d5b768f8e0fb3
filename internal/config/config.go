// Package config defines the format-agnostic mod definition model and the
// Loader interface format-specific packages implement. The config model is
// what the app hands to the executor; HCL and YAML loaders live in their
// own packages.
package config

import (
	"context"
	"fmt"

	"github.com/modkit/brickflow/internal/schema"
)

// Integration binds an external service configuration to the output
// variable pipeline steps address it by.
type Integration struct {
	// OutputKey is the context variable the binding is exposed under,
	// including the leading "@".
	OutputKey string
	// Config holds the service configuration (base URL, credential
	// reference, and so on).
	Config map[string]any
}

// Mod is a loaded mod definition: one pipeline plus the metadata and
// bindings it runs with.
type Mod struct {
	ID             string
	Name           string
	APIVersion     schema.APIVersion
	Pipeline       schema.Pipeline
	OptionDefaults map[string]any
	Integrations   []Integration
}

// Validate checks the mod for structural problems beyond what the pipeline
// itself validates.
func (m *Mod) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("mod is missing an id")
	}
	if _, err := schema.ParseAPIVersion(string(m.APIVersion)); err != nil {
		return fmt.Errorf("mod %q: %w", m.ID, err)
	}
	if len(m.Pipeline) == 0 {
		return fmt.Errorf("mod %q has an empty pipeline", m.ID)
	}
	if err := validatePipelines(m.Pipeline); err != nil {
		return fmt.Errorf("mod %q: %w", m.ID, err)
	}
	for _, integration := range m.Integrations {
		if len(integration.OutputKey) < 2 || integration.OutputKey[0] != '@' || !schema.ValidOutputKey(integration.OutputKey[1:]) {
			return fmt.Errorf("mod %q: invalid integration output key %q", m.ID, integration.OutputKey)
		}
	}
	return nil
}

// validatePipelines validates a pipeline and every sub-pipeline reachable
// through pipeline-tagged expressions in step configs.
func validatePipelines(p schema.Pipeline) error {
	if err := p.Validate(); err != nil {
		return err
	}
	for _, step := range p {
		for field, value := range step.Config {
			if err := validateNested(value); err != nil {
				return fmt.Errorf("step %q, field %q: %w", step.BrickID, field, err)
			}
		}
	}
	return nil
}

func validateNested(value any) error {
	switch v := value.(type) {
	case *schema.Expression:
		if sub, ok := v.AsPipeline(); ok {
			return validatePipelines(sub)
		}
	case map[string]any:
		for _, nested := range v {
			if err := validateNested(nested); err != nil {
				return err
			}
		}
	case []any:
		for _, nested := range v {
			if err := validateNested(nested); err != nil {
				return err
			}
		}
	}
	return nil
}

// Loader is the interface for a format-specific mod definition loader.
type Loader interface {
	// Extensions lists the file extensions the loader accepts, with dots
	// (".hcl", ".yaml").
	Extensions() []string

	// Load reads a mod definition from a file or directory path and
	// translates it into the format-agnostic model.
	Load(ctx context.Context, path string) (*Mod, error)
}
