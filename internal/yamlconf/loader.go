// Package yamlconf loads mod definitions from YAML. Expressions are written
// as tagged scalars and sequences (`!var "@input.x"`, `!mustache "..."`,
// `!pipeline [...]`), which keeps dynamic values visually distinct from
// literals in the same document.
package yamlconf

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/modkit/brickflow/internal/config"
	"github.com/modkit/brickflow/internal/ctxlog"
	"github.com/modkit/brickflow/internal/fsutil"
	"github.com/modkit/brickflow/internal/schema"
)

// Loader is the YAML implementation of config.Loader.
type Loader struct{}

// NewLoader creates a YAML mod loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Extensions implements config.Loader.
func (l *Loader) Extensions() []string {
	return []string{".yaml", ".yml"}
}

// Load reads one mod definition from a file or a directory containing
// exactly one YAML file.
func (l *Loader) Load(ctx context.Context, path string) (*config.Mod, error) {
	logger := ctxlog.FromContext(ctx)

	var files []string
	for _, ext := range l.Extensions() {
		found, err := fsutil.FindFilesByExtension(path, ext)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	if len(files) != 1 {
		return nil, fmt.Errorf("expected exactly one mod definition at %s, found %d files", path, len(files))
	}
	logger.Debug("Loading mod definition.", "file", files[0])

	raw, err := os.ReadFile(files[0])
	if err != nil {
		return nil, err
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML in %s: %w", files[0], err)
	}

	mod, err := decodeMod(&doc)
	if err != nil {
		return nil, fmt.Errorf("invalid mod definition in %s: %w", files[0], err)
	}
	if err := mod.Validate(); err != nil {
		return nil, err
	}

	logger.Info("Mod definition loaded.", "mod", mod.ID, "apiVersion", mod.APIVersion, "steps", len(mod.Pipeline))
	return mod, nil
}

// decodeMod translates the document root into the config model.
func decodeMod(doc *yaml.Node) (*config.Mod, error) {
	root := doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return nil, fmt.Errorf("empty document")
		}
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("top level must be a mapping")
	}

	mod := &config.Mod{APIVersion: schema.V3}

	for i := 0; i < len(root.Content)-1; i += 2 {
		key := root.Content[i].Value
		value := root.Content[i+1]

		switch key {
		case "mod":
			if err := decodeHeader(value, mod); err != nil {
				return nil, err
			}
		case "integrations":
			integrations, err := decodeIntegrations(value)
			if err != nil {
				return nil, err
			}
			mod.Integrations = integrations
		case "pipeline":
			pipeline, err := decodeSteps(value)
			if err != nil {
				return nil, err
			}
			mod.Pipeline = pipeline
		default:
			return nil, fmt.Errorf("unknown top-level key %q", key)
		}
	}

	return mod, nil
}

func decodeHeader(node *yaml.Node, mod *config.Mod) error {
	var header struct {
		ID             string         `yaml:"id"`
		Name           string         `yaml:"name"`
		APIVersion     string         `yaml:"api_version"`
		OptionDefaults map[string]any `yaml:"option_defaults"`
	}
	if err := node.Decode(&header); err != nil {
		return fmt.Errorf("invalid mod header: %w", err)
	}

	mod.ID = header.ID
	mod.Name = header.Name
	mod.OptionDefaults = header.OptionDefaults
	if header.APIVersion != "" {
		version, err := schema.ParseAPIVersion(header.APIVersion)
		if err != nil {
			return err
		}
		mod.APIVersion = version
	}
	return nil
}

func decodeIntegrations(node *yaml.Node) ([]config.Integration, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("integrations must be a sequence")
	}

	var out []config.Integration
	for _, item := range node.Content {
		var integration struct {
			OutputKey string         `yaml:"output_key"`
			Config    map[string]any `yaml:"config"`
		}
		if err := item.Decode(&integration); err != nil {
			return nil, fmt.Errorf("invalid integration: %w", err)
		}
		out = append(out, config.Integration{OutputKey: integration.OutputKey, Config: integration.Config})
	}
	return out, nil
}
