// Package hclconf loads mod definitions from HCL. Steps live inside named
// pipeline blocks; expression values are written as function calls (see
// functions.go) and sub-pipelines are wired by name with sub("name").
package hclconf

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/modkit/brickflow/internal/config"
	"github.com/modkit/brickflow/internal/ctxlog"
	"github.com/modkit/brickflow/internal/fsutil"
)

// Loader is the HCL implementation of config.Loader.
type Loader struct{}

// NewLoader creates an HCL mod loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Extensions implements config.Loader.
func (l *Loader) Extensions() []string {
	return []string{".hcl"}
}

// fileRoot decodes the top-level blocks of any mod file.
type fileRoot struct {
	Mod          *modBlock           `hcl:"mod,block"`
	Integrations []*integrationBlock `hcl:"integration,block"`
	Pipelines    []*pipelineBlock    `hcl:"pipeline,block"`
	Remain       hcl.Body            `hcl:",remain"`
}

type modBlock struct {
	ID             string         `hcl:"id"`
	Name           string         `hcl:"name,optional"`
	APIVersion     string         `hcl:"api_version,optional"`
	OptionDefaults hcl.Expression `hcl:"option_defaults,optional"`
}

type integrationBlock struct {
	Name string   `hcl:"name,label"`
	Body hcl.Body `hcl:",remain"`
}

type pipelineBlock struct {
	Name  string       `hcl:"name,label"`
	Steps []*stepBlock `hcl:"step,block"`
}

type stepBlock struct {
	BrickID        string         `hcl:"brick_id,label"`
	Name           string         `hcl:"instance_name,label"`
	InstanceID     string         `hcl:"instance_id,optional"`
	OutputKey      string         `hcl:"output_key,optional"`
	Condition      hcl.Expression `hcl:"condition,optional"`
	RootMode       string         `hcl:"root_mode,optional"`
	Root           hcl.Expression `hcl:"root,optional"`
	Window         string         `hcl:"window,optional"`
	TemplateEngine string         `hcl:"template_engine,optional"`
	Config         *configBlock   `hcl:"config,block"`
}

type configBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// Load reads a mod definition from one or more HCL files under path. The
// pipeline named "main" is the mod's entry pipeline; every other pipeline
// block must be reachable through sub("name") references.
func (l *Loader) Load(ctx context.Context, path string) (*config.Mod, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := fsutil.FindFilesByExtension(path, ".hcl")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl mod files found at %s", path)
	}
	logger.Debug("Loading mod definition.", "files", files)

	parser := hclparse.NewParser()
	merged := &fileRoot{}

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode %s: %w", file, diags)
		}

		if root.Mod != nil {
			if merged.Mod != nil {
				return nil, fmt.Errorf("duplicate mod block in %s", file)
			}
			merged.Mod = root.Mod
		}
		merged.Integrations = append(merged.Integrations, root.Integrations...)
		merged.Pipelines = append(merged.Pipelines, root.Pipelines...)
	}

	if merged.Mod == nil {
		return nil, fmt.Errorf("mod definition at %s has no mod block", path)
	}

	mod, err := translate(ctx, merged)
	if err != nil {
		return nil, err
	}
	if err := mod.Validate(); err != nil {
		return nil, err
	}

	logger.Info("Mod definition loaded.", "mod", mod.ID, "apiVersion", mod.APIVersion, "steps", len(mod.Pipeline))
	return mod, nil
}
