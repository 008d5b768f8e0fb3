package app_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modkit/brickflow/internal/app"
	"github.com/modkit/brickflow/internal/testutil"
	"github.com/modkit/brickflow/internal/yamlconf"
)

func writeMod(t *testing.T, source string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mod.yaml")
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))
	return path
}

func TestApp_RunsAModEndToEnd(t *testing.T) {
	t.Parallel()

	modPath := writeMod(t, `
mod:
  id: greeter
pipeline:
  - brick: identity
    output_key: name
    config:
      value: !var "@input.name"
  - brick: template
    config:
      template: "Hello {{ name.value }}!"
`)

	out := &testutil.SafeBuffer{}
	cfg := &app.Config{
		ModPath:   modPath,
		InputJSON: `{"name": "Ada"}`,
		LogFormat: "text",
		LogLevel:  "error",
	}

	a := app.NewApp(out, cfg, yamlconf.NewLoader())
	require.NoError(t, a.Run(context.Background(), cfg))

	assert.Contains(t, out.String(), `"Hello Ada!"`)
}

func TestApp_HeadlessRunPrintsRendererPayload(t *testing.T) {
	t.Parallel()

	modPath := writeMod(t, `
mod:
  id: panel
pipeline:
  - brick: render-document
    config:
      title: Status
      body: all green
`)

	out := &testutil.SafeBuffer{}
	cfg := &app.Config{
		ModPath:   modPath,
		LogFormat: "text",
		LogLevel:  "error",
		Headless:  true,
	}

	a := app.NewApp(out, cfg, yamlconf.NewLoader())
	require.NoError(t, a.Run(context.Background(), cfg))

	assert.Contains(t, out.String(), `"type": "document"`)
	assert.Contains(t, out.String(), `"title": "Status"`)
}

func TestApp_NonHeadlessRendererIsAnError(t *testing.T) {
	t.Parallel()

	modPath := writeMod(t, `
mod:
  id: panel
pipeline:
  - brick: render-document
    config:
      body: all green
`)

	out := &testutil.SafeBuffer{}
	cfg := &app.Config{ModPath: modPath, LogFormat: "text", LogLevel: "error"}

	a := app.NewApp(out, cfg, yamlconf.NewLoader())
	err := a.Run(context.Background(), cfg)
	require.Error(t, err)
	assert.ErrorContains(t, err, "renderer payload")
}

func TestApp_IntegrationBindingsReachThePipeline(t *testing.T) {
	t.Parallel()

	modPath := writeMod(t, `
mod:
  id: bound
integrations:
  - output_key: "@svc"
    config:
      base_url: https://svc.example
pipeline:
  - brick: identity
    config:
      value: !var "@svc.base_url"
`)

	out := &testutil.SafeBuffer{}
	cfg := &app.Config{ModPath: modPath, LogFormat: "text", LogLevel: "error"}

	a := app.NewApp(out, cfg, yamlconf.NewLoader())
	require.NoError(t, a.Run(context.Background(), cfg))

	assert.Contains(t, out.String(), `"https://svc.example"`)
}

func TestNewApp_PanicsOnBrokenMod(t *testing.T) {
	t.Parallel()

	modPath := writeMod(t, "mod: [")
	out := &testutil.SafeBuffer{}
	cfg := &app.Config{ModPath: modPath, LogFormat: "text", LogLevel: "error"}

	assert.Panics(t, func() {
		app.NewApp(out, cfg, yamlconf.NewLoader())
	})
}

func TestApp_RejectsMalformedInputJSON(t *testing.T) {
	t.Parallel()

	modPath := writeMod(t, `
mod:
  id: x
pipeline:
  - brick: identity
    config:
      value: 1
`)

	out := &testutil.SafeBuffer{}
	cfg := &app.Config{
		ModPath:   modPath,
		InputJSON: "{not json",
		LogFormat: "text",
		LogLevel:  "error",
	}

	a := app.NewApp(out, cfg, yamlconf.NewLoader())
	err := a.Run(context.Background(), cfg)
	assert.ErrorContains(t, err, "input JSON")
}
