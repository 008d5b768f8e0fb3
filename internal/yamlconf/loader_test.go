package yamlconf

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modkit/brickflow/internal/config"
	"github.com/modkit/brickflow/internal/schema"
)

func load(t *testing.T, source string) (*config.Mod, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mod.yaml")
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))
	return NewLoader().Load(context.Background(), path)
}

const fullMod = `
mod:
  id: sheet-sync
  name: Sheet Sync
  api_version: v3
  option_defaults:
    spreadsheet: default-sheet
integrations:
  - output_key: "@google"
    config:
      base_url: https://sheets.example
pipeline:
  - brick: http-request
    instance_id: 6f2b5ed0-51b5-4f51-93f8-99f6a7f54c10
    label: fetch rows
    output_key: rows
    config:
      url: !nunjucks "{{ google.base_url }}/rows"
  - brick: for-each
    condition: !var "@input.enabled"
    config:
      elements: !var "@rows.json"
      body: !pipeline
        - brick: identity
          config:
            value: !var "@element"
`

func TestLoad_FullModDefinition(t *testing.T) {
	t.Parallel()

	mod, err := load(t, fullMod)
	require.NoError(t, err)

	assert.Equal(t, "sheet-sync", mod.ID)
	assert.Equal(t, "Sheet Sync", mod.Name)
	assert.Equal(t, schema.V3, mod.APIVersion)
	assert.Equal(t, map[string]any{"spreadsheet": "default-sheet"}, mod.OptionDefaults)

	require.Len(t, mod.Integrations, 1)
	assert.Equal(t, "@google", mod.Integrations[0].OutputKey)
	assert.Equal(t, map[string]any{"base_url": "https://sheets.example"}, mod.Integrations[0].Config)

	require.Len(t, mod.Pipeline, 2)

	fetch := mod.Pipeline[0]
	assert.Equal(t, "http-request", fetch.BrickID)
	assert.Equal(t, uuid.MustParse("6f2b5ed0-51b5-4f51-93f8-99f6a7f54c10"), fetch.InstanceID)
	assert.Equal(t, "fetch rows", fetch.Label)
	assert.Equal(t, "rows", fetch.OutputKey)
	url, ok := fetch.Config["url"].(*schema.Expression)
	require.True(t, ok)
	assert.Equal(t, schema.TagNunjucks, url.Tag)

	loop := mod.Pipeline[1]
	condition, ok := loop.Condition.(*schema.Expression)
	require.True(t, ok)
	assert.Equal(t, schema.TagVar, condition.Tag)
	assert.Equal(t, "@input.enabled", condition.Value)

	body, ok := loop.Config["body"].(*schema.Expression)
	require.True(t, ok)
	sub, ok := body.AsPipeline()
	require.True(t, ok)
	require.Len(t, sub, 1)
	assert.Equal(t, "identity", sub[0].BrickID)
	assert.NotEqual(t, uuid.Nil, sub[0].InstanceID)
}

func TestLoad_DeferKeepsNestedExpressions(t *testing.T) {
	t.Parallel()

	mod, err := load(t, `
mod:
  id: doc
pipeline:
  - brick: render-document
    config:
      body: !defer
        text: !var "@input.message"
`)
	require.NoError(t, err)

	body, ok := mod.Pipeline[0].Config["body"].(*schema.Expression)
	require.True(t, ok)
	assert.Equal(t, schema.TagDefer, body.Tag)

	inner := body.Value.(map[string]any)
	nested, ok := inner["text"].(*schema.Expression)
	require.True(t, ok)
	assert.Equal(t, schema.TagVar, nested.Tag)
}

func TestLoad_DefaultsToV3(t *testing.T) {
	t.Parallel()

	mod, err := load(t, `
mod:
  id: minimal
pipeline:
  - brick: identity
    config:
      value: 1
`)
	require.NoError(t, err)
	assert.Equal(t, schema.V3, mod.APIVersion)
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		source  string
		wantErr string
	}{
		{"invalid yaml", "mod: [", "failed to parse YAML"},
		{"unknown top-level key", "grid:\n  id: x\n", "unknown top-level key"},
		{"unknown step key", "mod:\n  id: x\npipeline:\n  - runner: identity\n", "unknown step key"},
		{"bad api version", "mod:\n  id: x\n  api_version: v9\npipeline:\n  - brick: identity\n", "unsupported apiVersion"},
		{"empty pipeline", "mod:\n  id: x\n", "empty pipeline"},
		{"bad instance id", "mod:\n  id: x\npipeline:\n  - brick: identity\n    instance_id: nope\n", "invalid instance_id"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := load(t, tc.source)
			require.Error(t, err)
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestLoad_RejectsMultipleFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, name := range []string{"a.yaml", "b.yaml"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("mod:\n  id: x\n"), 0o644))
	}

	_, err := NewLoader().Load(context.Background(), dir)
	assert.ErrorContains(t, err, "exactly one")
}
