package expression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modkit/brickflow/internal/fault"
)

func testContext() map[string]any {
	return map[string]any{
		"@input": map[string]any{
			"name": "Ada",
			"users": []any{
				map[string]any{"email": "ada@example.com"},
				map[string]any{"email": "grace@example.com"},
			},
			"weird key": "found",
		},
		"@options": map[string]any{},
	}
}

func TestLookupPath(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		path string
		want any
	}{
		{"top-level variable", "@input", testContext()["@input"]},
		{"dotted field", "@input.name", "Ada"},
		{"list index", "@input.users[0].email", "ada@example.com"},
		{"second element", "@input.users[1].email", "grace@example.com"},
		{"quoted key", `@input["weird key"]`, "found"},
		{"single-quoted key", `@input['weird key']`, "found"},
		{"terminal miss is nil", "@input.missing", nil},
		{"terminal index miss is nil", "@input.users[9]", nil},
		{"optional chain short-circuits", "@input.missing?.deeper.field", nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := lookupPath(testContext(), tc.path)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestLookupPath_IntermediateMissFails(t *testing.T) {
	t.Parallel()

	_, err := lookupPath(testContext(), "@input.missing.deeper")
	require.Error(t, err)
	assert.True(t, fault.IsBusiness(err))
	assert.ErrorContains(t, err, "@input.missing.deeper")
}

func TestLookupPath_TraversingScalarFails(t *testing.T) {
	t.Parallel()

	_, err := lookupPath(testContext(), "@input.name.length.more")
	require.Error(t, err)
	assert.True(t, fault.IsBusiness(err))
}

func TestParsePath_Errors(t *testing.T) {
	t.Parallel()

	for _, bad := range []string{
		"",
		"   ",
		"@input.",
		"@input[",
		"@input[abc]",
		`@input["open`,
	} {
		_, err := parsePath(bad)
		assert.Error(t, err, "path %q", bad)
	}
}
