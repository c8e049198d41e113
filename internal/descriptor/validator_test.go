package descriptor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFile_Valid(t *testing.T) {
	for _, file := range []string{"valid-full.yaml", "valid-full.json"} {
		t.Run(file, func(t *testing.T) {
			result, err := ValidateFile(testPath(file))
			require.NoError(t, err)
			assert.True(t, result.Valid, "issues: %+v", result.Issues)
		})
	}
}

func TestValidateFile_NotFound(t *testing.T) {
	_, err := ValidateFile(testPath("nonexistent.yaml"))
	assert.Error(t, err)
}

func TestValidate_IssueFields(t *testing.T) {
	result, err := ValidateFile(testPath("invalid-bad-prompt-type.yaml"))
	require.NoError(t, err)
	require.False(t, result.Valid)

	found := false
	for _, issue := range result.Issues {
		if strings.HasPrefix(issue.Path, "/prompts/name") && issue.Message != "" {
			found = true
		}
	}
	assert.True(t, found, "expected an issue under /prompts/name, got %+v", result.Issues)
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{
		Path: "meta.yaml",
		Issues: []ValidationIssue{
			{Path: "/prompts/name/type", Message: "value must be one of ..."},
			{Message: "additional properties 'helpers' not allowed"},
		},
	}
	assert.Equal(t,
		"invalid descriptor meta.yaml: /prompts/name/type: value must be one of ...; additional properties 'helpers' not allowed",
		err.Error())
}

func TestValidate_SchemaCompiles(t *testing.T) {
	schema, err := getSchema()
	require.NoError(t, err)
	assert.NotNil(t, schema)
}

func TestCheck_BuiltInGo(t *testing.T) {
	prompts := func(p *Prompt) OrderedMap[*Prompt] {
		var m OrderedMap[*Prompt]
		m.Set("name", p)
		return m
	}

	tests := []struct {
		name    string
		d       *Descriptor
		wantErr string
	}{
		{"empty", &Descriptor{}, ""},
		{"known filter", &Descriptor{Prompts: prompts(&Prompt{Type: "input", Filter: "trim"})}, ""},
		{"unknown filter", &Descriptor{Prompts: prompts(&Prompt{Type: "input", Filter: "reverse"})}, `unknown filter "reverse"`},
		{"list without choices", &Descriptor{Prompts: prompts(&Prompt{Type: "list"})}, "needs choices"},
		{"bad when", &Descriptor{Prompts: prompts(&Prompt{Type: "confirm", When: "a ==="})}, "when"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.d.Check()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
