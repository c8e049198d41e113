package descriptor

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testdataDir = "testdata"

func testPath(name string) string {
	return filepath.Join(testdataDir, name)
}

func TestParseFile_FullYAML(t *testing.T) {
	d, err := ParseFile(testPath("valid-full.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "web-starter", d.Name)
	assert.Equal(t, ">=0.1.0", d.Requires)
	assert.Equal(t, testPath("valid-full.yaml"), d.Path)
	assert.Equal(t,
		[]string{"name", "description", "author", "framework", "features", "private", "router", "license"},
		d.Prompts.Keys())

	author, _ := d.Prompts.Get("author")
	assert.False(t, author.HasDefault, "author should not declare a default")
	private, _ := d.Prompts.Get("private")
	assert.True(t, private.HasDefault)
	assert.Equal(t, false, private.Default)
	desc, _ := d.Prompts.Get("description")
	assert.Equal(t, "input", desc.Type)

	framework, _ := d.Prompts.Get("framework")
	assert.Equal(t, []Choice{{Name: "react", Value: "react"}, {Name: "Vue 3", Value: "vue"}}, framework.Choices)

	router, _ := d.Prompts.Get("router")
	assert.Equal(t, Expr("framework === 'vue'"), router.When)

	year, ok := d.Computed.Get("year")
	assert.True(t, ok)
	assert.Equal(t, Expr("2024"), year)
	assert.Equal(t, []string{"src/router/**", "*.lint.json"}, d.Filters.Keys())
	assert.Equal(t, []string{"public/**"}, []string(d.SkipInterpolation))
	assert.Equal(t, "Mock Author", d.Mock["author"])

	require.False(t, d.Hooks.Before.Empty(), "expected a before hook")
	gen, _ := d.Hooks.Before.Set.Get("generator")
	assert.Equal(t, "mifan", gen)
	assert.Equal(t, []string{"gitignore", "src/app.txt"}, d.Hooks.After.Rename.Keys())
	assert.Equal(t, []string{"**/*.orig"}, []string(d.Hooks.After.Remove))
	assert.Equal(t, "cd <$ destDirName $>\nnpm install\n", d.CompleteMessage)
}

func TestParseFile_JSONKeepsOrder(t *testing.T) {
	d, err := ParseFile(testPath("valid-full.json"))
	require.NoError(t, err)

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, d.Prompts.Keys())
	alpha, _ := d.Prompts.Get("alpha")
	assert.Equal(t, 1.5, alpha.Default)
	mid, _ := d.Prompts.Get("mid")
	assert.False(t, mid.HasDefault, "mid should not declare a default")
	b, _ := d.Filters.Get("b.txt")
	assert.Equal(t, Expr("false"), b)
	assert.Equal(t, []string{"**/*.tpl"}, []string(d.SkipInterpolation))
}

func TestParse_Empty(t *testing.T) {
	d, err := Parse([]byte("  \n"), "meta.yaml")
	require.NoError(t, err)
	assert.Zero(t, d.Prompts.Len())
	assert.Zero(t, d.Filters.Len())
}

func TestParse_NullPrompt(t *testing.T) {
	d, err := Parse([]byte("prompts:\n  name:\n"), "meta.yaml")
	require.NoError(t, err)

	p, ok := d.Prompts.Get("name")
	require.True(t, ok)
	require.NotNil(t, p)
	assert.Equal(t, "input", p.Type)
}

func TestParseFile_Invalid(t *testing.T) {
	tests := []struct {
		file       string
		desc       string
		validation bool
	}{
		{"invalid-unknown-field.yaml", "unknown top-level field", true},
		{"invalid-bad-prompt-type.yaml", "prompt type outside the enum", true},
		{"invalid-list-without-choices.yaml", "list prompt without choices", true},
		{"invalid-bad-filter.yaml", "unknown answer filter", true},
		{"invalid-bad-expression.yaml", "filter expression does not parse", false},
		{"invalid-bad-regexp.yaml", "validate pattern does not compile", false},
		{"invalid-not-yaml.yaml", "malformed YAML", false},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			_, err := ParseFile(testPath(tt.file))
			require.Error(t, err, tt.desc)

			var ve *ValidationError
			assert.Equal(t, tt.validation, errors.As(err, &ve), "err: %v", err)
		})
	}
}

func TestLoad_NoDescriptor(t *testing.T) {
	d, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, d.Path)
	assert.Zero(t, d.Prompts.Len())
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		t.Helper()
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	write("meta.json", `{"completeMessage": "json"}`)
	write("meta.yml", "completeMessage: yml\n")

	d, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "yml", d.CompleteMessage)

	write("meta.yaml", "completeMessage: yaml\n")
	d, err = Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "yaml", d.CompleteMessage)
}

func TestSetDefault(t *testing.T) {
	d, err := ParseFile(testPath("valid-full.yaml"))
	require.NoError(t, err)

	d.SetDefault("author", "Ada <ada@example.com>")
	author, _ := d.Prompts.Get("author")
	assert.True(t, author.HasDefault)
	assert.Equal(t, "Ada <ada@example.com>", author.Default)

	d.SetDefault("license", "Apache-2.0")
	license, _ := d.Prompts.Get("license")
	assert.Equal(t, "Apache-2.0", license.Default)

	empty := &Descriptor{}
	empty.SetDefault("author", "x")
	p, ok := empty.Prompts.Get("author")
	require.True(t, ok)
	assert.Equal(t, "string", p.Type)
	assert.Equal(t, "x", p.Default)
}

func TestQuestion(t *testing.T) {
	p := &Prompt{
		Type:    "list",
		Message: "Pick",
		Default: "b",
		Choices: []Choice{{Name: "A", Value: "a"}, {Name: "B", Value: "b"}},
	}
	q := p.Question("pick")
	assert.Equal(t, "pick", q.Name)
	assert.Equal(t, "Pick", q.Message)
	assert.Equal(t, "b", q.Default)
	require.Len(t, q.Choices, 2)
	assert.Equal(t, "b", q.Choices[1].Value)
}
