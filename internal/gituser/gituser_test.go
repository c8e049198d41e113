package gituser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name, email, want string
	}{
		{"Ada Lovelace", "ada@example.com", "Ada Lovelace <ada@example.com>"},
		{"Ada", "", "Ada"},
		{"", "ada@example.com", "<ada@example.com>"},
		{"  ", " ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Format(tt.name, tt.email))
	}
}

func TestLookup(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")

	gitconfig := "[user]\n\tname = Ada Lovelace\n\temail = ada@example.com\n"
	require.NoError(t, os.WriteFile(filepath.Join(home, ".gitconfig"), []byte(gitconfig), 0o644))

	assert.Equal(t, "Ada Lovelace <ada@example.com>", Lookup())
}

func TestLookupXDG(t *testing.T) {
	home := t.TempDir()
	xdg := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", xdg)

	require.NoError(t, os.MkdirAll(filepath.Join(xdg, "git"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(xdg, "git", "config"), []byte("[user]\n\tname = Grace\n"), 0o644))

	assert.Equal(t, "Grace", Lookup())
}

func TestLookupNoConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", "")

	assert.Equal(t, "", Lookup())
}
