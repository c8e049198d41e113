package config

import (
	"os"
	"runtime"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	viper.Reset()
	t.Cleanup(viper.Reset)
	Load()
}

func TestDefaults(t *testing.T) {
	setup(t)

	assert.Equal(t, runtime.GOMAXPROCS(0), Concurrency())
	assert.False(t, Verbose())
	assert.Equal(t, []string{KeyConcurrency, KeyVerbose}, Keys())
	assert.NotEmpty(t, Describe(KeyVerbose))
}

func TestSetWritesFile(t *testing.T) {
	setup(t)

	require.NoError(t, Set(KeyConcurrency, "3"))
	assert.Equal(t, 3, Concurrency())
	assert.Equal(t, "3", Get(KeyConcurrency))

	data, err := os.ReadFile(FilePath())
	require.NoError(t, err)
	assert.Contains(t, string(data), "concurrency")
}

func TestSetUnknownKey(t *testing.T) {
	setup(t)

	err := Set("mirror", "https://example.com")
	assert.ErrorContains(t, err, "unknown config key")
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("MIFAN_VERBOSE", "true")
	setup(t)

	assert.True(t, Verbose())
}
